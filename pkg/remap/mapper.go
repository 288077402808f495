package remap

import "math"

// Mapper maps a normalized destination coordinate to a normalized source
// coordinate. Implementations must be pure; the remapper calls them from
// several goroutines at once.
type Mapper func(destU, destV float64) (srcU, srcV float64)

// MapToSource is the inverse annular projection.
//
// destU is the angle around the ring (0..1 covers 0..2π and wraps) and destV
// is the distance from the ring center, where 0 lands on the center of the
// source photo and 1 lands on the circle inscribed in it. The source is
// treated as a disc of radius 0.5 centered at (0.5, 0.5).
func MapToSource(destU, destV float64) (srcU, srcV float64) {
	theta := destU * 2 * math.Pi
	rho := destV * 0.5

	srcU = 0.5 + math.Cos(theta)*rho
	srcV = 0.5 + math.Sin(theta)*rho
	return srcU, srcV
}

var _ Mapper = MapToSource
