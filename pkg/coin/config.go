// Package coin turns a flat coin image into a textured coin ring: it loads
// the diffuse and optional bump sources, remaps both into ring texture
// space concurrently, builds the ring mesh and binds the results.
package coin

import (
	"errors"
	"fmt"
	"strings"

	"github.com/taigrr/coinring/pkg/models"
	"github.com/taigrr/coinring/pkg/remap"
)

// MeshKind selects how the ring mesh is built.
type MeshKind int

const (
	// MeshAnalytic builds walls and caps directly; exact and fast.
	MeshAnalytic MeshKind = iota
	// MeshCSG subtracts the inner cylinder from the outer one and
	// polygonizes the solid with marching cubes.
	MeshCSG
)

func (k MeshKind) String() string {
	switch k {
	case MeshAnalytic:
		return "analytic"
	case MeshCSG:
		return "csg"
	}
	return fmt.Sprintf("MeshKind(%d)", int(k))
}

// ParseMeshKind parses "analytic" or "csg".
func ParseMeshKind(s string) (MeshKind, error) {
	switch strings.ToLower(s) {
	case "analytic", "":
		return MeshAnalytic, nil
	case "csg":
		return MeshCSG, nil
	}
	return 0, fmt.Errorf("unknown mesh kind %q (want analytic or csg)", s)
}

// Config describes one ring build.
type Config struct {
	Diffuse Source // required
	Bump    Source // optional normal map source

	Width, Height int // remapped texture size
	Filter        remap.FilterMode
	Edge          remap.EdgeMode
	Workers       int // per remap; <= 0 uses GOMAXPROCS

	// SquareSource resamples non-square sources to a square first, so the
	// coin is not stretched into an ellipse.
	SquareSource bool

	Ring     models.RingOptions
	Mesh     MeshKind
	CSGCells int // marching cubes resolution for MeshCSG
}

// DefaultConfig returns a 1024x512 texture on the default ring with
// nearest sampling and edge clamping. Sources are left unset.
func DefaultConfig() Config {
	return Config{
		Width:    remap.DefaultWidth,
		Height:   remap.DefaultHeight,
		Filter:   remap.FilterNearest,
		Edge:     remap.EdgeClamp,
		Ring:     models.DefaultRingOptions(),
		Mesh:     MeshAnalytic,
		CSGCells: models.DefaultCSGCells,
	}
}

// ErrNoSource is returned when Config.Diffuse is nil.
var ErrNoSource = errors.New("no diffuse source")

// Validate checks everything that can be checked before loading sources.
func (c Config) Validate() error {
	if c.Diffuse == nil {
		return ErrNoSource
	}
	if c.Width <= 0 {
		return &remap.InvalidConfigurationError{Field: "width", Value: c.Width, Reason: "must be positive"}
	}
	if c.Height <= 0 {
		return &remap.InvalidConfigurationError{Field: "height", Value: c.Height, Reason: "must be positive"}
	}
	if c.Filter != remap.FilterNearest && c.Filter != remap.FilterBilinear {
		return &remap.InvalidConfigurationError{Field: "filter", Value: c.Filter, Reason: "unknown filter"}
	}
	if c.Edge != remap.EdgeClamp && c.Edge != remap.EdgeTransparent {
		return &remap.InvalidConfigurationError{Field: "edge", Value: c.Edge, Reason: "unknown edge mode"}
	}
	if c.Mesh != MeshAnalytic && c.Mesh != MeshCSG {
		return fmt.Errorf("unknown mesh kind %v", c.Mesh)
	}
	if err := c.Ring.Validate(); err != nil {
		return fmt.Errorf("ring: %w", err)
	}
	return nil
}
