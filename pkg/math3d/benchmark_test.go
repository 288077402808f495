package math3d

import (
	"math"
	"testing"
)

// The matrices a viewer frame builds: the ring's spin, its normal matrix
// and the orbit camera's view projection.
var (
	benchSpin = RotateY(math.Pi / 4)
	benchEye  = V3(0, 4*math.Cos(math.Pi/2.5), 4*math.Sin(math.Pi/2.5))
	benchProj = Perspective(0.8, 4.0/3, 0.1, 100)
)

func BenchmarkMat4Mul(b *testing.B) {
	view := LookAt(benchEye, Zero3(), Up())
	for b.Loop() {
		_ = benchProj.Mul(view).Mul(benchSpin)
	}
}

func BenchmarkMat4MulVec4(b *testing.B) {
	vp := benchProj.Mul(LookAt(benchEye, Zero3(), Up()))
	p := V4(1, 0.5, 0, 1)
	for b.Loop() {
		_ = vp.MulVec4(p)
	}
}

func BenchmarkMat4MulVec3(b *testing.B) {
	p := V3(0.9, -0.5, 0)
	for b.Loop() {
		_ = benchSpin.MulVec3(p)
	}
}

func BenchmarkMat4Inverse(b *testing.B) {
	m := Translate(V3(0, 0.5, 0)).Mul(benchSpin)
	for b.Loop() {
		_ = m.Inverse()
	}
}

func BenchmarkNormalMatrix(b *testing.B) {
	for b.Loop() {
		_ = benchSpin.NormalMatrix()
	}
}

func BenchmarkVec3Normalize(b *testing.B) {
	n := V3(0.7, 0.1, 0.7)
	for b.Loop() {
		_ = n.Normalize()
	}
}

func BenchmarkVec3Cross(b *testing.B) {
	n, t := V3(1, 0, 0), V3(0, 0, -1)
	for b.Loop() {
		_ = n.Cross(t)
	}
}

func BenchmarkCylindrical(b *testing.B) {
	for b.Loop() {
		_ = Cylindrical(1, 0.3, 0.5).AngleXZ()
	}
}

func BenchmarkViewProjection(b *testing.B) {
	for b.Loop() {
		_ = Perspective(0.8, 4.0/3, 0.1, 100).Mul(LookAt(benchEye, Zero3(), Up()))
	}
}
