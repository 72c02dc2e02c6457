package epimesh

import "math"

// Affine is a planar affine map with coefficients (a, b, c, d, e, f),
// standing for the augmented matrix
//
//	| a c e |
//	| b d f |
//	| 0 0 1 |
//
// Products compose right to left: (A * B) applies B first.
type Affine struct {
	N0, N1, N2, N3, N4, N5 float64
}

// Identity is the identity map.
var Identity = Affine{1, 0, 0, 1, 0, 0}

// FlipY mirrors the y axis, converting between y-up mesh coordinates and
// y-down drawing coordinates.
var FlipY = Affine{1, 0, 0, -1, 0, 0}

// Scale scales x and y separately.
func Scale(x, y float64) Affine {
	return Affine{x, 0, 0, y, 0, 0}
}

// Translate moves by v.
func Translate(v Vec2) Affine {
	return Affine{1, 0, 0, 1, v.X, v.Y}
}

// Rotate rotates counter-clockwise by th radians about the origin.
func Rotate(th float64) Affine {
	sin, cos := math.Sincos(th)
	return Affine{cos, sin, -sin, cos, 0, 0}
}

// RotateAbout rotates counter-clockwise by th radians about center.
func RotateAbout(th float64, center Point) Affine {
	c := Vec2(center)
	return Translate(c.Negate()).ThenRotate(th).ThenTranslate(c)
}

func (aff Affine) Mul(o Affine) Affine {
	return Affine{
		aff.N0*o.N0 + aff.N2*o.N1,
		aff.N1*o.N0 + aff.N3*o.N1,
		aff.N0*o.N2 + aff.N2*o.N3,
		aff.N1*o.N2 + aff.N3*o.N3,
		aff.N0*o.N4 + aff.N2*o.N5 + aff.N4,
		aff.N1*o.N4 + aff.N3*o.N5 + aff.N5,
	}
}

// ThenRotate returns aff followed by Rotate(th).
func (aff Affine) ThenRotate(th float64) Affine { return Rotate(th).Mul(aff) }

// ThenScale returns aff followed by Scale(x, y).
func (aff Affine) ThenScale(x, y float64) Affine { return Scale(x, y).Mul(aff) }

// ThenTranslate returns aff followed by Translate(v).
func (aff Affine) ThenTranslate(v Vec2) Affine {
	aff.N4 += v.X
	aff.N5 += v.Y
	return aff
}

func (aff Affine) Determinant() float64 {
	return aff.N0*aff.N3 - aff.N1*aff.N2
}

// Invert returns the inverse map. It produces NaN coefficients when the
// determinant is zero.
func (aff Affine) Invert() Affine {
	invDet := 1 / aff.Determinant()
	return Affine{
		+invDet * aff.N3,
		-invDet * aff.N1,
		-invDet * aff.N2,
		+invDet * aff.N0,
		+invDet * (aff.N2*aff.N5 - aff.N3*aff.N4),
		+invDet * (aff.N1*aff.N4 - aff.N0*aff.N5),
	}
}

// Apply maps pt.
func (aff Affine) Apply(pt Point) Point {
	return Point{
		X: aff.N0*pt.X + aff.N2*pt.Y + aff.N4,
		Y: aff.N1*pt.X + aff.N3*pt.Y + aff.N5,
	}
}

// Transform maps every vertex position of m through aff. Maps with a
// negative determinant mirror the mesh and flip the sign of face areas;
// singular maps are rejected with [ErrBadArgument]. Derived geometry is
// stale afterwards.
func (m *Mesh) Transform(aff Affine) error {
	det := aff.Determinant()
	if det == 0 || math.IsNaN(det) || math.IsInf(det, 0) {
		return precondition(ErrBadArgument, "transform with determinant %g", det)
	}
	for i := range m.verts {
		if m.vertAlive[i] {
			m.verts[i].Pos = aff.Apply(m.verts[i].Pos)
		}
	}
	m.stale = true
	return nil
}
