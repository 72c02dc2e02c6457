package epimesh

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats/scalar"
)

// vectorPrec is the number of decimal digits kept by [Vector]. Rounding
// suppresses floating-point noise in downstream equality checks.
const vectorPrec = 5

type Vec2 struct {
	X float64
	Y float64
}

// Vec returns the vector ⟨x, y⟩.
func Vec(x, y float64) Vec2 {
	return Vec2{
		X: x,
		Y: y,
	}
}

// Vector returns the vector from b to e, that is e−b, with both
// components rounded to 5 decimal digits.
func Vector(b, e Point) Vec2 {
	return Vec2{
		X: scalar.Round(e.X-b.X, vectorPrec),
		Y: scalar.Round(e.Y-b.Y, vectorPrec),
	}
}

// Distance returns the length of [Vector](p0, p1).
func Distance(p0, p1 Point) float64 {
	return Vector(p0, p1).Hypot()
}

// Xprod2D returns the z component of the cross product of v1 and v2 lifted
// to 3D. Its sign tells on which side of the directed line v1 the vector v2
// falls: positive to the left, negative to the right, zero when collinear.
func Xprod2D(v1, v2 Vec2) float64 {
	return v1.X*v2.Y - v1.Y*v2.X
}

func (v Vec2) String() string {
	return fmt.Sprintf("⟨%g, %g⟩", v.X, v.Y)
}

// Dot returns the dot product of v and o.
func (v Vec2) Dot(o Vec2) float64 {
	return v.X*o.X + v.Y*o.Y
}

// Hypot returns the magnitude of the vector.
func (v Vec2) Hypot() float64 {
	return math.Hypot(v.X, v.Y)
}

// Hypot2 returns the squared magnitude of the vector.
//
// This function is more efficient than squaring the result of [Vec2.Hypot].
func (v Vec2) Hypot2() float64 {
	return v.Dot(v)
}

// Unit returns a vector of magnitude 1.0 with the same angle as v. It fails
// with [ErrZeroLength] if v has magnitude 0, instead of producing NaNs.
func (v Vec2) Unit() (Vec2, error) {
	h := v.Hypot()
	if h == 0 {
		return Vec2{}, precondition(ErrZeroLength, "unit of %v", v)
	}
	return v.Div(h), nil
}

// Perp returns v rotated by 90° counter-clockwise.
func (v Vec2) Perp() Vec2 {
	return Vec2{
		X: -v.Y,
		Y: v.X,
	}
}

// Add adds two vectors and returns the resulting vector.
func (v Vec2) Add(o Vec2) Vec2 {
	return Vec2{
		X: v.X + o.X,
		Y: v.Y + o.Y,
	}
}

// Sub subtracts two vectors and returns the resulting vector.
func (v Vec2) Sub(o Vec2) Vec2 {
	return Vec2{
		X: v.X - o.X,
		Y: v.Y - o.Y,
	}
}

func (v Vec2) Mul(f float64) Vec2 {
	return Vec2{
		X: v.X * f,
		Y: v.Y * f,
	}
}

func (v Vec2) Div(f float64) Vec2 {
	return Vec2{
		X: v.X / f,
		Y: v.Y / f,
	}
}

// Negate returns a new vector with the signs of x and y flipped.
func (v Vec2) Negate() Vec2 {
	return Vec2{
		X: -v.X,
		Y: -v.Y,
	}
}
