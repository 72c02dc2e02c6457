package epimesh

import "math"

// parallelTol is the relative tolerance below which two directions are
// treated as parallel by [Line.RayCrossing].
const parallelTol = 1e-12

// Line represents a line segment.
type Line struct {
	/// The line's start point.
	P0 Point
	/// The line's end point.
	P1 Point
}

// Length returns the length of the line.
func (l Line) Length() float64 {
	return l.P1.Sub(l.P0).Hypot()
}

// BoundingBox returns the smallest rectangle enclosing the segment, with
// non-negative width and height.
func (l Line) BoundingBox() Rect {
	return NewRectFromPoints(l.P0, l.P1)
}

// Pnt2Line returns the distance from pnt to the segment from start to end
// and the nearest point on that segment. The projection parameter is clamped
// to [0, 1]; when it is clamped the nearest point is exactly start or end.
//
// A zero-length segment is rejected with [ErrZeroLength].
func Pnt2Line(pnt, start, end Point) (float64, Point, error) {
	lineVec := Vector(start, end)
	pntVec := Vector(start, pnt)
	lineLen := lineVec.Hypot()
	lineUnit, err := lineVec.Unit()
	if err != nil {
		return 0, Point{}, err
	}
	t := lineUnit.Dot(pntVec.Mul(1.0 / lineLen))
	var nearest Point
	switch {
	case t <= 0:
		nearest = start
	case t >= 1:
		nearest = end
	default:
		nearest = start.Translate(lineVec.Mul(t))
	}
	return Distance(nearest, pnt), nearest, nil
}

// Crossing describes where a ray meets the infinite line through a segment.
type Crossing struct {
	// T is the segment parameter: the crossing lies on the segment
	// when 0 ≤ T ≤ 1.
	T float64
	// S is the ray parameter, in multiples of the ray direction.
	S float64
	// Pt is the crossing point.
	Pt Point
}

// RayCrossing computes where the ray origin + s·dir meets the line through
// l. It solves the 2×2 linear system
//
//	P0 + t·(P1−P0) = origin + s·dir
//
// and fails with [ErrParallel] when the two directions are parallel (or
// either is degenerate), rather than dividing by a near-zero determinant.
func (l Line) RayCrossing(origin Point, dir Vec2) (Crossing, error) {
	d := l.P1.Sub(l.P0)
	denom := Xprod2D(d, dir)
	if scale := d.Hypot() * dir.Hypot(); scale == 0 || math.Abs(denom) <= parallelTol*scale {
		return Crossing{}, degeneracy(ErrParallel, "segment %v−%v, ray %v+s·%v", l.P0, l.P1, origin, dir)
	}
	w := origin.Sub(l.P0)
	t := Xprod2D(w, dir) / denom
	s := Xprod2D(w, d) / denom
	return Crossing{
		T:  t,
		S:  s,
		Pt: l.P0.Translate(d.Mul(t)),
	}, nil
}
