package epimesh

import (
	"cmp"
	"math"
	"slices"

	"github.com/plan-systems/klog"
)

// ResolveLocal reconnects the neighbors of mid, a vertex lying on the
// straight run of half-edges end1–mid–end2, so that they attach along that
// run instead of all meeting at mid. It is the second half of a T3 swap,
// after [Mesh.InsertIntoEdge] has merged a foreign vertex into the run.
//
// Every neighbor n of mid other than end1 and end2 is projected on the unit
// vector u from end1 to end2, s(n) = (n−mid)·u. The neighbor with the
// smallest |s| stays joined to mid. The others are spliced one at a time,
// on each side of mid from the outermost inwards:
//
//  1. a vertex w is put on the run between mid and the previous splice
//     point (end2 on the positive side, end1 on the negative side), at
//     distance |s(n)| from mid clamped to keep dSep from both ends;
//  2. the half-edges joining mid and n are rewired to join w and n;
//  3. a face that owned one of them and already has a piece of run between
//     mid and w hands that piece over to the face on the other side of
//     n–w, or drops it if there is none; a face that had no such piece
//     gets a new one.
//
// ResolveLocal either completes or leaves the mesh untouched. It fails with
// [ErrNeighborOrder] when the fan of neighbors around mid does not follow
// their order along the run, and with [ErrCrowded] when a splice point
// cannot be kept dSep away from both of its ends.
func (m *Mesh) ResolveLocal(end1, end2, mid VertID, dSep float64) error {
	for _, v := range []VertID{end1, end2, mid} {
		if !m.HasVert(v) {
			return precondition(ErrVertNotFound, "resolve around vertex %d", v)
		}
	}
	if !m.AdjacencyCheck(mid, end1) || !m.AdjacencyCheck(mid, end2) {
		return precondition(ErrNotIncident, "vertex %d is not between %d and %d", mid, end1, end2)
	}
	u, err := m.verts[end2].Pos.Sub(m.verts[end1].Pos).Unit()
	if err != nil {
		return err
	}
	if dSep < 0 {
		return precondition(ErrBadArgument, "negative separation %g", dSep)
	}

	type proj struct {
		v VertID
		s float64
	}
	origin := m.verts[mid].Pos
	var projs []proj
	for _, n := range m.Neighbors(mid) {
		if n == end1 || n == end2 {
			continue
		}
		projs = append(projs, proj{n, m.verts[n].Pos.Sub(origin).Dot(u)})
	}
	if len(projs) < 2 {
		return nil
	}
	stay := slices.MinFunc(projs, func(a, b proj) int {
		if c := cmp.Compare(math.Abs(a.s), math.Abs(b.s)); c != 0 {
			return c
		}
		return int(a.v - b.v)
	})
	var pos, neg []proj
	for _, p := range projs {
		switch {
		case p.v == stay.v:
		case p.s >= 0:
			pos = append(pos, p)
		default:
			neg = append(neg, p)
		}
	}
	outermost := func(a, b proj) int {
		if c := cmp.Compare(math.Abs(b.s), math.Abs(a.s)); c != 0 {
			return c
		}
		return int(a.v - b.v)
	}
	slices.SortFunc(pos, outermost)
	slices.SortFunc(neg, outermost)

	c := m.Clone()
	for _, side := range []struct {
		ps   []proj
		next VertID
		dir  Vec2
	}{{pos, end2, u}, {neg, end1, u.Negate()}} {
		next := side.next
		for _, p := range side.ps {
			w, err := c.spliceNeighbor(mid, next, p.v, side.dir, math.Abs(p.s), dSep)
			if err != nil {
				return err
			}
			next = w
		}
	}
	*m = *c
	klog.V(2).Infof("epimesh: resolved %d neighbors of vertex %d along %d–%d", len(pos)+len(neg), mid, end1, end2)
	return nil
}

// spliceNeighbor moves the attachment of n from mid to a new vertex on the
// run between mid and next, and returns that vertex.
func (m *Mesh) spliceNeighbor(mid, next, n VertID, dir Vec2, s, dSep float64) (VertID, error) {
	run := m.EdgesBetween(mid, next)
	if len(run) == 0 {
		return NoVert, invariant(ErrDanglingRef, "no half-edge between %d and %d", mid, next)
	}
	origin := m.verts[mid].Pos
	span := m.verts[next].Pos.Sub(origin).Hypot()
	if span < 2*dSep {
		return NoVert, degeneracy(ErrCrowded, "run %d–%d of length %g cannot take neighbor %d", mid, next, span, n)
	}
	s = min(max(s, dSep), span-dSep)
	pr, err := m.PutVert(run[0], origin.Translate(dir.Mul(s)))
	if err != nil {
		return NoVert, err
	}
	w := pr.Vert

	hasPiece := func(f FaceID) bool {
		for _, e := range m.EdgesBetween(mid, w) {
			if m.edges[e].Face == f {
				return true
			}
		}
		return false
	}
	var xs, ys []EdgeID
	for _, e := range m.EdgesBetween(mid, n) {
		if hasPiece(m.edges[e].Face) {
			xs = append(xs, e)
		} else {
			ys = append(ys, e)
		}
	}
	if len(xs) > 1 || len(ys) > 1 {
		return NoVert, degeneracy(ErrNeighborOrder, "neighbor %d of vertex %d", n, mid)
	}
	for _, e := range m.EdgesBetween(mid, n) {
		h := m.edges[e]
		if h.Srce == mid {
			m.setEnds(e, w, h.Trgt)
		} else {
			m.setEnds(e, h.Srce, w)
		}
	}

	piece := NoEdge
	if len(xs) == 1 {
		fx := m.edges[xs[0]].Face
		for _, e := range m.EdgesBetween(mid, w) {
			if m.edges[e].Face == fx {
				piece = e
			}
		}
	}
	switch {
	case len(xs) == 1 && len(ys) == 1:
		m.setFace(piece, m.edges[ys[0]].Face)
	case len(xs) == 1:
		m.removeEdge(piece)
	case len(ys) == 1:
		y := m.edges[ys[0]]
		if y.Trgt == w {
			// y ran n→mid: the face continues w→mid.
			m.copyEdge(ys[0], w, mid)
		} else {
			m.copyEdge(ys[0], mid, w)
		}
	}
	return w, nil
}
