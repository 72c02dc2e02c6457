package epimesh

import (
	"slices"

	"github.com/plan-systems/klog"
)

// PutResult reports the elements created by [Mesh.PutVert].
type PutResult struct {
	// Vert is the inserted vertex.
	Vert VertID
	// Edges holds one new half-edge per split parallel, each running from
	// Vert to the original target.
	Edges []EdgeID
	// Opposites holds one new half-edge per split opposite, each running
	// from the original target to Vert. It is empty for a boundary edge.
	Opposites []EdgeID
}

// Edge returns the single new half-edge of a planar split, or NoEdge.
func (r PutResult) Edge() EdgeID {
	if len(r.Edges) == 0 {
		return NoEdge
	}
	return r.Edges[0]
}

// Opposite returns the single new opposite half-edge of a planar split, or
// NoEdge if the split edge was a boundary edge.
func (r PutResult) Opposite() EdgeID {
	if len(r.Opposites) == 0 {
		return NoEdge
	}
	return r.Opposites[0]
}

// PutVert inserts a new vertex at pos, splitting e together with every
// half-edge parallel or opposite to it. With s, t the endpoints of e and oe
// its opposite:
//
//	s    e    t            s    e       ne   t
//	  ------>                ------   ----->
//	* <------ *    ==>     * <----- * ------ *
//	    oe                     oe   nv   noe
//
// Existing half-edges keep their ids and now end (or start) at the new
// vertex nv; the returned half-edges are the ones between nv and t. New
// half-edges copy the attributes and face of the half-edge they were split
// from; the new vertex copies the attributes of s.
//
// pos is not checked to lie on the segment. Derived geometry is stale
// afterwards.
func (m *Mesh) PutVert(e EdgeID, pos Point) (PutResult, error) {
	if !m.HasEdge(e) {
		return PutResult{}, precondition(ErrEdgeNotFound, "put vertex on edge %d", e)
	}
	if pos.IsNaN() || pos.IsInf() {
		return PutResult{}, precondition(ErrBadArgument, "put vertex at %v", pos)
	}
	h := m.edges[e]
	s, t := h.Srce, h.Trgt
	parallels := slices.Clone(m.pairs[vertPair{s, t}])
	opposites := slices.Clone(m.pairs[vertPair{t, s}])

	nv := m.copyVert(s, pos)
	res := PutResult{Vert: nv}
	for _, p := range parallels {
		m.setEnds(p, s, nv)
		res.Edges = append(res.Edges, m.copyEdge(p, nv, t))
	}
	for _, o := range opposites {
		m.setEnds(o, nv, s)
		res.Opposites = append(res.Opposites, m.copyEdge(o, t, nv))
	}
	klog.V(2).Infof("epimesh: put vertex %d at %v on edge %d (%d→%d)", nv, pos, e, s, t)
	return res, nil
}

// CollapseOptions controls [Mesh.CollapseEdge].
type CollapseOptions struct {
	// AllowTwoSided permits a collapse that leaves a face with fewer
	// than three sides.
	AllowTwoSided bool
}

// CollapseEdge merges the endpoints of e into the one with the smaller id,
// placed at their midpoint. Every half-edge referencing the other endpoint
// is rewired to the survivor, the half-edges that become degenerate (e, its
// parallels and opposites) are removed, as are faces left without
// half-edges. It returns the surviving vertex.
//
// Unless opts.AllowTwoSided is set, the collapse fails with [ErrTwoSided]
// before changing anything if it would reduce a polygonal face to fewer than
// three sides. Derived geometry is stale afterwards.
func (m *Mesh) CollapseEdge(e EdgeID, opts CollapseOptions) (VertID, error) {
	if !m.HasEdge(e) {
		return NoVert, precondition(ErrEdgeNotFound, "collapse edge %d", e)
	}
	h := m.edges[e]
	keep, drop := min(h.Srce, h.Trgt), max(h.Srce, h.Trgt)

	removed := make(map[FaceID]int)
	for _, c := range m.EdgesBetween(keep, drop) {
		removed[m.edges[c].Face]++
	}
	for f, n := range removed {
		sides := m.NumSides(f)
		if sides < 3 || sides-n >= 3 {
			continue
		}
		if !opts.AllowTwoSided {
			return NoVert, degeneracy(ErrTwoSided, "collapsing edge %d would leave face %d with %d sides", e, f, sides-n)
		}
		klog.Warningf("epimesh: collapsing edge %d leaves face %d with %d sides", e, f, sides-n)
	}

	pos := m.verts[keep].Pos.Midpoint(m.verts[drop].Pos)
	m.mergeVerts(keep, drop, pos)
	klog.V(2).Infof("epimesh: collapsed edge %d, vertex %d merged into %d", e, drop, keep)
	return keep, nil
}

// mergeVerts moves keep to pos, rewires every half-edge of drop to keep and
// removes drop, the half-edges that became loops, and the faces that lost
// all their half-edges. Preconditions are the caller's.
func (m *Mesh) mergeVerts(keep, drop VertID, pos Point) {
	m.verts[keep].Pos = pos
	touched := make(map[FaceID]bool)
	for _, e := range m.VertEdges(drop) {
		h := m.edges[e]
		s, t := h.Srce, h.Trgt
		if s == drop {
			s = keep
		}
		if t == drop {
			t = keep
		}
		m.setEnds(e, s, t)
		if s == t {
			touched[h.Face] = true
			m.removeEdge(e)
		}
	}
	m.removeVert(drop)
	for _, f := range sortedKeys(touched) {
		if m.HasFace(f) && m.NumSides(f) == 0 {
			m.removeFace(f)
		}
	}
}

// SplitVert creates a copy of v displaced by separation towards the
// centroid of face, and rewires the half-edges in rewire from v to the copy.
// With recenter, the displacement is shared: the copy moves by half of it
// towards the centroid and v by half of it away. It returns the new vertex.
//
// The rewired half-edges must all touch v. Rings are not repaired, so faces
// may be left open; SplitVert is meant to be composed with edits that close
// them again. The face centroid is read from the derived geometry, which
// must be current.
func (m *Mesh) SplitVert(v VertID, face FaceID, rewire []EdgeID, separation float64, recenter bool) (VertID, error) {
	if !m.HasVert(v) {
		return NoVert, precondition(ErrVertNotFound, "split vertex %d", v)
	}
	for _, e := range rewire {
		if !m.HasEdge(e) {
			return NoVert, precondition(ErrEdgeNotFound, "rewire edge %d", e)
		}
		if h := m.edges[e]; h.Srce != v && h.Trgt != v {
			return NoVert, precondition(ErrNotIncident, "edge %d (%d→%d), vertex %d", e, h.Srce, h.Trgt, v)
		}
	}
	fg, err := m.FaceGeom(face)
	if err != nil {
		return NoVert, err
	}
	pos := m.verts[v].Pos
	u, err := fg.Centroid.Sub(pos).Unit()
	if err != nil {
		return NoVert, degeneracy(ErrCoincident, "vertex %d sits on the centroid of face %d", v, face)
	}
	shift := u.Mul(separation)

	var nv VertID
	if recenter {
		nv = m.copyVert(v, pos.Translate(shift.Div(2)))
		m.verts[v].Pos = pos.Translate(shift.Div(-2))
	} else {
		nv = m.copyVert(v, pos.Translate(shift))
	}
	for _, e := range rewire {
		h := m.edges[e]
		s, t := h.Srce, h.Trgt
		if s == v {
			s = nv
		}
		if t == v {
			t = nv
		}
		m.setEnds(e, s, t)
	}
	klog.V(2).Infof("epimesh: split vertex %d into %d towards face %d, %d edges rewired", v, nv, face, len(rewire))
	return nv, nil
}

// ExtendEdge moves both endpoints of e apart along the edge direction by
// total/2 each. A negative total shortens the edge.
func (m *Mesh) ExtendEdge(e EdgeID, total float64) error {
	seg, err := m.Segment(e)
	if err != nil {
		return err
	}
	u, err := seg.P1.Sub(seg.P0).Unit()
	if err != nil {
		return degeneracy(ErrCoincident, "edge %d has zero length", e)
	}
	ext := u.Mul(total / 2)
	h := m.edges[e]
	m.verts[h.Srce].Pos = seg.P0.Translate(ext.Negate())
	m.verts[h.Trgt].Pos = seg.P1.Translate(ext)
	m.stale = true
	return nil
}

func sortedKeys[K ~int, V any](mp map[K]V) []K {
	keys := make([]K, 0, len(mp))
	for k := range mp {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
