package epimesh

import (
	"fmt"
	"math"
	"slices"

	"github.com/plan-systems/klog"
)

// SwapDetection returns the vertices, other than the endpoints of e, lying
// strictly inside the bounding box of e inflated by epsilon in every
// direction. It is the broad phase of proximity detection. The result is in
// ascending id order.
func (m *Mesh) SwapDetection(e EdgeID, epsilon float64) ([]VertID, error) {
	if !m.HasEdge(e) {
		return nil, precondition(ErrEdgeNotFound, "detect around edge %d", e)
	}
	if epsilon < 0 {
		return nil, precondition(ErrBadArgument, "negative epsilon %g", epsilon)
	}
	return NewProximityIndex(m, nil).swapCandidates(m, e, epsilon), nil
}

func (ix *ProximityIndex) swapCandidates(m *Mesh, e EdgeID, epsilon float64) []VertID {
	h := m.edges[e]
	seg, _ := m.Segment(e)
	box := seg.BoundingBox().Inflate(epsilon, epsilon)
	return slices.DeleteFunc(ix.InRect(m, box), func(v VertID) bool {
		return v == h.Srce || v == h.Trgt
	})
}

// ZoneDetection returns the boundary vertices, other than the endpoints of
// e, closer to either endpoint than √(L²/4 + dMin²), with L the length of e.
// The result is in ascending id order.
func (m *Mesh) ZoneDetection(e EdgeID, dMin float64) ([]VertID, error) {
	if !m.HasEdge(e) {
		return nil, precondition(ErrEdgeNotFound, "detect around edge %d", e)
	}
	if dMin < 0 {
		return nil, precondition(ErrBadArgument, "negative dMin %g", dMin)
	}
	ix := NewProximityIndex(m, m.boundaryFilter())
	return ix.zoneCandidates(m, e, dMin), nil
}

func (ix *ProximityIndex) zoneCandidates(m *Mesh, e EdgeID, dMin float64) []VertID {
	h := m.edges[e]
	seg, _ := m.Segment(e)
	l := seg.Length()
	r2 := l*l/4 + dMin*dMin
	r := math.Sqrt(r2)
	var out []VertID
	for _, end := range []Point{seg.P0, seg.P1} {
		for _, v := range ix.Within(end, r) {
			if v == h.Srce || v == h.Trgt {
				continue
			}
			if m.verts[v].Pos.DistanceSquared(end) < r2 {
				out = append(out, v)
			}
		}
	}
	slices.Sort(out)
	return slices.Compact(out)
}

func (m *Mesh) boundaryFilter() func(Vertex) bool {
	bv := m.BoundaryVerts()
	return func(v Vertex) bool {
		_, ok := slices.BinarySearch(bv, v.ID)
		return ok
	}
}

// T3Case is the position of a vertex's projection relative to an edge.
type T3Case int

const (
	// CaseSource: the projection falls before the source.
	CaseSource T3Case = 1
	// CaseTarget: the projection falls past the target.
	CaseTarget T3Case = 2
	// CaseInterior: the projection falls on the edge.
	CaseInterior T3Case = 3
)

func (c T3Case) String() string {
	switch c {
	case CaseSource:
		return "case 1 (source)"
	case CaseTarget:
		return "case 2 (target)"
	case CaseInterior:
		return "case 3 (interior)"
	default:
		return fmt.Sprintf("T3Case(%d)", int(c))
	}
}

// Classification is the result of [Mesh.ClassifyT3].
type Classification struct {
	Case T3Case
	// Nearest is the point of the edge the vertex is resolved to.
	Nearest Point
	// Distance is the distance from the vertex to Nearest.
	Distance float64
}

// ClassifyT3 projects v onto e. With s the source, u the unit vector and L
// the length of e, the projection parameter is t = (v−s)·u / L:
//
//   - t < 0 is [CaseSource], and Nearest is s + dSep·u;
//   - t > 1 is [CaseTarget], and Nearest is the target − dSep·u;
//   - otherwise it is [CaseInterior], and Nearest is the point of the
//     segment closest to v, as found by [Pnt2Line].
//
// The edge vector is read from the derived geometry, which must be current.
func (m *Mesh) ClassifyT3(e EdgeID, v VertID, dSep float64) (Classification, error) {
	if !m.HasVert(v) {
		return Classification{}, precondition(ErrVertNotFound, "classify vertex %d", v)
	}
	g, err := m.EdgeGeom(e)
	if err != nil {
		return Classification{}, err
	}
	h := m.edges[e]
	if v == h.Srce || v == h.Trgt {
		return Classification{}, precondition(ErrBadArgument, "vertex %d is an endpoint of edge %d", v, e)
	}
	if g.Length == 0 {
		return Classification{}, precondition(ErrZeroLength, "edge %d", e)
	}
	s := m.verts[h.Srce].Pos
	p := m.verts[v].Pos
	t := p.Sub(s).Dot(g.Unit) / g.Length

	var c Classification
	switch {
	case t < 0:
		c.Case = CaseSource
		c.Nearest = s.Translate(g.Unit.Mul(dSep))
	case t > 1:
		c.Case = CaseTarget
		c.Nearest = m.verts[h.Trgt].Pos.Translate(g.Unit.Mul(-dSep))
	default:
		c.Case = CaseInterior
		if _, c.Nearest, err = Pnt2Line(p, s, m.verts[h.Trgt].Pos); err != nil {
			return Classification{}, err
		}
	}
	c.Distance = Distance(p, c.Nearest)
	return c, nil
}

// PerturbT3 pushes v1 and v2 apart, perpendicular to the line joining them.
// Both are placed at distance dSep from their midpoint, v1 on the
// counter-clockwise side of the direction from v1 to v2.
func (m *Mesh) PerturbT3(v1, v2 VertID, dSep float64) error {
	if !m.HasVert(v1) {
		return precondition(ErrVertNotFound, "perturb vertex %d", v1)
	}
	if !m.HasVert(v2) {
		return precondition(ErrVertNotFound, "perturb vertex %d", v2)
	}
	p1, p2 := m.verts[v1].Pos, m.verts[v2].Pos
	mid := p1.Midpoint(p2)
	u, err := p2.Sub(mid).Unit()
	if err != nil {
		return degeneracy(ErrCoincident, "vertices %d and %d", v1, v2)
	}
	perp := u.Perp().Mul(dSep)
	m.verts[v1].Pos = mid.Translate(perp)
	m.verts[v2].Pos = mid.Translate(perp.Negate())
	m.stale = true
	klog.V(2).Infof("epimesh: perturbed vertices %d and %d by %g", v1, v2, dSep)
	return nil
}

// AdjacencyCheck reports whether a half-edge joins v1 and v2 in either
// direction.
func (m *Mesh) AdjacencyCheck(v1, v2 VertID) bool {
	return len(m.pairs[vertPair{v1, v2}]) > 0 || len(m.pairs[vertPair{v2, v1}]) > 0
}

// AdjacentEnd returns the endpoint of e joined to v by a half-edge,
// preferring the source, or NoVert.
func (m *Mesh) AdjacentEnd(e EdgeID, v VertID) VertID {
	if !m.HasEdge(e) {
		return NoVert
	}
	h := m.edges[e]
	switch {
	case m.AdjacencyCheck(v, h.Srce):
		return h.Srce
	case m.AdjacencyCheck(v, h.Trgt):
		return h.Trgt
	default:
		return NoVert
	}
}

// MergeUnconnected merges v1 and v2 into the one with the smaller id, placed
// at their midpoint. If a half-edge joins them it is collapsed with
// [Mesh.CollapseEdge]; otherwise the vertices are merged as if a joining edge
// had been added and collapsed. Vertices that are not joined but share a
// face are rejected with [ErrSharedFace], since merging them would pinch
// the face ring.
func (m *Mesh) MergeUnconnected(v1, v2 VertID) (VertID, error) {
	if !m.HasVert(v1) {
		return NoVert, precondition(ErrVertNotFound, "merge vertex %d", v1)
	}
	if !m.HasVert(v2) {
		return NoVert, precondition(ErrVertNotFound, "merge vertex %d", v2)
	}
	if v1 == v2 {
		return NoVert, precondition(ErrBadArgument, "merge vertex %d with itself", v1)
	}
	if between := m.EdgesBetween(v1, v2); len(between) > 0 {
		return m.CollapseEdge(between[0], CollapseOptions{AllowTwoSided: m.cfg.Topology.AllowTwoSided})
	}
	f1 := m.VertFaces(v1)
	for _, f := range m.VertFaces(v2) {
		if _, ok := slices.BinarySearch(f1, f); ok {
			return NoVert, degeneracy(ErrSharedFace, "vertices %d and %d share face %d", v1, v2, f)
		}
	}
	keep, drop := min(v1, v2), max(v1, v2)
	m.mergeVerts(keep, drop, m.verts[keep].Pos.Midpoint(m.verts[drop].Pos))
	klog.V(2).Infof("epimesh: merged unconnected vertex %d into %d", drop, keep)
	return keep, nil
}

// InsertIntoEdge splits e at pos with [Mesh.PutVert] and merges v into the
// new vertex, which keeps pos. It returns the merged vertex.
//
// v must not be an endpoint of e, must not be joined to either endpoint,
// and must not share a face with e or its opposites; otherwise the mesh is
// left untouched and [ErrAdjacent] or [ErrSharedFace] is returned.
func (m *Mesh) InsertIntoEdge(e EdgeID, v VertID, pos Point) (VertID, error) {
	if !m.HasEdge(e) {
		return NoVert, precondition(ErrEdgeNotFound, "insert into edge %d", e)
	}
	if !m.HasVert(v) {
		return NoVert, precondition(ErrVertNotFound, "insert vertex %d", v)
	}
	h := m.edges[e]
	if v == h.Srce || v == h.Trgt {
		return NoVert, precondition(ErrBadArgument, "vertex %d is an endpoint of edge %d", v, e)
	}
	if end := m.AdjacentEnd(e, v); end != NoVert {
		return NoVert, degeneracy(ErrAdjacent, "vertex %d is joined to %d, an endpoint of edge %d", v, end, e)
	}
	vf := m.VertFaces(v)
	for _, c := range m.EdgesBetween(h.Srce, h.Trgt) {
		f := m.edges[c].Face
		if _, ok := slices.BinarySearch(vf, f); ok {
			return NoVert, degeneracy(ErrSharedFace, "vertex %d and edge %d share face %d", v, e, f)
		}
	}

	pr, err := m.PutVert(e, pos)
	if err != nil {
		return NoVert, err
	}
	m.mergeVerts(pr.Vert, v, pos)
	klog.V(2).Infof("epimesh: inserted vertex %d into edge %d as %d", v, e, pr.Vert)
	return pr.Vert, nil
}

// T3Action is what [Mesh.T3Swap] did.
type T3Action int

const (
	// T3None: the vertex was farther than DMin from the edge, or already
	// joined to the end it approaches and DSep away from it.
	T3None T3Action = iota
	// T3Perturbed: the vertex and the endpoint it is joined to were
	// pushed apart.
	T3Perturbed
	// T3Inserted: the vertex was inserted into the edge and its
	// neighbors reconnected along it.
	T3Inserted
	// T3Merged: the vertex met the edge at one of its ends and was merged
	// into that endpoint.
	T3Merged
)

func (a T3Action) String() string {
	switch a {
	case T3None:
		return "none"
	case T3Perturbed:
		return "perturbed"
	case T3Inserted:
		return "inserted"
	case T3Merged:
		return "merged"
	default:
		return fmt.Sprintf("T3Action(%d)", int(a))
	}
}

// T3Outcome reports the result of [Mesh.T3Swap].
type T3Outcome struct {
	Action T3Action
	Class  Classification
	// Vert is the vertex v became: v itself unless it was inserted or
	// merged.
	Vert VertID
}

// T3Swap resolves vertex v passing close to edge e:
//
//   - if v is at least cfg.DMin from its nearest point on e, nothing
//     happens;
//   - if v is joined to an endpoint of e and projects beyond that end
//     ([CaseSource] or [CaseTarget]), both are pushed apart with
//     [Mesh.PerturbT3] when they are closer than cfg.DSep, and left alone
//     otherwise;
//   - if v is joined to an endpoint but projects onto the edge, the swap
//     fails with [ErrAdjacent];
//   - if the nearest point lies within cfg.DSep of an endpoint, which is
//     always the case beyond the ends, v is merged into that endpoint with
//     [Mesh.MergeUnconnected];
//   - otherwise v is inserted into e at the nearest point with
//     [Mesh.InsertIntoEdge] and its other neighbors are spliced along the
//     edge with [Mesh.ResolveLocal].
//
// The swap either completes or leaves the mesh untouched. The derived
// geometry must be current and is stale afterwards.
func (m *Mesh) T3Swap(e EdgeID, v VertID, cfg TopologyConfig) (T3Outcome, error) {
	cl, err := m.ClassifyT3(e, v, cfg.DSep)
	if err != nil {
		return T3Outcome{}, err
	}
	out := T3Outcome{Class: cl, Vert: v}
	if cl.Distance >= cfg.DMin {
		return out, nil
	}
	h := m.edges[e]
	if end := m.AdjacentEnd(e, v); end != NoVert {
		if cl.Case == CaseInterior {
			return out, degeneracy(ErrAdjacent, "vertex %d is joined to %d and projects onto edge %d", v, end, e)
		}
		if Distance(m.verts[v].Pos, m.verts[end].Pos) >= cfg.DSep {
			return out, nil
		}
		if err := m.PerturbT3(v, end, cfg.DSep); err != nil {
			return out, err
		}
		out.Action = T3Perturbed
		return out, nil
	}
	if end := m.nearEnd(h, cl, cfg.DSep); end != NoVert {
		keep, err := m.MergeUnconnected(v, end)
		if err != nil {
			return out, err
		}
		out.Action = T3Merged
		out.Vert = keep
		klog.V(2).Infof("epimesh: T3 merge of vertex %d into %d, end of edge %d (%v)", v, end, e, cl.Case)
		return out, nil
	}

	c := m.Clone()
	w, err := c.InsertIntoEdge(e, v, cl.Nearest)
	if err != nil {
		return out, err
	}
	if err := c.ResolveLocal(h.Srce, h.Trgt, w, cfg.DSep); err != nil {
		return out, err
	}
	*m = *c
	out.Action = T3Inserted
	out.Vert = w
	klog.V(2).Infof("epimesh: T3 swap of vertex %d into edge %d (%v), now %d", v, e, cl.Case, w)
	return out, nil
}

// nearEnd returns the endpoint of h that cl places v at, or NoVert when the
// nearest point keeps dSep from both ends.
func (m *Mesh) nearEnd(h HalfEdge, cl Classification, dSep float64) VertID {
	switch {
	case cl.Case == CaseSource:
		return h.Srce
	case cl.Case == CaseTarget:
		return h.Trgt
	case Distance(cl.Nearest, m.verts[h.Srce].Pos) < dSep:
		return h.Srce
	case Distance(cl.Nearest, m.verts[h.Trgt].Pos) < dSep:
		return h.Trgt
	default:
		return NoVert
	}
}

// T3Sweep runs [Mesh.T3Swap] over every boundary edge and the boundary
// vertices found near it by the box broad phase, until a pass changes
// nothing. geom is run before the first pass and after every swap. Pairs
// are tried at most once per sweep, and swaps failing with a degeneracy are
// skipped. It returns the number of swaps performed.
func (m *Mesh) T3Sweep(geom Geometry, cfg TopologyConfig) (int, error) {
	if err := geom.UpdateAll(m); err != nil {
		return 0, err
	}
	type pair struct {
		e EdgeID
		v VertID
	}
	tried := make(map[pair]bool)
	swaps := 0
	for changed := true; changed; {
		changed = false
		ix := NewProximityIndex(m, m.boundaryFilter())
	edges:
		for _, e := range m.boundaryEdges() {
			for _, v := range ix.swapCandidates(m, e, cfg.Epsilon) {
				if !m.HasEdge(e) || !m.HasVert(v) || tried[pair{e, v}] {
					continue
				}
				tried[pair{e, v}] = true
				out, err := m.T3Swap(e, v, cfg)
				if Kind(err) == KindDegeneracy {
					klog.V(2).Infof("epimesh: skipping T3 swap of vertex %d and edge %d: %v", v, e, err)
					continue
				}
				if err != nil {
					return swaps, err
				}
				if out.Action == T3None {
					continue
				}
				swaps++
				if err := geom.UpdateAll(m); err != nil {
					return swaps, err
				}
				changed = true
				break edges
			}
		}
	}
	return swaps, nil
}

func (m *Mesh) boundaryEdges() []EdgeID {
	var out []EdgeID
	for h := range m.Edges() {
		if m.IsBoundary(h.ID) {
			out = append(out, h.ID)
		}
	}
	return out
}
