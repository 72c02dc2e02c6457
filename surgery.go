package epimesh

import (
	"math"

	"github.com/plan-systems/klog"
)

// onRayTol is the relative tolerance below which a ring vertex is taken to
// lie on the dividing ray.
const onRayTol = 1e-9

// FaceDivision splits face along a new edge between va and vb, two distinct
// vertices of its ring. The mother face keeps the ring path from va to vb
// and is closed by a new half-edge vb→va; the daughter face, which is
// returned, receives the path from vb back to va and a new half-edge va→vb.
// The two new half-edges are each other's opposites. The daughter copies
// the mother's model parameters.
//
// FaceDivision fails with [ErrTwoSided] if va and vb are consecutive in the
// ring, and with [ErrAmbiguousRing] if the ring visits a vertex twice.
// Derived geometry is stale afterwards.
func (m *Mesh) FaceDivision(face FaceID, va, vb VertID) (FaceID, error) {
	if !m.HasFace(face) {
		return NoFace, precondition(ErrFaceNotFound, "divide face %d", face)
	}
	if va == vb {
		return NoFace, precondition(ErrBadArgument, "divide face %d at a single vertex %d", face, va)
	}
	ring, err := m.FaceRing(face)
	if err != nil {
		return NoFace, err
	}
	ia, ib := -1, -1
	for i, e := range ring {
		switch m.edges[e].Srce {
		case va:
			ia = i
		case vb:
			ib = i
		}
	}
	if ia < 0 {
		return NoFace, precondition(ErrNotInRing, "vertex %d, face %d", va, face)
	}
	if ib < 0 {
		return NoFace, precondition(ErrNotInRing, "vertex %d, face %d", vb, face)
	}
	n := len(ring)
	n1 := (ib - ia + n) % n
	if n1 < 2 || n-n1 < 2 {
		return NoFace, degeneracy(ErrTwoSided, "vertices %d and %d are consecutive in face %d", va, vb, face)
	}

	daughter := m.newFace(m.faces[face])
	for k := 0; k < n-n1; k++ {
		m.setFace(ring[(ib+k)%n], daughter)
	}
	m.copyEdge(ring[ia], vb, va)
	d := m.copyEdge(ring[ib], va, vb)
	m.setFace(d, daughter)
	klog.V(2).Infof("epimesh: divided face %d between %d and %d, daughter %d", face, va, vb, daughter)
	return daughter, nil
}

// Division reports the result of [Mesh.DivideFace].
type Division struct {
	// Daughter is the face created by the division.
	Daughter FaceID
	// Mid is the vertex inserted at the middle of the chosen edge.
	Mid VertID
	// Opposite is the vertex where the dividing line meets the ring on
	// the other side. It is an existing vertex if the line passes
	// through one.
	Opposite VertID
	// Center is the vertex inserted on the dividing edge at the
	// mother's centroid.
	Center VertID
}

// DivideFace divides face with a line that starts at the middle of edge e
// and runs through the face centroid:
//
//  1. the ray from the midpoint through the centroid is intersected with
//     every other half-edge of the ring; an edge is crossed when its two
//     endpoints lie on opposite sides of the ray (the signs of [Xprod2D]
//     differ), and the nearest crossing ahead of the midpoint wins;
//  2. vertices are inserted at the midpoint and at the crossing with
//     [Mesh.PutVert] (a ring vertex lying exactly on the ray is used as
//     is);
//  3. [Mesh.FaceDivision] splits the ring between them;
//  4. a last vertex is inserted on the dividing edge at the centroid.
//
// All geometry is evaluated before the first edit, so a failure leaves the
// mesh untouched. If the ray meets no edge, for instance because it is
// parallel to every candidate, DivideFace fails with [ErrNoCrossing].
// The face centroid is read from the derived geometry, which must be
// current; it is stale afterwards.
func (m *Mesh) DivideFace(face FaceID, e EdgeID) (Division, error) {
	if !m.HasFace(face) {
		return Division{}, precondition(ErrFaceNotFound, "divide face %d", face)
	}
	if !m.HasEdge(e) {
		return Division{}, precondition(ErrEdgeNotFound, "divide face %d at edge %d", face, e)
	}
	if m.edges[e].Face != face {
		return Division{}, precondition(ErrBadArgument, "edge %d does not belong to face %d", e, face)
	}
	ring, err := m.FaceRing(face)
	if err != nil {
		return Division{}, err
	}
	fg, err := m.FaceGeom(face)
	if err != nil {
		return Division{}, err
	}
	seg, _ := m.Segment(e)
	mid := seg.P0.Midpoint(seg.P1)
	dir := fg.Centroid.Sub(mid)
	if dir.Hypot() == 0 {
		return Division{}, degeneracy(ErrCoincident, "midpoint of edge %d is the centroid of face %d", e, face)
	}

	h := m.edges[e]
	hitEdge, hitVert := NoEdge, NoVert
	var hitPt Point
	best := math.Inf(1)
	onRay := func(v VertID) bool {
		d := m.verts[v].Pos.Sub(mid)
		return math.Abs(Xprod2D(dir, d)) <= onRayTol*dir.Hypot()*d.Hypot()
	}
	for i, c := range ring {
		if c == e {
			continue
		}
		hc := m.edges[c]
		s, t := m.verts[hc.Srce].Pos, m.verts[hc.Trgt].Pos
		xs := Xprod2D(dir, s.Sub(mid))
		xt := Xprod2D(dir, t.Sub(mid))
		if hc.Srce != h.Srce && hc.Srce != h.Trgt && onRay(hc.Srce) {
			// The ray runs through the source of c. It only counts when
			// both ring neighbors are off the ray; a ring edge lying along
			// the ray is not a crossing.
			prev := m.edges[ring[(i+len(ring)-1)%len(ring)]].Srce
			if onRay(prev) || onRay(hc.Trgt) {
				continue
			}
			if ahead := dir.Dot(s.Sub(mid)) / dir.Hypot2(); ahead > 0 && ahead < best {
				best, hitEdge, hitVert = ahead, NoEdge, hc.Srce
			}
			continue
		}
		if xs*xt >= 0 {
			continue
		}
		cr, err := Line{P0: s, P1: t}.RayCrossing(mid, dir)
		if err != nil {
			continue
		}
		if cr.S > 0 && cr.S < best {
			best, hitEdge, hitVert, hitPt = cr.S, c, NoVert, cr.Pt
		}
	}
	if hitEdge == NoEdge && hitVert == NoVert {
		return Division{}, degeneracy(ErrNoCrossing, "ray from edge %d through centroid %v of face %d", e, fg.Centroid, face)
	}

	div := Division{}
	pr, err := m.PutVert(e, mid)
	if err != nil {
		return Division{}, err
	}
	div.Mid = pr.Vert
	if hitEdge != NoEdge {
		pr, err := m.PutVert(hitEdge, hitPt)
		if err != nil {
			return Division{}, err
		}
		div.Opposite = pr.Vert
	} else {
		div.Opposite = hitVert
	}
	div.Daughter, err = m.FaceDivision(face, div.Mid, div.Opposite)
	if err != nil {
		return Division{}, invariant(ErrRingOpen, "dividing face %d after inserting vertices: %v", face, err)
	}
	between := m.EdgesBetween(div.Mid, div.Opposite)
	pr, err = m.PutVert(between[0], fg.Centroid)
	if err != nil {
		return Division{}, err
	}
	div.Center = pr.Vert
	return div, nil
}

// LateralSplit divides face with [Mesh.DivideFace], starting from its
// lowest-id boundary half-edge, or from its lowest-id half-edge if the face
// has no boundary.
func (m *Mesh) LateralSplit(face FaceID) (Division, error) {
	if !m.HasFace(face) {
		return Division{}, precondition(ErrFaceNotFound, "split face %d", face)
	}
	edges := m.FaceEdges(face)
	if len(edges) == 0 {
		return Division{}, precondition(ErrBadArgument, "face %d has no edges", face)
	}
	chosen := edges[0]
	for _, e := range edges {
		if m.IsBoundary(e) {
			chosen = e
			break
		}
	}
	return m.DivideFace(face, chosen)
}
