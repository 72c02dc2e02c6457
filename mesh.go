package epimesh

import (
	"iter"
	"slices"

	"github.com/plan-systems/klog"
)

type (
	VertID int
	EdgeID int
	FaceID int
)

// Sentinels for absent elements. NoEdge is also the opposite of a boundary
// half-edge.
const (
	NoVert VertID = -1
	NoEdge EdgeID = -1
	NoFace FaceID = -1
)

// Vertex is a mesh vertex. Active and Viscosity belong to the dynamics
// model; edits copy them but never interpret them.
type Vertex struct {
	ID        VertID
	Pos       Point
	Active    bool
	Viscosity float64
}

// HalfEdge is one directed traversal of an edge, owned by exactly one face.
type HalfEdge struct {
	ID          EdgeID
	Srce        VertID
	Trgt        VertID
	Face        FaceID
	LineTension float64
}

// Face is a polygonal cell. Its parameters belong to the dynamics model and
// are preserved by edits.
type Face struct {
	ID            FaceID
	Elasticity    float64
	Contractility float64
	PrefArea      float64
}

// EdgeGeom holds the derived quantities of a half-edge.
type EdgeGeom struct {
	// Dir is trgt−srce.
	Dir    Vec2
	Unit   Vec2
	Length float64
}

// FaceGeom holds the derived quantities of a face.
type FaceGeom struct {
	NumSides int
	Centroid Point
	Area     float64
}

type vertPair struct {
	srce, trgt VertID
}

// Mesh is a planar half-edge mesh made of three tables of vertices,
// half-edges and faces, addressed by stable integer ids.
//
// Topology (endpoints, owning face, opposites) is always current. Derived
// geometry ([EdgeGeom], [FaceGeom]) is maintained by a [Geometry]
// collaborator: every mutating method marks it stale, and reading it fails
// with [ErrStale] until the caller has run the collaborator again.
//
// A Mesh is not safe for concurrent use.
type Mesh struct {
	cfg Config

	verts     []Vertex
	vertAlive []bool
	edges     []HalfEdge
	edgeAlive []bool
	faces     []Face
	faceAlive []bool

	numVerts int
	numEdges int
	numFaces int

	vertIDs idArena
	edgeIDs idArena
	faceIDs idArena

	// pairs indexes half-edges by their endpoints.
	pairs map[vertPair][]EdgeID

	edgeGeom []EdgeGeom
	faceGeom []FaceGeom
	stale    bool
}

// NewMesh returns an empty mesh. New elements added with [Mesh.AddVert],
// [Mesh.AddEdge] and [Mesh.AddFace] take their attributes from cfg.
func NewMesh(cfg Config) *Mesh {
	return &Mesh{
		cfg:     cfg,
		vertIDs: newIDArena(),
		edgeIDs: newIDArena(),
		faceIDs: newIDArena(),
		pairs:   make(map[vertPair][]EdgeID),
		stale:   true,
	}
}

// Config returns the configuration the mesh was created with.
func (m *Mesh) Config() Config { return m.cfg }

func (m *Mesh) NumVerts() int { return m.numVerts }
func (m *Mesh) NumEdges() int { return m.numEdges }
func (m *Mesh) NumFaces() int { return m.numFaces }

func (m *Mesh) HasVert(v VertID) bool {
	return v >= 0 && int(v) < len(m.verts) && m.vertAlive[v]
}

func (m *Mesh) HasEdge(e EdgeID) bool {
	return e >= 0 && int(e) < len(m.edges) && m.edgeAlive[e]
}

func (m *Mesh) HasFace(f FaceID) bool {
	return f >= 0 && int(f) < len(m.faces) && m.faceAlive[f]
}

func (m *Mesh) Vert(v VertID) (Vertex, error) {
	if !m.HasVert(v) {
		return Vertex{}, precondition(ErrVertNotFound, "vertex %d", v)
	}
	return m.verts[v], nil
}

func (m *Mesh) Edge(e EdgeID) (HalfEdge, error) {
	if !m.HasEdge(e) {
		return HalfEdge{}, precondition(ErrEdgeNotFound, "edge %d", e)
	}
	return m.edges[e], nil
}

func (m *Mesh) Face(f FaceID) (Face, error) {
	if !m.HasFace(f) {
		return Face{}, precondition(ErrFaceNotFound, "face %d", f)
	}
	return m.faces[f], nil
}

// Pos returns the position of v.
func (m *Mesh) Pos(v VertID) (Point, error) {
	if !m.HasVert(v) {
		return Point{}, precondition(ErrVertNotFound, "vertex %d", v)
	}
	return m.verts[v].Pos, nil
}

// Segment returns the segment from the source to the target of e.
func (m *Mesh) Segment(e EdgeID) (Line, error) {
	if !m.HasEdge(e) {
		return Line{}, precondition(ErrEdgeNotFound, "edge %d", e)
	}
	h := m.edges[e]
	return Line{P0: m.verts[h.Srce].Pos, P1: m.verts[h.Trgt].Pos}, nil
}

// Verts iterates over the live vertices in ascending id order.
func (m *Mesh) Verts() iter.Seq[Vertex] {
	return func(yield func(Vertex) bool) {
		for i, v := range m.verts {
			if m.vertAlive[i] && !yield(v) {
				return
			}
		}
	}
}

// Edges iterates over the live half-edges in ascending id order.
func (m *Mesh) Edges() iter.Seq[HalfEdge] {
	return func(yield func(HalfEdge) bool) {
		for i, e := range m.edges {
			if m.edgeAlive[i] && !yield(e) {
				return
			}
		}
	}
}

// Faces iterates over the live faces in ascending id order.
func (m *Mesh) Faces() iter.Seq[Face] {
	return func(yield func(Face) bool) {
		for i, f := range m.faces {
			if m.faceAlive[i] && !yield(f) {
				return
			}
		}
	}
}

// AddVert adds a vertex at pos with the configured default attributes.
func (m *Mesh) AddVert(pos Point) VertID {
	return m.newVert(Vertex{
		Pos:       pos,
		Active:    m.cfg.Vertex.Active,
		Viscosity: m.cfg.Vertex.Viscosity,
	})
}

// AddFace adds a face with no half-edges and the configured default model
// parameters.
func (m *Mesh) AddFace() FaceID {
	return m.newFace(Face{
		Elasticity:    m.cfg.Face.Elasticity,
		Contractility: m.cfg.Face.Contractility,
		PrefArea:      m.cfg.Face.PrefArea,
	})
}

// AddEdge adds a half-edge from srce to trgt owned by face. It does not
// check that the face ring stays closed; see [Mesh.AddRing].
func (m *Mesh) AddEdge(srce, trgt VertID, face FaceID) (EdgeID, error) {
	if !m.HasVert(srce) {
		return NoEdge, precondition(ErrVertNotFound, "source %d", srce)
	}
	if !m.HasVert(trgt) {
		return NoEdge, precondition(ErrVertNotFound, "target %d", trgt)
	}
	if srce == trgt {
		return NoEdge, precondition(ErrBadArgument, "loop edge at vertex %d", srce)
	}
	if !m.HasFace(face) {
		return NoEdge, precondition(ErrFaceNotFound, "face %d", face)
	}
	return m.newEdge(HalfEdge{
		Srce:        srce,
		Trgt:        trgt,
		Face:        face,
		LineTension: m.cfg.Edge.LineTension,
	}), nil
}

// AddRing closes face with half-edges v0→v1, v1→v2, …, vn→v0 and returns
// them in ring order. The ring must have at least three distinct vertices.
func (m *Mesh) AddRing(face FaceID, ring []VertID) ([]EdgeID, error) {
	if !m.HasFace(face) {
		return nil, precondition(ErrFaceNotFound, "face %d", face)
	}
	if len(ring) < 3 {
		return nil, precondition(ErrBadArgument, "ring of %d vertices", len(ring))
	}
	seen := make(map[VertID]bool, len(ring))
	for _, v := range ring {
		if !m.HasVert(v) {
			return nil, precondition(ErrVertNotFound, "vertex %d", v)
		}
		if seen[v] {
			return nil, precondition(ErrBadArgument, "vertex %d repeated in ring", v)
		}
		seen[v] = true
	}
	out := make([]EdgeID, len(ring))
	for i, v := range ring {
		out[i] = m.newEdge(HalfEdge{
			Srce:        v,
			Trgt:        ring[(i+1)%len(ring)],
			Face:        face,
			LineTension: m.cfg.Edge.LineTension,
		})
	}
	return out, nil
}

// AddPolygon adds a face whose ring runs through new vertices at pts.
func (m *Mesh) AddPolygon(pts ...Point) (FaceID, error) {
	if len(pts) < 3 {
		return NoFace, precondition(ErrBadArgument, "polygon of %d points", len(pts))
	}
	f := m.AddFace()
	ring := make([]VertID, len(pts))
	for i, p := range pts {
		ring[i] = m.AddVert(p)
	}
	if _, err := m.AddRing(f, ring); err != nil {
		return NoFace, err
	}
	return f, nil
}

// SetPos moves v to p.
func (m *Mesh) SetPos(v VertID, p Point) error {
	if !m.HasVert(v) {
		return precondition(ErrVertNotFound, "vertex %d", v)
	}
	m.verts[v].Pos = p
	m.stale = true
	return nil
}

// SetActive sets the activity flag of v.
func (m *Mesh) SetActive(v VertID, active bool) error {
	if !m.HasVert(v) {
		return precondition(ErrVertNotFound, "vertex %d", v)
	}
	m.verts[v].Active = active
	return nil
}

// SetFace replaces the model parameters of f.ID.
func (m *Mesh) SetFace(f Face) error {
	if !m.HasFace(f.ID) {
		return precondition(ErrFaceNotFound, "face %d", f.ID)
	}
	m.faces[f.ID] = f
	return nil
}

// RemoveFace deletes f and every half-edge it owns. Vertices left without
// half-edges are kept; the caller decides whether they are still needed.
func (m *Mesh) RemoveFace(f FaceID) error {
	if !m.HasFace(f) {
		return precondition(ErrFaceNotFound, "face %d", f)
	}
	for _, e := range m.FaceEdges(f) {
		m.removeEdge(e)
	}
	m.removeFace(f)
	klog.V(2).Infof("epimesh: removed face %d", f)
	return nil
}

// Opposite returns the half-edge running from e's target to e's source, or
// NoEdge if e is a boundary edge. If several exist, the smallest id is
// returned.
func (m *Mesh) Opposite(e EdgeID) EdgeID {
	if !m.HasEdge(e) {
		return NoEdge
	}
	h := m.edges[e]
	if opp := m.pairs[vertPair{h.Trgt, h.Srce}]; len(opp) > 0 {
		return opp[0]
	}
	return NoEdge
}

// IsBoundary reports whether e has no opposite.
func (m *Mesh) IsBoundary(e EdgeID) bool {
	return m.Opposite(e) == NoEdge
}

// Parallels returns the half-edges with the same source and target as e,
// e included, in ascending order.
func (m *Mesh) Parallels(e EdgeID) []EdgeID {
	if !m.HasEdge(e) {
		return nil
	}
	h := m.edges[e]
	return slices.Clone(m.pairs[vertPair{h.Srce, h.Trgt}])
}

// Opposites returns every half-edge running from e's target to e's source.
func (m *Mesh) Opposites(e EdgeID) []EdgeID {
	if !m.HasEdge(e) {
		return nil
	}
	h := m.edges[e]
	return slices.Clone(m.pairs[vertPair{h.Trgt, h.Srce}])
}

// EdgesBetween returns the half-edges joining a and b in either direction.
func (m *Mesh) EdgesBetween(a, b VertID) []EdgeID {
	out := slices.Clone(m.pairs[vertPair{a, b}])
	out = append(out, m.pairs[vertPair{b, a}]...)
	slices.Sort(out)
	return out
}

// FaceEdges returns the half-edges owned by f in ascending id order.
func (m *Mesh) FaceEdges(f FaceID) []EdgeID {
	var out []EdgeID
	for i, h := range m.edges {
		if m.edgeAlive[i] && h.Face == f {
			out = append(out, EdgeID(i))
		}
	}
	return out
}

// NumSides returns the number of half-edges owned by f.
func (m *Mesh) NumSides(f FaceID) int {
	n := 0
	for i, h := range m.edges {
		if m.edgeAlive[i] && h.Face == f {
			n++
		}
	}
	return n
}

// FaceRing returns the half-edges of f in ring order, starting from the
// smallest id and following each target to the next source. It fails with
// [ErrAmbiguousRing] when a vertex is the source of more than one of f's
// half-edges, and with [ErrRingOpen] when the half-edges do not form a
// single closed cycle.
func (m *Mesh) FaceRing(f FaceID) ([]EdgeID, error) {
	if !m.HasFace(f) {
		return nil, precondition(ErrFaceNotFound, "face %d", f)
	}
	edges := m.FaceEdges(f)
	if len(edges) == 0 {
		return nil, nil
	}
	bySrce := make(map[VertID]EdgeID, len(edges))
	for _, e := range edges {
		s := m.edges[e].Srce
		if _, dup := bySrce[s]; dup {
			return nil, degeneracy(ErrAmbiguousRing, "vertex %d in face %d", s, f)
		}
		bySrce[s] = e
	}
	ring := make([]EdgeID, 0, len(edges))
	e := edges[0]
	for range edges {
		ring = append(ring, e)
		next, ok := bySrce[m.edges[e].Trgt]
		if !ok {
			return nil, invariant(ErrRingOpen, "face %d: nothing leaves vertex %d", f, m.edges[e].Trgt)
		}
		e = next
	}
	if e != edges[0] {
		return nil, invariant(ErrRingOpen, "face %d: ring through edge %d does not return", f, edges[0])
	}
	return ring, nil
}

// FaceVerts returns the source vertices of f's ring in ring order.
func (m *Mesh) FaceVerts(f FaceID) ([]VertID, error) {
	ring, err := m.FaceRing(f)
	if err != nil {
		return nil, err
	}
	out := make([]VertID, len(ring))
	for i, e := range ring {
		out[i] = m.edges[e].Srce
	}
	return out, nil
}

// VertEdges returns the half-edges leaving or entering v, ascending.
func (m *Mesh) VertEdges(v VertID) []EdgeID {
	var out []EdgeID
	for i, h := range m.edges {
		if m.edgeAlive[i] && (h.Srce == v || h.Trgt == v) {
			out = append(out, EdgeID(i))
		}
	}
	return out
}

// Neighbors returns the vertices joined to v by a half-edge, ascending.
func (m *Mesh) Neighbors(v VertID) []VertID {
	var out []VertID
	for i, h := range m.edges {
		if !m.edgeAlive[i] {
			continue
		}
		switch v {
		case h.Srce:
			out = append(out, h.Trgt)
		case h.Trgt:
			out = append(out, h.Srce)
		}
	}
	slices.Sort(out)
	return slices.Compact(out)
}

// VertFaces returns the faces owning a half-edge incident to v, ascending.
func (m *Mesh) VertFaces(v VertID) []FaceID {
	var out []FaceID
	for _, e := range m.VertEdges(v) {
		out = append(out, m.edges[e].Face)
	}
	slices.Sort(out)
	return slices.Compact(out)
}

// BoundaryVerts returns the endpoints of boundary half-edges, ascending.
func (m *Mesh) BoundaryVerts() []VertID {
	var out []VertID
	for i, h := range m.edges {
		if m.edgeAlive[i] && m.IsBoundary(EdgeID(i)) {
			out = append(out, h.Srce, h.Trgt)
		}
	}
	slices.Sort(out)
	return slices.Compact(out)
}

// Divisible reports whether f has at least one boundary half-edge.
func (m *Mesh) Divisible(f FaceID) bool {
	for _, e := range m.FaceEdges(f) {
		if m.IsBoundary(e) {
			return true
		}
	}
	return false
}

// Clone returns an independent deep copy of m. Later edits to either mesh
// are not visible in the other.
func (m *Mesh) Clone() *Mesh {
	c := &Mesh{
		cfg:       m.cfg,
		verts:     slices.Clone(m.verts),
		vertAlive: slices.Clone(m.vertAlive),
		edges:     slices.Clone(m.edges),
		edgeAlive: slices.Clone(m.edgeAlive),
		faces:     slices.Clone(m.faces),
		faceAlive: slices.Clone(m.faceAlive),
		numVerts:  m.numVerts,
		numEdges:  m.numEdges,
		numFaces:  m.numFaces,
		vertIDs:   m.vertIDs.clone(),
		edgeIDs:   m.edgeIDs.clone(),
		faceIDs:   m.faceIDs.clone(),
		pairs:     make(map[vertPair][]EdgeID, len(m.pairs)),
		edgeGeom:  slices.Clone(m.edgeGeom),
		faceGeom:  slices.Clone(m.faceGeom),
		stale:     m.stale,
	}
	for k, v := range m.pairs {
		c.pairs[k] = slices.Clone(v)
	}
	return c
}

// Reindex makes the ids of every element removed since the previous call
// available for reuse, smallest first. It returns how many vertex, edge and
// face ids were released. Callers must have dropped every reference to
// removed elements before calling it.
func (m *Mesh) Reindex() (verts, edges, faces int) {
	verts = m.vertIDs.release()
	edges = m.edgeIDs.release()
	faces = m.faceIDs.release()
	return verts, edges, faces
}

func (m *Mesh) newVert(v Vertex) VertID {
	id, reused := m.vertIDs.alloc()
	v.ID = VertID(id)
	if reused {
		m.verts[id] = v
		m.vertAlive[id] = true
	} else {
		m.verts = append(m.verts, v)
		m.vertAlive = append(m.vertAlive, true)
	}
	m.numVerts++
	m.stale = true
	return v.ID
}

func (m *Mesh) newEdge(h HalfEdge) EdgeID {
	id, reused := m.edgeIDs.alloc()
	h.ID = EdgeID(id)
	if reused {
		m.edges[id] = h
		m.edgeAlive[id] = true
	} else {
		m.edges = append(m.edges, h)
		m.edgeAlive = append(m.edgeAlive, true)
	}
	m.index(h.ID)
	m.numEdges++
	m.stale = true
	return h.ID
}

func (m *Mesh) newFace(f Face) FaceID {
	id, reused := m.faceIDs.alloc()
	f.ID = FaceID(id)
	if reused {
		m.faces[id] = f
		m.faceAlive[id] = true
	} else {
		m.faces = append(m.faces, f)
		m.faceAlive = append(m.faceAlive, true)
	}
	m.numFaces++
	m.stale = true
	return f.ID
}

// copyVert adds a vertex with the attributes of src placed at pos.
func (m *Mesh) copyVert(src VertID, pos Point) VertID {
	v := m.verts[src]
	v.Pos = pos
	return m.newVert(v)
}

// copyEdge adds a half-edge with the attributes of src and the given
// endpoints.
func (m *Mesh) copyEdge(src EdgeID, srce, trgt VertID) EdgeID {
	h := m.edges[src]
	h.Srce, h.Trgt = srce, trgt
	return m.newEdge(h)
}

// setEnds changes the endpoints of e, keeping the pair index current.
func (m *Mesh) setEnds(e EdgeID, srce, trgt VertID) {
	m.unindex(e)
	m.edges[e].Srce = srce
	m.edges[e].Trgt = trgt
	m.index(e)
	m.stale = true
}

func (m *Mesh) setFace(e EdgeID, f FaceID) {
	m.edges[e].Face = f
	m.stale = true
}

func (m *Mesh) removeEdge(e EdgeID) {
	m.unindex(e)
	m.edgeAlive[e] = false
	m.edgeIDs.retire(int(e))
	m.numEdges--
	m.stale = true
}

func (m *Mesh) removeVert(v VertID) {
	m.vertAlive[v] = false
	m.vertIDs.retire(int(v))
	m.numVerts--
	m.stale = true
}

func (m *Mesh) removeFace(f FaceID) {
	m.faceAlive[f] = false
	m.faceIDs.retire(int(f))
	m.numFaces--
	m.stale = true
}

func (m *Mesh) index(e EdgeID) {
	h := m.edges[e]
	k := vertPair{h.Srce, h.Trgt}
	ids := append(m.pairs[k], e)
	slices.Sort(ids)
	m.pairs[k] = ids
}

func (m *Mesh) unindex(e EdgeID) {
	h := m.edges[e]
	k := vertPair{h.Srce, h.Trgt}
	ids := slices.DeleteFunc(m.pairs[k], func(id EdgeID) bool { return id == e })
	if len(ids) == 0 {
		delete(m.pairs, k)
	} else {
		m.pairs[k] = ids
	}
}
