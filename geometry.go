package epimesh

// Geometry recomputes the derived per-edge and per-face quantities of a mesh
// from its current vertex positions. Implementations must be idempotent and
// must accept any mesh whose topology is valid.
//
// No method of [Mesh] calls a Geometry. Every mutating method leaves the
// derived quantities stale, and callers run their Geometry once after a
// batch of edits, before reading [Mesh.EdgeGeom] or [Mesh.FaceGeom] again.
type Geometry interface {
	UpdateAll(m *Mesh) error
}

// PlanarGeometry is the [Geometry] of a flat sheet: edge vectors, unit
// vectors and lengths; face side counts, vertex-mean centroids and signed
// areas (positive for counter-clockwise rings).
type PlanarGeometry struct{}

var _ Geometry = PlanarGeometry{}

func (PlanarGeometry) UpdateAll(m *Mesh) error {
	type acc struct {
		sum Vec2
		n   int
	}
	accs := make([]acc, len(m.faces))
	for h := range m.Edges() {
		s := m.verts[h.Srce].Pos
		t := m.verts[h.Trgt].Pos
		dir := t.Sub(s)
		g := EdgeGeom{Dir: dir, Length: dir.Hypot()}
		if g.Length > 0 {
			g.Unit = dir.Div(g.Length)
		}
		if err := m.SetEdgeGeom(h.ID, g); err != nil {
			return err
		}
		if m.HasFace(h.Face) {
			a := &accs[h.Face]
			a.sum = a.sum.Add(Vec2(s))
			a.n++
		}
	}
	areas := make([]float64, len(m.faces))
	for h := range m.Edges() {
		if !m.HasFace(h.Face) || accs[h.Face].n == 0 {
			continue
		}
		a := accs[h.Face]
		c := Point(a.sum.Div(float64(a.n)))
		s := m.verts[h.Srce].Pos.Sub(c)
		t := m.verts[h.Trgt].Pos.Sub(c)
		areas[h.Face] += 0.5 * Xprod2D(s, t)
	}
	for f := range m.Faces() {
		a := accs[f.ID]
		g := FaceGeom{NumSides: a.n, Area: areas[f.ID]}
		if a.n > 0 {
			g.Centroid = Point(a.sum.Div(float64(a.n)))
		}
		if err := m.SetFaceGeom(f.ID, g); err != nil {
			return err
		}
	}
	m.MarkFresh()
	return nil
}

// Stale reports whether the derived geometry is out of date.
func (m *Mesh) Stale() bool { return m.stale }

// MarkFresh declares the derived geometry current. It is called by
// [Geometry] implementations after storing every edge and face.
func (m *Mesh) MarkFresh() { m.stale = false }

// SetEdgeGeom stores the derived quantities of e.
func (m *Mesh) SetEdgeGeom(e EdgeID, g EdgeGeom) error {
	if !m.HasEdge(e) {
		return precondition(ErrEdgeNotFound, "edge %d", e)
	}
	if n := len(m.edges); len(m.edgeGeom) < n {
		m.edgeGeom = append(m.edgeGeom, make([]EdgeGeom, n-len(m.edgeGeom))...)
	}
	m.edgeGeom[e] = g
	return nil
}

// SetFaceGeom stores the derived quantities of f.
func (m *Mesh) SetFaceGeom(f FaceID, g FaceGeom) error {
	if !m.HasFace(f) {
		return precondition(ErrFaceNotFound, "face %d", f)
	}
	if n := len(m.faces); len(m.faceGeom) < n {
		m.faceGeom = append(m.faceGeom, make([]FaceGeom, n-len(m.faceGeom))...)
	}
	m.faceGeom[f] = g
	return nil
}

// EdgeGeom returns the derived quantities of e. It fails with [ErrStale] if
// the mesh changed since the last geometry update.
func (m *Mesh) EdgeGeom(e EdgeID) (EdgeGeom, error) {
	if !m.HasEdge(e) {
		return EdgeGeom{}, precondition(ErrEdgeNotFound, "edge %d", e)
	}
	if m.stale || int(e) >= len(m.edgeGeom) {
		return EdgeGeom{}, precondition(ErrStale, "edge %d", e)
	}
	return m.edgeGeom[e], nil
}

// FaceGeom returns the derived quantities of f. It fails with [ErrStale] if
// the mesh changed since the last geometry update.
func (m *Mesh) FaceGeom(f FaceID) (FaceGeom, error) {
	if !m.HasFace(f) {
		return FaceGeom{}, precondition(ErrFaceNotFound, "face %d", f)
	}
	if m.stale || int(f) >= len(m.faceGeom) {
		return FaceGeom{}, precondition(ErrStale, "face %d", f)
	}
	return m.faceGeom[f], nil
}
