package epimesh

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func diff(t *testing.T, want, got any, opts ...cmp.Option) {
	t.Helper()
	if d := cmp.Diff(want, got, opts...); d != "" {
		t.Error(d)
	}
}

func mustValidate(t *testing.T, m *Mesh) {
	t.Helper()
	if err := m.Validate(); err != nil {
		t.Fatalf("invalid mesh: %v", err)
	}
}

func mustUpdate(t *testing.T, m *Mesh) {
	t.Helper()
	if err := (PlanarGeometry{}).UpdateAll(m); err != nil {
		t.Fatal(err)
	}
}

// polygon adds a face through new vertices at pts to m.
func polygon(t *testing.T, m *Mesh, pts ...Point) FaceID {
	t.Helper()
	f, err := m.AddPolygon(pts...)
	if err != nil {
		t.Fatal(err)
	}
	return f
}

// ring adds a face through the existing vertices vs to m.
func ring(t *testing.T, m *Mesh, vs ...VertID) FaceID {
	t.Helper()
	f := m.AddFace()
	if _, err := m.AddRing(f, vs); err != nil {
		t.Fatal(err)
	}
	return f
}

// unitSquare returns a mesh holding the face (0,0) (1,0) (1,1) (0,1), with
// vertices 0–3 and boundary edges 0: 0→1, 1: 1→2, 2: 2→3, 3: 3→0.
func unitSquare(t *testing.T) *Mesh {
	m := NewMesh(DefaultConfig())
	polygon(t, m, Pt(0, 0), Pt(1, 0), Pt(1, 1), Pt(0, 1))
	return m
}

// twoSquares returns the unit square next to the square (1,0)–(2,1). Face 1
// has vertices 1, 4, 5, 2 and edges 4: 1→4, 5: 4→5, 6: 5→2, 7: 2→1, the
// opposite of edge 1.
func twoSquares(t *testing.T) *Mesh {
	m := unitSquare(t)
	v4 := m.AddVert(Pt(2, 0))
	v5 := m.AddVert(Pt(2, 1))
	ring(t, m, 1, v4, v5, 2)
	return m
}

// approaching returns the 4×2 rectangle 0–3 (face 0, bottom edge 0: 0→1)
// and below it the triangle 4 (2,-0.05), 5 (0,-2), 6 (4,-2) (face 1), whose
// top vertex 4 nearly touches edge 0.
func approaching(t *testing.T) *Mesh {
	m := NewMesh(DefaultConfig())
	polygon(t, m, Pt(0, 0), Pt(4, 0), Pt(4, 2), Pt(0, 2))
	polygon(t, m, Pt(2, -0.05), Pt(0, -2), Pt(4, -2))
	return m
}

// mustSeparate fails the test if two live vertices of m are closer than
// dSep.
func mustSeparate(t *testing.T, m *Mesh, dSep float64) {
	t.Helper()
	var vs []Vertex
	for v := range m.Verts() {
		vs = append(vs, v)
	}
	for i, a := range vs {
		for _, b := range vs[i+1:] {
			if d := Distance(a.Pos, b.Pos); d < dSep {
				t.Errorf("vertices %d and %d are %g apart, want at least %g", a.ID, b.ID, d, dSep)
			}
		}
	}
}
