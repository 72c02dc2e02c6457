package epimesh

import (
	"testing"

	"github.com/pkg/errors"
)

// fan returns the 4×2 rectangle of approaching with, below it, a fan of
// triangles around vertex 4 (2,-0.05) through the vertices at xs on y = -2,
// numbered from 5 left to right.
func fan(t *testing.T, xs ...float64) *Mesh {
	m := NewMesh(DefaultConfig())
	polygon(t, m, Pt(0, 0), Pt(4, 0), Pt(4, 2), Pt(0, 2))
	top := m.AddVert(Pt(2, -0.05))
	var below []VertID
	for _, x := range xs {
		below = append(below, m.AddVert(Pt(x, -2)))
	}
	for i := 1; i < len(below); i++ {
		ring(t, m, top, below[i-1], below[i])
	}
	return m
}

func TestResolveMiddleNeighborStays(t *testing.T) {
	m := fan(t, 0, 2, 4)
	mustUpdate(t, m)
	out, err := m.T3Swap(0, 4, testTopology())
	if err != nil {
		t.Fatal(err)
	}
	mustValidate(t, m)
	if out.Action != T3Inserted || out.Vert != 8 {
		t.Fatalf("got %v into %d, want inserted into 8", out.Action, out.Vert)
	}
	diff(t, []VertID{6, 9, 10}, m.Neighbors(8))
	verts, _ := m.FaceVerts(0)
	diff(t, []VertID{0, 10, 8, 9, 1, 2, 3}, verts)
	if m.NumVerts() != 10 {
		t.Errorf("got %d verts, want 10", m.NumVerts())
	}
	p, _ := m.Pos(9)
	diff(t, Pt(3.99, 0), p, approx)
	p, _ = m.Pos(10)
	diff(t, Pt(0.01, 0), p, approx)
	diff(t, []VertID{0, 5, 8}, m.Neighbors(10))
	diff(t, []VertID{1, 7, 8}, m.Neighbors(9))
}

func TestResolveSameSide(t *testing.T) {
	// Both 5 and 6 project left of the insertion point and are spliced
	// outermost first; 7 is the closest and stays.
	m := fan(t, 0, 1, 2.5)
	mustUpdate(t, m)
	out, err := m.T3Swap(0, 4, testTopology())
	if err != nil {
		t.Fatal(err)
	}
	mustValidate(t, m)
	if out.Vert != 8 {
		t.Fatalf("inserted into %d, want 8", out.Vert)
	}
	diff(t, []VertID{1, 7, 10}, m.Neighbors(8))
	verts, _ := m.FaceVerts(0)
	diff(t, []VertID{0, 9, 10, 8, 1, 2, 3}, verts)
	p, _ := m.Pos(9)
	diff(t, Pt(0.01, 0), p, approx)
	p, _ = m.Pos(10)
	diff(t, Pt(1, 0), p, approx)
}

func TestResolveLocalNoop(t *testing.T) {
	m := approaching(t)
	w, err := m.InsertIntoEdge(0, 4, Pt(2, 0))
	if err != nil {
		t.Fatal(err)
	}
	// Collapse the base of the triangle so 5 is the only neighbor off the run.
	if _, err := m.CollapseEdge(m.EdgesBetween(5, 6)[0], CollapseOptions{AllowTwoSided: true}); err != nil {
		t.Fatal(err)
	}
	nv, ne := m.NumVerts(), m.NumEdges()
	if err := m.ResolveLocal(0, 1, w, 0.01); err != nil {
		t.Fatal(err)
	}
	if m.NumVerts() != nv || m.NumEdges() != ne {
		t.Errorf("resolving a single neighbor changed the mesh")
	}
}

func TestResolveLocalErrors(t *testing.T) {
	m := approaching(t)
	w, err := m.InsertIntoEdge(0, 4, Pt(2, 0))
	if err != nil {
		t.Fatal(err)
	}
	if err := m.ResolveLocal(0, 2, w, 0.01); !errors.Is(err, ErrNotIncident) {
		t.Errorf("not between: got %v, want %v", err, ErrNotIncident)
	}
	if err := m.ResolveLocal(0, 1, w, -1); !errors.Is(err, ErrBadArgument) {
		t.Errorf("negative separation: got %v, want %v", err, ErrBadArgument)
	}
	if err := m.ResolveLocal(0, 1, 42, 0.01); !errors.Is(err, ErrVertNotFound) {
		t.Errorf("unknown vertex: got %v, want %v", err, ErrVertNotFound)
	}
	mustValidate(t, m)
}

func TestResolveLocalCrowded(t *testing.T) {
	m := approaching(t)
	w, err := m.InsertIntoEdge(0, 4, Pt(2, 0))
	if err != nil {
		t.Fatal(err)
	}
	nv, ne := m.NumVerts(), m.NumEdges()
	// Neighbor 6 needs a splice point 1.5 from both 7 and 1, which are 2 apart.
	err = m.ResolveLocal(0, 1, w, 1.5)
	if !errors.Is(err, ErrCrowded) || Kind(err) != KindDegeneracy {
		t.Fatalf("got %v, want a degeneracy %v", err, ErrCrowded)
	}
	mustValidate(t, m)
	if m.NumVerts() != nv || m.NumEdges() != ne {
		t.Errorf("failed resolve changed the mesh")
	}
}

func TestResolveLocalNeighborOrder(t *testing.T) {
	// Vertex 1 lies on the run 0–1–2 under face 0. Below the run its fan
	// reaches 5, 6 and 7 in that order, but 6 projects beyond 5, so the
	// faces on both sides of 1–6 lie away from the run.
	m := NewMesh(DefaultConfig())
	for _, p := range []Point{
		Pt(0, 0), Pt(2, 0), Pt(4, 0), Pt(4, 2), Pt(0, 2),
		Pt(2.2, -0.3), Pt(3.5, -3), Pt(1.9, -2),
	} {
		m.AddVert(p)
	}
	ring(t, m, 0, 1, 2, 3, 4)
	ring(t, m, 1, 5, 2)
	ring(t, m, 1, 6, 5)
	ring(t, m, 1, 7, 6)
	ring(t, m, 1, 0, 7)
	mustValidate(t, m)

	err := m.ResolveLocal(0, 2, 1, 0.01)
	if !errors.Is(err, ErrNeighborOrder) || Kind(err) != KindDegeneracy {
		t.Fatalf("got %v, want a degeneracy %v", err, ErrNeighborOrder)
	}
	mustValidate(t, m)
	if m.NumVerts() != 8 || m.NumEdges() != 17 {
		t.Errorf("got %d verts, %d edges, want 8, 17", m.NumVerts(), m.NumEdges())
	}
	diff(t, []VertID{0, 2, 5, 6, 7}, m.Neighbors(1))
}
