package epimesh

import (
	"testing"

	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/pkg/errors"
)

var approx = cmpopts.EquateApprox(0, 1e-9)

func TestSwapDetection(t *testing.T) {
	m := unitSquare(t)
	m.AddVert(Pt(0.5, 0.05))
	m.AddVert(Pt(0.5, 0.2))
	m.AddVert(Pt(1.2, 0))
	got, err := m.SwapDetection(0, 0.1)
	if err != nil {
		t.Fatal(err)
	}
	diff(t, []VertID{4}, got)

	if _, err := m.SwapDetection(0, -1); !errors.Is(err, ErrBadArgument) {
		t.Errorf("negative epsilon: got %v, want %v", err, ErrBadArgument)
	}
	if _, err := m.SwapDetection(42, 0.1); !errors.Is(err, ErrEdgeNotFound) {
		t.Errorf("unknown edge: got %v, want %v", err, ErrEdgeNotFound)
	}
}

func TestZoneDetection(t *testing.T) {
	m := unitSquare(t)
	polygon(t, m, Pt(0.3, -0.6), Pt(0.7, -0.6), Pt(0.5, -0.05))
	// Interior vertices are not candidates however close they are.
	m.AddVert(Pt(0.5, 0.01))
	got, err := m.ZoneDetection(0, 0.1)
	if err != nil {
		t.Fatal(err)
	}
	diff(t, []VertID{6}, got)
}

func TestClassifyT3(t *testing.T) {
	m := NewMesh(DefaultConfig())
	a := m.AddVert(Pt(0, 0))
	b := m.AddVert(Pt(10, 0))
	e, _ := m.AddEdge(a, b, m.AddFace())
	tests := []struct {
		pos  Point
		want Classification
	}{
		{Pt(-1, 5), Classification{CaseSource, Pt(0.01, 0), Distance(Pt(-1, 5), Pt(0.01, 0))}},
		{Pt(5, 5), Classification{CaseInterior, Pt(5, 0), 5}},
		{Pt(12, 1), Classification{CaseTarget, Pt(9.99, 0), Distance(Pt(12, 1), Pt(9.99, 0))}},
		{Pt(0, -3), Classification{CaseInterior, Pt(0, 0), 3}},
	}
	for _, tt := range tests {
		v := m.AddVert(tt.pos)
		mustUpdate(t, m)
		got, err := m.ClassifyT3(e, v, 0.01)
		if err != nil {
			t.Fatal(err)
		}
		diff(t, tt.want, got, approx)
	}

	if _, err := m.ClassifyT3(e, a, 0.01); !errors.Is(err, ErrBadArgument) {
		t.Errorf("endpoint: got %v, want %v", err, ErrBadArgument)
	}
	m.SetPos(b, Pt(0, 0))
	mustUpdate(t, m)
	if _, err := m.ClassifyT3(e, 2, 0.01); !errors.Is(err, ErrZeroLength) {
		t.Errorf("zero length: got %v, want %v", err, ErrZeroLength)
	}
}

func TestT3CaseString(t *testing.T) {
	diff(t, "case 3 (interior)", CaseInterior.String())
	diff(t, "T3Case(7)", T3Case(7).String())
	diff(t, "inserted", T3Inserted.String())
	diff(t, "merged", T3Merged.String())
}

func TestPerturbT3(t *testing.T) {
	m := NewMesh(DefaultConfig())
	a := m.AddVert(Pt(0, 0))
	b := m.AddVert(Pt(1, 0))
	if err := m.PerturbT3(a, b, 0.01); err != nil {
		t.Fatal(err)
	}
	pa, _ := m.Pos(a)
	pb, _ := m.Pos(b)
	diff(t, Pt(0.5, 0.01), pa, approx)
	diff(t, Pt(0.5, -0.01), pb, approx)

	c := m.AddVert(pa)
	if err := m.PerturbT3(a, c, 0.01); !errors.Is(err, ErrCoincident) {
		t.Errorf("coincident: got %v, want %v", err, ErrCoincident)
	}
}

func TestAdjacency(t *testing.T) {
	m := twoSquares(t)
	if !m.AdjacencyCheck(2, 1) || !m.AdjacencyCheck(1, 2) {
		t.Error("vertices 1 and 2 not adjacent")
	}
	if m.AdjacencyCheck(0, 2) {
		t.Error("diagonal vertices 0 and 2 adjacent")
	}
	// Edge 5 runs 4→5; vertex 1 is joined to 4 only.
	if v := m.AdjacentEnd(5, 1); v != 4 {
		t.Errorf("got end %d, want 4", v)
	}
	// Vertex 2 is joined to 5 only.
	if v := m.AdjacentEnd(5, 2); v != 5 {
		t.Errorf("got end %d, want 5", v)
	}
	if v := m.AdjacentEnd(5, 0); v != NoVert {
		t.Errorf("got end %d, want none", v)
	}
}

func TestMergeUnconnected(t *testing.T) {
	t.Run("separate faces", func(t *testing.T) {
		m := NewMesh(DefaultConfig())
		polygon(t, m, Pt(0, 0), Pt(1, 0), Pt(0, 1))
		polygon(t, m, Pt(1.2, 0), Pt(2, 0), Pt(2, 1))
		keep, err := m.MergeUnconnected(3, 1)
		if err != nil {
			t.Fatal(err)
		}
		mustValidate(t, m)
		if keep != 1 {
			t.Errorf("survivor %d, want 1", keep)
		}
		p, _ := m.Pos(keep)
		diff(t, Pt(1.1, 0), p, approx)
		if m.HasVert(3) {
			t.Error("vertex 3 still alive")
		}
		diff(t, []FaceID{0, 1}, m.VertFaces(1))
	})
	t.Run("joined", func(t *testing.T) {
		m := unitSquare(t)
		keep, err := m.MergeUnconnected(0, 1)
		if err != nil {
			t.Fatal(err)
		}
		mustValidate(t, m)
		if keep != 0 || m.NumEdges() != 3 {
			t.Errorf("got survivor %d and %d edges, want 0 and 3", keep, m.NumEdges())
		}
	})
	t.Run("shared face", func(t *testing.T) {
		m := unitSquare(t)
		if _, err := m.MergeUnconnected(0, 2); !errors.Is(err, ErrSharedFace) {
			t.Errorf("got %v, want %v", err, ErrSharedFace)
		}
		mustValidate(t, m)
	})
}

func TestInsertIntoEdge(t *testing.T) {
	m := approaching(t)
	w, err := m.InsertIntoEdge(0, 4, Pt(2, 0))
	if err != nil {
		t.Fatal(err)
	}
	mustValidate(t, m)
	if w != 7 {
		t.Errorf("got vertex %d, want 7", w)
	}
	if m.HasVert(4) {
		t.Error("vertex 4 still alive")
	}
	diff(t, []VertID{0, 1, 5, 6}, m.Neighbors(w))
	p, _ := m.Pos(w)
	diff(t, Pt(2, 0), p)
}

func TestInsertIntoEdgeErrors(t *testing.T) {
	m := twoSquares(t)
	tests := []struct {
		name string
		e    EdgeID
		v    VertID
		want error
	}{
		{"endpoint", 0, 1, ErrBadArgument},
		{"adjacent", 0, 3, ErrAdjacent},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := m.InsertIntoEdge(tt.e, tt.v, Pt(0.5, 0)); !errors.Is(err, tt.want) {
				t.Errorf("got %v, want %v", err, tt.want)
			}
		})
	}
	if m.NumVerts() != 6 || m.NumEdges() != 8 {
		t.Errorf("failed inserts changed the mesh")
	}

	// Vertex 3 is in the ring of edge 0 without being joined to its ends.
	m = NewMesh(DefaultConfig())
	polygon(t, m, Pt(0, 0), Pt(2, 0), Pt(2, 1), Pt(1, 2), Pt(0, 1))
	if _, err := m.InsertIntoEdge(0, 3, Pt(1, 0)); !errors.Is(err, ErrSharedFace) {
		t.Errorf("shared face: got %v, want %v", err, ErrSharedFace)
	}
}

func testTopology() TopologyConfig {
	return TopologyConfig{Epsilon: 0.1, DMin: 0.1, DSep: 0.01}
}

func TestT3SwapInsert(t *testing.T) {
	m := approaching(t)
	mustUpdate(t, m)
	out, err := m.T3Swap(0, 4, testTopology())
	if err != nil {
		t.Fatal(err)
	}
	mustValidate(t, m)
	if out.Action != T3Inserted || out.Vert != 7 {
		t.Fatalf("got %v into %d, want inserted into 7", out.Action, out.Vert)
	}
	diff(t, Classification{CaseInterior, Pt(2, 0), 0.05}, out.Class, approx)

	if m.NumVerts() != 8 || m.NumEdges() != 10 {
		t.Errorf("got %d verts, %d edges, want 8, 10", m.NumVerts(), m.NumEdges())
	}
	p, _ := m.Pos(8)
	diff(t, Pt(3.99, 0), p, approx)
	verts, _ := m.FaceVerts(0)
	diff(t, []VertID{0, 7, 8, 1, 2, 3}, verts)
	diff(t, []VertID{0, 5, 8}, m.Neighbors(7))
	diff(t, []VertID{1, 6, 7}, m.Neighbors(8))
	mustSeparate(t, m, testTopology().DSep)
}

func TestT3SwapNone(t *testing.T) {
	m := approaching(t)
	mustUpdate(t, m)
	cfg := testTopology()
	cfg.DMin = 0.01
	out, err := m.T3Swap(0, 4, cfg)
	if err != nil {
		t.Fatal(err)
	}
	if out.Action != T3None || out.Vert != 4 {
		t.Errorf("got %v, %d, want none, 4", out.Action, out.Vert)
	}
	if m.NumVerts() != 7 {
		t.Errorf("mesh changed")
	}
}

func TestT3SwapPerturb(t *testing.T) {
	m := NewMesh(DefaultConfig())
	// Vertex 3 sits just before the source of edge 0 and is joined to it.
	polygon(t, m, Pt(0, 0), Pt(1, 0), Pt(1, 1), Pt(-0.004, 0.003))
	mustUpdate(t, m)
	out, err := m.T3Swap(0, 3, testTopology())
	if err != nil {
		t.Fatal(err)
	}
	mustValidate(t, m)
	if out.Action != T3Perturbed || out.Class.Case != CaseSource {
		t.Fatalf("got %v (%v), want perturbed (case 1)", out.Action, out.Class.Case)
	}
	p0, _ := m.Pos(0)
	p3, _ := m.Pos(3)
	diff(t, 0.02, Distance(p0, p3), cmpopts.EquateApprox(0, 1e-4))

	// Joined and already dSep apart: nothing to do.
	m = NewMesh(DefaultConfig())
	polygon(t, m, Pt(0, 0), Pt(1, 0), Pt(1, 1), Pt(-0.05, 0.02))
	mustUpdate(t, m)
	out, err = m.T3Swap(0, 3, testTopology())
	if err != nil {
		t.Fatal(err)
	}
	if out.Action != T3None {
		t.Errorf("got %v, want none", out.Action)
	}
	p3, _ = m.Pos(3)
	diff(t, Pt(-0.05, 0.02), p3)
}

// corner returns the 4×2 rectangle 0–3 and below it the triangle 4, 5
// (-1,-2), 6 (1,-2) whose top vertex 4 is at apex.
func corner(t *testing.T, apex Point) *Mesh {
	m := NewMesh(DefaultConfig())
	polygon(t, m, Pt(0, 0), Pt(4, 0), Pt(4, 2), Pt(0, 2))
	polygon(t, m, apex, Pt(-1, -2), Pt(1, -2))
	return m
}

func TestT3SwapMergeAtEnd(t *testing.T) {
	tests := []struct {
		name string
		apex Point
		kase T3Case
		want Point
	}{
		{"beyond source", Pt(-0.03, -0.03), CaseSource, Pt(-0.015, -0.015)},
		{"next to source", Pt(0.005, -0.05), CaseInterior, Pt(0.0025, -0.025)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := corner(t, tt.apex)
			mustUpdate(t, m)
			out, err := m.T3Swap(0, 4, testTopology())
			if err != nil {
				t.Fatal(err)
			}
			mustValidate(t, m)
			if out.Action != T3Merged || out.Vert != 0 || out.Class.Case != tt.kase {
				t.Fatalf("got %v into %d (%v), want merged into 0 (%v)", out.Action, out.Vert, out.Class.Case, tt.kase)
			}
			if m.HasVert(4) {
				t.Error("vertex 4 still alive")
			}
			p, _ := m.Pos(0)
			diff(t, tt.want, p, approx)
			diff(t, []VertID{1, 3, 5, 6}, m.Neighbors(0))
			diff(t, []FaceID{0, 1}, m.VertFaces(0))
			mustSeparate(t, m, testTopology().DSep)
		})
	}
}

func TestT3SwapAdjacentInterior(t *testing.T) {
	m := NewMesh(DefaultConfig())
	polygon(t, m, Pt(0, 0), Pt(1, 0), Pt(1, 1), Pt(0.05, 0.02))
	mustUpdate(t, m)
	_, err := m.T3Swap(0, 3, testTopology())
	if !errors.Is(err, ErrAdjacent) || Kind(err) != KindDegeneracy {
		t.Errorf("got %v, want a degeneracy %v", err, ErrAdjacent)
	}
	p, _ := m.Pos(3)
	diff(t, Pt(0.05, 0.02), p)
}

func TestT3Sweep(t *testing.T) {
	tests := []struct {
		name  string
		mesh  func(t *testing.T) *Mesh
		swaps int
	}{
		{"insert", approaching, 1},
		{"merge at end", func(t *testing.T) *Mesh { return corner(t, Pt(-0.03, -0.03)) }, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := tt.mesh(t)
			n, err := m.T3Sweep(PlanarGeometry{}, testTopology())
			if err != nil {
				t.Fatal(err)
			}
			mustValidate(t, m)
			if n != tt.swaps {
				t.Errorf("got %d swaps, want %d", n, tt.swaps)
			}
			if m.HasVert(4) {
				t.Error("vertex 4 still alive")
			}
			if m.Stale() {
				t.Error("geometry stale after sweep")
			}
			mustSeparate(t, m, testTopology().DSep)
		})
	}
}
