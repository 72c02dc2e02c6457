package epimesh

import (
	"math"
	"slices"

	"gonum.org/v1/gonum/spatial/kdtree"
)

// vertPoint is a vertex position stored in a [ProximityIndex].
type vertPoint struct {
	id  VertID
	pos Point
}

var _ kdtree.Comparable = vertPoint{}

func (p vertPoint) Compare(c kdtree.Comparable, d kdtree.Dim) float64 {
	q := c.(vertPoint)
	switch d {
	case 0:
		return p.pos.X - q.pos.X
	case 1:
		return p.pos.Y - q.pos.Y
	}
	panic("unreachable")
}

func (p vertPoint) Dims() int { return 2 }

// Distance returns the squared euclidean distance, as kdtree expects.
func (p vertPoint) Distance(c kdtree.Comparable) float64 {
	return p.pos.DistanceSquared(c.(vertPoint).pos)
}

// vertPoints implements kdtree.Interface.
type vertPoints []vertPoint

var _ kdtree.Interface = vertPoints(nil)

func (vp vertPoints) Index(i int) kdtree.Comparable { return vp[i] }
func (vp vertPoints) Len() int                      { return len(vp) }

func (vp vertPoints) Pivot(d kdtree.Dim) int {
	p := vertPlane{dim: d, pts: vp}
	return kdtree.Partition(p, kdtree.MedianOfMedians(p))
}

func (vp vertPoints) Slice(start, end int) kdtree.Interface { return vp[start:end] }

// vertPlane sorts vertex points along one dimension.
type vertPlane struct {
	dim kdtree.Dim
	pts vertPoints
}

func (p vertPlane) Less(i, j int) bool { return p.pts[i].Compare(p.pts[j], p.dim) < 0 }
func (p vertPlane) Swap(i, j int)      { p.pts[i], p.pts[j] = p.pts[j], p.pts[i] }
func (p vertPlane) Len() int           { return len(p.pts) }

func (p vertPlane) Slice(start, end int) kdtree.SortSlicer {
	p.pts = p.pts[start:end]
	return p
}

// ProximityIndex is a k-d tree over vertex positions. It is a snapshot: it
// does not follow later edits of the mesh it was built from.
type ProximityIndex struct {
	tree *kdtree.Tree
	n    int
}

// NewProximityIndex indexes the live vertices of m accepted by keep. A nil
// keep accepts every vertex.
func NewProximityIndex(m *Mesh, keep func(Vertex) bool) *ProximityIndex {
	var pts vertPoints
	for v := range m.Verts() {
		if keep == nil || keep(v) {
			pts = append(pts, vertPoint{id: v.ID, pos: v.Pos})
		}
	}
	ix := &ProximityIndex{n: len(pts)}
	if len(pts) > 0 {
		ix.tree = kdtree.New(pts, false)
	}
	return ix
}

// Len returns the number of indexed vertices.
func (ix *ProximityIndex) Len() int { return ix.n }

// Within returns the indexed vertices at distance at most r from c, in
// ascending id order.
func (ix *ProximityIndex) Within(c Point, r float64) []VertID {
	if ix.tree == nil || r < 0 {
		return nil
	}
	keep := kdtree.NewDistKeeper(r * r)
	ix.tree.NearestSet(keep, vertPoint{id: NoVert, pos: c})
	var out []VertID
	for _, cd := range keep.Heap {
		if cd.Comparable == nil {
			continue
		}
		out = append(out, cd.Comparable.(vertPoint).id)
	}
	slices.Sort(out)
	return out
}

// InRect returns the indexed vertices strictly inside r, in ascending id
// order.
func (ix *ProximityIndex) InRect(m *Mesh, r Rect) []VertID {
	r = r.Abs()
	c := r.Center()
	radius := math.Hypot(r.Width(), r.Height()) / 2
	var out []VertID
	for _, v := range ix.Within(c, radius) {
		if p, err := m.Pos(v); err == nil && r.ContainsStrict(p) {
			out = append(out, v)
		}
	}
	return out
}
