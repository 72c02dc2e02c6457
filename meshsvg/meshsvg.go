// Package meshsvg draws meshes as SVG documents, for inspecting the result
// of topology edits.
package meshsvg

import (
	"fmt"
	"io"

	svg "github.com/ajstarks/svgo/float"
	"github.com/pkg/errors"

	"github.com/vertexmodel/epimesh"
)

// Style controls the appearance of [Write]'s output.
type Style struct {
	// Scale is the number of SVG units per mesh unit. Default 100.
	Scale float64
	// Margin around the mesh, in mesh units. Default 2% of the larger
	// extent.
	Margin float64
	// VertRadius is the radius of vertex markers in mesh units. Zero
	// hides vertices.
	VertRadius float64

	Face     string
	Boundary string
	Vert     string
	Inactive string
}

// DefaultStyle returns the style used when Write is given a zero Style.
func DefaultStyle() Style {
	return Style{
		Scale:      100,
		VertRadius: 0.02,
		Face:       "fill:#cde;fill-opacity:0.6;stroke:#456;stroke-width:1",
		Boundary:   "stroke:#c33;stroke-width:2",
		Vert:       "fill:#123",
		Inactive:   "fill:#999",
	}
}

// Write draws m to w: every face as a filled polygon, boundary half-edges
// on top of them and vertices last. The y axis points up.
func Write(w io.Writer, m *epimesh.Mesh, st Style) error {
	if st == (Style{}) {
		st = DefaultStyle()
	}
	if st.Scale <= 0 {
		return errors.Errorf("meshsvg: scale %g", st.Scale)
	}
	if m.NumVerts() == 0 {
		return errors.New("meshsvg: empty mesh")
	}

	bbox := epimesh.EmptyRect()
	for v := range m.Verts() {
		bbox = bbox.UnionPoint(v.Pos)
	}
	margin := st.Margin
	if margin == 0 {
		margin = 0.02 * max(bbox.Width(), bbox.Height())
	}
	margin += st.VertRadius
	bbox = bbox.Inflate(margin, margin)
	width := bbox.Width() * st.Scale
	height := bbox.Height() * st.Scale

	view := epimesh.FlipY.Mul(epimesh.Translate(epimesh.Vec(-bbox.X0, -bbox.Y1))).
		ThenScale(st.Scale, st.Scale)

	canvas := svg.New(w)
	canvas.Start(width, height)
	for f := range m.Faces() {
		ring, err := m.FaceVerts(f.ID)
		if err != nil {
			return errors.Wrapf(err, "meshsvg: face %d", f.ID)
		}
		if len(ring) == 0 {
			continue
		}
		xs := make([]float64, len(ring))
		ys := make([]float64, len(ring))
		for i, v := range ring {
			p, _ := m.Pos(v)
			p = view.Apply(p)
			xs[i], ys[i] = p.X, p.Y
		}
		canvas.Polygon(xs, ys, st.Face, fmt.Sprintf(`id="face-%d"`, f.ID))
	}
	for h := range m.Edges() {
		if !m.IsBoundary(h.ID) {
			continue
		}
		seg, _ := m.Segment(h.ID)
		p0, p1 := view.Apply(seg.P0), view.Apply(seg.P1)
		canvas.Line(p0.X, p0.Y, p1.X, p1.Y, st.Boundary)
	}
	if st.VertRadius > 0 {
		for v := range m.Verts() {
			style := st.Vert
			if !v.Active {
				style = st.Inactive
			}
			p := view.Apply(v.Pos)
			canvas.Circle(p.X, p.Y, st.VertRadius*st.Scale, style)
		}
	}
	canvas.End()
	return nil
}
