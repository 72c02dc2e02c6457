// Package meshtext reads and writes meshes in a small line-oriented text
// format:
//
//	# comment
//	vert 0 (0, 0);
//	vert 1 (1, 0);
//	vert 2 (1, 1) inactive;
//	face 0 : 0 1 2;
//
// A vert statement gives a vertex label and position, and optionally marks
// the vertex inactive. A face statement lists the vertex labels of its ring
// in order; the face owns the half-edges v0→v1, …, vn→v0. Labels only name
// elements within one document: parsed elements get fresh ids in the order
// they appear.
//
// Only vertex positions, activity and face rings are stored. Other
// attributes take the defaults of the configuration passed to [Parse].
// Faces with two sides are read back only if that configuration sets
// Topology.AllowTwoSided.
package meshtext

import (
	"bufio"
	"io"
	"strconv"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
	"github.com/pkg/errors"

	"github.com/vertexmodel/epimesh"
)

var (
	ErrDuplicateLabel = errors.New("duplicate label")
	ErrUnknownVertex  = errors.New("unknown vertex label")
)

type document struct {
	Stmts []*stmt `@@*`
}

type stmt struct {
	Vert *vertStmt `  @@`
	Face *faceStmt `| @@`
}

type vertStmt struct {
	Label    int     `"vert" @Number`
	X        float64 `"(" @Number ","`
	Y        float64 `@Number ")"`
	Inactive bool    `@"inactive"? ";"`
}

type faceStmt struct {
	Label int   `"face" @Number ":"`
	Ring  []int `@Number* ";"`
}

var meshLexer = lexer.MustSimple([]lexer.SimpleRule{
	{"Comment", `#[^\n]*`},
	{"Number", `[-+]?(\d+\.?\d*|\.\d+)([eE][-+]?\d+)?`},
	{"Ident", `[A-Za-z_]\w*`},
	{"Punct", `[(),:;]`},
	{"whitespace", `\s+`},
})

var parser = participle.MustBuild[document](
	participle.Lexer(meshLexer),
	participle.Elide("Comment"),
)

// Parse reads a document from r and builds a mesh whose new elements take
// their attributes from cfg. The mesh is validated before it is returned.
func Parse(r io.Reader, cfg epimesh.Config) (*epimesh.Mesh, error) {
	doc, err := parser.Parse("", r)
	if err != nil {
		return nil, errors.Wrap(err, "meshtext")
	}
	return build(doc, cfg)
}

// ParseString is like [Parse] but reads from s.
func ParseString(s string, cfg epimesh.Config) (*epimesh.Mesh, error) {
	doc, err := parser.ParseString("", s)
	if err != nil {
		return nil, errors.Wrap(err, "meshtext")
	}
	return build(doc, cfg)
}

func build(doc *document, cfg epimesh.Config) (*epimesh.Mesh, error) {
	m := epimesh.NewMesh(cfg)
	verts := make(map[int]epimesh.VertID)
	faces := make(map[int]bool)
	for _, st := range doc.Stmts {
		switch {
		case st.Vert != nil:
			vs := st.Vert
			if _, dup := verts[vs.Label]; dup {
				return nil, errors.Wrapf(ErrDuplicateLabel, "meshtext: vert %d", vs.Label)
			}
			v := m.AddVert(epimesh.Pt(vs.X, vs.Y))
			if vs.Inactive {
				m.SetActive(v, false)
			}
			verts[vs.Label] = v
		case st.Face != nil:
			fs := st.Face
			if faces[fs.Label] {
				return nil, errors.Wrapf(ErrDuplicateLabel, "meshtext: face %d", fs.Label)
			}
			faces[fs.Label] = true
			ring := make([]epimesh.VertID, len(fs.Ring))
			for i, l := range fs.Ring {
				v, ok := verts[l]
				if !ok {
					return nil, errors.Wrapf(ErrUnknownVertex, "meshtext: face %d: vert %d", fs.Label, l)
				}
				ring[i] = v
			}
			f := m.AddFace()
			if err := addRing(m, f, ring, cfg.Topology.AllowTwoSided); err != nil {
				return nil, errors.Wrapf(err, "meshtext: face %d", fs.Label)
			}
		}
	}
	if err := m.Validate(); err != nil {
		return nil, errors.Wrap(err, "meshtext")
	}
	return m, nil
}

// addRing closes f with ring. Two-vertex rings, as left behind by collapses
// that allow two-sided faces, are only accepted when twoSided is set.
func addRing(m *epimesh.Mesh, f epimesh.FaceID, ring []epimesh.VertID, twoSided bool) error {
	switch {
	case len(ring) == 0:
		return nil
	case len(ring) == 2 && twoSided:
		if _, err := m.AddEdge(ring[0], ring[1], f); err != nil {
			return err
		}
		_, err := m.AddEdge(ring[1], ring[0], f)
		return err
	default:
		_, err := m.AddRing(f, ring)
		return err
	}
}

// Format writes m to w, labelling elements with their ids. Faces whose
// half-edges do not form a single ring without repeated vertices cannot be
// written.
func Format(w io.Writer, m *epimesh.Mesh) error {
	bw := bufio.NewWriter(w)
	var buf []byte
	for v := range m.Verts() {
		buf = append(buf[:0], "vert "...)
		buf = strconv.AppendInt(buf, int64(v.ID), 10)
		buf = append(buf, " ("...)
		buf = strconv.AppendFloat(buf, v.Pos.X, 'g', -1, 64)
		buf = append(buf, ", "...)
		buf = strconv.AppendFloat(buf, v.Pos.Y, 'g', -1, 64)
		buf = append(buf, ')')
		if !v.Active {
			buf = append(buf, " inactive"...)
		}
		buf = append(buf, ";\n"...)
		bw.Write(buf)
	}
	for f := range m.Faces() {
		ring, err := m.FaceVerts(f.ID)
		if err != nil {
			return errors.Wrapf(err, "meshtext: face %d", f.ID)
		}
		buf = append(buf[:0], "face "...)
		buf = strconv.AppendInt(buf, int64(f.ID), 10)
		buf = append(buf, " :"...)
		for _, v := range ring {
			buf = append(buf, ' ')
			buf = strconv.AppendInt(buf, int64(v), 10)
		}
		buf = append(buf, ";\n"...)
		bw.Write(buf)
	}
	return bw.Flush()
}
