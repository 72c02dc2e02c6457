package epimesh_test

import (
	"fmt"

	"github.com/vertexmodel/epimesh"
)

func ExampleMesh_PutVert() {
	m := epimesh.NewMesh(epimesh.DefaultConfig())
	f, err := m.AddPolygon(epimesh.Pt(0, 0), epimesh.Pt(1, 0), epimesh.Pt(1, 1), epimesh.Pt(0, 1))
	if err != nil {
		panic(err)
	}
	res, err := m.PutVert(0, epimesh.Pt(0.5, 0))
	if err != nil {
		panic(err)
	}
	verts, _ := m.FaceVerts(f)
	p, _ := m.Pos(res.Vert)
	fmt.Println(verts)
	fmt.Println(p)
	// Output:
	// [0 4 1 2 3]
	// (0.5, 0)
}

func ExampleMesh_DivideFace() {
	m := epimesh.NewMesh(epimesh.DefaultConfig())
	f, _ := m.AddPolygon(epimesh.Pt(0, 0), epimesh.Pt(2, 0), epimesh.Pt(2, 2), epimesh.Pt(0, 2))
	geom := epimesh.PlanarGeometry{}
	if err := geom.UpdateAll(m); err != nil {
		panic(err)
	}
	div, err := m.DivideFace(f, 0)
	if err != nil {
		panic(err)
	}
	if err := geom.UpdateAll(m); err != nil {
		panic(err)
	}
	for _, g := range []epimesh.FaceID{f, div.Daughter} {
		fg, _ := m.FaceGeom(g)
		fmt.Printf("face %d: %d sides, area %.1f\n", g, fg.NumSides, fg.Area)
	}
	// Output:
	// face 0: 5 sides, area 2.0
	// face 1: 5 sides, area 2.0
}
