package epimesh

import (
	"math"
	"testing"

	"github.com/pkg/errors"
)

func TestAffineApply(t *testing.T) {
	tests := []struct {
		name string
		aff  Affine
		in   Point
		want Point
	}{
		{"identity", Identity, Pt(3, 4), Pt(3, 4)},
		{"flip", FlipY, Pt(3, 4), Pt(3, -4)},
		{"scale", Scale(2, 3), Pt(1, 1), Pt(2, 3)},
		{"rotate", Rotate(math.Pi / 2), Pt(1, 0), Pt(0, 1)},
		{"rotate about", RotateAbout(math.Pi, Pt(1, 1)), Pt(0, 0), Pt(2, 2)},
		{"composed", Scale(2, 2).ThenTranslate(Vec(1, 0)), Pt(1, 1), Pt(3, 2)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			diff(t, tt.want, tt.aff.Apply(tt.in), approx)
			back := tt.aff.Invert().Apply(tt.aff.Apply(tt.in))
			diff(t, tt.in, back, approx)
		})
	}
}

func TestMeshTransform(t *testing.T) {
	m := unitSquare(t)
	if err := m.Transform(Scale(2, 2).ThenTranslate(Vec(1, 1))); err != nil {
		t.Fatal(err)
	}
	if !m.Stale() {
		t.Error("geometry not stale after transform")
	}
	p, _ := m.Pos(2)
	diff(t, Pt(3, 3), p)
	mustUpdate(t, m)
	fg, _ := m.FaceGeom(0)
	diff(t, 4.0, fg.Area, approx)

	if err := m.Transform(FlipY); err != nil {
		t.Fatal(err)
	}
	mustUpdate(t, m)
	fg, _ = m.FaceGeom(0)
	diff(t, -4.0, fg.Area, approx)

	if err := m.Transform(Scale(1, 0)); !errors.Is(err, ErrBadArgument) {
		t.Errorf("singular map: got %v, want %v", err, ErrBadArgument)
	}
}
