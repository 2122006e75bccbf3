package spatialmath

import (
	"math"
	"testing"

	"github.com/golang/geo/r3"
	"go.viam.com/test"
)

func TestBoxVertices(t *testing.T) {
	b, err := NewBox(NewPoseFromPoint(r3.Vector{Z: 1}), r3.Vector{X: 2, Y: 4, Z: 2}, "b")
	test.That(t, err, test.ShouldBeNil)
	verts := b.Vertices()
	test.That(t, len(verts), test.ShouldEqual, 8)
	test.That(t, R3VectorAlmostEqual(verts[0], r3.Vector{X: 1, Y: 2, Z: 2}, 1e-9), test.ShouldBeTrue)
	test.That(t, R3VectorAlmostEqual(verts[7], r3.Vector{X: -1, Y: -2, Z: 0}, 1e-9), test.ShouldBeTrue)

	moved := b.Transform(NewPoseFromOrientation(r3.Vector{X: 10}, &R4AA{Theta: math.Pi / 2, RZ: 1}))
	test.That(t, R3VectorAlmostEqual(moved.Pose().Point(), r3.Vector{X: 10, Z: 1}, 1e-9), test.ShouldBeTrue)
	test.That(t, R3VectorAlmostEqual(moved.Vertices()[0], r3.Vector{X: 8, Y: 1, Z: 2}, 1e-9), test.ShouldBeTrue)
	test.That(t, moved.Label(), test.ShouldEqual, "b")

	_, err = NewBox(NewZeroPose(), r3.Vector{X: -1}, "")
	test.That(t, err, test.ShouldBeError)
}

func TestSphereAndPoint(t *testing.T) {
	s, err := NewSphere(NewZeroPose(), 1, "s")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, len(s.Vertices()), test.ShouldEqual, 8)
	test.That(t, R3VectorAlmostEqual(s.Vertices()[7], r3.Vector{X: -1, Y: -1, Z: -1}, 1e-9), test.ShouldBeTrue)

	_, err = NewSphere(NewZeroPose(), -1, "")
	test.That(t, err, test.ShouldNotBeNil)

	pt := NewPoint(r3.Vector{X: 1}, "p")
	test.That(t, pt.Vertices(), test.ShouldBeNil)
	test.That(t, pt.Transform(NewPoseFromPoint(r3.Vector{Y: 1})).Pose().Point(), test.ShouldResemble, r3.Vector{X: 1, Y: 1})
}

func TestGeometryConfig(t *testing.T) {
	cases := []struct {
		config   GeometryConfig
		expected GeometryType
	}{
		{GeometryConfig{Type: BoxType, X: 1, Y: 2, Z: 3, Label: "box"}, BoxType},
		{GeometryConfig{Type: SphereType, R: 2}, SphereType},
		{GeometryConfig{Type: PointType, TranslationOffset: r3.Vector{X: 1}}, PointType},
		{GeometryConfig{X: 1, Y: 1, Z: 1}, BoxType},
		{GeometryConfig{R: 1}, SphereType},
		{GeometryConfig{}, PointType},
	}
	for _, c := range cases {
		t.Run(string(c.expected), func(t *testing.T) {
			g, err := c.config.ParseConfig()
			test.That(t, err, test.ShouldBeNil)
			back, err := NewGeometryConfig(g)
			test.That(t, err, test.ShouldBeNil)
			test.That(t, back.Type, test.ShouldEqual, c.expected)
			test.That(t, back.Label, test.ShouldEqual, c.config.Label)
		})
	}

	_, err := (&GeometryConfig{Type: "cylinder"}).ParseConfig()
	test.That(t, err, test.ShouldBeError)
}
