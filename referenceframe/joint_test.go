package referenceframe

import (
	"math"
	"testing"

	"github.com/golang/geo/r3"
	"go.viam.com/test"

	spatial "go.viam.com/jointmotion/spatialmath"
)

func TestRevoluteClamp(t *testing.T) {
	j, err := NewRevoluteJoint("shoulder", nil, r3.Vector{Z: 1}, Limit{Min: -1.57, Max: 1.57})
	test.That(t, err, test.ShouldBeNil)

	changed, err := j.SetValue(FullUpdate(3.0))
	test.That(t, err, test.ShouldBeNil)
	test.That(t, changed, test.ShouldBeTrue)
	test.That(t, j.Value(), test.ShouldResemble, []float64{1.57})

	// clamped to the same stored value, so nothing changes
	changed, err = j.SetValue(FullUpdate(5.0))
	test.That(t, err, test.ShouldBeNil)
	test.That(t, changed, test.ShouldBeFalse)

	j.SetIgnoreLimits(true)
	changed, _ = j.SetValue(FullUpdate(3.0))
	test.That(t, changed, test.ShouldBeTrue)
	test.That(t, j.Value()[0], test.ShouldEqual, 3.0)

	// re-enabling limits pulls the value back in range
	test.That(t, j.SetIgnoreLimits(false), test.ShouldBeTrue)
	test.That(t, j.Value()[0], test.ShouldEqual, 1.57)
}

func TestClampRoundTrip(t *testing.T) {
	lim := Limit{Min: -0.5, Max: 0.25}
	revolute, err := NewRevoluteJoint("r", nil, r3.Vector{X: 1}, lim)
	test.That(t, err, test.ShouldBeNil)
	prismatic, err := NewPrismaticJoint("p", nil, r3.Vector{Y: 2}, lim)
	test.That(t, err, test.ShouldBeNil)
	continuous, err := NewContinuousJoint("c", nil, r3.Vector{Z: 1})
	test.That(t, err, test.ShouldBeNil)
	planar, err := NewPlanarJoint("pl", nil, r3.Vector{Z: 1}, []Limit{lim, lim, Unbounded()})
	test.That(t, err, test.ShouldBeNil)
	floating := NewFloatingJoint("f", nil)

	for _, v := range []float64{-10, -0.5, -0.1, 0, 0.25, 0.3, 10} {
		for _, j := range []*Joint{revolute, prismatic} {
			_, err := j.SetValue(FullUpdate(v))
			test.That(t, err, test.ShouldBeNil)
			stored := j.Value()[0]
			test.That(t, stored, test.ShouldBeGreaterThanOrEqualTo, lim.Min)
			test.That(t, stored, test.ShouldBeLessThanOrEqualTo, lim.Max)
			test.That(t, stored, test.ShouldEqual, math.Max(lim.Min, math.Min(lim.Max, v)))
		}
		_, err = continuous.SetValue(FullUpdate(v))
		test.That(t, err, test.ShouldBeNil)
		test.That(t, continuous.Value()[0], test.ShouldEqual, v)

		_, err = planar.SetValue(FullUpdate(v, v, v))
		test.That(t, err, test.ShouldBeNil)
		test.That(t, planar.Value()[0], test.ShouldBeGreaterThanOrEqualTo, lim.Min)
		test.That(t, planar.Value()[0], test.ShouldBeLessThanOrEqualTo, lim.Max)
		test.That(t, planar.Value()[2], test.ShouldEqual, v)

		_, err = floating.SetValue(FullUpdate(v, v, v, v, v, v))
		test.That(t, err, test.ShouldBeNil)
		test.That(t, floating.Value()[5], test.ShouldEqual, v)
	}
}

func TestPartialUpdate(t *testing.T) {
	j, err := NewPlanarJoint("base", nil, r3.Vector{Z: 1}, nil)
	test.That(t, err, test.ShouldBeNil)
	_, err = j.SetValue(FullUpdate(1, 2, 0.5))
	test.That(t, err, test.ShouldBeNil)

	changed, err := j.SetValue(Update{nil, nil, Set(0.75)})
	test.That(t, err, test.ShouldBeNil)
	test.That(t, changed, test.ShouldBeTrue)
	test.That(t, j.Value(), test.ShouldResemble, []float64{1, 2, 0.75})

	changed, err = j.SetValue(Update{nil, nil, nil})
	test.That(t, err, test.ShouldBeNil)
	test.That(t, changed, test.ShouldBeFalse)
}

func TestArity(t *testing.T) {
	fixed := NewFixedJoint("mount", nil)
	changed, err := fixed.SetValue(Update{})
	test.That(t, err, test.ShouldBeNil)
	test.That(t, changed, test.ShouldBeFalse)

	_, err = fixed.SetValue(FullUpdate(1))
	test.That(t, err, test.ShouldWrap, ErrInvalidArity)

	j, err := NewRevoluteJoint("r", nil, r3.Vector{Z: 1}, Limit{Min: -1, Max: 1})
	test.That(t, err, test.ShouldBeNil)
	_, err = j.SetValue(FullUpdate(0.1, 0.2))
	test.That(t, err, test.ShouldWrap, ErrInvalidArity)
	test.That(t, j.Value(), test.ShouldResemble, []float64{0})

	_, err = NewRevoluteJoint("bad", nil, r3.Vector{}, Limit{Min: -1, Max: 1})
	test.That(t, err, test.ShouldWrap, ErrInvalidAxis)
	_, err = NewJoint("bad", RevoluteJoint, nil, r3.Vector{Z: 1}, nil)
	test.That(t, err, test.ShouldWrap, ErrInvalidArity)
}

func TestLocalPose(t *testing.T) {
	origin := spatial.NewPoseFromPoint(r3.Vector{X: 1})

	t.Run("revolute", func(t *testing.T) {
		j, err := NewRevoluteJoint("r", origin, r3.Vector{Z: 1}, Limit{Min: -math.Pi, Max: math.Pi})
		test.That(t, err, test.ShouldBeNil)
		_, err = j.SetValue(FullUpdate(math.Pi / 2))
		test.That(t, err, test.ShouldBeNil)
		expected := spatial.NewPoseFromOrientation(r3.Vector{X: 1}, &spatial.R4AA{Theta: math.Pi / 2, RZ: 1})
		test.That(t, spatial.PoseAlmostEqual(j.LocalPose(), expected), test.ShouldBeTrue)
	})

	t.Run("prismatic follows rotated origin", func(t *testing.T) {
		rotated := spatial.NewPoseFromOrientation(r3.Vector{X: 1}, &spatial.R4AA{Theta: math.Pi / 2, RZ: 1})
		j, err := NewPrismaticJoint("p", rotated, r3.Vector{X: 1}, Limit{Min: 0, Max: 1})
		test.That(t, err, test.ShouldBeNil)
		_, err = j.SetValue(FullUpdate(0.5))
		test.That(t, err, test.ShouldBeNil)
		test.That(t, spatial.R3VectorAlmostEqual(j.LocalPose().Point(), r3.Vector{X: 1, Y: 0.5}, 1e-9), test.ShouldBeTrue)
	})

	t.Run("planar", func(t *testing.T) {
		j, err := NewPlanarJoint("pl", nil, r3.Vector{Z: 1}, nil)
		test.That(t, err, test.ShouldBeNil)
		_, err = j.SetValue(FullUpdate(1, 2, math.Pi))
		test.That(t, err, test.ShouldBeNil)
		pose := j.LocalPose()
		test.That(t, spatial.R3VectorAlmostEqual(pose.Point(), r3.Vector{X: 1, Y: 2}, 1e-9), test.ShouldBeTrue)
		test.That(t, spatial.OrientationAlmostEqual(pose.Orientation(), &spatial.R4AA{Theta: math.Pi, RZ: 1}), test.ShouldBeTrue)

		// a plane with +X normal maps local x,y onto world y,z
		tilted, err := NewPlanarJoint("tilted", nil, r3.Vector{X: 1}, nil)
		test.That(t, err, test.ShouldBeNil)
		_, err = tilted.SetValue(FullUpdate(1, 0, 0))
		test.That(t, err, test.ShouldBeNil)
		pt := tilted.LocalPose().Point()
		test.That(t, pt.X, test.ShouldAlmostEqual, 0)
		test.That(t, pt.Norm(), test.ShouldAlmostEqual, 1)
	})

	t.Run("floating", func(t *testing.T) {
		j := NewFloatingJoint("f", origin)
		_, err := j.SetValue(FullUpdate(0, 1, 0, 0, 0, math.Pi/2))
		test.That(t, err, test.ShouldBeNil)
		pose := j.LocalPose()
		test.That(t, spatial.R3VectorAlmostEqual(pose.Point(), r3.Vector{X: 1, Y: 1}, 1e-9), test.ShouldBeTrue)
		test.That(t, pose.Orientation().EulerAngles().Yaw, test.ShouldAlmostEqual, math.Pi/2)
	})

	t.Run("fixed", func(t *testing.T) {
		test.That(t, spatial.PoseAlmostEqual(NewFixedJoint("m", origin).LocalPose(), origin), test.ShouldBeTrue)
	})
}

func TestParseJointType(t *testing.T) {
	for _, name := range []string{"fixed", "continuous", "revolute", "prismatic", "planar", "floating"} {
		jt, err := ParseJointType(name)
		test.That(t, err, test.ShouldBeNil)
		test.That(t, jt.String(), test.ShouldEqual, name)
	}
	_, err := ParseJointType("spherical")
	test.That(t, err, test.ShouldWrap, ErrUnsupportedJointType)

	var jt JointType
	test.That(t, jt.UnmarshalText([]byte("Planar")), test.ShouldBeNil)
	test.That(t, jt, test.ShouldEqual, PlanarJoint)
	test.That(t, jt.DoF(), test.ShouldEqual, 3)
	test.That(t, FloatingJoint.DoF(), test.ShouldEqual, 6)
}
