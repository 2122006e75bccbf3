package referenceframe

import (
	"testing"

	"github.com/golang/geo/r3"
	"go.viam.com/test"

	"go.viam.com/jointmotion/logging"
	spatial "go.viam.com/jointmotion/spatialmath"
)

func TestParseModelJSONFile(t *testing.T) {
	logger := logging.NewTestLogger(t)
	tree, err := ParseModelJSONFile("testdata/gripper_arm.json", "", logger)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, tree.Name(), test.ShouldEqual, "gripper_arm")
	test.That(t, tree.JointNames(), test.ShouldResemble, []string{"waist", "slide", "left_finger", "right_finger", "spin"})

	driver, ok := tree.MimicDriver("right_finger")
	test.That(t, ok, test.ShouldBeTrue)
	test.That(t, driver, test.ShouldEqual, "left_finger")

	_, err = tree.SetJointValues(map[string]Update{"slide": FullUpdate(0.5), "left_finger": FullUpdate(0.02)})
	test.That(t, err, test.ShouldBeNil)
	values := tree.JointValues()
	test.That(t, values["slide"], test.ShouldResemble, []float64{0.1})
	test.That(t, values["right_finger"], test.ShouldResemble, []float64{0.02})

	pose, err := tree.WorldPose("right_finger")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, spatial.R3VectorAlmostEqual(pose.Point(), r3.Vector{X: 0.4, Y: -0.02, Z: 0.3}, 1e-9), test.ShouldBeTrue)

	fi, err := tree.Frame("right_finger")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, fi.Geometry, test.ShouldNotBeNil)
	test.That(t, fi.Geometry.Label(), test.ShouldEqual, "right_finger")

	spin, err := tree.Joint("spin")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, spin.IgnoreLimits(), test.ShouldBeTrue)
	test.That(t, spin.Type(), test.ShouldEqual, ContinuousJoint)

	renamed, err := ParseModelJSONFile("testdata/gripper_arm.json", "renamed", logger)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, renamed.Name(), test.ShouldEqual, "renamed")
}

func TestModelConfigValidation(t *testing.T) {
	logger := logging.NewTestLogger(t)

	_, err := UnmarshalModelJSON(nil, "", logger)
	test.That(t, err, test.ShouldEqual, ErrNoModelInformation)

	_, err = UnmarshalModelJSON([]byte(`{"joints": [`), "", logger)
	test.That(t, err, test.ShouldBeError)

	cases := []struct {
		name   string
		json   string
		substr string
	}{
		{"missing id", `{"links": [{"parent": "world"}]}`, `"id" is required`},
		{"reserved", `{"links": [{"id": "world"}]}`, "reserved word"},
		{"bad type", `{"joints": [{"id": "j", "type": "ball"}]}`, "unsupported joint type"},
		{"missing max", `{"joints": [{"id": "j", "type": "revolute", "axis": {"z": 1}, "min": -1}]}`, `"max" is required`},
		{"inverted", `{"joints": [{"id": "j", "type": "prismatic", "axis": {"z": 1}, "min": 1, "max": -1}]}`, "greater than max"},
		{"zero axis", `{"joints": [{"id": "j", "type": "continuous"}]}`, "non-zero"},
		{"planar limits", `{"joints": [{"id": "j", "type": "planar", "axis": {"z": 1}, "limits": [{"min": 0, "max": 1}]}]}`, "limits"},
		{"duplicate", `{"links": [{"id": "a"}, {"id": "a"}]}`, "already exists"},
		{"unknown parent", `{"links": [{"id": "a", "parent": "b"}]}`, "unknown frame"},
		{"cycle", `{"links": [{"id": "a", "parent": "b"}, {"id": "b", "parent": "a"}]}`, "do not connect"},
		{"mimic fields", `{"mimics": [{}]}`, `"joint" is required`},
		{"mimic unknown", `{"mimics": [{"joint": "a", "driver": "b"}]}`, "unknown joint"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			_, err := UnmarshalModelJSON([]byte(c.json), "", logger)
			test.That(t, err, test.ShouldNotBeNil)
			test.That(t, err.Error(), test.ShouldContainSubstring, c.substr)
		})
	}
}
