package tcp

import (
	"math"
	"testing"

	"github.com/golang/geo/r3"
	"go.viam.com/test"

	"go.viam.com/jointmotion/logging"
	"go.viam.com/jointmotion/referenceframe"
	spatial "go.viam.com/jointmotion/spatialmath"
)

func addRevolute(t *testing.T, tree *referenceframe.Tree, parent, name string, origin r3.Vector) {
	t.Helper()
	j, err := referenceframe.NewRevoluteJoint(name, spatial.NewPoseFromPoint(origin), r3.Vector{Z: 1},
		referenceframe.Limit{Min: -math.Pi, Max: math.Pi})
	test.That(t, err, test.ShouldBeNil)
	test.That(t, tree.AddJoint(parent, j), test.ShouldBeNil)
}

func TestResolveOffsetInvariance(t *testing.T) {
	tree := referenceframe.NewTree("arm", logging.NewTestLogger(t))
	addRevolute(t, tree, referenceframe.World, "shoulder", r3.Vector{Z: 1})
	test.That(t, tree.AddLink("flange", "shoulder", spatial.NewPoseFromPoint(r3.Vector{X: 1})), test.ShouldBeNil)
	test.That(t, tree.SetGeometry("flange", spatial.NewPoint(r3.Vector{}, "flange")), test.ShouldBeNil)

	r := NewResolver(Config{}, logging.NewTestLogger(t))
	for _, offset := range []r3.Vector{{}, {X: 0.1, Y: 0.2, Z: 0.3}, {Z: -2}} {
		pose, err := r.Resolve(tree, offset)
		test.That(t, err, test.ShouldBeNil)
		test.That(t, spatial.R3VectorAlmostEqual(pose.Point(), r3.Vector{X: 1, Z: 1}.Add(offset), 1e-9), test.ShouldBeTrue)
		test.That(t, spatial.OrientationAlmostEqual(pose.Orientation(), spatial.NewZeroOrientation()), test.ShouldBeTrue)
	}
	ref, ok := r.Reference()
	test.That(t, ok, test.ShouldBeTrue)
	test.That(t, ref, test.ShouldEqual, "flange")
}

func TestResolveNoKinematicChain(t *testing.T) {
	r := NewResolver(Config{}, logging.NewTestLogger(t))

	tree := referenceframe.NewTree("empty", logging.NewTestLogger(t))
	_, err := r.Resolve(tree, r3.Vector{})
	test.That(t, err, test.ShouldWrap, ErrNoKinematicChain)

	test.That(t, tree.AddLink("table", referenceframe.World, spatial.NewPoseFromPoint(r3.Vector{Z: 1})), test.ShouldBeNil)
	test.That(t, tree.AddJoint("table", referenceframe.NewFixedJoint("mount", nil)), test.ShouldBeNil)
	test.That(t, tree.SetGeometry("table", spatial.NewPoint(r3.Vector{}, "")), test.ShouldBeNil)
	_, err = r.Resolve(tree, r3.Vector{})
	test.That(t, err, test.ShouldWrap, ErrNoKinematicChain)
	_, ok := r.Reference()
	test.That(t, ok, test.ShouldBeFalse)

	_, err = r.Resolve(nil, r3.Vector{})
	test.That(t, err, test.ShouldNotBeNil)
}

func TestResolveFallback(t *testing.T) {
	tree := referenceframe.NewTree("bare", logging.NewTestLogger(t))
	addRevolute(t, tree, referenceframe.World, "j1", r3.Vector{})
	test.That(t, tree.AddLink("link1", "j1", spatial.NewPoseFromPoint(r3.Vector{X: 1})), test.ShouldBeNil)
	addRevolute(t, tree, "link1", "j2", r3.Vector{})

	r := NewResolver(Config{Offset: r3.Vector{X: 0.5}}, logging.NewTestLogger(t))
	pose, err := r.ResolveConfigured(tree)
	test.That(t, err, test.ShouldBeNil)
	ref, _ := r.Reference()
	test.That(t, ref, test.ShouldEqual, "j2")
	test.That(t, spatial.R3VectorAlmostEqual(pose.Point(), r3.Vector{X: 1.5}, 1e-9), test.ShouldBeTrue)

	// a childless joint is its own reference; a child takes over once added
	test.That(t, tree.AddLink("wrist", "j2", spatial.NewPoseFromPoint(r3.Vector{X: 0.25})), test.ShouldBeNil)
	_, err = tree.SetJointValue("j2", referenceframe.FullUpdate(math.Pi/2))
	test.That(t, err, test.ShouldBeNil)
	pose, err = r.ResolveConfigured(tree)
	test.That(t, err, test.ShouldBeNil)
	ref, _ = r.Reference()
	test.That(t, ref, test.ShouldEqual, "wrist")
	test.That(t, spatial.R3VectorAlmostEqual(pose.Point(), r3.Vector{X: 1, Y: 0.75}, 1e-9), test.ShouldBeTrue)
}

func TestResolvePrefersDeepGeometry(t *testing.T) {
	tree := referenceframe.NewTree("arm", logging.NewTestLogger(t))
	test.That(t, tree.AddLink("base", referenceframe.World, spatial.NewZeroPose()), test.ShouldBeNil)
	// far away but shallow
	test.That(t, tree.SetGeometry("base", spatial.NewPoint(r3.Vector{X: 400}, "")), test.ShouldBeNil)
	addRevolute(t, tree, "base", "j1", r3.Vector{})
	test.That(t, tree.AddLink("left", "j1", spatial.NewPoseFromPoint(r3.Vector{X: 1})), test.ShouldBeNil)
	test.That(t, tree.AddLink("right", "j1", spatial.NewPoseFromPoint(r3.Vector{X: 2})), test.ShouldBeNil)
	test.That(t, tree.SetGeometry("left", spatial.NewPoint(r3.Vector{}, "")), test.ShouldBeNil)
	test.That(t, tree.SetGeometry("right", spatial.NewPoint(r3.Vector{}, "")), test.ShouldBeNil)

	r := NewResolver(Config{}, logging.NewTestLogger(t))
	_, err := r.Resolve(tree, r3.Vector{})
	test.That(t, err, test.ShouldBeNil)
	ref, _ := r.Reference()
	test.That(t, ref, test.ShouldEqual, "right")

	// adding deeper geometry bumps the tree generation and invalidates the cached choice
	addRevolute(t, tree, "left", "j2", r3.Vector{})
	test.That(t, tree.AddLink("finger", "j2", spatial.NewPoseFromPoint(r3.Vector{X: 0.1})), test.ShouldBeNil)
	test.That(t, tree.SetGeometry("finger", spatial.NewPoint(r3.Vector{}, "")), test.ShouldBeNil)
	pose, err := r.Resolve(tree, r3.Vector{})
	test.That(t, err, test.ShouldBeNil)
	ref, _ = r.Reference()
	test.That(t, ref, test.ShouldEqual, "finger")
	test.That(t, spatial.R3VectorAlmostEqual(pose.Point(), r3.Vector{X: 1.1}, 1e-9), test.ShouldBeTrue)
}

func TestResolveBoxTip(t *testing.T) {
	tree := referenceframe.NewTree("arm", logging.NewTestLogger(t))
	addRevolute(t, tree, referenceframe.World, "wrist", r3.Vector{})
	test.That(t, tree.AddLink("hand", "wrist", spatial.NewPoseFromPoint(r3.Vector{X: 1})), test.ShouldBeNil)
	box, err := spatial.NewBox(spatial.NewPoseFromPoint(r3.Vector{Y: 0.05, Z: 0.05}), r3.Vector{X: 0.2, Y: 0.2, Z: 0.2}, "hand")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, tree.SetGeometry("hand", box), test.ShouldBeNil)

	r := NewResolver(Config{}, logging.NewTestLogger(t))
	pose, err := r.Resolve(tree, r3.Vector{})
	test.That(t, err, test.ShouldBeNil)
	test.That(t, spatial.R3VectorAlmostEqual(pose.Point(), r3.Vector{X: 1.1, Y: 0.15, Z: 0.15}, 1e-9), test.ShouldBeTrue)

	_, err = tree.SetJointValue("wrist", referenceframe.FullUpdate(math.Pi/2))
	test.That(t, err, test.ShouldBeNil)
	pose, err = r.Resolve(tree, r3.Vector{X: 0.1})
	test.That(t, err, test.ShouldBeNil)
	test.That(t, spatial.R3VectorAlmostEqual(pose.Point(), r3.Vector{X: -0.15, Y: 1.2, Z: 0.15}, 1e-9), test.ShouldBeTrue)
	expected := &spatial.R4AA{Theta: math.Pi / 2, RZ: 1}
	test.That(t, spatial.OrientationAlmostEqual(pose.Orientation(), expected), test.ShouldBeTrue)
}

func TestResolverCachePerTree(t *testing.T) {
	build := func(linkName string) *referenceframe.Tree {
		tree := referenceframe.NewTree("arm", logging.NewTestLogger(t))
		addRevolute(t, tree, referenceframe.World, "j", r3.Vector{})
		test.That(t, tree.AddLink(linkName, "j", spatial.NewPoseFromPoint(r3.Vector{X: 1})), test.ShouldBeNil)
		return tree
	}
	r := NewResolver(Config{}, logging.NewTestLogger(t))

	_, err := r.Resolve(build("a"), r3.Vector{})
	test.That(t, err, test.ShouldBeNil)
	ref, _ := r.Reference()
	test.That(t, ref, test.ShouldEqual, "a")

	_, err = r.Resolve(build("b"), r3.Vector{})
	test.That(t, err, test.ShouldBeNil)
	ref, _ = r.Reference()
	test.That(t, ref, test.ShouldEqual, "b")
}

func TestConfigFromAttributes(t *testing.T) {
	cfg, err := ConfigFromAttributes(map[string]interface{}{
		"offset": map[string]interface{}{"x": 0.1, "y": "0.2", "z": 3},
	})
	test.That(t, err, test.ShouldBeNil)
	test.That(t, cfg.Offset, test.ShouldResemble, r3.Vector{X: 0.1, Y: 0.2, Z: 3})

	_, err = ConfigFromAttributes(map[string]interface{}{"offset": map[string]interface{}{"x": math.NaN()}})
	test.That(t, err, test.ShouldNotBeNil)
}
