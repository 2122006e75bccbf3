package trajectory

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/golang/geo/r3"
	"go.viam.com/test"

	"go.viam.com/jointmotion/logging"
	"go.viam.com/jointmotion/referenceframe"
)

func twoJointTree(t *testing.T) *referenceframe.Tree {
	t.Helper()
	tree := referenceframe.NewTree("pair", logging.NewTestLogger(t))
	for i, name := range []string{"j0", "j1"} {
		parent := referenceframe.World
		if i > 0 {
			parent = "j0"
		}
		j, err := referenceframe.NewRevoluteJoint(name, nil, r3.Vector{Z: 1}, referenceframe.Limit{Min: -math.Pi, Max: math.Pi})
		test.That(t, err, test.ShouldBeNil)
		test.That(t, tree.AddJoint(parent, j), test.ShouldBeNil)
	}
	return tree
}

func jointValue(t *testing.T, tree *referenceframe.Tree, name string) float64 {
	t.Helper()
	j, err := tree.Joint(name)
	test.That(t, err, test.ShouldBeNil)
	return j.Value()[0]
}

func TestPlayerRun(t *testing.T) {
	tree := twoJointTree(t)
	plan, err := Synchronize(
		map[string]float64{"j0": 0, "j1": 0},
		map[string]float64{"j0": 1, "j1": -0.5},
		nil, unitLimits,
	)
	test.That(t, err, test.ShouldBeNil)

	mockClock := clock.NewMock()
	var ticks []time.Duration
	var lastProgress float64
	player, err := NewPlayer(plan, tree, logging.NewTestLogger(t),
		WithClock(mockClock),
		WithTickRate(20),
		WithTickFunc(func(elapsed time.Duration, values map[string]float64) {
			ticks = append(ticks, elapsed)
			lastProgress = plan.Progress(elapsed.Seconds())
		}),
	)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, player.Period(), test.ShouldEqual, 50*time.Millisecond)

	errCh := make(chan error, 1)
	go func() {
		errCh <- player.Run(context.Background())
	}()

	var runErr error
	finished := false
	for i := 0; i < 1000 && !finished; i++ {
		select {
		case runErr = <-errCh:
			finished = true
		default:
			mockClock.Add(player.Period())
		}
	}
	if !finished {
		runErr = <-errCh
	}
	test.That(t, runErr, test.ShouldBeNil)

	test.That(t, len(ticks), test.ShouldBeGreaterThan, 2)
	test.That(t, ticks[0], test.ShouldEqual, time.Duration(0))
	test.That(t, lastProgress, test.ShouldEqual, 1.0)
	test.That(t, jointValue(t, tree, "j0"), test.ShouldEqual, 1.0)
	test.That(t, jointValue(t, tree, "j1"), test.ShouldEqual, -0.5)
}

func TestPlayerApply(t *testing.T) {
	tree := twoJointTree(t)
	plan, err := Synchronize(
		map[string]float64{"j0": 0, "j1": 0},
		map[string]float64{"j0": 2, "j1": 0.5},
		nil, unitLimits,
	)
	test.That(t, err, test.ShouldBeNil)
	player, err := NewPlayer(plan, tree, logging.NewTestLogger(t))
	test.That(t, err, test.ShouldBeNil)
	test.That(t, player.Period(), test.ShouldEqual, time.Second/DefaultTickRate)

	// halfway through a symmetric profile each joint has covered half its distance
	done, err := player.Apply(time.Duration(plan.TotalTime() / 2 * float64(time.Second)))
	test.That(t, err, test.ShouldBeNil)
	test.That(t, done, test.ShouldBeFalse)
	test.That(t, jointValue(t, tree, "j0"), test.ShouldAlmostEqual, 1.0, 1e-6)
	test.That(t, jointValue(t, tree, "j1"), test.ShouldAlmostEqual, 0.25, 1e-6)

	done, err = player.Apply(time.Hour)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, done, test.ShouldBeTrue)
	test.That(t, jointValue(t, tree, "j0"), test.ShouldEqual, 2.0)
}

func TestPlayerRejectsUnknownJoints(t *testing.T) {
	tree := twoJointTree(t)
	plan, err := Synchronize(
		map[string]float64{"j0": 0, "ghost": 0, "phantom": 0},
		map[string]float64{"j0": 1, "ghost": 1, "phantom": 1},
		nil, unitLimits,
	)
	test.That(t, err, test.ShouldBeNil)

	_, err = NewPlayer(plan, tree, logging.NewTestLogger(t))
	test.That(t, err, test.ShouldWrap, referenceframe.ErrUnknownJoint)
	test.That(t, err.Error(), test.ShouldContainSubstring, "ghost")
	test.That(t, err.Error(), test.ShouldContainSubstring, "phantom")
	test.That(t, jointValue(t, tree, "j0"), test.ShouldEqual, 0.0)
}

func TestPlayerCancel(t *testing.T) {
	tree := twoJointTree(t)
	plan, err := Synchronize(map[string]float64{"j0": 0}, map[string]float64{"j0": 1}, nil, unitLimits)
	test.That(t, err, test.ShouldBeNil)
	player, err := NewPlayer(plan, tree, logging.NewTestLogger(t), WithClock(clock.NewMock()))
	test.That(t, err, test.ShouldBeNil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err = player.Run(ctx)
	test.That(t, err, test.ShouldWrap, context.Canceled)
	test.That(t, jointValue(t, tree, "j0"), test.ShouldEqual, 0.0)
}

func TestPlayerStaticPlan(t *testing.T) {
	tree := twoJointTree(t)
	plan, err := Synchronize(map[string]float64{"j0": 0}, map[string]float64{"j0": 0}, nil, Config{})
	test.That(t, err, test.ShouldBeNil)
	calls := 0
	player, err := NewPlayer(plan, tree, logging.NewTestLogger(t),
		WithClock(clock.NewMock()),
		WithTickFunc(func(time.Duration, map[string]float64) { calls++ }),
	)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, player.Run(context.Background()), test.ShouldBeNil)
	test.That(t, calls, test.ShouldEqual, 1)
}

func TestPlayerRejectsUnplayableJoints(t *testing.T) {
	tree := twoJointTree(t)
	base, err := referenceframe.NewPlanarJoint("base", nil, r3.Vector{Z: 1}, nil)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, tree.AddJoint(referenceframe.World, base), test.ShouldBeNil)
	test.That(t, tree.AddMimic("j0", "j1", 2, 0.1), test.ShouldBeNil)

	plan, err := Synchronize(map[string]float64{"base": 0}, map[string]float64{"base": 1}, nil, unitLimits)
	test.That(t, err, test.ShouldBeNil)
	_, err = NewPlayer(plan, tree, logging.NewTestLogger(t))
	test.That(t, err, test.ShouldWrap, referenceframe.ErrInvalidArity)
	test.That(t, err.Error(), test.ShouldContainSubstring, "base")

	plan, err = Synchronize(
		map[string]float64{"j0": 0, "j1": 0.1},
		map[string]float64{"j0": 0.3, "j1": 5},
		nil, unitLimits,
	)
	test.That(t, err, test.ShouldBeNil)
	_, err = NewPlayer(plan, tree, logging.NewTestLogger(t))
	test.That(t, err, test.ShouldWrap, referenceframe.ErrMimicFollower)
	test.That(t, jointValue(t, tree, "j1"), test.ShouldAlmostEqual, 0.1, 1e-9)

	// the driver alone carries its follower along
	plan, err = Synchronize(map[string]float64{"j0": 0}, map[string]float64{"j0": 0.3}, nil, unitLimits)
	test.That(t, err, test.ShouldBeNil)
	player, err := NewPlayer(plan, tree, logging.NewTestLogger(t), WithClock(clock.NewMock()))
	test.That(t, err, test.ShouldBeNil)
	done, err := player.Apply(time.Hour)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, done, test.ShouldBeTrue)
	test.That(t, jointValue(t, tree, "j1"), test.ShouldAlmostEqual, 0.1+2*0.3, 1e-9)
}
