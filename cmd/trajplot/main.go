// Package main is a developer tool that plans a synchronized multi-joint move and plots each
// joint's position and velocity over time.
package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/samber/lo"
	"github.com/urfave/cli/v2"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"

	"go.viam.com/jointmotion/logging"
	"go.viam.com/jointmotion/motionprofile"
	"go.viam.com/jointmotion/referenceframe"
	"go.viam.com/jointmotion/tcp"
	"go.viam.com/jointmotion/trajectory"
)

const (
	flagJoint           = "joint"
	flagMaxVelocity     = "max-velocity"
	flagMaxAcceleration = "max-acceleration"
	flagMaxJerk         = "max-jerk"
	flagProfile         = "profile"
	flagSamples         = "samples"
	flagOut             = "out"
	flagModel           = "model"
	flagLogLevel        = "log-level"
	flagLogFile         = "log-file"
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:      "trajplot",
		Usage:     "plot a synchronized joint trajectory",
		UsageText: "trajplot --joint shoulder:0:1.2 --joint elbow:0.3:-0.4 [options]",
		Flags: []cli.Flag{
			&cli.StringSliceFlag{
				Name:     flagJoint,
				Usage:    "joint move as name:current:target, repeatable",
				Required: true,
			},
			&cli.Float64Flag{Name: flagMaxVelocity, Value: 1, Usage: "maximum joint velocity"},
			&cli.Float64Flag{Name: flagMaxAcceleration, Value: 1, Usage: "maximum joint acceleration"},
			&cli.Float64Flag{Name: flagMaxJerk, Usage: "maximum joint jerk, required for s-curve profiles"},
			&cli.StringFlag{Name: flagProfile, Value: motionprofile.Trapezoidal.String(), Usage: "trapezoidal or s-curve"},
			&cli.IntFlag{Name: flagSamples, Value: 200, Usage: "number of samples per curve"},
			&cli.StringFlag{Name: flagOut, Value: "trajectory", Usage: "output file prefix"},
			&cli.StringFlag{Name: flagModel, Usage: "optional model JSON; also plots the tool center point path"},
			&cli.StringFlag{Name: flagLogLevel, Value: "info", Usage: "debug, info, warn or error"},
			&cli.StringFlag{Name: flagLogFile, Usage: "also write logs to this file, rotated at 10MB"},
		},
		Action: run,
	}
}

func run(c *cli.Context) error {
	logger := logging.NewLogger("trajplot")
	level, err := logging.LevelFromString(c.String(flagLogLevel))
	if err != nil {
		return err
	}
	logger.SetLevel(level)
	if logFile := c.String(flagLogFile); logFile != "" {
		appender := logging.NewFileAppender(logFile, 10, 3)
		defer func() {
			if err := appender.Close(); err != nil {
				fmt.Fprintln(os.Stderr, err)
			}
		}()
		logger.AddAppender(appender)
	}

	current, target, err := parseJointSpecs(c.StringSlice(flagJoint))
	if err != nil {
		return err
	}
	kind, err := motionprofile.ParseKind(c.String(flagProfile))
	if err != nil {
		return err
	}
	cfg := trajectory.Config{
		MaxVelocity:     c.Float64(flagMaxVelocity),
		MaxAcceleration: c.Float64(flagMaxAcceleration),
		MaxJerk:         c.Float64(flagMaxJerk),
		ProfileKind:     kind,
	}
	if err := cfg.Validate("flags"); err != nil {
		return err
	}
	plan, err := trajectory.Synchronize(current, target, nil, cfg)
	if err != nil {
		return err
	}
	logger.Infow("planned trajectory", "joints", plan.Joints(), "duration", plan.TotalTime(), "profile", kind.String())
	fmt.Fprintln(c.App.Writer, plan.String())

	samples := c.Int(flagSamples)
	if samples < 2 {
		return errors.Errorf("--%s must be at least 2", flagSamples)
	}
	out := c.String(flagOut)
	plots := map[string]*plot.Plot{}
	if plots[out+"-position.png"], plots[out+"-velocity.png"], err = jointPlots(plan, samples); err != nil {
		return err
	}

	if modelFile := c.String(flagModel); modelFile != "" {
		tree, err := referenceframe.ParseModelJSONFile(modelFile, "", logger.Sublogger("model"))
		if err != nil {
			return err
		}
		logger.Debugf("loaded model\n%s", tree)
		if plots[out+"-tcp.png"], err = tcpPlot(plan, tree, samples, logger); err != nil {
			return err
		}
	}

	var saves errgroup.Group
	for file, p := range plots {
		saves.Go(func() error { return save(p, file) })
	}
	if err := saves.Wait(); err != nil {
		return err
	}
	logger.Infow("wrote plots", "files", lo.Keys(plots))
	return nil
}

// parseJointSpecs turns name:current:target strings into current and target maps.
func parseJointSpecs(args []string) (map[string]float64, map[string]float64, error) {
	current := map[string]float64{}
	target := map[string]float64{}
	for _, arg := range args {
		name, from, to, err := parseJointSpec(arg)
		if err != nil {
			return nil, nil, err
		}
		if _, ok := target[name]; ok {
			return nil, nil, errors.Errorf("joint %q given more than once", name)
		}
		current[name], target[name] = from, to
	}
	return current, target, nil
}

func parseJointSpec(arg string) (string, float64, float64, error) {
	parts := strings.Split(arg, ":")
	if len(parts) != 3 || strings.TrimSpace(parts[0]) == "" {
		return "", 0, 0, errors.Errorf("joint %q must have the form name:current:target", arg)
	}
	from, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return "", 0, 0, errors.Wrapf(err, "joint %q current value", arg)
	}
	to, err := strconv.ParseFloat(strings.TrimSpace(parts[2]), 64)
	if err != nil {
		return "", 0, 0, errors.Wrapf(err, "joint %q target value", arg)
	}
	return strings.TrimSpace(parts[0]), from, to, nil
}

// sampleTimes spreads n samples over the plan, or over one second for a plan that is already done.
func sampleTimes(plan *trajectory.SyncPlan, n int) []float64 {
	span := plan.TotalTime()
	if span == 0 {
		span = 1
	}
	times := make([]float64, n)
	for i := range times {
		times[i] = span * float64(i) / float64(n-1)
	}
	return times
}

func jointPlots(plan *trajectory.SyncPlan, samples int) (*plot.Plot, *plot.Plot, error) {
	position := plot.New()
	position.Title.Text = fmt.Sprintf("Joint position (%s, %.3fs)", plan.Kind(), plan.TotalTime())
	position.X.Label.Text = "Time (s)"
	position.Y.Label.Text = "Position"

	velocity := plot.New()
	velocity.Title.Text = fmt.Sprintf("Joint velocity (%s)", plan.Kind())
	velocity.X.Label.Text = "Time (s)"
	velocity.Y.Label.Text = "Velocity"

	times := sampleTimes(plan, samples)
	for i, name := range plan.Joints() {
		posPts := make(plotter.XYs, 0, len(times))
		velPts := make(plotter.XYs, 0, len(times))
		for _, t := range times {
			posPts = append(posPts, plotter.XY{X: t, Y: plan.Sample(t)[name]})
			velPts = append(velPts, plotter.XY{X: t, Y: plan.Velocities(t)[name]})
		}
		if err := addLine(position, name, posPts, i); err != nil {
			return nil, nil, err
		}
		if err := addLine(velocity, name, velPts, i); err != nil {
			return nil, nil, err
		}
	}
	return position, velocity, nil
}

// tcpPlot plays the plan onto tree and traces the tool center point in the XY plane.
func tcpPlot(plan *trajectory.SyncPlan, tree *referenceframe.Tree, samples int, logger logging.Logger) (*plot.Plot, error) {
	player, err := trajectory.NewPlayer(plan, tree, logger.Sublogger("player"))
	if err != nil {
		return nil, err
	}
	resolver := tcp.NewResolver(tcp.Config{}, logger.Sublogger("tcp"))

	path := plot.New()
	path.Title.Text = "Tool center point path"
	path.X.Label.Text = "X"
	path.Y.Label.Text = "Y"

	pts := make(plotter.XYs, 0, samples)
	for _, t := range sampleTimes(plan, samples) {
		if _, err := player.Apply(time.Duration(t * float64(time.Second))); err != nil {
			return nil, err
		}
		pose, err := resolver.ResolveConfigured(tree)
		if err != nil {
			return nil, err
		}
		pts = append(pts, plotter.XY{X: pose.Point().X, Y: pose.Point().Y})
	}
	if ref, ok := resolver.Reference(); ok {
		logger.Infow("traced tool center point", "reference", ref)
	}
	if err := addLine(path, "tcp", pts, 0); err != nil {
		return nil, err
	}
	return path, nil
}

func addLine(p *plot.Plot, label string, pts plotter.XYs, i int) error {
	line, err := plotter.NewLine(pts)
	if err != nil {
		return err
	}
	line.Color = plotutil.Color(i)
	line.Width = vg.Points(1)
	p.Add(line)
	p.Legend.Add(label, line)
	return nil
}

func save(p *plot.Plot, file string) error {
	if err := p.Save(10*vg.Inch, 5*vg.Inch, file); err != nil {
		return errors.Wrapf(err, "saving %s", file)
	}
	return nil
}
