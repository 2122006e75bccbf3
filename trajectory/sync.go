// Package trajectory synchronizes independent single-joint motion profiles so every joint of a
// multi-joint move arrives at the same time, and plays the result back onto a kinematic tree.
package trajectory

import (
	"fmt"
	"math"
	"sort"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/pkg/errors"
	"github.com/samber/lo"
	"gonum.org/v1/gonum/floats"

	"go.viam.com/jointmotion/motionprofile"
	"go.viam.com/jointmotion/referenceframe"
)

// ErrMissingLimits is returned when a moving joint has no motion limits to plan with.
var ErrMissingLimits = errors.New("no motion limits for joint")

type axis struct {
	name     string
	current  float64
	target   float64
	profile  motionprofile.Profile
	unscaled float64
}

func (a *axis) static() bool {
	return motionprofile.IsStatic(a.profile)
}

// SyncPlan is a synchronized multi-joint move. It is immutable once built and every query is a
// pure function of elapsed time, so it may be sampled repeatedly and out of order.
type SyncPlan struct {
	kind  motionprofile.Kind
	axes  []axis
	index map[string]int
	total float64
}

// Synchronize plans a move of every joint in target from its value in current. Joints that move
// less than motionprofile.StaticThreshold are static and do not contribute to timing. Every other
// joint is planned independently, then slowed down so that all of them finish together at the
// longest individual duration.
//
// Limits are taken from limits when present, then from cfg. Mimic followers move with their
// drivers and should be left out of target; a Player rejects plans that name one.
func Synchronize(
	current, target map[string]float64,
	limits map[string]motionprofile.Limits,
	cfg Config,
) (*SyncPlan, error) {
	names := lo.Keys(target)
	sort.Strings(names)

	plan := &SyncPlan{
		kind:  cfg.ProfileKind,
		axes:  make([]axis, 0, len(names)),
		index: make(map[string]int, len(names)),
	}
	durations := make([]float64, 0, len(names))
	for _, name := range names {
		from, ok := current[name]
		if !ok {
			return nil, referenceframe.NewUnknownJointError(name)
		}
		to := target[name]
		a := axis{name: name, current: from, target: to}
		distance := to - from
		if math.Abs(distance) < motionprofile.StaticThreshold {
			a.profile = motionprofile.NewStatic(cfg.ProfileKind, distance)
		} else {
			lim, err := cfg.limitsFor(name, limits)
			if err != nil {
				return nil, err
			}
			if a.profile, err = motionprofile.Plan(cfg.ProfileKind, distance, lim); err != nil {
				return nil, errors.Wrapf(err, "joint %q", name)
			}
			a.unscaled = a.profile.Duration()
			durations = append(durations, a.unscaled)
		}
		plan.index[name] = len(plan.axes)
		plan.axes = append(plan.axes, a)
	}
	if len(durations) == 0 {
		return plan, nil
	}
	plan.total = floats.Max(durations)

	for i := range plan.axes {
		a := &plan.axes[i]
		if a.static() || a.unscaled >= plan.total {
			continue
		}
		lim, err := cfg.limitsFor(a.name, limits)
		if err != nil {
			return nil, err
		}
		scaled, err := motionprofile.Plan(cfg.ProfileKind, a.target-a.current, lim.Scaled(a.unscaled/plan.total))
		if err != nil {
			return nil, errors.Wrapf(err, "rescaling joint %q", a.name)
		}
		a.profile = scaled
	}
	return plan, nil
}

// Kind returns the profile shape every joint in the plan follows.
func (p *SyncPlan) Kind() motionprofile.Kind { return p.kind }

// TotalTime is the shared completion time in seconds. It is zero when every joint is static.
func (p *SyncPlan) TotalTime() float64 { return p.total }

// Joints returns the names of every joint in the plan, sorted.
func (p *SyncPlan) Joints() []string {
	return lo.Map(p.axes, func(a axis, _ int) string { return a.name })
}

// Profile returns the (rescaled) profile a joint follows.
func (p *SyncPlan) Profile(name string) (motionprofile.Profile, bool) {
	i, ok := p.index[name]
	if !ok {
		return nil, false
	}
	return p.axes[i].profile, true
}

// UnscaledDuration returns how long a joint would have taken on its own.
func (p *SyncPlan) UnscaledDuration(name string) (float64, bool) {
	i, ok := p.index[name]
	if !ok {
		return 0, false
	}
	return p.axes[i].unscaled, true
}

func (p *SyncPlan) clampTime(t float64) float64 {
	return math.Max(0, math.Min(t, p.total))
}

// Sample returns every joint's value t seconds into the move. Static joints and every joint once
// the move is done report their target exactly.
func (p *SyncPlan) Sample(t float64) map[string]float64 {
	out := make(map[string]float64, len(p.axes))
	done := p.Done(t)
	for _, a := range p.axes {
		if done || a.static() {
			out[a.name] = a.target
			continue
		}
		out[a.name] = a.current + a.profile.Position(p.clampTime(t))
	}
	return out
}

// Velocities returns every joint's velocity t seconds into the move.
func (p *SyncPlan) Velocities(t float64) map[string]float64 {
	out := make(map[string]float64, len(p.axes))
	for _, a := range p.axes {
		if a.static() || t < 0 || t >= p.total {
			out[a.name] = 0
			continue
		}
		out[a.name] = a.profile.Velocity(t)
	}
	return out
}

// Progress returns the completed fraction of the move in [0, 1].
func (p *SyncPlan) Progress(t float64) float64 {
	if p.total == 0 {
		return 1
	}
	return math.Max(0, math.Min(t/p.total, 1))
}

// Done reports whether the move is complete at t. A plan of only static joints is always done.
func (p *SyncPlan) Done(t float64) bool {
	return t >= p.total
}

// Updates converts a sample into tree updates for single degree of freedom joints.
func Updates(values map[string]float64) map[string]referenceframe.Update {
	return lo.MapValues(values, func(v float64, _ string) referenceframe.Update {
		return referenceframe.FullUpdate(v)
	})
}

// String prints out a table of each joint in the plan with its endpoints, the duration it would
// take on its own and its synchronized peak velocity.
func (p *SyncPlan) String() string {
	tw := table.NewWriter()
	tw.SetTitle(fmt.Sprintf("%s trajectory, %.3fs", p.kind, p.total))
	tw.AppendHeader(table.Row{"Joint", "Current", "Target", "Alone (s)", "Peak velocity"})
	for _, a := range p.axes {
		tw.AppendRow(table.Row{
			a.name,
			fmt.Sprintf("%.4f", a.current),
			fmt.Sprintf("%.4f", a.target),
			fmt.Sprintf("%.3f", a.unscaled),
			fmt.Sprintf("%.4f", a.profile.PeakVelocity()),
		})
	}
	return tw.Render()
}
