package trajectory

import (
	"context"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/pkg/errors"
	"go.uber.org/multierr"

	"go.viam.com/jointmotion/logging"
	"go.viam.com/jointmotion/referenceframe"
)

// DefaultTickRate is the playback cadence in Hz when none is configured.
const DefaultTickRate = 60

// JointSetter receives sampled joint values. *referenceframe.Tree implements it.
type JointSetter interface {
	Joint(name string) (referenceframe.JointReader, error)
	MimicDriver(follower string) (string, bool)
	SetJointValues(updates map[string]referenceframe.Update) (bool, error)
}

// TickFunc observes every applied sample.
type TickFunc func(elapsed time.Duration, values map[string]float64)

// Player drives a SyncPlan onto a JointSetter at a fixed cadence.
type Player struct {
	plan   *SyncPlan
	setter JointSetter
	logger logging.Logger

	clock  clock.Clock
	period time.Duration
	onTick TickFunc
}

// PlayerOption configures a Player.
type PlayerOption func(*Player)

// WithClock sets the clock ticks are taken from.
func WithClock(c clock.Clock) PlayerOption {
	return func(p *Player) { p.clock = c }
}

// WithTickRate sets the playback cadence in Hz. Non-positive rates are ignored.
func WithTickRate(hz float64) PlayerOption {
	return func(p *Player) {
		if hz > 0 {
			p.period = time.Duration(float64(time.Second) / hz)
		}
	}
}

// WithTickFunc registers fn to be called after every applied sample.
func WithTickFunc(fn TickFunc) PlayerOption {
	return func(p *Player) { p.onTick = fn }
}

// NewPlayer returns a Player for plan. Every joint in the plan must be a single degree of
// freedom joint on setter that is not driven by a mimic link; if any is not, nothing is played.
// Mimic followers move with their drivers and are left out of plans.
func NewPlayer(plan *SyncPlan, setter JointSetter, logger logging.Logger, opts ...PlayerOption) (*Player, error) {
	if plan == nil {
		return nil, errors.New("trajectory plan is nil")
	}
	var err error
	for _, name := range plan.Joints() {
		err = multierr.Append(err, checkPlayable(setter, name))
	}
	if err != nil {
		return nil, errors.Wrap(err, "trajectory does not match joint setter")
	}
	p := &Player{
		plan:   plan,
		setter: setter,
		logger: logger,
		clock:  clock.New(),
		period: time.Second / DefaultTickRate,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

func checkPlayable(setter JointSetter, name string) error {
	joint, err := setter.Joint(name)
	if err != nil {
		return err
	}
	if dof := joint.DoF(); dof != 1 {
		return referenceframe.NewInvalidArityError(name, 1, dof)
	}
	if driver, ok := setter.MimicDriver(name); ok {
		return referenceframe.NewMimicFollowerError(name, driver)
	}
	return nil
}

// Period returns the time between ticks.
func (p *Player) Period() time.Duration { return p.period }

// Apply writes the sample at elapsed onto the setter and reports whether the move is done.
func (p *Player) Apply(elapsed time.Duration) (bool, error) {
	t := elapsed.Seconds()
	values := p.plan.Sample(t)
	if _, err := p.setter.SetJointValues(Updates(values)); err != nil {
		return false, errors.Wrapf(err, "applying trajectory at %v", elapsed)
	}
	if p.onTick != nil {
		p.onTick(elapsed, values)
	}
	return p.plan.Done(t), nil
}

// Run plays the plan from the start until it completes, ctx is cancelled or a sample cannot be
// applied. The final sample always places every joint at its target.
func (p *Player) Run(ctx context.Context) error {
	start := p.clock.Now()
	p.logger.Debugw("starting trajectory", "joints", p.plan.Joints(), "duration", p.plan.TotalTime())
	done, err := p.Apply(0)
	if err != nil {
		return err
	}
	if done {
		p.logger.Debug("trajectory already at target")
		return nil
	}

	ticker := p.clock.Ticker(p.period)
	defer ticker.Stop()
	for {
		if err := ctx.Err(); err != nil {
			p.logger.Infow("trajectory aborted", "progress", p.plan.Progress(p.clock.Since(start).Seconds()))
			return err
		}
		select {
		case <-ctx.Done():
			p.logger.Infow("trajectory aborted", "progress", p.plan.Progress(p.clock.Since(start).Seconds()))
			return ctx.Err()
		case <-ticker.C:
			done, err := p.Apply(p.clock.Since(start))
			if err != nil {
				p.logger.Errorw("trajectory playback failed", "error", err)
				return err
			}
			if done {
				p.logger.Debugw("trajectory complete", "duration", p.plan.TotalTime())
				return nil
			}
		}
	}
}
