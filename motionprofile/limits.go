package motionprofile

import (
	"math"

	"github.com/pkg/errors"

	"go.viam.com/jointmotion/utils"
)

// ErrInvalidLimits is returned when a profile is planned with non-positive bounds.
var ErrInvalidLimits = errors.New("motion limits must be positive and finite")

// Limits bound the velocity, acceleration and jerk of a single-axis move, in units per second
// (squared, cubed). MaxJerk is only read by s-curve profiles.
type Limits struct {
	MaxVelocity     float64 `json:"max_velocity"`
	MaxAcceleration float64 `json:"max_acceleration"`
	MaxJerk         float64 `json:"max_jerk,omitempty"`
}

func positiveFinite(v float64) bool {
	return v > 0 && !math.IsInf(v, 1)
}

// Validate checks the limits a profile of the given kind needs.
func (l Limits) Validate(kind Kind) error {
	if !positiveFinite(l.MaxVelocity) {
		return errors.Wrapf(ErrInvalidLimits, "max velocity %v", l.MaxVelocity)
	}
	if !positiveFinite(l.MaxAcceleration) {
		return errors.Wrapf(ErrInvalidLimits, "max acceleration %v", l.MaxAcceleration)
	}
	if kind == SCurve && !positiveFinite(l.MaxJerk) {
		return errors.Wrapf(ErrInvalidLimits, "max jerk %v", l.MaxJerk)
	}
	return nil
}

// Scaled returns limits that slow a profile down by the factor r in (0, 1]: a move planned with
// them takes exactly 1/r times as long and covers the same distance.
func (l Limits) Scaled(r float64) Limits {
	return Limits{
		MaxVelocity:     l.MaxVelocity * r,
		MaxAcceleration: l.MaxAcceleration * utils.Square(r),
		MaxJerk:         l.MaxJerk * utils.Cube(r),
	}
}
