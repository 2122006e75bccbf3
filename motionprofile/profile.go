// Package motionprofile computes closed-form time laws for single-axis point-to-point moves that
// start and end at rest. Times are in seconds from the start of the move.
package motionprofile

import (
	"math"

	"github.com/pkg/errors"
)

// StaticThreshold is the distance below which a move is treated as already complete.
const StaticThreshold = 1e-4

// Profile is an immutable time law for one move. All methods accept any t; values before the
// start are those at rest at the origin, values after the end are those at rest at Distance.
type Profile interface {
	Kind() Kind
	// Distance is the signed displacement the profile covers.
	Distance() float64
	Duration() float64
	// PeakVelocity is the largest speed reached, always non-negative.
	PeakVelocity() float64
	Position(t float64) float64
	Velocity(t float64) float64
	Acceleration(t float64) float64
	// Phases returns the end time of every phase in order. The last entry is Duration.
	Phases() []float64
}

// Plan builds a profile of the given kind. Distances smaller than StaticThreshold yield a static
// profile of zero duration rather than an error.
func Plan(kind Kind, distance float64, limits Limits) (Profile, error) {
	if math.IsNaN(distance) || math.IsInf(distance, 0) {
		return nil, errors.Errorf("cannot plan a move of distance %v", distance)
	}
	if err := limits.Validate(kind); err != nil {
		return nil, err
	}
	if math.Abs(distance) < StaticThreshold {
		return NewStatic(kind, distance), nil
	}
	switch kind {
	case Trapezoidal:
		return newTrapezoidal(distance, limits.MaxVelocity, limits.MaxAcceleration), nil
	case SCurve:
		return newSCurve(distance, limits.MaxVelocity, limits.MaxAcceleration, limits.MaxJerk), nil
	default:
		return nil, errors.Wrapf(ErrUnknownKind, "%d", int(kind))
	}
}

// NewTrapezoidal plans a trapezoidal (or, for short moves, triangular) profile.
func NewTrapezoidal(distance, maxVelocity, maxAcceleration float64) (Profile, error) {
	return Plan(Trapezoidal, distance, Limits{MaxVelocity: maxVelocity, MaxAcceleration: maxAcceleration})
}

// NewSCurve plans a jerk-limited profile.
func NewSCurve(distance, maxVelocity, maxAcceleration, maxJerk float64) (Profile, error) {
	return Plan(SCurve, distance, Limits{MaxVelocity: maxVelocity, MaxAcceleration: maxAcceleration, MaxJerk: maxJerk})
}

// NewStatic returns a profile that is complete at t=0, for moves too small to plan.
func NewStatic(kind Kind, distance float64) Profile {
	return &staticProfile{kind: kind, distance: distance}
}

// IsStatic reports whether p covers no meaningful distance.
func IsStatic(p Profile) bool {
	_, ok := p.(*staticProfile)
	return ok
}

// staticProfile is the result of planning a near-zero move. It is complete at t=0.
type staticProfile struct {
	kind     Kind
	distance float64
}

func (s *staticProfile) Kind() Kind { return s.kind }
func (s *staticProfile) Distance() float64 { return s.distance }
func (s *staticProfile) Duration() float64 { return 0 }
func (s *staticProfile) PeakVelocity() float64 { return 0 }
func (s *staticProfile) Position(float64) float64 { return s.distance }
func (s *staticProfile) Velocity(float64) float64 { return 0 }
func (s *staticProfile) Acceleration(float64) float64 { return 0 }
func (s *staticProfile) Phases() []float64 { return []float64{0} }
