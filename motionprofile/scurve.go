package motionprofile

import (
	"math"

	"go.viam.com/jointmotion/utils"
)

// sCurve is a seven-phase jerk-limited profile: jerk up, constant acceleration, jerk down,
// cruise, then the mirror image to stop. The deceleration half is the acceleration half
// reflected in time, so only the acceleration half is modelled explicitly.
type sCurve struct {
	distance float64
	dir      float64
	jerk     float64

	aPeak float64
	vPeak float64
	// tj is the length of each jerk ramp, ta the constant-acceleration time between them
	tj float64
	ta float64
	// tAcc = 2*tj + ta, the duration of the whole acceleration half
	tAcc    float64
	tCruise float64
	total   float64
	// pAcc is the distance covered during the acceleration half
	pAcc float64
}

func newSCurve(distance, maxVel, maxAcc, maxJerk float64) *sCurve {
	d := math.Abs(distance)
	s := &sCurve{distance: distance, dir: utils.Sign(distance), jerk: maxJerk}

	s.setAccelPhase(maxVel, maxAcc)
	if 2*s.pAcc > d {
		// The velocity limit cannot be reached; find the peak velocity whose two
		// acceleration halves exactly cover the distance.
		vp := (maxAcc / 2) * (-(maxAcc / maxJerk) + math.Sqrt(utils.Square(maxAcc/maxJerk)+4*d/maxAcc))
		if vp < utils.Square(maxAcc)/maxJerk {
			// not even the acceleration limit is reached
			vp = math.Cbrt(utils.Square(d) * maxJerk / 4)
		}
		s.setAccelPhase(vp, maxAcc)
	}
	s.tCruise = math.Max(0, (d-2*s.pAcc)/s.vPeak)
	s.total = 2*s.tAcc + s.tCruise
	return s
}

// setAccelPhase shapes the acceleration half so that it ends at velocity v.
func (s *sCurve) setAccelPhase(v, maxAcc float64) {
	if v*s.jerk < utils.Square(maxAcc) {
		// the ramp up and ramp down meet before the acceleration limit
		s.tj = math.Sqrt(v / s.jerk)
		s.ta = 0
	} else {
		s.tj = maxAcc / s.jerk
		s.ta = v/maxAcc - s.tj
	}
	s.aPeak = s.jerk * s.tj
	s.vPeak = v
	s.tAcc = 2*s.tj + s.ta
	// the velocity curve of the half is point-symmetric, so its mean is v/2
	s.pAcc = v * s.tAcc / 2
}

func (s *sCurve) Kind() Kind { return SCurve }
func (s *sCurve) Distance() float64 { return s.distance }
func (s *sCurve) Duration() float64 { return s.total }
func (s *sCurve) PeakVelocity() float64 { return s.vPeak }

func (s *sCurve) Phases() []float64 {
	decel := s.tAcc + s.tCruise
	return []float64{
		s.tj,
		s.tj + s.ta,
		s.tAcc,
		decel,
		decel + s.tj,
		decel + s.tj + s.ta,
		s.total,
	}
}

// accel returns unsigned position, velocity and acceleration at time t into the acceleration half.
func (s *sCurve) accel(t float64) (p, v, a float64) {
	j := s.jerk
	switch {
	case t <= 0:
		return 0, 0, 0
	case t < s.tj:
		return j * t * t * t / 6, 0.5 * j * t * t, j * t
	}

	v1 := 0.5 * j * s.tj * s.tj
	p1 := j * s.tj * s.tj * s.tj / 6
	if t < s.tj+s.ta {
		tau := t - s.tj
		return p1 + v1*tau + 0.5*s.aPeak*tau*tau, v1 + s.aPeak*tau, s.aPeak
	}

	v2 := v1 + s.aPeak*s.ta
	p2 := p1 + v1*s.ta + 0.5*s.aPeak*s.ta*s.ta
	tau := math.Min(t, s.tAcc) - s.tj - s.ta
	return p2 + v2*tau + 0.5*s.aPeak*tau*tau - j*tau*tau*tau/6,
		v2 + s.aPeak*tau - 0.5*j*tau*tau,
		s.aPeak - j*tau
}

func (s *sCurve) phaseOf(t float64) (p, v, a float64) {
	d := math.Abs(s.distance)
	switch {
	case t <= 0:
		return 0, 0, 0
	case t >= s.total:
		return d, 0, 0
	case t < s.tAcc:
		return s.accel(t)
	case t < s.tAcc+s.tCruise:
		return s.pAcc + s.vPeak*(t-s.tAcc), s.vPeak, 0
	default:
		p, v, a := s.accel(s.total - t)
		return d - p, v, -a
	}
}

// Position returns the signed displacement at t.
func (s *sCurve) Position(t float64) float64 {
	if t >= s.total {
		return s.distance
	}
	p, _, _ := s.phaseOf(t)
	return s.dir * p
}

// Velocity returns the signed velocity at t.
func (s *sCurve) Velocity(t float64) float64 {
	_, v, _ := s.phaseOf(t)
	return s.dir * v
}

// Acceleration returns the signed acceleration at t.
func (s *sCurve) Acceleration(t float64) float64 {
	_, _, a := s.phaseOf(t)
	return s.dir * a
}
