package motionprofile

import (
	"math"

	"go.viam.com/jointmotion/utils"
)

// trapezoidal accelerates at maxAcc to vPeak, cruises, then decelerates symmetrically. When the
// move is too short to reach the velocity limit the cruise vanishes and vPeak = sqrt(a*|d|).
type trapezoidal struct {
	distance float64
	dir      float64
	acc      float64
	vPeak    float64
	tAcc     float64
	tCruise  float64
	total    float64
}

func newTrapezoidal(distance, maxVel, maxAcc float64) *trapezoidal {
	d := math.Abs(distance)
	tr := &trapezoidal{distance: distance, dir: utils.Sign(distance), acc: maxAcc}

	// distance covered accelerating from rest to maxVel, and the same again to stop
	dAcc := utils.Square(maxVel) / (2 * maxAcc)
	if 2*dAcc <= d {
		tr.vPeak = maxVel
		tr.tCruise = (d - 2*dAcc) / maxVel
	} else {
		tr.vPeak = math.Sqrt(maxAcc * d)
	}
	tr.tAcc = tr.vPeak / maxAcc
	tr.total = 2*tr.tAcc + tr.tCruise
	return tr
}

func (tr *trapezoidal) Kind() Kind { return Trapezoidal }
func (tr *trapezoidal) Distance() float64 { return tr.distance }
func (tr *trapezoidal) Duration() float64 { return tr.total }
func (tr *trapezoidal) PeakVelocity() float64 { return tr.vPeak }

func (tr *trapezoidal) Phases() []float64 {
	return []float64{tr.tAcc, tr.tAcc + tr.tCruise, tr.total}
}

// Position integrates the velocity law in closed form, phase by phase.
func (tr *trapezoidal) Position(t float64) float64 {
	switch {
	case t <= 0:
		return 0
	case t >= tr.total:
		return tr.distance
	case t < tr.tAcc:
		return tr.dir * 0.5 * tr.acc * t * t
	case t < tr.tAcc+tr.tCruise:
		dAcc := 0.5 * tr.acc * tr.tAcc * tr.tAcc
		return tr.dir * (dAcc + tr.vPeak*(t-tr.tAcc))
	default:
		remaining := tr.total - t
		return tr.dir * (math.Abs(tr.distance) - 0.5*tr.acc*remaining*remaining)
	}
}

// Velocity returns the signed velocity at t.
func (tr *trapezoidal) Velocity(t float64) float64 {
	switch {
	case t <= 0 || t >= tr.total:
		return 0
	case t < tr.tAcc:
		return tr.dir * tr.acc * t
	case t < tr.tAcc+tr.tCruise:
		return tr.dir * tr.vPeak
	default:
		return tr.dir * tr.acc * (tr.total - t)
	}
}

// Acceleration returns the signed acceleration at t.
func (tr *trapezoidal) Acceleration(t float64) float64 {
	switch {
	case t <= 0 || t >= tr.total:
		return 0
	case t < tr.tAcc:
		return tr.dir * tr.acc
	case t < tr.tAcc+tr.tCruise:
		return 0
	default:
		return -tr.dir * tr.acc
	}
}
