package spatialmath

import (
	"github.com/go-gl/mathgl/mgl64"
	"gonum.org/v1/gonum/num/quat"
)

// EulerAngles are fixed-axis roll (X), pitch (Y), yaw (Z) angles in radians, applied in that order.
// This is the convention used for the rpy attribute of robot descriptions.
type EulerAngles struct {
	Roll  float64 `json:"roll"`
	Pitch float64 `json:"pitch"`
	Yaw   float64 `json:"yaw"`
}

// NewEulerAngles creates an empty EulerAngles struct.
func NewEulerAngles() *EulerAngles {
	return &EulerAngles{}
}

// EulerAngles returns orientation in Euler angle representation.
func (ea *EulerAngles) EulerAngles() *EulerAngles {
	return ea
}

// Quaternion returns orientation in quaternion representation: Rz(yaw) * Ry(pitch) * Rx(roll).
func (ea *EulerAngles) Quaternion() quat.Number {
	q := mgl64.QuatRotate(ea.Yaw, mgl64.Vec3{0, 0, 1}).
		Mul(mgl64.QuatRotate(ea.Pitch, mgl64.Vec3{0, 1, 0})).
		Mul(mgl64.QuatRotate(ea.Roll, mgl64.Vec3{1, 0, 0}))
	return quat.Number{Real: q.W, Imag: q.V[0], Jmag: q.V[1], Kmag: q.V[2]}
}

// AxisAngles returns the orientation in axis angle representation.
func (ea *EulerAngles) AxisAngles() *R4AA {
	aa := QuatToR4AA(ea.Quaternion())
	return &aa
}
