// Package referenceframe models articulated robots as a tree of named frames. Links carry a
// fixed offset from their parent; joints carry a rest origin plus a motion driven by their values.
package referenceframe

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/golang/geo/r3"
	"gonum.org/v1/gonum/num/quat"

	spatial "go.viam.com/jointmotion/spatialmath"
	"go.viam.com/jointmotion/utils"
)

// Limit represents the limits of motion for a single degree of freedom.
type Limit struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// Unbounded returns a limit that admits every value.
func Unbounded() Limit {
	return Limit{Min: math.Inf(-1), Max: math.Inf(1)}
}

// JointReader is the read-only view of a joint handed out by a Tree. Mutation goes through the
// Tree so that staleness and mimic propagation stay consistent.
type JointReader interface {
	Name() string
	Type() JointType
	DoF() int
	Axis() r3.Vector
	Origin() spatial.Pose
	Limits() []Limit
	IgnoreLimits() bool
	Value() []float64
	LocalPose() spatial.Pose
}

// Joint is one connection between a parent frame and its children. Its value vector always has
// exactly Type().DoF() entries.
type Joint struct {
	name         string
	jointType    JointType
	axis         r3.Vector
	origin       spatial.Pose
	limits       []Limit
	ignoreLimits bool
	value        []float64

	// planar joints move in the plane whose normal is axis; this rotates +Z onto it
	planeAlign quat.Number
}

// NewJoint creates a joint of any type. Axis is ignored for fixed and floating joints. limits must
// have one entry per degree of freedom for revolute and prismatic joints, and may be nil or
// three entries for planar joints. A nil origin is the zero pose.
func NewJoint(name string, jointType JointType, origin spatial.Pose, axis r3.Vector, limits []Limit) (*Joint, error) {
	if _, ok := jointTypeNames[jointType]; !ok {
		return nil, NewUnsupportedJointTypeError(jointType.String())
	}
	if origin == nil {
		origin = spatial.NewZeroPose()
	}
	j := &Joint{
		name:       name,
		jointType:  jointType,
		origin:     origin,
		value:      make([]float64, jointType.DoF()),
		planeAlign: quat.Number{Real: 1},
	}

	if jointType.usesAxis() {
		if spatial.R3VectorAlmostEqual(r3.Vector{}, axis, 1e-8) {
			return nil, ErrInvalidAxis
		}
		j.axis = axis.Normalize()
	}

	switch jointType {
	case RevoluteJoint, PrismaticJoint:
		if len(limits) != 1 {
			return nil, newLimitArityError(name, len(limits), 1)
		}
		j.limits = []Limit{limits[0]}
	case PlanarJoint:
		if len(limits) != 0 && len(limits) != 3 {
			return nil, newLimitArityError(name, len(limits), 3)
		}
		if len(limits) == 3 {
			j.limits = append([]Limit(nil), limits...)
		}
		q := mgl64.QuatBetweenVectors(mgl64.Vec3{0, 0, 1}, mgl64.Vec3{j.axis.X, j.axis.Y, j.axis.Z})
		j.planeAlign = spatial.Normalize(quat.Number{Real: q.W, Imag: q.V[0], Jmag: q.V[1], Kmag: q.V[2]})
	case FixedJoint, ContinuousJoint, FloatingJoint:
	}
	// the rest value must already respect the limits
	for i := range j.value {
		j.value[i] = j.clamp(i, 0)
	}
	return j, nil
}

// NewFixedJoint creates a joint with no degrees of freedom.
func NewFixedJoint(name string, origin spatial.Pose) *Joint {
	//nolint:errcheck
	j, _ := NewJoint(name, FixedJoint, origin, r3.Vector{}, nil)
	return j
}

// NewRevoluteJoint creates a joint rotating about axis, clamped to limit.
func NewRevoluteJoint(name string, origin spatial.Pose, axis r3.Vector, limit Limit) (*Joint, error) {
	return NewJoint(name, RevoluteJoint, origin, axis, []Limit{limit})
}

// NewContinuousJoint creates a joint rotating about axis without limits.
func NewContinuousJoint(name string, origin spatial.Pose, axis r3.Vector) (*Joint, error) {
	return NewJoint(name, ContinuousJoint, origin, axis, nil)
}

// NewPrismaticJoint creates a joint sliding along axis, clamped to limit.
func NewPrismaticJoint(name string, origin spatial.Pose, axis r3.Vector, limit Limit) (*Joint, error) {
	return NewJoint(name, PrismaticJoint, origin, axis, []Limit{limit})
}

// NewPlanarJoint creates a joint moving in the plane with the given normal, valued [x, y, theta].
// limits is nil for an unclamped joint, or one Limit per component.
func NewPlanarJoint(name string, origin spatial.Pose, normal r3.Vector, limits []Limit) (*Joint, error) {
	return NewJoint(name, PlanarJoint, origin, normal, limits)
}

// NewFloatingJoint creates an unconstrained joint valued [x, y, z, roll, pitch, yaw].
func NewFloatingJoint(name string, origin spatial.Pose) *Joint {
	//nolint:errcheck
	j, _ := NewJoint(name, FloatingJoint, origin, r3.Vector{}, nil)
	return j
}

// Name returns the joint's name.
func (j *Joint) Name() string { return j.name }

// Type returns the joint's variant.
func (j *Joint) Type() JointType { return j.jointType }

// DoF returns the number of values the joint carries.
func (j *Joint) DoF() int { return j.jointType.DoF() }

// Axis returns the unit motion axis, or the zero vector for fixed and floating joints.
func (j *Joint) Axis() r3.Vector { return j.axis }

// Origin returns the rest pose of the joint relative to its parent.
func (j *Joint) Origin() spatial.Pose { return j.origin }

// Limits returns a copy of the joint's per-component limits, or nil if it has none.
func (j *Joint) Limits() []Limit {
	if j.limits == nil {
		return nil
	}
	return append([]Limit(nil), j.limits...)
}

// IgnoreLimits reports whether clamping is disabled.
func (j *Joint) IgnoreLimits() bool { return j.ignoreLimits }

// Value returns a copy of the joint's current values.
func (j *Joint) Value() []float64 {
	return append([]float64{}, j.value...)
}

// SetIgnoreLimits toggles clamping. Re-enabling limits clamps the current value; the return
// reports whether that changed it.
func (j *Joint) SetIgnoreLimits(ignore bool) bool {
	j.ignoreLimits = ignore
	if ignore {
		return false
	}
	//nolint:errcheck
	changed, _ := j.SetValue(FullUpdate(j.value...))
	return changed
}

// SetValue applies an update to the joint and reports whether any stored component changed.
// Values are clamped before comparison when the joint enforces limits. A joint owned by a Tree
// must be updated through the Tree instead.
func (j *Joint) SetValue(u Update) (bool, error) {
	if len(u) != j.DoF() {
		return false, NewInvalidArityError(j.name, len(u), j.DoF())
	}
	changed := false
	for i, v := range u {
		if v == nil {
			continue
		}
		next := j.clamp(i, *v)
		if next != j.value[i] {
			j.value[i] = next
			changed = true
		}
	}
	return changed, nil
}

func (j *Joint) clamp(i int, v float64) float64 {
	if j.ignoreLimits || j.limits == nil {
		return v
	}
	switch j.jointType {
	case RevoluteJoint, PrismaticJoint, PlanarJoint:
		return utils.Clamp(v, j.limits[i].Min, j.limits[i].Max)
	case FixedJoint, ContinuousJoint, FloatingJoint:
	}
	return v
}

// LocalPose returns the joint's pose relative to its parent: the rest origin followed by the
// motion its current values describe.
func (j *Joint) LocalPose() spatial.Pose {
	switch j.jointType {
	case RevoluteJoint, ContinuousJoint:
		rot := spatial.NewR4AAFromAxis(j.value[0], j.axis)
		return spatial.Compose(j.origin, spatial.NewPoseFromOrientation(r3.Vector{}, rot))
	case PrismaticJoint:
		return spatial.Compose(j.origin, spatial.NewPoseFromPoint(j.axis.Mul(j.value[0])))
	case PlanarJoint:
		align := spatial.QuaternionOrientation(j.planeAlign)
		inPlane := spatial.RotateVector(align, r3.Vector{X: j.value[0], Y: j.value[1]})
		rot := spatial.NewR4AAFromAxis(j.value[2], j.axis)
		return spatial.Compose(j.origin, spatial.NewPoseFromOrientation(inPlane, rot))
	case FloatingJoint:
		rpy := &spatial.EulerAngles{Roll: j.value[3], Pitch: j.value[4], Yaw: j.value[5]}
		delta := spatial.NewPoseFromOrientation(r3.Vector{X: j.value[0], Y: j.value[1], Z: j.value[2]}, rpy)
		return spatial.Compose(j.origin, delta)
	case FixedJoint:
	}
	return j.origin
}
