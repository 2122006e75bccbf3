package referenceframe

import "strings"

// JointType is the closed set of joint variants a tree can hold.
type JointType int

// The joint variants. Names match the type strings of robot description files.
const (
	FixedJoint JointType = iota
	ContinuousJoint
	RevoluteJoint
	PrismaticJoint
	PlanarJoint
	FloatingJoint
)

var jointTypeNames = map[JointType]string{
	FixedJoint:      "fixed",
	ContinuousJoint: "continuous",
	RevoluteJoint:   "revolute",
	PrismaticJoint:  "prismatic",
	PlanarJoint:     "planar",
	FloatingJoint:   "floating",
}

// ParseJointType converts a joint type string, e.g. "revolute", into a JointType.
func ParseJointType(s string) (JointType, error) {
	needle := strings.ToLower(strings.TrimSpace(s))
	for jt, name := range jointTypeNames {
		if name == needle {
			return jt, nil
		}
	}
	return FixedJoint, NewUnsupportedJointTypeError(s)
}

// String returns the joint type string.
func (jt JointType) String() string {
	if name, ok := jointTypeNames[jt]; ok {
		return name
	}
	return "unknown"
}

// MarshalText implements encoding.TextMarshaler.
func (jt JointType) MarshalText() ([]byte, error) {
	if _, ok := jointTypeNames[jt]; !ok {
		return nil, NewUnsupportedJointTypeError(jt.String())
	}
	return []byte(jt.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (jt *JointType) UnmarshalText(text []byte) error {
	parsed, err := ParseJointType(string(text))
	if err != nil {
		return err
	}
	*jt = parsed
	return nil
}

// DoF returns the fixed number of values a joint of this type carries.
func (jt JointType) DoF() int {
	switch jt {
	case FixedJoint:
		return 0
	case ContinuousJoint, RevoluteJoint, PrismaticJoint:
		return 1
	case PlanarJoint:
		return 3
	case FloatingJoint:
		return 6
	default:
		return 0
	}
}

// usesAxis reports whether the joint type's motion is defined relative to an axis.
func (jt JointType) usesAxis() bool {
	switch jt {
	case ContinuousJoint, RevoluteJoint, PrismaticJoint, PlanarJoint:
		return true
	case FixedJoint, FloatingJoint:
		return false
	default:
		return false
	}
}
