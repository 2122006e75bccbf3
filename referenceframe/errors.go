package referenceframe

import (
	"github.com/pkg/errors"
)

var (
	// ErrInvalidArity is returned when a value vector does not match a joint's degrees of freedom.
	ErrInvalidArity = errors.New("value arity does not match joint degrees of freedom")
	// ErrUnknownJoint is returned when a joint name is not present in a tree.
	ErrUnknownJoint = errors.New("unknown joint")
	// ErrUnknownFrame is returned when a frame name is not present in a tree.
	ErrUnknownFrame = errors.New("unknown frame")
	// ErrDuplicateFrame is returned when adding a frame whose name is already taken.
	ErrDuplicateFrame = errors.New("frame already exists")
	// ErrMimicArity is returned when a mimic link joins joints with different degrees of freedom.
	ErrMimicArity = errors.New("mimic joints must have equal degrees of freedom")
	// ErrMimicFollower is returned when a value is written directly to a joint driven by a mimic link.
	ErrMimicFollower = errors.New("joint is driven by a mimic link")
	// ErrUnsupportedJointType is returned for joint type strings that have no JointType.
	ErrUnsupportedJointType = errors.New("unsupported joint type")
	// ErrInvalidAxis is returned when an axis-driven joint is given a zero axis.
	ErrInvalidAxis = errors.New("joint axis must be non-zero")
	// ErrNoModelInformation is used when there is no model information.
	ErrNoModelInformation = errors.New("no model information")
)

// NewInvalidArityError returns an error indicating that a joint received the wrong number of values.
func NewInvalidArityError(joint string, got, want int) error {
	return errors.Wrapf(ErrInvalidArity, "joint %q got %d values, expected %d", joint, got, want)
}

func newLimitArityError(joint string, got, want int) error {
	return errors.Wrapf(ErrInvalidArity, "joint %q got %d limits, expected %d", joint, got, want)
}

// NewUnknownJointError returns an error indicating that the named joint does not exist.
func NewUnknownJointError(name string) error {
	return errors.Wrapf(ErrUnknownJoint, "%q", name)
}

// NewUnknownFrameError returns an error indicating that the named frame does not exist.
func NewUnknownFrameError(name string) error {
	return errors.Wrapf(ErrUnknownFrame, "%q", name)
}

// NewDuplicateFrameError returns an error indicating that a frame name is already in use.
func NewDuplicateFrameError(name string) error {
	return errors.Wrapf(ErrDuplicateFrame, "%q", name)
}

// NewMimicArityError returns an error for a mimic link between joints of different arity.
func NewMimicArityError(driver, follower string, driverDoF, followerDoF int) error {
	return errors.Wrapf(ErrMimicArity, "%q has %d, %q has %d", driver, driverDoF, follower, followerDoF)
}

// NewMimicFollowerError returns an error for a direct write to a mimic follower.
func NewMimicFollowerError(follower, driver string) error {
	return errors.Wrapf(ErrMimicFollower, "%q follows %q", follower, driver)
}

// NewUnsupportedJointTypeError returns an error indicating that a given joint type is not supported.
func NewUnsupportedJointTypeError(jointType string) error {
	return errors.Wrapf(ErrUnsupportedJointType, "%q", jointType)
}

// NewReservedWordError is used when a model tries to name a frame with a reserved word.
func NewReservedWordError(configType, reservedWord string) error {
	return errors.Errorf("reserved word: cannot name a %s '%s'", configType, reservedWord)
}
