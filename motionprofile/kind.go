package motionprofile

import (
	"strings"

	"github.com/pkg/errors"
)

// Kind selects the shape of a motion profile.
type Kind int

const (
	// Trapezoidal profiles ramp acceleration instantly: accelerate, cruise, decelerate.
	Trapezoidal Kind = iota
	// SCurve profiles ramp acceleration at a bounded jerk.
	SCurve
)

// ErrUnknownKind is returned when parsing a profile kind that does not exist.
var ErrUnknownKind = errors.New("unknown profile kind")

// ParseKind converts "trapezoidal" or "s-curve" into a Kind. An empty string is Trapezoidal.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "trapezoidal", "trapezoid":
		return Trapezoidal, nil
	case "s-curve", "scurve", "s_curve":
		return SCurve, nil
	default:
		return Trapezoidal, errors.Wrapf(ErrUnknownKind, "%q", s)
	}
}

func (k Kind) String() string {
	switch k {
	case Trapezoidal:
		return "trapezoidal"
	case SCurve:
		return "s-curve"
	default:
		return "unknown"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (k Kind) MarshalText() ([]byte, error) {
	if k != Trapezoidal && k != SCurve {
		return nil, errors.Wrapf(ErrUnknownKind, "%d", int(k))
	}
	return []byte(k.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *Kind) UnmarshalText(text []byte) error {
	parsed, err := ParseKind(string(text))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}
