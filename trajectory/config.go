package trajectory

import (
	"github.com/go-viper/mapstructure/v2"
	"github.com/pkg/errors"
	"go.uber.org/multierr"

	"go.viam.com/jointmotion/motionprofile"
)

// Config holds the default bounds and profile shape for a synchronized move. Joints overrides
// the defaults per joint name.
type Config struct {
	MaxVelocity     float64                         `json:"max_velocity"`
	MaxAcceleration float64                         `json:"max_acceleration"`
	MaxJerk         float64                         `json:"max_jerk,omitempty"`
	ProfileKind     motionprofile.Kind              `json:"profile_kind,omitempty"`
	Joints          map[string]motionprofile.Limits `json:"joints,omitempty"`
}

// Limits returns the default limits the config describes.
func (cfg *Config) Limits() motionprofile.Limits {
	return motionprofile.Limits{
		MaxVelocity:     cfg.MaxVelocity,
		MaxAcceleration: cfg.MaxAcceleration,
		MaxJerk:         cfg.MaxJerk,
	}
}

// hasDefaults reports whether any default bound was set.
func (cfg *Config) hasDefaults() bool {
	return cfg.MaxVelocity != 0 || cfg.MaxAcceleration != 0 || cfg.MaxJerk != 0
}

// Validate ensures all parts of the config are valid.
func (cfg *Config) Validate(path string) error {
	var err error
	if cfg.hasDefaults() {
		if lErr := cfg.Limits().Validate(cfg.ProfileKind); lErr != nil {
			err = multierr.Append(err, errors.Wrap(lErr, path))
		}
	}
	for name, limits := range cfg.Joints {
		if lErr := limits.Validate(cfg.ProfileKind); lErr != nil {
			err = multierr.Append(err, errors.Wrapf(lErr, "%s.joints.%s", path, name))
		}
	}
	return err
}

// limitsFor picks the bounds for one joint: explicit limits first, then the per-joint
// override, then the defaults.
func (cfg *Config) limitsFor(name string, explicit map[string]motionprofile.Limits) (motionprofile.Limits, error) {
	if l, ok := explicit[name]; ok {
		return l, nil
	}
	if l, ok := cfg.Joints[name]; ok {
		return l, nil
	}
	if cfg.hasDefaults() {
		return cfg.Limits(), nil
	}
	return motionprofile.Limits{}, errors.Wrapf(ErrMissingLimits, "%q", name)
}

// ConfigFromAttributes decodes a loosely typed attribute map, such as one read from a larger
// JSON document, into a validated Config.
func ConfigFromAttributes(attributes map[string]interface{}) (*Config, error) {
	var conf Config
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          "json",
		Result:           &conf,
		WeaklyTypedInput: true,
		DecodeHook:       mapstructure.TextUnmarshallerHookFunc(),
	})
	if err != nil {
		return nil, err
	}
	if err := decoder.Decode(attributes); err != nil {
		return nil, errors.Wrap(err, "decoding trajectory config")
	}
	if err := conf.Validate("trajectory"); err != nil {
		return nil, err
	}
	return &conf, nil
}
