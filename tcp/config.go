package tcp

import (
	"math"

	"github.com/go-viper/mapstructure/v2"
	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
)

// Config places the tool center point relative to the resolved reference frame.
type Config struct {
	Offset r3.Vector `json:"offset"`
}

// Validate ensures all parts of the config are valid.
func (cfg *Config) Validate(path string) error {
	for _, v := range []float64{cfg.Offset.X, cfg.Offset.Y, cfg.Offset.Z} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return errors.Errorf("%s: offset %v is not finite", path, cfg.Offset)
		}
	}
	return nil
}

// ConfigFromAttributes decodes an attribute map of the form {"offset": {"x": .., "y": .., "z": ..}}.
func ConfigFromAttributes(attributes map[string]interface{}) (*Config, error) {
	var conf Config
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          "json",
		Result:           &conf,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return nil, err
	}
	if err := decoder.Decode(attributes); err != nil {
		return nil, errors.Wrap(err, "decoding tcp config")
	}
	if err := conf.Validate("tcp"); err != nil {
		return nil, err
	}
	return &conf, nil
}
