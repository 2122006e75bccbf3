package referenceframe

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"go.uber.org/multierr"

	"go.viam.com/jointmotion/logging"
	spatial "go.viam.com/jointmotion/spatialmath"
)

// ModelConfig represents all supported fields in a kinematics JSON file.
type ModelConfig struct {
	Name   string        `json:"name"`
	Links  []LinkConfig  `json:"links,omitempty"`
	Joints []JointConfig `json:"joints,omitempty"`
	Mimics []MimicConfig `json:"mimics,omitempty"`
}

// LinkConfig describes a structural frame at a fixed offset from its parent.
type LinkConfig struct {
	ID          string                  `json:"id"`
	Parent      string                  `json:"parent,omitempty"`
	Translation r3.Vector               `json:"translation"`
	Orientation *spatial.EulerAngles    `json:"rpy,omitempty"`
	Geometry    *spatial.GeometryConfig `json:"geometry,omitempty"`
}

// JointConfig describes a joint. Translation and Orientation give its rest origin.
type JointConfig struct {
	ID           string                  `json:"id"`
	Type         string                  `json:"type"`
	Parent       string                  `json:"parent,omitempty"`
	Axis         r3.Vector               `json:"axis"`
	Translation  r3.Vector               `json:"translation"`
	Orientation  *spatial.EulerAngles    `json:"rpy,omitempty"`
	Min          *float64                `json:"min,omitempty"`
	Max          *float64                `json:"max,omitempty"`
	Limits       []Limit                 `json:"limits,omitempty"`
	IgnoreLimits bool                    `json:"ignore_limits,omitempty"`
	Geometry     *spatial.GeometryConfig `json:"geometry,omitempty"`
}

// MimicConfig makes Joint follow Driver as driver*multiplier + offset. Multiplier defaults to 1.
type MimicConfig struct {
	Joint      string   `json:"joint"`
	Driver     string   `json:"driver"`
	Multiplier *float64 `json:"multiplier,omitempty"`
	Offset     float64  `json:"offset,omitempty"`
}

func newConfigFieldRequiredError(path, field string) error {
	return errors.Errorf("%s: %q is required", path, field)
}

func originFromConfig(translation r3.Vector, rpy *spatial.EulerAngles) spatial.Pose {
	if rpy == nil {
		return spatial.NewPoseFromPoint(translation)
	}
	return spatial.NewPoseFromOrientation(translation, rpy)
}

// Validate ensures all parts of the link config are valid.
func (cfg *LinkConfig) Validate(path string) error {
	if cfg.ID == "" {
		return newConfigFieldRequiredError(path, "id")
	}
	if cfg.ID == World {
		return NewReservedWordError("link", World)
	}
	return nil
}

// Validate ensures all parts of the joint config are valid.
func (cfg *JointConfig) Validate(path string) error {
	if cfg.ID == "" {
		return newConfigFieldRequiredError(path, "id")
	}
	if cfg.ID == World {
		return NewReservedWordError("joint", World)
	}
	jt, err := ParseJointType(cfg.Type)
	if err != nil {
		return errors.Wrap(err, path)
	}
	switch jt {
	case RevoluteJoint, PrismaticJoint:
		if cfg.Min == nil {
			return newConfigFieldRequiredError(path, "min")
		}
		if cfg.Max == nil {
			return newConfigFieldRequiredError(path, "max")
		}
		if *cfg.Min > *cfg.Max {
			return errors.Errorf("%s: min %v is greater than max %v", path, *cfg.Min, *cfg.Max)
		}
	case PlanarJoint:
		if len(cfg.Limits) != 0 && len(cfg.Limits) != 3 {
			return errors.Wrap(newLimitArityError(cfg.ID, len(cfg.Limits), 3), path)
		}
	case FixedJoint, ContinuousJoint, FloatingJoint:
	}
	if jt.usesAxis() && cfg.Axis.Norm() == 0 {
		return errors.Wrap(ErrInvalidAxis, path)
	}
	return nil
}

// limits returns the joint limits the config describes for its type.
func (cfg *JointConfig) limits(jt JointType) []Limit {
	switch jt {
	case RevoluteJoint, PrismaticJoint:
		return []Limit{{Min: *cfg.Min, Max: *cfg.Max}}
	case PlanarJoint:
		return cfg.Limits
	case FixedJoint, ContinuousJoint, FloatingJoint:
	}
	return nil
}

// ToJoint builds the Joint this config describes.
func (cfg *JointConfig) ToJoint() (*Joint, error) {
	jt, err := ParseJointType(cfg.Type)
	if err != nil {
		return nil, err
	}
	j, err := NewJoint(cfg.ID, jt, originFromConfig(cfg.Translation, cfg.Orientation), cfg.Axis, cfg.limits(jt))
	if err != nil {
		return nil, err
	}
	j.SetIgnoreLimits(cfg.IgnoreLimits)
	return j, nil
}

// Validate ensures the model's frames are uniquely named and every reference resolves.
func (cfg *ModelConfig) Validate(path string) error {
	var errs error
	ids := map[string]string{}
	claim := func(id, where string) {
		if other, ok := ids[id]; ok && id != "" {
			errs = multierr.Append(errs, errors.Wrapf(NewDuplicateFrameError(id), "%s and %s", other, where))
			return
		}
		ids[id] = where
	}
	for i := range cfg.Links {
		where := fmt.Sprintf("%s.links.%d", path, i)
		errs = multierr.Append(errs, cfg.Links[i].Validate(where))
		claim(cfg.Links[i].ID, where)
	}
	for i := range cfg.Joints {
		where := fmt.Sprintf("%s.joints.%d", path, i)
		errs = multierr.Append(errs, cfg.Joints[i].Validate(where))
		claim(cfg.Joints[i].ID, where)
	}
	parentOK := func(parent string) bool {
		_, ok := ids[parent]
		return ok || parent == "" || parent == World
	}
	for i, l := range cfg.Links {
		if !parentOK(l.Parent) {
			errs = multierr.Append(errs, errors.Wrapf(NewUnknownFrameError(l.Parent), "%s.links.%d", path, i))
		}
	}
	for i, j := range cfg.Joints {
		if !parentOK(j.Parent) {
			errs = multierr.Append(errs, errors.Wrapf(NewUnknownFrameError(j.Parent), "%s.joints.%d", path, i))
		}
	}
	for i, m := range cfg.Mimics {
		where := fmt.Sprintf("%s.mimics.%d", path, i)
		if m.Joint == "" {
			errs = multierr.Append(errs, newConfigFieldRequiredError(where, "joint"))
		}
		if m.Driver == "" {
			errs = multierr.Append(errs, newConfigFieldRequiredError(where, "driver"))
		}
	}
	return errs
}

// ParseConfig validates the config and builds the Tree it describes. Frames may be listed in
// any order; each is added once its parent exists. modelName overrides the configured name.
func (cfg *ModelConfig) ParseConfig(modelName string, logger logging.Logger) (*Tree, error) {
	if err := cfg.Validate("model"); err != nil {
		return nil, err
	}
	if modelName == "" {
		modelName = cfg.Name
	}
	tree := NewTree(modelName, logger)

	type pending struct {
		parent string
		add    func() error
	}
	queue := make([]pending, 0, len(cfg.Links)+len(cfg.Joints))
	parentOf := func(p string) string {
		if p == "" {
			return World
		}
		return p
	}
	for _, link := range cfg.Links {
		link := link
		queue = append(queue, pending{parentOf(link.Parent), func() error {
			if err := tree.AddLink(link.ID, parentOf(link.Parent), originFromConfig(link.Translation, link.Orientation)); err != nil {
				return err
			}
			return attachGeometry(tree, link.ID, link.Geometry)
		}})
	}
	for _, jc := range cfg.Joints {
		jc := jc
		queue = append(queue, pending{parentOf(jc.Parent), func() error {
			j, err := jc.ToJoint()
			if err != nil {
				return err
			}
			if err := tree.AddJoint(parentOf(jc.Parent), j); err != nil {
				return err
			}
			return attachGeometry(tree, jc.ID, jc.Geometry)
		}})
	}

	// Add frames whose parent already exists until nothing is left or no progress is made.
	for len(queue) > 0 {
		next := queue[:0]
		for _, p := range queue {
			if !tree.HasFrame(p.parent) {
				next = append(next, p)
				continue
			}
			if err := p.add(); err != nil {
				return nil, err
			}
		}
		if len(next) == len(queue) {
			return nil, errors.Errorf("model %q has frames that do not connect to %s", modelName, World)
		}
		queue = next
	}

	for _, m := range cfg.Mimics {
		multiplier := 1.0
		if m.Multiplier != nil {
			multiplier = *m.Multiplier
		}
		if err := tree.AddMimic(m.Driver, m.Joint, multiplier, m.Offset); err != nil {
			return nil, err
		}
	}

	logger.Debugw("parsed model", "name", modelName, "frames", len(tree.frames), "joints", len(tree.JointNames()))
	return tree, nil
}

func attachGeometry(tree *Tree, frame string, cfg *spatial.GeometryConfig) error {
	if cfg == nil {
		return nil
	}
	g, err := cfg.ParseConfig()
	if err != nil {
		return errors.Wrapf(err, "geometry of %q", frame)
	}
	if g.Label() == "" {
		g.SetLabel(frame)
	}
	return tree.SetGeometry(frame, g)
}

// UnmarshalModelJSON will parse the given JSON data into a Tree. modelName sets the name of the model,
// will use the name from the JSON if string is empty.
func UnmarshalModelJSON(jsonData []byte, modelName string, logger logging.Logger) (*Tree, error) {
	// empty data probably means that the caller has no model information
	if len(jsonData) == 0 {
		return nil, ErrNoModelInformation
	}

	m := &ModelConfig{}
	if err := json.Unmarshal(jsonData, m); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal json file")
	}
	return m.ParseConfig(modelName, logger)
}

// ParseModelJSONFile will read a given file and then parse the contained JSON data.
func ParseModelJSONFile(filename, modelName string, logger logging.Logger) (*Tree, error) {
	//nolint:gosec
	jsonData, err := os.ReadFile(filename)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read json file")
	}
	return UnmarshalModelJSON(jsonData, modelName, logger)
}
