package spatialmath

import (
	"fmt"

	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
)

// GeometryType defines what geometry creator representations are known.
type GeometryType string

// The set of allowed representations for geometries.
const (
	UnknownType = GeometryType("")
	BoxType     = GeometryType("box")
	SphereType  = GeometryType("sphere")
	PointType   = GeometryType("point")
)

// Geometry is an entry attached to a frame that carries renderable extent.
type Geometry interface {
	Label() string
	SetLabel(string)
	Pose() Pose
	// Transform premultiplies the geometry pose, moving it into the frame the given pose is expressed in.
	Transform(Pose) Geometry
	// Vertices returns the corners of the geometry's bounding extent, or nil if it has none.
	Vertices() []r3.Vector
	String() string
}

// GeometryConfig specifies the format of geometries specified through JSON configuration files.
type GeometryConfig struct {
	Type GeometryType `json:"type"`

	// parameters used for defining a box's rectangular cross-section
	X float64 `json:"x,omitempty"`
	Y float64 `json:"y,omitempty"`
	Z float64 `json:"z,omitempty"`

	// parameter used for defining a sphere's radius
	R float64 `json:"r,omitempty"`

	// define an offset to position the geometry
	TranslationOffset r3.Vector    `json:"translation,omitempty"`
	OrientationOffset *EulerAngles `json:"rpy,omitempty"`

	Label string `json:"label,omitempty"`
}

// NewGeometryConfig creates a config for a Geometry from an offset Pose.
func NewGeometryConfig(g Geometry) (*GeometryConfig, error) {
	config := GeometryConfig{}
	switch gType := g.(type) {
	case *box:
		config.Type = BoxType
		config.X = 2 * gType.halfSize.X
		config.Y = 2 * gType.halfSize.Y
		config.Z = 2 * gType.halfSize.Z
	case *sphere:
		config.Type = SphereType
		config.R = gType.radius
	case *point:
		config.Type = PointType
	default:
		return nil, errors.Wrapf(ErrGeometryTypeUnsupported, "%T", gType)
	}
	config.TranslationOffset = g.Pose().Point()
	config.OrientationOffset = g.Pose().Orientation().EulerAngles()
	config.Label = g.Label()
	return &config, nil
}

// ParseConfig converts a GeometryConfig into the correct Geometry.
func (config *GeometryConfig) ParseConfig() (Geometry, error) {
	var o Orientation = NewZeroOrientation()
	if config.OrientationOffset != nil {
		o = config.OrientationOffset
	}
	offset := NewPoseFromOrientation(config.TranslationOffset, o)

	switch config.Type {
	case BoxType:
		return NewBox(offset, r3.Vector{X: config.X, Y: config.Y, Z: config.Z}, config.Label)
	case SphereType:
		return NewSphere(offset, config.R, config.Label)
	case PointType:
		return NewPoint(config.TranslationOffset, config.Label), nil
	case UnknownType:
		// no type specified, infer from the dimensions given
		if config.X != 0 || config.Y != 0 || config.Z != 0 {
			return NewBox(offset, r3.Vector{X: config.X, Y: config.Y, Z: config.Z}, config.Label)
		}
		if config.R != 0 {
			return NewSphere(offset, config.R, config.Label)
		}
		return NewPoint(config.TranslationOffset, config.Label), nil
	default:
		return nil, errors.Wrap(ErrGeometryTypeUnsupported, string(config.Type))
	}
}

// ErrGeometryTypeUnsupported is returned for geometry types this package cannot build.
var ErrGeometryTypeUnsupported = errors.New("unsupported geometry type")

// ErrBadGeometryDimensions is returned when a geometry is given negative dimensions.
var ErrBadGeometryDimensions = errors.New("invalid geometry dimensions")

func newBadGeometryDimensionsError(g Geometry) error {
	return errors.Wrapf(ErrBadGeometryDimensions, "cannot create %s", fmt.Sprintf("%T", g))
}

// point is a geometry without extent, e.g. a visual marker attached to a frame.
type point struct {
	position r3.Vector
	label    string
}

// NewPoint instantiates a new point Geometry.
func NewPoint(pt r3.Vector, label string) Geometry {
	return &point{pt, label}
}

func (pt *point) Label() string { return pt.label }

func (pt *point) SetLabel(label string) { pt.label = label }

func (pt *point) Pose() Pose { return NewPoseFromPoint(pt.position) }

func (pt *point) Transform(toPremultiply Pose) Geometry {
	return &point{Compose(toPremultiply, pt.Pose()).Point(), pt.label}
}

// Vertices returns nil; points have no extent.
func (pt *point) Vertices() []r3.Vector { return nil }

func (pt *point) String() string {
	return fmt.Sprintf("Type: Point | Position: X:%.3f, Y:%.3f, Z:%.3f", pt.position.X, pt.position.Y, pt.position.Z)
}
