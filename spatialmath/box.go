package spatialmath

import (
	"fmt"

	"github.com/golang/geo/r3"
)

// Ordered list of box vertices.
var boxVertices = [8]r3.Vector{
	{X: 1, Y: 1, Z: 1},
	{X: 1, Y: 1, Z: -1},
	{X: 1, Y: -1, Z: 1},
	{X: 1, Y: -1, Z: -1},
	{X: -1, Y: 1, Z: 1},
	{X: -1, Y: 1, Z: -1},
	{X: -1, Y: -1, Z: 1},
	{X: -1, Y: -1, Z: -1},
}

// box is a geometry that represents a 3D rectangular prism, it has a pose and half size that fully define it.
type box struct {
	center   Pose
	halfSize r3.Vector
	label    string
}

// NewBox instantiates a new box Geometry.
func NewBox(pose Pose, dims r3.Vector, label string) (Geometry, error) {
	// Negative dimensions not allowed. Zero dimensions are allowed for flat plates.
	if dims.X < 0 || dims.Y < 0 || dims.Z < 0 {
		return nil, newBadGeometryDimensionsError(&box{})
	}
	return &box{
		center:   pose,
		halfSize: dims.Mul(0.5),
		label:    label,
	}, nil
}

// String returns a human readable string that represents the box.
func (b *box) String() string {
	pt := b.center.Point()
	return fmt.Sprintf("Type: Box | Position: X:%.3f, Y:%.3f, Z:%.3f | Dims: X:%.3f, Y:%.3f, Z:%.3f",
		pt.X, pt.Y, pt.Z, 2*b.halfSize.X, 2*b.halfSize.Y, 2*b.halfSize.Z)
}

// SetLabel sets the label of this box.
func (b *box) SetLabel(label string) {
	b.label = label
}

// Label returns the label of this box.
func (b *box) Label() string {
	return b.label
}

// Pose returns the pose of the box.
func (b *box) Pose() Pose {
	return b.center
}

// Transform premultiplies the box pose with a transform, allowing the box to be moved in space.
func (b *box) Transform(toPremultiply Pose) Geometry {
	return &box{
		center:   Compose(toPremultiply, b.center),
		halfSize: b.halfSize,
		label:    b.label,
	}
}

// Vertices returns the eight corners of the box in the frame its pose is expressed in.
func (b *box) Vertices() []r3.Vector {
	verts := make([]r3.Vector, 0, len(boxVertices))
	for _, vert := range boxVertices {
		offset := NewPoseFromPoint(r3.Vector{X: vert.X * b.halfSize.X, Y: vert.Y * b.halfSize.Y, Z: vert.Z * b.halfSize.Z})
		verts = append(verts, Compose(b.center, offset).Point())
	}
	return verts
}
