package spatialmath

import (
	"fmt"

	"github.com/golang/geo/r3"
)

type sphere struct {
	pose   Pose
	radius float64
	label  string
}

// NewSphere instantiates a new sphere Geometry.
func NewSphere(offset Pose, radius float64, label string) (Geometry, error) {
	if radius < 0 {
		return nil, newBadGeometryDimensionsError(&sphere{})
	}
	return &sphere{offset, radius, label}, nil
}

func (s *sphere) String() string {
	pt := s.pose.Point()
	return fmt.Sprintf("Type: Sphere | Position: X:%.3f, Y:%.3f, Z:%.3f | Radius: %.3f", pt.X, pt.Y, pt.Z, s.radius)
}

func (s *sphere) Label() string { return s.label }

func (s *sphere) SetLabel(label string) { s.label = label }

func (s *sphere) Pose() Pose { return s.pose }

func (s *sphere) Transform(toPremultiply Pose) Geometry {
	return &sphere{Compose(toPremultiply, s.pose), s.radius, s.label}
}

// Vertices returns the corners of the cube that bounds the sphere, oriented with the sphere's pose.
func (s *sphere) Vertices() []r3.Vector {
	return (&box{center: s.pose, halfSize: r3.Vector{X: s.radius, Y: s.radius, Z: s.radius}}).Vertices()
}
