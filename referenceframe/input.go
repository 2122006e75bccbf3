package referenceframe

import (
	"sort"

	"github.com/samber/lo"
	"gonum.org/v1/gonum/floats"
)

// JointValues is a snapshot of every joint's values keyed by joint name.
type JointValues map[string][]float64

// Names returns the joint names in sorted order.
func (jv JointValues) Names() []string {
	names := lo.Keys(jv)
	sort.Strings(names)
	return names
}

// Clone returns a deep copy.
func (jv JointValues) Clone() JointValues {
	return lo.MapValues(jv, func(v []float64, _ string) []float64 {
		return append([]float64{}, v...)
	})
}

// Scalars returns the first component of every single-DoF joint, the shape trajectory planning works in.
func (jv JointValues) Scalars() map[string]float64 {
	out := make(map[string]float64, len(jv))
	for name, v := range jv {
		if len(v) == 1 {
			out[name] = v[0]
		}
	}
	return out
}

// L2Distance returns the euclidean distance between two snapshots over the joints they share
// with matching arity.
func (jv JointValues) L2Distance(other JointValues) float64 {
	var from, to []float64
	for _, name := range jv.Names() {
		o, ok := other[name]
		if !ok || len(o) != len(jv[name]) {
			continue
		}
		from = append(from, jv[name]...)
		to = append(to, o...)
	}
	if len(from) == 0 {
		return 0
	}
	return floats.Distance(from, to, 2)
}
