package referenceframe

// Update is a partial value vector for one joint. A nil component leaves that degree of freedom unchanged.
type Update []*float64

// Set returns a pointer to v, for building an Update component inline.
func Set(v float64) *float64 {
	return &v
}

// FullUpdate builds an Update that sets every component.
func FullUpdate(values ...float64) Update {
	u := make(Update, len(values))
	for i := range values {
		u[i] = Set(values[i])
	}
	return u
}

// Values returns the update's components with nils replaced by the matching entry of current.
func (u Update) Values(current []float64) []float64 {
	out := make([]float64, len(current))
	copy(out, current)
	for i, v := range u {
		if v != nil && i < len(out) {
			out[i] = *v
		}
	}
	return out
}
