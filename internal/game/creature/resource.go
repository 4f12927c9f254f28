package creature

// Resource is a bounded numeric quantity with a maximum and a current value.
//
// Current is deliberately NOT clamped by the type itself: intermediate
// damage math may drive it negative, and callers opt into clamping where
// their policy requires it.
type Resource struct {
	Max     int `json:"max"`
	Current int `json:"current"`
}

// NewResource creates a Resource with current at max.
func NewResource(max int) *Resource {
	return &Resource{Max: max, Current: max}
}

// NewResourceAt creates a Resource with an explicit current value.
func NewResourceAt(max, current int) *Resource {
	return &Resource{Max: max, Current: current}
}

// Set assigns both max and current to value. Zero is treated as "unset" and
// leaves the resource untouched.
func (r *Resource) Set(value int) {
	if value == 0 {
		return
	}
	r.Max = value
	r.Current = value
}

// SetMax lowers current if it now exceeds the new maximum.
func (r *Resource) SetMax(max int) {
	r.Max = max
	if r.Current > r.Max {
		r.Current = r.Max
	}
}

// Reset restores current to max.
func (r *Resource) Reset() {
	r.Current = r.Max
}

// Percent returns current as a percentage of max.
func (r *Resource) Percent() float64 {
	return float64(r.Current) / float64(r.Max) * 100
}
