package domain

// Filter selects which subset of the todos is displayed.
type Filter string

const (
	FilterAll       Filter = "all"
	FilterActive    Filter = "active"
	FilterCompleted Filter = "completed"
)

// Filters lists the known filters in display order.
var Filters = []Filter{FilterAll, FilterActive, FilterCompleted}

// ParseFilter resolves a raw route segment. Unknown values report false.
func ParseFilter(raw string) (Filter, bool) {
	switch Filter(raw) {
	case FilterAll, FilterActive, FilterCompleted:
		return Filter(raw), true
	}
	return FilterAll, false
}

// Normalize maps unknown or empty filters to FilterAll.
func (f Filter) Normalize() Filter {
	n, _ := ParseFilter(string(f))
	return n
}

// String implements fmt.Stringer.
func (f Filter) String() string {
	return string(f)
}
