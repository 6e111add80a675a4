package model

import "strings"

// FilterSet is the user's persisted name filter configuration.
type FilterSet struct {
	Filters    []string `json:"filters"`
	ExactMatch bool     `json:"exactMatch"`
}

// Contains reports whether name is already present, ignoring case.
func (f FilterSet) Contains(name string) bool {
	for _, x := range f.Filters {
		if strings.EqualFold(x, name) {
			return true
		}
	}
	return false
}

// Lower returns the filters lowercased, in order.
func (f FilterSet) Lower() []string {
	out := make([]string, 0, len(f.Filters))
	for _, x := range f.Filters {
		out = append(out, strings.ToLower(x))
	}
	return out
}

// Equal compares members case-insensitively, ignoring order.
func (f FilterSet) Equal(o FilterSet) bool {
	if f.ExactMatch != o.ExactMatch || len(f.Filters) != len(o.Filters) {
		return false
	}
	for _, x := range f.Filters {
		if !o.Contains(x) {
			return false
		}
	}
	return true
}

// Clone returns a copy that shares no backing array with f.
func (f FilterSet) Clone() FilterSet {
	return FilterSet{
		Filters:    append([]string(nil), f.Filters...),
		ExactMatch: f.ExactMatch,
	}
}
