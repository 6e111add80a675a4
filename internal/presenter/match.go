package presenter

import "strings"

// Matches reports whether name hits any filter. Comparison is
// case-insensitive; exact selects equality over substring. An empty filter
// list matches nothing.
func Matches(name string, filters []string, exact bool) bool {
	if len(filters) == 0 {
		return false
	}
	l := strings.ToLower(name)
	for _, f := range filters {
		f = strings.ToLower(f)
		if exact {
			if l == f {
				return true
			}
			continue
		}
		if strings.Contains(l, f) {
			return true
		}
	}
	return false
}

// matched returns the distinct names that hit, in first-seen order, and the
// same names as a set.
func matched(names, filters []string, exact bool) ([]string, map[string]struct{}) {
	set := make(map[string]struct{})
	var order []string
	if len(filters) == 0 {
		return order, set
	}
	for _, n := range names {
		if !Matches(n, filters, exact) {
			continue
		}
		if _, ok := set[n]; ok {
			continue
		}
		set[n] = struct{}{}
		order = append(order, n)
	}
	return order, set
}
