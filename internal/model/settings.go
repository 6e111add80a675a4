package model

// Settings is the on-disk settings document.
type Settings struct {
	Version int `json:"version"`

	// UserSession is the portal session cookie value. Stored as typed, never logged.
	UserSession string `json:"userSession"`

	Filters          []string `json:"filters"`
	ExactMatch       bool     `json:"exactMatch"`
	ShowFilteredOnly bool     `json:"showFilteredOnly,omitempty"`
}

func (s Settings) FilterSet() FilterSet {
	return FilterSet{Filters: append([]string(nil), s.Filters...), ExactMatch: s.ExactMatch}
}
