package presenter

import (
	"time"

	"github.com/dustin/go-humanize"

	"github.com/ankouros/rosterwatch/internal/model"
)

// OvercapThreshold is the player count above which a server is flagged.
const OvercapThreshold = 45

const noDataMsg = "No data"

type NameView struct {
	Name string `json:"name"`
	Hit  bool   `json:"hit"`
}

type ServerView struct {
	Name        string `json:"name"`
	Address     string `json:"address"`
	Port        int    `json:"port"`
	PlayerCount int    `json:"playerCount"`
	Overcap     bool   `json:"overcap"`
}

// View is everything the window needs to draw one frame.
type View struct {
	OK    bool   `json:"ok"`
	Error string `json:"error,omitempty"`

	Names   []NameView   `json:"names"`
	Servers []ServerView `json:"servers"`

	// VisibleCount is the total number of names, not the filtered count.
	VisibleCount int    `json:"visibleCount"`
	HiddenCount  int    `json:"hiddenCount"`
	VisibleLabel string `json:"visibleLabel"`
	HiddenLabel  string `json:"hiddenLabel"`
	LastUpdated  string `json:"lastUpdated"`

	Filters          []string `json:"filters"`
	ExactMatch       bool     `json:"exactMatch"`
	ShowFilteredOnly bool     `json:"showFilteredOnly"`
}

// build computes the view for s under the given filter state. s may be nil.
func build(s *model.Snapshot, fs model.FilterSet, showOnly bool) View {
	v := View{
		Names:            []NameView{},
		Servers:          []ServerView{},
		VisibleLabel:     "0",
		HiddenLabel:      "0",
		Filters:          append([]string{}, fs.Filters...),
		ExactMatch:       fs.ExactMatch,
		ShowFilteredOnly: showOnly,
	}
	if s == nil {
		v.Error = noDataMsg
		return v
	}
	if !s.OK {
		v.Error = s.Error
		if v.Error == "" {
			v.Error = noDataMsg
		}
		return v
	}

	order, set := matched(s.Names, fs.Filters, fs.ExactMatch)
	v.OK = true
	if showOnly && len(fs.Filters) > 0 {
		for _, n := range order {
			v.Names = append(v.Names, NameView{Name: n, Hit: true})
		}
	} else {
		for _, n := range s.Names {
			_, hit := set[n]
			v.Names = append(v.Names, NameView{Name: n, Hit: hit})
		}
	}

	v.VisibleCount = len(s.Names)
	v.HiddenCount = s.Hidden
	v.VisibleLabel = humanize.Comma(int64(v.VisibleCount))
	v.HiddenLabel = humanize.Comma(int64(v.HiddenCount))
	v.LastUpdated = "Updated " + formatTime(s.Timestamp)

	for _, srv := range s.Servers {
		v.Servers = append(v.Servers, ServerView{
			Name:        srv.Name,
			Address:     srv.Address,
			Port:        srv.Port,
			PlayerCount: srv.PlayerCount,
			Overcap:     srv.PlayerCount > OvercapThreshold,
		})
	}
	return v
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Local().Format("15:04:05")
}
