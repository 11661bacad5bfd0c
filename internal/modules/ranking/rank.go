package ranking

import (
	"sort"
	"time"
)

// RecentWindow is how far back completed questions count as recent.
const RecentWindow = 30 * 24 * time.Hour

type TeacherStats struct {
	TeacherID         int64     `json:"teacher_id"`
	Name              string    `json:"name"`
	DisplayID         string    `json:"display_id"`
	AvatarURL         string    `json:"avatar_url,omitempty"`
	Endorsements      int       `json:"endorsements"`
	RecentCompletions int       `json:"recent_completions"`
	LastActivity      time.Time `json:"last_activity"`
}

// Rank orders teachers by endorsements, then recent completions, then last
// activity, all descending. Ties keep their input order.
func Rank(stats []TeacherStats) []TeacherStats {
	out := make([]TeacherStats, len(stats))
	copy(out, stats)
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Endorsements != b.Endorsements {
			return a.Endorsements > b.Endorsements
		}
		if a.RecentCompletions != b.RecentCompletions {
			return a.RecentCompletions > b.RecentCompletions
		}
		return a.LastActivity.After(b.LastActivity)
	})
	return out
}

func maxTime(ts ...time.Time) time.Time {
	var m time.Time
	for _, t := range ts {
		if t.After(m) {
			m = t
		}
	}
	return m
}
