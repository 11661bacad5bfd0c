package ranking

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func ids(stats []TeacherStats) []int64 {
	out := make([]int64, len(stats))
	for i, s := range stats {
		out[i] = s.TeacherID
	}
	return out
}

func TestRank(t *testing.T) {
	base := time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC)
	in := []TeacherStats{
		{TeacherID: 1, Endorsements: 2, RecentCompletions: 1, LastActivity: base},
		{TeacherID: 2, Endorsements: 5, RecentCompletions: 0, LastActivity: base},
		{TeacherID: 3, Endorsements: 2, RecentCompletions: 4, LastActivity: base},
		{TeacherID: 4, Endorsements: 2, RecentCompletions: 1, LastActivity: base.Add(time.Hour)},
		{TeacherID: 5, Endorsements: 2, RecentCompletions: 1, LastActivity: base},
	}

	got := Rank(in)
	assert.Equal(t, []int64{2, 3, 4, 1, 5}, ids(got))
	assert.Equal(t, int64(1), in[0].TeacherID, "input must not be reordered")
}

func TestRank_Empty(t *testing.T) {
	assert.Empty(t, Rank(nil))
}
