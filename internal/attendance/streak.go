package attendance

import (
	"sort"
	"time"
)

// Stats summarizes a member's stamp history for one club.
type Stats struct {
	Total         int
	CurrentStreak int
	LongestStreak int
}

// CalcStreaks computes total, current-streak, and longest-streak figures from
// the calendar days a member has been stamped. Input days are normalized to
// civil dates, de-duplicated, and sorted, so callers may pass raw store rows.
// The current streak is the consecutive run ending at the most recent day,
// and counts as live when that run ends today or yesterday relative to
// today — evaluation may happen before today's window has occurred.
func CalcStreaks(days []time.Time, today time.Time) Stats {
	dates := normalizeDates(days)
	if len(dates) == 0 {
		return Stats{}
	}

	stats := Stats{Total: len(dates), LongestStreak: 1}

	run := 1
	for i := 1; i < len(dates); i++ {
		if daysBetween(dates[i-1], dates[i]) == 1 {
			run++
		} else {
			run = 1
		}
		if run > stats.LongestStreak {
			stats.LongestStreak = run
		}
	}

	last := dates[len(dates)-1]
	gap := daysBetween(last, truncateDate(today))
	if gap > 1 || gap < 0 {
		return stats
	}
	// run still holds the length of the trailing run.
	stats.CurrentStreak = run
	return stats
}

func normalizeDates(days []time.Time) []time.Time {
	seen := make(map[time.Time]struct{}, len(days))
	dates := make([]time.Time, 0, len(days))
	for _, day := range days {
		date := truncateDate(day)
		if _, ok := seen[date]; ok {
			continue
		}
		seen[date] = struct{}{}
		dates = append(dates, date)
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })
	return dates
}

// truncateDate drops the time-of-day, keeping only the civil date in the
// instant's own location.
func truncateDate(t time.Time) time.Time {
	year, month, day := t.Date()
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

func daysBetween(from, to time.Time) int {
	return int(to.Sub(from) / (24 * time.Hour))
}
