package attendance

import "time"

// DayFormat is the canonical calendar-day key used across the ledger and the
// stamp store ("2006-01-02" in the service timezone).
const DayFormat = "2006-01-02"

// Club describes one configured attendance session: which voice channel is
// watched, when the daily window opens, and how much presence earns a stamp.
type Club struct {
	ID              string
	GuildID         string
	Name            string
	VoiceChannelID  string
	NotifyChannelID string
	NotifyRoleID    string
	ArtworkKey      string
	StartHour       int
	StartMinute     int
	Window          time.Duration
	Required        time.Duration
	MonitorLead     time.Duration
}

// Window holds the three instants that bound one calendar day's session.
// Presence is detected from MonitorStart onward but only the span between
// Start and End counts toward the required duration.
type Window struct {
	MonitorStart time.Time
	Start        time.Time
	End          time.Time
}

// WindowOn computes the session window for the calendar day containing now.
// The club's start time-of-day is always interpreted in loc, never in the
// host's ambient timezone; any drift here silently opens the window at the
// wrong instant.
func (c Club) WindowOn(now time.Time, loc *time.Location) Window {
	year, month, day := now.In(loc).Date()
	start := time.Date(year, month, day, c.StartHour, c.StartMinute, 0, 0, loc)
	return Window{
		MonitorStart: start.Add(-c.MonitorLead),
		Start:        start,
		End:          start.Add(c.Window),
	}
}

// Contains reports whether t falls inside the monitored range, including the
// lead-in before the window opens.
func (w Window) Contains(t time.Time) bool {
	return !t.Before(w.MonitorStart) && !t.After(w.End)
}

// Clamp bounds t to [Start, End] so that presence outside the window never
// contributes to accumulated time.
func (w Window) Clamp(t time.Time) time.Time {
	if t.Before(w.Start) {
		return w.Start
	}
	if t.After(w.End) {
		return w.End
	}
	return t
}

// Overlaps reports whether the daily windows of c and other intersect when
// projected onto the same calendar day. Lead-in time is ignored: two clubs
// conflict only when countable spans can cover the same instant.
func (c Club) Overlaps(other Club) bool {
	aStart := time.Duration(c.StartHour)*time.Hour + time.Duration(c.StartMinute)*time.Minute
	bStart := time.Duration(other.StartHour)*time.Hour + time.Duration(other.StartMinute)*time.Minute
	return aStart < bStart+other.Window && bStart < aStart+c.Window
}

// DayKey returns the canonical day key for t in loc.
func DayKey(t time.Time, loc *time.Location) string {
	return t.In(loc).Format(DayFormat)
}
