package attendance

import (
	"testing"
	"time"
)

var jst = time.FixedZone("JST", 9*60*60)

func testClub() Club {
	return Club{
		ID:             "club-1",
		GuildID:        "guild-1",
		Name:           "morning",
		VoiceChannelID: "vc-1",
		StartHour:      11,
		StartMinute:    0,
		Window:         15 * time.Minute,
		Required:       480 * time.Second,
		MonitorLead:    10 * time.Minute,
	}
}

func TestClubWindowOn(t *testing.T) {
	t.Parallel()

	club := testClub()
	now := time.Date(2024, time.June, 10, 10, 52, 30, 0, jst)
	window := club.WindowOn(now, jst)

	wantStart := time.Date(2024, time.June, 10, 11, 0, 0, 0, jst)
	if !window.Start.Equal(wantStart) {
		t.Fatalf("expected window start %v, got %v", wantStart, window.Start)
	}
	if !window.MonitorStart.Equal(wantStart.Add(-10 * time.Minute)) {
		t.Fatalf("expected monitor start 10:50, got %v", window.MonitorStart)
	}
	if !window.End.Equal(wantStart.Add(15 * time.Minute)) {
		t.Fatalf("expected window end 11:15, got %v", window.End)
	}
}

func TestClubWindowOnUsesConfiguredZone(t *testing.T) {
	t.Parallel()

	club := testClub()
	// 02:05 UTC on June 10 is 11:05 JST on June 10; the window must be
	// anchored to the JST calendar day, not the instant's own zone.
	now := time.Date(2024, time.June, 10, 2, 5, 0, 0, time.UTC)
	window := club.WindowOn(now, jst)

	wantStart := time.Date(2024, time.June, 10, 11, 0, 0, 0, jst)
	if !window.Start.Equal(wantStart) {
		t.Fatalf("expected window start %v, got %v", wantStart, window.Start)
	}
	if !window.Contains(now) {
		t.Fatalf("expected 11:05 JST to be inside the monitored range")
	}
}

func TestWindowContains(t *testing.T) {
	t.Parallel()

	window := testClub().WindowOn(time.Date(2024, time.June, 10, 9, 0, 0, 0, jst), jst)

	cases := map[string]struct {
		at   time.Time
		want bool
	}{
		"before monitor start": {time.Date(2024, time.June, 10, 10, 49, 59, 0, jst), false},
		"at monitor start":     {time.Date(2024, time.June, 10, 10, 50, 0, 0, jst), true},
		"inside window":        {time.Date(2024, time.June, 10, 11, 7, 0, 0, jst), true},
		"at window end":        {time.Date(2024, time.June, 10, 11, 15, 0, 0, jst), true},
		"after window end":     {time.Date(2024, time.June, 10, 11, 15, 1, 0, jst), false},
	}
	for name, tc := range cases {
		if got := window.Contains(tc.at); got != tc.want {
			t.Errorf("%s: Contains(%v) = %v, want %v", name, tc.at, got, tc.want)
		}
	}
}

func TestWindowClamp(t *testing.T) {
	t.Parallel()

	window := testClub().WindowOn(time.Date(2024, time.June, 10, 9, 0, 0, 0, jst), jst)

	early := time.Date(2024, time.June, 10, 10, 35, 0, 0, jst)
	if got := window.Clamp(early); !got.Equal(window.Start) {
		t.Fatalf("expected pre-window instant clamped to start, got %v", got)
	}

	late := time.Date(2024, time.June, 10, 11, 40, 0, 0, jst)
	if got := window.Clamp(late); !got.Equal(window.End) {
		t.Fatalf("expected post-window instant clamped to end, got %v", got)
	}

	inside := time.Date(2024, time.June, 10, 11, 5, 0, 0, jst)
	if got := window.Clamp(inside); !got.Equal(inside) {
		t.Fatalf("expected in-window instant unchanged, got %v", got)
	}
}

func TestClubOverlaps(t *testing.T) {
	t.Parallel()

	base := testClub()

	cases := map[string]struct {
		startHour   int
		startMinute int
		window      time.Duration
		want        bool
	}{
		"identical window":    {11, 0, 15 * time.Minute, true},
		"starts mid-window":   {11, 10, 15 * time.Minute, true},
		"ends mid-window":     {10, 50, 15 * time.Minute, true},
		"back to back after":  {11, 15, 15 * time.Minute, false},
		"back to back before": {10, 45, 15 * time.Minute, false},
		"evening session":     {21, 0, 30 * time.Minute, false},
	}
	for name, tc := range cases {
		other := base
		other.StartHour = tc.startHour
		other.StartMinute = tc.startMinute
		other.Window = tc.window
		if got := base.Overlaps(other); got != tc.want {
			t.Errorf("%s: Overlaps = %v, want %v", name, got, tc.want)
		}
		if got := other.Overlaps(base); got != tc.want {
			t.Errorf("%s: Overlaps is not symmetric", name)
		}
	}
}

func TestDayKey(t *testing.T) {
	t.Parallel()

	// 23:30 JST on June 10 is 14:30 UTC the same day; 00:30 JST on June 11
	// is still June 10 in UTC. The key must follow the configured zone.
	if got := DayKey(time.Date(2024, time.June, 10, 14, 30, 0, 0, time.UTC), jst); got != "2024-06-10" {
		t.Fatalf("expected 2024-06-10, got %s", got)
	}
	if got := DayKey(time.Date(2024, time.June, 10, 15, 30, 0, 0, time.UTC), jst); got != "2024-06-11" {
		t.Fatalf("expected 2024-06-11, got %s", got)
	}
}
