package attendance

import "time"

type ledgerKey struct {
	MemberID string
	ClubID   string
}

// Entry tracks one member's presence accumulation for one club on one day.
// A zero JoinedAt means the member is not currently considered present.
type Entry struct {
	Day         string
	JoinedAt    time.Time
	Accumulated time.Duration
}

// Ledger is the in-memory per-day accumulation state for every tracked
// (member, club) pair. It is owned exclusively by the monitor's evaluation
// goroutine and is deliberately unsynchronized; both trigger sources are
// serialized before they reach it.
type Ledger struct {
	day     string
	entries map[ledgerKey]*Entry
}

// NewLedger returns an empty ledger.
func NewLedger() *Ledger {
	return &Ledger{entries: make(map[ledgerKey]*Entry)}
}

// Rollover discards every entry when the calendar day changes and records the
// new day as the reset marker. Entries from a prior day are never carried
// forward; a member present across midnight starts a fresh accumulation.
// It reports whether a reset happened.
func (l *Ledger) Rollover(day string) bool {
	if l.day == day {
		return false
	}
	l.day = day
	l.entries = make(map[ledgerKey]*Entry)
	return true
}

// Day returns the calendar day the ledger currently tracks.
func (l *Ledger) Day() string {
	return l.day
}

// RecordJoin marks the member present from now. The raw instant is stored
// unclamped; clamping to the window happens at accrual time so an early
// arrival is captured without being prematurely counted. A join while an
// unterminated presence is already recorded re-anchors the start instant,
// so reordered or redelivered events under-count rather than double-count.
func (l *Ledger) RecordJoin(memberID, clubID string, now time.Time) {
	key := ledgerKey{MemberID: memberID, ClubID: clubID}
	entry, ok := l.entries[key]
	if !ok {
		l.entries[key] = &Entry{Day: l.day, JoinedAt: now}
		return
	}
	entry.JoinedAt = now
}

// Accrue adds the clamped elapsed time since the recorded join instant and
// returns the new accumulated total. When keepPresent is true (a poll tick
// for a member still in channel) the join instant is re-anchored at now so
// each tick's span is attributed exactly once; otherwise the presence is
// terminated and the join instant cleared. Accrue on a terminated or unknown
// entry returns the frozen total unchanged.
func (l *Ledger) Accrue(memberID, clubID string, now time.Time, w Window, keepPresent bool) time.Duration {
	key := ledgerKey{MemberID: memberID, ClubID: clubID}
	entry, ok := l.entries[key]
	if !ok {
		return 0
	}
	if entry.JoinedAt.IsZero() {
		return entry.Accumulated
	}

	delta := w.Clamp(now).Sub(w.Clamp(entry.JoinedAt))
	if delta > 0 {
		entry.Accumulated += delta
	}

	if keepPresent {
		entry.JoinedAt = now
	} else {
		entry.JoinedAt = time.Time{}
	}
	return entry.Accumulated
}

// Entry returns a copy of the tracked entry for the pair, if any.
func (l *Ledger) Entry(memberID, clubID string) (Entry, bool) {
	entry, ok := l.entries[ledgerKey{MemberID: memberID, ClubID: clubID}]
	if !ok {
		return Entry{}, false
	}
	return *entry, true
}

// Present reports whether the pair has an unterminated presence recorded.
func (l *Ledger) Present(memberID, clubID string) bool {
	entry, ok := l.entries[ledgerKey{MemberID: memberID, ClubID: clubID}]
	return ok && !entry.JoinedAt.IsZero()
}

// Finalize removes the entry once a stamp has been durably recorded,
// preventing any further accumulation or duplicate award for the day.
func (l *Ledger) Finalize(memberID, clubID string) {
	delete(l.entries, ledgerKey{MemberID: memberID, ClubID: clubID})
}

// TrackedMembers lists the members with a ledger entry for the club. The
// poll path uses it to close out presences whose leave event was missed.
func (l *Ledger) TrackedMembers(clubID string) []string {
	members := make([]string, 0)
	for key := range l.entries {
		if key.ClubID == clubID {
			members = append(members, key.MemberID)
		}
	}
	return members
}
