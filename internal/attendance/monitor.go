package attendance

import (
	"context"
	"log/slog"
	"time"
)

// VoiceEvent is a platform-delivered voice channel state change. Empty
// channel IDs mean the member was not, or is no longer, in a voice channel.
type VoiceEvent struct {
	MemberID      string
	FromChannelID string
	ToChannelID   string
}

// ChannelMember is one current occupant of a voice channel.
type ChannelMember struct {
	ID  string
	Bot bool
}

// Roster answers "who is currently in channel X" on the poll path.
type Roster interface {
	ChannelMembers(ctx context.Context, channelID string) ([]ChannelMember, error)
}

// ClubSource supplies the clubs the monitor should evaluate. Implementations
// are expected to cache; the monitor asks on every evaluation.
type ClubSource interface {
	ActiveClubs(ctx context.Context) ([]Club, error)
}

// MonitorConfig wires a Monitor.
type MonitorConfig struct {
	Clubs        ClubSource
	Roster       Roster
	Awarder      *Awarder
	Location     *time.Location
	PollInterval time.Duration
	Now          func() time.Time
	Logger       *slog.Logger
}

// Monitor converts join/leave events and periodic channel polls into ledger
// mutations and award evaluations. All state it owns — the ledger, the
// per-day awarded set, and the daily reset marker — is touched only from the
// single Run goroutine, which serializes the two trigger sources.
type Monitor struct {
	clubs    ClubSource
	roster   Roster
	awarder  *Awarder
	ledger   *Ledger
	awarded  map[ledgerKey]struct{}
	loc      *time.Location
	interval time.Duration
	now      func() time.Time
	logger   *slog.Logger
}

// NewMonitor constructs a monitor with a fresh ledger.
func NewMonitor(cfg MonitorConfig) *Monitor {
	loc := cfg.Location
	if loc == nil {
		loc = time.UTC
	}
	interval := cfg.PollInterval
	if interval <= 0 {
		interval = 20 * time.Second
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Monitor{
		clubs:    cfg.Clubs,
		roster:   cfg.Roster,
		awarder:  cfg.Awarder,
		ledger:   NewLedger(),
		awarded:  make(map[ledgerKey]struct{}),
		loc:      loc,
		interval: interval,
		now:      now,
		logger:   logger,
	}
}

// Run drives the evaluation loop until ctx is cancelled. Failures inside an
// evaluation are logged and retried on the next trigger; one member's
// failure never stops evaluation of others.
func (m *Monitor) Run(ctx context.Context, events <-chan VoiceEvent) {
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	m.logger.InfoContext(ctx, "attendance monitor started", "poll_interval", m.interval)
	for {
		select {
		case <-ctx.Done():
			m.logger.InfoContext(ctx, "attendance monitor stopped")
			return
		case event, ok := <-events:
			if !ok {
				events = nil
				continue
			}
			m.HandleEvent(ctx, event)
		case <-ticker.C:
			m.Poll(ctx)
		}
	}
}

// HandleEvent advances the ledger for a single join or leave notification.
func (m *Monitor) HandleEvent(ctx context.Context, event VoiceEvent) {
	if event.MemberID == "" || event.FromChannelID == event.ToChannelID {
		return
	}

	now := m.now().In(m.loc)
	m.rollover(now)

	clubs, err := m.activeClubs(ctx)
	if err != nil {
		return
	}

	for _, club := range clubs {
		window := club.WindowOn(now, m.loc)
		if !window.Contains(now) {
			continue
		}
		if m.isAwarded(event.MemberID, club.ID) {
			continue
		}

		switch {
		case event.ToChannelID == club.VoiceChannelID:
			m.ledger.RecordJoin(event.MemberID, club.ID, now)
		case event.FromChannelID == club.VoiceChannelID:
			if _, ok := m.ledger.Entry(event.MemberID, club.ID); !ok {
				continue
			}
			total := m.ledger.Accrue(event.MemberID, club.ID, now, window, false)
			m.evaluate(ctx, club, event.MemberID, now, total)
		}
	}
}

// Poll re-scans channel membership for every active club. It accrues a
// clamped tick of presence for members still in channel, opens entries for
// members whose join event was missed, and closes out entries for members
// who left without a leave event being seen.
func (m *Monitor) Poll(ctx context.Context) {
	now := m.now().In(m.loc)
	m.rollover(now)

	clubs, err := m.activeClubs(ctx)
	if err != nil {
		return
	}

	for _, club := range clubs {
		window := club.WindowOn(now, m.loc)
		if !window.Contains(now) {
			continue
		}
		m.pollClub(ctx, club, window, now)
	}
}

func (m *Monitor) pollClub(ctx context.Context, club Club, window Window, now time.Time) {
	members, err := m.roster.ChannelMembers(ctx, club.VoiceChannelID)
	if err != nil {
		m.logger.WarnContext(ctx, "channel membership query failed",
			"club_id", club.ID, "channel_id", club.VoiceChannelID, "error", err)
		return
	}

	present := make(map[string]struct{}, len(members))
	for _, member := range members {
		if member.Bot {
			continue
		}
		present[member.ID] = struct{}{}

		if m.isAwarded(member.ID, club.ID) {
			continue
		}
		if !m.ledger.Present(member.ID, club.ID) {
			// First sighting this tick, or a missed join event.
			m.ledger.RecordJoin(member.ID, club.ID, now)
			continue
		}
		total := m.ledger.Accrue(member.ID, club.ID, now, window, true)
		m.evaluate(ctx, club, member.ID, now, total)
	}

	for _, memberID := range m.ledger.TrackedMembers(club.ID) {
		if _, ok := present[memberID]; ok {
			continue
		}
		if m.isAwarded(memberID, club.ID) {
			continue
		}
		// Close out a missed leave, or re-check a terminated entry whose
		// store write failed; Accrue leaves a terminated total frozen.
		total := m.ledger.Accrue(memberID, club.ID, now, window, false)
		m.evaluate(ctx, club, memberID, now, total)
	}
}

// evaluate runs the threshold check after an accumulation. Awarded and
// already-awarded both finalize the ledger entry; a store failure leaves it
// in place so the check re-fires on the next trigger.
func (m *Monitor) evaluate(ctx context.Context, club Club, memberID string, now time.Time, total time.Duration) {
	day := DayKey(now, m.loc)
	result, err := m.awarder.Evaluate(ctx, club, memberID, day, total)
	if err != nil {
		m.logger.WarnContext(ctx, "stamp evaluation failed, retrying next tick",
			"club_id", club.ID, "member_id", memberID, "error", err)
		return
	}
	if result == ResultNotYet {
		return
	}
	m.ledger.Finalize(memberID, club.ID)
	m.awarded[ledgerKey{MemberID: memberID, ClubID: club.ID}] = struct{}{}
}

// rollover clears all per-day state the first time an evaluation runs on a
// new calendar day.
func (m *Monitor) rollover(now time.Time) {
	if m.ledger.Rollover(DayKey(now, m.loc)) {
		m.awarded = make(map[ledgerKey]struct{})
	}
}

func (m *Monitor) activeClubs(ctx context.Context) ([]Club, error) {
	clubs, err := m.clubs.ActiveClubs(ctx)
	if err != nil {
		m.logger.WarnContext(ctx, "club lookup failed", "error", err)
		return nil, err
	}
	return clubs, nil
}

func (m *Monitor) isAwarded(memberID, clubID string) bool {
	_, ok := m.awarded[ledgerKey{MemberID: memberID, ClubID: clubID}]
	return ok
}
