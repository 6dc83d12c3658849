package application

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"time"

	"github.com/example/stampcard/internal/attendance"
	"github.com/example/stampcard/internal/persistence"
)

// StampHistoryRepository captures the read operations the stats service
// needs from the award ledger.
type StampHistoryRepository interface {
	ListMemberStampDays(ctx context.Context, memberID, clubID string) ([]string, error)
	ListClubStamps(ctx context.Context, clubID string, filter persistence.StampFilter) ([]persistence.StampRecord, error)
}

// NameResolver resolves a member ID to a display name.
type NameResolver interface {
	MemberName(ctx context.Context, guildID, memberID string) (string, error)
}

// CardRenderer draws a member's monthly stamp card.
type CardRenderer interface {
	Render(w io.Writer, artworkKey string, today time.Time, days []time.Time) error
}

// rankingLimit caps each leaderboard.
const rankingLimit = 10

// StatsService answers attendance statistics, stamp card, and ranking
// queries over the award history.
type StatsService struct {
	stamps   StampHistoryRepository
	names    NameResolver
	renderer CardRenderer
	guildID  string
	location *time.Location
	now      func() time.Time
	logger   *slog.Logger
}

// NewStatsService constructs a stats service with the provided dependencies.
func NewStatsService(stamps StampHistoryRepository, names NameResolver, renderer CardRenderer, guildID string, location *time.Location, now func() time.Time, logger *slog.Logger) *StatsService {
	if now == nil {
		now = time.Now
	}
	if location == nil {
		location = time.UTC
	}
	return &StatsService{
		stamps:   stamps,
		names:    names,
		renderer: renderer,
		guildID:  guildID,
		location: location,
		now:      now,
		logger:   defaultLogger(logger),
	}
}

func (s *StatsService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "StatsService", operation, attrs...)
}

// MemberStats computes total, current streak, and longest streak for one
// member in one club.
func (s *StatsService) MemberStats(ctx context.Context, clubID, memberID string) (stats MemberStats, err error) {
	if s == nil {
		err = fmt.Errorf("StatsService is nil")
		return
	}

	logger := s.loggerWith(ctx, "MemberStats", "club_id", clubID, "member_id", memberID)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to compute member stats", "error", err, "error_kind", ErrorKind(err))
		}
	}()

	days, err := s.memberDays(ctx, clubID, memberID)
	if err != nil {
		return
	}

	calced := attendance.CalcStreaks(days, s.now().In(s.location))
	stats = MemberStats{
		MemberID:      memberID,
		Total:         calced.Total,
		CurrentStreak: calced.CurrentStreak,
		LongestStreak: calced.LongestStreak,
	}
	return
}

// RenderCard writes the member's stamp card PNG for the current month.
func (s *StatsService) RenderCard(ctx context.Context, w io.Writer, club Club, memberID string) error {
	if s == nil {
		return fmt.Errorf("StatsService is nil")
	}

	days, err := s.memberDays(ctx, club.ID, memberID)
	if err != nil {
		s.loggerWith(ctx, "RenderCard", "club_id", club.ID, "member_id", memberID).
			ErrorContext(ctx, "failed to load stamp days", "error", err)
		return err
	}

	if err := s.renderer.Render(w, club.ArtworkKey, s.now().In(s.location), days); err != nil {
		s.loggerWith(ctx, "RenderCard", "club_id", club.ID, "member_id", memberID).
			ErrorContext(ctx, "failed to render stamp card", "error", err)
		return err
	}
	return nil
}

// Ranking builds the club's leaderboards over the given trailing period.
func (s *StatsService) Ranking(ctx context.Context, clubID string, period RankingPeriod) (ranking Ranking, err error) {
	if s == nil {
		err = fmt.Errorf("StatsService is nil")
		return
	}

	logger := s.loggerWith(ctx, "Ranking", "club_id", clubID, "period", string(period))
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to build ranking", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("entry_count", len(ranking.ByTotal)).InfoContext(ctx, "ranking built")
	}()

	filter, err := s.periodFilter(period)
	if err != nil {
		return
	}

	records, err := s.stamps.ListClubStamps(ctx, clubID, filter)
	if err != nil {
		return
	}

	today := s.now().In(s.location)
	byMember := make(map[string][]time.Time)
	for _, record := range records {
		day, parseErr := time.ParseInLocation(attendance.DayFormat, record.Day, s.location)
		if parseErr != nil {
			logger.WarnContext(ctx, "skipping malformed stamp day", "day", record.Day, "member_id", record.MemberID)
			continue
		}
		byMember[record.MemberID] = append(byMember[record.MemberID], day)
	}

	entries := make([]RankingEntry, 0, len(byMember))
	for memberID, days := range byMember {
		calced := attendance.CalcStreaks(days, today)
		entries = append(entries, RankingEntry{
			MemberID:      memberID,
			DisplayName:   s.resolveName(ctx, memberID),
			Total:         calced.Total,
			LongestStreak: calced.LongestStreak,
		})
	}

	ranking.ByTotal = topEntries(entries, func(a, b RankingEntry) bool {
		if a.Total != b.Total {
			return a.Total > b.Total
		}
		return a.MemberID < b.MemberID
	})
	ranking.ByStreak = topEntries(entries, func(a, b RankingEntry) bool {
		if a.LongestStreak != b.LongestStreak {
			return a.LongestStreak > b.LongestStreak
		}
		return a.MemberID < b.MemberID
	})
	return
}

// memberDays loads and parses a member's award days, skipping malformed
// rows rather than failing the whole query.
func (s *StatsService) memberDays(ctx context.Context, clubID, memberID string) ([]time.Time, error) {
	raw, err := s.stamps.ListMemberStampDays(ctx, memberID, clubID)
	if err != nil {
		return nil, err
	}

	days := make([]time.Time, 0, len(raw))
	for _, value := range raw {
		day, parseErr := time.ParseInLocation(attendance.DayFormat, value, s.location)
		if parseErr != nil {
			s.loggerWith(ctx, "memberDays", "club_id", clubID, "member_id", memberID).
				WarnContext(ctx, "skipping malformed stamp day", "day", value)
			continue
		}
		days = append(days, day)
	}
	return days, nil
}

func (s *StatsService) periodFilter(period RankingPeriod) (persistence.StampFilter, error) {
	today := s.now().In(s.location)
	switch period {
	case RankingAll:
		return persistence.StampFilter{}, nil
	case RankingWeek:
		return persistence.StampFilter{SinceDay: today.AddDate(0, 0, -7).Format(attendance.DayFormat)}, nil
	case RankingMonth:
		return persistence.StampFilter{SinceDay: today.AddDate(0, -1, 0).Format(attendance.DayFormat)}, nil
	case RankingYear:
		return persistence.StampFilter{SinceDay: today.AddDate(-1, 0, 0).Format(attendance.DayFormat)}, nil
	default:
		vErr := &ValidationError{}
		vErr.add("period", "期間は week / month / year のいずれかを指定してください")
		return persistence.StampFilter{}, vErr
	}
}

// resolveName falls back to the raw member ID when the platform lookup
// fails; a ranking should not break because one profile is unavailable.
func (s *StatsService) resolveName(ctx context.Context, memberID string) string {
	if s.names == nil {
		return memberID
	}
	name, err := s.names.MemberName(ctx, s.guildID, memberID)
	if err != nil || name == "" {
		return memberID
	}
	return name
}

func topEntries(entries []RankingEntry, less func(a, b RankingEntry) bool) []RankingEntry {
	sorted := make([]RankingEntry, len(entries))
	copy(sorted, entries)
	sort.Slice(sorted, func(i, j int) bool { return less(sorted[i], sorted[j]) })
	if len(sorted) > rankingLimit {
		sorted = sorted[:rankingLimit]
	}
	return sorted
}
