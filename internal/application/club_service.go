package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/example/stampcard/internal/attendance"
	"github.com/example/stampcard/internal/config"
	"github.com/example/stampcard/internal/persistence"
)

// ClubRepository captures the persistence operations needed by the service.
type ClubRepository interface {
	InsertClub(ctx context.Context, club persistence.Club) error
	GetClubByName(ctx context.Context, guildID, name string) (persistence.Club, error)
	ListClubs(ctx context.Context, guildID string) ([]persistence.Club, error)
	DeleteClub(ctx context.Context, id string) error
}

// ClubService orchestrates validation and persistence for club
// configurations and serves them to the presence monitor.
type ClubService struct {
	clubs       ClubRepository
	guildID     string
	idGenerator func() string
	now         func() time.Time
	logger      *slog.Logger

	mu    sync.RWMutex
	cache []attendance.Club // nil means stale
}

// NewClubService constructs a club service with the provided dependencies.
func NewClubService(clubs ClubRepository, guildID string, idGenerator func() string, now func() time.Time, logger *slog.Logger) *ClubService {
	if idGenerator == nil {
		idGenerator = func() string { return "" }
	}
	if now == nil {
		now = time.Now
	}
	return &ClubService{
		clubs:       clubs,
		guildID:     guildID,
		idGenerator: idGenerator,
		now:         now,
		logger:      defaultLogger(logger),
	}
}

func (s *ClubService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "ClubService", operation, attrs...)
}

// CreateClub validates input and persists a new club.
func (s *ClubService) CreateClub(ctx context.Context, input ClubInput) (club Club, err error) {
	if s == nil {
		err = fmt.Errorf("ClubService is nil")
		return
	}

	logger := s.loggerWith(ctx, "CreateClub", "club_name", input.Name)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to create club", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("club_id", club.ID).InfoContext(ctx, "club created")
	}()

	vErr := validateClubInput(input)
	if vErr.HasErrors() {
		err = vErr
		return
	}

	created := s.now()
	record := persistence.Club{
		ID:              s.idGenerator(),
		GuildID:         s.guildID,
		Name:            strings.TrimSpace(input.Name),
		VoiceChannelID:  strings.TrimSpace(input.VoiceChannelID),
		NotifyChannelID: strings.TrimSpace(input.NotifyChannelID),
		NotifyRoleID:    strings.TrimSpace(input.NotifyRoleID),
		ArtworkKey:      artworkKeyOrDefault(input.ArtworkKey),
		StartTime:       input.StartTime,
		WindowSeconds:   input.WindowMinutes * 60,
		RequiredSeconds: input.RequiredSeconds,
		LeadSeconds:     input.LeadMinutes * 60,
		CreatedAt:       created,
		UpdatedAt:       created,
	}

	if err = s.checkWindowConflict(ctx, record); err != nil {
		return
	}

	if err = s.clubs.InsertClub(ctx, record); err != nil {
		err = mapClubRepoError(err)
		return
	}

	s.invalidate()
	club = clubDTO(record)
	return
}

// DeleteClub removes a club configuration. Award history is kept.
func (s *ClubService) DeleteClub(ctx context.Context, id string) error {
	if s == nil {
		return fmt.Errorf("ClubService is nil")
	}

	logger := s.loggerWith(ctx, "DeleteClub", "club_id", id)
	if err := s.clubs.DeleteClub(ctx, id); err != nil {
		err = mapClubRepoError(err)
		logger.ErrorContext(ctx, "failed to delete club", "error", err, "error_kind", ErrorKind(err))
		return err
	}

	s.invalidate()
	logger.InfoContext(ctx, "club deleted")
	return nil
}

// GetClubByName resolves a club by its guild-scoped name.
func (s *ClubService) GetClubByName(ctx context.Context, name string) (Club, error) {
	if s == nil {
		return Club{}, fmt.Errorf("ClubService is nil")
	}
	record, err := s.clubs.GetClubByName(ctx, s.guildID, name)
	if err != nil {
		return Club{}, mapClubRepoError(err)
	}
	return clubDTO(record), nil
}

// ListClubs returns every configured club in the guild.
func (s *ClubService) ListClubs(ctx context.Context) ([]Club, error) {
	if s == nil {
		return nil, fmt.Errorf("ClubService is nil")
	}
	records, err := s.clubs.ListClubs(ctx, s.guildID)
	if err != nil {
		return nil, mapClubRepoError(err)
	}
	clubs := make([]Club, 0, len(records))
	for _, record := range records {
		clubs = append(clubs, clubDTO(record))
	}
	return clubs, nil
}

// ActiveClubs returns the clubs the presence monitor should watch. Results
// are cached until a club is created or deleted.
func (s *ClubService) ActiveClubs(ctx context.Context) ([]attendance.Club, error) {
	if s == nil {
		return nil, fmt.Errorf("ClubService is nil")
	}

	s.mu.RLock()
	cached := s.cache
	s.mu.RUnlock()
	if cached != nil {
		return cached, nil
	}

	records, err := s.clubs.ListClubs(ctx, s.guildID)
	if err != nil {
		return nil, mapClubRepoError(err)
	}

	clubs := make([]attendance.Club, 0, len(records))
	for _, record := range records {
		club, err := attendanceClub(record)
		if err != nil {
			s.loggerWith(ctx, "ActiveClubs", "club_id", record.ID).
				WarnContext(ctx, "skipping club with malformed start time", "error", err)
			continue
		}
		clubs = append(clubs, club)
	}

	s.mu.Lock()
	s.cache = clubs
	s.mu.Unlock()
	return clubs, nil
}

// SeedClubs inserts declared clubs that do not exist yet. Existing clubs
// with the same name are left untouched.
func (s *ClubService) SeedClubs(ctx context.Context, seeds []config.ClubSeed) error {
	if s == nil {
		return fmt.Errorf("ClubService is nil")
	}

	logger := s.loggerWith(ctx, "SeedClubs")
	for _, seed := range seeds {
		_, err := s.clubs.GetClubByName(ctx, s.guildID, seed.Name)
		if err == nil {
			continue
		}
		if !errors.Is(err, persistence.ErrNotFound) {
			return mapClubRepoError(err)
		}

		_, err = s.CreateClub(ctx, ClubInput{
			Name:            seed.Name,
			VoiceChannelID:  seed.VoiceChannelID,
			NotifyChannelID: seed.NotifyChannelID,
			NotifyRoleID:    seed.NotifyRoleID,
			ArtworkKey:      seed.ArtworkKey,
			StartTime:       seed.StartTime,
			WindowMinutes:   seed.WindowMinutes,
			RequiredSeconds: seed.RequiredSeconds,
			LeadMinutes:     seed.LeadMinutes,
		})
		if err != nil && !errors.Is(err, ErrAlreadyExists) {
			return fmt.Errorf("seed club %s: %w", seed.Name, err)
		}
		logger.With("club_name", seed.Name).InfoContext(ctx, "club seeded")
	}
	return nil
}

// checkWindowConflict rejects a club whose countable window overlaps an
// existing club on the same voice channel. Overlapping windows would let one
// stretch of presence earn two stamps for the same seat time.
func (s *ClubService) checkWindowConflict(ctx context.Context, record persistence.Club) error {
	candidate, err := attendanceClub(record)
	if err != nil {
		return err
	}
	existing, err := s.ActiveClubs(ctx)
	if err != nil {
		return err
	}
	for _, club := range existing {
		if club.VoiceChannelID != candidate.VoiceChannelID {
			continue
		}
		if club.Overlaps(candidate) {
			vErr := &ValidationError{}
			vErr.add("start_time", fmt.Sprintf("クラブ「%s」と時間帯が重複しています", club.Name))
			return vErr
		}
	}
	return nil
}

func (s *ClubService) invalidate() {
	s.mu.Lock()
	s.cache = nil
	s.mu.Unlock()
}

func validateClubInput(input ClubInput) *ValidationError {
	vErr := &ValidationError{}

	if strings.TrimSpace(input.Name) == "" {
		vErr.add("name", "クラブ名は必須です")
	}
	if strings.TrimSpace(input.VoiceChannelID) == "" {
		vErr.add("voice_channel_id", "ボイスチャンネルIDは必須です")
	}
	if _, err := time.Parse("15:04", input.StartTime); err != nil {
		vErr.add("start_time", "開始時刻は HH:MM 形式で指定してください")
	}
	if input.WindowMinutes <= 0 {
		vErr.add("window_minutes", "ウィンドウ長は正の値にしてください")
	}
	if input.RequiredSeconds <= 0 {
		vErr.add("required_seconds", "必要滞在時間は正の値にしてください")
	} else if input.WindowMinutes > 0 && input.RequiredSeconds > input.WindowMinutes*60 {
		vErr.add("required_seconds", "必要滞在時間がウィンドウ長を超えています")
	}
	if input.LeadMinutes < 0 {
		vErr.add("lead_minutes", "監視開始リードは負にできません")
	}

	return vErr
}

func artworkKeyOrDefault(key string) string {
	key = strings.TrimSpace(key)
	if key == "" {
		return "default"
	}
	return key
}

func clubDTO(record persistence.Club) Club {
	return Club{
		ID:              record.ID,
		GuildID:         record.GuildID,
		Name:            record.Name,
		VoiceChannelID:  record.VoiceChannelID,
		NotifyChannelID: record.NotifyChannelID,
		NotifyRoleID:    record.NotifyRoleID,
		ArtworkKey:      record.ArtworkKey,
		StartTime:       record.StartTime,
		WindowSeconds:   record.WindowSeconds,
		RequiredSeconds: record.RequiredSeconds,
		LeadSeconds:     record.LeadSeconds,
		CreatedAt:       record.CreatedAt,
		UpdatedAt:       record.UpdatedAt,
	}
}

func attendanceClub(record persistence.Club) (attendance.Club, error) {
	start, err := time.Parse("15:04", record.StartTime)
	if err != nil {
		return attendance.Club{}, fmt.Errorf("parse start time %q: %w", record.StartTime, err)
	}
	return attendance.Club{
		ID:              record.ID,
		GuildID:         record.GuildID,
		Name:            record.Name,
		VoiceChannelID:  record.VoiceChannelID,
		NotifyChannelID: record.NotifyChannelID,
		NotifyRoleID:    record.NotifyRoleID,
		ArtworkKey:      record.ArtworkKey,
		StartHour:       start.Hour(),
		StartMinute:     start.Minute(),
		Window:          time.Duration(record.WindowSeconds) * time.Second,
		Required:        time.Duration(record.RequiredSeconds) * time.Second,
		MonitorLead:     time.Duration(record.LeadSeconds) * time.Second,
	}, nil
}

func mapClubRepoError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, persistence.ErrNotFound) {
		return ErrNotFound
	}
	if errors.Is(err, persistence.ErrDuplicate) {
		return ErrAlreadyExists
	}
	return err
}
