package application

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/example/stampcard/internal/config"
	"github.com/example/stampcard/internal/persistence"
)

type fakeClubRepo struct {
	clubs     map[string]persistence.Club
	listCalls int
	listErr   error
}

func newFakeClubRepo() *fakeClubRepo {
	return &fakeClubRepo{clubs: make(map[string]persistence.Club)}
}

func (r *fakeClubRepo) InsertClub(_ context.Context, club persistence.Club) error {
	for _, existing := range r.clubs {
		if existing.GuildID == club.GuildID && existing.Name == club.Name {
			return persistence.ErrDuplicate
		}
	}
	r.clubs[club.ID] = club
	return nil
}

func (r *fakeClubRepo) GetClubByName(_ context.Context, guildID, name string) (persistence.Club, error) {
	for _, club := range r.clubs {
		if club.GuildID == guildID && club.Name == name {
			return club, nil
		}
	}
	return persistence.Club{}, persistence.ErrNotFound
}

func (r *fakeClubRepo) ListClubs(_ context.Context, guildID string) ([]persistence.Club, error) {
	r.listCalls++
	if r.listErr != nil {
		return nil, r.listErr
	}
	clubs := make([]persistence.Club, 0, len(r.clubs))
	for _, club := range r.clubs {
		if club.GuildID == guildID {
			clubs = append(clubs, club)
		}
	}
	return clubs, nil
}

func (r *fakeClubRepo) DeleteClub(_ context.Context, id string) error {
	if _, ok := r.clubs[id]; !ok {
		return persistence.ErrNotFound
	}
	delete(r.clubs, id)
	return nil
}

func newClubService(repo *fakeClubRepo) *ClubService {
	counter := 0
	idGen := func() string {
		counter++
		return fmt.Sprintf("id-%03d", counter)
	}
	now := func() time.Time {
		return time.Date(2024, time.June, 10, 10, 0, 0, 0, time.UTC)
	}
	return NewClubService(repo, "guild-001", idGen, now, nil)
}

func validInput() ClubInput {
	return ClubInput{
		Name:            "朝活",
		VoiceChannelID:  "vc-100",
		NotifyChannelID: "text-100",
		StartTime:       "11:00",
		WindowMinutes:   15,
		RequiredSeconds: 480,
		LeadMinutes:     10,
	}
}

func TestCreateClub(t *testing.T) {
	t.Parallel()

	repo := newFakeClubRepo()
	service := newClubService(repo)
	ctx := context.Background()

	club, err := service.CreateClub(ctx, validInput())
	if err != nil {
		t.Fatalf("create club: %v", err)
	}
	if club.ID != "id-001" || club.Name != "朝活" {
		t.Fatalf("unexpected club: %+v", club)
	}
	if club.WindowSeconds != 900 || club.LeadSeconds != 600 {
		t.Fatalf("minute fields not converted: %+v", club)
	}
	if club.ArtworkKey != "default" {
		t.Fatalf("expected default artwork key, got %s", club.ArtworkKey)
	}

	duplicate := validInput()
	duplicate.VoiceChannelID = "vc-200"
	if _, err := service.CreateClub(ctx, duplicate); !errors.Is(err, ErrAlreadyExists) {
		t.Fatalf("expected ErrAlreadyExists, got %v", err)
	}
}

func TestCreateClubRejectsOverlappingWindow(t *testing.T) {
	t.Parallel()

	service := newClubService(newFakeClubRepo())
	ctx := context.Background()

	if _, err := service.CreateClub(ctx, validInput()); err != nil {
		t.Fatalf("create club: %v", err)
	}

	overlapping := validInput()
	overlapping.Name = "朝活その2"
	overlapping.StartTime = "11:10"

	_, err := service.CreateClub(ctx, overlapping)
	var vErr *ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if _, ok := vErr.FieldErrors["start_time"]; !ok {
		t.Fatalf("expected start_time conflict, got %v", vErr.FieldErrors)
	}

	adjacent := validInput()
	adjacent.Name = "昼活"
	adjacent.StartTime = "11:15"
	if _, err := service.CreateClub(ctx, adjacent); err != nil {
		t.Fatalf("back-to-back windows should not conflict: %v", err)
	}

	otherChannel := validInput()
	otherChannel.Name = "別室朝活"
	otherChannel.VoiceChannelID = "vc-200"
	otherChannel.StartTime = "11:05"
	if _, err := service.CreateClub(ctx, otherChannel); err != nil {
		t.Fatalf("different channel should not conflict: %v", err)
	}
}

func TestCreateClubValidation(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name   string
		mutate func(*ClubInput)
		fields []string
	}{
		{"missing name", func(in *ClubInput) { in.Name = "  " }, []string{"name"}},
		{"missing voice channel", func(in *ClubInput) { in.VoiceChannelID = "" }, []string{"voice_channel_id"}},
		{"bad start time", func(in *ClubInput) { in.StartTime = "25:99" }, []string{"start_time"}},
		{"required exceeds window", func(in *ClubInput) { in.RequiredSeconds = 1000 }, []string{"required_seconds"}},
		{"negative lead", func(in *ClubInput) { in.LeadMinutes = -1 }, []string{"lead_minutes"}},
		{
			"everything wrong at once",
			func(in *ClubInput) {
				in.Name = ""
				in.VoiceChannelID = ""
				in.StartTime = "noon"
			},
			[]string{"name", "voice_channel_id", "start_time"},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			service := newClubService(newFakeClubRepo())

			input := validInput()
			tc.mutate(&input)

			_, err := service.CreateClub(context.Background(), input)
			var vErr *ValidationError
			if !errors.As(err, &vErr) {
				t.Fatalf("expected validation error, got %v", err)
			}
			for _, field := range tc.fields {
				if _, ok := vErr.FieldErrors[field]; !ok {
					t.Fatalf("expected field error for %s, got %v", field, vErr.FieldErrors)
				}
			}
		})
	}
}

func TestActiveClubsCachesUntilMutation(t *testing.T) {
	t.Parallel()

	repo := newFakeClubRepo()
	service := newClubService(repo)
	ctx := context.Background()

	if _, err := service.CreateClub(ctx, validInput()); err != nil {
		t.Fatalf("create club: %v", err)
	}
	repo.listCalls = 0

	clubs, err := service.ActiveClubs(ctx)
	if err != nil {
		t.Fatalf("active clubs: %v", err)
	}
	if len(clubs) != 1 {
		t.Fatalf("expected 1 club, got %d", len(clubs))
	}
	if clubs[0].StartHour != 11 || clubs[0].StartMinute != 0 {
		t.Fatalf("start time not parsed: %+v", clubs[0])
	}
	if clubs[0].Required != 480*time.Second {
		t.Fatalf("required not converted: %v", clubs[0].Required)
	}

	if _, err := service.ActiveClubs(ctx); err != nil {
		t.Fatalf("cached active clubs: %v", err)
	}
	if repo.listCalls != 1 {
		t.Fatalf("expected 1 repository hit, got %d", repo.listCalls)
	}

	if err := service.DeleteClub(ctx, clubs[0].ID); err != nil {
		t.Fatalf("delete club: %v", err)
	}
	refreshed, err := service.ActiveClubs(ctx)
	if err != nil {
		t.Fatalf("active clubs after delete: %v", err)
	}
	if len(refreshed) != 0 {
		t.Fatalf("expected empty roster after delete, got %d", len(refreshed))
	}
	if repo.listCalls != 2 {
		t.Fatalf("expected cache invalidation, got %d hits", repo.listCalls)
	}
}

func TestActiveClubsSkipsMalformedStartTime(t *testing.T) {
	t.Parallel()

	repo := newFakeClubRepo()
	repo.clubs["broken"] = persistence.Club{
		ID:             "broken",
		GuildID:        "guild-001",
		Name:           "壊れたクラブ",
		VoiceChannelID: "vc-1",
		StartTime:      "正午",
	}
	service := newClubService(repo)

	clubs, err := service.ActiveClubs(context.Background())
	if err != nil {
		t.Fatalf("active clubs: %v", err)
	}
	if len(clubs) != 0 {
		t.Fatalf("expected malformed club to be skipped, got %d", len(clubs))
	}
}

func TestDeleteClubNotFound(t *testing.T) {
	t.Parallel()

	service := newClubService(newFakeClubRepo())
	if err := service.DeleteClub(context.Background(), "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestSeedClubsInsertsOnlyMissing(t *testing.T) {
	t.Parallel()

	repo := newFakeClubRepo()
	service := newClubService(repo)
	ctx := context.Background()

	if _, err := service.CreateClub(ctx, validInput()); err != nil {
		t.Fatalf("create club: %v", err)
	}

	seeds := []config.ClubSeed{
		{Name: "朝活", VoiceChannelID: "vc-replaced", StartTime: "12:00", WindowMinutes: 15, RequiredSeconds: 480, LeadMinutes: 10},
		{Name: "夜活", VoiceChannelID: "vc-200", StartTime: "21:30", WindowMinutes: 30, RequiredSeconds: 900, LeadMinutes: 5},
	}
	if err := service.SeedClubs(ctx, seeds); err != nil {
		t.Fatalf("seed clubs: %v", err)
	}

	existing, err := service.GetClubByName(ctx, "朝活")
	if err != nil {
		t.Fatalf("get existing: %v", err)
	}
	if existing.VoiceChannelID != "vc-100" {
		t.Fatalf("existing club should not be overwritten: %+v", existing)
	}

	seeded, err := service.GetClubByName(ctx, "夜活")
	if err != nil {
		t.Fatalf("get seeded: %v", err)
	}
	if seeded.StartTime != "21:30" || seeded.WindowSeconds != 1800 {
		t.Fatalf("unexpected seeded club: %+v", seeded)
	}
}
