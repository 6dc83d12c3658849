package testfixtures

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/example/stampcard/internal/persistence"
)

var (
	clubCounter  uint64
	stampCounter uint64
)

// JST is the fixed zone most fixtures anchor to; the service's civil-time
// arithmetic is exercised against it throughout the test suite.
var JST = time.FixedZone("JST", 9*60*60)

var referenceTime = time.Date(2024, time.June, 10, 11, 0, 0, 0, JST)

// ReferenceTime returns the canonical baseline timestamp used by fixtures:
// 11:00 JST on 2024-06-10, the opening of the default club's window.
func ReferenceTime() time.Time {
	return referenceTime
}

// ClubFixture represents a deterministic club configuration that can be
// materialised as a persistence record.
type ClubFixture struct {
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
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// ClubOption configures the generated club fixture.
type ClubOption func(*ClubFixture)

// NewClubFixture returns a deterministic club fixture with optional
// overrides. Defaults mirror the canonical morning roll-call: an 11:00
// fifteen-minute window requiring 480 seconds of presence.
func NewClubFixture(opts ...ClubOption) ClubFixture {
	idx := atomic.AddUint64(&clubCounter, 1)
	created := referenceTime.Add(-time.Duration(idx) * 24 * time.Hour)
	fixture := ClubFixture{
		ID:              fmt.Sprintf("club-%03d", idx),
		GuildID:         "guild-001",
		Name:            fmt.Sprintf("club %03d", idx),
		VoiceChannelID:  fmt.Sprintf("vc-%03d", idx),
		NotifyChannelID: fmt.Sprintf("text-%03d", idx),
		ArtworkKey:      "default",
		StartHour:       11,
		StartMinute:     0,
		Window:          15 * time.Minute,
		Required:        480 * time.Second,
		MonitorLead:     10 * time.Minute,
		CreatedAt:       created,
		UpdatedAt:       created,
	}
	for _, opt := range opts {
		opt(&fixture)
	}
	return fixture
}

// WithClubID overrides the generated club ID.
func WithClubID(id string) ClubOption {
	return func(f *ClubFixture) {
		f.ID = id
	}
}

// WithClubGuild overrides the owning guild.
func WithClubGuild(guildID string) ClubOption {
	return func(f *ClubFixture) {
		f.GuildID = guildID
	}
}

// WithClubName overrides the generated club name.
func WithClubName(name string) ClubOption {
	return func(f *ClubFixture) {
		f.Name = name
	}
}

// WithClubStart sets the daily window opening time.
func WithClubStart(hour, minute int) ClubOption {
	return func(f *ClubFixture) {
		f.StartHour = hour
		f.StartMinute = minute
	}
}

// WithClubDurations sets window, required-presence, and lead durations.
func WithClubDurations(window, required, lead time.Duration) ClubOption {
	return func(f *ClubFixture) {
		f.Window = window
		f.Required = required
		f.MonitorLead = lead
	}
}

// Persistence returns the fixture as a persistence.Club value.
func (f ClubFixture) Persistence() persistence.Club {
	return persistence.Club{
		ID:              f.ID,
		GuildID:         f.GuildID,
		Name:            f.Name,
		VoiceChannelID:  f.VoiceChannelID,
		NotifyChannelID: f.NotifyChannelID,
		NotifyRoleID:    f.NotifyRoleID,
		ArtworkKey:      f.ArtworkKey,
		StartTime:       fmt.Sprintf("%02d:%02d", f.StartHour, f.StartMinute),
		WindowSeconds:   int(f.Window.Seconds()),
		RequiredSeconds: int(f.Required.Seconds()),
		LeadSeconds:     int(f.MonitorLead.Seconds()),
		CreatedAt:       f.CreatedAt,
		UpdatedAt:       f.UpdatedAt,
	}
}

// NewStampRecord returns a deterministic stamp record for the given day key.
func NewStampRecord(memberID, clubID, day string) persistence.StampRecord {
	idx := atomic.AddUint64(&stampCounter, 1)
	return persistence.StampRecord{
		MemberID:  memberID,
		ClubID:    clubID,
		Day:       day,
		CreatedAt: referenceTime.Add(time.Duration(idx) * time.Second),
	}
}
