package persistence

import "time"

// Club represents one configured attendance session stored in persistence.
// StartTime is the daily window opening in "15:04" form; durations are kept
// in seconds so the schema stays free of driver-specific interval types.
type Club struct {
	ID              string
	GuildID         string
	Name            string
	VoiceChannelID  string
	NotifyChannelID string
	NotifyRoleID    string
	ArtworkKey      string
	StartTime       string
	WindowSeconds   int
	RequiredSeconds int
	LeadSeconds     int
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// StampRecord is the durable, append-only award record. At most one record
// exists per (member, club, day); the schema's primary key enforces this
// independently of any in-memory deduplication.
type StampRecord struct {
	MemberID  string
	ClubID    string
	Day       string
	CreatedAt time.Time
}
