package application

import "time"

// ClubInput carries the fields required to register a club.
type ClubInput struct {
	Name            string `json:"name"`
	VoiceChannelID  string `json:"voice_channel_id"`
	NotifyChannelID string `json:"notify_channel_id"`
	NotifyRoleID    string `json:"notify_role_id"`
	ArtworkKey      string `json:"artwork_key"`
	StartTime       string `json:"start_time"`
	WindowMinutes   int    `json:"window_minutes"`
	RequiredSeconds int    `json:"required_seconds"`
	LeadMinutes     int    `json:"lead_minutes"`
}

// Club is the service level representation of a configured club.
type Club struct {
	ID              string    `json:"id"`
	GuildID         string    `json:"guild_id"`
	Name            string    `json:"name"`
	VoiceChannelID  string    `json:"voice_channel_id"`
	NotifyChannelID string    `json:"notify_channel_id"`
	NotifyRoleID    string    `json:"notify_role_id"`
	ArtworkKey      string    `json:"artwork_key"`
	StartTime       string    `json:"start_time"`
	WindowSeconds   int       `json:"window_seconds"`
	RequiredSeconds int       `json:"required_seconds"`
	LeadSeconds     int       `json:"lead_seconds"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// MemberStats summarizes a member's attendance record in one club.
type MemberStats struct {
	MemberID      string `json:"member_id"`
	Total         int    `json:"total"`
	CurrentStreak int    `json:"current_streak"`
	LongestStreak int    `json:"longest_streak"`
}

// RankingPeriod bounds a ranking query to a trailing window.
type RankingPeriod string

// Supported ranking periods. The zero value ranks over all recorded days.
const (
	RankingAll   RankingPeriod = ""
	RankingWeek  RankingPeriod = "week"
	RankingMonth RankingPeriod = "month"
	RankingYear  RankingPeriod = "year"
)

// RankingEntry is one member's row in a ranking table.
type RankingEntry struct {
	MemberID      string `json:"member_id"`
	DisplayName   string `json:"display_name"`
	Total         int    `json:"total"`
	LongestStreak int    `json:"longest_streak"`
}

// Ranking holds the two leaderboards shown for a club.
type Ranking struct {
	ByTotal  []RankingEntry `json:"by_total"`
	ByStreak []RankingEntry `json:"by_streak"`
}
