// Package voicechat talks to the chat platform's REST API: voice channel
// rosters, member profiles, and text-channel messages.
package voicechat

import "context"

// Member describes a platform account as seen in a voice channel or guild.
type Member struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
	Bot         bool   `json:"bot"`
}

// VoiceState reports a member moving between voice channels. An empty
// channel ID means the member was not, or is no longer, connected.
type VoiceState struct {
	MemberID      string `json:"member_id"`
	PrevChannelID string `json:"prev_channel_id"`
	NewChannelID  string `json:"new_channel_id"`
}

// Gateway is the platform surface the service depends on. The REST Client
// implements it; tests substitute fakes.
type Gateway interface {
	// ChannelMembers returns everyone currently connected to the voice channel.
	ChannelMembers(ctx context.Context, channelID string) ([]Member, error)
	// MemberName resolves a guild member's display name.
	MemberName(ctx context.Context, guildID, memberID string) (string, error)
	// SendMessage posts content to a text channel.
	SendMessage(ctx context.Context, channelID, content string) error
}
