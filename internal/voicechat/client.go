package voicechat

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"
)

const maxResponseBytes = 1 << 20 // 1 MiB

// Client is a REST Gateway implementation. Transient failures are retried
// transparently by the underlying client.
type Client struct {
	baseURL string
	token   string
	http    *retryablehttp.Client
}

// NewClient builds a Client for the API at baseURL authenticating with the
// bot token.
func NewClient(baseURL, token string) *Client {
	rc := retryablehttp.NewClient()
	rc.RetryMax = 2
	rc.HTTPClient.Timeout = 10 * time.Second
	rc.Logger = nil // suppress retryablehttp's default logging

	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		http:    rc,
	}
}

// ChannelMembers returns everyone currently connected to the voice channel.
func (c *Client) ChannelMembers(ctx context.Context, channelID string) ([]Member, error) {
	var members []Member
	path := fmt.Sprintf("/channels/%s/voice-members", url.PathEscape(channelID))
	if err := c.getJSON(ctx, path, &members); err != nil {
		return nil, fmt.Errorf("channel members %s: %w", channelID, err)
	}
	return members, nil
}

// MemberName resolves a guild member's display name.
func (c *Client) MemberName(ctx context.Context, guildID, memberID string) (string, error) {
	var member Member
	path := fmt.Sprintf("/guilds/%s/members/%s", url.PathEscape(guildID), url.PathEscape(memberID))
	if err := c.getJSON(ctx, path, &member); err != nil {
		return "", fmt.Errorf("member %s: %w", memberID, err)
	}
	if member.DisplayName != "" {
		return member.DisplayName, nil
	}
	return member.ID, nil
}

// SendMessage posts content to a text channel.
func (c *Client) SendMessage(ctx context.Context, channelID, content string) error {
	payload, err := json.Marshal(map[string]string{"content": content})
	if err != nil {
		return fmt.Errorf("send message: %w", err)
	}

	path := fmt.Sprintf("/channels/%s/messages", url.PathEscape(channelID))
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("send message: %w", err)
	}
	req.Header.Set("Authorization", "Bot "+c.token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("send message %s: %w", channelID, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("send message %s: status %d", channelID, resp.StatusCode)
	}
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxResponseBytes))
	return nil
}

// PollVoiceStates long-polls the relay for voice channel state changes in
// the guild. The relay holds the request open until events arrive or its
// own timeout elapses, in which case an empty batch comes back.
func (c *Client) PollVoiceStates(ctx context.Context, guildID string) ([]VoiceState, error) {
	var states []VoiceState
	path := fmt.Sprintf("/guilds/%s/voice-events", url.PathEscape(guildID))
	if err := c.getJSON(ctx, path, &states); err != nil {
		return nil, fmt.Errorf("voice states %s: %w", guildID, err)
	}
	return states, nil
}

func (c *Client) getJSON(ctx context.Context, path string, target any) error {
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bot "+c.token)

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, target); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
