package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

// ClubSeed declares a club in the optional TOML seed file. Seeds are
// inserted at startup only when no club with the same name exists yet.
type ClubSeed struct {
	Name            string `toml:"name"`
	VoiceChannelID  string `toml:"voice_channel_id"`
	NotifyChannelID string `toml:"notify_channel_id"`
	NotifyRoleID    string `toml:"notify_role_id"`
	ArtworkKey      string `toml:"artwork_key"`
	StartTime       string `toml:"start_time"`
	WindowMinutes   int    `toml:"window_minutes"`
	RequiredSeconds int    `toml:"required_seconds"`
	LeadMinutes     int    `toml:"lead_minutes"`
}

type clubsFile struct {
	Clubs []ClubSeed `toml:"clubs"`
}

// LoadClubSeeds reads the TOML seed file at path. Optional duration fields
// fall back to the canonical morning roll-call values.
func LoadClubSeeds(path string) ([]ClubSeed, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("クラブ定義ファイルを読み込めません: %w", err)
	}

	var file clubsFile
	if err := toml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("クラブ定義ファイルの形式が不正です: %w", err)
	}

	invalid := make([]string, 0, 1)
	for i := range file.Clubs {
		seed := &file.Clubs[i]
		if seed.WindowMinutes == 0 {
			seed.WindowMinutes = 15
		}
		if seed.RequiredSeconds == 0 {
			seed.RequiredSeconds = 480
		}
		if seed.LeadMinutes == 0 {
			seed.LeadMinutes = 10
		}
		if seed.ArtworkKey == "" {
			seed.ArtworkKey = "default"
		}
		if err := seed.validate(); err != nil {
			invalid = append(invalid, fmt.Sprintf("clubs[%d]: %v", i, err))
		}
	}
	if len(invalid) > 0 {
		return nil, fmt.Errorf("クラブ定義が不正です: %s", strings.Join(invalid, "; "))
	}

	return file.Clubs, nil
}

func (s ClubSeed) validate() error {
	if strings.TrimSpace(s.Name) == "" {
		return fmt.Errorf("name は必須です")
	}
	if strings.TrimSpace(s.VoiceChannelID) == "" {
		return fmt.Errorf("voice_channel_id は必須です")
	}
	if _, err := time.Parse("15:04", s.StartTime); err != nil {
		return fmt.Errorf("start_time は HH:MM 形式で指定してください")
	}
	if s.WindowMinutes < 0 || s.RequiredSeconds < 0 || s.LeadMinutes < 0 {
		return fmt.Errorf("時間の指定は正の値にしてください")
	}
	if s.RequiredSeconds > s.WindowMinutes*60 {
		return fmt.Errorf("required_seconds がウィンドウ長を超えています")
	}
	return nil
}
