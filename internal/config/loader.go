// Package config loads and validates environment driven settings for the
// stampcard service.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config captures every runtime setting of the service. Values come from the
// environment with the STAMPCARD_ prefix.
type Config struct {
	HTTPPort   int    `env:"HTTP_PORT" envDefault:"8080"`
	SQLitePath string `env:"SQLITE_PATH" envDefault:"stampcard.db"`

	// Timezone names the civil calendar the daily windows are anchored to.
	Timezone     string        `env:"TIMEZONE" envDefault:"Asia/Tokyo"`
	PollInterval time.Duration `env:"POLL_INTERVAL" envDefault:"20s"`

	// AdminTokenHash is a bcrypt hash of the token required by the
	// administrative HTTP endpoints.
	AdminTokenHash string `env:"ADMIN_TOKEN_HASH"`

	PlatformBaseURL string `env:"PLATFORM_BASE_URL"`
	PlatformToken   string `env:"PLATFORM_TOKEN"`
	GuildID         string `env:"GUILD_ID"`

	ArtworkDir string `env:"ARTWORK_DIR" envDefault:"artwork"`
	ClubsFile  string `env:"CLUBS_FILE"`

	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`
	LogFile  string `env:"LOG_FILE"`

	location *time.Location
}

// Location returns the resolved window timezone. It is only valid after Load
// succeeds.
func (c Config) Location() *time.Location {
	return c.location
}

// Load parses configuration values from the current process environment.
//
// Defaults cover optional fields; missing required values and unparsable
// entries are accumulated and reported together with localized messages.
func Load() (Config, error) {
	var cfg Config
	if err := env.ParseWithOptions(&cfg, env.Options{Prefix: "STAMPCARD_"}); err != nil {
		return Config{}, fmt.Errorf("環境変数の読み込みに失敗しました: %w", err)
	}

	missing := make([]string, 0, 4)
	invalid := make([]string, 0, 2)

	if strings.TrimSpace(cfg.AdminTokenHash) == "" {
		missing = append(missing, "STAMPCARD_ADMIN_TOKEN_HASH")
	}
	if strings.TrimSpace(cfg.PlatformBaseURL) == "" {
		missing = append(missing, "STAMPCARD_PLATFORM_BASE_URL")
	}
	if strings.TrimSpace(cfg.PlatformToken) == "" {
		missing = append(missing, "STAMPCARD_PLATFORM_TOKEN")
	}
	if strings.TrimSpace(cfg.GuildID) == "" {
		missing = append(missing, "STAMPCARD_GUILD_ID")
	}

	if cfg.HTTPPort <= 0 || cfg.HTTPPort > 65535 {
		invalid = append(invalid, "STAMPCARD_HTTP_PORT")
	}
	if cfg.PollInterval <= 0 {
		invalid = append(invalid, "STAMPCARD_POLL_INTERVAL")
	}

	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		invalid = append(invalid, "STAMPCARD_TIMEZONE")
	} else {
		cfg.location = loc
	}

	switch strings.ToLower(strings.TrimSpace(cfg.LogLevel)) {
	case "debug", "info", "warn", "error":
	default:
		invalid = append(invalid, "STAMPCARD_LOG_LEVEL")
	}

	if len(missing) > 0 {
		return Config{}, fmt.Errorf("必須の環境変数が設定されていません: %s", strings.Join(missing, ", "))
	}
	if len(invalid) > 0 {
		return Config{}, fmt.Errorf("環境変数の値が不正です: %s", strings.Join(invalid, ", "))
	}

	return cfg, nil
}
