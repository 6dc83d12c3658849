package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/example/stampcard/internal/persistence"
)

// InsertClub stores a new club configuration. A name collision inside the
// guild surfaces as persistence.ErrDuplicate.
func (s *Storage) InsertClub(ctx context.Context, club persistence.Club) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO clubs (
			id, guild_id, name, voice_channel_id, notify_channel_id,
			notify_role_id, artwork_key, start_time, window_seconds,
			required_seconds, lead_seconds, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		club.ID, club.GuildID, club.Name, club.VoiceChannelID,
		club.NotifyChannelID, club.NotifyRoleID, club.ArtworkKey,
		club.StartTime, club.WindowSeconds, club.RequiredSeconds,
		club.LeadSeconds, toMillis(club.CreatedAt), toMillis(club.UpdatedAt),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return persistence.ErrDuplicate
		}
		return fmt.Errorf("sqlite: insert club: %w", err)
	}
	return nil
}

// GetClub retrieves a club by ID.
func (s *Storage) GetClub(ctx context.Context, id string) (persistence.Club, error) {
	row := s.db.QueryRowContext(ctx, clubSelect+` WHERE id = ?`, id)
	return scanClub(row)
}

// GetClubByName retrieves a club by its guild-scoped name.
func (s *Storage) GetClubByName(ctx context.Context, guildID, name string) (persistence.Club, error) {
	row := s.db.QueryRowContext(ctx, clubSelect+` WHERE guild_id = ? AND name = ?`, guildID, name)
	return scanClub(row)
}

// ListClubs returns every club configured for the guild ordered by name.
func (s *Storage) ListClubs(ctx context.Context, guildID string) ([]persistence.Club, error) {
	rows, err := s.db.QueryContext(ctx, clubSelect+` WHERE guild_id = ? ORDER BY name, id`, guildID)
	if err != nil {
		return nil, fmt.Errorf("sqlite: list clubs: %w", err)
	}
	defer rows.Close()

	clubs := make([]persistence.Club, 0)
	for rows.Next() {
		club, err := scanClub(rows)
		if err != nil {
			return nil, err
		}
		clubs = append(clubs, club)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: list clubs: %w", err)
	}
	return clubs, nil
}

// DeleteClub removes a club configuration by ID. Award history is kept.
func (s *Storage) DeleteClub(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM clubs WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("sqlite: delete club: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: delete club: %w", err)
	}
	if affected == 0 {
		return persistence.ErrNotFound
	}
	return nil
}

const clubSelect = `
	SELECT id, guild_id, name, voice_channel_id, notify_channel_id,
	       notify_role_id, artwork_key, start_time, window_seconds,
	       required_seconds, lead_seconds, created_at, updated_at
	FROM clubs`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanClub(row rowScanner) (persistence.Club, error) {
	var club persistence.Club
	var createdAt, updatedAt int64
	err := row.Scan(
		&club.ID, &club.GuildID, &club.Name, &club.VoiceChannelID,
		&club.NotifyChannelID, &club.NotifyRoleID, &club.ArtworkKey,
		&club.StartTime, &club.WindowSeconds, &club.RequiredSeconds,
		&club.LeadSeconds, &createdAt, &updatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return persistence.Club{}, persistence.ErrNotFound
		}
		return persistence.Club{}, fmt.Errorf("sqlite: scan club: %w", err)
	}
	club.CreatedAt = fromMillis(createdAt)
	club.UpdatedAt = fromMillis(updatedAt)
	return club, nil
}
