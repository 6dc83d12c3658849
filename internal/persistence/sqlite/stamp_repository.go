package sqlite

import (
	"context"
	"fmt"

	"github.com/example/stampcard/internal/persistence"
)

// InsertStamp appends an award record. The table's primary key makes the
// insert the at-most-once commit point: a raced duplicate from concurrent
// evaluation paths comes back as persistence.ErrDuplicate, never as two rows.
func (s *Storage) InsertStamp(ctx context.Context, record persistence.StampRecord) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO stamps (member_id, club_id, stamp_date, created_at)
		VALUES (?, ?, ?, ?)`,
		record.MemberID, record.ClubID, record.Day, toMillis(record.CreatedAt),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return persistence.ErrDuplicate
		}
		return fmt.Errorf("sqlite: insert stamp: %w", err)
	}
	return nil
}

// HasStamp reports whether an award record exists for the triple.
func (s *Storage) HasStamp(ctx context.Context, memberID, clubID, day string) (bool, error) {
	var count int
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM stamps
		WHERE member_id = ? AND club_id = ? AND stamp_date = ?`,
		memberID, clubID, day,
	).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("sqlite: has stamp: %w", err)
	}
	return count > 0, nil
}

// ListMemberStampDays returns the member's award days for the club in
// ascending order.
func (s *Storage) ListMemberStampDays(ctx context.Context, memberID, clubID string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT stamp_date FROM stamps
		WHERE member_id = ? AND club_id = ?
		ORDER BY stamp_date`,
		memberID, clubID,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: list member stamps: %w", err)
	}
	defer rows.Close()

	days := make([]string, 0)
	for rows.Next() {
		var day string
		if err := rows.Scan(&day); err != nil {
			return nil, fmt.Errorf("sqlite: list member stamps: %w", err)
		}
		days = append(days, day)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: list member stamps: %w", err)
	}
	return days, nil
}

// ListClubStamps returns the club's award records, optionally bounded below
// by day, ordered by day then member.
func (s *Storage) ListClubStamps(ctx context.Context, clubID string, filter persistence.StampFilter) ([]persistence.StampRecord, error) {
	query := `
		SELECT member_id, club_id, stamp_date, created_at FROM stamps
		WHERE club_id = ?`
	args := []any{clubID}
	if filter.SinceDay != "" {
		query += ` AND stamp_date >= ?`
		args = append(args, filter.SinceDay)
	}
	query += ` ORDER BY stamp_date, member_id`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("sqlite: list club stamps: %w", err)
	}
	defer rows.Close()

	records := make([]persistence.StampRecord, 0)
	for rows.Next() {
		var record persistence.StampRecord
		var createdAt int64
		if err := rows.Scan(&record.MemberID, &record.ClubID, &record.Day, &createdAt); err != nil {
			return nil, fmt.Errorf("sqlite: list club stamps: %w", err)
		}
		record.CreatedAt = fromMillis(createdAt)
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: list club stamps: %w", err)
	}
	return records, nil
}
