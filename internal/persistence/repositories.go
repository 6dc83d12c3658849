package persistence

import "context"

// ClubRepository exposes configuration operations for attendance clubs.
type ClubRepository interface {
	InsertClub(ctx context.Context, club Club) error
	GetClub(ctx context.Context, id string) (Club, error)
	GetClubByName(ctx context.Context, guildID, name string) (Club, error)
	ListClubs(ctx context.Context, guildID string) ([]Club, error)
	DeleteClub(ctx context.Context, id string) error
}

// StampFilter narrows club-wide stamp queries.
type StampFilter struct {
	// SinceDay, when non-empty, keeps only records on or after the given
	// canonical day key.
	SinceDay string
}

// StampRepository stores award records and serves streak queries.
type StampRepository interface {
	// InsertStamp appends an award record. ErrDuplicate is returned when a
	// record for the same (member, club, day) already exists.
	InsertStamp(ctx context.Context, record StampRecord) error
	HasStamp(ctx context.Context, memberID, clubID, day string) (bool, error)
	// ListMemberStampDays returns the member's award day keys for one club,
	// ascending and distinct.
	ListMemberStampDays(ctx context.Context, memberID, clubID string) ([]string, error)
	// ListClubStamps returns every award record for a club, optionally
	// bounded below, ordered by day then member.
	ListClubStamps(ctx context.Context, clubID string, filter StampFilter) ([]StampRecord, error)
}
