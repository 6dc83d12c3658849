package http

import "context"

type contextKey string

const (
	clubIDContextKey   contextKey = "club_id"
	clubNameContextKey contextKey = "club_name"
)

// ContextWithClubID injects the club identifier resolved from the request path.
func ContextWithClubID(ctx context.Context, clubID string) context.Context {
	return context.WithValue(ctx, clubIDContextKey, clubID)
}

// ClubIDFromContext extracts a club identifier previously associated with the context.
func ClubIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(clubIDContextKey).(string)
	return id, ok
}

// ContextWithClubName injects the club name resolved from the request path.
func ContextWithClubName(ctx context.Context, name string) context.Context {
	return context.WithValue(ctx, clubNameContextKey, name)
}

// ClubNameFromContext extracts a club name previously associated with the context.
func ClubNameFromContext(ctx context.Context) (string, bool) {
	name, ok := ctx.Value(clubNameContextKey).(string)
	return name, ok
}
