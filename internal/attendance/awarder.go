package attendance

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/example/stampcard/internal/persistence"
)

// Result reports the outcome of a stamp evaluation.
type Result int

const (
	// ResultNotYet means the required presence has not been reached.
	ResultNotYet Result = iota
	// ResultAwarded means a new stamp was durably recorded.
	ResultAwarded
	// ResultAlreadyAwarded means a record for the day already existed,
	// either from a prior run or a raced concurrent evaluation.
	ResultAlreadyAwarded
)

// StampStore is the durable-store surface the awarder needs.
type StampStore interface {
	InsertStamp(ctx context.Context, record persistence.StampRecord) error
	HasStamp(ctx context.Context, memberID, clubID, day string) (bool, error)
}

// Notifier receives the fire-and-forget side effect of a fresh award.
type Notifier interface {
	StampAwarded(ctx context.Context, club Club, memberID string)
}

// Awarder owns the at-most-once award decision. It is the only writer of
// stamp records.
type Awarder struct {
	stamps   StampStore
	notifier Notifier
	now      func() time.Time
	logger   *slog.Logger
}

// NewAwarder wires the awarder's dependencies. notifier may be nil when no
// notification surface is configured.
func NewAwarder(stamps StampStore, notifier Notifier, now func() time.Time, logger *slog.Logger) *Awarder {
	if now == nil {
		now = time.Now
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Awarder{stamps: stamps, notifier: notifier, now: now, logger: logger}
}

// Evaluate checks the accumulated presence against the club's requirement
// and commits a stamp when the threshold is crossed. The durable insert is
// the single commit point: a uniqueness rejection means another evaluation
// path won the race and is reported as ResultAlreadyAwarded, not an error.
// A store failure leaves the decision open so the caller retries next tick.
func (a *Awarder) Evaluate(ctx context.Context, club Club, memberID, day string, accumulated time.Duration) (Result, error) {
	if a == nil || a.stamps == nil {
		return ResultNotYet, fmt.Errorf("awarder not configured")
	}

	if accumulated < club.Required {
		return ResultNotYet, nil
	}

	exists, err := a.stamps.HasStamp(ctx, memberID, club.ID, day)
	if err != nil {
		return ResultNotYet, fmt.Errorf("check existing stamp: %w", err)
	}
	if exists {
		return ResultAlreadyAwarded, nil
	}

	record := persistence.StampRecord{
		MemberID:  memberID,
		ClubID:    club.ID,
		Day:       day,
		CreatedAt: a.now(),
	}
	if err := a.stamps.InsertStamp(ctx, record); err != nil {
		if errors.Is(err, persistence.ErrDuplicate) {
			return ResultAlreadyAwarded, nil
		}
		return ResultNotYet, fmt.Errorf("insert stamp: %w", err)
	}

	a.logger.InfoContext(ctx, "stamp awarded",
		"club_id", record.ClubID, "member_id", memberID, "day", day,
		"accumulated", accumulated)

	if a.notifier != nil {
		// Best effort: the award is already durable and never rolls back
		// on a failed notification.
		notifyCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
		go func() {
			defer cancel()
			a.notifier.StampAwarded(notifyCtx, club, memberID)
		}()
	}

	return ResultAwarded, nil
}

