package dedupe

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/intakehq/intake/engine/core"
)

const (
	// Window is how long a recorded operation suppresses duplicates.
	Window = 10 * time.Minute

	// unassignedSentinel stands in for a missing assignee so that
	// "unassigned" and assigned submissions of the same title dedupe
	// independently.
	unassignedSentinel = "unassigned"
)

// Store is the durable side of the guard. InsertIfAbsent must be atomic so
// that concurrent service instances cannot both record the same key as new.
type Store interface {
	Exists(ctx context.Context, key string, within time.Duration) (bool, error)
	InsertIfAbsent(ctx context.Context, key string) error
}

// Key derives the idempotency key for a task creation. It is a pure
// function of (project, assignee-or-sentinel, title, 10-minute bucket):
// identical submissions inside one bucket collide, submissions straddling a
// bucket boundary deliberately do not.
func Key(projectID, assigneeID core.ID, title string, now time.Time) string {
	assigneeKey := assigneeID.String()
	if assigneeID.IsZero() {
		assigneeKey = unassignedSentinel
	}
	bucket := now.UnixMilli() / Window.Milliseconds()
	content := fmt.Sprintf("%s:%s:%s:%d", projectID, assigneeKey, title, bucket)
	sum := sha256.Sum256([]byte(content))
	return hex.EncodeToString(sum[:])
}

// Guard prevents duplicate task creations within the rolling window.
type Guard struct {
	store Store
}

func NewGuard(store Store) *Guard {
	return &Guard{store: store}
}

// WasRecentlyPerformed reports whether key was recorded within the window.
func (g *Guard) WasRecentlyPerformed(ctx context.Context, key string) (bool, error) {
	seen, err := g.store.Exists(ctx, key, Window)
	if err != nil {
		return false, fmt.Errorf("dedupe lookup: %w", err)
	}
	return seen, nil
}

// Record durably marks key as performed. Recording an already-present key
// is a no-op, which keeps concurrent callers safe.
func (g *Guard) Record(ctx context.Context, key string) error {
	if err := g.store.InsertIfAbsent(ctx, key); err != nil {
		return fmt.Errorf("dedupe record: %w", err)
	}
	return nil
}
