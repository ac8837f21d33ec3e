package store

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
)

// RecentOpsRepo is the durable idempotency store. Rows are append-only;
// InsertIfAbsent relies on the primary key for atomicity, so two concurrent
// recorders of the same key cannot both insert.
type RecentOpsRepo struct {
	db DBInterface
}

func NewRecentOpsRepo(db DBInterface) *RecentOpsRepo {
	return &RecentOpsRepo{db: db}
}

// Exists reports whether key was recorded within the given window.
func (r *RecentOpsRepo) Exists(ctx context.Context, key string, within time.Duration) (bool, error) {
	sb := squirrel.Select("count(*) > 0").
		From("recent_operations").
		Where(squirrel.Eq{"hash": key}).
		Where(squirrel.Expr("created_at > now() - make_interval(secs => ?)", within.Seconds())).
		PlaceholderFormat(squirrel.Dollar)
	sql, args, err := sb.ToSql()
	if err != nil {
		return false, fmt.Errorf("building query: %w", err)
	}
	var exists bool
	if err := pgxscan.Get(ctx, r.db, &exists, sql, args...); err != nil {
		return false, fmt.Errorf("checking recent operation: %w", err)
	}
	return exists, nil
}

// InsertIfAbsent records key, silently keeping the existing row when the
// key was already present.
func (r *RecentOpsRepo) InsertIfAbsent(ctx context.Context, key string) error {
	sb := squirrel.Insert("recent_operations").
		Columns("hash").
		Values(key).
		Suffix("ON CONFLICT (hash) DO NOTHING").
		PlaceholderFormat(squirrel.Dollar)
	sql, args, err := sb.ToSql()
	if err != nil {
		return fmt.Errorf("building query: %w", err)
	}
	if _, err := r.db.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("recording operation: %w", err)
	}
	return nil
}

// Prune deletes rows older than the retention period. Callers run it on a
// timer; the table otherwise grows without bound.
func (r *RecentOpsRepo) Prune(ctx context.Context, olderThan time.Duration) (int64, error) {
	sb := squirrel.Delete("recent_operations").
		Where(squirrel.Expr("created_at < now() - make_interval(secs => ?)", olderThan.Seconds())).
		PlaceholderFormat(squirrel.Dollar)
	sql, args, err := sb.ToSql()
	if err != nil {
		return 0, fmt.Errorf("building query: %w", err)
	}
	tag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		return 0, fmt.Errorf("pruning recent operations: %w", err)
	}
	return tag.RowsAffected(), nil
}
