package data

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/DevRickLin/matchbot/internal/biz/domain"
	"github.com/DevRickLin/matchbot/internal/biz/repo"
)

// swipeRepo implements the append-only swipe log
type swipeRepo struct {
	db *sql.DB
}

// NewSwipeRepo creates a new swipe log
func NewSwipeRepo(db *sql.DB) repo.SwipeRepo {
	return &swipeRepo{db: db}
}

func (r *swipeRepo) Record(ctx context.Context, event *domain.SwipeEvent) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO swipes (id, actor_id, target_id, kind, created_at)
		VALUES (?, ?, ?, ?, ?)
	`, event.ID, event.ActorID, event.TargetID, string(event.Kind), toMillis(event.Timestamp))
	if err != nil {
		return fmt.Errorf("failed to record swipe: %w", err)
	}
	return nil
}

func (r *swipeRepo) Recent(ctx context.Context, actorID string, limit int) ([]domain.SwipeEvent, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, actor_id, target_id, kind, created_at
		FROM swipes
		WHERE actor_id = ?
		ORDER BY created_at DESC, rowid DESC
		LIMIT ?
	`, actorID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query swipes: %w", err)
	}
	defer rows.Close()

	var result []domain.SwipeEvent
	for rows.Next() {
		var (
			e         domain.SwipeEvent
			kind      string
			createdAt int64
		)
		if err := rows.Scan(&e.ID, &e.ActorID, &e.TargetID, &kind, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan swipe: %w", err)
		}
		e.Kind = domain.SwipeKind(kind)
		e.Timestamp = fromMillis(createdAt)
		result = append(result, e)
	}
	return result, rows.Err()
}

func (r *swipeRepo) SwipedTargets(ctx context.Context, actorID string) (map[string]struct{}, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT DISTINCT target_id FROM swipes WHERE actor_id = ?`, actorID)
	if err != nil {
		return nil, fmt.Errorf("failed to query swiped targets: %w", err)
	}
	defer rows.Close()

	return collectIDs(rows)
}
