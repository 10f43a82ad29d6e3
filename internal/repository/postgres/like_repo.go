package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"volunteerhub/internal/domain"
)

type likeRepository struct {
	DB *sql.DB
}

func NewLikeRepository(db *sql.DB) domain.LikeRepository {
	return &likeRepository{
		DB: db,
	}
}

// Toggle flips the like row for (user, target) and adjusts the denormalized
// likes counter on the target row, all in one transaction. A missing row is
// created with status 1.
func (r *likeRepository) Toggle(ctx context.Context, userID, targetType, targetID string) (int, int, error) {
	var table string
	switch targetType {
	case domain.LikeTargetPost:
		table = "posts"
	case domain.LikeTargetEvent:
		table = "events"
	default:
		return 0, 0, fmt.Errorf("unknown like target %q: %w", targetType, domain.ErrInvalidInput)
	}

	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return 0, 0, err
	}
	defer tx.Rollback()

	var status int
	err = tx.QueryRowContext(ctx,
		`SELECT status FROM likes WHERE user_id = $1 AND target_type = $2 AND target_id = $3 FOR UPDATE`,
		userID, targetType, targetID,
	).Scan(&status)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO likes (user_id, target_type, target_id, status) VALUES ($1, $2, $3, 1)`,
			userID, targetType, targetID,
		); err != nil {
			return 0, 0, err
		}
		status = 1
	case err != nil:
		return 0, 0, err
	default:
		status = 1 - status
		if _, err := tx.ExecContext(ctx,
			`UPDATE likes SET status = $1 WHERE user_id = $2 AND target_type = $3 AND target_id = $4`,
			status, userID, targetType, targetID,
		); err != nil {
			return 0, 0, err
		}
	}

	delta := 1
	if status == 0 {
		delta = -1
	}
	var likes int
	err = tx.QueryRowContext(ctx,
		fmt.Sprintf(`UPDATE %s SET likes = GREATEST(likes + $1, 0) WHERE id = $2 RETURNING likes`, table),
		delta, targetID,
	).Scan(&likes)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, 0, domain.ErrNotFound
		}
		return 0, 0, err
	}

	if err := tx.Commit(); err != nil {
		return 0, 0, err
	}
	return status, likes, nil
}
