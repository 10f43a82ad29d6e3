package postgres

import (
	"context"
	"database/sql"

	"github.com/lib/pq"

	"volunteerhub/internal/domain"
)

type eventManagerRepository struct {
	DB *sql.DB
}

func NewEventManagerRepository(db *sql.DB) domain.EventManagerRepository {
	return &eventManagerRepository{
		DB: db,
	}
}

func (r *eventManagerRepository) Add(ctx context.Context, eventID, userID string) error {
	query := `
		INSERT INTO event_managers (event_id, user_id)
		VALUES ($1, $2)
	`
	_, err := r.DB.ExecContext(ctx, query, eventID, userID)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			return domain.ErrAlreadyManager
		}
		return err
	}
	return nil
}

func (r *eventManagerRepository) Exists(ctx context.Context, eventID, userID string) (bool, error) {
	var exists bool
	err := r.DB.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM event_managers WHERE event_id = $1 AND user_id = $2)`,
		eventID, userID,
	).Scan(&exists)
	return exists, err
}

func (r *eventManagerRepository) ListByEventID(ctx context.Context, eventID string) ([]*domain.EventManager, error) {
	query := `
		SELECT m.event_id, m.user_id, u.username, u.email
		FROM event_managers m
		JOIN users u ON u.id = m.user_id
		WHERE m.event_id = $1
		ORDER BY m.user_id
	`
	rows, err := r.DB.QueryContext(ctx, query, eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	managers := make([]*domain.EventManager, 0)
	for rows.Next() {
		m := &domain.EventManager{}
		if err := rows.Scan(&m.EventID, &m.UserID, &m.Username, &m.Email); err != nil {
			return nil, err
		}
		managers = append(managers, m)
	}
	return managers, rows.Err()
}

func (r *eventManagerRepository) Remove(ctx context.Context, eventID, userID string) error {
	query := `DELETE FROM event_managers WHERE event_id = $1 AND user_id = $2`
	result, err := r.DB.ExecContext(ctx, query, eventID, userID)
	if err != nil {
		return err
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}
