package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"volunteerhub/internal/domain"
)

const registrationColumns = `id, event_id, user_id, status, completion_status, completion_note, joined_at, completed_at, created_at, updated_at`

type registrationRepository struct {
	DB *sql.DB
}

func NewRegistrationRepository(db *sql.DB) domain.RegistrationRepository {
	return &registrationRepository{
		DB: db,
	}
}

func scanRegistration(row interface{ Scan(...any) error }) (*domain.Registration, error) {
	reg := &domain.Registration{}
	var completionStatus, completionNote sql.NullString
	var completedAt sql.NullTime
	err := row.Scan(
		&reg.ID, &reg.EventID, &reg.UserID, &reg.Status,
		&completionStatus, &completionNote, &reg.JoinedAt, &completedAt,
		&reg.CreatedAt, &reg.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if completionStatus.Valid {
		reg.CompletionStatus = &completionStatus.String
	}
	reg.CompletionNote = completionNote.String
	if completedAt.Valid {
		reg.CompletedAt = &completedAt.Time
	}
	return reg, nil
}

func (r *registrationRepository) Create(ctx context.Context, reg *domain.Registration) error {
	query := `
		INSERT INTO registrations (event_id, user_id, status, joined_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`
	err := r.DB.QueryRowContext(ctx, query,
		reg.EventID, reg.UserID, reg.Status, reg.JoinedAt, reg.CreatedAt, reg.UpdatedAt,
	).Scan(&reg.ID)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			return domain.ErrAlreadyRegistered
		}
		return err
	}
	return nil
}

// Approve flips a pending registration to approved and increments the event's
// current_participants. The event row is locked first so the capacity check
// and the counter update are atomic with respect to concurrent approvals.
func (r *registrationRepository) Approve(ctx context.Context, eventID, userID string) (*domain.Registration, error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	var current, max int
	err = tx.QueryRowContext(ctx,
		`SELECT current_participants, max_participants FROM events WHERE id = $1 FOR UPDATE`,
		eventID,
	).Scan(&current, &max)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	if current >= max {
		return nil, domain.ErrEventFull
	}

	query := `
		UPDATE registrations
		SET status = $1, updated_at = NOW()
		WHERE event_id = $2 AND user_id = $3 AND status = $4
		RETURNING ` + registrationColumns
	reg, err := scanRegistration(tx.QueryRowContext(ctx, query,
		domain.RegistrationApproved, eventID, userID, domain.RegistrationPending,
	))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			// Either no registration or not pending anymore; distinguish for the caller.
			var status string
			stErr := tx.QueryRowContext(ctx,
				`SELECT status FROM registrations WHERE event_id = $1 AND user_id = $2`,
				eventID, userID,
			).Scan(&status)
			if errors.Is(stErr, sql.ErrNoRows) {
				return nil, domain.ErrNotFound
			}
			if stErr != nil {
				return nil, stErr
			}
			return nil, fmt.Errorf("registration is %s: %w", status, domain.ErrInvalidInput)
		}
		return nil, err
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE events SET current_participants = current_participants + 1, updated_at = NOW() WHERE id = $1`,
		eventID,
	); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return reg, nil
}

func (r *registrationRepository) Reject(ctx context.Context, eventID, userID string) (*domain.Registration, error) {
	query := `
		UPDATE registrations
		SET status = $1, updated_at = NOW()
		WHERE event_id = $2 AND user_id = $3 AND status = $4
		RETURNING ` + registrationColumns
	reg, err := scanRegistration(r.DB.QueryRowContext(ctx, query,
		domain.RegistrationRejected, eventID, userID, domain.RegistrationPending,
	))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			var status string
			stErr := r.DB.QueryRowContext(ctx,
				`SELECT status FROM registrations WHERE event_id = $1 AND user_id = $2`,
				eventID, userID,
			).Scan(&status)
			if errors.Is(stErr, sql.ErrNoRows) {
				return nil, domain.ErrNotFound
			}
			if stErr != nil {
				return nil, stErr
			}
			return nil, fmt.Errorf("registration is %s: %w", status, domain.ErrInvalidInput)
		}
		return nil, err
	}
	return reg, nil
}

// DeleteWithCounter removes the registration and, if it had been approved,
// decrements the event counter in the same transaction.
func (r *registrationRepository) DeleteWithCounter(ctx context.Context, eventID, userID string) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var status string
	err = tx.QueryRowContext(ctx,
		`DELETE FROM registrations WHERE event_id = $1 AND user_id = $2 RETURNING status`,
		eventID, userID,
	).Scan(&status)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.ErrNotFound
		}
		return err
	}

	if status == domain.RegistrationApproved {
		if _, err := tx.ExecContext(ctx,
			`UPDATE events SET current_participants = GREATEST(current_participants - 1, 0), updated_at = NOW() WHERE id = $1`,
			eventID,
		); err != nil {
			return err
		}
	}

	return tx.Commit()
}

func (r *registrationRepository) SetCompletion(ctx context.Context, eventID, userID, status, note string, completedAt time.Time) (*domain.Registration, error) {
	query := `
		UPDATE registrations
		SET completion_status = $1, completion_note = $2, completed_at = $3, updated_at = NOW()
		WHERE event_id = $4 AND user_id = $5 AND status = $6
		RETURNING ` + registrationColumns
	reg, err := scanRegistration(r.DB.QueryRowContext(ctx, query,
		status, note, completedAt, eventID, userID, domain.RegistrationApproved,
	))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return reg, nil
}

const eventColumnsPrefixed = `e.id, e.title, e.content, e.address, e.category, e.start_time, e.end_time, e.max_participants, e.current_participants, e.likes, e.status, e.author_id, e.created_at, e.updated_at`

func (r *registrationRepository) ListByUserWithEvent(ctx context.Context, userID string) ([]*domain.RegistrationWithEvent, error) {
	query := `
		SELECT r.id, r.event_id, r.user_id, r.status, r.completion_status, r.completion_note,
		       r.joined_at, r.completed_at, r.created_at, r.updated_at,
		       ` + eventColumnsPrefixed + `
		FROM registrations r
		JOIN events e ON e.id = r.event_id
		WHERE r.user_id = $1
		ORDER BY r.created_at DESC
	`
	return r.queryWithEvent(ctx, query, userID)
}

func (r *registrationRepository) History(ctx context.Context, userID string, now time.Time) ([]*domain.RegistrationWithEvent, error) {
	query := `
		SELECT r.id, r.event_id, r.user_id, r.status, r.completion_status, r.completion_note,
		       r.joined_at, r.completed_at, r.created_at, r.updated_at,
		       ` + eventColumnsPrefixed + `
		FROM registrations r
		JOIN events e ON e.id = r.event_id
		WHERE r.user_id = $1
		  AND r.status = 'approved'
		  AND r.completion_status = 'completed'
		  AND e.end_time < $2
		ORDER BY e.end_time DESC
	`
	return r.queryWithEvent(ctx, query, userID, now)
}

func (r *registrationRepository) queryWithEvent(ctx context.Context, query string, args ...any) ([]*domain.RegistrationWithEvent, error) {
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := make([]*domain.RegistrationWithEvent, 0)
	for rows.Next() {
		reg := &domain.Registration{}
		e := &domain.Event{}
		var completionStatus, completionNote sql.NullString
		var completedAt sql.NullTime
		if err := rows.Scan(
			&reg.ID, &reg.EventID, &reg.UserID, &reg.Status,
			&completionStatus, &completionNote, &reg.JoinedAt, &completedAt,
			&reg.CreatedAt, &reg.UpdatedAt,
			&e.ID, &e.Title, &e.Content, &e.Address, &e.Category,
			&e.StartTime, &e.EndTime, &e.MaxParticipants, &e.CurrentParticipants,
			&e.Likes, &e.Status, &e.AuthorID, &e.CreatedAt, &e.UpdatedAt,
		); err != nil {
			return nil, err
		}
		if completionStatus.Valid {
			reg.CompletionStatus = &completionStatus.String
		}
		reg.CompletionNote = completionNote.String
		if completedAt.Valid {
			reg.CompletedAt = &completedAt.Time
		}
		result = append(result, &domain.RegistrationWithEvent{Registration: reg, Event: e})
	}
	return result, rows.Err()
}

func (r *registrationRepository) ListByEventWithUser(ctx context.Context, eventID string) ([]*domain.RegistrationWithUser, error) {
	query := `
		SELECT r.id, r.event_id, r.user_id, r.status, r.completion_status, r.completion_note,
		       r.joined_at, r.completed_at, r.created_at, r.updated_at,
		       u.id, u.username, u.email, u.role, u.status, u.created_at, u.updated_at
		FROM registrations r
		JOIN users u ON u.id = r.user_id
		WHERE r.event_id = $1
		ORDER BY r.created_at
	`
	rows, err := r.DB.QueryContext(ctx, query, eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := make([]*domain.RegistrationWithUser, 0)
	for rows.Next() {
		reg := &domain.Registration{}
		u := &domain.User{}
		var completionStatus, completionNote sql.NullString
		var completedAt sql.NullTime
		if err := rows.Scan(
			&reg.ID, &reg.EventID, &reg.UserID, &reg.Status,
			&completionStatus, &completionNote, &reg.JoinedAt, &completedAt,
			&reg.CreatedAt, &reg.UpdatedAt,
			&u.ID, &u.Username, &u.Email, &u.Role, &u.Status, &u.CreatedAt, &u.UpdatedAt,
		); err != nil {
			return nil, err
		}
		if completionStatus.Valid {
			reg.CompletionStatus = &completionStatus.String
		}
		reg.CompletionNote = completionNote.String
		if completedAt.Valid {
			reg.CompletedAt = &completedAt.Time
		}
		result = append(result, &domain.RegistrationWithUser{Registration: reg, User: u})
	}
	return result, rows.Err()
}
