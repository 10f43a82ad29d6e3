package postgres

import (
	"context"
	"database/sql"
	"errors"

	"volunteerhub/internal/domain"
)

type channelRepository struct {
	DB *sql.DB
}

func NewChannelRepository(db *sql.DB) domain.ChannelRepository {
	return &channelRepository{
		DB: db,
	}
}

func (r *channelRepository) Create(ctx context.Context, ch *domain.Channel) error {
	query := `
		INSERT INTO channels (name, event_id, created_at)
		VALUES ($1, $2, $3)
		RETURNING id
	`
	return r.DB.QueryRowContext(ctx, query, ch.Name, ch.EventID, ch.CreatedAt).Scan(&ch.ID)
}

func (r *channelRepository) GetByID(ctx context.Context, id string) (*domain.Channel, error) {
	query := `SELECT id, name, event_id, created_at FROM channels WHERE id = $1`
	ch := &domain.Channel{}
	var eventID sql.NullString
	err := r.DB.QueryRowContext(ctx, query, id).Scan(&ch.ID, &ch.Name, &eventID, &ch.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	if eventID.Valid {
		ch.EventID = &eventID.String
	}
	return ch, nil
}

func (r *channelRepository) List(ctx context.Context) ([]*domain.Channel, error) {
	query := `SELECT id, name, event_id, created_at FROM channels ORDER BY created_at`
	rows, err := r.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	channels := make([]*domain.Channel, 0)
	for rows.Next() {
		ch := &domain.Channel{}
		var eventID sql.NullString
		if err := rows.Scan(&ch.ID, &ch.Name, &eventID, &ch.CreatedAt); err != nil {
			return nil, err
		}
		if eventID.Valid {
			ch.EventID = &eventID.String
		}
		channels = append(channels, ch)
	}
	return channels, rows.Err()
}

type messageRepository struct {
	DB *sql.DB
}

func NewMessageRepository(db *sql.DB) domain.MessageRepository {
	return &messageRepository{
		DB: db,
	}
}

func (r *messageRepository) Create(ctx context.Context, m *domain.Message) error {
	query := `
		INSERT INTO messages (channel_id, sender_id, content, created_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`
	return r.DB.QueryRowContext(ctx, query, m.ChannelID, m.SenderID, m.Content, m.CreatedAt).Scan(&m.ID)
}

func (r *messageRepository) ListByChannelID(ctx context.Context, channelID string, limit int) ([]*domain.Message, error) {
	query := `
		SELECT id, channel_id, sender_id, content, created_at
		FROM messages
		WHERE channel_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`
	rows, err := r.DB.QueryContext(ctx, query, channelID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	messages := make([]*domain.Message, 0)
	for rows.Next() {
		m := &domain.Message{}
		if err := rows.Scan(&m.ID, &m.ChannelID, &m.SenderID, &m.Content, &m.CreatedAt); err != nil {
			return nil, err
		}
		messages = append(messages, m)
	}
	return messages, rows.Err()
}
