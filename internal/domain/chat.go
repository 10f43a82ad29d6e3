package domain

import (
	"context"
	"time"
)

// Channel is a chat channel, optionally attached to an event.
// swagger:model Channel
type Channel struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	EventID   *string   `json:"event_id"`
	CreatedAt time.Time `json:"created_at"`
}

// Message is a persisted chat message.
// swagger:model Message
type Message struct {
	ID        string    `json:"id"`
	ChannelID string    `json:"channel_id"`
	SenderID  string    `json:"sender_id"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// ChannelRepository defines the interface for channel storage.
type ChannelRepository interface {
	Create(ctx context.Context, ch *Channel) error
	GetByID(ctx context.Context, id string) (*Channel, error)
	List(ctx context.Context) ([]*Channel, error)
}

// MessageRepository defines the interface for message storage.
type MessageRepository interface {
	Create(ctx context.Context, msg *Message) error
	ListByChannelID(ctx context.Context, channelID string, limit int) ([]*Message, error)
}

// ChatService persists chat messages and fans them out to connected clients.
type ChatService interface {
	CreateChannel(ctx context.Context, name string, eventID *string) (*Channel, error)
	ListChannels(ctx context.Context) ([]*Channel, error)
	ListMessages(ctx context.Context, channelID string, limit int) ([]*Message, error)
	PostMessage(ctx context.Context, channelID, senderID, content string) (*Message, error)
}
