package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"volunteerhub/internal/domain"
)

const defaultMessageLimit = 50

// Broadcaster fans a payload out to every client subscribed to a channel.
type Broadcaster interface {
	BroadcastToChannel(channelID string, payload any)
}

type chatService struct {
	channelRepo domain.ChannelRepository
	messageRepo domain.MessageRepository
	broadcaster Broadcaster
}

// NewChatService creates a ChatService. The broadcaster may be nil, in which
// case messages are only persisted.
func NewChatService(channelRepo domain.ChannelRepository, messageRepo domain.MessageRepository, broadcaster Broadcaster) domain.ChatService {
	return &chatService{
		channelRepo: channelRepo,
		messageRepo: messageRepo,
		broadcaster: broadcaster,
	}
}

func (s *chatService) CreateChannel(ctx context.Context, name string, eventID *string) (*domain.Channel, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("channel name is required: %w", domain.ErrInvalidInput)
	}
	ch := &domain.Channel{
		Name:      name,
		EventID:   eventID,
		CreatedAt: time.Now(),
	}
	if err := s.channelRepo.Create(ctx, ch); err != nil {
		return nil, fmt.Errorf("create channel: %w", err)
	}
	return ch, nil
}

func (s *chatService) ListChannels(ctx context.Context) ([]*domain.Channel, error) {
	channels, err := s.channelRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list channels: %w", err)
	}
	if channels == nil {
		channels = []*domain.Channel{}
	}
	return channels, nil
}

func (s *chatService) ListMessages(ctx context.Context, channelID string, limit int) ([]*domain.Message, error) {
	if _, err := s.channelRepo.GetByID(ctx, channelID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get channel: %w", err)
	}
	if limit <= 0 {
		limit = defaultMessageLimit
	}
	messages, err := s.messageRepo.ListByChannelID(ctx, channelID, limit)
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	if messages == nil {
		messages = []*domain.Message{}
	}
	return messages, nil
}

func (s *chatService) PostMessage(ctx context.Context, channelID, senderID, content string) (*domain.Message, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, fmt.Errorf("message content is required: %w", domain.ErrInvalidInput)
	}
	if _, err := s.channelRepo.GetByID(ctx, channelID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get channel: %w", err)
	}
	msg := &domain.Message{
		ChannelID: channelID,
		SenderID:  senderID,
		Content:   content,
		CreatedAt: time.Now(),
	}
	if err := s.messageRepo.Create(ctx, msg); err != nil {
		return nil, fmt.Errorf("create message: %w", err)
	}
	if s.broadcaster != nil {
		s.broadcaster.BroadcastToChannel(channelID, msg)
	}
	return msg, nil
}
