package controllers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"regexp"
	"strconv"
	"strings"

	"volunteerhub/internal/delivery/http/helpers"
	"volunteerhub/internal/delivery/http/middleware"
	"volunteerhub/internal/domain"
	"volunteerhub/internal/realtime"
)

// uuidRegexChat matches a canonical UUID string (8-4-4-4-12 hex).
var uuidRegexChat = regexp.MustCompile(`^[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12}$`)

type ChatController struct {
	Logger  *slog.Logger
	Service domain.ChatService
	Hub     *realtime.Hub
}

func NewChatController(logger *slog.Logger, svc domain.ChatService, hub *realtime.Hub) *ChatController {
	return &ChatController{
		Logger:  logger,
		Service: svc,
		Hub:     hub,
	}
}

func (c *ChatController) writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		helpers.WriteJSONError(w, http.StatusNotFound, helpers.ErrCodeNotFound, "channel not found")
	case errors.Is(err, domain.ErrInvalidInput):
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, err.Error())
	default:
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, err.Error())
	}
}

// CreateChannelRequest is the request body for POST /channels.
type CreateChannelRequest struct {
	Name    string  `json:"name"`
	EventID *string `json:"event_id"`
}

// Validate implements helpers.Validator.
func (c CreateChannelRequest) Validate() []string {
	var errs []string
	if strings.TrimSpace(c.Name) == "" {
		errs = append(errs, "name is required")
	}
	if c.EventID != nil && !uuidRegexChat.MatchString(*c.EventID) {
		errs = append(errs, "event_id must be a valid UUID")
	}
	return errs
}

// CreateChannel godoc
// @Summary Create a chat channel
// @Description Creates a channel, optionally attached to an event. Requires the manager or admin role.
// @Tags chat
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body CreateChannelRequest true "Channel data"
// @Success 201 {object} helpers.APIResponse "data contains the channel"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Router /channels [post]
func (c *ChatController) CreateChannel(w http.ResponseWriter, r *http.Request) {
	var req CreateChannelRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	ch, err := c.Service.CreateChannel(r.Context(), strings.TrimSpace(req.Name), req.EventID)
	if err != nil {
		c.writeError(w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, ch)
}

// ListChannels godoc
// @Summary List chat channels
// @Tags chat
// @Produce json
// @Security BearerAuth
// @Success 200 {object} helpers.APIResponse "data contains []Channel"
// @Router /channels [get]
func (c *ChatController) ListChannels(w http.ResponseWriter, r *http.Request) {
	channels, err := c.Service.ListChannels(r.Context())
	if err != nil {
		c.writeError(w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, channels)
}

// ListMessages godoc
// @Summary List recent messages in a channel
// @Tags chat
// @Produce json
// @Security BearerAuth
// @Param channelID path string true "Channel ID (UUID)"
// @Param limit query int false "Max messages to return (default 50)"
// @Success 200 {object} helpers.APIResponse "data contains []Message, oldest first"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /channels/{channelID}/messages [get]
func (c *ChatController) ListMessages(w http.ResponseWriter, r *http.Request) {
	channelID := r.PathValue("channelID")
	if !uuidRegexChat.MatchString(channelID) {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "invalid channelID")
		return
	}
	limit := 0
	if s := r.URL.Query().Get("limit"); s != "" {
		if v, err := strconv.Atoi(s); err == nil && v > 0 {
			limit = v
		}
	}
	msgs, err := c.Service.ListMessages(r.Context(), channelID, limit)
	if err != nil {
		c.writeError(w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, msgs)
}

// PostMessageRequest is the request body for POST /channels/{channelID}/messages.
type PostMessageRequest struct {
	Content string `json:"content"`
}

// Validate implements helpers.Validator.
func (p PostMessageRequest) Validate() []string {
	if strings.TrimSpace(p.Content) == "" {
		return []string{"content is required"}
	}
	return nil
}

// PostMessage godoc
// @Summary Post a message to a channel
// @Description Persists the message and broadcasts it to connected channel subscribers.
// @Tags chat
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param channelID path string true "Channel ID (UUID)"
// @Param body body PostMessageRequest true "Message content"
// @Success 201 {object} helpers.APIResponse "data contains the message"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /channels/{channelID}/messages [post]
func (c *ChatController) PostMessage(w http.ResponseWriter, r *http.Request) {
	channelID := r.PathValue("channelID")
	if !uuidRegexChat.MatchString(channelID) {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "invalid channelID")
		return
	}
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	var req PostMessageRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	msg, err := c.Service.PostMessage(r.Context(), channelID, userID, req.Content)
	if err != nil {
		c.writeError(w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, msg)
}

// Stream godoc
// @Summary Open a websocket stream for a channel
// @Description Upgrades to a websocket. The server pushes chat messages for the channel and notifications addressed to the user. Inbound frames are persisted and broadcast as chat messages.
// @Tags chat
// @Security BearerAuth
// @Param channelID path string true "Channel ID (UUID)"
// @Success 101 {string} string "Switching Protocols"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /channels/{channelID}/ws [get]
func (c *ChatController) Stream(w http.ResponseWriter, r *http.Request) {
	channelID := r.PathValue("channelID")
	if !uuidRegexChat.MatchString(channelID) {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "invalid channelID")
		return
	}
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	if _, err := c.Service.ListMessages(r.Context(), channelID, 1); err != nil {
		c.writeError(w, r, err)
		return
	}
	err := c.Hub.ServeClient(w, r, userID, channelID, func(in *realtime.Inbound) {
		// Inbound frames go through the same path as POSTed messages so they
		// are persisted before fan-out.
		if _, err := c.Service.PostMessage(context.Background(), channelID, userID, in.Content); err != nil {
			c.Logger.Warn("inbound chat message dropped", "channel_id", channelID, "err", err)
		}
	})
	if err != nil {
		c.Logger.Warn("websocket upgrade failed", "channel_id", channelID, "err", err)
	}
}

// NotificationStream godoc
// @Summary Open a websocket stream for notifications
// @Description Upgrades to a websocket that receives the authenticated user's notifications in real time. Receive-only.
// @Tags notifications
// @Security BearerAuth
// @Success 101 {string} string "Switching Protocols"
// @Router /notifications/ws [get]
func (c *ChatController) NotificationStream(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	if err := c.Hub.ServeClient(w, r, userID, "", nil); err != nil {
		c.Logger.Warn("websocket upgrade failed", "user_id", userID, "err", err)
	}
}
