package controllers

import (
	"errors"
	"log/slog"
	"net/http"
	"regexp"
	"strings"

	"volunteerhub/internal/delivery/http/helpers"
	"volunteerhub/internal/delivery/http/middleware"
	"volunteerhub/internal/domain"
)

// uuidRegexRegistration matches a canonical UUID string (8-4-4-4-12 hex).
var uuidRegexRegistration = regexp.MustCompile(`^[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12}$`)

type RegistrationController struct {
	Logger  *slog.Logger
	Service domain.RegistrationService
}

func NewRegistrationController(logger *slog.Logger, svc domain.RegistrationService) *RegistrationController {
	return &RegistrationController{
		Logger:  logger,
		Service: svc,
	}
}

// writeJoinError maps registration lifecycle errors to HTTP responses. The
// 409 variants carry distinct error codes so clients can branch on them.
func (c *RegistrationController) writeJoinError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		helpers.WriteJSONError(w, http.StatusNotFound, helpers.ErrCodeNotFound, "event not found")
	case errors.Is(err, domain.ErrEventFull):
		helpers.WriteJSONError(w, http.StatusConflict, helpers.ErrCodeEventFull, "event is full")
	case errors.Is(err, domain.ErrEventStarted):
		helpers.WriteJSONError(w, http.StatusConflict, helpers.ErrCodeEventStarted, "event has already started")
	case errors.Is(err, domain.ErrEventNotAccepting):
		helpers.WriteJSONError(w, http.StatusConflict, helpers.ErrCodeConflict, "event is not accepting registrations")
	case errors.Is(err, domain.ErrAlreadyRegistered):
		helpers.WriteJSONError(w, http.StatusConflict, helpers.ErrCodeAlreadyRegistered, "already registered for this event")
	case errors.Is(err, domain.ErrForbidden):
		helpers.WriteJSONError(w, http.StatusForbidden, helpers.ErrCodeForbidden, "not a manager of this event")
	case errors.Is(err, domain.ErrInvalidInput):
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, err.Error())
	default:
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, err.Error())
	}
}

// Join godoc
// @Summary Request to join an event
// @Description Creates a pending registration for the authenticated user. The registration must be approved by an event manager before it counts against capacity.
// @Tags registrations
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Success 201 {object} helpers.APIResponse "data contains the pending registration"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: event_full, event_started, already_registered, or conflict"
// @Router /events/{eventID}/registrations [post]
func (c *RegistrationController) Join(w http.ResponseWriter, r *http.Request) {
	eventID := r.PathValue("eventID")
	if !uuidRegexRegistration.MatchString(eventID) {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "invalid eventID")
		return
	}
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	reg, err := c.Service.RequestJoin(r.Context(), eventID, userID)
	if err != nil {
		c.writeJoinError(w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, reg)
}

// Leave godoc
// @Summary Leave an event
// @Description Withdraws the authenticated user's registration. If the registration was approved, the event's participant count is decremented. Not allowed once the event has started.
// @Tags registrations
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Success 200 {object} helpers.APIResponse
// @Failure 404 {object} helpers.APIResponse "error.code: not_found (no registration)"
// @Failure 409 {object} helpers.APIResponse "error.code: event_started"
// @Router /events/{eventID}/registrations [delete]
func (c *RegistrationController) Leave(w http.ResponseWriter, r *http.Request) {
	eventID := r.PathValue("eventID")
	if !uuidRegexRegistration.MatchString(eventID) {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "invalid eventID")
		return
	}
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	if err := c.Service.Leave(r.Context(), eventID, userID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			helpers.WriteJSONError(w, http.StatusNotFound, helpers.ErrCodeNotFound, "registration not found")
			return
		}
		c.writeJoinError(w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, map[string]string{"message": "registration withdrawn"})
}

// ListMine godoc
// @Summary List my registrations
// @Description Returns all of the authenticated user's registrations with their events. Event statuses reflect the wall clock.
// @Tags registrations
// @Produce json
// @Security BearerAuth
// @Success 200 {object} helpers.APIResponse "data contains []RegistrationWithEvent"
// @Router /users/me/registrations [get]
func (c *RegistrationController) ListMine(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	regs, err := c.Service.ListMyRegistrations(r.Context(), userID)
	if err != nil {
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, err.Error())
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, regs)
}

// HistoryResponse is the response body for GET /users/me/history.
type HistoryResponse struct {
	Entries    []*domain.HistoryEntry `json:"entries"`
	TotalHours float64                `json:"total_hours"`
}

// History godoc
// @Summary My volunteer history
// @Description Returns the authenticated user's completed participations for events that have ended, with per-event and total hours.
// @Tags registrations
// @Produce json
// @Security BearerAuth
// @Success 200 {object} helpers.APIResponse "data contains HistoryResponse"
// @Router /users/me/history [get]
func (c *RegistrationController) History(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	entries, err := c.Service.EventHistory(r.Context(), userID)
	if err != nil {
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, err.Error())
		return
	}
	var total float64
	for _, e := range entries {
		total += e.Hours
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, HistoryResponse{Entries: entries, TotalHours: total})
}

// ListForEvent godoc
// @Summary List an event's registrations
// @Description Returns all registrations for the event with registrant details. Callable only by the event author or a co-manager.
// @Tags registrations
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Success 200 {object} helpers.APIResponse "data contains []RegistrationWithUser"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /manage/events/{eventID}/registrations [get]
func (c *RegistrationController) ListForEvent(w http.ResponseWriter, r *http.Request) {
	eventID := r.PathValue("eventID")
	if !uuidRegexRegistration.MatchString(eventID) {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "invalid eventID")
		return
	}
	managerID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	regs, err := c.Service.ListEventRegistrations(r.Context(), eventID, managerID)
	if err != nil {
		c.writeJoinError(w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, regs)
}

// Approve godoc
// @Summary Approve a pending registration
// @Description Flips a pending registration to approved and increments the event's participant count. Capacity is re-checked under a row lock, so approvals past capacity fail with event_full even under concurrency.
// @Tags registrations
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Param userID path string true "Registrant user ID (UUID)"
// @Success 200 {object} helpers.APIResponse "data contains the approved registration"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request (not pending)"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: event_full"
// @Router /manage/events/{eventID}/registrations/{userID}/approve [post]
func (c *RegistrationController) Approve(w http.ResponseWriter, r *http.Request) {
	eventID := r.PathValue("eventID")
	targetUserID := r.PathValue("userID")
	if !uuidRegexRegistration.MatchString(eventID) || !uuidRegexRegistration.MatchString(targetUserID) {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "invalid id")
		return
	}
	managerID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	reg, err := c.Service.Approve(r.Context(), eventID, targetUserID, managerID)
	if err != nil {
		c.writeJoinError(w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, reg)
}

// Reject godoc
// @Summary Reject a pending registration
// @Description Flips a pending registration to rejected. The participant count is unchanged.
// @Tags registrations
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Param userID path string true "Registrant user ID (UUID)"
// @Success 200 {object} helpers.APIResponse "data contains the rejected registration"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request (not pending)"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /manage/events/{eventID}/registrations/{userID}/reject [post]
func (c *RegistrationController) Reject(w http.ResponseWriter, r *http.Request) {
	eventID := r.PathValue("eventID")
	targetUserID := r.PathValue("userID")
	if !uuidRegexRegistration.MatchString(eventID) || !uuidRegexRegistration.MatchString(targetUserID) {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "invalid id")
		return
	}
	managerID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	reg, err := c.Service.Reject(r.Context(), eventID, targetUserID, managerID)
	if err != nil {
		c.writeJoinError(w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, reg)
}

// MarkCompletionRequest is the request body for POST /manage/events/{eventID}/registrations/{userID}/completion.
type MarkCompletionRequest struct {
	Status string `json:"status"` // "completed" or "failed"
	Note   string `json:"note"`
}

// Validate implements helpers.Validator.
func (m MarkCompletionRequest) Validate() []string {
	var errs []string
	status := strings.TrimSpace(strings.ToLower(m.Status))
	if status != domain.CompletionCompleted && status != domain.CompletionFailed {
		errs = append(errs, `status must be "completed" or "failed"`)
	}
	if strings.TrimSpace(m.Note) == "" {
		errs = append(errs, "note is required")
	}
	return errs
}

// MarkCompletion godoc
// @Summary Record a participation outcome
// @Description Records whether an approved participant completed the event, with a mandatory note. Only allowed once the event has ended.
// @Tags registrations
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Param userID path string true "Registrant user ID (UUID)"
// @Param body body MarkCompletionRequest true "Outcome and note"
// @Success 200 {object} helpers.APIResponse "data contains the updated registration"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found (no approved registration)"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict (event not ended)"
// @Router /manage/events/{eventID}/registrations/{userID}/completion [post]
func (c *RegistrationController) MarkCompletion(w http.ResponseWriter, r *http.Request) {
	eventID := r.PathValue("eventID")
	targetUserID := r.PathValue("userID")
	if !uuidRegexRegistration.MatchString(eventID) || !uuidRegexRegistration.MatchString(targetUserID) {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "invalid id")
		return
	}
	managerID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	var req MarkCompletionRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	reg, err := c.Service.MarkCompletion(r.Context(), eventID, targetUserID, managerID, strings.ToLower(req.Status), req.Note)
	if err != nil {
		if errors.Is(err, domain.ErrEventNotEnded) {
			helpers.WriteJSONError(w, http.StatusConflict, helpers.ErrCodeConflict, "event has not ended yet")
			return
		}
		if errors.Is(err, domain.ErrNotFound) {
			helpers.WriteJSONError(w, http.StatusNotFound, helpers.ErrCodeNotFound, "approved registration not found")
			return
		}
		c.writeJoinError(w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, reg)
}
