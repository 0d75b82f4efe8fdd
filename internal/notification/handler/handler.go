// Package handler exposes the notification API over HTTP. It stays thin:
// decode, delegate to the service, encode. All authorization and domain
// rules live below it.
package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/yabetsTesfaye/addiscares-backend/internal/notification/models"
	"github.com/yabetsTesfaye/addiscares-backend/internal/notification/service"
	"github.com/yabetsTesfaye/addiscares-backend/internal/platform/middleware"
	"github.com/yabetsTesfaye/addiscares-backend/internal/transport/http/shared"
	"github.com/yabetsTesfaye/addiscares-backend/pkg/domain"
	dErrors "github.com/yabetsTesfaye/addiscares-backend/pkg/domain-errors"
	"github.com/yabetsTesfaye/addiscares-backend/pkg/requestcontext"
)

// Service defines the notification operations the handler depends on.
type Service interface {
	Create(ctx context.Context, sender domain.PrincipalID, in service.CreateInput) (*models.Notification, error)
	FindForUser(ctx context.Context, user domain.PrincipalID, role domain.Role, opts models.ListOptions) ([]models.InboxItem, error)
	FindSent(ctx context.Context, sender domain.PrincipalID) ([]models.SentItem, error)
	UnreadCount(ctx context.Context, user domain.PrincipalID, role domain.Role) int
	MarkAsRead(ctx context.Context, id domain.NotificationID, user domain.PrincipalID) (*models.Notification, error)
	MarkAllAsRead(ctx context.Context, user domain.PrincipalID, role domain.Role) (int, error)
	Hide(ctx context.Context, id domain.NotificationID, user domain.PrincipalID) error
	Modify(ctx context.Context, id domain.NotificationID, actor domain.PrincipalID, role domain.Role, update models.ContentUpdate) (*models.Notification, error)
	Delete(ctx context.Context, id domain.NotificationID, actor domain.PrincipalID, role domain.Role) (bool, error)
}

// Handler handles notification endpoints.
type Handler struct {
	logger        *slog.Logger
	notifications Service
	jwtValidator  middleware.JWTValidator
}

// New creates a notification Handler.
func New(notifications Service, logger *slog.Logger, jwtValidator middleware.JWTValidator) *Handler {
	return &Handler{
		logger:        logger,
		notifications: notifications,
		jwtValidator:  jwtValidator,
	}
}

// Register registers the notification routes with the chi router.
func (h *Handler) Register(r chi.Router) {
	nr := chi.NewRouter()
	nr.Use(middleware.Recovery(h.logger))
	nr.Use(middleware.RequestID)
	nr.Use(middleware.RequestTime)
	nr.Use(middleware.ClientMetadata)
	nr.Use(middleware.Logger(h.logger))
	nr.Use(middleware.Timeout(30 * time.Second))
	nr.Use(middleware.ContentTypeJSON)
	nr.Use(middleware.Latency)
	nr.Use(middleware.RequireAuth(h.jwtValidator, h.logger))

	nr.Post("/notifications", h.handleCreate)
	nr.Get("/notifications", h.handleInbox)
	nr.Get("/notifications/sent", h.handleSent)
	nr.Get("/notifications/unread-count", h.handleUnreadCount)
	nr.Post("/notifications/read-all", h.handleReadAll)
	nr.Post("/notifications/{id}/read", h.handleMarkRead)
	nr.Post("/notifications/{id}/hide", h.handleHide)
	nr.Patch("/notifications/{id}", h.handleModify)
	nr.Delete("/notifications/{id}", h.handleDelete)

	r.Mount("/", nr)
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sender := requestcontext.PrincipalID(ctx)

	var req createRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.warn(ctx, "invalid create request", err)
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	addressing, err := req.addressing()
	if err != nil {
		h.warn(ctx, "invalid addressing", err)
		shared.WriteError(w, err)
		return
	}

	notifType, err := domain.ParseNotificationType(req.Type)
	if err != nil {
		h.warn(ctx, "invalid notification type", err)
		shared.WriteError(w, err)
		return
	}

	in := service.CreateInput{
		Title:      req.Title,
		Message:    req.Message,
		Type:       notifType,
		Addressing: addressing,
	}
	if req.Report != "" {
		report, err := domain.ParseReportID(req.Report)
		if err != nil {
			h.warn(ctx, "invalid report id", err)
			shared.WriteError(w, err)
			return
		}
		in.Report = report
	}

	n, err := h.notifications.Create(ctx, sender, in)
	if err != nil {
		h.serviceError(ctx, w, "failed to create notification", err)
		return
	}
	shared.WriteJSON(w, http.StatusCreated, toResponse(n))
}

func (h *Handler) handleInbox(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	user := requestcontext.PrincipalID(ctx)
	role := requestcontext.Role(ctx)

	opts, err := listOptionsFromQuery(r)
	if err != nil {
		h.warn(ctx, "invalid list options", err)
		shared.WriteError(w, err)
		return
	}

	items, err := h.notifications.FindForUser(ctx, user, role, opts)
	if err != nil {
		h.serviceError(ctx, w, "failed to list notifications", err)
		return
	}

	resp := make([]notificationResponse, 0, len(items))
	for _, item := range items {
		resp = append(resp, toInboxResponse(item))
	}
	shared.WriteJSON(w, http.StatusOK, resp)
}

func (h *Handler) handleSent(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sender := requestcontext.PrincipalID(ctx)

	items, err := h.notifications.FindSent(ctx, sender)
	if err != nil {
		h.serviceError(ctx, w, "failed to list sent notifications", err)
		return
	}

	resp := make([]notificationResponse, 0, len(items))
	for _, item := range items {
		resp = append(resp, toSentResponse(item))
	}
	shared.WriteJSON(w, http.StatusOK, resp)
}

func (h *Handler) handleUnreadCount(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	count := h.notifications.UnreadCount(ctx, requestcontext.PrincipalID(ctx), requestcontext.Role(ctx))
	shared.WriteJSON(w, http.StatusOK, unreadCountResponse{Count: count})
}

func (h *Handler) handleReadAll(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	updated, err := h.notifications.MarkAllAsRead(ctx, requestcontext.PrincipalID(ctx), requestcontext.Role(ctx))
	if err != nil {
		h.serviceError(ctx, w, "failed to mark all as read", err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, readAllResponse{Updated: updated})
}

func (h *Handler) handleMarkRead(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, err := pathID(r)
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	n, err := h.notifications.MarkAsRead(ctx, id, requestcontext.PrincipalID(ctx))
	if err != nil {
		h.serviceError(ctx, w, "failed to mark notification read", err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, toResponse(n))
}

func (h *Handler) handleHide(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, err := pathID(r)
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	if err := h.notifications.Hide(ctx, id, requestcontext.PrincipalID(ctx)); err != nil {
		h.serviceError(ctx, w, "failed to hide notification", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleModify(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, err := pathID(r)
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	var req modifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.warn(ctx, "invalid modify request", err)
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	update := models.ContentUpdate{Title: req.Title, Message: req.Message}
	n, err := h.notifications.Modify(ctx, id, requestcontext.PrincipalID(ctx), requestcontext.Role(ctx), update)
	if err != nil {
		h.serviceError(ctx, w, "failed to modify notification", err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, toResponse(n))
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, err := pathID(r)
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	hard, err := h.notifications.Delete(ctx, id, requestcontext.PrincipalID(ctx), requestcontext.Role(ctx))
	if err != nil {
		h.serviceError(ctx, w, "failed to delete notification", err)
		return
	}
	mode := "soft"
	if hard {
		mode = "hard"
	}
	shared.WriteJSON(w, http.StatusOK, deleteResponse{Deleted: mode})
}

func pathID(r *http.Request) (domain.NotificationID, error) {
	return domain.ParseNotificationID(chi.URLParam(r, "id"))
}

func listOptionsFromQuery(r *http.Request) (models.ListOptions, error) {
	var opts models.ListOptions
	q := r.URL.Query()

	if v := q.Get("read"); v != "" {
		read, err := strconv.ParseBool(v)
		if err != nil {
			return opts, dErrors.New(dErrors.CodeBadRequest, "read must be true or false")
		}
		opts.ReadFilter = &read
	}
	if v := q.Get("skip"); v != "" {
		skip, err := strconv.Atoi(v)
		if err != nil || skip < 0 {
			return opts, dErrors.New(dErrors.CodeBadRequest, "skip must be a non-negative integer")
		}
		opts.Skip = skip
	}
	if v := q.Get("limit"); v != "" {
		limit, err := strconv.Atoi(v)
		if err != nil || limit <= 0 {
			return opts, dErrors.New(dErrors.CodeBadRequest, "limit must be a positive integer")
		}
		opts.Limit = limit
	}
	return opts, nil
}

// serviceError logs a failure at the severity its code deserves and writes
// the matching response.
func (h *Handler) serviceError(ctx context.Context, w http.ResponseWriter, msg string, err error) {
	code := dErrors.CodeOf(err)
	switch code {
	case dErrors.CodeInternal, dErrors.CodeUnavailable:
		h.logger.ErrorContext(ctx, msg,
			"error", err.Error(),
			"request_id", requestcontext.RequestID(ctx),
		)
	default:
		h.logger.WarnContext(ctx, msg,
			"error", err.Error(),
			"code", string(code),
			"request_id", requestcontext.RequestID(ctx),
		)
	}
	shared.WriteError(w, err)
}

func (h *Handler) warn(ctx context.Context, msg string, err error) {
	h.logger.WarnContext(ctx, msg,
		"error", err.Error(),
		"request_id", requestcontext.RequestID(ctx),
	)
}
