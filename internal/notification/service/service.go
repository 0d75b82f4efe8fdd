// Package service implements the notification operations. Every mutation
// path funnels through here so the addressing, ledger, and audit-snapshot
// invariants are enforced at one seam; handlers stay thin and stores stay
// dumb.
package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/yabetsTesfaye/addiscares-backend/internal/directory"
	"github.com/yabetsTesfaye/addiscares-backend/internal/notification/cache"
	"github.com/yabetsTesfaye/addiscares-backend/internal/notification/events"
	"github.com/yabetsTesfaye/addiscares-backend/internal/notification/metrics"
	"github.com/yabetsTesfaye/addiscares-backend/internal/notification/models"
	"github.com/yabetsTesfaye/addiscares-backend/internal/notification/store"
	"github.com/yabetsTesfaye/addiscares-backend/pkg/domain"
	dErrors "github.com/yabetsTesfaye/addiscares-backend/pkg/domain-errors"
	"github.com/yabetsTesfaye/addiscares-backend/pkg/platform/sentinel"
	"github.com/yabetsTesfaye/addiscares-backend/pkg/requestcontext"
)

// Directory resolves named recipients to known principals.
type Directory interface {
	FindByID(ctx context.Context, id domain.PrincipalID) (directory.Principal, error)
}

// Emitter publishes lifecycle events. Emission is fire-and-forget.
type Emitter interface {
	Emit(ctx context.Context, event events.Event)
}

type Service struct {
	store     store.Store
	directory Directory
	emitter   Emitter
	cache     *cache.UnreadCache
	metrics   *metrics.Metrics
	logger    *slog.Logger
}

// NewService wires the notification service. emitter, cache, and metrics
// may be nil; the service degrades to not emitting, not caching, and not
// measuring rather than branching at every call site in main.
func NewService(
	st store.Store,
	dir Directory,
	emitter Emitter,
	unreadCache *cache.UnreadCache,
	m *metrics.Metrics,
	logger *slog.Logger,
) *Service {
	return &Service{
		store:     st,
		directory: dir,
		emitter:   emitter,
		cache:     unreadCache,
		metrics:   m,
		logger:    logger,
	}
}

// CreateInput is a create request after transport decoding. Addressing must
// be built via the models constructors; the zero value fails validation.
type CreateInput struct {
	Title      string
	Message    string
	Type       domain.NotificationType
	Report     domain.ReportID
	Addressing models.Addressing
}

// Create validates content and addressing, resolves named recipients against
// the directory, and persists the notification.
//
// The creator is pre-marked as having read their own creation for direct and
// broadcast shapes. Bulk notifications skip the pre-mark so the sender can
// never satisfy another entry's slot in the aggregate read flag.
func (s *Service) Create(ctx context.Context, sender domain.PrincipalID, in CreateInput) (*models.Notification, error) {
	if sender.IsNil() {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "missing sender principal")
	}
	title := strings.TrimSpace(in.Title)
	message := strings.TrimSpace(in.Message)
	if title == "" {
		return nil, dErrors.New(dErrors.CodeBadRequest, "title must not be empty")
	}
	if message == "" {
		return nil, dErrors.New(dErrors.CodeBadRequest, "message must not be empty")
	}
	if err := in.Addressing.Validate(); err != nil {
		return nil, err
	}
	if err := s.resolveRecipients(ctx, in.Addressing); err != nil {
		return nil, err
	}

	now := requestcontext.Now(ctx)
	n := &models.Notification{
		ID:        domain.NewNotificationID(),
		Title:     title,
		Message:   message,
		Sender:    sender,
		Type:      in.Type,
		Report:    in.Report,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if n.Type == "" {
		n.Type = domain.TypeInfo
	}
	in.Addressing.Apply(n)
	if _, bulk := in.Addressing.Bulk(); !bulk {
		n.ReadBy = []models.ReadReceipt{{User: sender, ReadAt: now}}
	}

	if err := s.store.Create(ctx, n); err != nil {
		return nil, s.storeErr("create notification", err)
	}

	if s.metrics != nil {
		s.metrics.Created.WithLabelValues(addressingShape(in.Addressing)).Inc()
	}
	s.invalidateUnread(ctx, in.Addressing.UserAddressed()...)
	s.emit(ctx, events.ActionCreated, n.ID, sender, string(n.Type))
	return n, nil
}

// FindForUser lists the principal's inbox. ReadByUser is derived from the
// ledger per item and overlaid onto the legacy Read flag, which is
// unreliable for multi-recipient shapes and kept only for old consumers.
func (s *Service) FindForUser(ctx context.Context, user domain.PrincipalID, role domain.Role, opts models.ListOptions) ([]models.InboxItem, error) {
	if user.IsNil() {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "missing principal")
	}
	if !role.IsValid() {
		return nil, dErrors.New(dErrors.CodeBadRequest, "invalid role: "+role.String())
	}
	if opts.Skip < 0 || opts.Limit < 0 {
		return nil, dErrors.New(dErrors.CodeBadRequest, "pagination values must be non-negative")
	}

	items, err := s.store.ListForUser(ctx, user, role, opts)
	if err != nil {
		return nil, s.storeErr("list inbox", err)
	}
	for i := range items {
		items[i].Read = items[i].ReadByUser
	}
	return items, nil
}

// FindSent lists the sender's notifications, soft-deleted included, with
// aggregate read/hidden stats.
func (s *Service) FindSent(ctx context.Context, sender domain.PrincipalID) ([]models.SentItem, error) {
	if sender.IsNil() {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "missing principal")
	}
	sent, err := s.store.ListSent(ctx, sender)
	if err != nil {
		return nil, s.storeErr("list sent", err)
	}
	items := make([]models.SentItem, 0, len(sent))
	for _, n := range sent {
		items = append(items, models.NewSentItem(n))
	}
	return items, nil
}

func (s *Service) resolveRecipients(ctx context.Context, a models.Addressing) error {
	for _, user := range a.UserAddressed() {
		if _, err := s.directory.FindByID(ctx, user); err != nil {
			if errors.Is(err, sentinel.ErrNotFound) {
				return dErrors.New(dErrors.CodeBadRequest, "recipient "+user.String()+" is not a known principal")
			}
			return dErrors.Wrap(dErrors.CodeUnavailable, "resolve recipient", err)
		}
	}
	return nil
}

func (s *Service) storeErr(op string, err error) error {
	if errors.Is(err, sentinel.ErrNotFound) {
		return dErrors.New(dErrors.CodeNotFound, "notification not found")
	}
	return dErrors.Wrap(dErrors.CodeUnavailable, op, err)
}

func (s *Service) emit(ctx context.Context, action events.Action, id domain.NotificationID, actor domain.PrincipalID, detail string) {
	if s.emitter == nil {
		return
	}
	s.emitter.Emit(ctx, events.Event{
		Action:         action,
		NotificationID: id,
		Actor:          actor,
		Detail:         detail,
		RequestID:      requestcontext.RequestID(ctx),
		ClientIP:       requestcontext.ClientIP(ctx),
		UserAgent:      requestcontext.UserAgent(ctx),
		At:             requestcontext.Now(ctx),
	})
}

func (s *Service) invalidateUnread(ctx context.Context, users ...domain.PrincipalID) {
	if err := s.cache.Invalidate(ctx, users...); err != nil {
		s.logger.WarnContext(ctx, "failed to invalidate unread cache",
			"request_id", requestcontext.RequestID(ctx),
			"error", err.Error(),
		)
	}
}

func addressingShape(a models.Addressing) string {
	switch {
	case a.Broadcast():
		return "broadcast"
	default:
		if _, ok := a.Direct(); ok {
			return "direct"
		}
		return "bulk"
	}
}
