package service

import (
	"context"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/yabetsTesfaye/addiscares-backend/internal/notification/events"
	"github.com/yabetsTesfaye/addiscares-backend/internal/notification/models"
	"github.com/yabetsTesfaye/addiscares-backend/pkg/domain"
	dErrors "github.com/yabetsTesfaye/addiscares-backend/pkg/domain-errors"
	"github.com/yabetsTesfaye/addiscares-backend/pkg/requestcontext"
)

// readAllWorkers bounds the mark-all-read fan-out. Each item is an
// independent single-document transaction.
const readAllWorkers = 8

// MarkAsRead appends the principal's receipt to the ledger and recomputes
// the convenience flags, atomically per document. Re-marking is a no-op that
// still returns the fully populated notification.
func (s *Service) MarkAsRead(ctx context.Context, id domain.NotificationID, user domain.PrincipalID) (*models.Notification, error) {
	if user.IsNil() {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "missing principal")
	}
	n, newly, err := s.store.MarkRead(ctx, id, user, requestcontext.Now(ctx))
	if err != nil {
		return nil, s.storeErr("mark read", err)
	}
	if newly {
		if s.metrics != nil {
			s.metrics.MarkedRead.Inc()
		}
		s.invalidateUnread(ctx, user)
		s.emit(ctx, events.ActionRead, id, user, "")
	}
	return n, nil
}

// MarkAllAsRead marks every visible unread notification read for the
// principal. Items are independent: a failure on one is logged and counted,
// never fatal to the batch, and a re-run converges because the per-item mark
// is idempotent. Returns the number of notifications newly marked.
func (s *Service) MarkAllAsRead(ctx context.Context, user domain.PrincipalID, role domain.Role) (int, error) {
	if user.IsNil() {
		return 0, dErrors.New(dErrors.CodeUnauthorized, "missing principal")
	}
	if !role.IsValid() {
		return 0, dErrors.New(dErrors.CodeBadRequest, "invalid role: "+role.String())
	}

	ids, err := s.store.ListUnreadIDs(ctx, user, role)
	if err != nil {
		return 0, s.storeErr("list unread", err)
	}

	now := requestcontext.Now(ctx)
	var updated, failed atomic.Int64

	g := new(errgroup.Group)
	g.SetLimit(readAllWorkers)
	for _, id := range ids {
		g.Go(func() error {
			_, newly, err := s.store.MarkRead(ctx, id, user, now)
			if err != nil {
				failed.Add(1)
				s.logger.WarnContext(ctx, "mark-all-read item failed",
					"request_id", requestcontext.RequestID(ctx),
					"notification_id", id.String(),
					"error", err.Error(),
				)
				return nil
			}
			if newly {
				updated.Add(1)
			}
			return nil
		})
	}
	_ = g.Wait() // item errors are collected above, never propagated

	count := int(updated.Load())
	if s.metrics != nil {
		s.metrics.ReadAllUpdated.Observe(float64(count))
	}
	if count > 0 {
		s.invalidateUnread(ctx, user)
		s.emit(ctx, events.ActionReadAll, domain.NotificationID{}, user, "")
	}
	return count, nil
}

// UnreadCount returns the number of visible notifications lacking a ledger
// receipt for the principal. Any failure degrades to 0 so an unread badge
// never blocks unrelated UI. This is the one place the service swallows an
// error, and it logs it first.
//
// The cache never stores zeros, so a zero answer has always been verified
// against the ledger on this call or a recent one.
func (s *Service) UnreadCount(ctx context.Context, user domain.PrincipalID, role domain.Role) int {
	if user.IsNil() || !role.IsValid() {
		return 0
	}

	if count, hit, err := s.cache.Get(ctx, user); err == nil && hit {
		if s.metrics != nil {
			s.metrics.CacheHits.Inc()
		}
		return count
	} else if err != nil {
		s.logger.WarnContext(ctx, "unread cache read failed",
			"request_id", requestcontext.RequestID(ctx),
			"error", err.Error(),
		)
	}

	count, err := s.store.CountUnread(ctx, user, role)
	if err != nil {
		if s.metrics != nil {
			s.metrics.UnreadFailSoft.Inc()
		}
		s.logger.ErrorContext(ctx, "unread count failed, returning zero",
			"request_id", requestcontext.RequestID(ctx),
			"principal", user.String(),
			"error", err.Error(),
		)
		return 0
	}
	if s.metrics != nil {
		s.metrics.CacheMisses.Inc()
	}
	if err := s.cache.Set(ctx, user, count); err != nil {
		s.logger.WarnContext(ctx, "unread cache write failed",
			"request_id", requestcontext.RequestID(ctx),
			"error", err.Error(),
		)
	}
	return count
}
