package service

import (
	"context"
	"strings"

	"github.com/yabetsTesfaye/addiscares-backend/internal/notification/events"
	"github.com/yabetsTesfaye/addiscares-backend/internal/notification/models"
	"github.com/yabetsTesfaye/addiscares-backend/pkg/domain"
	dErrors "github.com/yabetsTesfaye/addiscares-backend/pkg/domain-errors"
	"github.com/yabetsTesfaye/addiscares-backend/pkg/requestcontext"
)

// Hide soft-hides the notification from the principal's own view. Idempotent
// set-union; other users' visibility, read state, and unread counts are
// untouched. Hiding is an inbox filter, not a read signal.
func (s *Service) Hide(ctx context.Context, id domain.NotificationID, user domain.PrincipalID) error {
	if user.IsNil() {
		return dErrors.New(dErrors.CodeUnauthorized, "missing principal")
	}
	newly, err := s.store.Hide(ctx, id, user)
	if err != nil {
		return s.storeErr("hide notification", err)
	}
	if newly {
		// A hidden item leaves this principal's visible set, so their own
		// cached unread count may shrink. Nobody else's count changes.
		s.invalidateUnread(ctx, user)
		s.emit(ctx, events.ActionHidden, id, user, "")
	}
	return nil
}

// Delete removes a notification. Only the sender or an admin may delete.
// Admins always hard-delete; a sender's delete is hard unless the document
// is already soft-deleted, in which case it stays retained with the deleted
// mark. Returns whether the hard branch was taken so callers can report
// "permanently" vs "soft" deleted.
func (s *Service) Delete(ctx context.Context, id domain.NotificationID, actor domain.PrincipalID, role domain.Role) (bool, error) {
	if actor.IsNil() {
		return false, dErrors.New(dErrors.CodeUnauthorized, "missing principal")
	}
	n, err := s.store.FindByID(ctx, id)
	if err != nil {
		return false, s.storeErr("find notification", err)
	}

	isAdmin := role == domain.RoleAdmin
	if n.Sender != actor && !isAdmin {
		return false, dErrors.New(dErrors.CodeForbidden, "only the sender or an admin may delete a notification")
	}

	hard := isAdmin || !n.IsDeleted
	if hard {
		if err := s.store.HardDelete(ctx, id); err != nil {
			return false, s.storeErr("delete notification", err)
		}
	} else {
		if err := s.store.SoftDelete(ctx, id, requestcontext.Now(ctx)); err != nil {
			return false, s.storeErr("soft delete notification", err)
		}
	}

	s.invalidateUnread(ctx, affectedPrincipals(n)...)
	detail := "soft"
	if hard {
		detail = "hard"
	}
	s.emit(ctx, events.ActionDeleted, id, actor, detail)
	return hard, nil
}

// Modify edits title and/or message. The sender, admins, and government
// officials may edit. The pre-edit text is captured into the original
// content snapshot exactly once; later edits never overwrite it.
func (s *Service) Modify(ctx context.Context, id domain.NotificationID, actor domain.PrincipalID, role domain.Role, update models.ContentUpdate) (*models.Notification, error) {
	if actor.IsNil() {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "missing principal")
	}
	if update.IsEmpty() {
		return nil, dErrors.New(dErrors.CodeBadRequest, "update contains no editable field")
	}
	if update.Title != nil && strings.TrimSpace(*update.Title) == "" {
		return nil, dErrors.New(dErrors.CodeBadRequest, "title must not be empty")
	}
	if update.Message != nil && strings.TrimSpace(*update.Message) == "" {
		return nil, dErrors.New(dErrors.CodeBadRequest, "message must not be empty")
	}

	n, err := s.store.FindByID(ctx, id)
	if err != nil {
		return nil, s.storeErr("find notification", err)
	}
	if n.Sender != actor && role != domain.RoleAdmin && role != domain.RoleGovernment {
		return nil, dErrors.New(dErrors.CodeForbidden, "not allowed to modify this notification")
	}

	updated, err := s.store.Modify(ctx, id, actor, update, requestcontext.Now(ctx))
	if err != nil {
		return nil, s.storeErr("modify notification", err)
	}
	s.emit(ctx, events.ActionModified, id, actor, "")
	return updated, nil
}

// affectedPrincipals lists the concrete principals whose unread counts a
// document-level change can touch. Broadcast audiences are unbounded and
// rely on the cache TTL instead.
func affectedPrincipals(n *models.Notification) []domain.PrincipalID {
	var users []domain.PrincipalID
	if !n.Recipient.IsNil() {
		users = append(users, n.Recipient)
	}
	for _, e := range n.Recipients {
		if e.HasUser() {
			users = append(users, e.User)
		}
	}
	return users
}
