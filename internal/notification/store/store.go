// Package store persists notification documents.
//
// Stores are interface-driven so the service stays testable and persistence
// can be swapped (in-memory for tests and single-node runs, Postgres for
// production) without rewiring business code. The backend is chosen once at
// startup and injected; nothing consults a global connectivity flag
// mid-operation.
//
// Contract notes:
//   - FindByID returns soft-deleted documents; list operations apply the
//     visibility rules themselves.
//   - MarkRead must execute its check-append-recompute sequence atomically
//     per document: two concurrent calls for different users both land in
//     the ledger, and a repeat call for the same user is a no-op that still
//     returns the document.
//   - Stores report facts with sentinel errors (ErrNotFound); transient
//     infrastructure failures surface as wrapped driver errors for the
//     service to classify.
package store

import (
	"context"
	"time"

	"github.com/yabetsTesfaye/addiscares-backend/internal/notification/models"
	"github.com/yabetsTesfaye/addiscares-backend/pkg/domain"
)

type Store interface {
	// Create persists a fully constructed notification. The service has
	// already validated content and addressing.
	Create(ctx context.Context, n *models.Notification) error

	// FindByID returns the document, soft-deleted or not.
	// Errors: sentinel.ErrNotFound.
	FindByID(ctx context.Context, id domain.NotificationID) (*models.Notification, error)

	// ListForUser applies the visibility predicate for (user, role), derives
	// ReadByUser per item, filters and paginates per opts, newest first.
	ListForUser(ctx context.Context, user domain.PrincipalID, role domain.Role, opts models.ListOptions) ([]models.InboxItem, error)

	// ListSent returns the sender's notifications newest first, including
	// soft-deleted ones. Hard-deleted documents no longer exist anywhere.
	ListSent(ctx context.Context, sender domain.PrincipalID) ([]*models.Notification, error)

	// ListUnreadIDs returns ids of visible notifications lacking a ledger
	// receipt for the user, for the read-all batch.
	ListUnreadIDs(ctx context.Context, user domain.PrincipalID, role domain.Role) ([]domain.NotificationID, error)

	// CountUnread counts visible notifications lacking a ledger receipt for
	// the user. Computed from the ledger, never from the Read flag.
	CountUnread(ctx context.Context, user domain.PrincipalID, role domain.Role) (int, error)

	// MarkRead appends a ledger receipt for the user and recomputes the
	// convenience flags in one atomic unit. The bool reports whether the
	// receipt was newly added. Errors: sentinel.ErrNotFound.
	MarkRead(ctx context.Context, id domain.NotificationID, user domain.PrincipalID, at time.Time) (*models.Notification, bool, error)

	// Hide adds the user to the hidden set. Idempotent; the bool reports
	// whether the user was newly hidden. Errors: sentinel.ErrNotFound.
	Hide(ctx context.Context, id domain.NotificationID, user domain.PrincipalID) (bool, error)

	// SoftDelete marks the document deleted but retains it for the sender's
	// sent listing. Errors: sentinel.ErrNotFound.
	SoftDelete(ctx context.Context, id domain.NotificationID, at time.Time) error

	// HardDelete removes the document entirely, ledger and all. No
	// tombstone remains. Errors: sentinel.ErrNotFound.
	HardDelete(ctx context.Context, id domain.NotificationID) error

	// Modify edits title/message with the first-edit-wins original snapshot
	// and audit stamps, atomically per document, and returns the updated
	// document. Errors: sentinel.ErrNotFound.
	Modify(ctx context.Context, id domain.NotificationID, by domain.PrincipalID, update models.ContentUpdate, at time.Time) (*models.Notification, error)
}
