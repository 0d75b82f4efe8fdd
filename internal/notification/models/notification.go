package models

import (
	"time"

	"github.com/yabetsTesfaye/addiscares-backend/pkg/domain"
)

// ReadReceipt is one entry in the readBy ledger: the authoritative record
// that a particular principal has read the notification. At most one receipt
// exists per principal.
type ReadReceipt struct {
	User   domain.PrincipalID
	ReadAt time.Time
}

// RecipientEntry addresses one slot of a bulk notification. An entry carries
// a role, a concrete principal, or both. Role-only entries address every
// member of the role and never block the aggregate read flag.
type RecipientEntry struct {
	Role domain.Role
	User domain.PrincipalID
	// Read mirrors this entry's principal having a ledger receipt. It is a
	// derived convenience for response shaping, never consulted as truth.
	Read bool
}

// HasUser reports whether the entry names a concrete principal.
func (e RecipientEntry) HasUser() bool { return !e.User.IsNil() }

// Notification is the sole core entity: a message from one sender to one
// principal, a recipient list, or everyone.
//
// ReadBy is the only authority for per-user read state. Read and the
// per-entry Recipients[i].Read flags are projections recomputed on write for
// legacy consumers; they are never independently editable.
type Notification struct {
	ID      domain.NotificationID
	Title   string
	Message string
	Sender  domain.PrincipalID

	// Exactly one addressing mode is authoritative: Recipient (direct),
	// Recipients (bulk), or IsBroadcast. Enforced by Addressing at creation.
	Recipient   domain.PrincipalID
	Recipients  []RecipientEntry
	IsBroadcast bool

	Type domain.NotificationType

	ReadBy    []ReadReceipt
	Read      bool
	HiddenFor []domain.PrincipalID
	IsDeleted bool

	LastModifiedBy  domain.PrincipalID
	LastModifiedAt  *time.Time
	OriginalTitle   *string
	OriginalMessage *string

	Report domain.ReportID

	CreatedAt time.Time
	UpdatedAt time.Time
}

// ReadByUser reports whether the ledger holds a receipt for the principal.
func (n *Notification) ReadByUser(user domain.PrincipalID) bool {
	for _, r := range n.ReadBy {
		if r.User == user {
			return true
		}
	}
	return false
}

// HiddenForUser reports whether the principal has soft-hidden this
// notification from their own view.
func (n *Notification) HiddenForUser(user domain.PrincipalID) bool {
	for _, h := range n.HiddenFor {
		if h == user {
			return true
		}
	}
	return false
}

// AppendRead appends a receipt for the user unless one already exists.
// Returns true when the receipt was newly added. Callers own persistence and
// must hold whatever lock makes the append-and-recompute atomic.
func (n *Notification) AppendRead(user domain.PrincipalID, at time.Time) bool {
	if n.ReadByUser(user) {
		return false
	}
	n.ReadBy = append(n.ReadBy, ReadReceipt{User: user, ReadAt: at})
	n.RecomputeRead()
	return true
}

// RecomputeRead rebuilds the convenience Read flag and the per-entry
// Recipients[i].Read projections from the ledger. The rule depends on shape:
//
//   - direct: read iff the single intended recipient has a receipt
//   - bulk: read iff every user-addressed entry has a receipt; role-only
//     entries are vacuously satisfied
//   - broadcast: same as bulk when Recipients happens to be populated,
//     otherwise the flag stays false (an aggregate over "everyone" is
//     meaningless)
func (n *Notification) RecomputeRead() {
	switch {
	case !n.Recipient.IsNil():
		n.Read = n.ReadByUser(n.Recipient)
	case len(n.Recipients) > 0:
		all := true
		for i := range n.Recipients {
			if !n.Recipients[i].HasUser() {
				continue
			}
			n.Recipients[i].Read = n.ReadByUser(n.Recipients[i].User)
			if !n.Recipients[i].Read {
				all = false
			}
		}
		n.Read = all
	default:
		n.Read = false
	}
}

// AppendHidden adds the user to HiddenFor. Hiding is idempotent set-union;
// re-hiding returns false and changes nothing.
func (n *Notification) AppendHidden(user domain.PrincipalID) bool {
	if n.HiddenForUser(user) {
		return false
	}
	n.HiddenFor = append(n.HiddenFor, user)
	return true
}

// ContentUpdate carries the editable fields of a modify request. Nil means
// "leave unchanged".
type ContentUpdate struct {
	Title   *string
	Message *string
}

// IsEmpty reports whether the update contains no recognized field.
func (u ContentUpdate) IsEmpty() bool { return u.Title == nil && u.Message == nil }

// ApplyContentUpdate edits title/message in place, capturing the pre-edit
// text into OriginalTitle/OriginalMessage the first time each field is
// touched. Once populated the snapshot is never overwritten.
func (n *Notification) ApplyContentUpdate(u ContentUpdate, by domain.PrincipalID, at time.Time) {
	if u.Title != nil {
		if n.OriginalTitle == nil {
			prev := n.Title
			n.OriginalTitle = &prev
		}
		n.Title = *u.Title
	}
	if u.Message != nil {
		if n.OriginalMessage == nil {
			prev := n.Message
			n.OriginalMessage = &prev
		}
		n.Message = *u.Message
	}
	n.LastModifiedBy = by
	modifiedAt := at
	n.LastModifiedAt = &modifiedAt
	n.UpdatedAt = at
}

// Clone returns a deep copy so store snapshots can escape a lock without
// aliasing the live document.
func (n *Notification) Clone() *Notification {
	c := *n
	c.Recipients = append([]RecipientEntry(nil), n.Recipients...)
	c.ReadBy = append([]ReadReceipt(nil), n.ReadBy...)
	c.HiddenFor = append([]domain.PrincipalID(nil), n.HiddenFor...)
	if n.LastModifiedAt != nil {
		t := *n.LastModifiedAt
		c.LastModifiedAt = &t
	}
	if n.OriginalTitle != nil {
		s := *n.OriginalTitle
		c.OriginalTitle = &s
	}
	if n.OriginalMessage != nil {
		s := *n.OriginalMessage
		c.OriginalMessage = &s
	}
	return &c
}
