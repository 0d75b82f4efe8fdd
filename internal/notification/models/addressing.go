package models

import (
	"github.com/yabetsTesfaye/addiscares-backend/pkg/domain"
	dErrors "github.com/yabetsTesfaye/addiscares-backend/pkg/domain-errors"
)

type addressingMode int

const (
	modeUnset addressingMode = iota
	modeDirect
	modeBulk
	modeBroadcast
)

// Addressing is the closed tagged variant over the three delivery shapes:
// direct (one principal), bulk (a recipient list), or broadcast (everyone).
// Construct via DirectTo, BulkTo, or BroadcastToAll; the zero value is
// invalid and rejected at creation, which enforces the "exactly one
// authoritative mode" invariant structurally instead of by scattered checks.
type Addressing struct {
	mode       addressingMode
	recipient  domain.PrincipalID
	recipients []RecipientEntry
}

// DirectTo addresses a single principal.
func DirectTo(recipient domain.PrincipalID) Addressing {
	return Addressing{mode: modeDirect, recipient: recipient}
}

// BulkTo addresses an ordered recipient list. Entries may name a role, a
// principal, or both.
func BulkTo(entries []RecipientEntry) Addressing {
	return Addressing{mode: modeBulk, recipients: entries}
}

// BroadcastToAll addresses every active principal.
func BroadcastToAll() Addressing {
	return Addressing{mode: modeBroadcast}
}

// Validate checks the variant's internal consistency. The zero Addressing,
// a nil direct recipient, an empty bulk list, and bulk entries carrying
// neither role nor user all fail with CodeBadRequest.
func (a Addressing) Validate() error {
	switch a.mode {
	case modeDirect:
		if a.recipient.IsNil() {
			return dErrors.New(dErrors.CodeBadRequest, "direct notification requires a recipient")
		}
	case modeBulk:
		if len(a.recipients) == 0 {
			return dErrors.New(dErrors.CodeBadRequest, "bulk notification requires at least one recipient entry")
		}
		for _, e := range a.recipients {
			if e.Role == "" && !e.HasUser() {
				return dErrors.New(dErrors.CodeBadRequest, "recipient entry must carry a role or a user")
			}
			if e.Role != "" && !e.Role.IsValid() {
				return dErrors.New(dErrors.CodeBadRequest, "recipient entry has invalid role: "+e.Role.String())
			}
		}
	case modeBroadcast:
		// Nothing to check.
	default:
		return dErrors.New(dErrors.CodeBadRequest, "notification requires a recipient, recipient list, or broadcast flag")
	}
	return nil
}

// Direct returns the target principal when the mode is direct.
func (a Addressing) Direct() (domain.PrincipalID, bool) {
	return a.recipient, a.mode == modeDirect
}

// Bulk returns the recipient entries when the mode is bulk.
func (a Addressing) Bulk() ([]RecipientEntry, bool) {
	return a.recipients, a.mode == modeBulk
}

// Broadcast reports whether the mode is broadcast.
func (a Addressing) Broadcast() bool {
	return a.mode == modeBroadcast
}

// Apply stamps the addressing fields onto a notification during creation.
// Bulk entries are copied so callers cannot mutate the stored list.
func (a Addressing) Apply(n *Notification) {
	switch a.mode {
	case modeDirect:
		n.Recipient = a.recipient
	case modeBulk:
		n.Recipients = append([]RecipientEntry(nil), a.recipients...)
	case modeBroadcast:
		n.IsBroadcast = true
	}
}

// UserAddressed returns the concrete principals named by the addressing:
// the direct recipient or the user-carrying bulk entries. Broadcasts name
// nobody concretely.
func (a Addressing) UserAddressed() []domain.PrincipalID {
	switch a.mode {
	case modeDirect:
		return []domain.PrincipalID{a.recipient}
	case modeBulk:
		var users []domain.PrincipalID
		for _, e := range a.recipients {
			if e.HasUser() {
				users = append(users, e.User)
			}
		}
		return users
	default:
		return nil
	}
}
