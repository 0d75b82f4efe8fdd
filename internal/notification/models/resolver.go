package models

import "github.com/yabetsTesfaye/addiscares-backend/pkg/domain"

// Visibility resolution: which notifications belong in a principal's inbox.
//
// The rules differ by role, so each role gets its own strategy rather than
// an inline conditional. Admins see every notification they have not hidden
// and did not send themselves (an explicit oversight policy); reporters and
// government officials must match the addressing: broadcast, direct
// recipient, a user entry naming them, or a role-only entry for their role.
//
// The common exclusions apply to every role: hidden-by-user, self-sent, and
// soft-deleted documents never appear in an inbox. Soft-deleted items stay
// reachable through the sender's sent listing only.

type visibilityFunc func(n *Notification, p domain.PrincipalID, role domain.Role) bool

var visibilityByRole = map[domain.Role]visibilityFunc{
	domain.RoleReporter:   memberVisibility,
	domain.RoleGovernment: memberVisibility,
	domain.RoleAdmin:      adminVisibility,
}

// VisibleTo is the inbox predicate. It is the single definition of
// visibility for the in-memory store and for per-document checks; the
// Postgres store mirrors it in SQL.
func VisibleTo(n *Notification, p domain.PrincipalID, role domain.Role) bool {
	if n.IsDeleted || n.Sender == p || n.HiddenForUser(p) {
		return false
	}
	match, ok := visibilityByRole[role]
	if !ok {
		return false
	}
	return match(n, p, role)
}

func memberVisibility(n *Notification, p domain.PrincipalID, role domain.Role) bool {
	if n.IsBroadcast || n.Recipient == p {
		return true
	}
	for _, e := range n.Recipients {
		if e.User == p {
			return true
		}
		// Role-only entries address every member of the role. Entries that
		// pin a user are not role matches for anyone else.
		if !e.HasUser() && e.Role == role {
			return true
		}
	}
	return false
}

// adminVisibility skips addressing entirely: admins see everything that is
// not hidden or self-sent, which the caller has already excluded.
func adminVisibility(_ *Notification, _ domain.PrincipalID, _ domain.Role) bool {
	return true
}
