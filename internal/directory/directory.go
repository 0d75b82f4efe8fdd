// Package directory is the minimal account registry the notification core
// needs: resolving named recipients to known principals and enumerating role
// membership. Account lifecycle beyond that (credentials, profiles) belongs
// to the auth collaborator.
package directory

import (
	"context"
	"time"

	"github.com/yabetsTesfaye/addiscares-backend/pkg/domain"
)

// Principal is one registered actor.
type Principal struct {
	ID        domain.PrincipalID
	Name      string
	Role      domain.Role
	Active    bool
	CreatedAt time.Time
}

// Store is interface-driven for the same reason the notification store is:
// memory for tests, Postgres for production, chosen once at startup.
type Store interface {
	// Save inserts or replaces a principal record.
	Save(ctx context.Context, p Principal) error

	// FindByID returns the principal. Errors: sentinel.ErrNotFound.
	FindByID(ctx context.Context, id domain.PrincipalID) (Principal, error)

	// ListByRole returns the active principals holding a role.
	ListByRole(ctx context.Context, role domain.Role) ([]Principal, error)
}
