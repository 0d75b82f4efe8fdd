package directory

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/yabetsTesfaye/addiscares-backend/pkg/domain"
	"github.com/yabetsTesfaye/addiscares-backend/pkg/platform/sentinel"
)

type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// EnsureSchema creates the principals table when absent. Idempotent.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS principals (
			id         uuid PRIMARY KEY,
			name       text NOT NULL,
			role       text NOT NULL,
			active     boolean NOT NULL DEFAULT true,
			created_at timestamptz NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_principals_role ON principals (role) WHERE active`)
	if err != nil {
		return fmt.Errorf("apply principals schema: %w", err)
	}
	return nil
}

func (s *PostgresStore) Save(ctx context.Context, p Principal) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO principals (id, name, role, active, created_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name, role = EXCLUDED.role, active = EXCLUDED.active`,
		uuid.UUID(p.ID), p.Name, p.Role.String(), p.Active, p.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("upsert principal: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindByID(ctx context.Context, id domain.PrincipalID) (Principal, error) {
	var (
		p   Principal
		pid uuid.UUID
		r   string
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT id, name, role, active, created_at FROM principals WHERE id = $1`, uuid.UUID(id),
	).Scan(&pid, &p.Name, &r, &p.Active, &p.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Principal{}, sentinel.ErrNotFound
	}
	if err != nil {
		return Principal{}, fmt.Errorf("query principal: %w", err)
	}
	p.ID = domain.PrincipalID(pid)
	p.Role = domain.Role(r)
	return p, nil
}

func (s *PostgresStore) ListByRole(ctx context.Context, role domain.Role) ([]Principal, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, role, active, created_at FROM principals WHERE role = $1 AND active ORDER BY created_at`,
		role.String(),
	)
	if err != nil {
		return nil, fmt.Errorf("query principals by role: %w", err)
	}
	defer rows.Close()

	var members []Principal
	for rows.Next() {
		var (
			p   Principal
			pid uuid.UUID
			r   string
		)
		if err := rows.Scan(&pid, &p.Name, &r, &p.Active, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan principal: %w", err)
		}
		p.ID = domain.PrincipalID(pid)
		p.Role = domain.Role(r)
		members = append(members, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate principals: %w", err)
	}
	return members, nil
}
