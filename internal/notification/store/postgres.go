package store

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/yabetsTesfaye/addiscares-backend/internal/notification/models"
	"github.com/yabetsTesfaye/addiscares-backend/pkg/domain"
	"github.com/yabetsTesfaye/addiscares-backend/pkg/platform/sentinel"
)

//go:embed schema.sql
var schema string

// PostgresStore is the production Store. The readBy ledger and hiddenFor set
// are child tables; "append if absent" is INSERT ... ON CONFLICT DO NOTHING,
// so concurrent markAsRead calls for different users both land without a
// lost update, and repeats are no-ops at the constraint level.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// EnsureSchema creates the notification tables when absent. Idempotent.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("apply notification schema: %w", err)
	}
	return nil
}

const notificationColumns = `n.id, n.title, n.message, n.sender, n.recipient, n.is_broadcast, n.type,
	n.read, n.is_deleted, n.last_modified_by, n.last_modified_at,
	n.original_title, n.original_message, n.report_id, n.created_at, n.updated_at`

// visibleWhere is the SQL mirror of models.VisibleTo. $1 is the principal;
// $2 is the role for member visibility. Admins skip the addressing match
// entirely (oversight policy), so their variant binds only $1.
const (
	visibleWhereBase = `n.is_deleted = false
	AND n.sender <> $1
	AND NOT EXISTS (SELECT 1 FROM notification_hidden h WHERE h.notification_id = n.id AND h.user_id = $1)`

	memberMatch = `
	AND (
		n.is_broadcast
		OR n.recipient = $1
		OR EXISTS (
			SELECT 1 FROM notification_recipients r
			WHERE r.notification_id = n.id
			  AND (r.user_id = $1 OR (r.user_id IS NULL AND r.role = $2))
		)
	)`

	readByUserExpr = `EXISTS (SELECT 1 FROM notification_reads nr WHERE nr.notification_id = n.id AND nr.user_id = $1)`
)

func visibleWhere(role domain.Role) (clause string, args int) {
	if role == domain.RoleAdmin {
		return visibleWhereBase, 1
	}
	return visibleWhereBase + memberMatch, 2
}

func (s *PostgresStore) Create(ctx context.Context, n *models.Notification) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin create: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	_, err = tx.ExecContext(ctx, `
		INSERT INTO notifications (id, title, message, sender, recipient, is_broadcast, type,
			read, is_deleted, report_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		uuid.UUID(n.ID), n.Title, n.Message, uuid.UUID(n.Sender), nullableID(n.Recipient),
		n.IsBroadcast, n.Type.String(), n.Read, n.IsDeleted, nullableString(string(n.Report)),
		n.CreatedAt, n.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert notification: %w", err)
	}

	for i, e := range n.Recipients {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO notification_recipients (notification_id, position, role, user_id, read)
			VALUES ($1, $2, $3, $4, $5)`,
			uuid.UUID(n.ID), i, nullableString(e.Role.String()), nullableID(e.User), e.Read,
		)
		if err != nil {
			return fmt.Errorf("insert recipient entry: %w", err)
		}
	}

	for _, r := range n.ReadBy {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO notification_reads (notification_id, user_id, read_at)
			VALUES ($1, $2, $3)
			ON CONFLICT (notification_id, user_id) DO NOTHING`,
			uuid.UUID(n.ID), uuid.UUID(r.User), r.ReadAt,
		)
		if err != nil {
			return fmt.Errorf("insert read receipt: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit create: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindByID(ctx context.Context, id domain.NotificationID) (*models.Notification, error) {
	return s.findByID(ctx, s.db, id)
}

type querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (s *PostgresStore) findByID(ctx context.Context, q querier, id domain.NotificationID) (*models.Notification, error) {
	row := q.QueryRowContext(ctx, `SELECT `+notificationColumns+` FROM notifications n WHERE n.id = $1`, uuid.UUID(id))
	n, err := scanNotification(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query notification: %w", err)
	}
	if err := s.loadChildren(ctx, q, map[domain.NotificationID]*models.Notification{n.ID: n}); err != nil {
		return nil, err
	}
	return n, nil
}

func (s *PostgresStore) ListForUser(ctx context.Context, user domain.PrincipalID, role domain.Role, opts models.ListOptions) ([]models.InboxItem, error) {
	opts = opts.Normalize()
	where, argc := visibleWhere(role)

	query := `SELECT ` + notificationColumns + `, ` + readByUserExpr + ` AS read_by_user
		FROM notifications n WHERE ` + where
	args := []any{uuid.UUID(user)}
	if argc == 2 {
		args = append(args, role.String())
	}
	if opts.ReadFilter != nil {
		if *opts.ReadFilter {
			query += ` AND ` + readByUserExpr
		} else {
			query += ` AND NOT ` + readByUserExpr
		}
	}
	query += fmt.Sprintf(` ORDER BY n.created_at DESC, n.id OFFSET $%d LIMIT $%d`, len(args)+1, len(args)+2)
	args = append(args, opts.Skip, opts.Limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query inbox: %w", err)
	}
	defer rows.Close()

	var items []models.InboxItem
	byID := make(map[domain.NotificationID]*models.Notification)
	for rows.Next() {
		n, readByUser, err := scanInboxRow(rows)
		if err != nil {
			return nil, fmt.Errorf("scan inbox row: %w", err)
		}
		byID[n.ID] = n
		items = append(items, models.InboxItem{Notification: n, ReadByUser: readByUser})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate inbox: %w", err)
	}
	if err := s.loadChildren(ctx, s.db, byID); err != nil {
		return nil, err
	}
	return items, nil
}

func (s *PostgresStore) ListSent(ctx context.Context, sender domain.PrincipalID) ([]*models.Notification, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+notificationColumns+`
		FROM notifications n WHERE n.sender = $1 ORDER BY n.created_at DESC, n.id`, uuid.UUID(sender))
	if err != nil {
		return nil, fmt.Errorf("query sent: %w", err)
	}
	defer rows.Close()

	var sent []*models.Notification
	byID := make(map[domain.NotificationID]*models.Notification)
	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			return nil, fmt.Errorf("scan sent row: %w", err)
		}
		byID[n.ID] = n
		sent = append(sent, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sent: %w", err)
	}
	if err := s.loadChildren(ctx, s.db, byID); err != nil {
		return nil, err
	}
	return sent, nil
}

func (s *PostgresStore) ListUnreadIDs(ctx context.Context, user domain.PrincipalID, role domain.Role) ([]domain.NotificationID, error) {
	where, argc := visibleWhere(role)
	query := `SELECT n.id FROM notifications n WHERE ` + where + ` AND NOT ` + readByUserExpr
	args := []any{uuid.UUID(user)}
	if argc == 2 {
		args = append(args, role.String())
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query unread ids: %w", err)
	}
	defer rows.Close()

	var ids []domain.NotificationID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan unread id: %w", err)
		}
		ids = append(ids, domain.NotificationID(id))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate unread ids: %w", err)
	}
	return ids, nil
}

func (s *PostgresStore) CountUnread(ctx context.Context, user domain.PrincipalID, role domain.Role) (int, error) {
	where, argc := visibleWhere(role)
	query := `SELECT COUNT(*) FROM notifications n WHERE ` + where + ` AND NOT ` + readByUserExpr
	args := []any{uuid.UUID(user)}
	if argc == 2 {
		args = append(args, role.String())
	}

	var count int
	if err := s.db.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("count unread: %w", err)
	}
	return count, nil
}

func (s *PostgresStore) MarkRead(ctx context.Context, id domain.NotificationID, user domain.PrincipalID, at time.Time) (*models.Notification, bool, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, false, fmt.Errorf("begin mark read: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	// Lock the document row first so concurrent recomputes for the same
	// notification serialize; the ledger inserts themselves never conflict.
	var locked uuid.UUID
	err = tx.QueryRowContext(ctx, `SELECT id FROM notifications WHERE id = $1 FOR UPDATE`, uuid.UUID(id)).Scan(&locked)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, false, fmt.Errorf("lock notification: %w", err)
	}

	res, err := tx.ExecContext(ctx, `
		INSERT INTO notification_reads (notification_id, user_id, read_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (notification_id, user_id) DO NOTHING`,
		uuid.UUID(id), uuid.UUID(user), at,
	)
	if err != nil {
		return nil, false, fmt.Errorf("insert read receipt: %w", err)
	}
	inserted, err := res.RowsAffected()
	if err != nil {
		return nil, false, fmt.Errorf("read receipt rows affected: %w", err)
	}
	newly := inserted > 0

	if newly {
		// Projections: per-entry read mirrors the ledger, and the aggregate
		// flag follows the per-shape rule (direct recipient read; every
		// user-addressed bulk entry read, role-only entries vacuous).
		_, err = tx.ExecContext(ctx, `
			UPDATE notification_recipients r SET read = EXISTS (
				SELECT 1 FROM notification_reads nr
				WHERE nr.notification_id = r.notification_id AND nr.user_id = r.user_id)
			WHERE r.notification_id = $1 AND r.user_id IS NOT NULL`, uuid.UUID(id))
		if err != nil {
			return nil, false, fmt.Errorf("update recipient read flags: %w", err)
		}

		_, err = tx.ExecContext(ctx, `
			UPDATE notifications n SET read = (
				CASE
					WHEN n.recipient IS NOT NULL THEN EXISTS (
						SELECT 1 FROM notification_reads nr
						WHERE nr.notification_id = n.id AND nr.user_id = n.recipient)
					WHEN EXISTS (SELECT 1 FROM notification_recipients r WHERE r.notification_id = n.id) THEN NOT EXISTS (
						SELECT 1 FROM notification_recipients r
						WHERE r.notification_id = n.id AND r.user_id IS NOT NULL
						  AND NOT EXISTS (
							SELECT 1 FROM notification_reads nr
							WHERE nr.notification_id = n.id AND nr.user_id = r.user_id))
					ELSE false
				END), updated_at = $2
			WHERE n.id = $1`, uuid.UUID(id), at)
		if err != nil {
			return nil, false, fmt.Errorf("recompute read flag: %w", err)
		}
	}

	n, err := s.findByID(ctx, tx, id)
	if err != nil {
		return nil, false, err
	}
	if err := tx.Commit(); err != nil {
		return nil, false, fmt.Errorf("commit mark read: %w", err)
	}
	return n, newly, nil
}

func (s *PostgresStore) Hide(ctx context.Context, id domain.NotificationID, user domain.PrincipalID) (bool, error) {
	var exists uuid.UUID
	err := s.db.QueryRowContext(ctx, `SELECT id FROM notifications WHERE id = $1`, uuid.UUID(id)).Scan(&exists)
	if errors.Is(err, sql.ErrNoRows) {
		return false, sentinel.ErrNotFound
	}
	if err != nil {
		return false, fmt.Errorf("query notification: %w", err)
	}

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO notification_hidden (notification_id, user_id)
		VALUES ($1, $2)
		ON CONFLICT (notification_id, user_id) DO NOTHING`,
		uuid.UUID(id), uuid.UUID(user),
	)
	if err != nil {
		return false, fmt.Errorf("insert hidden entry: %w", err)
	}
	inserted, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("hidden rows affected: %w", err)
	}
	return inserted > 0, nil
}

func (s *PostgresStore) SoftDelete(ctx context.Context, id domain.NotificationID, at time.Time) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE notifications SET is_deleted = true, updated_at = $2 WHERE id = $1`,
		uuid.UUID(id), at,
	)
	if err != nil {
		return fmt.Errorf("soft delete notification: %w", err)
	}
	return requireRow(res)
}

func (s *PostgresStore) HardDelete(ctx context.Context, id domain.NotificationID) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM notifications WHERE id = $1`, uuid.UUID(id))
	if err != nil {
		return fmt.Errorf("delete notification: %w", err)
	}
	return requireRow(res)
}

func (s *PostgresStore) Modify(ctx context.Context, id domain.NotificationID, by domain.PrincipalID, update models.ContentUpdate, at time.Time) (*models.Notification, error) {
	// First-edit capture and the edit itself happen in one statement, so the
	// snapshot can never observe a half-applied update.
	res, err := s.db.ExecContext(ctx, `
		UPDATE notifications SET
			original_title   = CASE WHEN $2::text IS NOT NULL AND original_title IS NULL THEN title ELSE original_title END,
			original_message = CASE WHEN $3::text IS NOT NULL AND original_message IS NULL THEN message ELSE original_message END,
			title            = COALESCE($2, title),
			message          = COALESCE($3, message),
			last_modified_by = $4,
			last_modified_at = $5,
			updated_at       = $5
		WHERE id = $1`,
		uuid.UUID(id), update.Title, update.Message, uuid.UUID(by), at,
	)
	if err != nil {
		return nil, fmt.Errorf("modify notification: %w", err)
	}
	if err := requireRow(res); err != nil {
		return nil, err
	}
	return s.FindByID(ctx, id)
}

func requireRow(res sql.Result) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

// loadChildren fills Recipients, ReadBy, and HiddenFor for the given
// documents in three batched queries.
func (s *PostgresStore) loadChildren(ctx context.Context, q querier, byID map[domain.NotificationID]*models.Notification) error {
	if len(byID) == 0 {
		return nil
	}
	ids := make([]string, 0, len(byID))
	for id := range byID {
		ids = append(ids, id.String())
	}

	rows, err := q.QueryContext(ctx, `
		SELECT notification_id, role, user_id, read FROM notification_recipients
		WHERE notification_id = ANY($1::uuid[]) ORDER BY notification_id, position`, pq.Array(ids))
	if err != nil {
		return fmt.Errorf("query recipient entries: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var (
			nid    uuid.UUID
			role   sql.NullString
			userID uuid.NullUUID
			read   bool
		)
		if err := rows.Scan(&nid, &role, &userID, &read); err != nil {
			return fmt.Errorf("scan recipient entry: %w", err)
		}
		n := byID[domain.NotificationID(nid)]
		n.Recipients = append(n.Recipients, models.RecipientEntry{
			Role: domain.Role(role.String),
			User: domain.PrincipalID(userID.UUID),
			Read: read,
		})
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterate recipient entries: %w", err)
	}

	reads, err := q.QueryContext(ctx, `
		SELECT notification_id, user_id, read_at FROM notification_reads
		WHERE notification_id = ANY($1::uuid[]) ORDER BY notification_id, read_at`, pq.Array(ids))
	if err != nil {
		return fmt.Errorf("query read receipts: %w", err)
	}
	defer reads.Close()
	for reads.Next() {
		var (
			nid    uuid.UUID
			userID uuid.UUID
			readAt time.Time
		)
		if err := reads.Scan(&nid, &userID, &readAt); err != nil {
			return fmt.Errorf("scan read receipt: %w", err)
		}
		n := byID[domain.NotificationID(nid)]
		n.ReadBy = append(n.ReadBy, models.ReadReceipt{User: domain.PrincipalID(userID), ReadAt: readAt})
	}
	if err := reads.Err(); err != nil {
		return fmt.Errorf("iterate read receipts: %w", err)
	}

	hidden, err := q.QueryContext(ctx, `
		SELECT notification_id, user_id FROM notification_hidden
		WHERE notification_id = ANY($1::uuid[])`, pq.Array(ids))
	if err != nil {
		return fmt.Errorf("query hidden entries: %w", err)
	}
	defer hidden.Close()
	for hidden.Next() {
		var nid, userID uuid.UUID
		if err := hidden.Scan(&nid, &userID); err != nil {
			return fmt.Errorf("scan hidden entry: %w", err)
		}
		n := byID[domain.NotificationID(nid)]
		n.HiddenFor = append(n.HiddenFor, domain.PrincipalID(userID))
	}
	if err := hidden.Err(); err != nil {
		return fmt.Errorf("iterate hidden entries: %w", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanNotification(row rowScanner, extra ...any) (*models.Notification, error) {
	var (
		n              models.Notification
		id             uuid.UUID
		sender         uuid.UUID
		recipient      uuid.NullUUID
		typ            string
		lastModifiedBy uuid.NullUUID
		lastModifiedAt sql.NullTime
		origTitle      sql.NullString
		origMessage    sql.NullString
		reportID       sql.NullString
	)
	dest := []any{
		&id, &n.Title, &n.Message, &sender, &recipient, &n.IsBroadcast, &typ,
		&n.Read, &n.IsDeleted, &lastModifiedBy, &lastModifiedAt,
		&origTitle, &origMessage, &reportID, &n.CreatedAt, &n.UpdatedAt,
	}
	dest = append(dest, extra...)
	if err := row.Scan(dest...); err != nil {
		return nil, err
	}

	n.ID = domain.NotificationID(id)
	n.Sender = domain.PrincipalID(sender)
	n.Recipient = domain.PrincipalID(recipient.UUID)
	n.Type = domain.NotificationType(typ)
	n.LastModifiedBy = domain.PrincipalID(lastModifiedBy.UUID)
	if lastModifiedAt.Valid {
		t := lastModifiedAt.Time
		n.LastModifiedAt = &t
	}
	if origTitle.Valid {
		s := origTitle.String
		n.OriginalTitle = &s
	}
	if origMessage.Valid {
		s := origMessage.String
		n.OriginalMessage = &s
	}
	n.Report = domain.ReportID(reportID.String)
	return &n, nil
}

func scanInboxRow(rows *sql.Rows) (*models.Notification, bool, error) {
	var readByUser bool
	n, err := scanNotification(rows, &readByUser)
	if err != nil {
		return nil, false, err
	}
	return n, readByUser, nil
}

func nullableID(id interface{ IsNil() bool }) any {
	switch v := id.(type) {
	case domain.PrincipalID:
		if v.IsNil() {
			return nil
		}
		return uuid.UUID(v)
	case domain.NotificationID:
		if v.IsNil() {
			return nil
		}
		return uuid.UUID(v)
	default:
		return nil
	}
}

func nullableString(s string) any {
	if s == "" {
		return nil
	}
	return s
}
