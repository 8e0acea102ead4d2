/*
Package sqlite provides the SQLite-backed leave.Store implementation.

PURPOSE:
  Persists the users, requests, and notifications collections plus the
  current-user pointer. The same patterns apply to PostgreSQL - only
  minor SQL dialect differences.

KEY TABLES:
  users:          Employee records with annual-leave balances
  requests:       Leave requests with stored chargeable day counts
  notifications:  In-app messages emitted by lifecycle operations
  app_state:      Key/value scalars (current_user_id)

ATOMICITY:
  WithTx wraps a database transaction. A lifecycle operation that
  touches a balance, a request, and a notification commits them as one
  unit - no partial application.

SERIALIZATION:
  Dates are stored as YYYY-MM-DD text, timestamps as RFC3339 text, and
  decimal amounts as exact decimal strings. Newest-first ordering comes
  from rowid; updates preserve rowid via ON CONFLICT DO UPDATE.

WAL MODE:
  The database is opened with WAL so readers don't block the single
  writer and crash recovery is cheap.

USAGE:
  store, err := sqlite.New("./data/leave.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

  engine := leave.NewLifecycle(store)

SEE ALSO:
  - leave/store.go:        Interface definition
  - leave/store/memory.go: In-memory implementation for testing
*/
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"

	"github.com/warp/leave-engine/calendar"
	"github.com/warp/leave-engine/leave"
)

// Store implements leave.TxStore using SQLite.
type Store struct {
	db *sql.DB
	queries
}

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite allows one writer; a single pooled connection also keeps
	// ":memory:" databases from splitting across connections.
	db.SetMaxOpenConns(1)

	s := &Store{db: db, queries: queries{q: db}}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

var _ leave.TxStore = (*Store)(nil)

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS users (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		role TEXT NOT NULL,
		annual_leave_balance TEXT NOT NULL,
		avatar TEXT NOT NULL DEFAULT '',
		line_id TEXT NOT NULL DEFAULT '',
		manager_id TEXT NOT NULL DEFAULT ''
	);

	CREATE TABLE IF NOT EXISTS requests (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		user_name TEXT NOT NULL,
		leave_type TEXT NOT NULL,
		start_date TEXT NOT NULL,
		end_date TEXT NOT NULL,
		session TEXT NOT NULL,
		days TEXT NOT NULL,
		reason TEXT NOT NULL DEFAULT '',
		deputy_id TEXT NOT NULL,
		deputy_name TEXT NOT NULL DEFAULT '',
		manager_id TEXT NOT NULL,
		status TEXT NOT NULL,
		comment TEXT NOT NULL DEFAULT '',
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_requests_user ON requests(user_id);
	CREATE INDEX IF NOT EXISTS idx_requests_manager_status ON requests(manager_id, status);
	CREATE INDEX IF NOT EXISTS idx_requests_dates ON requests(start_date, end_date);

	CREATE TABLE IF NOT EXISTS notifications (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		title TEXT NOT NULL,
		message TEXT NOT NULL,
		is_read INTEGER NOT NULL DEFAULT 0,
		created_at TEXT NOT NULL,
		related_request_id TEXT NOT NULL DEFAULT ''
	);

	CREATE INDEX IF NOT EXISTS idx_notifications_user ON notifications(user_id);

	CREATE TABLE IF NOT EXISTS app_state (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);
	`
	_, err := s.db.Exec(schema)
	return err
}

// WithTx executes fn inside a database transaction.
func (s *Store) WithTx(ctx context.Context, fn func(leave.Store) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	if err := fn(&txStore{queries{q: tx}}); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return errors.Join(err, rbErr)
		}
		return err
	}
	return tx.Commit()
}

// txStore is the transactional view handed to WithTx callbacks.
type txStore struct {
	queries
}

var _ leave.Store = (*txStore)(nil)

// =============================================================================
// QUERIES - Shared between the root store and transactional views
// =============================================================================

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type queries struct {
	q querier
}

// -----------------------------------------------------------------------------
// Users
// -----------------------------------------------------------------------------

const userColumns = "id, name, role, annual_leave_balance, avatar, line_id, manager_id"

func (s queries) GetUser(ctx context.Context, id string) (*leave.User, error) {
	row := s.q.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE id = ?", id)
	u, err := scanUser(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, leave.ErrUserNotFound
	}
	return u, err
}

func (s queries) ListUsers(ctx context.Context) ([]*leave.User, error) {
	rows, err := s.q.QueryContext(ctx,
		"SELECT "+userColumns+" FROM users ORDER BY rowid DESC")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []*leave.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

func (s queries) SaveUser(ctx context.Context, u *leave.User) error {
	_, err := s.q.ExecContext(ctx, `
		INSERT INTO users (id, name, role, annual_leave_balance, avatar, line_id, manager_id)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			role = excluded.role,
			annual_leave_balance = excluded.annual_leave_balance,
			avatar = excluded.avatar,
			line_id = excluded.line_id,
			manager_id = excluded.manager_id`,
		u.ID, u.Name, string(u.Role), u.AnnualLeaveBalance.String(),
		u.Avatar, u.LineID, u.ManagerID)
	return err
}

type scannable interface {
	Scan(dest ...any) error
}

func scanUser(row scannable) (*leave.User, error) {
	var u leave.User
	var role, balance string
	if err := row.Scan(&u.ID, &u.Name, &role, &balance, &u.Avatar, &u.LineID, &u.ManagerID); err != nil {
		return nil, err
	}
	u.Role = leave.Role(role)

	b, err := decimal.NewFromString(balance)
	if err != nil {
		return nil, fmt.Errorf("corrupt balance for user %s: %w", u.ID, err)
	}
	u.AnnualLeaveBalance = b
	return &u, nil
}

// -----------------------------------------------------------------------------
// Requests
// -----------------------------------------------------------------------------

const requestColumns = `id, user_id, user_name, leave_type, start_date, end_date,
	session, days, reason, deputy_id, deputy_name, manager_id, status, comment, created_at`

func (s queries) GetRequest(ctx context.Context, id string) (*leave.LeaveRequest, error) {
	row := s.q.QueryRowContext(ctx,
		"SELECT "+requestColumns+" FROM requests WHERE id = ?", id)
	r, err := scanRequest(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, leave.ErrRequestNotFound
	}
	return r, err
}

func (s queries) ListRequests(ctx context.Context) ([]*leave.LeaveRequest, error) {
	rows, err := s.q.QueryContext(ctx,
		"SELECT "+requestColumns+" FROM requests ORDER BY rowid DESC")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var requests []*leave.LeaveRequest
	for rows.Next() {
		r, err := scanRequest(rows)
		if err != nil {
			return nil, err
		}
		requests = append(requests, r)
	}
	return requests, rows.Err()
}

func (s queries) SaveRequest(ctx context.Context, r *leave.LeaveRequest) error {
	_, err := s.q.ExecContext(ctx, `
		INSERT INTO requests (id, user_id, user_name, leave_type, start_date, end_date,
			session, days, reason, deputy_id, deputy_name, manager_id, status, comment, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			user_id = excluded.user_id,
			user_name = excluded.user_name,
			leave_type = excluded.leave_type,
			start_date = excluded.start_date,
			end_date = excluded.end_date,
			session = excluded.session,
			days = excluded.days,
			reason = excluded.reason,
			deputy_id = excluded.deputy_id,
			deputy_name = excluded.deputy_name,
			manager_id = excluded.manager_id,
			status = excluded.status,
			comment = excluded.comment,
			created_at = excluded.created_at`,
		r.ID, r.UserID, r.UserName, string(r.Type),
		r.StartDate.String(), r.EndDate.String(), string(r.Session),
		r.Days.String(), r.Reason, r.DeputyID, r.DeputyName,
		r.ManagerID, string(r.Status), r.Comment,
		r.CreatedAt.UTC().Format(time.RFC3339))
	return err
}

func (s queries) DeleteRequest(ctx context.Context, id string) error {
	res, err := s.q.ExecContext(ctx, "DELETE FROM requests WHERE id = ?", id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return leave.ErrRequestNotFound
	}
	return nil
}

func scanRequest(row scannable) (*leave.LeaveRequest, error) {
	var r leave.LeaveRequest
	var leaveType, start, end, session, days, status, createdAt string
	if err := row.Scan(&r.ID, &r.UserID, &r.UserName, &leaveType, &start, &end,
		&session, &days, &r.Reason, &r.DeputyID, &r.DeputyName,
		&r.ManagerID, &status, &r.Comment, &createdAt); err != nil {
		return nil, err
	}

	r.Type = leave.Type(leaveType)
	r.Session = calendar.Session(session)
	r.Status = leave.Status(status)

	var err error
	if r.StartDate, err = calendar.ParseDate(start); err != nil {
		return nil, fmt.Errorf("corrupt start_date for request %s: %w", r.ID, err)
	}
	if r.EndDate, err = calendar.ParseDate(end); err != nil {
		return nil, fmt.Errorf("corrupt end_date for request %s: %w", r.ID, err)
	}
	if r.Days, err = decimal.NewFromString(days); err != nil {
		return nil, fmt.Errorf("corrupt days for request %s: %w", r.ID, err)
	}
	if r.CreatedAt, err = time.Parse(time.RFC3339, createdAt); err != nil {
		return nil, fmt.Errorf("corrupt created_at for request %s: %w", r.ID, err)
	}
	return &r, nil
}

// -----------------------------------------------------------------------------
// Notifications
// -----------------------------------------------------------------------------

const notificationColumns = "id, user_id, title, message, is_read, created_at, related_request_id"

func (s queries) GetNotification(ctx context.Context, id string) (*leave.Notification, error) {
	row := s.q.QueryRowContext(ctx,
		"SELECT "+notificationColumns+" FROM notifications WHERE id = ?", id)
	n, err := scanNotification(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, leave.ErrNotificationNotFound
	}
	return n, err
}

func (s queries) ListNotifications(ctx context.Context, userID string) ([]*leave.Notification, error) {
	rows, err := s.q.QueryContext(ctx,
		"SELECT "+notificationColumns+" FROM notifications WHERE user_id = ? ORDER BY rowid DESC",
		userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var notifications []*leave.Notification
	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			return nil, err
		}
		notifications = append(notifications, n)
	}
	return notifications, rows.Err()
}

func (s queries) SaveNotification(ctx context.Context, n *leave.Notification) error {
	_, err := s.q.ExecContext(ctx, `
		INSERT INTO notifications (id, user_id, title, message, is_read, created_at, related_request_id)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			user_id = excluded.user_id,
			title = excluded.title,
			message = excluded.message,
			is_read = excluded.is_read,
			created_at = excluded.created_at,
			related_request_id = excluded.related_request_id`,
		n.ID, n.UserID, n.Title, n.Message, boolToInt(n.IsRead),
		n.CreatedAt.UTC().Format(time.RFC3339), n.RelatedRequestID)
	return err
}

func scanNotification(row scannable) (*leave.Notification, error) {
	var n leave.Notification
	var isRead int
	var createdAt string
	if err := row.Scan(&n.ID, &n.UserID, &n.Title, &n.Message, &isRead,
		&createdAt, &n.RelatedRequestID); err != nil {
		return nil, err
	}
	n.IsRead = isRead != 0

	var err error
	if n.CreatedAt, err = time.Parse(time.RFC3339, createdAt); err != nil {
		return nil, fmt.Errorf("corrupt created_at for notification %s: %w", n.ID, err)
	}
	return &n, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// -----------------------------------------------------------------------------
// Current user pointer
// -----------------------------------------------------------------------------

const currentUserKey = "current_user_id"

func (s queries) CurrentUserID(ctx context.Context) (string, error) {
	var value string
	err := s.q.QueryRowContext(ctx,
		"SELECT value FROM app_state WHERE key = ?", currentUserKey).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	return value, err
}

func (s queries) SetCurrentUserID(ctx context.Context, id string) error {
	_, err := s.q.ExecContext(ctx, `
		INSERT INTO app_state (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		currentUserKey, id)
	return err
}
