/*
store.go - Persistence interface for the three collections

PURPOSE:
  Defines the seam between the lifecycle engine and storage. The engine
  owns all business rules; a Store only loads and saves the users,
  requests, and notifications collections plus the current-user pointer.

ATOMICITY CONTRACT:
  Within a single lifecycle operation, a balance mutation and its
  notification must land together or not at all. TxStore.WithTx is the
  boundary the engine uses: implementations either run fn inside a real
  database transaction (sqlite) or under a snapshot with rollback
  (memory).

ORDERING:
  List methods return records newest-first. The engine itself is
  order-agnostic on input; the convention exists for the rendering layer.

IMPLEMENTATIONS:
  - leave/store:  In-memory, for tests and dev
  - store/sqlite: SQLite-backed, for the server binary

SEE ALSO:
  - lifecycle.go: The only writer of users and requests
*/
package leave

import "context"

// Store handles persistence of the engine's collections.
//
// Get methods return the package's NotFound sentinel errors when the id
// does not exist. Save methods insert or overwrite by id.
type Store interface {
	GetUser(ctx context.Context, id string) (*User, error)
	ListUsers(ctx context.Context) ([]*User, error)
	SaveUser(ctx context.Context, u *User) error

	GetRequest(ctx context.Context, id string) (*LeaveRequest, error)
	ListRequests(ctx context.Context) ([]*LeaveRequest, error)
	SaveRequest(ctx context.Context, r *LeaveRequest) error
	// DeleteRequest removes the record entirely from the active set.
	// Returns ErrRequestNotFound if the id does not exist.
	DeleteRequest(ctx context.Context, id string) error

	GetNotification(ctx context.Context, id string) (*Notification, error)
	// ListNotifications returns the notifications addressed to one user,
	// newest-first.
	ListNotifications(ctx context.Context, userID string) ([]*Notification, error)
	SaveNotification(ctx context.Context, n *Notification) error

	// CurrentUserID is the identity-switch pointer owned by the UI
	// collaborator. Empty string when unset.
	CurrentUserID(ctx context.Context) (string, error)
	SetCurrentUserID(ctx context.Context, id string) error
}

// TxStore wraps Store with an atomic execution boundary.
type TxStore interface {
	Store

	// WithTx executes fn atomically: if fn returns an error, none of its
	// writes are visible afterwards.
	WithTx(ctx context.Context, fn func(Store) error) error
}
