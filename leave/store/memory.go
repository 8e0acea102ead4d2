// Package store provides the in-memory leave.Store implementation,
// used by tests and the dev server.
package store

import (
	"context"
	"sync"

	"github.com/warp/leave-engine/leave"
)

// =============================================================================
// MEMORY STORE - In-memory implementation (for testing/dev)
// =============================================================================

// Memory holds the three collections plus the current-user pointer.
// Records are copied on the way in and out so callers never alias
// stored state.
type Memory struct {
	mu sync.RWMutex

	users         map[string]leave.User
	requests      map[string]leave.LeaveRequest
	notifications map[string]leave.Notification

	// Insertion order per collection; lists are returned reversed so the
	// newest record comes first.
	userOrder    []string
	requestOrder []string
	notifOrder   []string

	currentUserID string
}

func NewMemory() *Memory {
	return &Memory{
		users:         make(map[string]leave.User),
		requests:      make(map[string]leave.LeaveRequest),
		notifications: make(map[string]leave.Notification),
	}
}

var _ leave.TxStore = (*Memory)(nil)

// -----------------------------------------------------------------------------
// Users
// -----------------------------------------------------------------------------

func (m *Memory) GetUser(_ context.Context, id string) (*leave.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	u, ok := m.users[id]
	if !ok {
		return nil, leave.ErrUserNotFound
	}
	return &u, nil
}

func (m *Memory) ListUsers(_ context.Context) ([]*leave.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*leave.User, 0, len(m.userOrder))
	for i := len(m.userOrder) - 1; i >= 0; i-- {
		u := m.users[m.userOrder[i]]
		out = append(out, &u)
	}
	return out, nil
}

func (m *Memory) SaveUser(_ context.Context, u *leave.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[u.ID]; !ok {
		m.userOrder = append(m.userOrder, u.ID)
	}
	m.users[u.ID] = *u
	return nil
}

// -----------------------------------------------------------------------------
// Requests
// -----------------------------------------------------------------------------

func (m *Memory) GetRequest(_ context.Context, id string) (*leave.LeaveRequest, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	r, ok := m.requests[id]
	if !ok {
		return nil, leave.ErrRequestNotFound
	}
	return &r, nil
}

func (m *Memory) ListRequests(_ context.Context) ([]*leave.LeaveRequest, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*leave.LeaveRequest, 0, len(m.requestOrder))
	for i := len(m.requestOrder) - 1; i >= 0; i-- {
		r := m.requests[m.requestOrder[i]]
		out = append(out, &r)
	}
	return out, nil
}

func (m *Memory) SaveRequest(_ context.Context, r *leave.LeaveRequest) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.requests[r.ID]; !ok {
		m.requestOrder = append(m.requestOrder, r.ID)
	}
	m.requests[r.ID] = *r
	return nil
}

func (m *Memory) DeleteRequest(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.requests[id]; !ok {
		return leave.ErrRequestNotFound
	}
	delete(m.requests, id)
	for i, rid := range m.requestOrder {
		if rid == id {
			m.requestOrder = append(m.requestOrder[:i], m.requestOrder[i+1:]...)
			break
		}
	}
	return nil
}

// -----------------------------------------------------------------------------
// Notifications
// -----------------------------------------------------------------------------

func (m *Memory) GetNotification(_ context.Context, id string) (*leave.Notification, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	n, ok := m.notifications[id]
	if !ok {
		return nil, leave.ErrNotificationNotFound
	}
	return &n, nil
}

func (m *Memory) ListNotifications(_ context.Context, userID string) ([]*leave.Notification, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*leave.Notification
	for i := len(m.notifOrder) - 1; i >= 0; i-- {
		n := m.notifications[m.notifOrder[i]]
		if n.UserID == userID {
			out = append(out, &n)
		}
	}
	return out, nil
}

func (m *Memory) SaveNotification(_ context.Context, n *leave.Notification) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.notifications[n.ID]; !ok {
		m.notifOrder = append(m.notifOrder, n.ID)
	}
	m.notifications[n.ID] = *n
	return nil
}

// -----------------------------------------------------------------------------
// Current user pointer
// -----------------------------------------------------------------------------

func (m *Memory) CurrentUserID(_ context.Context) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.currentUserID, nil
}

func (m *Memory) SetCurrentUserID(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.currentUserID = id
	return nil
}

// -----------------------------------------------------------------------------
// Transaction boundary
// -----------------------------------------------------------------------------

// WithTx runs fn against the store, restoring a snapshot of all state
// when fn fails. Single-writer by construction; the snapshot only needs
// to guard against partial application within one operation.
func (m *Memory) WithTx(_ context.Context, fn func(leave.Store) error) error {
	snapshot := m.snapshot()
	if err := fn(m); err != nil {
		m.restore(snapshot)
		return err
	}
	return nil
}

type memorySnapshot struct {
	users         map[string]leave.User
	requests      map[string]leave.LeaveRequest
	notifications map[string]leave.Notification
	userOrder     []string
	requestOrder  []string
	notifOrder    []string
	currentUserID string
}

func (m *Memory) snapshot() memorySnapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s := memorySnapshot{
		users:         make(map[string]leave.User, len(m.users)),
		requests:      make(map[string]leave.LeaveRequest, len(m.requests)),
		notifications: make(map[string]leave.Notification, len(m.notifications)),
		userOrder:     append([]string(nil), m.userOrder...),
		requestOrder:  append([]string(nil), m.requestOrder...),
		notifOrder:    append([]string(nil), m.notifOrder...),
		currentUserID: m.currentUserID,
	}
	for k, v := range m.users {
		s.users[k] = v
	}
	for k, v := range m.requests {
		s.requests[k] = v
	}
	for k, v := range m.notifications {
		s.notifications[k] = v
	}
	return s
}

func (m *Memory) restore(s memorySnapshot) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.users = s.users
	m.requests = s.requests
	m.notifications = s.notifications
	m.userOrder = s.userOrder
	m.requestOrder = s.requestOrder
	m.notifOrder = s.notifOrder
	m.currentUserID = s.currentUserID
}
