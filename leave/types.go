/*
Package leave implements the leave request lifecycle engine.

PURPOSE:
  Tracks employee leave requests against a finite annual allowance,
  enforces the two-party approval workflow, and flags team scheduling
  conflicts.

KEY CONCEPTS IN THIS FILE (types.go):
  - User:         An employee with a mutable annual-leave balance and a
                  flat manager back-reference
  - LeaveRequest: A dated request with a precomputed chargeable day count
  - Notification: An in-app message emitted by lifecycle operations

DESIGN PRINCIPLES:
  1. Precision: decimal.Decimal for balances and day counts, so half
     days are exact
  2. Stored days are authoritative: balance mutations always use the
     day count computed at submission time, never a recomputation
  3. The manager reference is a lookup id, not an ownership edge

SEE ALSO:
  - lifecycle.go: Status transitions and their side effects
  - conflict.go:  Team overlap detection
  - ledger.go:    Balance debit/credit
*/
package leave

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/warp/leave-engine/calendar"
)

// =============================================================================
// USER
// =============================================================================

type Role string

const (
	RoleEmployee Role = "EMPLOYEE"
	RoleManager  Role = "MANAGER"
	RoleAdmin    Role = "ADMIN"
)

// User is an employee record. AnnualLeaveBalance is mutated only by the
// lifecycle engine through the balance ledger.
type User struct {
	ID                 string
	Name               string
	Role               Role
	AnnualLeaveBalance decimal.Decimal
	Avatar             string
	LineID             string

	// ManagerID is a lookup reference into the user collection,
	// empty for users with no manager.
	ManagerID string
}

// =============================================================================
// LEAVE REQUEST
// =============================================================================

type Type string

const (
	TypeAnnual        Type = "annual"
	TypeSick          Type = "sick"
	TypePersonal      Type = "personal"
	TypeCompassionate Type = "compassionate"
)

// BearsBalance reports whether approving this leave type debits the
// annual allowance. Other types are tracked for statistics only.
func (t Type) BearsBalance() bool { return t == TypeAnnual }

func (t Type) Valid() bool {
	switch t {
	case TypeAnnual, TypeSick, TypePersonal, TypeCompassionate:
		return true
	}
	return false
}

type Status string

const (
	StatusPending   Status = "PENDING"
	StatusApproved  Status = "APPROVED"
	StatusRejected  Status = "REJECTED"
	StatusCancelled Status = "CANCELLED"
)

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusRejected, StatusCancelled:
		return true
	}
	return false
}

// LeaveRequest is a request for time off.
//
// Days is computed by calendar.WorkDays at submission time and is never
// recomputed afterwards: any balance debit or credit must use this stored
// value so that a reversal exactly undoes the original debit even if the
// holiday table changes later.
type LeaveRequest struct {
	ID         string
	UserID     string
	UserName   string
	Type       Type
	StartDate  calendar.Date
	EndDate    calendar.Date
	Session    calendar.Session
	Days       decimal.Decimal
	Reason     string
	DeputyID   string
	DeputyName string
	ManagerID  string
	Status     Status
	Comment    string
	CreatedAt  time.Time
}

// IsOpen reports whether the request still occupies its date range for
// conflict purposes.
func (r *LeaveRequest) IsOpen() bool {
	return r.Status == StatusPending || r.Status == StatusApproved
}

// =============================================================================
// NOTIFICATION
// =============================================================================

// Notification is an in-app message addressed to one user. Created only
// by lifecycle operations; the only permitted mutation is flipping IsRead.
type Notification struct {
	ID               string
	UserID           string
	Title            string
	Message          string
	IsRead           bool
	CreatedAt        time.Time
	RelatedRequestID string
}
