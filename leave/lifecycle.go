/*
lifecycle.go - Leave request state machine and side effects

PURPOSE:
  Governs the status transitions of leave requests and the side effects
  that must accompany each transition: balance debit on approval,
  balance credit on deletion of an approved request, and notification
  emission for every operation.

STATE MACHINE:

  ┌─────────┐   approve    ┌──────────┐
  │ PENDING │─────────────▶│ APPROVED │──▶ balance debit (annual only)
  └─────────┘              └──────────┘
       │        reject     ┌──────────┐
       └──────────────────▶│ REJECTED │     no balance change
                           └──────────┘

  Deletion is not a transition: it removes the record, crediting the
  balance back first when the request was approved and balance-bearing.

PRECONDITIONS (caller's responsibility, not re-checked here):
  - start <= end, deputy selected, days > 0
  - half-day session only with a single-day range
  - Days already computed by calendar.WorkDays; never recomputed here

IDEMPOTENCE:
  The approval debit is gated strictly on "was not already APPROVED", so
  repeating an identical approval changes the balance exactly once.

ATOMICITY:
  Every operation runs inside one TxStore.WithTx: the status change, the
  balance mutation, and the notifications land together or not at all.

SEE ALSO:
  - ledger.go:   The balance mutation primitive
  - conflict.go: Pre-submission screening, called by the API layer
*/
package leave

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// =============================================================================
// LIFECYCLE - Stateful orchestrator over the three collections
// =============================================================================

// Lifecycle creates, decides, and deletes leave requests. It is the only
// writer of request records and user balances.
//
// The engine assumes a single acting user per operation; a multi-writer
// deployment would need serialized access at the persistence boundary.
type Lifecycle struct {
	store TxStore

	// Overridable for tests.
	now   func() time.Time
	newID func() string
}

func NewLifecycle(store TxStore) *Lifecycle {
	return &Lifecycle{
		store: store,
		now:   time.Now,
		newID: uuid.NewString,
	}
}

// CreateInput carries a validated submission. The API layer has already
// rejected inverted ranges, empty deputies, zero-day ranges, and
// half-day sessions on multi-day ranges, and has computed Days.
type CreateInput struct {
	Request LeaveRequest
}

// Create records a new pending request and notifies the deputy and the
// manager. Balances are untouched; only approval debits.
func (l *Lifecycle) Create(ctx context.Context, input CreateInput) (*LeaveRequest, error) {
	req := input.Request
	req.ID = l.newID()
	req.Status = StatusPending
	req.CreatedAt = l.now()

	err := l.store.WithTx(ctx, func(s Store) error {
		if err := s.SaveRequest(ctx, &req); err != nil {
			return err
		}

		deputyNote := &Notification{
			ID:     l.newID(),
			UserID: req.DeputyID,
			Title:  "Deputy assignment",
			Message: fmt.Sprintf("%s has designated you as deputy from %s to %s.",
				req.UserName, req.StartDate, req.EndDate),
			CreatedAt:        l.now(),
			RelatedRequestID: req.ID,
		}
		if err := s.SaveNotification(ctx, deputyNote); err != nil {
			return err
		}

		managerNote := &Notification{
			ID:     l.newID(),
			UserID: req.ManagerID,
			Title:  "Leave request awaiting review",
			Message: fmt.Sprintf("%s has submitted a %s request.",
				req.UserName, req.Type),
			CreatedAt:        l.now(),
			RelatedRequestID: req.ID,
		}
		return s.SaveNotification(ctx, managerNote)
	})
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	return &req, nil
}

// SetStatus applies a manager decision. Approving a balance-bearing
// request debits the requester by the request's stored day count, clamped
// at zero; the debit is skipped when the request was already approved.
// Status and comment are updated unconditionally, and the requester is
// notified of the outcome.
func (l *Lifecycle) SetStatus(ctx context.Context, requestID string, status Status, comment string) error {
	if !status.Valid() {
		return fmt.Errorf("set status %s: %w", status, ErrInvalidStatus)
	}

	err := l.store.WithTx(ctx, func(s Store) error {
		req, err := s.GetRequest(ctx, requestID)
		if err != nil {
			return err
		}

		if status == StatusApproved && req.Status != StatusApproved && req.Type.BearsBalance() {
			ledger := NewBalanceLedger(s)
			if _, err := ledger.Debit(ctx, req.UserID, req.Days); err != nil {
				return err
			}
		}

		req.Status = status
		req.Comment = comment
		if err := s.SaveRequest(ctx, req); err != nil {
			return err
		}

		outcome := "approved"
		if status == StatusRejected {
			outcome = "rejected"
		}
		message := fmt.Sprintf("Your %s request starting %s has been %s.", req.Type, req.StartDate, outcome)
		if comment != "" {
			message += " Manager comment: " + comment
		}

		return s.SaveNotification(ctx, &Notification{
			ID:               l.newID(),
			UserID:           req.UserID,
			Title:            fmt.Sprintf("Leave request %s", outcome),
			Message:          message,
			CreatedAt:        l.now(),
			RelatedRequestID: req.ID,
		})
	})
	if err != nil {
		return fmt.Errorf("set status of %s: %w", requestID, err)
	}
	return nil
}

// Delete removes a request entirely, reversing the approval debit when
// the request was approved and balance-bearing. The credit uses the
// stored day count, never a recomputation from the dates. The requester
// is notified of the removal.
//
// The engine does not check the actor's identity; the authorization
// layer guarantees a manager is invoking this.
func (l *Lifecycle) Delete(ctx context.Context, requestID string) error {
	err := l.store.WithTx(ctx, func(s Store) error {
		req, err := s.GetRequest(ctx, requestID)
		if err != nil {
			return err
		}

		if req.Status == StatusApproved && req.Type.BearsBalance() {
			ledger := NewBalanceLedger(s)
			if err := ledger.Credit(ctx, req.UserID, req.Days); err != nil {
				return err
			}
		}

		if err := s.DeleteRequest(ctx, req.ID); err != nil {
			return err
		}

		return s.SaveNotification(ctx, &Notification{
			ID:     l.newID(),
			UserID: req.UserID,
			Title:  "Leave request removed",
			Message: fmt.Sprintf("Your leave request starting %s has been removed by your manager.",
				req.StartDate),
			CreatedAt: l.now(),
		})
	})
	if err != nil {
		return fmt.Errorf("delete request %s: %w", requestID, err)
	}
	return nil
}

// MarkNotificationRead flips the read flag. Idempotent; no other effects.
func (l *Lifecycle) MarkNotificationRead(ctx context.Context, notificationID string) error {
	err := l.store.WithTx(ctx, func(s Store) error {
		n, err := s.GetNotification(ctx, notificationID)
		if err != nil {
			return err
		}
		if n.IsRead {
			return nil
		}
		n.IsRead = true
		return s.SaveNotification(ctx, n)
	})
	if err != nil {
		return fmt.Errorf("mark notification %s read: %w", notificationID, err)
	}
	return nil
}
