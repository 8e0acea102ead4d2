/*
ledger.go - Balance debit and credit

PURPOSE:
  The single place where annual-leave balances change. Keeping the
  mutation behind an explicit ledger object makes the debit/credit
  invariant auditable: Credit(days) exactly reverses Debit(days) for the
  same stored day count.

POLICY CLAMP:
  A debit never drives a balance negative. If the requested days exceed
  the remaining balance, the balance clamps to zero and the operation
  proceeds; approval authority is absolute, there is no hard allowance
  ceiling. Because of the clamp, Debit returns the amount actually
  removed so callers that need exact symmetry can observe it.

SEE ALSO:
  - lifecycle.go: Debits on approval, credits on deletion of an
    approved balance-bearing request
*/
package leave

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
)

// BalanceLedger mutates user balances through a Store.
type BalanceLedger struct {
	store Store
}

func NewBalanceLedger(store Store) *BalanceLedger {
	return &BalanceLedger{store: store}
}

// Debit removes days from the user's annual-leave balance, clamped at
// zero. Returns the amount actually debited.
func (l *BalanceLedger) Debit(ctx context.Context, userID string, days decimal.Decimal) (decimal.Decimal, error) {
	u, err := l.store.GetUser(ctx, userID)
	if err != nil {
		return decimal.Zero, fmt.Errorf("debit %s: %w", userID, err)
	}

	debited := days
	next := u.AnnualLeaveBalance.Sub(days)
	if next.IsNegative() {
		debited = u.AnnualLeaveBalance
		next = decimal.Zero
	}

	u.AnnualLeaveBalance = next
	if err := l.store.SaveUser(ctx, u); err != nil {
		return decimal.Zero, fmt.Errorf("debit %s: %w", userID, err)
	}
	return debited, nil
}

// Credit returns days to the user's annual-leave balance.
func (l *BalanceLedger) Credit(ctx context.Context, userID string, days decimal.Decimal) error {
	u, err := l.store.GetUser(ctx, userID)
	if err != nil {
		return fmt.Errorf("credit %s: %w", userID, err)
	}

	u.AnnualLeaveBalance = u.AnnualLeaveBalance.Add(days)
	if err := l.store.SaveUser(ctx, u); err != nil {
		return fmt.Errorf("credit %s: %w", userID, err)
	}
	return nil
}
