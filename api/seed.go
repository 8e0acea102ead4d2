/*
seed.go - Demo dataset loader

PURPOSE:
  Seeds a small team so the engine can be exercised immediately: two
  employees reporting to one manager, with a few historical requests.
  Records use fixed ids, so reloading the seed is idempotent.
*/
package api

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/warp/leave-engine/calendar"
	"github.com/warp/leave-engine/leave"
)

func seedUsers() []*leave.User {
	return []*leave.User{
		{
			ID:                 "u1",
			Name:               "Alice Chen",
			Role:               leave.RoleEmployee,
			AnnualLeaveBalance: decimal.NewFromInt(14),
			Avatar:             "https://picsum.photos/seed/alice/100/100",
			LineID:             "line_alice_001",
			ManagerID:          "u3",
		},
		{
			ID:                 "u2",
			Name:               "Bob Wang",
			Role:               leave.RoleEmployee,
			AnnualLeaveBalance: decimal.NewFromInt(12),
			Avatar:             "https://picsum.photos/seed/bob/100/100",
			LineID:             "line_bob_002",
			ManagerID:          "u3",
		},
		{
			ID:                 "u3",
			Name:               "Carol Lin",
			Role:               leave.RoleManager,
			AnnualLeaveBalance: decimal.NewFromInt(20),
			Avatar:             "https://picsum.photos/seed/carol/100/100",
			LineID:             "line_carol_003",
		},
	}
}

func seedRequests() []*leave.LeaveRequest {
	return []*leave.LeaveRequest{
		{
			ID:         "r1",
			UserID:     "u1",
			UserName:   "Alice Chen",
			Type:       leave.TypeAnnual,
			StartDate:  calendar.MustParseDate("2025-05-20"),
			EndDate:    calendar.MustParseDate("2025-05-22"),
			Session:    calendar.SessionFull,
			Days:       decimal.NewFromInt(3),
			Reason:     "Family trip to Japan",
			DeputyID:   "u2",
			DeputyName: "Bob Wang",
			ManagerID:  "u3",
			Status:     leave.StatusApproved,
			CreatedAt:  time.Date(2025, time.May, 1, 10, 0, 0, 0, time.UTC),
		},
		{
			ID:         "r2",
			UserID:     "u1",
			UserName:   "Alice Chen",
			Type:       leave.TypeSick,
			StartDate:  calendar.MustParseDate("2025-06-02"),
			EndDate:    calendar.MustParseDate("2025-06-02"),
			Session:    calendar.SessionFull,
			Days:       decimal.NewFromInt(1),
			Reason:     "Fever and a cold",
			DeputyID:   "u2",
			DeputyName: "Bob Wang",
			ManagerID:  "u3",
			Status:     leave.StatusPending,
			CreatedAt:  time.Date(2025, time.June, 1, 8, 30, 0, 0, time.UTC),
		},
		{
			ID:         "r3",
			UserID:     "u2",
			UserName:   "Bob Wang",
			Type:       leave.TypePersonal,
			StartDate:  calendar.MustParseDate("2025-05-23"),
			EndDate:    calendar.MustParseDate("2025-05-23"),
			Session:    calendar.SessionFull,
			Days:       decimal.NewFromInt(1),
			Reason:     "Errands at home",
			DeputyID:   "u1",
			DeputyName: "Alice Chen",
			ManagerID:  "u3",
			Status:     leave.StatusApproved,
			CreatedAt:  time.Date(2025, time.May, 21, 14, 0, 0, 0, time.UTC),
		},
	}
}

// Seed writes the demo dataset atomically.
func Seed(ctx context.Context, store leave.TxStore) error {
	err := store.WithTx(ctx, func(s leave.Store) error {
		for _, u := range seedUsers() {
			if err := s.SaveUser(ctx, u); err != nil {
				return err
			}
		}
		for _, r := range seedRequests() {
			if err := s.SaveRequest(ctx, r); err != nil {
				return err
			}
		}
		return s.SetCurrentUserID(ctx, "u1")
	})
	if err != nil {
		return fmt.Errorf("seed: %w", err)
	}
	return nil
}

// SeedIfEmpty loads the demo dataset only when no users exist yet.
func SeedIfEmpty(ctx context.Context, store leave.TxStore) (bool, error) {
	users, err := store.ListUsers(ctx)
	if err != nil {
		return false, err
	}
	if len(users) > 0 {
		return false, nil
	}
	return true, Seed(ctx, store)
}
