package leave

import "github.com/shopspring/decimal"

// =============================================================================
// USAGE STATISTICS - Read-only aggregation over requests
// =============================================================================

// UsedDays sums the stored day counts of a user's approved requests of
// one leave type. Pending and rejected requests never count as usage.
func UsedDays(requests []*LeaveRequest, userID string, t Type) decimal.Decimal {
	total := decimal.Zero
	for _, r := range requests {
		if r.UserID == userID && r.Status == StatusApproved && r.Type == t {
			total = total.Add(r.Days)
		}
	}
	return total
}

// MemberStats is one team member's approved usage broken down by type.
type MemberStats struct {
	UserID     string
	UserName   string
	DaysByType map[Type]decimal.Decimal
}

// TeamStats aggregates approved usage for every member reporting to the
// given manager. Members appear in order of first appearance in requests.
func TeamStats(requests []*LeaveRequest, managerID string) []MemberStats {
	index := make(map[string]int)
	var stats []MemberStats

	for _, r := range requests {
		if r.ManagerID != managerID || r.Status != StatusApproved {
			continue
		}
		i, ok := index[r.UserID]
		if !ok {
			i = len(stats)
			index[r.UserID] = i
			stats = append(stats, MemberStats{
				UserID:   r.UserID,
				UserName: r.UserName,
				DaysByType: map[Type]decimal.Decimal{
					TypeAnnual:        decimal.Zero,
					TypeSick:          decimal.Zero,
					TypePersonal:      decimal.Zero,
					TypeCompassionate: decimal.Zero,
				},
			})
		}
		stats[i].DaysByType[r.Type] = stats[i].DaysByType[r.Type].Add(r.Days)
	}
	return stats
}

// PendingCount returns how many requests await a manager's decision.
func PendingCount(requests []*LeaveRequest, managerID string) int {
	count := 0
	for _, r := range requests {
		if r.ManagerID == managerID && r.Status == StatusPending {
			count++
		}
	}
	return count
}

// UnreadCount returns how many of the notifications are unread.
func UnreadCount(notifications []*Notification) int {
	count := 0
	for _, n := range notifications {
		if !n.IsRead {
			count++
		}
	}
	return count
}
