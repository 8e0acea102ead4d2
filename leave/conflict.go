package leave

import "github.com/warp/leave-engine/calendar"

// =============================================================================
// CONFLICT DETECTION - Team overlap screening
// =============================================================================

// Candidate is the shape of a request being screened for conflicts before
// submission. It does not need an id or a status yet.
type Candidate struct {
	UserID    string
	ManagerID string
	StartDate calendar.Date
	EndDate   calendar.Date
}

// FindConflicts returns every existing request that overlaps the candidate
// within the same organizational unit. Results keep the order of existing.
//
// A conflict is advisory: the submitter is warned and may proceed anyway.
//
// An existing request conflicts when all of:
//   - it belongs to someone else,
//   - it is still open (pending or approved),
//   - the two parties share a unit: same manager, the other party IS the
//     candidate's manager, or the candidate is the other party's manager,
//   - the date ranges overlap, endpoints inclusive.
func FindConflicts(candidate Candidate, existing []*LeaveRequest) []*LeaveRequest {
	var conflicts []*LeaveRequest
	for _, r := range existing {
		if r.UserID == candidate.UserID {
			continue
		}
		if !r.IsOpen() {
			continue
		}
		if !sameUnit(candidate, r) {
			continue
		}
		if candidate.StartDate.BeforeOrEqual(r.EndDate) && candidate.EndDate.AfterOrEqual(r.StartDate) {
			conflicts = append(conflicts, r)
		}
	}
	return conflicts
}

// sameUnit implements the flat single-manager-level relation. Deeper
// hierarchies would need an explicit org-tree traversal.
func sameUnit(candidate Candidate, r *LeaveRequest) bool {
	return r.ManagerID == candidate.ManagerID ||
		r.UserID == candidate.ManagerID ||
		r.ManagerID == candidate.UserID
}
