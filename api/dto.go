/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  JSON structures for API communication, decoupling the domain model
  from the external contract. Decimal amounts are rendered as float64
  for clients; dates as YYYY-MM-DD strings.

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients

VALIDATION:
  Validation happens in handlers, not in DTOs. DTOs are pure data
  carriers.

SEE ALSO:
  - handlers.go: Uses these types
*/
package api

import (
	"time"

	"github.com/warp/leave-engine/leave"
)

// =============================================================================
// RESPONSE TYPES
// =============================================================================

// UserDTO represents a user in API responses.
type UserDTO struct {
	ID                 string  `json:"id"`
	Name               string  `json:"name"`
	Role               string  `json:"role"`
	AnnualLeaveBalance float64 `json:"annual_leave_balance"`
	Avatar             string  `json:"avatar,omitempty"`
	LineID             string  `json:"line_id,omitempty"`
	ManagerID          string  `json:"manager_id,omitempty"`
}

func toUserDTO(u *leave.User) UserDTO {
	balance, _ := u.AnnualLeaveBalance.Float64()
	return UserDTO{
		ID:                 u.ID,
		Name:               u.Name,
		Role:               string(u.Role),
		AnnualLeaveBalance: balance,
		Avatar:             u.Avatar,
		LineID:             u.LineID,
		ManagerID:          u.ManagerID,
	}
}

// RequestDTO represents a leave request in API responses.
type RequestDTO struct {
	ID         string  `json:"id"`
	UserID     string  `json:"user_id"`
	UserName   string  `json:"user_name"`
	Type       string  `json:"type"`
	StartDate  string  `json:"start_date"`
	EndDate    string  `json:"end_date"`
	Session    string  `json:"session"`
	Days       float64 `json:"days"`
	Reason     string  `json:"reason"`
	DeputyID   string  `json:"deputy_id"`
	DeputyName string  `json:"deputy_name"`
	ManagerID  string  `json:"manager_id"`
	Status     string  `json:"status"`
	Comment    string  `json:"comment,omitempty"`
	CreatedAt  string  `json:"created_at"`
}

func toRequestDTO(r *leave.LeaveRequest) RequestDTO {
	days, _ := r.Days.Float64()
	return RequestDTO{
		ID:         r.ID,
		UserID:     r.UserID,
		UserName:   r.UserName,
		Type:       string(r.Type),
		StartDate:  r.StartDate.String(),
		EndDate:    r.EndDate.String(),
		Session:    string(r.Session),
		Days:       days,
		Reason:     r.Reason,
		DeputyID:   r.DeputyID,
		DeputyName: r.DeputyName,
		ManagerID:  r.ManagerID,
		Status:     string(r.Status),
		Comment:    r.Comment,
		CreatedAt:  r.CreatedAt.Format(time.RFC3339),
	}
}

func toRequestDTOs(requests []*leave.LeaveRequest) []RequestDTO {
	dtos := make([]RequestDTO, len(requests))
	for i, r := range requests {
		dtos[i] = toRequestDTO(r)
	}
	return dtos
}

// NotificationDTO represents a notification in API responses.
type NotificationDTO struct {
	ID               string `json:"id"`
	UserID           string `json:"user_id"`
	Title            string `json:"title"`
	Message          string `json:"message"`
	IsRead           bool   `json:"is_read"`
	CreatedAt        string `json:"created_at"`
	RelatedRequestID string `json:"related_request_id,omitempty"`
}

func toNotificationDTO(n *leave.Notification) NotificationDTO {
	return NotificationDTO{
		ID:               n.ID,
		UserID:           n.UserID,
		Title:            n.Title,
		Message:          n.Message,
		IsRead:           n.IsRead,
		CreatedAt:        n.CreatedAt.Format(time.RFC3339),
		RelatedRequestID: n.RelatedRequestID,
	}
}

// NotificationListDTO bundles a user's inbox with its unread count.
type NotificationListDTO struct {
	Notifications []NotificationDTO `json:"notifications"`
	UnreadCount   int               `json:"unread_count"`
}

// PreviewDTO is the response to a submission preview: the computed day
// count plus any advisory conflicts.
type PreviewDTO struct {
	Days      float64      `json:"days"`
	Conflicts []RequestDTO `json:"conflicts"`
}

// UsageDTO summarizes a user's approved leave by type.
type UsageDTO struct {
	UserID     string             `json:"user_id"`
	DaysByType map[string]float64 `json:"days_by_type"`
}

// MemberStatsDTO is one row of a manager's team statistics.
type MemberStatsDTO struct {
	UserID     string             `json:"user_id"`
	UserName   string             `json:"user_name"`
	DaysByType map[string]float64 `json:"days_by_type"`
}

func toMemberStatsDTO(m leave.MemberStats) MemberStatsDTO {
	byType := make(map[string]float64, len(m.DaysByType))
	for t, d := range m.DaysByType {
		f, _ := d.Float64()
		byType[string(t)] = f
	}
	return MemberStatsDTO{UserID: m.UserID, UserName: m.UserName, DaysByType: byType}
}

// SessionDTO carries the current-user pointer.
type SessionDTO struct {
	CurrentUserID string `json:"current_user_id"`
}

// =============================================================================
// REQUEST TYPES
// =============================================================================

// SubmitRequest is the body for submitting a leave request.
// AcknowledgeConflicts lets the submitter proceed past an advisory
// conflict warning.
type SubmitRequest struct {
	UserID               string `json:"user_id"`
	Type                 string `json:"type"`
	StartDate            string `json:"start_date"`
	EndDate              string `json:"end_date"`
	Session              string `json:"session"`
	Reason               string `json:"reason"`
	DeputyID             string `json:"deputy_id"`
	AcknowledgeConflicts bool   `json:"acknowledge_conflicts"`
}

// DecisionRequest is the body for approve/reject operations.
type DecisionRequest struct {
	Comment string `json:"comment"`
}

// ConflictErrorDTO is returned with 409 when an unacknowledged
// submission overlaps teammates' leave.
type ConflictErrorDTO struct {
	Error     string       `json:"error"`
	Conflicts []RequestDTO `json:"conflicts"`
}
