/*
handlers.go - HTTP API handlers for the leave engine

PURPOSE:
  Exposes the lifecycle engine, workday calculator, and conflict
  detector over REST. Handles HTTP request/response, JSON
  serialization, and the validation class the core deliberately does
  not re-check.

ENDPOINTS:
  Users:
    GET    /api/users				List all users
    GET    /api/users/{id}			Get user
    GET    /api/users/{id}/requests		User's requests
    GET    /api/users/{id}/usage		Approved days by leave type
    GET    /api/users/{id}/notifications	Inbox with unread count

  Requests:
    GET    /api/requests			All requests (newest first)
    POST   /api/requests			Submit (validates, screens conflicts)
    POST   /api/requests/preview		Day count + conflicts, no submission
    POST   /api/requests/{id}/approve		Approve with optional comment
    POST   /api/requests/{id}/reject		Reject with optional comment
    DELETE /api/requests/{id}			Manager delete with balance reversal

  Managers:
    GET    /api/managers/{id}/pending		Pending queue
    GET    /api/managers/{id}/stats		Team usage statistics

  Notifications:
    POST   /api/notifications/{id}/read	Mark read (idempotent)

  Session:
    GET    /api/session				Current user pointer
    PUT    /api/session				Switch current user

VALIDATION (owned here, per the engine's documented preconditions):
  - required fields, known type/session values
  - start_date <= end_date
  - half-day session only with a single-day range
  - zero chargeable days rejects the submission outright

ERROR HANDLING:
  - 400: Validation errors, invalid input
  - 404: Missing user/request/notification
  - 409: Unacknowledged team conflict (advisory, resubmit with
         acknowledge_conflicts to override)
  - 500: Internal errors

SECURITY NOTE:
  No authentication or authorization. Delete is a manager-only
  operation by convention; enforcing the actor's identity belongs to
  an auth layer this service does not have.

SEE ALSO:
  - dto.go:    Request/response data structures
  - server.go: Router setup and middleware
*/
package api

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"

	"github.com/warp/leave-engine/calendar"
	"github.com/warp/leave-engine/leave"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Store     leave.TxStore
	Lifecycle *leave.Lifecycle
	Calendar  calendar.Calendar
	Log       *logrus.Logger
}

// NewHandler creates a handler over the given store, using the fixed
// holiday calendar.
func NewHandler(store leave.TxStore) *Handler {
	return &Handler{
		Store:     store,
		Lifecycle: leave.NewLifecycle(store),
		Calendar:  calendar.Taiwan(),
		Log:       logrus.StandardLogger(),
	}
}

// =============================================================================
// USER HANDLERS
// =============================================================================

// ListUsers returns all users.
func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.Store.ListUsers(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list users", err)
		return
	}

	dtos := make([]UserDTO, len(users))
	for i, u := range users {
		dtos[i] = toUserDTO(u)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// GetUser returns a single user.
func (h *Handler) GetUser(w http.ResponseWriter, r *http.Request) {
	u, err := h.Store.GetUser(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, "Failed to get user", err)
		return
	}
	writeJSON(w, http.StatusOK, toUserDTO(u))
}

// ListUserRequests returns one user's leave requests, newest first.
func (h *Handler) ListUserRequests(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "id")
	requests, err := h.Store.ListRequests(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list requests", err)
		return
	}

	var mine []*leave.LeaveRequest
	for _, req := range requests {
		if req.UserID == userID {
			mine = append(mine, req)
		}
	}
	writeJSON(w, http.StatusOK, toRequestDTOs(mine))
}

// GetUsage returns a user's approved days broken down by leave type.
func (h *Handler) GetUsage(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "id")
	requests, err := h.Store.ListRequests(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list requests", err)
		return
	}

	byType := make(map[string]float64, 4)
	for _, t := range []leave.Type{leave.TypeAnnual, leave.TypeSick, leave.TypePersonal, leave.TypeCompassionate} {
		used, _ := leave.UsedDays(requests, userID, t).Float64()
		byType[string(t)] = used
	}
	writeJSON(w, http.StatusOK, UsageDTO{UserID: userID, DaysByType: byType})
}

// ListUserNotifications returns a user's inbox with its unread count.
func (h *Handler) ListUserNotifications(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "id")
	notifications, err := h.Store.ListNotifications(r.Context(), userID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list notifications", err)
		return
	}

	dtos := make([]NotificationDTO, len(notifications))
	for i, n := range notifications {
		dtos[i] = toNotificationDTO(n)
	}
	writeJSON(w, http.StatusOK, NotificationListDTO{
		Notifications: dtos,
		UnreadCount:   leave.UnreadCount(notifications),
	})
}

// =============================================================================
// REQUEST HANDLERS
// =============================================================================

// ListRequests returns all requests, newest first.
func (h *Handler) ListRequests(w http.ResponseWriter, r *http.Request) {
	requests, err := h.Store.ListRequests(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list requests", err)
		return
	}
	writeJSON(w, http.StatusOK, toRequestDTOs(requests))
}

// validatedSubmission is the result of screening a SubmitRequest.
type validatedSubmission struct {
	request   leave.LeaveRequest
	conflicts []*leave.LeaveRequest
}

// validateSubmission enforces the engine's documented preconditions and
// computes the chargeable day count and advisory conflicts.
func (h *Handler) validateSubmission(r *http.Request, body SubmitRequest) (*validatedSubmission, error) {
	ctx := r.Context()

	if body.DeputyID == "" {
		return nil, &leave.ValidationError{Field: "deputy_id", Message: "a deputy is required"}
	}
	leaveType := leave.Type(body.Type)
	if !leaveType.Valid() {
		return nil, &leave.ValidationError{Field: "type", Message: "unknown leave type"}
	}
	session := calendar.Session(body.Session)
	if !session.Valid() {
		return nil, &leave.ValidationError{Field: "session", Message: "unknown session"}
	}

	start, err := calendar.ParseDate(body.StartDate)
	if err != nil {
		return nil, &leave.ValidationError{Field: "start_date", Message: "expected YYYY-MM-DD"}
	}
	end, err := calendar.ParseDate(body.EndDate)
	if err != nil {
		return nil, &leave.ValidationError{Field: "end_date", Message: "expected YYYY-MM-DD"}
	}
	if start.After(end) {
		return nil, &leave.ValidationError{Field: "start_date", Message: "start date is after end date"}
	}
	if session.IsHalfDay() && !start.Equal(end) {
		return nil, &leave.ValidationError{Field: "session", Message: "half-day sessions require a single-day range"}
	}

	user, err := h.Store.GetUser(ctx, body.UserID)
	if err != nil {
		return nil, err
	}
	if user.ManagerID == "" {
		return nil, &leave.ValidationError{Field: "user_id", Message: "user has no manager to review the request"}
	}
	deputy, err := h.Store.GetUser(ctx, body.DeputyID)
	if err != nil {
		return nil, fmt.Errorf("deputy: %w", err)
	}
	if deputy.ID == user.ID {
		return nil, &leave.ValidationError{Field: "deputy_id", Message: "deputy must be another user"}
	}

	days := calendar.WorkDays(start, end, session, h.Calendar)
	if days.IsZero() {
		return nil, &leave.ValidationError{Field: "start_date", Message: "no working days in the selected range"}
	}

	existing, err := h.Store.ListRequests(ctx)
	if err != nil {
		return nil, err
	}
	conflicts := leave.FindConflicts(leave.Candidate{
		UserID:    user.ID,
		ManagerID: user.ManagerID,
		StartDate: start,
		EndDate:   end,
	}, existing)

	return &validatedSubmission{
		request: leave.LeaveRequest{
			UserID:     user.ID,
			UserName:   user.Name,
			Type:       leaveType,
			StartDate:  start,
			EndDate:    end,
			Session:    session,
			Days:       days,
			Reason:     body.Reason,
			DeputyID:   deputy.ID,
			DeputyName: deputy.Name,
			ManagerID:  user.ManagerID,
		},
		conflicts: conflicts,
	}, nil
}

// PreviewRequest computes the chargeable day count and conflict set for
// a draft submission without recording anything.
func (h *Handler) PreviewRequest(w http.ResponseWriter, r *http.Request) {
	var body SubmitRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	sub, err := h.validateSubmission(r, body)
	if err != nil {
		writeDomainError(w, "Invalid submission", err)
		return
	}

	days, _ := sub.request.Days.Float64()
	writeJSON(w, http.StatusOK, PreviewDTO{
		Days:      days,
		Conflicts: toRequestDTOs(sub.conflicts),
	})
}

// SubmitRequest validates a submission, screens it for team conflicts,
// and records it. Conflicts are advisory: the response is 409 with the
// conflicting requests unless the submitter acknowledged them.
func (h *Handler) SubmitRequest(w http.ResponseWriter, r *http.Request) {
	var body SubmitRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	sub, err := h.validateSubmission(r, body)
	if err != nil {
		writeDomainError(w, "Invalid submission", err)
		return
	}

	if len(sub.conflicts) > 0 && !body.AcknowledgeConflicts {
		writeJSON(w, http.StatusConflict, ConflictErrorDTO{
			Error:     "teammates already have leave in this period",
			Conflicts: toRequestDTOs(sub.conflicts),
		})
		return
	}

	created, err := h.Lifecycle.Create(r.Context(), leave.CreateInput{Request: sub.request})
	if err != nil {
		writeDomainError(w, "Failed to create request", err)
		return
	}

	h.Log.WithFields(logrus.Fields{
		"request_id": created.ID,
		"user_id":    created.UserID,
		"days":       created.Days.String(),
	}).Info("leave request submitted")

	writeJSON(w, http.StatusCreated, toRequestDTO(created))
}

// ApproveRequest approves a pending request, debiting the balance for
// annual leave.
func (h *Handler) ApproveRequest(w http.ResponseWriter, r *http.Request) {
	h.decide(w, r, leave.StatusApproved)
}

// RejectRequest rejects a request; balances are untouched.
func (h *Handler) RejectRequest(w http.ResponseWriter, r *http.Request) {
	h.decide(w, r, leave.StatusRejected)
}

func (h *Handler) decide(w http.ResponseWriter, r *http.Request, status leave.Status) {
	id := chi.URLParam(r, "id")

	var body DecisionRequest
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid request body", err)
			return
		}
	}

	if err := h.Lifecycle.SetStatus(r.Context(), id, status, body.Comment); err != nil {
		writeDomainError(w, "Failed to update request", err)
		return
	}

	updated, err := h.Store.GetRequest(r.Context(), id)
	if err != nil {
		writeDomainError(w, "Failed to load request", err)
		return
	}
	writeJSON(w, http.StatusOK, toRequestDTO(updated))
}

// DeleteRequest removes a request, crediting the balance back when the
// request was approved annual leave.
func (h *Handler) DeleteRequest(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.Lifecycle.Delete(r.Context(), id); err != nil {
		writeDomainError(w, "Failed to delete request", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// =============================================================================
// MANAGER HANDLERS
// =============================================================================

// ListPendingRequests returns the requests awaiting a manager's decision.
func (h *Handler) ListPendingRequests(w http.ResponseWriter, r *http.Request) {
	managerID := chi.URLParam(r, "id")
	requests, err := h.Store.ListRequests(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list requests", err)
		return
	}

	var pending []*leave.LeaveRequest
	for _, req := range requests {
		if req.ManagerID == managerID && req.Status == leave.StatusPending {
			pending = append(pending, req)
		}
	}
	writeJSON(w, http.StatusOK, toRequestDTOs(pending))
}

// GetTeamStats returns per-member approved usage for a manager's team.
func (h *Handler) GetTeamStats(w http.ResponseWriter, r *http.Request) {
	managerID := chi.URLParam(r, "id")
	requests, err := h.Store.ListRequests(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list requests", err)
		return
	}

	stats := leave.TeamStats(requests, managerID)
	dtos := make([]MemberStatsDTO, len(stats))
	for i, m := range stats {
		dtos[i] = toMemberStatsDTO(m)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// =============================================================================
// NOTIFICATION HANDLERS
// =============================================================================

// MarkNotificationRead flips the read flag on a notification.
func (h *Handler) MarkNotificationRead(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.Lifecycle.MarkNotificationRead(r.Context(), id); err != nil {
		writeDomainError(w, "Failed to mark notification read", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// =============================================================================
// SESSION HANDLERS
// =============================================================================

// GetSession returns the current-user pointer.
func (h *Handler) GetSession(w http.ResponseWriter, r *http.Request) {
	id, err := h.Store.CurrentUserID(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to read session", err)
		return
	}
	writeJSON(w, http.StatusOK, SessionDTO{CurrentUserID: id})
}

// SetSession switches the current user.
func (h *Handler) SetSession(w http.ResponseWriter, r *http.Request) {
	var body SessionDTO
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	// The pointer must reference an existing user.
	if _, err := h.Store.GetUser(r.Context(), body.CurrentUserID); err != nil {
		writeDomainError(w, "Failed to switch user", err)
		return
	}
	if err := h.Store.SetCurrentUserID(r.Context(), body.CurrentUserID); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to switch user", err)
		return
	}
	writeJSON(w, http.StatusOK, body)
}

// =============================================================================
// SEED HANDLER
// =============================================================================

// LoadSeed resets the store to the demo dataset.
func (h *Handler) LoadSeed(w http.ResponseWriter, r *http.Request) {
	if err := Seed(r.Context(), h.Store); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load seed data", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "seeded"})
}

// =============================================================================
// RESPONSE HELPERS
// =============================================================================

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	body := map[string]string{"error": message}
	if err != nil {
		body["detail"] = err.Error()
	}
	writeJSON(w, status, body)
}

// writeDomainError maps engine errors onto HTTP status codes.
func writeDomainError(w http.ResponseWriter, message string, err error) {
	switch {
	case leave.IsNotFound(err):
		writeError(w, http.StatusNotFound, message, err)
	case leave.IsValidation(err):
		writeError(w, http.StatusBadRequest, message, err)
	default:
		writeError(w, http.StatusInternalServerError, message, err)
	}
}
