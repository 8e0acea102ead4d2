package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/leave-engine/api"
	"github.com/warp/leave-engine/leave"
	"github.com/warp/leave-engine/leave/store"
)

// =============================================================================
// TEST SETUP
// =============================================================================

func newTestServer(t *testing.T) (*httptest.Server, *store.Memory) {
	t.Helper()
	mem := store.NewMemory()
	require.NoError(t, api.Seed(context.Background(), mem))

	srv := httptest.NewServer(api.NewRouter(api.NewHandler(mem)))
	t.Cleanup(srv.Close)
	return srv, mem
}

func doJSON(t *testing.T, method, url string, body any) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, url, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&v))
	return v
}

// Submission for Bob (u2): a plain midweek annual day that does not
// overlap the seeded team requests.
func quietSubmission() api.SubmitRequest {
	return api.SubmitRequest{
		UserID:    "u2",
		Type:      "annual",
		StartDate: "2025-07-15",
		EndDate:   "2025-07-15",
		Session:   "FULL",
		Reason:    "errand",
		DeputyID:  "u1",
	}
}

// =============================================================================
// SUBMISSION
// =============================================================================

func TestSubmitRequest_Valid(t *testing.T) {
	srv, mem := newTestServer(t)

	resp := doJSON(t, http.MethodPost, srv.URL+"/api/requests", quietSubmission())
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	created := decode[api.RequestDTO](t, resp)
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, "PENDING", created.Status)
	assert.Equal(t, 1.0, created.Days)
	assert.Equal(t, "u3", created.ManagerID)

	// Deputy and manager are notified
	deputyInbox, err := mem.ListNotifications(context.Background(), "u1")
	require.NoError(t, err)
	assert.Len(t, deputyInbox, 1)
	managerInbox, err := mem.ListNotifications(context.Background(), "u3")
	require.NoError(t, err)
	assert.Len(t, managerInbox, 1)
}

func TestSubmitRequest_ValidationErrors(t *testing.T) {
	srv, _ := newTestServer(t)

	cases := []struct {
		name   string
		mutate func(*api.SubmitRequest)
	}{
		{"inverted range", func(s *api.SubmitRequest) {
			s.StartDate, s.EndDate = "2025-07-16", "2025-07-15"
		}},
		{"half-day multi-day", func(s *api.SubmitRequest) {
			s.EndDate = "2025-07-16"
			s.Session = "AM"
		}},
		{"weekend only", func(s *api.SubmitRequest) {
			s.StartDate, s.EndDate = "2025-07-19", "2025-07-20"
		}},
		{"missing deputy", func(s *api.SubmitRequest) { s.DeputyID = "" }},
		{"self deputy", func(s *api.SubmitRequest) { s.DeputyID = "u2" }},
		{"unknown type", func(s *api.SubmitRequest) { s.Type = "sabbatical" }},
		{"unknown session", func(s *api.SubmitRequest) { s.Session = "NIGHT" }},
		{"bad date format", func(s *api.SubmitRequest) { s.StartDate = "07/15/2025" }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			body := quietSubmission()
			tc.mutate(&body)
			resp := doJSON(t, http.MethodPost, srv.URL+"/api/requests", body)
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		})
	}
}

func TestSubmitRequest_UnknownUser(t *testing.T) {
	srv, _ := newTestServer(t)
	body := quietSubmission()
	body.UserID = "ghost"

	resp := doJSON(t, http.MethodPost, srv.URL+"/api/requests", body)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestSubmitRequest_ConflictAdvisory(t *testing.T) {
	// GIVEN: Alice's seeded approved leave 2025-05-20..22
	// WHEN: Bob submits 2025-05-21..23 without acknowledging
	// THEN: 409 with the conflicting request; acknowledging proceeds

	srv, _ := newTestServer(t)

	body := quietSubmission()
	body.StartDate, body.EndDate = "2025-05-21", "2025-05-23"

	resp := doJSON(t, http.MethodPost, srv.URL+"/api/requests", body)
	require.Equal(t, http.StatusConflict, resp.StatusCode)

	conflictErr := decode[api.ConflictErrorDTO](t, resp)
	require.Len(t, conflictErr.Conflicts, 1)
	assert.Equal(t, "r1", conflictErr.Conflicts[0].ID)

	body.AcknowledgeConflicts = true
	resp = doJSON(t, http.MethodPost, srv.URL+"/api/requests", body)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
}

func TestPreviewRequest_ComputesWithoutRecording(t *testing.T) {
	srv, mem := newTestServer(t)

	body := quietSubmission()
	body.StartDate, body.EndDate = "2025-05-21", "2025-05-23"

	resp := doJSON(t, http.MethodPost, srv.URL+"/api/requests/preview", body)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	preview := decode[api.PreviewDTO](t, resp)
	assert.Equal(t, 3.0, preview.Days)
	require.Len(t, preview.Conflicts, 1)

	requests, err := mem.ListRequests(context.Background())
	require.NoError(t, err)
	assert.Len(t, requests, 3, "preview must not create a request")
}

// =============================================================================
// DECISIONS AND DELETION
// =============================================================================

func userBalance(t *testing.T, srv *httptest.Server, id string) float64 {
	t.Helper()
	resp := doJSON(t, http.MethodGet, srv.URL+"/api/users/"+id, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	return decode[api.UserDTO](t, resp).AnnualLeaveBalance
}

func TestApproveRequest_DebitsBalance(t *testing.T) {
	srv, _ := newTestServer(t)

	resp := doJSON(t, http.MethodPost, srv.URL+"/api/requests", quietSubmission())
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	created := decode[api.RequestDTO](t, resp)

	require.Equal(t, 12.0, userBalance(t, srv, "u2"))

	resp = doJSON(t, http.MethodPost,
		fmt.Sprintf("%s/api/requests/%s/approve", srv.URL, created.ID),
		api.DecisionRequest{Comment: "have fun"})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	updated := decode[api.RequestDTO](t, resp)
	assert.Equal(t, "APPROVED", updated.Status)
	assert.Equal(t, "have fun", updated.Comment)
	assert.Equal(t, 11.0, userBalance(t, srv, "u2"))
}

func TestRejectRequest_NoDebit(t *testing.T) {
	srv, _ := newTestServer(t)

	resp := doJSON(t, http.MethodPost, srv.URL+"/api/requests", quietSubmission())
	created := decode[api.RequestDTO](t, resp)

	resp = doJSON(t, http.MethodPost,
		fmt.Sprintf("%s/api/requests/%s/reject", srv.URL, created.ID), nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "REJECTED", decode[api.RequestDTO](t, resp).Status)

	assert.Equal(t, 12.0, userBalance(t, srv, "u2"))
}

func TestDeleteRequest_ReversesApproval(t *testing.T) {
	// Seeded r1 is Alice's approved 3-day annual request. Deleting it
	// credits her balance back.
	srv, mem := newTestServer(t)

	require.Equal(t, 14.0, userBalance(t, srv, "u1"))

	resp := doJSON(t, http.MethodDelete, srv.URL+"/api/requests/r1", nil)
	require.Equal(t, http.StatusNoContent, resp.StatusCode)

	assert.Equal(t, 17.0, userBalance(t, srv, "u1"),
		"seed balance does not pre-deduct r1, so deletion credits on top")

	_, err := mem.GetRequest(context.Background(), "r1")
	assert.True(t, leave.IsNotFound(err))
}

func TestDecision_UnknownRequest_NotFound(t *testing.T) {
	srv, _ := newTestServer(t)

	resp := doJSON(t, http.MethodPost, srv.URL+"/api/requests/ghost/approve", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = doJSON(t, http.MethodDelete, srv.URL+"/api/requests/ghost", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

// =============================================================================
// QUERIES
// =============================================================================

func TestListUserRequests_FiltersByUser(t *testing.T) {
	srv, _ := newTestServer(t)

	resp := doJSON(t, http.MethodGet, srv.URL+"/api/users/u1/requests", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	requests := decode[[]api.RequestDTO](t, resp)
	require.Len(t, requests, 2)
	for _, r := range requests {
		assert.Equal(t, "u1", r.UserID)
	}
}

func TestGetUsage_ApprovedByType(t *testing.T) {
	srv, _ := newTestServer(t)

	resp := doJSON(t, http.MethodGet, srv.URL+"/api/users/u1/usage", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	usage := decode[api.UsageDTO](t, resp)
	assert.Equal(t, 3.0, usage.DaysByType["annual"], "seeded approved trip")
	assert.Equal(t, 0.0, usage.DaysByType["sick"], "pending sick leave is not usage")
}

func TestGetTeamStats(t *testing.T) {
	srv, _ := newTestServer(t)

	resp := doJSON(t, http.MethodGet, srv.URL+"/api/managers/u3/stats", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	stats := decode[[]api.MemberStatsDTO](t, resp)
	require.Len(t, stats, 2)
}

func TestListPendingRequests(t *testing.T) {
	srv, _ := newTestServer(t)

	resp := doJSON(t, http.MethodGet, srv.URL+"/api/managers/u3/pending", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	pending := decode[[]api.RequestDTO](t, resp)
	require.Len(t, pending, 1)
	assert.Equal(t, "r2", pending[0].ID)
}

// =============================================================================
// NOTIFICATIONS AND SESSION
// =============================================================================

func TestNotifications_MarkRead(t *testing.T) {
	srv, _ := newTestServer(t)

	// Generate a notification for the manager
	resp := doJSON(t, http.MethodPost, srv.URL+"/api/requests", quietSubmission())
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp = doJSON(t, http.MethodGet, srv.URL+"/api/users/u3/notifications", nil)
	inbox := decode[api.NotificationListDTO](t, resp)
	require.Equal(t, 1, inbox.UnreadCount)
	id := inbox.Notifications[0].ID

	resp = doJSON(t, http.MethodPost, srv.URL+"/api/notifications/"+id+"/read", nil)
	require.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp = doJSON(t, http.MethodGet, srv.URL+"/api/users/u3/notifications", nil)
	inbox = decode[api.NotificationListDTO](t, resp)
	assert.Equal(t, 0, inbox.UnreadCount)
	assert.True(t, inbox.Notifications[0].IsRead)
}

func TestSession_SwitchUser(t *testing.T) {
	srv, _ := newTestServer(t)

	resp := doJSON(t, http.MethodGet, srv.URL+"/api/session", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "u1", decode[api.SessionDTO](t, resp).CurrentUserID)

	resp = doJSON(t, http.MethodPut, srv.URL+"/api/session", api.SessionDTO{CurrentUserID: "u3"})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = doJSON(t, http.MethodGet, srv.URL+"/api/session", nil)
	assert.Equal(t, "u3", decode[api.SessionDTO](t, resp).CurrentUserID)
}

func TestSession_UnknownUser(t *testing.T) {
	srv, _ := newTestServer(t)
	resp := doJSON(t, http.MethodPut, srv.URL+"/api/session", api.SessionDTO{CurrentUserID: "ghost"})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
