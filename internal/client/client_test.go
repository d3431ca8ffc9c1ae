package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"helm/internal/types"
)

func TestListSessions(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/sessions" || r.Method != http.MethodGet {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		_ = json.NewEncoder(w).Encode(SessionsResponse{
			Sessions: []*types.Session{
				{ID: "s1", Title: "chat", Kind: types.SessionKindUser},
			},
		})
	}))
	defer server.Close()

	sessions, err := NewWithBaseURL(server.URL, "").ListSessions(context.Background())
	if err != nil {
		t.Fatalf("ListSessions: %v", err)
	}
	if len(sessions) != 1 || sessions[0].ID != "s1" {
		t.Fatalf("unexpected sessions: %#v", sessions)
	}
}

func TestSubmitTaskSendsBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/sessions/s1/tasks" || r.Method != http.MethodPost {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if r.Header.Get("Authorization") != "Bearer secret" {
			t.Errorf("missing bearer token")
		}
		var req SubmitTaskRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if req.Text != "summarize the logs" {
			t.Errorf("unexpected text %q", req.Text)
		}
		_ = json.NewEncoder(w).Encode(SubmitTaskResponse{OK: true, TaskID: "t1"})
	}))
	defer server.Close()

	resp, err := NewWithBaseURL(server.URL, "secret").SubmitTask(context.Background(), "s1", SubmitTaskRequest{Text: "summarize the logs"})
	if err != nil {
		t.Fatalf("SubmitTask: %v", err)
	}
	if !resp.OK || resp.TaskID != "t1" {
		t.Fatalf("unexpected response: %+v", resp)
	}
}

func TestDeleteSession(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/sessions/s1" || r.Method != http.MethodDelete {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
	}))
	defer server.Close()

	if err := NewWithBaseURL(server.URL, "").DeleteSession(context.Background(), "s1"); err != nil {
		t.Fatalf("DeleteSession: %v", err)
	}
	if err := NewWithBaseURL(server.URL, "").DeleteSession(context.Background(), " "); err == nil {
		t.Fatalf("expected validation error for blank id")
	}
}

func TestRenameSessionSendsTitle(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/sessions/s1/rename" || r.Method != http.MethodPost {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		var req RenameSessionRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if req.Title != "incident review" {
			t.Errorf("unexpected title %q", req.Title)
		}
	}))
	defer server.Close()

	c := NewWithBaseURL(server.URL, "")
	if err := c.RenameSession(context.Background(), "s1", RenameSessionRequest{Title: "incident review"}); err != nil {
		t.Fatalf("RenameSession: %v", err)
	}
	if err := c.RenameSession(context.Background(), "s1", RenameSessionRequest{}); err == nil {
		t.Fatalf("expected validation error for blank title")
	}
}

func TestCancelTaskRequiresTaskID(t *testing.T) {
	if err := NewWithBaseURL("http://127.0.0.1:0", "").CancelTask(context.Background(), "s1", " "); err == nil {
		t.Fatalf("expected validation error")
	}
}

func TestAPIErrorDecoding(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		_, _ = w.Write([]byte(`{"error":"task already terminal"}`))
	}))
	defer server.Close()

	err := NewWithBaseURL(server.URL, "").CancelTask(context.Background(), "s1", "t1")
	apiErr := AsAPIError(err)
	if apiErr == nil || apiErr.StatusCode != http.StatusConflict || apiErr.Message != "task already terminal" {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestRespondApproval(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/sessions/s1/approval" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		var req RespondApprovalRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if req.ApprovalID != "a1" || !req.Approve {
			t.Errorf("unexpected request: %+v", req)
		}
	}))
	defer server.Close()

	if err := NewWithBaseURL(server.URL, "").RespondApproval(context.Background(), "s1", RespondApprovalRequest{ApprovalID: "a1", Approve: true}); err != nil {
		t.Fatalf("RespondApproval: %v", err)
	}
}
