package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"helm/internal/config"
	"helm/internal/types"
)

// Client talks to the Helm orchestrator over its HTTP API.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

func New(cfg config.CoreConfig) *Client {
	return NewWithBaseURL(cfg.OrchestratorBaseURL(), cfg.Orchestrator.Token)
}

func NewWithBaseURL(baseURL, token string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   strings.TrimSpace(token),
		http: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

func (c *Client) Health(ctx context.Context) (*HealthResponse, error) {
	var resp HealthResponse
	if err := c.doJSON(ctx, http.MethodGet, "/health", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) ListSessions(ctx context.Context) ([]*types.Session, error) {
	var resp SessionsResponse
	if err := c.doJSON(ctx, http.MethodGet, "/v1/sessions", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Sessions, nil
}

func (c *Client) CreateSession(ctx context.Context, req CreateSessionRequest) (*types.Session, error) {
	var session types.Session
	if err := c.doJSON(ctx, http.MethodPost, "/v1/sessions", req, &session); err != nil {
		return nil, err
	}
	return &session, nil
}

func (c *Client) DeleteSession(ctx context.Context, sessionID string) error {
	if strings.TrimSpace(sessionID) == "" {
		return errors.New("session id is required")
	}
	path := fmt.Sprintf("/v1/sessions/%s", strings.TrimSpace(sessionID))
	return c.doJSON(ctx, http.MethodDelete, path, nil, nil)
}

func (c *Client) RenameSession(ctx context.Context, sessionID string, req RenameSessionRequest) error {
	if strings.TrimSpace(sessionID) == "" {
		return errors.New("session id is required")
	}
	if strings.TrimSpace(req.Title) == "" {
		return errors.New("title is required")
	}
	path := fmt.Sprintf("/v1/sessions/%s/rename", strings.TrimSpace(sessionID))
	return c.doJSON(ctx, http.MethodPost, path, req, nil)
}

func (c *Client) SubmitTask(ctx context.Context, sessionID string, req SubmitTaskRequest) (*SubmitTaskResponse, error) {
	if strings.TrimSpace(sessionID) == "" {
		return nil, errors.New("session id is required")
	}
	path := fmt.Sprintf("/v1/sessions/%s/tasks", strings.TrimSpace(sessionID))
	var resp SubmitTaskResponse
	if err := c.doJSON(ctx, http.MethodPost, path, req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) CancelTask(ctx context.Context, sessionID, taskID string) error {
	if strings.TrimSpace(taskID) == "" {
		return errors.New("task id is required")
	}
	path := fmt.Sprintf("/v1/sessions/%s/tasks/%s/cancel", strings.TrimSpace(sessionID), strings.TrimSpace(taskID))
	return c.doJSON(ctx, http.MethodPost, path, nil, nil)
}

func (c *Client) History(ctx context.Context, sessionID string, lines int) (*HistoryResponse, error) {
	path := fmt.Sprintf("/v1/sessions/%s/history?lines=%d", strings.TrimSpace(sessionID), lines)
	var resp HistoryResponse
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) AnswerFollowup(ctx context.Context, sessionID string, req AnswerFollowupRequest) error {
	if strings.TrimSpace(req.QuestionID) == "" {
		return errors.New("question id is required")
	}
	path := fmt.Sprintf("/v1/sessions/%s/followup", strings.TrimSpace(sessionID))
	return c.doJSON(ctx, http.MethodPost, path, req, nil)
}

func (c *Client) RespondApproval(ctx context.Context, sessionID string, req RespondApprovalRequest) error {
	if strings.TrimSpace(req.ApprovalID) == "" {
		return errors.New("approval id is required")
	}
	path := fmt.Sprintf("/v1/sessions/%s/approval", strings.TrimSpace(sessionID))
	return c.doJSON(ctx, http.MethodPost, path, req, nil)
}

func (c *Client) doJSON(ctx context.Context, method, path string, body any, out any) error {
	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return decodeAPIError(resp)
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func decodeAPIError(resp *http.Response) error {
	type errorPayload struct {
		Error string `json:"error"`
	}
	var payload errorPayload
	_ = json.NewDecoder(resp.Body).Decode(&payload)
	if payload.Error != "" {
		return &APIError{StatusCode: resp.StatusCode, Message: payload.Error}
	}
	return &APIError{StatusCode: resp.StatusCode, Message: resp.Status}
}

type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("api error (%d): %s", e.StatusCode, e.Message)
}

func AsAPIError(err error) *APIError {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr
	}
	return nil
}
