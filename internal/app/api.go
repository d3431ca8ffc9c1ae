package app

import (
	"context"

	"helm/internal/client"
	"helm/internal/types"
)

type SessionAPI interface {
	ListSessions(ctx context.Context) ([]*types.Session, error)
	CreateSession(ctx context.Context, req client.CreateSessionRequest) (*types.Session, error)
	DeleteSession(ctx context.Context, sessionID string) error
	RenameSession(ctx context.Context, sessionID string, req client.RenameSessionRequest) error
	History(ctx context.Context, sessionID string, lines int) (*client.HistoryResponse, error)
	EventStream(ctx context.Context, sessionID string) (<-chan types.TaskEvent, func(), error)
	SubmitTask(ctx context.Context, sessionID string, req client.SubmitTaskRequest) (*client.SubmitTaskResponse, error)
	CancelTask(ctx context.Context, sessionID, taskID string) error
	AnswerFollowup(ctx context.Context, sessionID string, req client.AnswerFollowupRequest) error
	RespondApproval(ctx context.Context, sessionID string, req client.RespondApprovalRequest) error
}

type ClientAPI struct {
	client *client.Client
}

func NewClientAPI(client *client.Client) *ClientAPI {
	return &ClientAPI{client: client}
}

func (a *ClientAPI) ListSessions(ctx context.Context) ([]*types.Session, error) {
	return a.client.ListSessions(ctx)
}

func (a *ClientAPI) CreateSession(ctx context.Context, req client.CreateSessionRequest) (*types.Session, error) {
	return a.client.CreateSession(ctx, req)
}

func (a *ClientAPI) DeleteSession(ctx context.Context, sessionID string) error {
	return a.client.DeleteSession(ctx, sessionID)
}

func (a *ClientAPI) RenameSession(ctx context.Context, sessionID string, req client.RenameSessionRequest) error {
	return a.client.RenameSession(ctx, sessionID, req)
}

func (a *ClientAPI) History(ctx context.Context, sessionID string, lines int) (*client.HistoryResponse, error) {
	return a.client.History(ctx, sessionID, lines)
}

func (a *ClientAPI) EventStream(ctx context.Context, sessionID string) (<-chan types.TaskEvent, func(), error) {
	return a.client.EventStream(ctx, sessionID)
}

func (a *ClientAPI) SubmitTask(ctx context.Context, sessionID string, req client.SubmitTaskRequest) (*client.SubmitTaskResponse, error) {
	return a.client.SubmitTask(ctx, sessionID, req)
}

func (a *ClientAPI) CancelTask(ctx context.Context, sessionID, taskID string) error {
	return a.client.CancelTask(ctx, sessionID, taskID)
}

func (a *ClientAPI) AnswerFollowup(ctx context.Context, sessionID string, req client.AnswerFollowupRequest) error {
	return a.client.AnswerFollowup(ctx, sessionID, req)
}

func (a *ClientAPI) RespondApproval(ctx context.Context, sessionID string, req client.RespondApprovalRequest) error {
	return a.client.RespondApproval(ctx, sessionID, req)
}
