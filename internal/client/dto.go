package client

import "helm/internal/types"

type SessionsResponse struct {
	Sessions []*types.Session `json:"sessions"`
}

type CreateSessionRequest struct {
	Title string            `json:"title,omitempty"`
	Kind  types.SessionKind `json:"kind,omitempty"`
}

type RenameSessionRequest struct {
	Title string `json:"title"`
}

type SubmitTaskRequest struct {
	Text string `json:"text"`
}

type SubmitTaskResponse struct {
	OK     bool   `json:"ok"`
	TaskID string `json:"task_id,omitempty"`
}

type HistoryResponse struct {
	Items []map[string]any `json:"items"`
}

type AnswerFollowupRequest struct {
	QuestionID string `json:"question_id"`
	Answer     string `json:"answer"`
}

type RespondApprovalRequest struct {
	ApprovalID string `json:"approval_id"`
	Approve    bool   `json:"approve"`
	Note       string `json:"note,omitempty"`
}

type HealthResponse struct {
	OK      bool   `json:"ok"`
	Version string `json:"version"`
}
