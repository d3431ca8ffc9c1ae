package types

import (
	"encoding/json"
	"time"
)

type ApprovalRequest struct {
	ID        string          `json:"id"`
	Payload   json.RawMessage `json:"payload,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
}

type ApprovalRequestEvent struct {
	ApprovalID string          `json:"approval_id"`
	Payload    json.RawMessage `json:"payload,omitempty"`
}

type ApprovalClearEvent struct {
	ApprovalID string `json:"approval_id"`
}
