package types

import "encoding/json"

type TaskEventKind string

const (
	TaskEventStatus        TaskEventKind = "status"
	TaskEventChunk         TaskEventKind = "chunk"
	TaskEventTool          TaskEventKind = "tool"
	TaskEventCheckpoint    TaskEventKind = "checkpoint"
	TaskEventContext       TaskEventKind = "context"
	TaskEventFollowup      TaskEventKind = "followup"
	TaskEventFollowupClear TaskEventKind = "followup/clear"
	TaskEventApproval      TaskEventKind = "approval"
	TaskEventApprovalClear TaskEventKind = "approval/clear"
	TaskEventMedia         TaskEventKind = "media"
)

// TaskEvent is the wire envelope delivered on the orchestrator event stream.
// Payload is decoded per Kind by the transcript reducer.
type TaskEvent struct {
	Kind    TaskEventKind   `json:"kind"`
	Payload json.RawMessage `json:"payload,omitempty"`
	TS      string          `json:"ts,omitempty"`
}
