package types

import (
	"encoding/json"
	"time"
)

type TaskStatus string

const (
	TaskStatusQueued    TaskStatus = "queued"
	TaskStatusPlanning  TaskStatus = "planning"
	TaskStatusExecuting TaskStatus = "executing"
	TaskStatusCompleted TaskStatus = "completed"
	TaskStatusFailed    TaskStatus = "failed"
	TaskStatusCancelled TaskStatus = "cancelled"
)

func (s TaskStatus) Terminal() bool {
	switch s {
	case TaskStatusCompleted, TaskStatusFailed, TaskStatusCancelled:
		return true
	}
	return false
}

func (s TaskStatus) InFlight() bool {
	return s == TaskStatusPlanning || s == TaskStatusExecuting
}

type TaskListItem struct {
	ID     string `json:"id"`
	Title  string `json:"title"`
	Status string `json:"status"`
}

type TaskListUpdate struct {
	ItemID string `json:"item_id"`
	Status string `json:"status"`
}

type StatusEvent struct {
	TaskID         string          `json:"task_id"`
	Status         TaskStatus      `json:"status"`
	CurrentStep    string          `json:"current_step,omitempty"`
	Result         string          `json:"result,omitempty"`
	Error          string          `json:"error,omitempty"`
	TaskList       []TaskListItem  `json:"task_list,omitempty"`
	TaskListUpdate *TaskListUpdate `json:"task_list_update,omitempty"`
}

type StreamChunkEvent struct {
	TaskID  string `json:"task_id"`
	Chunk   string `json:"chunk"`
	IsFirst bool   `json:"is_first"`
	IsDone  bool   `json:"is_done"`
}

type ToolCallEvent struct {
	TaskID        string          `json:"task_id"`
	AgentType     string          `json:"agent_type"`
	Step          string          `json:"step,omitempty"`
	Tool          string          `json:"tool"`
	ToolName      string          `json:"tool_name"`
	Args          json.RawMessage `json:"args,omitempty"`
	Success       bool            `json:"success"`
	Summary       string          `json:"summary,omitempty"`
	DurationMS    int64           `json:"duration_ms,omitempty"`
	ResultPreview string          `json:"result_preview,omitempty"`
	Timestamp     *time.Time      `json:"timestamp,omitempty"`
}

type Checkpoint struct {
	ID        string    `json:"id"`
	Label     string    `json:"label,omitempty"`
	Step      string    `json:"step,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

type CheckpointEvent struct {
	TaskID     string     `json:"task_id"`
	Checkpoint Checkpoint `json:"checkpoint"`
}

// ContextUsage is a latest-wins snapshot of a task's token budget.
type ContextUsage struct {
	TokensUsed    int64   `json:"tokens_used"`
	BudgetTotal   int64   `json:"budget_total"`
	UsagePercent  float64 `json:"usage_percent"`
	MessageCount  int     `json:"message_count"`
	Condensations int     `json:"condensations"`
	Step          string  `json:"step,omitempty"`
	AgentType     string  `json:"agent_type,omitempty"`
}

type ContextUsageEvent struct {
	TaskID string `json:"task_id"`
	ContextUsage
}

type MediaPlayEvent struct {
	TaskID     string  `json:"task_id"`
	Kind       string  `json:"media_kind,omitempty"`
	Ref        string  `json:"ref"`
	Title      string  `json:"title"`
	PlaylistID string  `json:"playlist_id,omitempty"`
	StartAt    float64 `json:"start_at,omitempty"`
}
