package transcript

import (
	"strings"

	"helm/internal/types"
)

// Activity is the coarse user-facing phase label derived from a task's
// status, step, or tool name.
type Activity string

const (
	ActivityIdle      Activity = "idle"
	ActivityThinking  Activity = "thinking"
	ActivityReasoning Activity = "reasoning"
	ActivityToolUse   Activity = "toolUse"
	ActivityCompleted Activity = "completed"
	ActivityError     Activity = "error"
)

func ActivityForStatus(status types.TaskStatus) Activity {
	switch status {
	case types.TaskStatusQueued:
		return ActivityIdle
	case types.TaskStatusPlanning, types.TaskStatusExecuting:
		return ActivityThinking
	case types.TaskStatusCompleted:
		return ActivityCompleted
	case types.TaskStatusFailed:
		return ActivityError
	case types.TaskStatusCancelled:
		return ActivityIdle
	}
	return ActivityThinking
}

// ActivityForStep maps a free-form step label to an activity. The mapping is
// keyword-based and total; unmatched labels fall back to thinking.
func ActivityForStep(step string) Activity {
	label := strings.ToLower(strings.TrimSpace(step))
	if label == "" {
		return ActivityThinking
	}
	switch {
	case containsAny(label, "reason", "reflect"):
		return ActivityReasoning
	case containsAny(label, "search", "browse", "fetch", "read", "write", "edit", "exec", "run", "tool", "command", "patch", "install"):
		return ActivityToolUse
	case containsAny(label, "done", "finish", "complete"):
		return ActivityCompleted
	case containsAny(label, "error", "fail"):
		return ActivityError
	}
	return ActivityThinking
}

func ActivityForTool(toolName string) Activity {
	label := strings.ToLower(strings.TrimSpace(toolName))
	if label == "" {
		return ActivityToolUse
	}
	if containsAny(label, "think", "reason", "plan") {
		return ActivityReasoning
	}
	return ActivityToolUse
}

func containsAny(label string, keywords ...string) bool {
	for _, keyword := range keywords {
		if strings.Contains(label, keyword) {
			return true
		}
	}
	return false
}
