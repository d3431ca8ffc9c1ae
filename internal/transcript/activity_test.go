package transcript

import (
	"testing"

	"helm/internal/types"
)

func TestActivityForStatus(t *testing.T) {
	cases := map[types.TaskStatus]Activity{
		types.TaskStatusQueued:    ActivityIdle,
		types.TaskStatusPlanning:  ActivityThinking,
		types.TaskStatusExecuting: ActivityThinking,
		types.TaskStatusCompleted: ActivityCompleted,
		types.TaskStatusFailed:    ActivityError,
		types.TaskStatusCancelled: ActivityIdle,
	}
	for status, want := range cases {
		if got := ActivityForStatus(status); got != want {
			t.Fatalf("status %s: expected %s, got %s", status, want, got)
		}
	}
}

func TestActivityForStepKeywords(t *testing.T) {
	cases := map[string]Activity{
		"Reasoning about approach": ActivityReasoning,
		"searching the web":        ActivityToolUse,
		"Running tests":            ActivityToolUse,
		"writing report":           ActivityToolUse,
		"finishing up":             ActivityCompleted,
		"recovering from failure":  ActivityError,
		"pondering":                ActivityThinking,
		"":                         ActivityThinking,
	}
	for step, want := range cases {
		if got := ActivityForStep(step); got != want {
			t.Fatalf("step %q: expected %s, got %s", step, want, got)
		}
	}
}

func TestActivityForToolIsTotal(t *testing.T) {
	if got := ActivityForTool("deep_think"); got != ActivityReasoning {
		t.Fatalf("expected reasoning for think tool, got %s", got)
	}
	if got := ActivityForTool("web_search"); got != ActivityToolUse {
		t.Fatalf("expected toolUse, got %s", got)
	}
	if got := ActivityForTool(""); got != ActivityToolUse {
		t.Fatalf("empty tool name must still map, got %s", got)
	}
}
