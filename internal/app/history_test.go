package app

import (
	"testing"

	"helm/internal/transcript"
	"helm/internal/types"
)

func TestHistoryToMessagesProjectsRoles(t *testing.T) {
	items := []map[string]any{
		{"type": "userMessage", "text": "find the slow query", "created_at": "2026-08-20T10:00:00Z"},
		{
			"type":    "assistantMessage",
			"task_id": "t1",
			"status":  "completed",
			"text":    "It was the unindexed join.",
			"result":  "done",
		},
		{"type": "unknownThing", "text": "ignored"},
	}

	messages := historyToMessages("s1", items)
	if len(messages) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(messages))
	}
	user := messages[0]
	if user.Role != transcript.RoleUser || user.Text != "find the slow query" {
		t.Fatalf("unexpected user message: %#v", user)
	}
	if user.CreatedAt.IsZero() {
		t.Fatalf("expected parsed timestamp")
	}
	agent := messages[1]
	if agent.Role != transcript.RoleAssistant || agent.TaskID != "t1" {
		t.Fatalf("unexpected assistant message: %#v", agent)
	}
	if agent.Status != types.TaskStatusCompleted || agent.Activity != transcript.ActivityCompleted {
		t.Fatalf("unexpected status/activity: %s/%s", agent.Status, agent.Activity)
	}
	if len(agent.Blocks) != 1 || agent.Blocks[0].Content != "It was the unindexed join." {
		t.Fatalf("unexpected blocks: %#v", agent.Blocks)
	}
	if agent.Blocks[0].Streaming {
		t.Fatalf("restored blocks must not be streaming")
	}
}

func TestHistoryToMessagesSkipsMalformedEntries(t *testing.T) {
	items := []map[string]any{
		nil,
		{"type": "userMessage"},
		{"type": "assistantMessage", "text": "orphan without task id"},
	}
	if messages := historyToMessages("s1", items); len(messages) != 0 {
		t.Fatalf("expected all entries skipped, got %#v", messages)
	}
}

func TestRestoredHistoryAcceptsNewEvents(t *testing.T) {
	tr := transcript.New()
	tr.Restore(historyToMessages("s1", []map[string]any{
		{"type": "assistantMessage", "task_id": "t1", "status": "completed", "text": "earlier answer"},
	}))
	tr.StartTask("s1", "t2")

	if !tr.ApplyChunk(types.StreamChunkEvent{TaskID: "t2", Chunk: "new answer", IsFirst: true}) {
		t.Fatalf("expected chunk applied to new task")
	}
	if tr.ApplyChunk(types.StreamChunkEvent{TaskID: "t1", Chunk: "late", IsFirst: true}) {
		t.Fatalf("terminal restored task must reject chunks")
	}
}
