package transcript

import (
	"encoding/json"
	"reflect"
	"testing"
	"time"

	"helm/internal/types"
)

func startedTask(t *testing.T, tr *Transcript, taskID string) *Message {
	t.Helper()
	msg := tr.StartTask("s1", taskID)
	if msg == nil {
		t.Fatalf("expected assistant message for task %s", taskID)
	}
	return msg
}

func TestStatusPlanningOnFreshMessage(t *testing.T) {
	tr := New()
	msg := startedTask(t, tr, "t1")

	if !tr.ApplyStatus(types.StatusEvent{TaskID: "t1", Status: types.TaskStatusPlanning}) {
		t.Fatalf("expected status event to apply")
	}
	if !msg.Streaming {
		t.Fatalf("expected streaming message")
	}
	if msg.Activity != ActivityThinking {
		t.Fatalf("expected thinking activity, got %s", msg.Activity)
	}
	if len(msg.Blocks) != 0 {
		t.Fatalf("status events must not append blocks, got %d", len(msg.Blocks))
	}
}

func TestReasoningChunksAccumulateIntoOneThinkingBlock(t *testing.T) {
	tr := New()
	msg := startedTask(t, tr, "t1")
	tr.ApplyStatus(types.StatusEvent{TaskID: "t1", Status: types.TaskStatusExecuting})

	tr.ApplyChunk(types.StreamChunkEvent{TaskID: "t1", Chunk: "💭 eval", IsFirst: true})
	tr.ApplyChunk(types.StreamChunkEvent{TaskID: "t1", Chunk: " options"})

	if len(msg.Blocks) != 1 {
		t.Fatalf("expected one block, got %d", len(msg.Blocks))
	}
	block := msg.Blocks[0]
	if block.Kind != BlockThinking || !block.Streaming {
		t.Fatalf("unexpected block: %#v", block)
	}
	if block.Content != "eval options" {
		t.Fatalf("unexpected thinking content %q", block.Content)
	}
	if msg.Activity != ActivityReasoning {
		t.Fatalf("expected reasoning activity, got %s", msg.Activity)
	}
	if msg.PlainText != "" {
		t.Fatalf("reasoning chunks must not touch plain text, got %q", msg.PlainText)
	}
}

func TestToolCallFreezesTextButNotThinking(t *testing.T) {
	tr := New()
	msg := startedTask(t, tr, "t1")
	tr.ApplyStatus(types.StatusEvent{TaskID: "t1", Status: types.TaskStatusExecuting})
	tr.ApplyChunk(types.StreamChunkEvent{TaskID: "t1", Chunk: "💭 eval", IsFirst: true})

	if !tr.ApplyToolCall(types.ToolCallEvent{TaskID: "t1", ToolName: "search", Success: true}) {
		t.Fatalf("expected tool call to apply")
	}
	if len(msg.Blocks) != 2 {
		t.Fatalf("expected thinking + tool blocks, got %d", len(msg.Blocks))
	}
	if msg.Blocks[0].Kind != BlockThinking || !msg.Blocks[0].Streaming {
		t.Fatalf("thinking block must stay streaming: %#v", msg.Blocks[0])
	}
	if msg.Blocks[1].Kind != BlockToolCall || msg.Blocks[1].Tool == nil || msg.Blocks[1].Tool.ToolName != "search" {
		t.Fatalf("unexpected tool block: %#v", msg.Blocks[1])
	}
	if msg.Activity != ActivityToolUse {
		t.Fatalf("expected toolUse activity, got %s", msg.Activity)
	}
}

func TestToolCallFreezesStreamingText(t *testing.T) {
	tr := New()
	msg := startedTask(t, tr, "t1")
	tr.ApplyStatus(types.StatusEvent{TaskID: "t1", Status: types.TaskStatusExecuting})
	tr.ApplyChunk(types.StreamChunkEvent{TaskID: "t1", Chunk: "Working on it", IsFirst: true})

	tr.ApplyToolCall(types.ToolCallEvent{TaskID: "t1", ToolName: "read_file", Success: true})
	if msg.Blocks[0].Kind != BlockText || msg.Blocks[0].Streaming {
		t.Fatalf("text block must be frozen by tool call: %#v", msg.Blocks[0])
	}
}

func TestDoneChunkFreezesEverything(t *testing.T) {
	tr := New()
	msg := startedTask(t, tr, "t1")
	tr.ApplyStatus(types.StatusEvent{TaskID: "t1", Status: types.TaskStatusExecuting})
	tr.ApplyChunk(types.StreamChunkEvent{TaskID: "t1", Chunk: "💭 eval", IsFirst: true})
	tr.ApplyChunk(types.StreamChunkEvent{TaskID: "t1", Chunk: "Done.", IsFirst: true})

	tr.ApplyChunk(types.StreamChunkEvent{TaskID: "t1", IsDone: true})
	for i, block := range msg.Blocks {
		if block.Streaming {
			t.Fatalf("block %d still streaming after done", i)
		}
	}
	if msg.Streaming {
		t.Fatalf("message still streaming after done")
	}
	if len(msg.Blocks) != 2 {
		t.Fatalf("done chunk must not append content, got %d blocks", len(msg.Blocks))
	}
}

func TestDoneChunkIsIdempotent(t *testing.T) {
	build := func(doneCount int) *Message {
		tr := New()
		msg := startedTask(t, tr, "t1")
		tr.ApplyStatus(types.StatusEvent{TaskID: "t1", Status: types.TaskStatusExecuting})
		tr.ApplyChunk(types.StreamChunkEvent{TaskID: "t1", Chunk: "partial", IsFirst: true})
		for i := 0; i < doneCount; i++ {
			tr.ApplyChunk(types.StreamChunkEvent{TaskID: "t1", IsDone: true})
		}
		return msg
	}
	once := build(1)
	twice := build(2)
	once.ID, twice.ID = "", ""
	once.CreatedAt, twice.CreatedAt = time.Time{}, time.Time{}
	if !reflect.DeepEqual(once, twice) {
		t.Fatalf("applying done twice diverged:\nonce:  %#v\ntwice: %#v", once, twice)
	}
}

func TestFailedStatusSurfacesError(t *testing.T) {
	tr := New()
	msg := startedTask(t, tr, "t1")
	tr.ApplyStatus(types.StatusEvent{TaskID: "t1", Status: types.TaskStatusExecuting})
	tr.ApplyChunk(types.StreamChunkEvent{TaskID: "t1", Chunk: "partial", IsFirst: true})

	tr.ApplyStatus(types.StatusEvent{TaskID: "t1", Status: types.TaskStatusFailed, Error: "timeout"})
	if msg.Activity != ActivityError {
		t.Fatalf("expected error activity, got %s", msg.Activity)
	}
	if msg.Error != "timeout" {
		t.Fatalf("expected error to surface, got %q", msg.Error)
	}
	if msg.Streaming {
		t.Fatalf("terminal status must stop streaming")
	}
	if msg.Blocks[0].Streaming {
		t.Fatalf("terminal status must freeze blocks")
	}
}

func TestStickyResultAndError(t *testing.T) {
	tr := New()
	msg := startedTask(t, tr, "t1")
	tr.ApplyStatus(types.StatusEvent{TaskID: "t1", Status: types.TaskStatusCompleted, Result: "answer"})

	tr.ApplyStatus(types.StatusEvent{TaskID: "t1", Status: types.TaskStatusCompleted})
	if msg.Result != "answer" {
		t.Fatalf("result must stick, got %q", msg.Result)
	}

	tr.ApplyStatus(types.StatusEvent{TaskID: "t1", Status: types.TaskStatusFailed, Error: "boom"})
	tr.ApplyStatus(types.StatusEvent{TaskID: "t1", Status: types.TaskStatusFailed})
	if msg.Error != "boom" {
		t.Fatalf("error must stick, got %q", msg.Error)
	}
}

func TestNoCrossTaskBleed(t *testing.T) {
	tr := New()
	first := startedTask(t, tr, "tA")
	second := startedTask(t, tr, "tB")
	tr.ApplyStatus(types.StatusEvent{TaskID: "tA", Status: types.TaskStatusExecuting})
	tr.ApplyStatus(types.StatusEvent{TaskID: "tB", Status: types.TaskStatusExecuting})

	tr.ApplyChunk(types.StreamChunkEvent{TaskID: "tA", Chunk: "for A", IsFirst: true})
	tr.ApplyChunk(types.StreamChunkEvent{TaskID: "tB", Chunk: "for B", IsFirst: true})
	tr.ApplyChunk(types.StreamChunkEvent{TaskID: "tA", Chunk: " more"})

	if len(first.Blocks) != 1 || first.Blocks[0].Content != "for A more" {
		t.Fatalf("unexpected blocks for task A: %#v", first.Blocks)
	}
	if len(second.Blocks) != 1 || second.Blocks[0].Content != "for B" {
		t.Fatalf("unexpected blocks for task B: %#v", second.Blocks)
	}
}

func TestUnknownTaskIsDroppedSilently(t *testing.T) {
	tr := New()
	startedTask(t, tr, "t1")
	if tr.ApplyChunk(types.StreamChunkEvent{TaskID: "ghost", Chunk: "lost"}) {
		t.Fatalf("unknown task id must be a no-op")
	}
	if tr.ApplyStatus(types.StatusEvent{TaskID: "ghost", Status: types.TaskStatusExecuting}) {
		t.Fatalf("unknown task id must be a no-op")
	}
}

func TestTaskLookupFindsMostRecentMessage(t *testing.T) {
	tr := New()
	startedTask(t, tr, "t1")
	tr.AppendUser("s1", "next question")
	latest := startedTask(t, tr, "t2")
	tr.ApplyStatus(types.StatusEvent{TaskID: "t2", Status: types.TaskStatusExecuting})

	tr.ApplyChunk(types.StreamChunkEvent{TaskID: "t2", Chunk: "hello", IsFirst: true})
	if len(latest.Blocks) != 1 {
		t.Fatalf("expected chunk routed to newest task message")
	}
}

func TestSingleStreamingBlockPerKind(t *testing.T) {
	tr := New()
	msg := startedTask(t, tr, "t1")
	tr.ApplyStatus(types.StatusEvent{TaskID: "t1", Status: types.TaskStatusExecuting})

	tr.ApplyChunk(types.StreamChunkEvent{TaskID: "t1", Chunk: "💭 first thought", IsFirst: true})
	tr.ApplyChunk(types.StreamChunkEvent{TaskID: "t1", Chunk: "narration", IsFirst: true})
	tr.ApplyToolCall(types.ToolCallEvent{TaskID: "t1", ToolName: "search", Success: true})
	tr.ApplyChunk(types.StreamChunkEvent{TaskID: "t1", Chunk: "more narration", IsFirst: true})

	streamingText := 0
	streamingThinking := 0
	for _, block := range msg.Blocks {
		if !block.Streaming {
			continue
		}
		switch block.Kind {
		case BlockText:
			streamingText++
		case BlockThinking:
			streamingThinking++
		}
	}
	if streamingText > 1 || streamingThinking > 1 {
		t.Fatalf("more than one streaming block per kind: text=%d thinking=%d", streamingText, streamingThinking)
	}
}

func TestFirstChunkReplacesStaleStreamingText(t *testing.T) {
	tr := New()
	msg := startedTask(t, tr, "t1")
	tr.ApplyStatus(types.StatusEvent{TaskID: "t1", Status: types.TaskStatusExecuting})
	tr.ApplyChunk(types.StreamChunkEvent{TaskID: "t1", Chunk: "stale", IsFirst: true})

	tr.ApplyChunk(types.StreamChunkEvent{TaskID: "t1", Chunk: "fresh", IsFirst: true})
	textBlocks := 0
	for _, block := range msg.Blocks {
		if block.Kind == BlockText {
			textBlocks++
			if block.Content != "fresh" {
				t.Fatalf("stale streaming text must be removed, got %q", block.Content)
			}
		}
	}
	if textBlocks != 1 {
		t.Fatalf("expected exactly one text block, got %d", textBlocks)
	}
}

func TestBlockOrderMatchesArrival(t *testing.T) {
	tr := New()
	msg := startedTask(t, tr, "t1")
	tr.ApplyStatus(types.StatusEvent{TaskID: "t1", Status: types.TaskStatusExecuting})

	tr.ApplyChunk(types.StreamChunkEvent{TaskID: "t1", Chunk: "💭 plan", IsFirst: true})
	tr.ApplyToolCall(types.ToolCallEvent{TaskID: "t1", ToolName: "search", Success: true})
	tr.ApplyChunk(types.StreamChunkEvent{TaskID: "t1", Chunk: "result is", IsFirst: true})
	tr.ApplyMedia(types.MediaPlayEvent{TaskID: "t1", Ref: "clip-9", Title: "demo"})

	want := []BlockKind{BlockThinking, BlockToolCall, BlockText, BlockMedia}
	if len(msg.Blocks) != len(want) {
		t.Fatalf("expected %d blocks, got %d", len(want), len(msg.Blocks))
	}
	for i, kind := range want {
		if msg.Blocks[i].Kind != kind {
			t.Fatalf("block %d: expected %s, got %s", i, kind, msg.Blocks[i].Kind)
		}
	}
}

func TestNoBlocksAfterTerminalStatus(t *testing.T) {
	tr := New()
	msg := startedTask(t, tr, "t1")
	tr.ApplyStatus(types.StatusEvent{TaskID: "t1", Status: types.TaskStatusCompleted, Result: "done"})

	if tr.ApplyChunk(types.StreamChunkEvent{TaskID: "t1", Chunk: "late"}) {
		t.Fatalf("chunks after terminal status must be dropped")
	}
	if tr.ApplyToolCall(types.ToolCallEvent{TaskID: "t1", ToolName: "search"}) {
		t.Fatalf("tool calls after terminal status must be dropped")
	}
	if tr.ApplyMedia(types.MediaPlayEvent{TaskID: "t1", Ref: "clip"}) {
		t.Fatalf("media after terminal status must be dropped")
	}
	if len(msg.Blocks) != 0 {
		t.Fatalf("terminal message grew blocks: %#v", msg.Blocks)
	}
}

func TestFollowupAttachesToLiveMessageAndClearsByID(t *testing.T) {
	tr := New()
	done := startedTask(t, tr, "t1")
	tr.ApplyStatus(types.StatusEvent{TaskID: "t1", Status: types.TaskStatusCompleted})
	live := startedTask(t, tr, "t2")
	tr.ApplyStatus(types.StatusEvent{TaskID: "t2", Status: types.TaskStatusExecuting})

	if !tr.AttachFollowup(types.FollowupQuestionEvent{QuestionID: "q1", Text: "which path?"}) {
		t.Fatalf("expected follow-up to attach")
	}
	if live.Followup == nil || live.Followup.ID != "q1" {
		t.Fatalf("follow-up must land on the live message: %#v", live.Followup)
	}
	if done.Followup != nil {
		t.Fatalf("completed message must not receive follow-up")
	}

	if !tr.ClearFollowup("q1") {
		t.Fatalf("expected clear to find the follow-up")
	}
	if live.Followup != nil {
		t.Fatalf("follow-up not cleared")
	}
}

// Pins the deliberate policy: overlays target the most recent in-flight
// message, not the message matching the event's own task.
func TestFollowupIgnoresTaskCorrelation(t *testing.T) {
	tr := New()
	older := startedTask(t, tr, "t1")
	tr.ApplyStatus(types.StatusEvent{TaskID: "t1", Status: types.TaskStatusExecuting})
	newer := startedTask(t, tr, "t2")
	tr.ApplyStatus(types.StatusEvent{TaskID: "t2", Status: types.TaskStatusPlanning})

	tr.AttachFollowup(types.FollowupQuestionEvent{QuestionID: "q1", Text: "?"})
	if newer.Followup == nil {
		t.Fatalf("follow-up must land on the most recent in-flight message")
	}
	if older.Followup != nil {
		t.Fatalf("older in-flight message must not receive the follow-up")
	}
}

func TestFollowupDroppedWithoutLiveMessage(t *testing.T) {
	tr := New()
	startedTask(t, tr, "t1")
	tr.ApplyStatus(types.StatusEvent{TaskID: "t1", Status: types.TaskStatusCompleted})

	if tr.AttachFollowup(types.FollowupQuestionEvent{QuestionID: "q1", Text: "?"}) {
		t.Fatalf("follow-up without an in-flight message must be dropped")
	}
	if tr.AttachApproval(types.ApprovalRequestEvent{ApprovalID: "a1"}) {
		t.Fatalf("approval without an in-flight message must be dropped")
	}
}

func TestApprovalAttachAndClear(t *testing.T) {
	tr := New()
	live := startedTask(t, tr, "t1")
	tr.ApplyStatus(types.StatusEvent{TaskID: "t1", Status: types.TaskStatusExecuting})

	payload := json.RawMessage(`{"command":"rm -rf build"}`)
	tr.AttachApproval(types.ApprovalRequestEvent{ApprovalID: "a1", Payload: payload})
	if live.Approval == nil || live.Approval.ID != "a1" {
		t.Fatalf("approval must attach to live message: %#v", live.Approval)
	}
	if !tr.ClearApproval("a1") {
		t.Fatalf("expected approval clear to match")
	}
	if live.Approval != nil {
		t.Fatalf("approval not cleared")
	}
}

func TestContextUsageLatestWins(t *testing.T) {
	tr := New()
	msg := startedTask(t, tr, "t1")
	tr.ApplyContextUsage(types.ContextUsageEvent{TaskID: "t1", ContextUsage: types.ContextUsage{TokensUsed: 100, BudgetTotal: 1000}})
	tr.ApplyContextUsage(types.ContextUsageEvent{TaskID: "t1", ContextUsage: types.ContextUsage{TokensUsed: 250, BudgetTotal: 1000, UsagePercent: 25}})

	if msg.ContextUsage == nil || msg.ContextUsage.TokensUsed != 250 {
		t.Fatalf("context usage must be latest-wins: %#v", msg.ContextUsage)
	}
}

func TestCheckpointsAccumulate(t *testing.T) {
	tr := New()
	msg := startedTask(t, tr, "t1")
	tr.ApplyCheckpoint(types.CheckpointEvent{TaskID: "t1", Checkpoint: types.Checkpoint{ID: "c1"}})
	tr.ApplyCheckpoint(types.CheckpointEvent{TaskID: "t1", Checkpoint: types.Checkpoint{ID: "c2"}})

	if len(msg.Checkpoints) != 2 || msg.Checkpoints[0].ID != "c1" || msg.Checkpoints[1].ID != "c2" {
		t.Fatalf("checkpoints must accumulate in order: %#v", msg.Checkpoints)
	}
}

func TestTaskListUpdateReplacesSingleItem(t *testing.T) {
	tr := New()
	msg := startedTask(t, tr, "t1")
	tr.ApplyStatus(types.StatusEvent{TaskID: "t1", Status: types.TaskStatusExecuting, TaskList: []types.TaskListItem{
		{ID: "i1", Title: "first", Status: "pending"},
		{ID: "i2", Title: "second", Status: "pending"},
	}})

	tr.ApplyStatus(types.StatusEvent{
		TaskID:         "t1",
		Status:         types.TaskStatusExecuting,
		TaskListUpdate: &types.TaskListUpdate{ItemID: "i2", Status: "done"},
	})
	if msg.TaskList[0].Status != "pending" || msg.TaskList[1].Status != "done" {
		t.Fatalf("unexpected task list: %#v", msg.TaskList)
	}
}

func TestApplyEnvelopeDispatch(t *testing.T) {
	tr := New()
	msg := startedTask(t, tr, "t1")

	payload, _ := json.Marshal(types.StatusEvent{TaskID: "t1", Status: types.TaskStatusExecuting})
	if !tr.Apply(types.TaskEvent{Kind: types.TaskEventStatus, Payload: payload}) {
		t.Fatalf("expected status envelope to apply")
	}
	if msg.Status != types.TaskStatusExecuting {
		t.Fatalf("unexpected status %s", msg.Status)
	}

	if tr.Apply(types.TaskEvent{Kind: "bogus", Payload: payload}) {
		t.Fatalf("unknown envelope kind must be dropped")
	}
	if tr.Apply(types.TaskEvent{Kind: types.TaskEventStatus, Payload: json.RawMessage(`{`)}) {
		t.Fatalf("undecodable payload must be dropped")
	}
}
