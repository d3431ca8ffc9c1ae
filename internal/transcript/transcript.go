package transcript

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"

	"helm/internal/types"
)

// ReasoningMarker prefixes stream chunks that carry a reasoning trace rather
// than answer text. The marker is stripped before the chunk is stored.
const ReasoningMarker = "💭"

var now = time.Now

// Transcript is the ordered message sequence for the active session. All
// mutation goes through the Apply* transition functions; every transition is
// total and an event whose task id matches no message is dropped silently.
type Transcript struct {
	messages []*Message
}

func New() *Transcript {
	return &Transcript{}
}

func (t *Transcript) Reset() {
	if t == nil {
		return
	}
	t.messages = nil
}

func (t *Transcript) Messages() []*Message {
	if t == nil {
		return nil
	}
	return t.messages
}

func (t *Transcript) Len() int {
	if t == nil {
		return 0
	}
	return len(t.messages)
}

func (t *Transcript) AppendUser(sessionID, text string) *Message {
	if t == nil || strings.TrimSpace(text) == "" {
		return nil
	}
	msg := &Message{
		ID:        uuid.NewString(),
		SessionID: sessionID,
		Role:      RoleUser,
		Text:      text,
		CreatedAt: now(),
	}
	t.messages = append(t.messages, msg)
	return msg
}

// StartTask appends a fresh assistant message correlated to taskID. The task
// id is assigned exactly once here and never reused across messages.
func (t *Transcript) StartTask(sessionID, taskID string) *Message {
	if t == nil || strings.TrimSpace(taskID) == "" {
		return nil
	}
	msg := &Message{
		ID:        uuid.NewString(),
		SessionID: sessionID,
		Role:      RoleAssistant,
		TaskID:    taskID,
		Status:    types.TaskStatusQueued,
		Activity:  ActivityIdle,
		CreatedAt: now(),
	}
	t.messages = append(t.messages, msg)
	return msg
}

// Restore replaces the transcript contents with messages loaded from the
// external history store.
func (t *Transcript) Restore(messages []*Message) {
	if t == nil {
		return
	}
	t.messages = messages
}

// taskMessage finds the most recent assistant message carrying taskID. The
// scan runs newest-first because a task is not necessarily the last message
// once follow-up tasks begin.
func (t *Transcript) taskMessage(taskID string) *Message {
	if t == nil || taskID == "" {
		return nil
	}
	for i := len(t.messages) - 1; i >= 0; i-- {
		msg := t.messages[i]
		if msg.Role == RoleAssistant && msg.TaskID == taskID {
			return msg
		}
	}
	return nil
}

// liveAssistant finds the most recently appended assistant message whose
// status is executing or planning. Overlay attachments target this message
// rather than correlating by task id.
func (t *Transcript) liveAssistant() *Message {
	if t == nil {
		return nil
	}
	for i := len(t.messages) - 1; i >= 0; i-- {
		msg := t.messages[i]
		if msg.Role == RoleAssistant && msg.Status.InFlight() {
			return msg
		}
	}
	return nil
}

// Apply decodes the envelope payload per kind and dispatches to the matching
// transition. Unknown kinds and undecodable payloads are dropped.
func (t *Transcript) Apply(event types.TaskEvent) bool {
	switch event.Kind {
	case types.TaskEventStatus:
		var ev types.StatusEvent
		if json.Unmarshal(event.Payload, &ev) != nil {
			return false
		}
		return t.ApplyStatus(ev)
	case types.TaskEventChunk:
		var ev types.StreamChunkEvent
		if json.Unmarshal(event.Payload, &ev) != nil {
			return false
		}
		return t.ApplyChunk(ev)
	case types.TaskEventTool:
		var ev types.ToolCallEvent
		if json.Unmarshal(event.Payload, &ev) != nil {
			return false
		}
		return t.ApplyToolCall(ev)
	case types.TaskEventCheckpoint:
		var ev types.CheckpointEvent
		if json.Unmarshal(event.Payload, &ev) != nil {
			return false
		}
		return t.ApplyCheckpoint(ev)
	case types.TaskEventContext:
		var ev types.ContextUsageEvent
		if json.Unmarshal(event.Payload, &ev) != nil {
			return false
		}
		return t.ApplyContextUsage(ev)
	case types.TaskEventFollowup:
		var ev types.FollowupQuestionEvent
		if json.Unmarshal(event.Payload, &ev) != nil {
			return false
		}
		return t.AttachFollowup(ev)
	case types.TaskEventFollowupClear:
		var ev types.FollowupClearEvent
		if json.Unmarshal(event.Payload, &ev) != nil {
			return false
		}
		return t.ClearFollowup(ev.QuestionID)
	case types.TaskEventApproval:
		var ev types.ApprovalRequestEvent
		if json.Unmarshal(event.Payload, &ev) != nil {
			return false
		}
		return t.AttachApproval(ev)
	case types.TaskEventApprovalClear:
		var ev types.ApprovalClearEvent
		if json.Unmarshal(event.Payload, &ev) != nil {
			return false
		}
		return t.ClearApproval(ev.ApprovalID)
	case types.TaskEventMedia:
		var ev types.MediaPlayEvent
		if json.Unmarshal(event.Payload, &ev) != nil {
			return false
		}
		return t.ApplyMedia(ev)
	}
	return false
}

// ApplyStatus updates phase, never narration: no block content is appended
// here. Result and error are sticky; an empty value never erases a set one.
func (t *Transcript) ApplyStatus(ev types.StatusEvent) bool {
	msg := t.taskMessage(ev.TaskID)
	if msg == nil {
		return false
	}

	live := ActivityForStatus(ev.Status)
	if ev.CurrentStep != "" {
		live = ActivityForStep(ev.CurrentStep)
	}
	switch ev.Status {
	case types.TaskStatusCompleted:
		msg.Activity = ActivityCompleted
	case types.TaskStatusFailed:
		msg.Activity = ActivityError
	default:
		msg.Activity = live
	}

	msg.Status = ev.Status
	if ev.Result != "" {
		msg.Result = ev.Result
	}
	if ev.Error != "" {
		msg.Error = ev.Error
	}
	msg.Streaming = ev.Status.InFlight()
	if ev.Status.Terminal() {
		msg.freezeStreaming(BlockText, BlockThinking)
	}

	if ev.TaskList != nil {
		msg.TaskList = ev.TaskList
	}
	if ev.TaskListUpdate != nil {
		msg.TaskList = replaceTaskListStatus(msg.TaskList, ev.TaskListUpdate.ItemID, ev.TaskListUpdate.Status)
	}
	return true
}

func (t *Transcript) ApplyChunk(ev types.StreamChunkEvent) bool {
	msg := t.taskMessage(ev.TaskID)
	if msg == nil {
		return false
	}
	if ev.IsDone {
		msg.freezeStreaming(BlockText, BlockThinking)
		msg.Streaming = false
		return true
	}
	if msg.Terminal() {
		return false
	}

	if isReasoningChunk(msg, ev.Chunk) {
		content := strings.TrimPrefix(ev.Chunk, ReasoningMarker)
		if idx := msg.lastStreaming(BlockThinking); idx >= 0 {
			msg.Blocks[idx].Content += content
		} else {
			msg.Blocks = append(msg.Blocks, newThinkingBlock(strings.TrimLeft(content, " ")))
		}
		msg.Activity = ActivityReasoning
	} else {
		if idx := msg.lastStreaming(BlockText); idx >= 0 && !ev.IsFirst {
			msg.Blocks[idx].Content += ev.Chunk
		} else {
			if ev.IsFirst {
				// A new narration turn never continues a stale block.
				msg.removeStreaming(BlockText)
			}
			msg.Blocks = append(msg.Blocks, newTextBlock(ev.Chunk))
		}
		msg.PlainText += ev.Chunk
		msg.Activity = ActivityThinking
	}
	msg.Streaming = true
	return true
}

// isReasoningChunk classifies a chunk: marker-prefixed chunks are reasoning,
// and unmarked continuations keep flowing into an open thinking block until
// answer narration starts.
func isReasoningChunk(msg *Message, chunk string) bool {
	if strings.HasPrefix(chunk, ReasoningMarker) {
		return true
	}
	return msg.lastStreaming(BlockThinking) >= 0 && msg.lastStreaming(BlockText) < 0
}

// ApplyToolCall freezes streaming answer text (narration pauses while an
// action executes) but leaves thinking blocks open, then appends the call.
func (t *Transcript) ApplyToolCall(ev types.ToolCallEvent) bool {
	msg := t.taskMessage(ev.TaskID)
	if msg == nil || msg.Terminal() {
		return false
	}
	msg.freezeStreaming(BlockText)

	ts := now()
	if ev.Timestamp != nil {
		ts = *ev.Timestamp
	}
	msg.Blocks = append(msg.Blocks, Block{
		Kind: BlockToolCall,
		Tool: &ToolCallInfo{
			TaskID:        ev.TaskID,
			AgentType:     ev.AgentType,
			Step:          ev.Step,
			Tool:          ev.Tool,
			ToolName:      ev.ToolName,
			Args:          ev.Args,
			Success:       ev.Success,
			Summary:       ev.Summary,
			Duration:      time.Duration(ev.DurationMS) * time.Millisecond,
			ResultPreview: ev.ResultPreview,
			Timestamp:     ts,
		},
	})
	msg.Activity = ActivityForTool(ev.ToolName)
	return true
}

func (t *Transcript) ApplyCheckpoint(ev types.CheckpointEvent) bool {
	msg := t.taskMessage(ev.TaskID)
	if msg == nil {
		return false
	}
	msg.Checkpoints = append(msg.Checkpoints, ev.Checkpoint)
	return true
}

func (t *Transcript) ApplyContextUsage(ev types.ContextUsageEvent) bool {
	msg := t.taskMessage(ev.TaskID)
	if msg == nil {
		return false
	}
	usage := ev.ContextUsage
	msg.ContextUsage = &usage
	return true
}

// ApplyMedia appends a media block without touching streaming state or
// activity.
func (t *Transcript) ApplyMedia(ev types.MediaPlayEvent) bool {
	msg := t.taskMessage(ev.TaskID)
	if msg == nil || msg.Terminal() {
		return false
	}
	kind := ev.Kind
	if kind == "" {
		kind = "video"
	}
	msg.Blocks = append(msg.Blocks, Block{
		Kind: BlockMedia,
		Media: &MediaInfo{
			Kind:       kind,
			Ref:        ev.Ref,
			Title:      ev.Title,
			PlaylistID: ev.PlaylistID,
			StartAt:    ev.StartAt,
		},
	})
	return true
}

func (t *Transcript) AttachFollowup(ev types.FollowupQuestionEvent) bool {
	msg := t.liveAssistant()
	if msg == nil {
		return false
	}
	msg.Followup = &types.FollowupQuestion{
		ID:        ev.QuestionID,
		Text:      ev.Text,
		CreatedAt: now(),
	}
	return true
}

func (t *Transcript) ClearFollowup(questionID string) bool {
	if t == nil || questionID == "" {
		return false
	}
	cleared := false
	for _, msg := range t.messages {
		if msg.Followup != nil && msg.Followup.ID == questionID {
			msg.Followup = nil
			cleared = true
		}
	}
	return cleared
}

func (t *Transcript) AttachApproval(ev types.ApprovalRequestEvent) bool {
	msg := t.liveAssistant()
	if msg == nil {
		return false
	}
	msg.Approval = &types.ApprovalRequest{
		ID:        ev.ApprovalID,
		Payload:   ev.Payload,
		CreatedAt: now(),
	}
	return true
}

func (t *Transcript) ClearApproval(approvalID string) bool {
	if t == nil || approvalID == "" {
		return false
	}
	cleared := false
	for _, msg := range t.messages {
		if msg.Approval != nil && msg.Approval.ID == approvalID {
			msg.Approval = nil
			cleared = true
		}
	}
	return cleared
}

// replaceTaskListStatus swaps one item's status by id and shares the rest of
// the list structurally.
func replaceTaskListStatus(items []types.TaskListItem, itemID, status string) []types.TaskListItem {
	for i, item := range items {
		if item.ID != itemID {
			continue
		}
		next := make([]types.TaskListItem, len(items))
		copy(next, items)
		next[i].Status = status
		return next
	}
	return items
}
