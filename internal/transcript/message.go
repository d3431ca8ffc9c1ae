package transcript

import (
	"time"

	"helm/internal/types"
)

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one transcript entry. User messages carry Text and nothing
// else; assistant messages are correlated to an orchestrator task by TaskID
// and accumulate blocks as events arrive.
type Message struct {
	ID        string
	SessionID string
	Role      Role
	CreatedAt time.Time

	Text string

	TaskID       string
	Status       types.TaskStatus
	Activity     Activity
	Blocks       []Block
	Result       string
	Error        string
	Streaming    bool
	PlainText    string
	TaskList     []types.TaskListItem
	Followup     *types.FollowupQuestion
	Approval     *types.ApprovalRequest
	Checkpoints  []types.Checkpoint
	ContextUsage *types.ContextUsage
}

func (m *Message) Terminal() bool {
	return m != nil && m.Status.Terminal()
}

// lastStreaming returns the index of the newest block of the given kind that
// is still streaming, or -1.
func (m *Message) lastStreaming(kind BlockKind) int {
	for i := len(m.Blocks) - 1; i >= 0; i-- {
		if m.Blocks[i].Kind == kind && m.Blocks[i].Streaming {
			return i
		}
	}
	return -1
}

func (m *Message) freezeStreaming(kinds ...BlockKind) bool {
	changed := false
	for i := range m.Blocks {
		if !m.Blocks[i].Streaming {
			continue
		}
		for _, kind := range kinds {
			if m.Blocks[i].Kind == kind {
				m.Blocks[i].Streaming = false
				changed = true
				break
			}
		}
	}
	return changed
}

func (m *Message) removeStreaming(kind BlockKind) bool {
	removed := false
	blocks := m.Blocks[:0]
	for _, block := range m.Blocks {
		if block.Kind == kind && block.Streaming {
			removed = true
			continue
		}
		blocks = append(blocks, block)
	}
	m.Blocks = blocks
	return removed
}
