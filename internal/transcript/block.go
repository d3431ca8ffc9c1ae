package transcript

import (
	"encoding/json"
	"time"
)

type BlockKind string

const (
	BlockText     BlockKind = "text"
	BlockThinking BlockKind = "thinking"
	BlockToolCall BlockKind = "tool_call"
	BlockMedia    BlockKind = "media"
)

// Block is one unit of renderable content within a message. Kind selects
// which payload fields are meaningful; consumers switch on Kind exhaustively
// rather than probing fields.
type Block struct {
	Kind      BlockKind
	Content   string // text and thinking blocks
	Streaming bool   // text and thinking blocks
	Tool      *ToolCallInfo
	Media     *MediaInfo
}

type ToolCallInfo struct {
	TaskID        string
	AgentType     string
	Step          string
	Tool          string
	ToolName      string
	Args          json.RawMessage
	Success       bool
	Summary       string
	Duration      time.Duration
	ResultPreview string
	Timestamp     time.Time
}

type MediaInfo struct {
	Kind       string
	Ref        string
	Title      string
	PlaylistID string
	StartAt    float64
}

func newTextBlock(content string) Block {
	return Block{Kind: BlockText, Content: content, Streaming: true}
}

func newThinkingBlock(content string) Block {
	return Block{Kind: BlockThinking, Content: content, Streaming: true}
}
