package app

import (
	"time"

	"helm/internal/transcript"
	"helm/internal/types"
)

// historyToMessages projects persisted history items into transcript
// messages. Items the projection does not recognize are skipped; a
// malformed entry never blocks the rest of the history.
func historyToMessages(sessionID string, items []map[string]any) []*transcript.Message {
	messages := make([]*transcript.Message, 0, len(items))
	for _, item := range items {
		if msg := historyItemToMessage(sessionID, item); msg != nil {
			messages = append(messages, msg)
		}
	}
	return messages
}

func historyItemToMessage(sessionID string, item map[string]any) *transcript.Message {
	if item == nil {
		return nil
	}
	switch asString(item["type"]) {
	case "userMessage":
		text := asString(item["text"])
		if text == "" {
			return nil
		}
		return &transcript.Message{
			ID:        asString(item["id"]),
			SessionID: sessionID,
			Role:      transcript.RoleUser,
			Text:      text,
			CreatedAt: asTime(item["created_at"]),
		}
	case "assistantMessage":
		taskID := asString(item["task_id"])
		if taskID == "" {
			return nil
		}
		status := types.TaskStatus(asString(item["status"]))
		if status == "" {
			status = types.TaskStatusCompleted
		}
		msg := &transcript.Message{
			ID:        asString(item["id"]),
			SessionID: sessionID,
			Role:      transcript.RoleAssistant,
			TaskID:    taskID,
			Status:    status,
			Result:    asString(item["result"]),
			Error:     asString(item["error"]),
			CreatedAt: asTime(item["created_at"]),
		}
		switch status {
		case types.TaskStatusCompleted:
			msg.Activity = transcript.ActivityCompleted
		case types.TaskStatusFailed:
			msg.Activity = transcript.ActivityError
		default:
			msg.Activity = transcript.ActivityIdle
		}
		if text := asString(item["text"]); text != "" {
			msg.Blocks = append(msg.Blocks, transcript.Block{Kind: transcript.BlockText, Content: text})
			msg.PlainText = text
		}
		return msg
	}
	return nil
}

func asString(raw any) string {
	text, _ := raw.(string)
	return text
}

func asTime(raw any) time.Time {
	text, ok := raw.(string)
	if !ok || text == "" {
		return time.Time{}
	}
	ts, err := time.Parse(time.RFC3339Nano, text)
	if err != nil {
		return time.Time{}
	}
	return ts
}
