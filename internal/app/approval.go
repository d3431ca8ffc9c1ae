package app

import (
	"encoding/json"
	"strings"
)

const approvalSummaryMaxLen = 120

// approvalSummary extracts a one-line description from an approval
// payload. Payload shape is provider-defined, so this probes the common
// keys and falls back to compact JSON.
func approvalSummary(payload json.RawMessage) string {
	if len(payload) == 0 {
		return ""
	}
	var fields map[string]any
	if err := json.Unmarshal(payload, &fields); err != nil {
		return truncateSummary(string(payload))
	}
	for _, key := range []string{"command", "tool", "action", "reason", "description"} {
		if text := asString(fields[key]); text != "" {
			return truncateSummary(text)
		}
	}
	compact, err := json.Marshal(fields)
	if err != nil {
		return ""
	}
	return truncateSummary(string(compact))
}

func truncateSummary(text string) string {
	text = strings.TrimSpace(text)
	if idx := strings.IndexByte(text, '\n'); idx >= 0 {
		text = text[:idx]
	}
	runes := []rune(text)
	if len(runes) <= approvalSummaryMaxLen {
		return text
	}
	return string(runes[:approvalSummaryMaxLen-1]) + "…"
}
