package app

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestApprovalSummaryPrefersCommand(t *testing.T) {
	payload := json.RawMessage(`{"reason":"writes to disk","command":"rm -rf ./build"}`)
	if got := approvalSummary(payload); got != "rm -rf ./build" {
		t.Fatalf("unexpected summary %q", got)
	}
}

func TestApprovalSummaryFallsBackToJSON(t *testing.T) {
	payload := json.RawMessage(`{"scope":"network"}`)
	got := approvalSummary(payload)
	if !strings.Contains(got, "network") {
		t.Fatalf("unexpected summary %q", got)
	}
}

func TestApprovalSummaryTruncatesLongText(t *testing.T) {
	payload, _ := json.Marshal(map[string]any{"command": strings.Repeat("x", 500)})
	got := approvalSummary(payload)
	if len([]rune(got)) > approvalSummaryMaxLen {
		t.Fatalf("summary too long: %d runes", len([]rune(got)))
	}
	if !strings.HasSuffix(got, "…") {
		t.Fatalf("expected ellipsis, got %q", got)
	}
}

func TestApprovalSummaryEmptyPayload(t *testing.T) {
	if got := approvalSummary(nil); got != "" {
		t.Fatalf("expected empty summary, got %q", got)
	}
}
