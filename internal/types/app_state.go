package types

type AppState struct {
	ActiveSessionID  string            `json:"active_session_id,omitempty"`
	FollowTranscript bool              `json:"follow_transcript,omitempty"`
	ComposeDrafts    map[string]string `json:"compose_drafts,omitempty"`
}
