package types

import "time"

// FollowupQuestion is a transient overlay attached to the most recent
// in-flight assistant message, not part of its block sequence.
type FollowupQuestion struct {
	ID        string    `json:"id"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
}

type FollowupQuestionEvent struct {
	QuestionID string `json:"question_id"`
	Text       string `json:"text"`
}

type FollowupClearEvent struct {
	QuestionID string `json:"question_id"`
}
