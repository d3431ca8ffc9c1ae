package types

import "time"

type SessionKind string

const (
	SessionKindUser       SessionKind = "user"
	SessionKindAutonomous SessionKind = "autonomous"
)

type Session struct {
	ID        string      `json:"id"`
	Title     string      `json:"title,omitempty"`
	Kind      SessionKind `json:"kind"`
	CreatedAt time.Time   `json:"created_at"`
}
