package app

import (
	"time"

	"helm/internal/types"
)

type sessionsMsg struct {
	sessions []*types.Session
	err      error
}

type sessionCreatedMsg struct {
	session *types.Session
	err     error
}

type sessionDeletedMsg struct {
	id  string
	err error
}

type storedSessionsMsg struct {
	sessions []*types.Session
	err      error
}

type sessionsPersistedMsg struct {
	err error
}

type historyMsg struct {
	id    string
	items []map[string]any
	err   error
}

type feedMsg struct {
	id     string
	ch     <-chan types.TaskEvent
	cancel func()
	err    error
}

type submitMsg struct {
	id     string
	taskID string
	text   string
	err    error
}

type cancelMsg struct {
	id     string
	taskID string
	err    error
}

type followupAnsweredMsg struct {
	id         string
	questionID string
	err        error
}

type approvalRespondedMsg struct {
	id         string
	approvalID string
	approved   bool
	err        error
}

type appStateLoadedMsg struct {
	state *types.AppState
	err   error
}

type appStateSavedMsg struct {
	err error
}

type clipboardResultMsg struct {
	success string
	err     error
}

type tickMsg time.Time
