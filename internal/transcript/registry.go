package transcript

import (
	"errors"
	"sort"
	"strings"

	"helm/internal/types"
)

var ErrSessionExists = errors.New("session id already registered")

// Registry holds the in-memory list of conversation sessions and which one
// is active. Removing a session here does not delete its externally
// persisted history.
type Registry struct {
	sessions []*types.Session
	activeID string
}

func NewRegistry() *Registry {
	return &Registry{}
}

// List returns sessions of the given kind, oldest first. An empty kind
// returns every session.
func (r *Registry) List(kind types.SessionKind) []*types.Session {
	if r == nil {
		return nil
	}
	out := make([]*types.Session, 0, len(r.sessions))
	for _, session := range r.sessions {
		if kind != "" && session.Kind != kind {
			continue
		}
		copy := *session
		out = append(out, &copy)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out
}

func (r *Registry) Get(id string) (*types.Session, bool) {
	if r == nil {
		return nil, false
	}
	for _, session := range r.sessions {
		if session.ID == id {
			copy := *session
			return &copy, true
		}
	}
	return nil, false
}

func (r *Registry) Add(session *types.Session) error {
	if r == nil || session == nil || strings.TrimSpace(session.ID) == "" {
		return errors.New("session requires an id")
	}
	for _, existing := range r.sessions {
		if existing.ID == session.ID {
			return ErrSessionExists
		}
	}
	copy := *session
	r.sessions = append(r.sessions, &copy)
	return nil
}

// Remove drops the session from the registry. Removing the active session
// clears the active id; the caller resets the transcript view.
func (r *Registry) Remove(id string) bool {
	if r == nil {
		return false
	}
	filtered := r.sessions[:0]
	removed := false
	for _, session := range r.sessions {
		if session.ID == id {
			removed = true
			continue
		}
		filtered = append(filtered, session)
	}
	r.sessions = filtered
	if removed && r.activeID == id {
		r.activeID = ""
	}
	return removed
}

func (r *Registry) Rename(id, title string) bool {
	if r == nil {
		return false
	}
	for _, session := range r.sessions {
		if session.ID == id {
			session.Title = title
			return true
		}
	}
	return false
}

func (r *Registry) SetActive(id string) bool {
	if r == nil {
		return false
	}
	if id == "" {
		r.activeID = ""
		return true
	}
	for _, session := range r.sessions {
		if session.ID == id {
			r.activeID = id
			return true
		}
	}
	return false
}

func (r *Registry) Active() *types.Session {
	if r == nil || r.activeID == "" {
		return nil
	}
	session, ok := r.Get(r.activeID)
	if !ok {
		return nil
	}
	return session
}

func (r *Registry) ActiveID() string {
	if r == nil {
		return ""
	}
	return r.activeID
}
