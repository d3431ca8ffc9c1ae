package store

import (
	"context"
	"errors"
	"os"
	"sort"
	"sync"
	"time"

	"helm/internal/types"
)

const sessionFileSchemaVersion = 1

type SessionStore interface {
	List(ctx context.Context) ([]*types.Session, error)
	Get(ctx context.Context, id string) (*types.Session, bool, error)
	Upsert(ctx context.Context, session *types.Session) (*types.Session, error)
	Delete(ctx context.Context, id string) error
}

type FileSessionStore struct {
	path string
	mu   sync.Mutex
}

type sessionFile struct {
	Version  int              `json:"version"`
	Sessions []*types.Session `json:"sessions"`
}

func NewFileSessionStore(path string) *FileSessionStore {
	return &FileSessionStore{path: path}
}

func (s *FileSessionStore) List(ctx context.Context) ([]*types.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	file, err := s.load()
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []*types.Session{}, nil
		}
		return nil, err
	}
	out := make([]*types.Session, 0, len(file.Sessions))
	for _, session := range file.Sessions {
		out = append(out, cloneSession(session))
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (s *FileSessionStore) Get(ctx context.Context, id string) (*types.Session, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	file, err := s.load()
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, false, nil
		}
		return nil, false, err
	}
	for _, session := range file.Sessions {
		if session != nil && session.ID == id {
			return cloneSession(session), true, nil
		}
	}
	return nil, false, nil
}

func (s *FileSessionStore) Upsert(ctx context.Context, session *types.Session) (*types.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if session == nil || session.ID == "" {
		return nil, errors.New("session requires an id")
	}
	file, err := s.load()
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, err
	}
	if file == nil {
		file = newSessionFile()
	}

	normalized := normalizeSession(session)
	updated := false
	for i, existing := range file.Sessions {
		if existing != nil && existing.ID == normalized.ID {
			file.Sessions[i] = normalized
			updated = true
			break
		}
	}
	if !updated {
		file.Sessions = append(file.Sessions, normalized)
	}

	if err := s.save(file); err != nil {
		return nil, err
	}
	return cloneSession(normalized), nil
}

func (s *FileSessionStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	file, err := s.load()
	if err != nil {
		return err
	}
	filtered := file.Sessions[:0]
	found := false
	for _, session := range file.Sessions {
		if session != nil && session.ID == id {
			found = true
			continue
		}
		filtered = append(filtered, session)
	}
	file.Sessions = filtered
	if !found {
		return errors.New("session not found")
	}
	return s.save(file)
}

func (s *FileSessionStore) load() (*sessionFile, error) {
	file := newSessionFile()
	if err := readJSON(s.path, file); err != nil {
		return nil, err
	}
	if file.Version == 0 {
		file.Version = sessionFileSchemaVersion
	}
	return file, nil
}

func (s *FileSessionStore) save(file *sessionFile) error {
	file.Version = sessionFileSchemaVersion
	return writeJSONAtomic(s.path, file)
}

func newSessionFile() *sessionFile {
	return &sessionFile{
		Version:  sessionFileSchemaVersion,
		Sessions: []*types.Session{},
	}
}

func normalizeSession(session *types.Session) *types.Session {
	clone := cloneSession(session)
	if clone.Kind == "" {
		clone.Kind = types.SessionKindUser
	}
	if clone.CreatedAt.IsZero() {
		clone.CreatedAt = time.Now().UTC()
	}
	return clone
}

func cloneSession(session *types.Session) *types.Session {
	if session == nil {
		return nil
	}
	clone := *session
	return &clone
}
