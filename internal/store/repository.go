package store

import (
	"context"
	"errors"
	"strings"

	"helm/internal/types"
)

const (
	RepositoryBackendFile  = "file"
	RepositoryBackendBbolt = "bbolt"
)

// Repository bundles the persistent stores behind the UI: the session
// registry and the last-known application state.
type Repository interface {
	Sessions() SessionStore
	AppState() AppStateStore
	Backend() string
	Close() error
}

type RepositoryPaths struct {
	SessionsPath string
	AppStatePath string
	DBPath       string
}

type fileRepository struct {
	sessions SessionStore
	appState AppStateStore
}

func NewFileRepository(paths RepositoryPaths) Repository {
	return &fileRepository{
		sessions: NewFileSessionStore(paths.SessionsPath),
		appState: NewFileAppStateStore(paths.AppStatePath),
	}
}

func (r *fileRepository) Sessions() SessionStore {
	return r.sessions
}

func (r *fileRepository) AppState() AppStateStore {
	return r.appState
}

func (r *fileRepository) Backend() string {
	return RepositoryBackendFile
}

func (r *fileRepository) Close() error {
	return nil
}

func OpenRepository(paths RepositoryPaths, backend string) (Repository, error) {
	switch strings.ToLower(strings.TrimSpace(backend)) {
	case "", RepositoryBackendBbolt:
		if strings.TrimSpace(paths.DBPath) == "" {
			return nil, errors.New("db path is required for bbolt repository")
		}
		return NewBboltRepository(paths.DBPath)
	case RepositoryBackendFile:
		return NewFileRepository(paths), nil
	default:
		return nil, errors.New("unsupported repository backend: " + backend)
	}
}

// SeedRepositoryFromFiles migrates file-backed data into dst when dst is
// empty. Keeps startup backward-compatible for users upgrading from the
// file backend.
func SeedRepositoryFromFiles(ctx context.Context, dst Repository, paths RepositoryPaths) error {
	if dst == nil || dst.Backend() == RepositoryBackendFile {
		return nil
	}
	src := NewFileRepository(paths)
	defer src.Close()

	if err := seedSessions(ctx, dst.Sessions(), src.Sessions()); err != nil {
		return err
	}
	return seedAppState(ctx, dst.AppState(), src.AppState())
}

func seedSessions(ctx context.Context, dst, src SessionStore) error {
	if dst == nil || src == nil {
		return nil
	}
	current, err := dst.List(ctx)
	if err != nil {
		return err
	}
	if len(current) > 0 {
		return nil
	}
	legacy, err := src.List(ctx)
	if err != nil {
		return err
	}
	for _, session := range legacy {
		if _, err := dst.Upsert(ctx, session); err != nil {
			return err
		}
	}
	return nil
}

func seedAppState(ctx context.Context, dst, src AppStateStore) error {
	if dst == nil || src == nil {
		return nil
	}
	current, err := dst.Load(ctx)
	if err != nil {
		return err
	}
	if !isZeroAppState(current) {
		return nil
	}
	legacy, err := src.Load(ctx)
	if err != nil {
		return err
	}
	if isZeroAppState(legacy) {
		return nil
	}
	return dst.Save(ctx, legacy)
}

func isZeroAppState(state *types.AppState) bool {
	if state == nil {
		return true
	}
	if strings.TrimSpace(state.ActiveSessionID) != "" {
		return false
	}
	if state.FollowTranscript {
		return false
	}
	return len(state.ComposeDrafts) == 0
}
