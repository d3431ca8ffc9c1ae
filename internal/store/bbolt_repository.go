package store

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	bolt "go.etcd.io/bbolt"

	"helm/internal/types"
)

var (
	bucketSessions = []byte("sessions")
	bucketAppState = []byte("app_state")
	keyAppState    = []byte("state")
)

type bboltRepository struct {
	db       *bolt.DB
	sessions SessionStore
	appState AppStateStore
}

func NewBboltRepository(path string) (Repository, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, errors.New("repository db path is required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, err
	}
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: 2 * time.Second})
	if err != nil {
		return nil, err
	}
	if err := initBboltSchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &bboltRepository{
		db:       db,
		sessions: &bboltSessionStore{db: db},
		appState: &bboltAppStateStore{db: db},
	}, nil
}

func (r *bboltRepository) Sessions() SessionStore {
	return r.sessions
}

func (r *bboltRepository) AppState() AppStateStore {
	return r.appState
}

func (r *bboltRepository) Backend() string {
	return RepositoryBackendBbolt
}

func (r *bboltRepository) Close() error {
	if r == nil || r.db == nil {
		return nil
	}
	return r.db.Close()
}

func initBboltSchema(db *bolt.DB) error {
	return db.Update(func(tx *bolt.Tx) error {
		if _, err := tx.CreateBucketIfNotExists(bucketSessions); err != nil {
			return err
		}
		_, err := tx.CreateBucketIfNotExists(bucketAppState)
		return err
	})
}

type bboltSessionStore struct {
	db *bolt.DB
	mu sync.Mutex
}

func (s *bboltSessionStore) List(ctx context.Context) ([]*types.Session, error) {
	out := make([]*types.Session, 0)
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketSessions)
		if b == nil {
			return nil
		}
		return b.ForEach(func(_, v []byte) error {
			var session types.Session
			if err := json.Unmarshal(v, &session); err != nil {
				return err
			}
			out = append(out, &session)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (s *bboltSessionStore) Get(ctx context.Context, id string) (*types.Session, bool, error) {
	var (
		out *types.Session
		ok  bool
	)
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketSessions)
		if b == nil {
			return nil
		}
		raw := b.Get([]byte(id))
		if len(raw) == 0 {
			return nil
		}
		var session types.Session
		if err := json.Unmarshal(raw, &session); err != nil {
			return err
		}
		out = &session
		ok = true
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	return out, ok, nil
}

func (s *bboltSessionStore) Upsert(ctx context.Context, session *types.Session) (*types.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if session == nil || session.ID == "" {
		return nil, errors.New("session requires an id")
	}
	normalized := normalizeSession(session)
	raw, err := json.Marshal(normalized)
	if err != nil {
		return nil, err
	}
	err = s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketSessions).Put([]byte(normalized.ID), raw)
	})
	if err != nil {
		return nil, err
	}
	return cloneSession(normalized), nil
}

func (s *bboltSessionStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketSessions)
		if len(b.Get([]byte(id))) == 0 {
			return errors.New("session not found")
		}
		return b.Delete([]byte(id))
	})
}

type bboltAppStateStore struct {
	db *bolt.DB
	mu sync.Mutex
}

func (s *bboltAppStateStore) Load(ctx context.Context) (*types.AppState, error) {
	state := &types.AppState{}
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketAppState)
		if b == nil {
			return nil
		}
		raw := b.Get(keyAppState)
		if len(raw) == 0 {
			return nil
		}
		return json.Unmarshal(raw, state)
	})
	if err != nil {
		return nil, err
	}
	return state, nil
}

func (s *bboltAppStateStore) Save(ctx context.Context, state *types.AppState) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if state == nil {
		return errors.New("state is required")
	}
	raw, err := json.Marshal(state)
	if err != nil {
		return err
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketAppState).Put(keyAppState, raw)
	})
}
