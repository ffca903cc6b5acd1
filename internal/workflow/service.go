package workflow

import (
	"sync"

	"github.com/google/uuid"

	"github.com/feedflow/feedflow/internal/feed"
	"github.com/feedflow/feedflow/internal/history"
	"github.com/feedflow/feedflow/internal/mapping"
)

// Config tunes per-session behavior.
type Config struct {
	// MaxFileSize bounds uploads in bytes. Zero means feed.DefaultMaxFileSize.
	MaxFileSize int64
	// PreviewRows is how many rows an upload snapshot keeps for listings.
	PreviewRows int
	// KeepFullRows stores the complete dataset in upload snapshots so a
	// session can be re-hydrated from history.
	KeepFullRows bool
}

// DefaultPreviewRows matches the preview length shown after an upload.
const DefaultPreviewRows = 10

func (c Config) withDefaults() Config {
	if c.MaxFileSize <= 0 {
		c.MaxFileSize = feed.DefaultMaxFileSize
	}
	if c.PreviewRows <= 0 {
		c.PreviewRows = DefaultPreviewRows
	}
	return c
}

// Service owns the live sessions. Each session holds the state of one feed
// normalization run; snapshots go to the injected repository.
type Service struct {
	repo    history.Repository
	catalog []mapping.TargetField
	cfg     Config

	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewService wires a session service to its snapshot store and target
// catalog.
func NewService(repo history.Repository, catalog []mapping.TargetField, cfg Config) *Service {
	return &Service{
		repo:     repo,
		catalog:  catalog,
		cfg:      cfg.withDefaults(),
		sessions: make(map[string]*Session),
	}
}

// History exposes the snapshot store for read endpoints.
func (s *Service) History() history.Repository {
	return s.repo
}

// Catalog returns the target field catalog sessions map against.
func (s *Service) Catalog() []mapping.TargetField {
	out := make([]mapping.TargetField, len(s.catalog))
	copy(out, s.catalog)
	return out
}

// CreateSession registers a new empty session and returns it.
func (s *Service) CreateSession() *Session {
	sess := &Session{
		ID:      uuid.NewString(),
		repo:    s.repo,
		catalog: s.catalog,
		cfg:     s.cfg,
		state:   StateEmpty,
	}

	s.mu.Lock()
	s.sessions[sess.ID] = sess
	s.mu.Unlock()
	return sess
}

// Session looks up a live session by id.
func (s *Service) Session(id string) (*Session, error) {
	s.mu.RLock()
	sess, ok := s.sessions[id]
	s.mu.RUnlock()
	if !ok {
		return nil, ErrSessionNotFound
	}
	return sess, nil
}

// RemoveSession drops a session. Snapshots already saved stay in history.
func (s *Service) RemoveSession(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[id]; !ok {
		return ErrSessionNotFound
	}
	delete(s.sessions, id)
	return nil
}
