// Package session owns the current authenticated identity.
//
// Exactly one session is active per client instance. The store restores it
// from a persisted single-slot cache at startup, replaces it on login, and
// clears it on logout. A corrupt or missing cache entry means "not signed
// in", never an error surfaced to the user.
package session

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	"github.com/docqmentary/plog/internal/models"
)

// Store holds the in-memory session and writes every change through to the
// cache. Consumers must treat an absent session as "signed out" only once
// Bootstrapping reports false.
type Store struct {
	cache Cache

	mu            sync.Mutex
	session       *models.Session
	bootstrapping bool
}

// NewStore creates a Store backed by the given cache. The store reports
// bootstrapping until Restore has run.
func NewStore(cache Cache) *Store {
	return &Store{
		cache:         cache,
		bootstrapping: true,
	}
}

// Restore loads the persisted session, if any. Malformed cache data is
// logged and swallowed; the store simply stays signed out. Bootstrapping is
// cleared regardless of outcome.
func (s *Store) Restore(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	defer func() { s.bootstrapping = false }()

	data, err := s.cache.Read(ctx)
	if err != nil {
		slog.Warn("failed to read session cache", "error", err)
		return
	}
	if data == nil {
		return
	}

	var sess models.Session
	if err := json.Unmarshal(data, &sess); err != nil {
		slog.Warn("failed to restore session", "error", err)
		return
	}
	s.session = &sess
}

// Set replaces the session and persists it; a nil session clears the
// persisted copy. The replacement is a full overwrite, never a merge.
func (s *Store) Set(ctx context.Context, sess *models.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if sess == nil {
		s.session = nil
		if err := s.cache.Clear(ctx); err != nil {
			return fmt.Errorf("clearing session: %w", err)
		}
		return nil
	}

	copied := *sess
	s.session = &copied

	data, err := json.Marshal(&copied)
	if err != nil {
		return fmt.Errorf("serializing session: %w", err)
	}
	if err := s.cache.Write(ctx, data); err != nil {
		return fmt.Errorf("persisting session: %w", err)
	}
	return nil
}

// Logout clears the session.
func (s *Store) Logout(ctx context.Context) error {
	return s.Set(ctx, nil)
}

// Current returns the active session, or nil when signed out.
func (s *Store) Current() *models.Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.session == nil {
		return nil
	}
	copied := *s.session
	return &copied
}

// APIKey returns the active credential, or "" when signed out.
func (s *Store) APIKey() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.session == nil {
		return ""
	}
	return s.session.APIKey
}

// Bootstrapping reports whether the initial restore is still outstanding.
func (s *Store) Bootstrapping() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.bootstrapping
}
