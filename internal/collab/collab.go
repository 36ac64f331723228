// Package collab manages collaborator invitations for the selected blog.
//
// The manager is scoped to one blog at a time. Switching blogs clears the
// cached list immediately so stale collaborators are never shown against the
// new selection, and every load is tagged with an epoch so a slow response
// for a previous selection is discarded when it finally arrives.
package collab

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/docqmentary/plog/internal/api"
	"github.com/docqmentary/plog/internal/models"
)

var (
	// ErrEmailRequired is returned when inviting with a blank email. The
	// request is rejected locally; no network call is made.
	ErrEmailRequired = errors.New("collaborator email is required")

	// ErrNoBlog is returned when no blog is scoped.
	ErrNoBlog = errors.New("no blog selected")

	// ErrSuperseded is returned when a load resolves for a blog that is no
	// longer the current scope. Its result has been discarded.
	ErrSuperseded = errors.New("collaborator load superseded by a newer selection")
)

// Manager caches the invitations of the currently scoped blog.
type Manager struct {
	api *api.Client

	mu            sync.Mutex
	blogID        int64
	epoch         uint64
	collaborators []models.Collaborator
}

// NewManager creates a collaborator manager on top of the given gateway.
func NewManager(gateway *api.Client) *Manager {
	return &Manager{api: gateway}
}

// SetBlog re-scopes the manager to a different blog. The cached list is
// cleared before anything loads and in-flight loads for the old blog are
// invalidated. A blogID of 0 clears the scope entirely.
func (m *Manager) SetBlog(blogID int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if blogID == m.blogID {
		return
	}
	m.blogID = blogID
	m.epoch++
	m.collaborators = nil
}

// Load fetches the scoped blog's collaborators and replaces the cache. If
// the scope changed while the fetch was in flight the result is dropped and
// ErrSuperseded is returned.
func (m *Manager) Load(ctx context.Context, apiKey string) ([]models.Collaborator, error) {
	m.mu.Lock()
	blogID, epoch := m.blogID, m.epoch
	m.mu.Unlock()

	if blogID == 0 {
		return nil, ErrNoBlog
	}

	collaborators, err := m.api.FetchCollaborators(ctx, apiKey, blogID)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if epoch != m.epoch {
		return nil, ErrSuperseded
	}
	m.collaborators = collaborators
	return m.snapshot(), nil
}

// Invite sends a pending invitation to the given email, then re-lists to
// pick up the server-assigned id, status, and timestamp. No collaborator
// record is ever synthesized locally.
func (m *Manager) Invite(ctx context.Context, apiKey, email string) ([]models.Collaborator, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return nil, ErrEmailRequired
	}

	m.mu.Lock()
	blogID := m.blogID
	m.mu.Unlock()
	if blogID == 0 {
		return nil, ErrNoBlog
	}

	if err := m.api.InviteCollaborator(ctx, apiKey, blogID, email); err != nil {
		return nil, err
	}
	return m.Load(ctx, apiKey)
}

// Revoke revokes an invitation, then re-lists for authoritative state.
func (m *Manager) Revoke(ctx context.Context, apiKey string, collaboratorID int64) ([]models.Collaborator, error) {
	m.mu.Lock()
	blogID := m.blogID
	m.mu.Unlock()
	if blogID == 0 {
		return nil, ErrNoBlog
	}

	if err := m.api.RevokeCollaborator(ctx, apiKey, blogID, collaboratorID); err != nil {
		return nil, err
	}
	return m.Load(ctx, apiKey)
}

// BlogID returns the currently scoped blog, or 0 when unscoped.
func (m *Manager) BlogID() int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.blogID
}

// Collaborators returns a copy of the cached invitation list.
func (m *Manager) Collaborators() []models.Collaborator {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snapshot()
}

// snapshot copies the cached list. Callers must hold mu.
func (m *Manager) snapshot() []models.Collaborator {
	out := make([]models.Collaborator, len(m.collaborators))
	copy(out, m.collaborators)
	return out
}
