package collab

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/docqmentary/plog/internal/api"
	"github.com/docqmentary/plog/internal/models"
)

// collaboratorsByBlog serves GET list requests from a fixed per-blog map and
// records invite/revoke calls. release, when non-nil, makes list responses
// wait until the channel is closed, so tests can hold a fetch in flight.
type collaboratorsByBlog struct {
	lists   map[string][]models.Collaborator
	release chan struct{}

	invited []string
	revoked []string
}

func newCollabServer(t *testing.T, backend *collaboratorsByBlog) *Manager {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("GET /blogs/{id}/collaborators", func(w http.ResponseWriter, r *http.Request) {
		if backend.release != nil {
			<-backend.release
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string][]models.Collaborator{
			"collaborators": backend.lists[r.PathValue("id")],
		})
	})
	mux.HandleFunc("POST /blogs/{id}/collaborators", func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Email string `json:"email"`
		}
		_ = json.NewDecoder(r.Body).Decode(&body)
		backend.invited = append(backend.invited, r.PathValue("id")+":"+body.Email)
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{"invitation": models.Collaborator{}})
	})
	mux.HandleFunc("DELETE /blogs/{id}/collaborators/{collaboratorID}", func(w http.ResponseWriter, r *http.Request) {
		backend.revoked = append(backend.revoked, r.PathValue("id")+":"+r.PathValue("collaboratorID"))
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(models.StatusResponse{Status: "revoked"})
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return NewManager(api.NewClient(srv.URL))
}

func TestLoad(t *testing.T) {
	ctx := context.Background()
	backend := &collaboratorsByBlog{lists: map[string][]models.Collaborator{
		"1": {{ID: 10, Email: "a@clinic.example", Status: models.InvitationPending}},
	}}
	manager := newCollabServer(t, backend)

	manager.SetBlog(1)
	collaborators, err := manager.Load(ctx, "key")
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if len(collaborators) != 1 || collaborators[0].Email != "a@clinic.example" {
		t.Errorf("collaborators = %+v", collaborators)
	}
	if got := manager.Collaborators(); len(got) != 1 {
		t.Errorf("cached list has %d entries, want 1", len(got))
	}
}

func TestLoad_NoBlogScoped(t *testing.T) {
	manager := newCollabServer(t, &collaboratorsByBlog{})

	_, err := manager.Load(context.Background(), "key")
	if !errors.Is(err, ErrNoBlog) {
		t.Errorf("Load error = %v, want ErrNoBlog", err)
	}
}

func TestSetBlog_ClearsCacheImmediately(t *testing.T) {
	ctx := context.Background()
	backend := &collaboratorsByBlog{lists: map[string][]models.Collaborator{
		"1": {{ID: 10, Email: "a@clinic.example"}},
	}}
	manager := newCollabServer(t, backend)

	manager.SetBlog(1)
	if _, err := manager.Load(ctx, "key"); err != nil {
		t.Fatalf("Load error: %v", err)
	}

	// Re-scoping empties the list before anything loads for the new blog.
	manager.SetBlog(2)
	if got := manager.Collaborators(); len(got) != 0 {
		t.Errorf("cache after SetBlog = %+v, want empty", got)
	}

	// Scoping to the same blog again is a no-op and keeps the cache.
	manager.SetBlog(2)
	if _, err := manager.Load(ctx, "key"); err != nil {
		t.Fatalf("Load error: %v", err)
	}
}

func TestLoad_StaleResponseDiscarded(t *testing.T) {
	ctx := context.Background()
	backend := &collaboratorsByBlog{
		lists: map[string][]models.Collaborator{
			"1": {{ID: 10, Email: "stale@clinic.example"}},
		},
		release: make(chan struct{}),
	}
	manager := newCollabServer(t, backend)

	manager.SetBlog(1)

	// Start a load for blog 1 and hold its response in flight.
	result := make(chan error, 1)
	go func() {
		_, err := manager.Load(ctx, "key")
		result <- err
	}()

	// Give the goroutine time to issue the request, then switch blogs.
	time.Sleep(50 * time.Millisecond)
	manager.SetBlog(2)
	close(backend.release)

	if err := <-result; !errors.Is(err, ErrSuperseded) {
		t.Fatalf("stale load error = %v, want ErrSuperseded", err)
	}
	if got := manager.Collaborators(); len(got) != 0 {
		t.Errorf("stale response reached the cache: %+v", got)
	}
}

func TestInvite(t *testing.T) {
	ctx := context.Background()
	backend := &collaboratorsByBlog{lists: map[string][]models.Collaborator{
		"1": {{ID: 10, Email: "writer@clinic.example", Status: models.InvitationPending}},
	}}
	manager := newCollabServer(t, backend)
	manager.SetBlog(1)

	collaborators, err := manager.Invite(ctx, "key", "  writer@clinic.example  ")
	if err != nil {
		t.Fatalf("Invite error: %v", err)
	}

	if len(backend.invited) != 1 || backend.invited[0] != "1:writer@clinic.example" {
		t.Errorf("invited = %v, want trimmed email against blog 1", backend.invited)
	}
	// The returned list comes from the follow-up fetch, never local synthesis.
	if len(collaborators) != 1 || collaborators[0].ID != 10 {
		t.Errorf("collaborators = %+v, want the server-assigned record", collaborators)
	}
}

func TestInvite_BlankEmailRejectedLocally(t *testing.T) {
	backend := &collaboratorsByBlog{}
	manager := newCollabServer(t, backend)
	manager.SetBlog(1)

	_, err := manager.Invite(context.Background(), "key", "   ")
	if !errors.Is(err, ErrEmailRequired) {
		t.Fatalf("Invite error = %v, want ErrEmailRequired", err)
	}
	if len(backend.invited) != 0 {
		t.Error("blank email reached the network")
	}
}

func TestInvite_NoBlogScoped(t *testing.T) {
	manager := newCollabServer(t, &collaboratorsByBlog{})

	_, err := manager.Invite(context.Background(), "key", "writer@clinic.example")
	if !errors.Is(err, ErrNoBlog) {
		t.Errorf("Invite error = %v, want ErrNoBlog", err)
	}
}

func TestRevoke(t *testing.T) {
	ctx := context.Background()
	backend := &collaboratorsByBlog{lists: map[string][]models.Collaborator{
		"1": {{ID: 10, Email: "writer@clinic.example", Status: models.InvitationRevoked}},
	}}
	manager := newCollabServer(t, backend)
	manager.SetBlog(1)

	collaborators, err := manager.Revoke(ctx, "key", 10)
	if err != nil {
		t.Fatalf("Revoke error: %v", err)
	}

	if len(backend.revoked) != 1 || backend.revoked[0] != "1:10" {
		t.Errorf("revoked = %v, want collaborator 10 on blog 1", backend.revoked)
	}
	if len(collaborators) != 1 || collaborators[0].Status != models.InvitationRevoked {
		t.Errorf("collaborators = %+v, want the re-fetched revoked record", collaborators)
	}
}

func TestRevoke_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodDelete {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusForbidden)
			_ = json.NewEncoder(w).Encode(map[string]string{"detail": "Only the owner can manage collaborators"})
			return
		}
		http.NotFound(w, r)
	}))
	defer srv.Close()

	manager := NewManager(api.NewClient(srv.URL))
	manager.SetBlog(1)

	_, err := manager.Revoke(context.Background(), "key", 10)
	if err == nil {
		t.Fatal("Revoke should surface the gateway error")
	}
	if !strings.Contains(err.Error(), "Only the owner can manage collaborators") {
		t.Errorf("error = %v, want the server detail message", err)
	}
}
