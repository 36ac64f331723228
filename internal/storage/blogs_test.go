package storage

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/docqmentary/plog/internal/models"
)

// newTestUser creates an account for blog ownership tests.
func newTestUser(t *testing.T, s *Store, email string) *User {
	t.Helper()

	user, err := s.GetOrCreateUser(context.Background(), "sub-"+email, email, "Tester")
	if err != nil {
		t.Fatalf("creating test user: %v", err)
	}
	return user
}

func TestCreateBlog_PendingWithTokens(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	user := newTestUser(t, store, "owner@clinic.example")

	blog, err := store.CreateBlog(ctx, user.ID, "clinic-care", "Seoul Clinic", "TTK1", "BTK1")
	if err != nil {
		t.Fatalf("CreateBlog error: %v", err)
	}

	if blog.Status != models.BlogPending {
		t.Errorf("Status = %q, want pending", blog.Status)
	}
	if blog.TitleToken != "TTK1" || blog.BodyToken != "BTK1" {
		t.Errorf("tokens = %q/%q, want TTK1/BTK1", blog.TitleToken, blog.BodyToken)
	}

	// The stored row round-trips with the same tokens.
	got, err := store.GetBlog(ctx, blog.ID)
	if err != nil {
		t.Fatalf("GetBlog error: %v", err)
	}
	if got.TitleToken != "TTK1" || got.BodyToken != "BTK1" {
		t.Errorf("stored tokens = %q/%q, want TTK1/BTK1", got.TitleToken, got.BodyToken)
	}
	if got.OwnerUserID != user.ID {
		t.Errorf("OwnerUserID = %d, want %d", got.OwnerUserID, user.ID)
	}
}

func TestCreateBlog_DuplicatePerOwnerRejected(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	user := newTestUser(t, store, "owner@clinic.example")

	if _, err := store.CreateBlog(ctx, user.ID, "clinic-care", "", "t1", "b1"); err != nil {
		t.Fatalf("first CreateBlog error: %v", err)
	}
	if _, err := store.CreateBlog(ctx, user.ID, "clinic-care", "", "t2", "b2"); err == nil {
		t.Fatal("duplicate naver_blog_id for the same owner should fail")
	}

	// A different owner may claim the same external blog ID.
	other := newTestUser(t, store, "other@clinic.example")
	if _, err := store.CreateBlog(ctx, other.ID, "clinic-care", "", "t3", "b3"); err != nil {
		t.Fatalf("same blog id under another owner should succeed: %v", err)
	}
}

func TestListBlogs_NewestFirstAndScopedToOwner(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	user := newTestUser(t, store, "owner@clinic.example")
	other := newTestUser(t, store, "other@clinic.example")

	first, err := store.CreateBlog(ctx, user.ID, "blog-one", "", "t1", "b1")
	if err != nil {
		t.Fatalf("CreateBlog error: %v", err)
	}
	second, err := store.CreateBlog(ctx, user.ID, "blog-two", "", "t2", "b2")
	if err != nil {
		t.Fatalf("CreateBlog error: %v", err)
	}
	if _, err := store.CreateBlog(ctx, other.ID, "other-blog", "", "t3", "b3"); err != nil {
		t.Fatalf("CreateBlog error: %v", err)
	}

	blogs, err := store.ListBlogs(ctx, user.ID)
	if err != nil {
		t.Fatalf("ListBlogs error: %v", err)
	}

	if len(blogs) != 2 {
		t.Fatalf("got %d blogs, want 2 (owner-scoped)", len(blogs))
	}
	if blogs[0].ID != second.ID || blogs[1].ID != first.ID {
		t.Errorf("order = [%d %d], want newest first [%d %d]",
			blogs[0].ID, blogs[1].ID, second.ID, first.ID)
	}
}

func TestMarkVerified(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	user := newTestUser(t, store, "owner@clinic.example")

	blog, err := store.CreateBlog(ctx, user.ID, "clinic-care", "", "t", "b")
	if err != nil {
		t.Fatalf("CreateBlog error: %v", err)
	}

	when := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	if err := store.MarkVerified(ctx, blog.ID, "https://blog.naver.com/clinic-care/1", when); err != nil {
		t.Fatalf("MarkVerified error: %v", err)
	}

	got, err := store.GetBlog(ctx, blog.ID)
	if err != nil {
		t.Fatalf("GetBlog error: %v", err)
	}
	if got.Status != models.BlogVerified {
		t.Errorf("Status = %q, want verified", got.Status)
	}
	if got.VerifiedAt == nil || !got.VerifiedAt.Equal(when) {
		t.Errorf("VerifiedAt = %v, want %v", got.VerifiedAt, when)
	}
}

func TestDisownBlog_TerminalAndRevokesCollaborators(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	user := newTestUser(t, store, "owner@clinic.example")

	blog, err := store.CreateBlog(ctx, user.ID, "clinic-care", "", "t", "b")
	if err != nil {
		t.Fatalf("CreateBlog error: %v", err)
	}
	if err := store.MarkVerified(ctx, blog.ID, "https://x", time.Now()); err != nil {
		t.Fatalf("MarkVerified error: %v", err)
	}
	if _, err := store.CreateCollaborator(ctx, blog.ID, user.ID, "writer@clinic.example"); err != nil {
		t.Fatalf("CreateCollaborator error: %v", err)
	}

	if err := store.DisownBlog(ctx, blog.ID); err != nil {
		t.Fatalf("DisownBlog error: %v", err)
	}

	got, err := store.GetBlog(ctx, blog.ID)
	if err != nil {
		t.Fatalf("GetBlog error: %v", err)
	}
	if got.Status != models.BlogDisowned {
		t.Errorf("Status = %q, want disowned", got.Status)
	}
	if got.VerifiedAt != nil {
		t.Errorf("VerifiedAt = %v, want cleared", got.VerifiedAt)
	}

	collaborators, err := store.ListCollaborators(ctx, blog.ID)
	if err != nil {
		t.Fatalf("ListCollaborators error: %v", err)
	}
	for _, c := range collaborators {
		if c.Status != models.InvitationRevoked {
			t.Errorf("collaborator %d status = %q, want revoked after disown", c.ID, c.Status)
		}
	}
}

func TestGetBlog_NotFound(t *testing.T) {
	store := newTestStore(t)

	_, err := store.GetBlog(context.Background(), 999)
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("GetBlog(999) error = %v, want ErrNotFound", err)
	}
}
