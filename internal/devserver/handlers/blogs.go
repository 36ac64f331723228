package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/docqmentary/plog/internal/models"
	"github.com/docqmentary/plog/internal/posts"
	"github.com/docqmentary/plog/internal/storage"
)

// blogTokenLength matches the url-safe tokens the hosted service generates.
const blogTokenLength = 20

// ListBlogs handles GET /blogs. Blogs are returned newest first; the client
// relies on this order being stable and never re-sorts.
func ListBlogs(store *storage.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		user := currentUser(r)

		blogs, err := store.ListBlogs(ctx, user.ID)
		if err != nil {
			slog.Error("failed to list blogs", "user_id", user.ID, "error", err)
			writeDetail(w, http.StatusInternalServerError, "Failed to list blogs")
			return
		}

		payloads := make([]models.Blog, 0, len(blogs))
		for i := range blogs {
			payloads = append(payloads, blogs[i].Payload())
		}
		writeJSON(w, http.StatusOK, payloads)
	}
}

// CreateBlog handles POST /blogs. It registers the blog in pending state and
// returns the complete record including freshly generated verification
// tokens, so the client needs no follow-up read.
func CreateBlog(store *storage.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		user := currentUser(r)

		var body struct {
			NaverBlogID string `json:"naver_blog_id"`
			Title       string `json:"title"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			writeDetail(w, http.StatusBadRequest, "Invalid JSON body")
			return
		}

		naverBlogID := strings.TrimSpace(body.NaverBlogID)
		if naverBlogID == "" {
			writeDetail(w, http.StatusBadRequest, "naver_blog_id is required")
			return
		}

		blog, err := store.CreateBlog(ctx, user.ID, naverBlogID, strings.TrimSpace(body.Title),
			newToken(blogTokenLength), newToken(blogTokenLength))
		if err != nil {
			if strings.Contains(err.Error(), "UNIQUE") {
				writeDetail(w, http.StatusBadRequest, "Blog is already registered for this account")
				return
			}
			slog.Error("failed to create blog", "user_id", user.ID, "error", err)
			writeDetail(w, http.StatusInternalServerError, "Failed to create blog")
			return
		}

		writeJSON(w, http.StatusOK, blog.Payload())
	}
}

// VerifyBlog handles POST /blogs/{id}/verify. The verification post must
// contain the blog's title token in its title and body token in its body.
// Outcomes are reported in the response status, not the HTTP code: a 200
// reply may still carry status "failed", and the client must re-list for
// authoritative blog state. Disowned blogs are terminal and never leave
// that state. When the client supplies no title/body hints and a fetcher is
// configured, the server fetches the post itself.
func VerifyBlog(store *storage.Store, fetcher *posts.Fetcher) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		user := currentUser(r)

		blogID, err := parseID(r, "id")
		if err != nil {
			writeDetail(w, http.StatusBadRequest, err.Error())
			return
		}

		var body struct {
			PostURL string `json:"post_url"`
			Title   string `json:"title"`
			Body    string `json:"body"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			writeDetail(w, http.StatusBadRequest, "Invalid JSON body")
			return
		}
		if strings.TrimSpace(body.PostURL) == "" {
			writeDetail(w, http.StatusBadRequest, "post_url is required")
			return
		}

		blog, err := store.GetBlog(ctx, blogID)
		if err != nil {
			writeJSON(w, http.StatusOK, models.StatusResponse{Status: "not_found", Reason: "blog not found"})
			return
		}
		if blog.OwnerUserID != user.ID {
			writeJSON(w, http.StatusOK, models.StatusResponse{Status: "forbidden", Reason: "only the owner can verify"})
			return
		}
		if blog.Status == models.BlogDisowned {
			writeJSON(w, http.StatusOK, models.StatusResponse{Status: "disowned", Reason: "blog has been disowned"})
			return
		}
		if blog.TitleToken == "" || blog.BodyToken == "" {
			writeJSON(w, http.StatusOK, models.StatusResponse{Status: "not_found", Reason: "verification tokens missing"})
			return
		}

		title, postBody := body.Title, body.Body
		if (title == "" || postBody == "") && fetcher != nil {
			if hints, err := fetcher.ExtractHints(ctx, body.PostURL); err != nil {
				slog.Warn("failed to fetch verification post", "url", body.PostURL, "error", err)
			} else {
				title, postBody = hints.Title, hints.Body
			}
		}
		if title == "" || postBody == "" {
			reason := "post title/body could not be determined"
			if err := store.RecordVerifyFailure(ctx, blogID, reason); err != nil {
				slog.Error("failed to record verify failure", "blog_id", blogID, "error", err)
			}
			writeJSON(w, http.StatusOK, models.StatusResponse{Status: "failed", Reason: reason})
			return
		}

		if !strings.Contains(title, blog.TitleToken) || !strings.Contains(postBody, blog.BodyToken) {
			reason := "tokens not found in post"
			if err := store.RecordVerifyFailure(ctx, blogID, reason); err != nil {
				slog.Error("failed to record verify failure", "blog_id", blogID, "error", err)
			}
			writeJSON(w, http.StatusOK, models.StatusResponse{Status: "failed", Reason: reason})
			return
		}

		if err := store.MarkVerified(ctx, blogID, body.PostURL, time.Now()); err != nil {
			slog.Error("failed to mark blog verified", "blog_id", blogID, "error", err)
			writeDetail(w, http.StatusInternalServerError, "Failed to record verification")
			return
		}

		writeJSON(w, http.StatusOK, models.StatusResponse{Status: "verified"})
	}
}

// DisownBlog handles POST /blogs/{id}/disown. Disowning is terminal: the
// blog keeps status disowned forever, its verified timestamp is cleared, and
// every collaborator invitation on it is revoked. Repeated calls are
// harmless and keep reporting disowned.
func DisownBlog(store *storage.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		user := currentUser(r)

		blogID, err := parseID(r, "id")
		if err != nil {
			writeDetail(w, http.StatusBadRequest, err.Error())
			return
		}

		blog, err := store.GetBlog(ctx, blogID)
		if err != nil {
			writeJSON(w, http.StatusOK, models.StatusResponse{Status: "not_found", Reason: "blog not found"})
			return
		}
		if blog.OwnerUserID != user.ID {
			writeJSON(w, http.StatusOK, models.StatusResponse{Status: "forbidden", Reason: "only the owner can disown"})
			return
		}

		if err := store.DisownBlog(ctx, blogID); err != nil {
			slog.Error("failed to disown blog", "blog_id", blogID, "error", err)
			writeDetail(w, http.StatusInternalServerError, "Failed to disown blog")
			return
		}

		writeJSON(w, http.StatusOK, models.StatusResponse{Status: "disowned"})
	}
}
