package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/mail"
	"strings"

	"github.com/docqmentary/plog/internal/models"
	"github.com/docqmentary/plog/internal/storage"
)

// ownedBlog loads the blog and checks the requester owns it. On failure it
// writes the error response and returns nil.
func ownedBlog(s *storage.Store, w http.ResponseWriter, r *http.Request) *storage.Blog {
	user := currentUser(r)

	blogID, err := parseID(r, "id")
	if err != nil {
		writeDetail(w, http.StatusBadRequest, err.Error())
		return nil
	}

	blog, err := s.GetBlog(r.Context(), blogID)
	if err != nil {
		writeDetail(w, http.StatusNotFound, "Blog not found")
		return nil
	}
	if blog.OwnerUserID != user.ID {
		writeDetail(w, http.StatusForbidden, "Only the owner can manage collaborators")
		return nil
	}
	return blog
}

// ListCollaborators handles GET /blogs/{id}/collaborators. Invitations are
// scoped strictly to their blog; there is no cross-blog listing.
func ListCollaborators(s *storage.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		blog := ownedBlog(s, w, r)
		if blog == nil {
			return
		}

		collaborators, err := s.ListCollaborators(r.Context(), blog.ID)
		if err != nil {
			slog.Error("failed to list collaborators", "blog_id", blog.ID, "error", err)
			writeDetail(w, http.StatusInternalServerError, "Failed to list collaborators")
			return
		}
		if collaborators == nil {
			collaborators = []models.Collaborator{}
		}

		writeJSON(w, http.StatusOK, map[string][]models.Collaborator{"collaborators": collaborators})
	}
}

// InviteCollaborator handles POST /blogs/{id}/collaborators. The invitation
// starts pending; acceptance happens out of band.
func InviteCollaborator(s *storage.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		blog := ownedBlog(s, w, r)
		if blog == nil {
			return
		}

		var body struct {
			Email string `json:"email"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			writeDetail(w, http.StatusBadRequest, "Invalid JSON body")
			return
		}

		email := strings.TrimSpace(body.Email)
		if email == "" {
			writeDetail(w, http.StatusBadRequest, "email is required")
			return
		}
		if _, err := mail.ParseAddress(email); err != nil {
			writeDetail(w, http.StatusBadRequest, "email is not a valid address")
			return
		}

		collaborator, err := s.CreateCollaborator(r.Context(), blog.ID, currentUser(r).ID, email)
		if err != nil {
			slog.Error("failed to invite collaborator", "blog_id", blog.ID, "error", err)
			writeDetail(w, http.StatusInternalServerError, "Failed to invite collaborator")
			return
		}

		writeJSON(w, http.StatusOK, map[string]models.Collaborator{"invitation": *collaborator})
	}
}

// RevokeCollaborator handles DELETE /blogs/{id}/collaborators/{collaboratorID}.
func RevokeCollaborator(s *storage.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		blog := ownedBlog(s, w, r)
		if blog == nil {
			return
		}

		collaboratorID, err := parseID(r, "collaboratorID")
		if err != nil {
			writeDetail(w, http.StatusBadRequest, err.Error())
			return
		}

		if err := s.RevokeCollaborator(r.Context(), blog.ID, collaboratorID); err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				writeDetail(w, http.StatusNotFound, "Collaborator not found")
				return
			}
			slog.Error("failed to revoke collaborator", "blog_id", blog.ID, "collaborator_id", collaboratorID, "error", err)
			writeDetail(w, http.StatusInternalServerError, "Failed to revoke collaborator")
			return
		}

		writeJSON(w, http.StatusOK, models.StatusResponse{Status: "revoked"})
	}
}
