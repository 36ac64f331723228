package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/docqmentary/plog/internal/models"
	"github.com/docqmentary/plog/internal/storage"
)

const apiKeyHeader = "X-API-Key"

// apiKeyLength matches the url-safe session tokens the hosted service issues.
const apiKeyLength = 22

type contextKey string

const userContextKey contextKey = "user"

// Login handles POST /auth/google/callback. Exactly one of dev_user or
// id_token is expected; dev_user is a non-production shortcut that signs in
// (creating if needed) a user with that email. A fresh API key is issued on
// every login.
func Login(store *storage.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		var body struct {
			DevUser string `json:"dev_user"`
			IDToken string `json:"id_token"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			writeDetail(w, http.StatusBadRequest, "Invalid JSON body")
			return
		}

		var googleSub, email, displayName string
		switch {
		case body.DevUser != "":
			email = body.DevUser
			googleSub = "dev-" + body.DevUser
			displayName, _, _ = strings.Cut(body.DevUser, "@")
		case body.IDToken != "":
			// A real deployment verifies the token with Google. The dev
			// server derives a deterministic identity from it instead.
			tok := body.IDToken
			email = fmt.Sprintf("user+%s@example.com", head(tok, 6))
			googleSub = head(tok, 12)
			displayName = "Google User"
		default:
			writeDetail(w, http.StatusBadRequest, "id_token or dev_user must be provided")
			return
		}

		user, err := store.GetOrCreateUser(ctx, googleSub, email, displayName)
		if err != nil {
			slog.Error("failed to resolve user", "email", email, "error", err)
			writeDetail(w, http.StatusInternalServerError, "Failed to resolve user")
			return
		}

		apiKey := newToken(apiKeyLength)
		if err := store.SetAPIKey(ctx, user.ID, apiKey); err != nil {
			slog.Error("failed to issue api key", "user_id", user.ID, "error", err)
			writeDetail(w, http.StatusInternalServerError, "Failed to issue session")
			return
		}

		writeJSON(w, http.StatusOK, models.Session{
			UserID:      user.ID,
			Email:       user.Email,
			DisplayName: user.DisplayName,
			APIKey:      apiKey,
		})
	}
}

// Authenticator resolves the X-API-Key header to a user and stores it in the
// request context. Requests without a valid key get 401.
func Authenticator(store *storage.Store) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, err := store.GetUserByAPIKey(r.Context(), r.Header.Get(apiKeyHeader))
			if err != nil {
				writeDetail(w, http.StatusUnauthorized, "Invalid or missing API key")
				return
			}
			ctx := context.WithValue(r.Context(), userContextKey, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// currentUser returns the authenticated user placed by Authenticator.
func currentUser(r *http.Request) *storage.User {
	user, _ := r.Context().Value(userContextKey).(*storage.User)
	return user
}

// head returns the first n characters of s, or all of s when shorter.
func head(s string, n int) string {
	if len(s) < n {
		return s
	}
	return s[:n]
}
