package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// User is an account on the dev server. APIKey is the credential issued on
// the most recent login; earlier keys stop working.
type User struct {
	ID          int64
	GoogleSub   string
	Email       string
	DisplayName string
	APIKey      string
	CreatedAt   time.Time
}

// GetOrCreateUser returns the user with the given email, creating the
// account on first login. An existing user's display name is refreshed when
// a non-empty one is supplied.
func (s *Store) GetOrCreateUser(ctx context.Context, googleSub, email, displayName string) (*User, error) {
	user, err := s.getUserByEmail(ctx, email)
	if err == nil {
		if displayName != "" && displayName != user.DisplayName {
			if _, err := s.db.ExecContext(ctx,
				`UPDATE users SET display_name = ? WHERE id = ?`, displayName, user.ID,
			); err != nil {
				return nil, fmt.Errorf("updating display name: %w", err)
			}
			user.DisplayName = displayName
		}
		return user, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	res, err := s.db.ExecContext(ctx,
		`INSERT INTO users (google_sub, email, display_name) VALUES (?, ?, ?)`,
		googleSub, email, nullableString(displayName),
	)
	if err != nil {
		return nil, fmt.Errorf("creating user: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("getting user id: %w", err)
	}

	return &User{
		ID:          id,
		GoogleSub:   googleSub,
		Email:       email,
		DisplayName: displayName,
		CreatedAt:   time.Now().UTC(),
	}, nil
}

// SetAPIKey stores a freshly issued credential for the user.
func (s *Store) SetAPIKey(ctx context.Context, userID int64, apiKey string) error {
	if _, err := s.db.ExecContext(ctx,
		`UPDATE users SET api_key = ? WHERE id = ?`, apiKey, userID,
	); err != nil {
		return fmt.Errorf("setting api key: %w", err)
	}
	return nil
}

// GetUserByAPIKey resolves a request credential to its user.
// Returns nil, ErrNotFound for unknown keys.
func (s *Store) GetUserByAPIKey(ctx context.Context, apiKey string) (*User, error) {
	if apiKey == "" {
		return nil, ErrNotFound
	}
	row := s.db.QueryRowContext(ctx,
		`SELECT id, google_sub, email, display_name, api_key, created_at
		 FROM users WHERE api_key = ?`, apiKey)
	return scanUser(row)
}

func (s *Store) getUserByEmail(ctx context.Context, email string) (*User, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, google_sub, email, display_name, api_key, created_at
		 FROM users WHERE email = ?`, email)
	return scanUser(row)
}

func scanUser(row *sql.Row) (*User, error) {
	var (
		user        User
		displayName sql.NullString
		apiKey      sql.NullString
		createdAt   string
	)
	err := row.Scan(&user.ID, &user.GoogleSub, &user.Email, &displayName, &apiKey, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scanning user row: %w", err)
	}
	user.DisplayName = displayName.String
	user.APIKey = apiKey.String
	user.CreatedAt = parseTime(createdAt)
	return &user, nil
}

// nullableString converts an empty string to a SQL NULL.
func nullableString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
