package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/docqmentary/plog/internal/models"
)

// CreateCollaborator inserts a pending invitation for the blog and returns
// the stored record.
func (s *Store) CreateCollaborator(ctx context.Context, blogID, invitedByUserID int64, email string) (*models.Collaborator, error) {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO collaborators (blog_id, invited_email, invited_by_user_id) VALUES (?, ?, ?)`,
		blogID, email, invitedByUserID,
	)
	if err != nil {
		return nil, fmt.Errorf("creating collaborator: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("getting collaborator id: %w", err)
	}

	return &models.Collaborator{
		ID:        id,
		Email:     email,
		Status:    models.InvitationPending,
		InvitedAt: time.Now().UTC(),
	}, nil
}

// ListCollaborators returns every invitation on the blog, oldest first.
func (s *Store) ListCollaborators(ctx context.Context, blogID int64) ([]models.Collaborator, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, invited_email, status, invited_at
		 FROM collaborators
		 WHERE blog_id = ?
		 ORDER BY invited_at ASC, id ASC`, blogID)
	if err != nil {
		return nil, fmt.Errorf("querying collaborators: %w", err)
	}
	defer rows.Close()

	var collaborators []models.Collaborator
	for rows.Next() {
		var (
			collab    models.Collaborator
			email     sql.NullString
			status    string
			invitedAt string
		)
		if err := rows.Scan(&collab.ID, &email, &status, &invitedAt); err != nil {
			return nil, fmt.Errorf("scanning collaborator row: %w", err)
		}
		collab.Email = email.String
		collab.Status = models.InvitationStatus(status)
		collab.InvitedAt = parseTime(invitedAt)
		collaborators = append(collaborators, collab)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating collaborator rows: %w", err)
	}
	return collaborators, nil
}

// RevokeCollaborator marks the invitation revoked. Returns ErrNotFound when
// the invitation does not exist on the given blog.
func (s *Store) RevokeCollaborator(ctx context.Context, blogID, collaboratorID int64) error {
	var id int64
	err := s.db.QueryRowContext(ctx,
		`SELECT id FROM collaborators WHERE id = ? AND blog_id = ?`,
		collaboratorID, blogID,
	).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("looking up collaborator: %w", err)
	}

	ts := time.Now().UTC().Format("2006-01-02 15:04:05")
	if _, err := s.db.ExecContext(ctx,
		`UPDATE collaborators SET status = ?, responded_at = ? WHERE id = ?`,
		models.InvitationRevoked, ts, id,
	); err != nil {
		return fmt.Errorf("revoking collaborator: %w", err)
	}
	return nil
}

// AcceptCollaborator marks the invitation accepted. The client never calls
// this; acceptance happens out of band and shows up on the next list.
func (s *Store) AcceptCollaborator(ctx context.Context, collaboratorID int64) error {
	ts := time.Now().UTC().Format("2006-01-02 15:04:05")
	res, err := s.db.ExecContext(ctx,
		`UPDATE collaborators SET status = ?, responded_at = ? WHERE id = ?`,
		models.InvitationAccepted, ts, collaboratorID,
	)
	if err != nil {
		return fmt.Errorf("accepting collaborator: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking accepted rows: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
