package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/docqmentary/plog/internal/models"
)

// Blog is a claimed blog row joined with its verification tokens.
type Blog struct {
	ID          int64
	OwnerUserID int64
	NaverBlogID string
	Title       string
	Status      models.BlogStatus
	VerifiedAt  *time.Time
	TitleToken  string
	BodyToken   string
	CreatedAt   time.Time
}

// Payload converts the row to the wire representation.
func (b *Blog) Payload() models.Blog {
	return models.Blog{
		ID:          b.ID,
		NaverBlogID: b.NaverBlogID,
		Title:       b.Title,
		Status:      b.Status,
		VerifiedAt:  b.VerifiedAt,
		TitleToken:  b.TitleToken,
		BodyToken:   b.BodyToken,
	}
}

const blogColumns = `
	b.id, b.owner_user_id, b.naver_blog_id, b.title, b.status,
	b.verified_at, b.created_at,
	COALESCE(v.title_token, ''), COALESCE(v.body_token, '')`

// CreateBlog inserts a blog in pending state together with its verification
// tokens. Tokens are assigned here and never change afterwards.
func (s *Store) CreateBlog(ctx context.Context, ownerUserID int64, naverBlogID, title, titleToken, bodyToken string) (*Blog, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // rollback after commit is a no-op

	res, err := tx.ExecContext(ctx,
		`INSERT INTO blogs (owner_user_id, naver_blog_id, title) VALUES (?, ?, ?)`,
		ownerUserID, naverBlogID, nullableString(title),
	)
	if err != nil {
		return nil, fmt.Errorf("creating blog: %w", err)
	}
	blogID, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("getting blog id: %w", err)
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO blog_verifications (blog_id, title_token, body_token) VALUES (?, ?, ?)`,
		blogID, titleToken, bodyToken,
	); err != nil {
		return nil, fmt.Errorf("creating verification tokens: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing blog creation: %w", err)
	}

	return &Blog{
		ID:          blogID,
		OwnerUserID: ownerUserID,
		NaverBlogID: naverBlogID,
		Title:       title,
		Status:      models.BlogPending,
		TitleToken:  titleToken,
		BodyToken:   bodyToken,
		CreatedAt:   time.Now().UTC(),
	}, nil
}

// ListBlogs returns all blogs owned by the user, newest first. The order is
// stable: ties on created_at break by id descending.
func (s *Store) ListBlogs(ctx context.Context, ownerUserID int64) ([]Blog, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+blogColumns+`
		 FROM blogs b
		 LEFT JOIN blog_verifications v ON v.blog_id = b.id
		 WHERE b.owner_user_id = ?
		 ORDER BY b.created_at DESC, b.id DESC`, ownerUserID)
	if err != nil {
		return nil, fmt.Errorf("querying blogs: %w", err)
	}
	defer rows.Close()

	var blogs []Blog
	for rows.Next() {
		blog, err := scanBlog(rows)
		if err != nil {
			return nil, err
		}
		blogs = append(blogs, *blog)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating blog rows: %w", err)
	}
	return blogs, nil
}

// GetBlog returns the blog with the given ID.
// Returns nil, ErrNotFound if no matching row exists.
func (s *Store) GetBlog(ctx context.Context, id int64) (*Blog, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+blogColumns+`
		 FROM blogs b
		 LEFT JOIN blog_verifications v ON v.blog_id = b.id
		 WHERE b.id = ?`, id)

	blog, err := scanBlog(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("getting blog by id: %w", err)
	}
	return blog, nil
}

// MarkVerified moves the blog to verified and records the verification post.
func (s *Store) MarkVerified(ctx context.Context, blogID int64, postURL string, when time.Time) error {
	ts := when.UTC().Format("2006-01-02 15:04:05")

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.ExecContext(ctx,
		`UPDATE blogs SET status = ?, verified_at = ? WHERE id = ?`,
		models.BlogVerified, ts, blogID,
	); err != nil {
		return fmt.Errorf("marking blog verified: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		`UPDATE blog_verifications
		 SET post_url = ?, verified_at = ?, failed_reason = NULL
		 WHERE blog_id = ?`,
		postURL, ts, blogID,
	); err != nil {
		return fmt.Errorf("recording verification: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing verification: %w", err)
	}
	return nil
}

// RecordVerifyFailure stores the reason the latest verification attempt
// failed. The blog's status is left untouched.
func (s *Store) RecordVerifyFailure(ctx context.Context, blogID int64, reason string) error {
	if _, err := s.db.ExecContext(ctx,
		`UPDATE blog_verifications SET failed_reason = ? WHERE blog_id = ?`,
		reason, blogID,
	); err != nil {
		return fmt.Errorf("recording verify failure: %w", err)
	}
	return nil
}

// DisownBlog moves the blog to the terminal disowned state, clears its
// verified timestamp, and revokes every collaborator invitation on it.
func (s *Store) DisownBlog(ctx context.Context, blogID int64) error {
	ts := time.Now().UTC().Format("2006-01-02 15:04:05")

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.ExecContext(ctx,
		`UPDATE blogs SET status = ?, verified_at = NULL WHERE id = ?`,
		models.BlogDisowned, blogID,
	); err != nil {
		return fmt.Errorf("disowning blog: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		`UPDATE collaborators SET status = ?, responded_at = ? WHERE blog_id = ?`,
		models.InvitationRevoked, ts, blogID,
	); err != nil {
		return fmt.Errorf("revoking collaborators: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing disown: %w", err)
	}
	return nil
}

// scanner abstracts *sql.Row and *sql.Rows for scanBlog.
type scanner interface {
	Scan(dest ...any) error
}

func scanBlog(row scanner) (*Blog, error) {
	var (
		blog       Blog
		title      sql.NullString
		status     string
		verifiedAt sql.NullString
		createdAt  string
	)
	err := row.Scan(
		&blog.ID, &blog.OwnerUserID, &blog.NaverBlogID, &title, &status,
		&verifiedAt, &createdAt, &blog.TitleToken, &blog.BodyToken,
	)
	if err != nil {
		return nil, err
	}
	blog.Title = title.String
	blog.Status = models.BlogStatus(status)
	if verifiedAt.Valid {
		blog.VerifiedAt = parseTimePtr(&verifiedAt.String)
	}
	blog.CreatedAt = parseTime(createdAt)
	return &blog, nil
}
