package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/docqmentary/plog/internal/models"
)

// LoginRequest carries exactly one credential: DevUser is a non-production
// shortcut, IDToken the Google OAuth token.
type LoginRequest struct {
	DevUser string `json:"dev_user,omitempty"`
	IDToken string `json:"id_token,omitempty"`
}

// Login exchanges a credential for a session.
func (c *Client) Login(ctx context.Context, req LoginRequest) (*models.Session, error) {
	var session models.Session
	if err := c.Call(ctx, http.MethodPost, "/auth/google/callback", CallOptions{
		Body: req,
		Out:  &session,
	}); err != nil {
		return nil, err
	}
	return &session, nil
}

// CreateBlogRequest registers ownership of an external blog. Title is
// omitted from the wire when blank.
type CreateBlogRequest struct {
	NaverBlogID string `json:"naver_blog_id"`
	Title       string `json:"title,omitempty"`
}

// VerifyBlogRequest points the server at a published verification post.
// Title and Body are optional pre-fetched hints that let the server skip a
// live fetch of the post.
type VerifyBlogRequest struct {
	PostURL string `json:"post_url"`
	Title   string `json:"title,omitempty"`
	Body    string `json:"body,omitempty"`
}

// FetchBlogs returns all blogs owned by the credential, in server order.
func (c *Client) FetchBlogs(ctx context.Context, apiKey string) ([]models.Blog, error) {
	var blogs []models.Blog
	if err := c.Call(ctx, http.MethodGet, "/blogs", CallOptions{
		APIKey: apiKey,
		Out:    &blogs,
	}); err != nil {
		return nil, err
	}
	return blogs, nil
}

// CreateBlog registers a new blog and returns the complete server record,
// including its freshly generated verification tokens.
func (c *Client) CreateBlog(ctx context.Context, apiKey string, req CreateBlogRequest) (*models.Blog, error) {
	var blog models.Blog
	if err := c.Call(ctx, http.MethodPost, "/blogs", CallOptions{
		APIKey: apiKey,
		Body:   req,
		Out:    &blog,
	}); err != nil {
		return nil, err
	}
	return &blog, nil
}

// VerifyBlog asks the server to check the verification post. The response
// status may still be "failed" on a 2xx reply; callers must re-fetch the
// blog list for authoritative state rather than trusting this call alone.
func (c *Client) VerifyBlog(ctx context.Context, apiKey string, blogID int64, req VerifyBlogRequest) (*models.StatusResponse, error) {
	var status models.StatusResponse
	if err := c.Call(ctx, http.MethodPost, fmt.Sprintf("/blogs/%d/verify", blogID), CallOptions{
		APIKey: apiKey,
		Body:   req,
		Out:    &status,
	}); err != nil {
		return nil, err
	}
	return &status, nil
}

// DisownBlog releases the blog. Disowning is terminal.
func (c *Client) DisownBlog(ctx context.Context, apiKey string, blogID int64) (*models.StatusResponse, error) {
	var status models.StatusResponse
	if err := c.Call(ctx, http.MethodPost, fmt.Sprintf("/blogs/%d/disown", blogID), CallOptions{
		APIKey: apiKey,
		Out:    &status,
	}); err != nil {
		return nil, err
	}
	return &status, nil
}

// FetchCollaborators returns the invitations scoped to one blog.
func (c *Client) FetchCollaborators(ctx context.Context, apiKey string, blogID int64) ([]models.Collaborator, error) {
	var resp struct {
		Collaborators []models.Collaborator `json:"collaborators"`
	}
	if err := c.Call(ctx, http.MethodGet, fmt.Sprintf("/blogs/%d/collaborators", blogID), CallOptions{
		APIKey: apiKey,
		Out:    &resp,
	}); err != nil {
		return nil, err
	}
	return resp.Collaborators, nil
}

// InviteCollaborator creates a pending invitation. The response body is not
// parsed; callers re-list to pick up the server-assigned record.
func (c *Client) InviteCollaborator(ctx context.Context, apiKey string, blogID int64, email string) error {
	return c.Call(ctx, http.MethodPost, fmt.Sprintf("/blogs/%d/collaborators", blogID), CallOptions{
		APIKey: apiKey,
		Body:   map[string]string{"email": email},
	})
}

// RevokeCollaborator revokes an invitation. The response body is not parsed.
func (c *Client) RevokeCollaborator(ctx context.Context, apiKey string, blogID, collaboratorID int64) error {
	return c.Call(ctx, http.MethodDelete, fmt.Sprintf("/blogs/%d/collaborators/%d", blogID, collaboratorID), CallOptions{
		APIKey: apiKey,
	})
}
