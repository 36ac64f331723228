// Package registry is the client-side state machine for blog ownership.
//
// A blog moves pending → verified when the server confirms the verification
// post, and reaches the terminal disowned state from anywhere. The registry
// never guesses server-computed state: every mutation except registration is
// followed by an authoritative re-list, and the local cache is replaced
// wholesale with whatever the server returns.
package registry

import (
	"context"
	"errors"
	"strings"

	"github.com/docqmentary/plog/internal/api"
	"github.com/docqmentary/plog/internal/models"
)

// ErrBlogIDRequired is returned when registering with a blank blog ID.
var ErrBlogIDRequired = errors.New("naver blog ID is required")

// Client caches the credential's blogs and tracks which one is selected.
// Methods are not safe for concurrent use; callers serialize actions (the
// dashboard's busy flag does this).
type Client struct {
	api *api.Client

	blogs      []models.Blog
	selectedID int64 // 0 when nothing is selected
}

// NewClient creates a registry client on top of the given gateway.
func NewClient(gateway *api.Client) *Client {
	return &Client{api: gateway}
}

// List fetches all blogs owned by the credential and replaces the local
// cache with the result, preserving server order. When nothing is selected
// yet the first returned blog becomes selected; an empty list clears the
// selection. An existing selection is never overridden.
func (c *Client) List(ctx context.Context, apiKey string) ([]models.Blog, error) {
	blogs, err := c.api.FetchBlogs(ctx, apiKey)
	if err != nil {
		return nil, err
	}

	c.blogs = blogs
	if len(blogs) == 0 {
		c.selectedID = 0
	} else if c.selectedID == 0 {
		c.selectedID = blogs[0].ID
	}
	return c.Blogs(), nil
}

// Register claims ownership of an external blog. The server response is the
// complete authoritative record (tokens included, status pending), so this
// is the one mutation that updates the cache directly instead of re-listing:
// the new blog is prepended and becomes the selection.
func (c *Client) Register(ctx context.Context, apiKey, naverBlogID, title string) (*models.Blog, error) {
	naverBlogID = strings.TrimSpace(naverBlogID)
	if naverBlogID == "" {
		return nil, ErrBlogIDRequired
	}

	blog, err := c.api.CreateBlog(ctx, apiKey, api.CreateBlogRequest{
		NaverBlogID: naverBlogID,
		Title:       strings.TrimSpace(title),
	})
	if err != nil {
		return nil, err
	}

	c.blogs = append([]models.Blog{*blog}, c.blogs...)
	c.selectedID = blog.ID
	return blog, nil
}

// Verify submits the verification post for a blog, then re-lists to pick up
// the authoritative status. A 2xx verify response proves nothing about the
// outcome — the server may report "failed" when the tokens are missing — so
// the blog's status is never touched locally.
func (c *Client) Verify(ctx context.Context, apiKey string, blogID int64, req api.VerifyBlogRequest) (*models.StatusResponse, error) {
	req.PostURL = strings.TrimSpace(req.PostURL)
	req.Title = strings.TrimSpace(req.Title)
	req.Body = strings.TrimSpace(req.Body)

	status, err := c.api.VerifyBlog(ctx, apiKey, blogID, req)
	if err != nil {
		return nil, err
	}
	if _, err := c.List(ctx, apiKey); err != nil {
		return nil, err
	}
	return status, nil
}

// Disown releases a blog. The transition is terminal; the UI offers no undo.
// Same re-fetch-after-mutate discipline as Verify.
func (c *Client) Disown(ctx context.Context, apiKey string, blogID int64) (*models.StatusResponse, error) {
	status, err := c.api.DisownBlog(ctx, apiKey, blogID)
	if err != nil {
		return nil, err
	}
	if _, err := c.List(ctx, apiKey); err != nil {
		return nil, err
	}
	return status, nil
}

// Blogs returns a copy of the cached blog list in server order.
func (c *Client) Blogs() []models.Blog {
	out := make([]models.Blog, len(c.blogs))
	copy(out, c.blogs)
	return out
}

// SelectedID returns the selected blog's ID, or 0 when nothing is selected.
func (c *Client) SelectedID() int64 {
	return c.selectedID
}

// Select makes the given blog the current selection.
func (c *Client) Select(blogID int64) {
	c.selectedID = blogID
}

// Selected returns the cached record for the selected blog, or nil when the
// selection is empty or no longer present in the cache.
func (c *Client) Selected() *models.Blog {
	if c.selectedID == 0 {
		return nil
	}
	for i := range c.blogs {
		if c.blogs[i].ID == c.selectedID {
			blog := c.blogs[i]
			return &blog
		}
	}
	return nil
}
