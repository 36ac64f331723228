package dashboard

import (
	"errors"
	"strings"
)

var (
	errBlogIDRequired  = errors.New("naver blog ID is required")
	errPostURLRequired = errors.New("verification post URL is required")
	errEmailRequired   = errors.New("collaborator email is required")
)

// RegisterForm holds the inputs for claiming a new blog.
type RegisterForm struct {
	NaverBlogID string
	Title       string
}

// Validate rejects a blank blog ID. Title is optional.
func (f RegisterForm) Validate() error {
	if strings.TrimSpace(f.NaverBlogID) == "" {
		return errBlogIDRequired
	}
	return nil
}

// VerifyForm holds the inputs for a verification attempt. Title and Body are
// optional pre-fetched hints.
type VerifyForm struct {
	PostURL string
	Title   string
	Body    string
}

// Validate rejects a blank post URL.
func (f VerifyForm) Validate() error {
	if strings.TrimSpace(f.PostURL) == "" {
		return errPostURLRequired
	}
	return nil
}

// InviteForm holds the input for a collaborator invitation.
type InviteForm struct {
	Email string
}

// Validate rejects a blank email, so invalid invites never reach the wire.
func (f InviteForm) Validate() error {
	if strings.TrimSpace(f.Email) == "" {
		return errEmailRequired
	}
	return nil
}
