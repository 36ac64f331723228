package models

import "time"

// BlogStatus is the ownership-verification state of a registered blog.
type BlogStatus string

const (
	// BlogPending means the blog is registered but ownership is unproven.
	BlogPending BlogStatus = "pending"
	// BlogVerified means a verification post contained both tokens.
	BlogVerified BlogStatus = "verified"
	// BlogDisowned is terminal: the owner released the blog and no
	// transition leaves this state.
	BlogDisowned BlogStatus = "disowned"
)

// Blog is an external Naver blog whose ownership a user has claimed.
// TitleToken and BodyToken are assigned at registration and never change;
// the owner proves control by publishing a post containing both.
type Blog struct {
	ID          int64      `json:"id"`
	NaverBlogID string     `json:"naver_blog_id"`
	Title       string     `json:"title,omitempty"`
	Status      BlogStatus `json:"status"`
	VerifiedAt  *time.Time `json:"verified_at,omitempty"`
	TitleToken  string     `json:"title_token"`
	BodyToken   string     `json:"body_token"`
}

// StatusResponse is the outcome of a verify or disown call. Status is one of
// "verified", "failed", "disowned", "not_found", or "forbidden"; Reason
// explains failures in human-readable form.
type StatusResponse struct {
	Status string `json:"status"`
	Reason string `json:"reason,omitempty"`
}
