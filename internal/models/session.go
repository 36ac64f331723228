package models

// Session is the authenticated identity returned by the login exchange.
// APIKey is the opaque per-session credential sent on every request.
type Session struct {
	UserID      int64  `json:"user_id"`
	Email       string `json:"email"`
	DisplayName string `json:"display_name,omitempty"`
	APIKey      string `json:"api_key"`
}
