package posts

import (
	"fmt"
	"net/http"
	"time"

	readability "github.com/go-shiori/go-readability"
)

// browserHeaders sets browser-like request headers so blog hosts that check
// Accept or User-Agent don't reject the request with 406.
func browserHeaders(r *http.Request) {
	r.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	r.Header.Set("User-Agent", "Mozilla/5.0 (compatible; plog/1.0)")
}

// Hints holds the title and readable body text of a verification post,
// ready to be sent as verify-call hints so the server can skip its own
// fetch of the post.
type Hints struct {
	Title string
	Body  string
}

// extractHints fetches the post at the given URL and pulls out its title
// and main readable text using go-readability.
func extractHints(url string, timeout time.Duration) (*Hints, error) {
	article, err := readability.FromURL(url, timeout, browserHeaders)
	if err != nil {
		return nil, fmt.Errorf("readability extraction: %w", err)
	}
	return &Hints{
		Title: article.Title,
		Body:  article.TextContent,
	}, nil
}
