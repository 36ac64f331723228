// Package posts fetches verification posts from external blogs.
//
// It fills in the optional title/body hints of a verify call: given a post
// URL it extracts the readable content, and given only a blog ID it walks
// the blog's RSS feed looking for the post that carries the verification
// tokens.
package posts

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/mmcdole/gofeed"
	"golang.org/x/sync/errgroup"
)

const (
	maxConcurrent = 4
	maxFeedItems  = 10
)

// ErrPostNotFound is returned when no recent post contains the tokens.
var ErrPostNotFound = errors.New("no recent post contains the verification tokens")

// Fetcher retrieves posts and feeds from external blog hosts.
type Fetcher struct {
	client      *http.Client
	feedBaseURL string
	timeout     time.Duration
}

// NewFetcher creates a Fetcher. feedBaseURL is the RSS host for external
// blogs (e.g. https://rss.blog.naver.com); timeout bounds each remote fetch.
func NewFetcher(feedBaseURL string, timeout time.Duration) *Fetcher {
	return &Fetcher{
		client: &http.Client{
			Timeout: timeout,
		},
		feedBaseURL: strings.TrimRight(feedBaseURL, "/"),
		timeout:     timeout,
	}
}

// ExtractHints fetches the post at postURL and returns its title and
// readable body text.
func (f *Fetcher) ExtractHints(ctx context.Context, postURL string) (*Hints, error) {
	hints, err := extractHints(postURL, f.timeout)
	if err != nil {
		return nil, fmt.Errorf("extracting post %q: %w", postURL, err)
	}
	return hints, nil
}

// RecentPosts returns the URLs of the blog's most recent posts from its RSS
// feed, newest first, capped at 10.
func (f *Fetcher) RecentPosts(ctx context.Context, naverBlogID string) ([]string, error) {
	feedURL := fmt.Sprintf("%s/%s.xml", f.feedBaseURL, naverBlogID)

	fp := gofeed.NewParser()
	fp.Client = f.client

	feed, err := fp.ParseURLWithContext(feedURL, ctx)
	if err != nil {
		return nil, fmt.Errorf("parsing feed %q: %w", feedURL, err)
	}

	var urls []string
	for _, item := range feed.Items {
		if item.Link == "" {
			continue
		}
		urls = append(urls, item.Link)
		if len(urls) == maxFeedItems {
			break
		}
	}
	return urls, nil
}

// FindVerificationPost scans the blog's recent posts for the one containing
// both verification tokens and returns its URL and extracted hints. Posts
// are fetched concurrently with a bounded number of goroutines; individual
// fetch failures are logged and skipped rather than failing the scan.
func (f *Fetcher) FindVerificationPost(ctx context.Context, naverBlogID, titleToken, bodyToken string) (string, *Hints, error) {
	urls, err := f.RecentPosts(ctx, naverBlogID)
	if err != nil {
		return "", nil, err
	}

	var (
		mu       sync.Mutex
		foundURL string
		found    *Hints
		foundIdx = len(urls) // prefer the newest matching post
	)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrent)

	for i, postURL := range urls {
		g.Go(func() error {
			hints, err := extractHints(postURL, f.timeout)
			if err != nil {
				slog.Warn("failed to fetch post", "url", postURL, "error", err)
				return nil // skip failures, keep scanning
			}
			if !strings.Contains(hints.Title, titleToken) || !strings.Contains(hints.Body, bodyToken) {
				return nil
			}

			mu.Lock()
			if i < foundIdx {
				foundIdx = i
				foundURL = postURL
				found = hints
			}
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return "", nil, fmt.Errorf("scanning posts: %w", err)
	}

	if found == nil {
		return "", nil, ErrPostNotFound
	}
	return foundURL, found, nil
}
