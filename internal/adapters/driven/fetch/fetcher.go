// Package fetch downloads web pages for URL ingestion.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"time"

	"github.com/quizbolt/quizbolt/internal/core/domain"
	"github.com/quizbolt/quizbolt/internal/core/ports/driven"
	"github.com/quizbolt/quizbolt/internal/logger"
)

// Ensure Fetcher implements the interface.
var _ driven.URLFetcher = (*Fetcher)(nil)

const (
	// UserAgent identifies QuizBolt to the sites it fetches.
	UserAgent = "QuizBolt/1.0 (Educational Content Fetcher)"

	// DefaultTimeout bounds the whole request, body included.
	DefaultTimeout = 30 * time.Second

	// DefaultMaxBytes caps the downloaded body.
	DefaultMaxBytes int64 = 10 << 20
)

// Fetcher retrieves http and https resources.
type Fetcher struct {
	client   *http.Client
	maxBytes int64
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithClient replaces the HTTP client.
func WithClient(c *http.Client) Option {
	return func(f *Fetcher) { f.client = c }
}

// WithMaxBytes sets the body size limit.
func WithMaxBytes(n int64) Option {
	return func(f *Fetcher) { f.maxBytes = n }
}

// New creates a Fetcher with a 30 second timeout.
func New(opts ...Option) *Fetcher {
	f := &Fetcher{
		client:   &http.Client{Timeout: DefaultTimeout},
		maxBytes: DefaultMaxBytes,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Fetch downloads rawURL. The result's MIME type comes from the response
// Content-Type and defaults to text/html.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (*domain.RawDocument, error) {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return nil, fmt.Errorf("%w: invalid URL %q", domain.ErrInvalidInput, rawURL)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("%w: only HTTP and HTTPS URLs are supported", domain.ErrUnsupportedSource)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrInvalidInput, err)
	}
	req.Header.Set("User-Agent", UserAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,text/plain;q=0.9,*/*;q=0.5")

	logger.Debug("fetching %s", u.Redacted())
	resp, err := f.client.Do(req)
	if err != nil {
		var netErr interface{ Timeout() bool }
		if errors.As(err, &netErr) && netErr.Timeout() {
			return nil, fmt.Errorf("request timeout - URL took too long to respond: %w", err)
		}
		return nil, fmt.Errorf("fetch url: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("failed to fetch URL: %s", resp.Status)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	if int64(len(body)) > f.maxBytes {
		return nil, fmt.Errorf("%w: page is larger than %d bytes", domain.ErrInvalidInput, f.maxBytes)
	}

	mimeType := "text/html"
	if ct := resp.Header.Get("Content-Type"); ct != "" {
		if mt, _, err := mime.ParseMediaType(ct); err == nil {
			mimeType = mt
		}
	}

	return &domain.RawDocument{
		URI:      resp.Request.URL.String(),
		MIMEType: mimeType,
		Content:  body,
		Metadata: map[string]any{"status": resp.StatusCode},
	}, nil
}
