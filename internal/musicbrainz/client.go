package musicbrainz

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/goccy/go-json"
)

const (
	DefaultBaseURL   = "https://musicbrainz.org/ws/2"
	DefaultUserAgent = "wavedeck/0.1 (https://github.com/llehouerou/wavedeck)"
	rateLimitDur     = time.Second // MusicBrainz requires 1 request per second

	// Retry configuration
	maxRetries   = 3
	initialDelay = 2 * time.Second
	maxDelay     = 30 * time.Second
)

// ErrNotFound is returned when the release does not exist.
var ErrNotFound = errors.New("release not found")

// Client provides access to the MusicBrainz API.
type Client struct {
	httpClient  *http.Client
	baseURL     string
	userAgent   string
	lastRequest time.Time
	mu          sync.Mutex
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL points the client at another server, e.g. a mirror.
func WithBaseURL(u string) Option {
	return func(c *Client) {
		if u != "" {
			c.baseURL = strings.TrimRight(u, "/")
		}
	}
}

// WithUserAgent sets the User-Agent MusicBrainz identifies the client by.
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		if ua != "" {
			c.userAgent = ua
		}
	}
}

// WithHTTPClient replaces the HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// NewClient creates a new MusicBrainz API client.
func NewClient(opts ...Option) *Client {
	c := &Client{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		baseURL:    DefaultBaseURL,
		userAgent:  DefaultUserAgent,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// GetRelease fetches detailed information about a specific release.
func (c *Client) GetRelease(ctx context.Context, mbid string) (*ReleaseDetails, error) {
	// Include recordings (tracks) in the response
	params := url.Values{}
	params.Set("fmt", "json")
	params.Set("inc", "recordings+artist-credits")

	reqURL := fmt.Sprintf("%s/release/%s?%s", c.baseURL, url.PathEscape(mbid), params.Encode())

	resp, err := c.get(ctx, reqURL)
	if err != nil {
		return nil, fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusBadRequest:
		return nil, fmt.Errorf("%w: %s", ErrNotFound, mbid)
	case resp.StatusCode != http.StatusOK:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("API status %d: %s", resp.StatusCode, string(body))
	}

	var result releaseResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	return toDetails(result), nil
}

// get issues a rate limited GET, retrying network errors and 5xx responses
// with exponential backoff. 4xx responses are returned as is.
func (c *Client) get(ctx context.Context, reqURL string) (*http.Response, error) {
	var resp *http.Response
	attempt := 0

	op := func() error {
		if err := c.waitForRateLimit(ctx); err != nil {
			return backoff.Permanent(err)
		}
		attempt++

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, http.NoBody)
		if err != nil {
			return backoff.Permanent(fmt.Errorf("create request: %w", err))
		}
		req.Header.Set("User-Agent", c.userAgent)
		req.Header.Set("Accept", "application/json")

		r, err := c.httpClient.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return backoff.Permanent(ctx.Err())
			}
			return err
		}

		// Success or client error (4xx) - don't retry
		if r.StatusCode < 500 {
			resp = r
			return nil
		}

		// Server error (5xx) - retry
		r.Body.Close()
		return fmt.Errorf("server returned status %d", r.StatusCode)
	}

	if err := backoff.Retry(op, c.newBackoff(ctx)); err != nil {
		return nil, fmt.Errorf("request failed after %d attempts: %w", attempt, err)
	}
	return resp, nil
}

func (c *Client) newBackoff(ctx context.Context) backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = initialDelay
	b.MaxInterval = maxDelay
	b.Multiplier = 2
	b.RandomizationFactor = 0
	b.MaxElapsedTime = 0
	return backoff.WithContext(backoff.WithMaxRetries(b, maxRetries), ctx)
}

// waitForRateLimit ensures we don't exceed MusicBrainz rate limits.
func (c *Client) waitForRateLimit(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	elapsed := time.Since(c.lastRequest)
	if elapsed < rateLimitDur {
		t := time.NewTimer(rateLimitDur - elapsed)
		defer t.Stop()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-t.C:
		}
	}
	c.lastRequest = time.Now()
	return nil
}

// toDetails flattens the media of r. A track without a title takes its
// recording's.
func toDetails(r releaseResponse) *ReleaseDetails {
	details := &ReleaseDetails{
		ID:     r.ID,
		Title:  r.Title,
		Artist: extractArtist(r.ArtistCredit),
		Date:   r.Date,
		Discs:  len(r.Media),
	}
	for _, m := range r.Media {
		for _, t := range m.Tracks {
			title := t.Title
			if title == "" && t.Recording != nil {
				title = t.Recording.Title
			}
			details.Tracks = append(details.Tracks, Track{
				Disc:     m.Position,
				Position: t.Position,
				Title:    title,
				Artist:   extractArtist(t.ArtistCredit),
				Length:   t.Length,
			})
		}
	}
	return details
}

// extractArtist extracts the artist name from artist credits.
func extractArtist(credits []artistCredit) string {
	if len(credits) == 0 {
		return ""
	}

	parts := make([]string, 0, len(credits))
	for _, c := range credits {
		name := c.Name
		if name == "" {
			name = c.Artist.Name
		}
		parts = append(parts, name+c.JoinPhrase)
	}
	return strings.Join(parts, "")
}
