package youtube

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/ytpulse/ytpulse/internal/errors"
	"github.com/ytpulse/ytpulse/internal/logger"
)

var log = logger.New("youtube")

const (
	defaultBaseURL = "https://www.googleapis.com/youtube/v3/search"
	// MaxResults is the page size requested from the search endpoint
	MaxResults = 50
)

// HTTPDoer abstracts the HTTP client so tests can substitute a mock
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client is interface for the YouTube Data API v3 search endpoint
type Client interface {
	// Search fetches up to MaxResults videos matching the query that were
	// published strictly after publishedAfter.
	Search(ctx context.Context, apiKey, searchQuery string, publishedAfter time.Time) ([]*SearchItem, error)
}

// client implements Client over net/http
type client struct {
	doer    HTTPDoer
	baseURL string
}

// NewClient creates a Client with a default HTTP transport
func NewClient() Client {
	return NewClientWithDoer(&http.Client{Timeout: 30 * time.Second})
}

// NewClientWithDoer creates a Client with a custom HTTP transport (for testing)
func NewClientWithDoer(doer HTTPDoer) Client {
	return &client{
		doer:    doer,
		baseURL: defaultBaseURL,
	}
}

// Search calls the search endpoint and decodes the matching items
func (c *client) Search(ctx context.Context, apiKey, searchQuery string, publishedAfter time.Time) ([]*SearchItem, error) {
	params := url.Values{}
	params.Set("key", apiKey)
	params.Set("q", searchQuery)
	params.Set("part", "snippet")
	params.Set("maxResults", strconv.Itoa(MaxResults))
	params.Set("type", "video")
	params.Set("order", "date")
	params.Set("publishedAfter", publishedAfter.UTC().Format(time.RFC3339))
	params.Set("relevanceLanguage", "en")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeInternal, "failed to build YouTube API request")
	}

	log.Debugf("fetching videos published after %s", publishedAfter.UTC().Format(time.RFC3339))
	resp, err := c.doer.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeExternal, "failed to reach YouTube API")
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusForbidden {
		// Quota or authentication failure: a distinct class so the caller
		// can rotate credentials instead of giving up on the tick
		return nil, &QuotaError{StatusCode: resp.StatusCode}
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, errors.New(errors.CodeExternal,
			fmt.Sprintf("YouTube API returned status %d: %s", resp.StatusCode, string(body)))
	}

	var decoded searchListResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, errors.Wrap(err, errors.CodeExternal, "failed to decode YouTube API response")
	}

	return decoded.Items, nil
}
