// Package videosearch queries the external video-search provider.
package videosearch

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/aromabalance/balance/internal/domain/model"
	"github.com/aromabalance/balance/pkg/logger"
	"golang.org/x/time/rate"
)

// Provider defaults.
const (
	DefaultBaseURL    = "https://www.googleapis.com/youtube/v3"
	DefaultMaxResults = 5
	DefaultLanguage   = "ru"
	DefaultDuration   = "medium"

	defaultTimeout     = 10 * time.Second
	defaultRatePerSec  = 5
	defaultBurst       = 5
	errorBodyLimit     = 512
	responseBodyLimit  = 2 << 20
	maxProviderResults = 50
)

// Searcher finds video candidates for a search query.
type Searcher interface {
	Search(ctx context.Context, query string) ([]model.VideoCandidate, error)
}

// YouTube Data API v3 search response.
type ytSearchResp struct {
	Items []ytItem `json:"items"`
}

type ytItem struct {
	ID      ytItemID      `json:"id"`
	Snippet ytItemSnippet `json:"snippet"`
}

type ytItemID struct {
	VideoID string `json:"videoId"`
}

type ytItemSnippet struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	PublishedAt string `json:"publishedAt"`
}

// YouTubeClient searches videos through the YouTube Data API v3.
type YouTubeClient struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	maxResults int
	language   string
	duration   string
	limiter    *rate.Limiter
	log        logger.Logger
}

// NewYouTubeClient creates a client for apiKey. An empty key yields a client
// whose every search fails with ErrNotConfigured without touching the network.
func NewYouTubeClient(apiKey string, opts ...Option) *YouTubeClient {
	c := &YouTubeClient{
		apiKey:     strings.TrimSpace(apiKey),
		baseURL:    DefaultBaseURL,
		httpClient: &http.Client{Timeout: defaultTimeout},
		maxResults: DefaultMaxResults,
		language:   DefaultLanguage,
		duration:   DefaultDuration,
		limiter:    rate.NewLimiter(rate.Limit(defaultRatePerSec), defaultBurst),
		log:        logger.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Configured reports whether an API key is present.
func (c *YouTubeClient) Configured() bool {
	return c.apiKey != ""
}

// Search issues a single search request. No retries are attempted.
func (c *YouTubeClient) Search(ctx context.Context, query string) ([]model.VideoCandidate, error) {
	const op = "videosearch.youtube"
	if !c.Configured() {
		return nil, ErrNotConfigured
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("%s: rate limit wait: %w", op, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.searchURL(query), nil)
	if err != nil {
		return nil, fmt.Errorf("%s: build request: %w", op, err)
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s: %w: %w", op, ErrTransport, err)
	}
	defer func() {
		if cerr := resp.Body.Close(); cerr != nil {
			c.log.Debug(ctx, "failed to close provider response", logger.Error(cerr))
		}
	}()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, errorBodyLimit))
		return nil, fmt.Errorf("%s: %w: status %d: %s", op, ErrProvider, resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var result ytSearchResp
	if err := json.NewDecoder(io.LimitReader(resp.Body, responseBodyLimit)).Decode(&result); err != nil {
		return nil, fmt.Errorf("%s: %w: %w", op, ErrDecode, err)
	}

	candidates := make([]model.VideoCandidate, 0, len(result.Items))
	for _, item := range result.Items {
		if item.ID.VideoID == "" {
			continue
		}
		candidates = append(candidates, model.VideoCandidate{
			VideoID:     item.ID.VideoID,
			Title:       item.Snippet.Title,
			Description: item.Snippet.Description,
			PublishedAt: parsePublishedAt(item.Snippet.PublishedAt),
		})
	}

	c.log.Debug(ctx, "provider search finished",
		logger.String("query", query),
		logger.Int("results", len(candidates)),
		logger.Duration("elapsed", time.Since(start)))
	return candidates, nil
}

// searchURL builds the search.list request; url.Values percent-encodes the query.
func (c *YouTubeClient) searchURL(query string) string {
	params := url.Values{}
	params.Set("part", "snippet")
	params.Set("q", query)
	params.Set("type", "video")
	params.Set("maxResults", strconv.Itoa(c.maxResults))
	if c.language != "" {
		params.Set("relevanceLanguage", c.language)
	}
	if c.duration != "" {
		params.Set("videoDuration", c.duration)
	}
	params.Set("key", c.apiKey)
	return strings.TrimRight(c.baseURL, "/") + "/search?" + params.Encode()
}

// parsePublishedAt accepts RFC3339 timestamps. Unparseable values become the
// zero time, which earns no freshness bonus.
func parsePublishedAt(raw string) time.Time {
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}
	}
	return t
}
