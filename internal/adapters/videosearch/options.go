package videosearch

import (
	"net/http"
	"time"

	"github.com/aromabalance/balance/pkg/logger"
	"golang.org/x/time/rate"
)

// Option applies a configuration option to the YouTubeClient.
type Option func(*YouTubeClient)

// WithBaseURL points the client at a different API root (tests, proxies).
func WithBaseURL(baseURL string) Option {
	return func(c *YouTubeClient) {
		if baseURL != "" {
			c.baseURL = baseURL
		}
	}
}

// WithHTTPClient sets the HTTP client used for provider calls.
func WithHTTPClient(client *http.Client) Option {
	return func(c *YouTubeClient) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithTimeout sets the per-request timeout. A client passed through
// WithHTTPClient is copied first and left untouched.
func WithTimeout(timeout time.Duration) Option {
	return func(c *YouTubeClient) {
		if timeout > 0 {
			hc := *c.httpClient
			hc.Timeout = timeout
			c.httpClient = &hc
		}
	}
}

// WithMaxResults sets how many results the provider returns (1..50).
func WithMaxResults(n int) Option {
	return func(c *YouTubeClient) {
		if n > 0 && n <= maxProviderResults {
			c.maxResults = n
		}
	}
}

// WithLanguage sets the relevance language hint.
func WithLanguage(lang string) Option {
	return func(c *YouTubeClient) {
		c.language = lang
	}
}

// WithDuration sets the video duration bucket (any, short, medium, long).
func WithDuration(duration string) Option {
	return func(c *YouTubeClient) {
		c.duration = duration
	}
}

// WithRateLimit bounds outbound requests per second.
func WithRateLimit(perSecond float64, burst int) Option {
	return func(c *YouTubeClient) {
		if perSecond > 0 && burst > 0 {
			c.limiter = rate.NewLimiter(rate.Limit(perSecond), burst)
		}
	}
}

// WithLogger sets the client logger.
func WithLogger(l logger.Logger) Option {
	return func(c *YouTubeClient) {
		if l != nil {
			c.log = l
		}
	}
}
