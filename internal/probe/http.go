package probe

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/aromabalance/balance/pkg/logger"
)

const headerRequestID = "X-Request-ID"

// HTTPClient wraps http.Client with a timeout and request id tagging.
type HTTPClient struct {
	client *http.Client
}

// newHTTPClient creates a new HTTP client with timeout.
func newHTTPClient(timeout time.Duration) *HTTPClient {
	return &HTTPClient{client: &http.Client{Timeout: timeout}}
}

// Get performs a GET request.
func (c *HTTPClient) Get(ctx context.Context, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set(headerRequestID, uuid.NewString())
	return c.client.Do(req)
}

// PostJSON performs a POST request with a JSON body under requestID.
func (c *HTTPClient) PostJSON(ctx context.Context, url, requestID string, body interface{}) (*http.Response, error) {
	data, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(headerRequestID, requestID)
	return c.client.Do(req)
}

// submitRequests posts lookups concurrently using a worker pool. Results keep
// the order of requests.
func submitRequests(ctx context.Context, config *Config, requests []VideoRequest, stats *Stats) []Result {
	config.Logger.Info(ctx, "submitting lookups",
		logger.Int("count", len(requests)),
		logger.Int("workers", config.Workers))

	client := newHTTPClient(config.Timeout)
	url := config.BaseURL + pathVideo
	results := make([]Result, len(requests))

	var submitted atomic.Int64
	var lastReport atomic.Int64

	indexes := make(chan int, config.Workers*WorkerChannelMultiplier)
	var wg sync.WaitGroup

	for i := 0; i < config.Workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range indexes {
				if ctx.Err() != nil {
					results[idx] = Result{Recipe: recipeLabel(requests[idx]), Outcome: OutcomeFailed, Error: ctx.Err().Error()}
					continue
				}
				results[idx] = submitSingle(ctx, client, url, requests[idx])
				if config.Verbose {
					logResult(ctx, config.Logger, results[idx])
				}

				n := submitted.Add(1)
				now := time.Now().UnixNano()
				last := lastReport.Load()
				if now-last >= int64(progressInterval) && lastReport.CompareAndSwap(last, now) {
					config.Logger.Info(ctx, "progress",
						logger.Int64("submitted", n),
						logger.Int("total", len(requests)))
				}
			}
		}()
	}

	go func() {
		defer close(indexes)
		for i := range requests {
			indexes <- i
		}
	}()

	wg.Wait()

	for _, r := range results {
		stats.Submitted++
		switch r.Outcome {
		case OutcomeFound:
			stats.Found++
		case OutcomeNotFound:
			stats.NotFound++
		case OutcomeNotConfigured:
			stats.NotConfigured++
		default:
			stats.Failed++
		}
		if r.Cached {
			stats.Cached++
		}
	}

	config.Logger.Info(ctx, "lookup submission completed",
		logger.Int("found", stats.Found),
		logger.Int("notFound", stats.NotFound),
		logger.Int("notConfigured", stats.NotConfigured),
		logger.Int("failed", stats.Failed))
	return results
}

// submitSingle posts one lookup and classifies the answer.
func submitSingle(ctx context.Context, client *HTTPClient, url string, req VideoRequest) Result {
	res := Result{RequestID: uuid.NewString(), Recipe: recipeLabel(req)}
	start := time.Now()

	resp, err := client.PostJSON(ctx, url, res.RequestID, req)
	res.Latency = time.Since(start)
	if err != nil {
		res.Outcome = OutcomeFailed
		res.Error = err.Error()
		return res
	}
	defer resp.Body.Close()
	res.Status = resp.StatusCode

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		res.Outcome = OutcomeFailed
		res.Error = err.Error()
		return res
	}

	switch resp.StatusCode {
	case http.StatusOK:
		var vr VideoResponse
		if err := json.Unmarshal(body, &vr); err != nil {
			res.Outcome = OutcomeFailed
			res.Error = "malformed response: " + err.Error()
			return res
		}
		if vr.VideoURL == nil {
			res.Outcome = OutcomeNotFound
			return res
		}
		res.Outcome = OutcomeFound
		res.VideoURL = *vr.VideoURL
		res.Score = vr.Score
		res.Cached = vr.Cached
	default:
		var er ErrorResponse
		_ = json.Unmarshal(body, &er)
		res.Outcome = OutcomeFailed
		if er.Code == string(OutcomeNotConfigured) {
			res.Outcome = OutcomeNotConfigured
		}
		res.Error = fmt.Sprintf("status %d: %s", resp.StatusCode, er.Message)
	}
	return res
}

func logResult(ctx context.Context, l logger.Logger, r Result) {
	l.Info(ctx, "lookup",
		logger.String("requestId", r.RequestID),
		logger.String("recipe", r.Recipe),
		logger.String("outcome", string(r.Outcome)),
		logger.Int("status", r.Status),
		logger.String("videoUrl", r.VideoURL),
		logger.Duration("latency", r.Latency))
}

// fetchServiceStats reads GET /stats.
func fetchServiceStats(ctx context.Context, config *Config) (map[string]interface{}, error) {
	client := newHTTPClient(config.Timeout)
	resp, err := client.Get(ctx, config.BaseURL+pathStats)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch stats: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("stats returned status %d", resp.StatusCode)
	}
	var out map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("failed to decode stats: %w", err)
	}
	return out, nil
}
