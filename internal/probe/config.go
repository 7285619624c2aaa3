// Package probe is an operator smoke test for a running recipe video service.
// It checks health, submits sample recipes concurrently and reports outcomes.
package probe

import (
	"time"

	"github.com/aromabalance/balance/pkg/logger"
)

// Config holds configuration for a probe run.
type Config struct {
	BaseURL    string        // Base URL of the service
	Requests   int           // Number of lookups to submit
	Workers    int           // Number of concurrent workers
	Timeout    time.Duration // HTTP request timeout
	OutputFile string        // Optional JSON report of every lookup
	Verbose    bool          // Log every lookup
	Logger     logger.Logger // Defaults to a no-op logger
}

// Recipe mirrors the recipe object of POST /api/recipe-video.
type Recipe struct {
	Name            string   `json:"name"`
	Cuisine         string   `json:"cuisine,omitempty"`
	MainIngredients []string `json:"mainIngredients,omitempty"`
}

// VideoRequest is the request body of POST /api/recipe-video.
type VideoRequest struct {
	Query  string `json:"query,omitempty"`
	Recipe Recipe `json:"recipe"`
}

// VideoResponse is the success body of POST /api/recipe-video.
type VideoResponse struct {
	VideoURL *string `json:"videoUrl"`
	Title    string  `json:"title"`
	Score    int     `json:"score"`
	Cached   bool    `json:"cached"`
}

// ErrorResponse is the error body returned by the service.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Outcome classifies one lookup.
type Outcome string

// Lookup outcomes.
const (
	OutcomeFound         Outcome = "found"
	OutcomeNotFound      Outcome = "not_found"
	OutcomeNotConfigured Outcome = "not_configured"
	OutcomeFailed        Outcome = "failed"
)

// Result records a single lookup.
type Result struct {
	RequestID string        `json:"requestId"`
	Recipe    string        `json:"recipe"`
	Outcome   Outcome       `json:"outcome"`
	Status    int           `json:"status"`
	VideoURL  string        `json:"videoUrl,omitempty"`
	Score     int           `json:"score,omitempty"`
	Cached    bool          `json:"cached,omitempty"`
	Latency   time.Duration `json:"latency"`
	Error     string        `json:"error,omitempty"`
}

// Stats holds probe statistics.
type Stats struct {
	Generated     int
	Submitted     int
	Found         int
	NotFound      int
	NotConfigured int
	Failed        int
	Cached        int
	ServiceStats  map[string]interface{}
	StartTime     time.Time
	EndTime       time.Time
	Duration      time.Duration
}
