package probe

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/aromabalance/balance/pkg/logger"
)

const directoryPermission = 0o750

// Run executes a complete probe and returns its statistics.
func Run(ctx context.Context, config *Config) (*Stats, error) {
	applyDefaults(config)
	stats := &Stats{StartTime: time.Now()}

	config.Logger.Info(ctx, "starting recipe video probe",
		logger.String("baseURL", config.BaseURL),
		logger.Int("requests", config.Requests),
		logger.Int("workers", config.Workers),
		logger.Duration("timeout", config.Timeout))

	if err := checkServiceHealth(ctx, config); err != nil {
		return stats, fmt.Errorf("service health check failed: %w", err)
	}

	requests, err := generateRequests(ctx, config, stats)
	if err != nil {
		return stats, fmt.Errorf("lookup generation failed: %w", err)
	}

	results := submitRequests(ctx, config, requests, stats)

	serviceStats, err := fetchServiceStats(ctx, config)
	if err != nil {
		config.Logger.Warn(ctx, "failed to read service stats", logger.Error(err))
	}
	stats.ServiceStats = serviceStats

	if config.OutputFile != "" {
		if err := saveResults(ctx, config, results); err != nil {
			config.Logger.Warn(ctx, "failed to save results", logger.Error(err))
		}
	}

	stats.EndTime = time.Now()
	stats.Duration = stats.EndTime.Sub(stats.StartTime)
	displayFinalStats(ctx, config.Logger, stats)

	if err := verifyResults(ctx, config, results, stats); err != nil {
		return stats, fmt.Errorf("result verification failed: %w", err)
	}

	config.Logger.Info(ctx, "probe completed successfully")
	return stats, nil
}

func applyDefaults(config *Config) {
	if config.Logger == nil {
		config.Logger = logger.Nop()
	}
	if config.Workers <= 0 {
		config.Workers = 1
	}
	if config.Timeout <= 0 {
		config.Timeout = DefaultTimeout
	}
}

// checkServiceHealth verifies the service is running.
func checkServiceHealth(ctx context.Context, config *Config) error {
	config.Logger.Info(ctx, "checking service health")

	client := newHTTPClient(config.Timeout)
	resp, err := client.Get(ctx, config.BaseURL+pathHealth)
	if err != nil {
		return fmt.Errorf("failed to connect to service: %w", err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			config.Logger.Error(ctx, "failed to close response body", logger.Error(err))
		}
	}()

	// Any 200 counts as healthy; the body is Prometheus exposition text.
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("service health check failed with status: %d", resp.StatusCode)
	}

	config.Logger.Info(ctx, "service is healthy")
	return nil
}

// saveResults writes every lookup result to the output file as JSON.
func saveResults(ctx context.Context, config *Config, results []Result) error {
	if dir := filepath.Dir(config.OutputFile); dir != "." {
		if err := os.MkdirAll(dir, directoryPermission); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}

	data, err := json.MarshalIndent(results, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal results: %w", err)
	}
	if err := os.WriteFile(config.OutputFile, data, reportFilePermission); err != nil {
		return fmt.Errorf("failed to write results: %w", err)
	}

	config.Logger.Info(ctx, "results saved to file", logger.String("filename", config.OutputFile))
	return nil
}

// displayFinalStats logs the final probe statistics.
func displayFinalStats(ctx context.Context, l logger.Logger, stats *Stats) {
	var foundRate, lookupsPerSecond float64

	if stats.Submitted > 0 {
		foundRate = float64(stats.Found) / float64(stats.Submitted) * PercentageMultiplier
	}
	if stats.Duration > 0 {
		lookupsPerSecond = float64(stats.Submitted) / stats.Duration.Seconds()
	}

	l.Info(ctx, "final statistics",
		logger.Int("generated", stats.Generated),
		logger.Int("submitted", stats.Submitted),
		logger.Int("found", stats.Found),
		logger.Int("notFound", stats.NotFound),
		logger.Int("notConfigured", stats.NotConfigured),
		logger.Int("failed", stats.Failed),
		logger.Int("cached", stats.Cached),
		logger.Any("service", stats.ServiceStats),
		logger.Duration("duration", stats.Duration),
		logger.Float64("foundRate", foundRate),
		logger.Float64("lookupsPerSecond", lookupsPerSecond))
}
