package probe

import (
	"fmt"
	"io"
	"os"

	"github.com/aromabalance/balance/pkg/logger"
)

const logFilePermission = 0o600

// SetupLogging initializes the global logger writing to stdout and, when
// logFile is set, to that file as well.
func SetupLogging(logFile, format string) (io.Closer, error) {
	var w io.Writer = os.Stdout
	var closer io.Closer = io.NopCloser(nil)

	if logFile != "" {
		file, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, logFilePermission)
		if err != nil {
			return nil, fmt.Errorf("failed to open log file: %w", err)
		}
		w = io.MultiWriter(os.Stdout, file)
		closer = file
	}

	if err := logger.InitWithFormat(format, w); err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return closer, nil
}

// ShowHelp prints usage information for the probe.
func ShowHelp(w io.Writer) {
	_, _ = io.WriteString(w, `Recipe Video Probe
==================

Smoke-tests a running recipe video service: checks /healthz, submits sample
recipes to /api/recipe-video with a worker pool and verifies the answers.

Usage:
  go run ./cmd/video-probe [options]

Options:
  -url string
        Base URL of the service (default "http://localhost:9080")
  -requests int
        Number of lookups to submit (default 40)
  -workers int
        Number of concurrent workers (default 4)
  -timeout duration
        HTTP request timeout (default 15s)
  -output string
        Write every lookup result to this JSON file
  -log string
        Also write logs to this file
  -format string
        Log format: text or json (default "text")
  -verbose
        Log every lookup
  -help
        Show this help message

Examples:
  go run ./cmd/video-probe -requests 200 -workers 16
  go run ./cmd/video-probe -url http://localhost:8080 -output probe.json
`)
}
