package main

import (
	"context"
	"flag"
	"os"
	"time"

	"github.com/aromabalance/balance/internal/probe"
	"github.com/aromabalance/balance/pkg/logger"
)

// Default configuration constants.
const (
	defaultRequests     = 40
	defaultWorkers      = 4
	defaultProbeTimeout = 5 * time.Minute
)

func main() {
	var (
		baseURL    = flag.String("url", "http://localhost:9080", "Base URL of the service")
		requests   = flag.Int("requests", defaultRequests, "Number of lookups to submit")
		workers    = flag.Int("workers", defaultWorkers, "Number of concurrent workers")
		timeout    = flag.Duration("timeout", probe.DefaultTimeout, "HTTP request timeout")
		outputFile = flag.String("output", "", "Write every lookup result to this JSON file")
		logFile    = flag.String("log", "", "Also write logs to this file")
		format     = flag.String("format", logger.FormatText, "Log format: text or json")
		verbose    = flag.Bool("verbose", false, "Log every lookup")
		help       = flag.Bool("help", false, "Show help")
	)
	flag.Parse()

	if *help {
		probe.ShowHelp(os.Stdout)
		return
	}

	closer, err := probe.SetupLogging(*logFile, *format)
	if err != nil {
		os.Stderr.WriteString("failed to setup logging: " + err.Error() + "\n")
		os.Exit(1)
	}
	defer func() { _ = closer.Close() }()

	ctx, cancel := context.WithTimeout(context.Background(), defaultProbeTimeout)
	defer cancel()

	config := &probe.Config{
		BaseURL:    *baseURL,
		Requests:   *requests,
		Workers:    *workers,
		Timeout:    *timeout,
		OutputFile: *outputFile,
		Verbose:    *verbose,
		Logger:     logger.Get().Named("probe"),
	}

	if _, err := probe.Run(ctx, config); err != nil {
		logger.Get().Error(ctx, "probe failed", logger.Error(err))
		cancel()
		os.Exit(1)
	}
}
