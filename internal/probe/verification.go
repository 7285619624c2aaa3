package probe

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/aromabalance/balance/pkg/logger"
)

// Verification failures.
var (
	ErrNoLookups          = errors.New("no lookups submitted")
	ErrNotConfigured      = errors.New("service reports the video provider is not configured")
	ErrAllLookupsFailed   = errors.New("every lookup failed")
	ErrMalformedEmbedLink = errors.New("malformed embed URL")
)

// verifyResults checks that lookups succeeded and returned playable links.
func verifyResults(ctx context.Context, config *Config, results []Result, stats *Stats) error {
	config.Logger.Info(ctx, "verifying results")

	if stats.Submitted == 0 {
		return ErrNoLookups
	}
	if stats.NotConfigured == stats.Submitted {
		return ErrNotConfigured
	}
	if stats.Found+stats.NotFound == 0 {
		return fmt.Errorf("%w: %d failures", ErrAllLookupsFailed, stats.Failed)
	}

	for _, r := range results {
		if r.Outcome != OutcomeFound {
			continue
		}
		if err := checkEmbedURL(r.VideoURL); err != nil {
			return fmt.Errorf("lookup %s (%s): %w", r.RequestID, r.Recipe, err)
		}
	}

	if lookups, ok := stats.ServiceStats["lookups"].(float64); ok && int(lookups) < stats.Submitted {
		config.Logger.Warn(ctx, "service counted fewer lookups than submitted",
			logger.Int("submitted", stats.Submitted),
			logger.Int("serviceLookups", int(lookups)))
	}

	config.Logger.Info(ctx, "result verification completed")
	return nil
}

// checkEmbedURL accepts https://<host>/embed/<id>.
func checkEmbedURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrMalformedEmbedLink, err)
	}
	id, ok := strings.CutPrefix(u.Path, "/embed/")
	if u.Scheme != "https" || u.Host == "" || !ok || id == "" || strings.Contains(id, "/") {
		return fmt.Errorf("%w: %q", ErrMalformedEmbedLink, raw)
	}
	return nil
}
