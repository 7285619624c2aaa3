package probe

import "time"

// Worker configuration constants.
const (
	WorkerChannelMultiplier = 2
)

// Runner configuration constants.
const (
	DefaultTimeout       = 15 * time.Second
	PercentageMultiplier = 100
	progressInterval     = time.Second
	reportFilePermission = 0o600
)

// Service routes exercised by the probe.
const (
	pathHealth = "/healthz"
	pathStats  = "/stats"
	pathVideo  = "/api/recipe-video"
)
