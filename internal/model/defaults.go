package model

import "time"

// Shared defaults used by the CLI, the TUI and the headless watcher.
const (
	DefaultAPIBaseURL            = "http://localhost:8081/api"
	DefaultPollInterval          = 3 * time.Second
	DefaultDemoPollInterval      = 1 * time.Second
	DefaultMaxPollInterval       = 30 * time.Second
	DefaultPendingInterval       = 1 * time.Second
	DefaultPendingTradesInterval = 2 * time.Second
	DefaultHighlightDuration     = 4 * time.Second
	DefaultRecencyWindow         = 30 * time.Second
	DefaultToastDuration         = 3 * time.Second
	DefaultRequestTimeout        = 10 * time.Second
)
