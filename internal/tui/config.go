package tui

import (
	"time"

	"github.com/fundsmith/tradewatch/internal/model"
)

// Config holds the dashboard timings.
type Config struct {
	PollInterval          time.Duration
	DemoPollInterval      time.Duration
	MaxPollInterval       time.Duration
	PendingInterval       time.Duration
	PendingTradesInterval time.Duration
	HighlightDuration     time.Duration
	RecencyWindow         time.Duration
	ToastDuration         time.Duration
}

// DefaultConfig returns the dashboard defaults.
func DefaultConfig() Config {
	return Config{
		PollInterval:          model.DefaultPollInterval,
		DemoPollInterval:      model.DefaultDemoPollInterval,
		MaxPollInterval:       model.DefaultMaxPollInterval,
		PendingInterval:       model.DefaultPendingInterval,
		PendingTradesInterval: model.DefaultPendingTradesInterval,
		HighlightDuration:     model.DefaultHighlightDuration,
		RecencyWindow:         model.DefaultRecencyWindow,
		ToastDuration:         model.DefaultToastDuration,
	}
}

// withDefaults fills zero fields from DefaultConfig.
func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.PollInterval <= 0 {
		c.PollInterval = d.PollInterval
	}
	if c.DemoPollInterval <= 0 {
		c.DemoPollInterval = d.DemoPollInterval
	}
	if c.MaxPollInterval <= 0 {
		c.MaxPollInterval = d.MaxPollInterval
	}
	if c.PendingInterval <= 0 {
		c.PendingInterval = d.PendingInterval
	}
	if c.PendingTradesInterval <= 0 {
		c.PendingTradesInterval = d.PendingTradesInterval
	}
	if c.HighlightDuration <= 0 {
		c.HighlightDuration = d.HighlightDuration
	}
	if c.RecencyWindow <= 0 {
		c.RecencyWindow = d.RecencyWindow
	}
	if c.ToastDuration <= 0 {
		c.ToastDuration = d.ToastDuration
	}
	return c
}
