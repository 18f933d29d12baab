package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fundsmith/tradewatch/internal/model"
	"github.com/fundsmith/tradewatch/internal/tui"

	"github.com/spf13/viper"
)

const (
	defaultRequestsPerSecond = 20
	defaultRequestBurst      = 10
	defaultLogLevel          = "info"
)

// appConfig is internal runtime configuration.
// It is package-private to keep defaults and shape local to the CLI entrypoint.
type appConfig struct {
	APIBaseURL            string        `mapstructure:"api-base-url"`
	PollInterval          time.Duration `mapstructure:"poll-interval"`
	DemoPollInterval      time.Duration `mapstructure:"demo-poll-interval"`
	MaxPollInterval       time.Duration `mapstructure:"max-poll-interval"`
	PendingInterval       time.Duration `mapstructure:"pending-interval"`
	PendingTradesInterval time.Duration `mapstructure:"pending-trades-interval"`
	HighlightDuration     time.Duration `mapstructure:"highlight-duration"`
	RecencyWindow         time.Duration `mapstructure:"recency-window"`
	ToastDuration         time.Duration `mapstructure:"toast-duration"`
	RequestTimeout        time.Duration `mapstructure:"request-timeout"`
	RequestsPerSecond     float64       `mapstructure:"requests-per-second"`
	RequestBurst          int           `mapstructure:"request-burst"`
	LogLevel              string        `mapstructure:"log-level"`
	LogFile               string        `mapstructure:"log-file"`
	ConfigPath            string        `mapstructure:"-"` // not from config file
}

func loadConfig(configPath string) (appConfig, error) {
	var cfg appConfig

	home, err := os.UserHomeDir()
	if err != nil {
		return cfg, fmt.Errorf("finding home directory: %w", err)
	}

	v := viper.New()
	v.SetEnvPrefix("TRADEWATCH")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))

	v.SetDefault("api-base-url", model.DefaultAPIBaseURL)
	v.SetDefault("poll-interval", model.DefaultPollInterval)
	v.SetDefault("demo-poll-interval", model.DefaultDemoPollInterval)
	v.SetDefault("max-poll-interval", model.DefaultMaxPollInterval)
	v.SetDefault("pending-interval", model.DefaultPendingInterval)
	v.SetDefault("pending-trades-interval", model.DefaultPendingTradesInterval)
	v.SetDefault("highlight-duration", model.DefaultHighlightDuration)
	v.SetDefault("recency-window", model.DefaultRecencyWindow)
	v.SetDefault("toast-duration", model.DefaultToastDuration)
	v.SetDefault("request-timeout", model.DefaultRequestTimeout)
	v.SetDefault("requests-per-second", defaultRequestsPerSecond)
	v.SetDefault("request-burst", defaultRequestBurst)
	v.SetDefault("log-level", defaultLogLevel)
	v.SetDefault("log-file", filepath.Join(home, ".local", "state", "tradewatch", "tradewatch.log"))

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigFile(filepath.Join(home, ".config", "tradewatch", "config.yml"))
	}

	if err := v.ReadInConfig(); err != nil {
		var configFileNotFound viper.ConfigFileNotFoundError
		if !errors.As(err, &configFileNotFound) && !os.IsNotExist(err) {
			return cfg, err
		}
	}

	if err := v.Unmarshal(&cfg); err != nil {
		return cfg, err
	}
	cfg.ConfigPath = v.ConfigFileUsed()

	// Expand ~ in log-file
	if strings.HasPrefix(cfg.LogFile, "~/") {
		cfg.LogFile = filepath.Join(home, cfg.LogFile[2:])
	}

	return cfg, cfg.validate()
}

func (c appConfig) validate() error {
	positive := []struct {
		key string
		d   time.Duration
	}{
		{"poll-interval", c.PollInterval},
		{"demo-poll-interval", c.DemoPollInterval},
		{"max-poll-interval", c.MaxPollInterval},
		{"pending-interval", c.PendingInterval},
		{"pending-trades-interval", c.PendingTradesInterval},
		{"highlight-duration", c.HighlightDuration},
		{"recency-window", c.RecencyWindow},
		{"toast-duration", c.ToastDuration},
		{"request-timeout", c.RequestTimeout},
	}
	for _, p := range positive {
		if p.d <= 0 {
			return fmt.Errorf("invalid %s: %s", p.key, p.d)
		}
	}
	if c.MaxPollInterval < c.PollInterval {
		return fmt.Errorf("invalid max-poll-interval: %s is below poll-interval %s", c.MaxPollInterval, c.PollInterval)
	}
	if c.RequestsPerSecond < 0 {
		return fmt.Errorf("invalid requests-per-second: %v", c.RequestsPerSecond)
	}
	if c.RequestBurst < 0 {
		return fmt.Errorf("invalid request-burst: %d", c.RequestBurst)
	}
	return nil
}

// dashboardConfig projects the timings the TUI needs.
func (c appConfig) dashboardConfig() tui.Config {
	return tui.Config{
		PollInterval:          c.PollInterval,
		DemoPollInterval:      c.DemoPollInterval,
		MaxPollInterval:       c.MaxPollInterval,
		PendingInterval:       c.PendingInterval,
		PendingTradesInterval: c.PendingTradesInterval,
		HighlightDuration:     c.HighlightDuration,
		RecencyWindow:         c.RecencyWindow,
		ToastDuration:         c.ToastDuration,
	}
}
