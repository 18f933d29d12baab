package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/fundsmith/tradewatch/internal/backend"
	"github.com/fundsmith/tradewatch/internal/tui"

	"github.com/hashicorp/go-hclog"
)

// Build variables - set by ldflags during build.
var (
	version   = "dev"
	commit    = "unknown"
	buildTime = "unknown"
	goVersion = "unknown"
)

func main() {
	var configPath string
	var apiURL string
	var headless bool
	var showVersion bool

	flag.StringVar(&configPath, "config", "", "config file (default is $HOME/.config/tradewatch/config.yml)")
	flag.StringVar(&apiURL, "api", "", "override the backend API base URL")
	flag.BoolVar(&headless, "headless", false, "poll without a terminal UI and log arrivals to stderr")
	flag.BoolVar(&showVersion, "version", false, "print version information")
	flag.Parse()

	if showVersion {
		fmt.Printf("tradewatch - Trade Pipeline Dashboard\n")
		fmt.Printf("  Version:    %s\n", version)
		fmt.Printf("  Commit:     %s\n", commit)
		fmt.Printf("  Built:      %s\n", buildTime)
		fmt.Printf("  Go version: %s\n", goVersion)
		return
	}

	cfg, err := loadConfig(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}
	if apiURL != "" {
		cfg.APIBaseURL = apiURL
	}

	logger, closeLog := newLogger(cfg, headless)
	defer closeLog()

	client, err := backend.New(backend.Options{
		BaseURL:           cfg.APIBaseURL,
		Timeout:           cfg.RequestTimeout,
		RequestsPerSecond: cfg.RequestsPerSecond,
		Burst:             cfg.RequestBurst,
		Logger:            logger,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	logger.Info("starting", "version", version, "api", client.BaseURL(), "headless", headless, "config", cfg.ConfigPath)

	if headless {
		err = runHeadless(client, cfg, logger)
	} else {
		err = runTUI(client, cfg, logger)
	}
	if err != nil {
		logger.Error("exited with error", "error", err)
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		closeLog()
		os.Exit(1)
	}
}

func runHeadless(client *backend.Client, cfg appConfig, logger hclog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	return newWatcher(client, cfg, logger).Run(ctx)
}

func runTUI(client *backend.Client, cfg appConfig, logger hclog.Logger) error {
	p, app := tui.NewProgram(tui.Options{
		Backend: client,
		Config:  cfg.dashboardConfig(),
		Logger:  logger.Named("tui"),
	})
	defer app.Shutdown()

	if _, err := p.Run(); err != nil {
		if strings.Contains(err.Error(), "TTY") || strings.Contains(err.Error(), "/dev/tty") {
			return fmt.Errorf("TUI requires a real terminal (try -headless)")
		}
		return fmt.Errorf("error running TUI: %w", err)
	}
	return nil
}
