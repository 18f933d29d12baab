package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fundsmith/tradewatch/internal/fixture"

	"github.com/gin-gonic/gin"
	"github.com/hashicorp/go-hclog"
	"golang.org/x/sync/errgroup"
)

func main() {
	var addr string
	var seedPath string
	var demoTick time.Duration
	var rngSeed uint64
	var logLevel string

	flag.StringVar(&addr, "addr", "127.0.0.1:8081", "listen address")
	flag.StringVar(&seedPath, "seed", "", "YAML file with initial imports, pending trades and demo settings")
	flag.DurationVar(&demoTick, "demo-tick", 500*time.Millisecond, "how often the demo simulator advances")
	flag.Uint64Var(&rngSeed, "rng-seed", uint64(time.Now().UnixNano()), "random seed for generated demo trades")
	flag.StringVar(&logLevel, "log-level", "info", "log level")
	flag.Parse()

	logger := hclog.New(&hclog.LoggerOptions{
		Name:   "tradewatch-fixture",
		Level:  hclog.LevelFromString(logLevel),
		Output: os.Stderr,
	})

	if err := run(addr, seedPath, demoTick, rngSeed, logger); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(addr, seedPath string, demoTick time.Duration, rngSeed uint64, logger hclog.Logger) error {
	gin.SetMode(gin.ReleaseMode)
	store := fixture.NewStore(nil)

	if seedPath != "" {
		seed, err := fixture.LoadSeed(seedPath)
		if err != nil {
			return err
		}
		if err := seed.Apply(store); err != nil {
			return fmt.Errorf("apply seed %s: %w", seedPath, err)
		}
		logger.Info("seed applied", "path", seedPath, "imports", len(seed.Imports), "pending", len(seed.Pending))
	}

	srv := fixture.NewServer(addr, store, logger)
	if err := srv.Start(); err != nil {
		return fmt.Errorf("start server: %w", err)
	}
	defer srv.Stop()
	fmt.Printf("fixture backend listening on http://%s/api\n", srv.Addr())

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	sim := fixture.NewSimulator(store, rngSeed, logger)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return sim.Run(gctx, demoTick) })
	return g.Wait()
}
