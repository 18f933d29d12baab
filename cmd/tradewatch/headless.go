package main

import (
	"context"
	"time"

	"github.com/fundsmith/tradewatch/internal/model"
	"github.com/fundsmith/tradewatch/internal/pending"
	"github.com/fundsmith/tradewatch/internal/poll"
	"github.com/fundsmith/tradewatch/internal/snapshot"

	"github.com/hashicorp/go-hclog"
	"golang.org/x/sync/errgroup"
)

// watcher runs the dashboard's poll loops without a terminal and logs
// arrivals. Each loop owns its resource and tracker in its own goroutine.
type watcher struct {
	be     model.Backend
	cfg    appConfig
	logger hclog.Logger
}

func newWatcher(be model.Backend, cfg appConfig, logger hclog.Logger) *watcher {
	return &watcher{be: be, cfg: cfg, logger: logger.Named("headless")}
}

// Run polls until ctx is cancelled.
func (w *watcher) Run(ctx context.Context) error {
	interval := w.cfg.PollInterval
	if demo, err := w.be.DemoConfig(ctx); err != nil {
		w.logger.Warn("demo config unavailable, using normal interval", "error", err)
	} else if demo.Enabled {
		interval = w.cfg.DemoPollInterval
		w.logger.Info("demo mode enabled", "poll_interval", interval)
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, stage := range model.Stages {
		runner := w.stageRunner(stage, interval)
		g.Go(func() error { return runner.Run(gctx) })
	}
	g.Go(func() error { return w.pendingTradesRunner().Run(gctx) })
	g.Go(func() error { return w.pendingCountRunner().Run(gctx) })
	return g.Wait()
}

func (w *watcher) logFailure(key string) func(error, poll.Completion) {
	return func(err error, c poll.Completion) {
		if c.Notify {
			w.logger.Error("poll failing", "resource", key, "retry_in", c.Next.Delay, "error", err)
			return
		}
		w.logger.Debug("poll still failing", "resource", key, "retry_in", c.Next.Delay, "error", err)
	}
}

func (w *watcher) stageRunner(stage model.Stage, interval time.Duration) *poll.Runner[[]model.TradeImport] {
	res := poll.New(poll.Config{Key: stage.Key(), Interval: interval, MaxInterval: w.cfg.MaxPollInterval})
	tracker := snapshot.NewTracker(w.cfg.RecencyWindow)
	return poll.NewRunner(res, w.be.ListImports, func(imports []model.TradeImport, now time.Time) {
		rows := model.FilterStage(imports, stage)
		fresh := tracker.Observe(model.ImportEntities(rows), now)
		if fresh.Len() > 0 {
			w.logger.Info("new imports", "stage", stage.Title(), "count", fresh.Len(), "ids", fresh.Sorted())
		}
	}).OnFailure(w.logFailure(stage.Key()))
}

func (w *watcher) pendingTradesRunner() *poll.Runner[[]model.LiveTrade] {
	res := poll.New(poll.Config{Key: "pending-trades", Interval: w.cfg.PendingTradesInterval, MaxInterval: w.cfg.MaxPollInterval})
	tracker := snapshot.NewTracker(w.cfg.RecencyWindow)
	return poll.NewRunner(res, w.be.PendingTrades, func(trades []model.LiveTrade, now time.Time) {
		fresh := tracker.Observe(model.LiveTradeEntities(trades), now)
		if fresh.Len() > 0 {
			w.logger.Info("new live trades", "count", fresh.Len(), "ids", fresh.Sorted())
		}
	}).OnFailure(w.logFailure("pending-trades"))
}

// pendingCountRunner logs the queue depth whenever it changes. The monitor
// validates counts before they are applied.
func (w *watcher) pendingCountRunner() *poll.Runner[int] {
	mon := pending.NewMonitor(pending.Config{Interval: w.cfg.PendingInterval, MaxInterval: w.cfg.MaxPollInterval})
	last := -1
	return mon.Runner(w.be.PendingCount, func(count int, _ time.Time) {
		if count != last {
			w.logger.Info("pending trades", "count", count, "can_process", mon.CanProcess())
			last = count
		}
	}).OnFailure(w.logFailure(pending.Key))
}
