package fixture

import (
	"context"
	"math/rand/v2"
	"time"

	"github.com/fundsmith/tradewatch/internal/model"
	"github.com/hashicorp/go-hclog"
	"github.com/shopspring/decimal"
)

var (
	demoPairs          = []string{"EUR/USD", "GBP/USD", "USD/JPY", "AUD/USD", "USD/CHF"}
	demoCounterparties = []string{"BANK_A", "BANK_B", "FUND_C", "CORP_D"}
	demoBooks          = []string{"TRADING", "HEDGE", "CLIENT"}
	demoSides          = []string{"BUY", "SELL"}
)

// Step reports what one Advance did.
type Step struct {
	Generated int
	Processed *model.TradeImport
	MXML      []int64
	Pushed    []int64
}

// Simulator replays the backend's demo mode against a Store: it generates
// live trades, groups them into imports and optionally walks those imports
// through MXML generation and the Murex push.
type Simulator struct {
	store *Store
	rng   *rand.Rand
	log   hclog.Logger

	cfg       model.DemoConfig
	last      time.Time
	carry     float64
	nextGroup time.Time
	nextMXML  time.Time
	nextMurex time.Time
}

// NewSimulator creates a simulator with a deterministic generator.
func NewSimulator(store *Store, seed uint64, logger hclog.Logger) *Simulator {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &Simulator{
		store: store,
		rng:   rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
		log:   logger.Named("simulator"),
	}
}

func (s *Simulator) schedule(now time.Time) {
	s.last = now
	s.carry = 0
	s.nextGroup = now.Add(seconds(s.cfg.GroupingIntervalSeconds))
	s.nextMXML = now.Add(seconds(s.cfg.MXMLGenerationIntervalSeconds))
	s.nextMurex = now.Add(seconds(s.cfg.MurexPushIntervalSeconds))
}

func seconds(n int) time.Duration { return time.Duration(n) * time.Second }

// Advance runs every demo task that is due at now. The first call after
// demo mode is enabled or reconfigured only primes the schedule.
func (s *Simulator) Advance(now time.Time) Step {
	cfg := s.store.DemoConfig()
	if !cfg.Enabled {
		s.cfg = cfg
		s.last = time.Time{}
		return Step{}
	}
	if s.last.IsZero() || cfg != s.cfg {
		s.cfg = cfg
		s.schedule(now)
		return Step{}
	}

	var step Step
	s.store.mu.Lock()
	defer s.store.mu.Unlock()

	s.carry += now.Sub(s.last).Seconds() * cfg.TradesPerSecond
	s.last = now
	for ; s.carry >= 1; s.carry-- {
		s.store.submitLocked(s.randomTrade(), "DEMO")
		step.Generated++
	}

	if !now.Before(s.nextGroup) {
		step.Processed = s.store.processLocked()
		s.nextGroup = now.Add(seconds(cfg.GroupingIntervalSeconds))
	}
	if cfg.AutoMXMLEnabled && !now.Before(s.nextMXML) {
		for _, id := range s.store.importsInLocked(model.StageConsolidated) {
			if _, err := s.store.generateMXMLLocked(id); err == nil {
				step.MXML = append(step.MXML, id)
			}
		}
		s.nextMXML = now.Add(seconds(cfg.MXMLGenerationIntervalSeconds))
	}
	if cfg.AutoMurexEnabled && !now.Before(s.nextMurex) {
		for _, id := range s.store.importsInLocked(model.StageMXMLGenerated) {
			if _, err := s.store.pushLocked(id); err == nil {
				step.Pushed = append(step.Pushed, id)
			}
		}
		s.nextMurex = now.Add(seconds(cfg.MurexPushIntervalSeconds))
	}
	return step
}

func (s *Simulator) randomTrade() model.LiveTrade {
	price := decimal.NewFromFloat(1 + s.rng.Float64()*0.5).Round(6)
	return model.LiveTrade{
		CurrencyPair: demoPairs[s.rng.IntN(len(demoPairs))],
		Side:         demoSides[s.rng.IntN(len(demoSides))],
		Counterparty: demoCounterparties[s.rng.IntN(len(demoCounterparties))],
		Book:         demoBooks[s.rng.IntN(len(demoBooks))],
		Quantity:     decimal.NewFromInt(int64(10000 + s.rng.IntN(90000))),
		Price:        price,
	}
}

// Run advances the simulator every interval until ctx is cancelled.
func (s *Simulator) Run(ctx context.Context, every time.Duration) error {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case now := <-ticker.C:
			step := s.Advance(now)
			if step.Processed != nil {
				s.log.Info("grouped live trades", "import", step.Processed.ImportName,
					"trades", step.Processed.OriginalTradeCount)
			}
			if len(step.MXML) > 0 {
				s.log.Info("generated mxml", "imports", step.MXML)
			}
			if len(step.Pushed) > 0 {
				s.log.Info("pushed to murex", "imports", step.Pushed)
			}
		}
	}
}
