// Package fixture is an in-memory stand-in for the trade-processing backend.
// It serves the same REST surface as the real service and is used by tests
// and by cmd/tradewatch-fixture for local demos.
package fixture

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fundsmith/tradewatch/internal/criteria"
	"github.com/fundsmith/tradewatch/internal/model"
)

var (
	ErrNotFound = errors.New("import not found")
	ErrConflict = errors.New("invalid stage transition")
)

type record struct {
	imp          model.TradeImport
	original     []model.LiveTrade
	consolidated []model.LiveTrade
}

// Store holds imports, the live-trade queue and the demo settings.
// It is safe for concurrent use by HTTP handlers and the simulator.
type Store struct {
	mu      sync.Mutex
	now     func() time.Time
	nextID  int64
	nextMX  int64
	nextLT  int64
	imports map[int64]*record
	pending []model.LiveTrade
	demo    model.DemoConfig
}

// NewStore returns an empty store. A nil clock means time.Now.
func NewStore(now func() time.Time) *Store {
	if now == nil {
		now = time.Now
	}
	return &Store{
		now:     now,
		imports: make(map[int64]*record),
		demo:    model.DefaultDemoConfig(),
	}
}

func (s *Store) clock() time.Time { return s.now().UTC() }

// AddImport stores a freshly imported batch and returns it.
func (s *Store) AddImport(name string, trades []model.LiveTrade) model.TradeImport {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addImportLocked(name, trades, s.clock())
}

func (s *Store) addImportLocked(name string, trades []model.LiveTrade, at time.Time) model.TradeImport {
	s.nextID++
	rec := &record{
		imp: model.TradeImport{
			ID:                 s.nextID,
			ImportName:         name,
			Status:             model.StageImported,
			OriginalTradeCount: len(trades),
			CurrentTradeCount:  len(trades),
			CreatedAt:          model.Timestamp{Time: at},
		},
		original: append([]model.LiveTrade(nil), trades...),
	}
	s.imports[rec.imp.ID] = rec
	return rec.imp
}

// ListImports returns every import, newest first.
func (s *Store) ListImports() []model.TradeImport {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.TradeImport, 0, len(s.imports))
	for _, rec := range s.imports {
		out = append(out, rec.snapshot())
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt.Time) {
			return out[i].CreatedAt.After(out[j].CreatedAt.Time)
		}
		return out[i].ID > out[j].ID
	})
	return out
}

func (r *record) snapshot() model.TradeImport {
	imp := r.imp
	imp.MXMLFiles = append([]model.MXMLFile(nil), r.imp.MXMLFiles...)
	return imp
}

// GetImport returns one import.
func (s *Store) GetImport(id int64) (model.TradeImport, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.imports[id]
	if !ok {
		return model.TradeImport{}, fmt.Errorf("%w: %d", ErrNotFound, id)
	}
	return rec.snapshot(), nil
}

// Consolidate groups the original trades of an import by c. Re-consolidating
// an already consolidated import replaces its consolidated trades.
func (s *Store) Consolidate(id int64, c criteria.Criteria) (model.TradeImport, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.imports[id]
	if !ok {
		return model.TradeImport{}, fmt.Errorf("%w: %d", ErrNotFound, id)
	}
	if rec.imp.Status == model.StageMXMLGenerated || rec.imp.Status == model.StagePushedToMurex {
		return model.TradeImport{}, fmt.Errorf("%w: import %d is %s", ErrConflict, id, rec.imp.Status)
	}
	rec.consolidated = Consolidate(rec.original, c)
	rec.imp.Status = model.StageConsolidated
	rec.imp.ConsolidationCriteria = string(c)
	rec.imp.CurrentTradeCount = len(rec.consolidated)
	rec.imp.ConsolidatedAt = model.Timestamp{Time: s.clock()}
	return rec.snapshot(), nil
}

// GenerateMXML renders one MXML file per consolidated trade.
func (s *Store) GenerateMXML(id int64) (model.TradeImport, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.generateMXMLLocked(id)
}

func (s *Store) generateMXMLLocked(id int64) (model.TradeImport, error) {
	rec, ok := s.imports[id]
	if !ok {
		return model.TradeImport{}, fmt.Errorf("%w: %d", ErrNotFound, id)
	}
	if rec.imp.Status != model.StageConsolidated || rec.imp.MXMLGenerated {
		return model.TradeImport{}, fmt.Errorf("%w: import %d must be consolidated before generating MXML", ErrConflict, id)
	}
	at := s.clock()
	for _, tr := range rec.consolidated {
		s.nextMX++
		rec.imp.MXMLFiles = append(rec.imp.MXMLFiles, model.MXMLFile{
			ID:        s.nextMX,
			Filename:  fmt.Sprintf("trade_%s_%s.mxml", rec.imp.ImportName, tr.TradeID),
			CreatedAt: model.Timestamp{Time: at},
		})
	}
	rec.imp.MXMLGenerated = true
	rec.imp.Status = model.StageMXMLGenerated
	rec.imp.MXMLGeneratedAt = model.Timestamp{Time: at}
	return rec.snapshot(), nil
}

// PushToMurex marks an import as delivered.
func (s *Store) PushToMurex(id int64) (model.TradeImport, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pushLocked(id)
}

func (s *Store) pushLocked(id int64) (model.TradeImport, error) {
	rec, ok := s.imports[id]
	if !ok {
		return model.TradeImport{}, fmt.Errorf("%w: %d", ErrNotFound, id)
	}
	if rec.imp.Status != model.StageMXMLGenerated || rec.imp.PushedToMurex {
		return model.TradeImport{}, fmt.Errorf("%w: import %d must have MXML before pushing", ErrConflict, id)
	}
	rec.imp.PushedToMurex = true
	rec.imp.Status = model.StagePushedToMurex
	rec.imp.PushedToMurexAt = model.Timestamp{Time: s.clock()}
	return rec.snapshot(), nil
}

// DeleteImport removes an import with its trades and files.
func (s *Store) DeleteImport(id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.imports[id]; !ok {
		return fmt.Errorf("%w: %d", ErrNotFound, id)
	}
	delete(s.imports, id)
	return nil
}

// SubmitLive queues one live trade, filling in the id and timestamp.
func (s *Store) SubmitLive(lt model.LiveTrade) model.LiveTrade {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.submitLocked(lt, "LIVE")
}

func (s *Store) submitLocked(lt model.LiveTrade, prefix string) model.LiveTrade {
	if lt.Timestamp.IsZero() {
		lt.Timestamp = model.Timestamp{Time: s.clock()}
	}
	if lt.TradeID == "" {
		s.nextLT++
		lt.TradeID = fmt.Sprintf("%s-%d", prefix, s.nextLT)
	}
	s.pending = append(s.pending, lt)
	return lt
}

// PendingCount returns the queue depth.
func (s *Store) PendingCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pending)
}

// PendingTrades returns the queued trades in arrival order.
func (s *Store) PendingTrades() []model.LiveTrade {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]model.LiveTrade{}, s.pending...)
}

// ProcessPending drains the queue into a new import consolidated by
// currency pair. It returns nil when the queue is empty.
func (s *Store) ProcessPending() *model.TradeImport {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.processLocked()
}

func (s *Store) processLocked() *model.TradeImport {
	if len(s.pending) == 0 {
		return nil
	}
	trades := s.pending
	s.pending = nil

	at := s.clock()
	name := "LIVE-" + strings.ReplaceAll(at.Format("2006-01-02T15:04:05.000"), ":", "-")
	imp := s.addImportLocked(name, trades, at)
	rec := s.imports[imp.ID]
	rec.consolidated = Consolidate(trades, criteria.CurrencyPair)
	rec.imp.Status = model.StageConsolidated
	rec.imp.ConsolidationCriteria = string(criteria.CurrencyPair)
	rec.imp.CurrentTradeCount = len(rec.consolidated)
	rec.imp.ConsolidatedAt = model.Timestamp{Time: at}
	out := rec.snapshot()
	return &out
}

// DemoConfig returns the generator settings.
func (s *Store) DemoConfig() model.DemoConfig {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.demo
}

// UpdateDemoConfig validates and replaces the generator settings.
func (s *Store) UpdateDemoConfig(cfg model.DemoConfig) (model.DemoConfig, error) {
	if err := cfg.Validate(); err != nil {
		return model.DemoConfig{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.demo = cfg
	return s.demo, nil
}

// importsIn returns ids of imports in stage, oldest first.
func (s *Store) importsInLocked(stage model.Stage) []int64 {
	var ids []int64
	for id, rec := range s.imports {
		if rec.imp.Status == stage {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}
