package tui

import (
	"context"
	"sync"
	"time"

	"github.com/fundsmith/tradewatch/internal/backend"
	"github.com/fundsmith/tradewatch/internal/model"
)

var t0 = time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

type fakeClock struct {
	now time.Time
}

func newFakeClock() *fakeClock { return &fakeClock{now: t0} }

func (c *fakeClock) Now() time.Time          { return c.now }
func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func importAt(id int64, stage model.Stage, at time.Time) model.TradeImport {
	return model.TradeImport{
		ID:                 id,
		ImportName:         "batch",
		Status:             stage,
		OriginalTradeCount: 4,
		CurrentTradeCount:  4,
		CreatedAt:          model.Timestamp{Time: at},
	}
}

// fakeBackend is an in-memory model.Backend with call recording.
type fakeBackend struct {
	mu sync.Mutex

	imports  []model.TradeImport
	listErr  error
	count    int
	countErr error
	trades   []model.LiveTrade
	demo     model.DemoConfig

	listCalls    int
	consolidated []string
	generated    []int64
	pushed       []int64
	deleted      []int64
	processed    int
	savedDemo    []model.DemoConfig
}

func (b *fakeBackend) setImports(imports ...model.TradeImport) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.imports = imports
}

func (b *fakeBackend) ListImports(context.Context) ([]model.TradeImport, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.listCalls++
	if b.listErr != nil {
		return nil, b.listErr
	}
	return append([]model.TradeImport(nil), b.imports...), nil
}

func (b *fakeBackend) GetImport(_ context.Context, id int64) (model.TradeImport, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, imp := range b.imports {
		if imp.ID == id {
			return imp, nil
		}
	}
	return model.TradeImport{}, &backend.StatusError{Method: "GET", Path: "/imports", Code: 404}
}

func (b *fakeBackend) Consolidate(_ context.Context, id int64, criteria string) (model.TradeImport, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.consolidated = append(b.consolidated, criteria)
	return model.TradeImport{ID: id, ImportName: "batch", Status: model.StageConsolidated, ConsolidationCriteria: criteria}, nil
}

func (b *fakeBackend) GenerateMXML(_ context.Context, id int64) (model.TradeImport, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.generated = append(b.generated, id)
	return model.TradeImport{ID: id, Status: model.StageMXMLGenerated}, nil
}

func (b *fakeBackend) PushToMurex(_ context.Context, id int64) (model.TradeImport, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.pushed = append(b.pushed, id)
	return model.TradeImport{ID: id, Status: model.StagePushedToMurex}, nil
}

func (b *fakeBackend) DeleteImport(_ context.Context, id int64) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.deleted = append(b.deleted, id)
	return nil
}

func (b *fakeBackend) PendingCount(context.Context) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.count, b.countErr
}

func (b *fakeBackend) PendingTrades(context.Context) ([]model.LiveTrade, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]model.LiveTrade(nil), b.trades...), nil
}

func (b *fakeBackend) ProcessPending(context.Context) (*model.TradeImport, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.processed++
	if b.count == 0 {
		return nil, nil
	}
	b.count = 0
	return &model.TradeImport{ID: 99, ImportName: "live", Status: model.StageConsolidated}, nil
}

func (b *fakeBackend) DemoConfig(context.Context) (model.DemoConfig, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.demo, nil
}

func (b *fakeBackend) UpdateDemoConfig(_ context.Context, cfg model.DemoConfig) (model.DemoConfig, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.savedDemo = append(b.savedDemo, cfg)
	b.demo = cfg
	return cfg, nil
}
