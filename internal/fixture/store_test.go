package fixture

import (
	"testing"
	"time"

	"github.com/fundsmith/tradewatch/internal/criteria"
	"github.com/fundsmith/tradewatch/internal/model"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time { return c.t }
func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newClock() *fakeClock {
	return &fakeClock{t: time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)}
}

func trade(id, pair, side, cpty, book, qty, price string) model.LiveTrade {
	return model.LiveTrade{
		TradeID:      id,
		CurrencyPair: pair,
		Side:         side,
		Counterparty: cpty,
		Book:         book,
		Quantity:     decimal.RequireFromString(qty),
		Price:        decimal.RequireFromString(price),
	}
}

func sampleTrades() []model.LiveTrade {
	return []model.LiveTrade{
		trade("T1", "EUR/USD", "BUY", "BANK_A", "TRADING", "100", "1.10"),
		trade("T2", "EUR/USD", "BUY", "BANK_B", "TRADING", "200", "1.20"),
		trade("T3", "GBP/USD", "SELL", "BANK_A", "HEDGE", "50", "1.30"),
	}
}

func TestStoreWalksImportThroughPipeline(t *testing.T) {
	clk := newClock()
	s := NewStore(clk.now)
	imp := s.AddImport("batch-1", sampleTrades())
	assert.Equal(t, model.StageImported, imp.Status)
	assert.Equal(t, 3, imp.OriginalTradeCount)

	clk.advance(time.Second)
	imp, err := s.Consolidate(imp.ID, criteria.CurrencyPair)
	require.NoError(t, err)
	assert.Equal(t, model.StageConsolidated, imp.Status)
	assert.Equal(t, 2, imp.CurrentTradeCount)
	assert.Equal(t, clk.t, imp.ConsolidatedAt.Time)
	assert.Equal(t, clk.t, imp.EnteredStageAt())

	clk.advance(time.Second)
	imp, err = s.GenerateMXML(imp.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StageMXMLGenerated, imp.Status)
	assert.Len(t, imp.MXMLFiles, 2)

	clk.advance(time.Second)
	imp, err = s.PushToMurex(imp.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StagePushedToMurex, imp.Status)
	assert.True(t, imp.PushedToMurex)
}

func TestStoreRejectsOutOfOrderTransitions(t *testing.T) {
	s := NewStore(nil)
	imp := s.AddImport("batch-1", sampleTrades())

	_, err := s.GenerateMXML(imp.ID)
	assert.ErrorIs(t, err, ErrConflict)
	_, err = s.PushToMurex(imp.ID)
	assert.ErrorIs(t, err, ErrConflict)
	_, err = s.Consolidate(999, criteria.Book)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStoreReconsolidationReplacesGroups(t *testing.T) {
	s := NewStore(nil)
	imp := s.AddImport("batch-1", sampleTrades())

	_, err := s.Consolidate(imp.ID, criteria.AllCriteria)
	require.NoError(t, err)
	imp, err = s.Consolidate(imp.ID, criteria.Book)
	require.NoError(t, err)
	assert.Equal(t, string(criteria.Book), imp.ConsolidationCriteria)
	assert.Equal(t, 2, imp.CurrentTradeCount)
}

func TestStoreListsNewestFirst(t *testing.T) {
	clk := newClock()
	s := NewStore(clk.now)
	s.AddImport("old", nil)
	clk.advance(time.Second)
	s.AddImport("new", nil)

	list := s.ListImports()
	require.Len(t, list, 2)
	assert.Equal(t, "new", list[0].ImportName)
}

func TestStoreProcessPending(t *testing.T) {
	clk := newClock()
	s := NewStore(clk.now)
	assert.Nil(t, s.ProcessPending())

	for _, tr := range sampleTrades() {
		tr.TradeID = ""
		s.SubmitLive(tr)
	}
	pending := s.PendingTrades()
	require.Len(t, pending, 3)
	assert.Equal(t, "LIVE-1", pending[0].TradeID)
	assert.Equal(t, clk.t, pending[0].Timestamp.Time)

	imp := s.ProcessPending()
	require.NotNil(t, imp)
	assert.Equal(t, model.StageConsolidated, imp.Status)
	assert.Equal(t, string(criteria.CurrencyPair), imp.ConsolidationCriteria)
	assert.Equal(t, 3, imp.OriginalTradeCount)
	assert.Zero(t, s.PendingCount())
}

func TestStoreDeleteImport(t *testing.T) {
	s := NewStore(nil)
	imp := s.AddImport("batch-1", nil)
	require.NoError(t, s.DeleteImport(imp.ID))
	assert.ErrorIs(t, s.DeleteImport(imp.ID), ErrNotFound)
}

func TestStoreRejectsInvalidDemoConfig(t *testing.T) {
	s := NewStore(nil)
	cfg := model.DefaultDemoConfig()
	cfg.GroupingIntervalSeconds = 0
	_, err := s.UpdateDemoConfig(cfg)
	assert.Error(t, err)
	assert.Equal(t, model.DefaultDemoConfig(), s.DemoConfig())
}

func TestConsolidateGroupsBySelectionAndSide(t *testing.T) {
	tests := []struct {
		criteria criteria.Criteria
		want     []string
	}{
		{criteria.CurrencyPair, []string{"CONS-EUR/USD-BUY", "CONS-GBP/USD-SELL"}},
		{criteria.Counterparty, []string{"CONS-BANK_A-BUY", "CONS-BANK_A-SELL", "CONS-BANK_B-BUY"}},
		{criteria.Book, []string{"CONS-HEDGE-SELL", "CONS-TRADING-BUY"}},
	}
	for _, tt := range tests {
		t.Run(string(tt.criteria), func(t *testing.T) {
			var ids []string
			for _, tr := range Consolidate(sampleTrades(), tt.criteria) {
				ids = append(ids, tr.TradeID)
			}
			assert.Equal(t, tt.want, ids)
		})
	}
}

func TestConsolidateSumsQuantityAndAveragesPrice(t *testing.T) {
	out := Consolidate(sampleTrades(), criteria.CurrencyPair)
	require.Len(t, out, 2)
	eur := out[0]
	assert.Equal(t, "EUR/USD", eur.CurrencyPair)
	assert.Equal(t, mixed, eur.Counterparty)
	assert.True(t, eur.Quantity.Equal(decimal.NewFromInt(300)), eur.Quantity.String())
	assert.True(t, eur.Price.Equal(decimal.RequireFromString("1.15")), eur.Price.String())
}
