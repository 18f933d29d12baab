package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/fundsmith/tradewatch/internal/backend"
	"github.com/fundsmith/tradewatch/internal/model"
	"github.com/fundsmith/tradewatch/internal/pending"
	"github.com/fundsmith/tradewatch/internal/poll"
	"github.com/fundsmith/tradewatch/internal/snapshot"

	"github.com/NimbleMarkets/ntcharts/barchart"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// pendingCategory is the highlight category of newly queued live trades.
const pendingCategory = "pending"

// PendingCountDeck shows the live-trade queue depth and its recent history.
type PendingCountDeck struct {
	monitor *pending.Monitor
}

// NewPendingCountDeck creates a hidden pending-count deck.
func NewPendingCountDeck(cfg Config) *PendingCountDeck {
	return &PendingCountDeck{
		monitor: pending.NewMonitor(pending.Config{
			Interval:    cfg.PendingInterval,
			MaxInterval: cfg.MaxPollInterval,
		}),
	}
}

func (d *PendingCountDeck) ID() string               { return pending.Key }
func (d *PendingCountDeck) Title() string            { return "Pending Trades" }
func (d *PendingCountDeck) Category() string         { return "" }
func (d *PendingCountDeck) Noun() string             { return "" }
func (d *PendingCountDeck) Resource() *poll.Resource { return d.monitor.Resource() }
func (d *PendingCountDeck) Mount() poll.Wakeup       { return d.monitor.Show() }
func (d *PendingCountDeck) Unmount()                 { d.monitor.Hide() }
func (d *PendingCountDeck) ItemCount() int           { return 0 }

// Monitor exposes the underlying count monitor.
func (d *PendingCountDeck) Monitor() *pending.Monitor { return d.monitor }

func (d *PendingCountDeck) FetchCmd(ctx context.Context, be model.Backend, t poll.Ticket) tea.Cmd {
	return fetchCmd(ctx, t, be.PendingCount)
}

func (d *PendingCountDeck) Complete(t poll.Ticket, data any, err error, now time.Time) (poll.Completion, snapshot.IDSet) {
	count, ok := data.(int)
	if err == nil && !ok {
		err = fmt.Errorf("%w: unexpected payload %T", backend.ErrDecode, data)
	}
	return d.monitor.Complete(t, count, err, now), nil
}

func (d *PendingCountDeck) Render(ctx ViewContext, width, height int, active bool, _ int) string {
	inner := max(width-2, 1)
	count, known := d.monitor.Count()

	header := deckHeader(d.Title(), count, d.Resource(), ctx, inner)
	value := "-"
	if known {
		value = fmt.Sprintf("%d pending", count)
	}
	status := badgeStyle.Render(value)
	if d.monitor.CanProcess() {
		status += " " + dimStyle.Render("press P to process")
	}

	lines := []string{header, status}
	if chartHeight := height - 4; chartHeight >= 2 {
		lines = append(lines, renderHistory(d.monitor.History(), inner, chartHeight))
	}
	return frameDeck(lipgloss.JoinVertical(lipgloss.Left, lines...), width, height, active)
}

var historyBarStyle = lipgloss.NewStyle().Foreground(ColorYellow).Background(ColorYellow)

// renderHistory draws the last width counts as bars, padding on the left
// so the newest value is always at the right edge.
func renderHistory(history []float64, width, height int) string {
	if len(history) == 0 {
		return dimStyle.Render("No data yet")
	}
	bars := max(width/2, 1)
	if len(history) > bars {
		history = history[len(history)-bars:]
	}

	bc := barchart.New(width, height,
		barchart.WithBarGap(1),
		barchart.WithBarWidth(1),
		barchart.WithNoAxis(),
	)
	for i := len(history); i < bars; i++ {
		bc.Push(barchart.BarData{
			Values: []barchart.BarValue{{Name: "count", Value: 0, Style: historyBarStyle}},
		})
	}
	for _, v := range history {
		bc.Push(barchart.BarData{
			Values: []barchart.BarValue{{Name: "count", Value: v, Style: historyBarStyle}},
		})
	}
	bc.Draw()
	return bc.View()
}

// PendingTradesDeck lists trades waiting in the live queue.
type PendingTradesDeck struct {
	res     *poll.Resource
	tracker *snapshot.Tracker
	trades  []model.LiveTrade
}

// NewPendingTradesDeck creates an unmounted pending-trades deck.
func NewPendingTradesDeck(cfg Config) *PendingTradesDeck {
	return &PendingTradesDeck{
		res: poll.New(poll.Config{
			Key:         "pending-trades",
			Interval:    cfg.PendingTradesInterval,
			MaxInterval: cfg.MaxPollInterval,
		}),
		tracker: snapshot.NewTracker(cfg.RecencyWindow),
	}
}

func (d *PendingTradesDeck) ID() string               { return d.res.Key() }
func (d *PendingTradesDeck) Title() string            { return "Live Queue" }
func (d *PendingTradesDeck) Category() string         { return pendingCategory }
func (d *PendingTradesDeck) Noun() string             { return "live trades" }
func (d *PendingTradesDeck) Resource() *poll.Resource { return d.res }
func (d *PendingTradesDeck) ItemCount() int           { return len(d.trades) }
func (d *PendingTradesDeck) Mount() poll.Wakeup       { return d.res.Mount() }

func (d *PendingTradesDeck) Unmount() {
	d.res.Cancel()
	d.tracker.Reset()
}

// Trades returns the rows last applied.
func (d *PendingTradesDeck) Trades() []model.LiveTrade { return d.trades }

func (d *PendingTradesDeck) FetchCmd(ctx context.Context, be model.Backend, t poll.Ticket) tea.Cmd {
	return fetchCmd(ctx, t, be.PendingTrades)
}

func (d *PendingTradesDeck) Complete(t poll.Ticket, data any, err error, now time.Time) (poll.Completion, snapshot.IDSet) {
	trades, ok := data.([]model.LiveTrade)
	if err == nil && !ok && data != nil {
		err = fmt.Errorf("%w: unexpected payload %T", backend.ErrDecode, data)
	}
	c := d.res.Complete(t, err, now)
	if c.Outcome != poll.Applied {
		return c, nil
	}
	d.trades = trades
	return c, d.tracker.Observe(model.LiveTradeEntities(trades), now)
}

func (d *PendingTradesDeck) Render(ctx ViewContext, width, height int, active bool, selIdx int) string {
	inner := max(width-2, 1)
	lines := []string{deckHeader(d.Title(), len(d.trades), d.res, ctx, inner)}

	if len(d.trades) == 0 {
		if ctx.Loading && d.res.LastFetchedAt().IsZero() {
			lines = append(lines, renderLoading(ctx.Now))
		} else {
			lines = append(lines, dimStyle.Render("Queue is empty"))
		}
		return frameDeck(strings.Join(lines, "\n"), width, height, active)
	}

	w := []int{14, 8, 5, 12, 10, 12}
	w = append(w, max(inner-sum(w)-len(w), 4))
	row := func(cells ...string) string {
		out := make([]string, len(cells))
		for i, c := range cells {
			out[i] = pad(c, w[i])
		}
		return strings.Join(out, " ")
	}
	lines = append(lines, dimStyle.Render(row("Trade", "Pair", "Side", "Quantity", "Price", "Counterparty", "Book")))

	start, end := visibleWindow(len(d.trades), selIdx, height-4)
	for i := start; i < end; i++ {
		lt := d.trades[i]
		line := row(lt.TradeID, lt.CurrencyPair, lt.Side,
			lt.Quantity.StringFixed(2), lt.Price.StringFixed(5),
			lt.Counterparty, lt.Book)
		lines = append(lines, rowStyle(ctx, lt.TradeID, i == selIdx, active).Render(line))
	}
	return frameDeck(lipgloss.JoinVertical(lipgloss.Left, lines...), width, height, active)
}

func sum(xs []int) int {
	total := 0
	for _, x := range xs {
		total += x
	}
	return total
}
