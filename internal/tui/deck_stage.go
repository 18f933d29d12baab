package tui

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/fundsmith/tradewatch/internal/backend"
	"github.com/fundsmith/tradewatch/internal/model"
	"github.com/fundsmith/tradewatch/internal/poll"
	"github.com/fundsmith/tradewatch/internal/snapshot"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// StageDeck lists the imports currently in one pipeline stage.
type StageDeck struct {
	stage   model.Stage
	res     *poll.Resource
	tracker *snapshot.Tracker
	imports []model.TradeImport
}

// NewStageDeck creates an unmounted deck for stage.
func NewStageDeck(stage model.Stage, cfg Config) *StageDeck {
	return &StageDeck{
		stage: stage,
		res: poll.New(poll.Config{
			Key:         stage.Key(),
			Interval:    cfg.PollInterval,
			MaxInterval: cfg.MaxPollInterval,
		}),
		tracker: snapshot.NewTracker(cfg.RecencyWindow),
	}
}

func (d *StageDeck) ID() string               { return d.stage.Key() }
func (d *StageDeck) Title() string            { return d.stage.Title() }
func (d *StageDeck) Category() string         { return d.stage.Key() }
func (d *StageDeck) Noun() string             { return "imports" }
func (d *StageDeck) Resource() *poll.Resource { return d.res }
func (d *StageDeck) Stage() model.Stage       { return d.stage }
func (d *StageDeck) ItemCount() int           { return len(d.imports) }

func (d *StageDeck) Mount() poll.Wakeup { return d.res.Mount() }

// Unmount cancels polling and forgets the snapshot, so remounting treats
// the next result as a first load.
func (d *StageDeck) Unmount() {
	d.res.Cancel()
	d.tracker.Reset()
}

func (d *StageDeck) FetchCmd(ctx context.Context, be model.Backend, t poll.Ticket) tea.Cmd {
	return fetchCmd(ctx, t, be.ListImports)
}

func (d *StageDeck) Complete(t poll.Ticket, data any, err error, now time.Time) (poll.Completion, snapshot.IDSet) {
	imports, ok := data.([]model.TradeImport)
	if err == nil && !ok && data != nil {
		err = fmt.Errorf("%w: unexpected payload %T", backend.ErrDecode, data)
	}
	c := d.res.Complete(t, err, now)
	if c.Outcome != poll.Applied {
		return c, nil
	}
	d.imports = model.FilterStage(imports, d.stage)
	return c, d.tracker.Observe(model.ImportEntities(d.imports), now)
}

// Imports returns the rows last applied.
func (d *StageDeck) Imports() []model.TradeImport { return d.imports }

// Selected returns the import at row idx.
func (d *StageDeck) Selected(idx int) (model.TradeImport, bool) {
	if idx < 0 || idx >= len(d.imports) {
		return model.TradeImport{}, false
	}
	return d.imports[idx], true
}

func (d *StageDeck) Render(ctx ViewContext, width, height int, active bool, selIdx int) string {
	inner := max(width-2, 1)
	lines := []string{deckHeader(d.Title(), len(d.imports), d.res, ctx, inner)}

	if len(d.imports) == 0 {
		if ctx.Loading && d.res.LastFetchedAt().IsZero() {
			lines = append(lines, renderLoading(ctx.Now))
		} else {
			lines = append(lines, dimStyle.Render("No imports in this stage"))
		}
		return frameDeck(strings.Join(lines, "\n"), width, height, active)
	}

	cols := stageColumns(inner)
	lines = append(lines, dimStyle.Render(cols.row("ID", "Name", "Trades", "Criteria", "At")))

	start, end := visibleWindow(len(d.imports), selIdx, height-4)
	for i := start; i < end; i++ {
		imp := d.imports[i]
		id := strconv.FormatInt(imp.ID, 10)
		trades := strconv.Itoa(imp.CurrentTradeCount)
		if imp.OriginalTradeCount != imp.CurrentTradeCount {
			trades = fmt.Sprintf("%d→%d", imp.OriginalTradeCount, imp.CurrentTradeCount)
		}
		line := cols.row(id, imp.ImportName, trades, imp.ConsolidationCriteria, formatClock(imp.EnteredStageAt()))
		lines = append(lines, rowStyle(ctx, id, i == selIdx, active).Render(line))
	}
	return frameDeck(lipgloss.JoinVertical(lipgloss.Left, lines...), width, height, active)
}

type stageCols struct {
	id, name, trades, criteria, at int
}

func stageColumns(width int) stageCols {
	c := stageCols{id: 5, trades: 8, at: 8}
	rest := width - c.id - c.trades - c.at - 4
	c.criteria = rest / 3
	c.name = rest - c.criteria
	if c.name < 4 {
		c.name = 4
	}
	return c
}

func (c stageCols) row(id, name, trades, criteria, at string) string {
	return strings.Join([]string{
		pad(id, c.id),
		pad(name, c.name),
		pad(trades, c.trades),
		pad(criteria, c.criteria),
		pad(at, c.at),
	}, " ")
}
