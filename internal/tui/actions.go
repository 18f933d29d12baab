package tui

import (
	"context"

	"github.com/fundsmith/tradewatch/internal/criteria"
	"github.com/fundsmith/tradewatch/internal/model"

	tea "github.com/charmbracelet/bubbletea"
)

// selectedImport returns the selected row when the focused deck is the
// deck of stage.
func (m *DashboardModel) selectedImport(stage model.Stage) (model.TradeImport, bool) {
	v := m.activeView()
	d, ok := v.Decks[v.ActiveDeckIdx].(*StageDeck)
	if !ok || d.Stage() != stage {
		return model.TradeImport{}, false
	}
	return d.Selected(v.DeckSelIdx[v.ActiveDeckIdx])
}

// focusedImport returns the selected row of the focused deck, whatever
// its stage.
func (m *DashboardModel) focusedImport() (model.TradeImport, bool) {
	v := m.activeView()
	d, ok := v.Decks[v.ActiveDeckIdx].(*StageDeck)
	if !ok {
		return model.TradeImport{}, false
	}
	return d.Selected(v.DeckSelIdx[v.ActiveDeckIdx])
}

func (m *DashboardModel) hint(text string) tea.Cmd {
	return m.addToast(text, false, m.cfg.ToastDuration)
}

// openDetails shows the selected import and fetches its latest copy.
func (m *DashboardModel) openDetails() tea.Cmd {
	imp, ok := m.focusedImport()
	if !ok {
		return m.hint("Select an import to see its details")
	}
	m.pushModal(NewImportDetailsModal(imp))
	ctx := m.ctx
	return func() tea.Msg {
		latest, err := m.backend.GetImport(ctx, imp.ID)
		return importDetailsMsg{ID: imp.ID, Import: latest, Err: err}
	}
}

func (m *DashboardModel) openConsolidate() tea.Cmd {
	imp, ok := m.selectedImport(model.StageImported)
	if !ok {
		return m.hint("Select an import in " + model.StageImported.Title() + " to consolidate")
	}
	return pushModalCmd(NewConsolidateModal(imp, m.consolidateCmd))
}

func (m *DashboardModel) consolidateCmd(id int64, c criteria.Criteria) tea.Cmd {
	return m.importAction("Consolidate", func(ctx context.Context) (model.TradeImport, error) {
		return m.backend.Consolidate(ctx, id, c.String())
	})
}

func (m *DashboardModel) generateMXML() tea.Cmd {
	imp, ok := m.selectedImport(model.StageConsolidated)
	if !ok {
		return m.hint("Select an import in " + model.StageConsolidated.Title() + " to generate MXML")
	}
	return m.importAction("Generate MXML", func(ctx context.Context) (model.TradeImport, error) {
		return m.backend.GenerateMXML(ctx, imp.ID)
	})
}

func (m *DashboardModel) pushToMurex() tea.Cmd {
	imp, ok := m.selectedImport(model.StageMXMLGenerated)
	if !ok {
		return m.hint("Select an import in " + model.StageMXMLGenerated.Title() + " to push")
	}
	return m.importAction("Push to Murex", func(ctx context.Context) (model.TradeImport, error) {
		return m.backend.PushToMurex(ctx, imp.ID)
	})
}

func (m *DashboardModel) deleteImport() tea.Cmd {
	imp, ok := m.selectedImport(model.StageConsolidated)
	if !ok {
		return m.hint("Select an import in " + model.StageConsolidated.Title() + " to delete")
	}
	ctx := m.ctx
	return func() tea.Msg {
		err := m.backend.DeleteImport(ctx, imp.ID)
		return actionResultMsg{Verb: "Delete", Result: &imp, Err: err}
	}
}

// processPending is gated on the last known pending count.
func (m *DashboardModel) processPending() tea.Cmd {
	if !m.pendingCount.Monitor().CanProcess() {
		return m.hint("No pending trades to process")
	}
	ctx := m.ctx
	return func() tea.Msg {
		imp, err := m.backend.ProcessPending(ctx)
		return actionResultMsg{Verb: "Process pending", Result: imp, Err: err}
	}
}

func (m *DashboardModel) importAction(verb string, do func(context.Context) (model.TradeImport, error)) tea.Cmd {
	ctx := m.ctx
	return func() tea.Msg {
		imp, err := do(ctx)
		if err != nil {
			return actionResultMsg{Verb: verb, Err: err}
		}
		return actionResultMsg{Verb: verb, Result: &imp}
	}
}

func (m *DashboardModel) openDemoConfig() tea.Cmd {
	cfg := model.DefaultDemoConfig()
	if m.demoKnown {
		cfg = m.demo
	}
	return pushModalCmd(NewDemoConfigModal(cfg, m.saveDemoConfigCmd))
}

func (m *DashboardModel) loadDemoConfigCmd() tea.Cmd {
	ctx := m.ctx
	return func() tea.Msg {
		cfg, err := m.backend.DemoConfig(ctx)
		return demoConfigMsg{Config: cfg, Err: err}
	}
}

func (m *DashboardModel) saveDemoConfigCmd(cfg model.DemoConfig) tea.Cmd {
	ctx := m.ctx
	return func() tea.Msg {
		saved, err := m.backend.UpdateDemoConfig(ctx, cfg)
		return demoConfigMsg{Config: saved, Saved: true, Err: err}
	}
}
