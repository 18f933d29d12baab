package tui

import (
	"errors"
	"fmt"
	"strings"

	"github.com/fundsmith/tradewatch/internal/criteria"
	"github.com/fundsmith/tradewatch/internal/model"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// ConsolidateModal collects the grouping toggles for one import.
type ConsolidateModal struct {
	imp     model.TradeImport
	sel     criteria.Selection
	cursor  int
	errText string
	submit  func(id int64, c criteria.Criteria) tea.Cmd
}

// NewConsolidateModal opens the form with the default selection.
func NewConsolidateModal(imp model.TradeImport, submit func(id int64, c criteria.Criteria) tea.Cmd) *ConsolidateModal {
	return &ConsolidateModal{imp: imp, sel: criteria.DefaultSelection(), submit: submit}
}

func (m *ConsolidateModal) ID() string { return "consolidate" }

// Selection returns the current toggles.
func (m *ConsolidateModal) Selection() criteria.Selection { return m.sel }

func (m *ConsolidateModal) Update(msg tea.Msg) (bool, tea.Cmd) {
	km, ok := msg.(tea.KeyMsg)
	if !ok {
		return false, nil
	}
	switch km.String() {
	case "esc", "q":
		return true, nil
	case "1", "2", "3":
		m.toggle(criteria.Fields[km.Runes[0]-'1'])
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(criteria.Fields)-1 {
			m.cursor++
		}
	case " ", "x":
		m.toggle(criteria.Fields[m.cursor])
	case "enter":
		c, err := m.sel.Criteria()
		if errors.Is(err, criteria.ErrNoCriteria) {
			m.errText = "No criteria selected"
			return false, nil
		}
		if err != nil {
			m.errText = err.Error()
			return false, nil
		}
		return true, m.submit(m.imp.ID, c)
	}
	return false, nil
}

func (m *ConsolidateModal) toggle(f criteria.Field) {
	m.sel = m.sel.Toggle(f)
	m.errText = ""
}

func (m *ConsolidateModal) View(width, height int) string {
	var b strings.Builder
	b.WriteString(deckTitleStyle.Render(fmt.Sprintf("Consolidate import #%d", m.imp.ID)))
	b.WriteString("\n")
	b.WriteString(dimStyle.Render(fmt.Sprintf("%s · %d trades", m.imp.ImportName, m.imp.CurrentTradeCount)))
	b.WriteString("\n\n")

	for i, f := range criteria.Fields {
		box := "[ ]"
		if m.sel.Enabled(f) {
			box = "[x]"
		}
		line := fmt.Sprintf("%d %s %s", i+1, box, f)
		if i == m.cursor {
			line = selectedRowStyle.Render(line)
		}
		b.WriteString(line + "\n")
	}

	b.WriteString("\n")
	if c, err := m.sel.Criteria(); err == nil {
		b.WriteString(m.sel.Preview() + "\n")
		b.WriteString(dimStyle.Render("criteria: "+c.String()) + "\n")
	} else {
		b.WriteString(deckWarnStyle.Render(m.sel.Preview()) + "\n")
	}
	if m.errText != "" {
		b.WriteString(toastErrorStyle.Render(m.errText) + "\n")
	}
	b.WriteString("\n" + dimStyle.Render("1/2/3 or space: toggle · enter: consolidate · esc: cancel"))

	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, modalStyle.Render(b.String()))
}
