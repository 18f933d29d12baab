package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/fundsmith/tradewatch/internal/criteria"
	"github.com/fundsmith/tradewatch/internal/model"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// importDetailsMsg carries one import fetched for the details modal.
type importDetailsMsg struct {
	ID     int64
	Import model.TradeImport
	Err    error
}

// ImportDetailsModal shows one import's history and MXML files. It opens
// on the row data and swaps in the backend's copy once loaded.
type ImportDetailsModal struct {
	imp     model.TradeImport
	loading bool
	err     error
}

// NewImportDetailsModal opens the modal for the row imp.
func NewImportDetailsModal(imp model.TradeImport) *ImportDetailsModal {
	return &ImportDetailsModal{imp: imp, loading: true}
}

func (m *ImportDetailsModal) ID() string { return "import-details" }

// Import returns the import currently shown.
func (m *ImportDetailsModal) Import() model.TradeImport { return m.imp }

// Loading reports whether the backend copy is still outstanding.
func (m *ImportDetailsModal) Loading() bool { return m.loading }

func (m *ImportDetailsModal) Update(msg tea.Msg) (bool, tea.Cmd) {
	switch msg := msg.(type) {
	case importDetailsMsg:
		if msg.ID != m.imp.ID {
			return false, nil
		}
		m.loading = false
		m.err = msg.Err
		if msg.Err == nil {
			m.imp = msg.Import
		}
	case tea.KeyMsg:
		switch msg.String() {
		case "esc", "q", "enter", "i":
			return true, nil
		}
	}
	return false, nil
}

func (m *ImportDetailsModal) View(width, height int) string {
	imp := m.imp
	var b strings.Builder
	b.WriteString(deckTitleStyle.Render(fmt.Sprintf("Import #%d · %s", imp.ID, imp.ImportName)))
	b.WriteString("\n\n")

	row := func(label, value string) {
		b.WriteString(dimStyle.Render(pad(label, 16)) + value + "\n")
	}
	row("Status", imp.Status.Title())
	row("Trades", fmt.Sprintf("%d of %d original", imp.CurrentTradeCount, imp.OriginalTradeCount))
	if c, err := criteria.Parse(imp.ConsolidationCriteria); err == nil {
		row("Grouped by", c.Label())
	}
	row("Created", formatStamp(imp.CreatedAt.Time))
	row("Consolidated", formatStamp(imp.ConsolidatedAt.Time))
	row("MXML generated", formatStamp(imp.MXMLGeneratedAt.Time))
	row("Pushed to Murex", formatStamp(imp.PushedToMurexAt.Time))

	b.WriteString("\n" + deckTitleStyle.Render(fmt.Sprintf("MXML files (%d)", len(imp.MXMLFiles))) + "\n")
	if len(imp.MXMLFiles) == 0 {
		b.WriteString(dimStyle.Render("none yet") + "\n")
	}
	for _, f := range imp.MXMLFiles {
		b.WriteString(pad(truncate(f.Filename, 40), 42) + dimStyle.Render(formatStamp(f.CreatedAt.Time)) + "\n")
	}

	switch {
	case m.loading:
		b.WriteString("\n" + dimStyle.Render("loading latest details…") + "\n")
	case m.err != nil:
		b.WriteString("\n" + toastErrorStyle.Render("Could not load details: "+describeErr(m.err)) + "\n")
	}
	b.WriteString("\n" + dimStyle.Render("esc: close"))

	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, modalStyle.Render(b.String()))
}

func formatStamp(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format("2006-01-02 15:04:05")
}
