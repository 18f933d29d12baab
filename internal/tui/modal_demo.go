package tui

import (
	"fmt"
	"strings"

	"github.com/fundsmith/tradewatch/internal/model"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

type demoField int

const (
	demoEnabled demoField = iota
	demoTradesPerSecond
	demoGrouping
	demoAutoMXML
	demoMXMLInterval
	demoAutoMurex
	demoMurexInterval
	demoFieldCount
)

// DemoConfigModal edits the backend's demo generator settings.
type DemoConfigModal struct {
	cfg     model.DemoConfig
	cursor  demoField
	errText string
	save    func(model.DemoConfig) tea.Cmd
}

// NewDemoConfigModal opens the editor on cfg.
func NewDemoConfigModal(cfg model.DemoConfig, save func(model.DemoConfig) tea.Cmd) *DemoConfigModal {
	return &DemoConfigModal{cfg: cfg, save: save}
}

func (m *DemoConfigModal) ID() string { return "demo-config" }

// Config returns the edited settings.
func (m *DemoConfigModal) Config() model.DemoConfig { return m.cfg }

func (m *DemoConfigModal) Update(msg tea.Msg) (bool, tea.Cmd) {
	km, ok := msg.(tea.KeyMsg)
	if !ok {
		return false, nil
	}
	switch km.String() {
	case "esc", "q":
		return true, nil
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j", "tab":
		if m.cursor < demoFieldCount-1 {
			m.cursor++
		}
	case " ":
		m.adjust(0)
	case "left", "h", "-":
		m.adjust(-1)
	case "right", "l", "+", "=":
		m.adjust(1)
	case "enter":
		if err := m.cfg.Validate(); err != nil {
			m.errText = err.Error()
			return false, nil
		}
		return true, m.save(m.cfg)
	}
	return false, nil
}

// adjust toggles booleans and steps numeric fields by dir.
func (m *DemoConfigModal) adjust(dir int) {
	m.errText = ""
	c := &m.cfg
	switch m.cursor {
	case demoEnabled:
		c.Enabled = !c.Enabled
	case demoAutoMXML:
		c.AutoMXMLEnabled = !c.AutoMXMLEnabled
	case demoAutoMurex:
		c.AutoMurexEnabled = !c.AutoMurexEnabled
	case demoTradesPerSecond:
		c.TradesPerSecond = max(c.TradesPerSecond+0.5*float64(dir), 0)
	case demoGrouping:
		c.GroupingIntervalSeconds = max(c.GroupingIntervalSeconds+dir, 1)
	case demoMXMLInterval:
		c.MXMLGenerationIntervalSeconds = max(c.MXMLGenerationIntervalSeconds+dir, 1)
	case demoMurexInterval:
		c.MurexPushIntervalSeconds = max(c.MurexPushIntervalSeconds+dir, 1)
	}
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}

func (m *DemoConfigModal) View(width, height int) string {
	c := m.cfg
	rows := []struct{ label, value string }{
		{"Demo mode", onOff(c.Enabled)},
		{"Trades per second", fmt.Sprintf("%.1f", c.TradesPerSecond)},
		{"Grouping interval", fmt.Sprintf("%ds", c.GroupingIntervalSeconds)},
		{"Auto MXML", onOff(c.AutoMXMLEnabled)},
		{"MXML interval", fmt.Sprintf("%ds", c.MXMLGenerationIntervalSeconds)},
		{"Auto Murex push", onOff(c.AutoMurexEnabled)},
		{"Murex push interval", fmt.Sprintf("%ds", c.MurexPushIntervalSeconds)},
	}

	var b strings.Builder
	b.WriteString(deckTitleStyle.Render("Demo configuration") + "\n\n")
	for i, r := range rows {
		line := fmt.Sprintf("%-20s %8s", r.label, r.value)
		if demoField(i) == m.cursor {
			line = selectedRowStyle.Render(line)
		}
		b.WriteString(line + "\n")
	}
	if m.errText != "" {
		b.WriteString("\n" + toastErrorStyle.Render(m.errText) + "\n")
	}
	b.WriteString("\n" + dimStyle.Render("space: toggle · ←/→: adjust · enter: save · esc: cancel"))

	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, modalStyle.Render(b.String()))
}
