// Package statsui provides the Bubble Tea stats browser.
package statsui

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/fretdrill/fretdrill/internal/adaptive"
	"github.com/fretdrill/fretdrill/internal/deck"
	"github.com/fretdrill/fretdrill/internal/model"
	"github.com/fretdrill/fretdrill/internal/stats"
	"github.com/fretdrill/fretdrill/internal/store"
)

const (
	tabOverview = iota
	tabStrings
	tabItems
)

var (
	activeNavStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F0F0F0")).
			Bold(true).
			Padding(0, 1).
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(lipgloss.Color("#C89A3A"))
	inactiveNavStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#B0B0B0")).
				Padding(0, 1).
				Border(lipgloss.RoundedBorder(), true).
				BorderForeground(lipgloss.Color("#4A4A4A"))
	errorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
	hintStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
)

// Model implements the Bubble Tea stats UI.
type Model struct {
	store    *store.Store
	selector *adaptive.Selector
	deck     *deck.Deck
	cfg      model.StatsConfig

	report stats.Report
	errMsg string

	tabs      []string
	activeTab int
	overview  viewport.Model
	itemTable table.Model

	width  int
	height int
}

// NewModel constructs a stats UI model.
func NewModel(st *store.Store, sel *adaptive.Selector, d *deck.Deck, cfg model.StatsConfig) *Model {
	m := &Model{
		store:    st,
		selector: sel,
		deck:     d,
		cfg:      cfg,
		tabs:     []string{"Overview", "Strings", "Items"},
	}
	m.overview = viewport.New(80, 20)
	m.initItemTable()
	m.refreshReport()
	return m
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.updateLayout()
		m.renderTabContents()
		return m, nil
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC || msg.String() == "q" || msg.Type == tea.KeyEscape {
			return m, tea.Quit
		}
		switch msg.String() {
		case "left", "h":
			m.activeTab = (m.activeTab + len(m.tabs) - 1) % len(m.tabs)
			m.renderTabContents()
			return m, nil
		case "right", "l", "tab":
			m.activeTab = (m.activeTab + 1) % len(m.tabs)
			m.renderTabContents()
			return m, nil
		case "r":
			m.refreshReport()
			return m, nil
		}
		var cmd tea.Cmd
		if m.activeTab == tabItems {
			m.itemTable, cmd = m.itemTable.Update(msg)
		} else {
			m.overview, cmd = m.overview.Update(msg)
		}
		return m, cmd
	default:
		return m, nil
	}
}

// View implements tea.Model.
func (m *Model) View() string {
	nav := m.renderNav()
	var body string
	if m.errMsg != "" {
		body = errorStyle.Render(m.errMsg)
	} else {
		switch m.activeTab {
		case tabItems:
			body = m.itemTable.View()
		default:
			body = m.overview.View()
		}
	}
	hint := hintStyle.Render("←/→: tabs · r: refresh · q: quit")
	return nav + "\n" + body + "\n" + hint
}

func (m *Model) refreshReport() {
	report, err := stats.BuildReport(context.Background(), m.store, m.selector, m.deck, m.cfg, time.Now())
	if err != nil {
		m.errMsg = fmt.Sprintf("failed to build report: %v", err)
		return
	}
	m.errMsg = ""
	m.report = report
	m.renderTabContents()
}

func (m *Model) renderTabContents() {
	var buf bytes.Buffer
	switch m.activeTab {
	case tabStrings:
		if err := stats.RenderGroupTable(&buf, m.report.Groups, m.report.Labels); err != nil {
			m.errMsg = fmt.Sprintf("failed to render strings: %v", err)
			return
		}
	default:
		if err := stats.RenderSummary(&buf, m.report.Sessions); err != nil {
			m.errMsg = fmt.Sprintf("failed to render summary: %v", err)
			return
		}
		width := m.width - 4
		if err := stats.RenderAccuracyCurve(&buf, m.report.Sessions, m.cfg.CurveWindow, width); err != nil {
			m.errMsg = fmt.Sprintf("failed to render curve: %v", err)
			return
		}
	}
	m.overview.SetContent(buf.String())
	m.refreshItemRows()
}

func (m *Model) initItemTable() {
	columns := []table.Column{
		{Title: "Item", Width: 44},
		{Title: "Automaticity", Width: 12},
		{Title: "Recall", Width: 7},
		{Title: "Avg ms", Width: 7},
		{Title: "Samples", Width: 7},
	}
	m.itemTable = table.New(table.WithColumns(columns), table.WithFocused(true))
}

func (m *Model) refreshItemRows() {
	rows := make([]table.Row, 0, len(m.report.Items))
	for _, it := range m.report.Items {
		rows = append(rows, table.Row{
			it.Prompt,
			formatScore(it.Automaticity),
			formatScore(it.Recall),
			fmt.Sprintf("%.0f", it.EWMA),
			fmt.Sprintf("%d", it.SampleCount),
		})
	}
	m.itemTable.SetRows(rows)
}

func (m *Model) updateLayout() {
	bodyHeight := m.height - 5
	if bodyHeight < 3 {
		bodyHeight = 3
	}
	m.overview.Width = m.width
	m.overview.Height = bodyHeight
	m.itemTable.SetHeight(bodyHeight)
}

func (m *Model) renderNav() string {
	parts := make([]string, len(m.tabs))
	for i, tab := range m.tabs {
		if i == m.activeTab {
			parts[i] = activeNavStyle.Render(tab)
		} else {
			parts[i] = inactiveNavStyle.Render(tab)
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, parts...)
}

func formatScore(v *float64) string {
	if v == nil {
		return "-"
	}
	return fmt.Sprintf("%.2f", *v)
}
