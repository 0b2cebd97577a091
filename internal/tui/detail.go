package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"
	"github.com/pkg/browser"

	"github.com/bounteer/intentdash/internal/domain"
)

var (
	detailLabelStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("99")).
				Bold(true).
				Width(16)

	detailValueStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("252"))

	detailDoneStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("82"))

	detailPendingStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("228"))

	detailBorderStyle = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(lipgloss.Color("240")).
				Padding(1, 2)
)

// DetailModel renders one intent's metadata and its action timeline.
type DetailModel struct {
	intent domain.Intent
	width  int
	height int
	scroll int
}

// NewDetailModel creates a detail view for the given intent.
func NewDetailModel(intent domain.Intent) DetailModel {
	return DetailModel{intent: intent}
}

// Init initializes the model.
func (m DetailModel) Init() tea.Cmd {
	return tea.WindowSize()
}

// Update handles messages.
func (m DetailModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "esc", "enter":
			return m, func() tea.Msg { return closeDetailMsg{} }
		case "ctrl+c":
			return m, tea.Quit
		case "o":
			if m.intent.URL != "" {
				_ = browser.OpenURL(m.intent.URL)
			}
		case "j", "down":
			m.scroll++
		case "k", "up":
			if m.scroll > 0 {
				m.scroll--
			}
		}
	}

	return m, nil
}

// View renders the detail panel.
func (m DetailModel) View() string {
	width := m.width
	height := m.height
	if width == 0 {
		width = 80
	}
	if height == 0 {
		height = 24
	}

	innerWidth := width - 8
	if innerWidth < 30 {
		innerWidth = 30
	}

	var b strings.Builder

	title := m.intent.Title
	if m.intent.Company != "" {
		title = m.intent.Company + ": " + title
	}
	b.WriteString(titleStyle.Render(wordwrap.String(title, innerWidth)))
	b.WriteString("\n\n")

	writeField := func(label, value string) {
		if value == "" {
			return
		}
		b.WriteString(detailLabelStyle.Render(label))
		b.WriteString(detailValueStyle.Render(wordwrap.String(value, innerWidth-16)))
		b.WriteString("\n")
	}

	writeField("ID", fmt.Sprintf("#%d", m.intent.ID))
	writeField("Category", m.intent.Category)
	writeField("Location", m.intent.Location)
	if len(m.intent.Skills) > 0 {
		writeField("Skills", strings.Join(m.intent.Skills, ", "))
	}
	writeField("Predicted start", m.intent.PredictedStart)
	writeField("Created", m.intent.CreatedAt)
	writeField("URL", m.intent.URL)

	b.WriteString("\n")
	b.WriteString(columnHeaderStyle.Render(fmt.Sprintf("Actions (%d)", len(m.intent.Actions))))
	b.WriteString("\n")

	if len(m.intent.Actions) == 0 {
		b.WriteString(dimStyle.Render("No actions recorded."))
		b.WriteString("\n")
	}
	for _, action := range m.intent.Actions {
		marker := detailPendingStyle.Render("○")
		if action.Done {
			marker = detailDoneStyle.Render("●")
		}
		line := fmt.Sprintf("%s %s", marker, action.Summary())
		b.WriteString(wordwrap.String(line, innerWidth))
		b.WriteString("\n")
		if action.Kind == domain.ActionEmail && action.Body != "" {
			body := wordwrap.String(action.Body, innerWidth-4)
			for _, bl := range strings.Split(body, "\n") {
				b.WriteString(dimStyle.Render("    " + bl))
				b.WriteString("\n")
			}
		}
		if action.CreatedAt != "" {
			b.WriteString(dimStyle.Render("    " + action.CreatedAt))
			b.WriteString("\n")
		}
	}

	b.WriteString("\n")
	b.WriteString(dimStyle.Render("esc:back  o:open in browser  j/k:scroll  q:back"))

	content := b.String()
	lines := strings.Split(content, "\n")

	visible := height - 4
	if visible < 5 {
		visible = 5
	}
	maxScroll := len(lines) - visible
	if maxScroll < 0 {
		maxScroll = 0
	}
	scroll := m.scroll
	if scroll > maxScroll {
		scroll = maxScroll
	}
	end := scroll + visible
	if end > len(lines) {
		end = len(lines)
	}
	content = strings.Join(lines[scroll:end], "\n")

	panel := detailBorderStyle.Width(width - 4).Render(content)
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Top, panel)
}
