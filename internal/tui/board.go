package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/pkg/browser"

	"github.com/bounteer/intentdash/internal/dashboard"
	"github.com/bounteer/intentdash/internal/domain"
	"github.com/bounteer/intentdash/internal/preload"
	"github.com/bounteer/intentdash/internal/store"
)

// Layout constants
const (
	minColumnWidth = 24
	maxColumnWidth = 40
	badgeTickRate  = 500 * time.Millisecond
)

// columnTitles maps columns to display names.
var columnTitles = map[domain.Column]string{
	domain.ColumnSignal:    "Signals",
	domain.ColumnActioned:  "Actions",
	domain.ColumnCompleted: "Completed",
	domain.ColumnAborted:   "Aborted",
	domain.ColumnHidden:    "Hidden",
}

// BoardModel is the kanban board view over the dashboard controller.
type BoardModel struct {
	// Dependencies
	ctrl *dashboard.Controller
	ctx  context.Context

	// UI components
	keymap      KeyMap
	help        HelpModel
	spinner     spinner.Model
	filterInput textinput.Model
	reasonInput textinput.Model

	// Board state
	columns        []domain.Column
	selectedColumn int
	selectedCard   map[domain.Column]int
	scrollOffset   map[domain.Column]int

	// View state
	width      int
	height     int
	showHelp   bool
	filterMode bool
	filterText string
	abortMode  bool
	loading    bool
	err        error
	toast      string
}

// NewBoardModel creates a new board model over the controller.
func NewBoardModel(ctrl *dashboard.Controller, ctx context.Context) BoardModel {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	ti := textinput.New()
	ti.Placeholder = "Category..."
	ti.Prompt = "/ "

	ri := textinput.New()
	ri.Placeholder = "Reason (optional)..."
	ri.Prompt = "abort: "

	return BoardModel{
		ctrl:         ctrl,
		ctx:          ctx,
		keymap:       DefaultKeyMap(),
		help:         NewHelpModel(DefaultKeyMap()),
		spinner:      sp,
		filterInput:  ti,
		reasonInput:  ri,
		columns:      domain.Columns,
		selectedCard: make(map[domain.Column]int),
		scrollOffset: make(map[domain.Column]int),
		loading:      true,
	}
}

// Init starts the first refresh and the preload listener.
func (m BoardModel) Init() tea.Cmd {
	return tea.Batch(
		m.spinner.Tick,
		tea.WindowSize(),
		m.refresh(true),
		m.listenPreload(),
		badgeTick(),
	)
}

// Update handles messages
func (m BoardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case refreshDoneMsg:
		m.loading = false
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.err = nil
		(&m).clampSelection()
		return m, nil

	case moveResolvedMsg:
		if msg.err != nil {
			m.toast = fmt.Sprintf("Move failed: %v", msg.err)
		} else {
			m.toast = ""
		}
		(&m).clampSelection()
		return m, nil

	case preloadRequestMsg:
		return m, tea.Batch(m.processPreload(msg.req), m.listenPreload())

	case preloadDoneMsg:
		if msg.err != nil {
			m.toast = fmt.Sprintf("Load more failed: %v", msg.err)
		}
		return m, nil

	case badgeTickMsg:
		// Re-render so resolved pending badges disappear on schedule.
		return m, badgeTick()

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		return m.handleKeyPress(msg)
	}

	return m, nil
}

// handleKeyPress processes keyboard input
func (m BoardModel) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// Global quit
	if msg.String() == "ctrl+c" {
		return m, tea.Quit
	}

	// Blocking error panel: only retry or quit make sense.
	if m.err != nil {
		switch msg.String() {
		case "r":
			m.err = nil
			m.loading = true
			return m, m.refresh(true)
		case "q":
			return m, tea.Quit
		}
		return m, nil
	}

	// Help overlay
	if m.showHelp {
		if msg.String() == "?" || msg.String() == "q" || msg.String() == "esc" {
			m.showHelp = false
		}
		return m, nil
	}

	// Category filter mode
	if m.filterMode {
		switch msg.String() {
		case "enter":
			m.filterMode = false
			m.filterText = m.filterInput.Value()
			m.ctrl.SetCategoryFilter(m.filterText)
			m.loading = true
			return m, m.refresh(false)
		case "esc":
			m.filterMode = false
			m.filterInput.SetValue(m.filterText)
			return m, nil
		default:
			var cmd tea.Cmd
			m.filterInput, cmd = m.filterInput.Update(msg)
			return m, cmd
		}
	}

	// Abort-reason mode
	if m.abortMode {
		switch msg.String() {
		case "enter":
			m.abortMode = false
			reason := m.reasonInput.Value()
			m.reasonInput.Reset()
			return m, m.startMove(domain.ColumnAborted, reason)
		case "esc":
			m.abortMode = false
			m.reasonInput.Reset()
			return m, nil
		default:
			var cmd tea.Cmd
			m.reasonInput, cmd = m.reasonInput.Update(msg)
			return m, cmd
		}
	}

	// Normal navigation
	switch msg.String() {
	case "q":
		return m, tea.Quit
	case "?":
		m.showHelp = true
	case "/":
		m.filterMode = true
		m.filterInput.Focus()
	case "h", "left":
		if m.selectedColumn > 0 {
			m.selectedColumn--
		}
	case "l", "right":
		if m.selectedColumn < len(m.columns)-1 {
			m.selectedColumn++
		}
	case "j", "down":
		(&m).moveCardSelection(1)
	case "k", "up":
		(&m).moveCardSelection(-1)
	case "g":
		(&m).jumpToCard(0)
	case "G":
		(&m).jumpToCard(-1)
	case "a":
		return m, m.startMove(domain.ColumnActioned, "")
	case "x":
		return m, m.startMove(domain.ColumnHidden, "")
	case "c":
		return m, m.startMove(domain.ColumnCompleted, "")
	case "b":
		if m.selectedIntent() != nil {
			m.abortMode = true
			m.reasonInput.Focus()
		}
	case "s":
		return m, m.startMove(domain.ColumnSignal, "")
	case "o":
		intent := m.selectedIntent()
		if intent != nil && intent.URL != "" {
			_ = browser.OpenURL(intent.URL)
		}
	case "r":
		m.loading = true
		return m, m.refresh(true)
	case "enter":
		intent := m.selectedIntent()
		if intent != nil {
			return m, func() tea.Msg { return openDetailMsg{intent: intent} }
		}
	}

	return m, nil
}

// View renders the board - fills entire terminal exactly
func (m BoardModel) View() string {
	width := m.width
	height := m.height
	if width == 0 {
		width = 80
	}
	if height == 0 {
		height = 24
	}

	// Blocking error panel for column-fetch failures.
	if m.err != nil {
		msg := errorStyle.Render(fmt.Sprintf("Error: %v", m.err)) +
			"\n\nPress 'r' to retry or 'q' to quit."
		return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, msg)
	}

	var sections []string
	sections = append(sections, m.renderHeader(width))
	sections = append(sections, m.renderSecondHeader(width))

	if m.filterMode {
		sections = append(sections, m.filterInput.View())
	}
	if m.abortMode {
		sections = append(sections, abortModeStyle.Render("ABORT")+" "+m.reasonInput.View())
	}

	boardHeight := height - 2
	if m.filterMode {
		boardHeight--
	}
	if m.abortMode {
		boardHeight--
	}
	narrow := m.useTabbedLayout(width)
	if narrow {
		boardHeight-- // tab bar
	}
	if boardHeight < 5 {
		boardHeight = 5
	}

	var mainContent string
	switch {
	case m.showHelp:
		helpContent := m.help.View(width)
		helpLines := strings.Split(helpContent, "\n")
		if len(helpLines) > boardHeight {
			helpLines = helpLines[:boardHeight]
		}
		mainContent = strings.Join(helpLines, "\n")
	case m.loading && m.boardEmpty():
		loadingMsg := m.spinner.View() + " Loading..."
		mainContent = lipgloss.Place(width, boardHeight, lipgloss.Center, lipgloss.Center, loadingMsg)
	case narrow:
		tabs := m.renderTabBar(width)
		mainContent = tabs + "\n" + m.renderSingleColumn(width, boardHeight)
	default:
		mainContent = m.renderBoard(width, boardHeight)
	}
	sections = append(sections, mainContent)

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// useTabbedLayout reports whether the terminal is too narrow for five
// side-by-side columns. Same data, different rendering.
func (m BoardModel) useTabbedLayout(width int) bool {
	return width < len(m.columns)*minColumnWidth
}

// renderHeader renders a single header line with title on left and sync
// status on right.
func (m BoardModel) renderHeader(width int) string {
	space := m.ctrl.Space()
	title := "Bounteer Hiring Intents"
	if space > 0 {
		title = fmt.Sprintf("%s - space %d", title, space)
	}

	var statusParts []string
	sync := m.ctrl.SyncStatus()
	if !sync.Online && !sync.LastSyncTime.IsZero() {
		statusParts = append(statusParts, offlineStyle.Render("offline"))
	}
	if sync.SyncInProgress {
		statusParts = append(statusParts, m.spinner.View()+"syncing")
	}
	if sync.PendingItems > 0 {
		statusParts = append(statusParts, fmt.Sprintf("%d unconfirmed", sync.PendingItems))
	}
	if m.loading {
		statusParts = append(statusParts, m.spinner.View()+"loading")
	}
	if m.filterText != "" {
		statusParts = append(statusParts, fmt.Sprintf("/%s", m.filterText))
	}
	statusParts = append(statusParts, "[?]help")

	status := strings.Join(statusParts, " | ")

	leftLen := lipgloss.Width(title)
	rightLen := lipgloss.Width(status)
	padding := width - leftLen - rightLen - 2
	if padding < 1 {
		padding = 1
	}

	return titleStyle.Render(title) + strings.Repeat(" ", padding) + dimStyle.Render(status)
}

// renderSecondHeader renders navigation hints and position info
func (m BoardModel) renderSecondHeader(width int) string {
	left := "h/l:col j/k:intent a:action x:skip c:done b:abort enter:view"

	right := ""
	if m.toast != "" {
		right = errorStyle.Render(m.toast)
	} else {
		col := m.columns[m.selectedColumn]
		items := m.visibleItems(col)
		colPos := fmt.Sprintf("col %d/%d", m.selectedColumn+1, len(m.columns))
		if len(items) > 0 {
			right = fmt.Sprintf("%s | intent %d/%d", colPos, m.selectedCard[col]+1, len(items))
		} else {
			right = colPos
		}
	}

	leftLen := len(left)
	rightLen := lipgloss.Width(right)
	padding := width - leftLen - rightLen - 2
	if padding < 1 {
		padding = 1
	}

	return dimStyle.Render(left) + strings.Repeat(" ", padding) + right
}

// renderTabBar renders the narrow-layout tab strip.
func (m BoardModel) renderTabBar(width int) string {
	tabs := make([]string, 0, len(m.columns))
	for i, col := range m.columns {
		label := fmt.Sprintf("%s(%d)", columnTitles[col], m.ctrl.Board().Total(col))
		if i == m.selectedColumn {
			tabs = append(tabs, activeTabStyle.Render(label))
		} else {
			tabs = append(tabs, tabStyle.Render(label))
		}
	}
	bar := lipgloss.JoinHorizontal(lipgloss.Top, tabs...)
	if lipgloss.Width(bar) > width {
		bar = bar[:width]
	}
	return bar
}

// renderSingleColumn renders the selected column full-width (tabbed layout).
func (m BoardModel) renderSingleColumn(totalWidth, totalHeight int) string {
	colContentHeight := totalHeight - 2
	if colContentHeight < 3 {
		colContentHeight = 3
	}
	innerWidth := totalWidth - 4
	if innerWidth < 10 {
		innerWidth = 10
	}
	col := m.columns[m.selectedColumn]
	return m.renderColumn(col, true, totalWidth, colContentHeight, innerWidth, colContentHeight)
}

// renderBoard renders the five kanban columns within the given dimensions.
func (m BoardModel) renderBoard(totalWidth, totalHeight int) string {
	numCols := len(m.columns)

	colContentHeight := totalHeight - 2
	if colContentHeight < 3 {
		colContentHeight = 3
	}

	colWidth := totalWidth / numCols
	if colWidth > maxColumnWidth {
		colWidth = maxColumnWidth
	}
	if colWidth < minColumnWidth {
		colWidth = minColumnWidth
	}

	innerWidth := colWidth - 4
	if innerWidth < 10 {
		innerWidth = 10
	}

	maxCardLines := colContentHeight
	columnViews := make([]string, 0, numCols)
	for i, col := range m.columns {
		isSelected := i == m.selectedColumn
		columnViews = append(columnViews, m.renderColumn(col, isSelected, colWidth, colContentHeight, innerWidth, maxCardLines))
	}

	return lipgloss.JoinHorizontal(lipgloss.Top, columnViews...)
}

// renderColumn renders a single column with proper sizing.
func (m BoardModel) renderColumn(col domain.Column, selected bool, width, innerHeight, innerWidth, maxCardLines int) string {
	items := m.visibleItems(col)
	total := m.ctrl.Board().Total(col)

	headerText := fmt.Sprintf("%s (%d/%d)", columnTitles[col], len(items), total)
	if col == domain.ColumnActioned {
		headerText = fmt.Sprintf("%s (%d/%d)", columnTitles[col], len(items), m.ctrl.Board().ActionQuota())
	}
	if len(headerText) > innerWidth {
		headerText = headerText[:innerWidth-1] + "…"
	}

	scrollOffset := m.scrollOffset[col]
	selectedIdx := m.selectedCard[col]

	cardSlots := maxCardLines - 1 // header line
	if cardSlots < 1 {
		cardSlots = 1
	}

	needUpIndicator := scrollOffset > 0
	availableSlots := cardSlots
	if needUpIndicator {
		availableSlots--
	}
	endIdx := scrollOffset + availableSlots
	if endIdx > len(items) {
		endIdx = len(items)
	}
	needDownIndicator := endIdx < len(items)
	if needDownIndicator {
		availableSlots--
		endIdx = scrollOffset + availableSlots
		if endIdx > len(items) {
			endIdx = len(items)
		}
	}

	var lines []string
	lines = append(lines, columnHeaderStyle.Render(headerText))

	if needUpIndicator {
		lines = append(lines, dimStyle.Render(fmt.Sprintf("↑ %d more", scrollOffset)))
	}

	for i := scrollOffset; i < endIdx; i++ {
		intent := items[i]
		cardText := m.formatCardText(intent, innerWidth-3)
		if selected && i == selectedIdx {
			lines = append(lines, selectedCardStyle.Render("> "+cardText))
		} else {
			lines = append(lines, cardStyle.Render("  "+cardText))
		}
	}

	remaining := len(items) - endIdx
	if needDownIndicator && remaining > 0 {
		lines = append(lines, dimStyle.Render(fmt.Sprintf("↓ %d more", remaining)))
	}

	if len(items) == 0 {
		lines = append(lines, dimStyle.Render("(empty)"))
	}

	content := strings.Join(lines, "\n")

	borderColor := lipgloss.Color("240")
	if selected {
		borderColor = lipgloss.Color("205")
	}

	colStyle := lipgloss.NewStyle().
		Width(width - 2).
		Height(innerHeight).
		Padding(0, 1).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(borderColor)

	return colStyle.Render(content)
}

// formatCardText formats an intent for display with max width, with a
// transient move badge when one is active.
func (m BoardModel) formatCardText(intent domain.Intent, maxWidth int) string {
	title := intent.Title
	if intent.Company != "" {
		title = intent.Company + ": " + title
	}

	badge := ""
	if update, ok := m.ctrl.Pending().Get(intent.ID); ok {
		switch update.State {
		case store.PendingInFlight:
			badge = pendingBadgeStyle.Render("…")
		case store.PendingSuccess:
			badge = successBadgeStyle.Render("✓")
		case store.PendingError:
			badge = errorBadgeStyle.Render("!")
		}
	}

	suffix := fmt.Sprintf("#%d", intent.ID)
	suffixLen := len(suffix)
	badgeLen := 0
	if badge != "" {
		badgeLen = 2
	}

	availableForTitle := maxWidth - suffixLen - badgeLen - 1
	if availableForTitle < 5 {
		availableForTitle = 5
	}
	if len(title) > availableForTitle {
		title = title[:availableForTitle-1] + "…"
	}

	padding := maxWidth - len(title) - suffixLen - badgeLen
	if padding < 1 {
		padding = 1
	}

	out := title + strings.Repeat(" ", padding) + dimStyle.Render(suffix)
	if badge != "" {
		out += " " + badge
	}
	return out
}

// visibleItems returns the preload-windowed items of a column.
func (m BoardModel) visibleItems(col domain.Column) []domain.Intent {
	return m.ctrl.VisibleItems(col)
}

func (m BoardModel) boardEmpty() bool {
	for _, col := range m.columns {
		if m.ctrl.Board().ColumnLen(col) > 0 {
			return false
		}
	}
	return true
}

// moveCardSelection moves the card selection up or down by delta.
func (m *BoardModel) moveCardSelection(delta int) {
	col := m.columns[m.selectedColumn]
	items := m.visibleItems(col)
	if len(items) == 0 {
		return
	}

	newIdx := m.selectedCard[col] + delta
	if newIdx < 0 {
		newIdx = 0
	}
	if newIdx >= len(items) {
		newIdx = len(items) - 1
	}

	m.selectedCard[col] = newIdx
	m.adjustScroll(col, len(items))
	m.emitScroll(col, len(items))
}

// jumpToCard jumps to a specific card index. Use -1 to jump to last card.
func (m *BoardModel) jumpToCard(idx int) {
	col := m.columns[m.selectedColumn]
	items := m.visibleItems(col)
	if len(items) == 0 {
		return
	}

	if idx < 0 || idx >= len(items) {
		idx = len(items) - 1
	}
	m.selectedCard[col] = idx
	m.adjustScroll(col, len(items))
	m.emitScroll(col, len(items))
}

// adjustScroll ensures the selected card is visible.
func (m *BoardModel) adjustScroll(col domain.Column, itemCount int) {
	selectedIdx := m.selectedCard[col]
	scrollOffset := m.scrollOffset[col]

	visible := m.visibleCardLines()
	if selectedIdx < scrollOffset {
		m.scrollOffset[col] = selectedIdx
	}
	if selectedIdx >= scrollOffset+visible {
		m.scrollOffset[col] = selectedIdx - visible + 1
	}
	if m.scrollOffset[col] > itemCount-1 {
		m.scrollOffset[col] = itemCount - 1
	}
	if m.scrollOffset[col] < 0 {
		m.scrollOffset[col] = 0
	}
}

// visibleCardLines estimates how many card lines fit in a column.
func (m BoardModel) visibleCardLines() int {
	lines := m.height - 7 // headers, borders, column header, indicators
	if lines < 3 {
		lines = 3
	}
	return lines
}

// emitScroll feeds the column's scroll position to the preloader, which
// decides whether to request the next page.
func (m *BoardModel) emitScroll(col domain.Column, itemCount int) {
	client := m.visibleCardLines()
	m.ctrl.HandleScroll(col, preload.ScrollMetrics{
		ScrollTop:    m.scrollOffset[col],
		ScrollHeight: itemCount,
		ClientHeight: client,
	})
}

// clampSelection keeps selection and scroll in range after data changes.
func (m *BoardModel) clampSelection() {
	for _, col := range m.columns {
		items := m.visibleItems(col)
		if m.selectedCard[col] >= len(items) {
			if len(items) > 0 {
				m.selectedCard[col] = len(items) - 1
			} else {
				m.selectedCard[col] = 0
			}
		}
		if m.scrollOffset[col] >= len(items) {
			m.scrollOffset[col] = 0
		}
	}
}

// selectedIntent returns the currently selected intent.
func (m BoardModel) selectedIntent() *domain.Intent {
	col := m.columns[m.selectedColumn]
	items := m.visibleItems(col)
	if len(items) == 0 {
		return nil
	}
	idx := m.selectedCard[col]
	if idx >= len(items) {
		idx = 0
	}
	intent := items[idx]
	return &intent
}

// startMove applies the optimistic half synchronously so the board reflects
// the move on this very frame, then resolves the remote half as a command.
func (m BoardModel) startMove(to domain.Column, reason string) tea.Cmd {
	intent := m.selectedIntent()
	if intent == nil {
		return nil
	}
	from := m.columns[m.selectedColumn]
	if from == to {
		return nil
	}

	if err := m.ctrl.BeginMove(intent.ID, from, to, reason); err != nil {
		return func() tea.Msg { return moveResolvedMsg{intentID: intent.ID, err: err} }
	}

	intentID := intent.ID
	return func() tea.Msg {
		err := m.ctrl.CompleteMove(m.ctx, intentID, from, to, reason)
		return moveResolvedMsg{intentID: intentID, err: err}
	}
}

// refresh reloads the categorization cache and all columns.
func (m BoardModel) refresh(force bool) tea.Cmd {
	return func() tea.Msg {
		err := m.ctrl.Refresh(m.ctx, force)
		return refreshDoneMsg{err: err}
	}
}

// listenPreload blocks on the controller's preload request channel.
func (m BoardModel) listenPreload() tea.Cmd {
	return func() tea.Msg {
		req, ok := <-m.ctrl.PreloadRequests()
		if !ok {
			return nil
		}
		return preloadRequestMsg{req: req}
	}
}

// processPreload serves one preload request in the background.
func (m BoardModel) processPreload(req preload.Request) tea.Cmd {
	return func() tea.Msg {
		err := m.ctrl.ProcessPreload(m.ctx, req)
		return preloadDoneMsg{err: err}
	}
}

func badgeTick() tea.Cmd {
	return tea.Tick(badgeTickRate, func(time.Time) tea.Msg {
		return badgeTickMsg{}
	})
}

// Message types
type (
	refreshDoneMsg struct{ err error }
	moveResolvedMsg struct {
		intentID int
		err      error
	}
	preloadRequestMsg struct{ req preload.Request }
	preloadDoneMsg    struct{ err error }
	badgeTickMsg      struct{}
	openDetailMsg     struct{ intent *domain.Intent }
	closeDetailMsg    struct{}
)
