package tui

import (
	"context"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/bounteer/intentdash/internal/dashboard"
	"github.com/bounteer/intentdash/internal/domain"
)

// Screen represents the current screen in the app.
type Screen int

const (
	ScreenLoading Screen = iota
	ScreenSpacePicker
	ScreenBoard
	ScreenDetail
)

// SpaceLister fetches the selectable workspaces.
type SpaceLister interface {
	ListSpaces(ctx context.Context) ([]domain.Space, error)
}

type spacesLoadedMsg struct {
	spaces []domain.Space
}

// AppModel is the root model that routes between screens.
type AppModel struct {
	screen Screen
	ctx    context.Context
	ctrl   *dashboard.Controller
	remote SpaceLister

	spinner     spinner.Model
	spacePicker SpacePickerModel
	board       BoardModel
	detail      DetailModel

	width  int
	height int
	err    error
}

// NewAppModel creates the root model. When space is non-zero the picker is
// skipped and the board opens directly on that space.
func NewAppModel(ctx context.Context, ctrl *dashboard.Controller, remote SpaceLister, space int) AppModel {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	m := AppModel{
		screen:  ScreenLoading,
		ctx:     ctx,
		ctrl:    ctrl,
		remote:  remote,
		spinner: sp,
	}
	if space > 0 {
		ctrl.SetSpace(space)
		m.screen = ScreenBoard
		m.board = NewBoardModel(ctrl, ctx)
	}
	return m
}

// Init starts either the board or the space fetch.
func (m AppModel) Init() tea.Cmd {
	if m.screen == ScreenBoard {
		return m.board.Init()
	}
	return tea.Batch(m.spinner.Tick, m.fetchSpaces())
}

// Update routes messages to the active screen.
func (m AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		// Fall through to the active screen so it resizes too.

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}

	case spacesLoadedMsg:
		if len(msg.spaces) == 1 {
			// Only one workspace: no point in a picker.
			m.ctrl.SetSpace(msg.spaces[0].ID)
			m.screen = ScreenBoard
			m.board = NewBoardModel(m.ctrl, m.ctx)
			return m, m.board.Init()
		}
		m.screen = ScreenSpacePicker
		m.spacePicker = NewSpacePickerModel(msg.spaces)
		return m, m.spacePicker.Init()

	case SpaceSelectedMsg:
		m.ctrl.SetSpace(msg.Space.ID)
		m.screen = ScreenBoard
		m.board = NewBoardModel(m.ctrl, m.ctx)
		return m, m.board.Init()

	case openDetailMsg:
		m.screen = ScreenDetail
		m.detail = NewDetailModel(*msg.intent)
		return m, m.detail.Init()

	case closeDetailMsg:
		m.screen = ScreenBoard
		return m, tea.WindowSize()

	case ErrorMsg:
		m.err = msg.Err
		return m, nil

	case QuitMsg:
		return m, tea.Quit
	}

	switch m.screen {
	case ScreenLoading:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case ScreenSpacePicker:
		model, cmd := m.spacePicker.Update(msg)
		m.spacePicker = model.(SpacePickerModel)
		return m, cmd
	case ScreenBoard:
		model, cmd := m.board.Update(msg)
		m.board = model.(BoardModel)
		return m, cmd
	case ScreenDetail:
		model, cmd := m.detail.Update(msg)
		m.detail = model.(DetailModel)
		return m, cmd
	}

	return m, nil
}

// View renders the active screen.
func (m AppModel) View() string {
	if m.err != nil {
		return errorStyle.Render("Error: "+m.err.Error()) + "\n\nPress ctrl+c to quit."
	}

	switch m.screen {
	case ScreenLoading:
		width, height := m.width, m.height
		if width == 0 {
			width = 80
		}
		if height == 0 {
			height = 24
		}
		return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center,
			m.spinner.View()+" Loading spaces...")
	case ScreenSpacePicker:
		return m.spacePicker.View()
	case ScreenBoard:
		return m.board.View()
	case ScreenDetail:
		return m.detail.View()
	}
	return ""
}

func (m AppModel) fetchSpaces() tea.Cmd {
	return func() tea.Msg {
		spaces, err := m.remote.ListSpaces(m.ctx)
		if err != nil {
			return ErrorMsg{Err: err}
		}
		return spacesLoadedMsg{spaces: spaces}
	}
}
