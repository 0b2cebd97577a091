package tui

import (
	"fmt"
	"io"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/bounteer/intentdash/internal/domain"
)

// spaceItem represents a workspace in the list.
type spaceItem struct {
	space domain.Space
}

func (i spaceItem) FilterValue() string { return i.space.Name }

// spaceItemDelegate handles rendering of space items.
type spaceItemDelegate struct{}

func (d spaceItemDelegate) Height() int                             { return 1 }
func (d spaceItemDelegate) Spacing() int                            { return 0 }
func (d spaceItemDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd { return nil }
func (d spaceItemDelegate) Render(w io.Writer, m list.Model, index int, listItem list.Item) {
	i, ok := listItem.(spaceItem)
	if !ok {
		return
	}

	str := fmt.Sprintf("%s (#%d)", i.space.Name, i.space.ID)

	fn := pickerItemStyle.Render
	if index == m.Index() {
		fn = func(s ...string) string {
			return pickerSelectedStyle.Render("> " + s[0])
		}
	}

	fmt.Fprint(w, fn(str))
}

// SpacePickerModel lets the user select from available spaces.
type SpacePickerModel struct {
	list   list.Model
	spaces []domain.Space
	err    error
}

// NewSpacePickerModel creates a new space picker with the given spaces.
func NewSpacePickerModel(spaces []domain.Space) SpacePickerModel {
	items := make([]list.Item, len(spaces))
	for i, space := range spaces {
		items[i] = spaceItem{space: space}
	}

	// Start with a reasonable default - will be resized by WindowSizeMsg
	l := list.New(items, spaceItemDelegate{}, 80, 20)
	l.Title = "Select Space"
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(true)
	l.Styles.Title = pickerTitleStyle
	l.Styles.PaginationStyle = pickerPaginationStyle
	l.Styles.HelpStyle = pickerHelpStyle

	return SpacePickerModel{
		list:   l,
		spaces: spaces,
	}
}

// Init initializes the model.
func (m SpacePickerModel) Init() tea.Cmd {
	// Request window size on init to properly size the list
	return tea.WindowSize()
}

// Update handles messages.
func (m SpacePickerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "enter":
			if item, ok := m.list.SelectedItem().(spaceItem); ok {
				return m, func() tea.Msg {
					return SpaceSelectedMsg{Space: item.space}
				}
			}
		case "q", "esc":
			if !m.list.SettingFilter() {
				return m, func() tea.Msg {
					return QuitMsg{}
				}
			}
		}

	case tea.WindowSizeMsg:
		m.list.SetWidth(msg.Width - 2)
		m.list.SetHeight(msg.Height - 2)
		return m, nil

	case ErrorMsg:
		m.err = msg.Err
		return m, nil
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

// View renders the model.
func (m SpacePickerModel) View() string {
	if m.err != nil {
		return errorStyle.Render(fmt.Sprintf("Error: %v", m.err))
	}
	return m.list.View()
}
