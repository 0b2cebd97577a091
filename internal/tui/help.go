package tui

import "github.com/charmbracelet/bubbles/help"

// HelpModel is the expanded key binding overlay shown over the board.
type HelpModel struct {
	help   help.Model
	keymap KeyMap
}

// NewHelpModel creates the overlay with all binding groups expanded.
func NewHelpModel(keymap KeyMap) HelpModel {
	h := help.New()
	h.ShowAll = true

	return HelpModel{
		help:   h,
		keymap: keymap,
	}
}

// View renders the overlay at the given terminal width. The inner help view
// is narrowed by the frame's border and padding.
func (m HelpModel) View(width int) string {
	m.help.Width = width - 8
	return helpOverlayStyle.Render(m.help.View(m.keymap))
}
