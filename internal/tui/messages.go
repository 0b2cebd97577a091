// Package tui provides Bubble Tea models for the interactive dashboard.
package tui

import "github.com/bounteer/intentdash/internal/domain"

// SpaceSelectedMsg is emitted when the user selects a space.
type SpaceSelectedMsg struct {
	Space domain.Space
}

// ErrorMsg is emitted when an error occurs.
type ErrorMsg struct {
	Err error
}

// QuitMsg is emitted when the user requests to quit.
type QuitMsg struct{}
