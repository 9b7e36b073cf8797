package tui

import (
	"github.com/mmcdole/culler/internal/domain"
	"github.com/mmcdole/culler/internal/review"
)

// Message types for the TUI

// ViewUpdatedMsg carries a new engine snapshot
type ViewUpdatedMsg struct {
	Kind domain.Kind
	View review.View
}

// ActivatedMsg signals that a tab finished scanning
type ActivatedMsg struct {
	Kind   domain.Kind
	Err    error
	Denied error // Permission failure, if the scan was refused
}

// DecidedMsg signals that a decision was recorded
type DecidedMsg struct {
	ItemID string
	Delete bool
	Err    error
}

// FlushedMsg signals that the trash bin commit finished
type FlushedMsg struct {
	Count int
	Err   error
}

// PlayedMsg signals that the player was launched
type PlayedMsg struct {
	Err error
}

// NudgeDoneMsg ends the decision animation started at the given sequence
type NudgeDoneMsg struct {
	Seq int
}

// ClearStatusMsg clears the status bar message
type ClearStatusMsg struct {
	Seq int
}
