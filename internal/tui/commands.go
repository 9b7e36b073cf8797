package tui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/mmcdole/culler/internal/domain"
	"github.com/mmcdole/culler/internal/review"
)

// Controller is the session surface the TUI drives
type Controller interface {
	Activate(ctx context.Context, kind domain.Kind) error
	Decide(ctx context.Context, id string, del bool) error
	Flush(ctx context.Context) error
	Play(ctx context.Context) error
	Subscribe(kind domain.Kind) <-chan review.View

	// Denied returns the last permission failure, nil when access is granted
	Denied() error
}

// Command factories for async operations

// ActivateCmd switches tabs and rescans the library
func ActivateCmd(ctl Controller, kind domain.Kind) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute) // large libraries
		defer cancel()
		err := ctl.Activate(ctx, kind)
		return ActivatedMsg{Kind: kind, Err: err, Denied: ctl.Denied()}
	}
}

// DecideCmd records a delete/keep decision for itemID
func DecideCmd(ctl Controller, itemID string, del bool) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return DecidedMsg{ItemID: itemID, Delete: del, Err: ctl.Decide(ctx, itemID, del)}
	}
}

// FlushCmd empties the trash bin of the active tab
func FlushCmd(ctl Controller, count int) tea.Cmd {
	return func() tea.Msg {
		return FlushedMsg{Count: count, Err: ctl.Flush(context.Background())}
	}
}

// PlayCmd opens the current video in the external player
func PlayCmd(ctl Controller) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return PlayedMsg{Err: ctl.Play(ctx)}
	}
}

// NudgeCmd ends the decision animation after d
func NudgeCmd(seq int, d time.Duration) tea.Cmd {
	return tea.Tick(d, func(time.Time) tea.Msg {
		return NudgeDoneMsg{Seq: seq}
	})
}

// ClearStatusCmd clears the status message after d
func ClearStatusCmd(seq int, d time.Duration) tea.Cmd {
	return tea.Tick(d, func(time.Time) tea.Msg {
		return ClearStatusMsg{Seq: seq}
	})
}
