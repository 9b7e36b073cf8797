package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/mmcdole/culler/internal/domain"
	"github.com/mmcdole/culler/internal/review"
)

// viewObserver adapts an engine subscription to Bubble Tea. The engine keeps
// only the newest snapshot in the channel, so a slow frame never queues up
// stale views.
type viewObserver struct {
	kind domain.Kind
	ch   <-chan review.View
}

func newViewObserver(kind domain.Kind, ch <-chan review.View) viewObserver {
	return viewObserver{kind: kind, ch: ch}
}

// Wait returns a command that delivers the next snapshot. Update re-issues
// it after each ViewUpdatedMsg.
func (o viewObserver) Wait() tea.Cmd {
	return func() tea.Msg {
		v, ok := <-o.ch
		if !ok {
			return nil
		}
		return ViewUpdatedMsg{Kind: o.kind, View: v}
	}
}
