package tui

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/mmcdole/culler/internal/domain"
)

// handleKeyMsg handles keyboard input
func (m Model) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// Handle state-specific keys
	switch m.State {
	case StateHelp:
		if key.Matches(msg, Keys.Deny, Keys.Help, Keys.Quit) {
			m.State = StateReviewing
		}
		return m, nil

	case StateConfirmFlush:
		switch {
		case key.Matches(msg, Keys.Confirm):
			m.State = StateReviewing
			return m, FlushCmd(m.ctl, m.current().Trash)
		case key.Matches(msg, Keys.Deny):
			m.State = StateReviewing
		}
		return m, nil
	}

	// Global keys
	switch {
	case key.Matches(msg, Keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, Keys.Help):
		m.State = StateHelp
		return m, nil

	case key.Matches(msg, Keys.SwitchTab):
		m.Active = nextKind(m.Active)
		m.Nudge.Dir = 0
		return m, ActivateCmd(m.ctl, m.Active)

	case key.Matches(msg, Keys.Rescan):
		return m, ActivateCmd(m.ctl, m.Active)

	case key.Matches(msg, Keys.Delete):
		return m.decide(true)

	case key.Matches(msg, Keys.Keep):
		return m.decide(false)

	case key.Matches(msg, Keys.Play):
		if !m.current().IsVideo() {
			return m, nil
		}
		return m, PlayCmd(m.ctl)

	case key.Matches(msg, Keys.EmptyBin):
		v := m.current()
		if v.Trash == 0 || v.Flushing {
			return m, nil
		}
		m.State = StateConfirmFlush
		return m, nil
	}

	return m, nil
}

// decide sends a decision for the card on screen. The item ID travels with
// it, so a key repeat that lands after the card changed is rejected by the
// engine instead of deciding the next card.
func (m Model) decide(del bool) (tea.Model, tea.Cmd) {
	v := m.current()
	if v.Current == nil || v.Flushing {
		return m, nil
	}

	m.Nudge.Seq++
	m.Nudge.Dir = 1
	if del {
		m.Nudge.Dir = -1
	}

	return m, tea.Batch(
		DecideCmd(m.ctl, v.Current.GetID(), del),
		NudgeCmd(m.Nudge.Seq, nudgeDuration),
	)
}

func nextKind(k domain.Kind) domain.Kind {
	kinds := domain.Kinds()
	for i, kind := range kinds {
		if kind == k {
			return kinds[(i+1)%len(kinds)]
		}
	}
	return kinds[0]
}
