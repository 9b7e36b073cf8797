package tui

import (
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/mmcdole/culler/internal/domain"
	"github.com/mmcdole/culler/internal/review"
	"github.com/mmcdole/culler/internal/tui/styles"
)

// ApplicationState represents the current state of the application
type ApplicationState int

const (
	StateReviewing ApplicationState = iota
	StateHelp
	StateConfirmFlush
)

// StatusDenied is shown while the library cannot be read
const StatusDenied = "Library access denied. Check the permissions of your library folders, then press r."

const (
	nudgeDuration  = 150 * time.Millisecond
	statusDuration = 3 * time.Second
)

// nudge is the short card offset that acknowledges a decision
type nudge struct {
	Dir int // -1 delete, +1 keep, 0 none
	Seq int
}

// Model is the main Bubble Tea model for the application
type Model struct {
	// Application state
	State ApplicationState
	Ready bool

	ctl       Controller
	observers map[domain.Kind]viewObserver

	// Latest snapshot per tab
	Views  map[domain.Kind]review.View
	Active domain.Kind
	Denied error

	// Dimensions
	Width  int
	Height int

	// UI components
	Spinner spinner.Model
	Help    help.Model

	// UI state
	StatusMsg   string
	StatusIsErr bool
	statusSeq   int
	Nudge       nudge
}

// NewModel creates a model showing the initial tab. It subscribes to every
// engine up front so no snapshot is missed.
func NewModel(ctl Controller, initial domain.Kind) Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = styles.SpinnerStyle

	m := Model{
		State:     StateReviewing,
		ctl:       ctl,
		observers: make(map[domain.Kind]viewObserver),
		Views:     make(map[domain.Kind]review.View),
		Active:    initial,
		Spinner:   sp,
		Help:      help.New(),
	}
	for _, kind := range domain.Kinds() {
		m.observers[kind] = newViewObserver(kind, ctl.Subscribe(kind))
		m.Views[kind] = review.View{Kind: kind, Status: review.StatusWaiting}
	}
	return m
}

// Init initializes the application
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{
		ActivateCmd(m.ctl, m.Active),
		m.Spinner.Tick,
	}
	for _, kind := range domain.Kinds() {
		cmds = append(cmds, m.observers[kind].Wait())
	}
	return tea.Batch(cmds...)
}

// Update handles all messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.Width = msg.Width
		m.Height = msg.Height
		m.Help.Width = msg.Width
		m.Ready = true
		return m, nil

	case tea.KeyMsg:
		return m.handleKeyMsg(msg)

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.Spinner, cmd = m.Spinner.Update(msg)
		return m, cmd

	case ViewUpdatedMsg:
		m.Views[msg.Kind] = msg.View
		return m, m.observers[msg.Kind].Wait()

	case ActivatedMsg:
		if msg.Kind != m.Active {
			return m, nil
		}
		m.Denied = msg.Denied
		if msg.Err != nil && m.Denied == nil {
			cmd := m.setStatus(fmt.Sprintf("Scan failed: %v", msg.Err), true)
			return m, cmd
		}
		return m, nil

	case DecidedMsg:
		cmd := m.handleDecided(msg)
		return m, cmd

	case FlushedMsg:
		if msg.Err != nil {
			cmd := m.setStatus(fmt.Sprintf("Could not empty trash: %v (press x to retry)", msg.Err), true)
			return m, cmd
		}
		cmd := m.setStatus(fmt.Sprintf("Deleted %d %s", msg.Count, noun(m.Active, msg.Count)), false)
		return m, cmd

	case PlayedMsg:
		if msg.Err != nil {
			cmd := m.setStatus(fmt.Sprintf("Playback failed: %v", msg.Err), true)
			return m, cmd
		}
		return m, nil

	case NudgeDoneMsg:
		if msg.Seq == m.Nudge.Seq {
			m.Nudge.Dir = 0
		}
		return m, nil

	case ClearStatusMsg:
		if msg.Seq == m.statusSeq {
			m.StatusMsg = ""
			m.StatusIsErr = false
		}
		return m, nil
	}

	return m, nil
}

func (m *Model) handleDecided(msg DecidedMsg) tea.Cmd {
	switch {
	case msg.Err == nil:
		return nil
	case errors.Is(msg.Err, domain.ErrNoCurrentItem), errors.Is(msg.Err, domain.ErrStaleDecision):
		// Repeated key for a card that already moved on
		return nil
	case errors.Is(msg.Err, domain.ErrFlushInProgress):
		return m.setStatus("Wait for the trash to finish emptying", false)
	default:
		return m.setStatus(fmt.Sprintf("Could not save decision: %v", msg.Err), true)
	}
}

// setStatus shows a message and schedules its removal
func (m *Model) setStatus(text string, isErr bool) tea.Cmd {
	m.statusSeq++
	m.StatusMsg = text
	m.StatusIsErr = isErr
	return ClearStatusCmd(m.statusSeq, statusDuration)
}

// current returns the active tab's snapshot
func (m Model) current() review.View {
	return m.Views[m.Active]
}

func noun(kind domain.Kind, n int) string {
	if n == 1 {
		return kind.String()
	}
	return kind.Plural()
}

// View renders the UI
func (m Model) View() string {
	if !m.Ready {
		return "Initializing..."
	}

	switch m.State {
	case StateHelp:
		return m.renderModal(m.renderHelp())
	case StateConfirmFlush:
		return m.renderModal(m.renderConfirmFlush())
	}
	return m.renderScreen()
}
