package main

import (
	"errors"
	"fmt"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
)

func TestExitError(t *testing.T) {
	listenErr := errors.New("metrics server: listen tcp :9090: address already in use")
	tuiErr := errors.New("could not open a new TTY")
	killed := fmt.Errorf("%w: context canceled", tea.ErrProgramKilled)

	tests := []struct {
		name   string
		runErr error
		bgErr  error
		want   error
	}{
		{"clean exit", nil, nil, nil},
		{"killed by background failure", killed, listenErr, listenErr},
		{"background failure after quit", nil, listenErr, listenErr},
		{"tui failure wins", tuiErr, listenErr, tuiErr},
		{"tui failure alone", tuiErr, nil, tuiErr},
		{"killed without a cause", killed, nil, killed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := exitError(tt.runErr, tt.bgErr); got != tt.want {
				t.Errorf("exitError(%v, %v) = %v, want %v", tt.runErr, tt.bgErr, got, tt.want)
			}
		})
	}
}
