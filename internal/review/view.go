package review

import "github.com/mmcdole/culler/internal/domain"

// State is the engine's lifecycle state
type State int

const (
	StateUninitialized State = iota
	StateLoading
	StateReady // An item is current
	StateEmpty // Nothing left to review
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateLoading:
		return "loading"
	case StateReady:
		return "ready"
	case StateEmpty:
		return "empty"
	default:
		return "unknown"
	}
}

// Status messages shown when there is no current item
const (
	StatusWaiting  = "Waiting for permission..."
	StatusScanning = "Scanning library..."
	StatusFinished = "You've finished reviewing!"
)

// View is an immutable snapshot of the engine for the UI
type View struct {
	Kind     domain.Kind
	State    State
	Flushing bool

	// Current is nil unless State is StateReady
	Current domain.MediaItem
	// Rendition is nil while the current item is loading
	Rendition *domain.Rendition
	// Stream is non-nil only for a video whose stream has been opened
	Stream domain.StreamHandle

	Remaining int // Items still queued after the current one
	Trash     int // Items waiting in the trash bin
	Seen      int // Items reviewed so far, all sessions

	Status string // Human-readable state description
	Err    error  // Last user-visible failure (flush), cleared on success
}

// Loading reports whether an item is current but not yet renderable
func (v View) Loading() bool {
	return v.Current != nil && v.Rendition == nil
}

// IsVideo reports whether the current item is a video
func (v View) IsVideo() bool {
	_, ok := v.Current.(*domain.Video)
	return ok
}
