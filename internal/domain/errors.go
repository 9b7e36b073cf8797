package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors for review operations
var (
	// ErrNoCurrentItem indicates a decision was made with nothing on screen
	ErrNoCurrentItem = errors.New("no current item")

	// ErrStaleDecision indicates the decision targets an item that is no longer current
	ErrStaleDecision = errors.New("item is no longer current")

	// ErrFlushInProgress indicates the trash bin is being committed
	ErrFlushInProgress = errors.New("trash flush in progress")

	// ErrNotVideo indicates a video-only operation on a photo
	ErrNotVideo = errors.New("current item is not a video")

	// ErrNotRunning indicates the engine loop has stopped
	ErrNotRunning = errors.New("review engine is not running")

	// ErrPermissionDenied indicates the library cannot be read or modified
	ErrPermissionDenied = errors.New("permission denied")

	// ErrItemNotFound indicates the requested media item does not exist
	ErrItemNotFound = errors.New("media item not found")
)

// FlushError reports a failed trash commit. The bin is left untouched and
// the flush may be retried.
type FlushError struct {
	Count int
	Err   error
}

func (e *FlushError) Error() string {
	return fmt.Sprintf("emptying trash (%d items): %v", e.Count, e.Err)
}

func (e *FlushError) Unwrap() error {
	return e.Err
}
