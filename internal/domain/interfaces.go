package domain

import "context"

// MediaStore is the device media library
type MediaStore interface {
	// Enumerate returns every item of a kind in the store's natural order
	Enumerate(ctx context.Context, kind Kind) ([]MediaItem, error)

	// LoadRendition renders an item at the requested quality.
	// A nil rendition with a nil error also means "no data".
	LoadRendition(ctx context.Context, item MediaItem, quality Quality) (*Rendition, error)

	// LoadVideoStream opens a playable stream. Only called on explicit user request.
	LoadVideoStream(ctx context.Context, video *Video) (StreamHandle, error)

	// BatchDelete irreversibly removes items. It either removes all of them
	// or none.
	BatchDelete(ctx context.Context, items []MediaItem) error
}

// SeenSetStore persists one seen-identifier set per kind.
// Saves overwrite the whole set; last write wins.
type SeenSetStore interface {
	Load(kind Kind) (IDSet, error)
	Save(kind Kind, ids IDSet) error
}
