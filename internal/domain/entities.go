package domain

import (
	"fmt"
	"strings"
	"time"
)

// Kind partitions the library into photos and videos
type Kind int

const (
	KindPhoto Kind = iota
	KindVideo
)

// String returns the canonical lowercase name of the kind
func (k Kind) String() string {
	switch k {
	case KindPhoto:
		return "photo"
	case KindVideo:
		return "video"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Plural returns the display noun for a collection of this kind
func (k Kind) Plural() string {
	if k == KindVideo {
		return "videos"
	}
	return "photos"
}

// Kinds lists every kind in tab order
func Kinds() []Kind {
	return []Kind{KindPhoto, KindVideo}
}

// ParseKind converts a user-supplied string to a Kind
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "photo", "photos", "image", "images":
		return KindPhoto, nil
	case "video", "videos":
		return KindVideo, nil
	default:
		return 0, fmt.Errorf("unknown media kind %q (want photo or video)", s)
	}
}

// MediaItem is a reviewable item in the library.
// It is a closed variant: the only implementations are Photo and Video.
type MediaItem interface {
	GetID() string
	GetKind() Kind
	GetCreatedAt() time.Time
	GetPath() string
	GetSize() int64

	mediaItem()
}

// Photo is a still image
type Photo struct {
	ID        string    // Stable identifier (cleaned absolute path)
	Path      string    // Absolute path on disk
	Size      int64     // File size in bytes
	CreatedAt time.Time // Used only for enumeration order
}

func (p *Photo) GetID() string           { return p.ID }
func (p *Photo) GetKind() Kind           { return KindPhoto }
func (p *Photo) GetCreatedAt() time.Time { return p.CreatedAt }
func (p *Photo) GetPath() string         { return p.Path }
func (p *Photo) GetSize() int64          { return p.Size }
func (*Photo) mediaItem()                {}

// Video is a playable clip. Only videos can have a stream attached.
type Video struct {
	ID        string
	Path      string
	Size      int64
	CreatedAt time.Time
}

func (v *Video) GetID() string           { return v.ID }
func (v *Video) GetKind() Kind           { return KindVideo }
func (v *Video) GetCreatedAt() time.Time { return v.CreatedAt }
func (v *Video) GetPath() string         { return v.Path }
func (v *Video) GetSize() int64          { return v.Size }
func (*Video) mediaItem()                {}

// Quality is the fidelity tier of a rendition
type Quality int

const (
	QualityPreview Quality = iota // Speculative, requested ahead of need
	QualityFinal                  // Requested for the current item
)

func (q Quality) String() string {
	if q == QualityFinal {
		return "final"
	}
	return "preview"
}

// Rendition is a display-ready payload for one item at one quality tier
type Rendition struct {
	ItemID  string
	Quality Quality
	Width   int    // Source pixel width (0 if unknown)
	Height  int    // Source pixel height (0 if unknown)
	Art     string // Terminal-ready rendering
	Caption string // Short description shown under the art
}

// StreamHandle is a playable stream attached to a video
type StreamHandle interface {
	// Locator returns the path or URL handed to a player
	Locator() string
	Close() error
}

// IDSet is an unordered set of item identifiers
type IDSet map[string]struct{}

// NewIDSet builds a set from identifiers, ignoring empty strings
func NewIDSet(ids ...string) IDSet {
	s := make(IDSet, len(ids))
	for _, id := range ids {
		if id != "" {
			s[id] = struct{}{}
		}
	}
	return s
}

func (s IDSet) Has(id string) bool {
	_, ok := s[id]
	return ok
}

func (s IDSet) Add(id string) {
	s[id] = struct{}{}
}

// Slice returns the members in no particular order
func (s IDSet) Slice() []string {
	out := make([]string, 0, len(s))
	for id := range s {
		out = append(out, id)
	}
	return out
}

// Clone returns an independent copy
func (s IDSet) Clone() IDSet {
	out := make(IDSet, len(s))
	for id := range s {
		out[id] = struct{}{}
	}
	return out
}

// FormatSize renders a byte count for display
func FormatSize(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}
