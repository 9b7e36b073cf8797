package store

import (
	"path/filepath"
	"testing"

	"github.com/mmcdole/culler/internal/domain"
)

func TestSeenStore_RoundTripAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "culler.db")

	s, err := NewSeenStore(path)
	if err != nil {
		t.Fatalf("NewSeenStore: %v", err)
	}
	if err := s.Save(domain.KindPhoto, domain.NewIDSet("a.jpg", "b.jpg")); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	s, err = NewSeenStore(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer s.Close()

	got, err := s.Load(domain.KindPhoto)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(got) != 2 || !got.Has("a.jpg") || !got.Has("b.jpg") {
		t.Errorf("Load() = %v, want {a.jpg b.jpg}", got.Slice())
	}
}

func TestSeenStore_KindsArePartitioned(t *testing.T) {
	s, err := NewSeenStore(filepath.Join(t.TempDir(), "culler.db"))
	if err != nil {
		t.Fatalf("NewSeenStore: %v", err)
	}
	defer s.Close()

	if err := s.Save(domain.KindVideo, domain.NewIDSet("clip.mp4")); err != nil {
		t.Fatalf("Save: %v", err)
	}

	photos, err := s.Load(domain.KindPhoto)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(photos) != 0 {
		t.Errorf("photo set should be empty, got %v", photos.Slice())
	}
}

func TestSeenStore_SaveOverwrites(t *testing.T) {
	s, err := NewSeenStore("")
	if err != nil {
		t.Fatalf("NewSeenStore: %v", err)
	}

	s.Save(domain.KindPhoto, domain.NewIDSet("a", "b", "c"))
	s.Save(domain.KindPhoto, domain.NewIDSet("z"))

	got, _ := s.Load(domain.KindPhoto)
	if len(got) != 1 || !got.Has("z") {
		t.Errorf("Load() = %v, want {z}", got.Slice())
	}
}

func TestSeenStore_Reset(t *testing.T) {
	s, err := NewSeenStore(filepath.Join(t.TempDir(), "culler.db"))
	if err != nil {
		t.Fatalf("NewSeenStore: %v", err)
	}
	defer s.Close()

	s.Save(domain.KindPhoto, domain.NewIDSet("a"))
	if err := s.Reset(domain.KindPhoto); err != nil {
		t.Fatalf("Reset: %v", err)
	}

	got, err := s.Load(domain.KindPhoto)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("expected empty set after reset, got %v", got.Slice())
	}
}
