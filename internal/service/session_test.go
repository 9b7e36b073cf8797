package service

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/mmcdole/culler/internal/domain"
	"github.com/mmcdole/culler/internal/review"
)

func runSession(t *testing.T, s *Session) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()
	t.Cleanup(func() {
		cancel()
		if err := <-done; err != nil {
			t.Errorf("Run: %v", err)
		}
	})
}

func TestSession_ActivateStartsKind(t *testing.T) {
	s := NewSession(library(), newFakeStore(), SessionOptions{Logger: discard()})
	runSession(t, s)
	ctx := context.Background()

	if s.ID == "" {
		t.Error("session has no ID")
	}
	if err := s.Activate(ctx, domain.KindVideo); err != nil {
		t.Fatalf("Activate: %v", err)
	}
	if s.Active() != domain.KindVideo {
		t.Errorf("Active = %v, want video", s.Active())
	}

	v, err := s.Engine(domain.KindVideo).View(ctx)
	if err != nil {
		t.Fatalf("View: %v", err)
	}
	if v.State != review.StateReady || v.Current.GetID() != "c.mp4" {
		t.Errorf("video view = %+v", v)
	}

	photos, _ := s.Engine(domain.KindPhoto).View(ctx)
	if photos.State != review.StateUninitialized {
		t.Errorf("photo engine started without activation: %v", photos.State)
	}
}

func TestSession_AccessDenied(t *testing.T) {
	denied := fmt.Errorf("%w: /lib: EACCES", domain.ErrPermissionDenied)
	s := NewSession(library(), newFakeStore(), SessionOptions{
		Logger: discard(),
		Access: func() error { return denied },
	})
	runSession(t, s)
	ctx := context.Background()

	err := s.Activate(ctx, domain.KindPhoto)
	if !errors.Is(err, domain.ErrPermissionDenied) {
		t.Fatalf("err = %v, want ErrPermissionDenied", err)
	}
	if s.Denied() == nil {
		t.Error("Denied() = nil after a refused activation")
	}

	v, _ := s.Engine(domain.KindPhoto).View(ctx)
	if v.State != review.StateUninitialized || v.Status != review.StatusWaiting {
		t.Errorf("engine left waiting state: %+v", v)
	}
}

func TestSession_MissingLibraryIsNotDenied(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "gone")
	s := NewSession(library(), newFakeStore(), SessionOptions{
		Logger: discard(),
		Access: func() error { return CheckAccess([]string{missing}) },
	})
	runSession(t, s)
	ctx := context.Background()

	err := s.Activate(ctx, domain.KindPhoto)
	if err == nil {
		t.Fatal("Activate succeeded for a missing library folder")
	}
	if errors.Is(err, domain.ErrPermissionDenied) {
		t.Errorf("err = %v, a missing folder is not a permission failure", err)
	}
	if !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("err = %v, want it to wrap fs.ErrNotExist", err)
	}
	if s.Denied() != nil {
		t.Errorf("Denied() = %v, want nil", s.Denied())
	}
}

func TestSession_DecideAndFlushUseActiveKind(t *testing.T) {
	store := newFakeStore()
	s := NewSession(library(), store, SessionOptions{Logger: discard()})
	runSession(t, s)
	ctx := context.Background()

	if err := s.Activate(ctx, domain.KindPhoto); err != nil {
		t.Fatalf("Activate: %v", err)
	}
	v, _ := s.Engine(domain.KindPhoto).View(ctx)
	first := v.Current.GetID()

	if err := s.Decide(ctx, first, true); err != nil {
		t.Fatalf("Decide: %v", err)
	}
	if !store.sets[domain.KindPhoto].Has(first) {
		t.Errorf("%s not recorded as seen", first)
	}
	if err := s.Flush(ctx); err != nil {
		t.Fatalf("Flush: %v", err)
	}
	v, _ = s.Engine(domain.KindPhoto).View(ctx)
	if v.Trash != 0 {
		t.Errorf("Trash = %d after flush", v.Trash)
	}
}

func TestSession_Play(t *testing.T) {
	p := &fakePlayer{}
	s := NewSession(library(), newFakeStore(), SessionOptions{Logger: discard(), Player: p})
	runSession(t, s)
	ctx := context.Background()

	if err := s.Activate(ctx, domain.KindPhoto); err != nil {
		t.Fatalf("Activate: %v", err)
	}
	if err := s.Play(ctx); !errors.Is(err, domain.ErrNotVideo) {
		t.Errorf("Play on photo: err = %v, want ErrNotVideo", err)
	}

	if err := s.Activate(ctx, domain.KindVideo); err != nil {
		t.Fatalf("Activate: %v", err)
	}
	if err := s.Play(ctx); err != nil {
		t.Fatalf("Play: %v", err)
	}
	if len(p.played) != 1 || p.played[0] != "/lib/c.mp4" {
		t.Errorf("played = %v", p.played)
	}
}

func TestLibraryService_StatsAndReset(t *testing.T) {
	store := newFakeStore()
	store.sets[domain.KindPhoto] = domain.NewIDSet("a.jpg", "deleted-long-ago.jpg")
	svc := NewLibraryService(library(), store, discard())

	stats, err := svc.Stats(context.Background())
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if len(stats) != 2 {
		t.Fatalf("got %d rows, want 2", len(stats))
	}

	photo := stats[0]
	want := KindStats{Kind: domain.KindPhoto, Total: 2, Seen: 1, Unseen: 1, Stale: 1, Bytes: 20}
	if photo != want {
		t.Errorf("photo stats = %+v, want %+v", photo, want)
	}

	if err := svc.Reset(domain.KindPhoto); err != nil {
		t.Fatalf("Reset: %v", err)
	}
	stats, _ = svc.Stats(context.Background(), domain.KindPhoto)
	if stats[0].Seen != 0 || stats[0].Unseen != 2 {
		t.Errorf("after reset = %+v", stats[0])
	}
}

func TestCheckAccess(t *testing.T) {
	dir := t.TempDir()
	if err := CheckAccess([]string{dir}); err != nil {
		t.Errorf("CheckAccess(tempdir) = %v", err)
	}

	missing := filepath.Join(dir, "missing")
	if err := CheckAccess([]string{missing}); err == nil {
		t.Error("expected error for a missing root")
	}

	if os.Geteuid() == 0 {
		t.Skip("root bypasses permission bits")
	}
	locked := filepath.Join(dir, "locked")
	if err := os.Mkdir(locked, 0o500); err != nil {
		t.Fatal(err)
	}
	if err := CheckAccess([]string{locked}); !errors.Is(err, domain.ErrPermissionDenied) {
		t.Errorf("CheckAccess(read-only) = %v, want ErrPermissionDenied", err)
	}
}
