package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/mmcdole/culler/internal/domain"
	"github.com/mmcdole/culler/internal/review"
)

// SessionOptions configures a Session
type SessionOptions struct {
	PreloadCount int
	Metrics      *review.Metrics
	Access       func() error // Permission check run before every scan; nil allows all
	Player       player
	Logger       *slog.Logger
}

// Session is the controller for one run of the application: an engine per
// kind, the active tab and the permission state.
type Session struct {
	ID string

	engines  map[domain.Kind]*review.Engine
	playback *PlaybackService
	access   func() error
	logger   *slog.Logger

	mu     sync.Mutex
	active domain.Kind
	denied error
}

// NewSession creates engines for every kind over the given stores
func NewSession(media domain.MediaStore, seen domain.SeenSetStore, opts SessionOptions) *Session {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Access == nil {
		opts.Access = func() error { return nil }
	}

	id := uuid.NewString()
	logger := opts.Logger.With("session", id)

	engines := make(map[domain.Kind]*review.Engine, len(domain.Kinds()))
	for _, kind := range domain.Kinds() {
		engines[kind] = review.New(kind, media, seen, review.Options{
			PreloadCount: opts.PreloadCount,
			Logger:       logger,
			Metrics:      opts.Metrics,
		})
	}

	var playback *PlaybackService
	if opts.Player != nil {
		playback = NewPlaybackService(opts.Player, logger)
	}

	return &Session{
		ID:       id,
		engines:  engines,
		playback: playback,
		access:   opts.Access,
		logger:   logger,
	}
}

// Run drives every engine until ctx is canceled
func (s *Session) Run(ctx context.Context) error {
	g, gCtx := errgroup.WithContext(ctx)
	for _, engine := range s.engines {
		g.Go(func() error {
			return engine.Run(gCtx)
		})
	}

	err := g.Wait()
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// Engine returns the engine for kind
func (s *Session) Engine(kind domain.Kind) *review.Engine {
	return s.engines[kind]
}

// Subscribe returns the latest-view channel of kind's engine
func (s *Session) Subscribe(kind domain.Kind) <-chan review.View {
	return s.engines[kind].Subscribe()
}

// Active returns the kind currently on screen
func (s *Session) Active() domain.Kind {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active
}

// Denied returns the last permission failure, nil when access is granted
func (s *Session) Denied() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.denied
}

func (s *Session) setDenied(err error) {
	s.mu.Lock()
	s.denied = err
	s.mu.Unlock()
}

// Activate switches to kind and rescans it. Every activation recomputes the
// queue from the stores, so items added since the last visit show up.
func (s *Session) Activate(ctx context.Context, kind domain.Kind) error {
	s.mu.Lock()
	s.active = kind
	s.mu.Unlock()

	if err := s.access(); err != nil {
		if !errors.Is(err, domain.ErrPermissionDenied) {
			// A missing folder is a scan failure, not a permission problem
			s.setDenied(nil)
			s.logger.Error("library unavailable", "kind", kind.String(), "error", err)
			return fmt.Errorf("checking library: %w", err)
		}
		s.setDenied(err)
		s.logger.Warn("library access denied", "kind", kind.String(), "error", err)
		return err
	}

	s.setDenied(nil)

	s.logger.Info("activating tab", "kind", kind.String())
	return s.engines[kind].Start(ctx)
}

// Decide forwards a decision for item id to the active engine
func (s *Session) Decide(ctx context.Context, id string, del bool) error {
	return s.Engine(s.Active()).Decide(ctx, id, del)
}

// Flush empties the active engine's trash bin
func (s *Session) Flush(ctx context.Context) error {
	return s.Engine(s.Active()).FlushTrash(ctx)
}

// Play opens the active engine's current video in the player
func (s *Session) Play(ctx context.Context) error {
	if s.playback == nil {
		return fmt.Errorf("no player configured")
	}
	return s.playback.PlayCurrent(ctx, s.Engine(s.Active()))
}
