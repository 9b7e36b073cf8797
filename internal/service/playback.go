package service

import (
	"context"
	"log/slog"

	"github.com/mmcdole/culler/internal/review"
)

// player abstracts media player launching (consumer-defined interface)
type player interface {
	Play(locator string) error
}

// PlaybackService plays the current video of an engine
type PlaybackService struct {
	player player
	logger *slog.Logger
}

// NewPlaybackService creates a new playback service
func NewPlaybackService(player player, logger *slog.Logger) *PlaybackService {
	if logger == nil {
		logger = slog.Default()
	}
	return &PlaybackService{
		player: player,
		logger: logger,
	}
}

// PlayCurrent attaches a stream to the engine's current video and hands its
// locator to the player.
func (s *PlaybackService) PlayCurrent(ctx context.Context, engine *review.Engine) error {
	stream, err := engine.PlayCurrent(ctx)
	if err != nil {
		return err
	}

	s.logger.Info("launching playback", "locator", stream.Locator(), "kind", engine.Kind().String())
	if err := s.player.Play(stream.Locator()); err != nil {
		s.logger.Error("failed to launch player", "error", err, "locator", stream.Locator())
		return err
	}
	return nil
}
