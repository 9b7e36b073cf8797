package library

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/mmcdole/culler/internal/domain"
)

// LoadRendition decodes and renders an item at the width for quality.
// Videos use a frame extracted by ffmpeg and fall back to a text card.
func (s *Store) LoadRendition(ctx context.Context, item domain.MediaItem, quality domain.Quality) (*domain.Rendition, error) {
	width := s.previewWidth
	if quality == domain.QualityFinal {
		width = s.finalWidth
	}

	var (
		img image.Image
		err error
	)
	switch v := item.(type) {
	case *domain.Photo:
		img, err = decodeFile(v.Path)
		if err != nil {
			return nil, err
		}
	case *domain.Video:
		if _, statErr := os.Stat(v.Path); statErr != nil {
			return nil, fmt.Errorf("%w: %s", domain.ErrItemNotFound, v.Path)
		}
		img, err = s.videoFrame(ctx, v.Path)
		if err != nil {
			s.logger.Debug("no video frame, using card", "itemID", v.ID, "error", err)
			return s.cardRendition(item, quality, width), nil
		}
	default:
		return nil, fmt.Errorf("unsupported media item %T", item)
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	art := s.renderer.Image(img, width)
	return &domain.Rendition{
		ItemID:  item.GetID(),
		Quality: quality,
		Width:   art.Source.X,
		Height:  art.Source.Y,
		Art:     art.Text,
		Caption: caption(item),
	}, nil
}

func decodeFile(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", domain.ErrItemNotFound, path)
		}
		return nil, err
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", filepath.Base(path), err)
	}
	return img, nil
}

// videoFrame grabs a single frame one second in as PNG on stdout
func (s *Store) videoFrame(ctx context.Context, path string) (image.Image, error) {
	if s.ffmpeg == "" {
		return nil, fmt.Errorf("ffmpeg disabled")
	}
	bin, err := exec.LookPath(s.ffmpeg)
	if err != nil {
		return nil, err
	}

	args := []string{
		"-loglevel", "error",
		"-ss", "1",
		"-i", path,
		"-frames:v", "1",
		"-f", "image2pipe",
		"-vcodec", "png",
		"pipe:1",
	}

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, bin, args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("ffmpeg: %w: %s", err, bytes.TrimSpace(stderr.Bytes()))
	}
	if stdout.Len() == 0 {
		// Clips shorter than the seek offset produce no frame
		return nil, fmt.Errorf("ffmpeg produced no frame")
	}

	img, _, err := image.Decode(&stdout)
	if err != nil {
		return nil, fmt.Errorf("decoding frame: %w", err)
	}
	return img, nil
}

func (s *Store) cardRendition(item domain.MediaItem, quality domain.Quality, width int) *domain.Rendition {
	art := s.renderer.Card(width, "▶ "+filepath.Base(item.GetPath()), domain.FormatSize(item.GetSize()))
	return &domain.Rendition{
		ItemID:  item.GetID(),
		Quality: quality,
		Art:     art.Text,
		Caption: caption(item),
	}
}

func caption(item domain.MediaItem) string {
	return fmt.Sprintf("%s · %s · %s",
		filepath.Base(item.GetPath()),
		domain.FormatSize(item.GetSize()),
		item.GetCreatedAt().Format("2006-01-02"))
}
