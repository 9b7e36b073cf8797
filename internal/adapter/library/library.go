// Package library implements domain.MediaStore over local directories
package library

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/mmcdole/culler/internal/domain"
	"github.com/mmcdole/culler/internal/render"
)

var photoExts = map[string]bool{
	".jpg": true, ".jpeg": true, ".png": true, ".gif": true,
}

var videoExts = map[string]bool{
	".mp4": true, ".mov": true, ".m4v": true, ".mkv": true,
	".webm": true, ".avi": true,
}

// stagingPrefix marks files moved aside during a batch delete
const stagingPrefix = ".culler-staging-"

// Options configures a Store
type Options struct {
	Roots        []string // Directories scanned recursively
	TrashDir     string   // When set, deleted files are moved here
	PreviewWidth int      // Cells for preview renditions
	FinalWidth   int      // Cells for final renditions
	FFmpeg       string   // ffmpeg binary for video frames; "" disables
	Renderer     *render.Renderer
	Logger       *slog.Logger
}

// Store is a filesystem media library
type Store struct {
	roots        []string
	trashDir     string
	previewWidth int
	finalWidth   int
	ffmpeg       string
	renderer     *render.Renderer
	logger       *slog.Logger

	// Serializes batch deletes against each other
	deleteMu sync.Mutex
}

// New creates a Store over opts.Roots
func New(opts Options) *Store {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Renderer == nil {
		opts.Renderer = render.New(nil)
	}
	if opts.PreviewWidth <= 0 {
		opts.PreviewWidth = 40
	}
	if opts.FinalWidth <= 0 {
		opts.FinalWidth = 80
	}

	roots := make([]string, 0, len(opts.Roots))
	for _, r := range opts.Roots {
		if abs, err := filepath.Abs(expandHome(r)); err == nil {
			roots = append(roots, abs)
		}
	}

	trashDir := expandHome(opts.TrashDir)
	if trashDir != "" {
		if abs, err := filepath.Abs(trashDir); err == nil {
			trashDir = abs
		}
	}

	return &Store{
		roots:        roots,
		trashDir:     trashDir,
		previewWidth: opts.PreviewWidth,
		finalWidth:   opts.FinalWidth,
		ffmpeg:       opts.FFmpeg,
		renderer:     opts.Renderer,
		logger:       opts.Logger,
	}
}

// Roots returns the absolute library roots
func (s *Store) Roots() []string {
	return s.roots
}

// KindOf classifies a file name by extension
func KindOf(name string) (domain.Kind, bool) {
	ext := strings.ToLower(filepath.Ext(name))
	switch {
	case photoExts[ext]:
		return domain.KindPhoto, true
	case videoExts[ext]:
		return domain.KindVideo, true
	default:
		return 0, false
	}
}

// Enumerate walks every root in parallel and returns items of kind, newest
// first. Identifiers are cleaned absolute paths, so an item found through
// two overlapping roots is reported once.
func (s *Store) Enumerate(ctx context.Context, kind domain.Kind) ([]domain.MediaItem, error) {
	results := make([][]domain.MediaItem, len(s.roots))

	g, gCtx := errgroup.WithContext(ctx)
	for i, root := range s.roots {
		g.Go(func() error {
			items, err := s.scanRoot(gCtx, root, kind)
			if err != nil {
				return fmt.Errorf("scanning %s: %w", root, err)
			}
			results[i] = items
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	seen := domain.IDSet{}
	var items []domain.MediaItem
	for _, batch := range results {
		for _, item := range batch {
			if seen.Has(item.GetID()) {
				continue
			}
			seen.Add(item.GetID())
			items = append(items, item)
		}
	}

	sort.SliceStable(items, func(i, j int) bool {
		return items[i].GetCreatedAt().After(items[j].GetCreatedAt())
	})

	s.logger.Debug("library enumerated", "kind", kind.String(), "count", len(items), "roots", len(s.roots))
	return items, nil
}

func (s *Store) scanRoot(ctx context.Context, root string, kind domain.Kind) ([]domain.MediaItem, error) {
	var items []domain.MediaItem

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == root {
				if os.IsPermission(err) {
					return fmt.Errorf("%w: %v", domain.ErrPermissionDenied, err)
				}
				return err
			}
			s.logger.Warn("skipping unreadable path", "path", path, "error", err)
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}

		name := d.Name()
		if strings.HasPrefix(name, ".") && path != root {
			if d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			if s.trashDir != "" && path == s.trashDir {
				return fs.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}

		k, ok := KindOf(name)
		if !ok || k != kind {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			s.logger.Debug("file vanished during scan", "path", path, "error", err)
			return nil
		}

		items = append(items, newItem(kind, filepath.Clean(path), info))
		return nil
	})

	return items, err
}

func newItem(kind domain.Kind, path string, info fs.FileInfo) domain.MediaItem {
	id := filepath.ToSlash(path)
	if kind == domain.KindVideo {
		return &domain.Video{ID: id, Path: path, Size: info.Size(), CreatedAt: info.ModTime()}
	}
	return &domain.Photo{ID: id, Path: path, Size: info.Size(), CreatedAt: info.ModTime()}
}

// LoadVideoStream returns a handle on the video file. Local files need no
// transcoding, so the locator is the path itself.
func (s *Store) LoadVideoStream(_ context.Context, video *domain.Video) (domain.StreamHandle, error) {
	if _, err := os.Stat(video.Path); err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", domain.ErrItemNotFound, video.Path)
		}
		return nil, err
	}
	return &fileStream{path: video.Path}, nil
}

type fileStream struct {
	path string
}

func (f *fileStream) Locator() string {
	return f.path
}

// Close is a no-op: the player opens the file itself
func (f *fileStream) Close() error {
	return nil
}

func expandHome(path string) string {
	if !strings.HasPrefix(path, "~") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[1:])
}
