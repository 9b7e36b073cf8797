package library

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/mmcdole/culler/internal/domain"
)

type staged struct {
	item    domain.MediaItem
	orig    string
	staging string
}

// BatchDelete removes every item or none of them. Files are first renamed
// aside within their own directory; if any rename fails the earlier ones are
// restored. Only then are the staged files unlinked, or moved to the trash
// directory when one is configured.
func (s *Store) BatchDelete(ctx context.Context, items []domain.MediaItem) error {
	if len(items) == 0 {
		return nil
	}

	s.deleteMu.Lock()
	defer s.deleteMu.Unlock()

	batchID := uuid.NewString()
	var done []staged

	for _, item := range items {
		if err := ctx.Err(); err != nil {
			s.rollback(done)
			return err
		}

		orig := item.GetPath()
		if _, err := os.Lstat(orig); err != nil {
			s.rollback(done)
			if os.IsNotExist(err) {
				return fmt.Errorf("%w: %s", domain.ErrItemNotFound, orig)
			}
			return err
		}

		aside := filepath.Join(filepath.Dir(orig), stagingPrefix+batchID+"-"+filepath.Base(orig))
		if err := os.Rename(orig, aside); err != nil {
			s.rollback(done)
			if os.IsPermission(err) {
				return fmt.Errorf("%w: %v", domain.ErrPermissionDenied, err)
			}
			return fmt.Errorf("staging %s: %w", filepath.Base(orig), err)
		}
		done = append(done, staged{item: item, orig: orig, staging: aside})
	}

	// Past this point the batch is committed; leftovers are logged, not returned
	var errs []error
	for _, st := range done {
		if err := s.commit(st); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		s.logger.Error("failed to clean up staged files", "batch", batchID, "error", errors.Join(errs...))
	}

	s.logger.Info("batch delete committed", "batch", batchID, "count", len(done), "trashDir", s.trashDir)
	return nil
}

func (s *Store) rollback(done []staged) {
	for i := len(done) - 1; i >= 0; i-- {
		st := done[i]
		if err := os.Rename(st.staging, st.orig); err != nil {
			s.logger.Error("failed to restore staged file", "path", st.orig, "staging", st.staging, "error", err)
		}
	}
}

func (s *Store) commit(st staged) error {
	if s.trashDir == "" {
		return os.Remove(st.staging)
	}

	if err := os.MkdirAll(s.trashDir, 0755); err != nil {
		return err
	}
	dest := uniquePath(filepath.Join(s.trashDir, filepath.Base(st.orig)))
	if err := os.Rename(st.staging, dest); err != nil {
		// Cross-device trash dirs cannot take a rename; the item is already
		// out of the library, so removing it completes the delete.
		s.logger.Warn("cannot move to trash dir, removing", "path", st.orig, "error", err)
		return os.Remove(st.staging)
	}
	return nil
}

// uniquePath appends a counter until path does not exist
func uniquePath(path string) string {
	if _, err := os.Lstat(path); os.IsNotExist(err) {
		return path
	}
	ext := filepath.Ext(path)
	base := path[:len(path)-len(ext)]
	for i := 1; ; i++ {
		candidate := fmt.Sprintf("%s (%d)%s", base, i, ext)
		if _, err := os.Lstat(candidate); os.IsNotExist(err) {
			return candidate
		}
	}
}
