package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/mmcdole/culler/internal/domain"
)

// KindStats summarizes review progress for one kind
type KindStats struct {
	Kind   domain.Kind
	Total  int   // Items currently in the library
	Seen   int   // Library items already reviewed
	Unseen int   // Library items left to review
	Stale  int   // Seen identifiers no longer in the library
	Bytes  int64 // Size of unseen items
}

// LibraryService answers questions about the library outside a review
// session.
type LibraryService struct {
	media  domain.MediaStore
	store  domain.Store
	logger *slog.Logger
}

// NewLibraryService creates a new library service
func NewLibraryService(media domain.MediaStore, store domain.Store, logger *slog.Logger) *LibraryService {
	if logger == nil {
		logger = slog.Default()
	}
	return &LibraryService{
		media:  media,
		store:  store,
		logger: logger,
	}
}

// Stats computes progress for each kind
func (s *LibraryService) Stats(ctx context.Context, kinds ...domain.Kind) ([]KindStats, error) {
	if len(kinds) == 0 {
		kinds = domain.Kinds()
	}

	out := make([]KindStats, 0, len(kinds))
	for _, kind := range kinds {
		items, err := s.media.Enumerate(ctx, kind)
		if err != nil {
			return nil, fmt.Errorf("enumerating %s: %w", kind.Plural(), err)
		}
		seen, err := s.store.Load(kind)
		if err != nil {
			return nil, fmt.Errorf("loading seen %s: %w", kind.Plural(), err)
		}

		st := KindStats{Kind: kind, Total: len(items)}
		present := domain.IDSet{}
		for _, item := range items {
			present.Add(item.GetID())
			if seen.Has(item.GetID()) {
				st.Seen++
				continue
			}
			st.Unseen++
			st.Bytes += item.GetSize()
		}
		for id := range seen {
			if !present.Has(id) {
				st.Stale++
			}
		}
		out = append(out, st)
	}
	return out, nil
}

// Reset forgets every reviewed item of kind
func (s *LibraryService) Reset(kind domain.Kind) error {
	if err := s.store.Reset(kind); err != nil {
		return fmt.Errorf("resetting seen %s: %w", kind.Plural(), err)
	}
	s.logger.Info("seen set reset", "kind", kind.String())
	return nil
}
