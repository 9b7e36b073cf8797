package service

import (
	"context"
	"io"
	"log/slog"
	"sync"

	"github.com/mmcdole/culler/internal/domain"
)

type fakeMedia struct {
	items map[domain.Kind][]domain.MediaItem
}

func (f *fakeMedia) Enumerate(_ context.Context, kind domain.Kind) ([]domain.MediaItem, error) {
	return f.items[kind], nil
}

func (f *fakeMedia) LoadRendition(_ context.Context, item domain.MediaItem, q domain.Quality) (*domain.Rendition, error) {
	return &domain.Rendition{ItemID: item.GetID(), Quality: q, Art: item.GetID()}, nil
}

func (f *fakeMedia) LoadVideoStream(_ context.Context, v *domain.Video) (domain.StreamHandle, error) {
	return fakeStream(v.Path), nil
}

func (f *fakeMedia) BatchDelete(context.Context, []domain.MediaItem) error {
	return nil
}

type fakeStream string

func (s fakeStream) Locator() string { return string(s) }
func (s fakeStream) Close() error    { return nil }

type fakeStore struct {
	mu   sync.Mutex
	sets map[domain.Kind]domain.IDSet
}

func newFakeStore() *fakeStore {
	return &fakeStore{sets: make(map[domain.Kind]domain.IDSet)}
}

func (f *fakeStore) Load(kind domain.Kind) (domain.IDSet, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.sets[kind].Clone(), nil
}

func (f *fakeStore) Save(kind domain.Kind, ids domain.IDSet) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sets[kind] = ids.Clone()
	return nil
}

func (f *fakeStore) Reset(kind domain.Kind) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.sets, kind)
	return nil
}

func (f *fakeStore) Close() error { return nil }

type fakePlayer struct {
	mu     sync.Mutex
	played []string
}

func (p *fakePlayer) Play(locator string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.played = append(p.played, locator)
	return nil
}

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func library() *fakeMedia {
	return &fakeMedia{items: map[domain.Kind][]domain.MediaItem{
		domain.KindPhoto: {
			&domain.Photo{ID: "a.jpg", Path: "/lib/a.jpg", Size: 10},
			&domain.Photo{ID: "b.jpg", Path: "/lib/b.jpg", Size: 20},
		},
		domain.KindVideo: {
			&domain.Video{ID: "c.mp4", Path: "/lib/c.mp4", Size: 30},
		},
	}}
}
