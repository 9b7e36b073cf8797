package review

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/rand/v2"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/mmcdole/culler/internal/domain"
)

// Mock implementations for testing

type loadCall struct {
	id      string
	quality domain.Quality
}

type mockMedia struct {
	mu sync.Mutex

	items   []domain.MediaItem
	enumErr error

	failFinal   domain.IDSet
	failPreview domain.IDSet
	// previewGate, when non-nil, blocks every preview load until closed
	previewGate chan struct{}
	// enumHold, when non-nil, is taken by the next Enumerate call, which
	// blocks on it after snapshotting the items
	enumHold chan struct{}
	// streamGate and deleteGate block stream opens and batch deletes
	streamGate chan struct{}
	deleteGate chan struct{}

	enumCalls       int
	previewsHandled int

	deleteErr error
	deletes   [][]string
	loads     []loadCall
	streams   []*mockStream
}

func newMockMedia(items ...domain.MediaItem) *mockMedia {
	return &mockMedia{
		items:       items,
		failFinal:   domain.IDSet{},
		failPreview: domain.IDSet{},
	}
}

func (m *mockMedia) Enumerate(ctx context.Context, _ domain.Kind) ([]domain.MediaItem, error) {
	m.mu.Lock()
	m.enumCalls++
	hold := m.enumHold
	m.enumHold = nil
	enumErr := m.enumErr
	out := make([]domain.MediaItem, len(m.items))
	copy(out, m.items)
	m.mu.Unlock()

	if err := wait(ctx, hold); err != nil {
		return nil, err
	}
	if enumErr != nil {
		return nil, enumErr
	}
	return out, nil
}

func (m *mockMedia) LoadRendition(ctx context.Context, item domain.MediaItem, q domain.Quality) (*domain.Rendition, error) {
	m.mu.Lock()
	m.loads = append(m.loads, loadCall{id: item.GetID(), quality: q})
	gate := m.previewGate
	failed := (q == domain.QualityFinal && m.failFinal.Has(item.GetID())) ||
		(q == domain.QualityPreview && m.failPreview.Has(item.GetID()))
	m.mu.Unlock()

	if q == domain.QualityPreview {
		defer func() {
			m.mu.Lock()
			m.previewsHandled++
			m.mu.Unlock()
		}()
		if err := wait(ctx, gate); err != nil {
			return nil, err
		}
	}

	if failed {
		return nil, errors.New("decode failed")
	}
	return &domain.Rendition{
		ItemID:  item.GetID(),
		Quality: q,
		Art:     fmt.Sprintf("%s@%s", item.GetID(), q),
	}, nil
}

func (m *mockMedia) LoadVideoStream(ctx context.Context, v *domain.Video) (domain.StreamHandle, error) {
	m.mu.Lock()
	s := &mockStream{locator: v.Path}
	m.streams = append(m.streams, s)
	gate := m.streamGate
	m.mu.Unlock()

	if err := wait(ctx, gate); err != nil {
		return nil, err
	}
	return s, nil
}

func (m *mockMedia) BatchDelete(ctx context.Context, items []domain.MediaItem) error {
	m.mu.Lock()
	ids := make([]string, len(items))
	for i, item := range items {
		ids[i] = item.GetID()
	}
	m.deletes = append(m.deletes, ids)
	gate := m.deleteGate
	m.mu.Unlock()

	if err := wait(ctx, gate); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.deleteErr
}

// wait blocks until gate is closed; a nil gate is open
func wait(ctx context.Context, gate <-chan struct{}) error {
	if gate == nil {
		return nil
	}
	select {
	case <-gate:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (m *mockMedia) counts() (enums, streams, previews int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.enumCalls, len(m.streams), m.previewsHandled
}

func (m *mockMedia) setDeleteErr(err error) {
	m.mu.Lock()
	m.deleteErr = err
	m.mu.Unlock()
}

func (m *mockMedia) deleteCalls() [][]string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([][]string(nil), m.deletes...)
}

func (m *mockMedia) countLoads(q domain.Quality) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, l := range m.loads {
		if l.quality == q {
			n++
		}
	}
	return n
}

type mockStream struct {
	locator string
	mu      sync.Mutex
	closed  bool
}

func (s *mockStream) Locator() string { return s.locator }

func (s *mockStream) Close() error {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	return nil
}

func (s *mockStream) isClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

type mockSeenStore struct {
	mu      sync.Mutex
	sets    map[domain.Kind]domain.IDSet
	saveErr error
	saves   int
}

func newMockSeenStore() *mockSeenStore {
	return &mockSeenStore{sets: make(map[domain.Kind]domain.IDSet)}
}

func (m *mockSeenStore) Load(kind domain.Kind) (domain.IDSet, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sets[kind].Clone(), nil
}

func (m *mockSeenStore) Save(kind domain.Kind, ids domain.IDSet) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saveErr != nil {
		return m.saveErr
	}
	m.saves++
	m.sets[kind] = ids.Clone()
	return nil
}

func (m *mockSeenStore) seed(kind domain.Kind, ids ...string) {
	m.mu.Lock()
	m.sets[kind] = domain.NewIDSet(ids...)
	m.mu.Unlock()
}

func (m *mockSeenStore) has(kind domain.Kind, id string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sets[kind].Has(id)
}

func (m *mockSeenStore) setSaveErr(err error) {
	m.mu.Lock()
	m.saveErr = err
	m.mu.Unlock()
}

// Helpers

func photos(ids ...string) []domain.MediaItem {
	out := make([]domain.MediaItem, len(ids))
	for i, id := range ids {
		out[i] = &domain.Photo{ID: id, Path: "/lib/" + id, CreatedAt: time.Unix(int64(i), 0)}
	}
	return out
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// startEngine runs an engine for the duration of the test
func startEngine(t *testing.T, kind domain.Kind, media *mockMedia, seen *mockSeenStore, preload int) *Engine {
	t.Helper()

	e := New(kind, media, seen, Options{
		PreloadCount: preload,
		Logger:       quietLogger(),
		Rand:         rand.New(rand.NewPCG(1, 2)),
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		e.Run(ctx)
		close(done)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})
	return e
}

// inspect runs fn on the owner goroutine
func inspect(t *testing.T, e *Engine, fn func()) {
	t.Helper()
	err := e.call(context.Background(), func() error {
		fn()
		return nil
	})
	if err != nil {
		t.Fatalf("inspect: %v", err)
	}
}

func queueIDs(t *testing.T, e *Engine) []string {
	t.Helper()
	var ids []string
	inspect(t, e, func() {
		for _, item := range e.queue {
			ids = append(ids, item.GetID())
		}
	})
	return ids
}

// settle waits until no preview loads are outstanding
func settle(t *testing.T, e *Engine) {
	t.Helper()
	waitFor(t, func() bool {
		var n int
		inspect(t, e, func() { n = len(e.inflight) })
		return n == 0
	})
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatal("condition not met before deadline")
}

func mustView(t *testing.T, e *Engine) View {
	t.Helper()
	v, err := e.View(context.Background())
	if err != nil {
		t.Fatalf("View: %v", err)
	}
	return v
}

func sorted(ids []string) []string {
	out := append([]string(nil), ids...)
	sort.Strings(out)
	return out
}
