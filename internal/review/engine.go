// Package review implements the review-queue engine: a shuffled queue of
// unseen media, a current item, a look-ahead prefetch cache and a trash bin
// that is committed to the media store only on request.
//
// All engine state is owned by the goroutine running Engine.Run. Public
// methods post closures to its inbox; background loads post their
// completions back the same way and are re-validated before they touch
// state.
package review

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"slices"

	"github.com/mmcdole/culler/internal/domain"
)

// DefaultPreloadCount is how many queued items are rendered ahead
const DefaultPreloadCount = 5

// Options configures an Engine
type Options struct {
	PreloadCount int
	Logger       *slog.Logger
	Metrics      *Metrics
	Rand         *rand.Rand // Shuffle source; seeded randomly when nil
}

// Engine is the review queue for one media kind
type Engine struct {
	kind      domain.Kind
	media     domain.MediaStore
	seenStore domain.SeenSetStore
	logger    *slog.Logger
	metrics   *Metrics
	rng       *rand.Rand
	preload   int

	inbox     chan func()
	done      chan struct{}
	publisher viewPublisher

	// Owned by the Run goroutine
	runCtx     context.Context
	state      State
	generation uint64
	queue      []domain.MediaItem
	queued     domain.IDSet
	current    *slot
	cache      *PrefetchCache
	inflight   domain.IDSet
	trash      []domain.MediaItem
	seen       *seenIndex
	flushing   bool
	status     string
	lastErr    error
}

// slot is the current item. video is non-nil only for Video items.
type slot struct {
	item      domain.MediaItem
	rendition *domain.Rendition
	video     *videoSlot
}

type videoSlot struct {
	stream domain.StreamHandle
}

func newSlot(item domain.MediaItem) *slot {
	s := &slot{item: item}
	if _, ok := item.(*domain.Video); ok {
		s.video = &videoSlot{}
	}
	return s
}

// New creates an engine for kind. Call Run before any other method.
func New(kind domain.Kind, media domain.MediaStore, seen domain.SeenSetStore, opts Options) *Engine {
	if opts.PreloadCount <= 0 {
		opts.PreloadCount = DefaultPreloadCount
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Metrics == nil {
		opts.Metrics = NewMetrics(nil)
	}
	if opts.Rand == nil {
		opts.Rand = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}

	return &Engine{
		kind:      kind,
		media:     media,
		seenStore: seen,
		logger:    opts.Logger.With("kind", kind.String()),
		metrics:   opts.Metrics,
		rng:       opts.Rand,
		preload:   opts.PreloadCount,
		inbox:     make(chan func(), 64),
		done:      make(chan struct{}),
		state:     StateUninitialized,
		queued:    domain.IDSet{},
		cache:     NewPrefetchCache(opts.PreloadCount),
		inflight:  domain.IDSet{},
		seen:      newSeenIndex(domain.IDSet{}),
		status:    StatusWaiting,
	}
}

// Kind returns the media kind this engine reviews
func (e *Engine) Kind() domain.Kind {
	return e.kind
}

// Run owns the engine state until ctx is canceled
func (e *Engine) Run(ctx context.Context) error {
	e.runCtx = ctx
	defer close(e.done)
	defer e.clearCurrent()

	for {
		select {
		case fn := <-e.inbox:
			fn()
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// Subscribe returns a channel that always holds the most recent view
func (e *Engine) Subscribe() <-chan View {
	return e.publisher.subscribe()
}

// View returns a consistent snapshot of the engine
func (e *Engine) View(ctx context.Context) (View, error) {
	var v View
	err := e.call(ctx, func() error {
		v = e.snapshot()
		return nil
	})
	return v, err
}

// Start enumerates the library, drops seen items and shuffles the rest.
// Calling it again recomputes everything from the stores; results of loads
// issued before the restart are discarded.
func (e *Engine) Start(ctx context.Context) error {
	reply := make(chan error, 1)
	err := e.call(ctx, func() error {
		e.beginStart(reply)
		return nil
	})
	if err != nil {
		return err
	}
	return e.await(ctx, reply)
}

// Decide records a delete/keep decision for the current item and advances.
// A non-empty id must name the current item, so a repeated UI event cannot
// consume the next card.
func (e *Engine) Decide(ctx context.Context, id string, del bool) error {
	return e.call(ctx, func() error {
		return e.decide(id, del)
	})
}

// FlushTrash deletes every trashed item in one batch. On failure the bin is
// left untouched and a *domain.FlushError is returned.
func (e *Engine) FlushTrash(ctx context.Context) error {
	reply := make(chan error, 1)
	err := e.call(ctx, func() error {
		return e.beginFlush(reply)
	})
	if err != nil {
		return err
	}
	return e.await(ctx, reply)
}

type streamResult struct {
	stream domain.StreamHandle
	err    error
}

// PlayCurrent opens (or returns the already open) stream for the current
// video.
func (e *Engine) PlayCurrent(ctx context.Context) (domain.StreamHandle, error) {
	reply := make(chan streamResult, 1)
	err := e.call(ctx, func() error {
		return e.beginPlay(reply)
	})
	if err != nil {
		return nil, err
	}

	select {
	case res := <-reply:
		return res.stream, res.err
	case <-e.done:
		return nil, domain.ErrNotRunning
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// === Owner plumbing ===

// call runs fn on the owner goroutine and waits for its result
func (e *Engine) call(ctx context.Context, fn func() error) error {
	reply := make(chan error, 1)
	select {
	case e.inbox <- func() { reply <- fn() }:
	case <-e.done:
		return domain.ErrNotRunning
	case <-ctx.Done():
		return ctx.Err()
	}
	return e.await(ctx, reply)
}

func (e *Engine) await(ctx context.Context, reply <-chan error) error {
	select {
	case err := <-reply:
		return err
	case <-e.done:
		return domain.ErrNotRunning
	case <-ctx.Done():
		return ctx.Err()
	}
}

// post queues a completion from a background goroutine
func (e *Engine) post(fn func()) {
	select {
	case e.inbox <- fn:
	case <-e.done:
	}
}

func (e *Engine) publish() {
	e.metrics.QueueRemaining.WithLabelValues(e.kind.String()).Set(float64(len(e.queue)))
	e.metrics.TrashSize.WithLabelValues(e.kind.String()).Set(float64(len(e.trash)))
	e.publisher.publish(e.snapshot())
}

func (e *Engine) snapshot() View {
	v := View{
		Kind:      e.kind,
		State:     e.state,
		Flushing:  e.flushing,
		Remaining: len(e.queue),
		Trash:     len(e.trash),
		Seen:      e.seen.Len(),
		Status:    e.status,
		Err:       e.lastErr,
	}
	if e.current != nil {
		v.Current = e.current.item
		if e.current.rendition != nil {
			r := *e.current.rendition
			v.Rendition = &r
		}
		if e.current.video != nil {
			v.Stream = e.current.video.stream
		}
	}
	return v
}

// === Start ===

func (e *Engine) beginStart(reply chan<- error) {
	e.generation++
	gen := e.generation

	e.clearCurrent()
	e.queue = nil
	e.queued = domain.IDSet{}
	e.cache.Purge()
	e.inflight = domain.IDSet{}
	e.state = StateLoading
	e.status = StatusScanning
	e.publish()

	e.logger.Info("scanning library")

	ctx := e.runCtx
	go func() {
		items, err := e.media.Enumerate(ctx, e.kind)
		var seen domain.IDSet
		if err == nil {
			seen, err = e.seenStore.Load(e.kind)
		}
		e.post(func() {
			e.finishStart(gen, items, seen, err, reply)
		})
	}()
}

func (e *Engine) finishStart(gen uint64, items []domain.MediaItem, seen domain.IDSet, err error, reply chan<- error) {
	if gen != e.generation {
		// A later Start owns the state now
		reply <- nil
		return
	}

	if err != nil {
		e.logger.Error("failed to scan library", "error", err)
		e.state = StateEmpty
		e.status = fmt.Sprintf("Could not scan library: %v", err)
		e.publish()
		reply <- err
		return
	}

	e.seen = newSeenIndex(seen)

	unseen := make([]domain.MediaItem, 0, len(items))
	for _, item := range items {
		id := item.GetID()
		if e.seen.Has(id) || e.queued.Has(id) {
			continue
		}
		e.queued.Add(id)
		unseen = append(unseen, item)
	}
	e.rng.Shuffle(len(unseen), func(i, j int) {
		unseen[i], unseen[j] = unseen[j], unseen[i]
	})
	e.queue = unseen

	e.logger.Info("review queue ready",
		"total", len(items),
		"seen", e.seen.Len(),
		"unseen", len(unseen))

	if len(unseen) == 0 {
		e.state = StateEmpty
		e.status = fmt.Sprintf("Congratulations, you've already reviewed all your %s!", e.kind.Plural())
		e.publish()
		reply <- nil
		return
	}

	e.advance()
	e.publish()
	reply <- nil
}

// === Queue ===

// advance pops the next item into the current slot and tops up the prefetch window
func (e *Engine) advance() {
	e.clearCurrent()

	if len(e.queue) == 0 {
		e.state = StateEmpty
		e.status = StatusFinished
		return
	}

	item := e.queue[0]
	e.queue[0] = nil
	e.queue = e.queue[1:]
	delete(e.queued, item.GetID())

	e.current = newSlot(item)
	e.state = StateReady
	e.status = ""

	if r, ok := e.cache.Get(item.GetID()); ok {
		e.current.rendition = r
		e.metrics.PrefetchLookups.WithLabelValues(e.kind.String(), "hit").Inc()
	} else {
		e.metrics.PrefetchLookups.WithLabelValues(e.kind.String(), "miss").Inc()
		e.requestFinal(item)
	}

	e.refillPrefetch()
}

// clearCurrent empties the slot, closing any attached stream
func (e *Engine) clearCurrent() {
	if e.current == nil {
		return
	}
	if v := e.current.video; v != nil && v.stream != nil {
		if err := v.stream.Close(); err != nil {
			e.logger.Warn("failed to close stream", "error", err, "itemID", e.current.item.GetID())
		}
		v.stream = nil
	}
	e.current = nil
}

func (e *Engine) isCurrent(id string) bool {
	return e.current != nil && e.current.item.GetID() == id
}

func (e *Engine) requestFinal(item domain.MediaItem) {
	gen := e.generation
	ctx := e.runCtx
	go func() {
		r, err := e.media.LoadRendition(ctx, item, domain.QualityFinal)
		e.post(func() {
			e.applyFinal(gen, item, r, err)
		})
	}()
}

func (e *Engine) applyFinal(gen uint64, item domain.MediaItem, r *domain.Rendition, err error) {
	id := item.GetID()
	if gen != e.generation || !e.isCurrent(id) {
		e.logger.Debug("discarding stale rendition", "itemID", id)
		return
	}
	if e.current.rendition != nil && e.current.rendition.Quality == domain.QualityFinal {
		return
	}

	if err != nil || r == nil {
		// Skipped, not marked seen: the item comes back next session
		e.metrics.LoadFailures.WithLabelValues(e.kind.String(), domain.QualityFinal.String()).Inc()
		e.logger.Warn("skipping item that failed to load", "itemID", id, "error", err)
		e.advance()
		e.publish()
		return
	}

	e.current.rendition = r
	e.publish()
}

// refillPrefetch requests previews for the next items not already cached or loading
func (e *Engine) refillPrefetch() {
	window := e.queue[:min(e.preload, len(e.queue))]
	for _, item := range window {
		id := item.GetID()
		if e.cache.Has(id) || e.inflight.Has(id) {
			continue
		}
		e.inflight.Add(id)
		e.requestPreview(item)
	}
	e.logger.Debug("prefetch window", "cached", e.cache.Len(), "loading", len(e.inflight))
}

func (e *Engine) requestPreview(item domain.MediaItem) {
	gen := e.generation
	ctx := e.runCtx
	go func() {
		r, err := e.media.LoadRendition(ctx, item, domain.QualityPreview)
		e.post(func() {
			e.applyPreview(gen, item, r, err)
		})
	}()
}

func (e *Engine) applyPreview(gen uint64, item domain.MediaItem, r *domain.Rendition, err error) {
	if gen != e.generation {
		return
	}

	id := item.GetID()
	delete(e.inflight, id)

	switch {
	case err != nil || r == nil:
		e.metrics.LoadFailures.WithLabelValues(e.kind.String(), domain.QualityPreview.String()).Inc()
		e.logger.Debug("preview failed", "itemID", id, "error", err)
	case e.isCurrent(id):
		// Became current before the preview finished; the final load wins
		e.logger.Debug("discarding preview for current item", "itemID", id)
	case !e.queued.Has(id):
		e.logger.Debug("discarding preview for dequeued item", "itemID", id)
	default:
		e.cache.Put(id, r)
	}
}

// === Decisions ===

func (e *Engine) decide(id string, del bool) error {
	if e.flushing {
		return domain.ErrFlushInProgress
	}
	if e.current == nil {
		return domain.ErrNoCurrentItem
	}

	item := e.current.item
	if id != "" && id != item.GetID() {
		return domain.ErrStaleDecision
	}

	if err := e.markSeen(item.GetID()); err != nil {
		e.logger.Error("failed to persist decision", "itemID", item.GetID(), "error", err)
		e.lastErr = err
		e.publish()
		return err
	}
	if _, flushFailed := e.lastErr.(*domain.FlushError); !flushFailed {
		e.lastErr = nil
	}

	decision := "keep"
	if del {
		decision = "delete"
		if !slices.ContainsFunc(e.trash, func(t domain.MediaItem) bool { return t.GetID() == item.GetID() }) {
			e.trash = append(e.trash, item)
		}
	}
	e.metrics.Decisions.WithLabelValues(e.kind.String(), decision).Inc()
	e.logger.Debug("decision recorded", "itemID", item.GetID(), "decision", decision)

	e.advance()
	e.publish()
	return nil
}

// markSeen persists id before the caller may advance
func (e *Engine) markSeen(id string) error {
	if e.seen.Has(id) {
		return nil
	}
	e.seen.Add(id)
	if err := e.seenStore.Save(e.kind, e.seen.Set()); err != nil {
		e.seen.Remove(id)
		return err
	}
	return nil
}

// === Trash ===

func (e *Engine) beginFlush(reply chan<- error) error {
	if e.flushing {
		return domain.ErrFlushInProgress
	}
	if len(e.trash) == 0 {
		reply <- nil
		return nil
	}

	e.flushing = true
	batch := slices.Clone(e.trash)
	e.publish()

	e.logger.Info("emptying trash", "count", len(batch))

	ctx := e.runCtx
	go func() {
		err := e.media.BatchDelete(ctx, batch)
		e.post(func() {
			e.finishFlush(batch, err, reply)
		})
	}()
	return nil
}

func (e *Engine) finishFlush(batch []domain.MediaItem, err error, reply chan<- error) {
	e.flushing = false

	if err != nil {
		fe := &domain.FlushError{Count: len(batch), Err: err}
		e.metrics.Flushes.WithLabelValues(e.kind.String(), "failed").Inc()
		e.logger.Error("failed to empty trash", "count", len(batch), "error", err)
		e.lastErr = fe
		e.publish()
		reply <- fe
		return
	}

	e.metrics.Flushes.WithLabelValues(e.kind.String(), "ok").Inc()
	e.logger.Info("trash emptied", "count", len(batch))
	e.trash = nil
	e.lastErr = nil
	e.publish()
	reply <- nil
}

// === Video ===

func (e *Engine) beginPlay(reply chan<- streamResult) error {
	if e.current == nil {
		return domain.ErrNoCurrentItem
	}
	video, ok := e.current.item.(*domain.Video)
	if !ok {
		return domain.ErrNotVideo
	}
	if s := e.current.video.stream; s != nil {
		reply <- streamResult{stream: s}
		return nil
	}

	gen := e.generation
	ctx := e.runCtx
	go func() {
		stream, err := e.media.LoadVideoStream(ctx, video)
		e.post(func() {
			e.attachStream(gen, video, stream, err, reply)
		})
	}()
	return nil
}

func (e *Engine) attachStream(gen uint64, video *domain.Video, stream domain.StreamHandle, err error, reply chan<- streamResult) {
	if err != nil || stream == nil {
		if err == nil {
			err = domain.ErrItemNotFound
		}
		e.logger.Warn("failed to open video stream", "itemID", video.ID, "error", err)
		reply <- streamResult{err: fmt.Errorf("opening stream: %w", err)}
		return
	}

	if gen != e.generation || !e.isCurrent(video.ID) {
		stream.Close()
		reply <- streamResult{err: domain.ErrStaleDecision}
		return
	}

	// Another request may have attached first
	if existing := e.current.video.stream; existing != nil {
		stream.Close()
		reply <- streamResult{stream: existing}
		return
	}

	e.current.video.stream = stream
	e.publish()
	reply <- streamResult{stream: stream}
}
