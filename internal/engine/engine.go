// Package engine routes submissions to the remote store, falling back to
// the persisted queue, and drains the queue in order once the store is
// reachable again.
package engine

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/matheus3301/nikki/internal/bus"
	"github.com/matheus3301/nikki/internal/history"
	"github.com/matheus3301/nikki/internal/metrics"
	"github.com/matheus3301/nikki/internal/queue"
	"github.com/matheus3301/nikki/internal/remote"
	"github.com/matheus3301/nikki/internal/status"
	"github.com/matheus3301/nikki/internal/store"
	"go.uber.org/zap"
)

// ErrEmptyText is returned by Submit for blank input.
var ErrEmptyText = errors.New("empty text")

// Journal records confirmed deliveries. *store.DB implements it.
type Journal interface {
	RecordDelivery(d store.Delivery) error
	RecordUpload(u store.Upload) error
}

// Options tunes the engine.
type Options struct {
	// DrainDelay spaces consecutive drain sends. Zero sends back to back.
	DrainDelay     time.Duration
	QueueWarnDepth int
	// Now is the clock used to stamp submissions.
	Now func() time.Time
}

// Receipt describes what happened to a submission.
type Receipt struct {
	Entry     queue.Entry
	Delivered bool
	// Err is the send failure that caused the entry to be queued.
	Err error
}

// DrainResult summarises one drain pass.
type DrainResult struct {
	Delivered int
	Remaining int
	// Skipped is set when another pass was already running.
	Skipped bool
}

// Status is a point-in-time view of the engine.
type Status struct {
	Session     status.SessionState
	Since       time.Time
	QueueDepth  int
	Draining    bool
	Collection  string
	LastDrained time.Time
}

// Engine is the delivery core. Submit may run concurrently with Drain.
type Engine struct {
	store   remote.Store
	queue   *queue.Queue
	history *history.Cache
	tracker *status.Tracker
	journal Journal
	bus     *bus.Bus
	logger  *zap.Logger
	opts    Options

	draining    atomic.Bool
	lastDrained atomic.Int64
	kick        chan struct{}

	mu     sync.Mutex
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New creates an engine. journal and b may be nil.
func New(st remote.Store, q *queue.Queue, h *history.Cache, tracker *status.Tracker, journal Journal, b *bus.Bus, logger *zap.Logger, opts Options) *Engine {
	if opts.DrainDelay < 0 {
		opts.DrainDelay = 0
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	metrics.QueueDepth.Set(float64(q.Len()))
	return &Engine{
		store:   st,
		queue:   q,
		history: h,
		tracker: tracker,
		journal: journal,
		bus:     b,
		logger:  logger,
		opts:    opts,
		kick:    make(chan struct{}, 1),
	}
}

// Submit stamps text and tries to append it directly. On any failure the
// entry is queued instead; either way it is recorded in the history.
func (e *Engine) Submit(ctx context.Context, text string) (Receipt, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return Receipt{}, ErrEmptyText
	}
	entry := queue.NewEntry(text, e.opts.Now())

	err := e.ensureConnected(ctx)
	if err == nil {
		err = e.store.AppendRow(ctx, entry.Timestamp, entry.Text)
	}
	if err != nil {
		e.noteFailure(ctx, err)
		e.queue.Enqueue(entry)
		depth := e.queue.Len()
		metrics.QueueDepth.Set(float64(depth))
		metrics.Submissions.WithLabelValues("queued").Inc()
		e.logger.Warn("send failed, entry queued",
			zap.String("entry_id", entry.ID), zap.Int("queue_depth", depth), zap.Error(err))
		if e.opts.QueueWarnDepth > 0 && depth > e.opts.QueueWarnDepth {
			e.logger.Warn("offline queue is growing", zap.Int("queue_depth", depth), zap.Int("warn_depth", e.opts.QueueWarnDepth))
		}
		e.recordHistory(text)
		e.emit(bus.KindEntryQueued, QueuedEvent{Entry: entry, Reason: err.Error(), QueueDepth: depth})
		return Receipt{Entry: entry, Delivered: false, Err: err}, nil
	}

	e.tracker.MarkConnected()
	metrics.Submissions.WithLabelValues("delivered").Inc()
	e.recordHistory(text)
	e.recordDelivery(entry, store.ViaDirect)
	e.logger.Info("entry delivered", zap.String("entry_id", entry.ID))
	e.Kick()
	return Receipt{Entry: entry, Delivered: true}, nil
}

// Drain delivers queued entries oldest first, stopping at the first
// failure. Only one pass runs at a time; a concurrent call returns at once
// with Skipped set.
func (e *Engine) Drain(ctx context.Context) DrainResult {
	if e.queue.IsEmpty() {
		metrics.DrainRuns.WithLabelValues("empty").Inc()
		return DrainResult{}
	}
	if !e.draining.CompareAndSwap(false, true) {
		return DrainResult{Skipped: true, Remaining: e.queue.Len()}
	}
	defer e.draining.Store(false)

	if err := e.ensureConnected(ctx); err != nil {
		e.noteFailure(ctx, err)
		metrics.DrainRuns.WithLabelValues("offline").Inc()
		e.logger.Debug("drain skipped, store unreachable", zap.Error(err))
		return DrainResult{Remaining: e.queue.Len()}
	}

	e.logger.Info("draining offline queue", zap.Int("queue_depth", e.queue.Len()))
	e.emit(bus.KindDrainStarted, DrainEvent{Remaining: e.queue.Len()})

	var res DrainResult
	outcome := "complete"
	for {
		entry, ok := e.queue.PeekFront()
		if !ok {
			break
		}
		if err := e.store.AppendRow(ctx, entry.Timestamp, entry.Text); err != nil {
			e.noteFailure(ctx, err)
			e.logger.Warn("drain interrupted", zap.String("entry_id", entry.ID), zap.Error(err))
			outcome = "interrupted"
			break
		}
		e.queue.PopFront()
		res.Delivered++
		metrics.Drained.Inc()
		metrics.QueueDepth.Set(float64(e.queue.Len()))
		e.recordDelivery(entry, store.ViaDrain)

		if e.queue.IsEmpty() {
			break
		}
		if !sleepCtx(ctx, e.opts.DrainDelay) {
			outcome = "interrupted"
			break
		}
	}

	if res.Delivered > 0 {
		e.tracker.MarkConnected()
		e.lastDrained.Store(time.Now().UnixNano())
	}
	res.Remaining = e.queue.Len()
	metrics.DrainRuns.WithLabelValues(outcome).Inc()
	e.logger.Info("drain finished", zap.Int("delivered", res.Delivered), zap.Int("remaining", res.Remaining))
	e.emit(bus.KindDrainFinished, DrainEvent{Delivered: res.Delivered, Remaining: res.Remaining})
	return res
}

// Kick asks the drain worker for a pass. It never blocks; signals sent
// while one is pending are merged.
func (e *Engine) Kick() {
	select {
	case e.kick <- struct{}{}:
	default:
	}
}

// Start runs the drain worker until ctx is cancelled or Stop is called.
func (e *Engine) Start(ctx context.Context) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.cancel != nil {
		return
	}
	ctx, e.cancel = context.WithCancel(ctx)
	e.wg.Add(1)
	go func() {
		defer e.wg.Done()
		for {
			select {
			case <-e.kick:
				e.Drain(ctx)
			case <-ctx.Done():
				return
			}
		}
	}()
}

// Stop stops the worker and waits for an in-flight pass to return.
func (e *Engine) Stop() {
	e.mu.Lock()
	cancel := e.cancel
	e.cancel = nil
	e.mu.Unlock()
	if cancel != nil {
		cancel()
	}
	e.wg.Wait()
}

// Connect establishes or revalidates the remote session.
func (e *Engine) Connect(ctx context.Context) error {
	err := e.store.Connect(ctx)
	metrics.Connects.WithLabelValues(metrics.Result(err)).Inc()
	if err != nil {
		e.noteFailure(ctx, err)
		return err
	}
	e.tracker.MarkConnected()
	metrics.Online.Set(1)
	return nil
}

// UploadFile stores the file remotely and returns its link. Upload failures
// are returned to the caller and never queued.
func (e *Engine) UploadFile(ctx context.Context, path string) (string, error) {
	url, err := e.store.Upload(ctx, path)
	metrics.Uploads.WithLabelValues(metrics.Result(err)).Inc()
	if err != nil {
		e.logger.Warn("upload failed", zap.String("path", path), zap.Error(err))
		return "", remote.Wrap(remote.KindUpload, "upload", err)
	}
	if e.journal != nil {
		if jerr := e.journal.RecordUpload(store.Upload{FileName: filepath.Base(path), URL: url}); jerr != nil {
			e.logger.Error("journal upload failed", zap.Error(jerr))
		}
	}
	e.logger.Info("file uploaded", zap.String("path", path), zap.String("url", url))
	e.emit(bus.KindUploadDone, UploadEvent{Path: path, URL: url})
	return url, nil
}

// ListCollections returns the tabs of the spreadsheet.
func (e *Engine) ListCollections(ctx context.Context) ([]string, error) {
	names, err := e.store.ListCollections(ctx)
	if err != nil {
		if remote.IsKind(err, remote.KindConnect) {
			e.noteFailure(ctx, err)
		}
		return nil, err
	}
	e.tracker.MarkConnected()
	return names, nil
}

// SelectCollection switches the target tab.
func (e *Engine) SelectCollection(ctx context.Context, name string) error {
	if err := e.store.SelectCollection(ctx, name); err != nil {
		if remote.IsKind(err, remote.KindConnect) {
			e.noteFailure(ctx, err)
		}
		return err
	}
	e.tracker.MarkConnected()
	e.Kick()
	return nil
}

// Status reports session state, queue depth and the selected collection.
func (e *Engine) Status() Status {
	s := Status{
		Session:    e.tracker.Current(),
		Since:      e.tracker.Since(),
		QueueDepth: e.queue.Len(),
		Draining:   e.draining.Load(),
		Collection: e.store.Collection(),
	}
	if ns := e.lastDrained.Load(); ns != 0 {
		s.LastDrained = time.Unix(0, ns)
	}
	return s
}

// History returns up to count recent texts, newest first.
func (e *Engine) History(count int) []string {
	return e.history.GetLatest(count)
}

// ClearHistory empties the history.
func (e *Engine) ClearHistory() {
	e.history.Clear()
	e.emit(bus.KindHistoryUpdated, []string{})
}

// Queued returns the pending entries, oldest first.
func (e *Engine) Queued() []queue.Entry {
	return e.queue.Snapshot()
}

func (e *Engine) ensureConnected(ctx context.Context) error {
	if e.store.Connected() {
		return nil
	}
	return e.Connect(ctx)
}

// noteFailure records err against the session. A failure caused by the
// caller cancelling ctx says nothing about the remote and is ignored.
func (e *Engine) noteFailure(ctx context.Context, err error) {
	if ctx.Err() != nil {
		return
	}
	metrics.Online.Set(0)
	if errors.Is(err, remote.ErrNoSession) {
		e.tracker.MarkUnauthenticated()
		return
	}
	e.tracker.MarkDisconnected()
}

func (e *Engine) recordHistory(text string) {
	if e.history.Add(text) {
		e.emit(bus.KindHistoryUpdated, e.history.GetLatest(0))
	}
}

func (e *Engine) recordDelivery(entry queue.Entry, via store.Via) {
	sheet := e.store.Collection()
	if e.journal != nil {
		err := e.journal.RecordDelivery(store.Delivery{
			EntryID:   entry.ID,
			Text:      entry.Text,
			Timestamp: entry.Timestamp,
			Via:       via,
			Sheet:     sheet,
		})
		if err != nil {
			e.logger.Error("journal delivery failed", zap.String("entry_id", entry.ID), zap.Error(err))
		}
	}
	e.emit(bus.KindEntryDelivered, DeliveredEvent{Entry: entry, Via: via, Sheet: sheet})
}

func (e *Engine) emit(kind string, payload any) {
	if e.bus != nil {
		e.bus.Emit(kind, payload)
	}
}

func sleepCtx(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return true
	case <-ctx.Done():
		return false
	}
}
