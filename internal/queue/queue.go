package queue

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/matheus3301/nikki/internal/snapshot"
	"go.uber.org/zap"
)

// TimestampLayout is the human-readable submission time written to the sheet.
const TimestampLayout = "2006-01-02 15:04:05"

// Entry is one submission awaiting delivery. Entries are never modified
// after creation.
type Entry struct {
	ID         string
	Text       string
	Timestamp  string
	EnqueuedAt time.Time
}

// NewEntry stamps text with the submission time.
func NewEntry(text string, now time.Time) Entry {
	return Entry{
		ID:         uuid.NewString(),
		Text:       text,
		Timestamp:  now.Format(TimestampLayout),
		EnqueuedAt: now,
	}
}

// record is the on-disk shape. added_at is unix seconds as a float so files
// written by earlier releases load unchanged.
type record struct {
	ID        string  `json:"id,omitempty"`
	Text      string  `json:"text"`
	Timestamp string  `json:"timestamp"`
	AddedAt   float64 `json:"added_at"`
}

func toRecord(e Entry) record {
	r := record{ID: e.ID, Text: e.Text, Timestamp: e.Timestamp}
	if !e.EnqueuedAt.IsZero() {
		r.AddedAt = float64(e.EnqueuedAt.UnixNano()) / 1e9
	}
	return r
}

func fromRecord(r record) Entry {
	e := Entry{ID: r.ID, Text: r.Text, Timestamp: r.Timestamp}
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if r.AddedAt > 0 {
		e.EnqueuedAt = time.Unix(0, int64(r.AddedAt*1e9))
	}
	return e
}

// Queue is a mutex-guarded FIFO persisted as a JSON array after every
// mutation. A failed write is logged and the in-memory sequence stays
// authoritative.
type Queue struct {
	mu      sync.Mutex
	path    string
	entries []Entry
	logger  *zap.Logger
}

// Open loads the queue at path. A missing file yields an empty queue; an
// unreadable one is moved aside and the queue starts empty.
func Open(path string, logger *zap.Logger) *Queue {
	q := &Queue{path: path, logger: logger}

	var records []record
	exists, err := snapshot.Read(path, &records)
	switch {
	case err != nil && exists:
		dest, qerr := snapshot.Quarantine(path)
		logger.Error("offline queue unreadable, starting empty",
			zap.String("path", path), zap.String("moved_to", dest), zap.Error(err), zap.NamedError("quarantine_error", qerr))
		return q
	case err != nil:
		logger.Error("failed to load offline queue", zap.String("path", path), zap.Error(err))
		return q
	}

	for _, r := range records {
		q.entries = append(q.entries, fromRecord(r))
	}
	if len(q.entries) > 0 {
		logger.Info("offline queue loaded", zap.Int("entries", len(q.entries)))
	}
	return q
}

// Enqueue appends e at the tail and persists before returning.
func (q *Queue) Enqueue(e Entry) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.entries = append(q.entries, e)
	q.persist()
	q.logger.Info("entry queued", zap.String("id", e.ID), zap.String("text", preview(e.Text)), zap.Int("depth", len(q.entries)))
}

// PeekFront returns the oldest entry without removing it.
func (q *Queue) PeekFront() (Entry, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.entries) == 0 {
		return Entry{}, false
	}
	return q.entries[0], true
}

// PopFront removes the oldest entry and persists. Call it only after the
// remote store confirmed that entry.
func (q *Queue) PopFront() (Entry, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.entries) == 0 {
		return Entry{}, false
	}
	e := q.entries[0]
	q.entries[0] = Entry{}
	q.entries = q.entries[1:]
	q.persist()
	return e, true
}

// IsEmpty reports whether nothing is pending.
func (q *Queue) IsEmpty() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.entries) == 0
}

// Len returns the number of pending entries.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.entries)
}

// Snapshot returns a copy of the pending entries, oldest first.
func (q *Queue) Snapshot() []Entry {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := make([]Entry, len(q.entries))
	copy(out, q.entries)
	return out
}

// persist must be called with q.mu held.
func (q *Queue) persist() {
	records := make([]record, 0, len(q.entries))
	for _, e := range q.entries {
		records = append(records, toRecord(e))
	}
	if err := snapshot.Write(q.path, records); err != nil {
		q.logger.Error("failed to save offline queue", zap.String("path", q.path), zap.Error(err))
	}
}

func preview(s string) string {
	r := []rune(s)
	if len(r) <= 20 {
		return s
	}
	return string(r[:20]) + "..."
}
