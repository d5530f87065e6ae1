package engine

import (
	"github.com/matheus3301/nikki/internal/queue"
	"github.com/matheus3301/nikki/internal/store"
)

// DeliveredEvent is the payload of entry.delivered.
type DeliveredEvent struct {
	Entry queue.Entry
	Via   store.Via
	Sheet string
}

// QueuedEvent is the payload of entry.queued.
type QueuedEvent struct {
	Entry      queue.Entry
	Reason     string
	QueueDepth int
}

// DrainEvent is the payload of drain.started and drain.finished.
type DrainEvent struct {
	Delivered int
	Remaining int
}

// UploadEvent is the payload of upload.completed.
type UploadEvent struct {
	Path string
	URL  string
}
