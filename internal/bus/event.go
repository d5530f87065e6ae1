package bus

import "time"

// Event kinds published by the delivery core.
const (
	KindEntryDelivered = "entry.delivered"
	KindEntryQueued    = "entry.queued"
	KindDrainStarted   = "drain.started"
	KindDrainFinished  = "drain.finished"
	KindHistoryUpdated = "history.updated"
	KindStatusChanged  = "session.status_changed"
	KindUploadDone     = "upload.completed"
	KindConfigReloaded = "config.reloaded"
)

// Event represents a domain event published on the bus.
type Event struct {
	ID        string
	Kind      string
	Timestamp time.Time
	Payload   any
}
