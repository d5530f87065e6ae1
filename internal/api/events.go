package api

import (
	"fmt"
	"time"

	"github.com/matheus3301/nikki/internal/bus"
	"github.com/matheus3301/nikki/internal/config"
	"github.com/matheus3301/nikki/internal/engine"
	"github.com/matheus3301/nikki/internal/status"
)

func eventInfo(evt bus.Event) EventInfo {
	info := EventInfo{
		ID:   evt.ID,
		Kind: evt.Kind,
		Time: evt.Timestamp.Format(time.RFC3339),
	}
	switch p := evt.Payload.(type) {
	case engine.DeliveredEvent:
		info.Text = p.Entry.Text
		info.Detail = fmt.Sprintf("via %s to %s", p.Via, p.Sheet)
	case engine.QueuedEvent:
		info.Text = p.Entry.Text
		info.Detail = fmt.Sprintf("queued (%d pending): %s", p.QueueDepth, p.Reason)
	case engine.DrainEvent:
		info.Detail = fmt.Sprintf("delivered=%d remaining=%d", p.Delivered, p.Remaining)
	case engine.UploadEvent:
		info.Text = p.URL
		info.Detail = p.Path
	case status.StatusChange:
		info.Detail = p.To.Label()
	case []string:
		info.Detail = fmt.Sprintf("%d entries", len(p))
	case *config.Settings:
		info.Detail = "sheet " + p.SheetName
	}
	return info
}
