package model

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/matheus3301/nikki/internal/api"
	"github.com/matheus3301/nikki/internal/bus"
	"github.com/matheus3301/nikki/internal/tui/ui"
)

// HistorySize is how many recent notes the capture page shows.
const HistorySize = 50

// Daemon is the slice of the control API the TUI uses.
type Daemon interface {
	Submit(ctx context.Context, text string) (api.SubmitResult, error)
	Upload(ctx context.Context, path string) (string, error)
	Drain(ctx context.Context) (api.DrainResult, error)
	Status(ctx context.Context) (api.StatusInfo, error)
	History(ctx context.Context, n int) ([]string, error)
	ClearHistory(ctx context.Context) error
	Queue(ctx context.Context) ([]api.QueueItem, error)
	ListSheets(ctx context.Context) ([]string, error)
	SelectSheet(ctx context.Context, name string) error
	Journal(ctx context.Context, n int) ([]api.JournalItem, error)
	WatchEvents(ctx context.Context, prefix string, fn func(api.EventInfo)) error
}

// ViewModel caches daemon state and signals UI refreshes.
type ViewModel struct {
	mu sync.RWMutex

	daemon  Daemon
	status  api.StatusInfo
	history []string
	queue   []api.QueueItem
	journal []api.JournalItem
	sheets  []string

	Flash *ui.FlashModel

	refreshCh chan struct{}
}

// NewViewModel creates a new view model connected to the daemon.
func NewViewModel(d Daemon) *ViewModel {
	return &ViewModel{
		daemon:    d,
		Flash:     ui.NewFlashModel(),
		refreshCh: make(chan struct{}, 1),
	}
}

// RefreshCh returns the channel that signals UI refresh.
func (vm *ViewModel) RefreshCh() <-chan struct{} {
	return vm.refreshCh
}

func (vm *ViewModel) signalRefresh() {
	select {
	case vm.refreshCh <- struct{}{}:
	default:
	}
}

// LoadStatus fetches the daemon status.
func (vm *ViewModel) LoadStatus(ctx context.Context) error {
	st, err := vm.daemon.Status(ctx)
	if err != nil {
		return err
	}
	vm.mu.Lock()
	vm.status = st
	vm.mu.Unlock()
	vm.signalRefresh()
	return nil
}

// LoadHistory fetches the most recent notes, newest first.
func (vm *ViewModel) LoadHistory(ctx context.Context) error {
	items, err := vm.daemon.History(ctx, HistorySize)
	if err != nil {
		return err
	}
	vm.mu.Lock()
	vm.history = items
	vm.mu.Unlock()
	vm.signalRefresh()
	return nil
}

// LoadQueue fetches the pending entries.
func (vm *ViewModel) LoadQueue(ctx context.Context) error {
	items, err := vm.daemon.Queue(ctx)
	if err != nil {
		return err
	}
	vm.mu.Lock()
	vm.queue = items
	vm.mu.Unlock()
	vm.signalRefresh()
	return nil
}

// LoadJournal fetches recent confirmed deliveries.
func (vm *ViewModel) LoadJournal(ctx context.Context) error {
	items, err := vm.daemon.Journal(ctx, 100)
	if err != nil {
		return err
	}
	vm.mu.Lock()
	vm.journal = items
	vm.mu.Unlock()
	vm.signalRefresh()
	return nil
}

// LoadSheets fetches the spreadsheet tabs.
func (vm *ViewModel) LoadSheets(ctx context.Context) error {
	items, err := vm.daemon.ListSheets(ctx)
	if err != nil {
		return err
	}
	vm.mu.Lock()
	vm.sheets = items
	vm.mu.Unlock()
	vm.signalRefresh()
	return nil
}

// Submit sends one note. A note that could not be delivered is queued by
// the daemon and reported as a warning, not an error.
func (vm *ViewModel) Submit(ctx context.Context, text string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	res, err := vm.daemon.Submit(ctx, text)
	if err != nil {
		vm.Flash.Err(fmt.Errorf("submit failed: %w", err))
		return err
	}
	if res.Delivered {
		vm.Flash.Info("Saved " + res.Timestamp)
	} else {
		vm.Flash.Warn("Queued for later: " + res.Error)
	}
	vm.refreshAfterChange(ctx)
	return nil
}

// UploadAndSubmit uploads the file at path and submits its link as a note.
func (vm *ViewModel) UploadAndSubmit(ctx context.Context, path string) error {
	path = strings.TrimSpace(path)
	if path == "" {
		err := fmt.Errorf("upload needs a file path")
		vm.Flash.Err(err)
		return err
	}
	url, err := vm.daemon.Upload(ctx, path)
	if err != nil {
		vm.Flash.Err(fmt.Errorf("upload failed: %w", err))
		return err
	}
	return vm.Submit(ctx, url)
}

// Drain asks the daemon to deliver the queue now.
func (vm *ViewModel) Drain(ctx context.Context) error {
	res, err := vm.daemon.Drain(ctx)
	if err != nil {
		vm.Flash.Err(fmt.Errorf("drain failed: %w", err))
		return err
	}
	switch {
	case res.Skipped:
		vm.Flash.Info("Drain already running")
	case res.Remaining > 0:
		vm.Flash.Warn(fmt.Sprintf("Delivered %d, %d still queued", res.Delivered, res.Remaining))
	default:
		vm.Flash.Info(fmt.Sprintf("Delivered %d", res.Delivered))
	}
	vm.refreshAfterChange(ctx)
	return nil
}

// SelectSheet switches the target tab.
func (vm *ViewModel) SelectSheet(ctx context.Context, name string) error {
	if err := vm.daemon.SelectSheet(ctx, name); err != nil {
		vm.Flash.Err(fmt.Errorf("select sheet: %w", err))
		return err
	}
	vm.Flash.Info("Writing to " + name)
	_ = vm.LoadStatus(ctx)
	return nil
}

// ClearHistory empties the local history.
func (vm *ViewModel) ClearHistory(ctx context.Context) error {
	if err := vm.daemon.ClearHistory(ctx); err != nil {
		vm.Flash.Err(fmt.Errorf("clear history: %w", err))
		return err
	}
	vm.Flash.Info("History cleared")
	return vm.LoadHistory(ctx)
}

// Watch follows daemon events and reloads what they touch until ctx is
// cancelled. A broken stream is retried after a short pause.
func (vm *ViewModel) Watch(ctx context.Context) {
	for {
		err := vm.daemon.WatchEvents(ctx, "", func(evt api.EventInfo) {
			vm.handleEvent(ctx, evt)
		})
		if ctx.Err() != nil {
			return
		}
		if err != nil {
			vm.Flash.Warn("Event stream lost: " + err.Error())
		}
		select {
		case <-ctx.Done():
			return
		case <-time.After(2 * time.Second):
		}
	}
}

func (vm *ViewModel) handleEvent(ctx context.Context, evt api.EventInfo) {
	switch evt.Kind {
	case bus.KindEntryDelivered, bus.KindEntryQueued, bus.KindHistoryUpdated:
		_ = vm.LoadHistory(ctx)
		_ = vm.LoadQueue(ctx)
	case bus.KindDrainFinished:
		_ = vm.LoadQueue(ctx)
		_ = vm.LoadJournal(ctx)
	case bus.KindStatusChanged:
		if evt.Detail != "" {
			vm.Flash.Info("Session " + evt.Detail)
		}
	case bus.KindConfigReloaded:
		vm.Flash.Info("Settings reloaded")
	}
	_ = vm.LoadStatus(ctx)
}

func (vm *ViewModel) refreshAfterChange(ctx context.Context) {
	_ = vm.LoadHistory(ctx)
	_ = vm.LoadQueue(ctx)
	_ = vm.LoadStatus(ctx)
}

// GetStatus returns a snapshot of the daemon status.
func (vm *ViewModel) GetStatus() api.StatusInfo {
	vm.mu.RLock()
	defer vm.mu.RUnlock()
	return vm.status
}

// GetHistory returns a snapshot of the recent notes.
func (vm *ViewModel) GetHistory() []string {
	vm.mu.RLock()
	defer vm.mu.RUnlock()
	return vm.history
}

// GetQueue returns a snapshot of the pending entries.
func (vm *ViewModel) GetQueue() []api.QueueItem {
	vm.mu.RLock()
	defer vm.mu.RUnlock()
	return vm.queue
}

// GetJournal returns a snapshot of recent deliveries.
func (vm *ViewModel) GetJournal() []api.JournalItem {
	vm.mu.RLock()
	defer vm.mu.RUnlock()
	return vm.journal
}

// GetSheets returns a snapshot of the spreadsheet tabs.
func (vm *ViewModel) GetSheets() []string {
	vm.mu.RLock()
	defer vm.mu.RUnlock()
	return vm.sheets
}
