package daemon

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/matheus3301/nikki/internal/api"
	"github.com/matheus3301/nikki/internal/bus"
	"github.com/matheus3301/nikki/internal/config"
	"github.com/matheus3301/nikki/internal/engine"
	"github.com/matheus3301/nikki/internal/history"
	"github.com/matheus3301/nikki/internal/lock"
	"github.com/matheus3301/nikki/internal/queue"
	"github.com/matheus3301/nikki/internal/remote"
	"github.com/matheus3301/nikki/internal/status"
	"github.com/matheus3301/nikki/internal/store"
	"github.com/matheus3301/nikki/internal/tui/client"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// sheetStore is an in-memory spreadsheet that can be switched offline.
type sheetStore struct {
	mu      sync.Mutex
	offline bool
	rows    []string
	sheet   string
}

func (s *sheetStore) setOffline(v bool) {
	s.mu.Lock()
	s.offline = v
	s.mu.Unlock()
}

func (s *sheetStore) Connect(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.offline {
		return remote.Wrap(remote.KindConnect, "open spreadsheet", errors.New("offline"))
	}
	return nil
}

func (s *sheetStore) Connected() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return !s.offline
}

func (s *sheetStore) AppendRow(_ context.Context, _, text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.offline {
		return remote.Wrap(remote.KindSend, "append row", errors.New("offline"))
	}
	s.rows = append(s.rows, text)
	return nil
}

func (s *sheetStore) Upload(context.Context, string) (string, error) {
	return "https://drive.google.com/file/d/x/view", nil
}

func (s *sheetStore) ListCollections(context.Context) ([]string, error) {
	return []string{"Notes", "Ideas"}, nil
}

func (s *sheetStore) SelectCollection(_ context.Context, name string) error {
	if name != "Notes" && name != "Ideas" {
		return remote.Wrap(remote.KindCollection, "select sheet", remote.ErrNotFound)
	}
	s.mu.Lock()
	s.sheet = name
	s.mu.Unlock()
	return nil
}

func (s *sheetStore) Collection() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sheet
}

func (s *sheetStore) texts() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.rows...)
}

// shortTempDir keeps socket paths under the 104-char limit on macOS.
func shortTempDir(t *testing.T) string {
	t.Helper()
	dir, err := os.MkdirTemp("/tmp", "nikki-test-*")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = os.RemoveAll(dir) })
	return dir
}

func newTestEngine(t *testing.T, dir string, st remote.Store, b *bus.Bus) (*engine.Engine, *store.DB) {
	t.Helper()
	logger := zap.NewNop()
	db, err := store.Open(filepath.Join(dir, "journal.db"))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := db.Migrate(); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = db.Close() })

	q := queue.Open(filepath.Join(dir, "offline_queue.json"), logger)
	h := history.Open(filepath.Join(dir, "local_history.json"), logger)
	return engine.New(st, q, h, status.NewTracker(b), db, b, logger, engine.Options{}), db
}

func dial(t *testing.T, socketPath string) *client.Client {
	t.Helper()
	c, err := client.New(socketPath)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func TestDaemonLifecycle(t *testing.T) {
	dir := shortTempDir(t)
	socketPath := filepath.Join(dir, "d.sock")

	lk, err := lock.Acquire(dir)
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = lk.Release() }()

	logger, _ := zap.NewDevelopment()
	b := bus.New()
	st := &sheetStore{sheet: "Notes"}
	e, db := newTestEngine(t, dir, st, b)

	srv, err := NewServer(Params{Profile: "test", SocketPath: socketPath}, logger, api.NewService("test", e, db, b, logger))
	if err != nil {
		t.Fatal(err)
	}
	go func() { _ = srv.Start() }()
	defer srv.Stop(context.Background())

	c := dial(t, socketPath)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	info, err := c.Status(ctx)
	if err != nil {
		t.Fatalf("Status error = %v", err)
	}
	if info.Profile != "test" || info.State != "DISCONNECTED" {
		t.Errorf("status = %+v, want DISCONNECTED before first send", info)
	}

	// Online submission.
	res, err := c.Submit(ctx, "first")
	if err != nil {
		t.Fatalf("Submit error = %v", err)
	}
	if !res.Delivered {
		t.Errorf("first submit = %+v, want delivered", res)
	}

	// Offline submissions are queued.
	st.setOffline(true)
	for _, s := range []string{"second", "third"} {
		res, err := c.Submit(ctx, s)
		if err != nil {
			t.Fatal(err)
		}
		if res.Delivered {
			t.Errorf("%s delivered while offline", s)
		}
	}
	items, err := c.Queue(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(items) != 2 || items[0].Text != "second" {
		t.Errorf("queue = %+v", items)
	}

	// Back online: explicit drain.
	st.setOffline(false)
	dr, err := c.Drain(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if dr.Remaining != 0 {
		t.Errorf("drain = %+v", dr)
	}
	got := st.texts()
	if len(got) != 3 || got[0] != "first" || got[1] != "second" || got[2] != "third" {
		t.Errorf("rows = %v", got)
	}

	hist, err := c.History(ctx, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(hist) != 3 || hist[0] != "third" {
		t.Errorf("history = %v", hist)
	}

	journal, err := c.Journal(ctx, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(journal) != 3 {
		t.Errorf("journal has %d rows, want 3", len(journal))
	}

	info, err = c.Status(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if info.State != "ONLINE" || info.QueueDepth != 0 || info.Deliveries != 3 {
		t.Errorf("final status = %+v", info)
	}
}

func TestServerRestoresRemovedSocket(t *testing.T) {
	dir := shortTempDir(t)
	socketPath := filepath.Join(dir, "d.sock")
	logger := zap.NewNop()
	b := bus.New()
	e, db := newTestEngine(t, dir, &sheetStore{sheet: "Notes"}, b)

	srv, err := NewServer(Params{Profile: "test", SocketPath: socketPath}, logger, api.NewService("test", e, db, b, logger))
	if err != nil {
		t.Fatal(err)
	}
	go func() { _ = srv.Start() }()
	defer srv.Stop(context.Background())

	deadline := time.Now().Add(2 * time.Second)
	for !srv.Alive() {
		if time.Now().After(deadline) {
			t.Fatal("server never became alive")
		}
		time.Sleep(10 * time.Millisecond)
	}

	if err := os.Remove(socketPath); err != nil {
		t.Fatal(err)
	}
	if srv.Alive() {
		t.Fatal("server reported alive without its socket")
	}
	if err := srv.Restore(context.Background()); err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if _, err := dial(t, socketPath).Status(ctx); err != nil {
		t.Fatalf("Status after restore: %v", err)
	}
	if !srv.Alive() {
		t.Error("server should be alive after restore")
	}
}

func TestReloaderSelectsSheet(t *testing.T) {
	dir := t.TempDir()
	b := bus.New()
	st := &sheetStore{sheet: "Notes"}
	e, _ := newTestEngine(t, dir, st, b)

	reload := newReloader("Notes", e, b, zap.NewNop())

	reload(&config.Settings{SheetName: "Ideas"})
	if st.Collection() != "Ideas" {
		t.Errorf("sheet = %q, want Ideas", st.Collection())
	}

	reload(&config.Settings{SheetName: "Missing"})
	if st.Collection() != "Ideas" {
		t.Errorf("unknown sheet should be ignored, got %q", st.Collection())
	}
}

// TestFxModuleWiring verifies the fx dependency graph resolves without errors.
func TestFxModuleWiring(t *testing.T) {
	dir := shortTempDir(t)
	t.Setenv("NIKKI_HOME", dir)

	p := Params{Profile: "fxtest", SocketPath: filepath.Join(dir, "d.sock")}
	if err := fx.ValidateApp(Module(p), fx.NopLogger); err != nil {
		t.Fatalf("fx graph invalid: %v", err)
	}
}
