package api

import (
	"context"
	"errors"
	"net"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/matheus3301/nikki/internal/bus"
	"github.com/matheus3301/nikki/internal/engine"
	"github.com/matheus3301/nikki/internal/history"
	"github.com/matheus3301/nikki/internal/queue"
	"github.com/matheus3301/nikki/internal/remote"
	"github.com/matheus3301/nikki/internal/status"
	"github.com/matheus3301/nikki/internal/store"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	grpcstatus "google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// fakeStore accepts every row unless offline is set.
type fakeStore struct {
	mu      sync.Mutex
	offline bool
	rows    []string
	sheet   string
	block   chan struct{} // when set, AppendRow waits on it or ctx
}

func (f *fakeStore) Connect(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.offline {
		return remote.Wrap(remote.KindConnect, "open spreadsheet", errors.New("offline"))
	}
	return nil
}

func (f *fakeStore) Connected() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return !f.offline
}

func (f *fakeStore) AppendRow(ctx context.Context, _, text string) error {
	f.mu.Lock()
	block := f.block
	f.mu.Unlock()
	if block != nil {
		select {
		case <-block:
		case <-ctx.Done():
			return remote.Wrap(remote.KindSend, "append row", ctx.Err())
		}
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.offline {
		return remote.Wrap(remote.KindSend, "append row", errors.New("offline"))
	}
	f.rows = append(f.rows, text)
	return nil
}

func (f *fakeStore) Upload(_ context.Context, path string) (string, error) {
	if path == "/missing" {
		return "", remote.Wrap(remote.KindUpload, "open file", errors.New("no such file"))
	}
	return "https://drive.google.com/file/d/abc/view", nil
}

func (f *fakeStore) ListCollections(context.Context) ([]string, error) {
	return []string{"Notes", "Ideas"}, nil
}

func (f *fakeStore) SelectCollection(_ context.Context, name string) error {
	if name != "Notes" && name != "Ideas" {
		return remote.Wrap(remote.KindCollection, "select sheet", remote.ErrNotFound)
	}
	f.mu.Lock()
	f.sheet = name
	f.mu.Unlock()
	return nil
}

func (f *fakeStore) Collection() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.sheet
}

type testEnv struct {
	conn  *grpc.ClientConn
	store *fakeStore
	db    *store.DB
}

func startService(t *testing.T) *testEnv {
	t.Helper()
	dir := t.TempDir()
	logger := zap.NewNop()
	b := bus.New()

	db, err := store.Open(filepath.Join(dir, "journal.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = db.Close() })
	if _, err := db.Migrate(); err != nil {
		t.Fatal(err)
	}

	fs := &fakeStore{sheet: "Notes"}
	q := queue.Open(filepath.Join(dir, "offline_queue.json"), logger)
	h := history.Open(filepath.Join(dir, "local_history.json"), logger)
	e := engine.New(fs, q, h, status.NewTracker(b), db, b, logger, engine.Options{})

	lis := bufconn.Listen(1 << 20)
	srv := grpc.NewServer()
	Register(srv, NewService("test", e, db, b, logger))
	go func() { _ = srv.Serve(lis) }()
	t.Cleanup(srv.Stop)

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = conn.Close() })
	return &testEnv{conn: conn, store: fs, db: db}
}

func invoke(t *testing.T, conn *grpc.ClientConn, method string, in, out any) error {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return conn.Invoke(ctx, FullMethod(method), in, out)
}

func TestSubmitDeliveredAndQueued(t *testing.T) {
	env := startService(t)

	out := &structpb.Struct{}
	if err := invoke(t, env.conn, MethodSubmit, wrapperspb.String("hello"), out); err != nil {
		t.Fatal(err)
	}
	var res SubmitResult
	if err := Decode(out, &res); err != nil {
		t.Fatal(err)
	}
	if !res.Delivered || res.EntryID == "" || res.Timestamp == "" {
		t.Errorf("result = %+v", res)
	}

	env.store.mu.Lock()
	env.store.offline = true
	env.store.mu.Unlock()

	out = &structpb.Struct{}
	if err := invoke(t, env.conn, MethodSubmit, wrapperspb.String("later"), out); err != nil {
		t.Fatal(err)
	}
	res = SubmitResult{}
	if err := Decode(out, &res); err != nil {
		t.Fatal(err)
	}
	if res.Delivered || res.Error == "" {
		t.Errorf("offline result = %+v, want queued with error", res)
	}

	q := &structpb.Struct{}
	if err := invoke(t, env.conn, MethodQueue, &emptypb.Empty{}, q); err != nil {
		t.Fatal(err)
	}
	var list QueueList
	if err := Decode(q, &list); err != nil {
		t.Fatal(err)
	}
	if len(list.Items) != 1 || list.Items[0].Text != "later" {
		t.Errorf("queue = %+v", list.Items)
	}
}

func TestSubmitEmptyIsInvalidArgument(t *testing.T) {
	env := startService(t)

	err := invoke(t, env.conn, MethodSubmit, wrapperspb.String("  "), &structpb.Struct{})
	if grpcstatus.Code(err) != codes.InvalidArgument {
		t.Errorf("code = %v, want InvalidArgument", grpcstatus.Code(err))
	}
}

func TestDrainAndStatus(t *testing.T) {
	env := startService(t)
	env.store.mu.Lock()
	env.store.offline = true
	env.store.mu.Unlock()
	for _, s := range []string{"a", "b"} {
		if err := invoke(t, env.conn, MethodSubmit, wrapperspb.String(s), &structpb.Struct{}); err != nil {
			t.Fatal(err)
		}
	}

	st := &structpb.Struct{}
	if err := invoke(t, env.conn, MethodStatus, &emptypb.Empty{}, st); err != nil {
		t.Fatal(err)
	}
	var info StatusInfo
	if err := Decode(st, &info); err != nil {
		t.Fatal(err)
	}
	if info.Profile != "test" || info.QueueDepth != 2 || info.Connected || info.Sheet != "Notes" {
		t.Errorf("status = %+v", info)
	}

	env.store.mu.Lock()
	env.store.offline = false
	env.store.mu.Unlock()

	out := &structpb.Struct{}
	if err := invoke(t, env.conn, MethodDrain, &emptypb.Empty{}, out); err != nil {
		t.Fatal(err)
	}
	var dr DrainResult
	if err := Decode(out, &dr); err != nil {
		t.Fatal(err)
	}
	if dr.Delivered != 2 || dr.Remaining != 0 {
		t.Errorf("drain = %+v", dr)
	}

	j := &structpb.Struct{}
	if err := invoke(t, env.conn, MethodJournal, wrapperspb.Int32(10), j); err != nil {
		t.Fatal(err)
	}
	var jl JournalList
	if err := Decode(j, &jl); err != nil {
		t.Fatal(err)
	}
	if len(jl.Items) != 2 || jl.Items[0].Via != string(store.ViaDrain) {
		t.Errorf("journal = %+v", jl.Items)
	}
}

func TestDrainSurvivesClientHangup(t *testing.T) {
	env := startService(t)
	env.store.mu.Lock()
	env.store.offline = true
	env.store.mu.Unlock()
	if err := invoke(t, env.conn, MethodSubmit, wrapperspb.String("late"), &structpb.Struct{}); err != nil {
		t.Fatal(err)
	}

	release := make(chan struct{})
	env.store.mu.Lock()
	env.store.offline = false
	env.store.block = release
	env.store.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	err := env.conn.Invoke(ctx, FullMethod(MethodDrain), &emptypb.Empty{}, &structpb.Struct{})
	if code := grpcstatus.Code(err); code != codes.DeadlineExceeded {
		t.Fatalf("drain err = %v, want DeadlineExceeded", err)
	}
	close(release)

	deadline := time.Now().Add(2 * time.Second)
	for {
		st := &structpb.Struct{}
		if err := invoke(t, env.conn, MethodStatus, &emptypb.Empty{}, st); err != nil {
			t.Fatal(err)
		}
		var info StatusInfo
		if err := Decode(st, &info); err != nil {
			t.Fatal(err)
		}
		if info.QueueDepth == 0 && info.Connected {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("drain did not finish after the client left: %+v", info)
		}
		time.Sleep(10 * time.Millisecond)
	}

	env.store.mu.Lock()
	defer env.store.mu.Unlock()
	if len(env.store.rows) != 1 || env.store.rows[0] != "late" {
		t.Errorf("rows = %v, want [late]", env.store.rows)
	}
}

func TestHistoryAndClear(t *testing.T) {
	env := startService(t)
	for _, s := range []string{"one", "two"} {
		if err := invoke(t, env.conn, MethodSubmit, wrapperspb.String(s), &structpb.Struct{}); err != nil {
			t.Fatal(err)
		}
	}

	lv := &structpb.ListValue{}
	if err := invoke(t, env.conn, MethodHistory, wrapperspb.Int32(1), lv); err != nil {
		t.Fatal(err)
	}
	if got := FromStrings(lv); len(got) != 1 || got[0] != "two" {
		t.Errorf("history = %v, want [two]", got)
	}

	if err := invoke(t, env.conn, MethodClearHistory, &emptypb.Empty{}, &emptypb.Empty{}); err != nil {
		t.Fatal(err)
	}
	lv = &structpb.ListValue{}
	if err := invoke(t, env.conn, MethodHistory, wrapperspb.Int32(0), lv); err != nil {
		t.Fatal(err)
	}
	if got := FromStrings(lv); len(got) != 0 {
		t.Errorf("history after clear = %v", got)
	}
}

func TestSheets(t *testing.T) {
	env := startService(t)

	lv := &structpb.ListValue{}
	if err := invoke(t, env.conn, MethodListSheets, &emptypb.Empty{}, lv); err != nil {
		t.Fatal(err)
	}
	if got := FromStrings(lv); len(got) != 2 {
		t.Errorf("sheets = %v", got)
	}

	if err := invoke(t, env.conn, MethodSelectSheet, wrapperspb.String("Ideas"), &emptypb.Empty{}); err != nil {
		t.Fatal(err)
	}
	if env.store.Collection() != "Ideas" {
		t.Errorf("sheet = %q", env.store.Collection())
	}

	err := invoke(t, env.conn, MethodSelectSheet, wrapperspb.String("Nope"), &emptypb.Empty{})
	if grpcstatus.Code(err) != codes.NotFound {
		t.Errorf("code = %v, want NotFound", grpcstatus.Code(err))
	}
}

func TestUpload(t *testing.T) {
	env := startService(t)

	out := &wrapperspb.StringValue{}
	if err := invoke(t, env.conn, MethodUpload, wrapperspb.String("/tmp/a.png"), out); err != nil {
		t.Fatal(err)
	}
	if out.GetValue() == "" {
		t.Error("empty url")
	}

	err := invoke(t, env.conn, MethodUpload, wrapperspb.String("/missing"), &wrapperspb.StringValue{})
	if grpcstatus.Code(err) != codes.Internal {
		t.Errorf("code = %v, want Internal", grpcstatus.Code(err))
	}
	err = invoke(t, env.conn, MethodUpload, wrapperspb.String(""), &wrapperspb.StringValue{})
	if grpcstatus.Code(err) != codes.InvalidArgument {
		t.Errorf("code = %v, want InvalidArgument", grpcstatus.Code(err))
	}
}

func TestWatchEvents(t *testing.T) {
	env := startService(t)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	stream, err := env.conn.NewStream(ctx, &CaptureDesc.Streams[0], FullMethod(MethodWatchEvents))
	if err != nil {
		t.Fatal(err)
	}
	if err := stream.SendMsg(wrapperspb.String("entry.")); err != nil {
		t.Fatal(err)
	}
	if err := stream.CloseSend(); err != nil {
		t.Fatal(err)
	}

	// The subscription is registered asynchronously; keep submitting until
	// an event arrives.
	got := make(chan EventInfo, 1)
	go func() {
		msg := &structpb.Struct{}
		if err := stream.RecvMsg(msg); err != nil {
			return
		}
		var info EventInfo
		if Decode(msg, &info) == nil {
			got <- info
		}
	}()

	tick := time.NewTicker(50 * time.Millisecond)
	defer tick.Stop()
	for {
		select {
		case info := <-got:
			if info.Kind != bus.KindEntryDelivered || info.Text != "ping" {
				t.Errorf("event = %+v", info)
			}
			return
		case <-tick.C:
			if err := invoke(t, env.conn, MethodSubmit, wrapperspb.String("ping"), &structpb.Struct{}); err != nil {
				t.Fatal(err)
			}
		case <-ctx.Done():
			t.Fatal("no event received")
		}
	}
}
