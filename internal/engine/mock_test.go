package engine

import (
	"context"
	"errors"
	"sync"

	"github.com/matheus3301/nikki/internal/remote"
)

type row struct {
	Timestamp string
	Text      string
}

// mockStore is an in-memory remote.Store with switchable failures.
type mockStore struct {
	mu           sync.Mutex
	connected    bool
	connectErr   error
	appendErr    error
	failOnAppend int // fail the n-th append (1-based), 0 disables
	appends      int
	connects     int
	rows         []row
	block        chan struct{}     // when set, AppendRow waits on it
	afterAppend  func(text string) // runs after a row is stored
	uploadURL    string
	uploadErr    error
	uploads      []string
	collections  []string
	collection   string
}

func newMockStore() *mockStore {
	return &mockStore{
		connected:   true,
		collections: []string{"Notes", "Ideas"},
		collection:  "Notes",
	}
}

func (m *mockStore) Connect(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.connects++
	if m.connectErr != nil {
		m.connected = false
		return remote.Wrap(remote.KindConnect, "open spreadsheet", m.connectErr)
	}
	m.connected = true
	return nil
}

func (m *mockStore) Connected() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.connected
}

func (m *mockStore) AppendRow(ctx context.Context, timestamp, text string) error {
	m.mu.Lock()
	block := m.block
	m.mu.Unlock()
	if block != nil {
		select {
		case <-block:
		case <-ctx.Done():
			return remote.Wrap(remote.KindSend, "append row", ctx.Err())
		}
	}

	m.mu.Lock()
	m.appends++
	if m.appendErr != nil || (m.failOnAppend > 0 && m.appends == m.failOnAppend) {
		m.connected = false
		err := m.appendErr
		m.mu.Unlock()
		if err == nil {
			err = errors.New("network unreachable")
		}
		return remote.Wrap(remote.KindSend, "append row", err)
	}
	m.rows = append(m.rows, row{Timestamp: timestamp, Text: text})
	hook := m.afterAppend
	m.mu.Unlock()

	if hook != nil {
		hook(text)
	}
	return nil
}

func (m *mockStore) Upload(_ context.Context, path string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.uploadErr != nil {
		return "", m.uploadErr
	}
	m.uploads = append(m.uploads, path)
	return m.uploadURL, nil
}

func (m *mockStore) ListCollections(context.Context) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.connectErr != nil {
		return nil, remote.Wrap(remote.KindConnect, "open spreadsheet", m.connectErr)
	}
	return append([]string(nil), m.collections...), nil
}

func (m *mockStore) SelectCollection(_ context.Context, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range m.collections {
		if c == name {
			m.collection = name
			return nil
		}
	}
	return remote.Wrap(remote.KindCollection, "select sheet", remote.ErrNotFound)
}

func (m *mockStore) Collection() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.collection
}

func (m *mockStore) setOnline(online bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if online {
		m.connectErr = nil
		m.appendErr = nil
		return
	}
	m.connected = false
	m.connectErr = errors.New("dial tcp: no route to host")
	m.appendErr = errors.New("dial tcp: no route to host")
}

func (m *mockStore) texts() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.rows))
	for i, r := range m.rows {
		out[i] = r.Text
	}
	return out
}

func (m *mockStore) connectCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.connects
}

var _ remote.Store = (*mockStore)(nil)
