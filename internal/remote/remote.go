// Package remote defines the narrow interface the delivery core uses to
// reach the tabular store and the file store.
package remote

import (
	"context"
	"errors"
	"fmt"
)

// Store appends timestamped rows to a collection (a spreadsheet tab) and
// uploads files. Implementations must be safe for concurrent use.
type Store interface {
	// Connect establishes or validates the authenticated session. It is a
	// no-op when already connected.
	Connect(ctx context.Context) error
	// Connected reports whether a session is currently established.
	Connected() bool
	AppendRow(ctx context.Context, timestamp, text string) error
	// Upload stores the file at path and returns a URL to view it.
	Upload(ctx context.Context, path string) (string, error)
	ListCollections(ctx context.Context) ([]string, error)
	SelectCollection(ctx context.Context, name string) error
	// Collection returns the name of the currently selected collection.
	Collection() string
}

// Kind classifies remote failures. Send failures are not split into
// transient and permanent: every one of them is retried.
type Kind int

const (
	KindConnect Kind = iota + 1
	KindSend
	KindUpload
	KindCollection
)

func (k Kind) String() string {
	switch k {
	case KindConnect:
		return "connect"
	case KindSend:
		return "send"
	case KindUpload:
		return "upload"
	case KindCollection:
		return "collection"
	default:
		return "unknown"
	}
}

var (
	// ErrNoSession means no stored credentials exist yet.
	ErrNoSession = errors.New("no stored session")
	// ErrNotConfigured means a required identifier is missing.
	ErrNotConfigured = errors.New("remote store not configured")
	// ErrNotFound means a named collection or folder does not exist.
	ErrNotFound = errors.New("not found")
)

// Error is the typed failure returned by Store implementations.
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Kind, e.Op, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Wrap builds an *Error, returning nil for a nil err. An err that is
// already an *Error keeps its kind.
func Wrap(kind Kind, op string, err error) error {
	if err == nil {
		return nil
	}
	var re *Error
	if errors.As(err, &re) {
		return err
	}
	return &Error{Kind: kind, Op: op, Err: err}
}

// IsKind reports whether err carries the given kind.
func IsKind(err error, kind Kind) bool {
	var re *Error
	return errors.As(err, &re) && re.Kind == kind
}

// KindOf returns the kind of err, or 0 when it is not an *Error.
func KindOf(err error) Kind {
	var re *Error
	if errors.As(err, &re) {
		return re.Kind
	}
	return 0
}
