package api

import (
	"context"
	"errors"
	"io/fs"

	"github.com/matheus3301/nikki/internal/engine"
	"github.com/matheus3301/nikki/internal/remote"
	"google.golang.org/grpc/codes"
	grpcstatus "google.golang.org/grpc/status"
)

// toStatus maps core errors to gRPC status codes.
func toStatus(op string, err error) error {
	if err == nil {
		return nil
	}
	code := codes.Internal
	switch {
	case errors.Is(err, engine.ErrEmptyText):
		code = codes.InvalidArgument
	case errors.Is(err, remote.ErrNoSession):
		code = codes.Unauthenticated
	case errors.Is(err, remote.ErrNotConfigured):
		code = codes.FailedPrecondition
	case errors.Is(err, remote.ErrNotFound), errors.Is(err, fs.ErrNotExist):
		code = codes.NotFound
	case errors.Is(err, context.Canceled):
		code = codes.Canceled
	case errors.Is(err, context.DeadlineExceeded):
		code = codes.DeadlineExceeded
	case remote.IsKind(err, remote.KindConnect):
		code = codes.Unavailable
	}
	return grpcstatus.Errorf(code, "%s: %v", op, err)
}
