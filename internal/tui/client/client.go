package client

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/matheus3301/nikki/internal/api"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// Client is a typed wrapper over the daemon's nikki.v1.Capture service.
type Client struct {
	conn *grpc.ClientConn
}

// New dials the daemon's Unix domain socket.
func New(socketPath string) (*Client, error) {
	conn, err := grpc.NewClient(
		"unix://"+socketPath,
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	if err != nil {
		return nil, fmt.Errorf("dial daemon: %w", err)
	}
	return &Client{conn: conn}, nil
}

// NewFromConn wraps an existing connection.
func NewFromConn(conn *grpc.ClientConn) *Client {
	return &Client{conn: conn}
}

// Close closes the gRPC connection.
func (c *Client) Close() error {
	return c.conn.Close()
}

func (c *Client) invoke(ctx context.Context, method string, in, out any) error {
	return c.conn.Invoke(ctx, api.FullMethod(method), in, out)
}

func (c *Client) invokeStruct(ctx context.Context, method string, in any, v any) error {
	out := &structpb.Struct{}
	if err := c.invoke(ctx, method, in, out); err != nil {
		return err
	}
	return api.Decode(out, v)
}

// Submit sends one note.
func (c *Client) Submit(ctx context.Context, text string) (api.SubmitResult, error) {
	var res api.SubmitResult
	err := c.invokeStruct(ctx, api.MethodSubmit, wrapperspb.String(text), &res)
	return res, err
}

// Upload stores a local file remotely and returns its link.
func (c *Client) Upload(ctx context.Context, path string) (string, error) {
	out := &wrapperspb.StringValue{}
	if err := c.invoke(ctx, api.MethodUpload, wrapperspb.String(path), out); err != nil {
		return "", err
	}
	return out.GetValue(), nil
}

// Drain runs a drain pass and waits for it.
func (c *Client) Drain(ctx context.Context) (api.DrainResult, error) {
	var res api.DrainResult
	err := c.invokeStruct(ctx, api.MethodDrain, &emptypb.Empty{}, &res)
	return res, err
}

// Status returns the daemon status.
func (c *Client) Status(ctx context.Context) (api.StatusInfo, error) {
	var res api.StatusInfo
	err := c.invokeStruct(ctx, api.MethodStatus, &emptypb.Empty{}, &res)
	return res, err
}

// History returns up to n recent texts, newest first. n <= 0 returns all.
func (c *Client) History(ctx context.Context, n int) ([]string, error) {
	out := &structpb.ListValue{}
	if err := c.invoke(ctx, api.MethodHistory, wrapperspb.Int32(int32(n)), out); err != nil {
		return nil, err
	}
	return api.FromStrings(out), nil
}

// ClearHistory empties the history.
func (c *Client) ClearHistory(ctx context.Context) error {
	return c.invoke(ctx, api.MethodClearHistory, &emptypb.Empty{}, &emptypb.Empty{})
}

// Queue lists pending entries, oldest first.
func (c *Client) Queue(ctx context.Context) ([]api.QueueItem, error) {
	var res api.QueueList
	err := c.invokeStruct(ctx, api.MethodQueue, &emptypb.Empty{}, &res)
	return res.Items, err
}

// ListSheets lists the spreadsheet tabs.
func (c *Client) ListSheets(ctx context.Context) ([]string, error) {
	out := &structpb.ListValue{}
	if err := c.invoke(ctx, api.MethodListSheets, &emptypb.Empty{}, out); err != nil {
		return nil, err
	}
	return api.FromStrings(out), nil
}

// SelectSheet switches the target tab.
func (c *Client) SelectSheet(ctx context.Context, name string) error {
	return c.invoke(ctx, api.MethodSelectSheet, wrapperspb.String(name), &emptypb.Empty{})
}

// Journal lists up to n journaled deliveries, newest first.
func (c *Client) Journal(ctx context.Context, n int) ([]api.JournalItem, error) {
	var res api.JournalList
	err := c.invokeStruct(ctx, api.MethodJournal, wrapperspb.Int32(int32(n)), &res)
	return res.Items, err
}

// WatchEvents streams daemon events whose kind starts with prefix into fn
// until ctx is cancelled or the stream breaks.
func (c *Client) WatchEvents(ctx context.Context, prefix string, fn func(api.EventInfo)) error {
	stream, err := c.conn.NewStream(ctx, &api.CaptureDesc.Streams[0], api.FullMethod(api.MethodWatchEvents))
	if err != nil {
		return err
	}
	if err := stream.SendMsg(wrapperspb.String(prefix)); err != nil {
		return err
	}
	if err := stream.CloseSend(); err != nil {
		return err
	}
	for {
		msg := &structpb.Struct{}
		if err := stream.RecvMsg(msg); err != nil {
			if errors.Is(err, io.EOF) || ctx.Err() != nil {
				return nil
			}
			return err
		}
		var info api.EventInfo
		if err := api.Decode(msg, &info); err != nil {
			continue
		}
		fn(info)
	}
}
