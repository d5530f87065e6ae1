package api

import (
	"context"
	"strings"
	"time"

	"github.com/matheus3301/nikki/internal/bus"
	"github.com/matheus3301/nikki/internal/engine"
	"github.com/matheus3301/nikki/internal/store"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	grpcstatus "google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// JournalReader lists journaled deliveries. *store.DB implements it.
type JournalReader interface {
	RecentDeliveries(limit int) ([]store.Delivery, error)
	DeliveryCount() (int, error)
}

// Service implements CaptureServer on top of the engine.
type Service struct {
	profile   string
	startedAt time.Time
	engine    *engine.Engine
	journal   JournalReader
	bus       *bus.Bus
	logger    *zap.Logger
}

var _ CaptureServer = (*Service)(nil)

// NewService creates the capture service. journal may be nil.
func NewService(profile string, e *engine.Engine, journal JournalReader, b *bus.Bus, logger *zap.Logger) *Service {
	return &Service{
		profile:   profile,
		startedAt: time.Now(),
		engine:    e,
		journal:   journal,
		bus:       b,
		logger:    logger,
	}
}

func (s *Service) Submit(ctx context.Context, req *wrapperspb.StringValue) (*structpb.Struct, error) {
	r, err := s.engine.Submit(ctx, req.GetValue())
	if err != nil {
		return nil, toStatus("submit", err)
	}
	res := SubmitResult{
		EntryID:   r.Entry.ID,
		Timestamp: r.Entry.Timestamp,
		Delivered: r.Delivered,
	}
	if r.Err != nil {
		res.Error = r.Err.Error()
	}
	return encodeOrInternal(res)
}

func (s *Service) Upload(ctx context.Context, req *wrapperspb.StringValue) (*wrapperspb.StringValue, error) {
	path := strings.TrimSpace(req.GetValue())
	if path == "" {
		return nil, grpcstatus.Error(codes.InvalidArgument, "upload: empty path")
	}
	url, err := s.engine.UploadFile(ctx, path)
	if err != nil {
		return nil, toStatus("upload", err)
	}
	return wrapperspb.String(url), nil
}

// Drain runs a pass on a context detached from the caller, so a client
// hanging up mid-append neither aborts the pass nor marks the session down.
func (s *Service) Drain(ctx context.Context, _ *emptypb.Empty) (*structpb.Struct, error) {
	r := s.engine.Drain(context.WithoutCancel(ctx))
	return encodeOrInternal(DrainResult{Delivered: r.Delivered, Remaining: r.Remaining, Skipped: r.Skipped})
}

func (s *Service) Status(_ context.Context, _ *emptypb.Empty) (*structpb.Struct, error) {
	st := s.engine.Status()
	info := StatusInfo{
		Profile:       s.profile,
		State:         st.Session.Label(),
		Authenticated: st.Session.Authenticated,
		Connected:     st.Session.Connected,
		Since:         st.Since.Format(time.RFC3339),
		QueueDepth:    st.QueueDepth,
		Draining:      st.Draining,
		Sheet:         st.Collection,
		UptimeSeconds: int(time.Since(s.startedAt).Seconds()),
	}
	if !st.LastDrained.IsZero() {
		info.LastDrained = st.LastDrained.Format(time.RFC3339)
	}
	if s.journal != nil {
		if n, err := s.journal.DeliveryCount(); err == nil {
			info.Deliveries = n
		}
	}
	return encodeOrInternal(info)
}

func (s *Service) History(_ context.Context, req *wrapperspb.Int32Value) (*structpb.ListValue, error) {
	return Strings(s.engine.History(int(req.GetValue()))), nil
}

func (s *Service) ClearHistory(_ context.Context, _ *emptypb.Empty) (*emptypb.Empty, error) {
	s.engine.ClearHistory()
	return &emptypb.Empty{}, nil
}

func (s *Service) Queue(_ context.Context, _ *emptypb.Empty) (*structpb.Struct, error) {
	entries := s.engine.Queued()
	list := QueueList{Items: make([]QueueItem, 0, len(entries))}
	for _, e := range entries {
		list.Items = append(list.Items, QueueItem{ID: e.ID, Text: e.Text, Timestamp: e.Timestamp})
	}
	return encodeOrInternal(list)
}

func (s *Service) ListSheets(ctx context.Context, _ *emptypb.Empty) (*structpb.ListValue, error) {
	names, err := s.engine.ListCollections(ctx)
	if err != nil {
		return nil, toStatus("list sheets", err)
	}
	return Strings(names), nil
}

func (s *Service) SelectSheet(ctx context.Context, req *wrapperspb.StringValue) (*emptypb.Empty, error) {
	if err := s.engine.SelectCollection(ctx, req.GetValue()); err != nil {
		return nil, toStatus("select sheet", err)
	}
	return &emptypb.Empty{}, nil
}

func (s *Service) Journal(_ context.Context, req *wrapperspb.Int32Value) (*structpb.Struct, error) {
	if s.journal == nil {
		return nil, grpcstatus.Error(codes.Unavailable, "journal not available")
	}
	rows, err := s.journal.RecentDeliveries(int(req.GetValue()))
	if err != nil {
		return nil, grpcstatus.Errorf(codes.Internal, "journal: %v", err)
	}
	list := JournalList{Items: make([]JournalItem, 0, len(rows))}
	for _, d := range rows {
		list.Items = append(list.Items, JournalItem{
			EntryID:     d.EntryID,
			Text:        d.Text,
			Timestamp:   d.Timestamp,
			Via:         string(d.Via),
			Sheet:       d.Sheet,
			DeliveredAt: time.UnixMilli(d.DeliveredAt).Format(time.RFC3339),
		})
	}
	return encodeOrInternal(list)
}

// WatchEvents streams bus events whose kind starts with the requested
// prefix until the client goes away.
func (s *Service) WatchEvents(req *wrapperspb.StringValue, stream grpc.ServerStream) error {
	ch, unsub := s.bus.Subscribe(req.GetValue(), 64)
	defer unsub()

	ctx := stream.Context()
	for {
		select {
		case evt := <-ch:
			msg, err := Encode(eventInfo(evt))
			if err != nil {
				s.logger.Warn("skip unencodable event", zap.String("kind", evt.Kind), zap.Error(err))
				continue
			}
			if err := stream.SendMsg(msg); err != nil {
				return err
			}
		case <-ctx.Done():
			return nil
		}
	}
}

func encodeOrInternal(v any) (*structpb.Struct, error) {
	s, err := Encode(v)
	if err != nil {
		return nil, grpcstatus.Error(codes.Internal, err.Error())
	}
	return s, nil
}
