package api

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// ServiceName is the fully qualified gRPC service name.
const ServiceName = "nikki.v1.Capture"

// Method names.
const (
	MethodSubmit       = "Submit"
	MethodUpload       = "Upload"
	MethodDrain        = "Drain"
	MethodStatus       = "Status"
	MethodHistory      = "History"
	MethodClearHistory = "ClearHistory"
	MethodQueue        = "Queue"
	MethodListSheets   = "ListSheets"
	MethodSelectSheet  = "SelectSheet"
	MethodJournal      = "Journal"
	MethodWatchEvents  = "WatchEvents"
)

// FullMethod returns "/nikki.v1.Capture/<method>".
func FullMethod(method string) string {
	return "/" + ServiceName + "/" + method
}

// CaptureServer is the server API for nikki.v1.Capture.
type CaptureServer interface {
	Submit(context.Context, *wrapperspb.StringValue) (*structpb.Struct, error)
	Upload(context.Context, *wrapperspb.StringValue) (*wrapperspb.StringValue, error)
	Drain(context.Context, *emptypb.Empty) (*structpb.Struct, error)
	Status(context.Context, *emptypb.Empty) (*structpb.Struct, error)
	History(context.Context, *wrapperspb.Int32Value) (*structpb.ListValue, error)
	ClearHistory(context.Context, *emptypb.Empty) (*emptypb.Empty, error)
	Queue(context.Context, *emptypb.Empty) (*structpb.Struct, error)
	ListSheets(context.Context, *emptypb.Empty) (*structpb.ListValue, error)
	SelectSheet(context.Context, *wrapperspb.StringValue) (*emptypb.Empty, error)
	Journal(context.Context, *wrapperspb.Int32Value) (*structpb.Struct, error)
	WatchEvents(*wrapperspb.StringValue, grpc.ServerStream) error
}

// CaptureDesc describes nikki.v1.Capture for grpc.Server.RegisterService
// and for client streams.
var CaptureDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*CaptureServer)(nil),
	Methods: []grpc.MethodDesc{
		unary(MethodSubmit, newString, CaptureServer.Submit),
		unary(MethodUpload, newString, CaptureServer.Upload),
		unary(MethodDrain, newEmpty, CaptureServer.Drain),
		unary(MethodStatus, newEmpty, CaptureServer.Status),
		unary(MethodHistory, newInt32, CaptureServer.History),
		unary(MethodClearHistory, newEmpty, CaptureServer.ClearHistory),
		unary(MethodQueue, newEmpty, CaptureServer.Queue),
		unary(MethodListSheets, newEmpty, CaptureServer.ListSheets),
		unary(MethodSelectSheet, newString, CaptureServer.SelectSheet),
		unary(MethodJournal, newInt32, CaptureServer.Journal),
	},
	Streams: []grpc.StreamDesc{
		{
			StreamName:    MethodWatchEvents,
			Handler:       watchEventsHandler,
			ServerStreams: true,
		},
	},
	Metadata: "nikki/v1/capture.proto",
}

// Register attaches srv to s.
func Register(s grpc.ServiceRegistrar, srv CaptureServer) {
	s.RegisterService(&CaptureDesc, srv)
}

func newString() *wrapperspb.StringValue { return new(wrapperspb.StringValue) }
func newInt32() *wrapperspb.Int32Value { return new(wrapperspb.Int32Value) }
func newEmpty() *emptypb.Empty { return new(emptypb.Empty) }

func unary[Req, Resp proto.Message](method string, newReq func() Req, call func(CaptureServer, context.Context, Req) (Resp, error)) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: method,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := newReq()
			if err := dec(in); err != nil {
				return nil, err
			}
			handler := func(ctx context.Context, req any) (any, error) {
				out, err := call(srv.(CaptureServer), ctx, req.(Req))
				if err != nil {
					return nil, err
				}
				return out, nil
			}
			if interceptor == nil {
				return handler(ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: FullMethod(method)}
			return interceptor(ctx, in, info, handler)
		},
	}
}

func watchEventsHandler(srv any, stream grpc.ServerStream) error {
	in := new(wrapperspb.StringValue)
	if err := stream.RecvMsg(in); err != nil {
		return err
	}
	return srv.(CaptureServer).WatchEvents(in, stream)
}
