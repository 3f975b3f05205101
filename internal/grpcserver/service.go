package grpcserver

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

// ServiceName is the fully qualified gRPC service name.
const ServiceName = "hrhelper.recruiter.v1.Recruiter"

// RecruiterServer is the server API for the Recruiter service. Requests and
// responses are google.protobuf.Struct documents.
type RecruiterServer interface {
	ScoreKeywords(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ListCVs(context.Context, *structpb.Struct) (*structpb.Struct, error)
	MoveCV(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GetStats(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

// RegisterRecruiterServer registers srv on s.
func RegisterRecruiterServer(s grpc.ServiceRegistrar, srv RecruiterServer) {
	s.RegisterService(&recruiterServiceDesc, srv)
}

var recruiterServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*RecruiterServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "ScoreKeywords", Handler: unaryHandler("ScoreKeywords", RecruiterServer.ScoreKeywords)},
		{MethodName: "ListCVs", Handler: unaryHandler("ListCVs", RecruiterServer.ListCVs)},
		{MethodName: "MoveCV", Handler: unaryHandler("MoveCV", RecruiterServer.MoveCV)},
		{MethodName: "GetStats", Handler: unaryHandler("GetStats", RecruiterServer.GetStats)},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "hrhelper/recruiter/v1/recruiter.proto",
}

type unaryMethod func(RecruiterServer, context.Context, *structpb.Struct) (*structpb.Struct, error)

func unaryHandler(name string, call unaryMethod) func(any, context.Context, func(any) error, grpc.UnaryServerInterceptor) (any, error) {
	fullMethod := "/" + ServiceName + "/" + name
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(structpb.Struct)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(RecruiterServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(RecruiterServer), ctx, req.(*structpb.Struct))
		}
		return interceptor(ctx, in, info, handler)
	}
}

// ─── Client ──────────────────────────────────────────────────────────────────

// Client calls a remote Recruiter service.
type Client struct {
	cc grpc.ClientConnInterface
}

// NewClient returns a Client using cc.
func NewClient(cc grpc.ClientConnInterface) *Client {
	return &Client{cc: cc}
}

func (c *Client) invoke(ctx context.Context, method string, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, "/"+ServiceName+"/"+method, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) ScoreKeywords(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, "ScoreKeywords", in, opts...)
}

func (c *Client) ListCVs(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, "ListCVs", in, opts...)
}

func (c *Client) MoveCV(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, "MoveCV", in, opts...)
}

func (c *Client) GetStats(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, "GetStats", in, opts...)
}
