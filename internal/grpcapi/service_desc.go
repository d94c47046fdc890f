package grpcapi

import (
	"context"

	"google.golang.org/grpc"

	"github.com/feast-serving/engine/internal/proto/feast/serving"
)

// ServingServiceServer is the RPC surface a feature store serves,
// grounded on original_source/grpc-server/src/server.rs's ServingService
// trait.
type ServingServiceServer interface {
	GetFeastServingInfo(context.Context, *serving.GetFeastServingInfoRequest) (*serving.GetFeastServingInfoResponse, error)
	GetOnlineFeatures(context.Context, *serving.GetOnlineFeaturesRequest) (*serving.GetOnlineFeaturesResponse, error)
}

// RegisterServingServiceServer registers srv on s, the hand-written
// analogue of a protoc-gen-go-grpc RegisterXxxServer function.
func RegisterServingServiceServer(s grpc.ServiceRegistrar, srv ServingServiceServer) {
	s.RegisterService(&servingServiceDesc, srv)
}

func servingGetFeastServingInfoHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(serving.GetFeastServingInfoRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(ServingServiceServer).GetFeastServingInfo(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/feast.serving.ServingService/GetFeastServingInfo"}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(ServingServiceServer).GetFeastServingInfo(ctx, req.(*serving.GetFeastServingInfoRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func servingGetOnlineFeaturesHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(serving.GetOnlineFeaturesRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(ServingServiceServer).GetOnlineFeatures(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/feast.serving.ServingService/GetOnlineFeatures"}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(ServingServiceServer).GetOnlineFeatures(ctx, req.(*serving.GetOnlineFeaturesRequest))
	}
	return interceptor(ctx, in, info, handler)
}

var servingServiceDesc = grpc.ServiceDesc{
	ServiceName: "feast.serving.ServingService",
	HandlerType: (*ServingServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "GetFeastServingInfo", Handler: servingGetFeastServingInfoHandler},
		{MethodName: "GetOnlineFeatures", Handler: servingGetOnlineFeaturesHandler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "feast/serving/serving.proto",
}
