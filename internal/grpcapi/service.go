// Package grpcapi exposes the feature store over gRPC, field-for-field
// grounded on original_source/grpc-server/src/server.rs's FeastGrpcService.
package grpcapi

import (
	"context"
	"fmt"
	"time"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	apierrors "github.com/feast-serving/engine/internal/errors"
	"github.com/feast-serving/engine/internal/featurestore"
	"github.com/feast-serving/engine/internal/model"
	"github.com/feast-serving/engine/internal/proto/feast/serving"
	"github.com/feast-serving/engine/internal/proto/feast/types"
)

// ServingVersion is returned verbatim by GetFeastServingInfo, the Go
// analogue of the original's env!("CARGO_PKG_VERSION").
const ServingVersion = "0.1.0"

// FeastGrpcService adapts a *featurestore.FeatureStore to the
// ServingServiceServer RPC surface.
type FeastGrpcService struct {
	store *featurestore.FeatureStore
}

// NewFeastGrpcService builds the gRPC adapter over store.
func NewFeastGrpcService(store *featurestore.FeatureStore) *FeastGrpcService {
	return &FeastGrpcService{store: store}
}

// GetFeastServingInfo reports the running server's version.
func (s *FeastGrpcService) GetFeastServingInfo(context.Context, *serving.GetFeastServingInfoRequest) (*serving.GetFeastServingInfoResponse, error) {
	return &serving.GetFeastServingInfoResponse{Version: ServingVersion}, nil
}

// GetOnlineFeatures converts the wire request, calls the core, and converts
// the response back.
func (s *FeastGrpcService) GetOnlineFeatures(ctx context.Context, req *serving.GetOnlineFeaturesRequest) (*serving.GetOnlineFeaturesResponse, error) {
	modelReq, entityOrder, err := fromRequestProto(req)
	if err != nil {
		return nil, err
	}
	modelReq.EntityOrder = entityOrder

	resp, err := s.store.GetOnlineFeatures(ctx, modelReq)
	if err != nil {
		code := codes.Internal
		switch apierrors.HTTPStatus(err) {
		case 404:
			code = codes.NotFound
		case 400:
			code = codes.InvalidArgument
		}
		return nil, status.Errorf(code, "failed to retrieve online features: %v", err)
	}

	return toResponseProto(resp), nil
}

// fromRequestProto is the Go analogue of server.rs's
// FeastGrpcService::from_request_proto. Entity order is recovered from the
// wire map's iteration here, same limitation server.rs doesn't have to deal
// with (protobuf maps are unordered too, but the original has no concept of
// a deterministic column order for gRPC requests either).
func fromRequestProto(req *serving.GetOnlineFeaturesRequest) (*model.GetOnlineFeatureRequest, []string, error) {
	if (req.FeatureService == nil) == (len(req.Features) == 0) {
		return nil, nil, status.Error(codes.InvalidArgument, "exactly one of feature_service or features must be set")
	}

	entities := make(map[string][]model.EntityIdValue, len(req.Entities))
	order := make([]string, 0, len(req.Entities))
	for name, values := range req.Entities {
		ids, err := repeatedValueToEntityIDs(name, values)
		if err != nil {
			return nil, nil, err
		}
		entities[name] = ids
		order = append(order, name)
	}

	return &model.GetOnlineFeatureRequest{
		Entities:         entities,
		FeatureService:   req.FeatureService,
		Features:         req.Features,
		FullFeatureNames: req.FullFeatureNames,
	}, order, nil
}

func repeatedValueToEntityIDs(entityName string, values *serving.RepeatedValue) ([]model.EntityIdValue, error) {
	if values == nil {
		return nil, nil
	}
	ids := make([]model.EntityIdValue, len(values.Val))
	for i, v := range values.Val {
		id, err := valueToEntityID(v)
		if err != nil {
			return nil, status.Errorf(codes.InvalidArgument, "invalid value for entity %s at index %d: %v", entityName, i, err)
		}
		ids[i] = id
	}
	return ids, nil
}

func valueToEntityID(v *types.Value) (model.EntityIdValue, error) {
	switch {
	case v == nil:
		return model.EntityIdValue{}, fmt.Errorf("missing value")
	case v.StringVal != nil:
		return model.NewEntityIDString(*v.StringVal), nil
	case v.Int64Val != nil:
		return model.NewEntityIDInt(*v.Int64Val), nil
	case v.Int32Val != nil:
		return model.NewEntityIDInt(int64(*v.Int32Val)), nil
	default:
		return model.EntityIdValue{}, fmt.Errorf("unsupported entity value type")
	}
}

// toResponseProto is the Go analogue of to_response_proto.
func toResponseProto(resp *model.GetOnlineFeatureResponse) *serving.GetOnlineFeaturesResponse {
	results := make([]*serving.FeatureVector, len(resp.Results))
	for i, col := range resp.Results {
		results[i] = featureResultToProto(col)
	}
	return &serving.GetOnlineFeaturesResponse{
		FeatureNames: resp.Metadata.FeatureNames,
		Results:      results,
		Status:       true,
	}
}

func featureResultToProto(col model.FeatureResults) *serving.FeatureVector {
	statuses := make([]int32, len(col.Statuses))
	for i, st := range col.Statuses {
		statuses[i] = mapStatusToProto(st)
	}
	timestamps := make([]*serving.Timestamp, len(col.EventTimestamps))
	for i, ts := range col.EventTimestamps {
		timestamps[i] = datetimeToTimestamp(ts)
	}
	return &serving.FeatureVector{
		Values:          col.Values,
		Statuses:        statuses,
		EventTimestamps: timestamps,
	}
}

// mapStatusToProto mirrors map_status_to_proto's enum assignment exactly:
// Invalid=0, Present=1, NullValue=2, NotFound=3, OutsideMaxAge=4.
func mapStatusToProto(s model.FeatureStatus) int32 {
	switch s {
	case model.FeatureStatusPresent:
		return 1
	case model.FeatureStatusNullValue:
		return 2
	case model.FeatureStatusNotFound:
		return 3
	case model.FeatureStatusOutsideMaxAge:
		return 4
	default:
		return 0
	}
}

func datetimeToTimestamp(t time.Time) *serving.Timestamp {
	return &serving.Timestamp{Seconds: t.Unix(), Nanos: int32(t.Nanosecond())}
}
