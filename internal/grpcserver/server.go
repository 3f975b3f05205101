// Package grpcserver implements the Recruiter gRPC server.
//
// It delegates all business logic to recruiting.Service and handles only
// the gRPC transport concerns: metadata extraction, error mapping and
// conversion between the domain model and structpb messages.
package grpcserver

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"hrhelper/recruiter-service/internal/matching"
	"hrhelper/recruiter-service/internal/model"
	"hrhelper/recruiter-service/internal/recruiting"
)

// Server implements RecruiterServer.
type Server struct {
	svc *recruiting.Service
}

var _ RecruiterServer = (*Server)(nil)

// NewServer constructs a Server backed by the given recruiting.Service.
func NewServer(svc *recruiting.Service) *Server {
	return &Server{svc: svc}
}

// New returns a grpc.Server with the Recruiter and health services
// registered and a zap logging interceptor installed.
func New(svc *recruiting.Service, log *zap.Logger) *grpc.Server {
	if log == nil {
		log = zap.NewNop()
	}
	gs := grpc.NewServer(grpc.UnaryInterceptor(loggingInterceptor(log.Named("grpc"))))
	RegisterRecruiterServer(gs, NewServer(svc))

	hs := health.NewServer()
	hs.SetServingStatus(ServiceName, healthpb.HealthCheckResponse_SERVING)
	healthpb.RegisterHealthServer(gs, hs)
	return gs
}

// ─── RPC implementations ──────────────────────────────────────────────────────

// ScoreKeywords scores a CV keyword list against an offer keyword list. It
// needs no caller identity.
func (s *Server) ScoreKeywords(_ context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	cv, err := stringList(req, "cv_keywords")
	if err != nil {
		return nil, err
	}
	offer, err := stringList(req, "offer_keywords")
	if err != nil {
		return nil, err
	}
	res := matching.Score(cv, offer)
	return structpb.NewStruct(map[string]any{
		"matched_keywords_count": res.Matched,
		"match_percentage":       res.Percentage,
	})
}

// ListCVs returns the CVs of one of the caller's offers, optionally
// filtered by status.
func (s *Server) ListCVs(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	userID, err := userIDFromCtx(ctx)
	if err != nil {
		return nil, err
	}
	offerID, err := intField(req, "job_offer_id")
	if err != nil {
		return nil, err
	}

	cvs, err := s.svc.ListCVs(ctx, userID, offerID, req.GetFields()["status"].GetStringValue())
	if err != nil {
		return nil, toGRPCError(err)
	}

	list := make([]any, 0, len(cvs))
	for i := range cvs {
		list = append(list, cvToMap(&cvs[i]))
	}
	return structpb.NewStruct(map[string]any{"cvs": list})
}

// MoveCV transitions a CV to accepted or rejected.
func (s *Server) MoveCV(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	userID, err := userIDFromCtx(ctx)
	if err != nil {
		return nil, err
	}
	offerID, err := intField(req, "job_offer_id")
	if err != nil {
		return nil, err
	}
	cvID, err := intField(req, "cv_id")
	if err != nil {
		return nil, err
	}

	cv, err := s.svc.MoveCV(ctx, userID, offerID, cvID, req.GetFields()["status"].GetStringValue())
	if err != nil {
		return nil, toGRPCError(err)
	}
	return structpb.NewStruct(cvToMap(cv))
}

// GetStats returns the CV counters of one of the caller's offers.
func (s *Server) GetStats(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	userID, err := userIDFromCtx(ctx)
	if err != nil {
		return nil, err
	}
	offerID, err := intField(req, "job_offer_id")
	if err != nil {
		return nil, err
	}

	st, err := s.svc.Stats(ctx, userID, offerID)
	if err != nil {
		return nil, toGRPCError(err)
	}
	return structpb.NewStruct(map[string]any{
		"total_cvs": st.TotalCVs,
		"accepted":  st.Accepted,
		"rejected":  st.Rejected,
	})
}

// ─── Helpers ─────────────────────────────────────────────────────────────────

// userIDFromCtx extracts the x-user-id value forwarded by the calling
// service via gRPC metadata.
func userIDFromCtx(ctx context.Context) (string, error) {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return "", status.Error(codes.Unauthenticated, "missing metadata")
	}
	vals := md.Get("x-user-id")
	if len(vals) == 0 || vals[0] == "" {
		return "", status.Error(codes.Unauthenticated, "missing x-user-id metadata")
	}
	return vals[0], nil
}

// toGRPCError maps domain errors to gRPC status errors.
func toGRPCError(err error) error {
	if errors.Is(err, recruiting.ErrNotFound) {
		return status.Error(codes.NotFound, err.Error())
	}
	if errors.Is(err, recruiting.ErrForbidden) {
		return status.Error(codes.PermissionDenied, err.Error())
	}
	var ve *recruiting.ValidationError
	if errors.As(err, &ve) {
		return status.Error(codes.InvalidArgument, ve.Msg)
	}
	return status.Error(codes.Internal, "internal server error")
}

func intField(req *structpb.Struct, name string) (int64, error) {
	v, ok := req.GetFields()[name]
	if !ok {
		return 0, status.Errorf(codes.InvalidArgument, "%s is required", name)
	}
	n, ok := v.GetKind().(*structpb.Value_NumberValue)
	if !ok || n.NumberValue != float64(int64(n.NumberValue)) {
		return 0, status.Errorf(codes.InvalidArgument, "%s must be an integer", name)
	}
	return int64(n.NumberValue), nil
}

func stringList(req *structpb.Struct, name string) ([]string, error) {
	v, ok := req.GetFields()[name]
	if !ok {
		return []string{}, nil
	}
	lv := v.GetListValue()
	if lv == nil {
		return nil, status.Errorf(codes.InvalidArgument, "%s must be a list of strings", name)
	}
	out := make([]string, 0, len(lv.GetValues()))
	for i, item := range lv.GetValues() {
		s, ok := item.GetKind().(*structpb.Value_StringValue)
		if !ok {
			return nil, status.Errorf(codes.InvalidArgument, "%s[%d] must be a string", name, i)
		}
		out = append(out, s.StringValue)
	}
	return out, nil
}

// cvToMap converts a model.CV to a structpb-compatible map. Unscored
// percentages are sent as null.
func cvToMap(cv *model.CV) map[string]any {
	kws := make([]any, 0, len(cv.Keywords))
	for _, k := range cv.Keywords {
		kws = append(kws, k)
	}
	m := map[string]any{
		"id":                     cv.ID,
		"job_offer_id":           cv.JobOfferID,
		"first_name":             cv.FirstName,
		"last_name":              cv.LastName,
		"keywords":               kws,
		"status":                 string(cv.Status),
		"created_at":             cv.CreatedAt.UTC().Format(time.RFC3339),
		"match_percentage":       nil,
		"matched_keywords_count": nil,
	}
	if cv.MatchPercentage != nil {
		m["match_percentage"] = *cv.MatchPercentage
	}
	if cv.MatchedKeywordsCount != nil {
		m["matched_keywords_count"] = *cv.MatchedKeywordsCount
	}
	return m
}

func loggingInterceptor(log *zap.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		start := time.Now()
		resp, err := handler(ctx, req)
		fields := []zap.Field{
			zap.String("method", info.FullMethod),
			zap.String("code", status.Code(err).String()),
			zap.Duration("took", time.Since(start)),
		}
		if status.Code(err) == codes.Internal {
			log.Error("rpc failed", append(fields, zap.Error(err))...)
		} else {
			log.Debug("rpc", fields...)
		}
		return resp, err
	}
}
