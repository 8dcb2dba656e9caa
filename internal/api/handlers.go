package api

import (
	"context"
	"encoding/json"
	"strings"

	"venuebook/internal/models"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

const (
	quoteServiceName = "venuebook.booking.v1.QuoteService"
	quoteMethod      = "/" + quoteServiceName + "/Quote"
	listVenuesMethod = "/" + quoteServiceName + "/ListVenues"
)

// QuoteServiceServer carries its messages as google.protobuf.Struct so the
// service needs no generated code. Field names match the HTTP JSON bodies.
type QuoteServiceServer interface {
	Quote(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
	ListVenues(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
}

var quoteServiceDesc = grpc.ServiceDesc{
	ServiceName: quoteServiceName,
	HandlerType: (*QuoteServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Quote", Handler: quoteHandler},
		{MethodName: "ListVenues", Handler: listVenuesHandler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "venuebook/booking/v1/quote.proto",
}

func RegisterQuoteServiceServer(s grpc.ServiceRegistrar, srv QuoteServiceServer) {
	s.RegisterService(&quoteServiceDesc, srv)
}

func quoteHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(QuoteServiceServer).Quote(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: quoteMethod}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(QuoteServiceServer).Quote(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}

func listVenuesHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(QuoteServiceServer).ListVenues(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: listVenuesMethod}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(QuoteServiceServer).ListVenues(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}

type QuoteService struct {
	venues   VenueReader
	bookings BookingFlow
}

func NewQuoteService(venues VenueReader, bookings BookingFlow) *QuoteService {
	return &QuoteService{venues: venues, bookings: bookings}
}

func (s *QuoteService) Quote(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	raw, err := in.MarshalJSON()
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, "invalid request")
	}
	var body models.BookingDetails
	if err := json.Unmarshal(raw, &body); err != nil {
		return nil, status.Error(codes.InvalidArgument, "invalid request: "+err.Error())
	}
	if strings.TrimSpace(body.VenueID) == "" {
		return nil, status.Error(codes.InvalidArgument, "venue_id is required")
	}
	req, err := body.Request()
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}

	q, err := s.bookings.Quote(ctx, body.VenueID, req)
	if err != nil {
		return nil, grpcError(err)
	}
	return toStruct(q)
}

func (s *QuoteService) ListVenues(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	venueType := ""
	if v, ok := in.GetFields()["type"]; ok {
		venueType = strings.TrimSpace(v.GetStringValue())
	}
	venues, err := s.venues.ListVenues(ctx, venueType)
	if err != nil {
		return nil, grpcError(err)
	}
	if venues == nil {
		venues = []*models.Venue{}
	}
	return toStruct(map[string]any{"venues": venues})
}

// toStruct converts any JSON-encodable value into a Struct.
func toStruct(v any) (*structpb.Struct, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, status.Error(codes.Internal, "encode response")
	}
	out := &structpb.Struct{}
	if err := out.UnmarshalJSON(raw); err != nil {
		return nil, status.Error(codes.Internal, "encode response")
	}
	return out, nil
}
