package api

import (
	"errors"
	"net/http"

	"venuebook/internal/database"
	"venuebook/internal/service"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// errorBody is the JSON shape of every HTTP error response.
type errorBody struct {
	Error       string `json:"error"`
	ContactHost bool   `json:"contact_host,omitempty"`
}

// httpStatus maps service and storage errors onto HTTP responses.
func httpStatus(err error) (int, errorBody) {
	body := errorBody{Error: err.Error()}
	switch {
	case errors.Is(err, database.ErrVenueNotFound):
		return http.StatusNotFound, errorBody{Error: "venue not found"}
	case errors.Is(err, database.ErrBookingNotFound):
		return http.StatusNotFound, errorBody{Error: "booking not found"}
	case errors.Is(err, service.ErrQuoteOnly):
		body.ContactHost = true
		return http.StatusConflict, body
	case errors.Is(err, service.ErrDateUnavailable):
		return http.StatusConflict, body
	case errors.Is(err, service.ErrInvalidBooking), errors.Is(err, service.ErrDateTooFar):
		return http.StatusUnprocessableEntity, body
	default:
		return http.StatusInternalServerError, errorBody{Error: "internal error"}
	}
}

func grpcError(err error) error {
	switch {
	case errors.Is(err, database.ErrVenueNotFound), errors.Is(err, database.ErrBookingNotFound):
		return status.Error(codes.NotFound, err.Error())
	case errors.Is(err, service.ErrQuoteOnly), errors.Is(err, service.ErrDateUnavailable):
		return status.Error(codes.FailedPrecondition, err.Error())
	case errors.Is(err, service.ErrInvalidBooking), errors.Is(err, service.ErrDateTooFar):
		return status.Error(codes.InvalidArgument, err.Error())
	default:
		return status.Error(codes.Internal, "internal error")
	}
}
