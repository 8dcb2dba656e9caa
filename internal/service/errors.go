package service

import (
	"errors"
	"fmt"
)

var (
	ErrQuoteOnly       = errors.New("venue is quote-only, contact the host")
	ErrDateUnavailable = errors.New("selected dates are not available")
	ErrInvalidBooking  = errors.New("invalid booking request")

	// ErrPastDate is also an ErrDateUnavailable.
	ErrPastDate   = fmt.Errorf("%w: booking date is in the past", ErrDateUnavailable)
	ErrDateTooFar = errors.New("booking date is too far in the future")
)
