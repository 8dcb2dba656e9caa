package bot

import (
	"errors"
	"net/http"

	"venuebook/internal/backend"
)

const (
	msgRateLimited   = "⚠️ You are sending messages too quickly. Please wait a moment."
	msgGenericError  = "❌ Something went wrong while processing your request. Please try again later."
	msgVenueNotFound = "⚠️ This venue is no longer available. Send /start to pick another one."
	msgNoVenue       = "Pick a venue first. Send /start to see the list."
	msgBadTimes      = "⚠️ Send the times as HH:MM-HH:MM, for example 14:00-17:00."
	msgBadAttendees  = "⚠️ Send the number of attendees as a whole number, for example 25."
	msgNotHost       = "⛔ This command is only available to hosts."
)

func (b *Bot) getErrorMessage(err error) string {
	if err == nil {
		return ""
	}

	var se *backend.StatusError
	if !errors.As(err, &se) {
		return msgGenericError
	}

	switch {
	case se.ContactHost:
		return "ℹ️ This venue is priced on request. Use the button below to contact the host."
	case se.StatusCode == http.StatusNotFound:
		return msgVenueNotFound
	case se.StatusCode == http.StatusConflict:
		return "⚠️ Some of the selected dates are not available: " + se.Message
	case se.StatusCode == http.StatusUnprocessableEntity:
		return "⚠️ " + se.Message
	case se.StatusCode == http.StatusTooManyRequests:
		return msgRateLimited
	}

	// Default error message
	return msgGenericError
}
