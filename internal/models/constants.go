package models

const (
	ParseModeMarkdown = "Markdown"
	ParseModeHTML     = "HTML"
)

const (
	StepMainMenu      = "main_menu"
	StepSelectVenue   = "select_venue"
	StepSelectDates   = "select_dates"
	StepEnterTimes    = "enter_times"
	StepEnterGuests   = "enter_attendees"
	StepConfirmation  = "confirmation"
	StepContactHost   = "contact_host"
	StepDatesSelected = "dates_selected"
)

const (
	// DefaultStateTTL lifetime of a user's conversation state in Redis, seconds
	DefaultStateTTL = 24 * 60 * 60

	// DefaultCleaningFee flat surcharge added to every priced booking
	DefaultCleaningFee = 50.0

	// DefaultServiceFeeRate share of the base price charged as service fee
	DefaultServiceFeeRate = 0.10

	// DefaultCapacity used when a venue does not report capacity
	DefaultCapacity = 100

	// DefaultAttendees attendee count of a new request and of a quote that omits it
	DefaultAttendees = 2

	// DefaultMinBookingHours minimum duration for hourly venues without their own value
	DefaultMinBookingHours = 2

	// DefaultMaxBookingDays how far ahead a booking may start
	DefaultMaxBookingDays = 365

	// RateLimitMessages messages allowed per user within RateLimitWindow
	RateLimitMessages = 20

	// RateLimitWindow rate limit window, seconds
	RateLimitWindow = 60

	// DefaultVenueCacheTTL lifetime of cached venue lookups in Redis, seconds
	DefaultVenueCacheTTL = 5 * 60

	// WorkerQueueSize capacity of the forward worker's in-memory queue
	WorkerQueueSize = 128
)
