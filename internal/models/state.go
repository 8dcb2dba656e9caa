package models

import "time"

// SelectionState is the persisted form of the date-range selector.
type SelectionState struct {
	Step      string    `json:"step"`
	StartDate time.Time `json:"start_date"`
	EndDate   time.Time `json:"end_date"`
}

// UserState holds a chat user's booking flow between updates.
type UserState struct {
	UserID      int64          `json:"user_id"`
	CurrentStep string         `json:"current_step"`
	VenueID     string         `json:"venue_id,omitempty"`
	Selection   SelectionState `json:"selection"`
	Request     BookingRequest `json:"request"`
	// Month shown in the calendar keyboard, YYYY-MM.
	Month     string    `json:"month,omitempty"`
	UpdatedAt time.Time `json:"updated_at"`
}

// SubmissionTask is an outbox entry for forwarding a booking upstream.
type SubmissionTask struct {
	ID          int64      `json:"id"`
	Reference   string     `json:"reference"`
	Payload     string     `json:"payload"`
	Status      string     `json:"status"`
	RetryCount  int        `json:"retry_count"`
	LastError   *string    `json:"last_error"`
	CreatedAt   time.Time  `json:"created_at"`
	ProcessedAt *time.Time `json:"processed_at"`
	NextRetryAt *time.Time `json:"next_retry_at"`
}

const (
	TaskStatusPending    = "pending"
	TaskStatusRetry      = "retry"
	TaskStatusProcessing = "processing"
	TaskStatusCompleted  = "completed"
	TaskStatusFailed     = "failed"
)
