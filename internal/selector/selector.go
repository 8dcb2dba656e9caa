// Package selector implements the interactive date-range picker used to
// collect a booking's start and end dates.
package selector

import (
	"time"

	"venuebook/internal/models"
)

type State string

const (
	SelectingStart State = "selecting_start"
	SelectingEnd   State = "selecting_end"
	Complete       State = "complete"
)

// Range is an emitted start/end pair.
type Range struct {
	Start time.Time
	End   time.Time
}

// SelectableFunc decides whether a date may be picked at all.
type SelectableFunc func(date time.Time) bool

// Selector is not safe for concurrent use; each chat or request owns its own.
type Selector struct {
	state      State
	start      time.Time
	end        time.Time
	selectable SelectableFunc
}

// New returns a selector waiting for a start date. A nil selectable allows
// every date.
func New(selectable SelectableFunc) *Selector {
	if selectable == nil {
		selectable = func(time.Time) bool { return true }
	}
	return &Selector{state: SelectingStart, selectable: selectable}
}

func (s *Selector) State() State         { return s.state }
func (s *Selector) StartDate() time.Time { return s.start }
func (s *Selector) EndDate() time.Time   { return s.end }

// Click feeds a tapped date into the state machine. It returns the selected
// range and true when the click completes a selection. Non-selectable dates
// are ignored.
func (s *Selector) Click(date time.Time) (Range, bool) {
	date = models.DateOf(date)
	if date.IsZero() || !s.selectable(date) {
		return Range{}, false
	}

	switch s.state {
	case SelectingStart:
		s.begin(date)
		return Range{}, false
	default:
		if date.Before(s.start) {
			s.begin(date)
			return Range{}, false
		}
		s.end = date
		s.state = Complete
		return Range{Start: s.start, End: s.end}, true
	}
}

func (s *Selector) begin(date time.Time) {
	s.start = date
	s.end = time.Time{}
	s.state = SelectingEnd
}

// Clear drops both dates and waits for a new start.
func (s *Selector) Clear() {
	s.state = SelectingStart
	s.start = time.Time{}
	s.end = time.Time{}
}

// Selection returns the completed range, if any.
func (s *Selector) Selection() (Range, bool) {
	if s.state != Complete {
		return Range{}, false
	}
	return Range{Start: s.start, End: s.end}, true
}

func (s *Selector) Snapshot() models.SelectionState {
	return models.SelectionState{Step: string(s.state), StartDate: s.start, EndDate: s.end}
}

// Restore loads a persisted snapshot. Inconsistent snapshots are repaired to
// the closest valid state.
func (s *Selector) Restore(st models.SelectionState) {
	s.start = models.DateOf(st.StartDate)
	s.end = models.DateOf(st.EndDate)
	s.state = State(st.Step)

	switch {
	case s.start.IsZero():
		s.Clear()
	case s.state == Complete && (s.end.IsZero() || s.end.Before(s.start)):
		s.end = time.Time{}
		s.state = SelectingEnd
	case s.state != Complete:
		s.end = time.Time{}
		s.state = SelectingEnd
	}
}
