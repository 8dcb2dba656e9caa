package service

import (
	"context"
	"time"

	"venuebook/internal/domain"
	"venuebook/internal/models"
	"venuebook/internal/selector"

	"github.com/rs/zerolog"
)

type StateService struct {
	stateRepo domain.StateRepository
	logger    *zerolog.Logger
}

func NewStateService(stateRepo domain.StateRepository, logger *zerolog.Logger) *StateService {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return &StateService{
		stateRepo: stateRepo,
		logger:    logger,
	}
}

func (s *StateService) GetUserState(ctx context.Context, userID int64) (*models.UserState, error) {
	state, err := s.stateRepo.GetState(ctx, userID)
	if err != nil {
		s.logger.Error().Err(err).Int64("user_id", userID).Msg("failed to get user state")
		return nil, err
	}

	return state, nil
}

// LoadOrNew returns the stored state or a fresh one at the main menu.
func (s *StateService) LoadOrNew(ctx context.Context, userID int64) (*models.UserState, error) {
	state, err := s.GetUserState(ctx, userID)
	if err != nil {
		return nil, err
	}
	if state == nil {
		state = &models.UserState{
			UserID:      userID,
			CurrentStep: models.StepMainMenu,
			Request:     models.BookingRequest{Attendees: models.DefaultAttendees},
		}
	}
	return state, nil
}

func (s *StateService) SaveUserState(ctx context.Context, state *models.UserState) error {
	state.UpdatedAt = time.Now().UTC()
	return s.stateRepo.SetState(ctx, state)
}

func (s *StateService) SetStep(ctx context.Context, userID int64, step string) error {
	state, err := s.LoadOrNew(ctx, userID)
	if err != nil {
		return err
	}
	state.CurrentStep = step
	return s.SaveUserState(ctx, state)
}

func (s *StateService) ClearUserState(ctx context.Context, userID int64) error {
	return s.stateRepo.ClearState(ctx, userID)
}

// Allow reports whether the user is still within the message rate limit.
// Storage errors let the message through.
func (s *StateService) Allow(ctx context.Context, userID int64, limit int, window time.Duration) bool {
	ok, err := s.stateRepo.CheckRateLimit(ctx, userID, limit, window)
	if err != nil {
		s.logger.Warn().Err(err).Int64("user_id", userID).Msg("rate limit check failed")
		return true
	}
	return ok
}

// RestoreSelector rebuilds the date-range selector from the persisted
// snapshot.
func RestoreSelector(state *models.UserState, selectable selector.SelectableFunc) *selector.Selector {
	sel := selector.New(selectable)
	if state != nil {
		sel.Restore(state.Selection)
	}
	return sel
}

// StoreSelector writes the selector back into the state and mirrors the
// chosen range into the request.
func StoreSelector(state *models.UserState, sel *selector.Selector) {
	state.Selection = sel.Snapshot()
	state.Request.StartDate = sel.StartDate()
	state.Request.EndDate = sel.EndDate()
}
