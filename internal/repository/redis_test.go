package repository

import (
	"context"
	"testing"
	"time"

	"venuebook/internal/config"
	"venuebook/internal/models"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedisStateRepository(t *testing.T) {
	s, err := miniredis.Run()
	require.NoError(t, err)
	defer s.Close()

	client := NewRedisClient(config.RedisConfig{Address: s.Addr()})
	defer client.Close()

	repo := NewRedisStateRepository(client, time.Hour)
	ctx := context.Background()

	t.Run("SetAndGetState", func(t *testing.T) {
		start := time.Date(2025, 11, 3, 0, 0, 0, 0, time.UTC)
		state := &models.UserState{
			UserID:      123,
			CurrentStep: models.StepEnterTimes,
			VenueID:     "hall",
			Selection:   models.SelectionState{Step: "complete", StartDate: start, EndDate: start.AddDate(0, 0, 5)},
			Request: models.BookingRequest{
				StartDate: start,
				StartTime: models.NewClockTime(14, 0),
				Attendees: 20,
			},
			Month: "2025-11",
		}

		err := repo.SetState(ctx, state)
		require.NoError(t, err)
		assert.True(t, s.Exists("venuebook:state:123"))
		assert.Equal(t, time.Hour, s.TTL("venuebook:state:123"))

		got, err := repo.GetState(ctx, 123)
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, state.CurrentStep, got.CurrentStep)
		assert.Equal(t, "hall", got.VenueID)
		assert.True(t, start.Equal(got.Selection.StartDate))
		assert.Equal(t, "14:00", got.Request.StartTime.String())
		assert.True(t, got.Request.EndTime.IsZero())
		assert.Equal(t, 20, got.Request.Attendees)
	})

	t.Run("GetNonExistentState", func(t *testing.T) {
		got, err := repo.GetState(ctx, 999)
		require.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("CorruptState", func(t *testing.T) {
		require.NoError(t, s.Set("venuebook:state:5", "{not json"))
		_, err := repo.GetState(ctx, 5)
		assert.ErrorContains(t, err, "unmarshal")
	})

	t.Run("ClearState", func(t *testing.T) {
		state := &models.UserState{UserID: 456, CurrentStep: "test"}
		require.NoError(t, repo.SetState(ctx, state))

		err := repo.ClearState(ctx, 456)
		require.NoError(t, err)

		got, _ := repo.GetState(ctx, 456)
		assert.Nil(t, got)
	})

	t.Run("RateLimit", func(t *testing.T) {
		userID := int64(789)
		limit := 2
		window := time.Second

		allowed, err := repo.CheckRateLimit(ctx, userID, limit, window)
		require.NoError(t, err)
		assert.True(t, allowed)

		allowed, err = repo.CheckRateLimit(ctx, userID, limit, window)
		require.NoError(t, err)
		assert.True(t, allowed)

		allowed, err = repo.CheckRateLimit(ctx, userID, limit, window)
		require.NoError(t, err)
		assert.False(t, allowed)

		s.FastForward(window + time.Millisecond)

		allowed, err = repo.CheckRateLimit(ctx, userID, limit, window)
		require.NoError(t, err)
		assert.True(t, allowed)
	})

	t.Run("NilClient", func(t *testing.T) {
		repo := NewRedisStateRepository(nil, time.Hour)
		_, err := repo.GetState(ctx, 123)
		assert.ErrorIs(t, err, errNilClient)
		assert.ErrorIs(t, Ping(ctx, nil), errNilClient)
	})

	t.Run("Ping", func(t *testing.T) {
		err := Ping(ctx, client)
		assert.NoError(t, err)
	})

	t.Run("Close", func(t *testing.T) {
		other := redis.NewClient(&redis.Options{Addr: s.Addr()})
		assert.NoError(t, Close(other))
		assert.NoError(t, Close(nil))
	})
}
