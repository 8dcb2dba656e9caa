package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"venuebook/internal/database"
	"venuebook/internal/domain"
	"venuebook/internal/events"
	"venuebook/internal/metrics"
	"venuebook/internal/models"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const (
	redisQueueKey = "venuebook:submissions:queue"
	deadLetterKey = "venuebook:submissions:deadletter"
)

// Forwarder delivers a finalized booking to the upstream backend.
type Forwarder interface {
	SubmitBooking(ctx context.Context, payload *models.BookingDetails) (*models.BookingDetails, error)
}

// ForwardWorker consumes submission_queue tasks and posts them upstream.
// Tasks are persisted first, then scheduled through Redis or an in-memory
// channel; the database is polled for anything that missed both.
type ForwardWorker struct {
	db           *database.DB
	forwarder    Forwarder
	redis        *redis.Client
	eventBus     domain.EventPublisher
	retryPolicy  RetryPolicy
	queue        chan models.SubmissionTask
	pollInterval time.Duration
	batchSize    int
	logger       zerolog.Logger
}

// NewForwardWorker builds a worker with sane defaults. redisClient and
// eventBus may be nil.
func NewForwardWorker(
	db *database.DB,
	forwarder Forwarder,
	redisClient *redis.Client,
	eventBus domain.EventPublisher,
	retry RetryPolicy,
	pollInterval time.Duration,
	logger *zerolog.Logger,
) *ForwardWorker {
	if retry.MaxRetries == 0 {
		retry.MaxRetries = 5
	}
	if retry.InitialDelay == 0 {
		retry.InitialDelay = 2 * time.Second
	}
	if retry.MaxDelay == 0 {
		retry.MaxDelay = time.Minute
	}
	if retry.BackoffFactor == 0 {
		retry.BackoffFactor = 2
	}
	if pollInterval <= 0 {
		pollInterval = 2 * time.Second
	}
	l := zerolog.Nop()
	if logger != nil {
		l = logger.With().Str("component", "forward_worker").Logger()
	}

	return &ForwardWorker{
		db:           db,
		forwarder:    forwarder,
		redis:        redisClient,
		eventBus:     eventBus,
		retryPolicy:  retry,
		queue:        make(chan models.SubmissionTask, models.WorkerQueueSize),
		pollInterval: pollInterval,
		batchSize:    20,
		logger:       l,
	}
}

// EnqueueSubmission persists the booking as an outbox task and schedules it.
func (w *ForwardWorker) EnqueueSubmission(ctx context.Context, booking *models.BookingDetails) error {
	if booking == nil || booking.Reference == "" {
		return errors.New("booking reference is required")
	}

	payload, err := json.Marshal(booking)
	if err != nil {
		return fmt.Errorf("encode payload: %w", err)
	}

	task := models.SubmissionTask{
		Reference: booking.Reference,
		Payload:   string(payload),
		Status:    models.TaskStatusPending,
	}
	if err := w.db.CreateSubmissionTask(ctx, &task); err != nil {
		return fmt.Errorf("persist submission task: %w", err)
	}

	if w.redis != nil {
		if err := w.pushList(ctx, redisQueueKey, &task); err != nil {
			w.logger.Warn().Err(err).Int64("task_id", task.ID).Msg("redis push failed, fallback to memory queue")
		} else {
			return nil
		}
	}

	select {
	case w.queue <- task:
	default:
		w.logger.Warn().Int64("task_id", task.ID).Msg("in-memory queue full, task left to polling")
	}
	return nil
}

// Start runs the main loop until ctx is done.
func (w *ForwardWorker) Start(ctx context.Context) {
	w.logger.Info().Msg("forward worker started")
	defer w.logger.Info().Msg("forward worker stopped")

	if n, err := w.db.ReleaseProcessingSubmissionTasks(ctx); err != nil {
		w.logger.Error().Err(err).Msg("release interrupted submissions")
	} else if n > 0 {
		w.logger.Warn().Int64("tasks", n).Msg("interrupted submissions returned to pending")
	}

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		if t, ok := w.tryLocalQueue(); ok {
			w.processTask(ctx, &t)
			continue
		}

		if t, ok := w.tryRedis(ctx); ok {
			w.processTask(ctx, &t)
			continue
		}

		if n := w.pollOnce(ctx); n == 0 {
			select {
			case <-ctx.Done():
				return
			case <-time.After(w.pollInterval):
			}
		}
	}
}

// pollOnce processes due tasks from the database and returns how many it saw.
func (w *ForwardWorker) pollOnce(ctx context.Context) int {
	tasks, err := w.db.GetPendingSubmissionTasks(ctx, w.batchSize)
	if err != nil {
		w.logger.Error().Err(err).Msg("fetch pending submissions")
		return 0
	}
	for i := range tasks {
		w.processTask(ctx, &tasks[i])
	}
	return len(tasks)
}

func (w *ForwardWorker) tryLocalQueue() (models.SubmissionTask, bool) {
	select {
	case t := <-w.queue:
		return t, true
	default:
		return models.SubmissionTask{}, false
	}
}

func (w *ForwardWorker) tryRedis(ctx context.Context) (models.SubmissionTask, bool) {
	if w.redis == nil {
		return models.SubmissionTask{}, false
	}
	res, err := w.redis.BRPop(ctx, time.Second, redisQueueKey).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) && !errors.Is(err, context.DeadlineExceeded) && !errors.Is(err, context.Canceled) {
			w.logger.Error().Err(err).Msg("redis BRPOP")
		}
		return models.SubmissionTask{}, false
	}
	if len(res) != 2 {
		return models.SubmissionTask{}, false
	}
	var task models.SubmissionTask
	if err := json.Unmarshal([]byte(res[1]), &task); err != nil {
		w.logger.Error().Err(err).Msg("decode redis task")
		return models.SubmissionTask{}, false
	}
	return task, true
}

// processTask forwards the task once it holds the row. The same task can be
// seen twice: from the local queue or Redis and from database polling.
func (w *ForwardWorker) processTask(ctx context.Context, task *models.SubmissionTask) {
	claimed, err := w.db.ClaimSubmissionTask(ctx, task)
	if err != nil {
		w.logger.Error().Err(err).Int64("task_id", task.ID).Msg("claim submission task")
		return
	}
	if !claimed {
		w.logger.Debug().Int64("task_id", task.ID).Str("reference", task.Reference).Msg("task already taken, skipping")
		return
	}

	var booking models.BookingDetails
	if err := json.Unmarshal([]byte(task.Payload), &booking); err != nil {
		w.failTask(ctx, task, nil, fmt.Errorf("decode payload: %w", err))
		return
	}

	if _, err := w.forwarder.SubmitBooking(ctx, &booking); err != nil {
		if !retryable(err) {
			w.failTask(ctx, task, &booking, err)
			return
		}
		w.retryOrFail(ctx, task, &booking, err)
		return
	}

	if err := w.db.UpdateSubmissionTaskStatus(ctx, task.ID, models.TaskStatusCompleted, "", nil); err != nil {
		w.logger.Error().Err(err).Int64("task_id", task.ID).Msg("mark completed")
	}
	w.setBookingStatus(ctx, booking.Reference, models.BookingStatusForwarded)
	metrics.IncForward("ok")
	w.publish(events.EventBookingForwarded, &booking, "")
	w.logger.Info().Str("reference", booking.Reference).Msg("booking forwarded")
}

func (w *ForwardWorker) retryOrFail(ctx context.Context, task *models.SubmissionTask, booking *models.BookingDetails, cause error) {
	attempt := task.RetryCount + 1
	if attempt >= w.retryPolicy.MaxRetries {
		w.failTask(ctx, task, booking, cause)
		return
	}

	next := time.Now().UTC().Add(w.retryPolicy.NextDelay(attempt))
	if err := w.db.UpdateSubmissionTaskStatus(ctx, task.ID, models.TaskStatusRetry, cause.Error(), &next); err != nil {
		w.logger.Error().Err(err).Int64("task_id", task.ID).Msg("mark retry")
	}
	metrics.IncForward("retry")
	w.logger.Warn().Err(cause).Int64("task_id", task.ID).Int("attempt", attempt).Time("next_retry_at", next).Msg("forward failed, will retry")
}

func (w *ForwardWorker) failTask(ctx context.Context, task *models.SubmissionTask, booking *models.BookingDetails, cause error) {
	if err := w.db.UpdateSubmissionTaskStatus(ctx, task.ID, models.TaskStatusFailed, cause.Error(), nil); err != nil {
		w.logger.Error().Err(err).Int64("task_id", task.ID).Msg("mark failed")
	}
	if w.redis != nil {
		if err := w.pushList(ctx, deadLetterKey, task); err != nil {
			w.logger.Error().Err(err).Int64("task_id", task.ID).Msg("deadletter push")
		}
	}
	metrics.IncForward("failed")
	if booking != nil {
		w.setBookingStatus(ctx, booking.Reference, models.BookingStatusFailed)
		w.publish(events.EventBookingForwardFailed, booking, cause.Error())
	}
	w.logger.Error().Err(cause).Int64("task_id", task.ID).Str("reference", task.Reference).Msg("forward failed permanently")
}

func (w *ForwardWorker) setBookingStatus(ctx context.Context, reference, status string) {
	if err := w.db.UpdateBookingStatus(ctx, reference, status); err != nil && !errors.Is(err, database.ErrBookingNotFound) {
		w.logger.Error().Err(err).Str("reference", reference).Msg("update booking status")
	}
}

func (w *ForwardWorker) publish(eventType string, booking *models.BookingDetails, errMsg string) {
	if w.eventBus == nil {
		return
	}
	payload := events.BookingEventPayload{
		Reference: booking.Reference,
		VenueID:   booking.VenueID,
		UserID:    booking.UserID,
		StartDate: booking.StartDate,
		EndDate:   booking.EndDate,
		TotalCost: booking.TotalCost,
		Status:    booking.Status,
		Error:     errMsg,
		At:        time.Now().UTC(),
	}
	if err := w.eventBus.PublishJSON(eventType, payload); err != nil {
		w.logger.Warn().Err(err).Str("event", eventType).Msg("publish event")
	}
}

func (w *ForwardWorker) pushList(ctx context.Context, key string, task *models.SubmissionTask) error {
	data, err := json.Marshal(task)
	if err != nil {
		return err
	}
	return w.redis.LPush(ctx, key, data).Err()
}

// DeadLetters returns up to limit tasks from the Redis dead-letter list,
// newest first.
func (w *ForwardWorker) DeadLetters(ctx context.Context, limit int64) ([]models.SubmissionTask, error) {
	if w.redis == nil {
		return nil, nil
	}
	raw, err := w.redis.LRange(ctx, deadLetterKey, 0, limit-1).Result()
	if err != nil {
		return nil, err
	}
	out := make([]models.SubmissionTask, 0, len(raw))
	for _, item := range raw {
		var t models.SubmissionTask
		if err := json.Unmarshal([]byte(item), &t); err != nil {
			continue
		}
		out = append(out, t)
	}
	return out, nil
}
