package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"venuebook/internal/models"
)

const taskColumns = `id, reference, payload, status, retry_count, last_error, created_at, processed_at, next_retry_at`

func (db *DB) CreateSubmissionTask(ctx context.Context, task *models.SubmissionTask) error {
	if task.Status == "" {
		task.Status = models.TaskStatusPending
	}
	query := `INSERT INTO submission_queue (reference, payload, status, retry_count, last_error, created_at, next_retry_at)
              VALUES (?, ?, ?, ?, ?, ?, ?)`
	now := time.Now().UTC()
	result, err := db.ExecContext(ctx, query,
		task.Reference,
		task.Payload,
		task.Status,
		task.RetryCount,
		task.LastError,
		now,
		task.NextRetryAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create submission task: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	task.ID = id
	task.CreatedAt = now

	return nil
}

func (db *DB) queryTasks(ctx context.Context, query string, args ...any) ([]models.SubmissionTask, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tasks []models.SubmissionTask
	for rows.Next() {
		var t models.SubmissionTask
		err := rows.Scan(
			&t.ID, &t.Reference, &t.Payload, &t.Status, &t.RetryCount, &t.LastError, &t.CreatedAt, &t.ProcessedAt, &t.NextRetryAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan submission task: %w", err)
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

// GetPendingSubmissionTasks returns due pending/retry tasks, oldest first.
func (db *DB) GetPendingSubmissionTasks(ctx context.Context, limit int) ([]models.SubmissionTask, error) {
	tasks, err := db.queryTasks(ctx, `SELECT `+taskColumns+` FROM submission_queue
              WHERE status IN (?, ?) AND (next_retry_at IS NULL OR next_retry_at <= ?)
              ORDER BY created_at ASC, id ASC LIMIT ?`,
		models.TaskStatusPending, models.TaskStatusRetry, time.Now().UTC(), limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get pending submission tasks: %w", err)
	}
	return tasks, nil
}

// ClaimSubmissionTask moves a due pending/retry task to processing. It
// reports false when another copy of the task already took it or it is not
// due yet. On success task.RetryCount is refreshed from the row.
func (db *DB) ClaimSubmissionTask(ctx context.Context, task *models.SubmissionTask) (bool, error) {
	var retryCount int
	err := db.QueryRowContext(ctx, `UPDATE submission_queue SET status = ?
              WHERE id = ? AND status IN (?, ?) AND (next_retry_at IS NULL OR next_retry_at <= ?)
              RETURNING retry_count`,
		models.TaskStatusProcessing, task.ID, models.TaskStatusPending, models.TaskStatusRetry, time.Now().UTC(),
	).Scan(&retryCount)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to claim submission task: %w", err)
	}
	task.Status = models.TaskStatusProcessing
	task.RetryCount = retryCount
	return true, nil
}

// ReleaseProcessingSubmissionTasks returns tasks left in processing by a
// stopped worker to pending.
func (db *DB) ReleaseProcessingSubmissionTasks(ctx context.Context) (int64, error) {
	res, err := db.ExecContext(ctx, `UPDATE submission_queue SET status = ? WHERE status = ?`,
		models.TaskStatusPending, models.TaskStatusProcessing)
	if err != nil {
		return 0, fmt.Errorf("failed to release submission tasks: %w", err)
	}
	return res.RowsAffected()
}

func (db *DB) GetFailedSubmissionTasks(ctx context.Context) ([]models.SubmissionTask, error) {
	tasks, err := db.queryTasks(ctx, `SELECT `+taskColumns+` FROM submission_queue
              WHERE status = ? ORDER BY created_at DESC, id DESC`, models.TaskStatusFailed)
	if err != nil {
		return nil, fmt.Errorf("failed to get failed submission tasks: %w", err)
	}
	return tasks, nil
}

func (db *DB) UpdateSubmissionTaskStatus(ctx context.Context, id int64, status, errMsg string, nextRetryAt *time.Time) error {
	var query string
	var args []interface{}
	now := time.Now().UTC()

	var lastErr *string
	if errMsg != "" {
		lastErr = &errMsg
	}

	switch status {
	case models.TaskStatusRetry:
		query = `UPDATE submission_queue SET status = ?, last_error = ?, next_retry_at = ?, retry_count = retry_count + 1 WHERE id = ?`
		args = []interface{}{status, lastErr, nextRetryAt, id}
	case models.TaskStatusCompleted, models.TaskStatusFailed:
		query = `UPDATE submission_queue SET status = ?, last_error = ?, next_retry_at = ?, processed_at = ? WHERE id = ?`
		args = []interface{}{status, lastErr, nextRetryAt, now, id}
	default:
		query = `UPDATE submission_queue SET status = ?, last_error = ?, next_retry_at = ? WHERE id = ?`
		args = []interface{}{status, lastErr, nextRetryAt, id}
	}

	if _, err := db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to update submission task status: %w", err)
	}
	return nil
}
