// Package workqueue stores queue items in PostgreSQL.
package workqueue

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/odense-rpa/postmester-medcom/internal/models"
)

const schema = `
CREATE TABLE IF NOT EXISTS work_items (
	id         UUID PRIMARY KEY,
	workqueue  TEXT NOT NULL,
	reference  TEXT NOT NULL,
	status     TEXT NOT NULL DEFAULT 'new',
	data       JSONB NOT NULL,
	message    TEXT,
	created_at TIMESTAMPTZ NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_work_items_queue_status ON work_items (workqueue, status, created_at);
CREATE INDEX IF NOT EXISTS idx_work_items_queue_reference ON work_items (workqueue, reference);
`

// Repository work items of one named queue
type Repository struct {
	db        *sql.DB
	logger    *zap.Logger
	workqueue string
	now       func() time.Time
}

// NewRepository creates a repository bound to workqueue
func NewRepository(db *sql.DB, workqueue string, logger *zap.Logger) *Repository {
	return &Repository{
		db:        db,
		logger:    logger,
		workqueue: workqueue,
		now:       time.Now,
	}
}

// EnsureSchema creates the work_items table when missing
func (r *Repository) EnsureSchema(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to create work_items schema: %w", err)
	}
	return nil
}

// AddItem enqueues data under reference with status new
func (r *Repository) AddItem(ctx context.Context, data json.RawMessage, reference string) (*models.QueueItem, error) {
	now := r.now().UTC()
	item := &models.QueueItem{
		ID:        uuid.New().String(),
		Workqueue: r.workqueue,
		Reference: reference,
		Status:    models.ItemStatusNew,
		Data:      data,
		CreatedAt: now,
		UpdatedAt: now,
	}

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO work_items (id, workqueue, reference, status, data, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		item.ID, item.Workqueue, item.Reference, string(item.Status), []byte(data), now, now,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to add work item %s: %w", reference, err)
	}

	r.logger.Debug("Work item added",
		zap.String("item_id", item.ID),
		zap.String("reference", reference),
	)
	return item, nil
}

// GetItemsByReference returns every item of the queue with exactly reference
func (r *Repository) GetItemsByReference(ctx context.Context, reference string) ([]models.QueueItem, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, workqueue, reference, status, data, COALESCE(message, ''), created_at, updated_at
		 FROM work_items
		 WHERE workqueue = $1 AND reference = $2
		 ORDER BY created_at`,
		r.workqueue, reference,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query work items by reference: %w", err)
	}
	defer rows.Close()

	var items []models.QueueItem
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate work items: %w", err)
	}
	return items, nil
}

// ClearByStatus deletes all items of the queue in status
func (r *Repository) ClearByStatus(ctx context.Context, status models.ItemStatus) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM work_items WHERE workqueue = $1 AND status = $2`,
		r.workqueue, string(status),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to clear work items: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to read affected rows: %w", err)
	}

	r.logger.Info("Work items cleared",
		zap.String("status", string(status)),
		zap.Int64("count", n),
	)
	return n, nil
}

// Next claims the oldest new item, moving it to in_progress. It returns nil
// when the queue has no new items. Concurrent workers never claim the same
// item.
func (r *Repository) Next(ctx context.Context) (*models.QueueItem, error) {
	row := r.db.QueryRowContext(ctx,
		`UPDATE work_items
		 SET status = $2, updated_at = $3
		 WHERE id = (
			SELECT id FROM work_items
			WHERE workqueue = $1 AND status = $4
			ORDER BY created_at, id
			LIMIT 1
			FOR UPDATE SKIP LOCKED
		 )
		 RETURNING id, workqueue, reference, status, data, COALESCE(message, ''), created_at, updated_at`,
		r.workqueue, string(models.ItemStatusInProgress), r.now().UTC(), string(models.ItemStatusNew),
	)

	item, err := scanItem(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return item, nil
}

// Fail marks the item failed with message
func (r *Repository) Fail(ctx context.Context, id string, message string) error {
	return r.setStatus(ctx, id, models.ItemStatusFailed, &message)
}

// Complete marks the item completed
func (r *Repository) Complete(ctx context.Context, id string) error {
	return r.setStatus(ctx, id, models.ItemStatusCompleted, nil)
}

func (r *Repository) setStatus(ctx context.Context, id string, status models.ItemStatus, message *string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE work_items SET status = $1, message = COALESCE($2, message), updated_at = $3
		 WHERE id = $4 AND workqueue = $5`,
		string(status), message, r.now().UTC(), id, r.workqueue,
	)
	if err != nil {
		return fmt.Errorf("failed to set work item %s to %s: %w", id, status, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("work item not found: %s", id)
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanItem(s scanner) (*models.QueueItem, error) {
	var (
		item   models.QueueItem
		status string
		data   []byte
	)
	err := s.Scan(&item.ID, &item.Workqueue, &item.Reference, &status, &data, &item.Message, &item.CreatedAt, &item.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan work item: %w", err)
	}
	item.Status = models.ItemStatus(status)
	item.Data = json.RawMessage(data)
	return &item, nil
}
