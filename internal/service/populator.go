package service

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"github.com/odense-rpa/postmester-medcom/internal/models"
)

// QueueWriter queue operations used when populating
type QueueWriter interface {
	GetItemsByReference(ctx context.Context, reference string) ([]models.QueueItem, error)
	AddItem(ctx context.Context, data json.RawMessage, reference string) (*models.QueueItem, error)
	ClearByStatus(ctx context.Context, status models.ItemStatus) (int64, error)
}

// WorklistSource reads named worklists; satisfied by *nexus.Client
type WorklistSource interface {
	Worklist(ctx context.Context, name string, pages int) ([]models.WorklistEntry, error)
}

// Populator syncs a backend worklist into the work queue
type Populator struct {
	queue        QueueWriter
	source       WorklistSource
	worklistName string
	pages        int
	logger       *zap.Logger
}

// NewPopulator creates a populator for the named worklist
func NewPopulator(queue QueueWriter, source WorklistSource, worklistName string, pages int, logger *zap.Logger) *Populator {
	return &Populator{
		queue:        queue,
		source:       source,
		worklistName: worklistName,
		pages:        pages,
		logger:       logger,
	}
}

// Refresh clears new items and populates the queue again
func (p *Populator) Refresh(ctx context.Context) (int, error) {
	if _, err := p.queue.ClearByStatus(ctx, models.ItemStatusNew); err != nil {
		return 0, err
	}
	return p.Populate(ctx)
}

// Populate adds every worklist entry whose id is not already a queue item
// reference. It returns the number of items added.
func (p *Populator) Populate(ctx context.Context) (int, error) {
	entries, err := p.source.Worklist(ctx, p.worklistName, p.pages)
	if err != nil {
		return 0, fmt.Errorf("failed to fetch worklist %q: %w", p.worklistName, err)
	}

	added := 0
	for _, entry := range entries {
		existing, err := p.queue.GetItemsByReference(ctx, entry.ID)
		if err != nil {
			return added, err
		}
		if len(existing) > 0 {
			continue
		}

		if _, err := p.queue.AddItem(ctx, entry.Raw, entry.ID); err != nil {
			return added, err
		}
		added++
	}

	p.logger.Info("Work queue populated",
		zap.String("worklist", p.worklistName),
		zap.Int("entries", len(entries)),
		zap.Int("added", added),
	)
	return added, nil
}
