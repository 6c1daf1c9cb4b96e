package service

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"github.com/odense-rpa/postmester-medcom/internal/apperr"
	"github.com/odense-rpa/postmester-medcom/internal/models"
	"github.com/odense-rpa/postmester-medcom/internal/rules"
	"github.com/odense-rpa/postmester-medcom/internal/workqueue"
)

// Queue source of claimed items
type Queue interface {
	Next(ctx context.Context) (*models.QueueItem, error)
	workqueue.StatusSetter
}

// CitizenFinder resolves citizens by CPR
type CitizenFinder interface {
	FindCitizen(ctx context.Context, cpr string) (*models.Citizen, error)
}

// RuleApplier applies one matched rule; satisfied by *ensurer.Set
type RuleApplier interface {
	Apply(ctx context.Context, citizen *models.Citizen, rule *models.Rule, msg *models.Message) error
}

// Tracker records completed tasks; satisfied by *tracking.MQTTTracker
type Tracker interface {
	TrackTask(processName string) error
}

// Outcome result of one queue item
type Outcome int

const (
	OutcomeSucceeded Outcome = iota
	OutcomeSkipped
	OutcomeFailed
)

func (o Outcome) String() string {
	switch o {
	case OutcomeSucceeded:
		return "succeeded"
	case OutcomeSkipped:
		return "skipped"
	default:
		return "failed"
	}
}

// RunStats summary of one processing run
type RunStats struct {
	Processed int
	Succeeded int
	Skipped   int
	Failed    int
}

// Processor drains the work queue one item at a time
type Processor struct {
	queue       Queue
	citizens    CitizenFinder
	ensurers    RuleApplier
	tracker     Tracker
	table       *rules.Table
	processName string
	logger      *zap.Logger
}

// NewProcessor creates a processor over the loaded rule table
func NewProcessor(
	queue Queue,
	citizens CitizenFinder,
	ensurers RuleApplier,
	tracker Tracker,
	table *rules.Table,
	processName string,
	logger *zap.Logger,
) *Processor {
	return &Processor{
		queue:       queue,
		citizens:    citizens,
		ensurers:    ensurers,
		tracker:     tracker,
		table:       table,
		processName: processName,
		logger:      logger,
	}
}

// Run processes items until the queue has no new items. Domain errors fail
// the item and the run continues; any other error aborts the run. A
// cancelled ctx stops the run between items.
func (p *Processor) Run(ctx context.Context) (RunStats, error) {
	var stats RunStats

	p.logger.Info("Processing work queue",
		zap.String("process_name", p.processName),
		zap.Int("rules", p.table.Len()),
	)

	for {
		if err := ctx.Err(); err != nil {
			return stats, err
		}

		item, err := p.queue.Next(ctx)
		if err != nil {
			return stats, fmt.Errorf("failed to claim next work item: %w", err)
		}
		if item == nil {
			break
		}

		outcome, err := p.ProcessItem(ctx, *item)
		stats.Processed++
		switch outcome {
		case OutcomeSucceeded:
			stats.Succeeded++
		case OutcomeSkipped:
			stats.Skipped++
		case OutcomeFailed:
			stats.Failed++
		}
		if err != nil {
			p.logger.Error("Aborting run",
				zap.String("reference", item.Reference),
				zap.Error(err),
			)
			return stats, err
		}
	}

	p.logger.Info("Work queue processed",
		zap.Int("processed", stats.Processed),
		zap.Int("succeeded", stats.Succeeded),
		zap.Int("skipped", stats.Skipped),
		zap.Int("failed", stats.Failed),
	)
	return stats, nil
}

// ProcessItem handles one claimed item. The item is always released: it is
// completed unless a domain error failed it or an infrastructure error
// aborted it, in which case it is failed and the error is returned.
func (p *Processor) ProcessItem(ctx context.Context, item models.QueueItem) (outcome Outcome, err error) {
	claim := workqueue.NewClaim(item, p.queue)
	releaseCtx := context.WithoutCancel(ctx)
	defer func() {
		if relErr := claim.Release(releaseCtx, err); relErr != nil && err == nil {
			outcome, err = OutcomeFailed, relErr
		}
	}()

	outcome, err = p.process(ctx, &item)
	if err != nil && apperr.IsDomain(err) {
		p.logger.Error("Error processing item",
			zap.String("reference", item.Reference),
			zap.String("item_id", item.ID),
			zap.Error(err),
		)
		if failErr := claim.Fail(releaseCtx, err.Error()); failErr != nil {
			return OutcomeFailed, failErr
		}
		return OutcomeFailed, nil
	}
	if err != nil {
		return OutcomeFailed, err
	}
	return outcome, nil
}

func (p *Processor) process(ctx context.Context, item *models.QueueItem) (Outcome, error) {
	var msg models.Message
	if err := json.Unmarshal(item.Data, &msg); err != nil {
		return OutcomeFailed, apperr.Domain("decode message", err)
	}

	raw, ok := msg.PrimaryPatientIdentifier()
	if !ok {
		return OutcomeFailed, apperr.Domainf("resolve citizen", "message %q has no patient identifier", msg.Name)
	}
	cpr, err := models.NormalizeCPR(raw)
	if err != nil {
		return OutcomeFailed, apperr.Domain("resolve citizen", err)
	}

	citizen, err := p.citizens.FindCitizen(ctx, cpr)
	if err != nil {
		return OutcomeFailed, err
	}
	if citizen == nil {
		p.logger.Info("Citizen not found, skipping item",
			zap.String("reference", item.Reference),
		)
		return OutcomeSkipped, nil
	}

	matched := 0
	for _, rule := range p.table.Rules() {
		if !rules.Matches(&rule, &msg) {
			continue
		}
		matched++

		if err := p.ensurers.Apply(ctx, citizen, &rule, &msg); err != nil {
			return OutcomeFailed, fmt.Errorf("rule in row %d: %w", rule.Row, err)
		}
		if err := p.tracker.TrackTask(p.processName); err != nil {
			return OutcomeFailed, err
		}
	}

	p.logger.Info("Item processed",
		zap.String("reference", item.Reference),
		zap.String("subject", msg.Name),
		zap.Int("matched_rules", matched),
	)
	return OutcomeSucceeded, nil
}
