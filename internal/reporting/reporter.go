// Package reporting publishes audit records of case changes.
package reporting

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"

	rediscommon "github.com/odense-rpa/postmester-medcom/common/redis"
	"github.com/odense-rpa/postmester-medcom/internal/apperr"
	"github.com/odense-rpa/postmester-medcom/internal/config"
	"github.com/odense-rpa/postmester-medcom/internal/models"
)

// StreamReporter writes audit records to a Redis stream tagged with the
// report id and group of this process
type StreamReporter struct {
	redisClient *redis.Client
	logger      *zap.Logger
	stream      string
	reportID    string
	group       string
	maxLen      int64
	now         func() time.Time
}

// NewStreamReporter creates a reporter
func NewStreamReporter(cfg config.ReportingConfig, redisClient *redis.Client, logger *zap.Logger) *StreamReporter {
	return &StreamReporter{
		redisClient: redisClient,
		logger:      logger,
		stream:      cfg.Stream,
		reportID:    cfg.ReportID,
		group:       cfg.Group,
		maxLen:      cfg.MaxLen,
		now:         time.Now,
	}
}

// Report publishes one audit record
func (r *StreamReporter) Report(ctx context.Context, record models.AuditRecord) error {
	data, err := json.Marshal(record)
	if err != nil {
		return apperr.Infra("report", fmt.Errorf("failed to marshal audit record: %w", err))
	}

	id, err := rediscommon.PublishToStream(ctx, r.redisClient, r.stream, r.maxLen, map[string]interface{}{
		"report_id": r.reportID,
		"group":     r.group,
		"data":      data,
		"timestamp": r.now().Unix(),
	})
	if err != nil {
		return apperr.Infra("report", fmt.Errorf("failed to publish audit record: %w", err))
	}

	r.logger.Info("Audit record reported",
		zap.String("stream_id", id),
		zap.String("subject", record.Subject),
		zap.String("action", record.Action),
	)
	return nil
}
