// Package tracking emits operational "task completed" signals.
package tracking

import (
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/odense-rpa/postmester-medcom/internal/apperr"
	"github.com/odense-rpa/postmester-medcom/internal/config"
)

// Publisher is satisfied by common/mqtt.Client
type Publisher interface {
	Publish(topic string, qos byte, retained bool, payload []byte) error
}

// TaskEvent payload published per completed task
type TaskEvent struct {
	ProcessName string    `json:"process_name"`
	CompletedAt time.Time `json:"completed_at"`
}

// MQTTTracker publishes task events to a topic
type MQTTTracker struct {
	publisher Publisher
	logger    *zap.Logger
	topic     string
	qos       byte
	now       func() time.Time
}

// NewMQTTTracker creates a tracker
func NewMQTTTracker(cfg config.TrackingConfig, publisher Publisher, logger *zap.Logger) *MQTTTracker {
	return &MQTTTracker{
		publisher: publisher,
		logger:    logger,
		topic:     cfg.Topic,
		qos:       cfg.QoS,
		now:       time.Now,
	}
}

// TrackTask records one completed task for processName
func (t *MQTTTracker) TrackTask(processName string) error {
	payload, err := json.Marshal(TaskEvent{
		ProcessName: processName,
		CompletedAt: t.now().UTC(),
	})
	if err != nil {
		return apperr.Infra("track task", fmt.Errorf("failed to marshal task event: %w", err))
	}

	if err := t.publisher.Publish(t.topic, t.qos, false, payload); err != nil {
		return apperr.Infra("track task", err)
	}

	t.logger.Debug("Task tracked", zap.String("process_name", processName))
	return nil
}
