package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"go.uber.org/zap"
)

const (
	notifyStreamName = "NOTIFICATIONS"
	streamMaxAge     = 7 * 24 * time.Hour
)

// NATSNotifier publishes events to JetStream. Informational events go to
// notify.<kind>, warnings and errors to alert.<kind>.
type NATSNotifier struct {
	logger *zap.Logger
	js     nats.JetStreamContext
}

// NewNATSNotifier creates a notifier, ensuring the notification stream exists
func NewNATSNotifier(js nats.JetStreamContext, logger *zap.Logger) (*NATSNotifier, error) {
	_, err := js.StreamInfo(notifyStreamName)
	if err != nil {
		if err != nats.ErrStreamNotFound {
			return nil, fmt.Errorf("failed to get stream info: %w", err)
		}

		_, err = js.AddStream(&nats.StreamConfig{
			Name:     notifyStreamName,
			Subjects: []string{"notify.*", "alert.*"},
			Storage:  nats.FileStorage,
			MaxAge:   streamMaxAge,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create stream: %w", err)
		}
		logger.Info("Created notification stream", zap.String("name", notifyStreamName))
	} else {
		logger.Info("Using existing notification stream", zap.String("name", notifyStreamName))
	}

	return &NATSNotifier{
		logger: logger.Named("notify"),
		js:     js,
	}, nil
}

// Notify implements Notifier
func (n *NATSNotifier) Notify(ctx context.Context, event *Event) error {
	if event.ID == "" {
		event.ID = uuid.New().String()
	}
	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now()
	}
	if event.Severity == "" {
		event.Severity = SeverityInfo
	}

	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	subject := "notify." + event.Kind
	if event.Severity != SeverityInfo {
		subject = "alert." + event.Kind
	}

	if _, err := n.js.Publish(subject, data); err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}

	n.logger.Debug("Event published",
		zap.String("id", event.ID),
		zap.String("subject", subject),
		zap.String("severity", string(event.Severity)))

	return nil
}
