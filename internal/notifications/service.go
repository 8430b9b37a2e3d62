package notifications

import (
	"context"

	"github.com/google/uuid"

	"workhive/pkg/logger"
)

// Notifier is the fire-and-forget surface the booking core calls. Publish
// failures are logged and never propagate to the caller.
type Notifier interface {
	Notify(ctx context.Context, userID uuid.UUID, nType NotificationType, title, body string, data map[string]interface{})
}

type notifier struct {
	producer Producer
	log      *logger.Logger
}

func NewNotifier(producer Producer, log *logger.Logger) Notifier {
	if log == nil {
		log = logger.GetDefault()
	}
	return &notifier{producer: producer, log: log}
}

func (n *notifier) Notify(ctx context.Context, userID uuid.UUID, nType NotificationType, title, body string, data map[string]interface{}) {
	if n.producer == nil {
		return
	}

	notification := New(userID, nType, title, body, data)
	if err := n.producer.Publish(ctx, notification); err != nil {
		n.log.ErrorWithContext(ctx, "Notification publish failed", err, map[string]interface{}{
			"user_id": userID.String(),
			"type":    string(nType),
			"title":   title,
		})
	}
}

// NoopNotifier discards notifications; used when Kafka is not configured.
type NoopNotifier struct{}

func (NoopNotifier) Notify(ctx context.Context, userID uuid.UUID, nType NotificationType, title, body string, data map[string]interface{}) {
}
