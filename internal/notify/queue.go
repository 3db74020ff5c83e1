package notify

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"github.com/dancrewzus/webinar-wizard/pkg/queue"
)

// QueueNotifier publishes notification messages onto the Redis job queue
// for the mailer worker to deliver.
type QueueNotifier struct {
	queue  *queue.Queue
	logger *zap.Logger
}

// NewQueueNotifier creates a queue-backed notifier.
func NewQueueNotifier(q *queue.Queue, logger *zap.Logger) *QueueNotifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &QueueNotifier{queue: q, logger: logger}
}

// Notify marshals the message and enqueues it. Delivery happens
// asynchronously in the mailer worker.
func (n *QueueNotifier) Notify(ctx context.Context, msg Message) error {
	if len(msg.Recipients) == 0 {
		return nil
	}
	payload, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal notification: %w", err)
	}
	if err := n.queue.EnqueueNotification(ctx, payload); err != nil {
		return fmt.Errorf("enqueue notification: %w", err)
	}
	n.logger.Debug("notification enqueued",
		zap.String("kind", string(msg.Kind)),
		zap.Int("recipients", len(msg.Recipients)),
	)
	return nil
}
