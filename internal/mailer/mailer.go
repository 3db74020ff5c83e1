// Package mailer is the worker that turns queued notification messages
// into delivered emails: compose the text, send one mail per recipient,
// and record the outcome in email_logs.
package mailer

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/dancrewzus/webinar-wizard/internal/clock"
	"github.com/dancrewzus/webinar-wizard/internal/models"
	"github.com/dancrewzus/webinar-wizard/internal/notify"
	"github.com/dancrewzus/webinar-wizard/pkg/queue"
)

// EmailLogStore records delivery outcomes.
type EmailLogStore interface {
	Create(ctx context.Context, el *models.EmailLog) error
}

// Mailer consumes the notification queue and delivers email.
type Mailer struct {
	queue    *queue.Queue
	composer Composer
	sender   Sender
	logs     EmailLogStore
	clk      clock.Clock
	logger   *zap.Logger
}

// New creates a mailer worker.
func New(q *queue.Queue, composer Composer, sender Sender, logs EmailLogStore, clk clock.Clock, logger *zap.Logger) *Mailer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Mailer{queue: q, composer: composer, sender: sender, logs: logs, clk: clk, logger: logger}
}

// Process executes one notification job. A compose failure is returned
// so the queue can retry the whole job; per-recipient send failures are
// only recorded, because retrying the job would re-send to the
// recipients that already got their mail.
func (m *Mailer) Process(ctx context.Context, job *queue.Job) error {
	if job.Type != queue.JobTypeNotification {
		return fmt.Errorf("unknown job type: %s", job.Type)
	}
	var msg notify.Message
	if err := json.Unmarshal(job.Payload, &msg); err != nil {
		return fmt.Errorf("unmarshal payload: %w", err)
	}
	if len(msg.Recipients) == 0 {
		return nil
	}

	email, err := m.composer.Compose(ctx, msg)
	if err != nil {
		return fmt.Errorf("compose: %w", err)
	}

	for _, to := range msg.Recipients {
		entry := &models.EmailLog{
			WebinarID: &msg.Webinar.ID,
			Kind:      string(msg.Kind),
			Recipient: to,
			Subject:   email.Subject,
			CreatedAt: clock.Format(m.clk.Now()),
		}
		if err := m.sender.Send(ctx, to, email); err != nil {
			entry.Status = models.EmailLogStatusFailed
			entry.ErrorMessage = err.Error()
			m.logger.Error("email delivery failed",
				zap.String("recipient", to),
				zap.String("kind", string(msg.Kind)),
				zap.Error(err))
		} else {
			entry.Status = models.EmailLogStatusSent
			entry.SentAt = clock.Format(m.clk.Now())
		}
		if err := m.logs.Create(ctx, entry); err != nil {
			m.logger.Error("failed to record email log", zap.Error(err))
		}
	}
	return nil
}

// Run starts the worker loop: dequeue, process, retry on error.
func (m *Mailer) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			m.logger.Info("mailer stopping")
			return
		default:
		}

		job, err := m.queue.Dequeue(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			m.logger.Warn("dequeue error", zap.Error(err))
			time.Sleep(queue.RetryBackoff)
			continue
		}
		if job == nil {
			continue
		}

		m.logger.Debug("processing job", zap.String("job_id", job.ID))
		if err := m.Process(ctx, job); err != nil {
			m.logger.Error("job failed", zap.String("job_id", job.ID), zap.Error(err))
			if reErr := m.queue.Retry(ctx, job); reErr != nil {
				m.logger.Error("retry enqueue failed", zap.Error(reErr))
			}
			time.Sleep(queue.RetryBackoff)
		}
	}
}
