// Package lifecycle advances webinar statuses on a schedule. An hourly
// sweep moves each webinar through scheduled -> in-progress -> completed
// based on the wall clock, and queues reminder emails shortly before a
// webinar starts.
package lifecycle

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/dancrewzus/webinar-wizard/internal/clock"
	"github.com/dancrewzus/webinar-wizard/internal/models"
	"github.com/dancrewzus/webinar-wizard/internal/notify"
)

// Reminder emails go out inside [start-30m, start-25m). At most one
// hourly tick can land in a 5-minute window, so each webinar gets at
// most one reminder.
const (
	reminderLead   = 30 * time.Minute
	reminderWindow = 5 * time.Minute
)

// WebinarStore is the persistence the sweep needs.
type WebinarStore interface {
	ListActive(ctx context.Context) ([]models.Webinar, error)
	Update(ctx context.Context, w *models.Webinar) error
	AttendeeEmails(ctx context.Context, id uuid.UUID) ([]string, error)
}

// Sweep is the hourly status job.
type Sweep struct {
	store    WebinarStore
	notifier notify.Notifier
	clk      clock.Clock
	log      *zap.Logger
	timeout  time.Duration
}

// NewSweep creates the lifecycle sweep.
func NewSweep(store WebinarStore, notifier notify.Notifier, clk clock.Clock, log *zap.Logger, timeout time.Duration) *Sweep {
	if log == nil {
		log = zap.NewNop()
	}
	return &Sweep{store: store, notifier: notifier, clk: clk, log: log, timeout: timeout}
}

// Run performs one pass over the active webinars. A failure on one
// webinar is logged and does not stop the pass.
func (s *Sweep) Run(ctx context.Context) error {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	list, err := s.store.ListActive(ctx)
	if err != nil {
		return err
	}

	now := s.clk.Now()
	for i := range list {
		w := &list[i]
		if err := s.process(ctx, w, now); err != nil {
			s.log.Error("sweep failed for webinar",
				zap.String("webinar_id", w.ID.String()),
				zap.String("title", w.Title),
				zap.Error(err))
		}
	}
	return nil
}

func (s *Sweep) process(ctx context.Context, w *models.Webinar, now time.Time) error {
	start, err := clock.Parse(w.Date, s.clk.Location())
	if err != nil {
		return err
	}
	end := start.Add(time.Duration(w.Duration) * time.Minute)

	if w.Status == models.StatusScheduled {
		windowStart := start.Add(-reminderLead)
		if !now.Before(windowStart) && now.Before(windowStart.Add(reminderWindow)) {
			s.remind(ctx, w)
		}
	}

	next := w.Status
	switch {
	case !now.Before(end):
		next = models.StatusCompleted
	case !now.Before(start):
		next = models.StatusInProgress
	}
	if next == w.Status {
		return nil
	}

	if err := w.AdvanceStatus(next); err != nil {
		return err
	}
	w.UpdatedAt = clock.Format(now)
	if err := s.store.Update(ctx, w); err != nil {
		return err
	}
	s.log.Info("webinar status advanced",
		zap.String("webinar_id", w.ID.String()),
		zap.String("status", string(next)))
	return nil
}

func (s *Sweep) remind(ctx context.Context, w *models.Webinar) {
	if s.notifier == nil {
		return
	}
	emails, err := s.store.AttendeeEmails(ctx, w.ID)
	if err != nil {
		s.log.Error("failed to load attendee emails",
			zap.String("webinar_id", w.ID.String()),
			zap.Error(err))
		return
	}
	if len(emails) == 0 {
		return
	}
	msg := notify.Message{
		Kind:       notify.KindReminder,
		Recipients: emails,
		Webinar:    notify.WebinarInfoFrom(w),
	}
	if err := s.notifier.Notify(ctx, msg); err != nil {
		s.log.Warn("failed to queue reminder",
			zap.String("webinar_id", w.ID.String()),
			zap.Error(err))
	}
}
