// Package attendance owns every mutation of the webinar/user attendance
// lists. Webinar.AttendeeIDs and User.WebinarIDs mirror each other, and
// routing all joins, leaves and cancellations through one coordinator is
// what keeps the two sides consistent.
package attendance

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/dancrewzus/webinar-wizard/internal/clock"
	"github.com/dancrewzus/webinar-wizard/internal/models"
	"github.com/dancrewzus/webinar-wizard/internal/notify"
)

var (
	// ErrAlreadyAttending is returned when the user is already on the roster.
	ErrAlreadyAttending = errors.New("user is already attending this webinar")
	// ErrNotAttending is returned when the user is not on the roster.
	ErrNotAttending = errors.New("user is not attending this webinar")
	// ErrWebinarFull is returned when the roster is at capacity.
	ErrWebinarFull = errors.New("webinar is at capacity")
	// ErrWebinarDeleted is returned on operations against a cancelled webinar.
	ErrWebinarDeleted = errors.New("webinar has been cancelled")
	// ErrUserDisabled is returned when the user account is soft-deleted.
	ErrUserDisabled = errors.New("user account is disabled")
)

// WebinarStore is the webinar persistence the coordinator needs.
type WebinarStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Webinar, error)
	UpdateAttendees(ctx context.Context, id uuid.UUID, attendees []uuid.UUID, updatedAt string) error
	SoftDelete(ctx context.Context, id uuid.UUID, at string) error
}

// UserStore is the user persistence the coordinator needs.
type UserStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	ListByIDs(ctx context.Context, ids []uuid.UUID) ([]models.User, error)
	UpdateWebinars(ctx context.Context, id uuid.UUID, webinars []uuid.UUID, updatedAt string) error
}

// TrackStore records audit entries.
type TrackStore interface {
	Create(ctx context.Context, t *models.Track) error
}

// Coordinator applies attendance changes to both sides of the relation.
type Coordinator struct {
	webinars WebinarStore
	users    UserStore
	tracks   TrackStore
	notifier notify.Notifier
	clk      clock.Clock
	log      *zap.Logger
}

// NewCoordinator creates an attendance coordinator.
func NewCoordinator(webinars WebinarStore, users UserStore, tracks TrackStore, notifier notify.Notifier, clk clock.Clock, log *zap.Logger) *Coordinator {
	if log == nil {
		log = zap.NewNop()
	}
	return &Coordinator{webinars: webinars, users: users, tracks: tracks, notifier: notifier, clk: clk, log: log}
}

// Join adds the user to the webinar roster and the webinar to the user's
// list. The webinar side is written first; if the user side then fails,
// the webinar write is rolled back so neither side is left dangling.
func (c *Coordinator) Join(ctx context.Context, webinarID, userID uuid.UUID, clientIP string) error {
	w, err := c.webinars.GetByID(ctx, webinarID)
	if err != nil {
		return err
	}
	if w.Deleted {
		return ErrWebinarDeleted
	}
	if w.HasAttendee(userID) {
		return ErrAlreadyAttending
	}
	if w.MaxAttendees > 0 && len(w.AttendeeIDs) >= w.MaxAttendees {
		return ErrWebinarFull
	}

	u, err := c.users.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if u.Deleted {
		return ErrUserDisabled
	}

	now := clock.Format(c.clk.Now())

	prev := w.AttendeeIDs
	if err := c.webinars.UpdateAttendees(ctx, w.ID, append(append([]uuid.UUID{}, prev...), userID), now); err != nil {
		return fmt.Errorf("update webinar roster: %w", err)
	}
	if err := c.users.UpdateWebinars(ctx, u.ID, append(append([]uuid.UUID{}, u.WebinarIDs...), w.ID), now); err != nil {
		if rbErr := c.webinars.UpdateAttendees(ctx, w.ID, prev, now); rbErr != nil {
			c.log.Error("roster rollback failed",
				zap.String("webinar_id", w.ID.String()),
				zap.String("user_id", u.ID.String()),
				zap.Error(rbErr))
		}
		return fmt.Errorf("update user webinars: %w", err)
	}

	c.audit(ctx, userID, clientIP, fmt.Sprintf("Joined webinar %q", w.Title))
	c.send(ctx, notify.Message{
		Kind:       notify.KindAttendeeJoined,
		Recipients: []string{u.Email},
		Webinar:    notify.WebinarInfoFrom(w),
		User:       notify.UserInfoFrom(u),
	})
	return nil
}

// Leave removes the user from the webinar roster and the webinar from the
// user's list.
func (c *Coordinator) Leave(ctx context.Context, webinarID, userID uuid.UUID, clientIP string) error {
	w, err := c.webinars.GetByID(ctx, webinarID)
	if err != nil {
		return err
	}
	if w.Deleted {
		return ErrWebinarDeleted
	}
	if !w.HasAttendee(userID) {
		return ErrNotAttending
	}

	u, err := c.users.GetByID(ctx, userID)
	if err != nil {
		return err
	}

	now := clock.Format(c.clk.Now())

	prev := w.AttendeeIDs
	if err := c.webinars.UpdateAttendees(ctx, w.ID, removeID(prev, userID), now); err != nil {
		return fmt.Errorf("update webinar roster: %w", err)
	}
	if err := c.users.UpdateWebinars(ctx, u.ID, removeID(u.WebinarIDs, w.ID), now); err != nil {
		if rbErr := c.webinars.UpdateAttendees(ctx, w.ID, prev, now); rbErr != nil {
			c.log.Error("roster rollback failed",
				zap.String("webinar_id", w.ID.String()),
				zap.String("user_id", u.ID.String()),
				zap.Error(rbErr))
		}
		return fmt.Errorf("update user webinars: %w", err)
	}

	c.audit(ctx, userID, clientIP, fmt.Sprintf("Left webinar %q", w.Title))
	c.send(ctx, notify.Message{
		Kind:       notify.KindAttendeeLeft,
		Recipients: []string{u.Email},
		Webinar:    notify.WebinarInfoFrom(w),
		User:       notify.UserInfoFrom(u),
	})
	return nil
}

// Cancel soft-deletes the webinar and severs it from every attendee's
// list. Attendee emails are captured before the roster is cleared so the
// cancellation notice still reaches everyone. A failure severing one user
// is logged and does not block the rest.
func (c *Coordinator) Cancel(ctx context.Context, webinarID, actorID uuid.UUID, clientIP string) error {
	w, err := c.webinars.GetByID(ctx, webinarID)
	if err != nil {
		return err
	}
	if w.Deleted {
		return ErrWebinarDeleted
	}

	now := clock.Format(c.clk.Now())

	attendees, err := c.users.ListByIDs(ctx, w.AttendeeIDs)
	if err != nil {
		return fmt.Errorf("load attendees: %w", err)
	}

	emails := make([]string, 0, len(attendees))
	for i := range attendees {
		u := &attendees[i]
		emails = append(emails, u.Email)
		if err := c.users.UpdateWebinars(ctx, u.ID, removeID(u.WebinarIDs, w.ID), now); err != nil {
			c.log.Error("failed to sever webinar from user",
				zap.String("webinar_id", w.ID.String()),
				zap.String("user_id", u.ID.String()),
				zap.Error(err))
		}
	}

	if err := c.webinars.SoftDelete(ctx, w.ID, now); err != nil {
		return fmt.Errorf("soft delete webinar: %w", err)
	}

	c.audit(ctx, actorID, clientIP, fmt.Sprintf("Cancelled webinar %q", w.Title))
	c.send(ctx, notify.Message{
		Kind:       notify.KindWebinarCancelled,
		Recipients: emails,
		Webinar:    notify.WebinarInfoFrom(w),
	})
	return nil
}

func (c *Coordinator) audit(ctx context.Context, userID uuid.UUID, clientIP, description string) {
	t := &models.Track{
		IP:          clientIP,
		Description: description,
		Module:      "webinars",
		UserID:      &userID,
		CreatedAt:   clock.Format(c.clk.Now()),
	}
	if err := c.tracks.Create(ctx, t); err != nil {
		c.log.Warn("failed to record audit entry", zap.Error(err))
	}
}

func (c *Coordinator) send(ctx context.Context, msg notify.Message) {
	if c.notifier == nil {
		return
	}
	if err := c.notifier.Notify(ctx, msg); err != nil {
		c.log.Warn("failed to queue notification",
			zap.String("kind", string(msg.Kind)),
			zap.Error(err))
	}
}

// removeID returns ids without target, preserving order.
func removeID(ids []uuid.UUID, target uuid.UUID) []uuid.UUID {
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if id != target {
			out = append(out, id)
		}
	}
	return out
}
