// Package notify defines the notification contract consumed by the
// lifecycle sweep and the attendance coordinator. Delivery is
// fire-and-forget: callers log failures and carry on.
package notify

import (
	"context"

	"github.com/google/uuid"

	"github.com/dancrewzus/webinar-wizard/internal/models"
)

// Kind identifies the notification email type.
type Kind string

const (
	KindReminder         Kind = "reminder"
	KindAttendeeJoined   Kind = "attendee_joined"
	KindAttendeeLeft     Kind = "attendee_left"
	KindWebinarCancelled Kind = "webinar_cancelled"
)

// WebinarInfo is the webinar snapshot carried in a notification.
type WebinarInfo struct {
	ID          uuid.UUID `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Presenter   string    `json:"presenter"`
	Date        string    `json:"date"`
	Duration    int       `json:"duration"`
}

// UserInfo is the user snapshot carried in a notification, when the
// notification concerns a single user.
type UserInfo struct {
	Email   string `json:"email"`
	Name    string `json:"name"`
	Surname string `json:"surname"`
	Gender  string `json:"gender"`
}

// Message is one notification to be composed and delivered.
type Message struct {
	Kind       Kind        `json:"kind"`
	Recipients []string    `json:"recipients"`
	Webinar    WebinarInfo `json:"webinar"`
	User       *UserInfo   `json:"user,omitempty"`
}

// Notifier delivers notification messages.
type Notifier interface {
	Notify(ctx context.Context, msg Message) error
}

// WebinarInfoFrom builds the snapshot for a webinar.
func WebinarInfoFrom(w *models.Webinar) WebinarInfo {
	return WebinarInfo{
		ID:          w.ID,
		Title:       w.Title,
		Description: w.Description,
		Presenter:   w.Presenter,
		Date:        w.Date,
		Duration:    w.Duration,
	}
}

// UserInfoFrom builds the snapshot for a user.
func UserInfoFrom(u *models.User) *UserInfo {
	return &UserInfo{
		Email:   u.Email,
		Name:    u.Name,
		Surname: u.Surname,
		Gender:  u.Gender,
	}
}
