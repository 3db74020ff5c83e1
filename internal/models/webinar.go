package models

import (
	"errors"

	"github.com/google/uuid"
)

// WebinarStatus is the lifecycle state of a webinar.
type WebinarStatus string

const (
	StatusScheduled  WebinarStatus = "scheduled"
	StatusInProgress WebinarStatus = "in-progress"
	StatusCompleted  WebinarStatus = "completed"
)

// ErrStatusRegression is returned when a status change would move the
// lifecycle backward. Status only ever advances scheduled -> in-progress -> completed.
var ErrStatusRegression = errors.New("webinar status cannot move backward")

var statusRank = map[WebinarStatus]int{
	StatusScheduled:  0,
	StatusInProgress: 1,
	StatusCompleted:  2,
}

// Valid reports whether s is a known lifecycle status.
func (s WebinarStatus) Valid() bool {
	_, ok := statusRank[s]
	return ok
}

// Webinar represents a webinar session. Date and the audit timestamps are
// wall-clock strings (DD/MM/YYYY HH:mm:ss) interpreted in the application
// timezone, matching how they are stored.
type Webinar struct {
	ID               uuid.UUID     `json:"id"`
	Title            string        `json:"title"`
	Slug             string        `json:"slug"`
	Description      string        `json:"description"`
	Presenter        string        `json:"presenter"`
	RegistrationLink string        `json:"registrationLink"`
	Date             string        `json:"date"`
	Duration         int           `json:"duration"`
	MaxAttendees     int           `json:"maxAttendees"`
	Status           WebinarStatus `json:"status"`
	AttendeeIDs      []uuid.UUID   `json:"attendees"`
	CreatedBy        *uuid.UUID    `json:"createdBy,omitempty"`
	Deleted          bool          `json:"deleted"`
	DeletedAt        string        `json:"deletedAt,omitempty"`
	CreatedAt        string        `json:"createdAt"`
	UpdatedAt        string        `json:"updatedAt"`
}

// AdvanceStatus moves the webinar to next, rejecting backward transitions.
func (w *Webinar) AdvanceStatus(next WebinarStatus) error {
	if statusRank[next] < statusRank[w.Status] {
		return ErrStatusRegression
	}
	w.Status = next
	return nil
}

// HasAttendee reports whether the user appears in the attendee list.
func (w *Webinar) HasAttendee(userID uuid.UUID) bool {
	for _, id := range w.AttendeeIDs {
		if id == userID {
			return true
		}
	}
	return false
}
