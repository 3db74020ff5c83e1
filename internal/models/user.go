package models

import (
	"github.com/google/uuid"
)

// User represents a platform user. The webinars list is the inverse side
// of Webinar.AttendeeIDs; the attendance coordinator keeps both in sync.
type User struct {
	ID               uuid.UUID   `json:"id"`
	Email            string      `json:"email"`
	Password         string      `json:"-"`
	Name             string      `json:"name"`
	Surname          string      `json:"surname"`
	Gender           string      `json:"gender"`
	PhoneNumber      string      `json:"phoneNumber"`
	RoleID           uuid.UUID   `json:"roleId"`
	RoleName         string      `json:"role,omitempty"`
	ProfilePictureID *uuid.UUID  `json:"profilePicture,omitempty"`
	WebinarIDs       []uuid.UUID `json:"webinars"`
	Deleted          bool        `json:"deleted"`
	DeletedAt        string      `json:"deletedAt,omitempty"`
	CreatedAt        string      `json:"createdAt"`
	UpdatedAt        string      `json:"updatedAt"`
}

// HasWebinar reports whether the webinar appears in the user's list.
func (u *User) HasWebinar(webinarID uuid.UUID) bool {
	for _, id := range u.WebinarIDs {
		if id == webinarID {
			return true
		}
	}
	return false
}

// FullName returns "Name Surname" for email salutations.
func (u *User) FullName() string {
	if u.Surname == "" {
		return u.Name
	}
	return u.Name + " " + u.Surname
}
