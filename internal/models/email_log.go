package models

import "github.com/google/uuid"

// EmailLogStatus for delivery.
const (
	EmailLogStatusPending = "pending"
	EmailLogStatusSent    = "sent"
	EmailLogStatusFailed  = "failed"
)

// EmailLog records a notification email handled by the mailer worker.
type EmailLog struct {
	ID           uuid.UUID  `json:"id"`
	WebinarID    *uuid.UUID `json:"webinarId,omitempty"`
	Kind         string     `json:"kind"`
	Recipient    string     `json:"recipient"`
	Subject      string     `json:"subject,omitempty"`
	Status       string     `json:"status"`
	ErrorMessage string     `json:"errorMessage,omitempty"`
	SentAt       string     `json:"sentAt,omitempty"`
	CreatedAt    string     `json:"createdAt"`
}
