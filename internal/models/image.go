package models

import "github.com/google/uuid"

// Image is an uploaded asset (profile picture) stored in S3.
type Image struct {
	ID        uuid.UUID  `json:"id"`
	URL       string     `json:"url"`
	Key       string     `json:"-"`
	CreatedBy *uuid.UUID `json:"createdBy,omitempty"`
	CreatedAt string     `json:"createdAt"`
}
