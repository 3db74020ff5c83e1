package models

import "github.com/google/uuid"

// Track is an audit-trail entry recorded on data mutations.
type Track struct {
	ID          uuid.UUID  `json:"id"`
	IP          string     `json:"ip"`
	Description string     `json:"description"`
	Module      string     `json:"module"`
	UserID      *uuid.UUID `json:"user,omitempty"`
	CreatedAt   string     `json:"createdAt"`
}
