package models

import "github.com/google/uuid"

// Role names known to the platform.
const (
	RoleAdmin  = "admin"
	RoleClient = "client"
)

// Role represents a user role.
type Role struct {
	ID      uuid.UUID `json:"id"`
	Name    string    `json:"name"`
	Primary bool      `json:"primary"`
}
