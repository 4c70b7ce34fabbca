package domain

import (
	"github.com/google/uuid"
)

// User is the minimal identity slice the messaging core reads from the
// participant directory. Profiles and credentials live elsewhere.
type User struct {
	ID          uuid.UUID `json:"id"`
	DisplayName string    `json:"display_name"`
	AvatarURL   *string   `json:"avatar_url,omitempty"`
}

// Roles carried in the auth token. Admin unlocks the delete overrides.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)
