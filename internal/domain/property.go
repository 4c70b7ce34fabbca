package domain

import (
	"github.com/google/uuid"
)

// Property is the minimal display slice of an external property
// record. The messaging core never mutates properties.
type Property struct {
	ID       uuid.UUID `json:"id"`
	Title    string    `json:"title"`
	Location string    `json:"location"`
}
