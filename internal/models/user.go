package models

import "github.com/google/uuid"

// User is an account row. Guests get an ephemeral user on first contact and
// may later claim it with credentials.
type User struct {
	ID       uuid.UUID `json:"id"`
	Email    string    `json:"email"`
	Password string    `json:"password,omitempty"`
	Username string    `json:"username"`

	IsEphemeral bool `json:"is_ephemeral"`
}
