package models

import "time"

// User represents a user account in the system. Tokens is the internal
// balance transferred between users when a parking spot is claimed.
type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"` // Never expose this to the client
	Tokens       int       `json:"tokens"`
	CreatedAt    time.Time `json:"createdAt"`
}
