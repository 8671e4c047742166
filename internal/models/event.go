package models

import "time"

// Event represents a loggable action in the marketplace activity feed.
type Event struct {
	ID         string    `json:"id"`
	Type       string    `json:"type"`  // e.g., "user.register", "spot.claim"
	Level      string    `json:"level"` // e.g., "info", "warn"
	Message    string    `json:"message"`
	UserID     *string   `json:"userId,omitempty"`     // Nullable for system-wide events
	LocationID *string   `json:"locationId,omitempty"` // Set for spot-related events
	CreatedAt  time.Time `json:"createdAt"`
}
