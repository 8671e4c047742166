package models

import "time"

// Location represents an offered parking spot.
//
// A spot starts out available. Claiming it flips IsAvailable to false and
// sets ClaimedBy in the same transaction that transfers the tokens; there is
// no un-claim or re-offer transition after that.
type Location struct {
	ID            string    `json:"id"`
	Latitude      float64   `json:"latitude"`
	Longitude     float64   `json:"longitude"`
	IsAvailable   bool      `json:"isAvailable"`
	OfferedBy     string    `json:"offeredBy"`
	ClaimedBy     *string   `json:"claimedBy,omitempty"`
	TokensOffered int       `json:"tokensOffered"`
	CreatedAt     time.Time `json:"createdAt"`
}
