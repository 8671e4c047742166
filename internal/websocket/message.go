package websocket

import (
	"encoding/json"
	"fmt"
)

// Message defines the structure for websocket messages in both directions.
type Message struct {
	Action  string          `json:"action"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// RegisterUserPayload is sent by a client to announce which user the
// connection belongs to.
type RegisterUserPayload struct {
	UserID string `json:"userId"`
}

// ParkingClaimedPayload notifies an offerer that their spot was claimed.
type ParkingClaimedPayload struct {
	Message         string `json:"message"`
	ClaimerUsername string `json:"claimerUsername"`
	LocationID      string `json:"locationId"`
}

// StatsPayload carries the periodic marketplace stats broadcast.
type StatsPayload struct {
	AvailableSpots  int     `json:"availableSpots"`
	RegisteredUsers int     `json:"registeredUsers"`
	HostCPUPercent  float64 `json:"hostCpuPercent"`
	HostMemPercent  float64 `json:"hostMemPercent"`
}

func encode(action string, payload interface{}) ([]byte, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return json.Marshal(Message{Action: action, Payload: raw})
}

// NewParkingClaimedMessage builds the push message delivered to a spot's
// offerer when it is claimed.
func NewParkingClaimedMessage(claimerUsername, locationID string) ([]byte, error) {
	return encode("parkingClaimed", ParkingClaimedPayload{
		Message:         fmt.Sprintf("Your parking spot has been claimed by %s.", claimerUsername),
		ClaimerUsername: claimerUsername,
		LocationID:      locationID,
	})
}

// NewStatsMessage builds the periodic stats broadcast.
func NewStatsMessage(stats StatsPayload) ([]byte, error) {
	return encode("stats", stats)
}

// NewErrorMessage builds an error message for a single client.
func NewErrorMessage(text string) []byte {
	msg, _ := encode("error", map[string]string{"message": text})
	return msg
}
