package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog/log"
	"github.com/spotly-app/spotly-be/internal/auth"
	"github.com/spotly-app/spotly-be/internal/services"
)

// LocationHandler handles HTTP requests for parking spots.
type LocationHandler struct {
	service services.LocationServiceProvider
}

// NewLocationHandler creates a new LocationHandler.
func NewLocationHandler(service services.LocationServiceProvider) *LocationHandler {
	return &LocationHandler{service: service}
}

// OfferPayload defines the structure for offer requests. Pointers
// distinguish absent fields from legitimate zero values (the equator is a
// valid latitude, a free spot a valid price).
type OfferPayload struct {
	Latitude      *float64 `json:"latitude"`
	Longitude     *float64 `json:"longitude"`
	TokensOffered *int     `json:"tokensOffered"`
}

// GetRecent returns the most recently offered spots regardless of status.
func (h *LocationHandler) GetRecent(w http.ResponseWriter, r *http.Request) {
	locations, err := h.service.GetRecentLocations()
	if err != nil {
		log.Error().Err(err).Msg("Failed to fetch recent locations")
		respondError(w, http.StatusInternalServerError, "Error fetching locations.")
		return
	}
	respondJSON(w, http.StatusOK, locations)
}

// GetAvailable returns all spots that are still open.
func (h *LocationHandler) GetAvailable(w http.ResponseWriter, r *http.Request) {
	locations, err := h.service.GetAvailableLocations()
	if err != nil {
		log.Error().Err(err).Msg("Failed to fetch available locations")
		respondError(w, http.StatusInternalServerError, "Server error")
		return
	}
	respondJSON(w, http.StatusOK, locations)
}

// Offer creates a new spot offered by the caller.
func (h *LocationHandler) Offer(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusInternalServerError, "Could not retrieve user from token")
		return
	}

	var payload OfferPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if payload.Latitude == nil || payload.Longitude == nil || payload.TokensOffered == nil {
		respondError(w, http.StatusBadRequest, "All fields are required")
		return
	}
	if *payload.TokensOffered < 0 {
		respondError(w, http.StatusBadRequest, "tokensOffered must not be negative")
		return
	}

	location, err := h.service.OfferLocation(claims.UserID, *payload.Latitude, *payload.Longitude, *payload.TokensOffered)
	if err != nil {
		log.Error().Err(err).Str("user_id", claims.UserID).Msg("Failed to offer parking spot")
		respondError(w, http.StatusInternalServerError, "Server error")
		return
	}

	respondJSON(w, http.StatusCreated, map[string]interface{}{
		"message":  "Parking spot offered successfully",
		"location": location,
	})
}

// Claim executes the claim transaction for the caller.
func (h *LocationHandler) Claim(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusInternalServerError, "Could not retrieve user from token")
		return
	}

	var payload struct {
		LocationID string `json:"locationId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if payload.LocationID == "" {
		respondError(w, http.StatusBadRequest, "Location ID is required")
		return
	}

	location, err := h.service.ClaimLocation(claims.UserID, payload.LocationID)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrNotAvailable):
			respondError(w, http.StatusNotFound, "Parking spot not available")
		case errors.Is(err, services.ErrUserNotFound):
			respondError(w, http.StatusNotFound, "Users not found")
		case errors.Is(err, services.ErrSelfClaim):
			respondError(w, http.StatusForbidden, "You cannot claim a spot you previously offered")
		case errors.Is(err, services.ErrInsufficientTokens):
			respondError(w, http.StatusBadRequest, "Not enough tokens to claim this spot")
		default:
			log.Error().Err(err).Str("user_id", claims.UserID).Str("location_id", payload.LocationID).Msg("Failed to claim parking spot")
			respondError(w, http.StatusInternalServerError, "Server error")
		}
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"message":  "Parking spot claimed successfully",
		"location": location,
	})
}
