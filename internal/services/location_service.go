package services

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/spotly-app/spotly-be/internal/models"
	"github.com/spotly-app/spotly-be/internal/websocket"
)

// Sentinel errors for the claim preconditions, in the order they are checked.
var (
	ErrNotAvailable       = errors.New("parking spot not available")
	ErrSelfClaim          = errors.New("cannot claim a spot you previously offered")
	ErrInsufficientTokens = errors.New("not enough tokens to claim this spot")
)

// recentLimit bounds the GET /locations listing.
const recentLimit = 10

// ClaimNotifier delivers a best-effort push message to a connected user.
// Satisfied by the websocket hub.
type ClaimNotifier interface {
	NotifyUser(userID string, message []byte) bool
}

// LocationServiceProvider defines the interface for location services.
type LocationServiceProvider interface {
	GetRecentLocations() ([]models.Location, error)
	GetAvailableLocations() ([]models.Location, error)
	OfferLocation(userID string, latitude, longitude float64, tokensOffered int) (models.Location, error)
	ClaimLocation(userID, locationID string) (models.Location, error)
}

// LocationService provides business logic for offering and claiming spots.
type LocationService struct {
	db       *sql.DB
	notifier ClaimNotifier
	eventSvc EventServiceProvider
}

// NewLocationService creates a new LocationService.
func NewLocationService(db *sql.DB, notifier ClaimNotifier, eventSvc EventServiceProvider) *LocationService {
	return &LocationService{db: db, notifier: notifier, eventSvc: eventSvc}
}

// GetRecentLocations returns the most recently created spots regardless of
// status, newest first, bounded by recentLimit.
func (s *LocationService) GetRecentLocations() ([]models.Location, error) {
	rows, err := s.db.Query(
		"SELECT id, latitude, longitude, is_available, offered_by, claimed_by, tokens_offered, created_at FROM locations ORDER BY created_at DESC, id LIMIT ?",
		recentLimit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanLocations(rows)
}

// GetAvailableLocations returns every spot that is still open.
func (s *LocationService) GetAvailableLocations() ([]models.Location, error) {
	rows, err := s.db.Query(
		"SELECT id, latitude, longitude, is_available, offered_by, claimed_by, tokens_offered, created_at FROM locations WHERE is_available = 1")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanLocations(rows)
}

// OfferLocation creates a new available spot offered by the given user.
// A user may hold any number of simultaneous open offers.
func (s *LocationService) OfferLocation(userID string, latitude, longitude float64, tokensOffered int) (models.Location, error) {
	if tokensOffered < 0 {
		return models.Location{}, fmt.Errorf("tokensOffered must not be negative")
	}

	loc := models.Location{
		ID:            uuid.New().String(),
		Latitude:      latitude,
		Longitude:     longitude,
		IsAvailable:   true,
		OfferedBy:     userID,
		TokensOffered: tokensOffered,
	}

	stmt, err := s.db.Prepare("INSERT INTO locations(id, latitude, longitude, is_available, offered_by, tokens_offered) VALUES(?, ?, ?, 1, ?, ?)")
	if err != nil {
		return models.Location{}, err
	}
	defer stmt.Close()

	if _, err = stmt.Exec(loc.ID, loc.Latitude, loc.Longitude, loc.OfferedBy, loc.TokensOffered); err != nil {
		return models.Location{}, err
	}

	if err := s.eventSvc.CreateEvent("spot.offer", "info", fmt.Sprintf("Spot offered for %d tokens", tokensOffered), &userID, &loc.ID); err != nil {
		log.Warn().Err(err).Str("location_id", loc.ID).Msg("Failed to record offer event")
	}

	return s.GetLocationByID(loc.ID)
}

// GetLocationByID retrieves a single spot.
func (s *LocationService) GetLocationByID(id string) (models.Location, error) {
	row := s.db.QueryRow(
		"SELECT id, latitude, longitude, is_available, offered_by, claimed_by, tokens_offered, created_at FROM locations WHERE id = ?", id)
	var loc models.Location
	var available int
	err := row.Scan(&loc.ID, &loc.Latitude, &loc.Longitude, &available, &loc.OfferedBy, &loc.ClaimedBy, &loc.TokensOffered, &loc.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Location{}, ErrNotAvailable
		}
		return models.Location{}, err
	}
	loc.IsAvailable = available == 1
	return loc, nil
}

// ClaimLocation executes the claim transaction: it validates the
// preconditions, transfers the spot's token price from claimer to offerer
// and marks the spot claimed, all within one database transaction. The
// availability flip is a conditional update, so of two concurrent claims on
// the same spot exactly one commits; the other sees ErrNotAvailable.
func (s *LocationService) ClaimLocation(userID, locationID string) (models.Location, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return models.Location{}, err
	}
	defer tx.Rollback()

	var offeredBy string
	var available, price int
	row := tx.QueryRow("SELECT offered_by, is_available, tokens_offered FROM locations WHERE id = ?", locationID)
	if err := row.Scan(&offeredBy, &available, &price); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Location{}, ErrNotAvailable
		}
		return models.Location{}, err
	}
	if available != 1 {
		return models.Location{}, ErrNotAvailable
	}

	var claimerName string
	var claimerTokens int
	if err := tx.QueryRow("SELECT username, tokens FROM users WHERE id = ?", userID).Scan(&claimerName, &claimerTokens); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Location{}, ErrUserNotFound
		}
		return models.Location{}, err
	}
	var offererExists int
	if err := tx.QueryRow("SELECT COUNT(1) FROM users WHERE id = ?", offeredBy).Scan(&offererExists); err != nil {
		return models.Location{}, err
	}
	if offererExists == 0 {
		return models.Location{}, ErrUserNotFound
	}

	if offeredBy == userID {
		return models.Location{}, ErrSelfClaim
	}
	if claimerTokens < price {
		return models.Location{}, ErrInsufficientTokens
	}

	// Compare-and-swap on the availability flag. RowsAffected == 0 means a
	// concurrent claim got there first.
	res, err := tx.Exec("UPDATE locations SET is_available = 0, claimed_by = ? WHERE id = ? AND is_available = 1", userID, locationID)
	if err != nil {
		return models.Location{}, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return models.Location{}, err
	}
	if affected == 0 {
		return models.Location{}, ErrNotAvailable
	}

	if _, err := tx.Exec("UPDATE users SET tokens = tokens - ? WHERE id = ?", price, userID); err != nil {
		return models.Location{}, err
	}
	if _, err := tx.Exec("UPDATE users SET tokens = tokens + ? WHERE id = ?", price, offeredBy); err != nil {
		return models.Location{}, err
	}

	if err := tx.Commit(); err != nil {
		return models.Location{}, err
	}

	if err := s.eventSvc.CreateEvent("spot.claim", "info",
		fmt.Sprintf("Spot claimed by %s for %d tokens", claimerName, price), &userID, &locationID); err != nil {
		log.Warn().Err(err).Str("location_id", locationID).Msg("Failed to record claim event")
	}

	// Best-effort push to the offerer; nothing to do when they are offline.
	msg, err := websocket.NewParkingClaimedMessage(claimerName, locationID)
	if err != nil {
		log.Error().Err(err).Msg("Failed to encode claim notification")
	} else if s.notifier.NotifyUser(offeredBy, msg) {
		log.Info().Str("offerer_id", offeredBy).Str("location_id", locationID).Msg("Claim notification delivered")
	}

	return s.GetLocationByID(locationID)
}

func scanLocations(rows *sql.Rows) ([]models.Location, error) {
	var locations []models.Location
	for rows.Next() {
		var loc models.Location
		var available int
		if err := rows.Scan(&loc.ID, &loc.Latitude, &loc.Longitude, &available, &loc.OfferedBy, &loc.ClaimedBy, &loc.TokensOffered, &loc.CreatedAt); err != nil {
			return nil, err
		}
		loc.IsAvailable = available == 1
		locations = append(locations, loc)
	}
	return locations, rows.Err()
}
