package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
	"github.com/spotly-app/spotly-be/internal/auth"
	"github.com/spotly-app/spotly-be/internal/services"
)

// UserHandler handles HTTP requests for registration, login and account info.
type UserHandler struct {
	service services.UserServiceProvider
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(service services.UserServiceProvider) *UserHandler {
	return &UserHandler{service: service}
}

// RegisterPayload defines the structure for registration requests.
type RegisterPayload struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthPayload defines the structure for login requests.
type AuthPayload struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Register handles new user registration. The response never carries the
// stored hash, only a confirmation.
func (h *UserHandler) Register(w http.ResponseWriter, r *http.Request) {
	var payload RegisterPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if payload.Username == "" || payload.Email == "" || payload.Password == "" {
		respondError(w, http.StatusBadRequest, "All fields are required")
		return
	}

	if _, err := h.service.CreateUser(payload.Username, payload.Email, payload.Password); err != nil {
		if errors.Is(err, services.ErrEmailTaken) {
			respondError(w, http.StatusBadRequest, "Email is already registered.")
			return
		}
		log.Error().Err(err).Str("email", payload.Email).Msg("Failed to register user")
		respondError(w, http.StatusInternalServerError, "Server error")
		return
	}

	respondJSON(w, http.StatusCreated, map[string]string{"message": "User registered successfully."})
}

// Login handles user authentication and session credential generation.
func (h *UserHandler) Login(w http.ResponseWriter, r *http.Request) {
	var payload AuthPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if payload.Email == "" || payload.Password == "" {
		respondError(w, http.StatusBadRequest, "Email and password are required.")
		return
	}

	user, err := h.service.AuthenticateUser(payload.Email, payload.Password)
	if err != nil {
		if errors.Is(err, services.ErrUserNotFound) {
			respondError(w, http.StatusNotFound, "User not found.")
			return
		}
		if errors.Is(err, services.ErrWrongPassword) {
			log.Warn().Str("email", payload.Email).Msg("Failed authentication attempt")
			respondError(w, http.StatusUnauthorized, "Invalid email or password.")
			return
		}
		log.Error().Err(err).Str("email", payload.Email).Msg("Login failed")
		respondError(w, http.StatusInternalServerError, "Server error")
		return
	}

	token, err := auth.GenerateJWT(user)
	if err != nil {
		log.Error().Err(err).Str("user_id", user.ID).Msg("Failed to generate JWT")
		respondError(w, http.StatusInternalServerError, "Failed to generate token")
		return
	}

	// Set Secure flag based on environment.
	isProd := os.Getenv("APP_ENV") == "production"

	http.SetCookie(w, &http.Cookie{
		Name:     "token",
		Value:    token,
		Expires:  time.Now().Add(auth.TokenDuration),
		HttpOnly: true,
		Secure:   isProd,
		SameSite: http.SameSiteStrictMode,
		Path:     "/",
	})

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"message": "Login successful.",
		"token":   token,
		"user": map[string]string{
			"id":       user.ID,
			"username": user.Username,
			"email":    user.Email,
		},
	})
}

// GetUsername resolves a user ID to its display name.
func (h *UserHandler) GetUsername(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	user, err := h.service.GetUserByID(id)
	if err != nil {
		if errors.Is(err, services.ErrUserNotFound) {
			respondError(w, http.StatusNotFound, "User not found")
			return
		}
		log.Error().Err(err).Str("user_id", id).Msg("Failed to look up username")
		respondError(w, http.StatusInternalServerError, "Server error")
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"username": user.Username})
}

// GetTokens returns the caller's current token balance.
func (h *UserHandler) GetTokens(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusInternalServerError, "Could not retrieve user from token")
		return
	}

	tokens, err := h.service.GetTokenBalance(claims.UserID)
	if err != nil {
		if errors.Is(err, services.ErrUserNotFound) {
			respondError(w, http.StatusNotFound, "User not found.")
			return
		}
		log.Error().Err(err).Str("user_id", claims.UserID).Msg("Failed to fetch token balance")
		respondError(w, http.StatusInternalServerError, "Server error")
		return
	}

	respondJSON(w, http.StatusOK, map[string]int{"tokens": tokens})
}

// GetInfo returns the caller's display name and balance.
func (h *UserHandler) GetInfo(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusInternalServerError, "Could not retrieve user from token")
		return
	}

	user, err := h.service.GetUserByID(claims.UserID)
	if err != nil {
		if errors.Is(err, services.ErrUserNotFound) {
			respondError(w, http.StatusNotFound, "User not found")
			return
		}
		log.Error().Err(err).Str("user_id", claims.UserID).Msg("Failed to fetch user info")
		respondError(w, http.StatusInternalServerError, "Server error")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"username": user.Username,
		"tokens":   user.Tokens,
	})
}

// ChangePassword rotates the caller's password after verifying the old one.
// Existing sessions stay valid until their tokens expire.
func (h *UserHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusInternalServerError, "Could not retrieve user from token")
		return
	}

	var payload struct {
		OldPassword string `json:"oldPassword"`
		NewPassword string `json:"newPassword"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if payload.OldPassword == "" || payload.NewPassword == "" {
		respondError(w, http.StatusBadRequest, "Old and new passwords are required")
		return
	}

	if err := h.service.UpdatePassword(claims.UserID, payload.OldPassword, payload.NewPassword); err != nil {
		if errors.Is(err, services.ErrWrongPassword) {
			respondError(w, http.StatusUnauthorized, "Old password is incorrect")
			return
		}
		log.Error().Err(err).Str("user_id", claims.UserID).Msg("Failed to change password")
		respondError(w, http.StatusInternalServerError, "Server error")
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"message": "Password changed successfully"})
}
