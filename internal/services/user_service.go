package services

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/spotly-app/spotly-be/internal/models"
	"golang.org/x/crypto/bcrypt"
)

// Sentinel errors the handlers translate into HTTP statuses.
var (
	ErrUserNotFound  = errors.New("user not found")
	ErrEmailTaken    = errors.New("email is already registered")
	ErrWrongPassword = errors.New("invalid password")
)

// UserServiceProvider defines the interface for user services.
type UserServiceProvider interface {
	GetUserByID(id string) (models.User, error)
	CreateUser(username, email, password string) (models.User, error)
	AuthenticateUser(email, password string) (models.User, error)
	UpdatePassword(id, currentPassword, newPassword string) error
	GetTokenBalance(id string) (int, error)
}

// UserService provides business logic for user management.
type UserService struct {
	db       *sql.DB
	eventSvc EventServiceProvider
}

// NewUserService creates a new UserService.
func NewUserService(db *sql.DB, eventSvc EventServiceProvider) *UserService {
	return &UserService{db: db, eventSvc: eventSvc}
}

// GetUserByID retrieves a single user by their ID.
func (s *UserService) GetUserByID(id string) (models.User, error) {
	var user models.User
	row := s.db.QueryRow("SELECT id, username, email, tokens, created_at FROM users WHERE id = ?", id)
	err := row.Scan(&user.ID, &user.Username, &user.Email, &user.Tokens, &user.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.User{}, ErrUserNotFound
		}
		return models.User{}, err
	}
	return user, nil
}

// GetUserByEmail retrieves a single user by their email, including the password hash.
func (s *UserService) GetUserByEmail(email string) (models.User, error) {
	var user models.User
	row := s.db.QueryRow("SELECT id, username, email, password_hash, tokens, created_at FROM users WHERE email = ?", email)
	err := row.Scan(&user.ID, &user.Username, &user.Email, &user.PasswordHash, &user.Tokens, &user.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.User{}, ErrUserNotFound
		}
		return models.User{}, err
	}
	return user, nil
}

// CreateUser creates a new user with a zero token balance. The password is
// bcrypt-hashed here, before the record is built; the plaintext never
// reaches the database layer.
func (s *UserService) CreateUser(username, email, password string) (models.User, error) {
	if _, err := s.GetUserByEmail(email); err == nil {
		return models.User{}, ErrEmailTaken
	} else if !errors.Is(err, ErrUserNotFound) {
		return models.User{}, err
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return models.User{}, fmt.Errorf("failed to hash password: %w", err)
	}

	user := models.User{
		ID:           uuid.New().String(),
		Username:     username,
		Email:        email,
		PasswordHash: string(hashedPassword),
		Tokens:       0,
	}

	stmt, err := s.db.Prepare("INSERT INTO users(id, username, email, password_hash, tokens) VALUES(?, ?, ?, ?, ?)")
	if err != nil {
		return models.User{}, err
	}
	defer stmt.Close()

	if _, err = stmt.Exec(user.ID, user.Username, user.Email, user.PasswordHash, user.Tokens); err != nil {
		return models.User{}, err
	}

	if err := s.eventSvc.CreateEvent("user.register", "info", fmt.Sprintf("User %s registered", username), &user.ID, nil); err != nil {
		log.Warn().Err(err).Str("user_id", user.ID).Msg("Failed to record registration event")
	}

	// Return user without password hash
	user.PasswordHash = ""
	return user, nil
}

// AuthenticateUser verifies a user's credentials. A missing account and a
// wrong password are reported as distinct errors so the login handler can
// return 404 vs 401.
func (s *UserService) AuthenticateUser(email, password string) (models.User, error) {
	user, err := s.GetUserByEmail(email)
	if err != nil {
		return models.User{}, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return models.User{}, ErrWrongPassword
	}

	// Don't send the password hash to the client
	user.PasswordHash = ""
	return user, nil
}

// UpdatePassword verifies the current password, then hashes and sets a new
// password for the user. Already-issued sessions stay valid until expiry.
func (s *UserService) UpdatePassword(id, currentPassword, newPassword string) error {
	var currentHash string
	row := s.db.QueryRow("SELECT password_hash FROM users WHERE id = ?", id)
	if err := row.Scan(&currentHash); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrUserNotFound
		}
		return err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(currentHash), []byte(currentPassword)); err != nil {
		return ErrWrongPassword
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash new password: %w", err)
	}

	_, err = s.db.Exec("UPDATE users SET password_hash = ? WHERE id = ?", string(hashedPassword), id)
	return err
}

// GetTokenBalance returns the user's current token balance.
func (s *UserService) GetTokenBalance(id string) (int, error) {
	var tokens int
	row := s.db.QueryRow("SELECT tokens FROM users WHERE id = ?", id)
	if err := row.Scan(&tokens); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, ErrUserNotFound
		}
		return 0, err
	}
	return tokens, nil
}
