package auth

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/spotly-app/spotly-be/internal/models"
)

// TokenDuration is how long an issued session credential stays valid.
// Sessions are not stored server-side, so expiry is the only revocation.
const TokenDuration = 1 * time.Hour

var jwtKey []byte

// Init sets the signing key used for all tokens. Must be called before
// any token is generated or validated.
func Init(secret string) {
	jwtKey = []byte(secret)
}

// Claims defines the JWT claims structure.
type Claims struct {
	UserID   string `json:"userId"`
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// contextKey keeps the claims context key private to this package's type.
type contextKey string

// UserClaimsKey is the context key for user claims.
const UserClaimsKey = contextKey("userClaims")

// GenerateJWT creates a new JWT for a given user.
func GenerateJWT(user models.User) (string, error) {
	expirationTime := time.Now().Add(TokenDuration)
	claims := &Claims{
		UserID:   user.ID,
		Username: user.Username,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expirationTime),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(jwtKey)
}

// ValidateJWT parses and validates a JWT string.
func ValidateJWT(tokenStr string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (interface{}, error) {
		return jwtKey, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}
	return claims, nil
}

// UserResolver resolves a token's subject to a persisted user. Satisfied by
// the user service; the middleware rejects tokens whose subject no longer
// exists in the store.
type UserResolver interface {
	GetUserByID(id string) (models.User, error)
}

// JWTMiddleware creates a middleware for protecting routes. The resolved
// claims are passed down via the request context.
func JWTMiddleware(users UserResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var tokenStr string

			// Prefer the Authorization header.
			authHeader := r.Header.Get("Authorization")
			if authHeader != "" {
				parts := strings.Split(authHeader, "Bearer ")
				if len(parts) == 2 {
					tokenStr = parts[1]
				}
			}

			// Fall back to the cookie set at login.
			if tokenStr == "" {
				cookie, err := r.Cookie("token")
				if err != nil {
					writeAuthError(w, "Access denied. No token provided.")
					return
				}
				tokenStr = cookie.Value
			}

			claims, err := ValidateJWT(tokenStr)
			if err != nil {
				writeAuthError(w, "Invalid token.")
				return
			}

			// The token may outlive the account it was issued for.
			if _, err := users.GetUserByID(claims.UserID); err != nil {
				writeAuthError(w, "Invalid token.")
				return
			}

			ctx := context.WithValue(r.Context(), UserClaimsKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// ClaimsFromContext extracts the authenticated user's claims, if present.
func ClaimsFromContext(ctx context.Context) (*Claims, bool) {
	claims, ok := ctx.Value(UserClaimsKey).(*Claims)
	return claims, ok
}

func writeAuthError(w http.ResponseWriter, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	fmt.Fprintf(w, `{"error":%q}`, msg)
}
