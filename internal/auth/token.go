// Package auth provides JWT access token validation and the request
// authentication middlewares.
package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Role levels carried in access tokens
const (
	RoleUser  = 0
	RoleAdmin = 100
)

// User is the authenticated principal extracted from an access token
type User struct {
	ID            string
	Role          int
	EmailVerified bool
}

// Admin reports whether the user holds the administrative role
func (u User) Admin() bool {
	return u.Role >= RoleAdmin
}

// TokenGenerator handles JWT access token generation and validation
type TokenGenerator struct {
	secret            string
	accessTokenExpiry time.Duration
}

// NewTokenGenerator creates a new token generator
func NewTokenGenerator(secret string, accessExpiry time.Duration) *TokenGenerator {
	return &TokenGenerator{
		secret:            secret,
		accessTokenExpiry: accessExpiry,
	}
}

// GenerateAccessToken creates an access token carrying the user's ID,
// role and email verification state
func (tg *TokenGenerator) GenerateAccessToken(user User) (string, error) {
	claims := jwt.MapClaims{
		"user_id":        user.ID,
		"role":           user.Role,
		"email_verified": user.EmailVerified,
		"exp":            time.Now().Add(tg.accessTokenExpiry).Unix(),
		"iat":            time.Now().Unix(),
		"type":           "access",
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString([]byte(tg.secret))
	if err != nil {
		return "", fmt.Errorf("failed to sign access token: %w", err)
	}

	return tokenString, nil
}

// ValidateAccessToken validates an access token and returns the user it identifies
func (tg *TokenGenerator) ValidateAccessToken(tokenString string) (User, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (any, error) {
		// Validate the signing method
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(tg.secret), nil
	})
	if err != nil {
		return User{}, fmt.Errorf("failed to parse token: %w", err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return User{}, fmt.Errorf("invalid token")
	}

	if tokenType, _ := claims["type"].(string); tokenType != "access" {
		return User{}, fmt.Errorf("not an access token")
	}

	userID, ok := claims["user_id"].(string)
	if !ok || userID == "" {
		return User{}, fmt.Errorf("missing user_id claim")
	}

	user := User{ID: userID}
	if role, ok := claims["role"].(float64); ok {
		user.Role = int(role)
	}
	if verified, ok := claims["email_verified"].(bool); ok {
		user.EmailVerified = verified
	}

	return user, nil
}
