// Package auth gates the admin dashboard behind a single shared credential
// exchanged for a short-lived JWT.
package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidToken       = errors.New("invalid token")
)

// RoleAdmin is the only role the service issues.
const RoleAdmin = "admin"

// Claims represents the JWT claims.
type Claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// Service defines the authentication service interface.
type Service interface {
	Login(password string) (string, error)
	ValidateToken(tokenString string) (*Claims, error)
}

// Config holds authentication configuration.
type Config struct {
	SecretKey string

	// AdminKey is the shared admin password. AdminKeyHash, when set, takes
	// precedence and is compared with bcrypt.
	AdminKey     string
	AdminKeyHash string

	TokenDuration time.Duration
}

// DefaultConfig returns default configuration.
func DefaultConfig() Config {
	return Config{
		SecretKey:     "change-me-in-production",
		AdminKey:      "trollornot-admin-2024",
		TokenDuration: 24 * time.Hour,
	}
}

// JWTService implements the Service interface.
type JWTService struct {
	config Config
}

// NewJWTService creates a new JWT-based authentication service.
func NewJWTService(config Config) *JWTService {
	if config.SecretKey == "" {
		config.SecretKey = DefaultConfig().SecretKey
	}
	if config.AdminKey == "" && config.AdminKeyHash == "" {
		config.AdminKey = DefaultConfig().AdminKey
	}
	if config.TokenDuration == 0 {
		config.TokenDuration = DefaultConfig().TokenDuration
	}

	return &JWTService{config: config}
}

// Login checks the admin credential and returns a JWT token.
func (s *JWTService) Login(password string) (string, error) {
	if s.config.AdminKeyHash != "" {
		if err := bcrypt.CompareHashAndPassword([]byte(s.config.AdminKeyHash), []byte(password)); err != nil {
			return "", ErrInvalidCredentials
		}
	} else if password != s.config.AdminKey {
		return "", ErrInvalidCredentials
	}

	return s.generateToken()
}

// ValidateToken validates a JWT token and returns the claims.
func (s *JWTService) ValidateToken(tokenString string) (*Claims, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return []byte(s.config.SecretKey), nil
	})

	if err != nil {
		return nil, ErrInvalidToken
	}

	if !token.Valid || claims.Role != RoleAdmin {
		return nil, ErrInvalidToken
	}

	return claims, nil
}

func (s *JWTService) generateToken() (string, error) {
	claims := &Claims{
		Role: RoleAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(s.config.TokenDuration)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.config.SecretKey))
}

// HashKey hashes an admin key using bcrypt, for generating AdminKeyHash
// values out of band.
func HashKey(key string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(key), bcrypt.DefaultCost)
	return string(bytes), err
}
