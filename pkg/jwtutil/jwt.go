package jwtutil

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/singhkevin/ProductCodeScanner2-docker2/pkg/config"
)

var cfg *config.JWTConfig

// UserClaims represents the JWT claims for user authentication
type UserClaims struct {
	Email       string `json:"email"`
	UserID      uint   `json:"user_id"`
	Role        string `json:"role"`
	CompanyID   *uint  `json:"company_id,omitempty"`   // Set for company-scoped callers
	CompanyName string `json:"company_name,omitempty"` // Adding company name for convenience
	jwt.RegisteredClaims
}

// Initialize sets the JWT configuration for the package
func Initialize(jwtConfig *config.JWTConfig) {
	cfg = jwtConfig
}

// GenerateToken creates a JWT token with user, role and company information
func GenerateToken(email string, userID uint, role string, companyID *uint, companyName string) (string, error) {
	if cfg == nil {
		return "", errors.New("JWT configuration not provided")
	}

	claims := UserClaims{
		Email:       email,
		UserID:      userID,
		Role:        role,
		CompanyID:   companyID,
		CompanyName: companyName,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Duration(cfg.ExpirationHours) * time.Hour)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(cfg.SigningKey))
}

// ValidateToken validates and parses the JWT token
func ValidateToken(tokenString string) (*UserClaims, error) {
	if cfg == nil {
		return nil, errors.New("JWT configuration not provided")
	}

	token, err := jwt.ParseWithClaims(
		tokenString,
		&UserClaims{},
		func(token *jwt.Token) (interface{}, error) {
			// Validate the signing method
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return []byte(cfg.SigningKey), nil
		},
	)

	if err != nil {
		return nil, err
	}

	if claims, ok := token.Claims.(*UserClaims); ok && token.Valid {
		return claims, nil
	}

	return nil, errors.New("invalid token")
}
