package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/gmcandra/mebelshop/config"
	"golang.org/x/crypto/bcrypt"
)

// Role values carried in token claims.
const (
	RoleAdmin = "ADMIN"
	RoleUser  = "USER"
)

// ErrInvalidToken is returned when a token cannot be parsed into claims.
var ErrInvalidToken = errors.New("auth: invalid token")

// Claims holds the typed JWT payload. Name and email ride along so the
// storefront can render the signed-in identity without a profile round-trip.
type Claims struct {
	UserID uint   `json:"user_id"`
	Role   string `json:"role"`
	Name   string `json:"name"`
	Email  string `json:"email"`
	jwt.RegisteredClaims
}

func secret() []byte {
	return []byte(config.JWTSecret())
}

// GenerateToken creates a signed JWT for the given user.
func GenerateToken(userID uint, role, name, email string) (string, error) {
	claims := Claims{
		UserID: userID,
		Role:   role,
		Name:   name,
		Email:  email,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(24 * time.Hour)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret())
}

// ValidateToken parses a JWT and verifies its signature and expiry.
// Used by the auth middleware, where the server is the trust anchor.
func ValidateToken(t string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(t, &Claims{}, func(tok *jwt.Token) (interface{}, error) {
		return secret(), nil
	})
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, jwt.ErrTokenInvalidClaims
	}

	return claims, nil
}

// DecodeClaims structurally parses a token WITHOUT verifying signature or
// expiry. This is the session store's untrusted parse: it only needs the
// claims to derive role and identity, and must fail closed on malformed
// input rather than panic or half-populate state.
func DecodeClaims(t string) (*Claims, error) {
	parser := jwt.NewParser()

	claims := &Claims{}
	if _, _, err := parser.ParseUnverified(t, claims); err != nil {
		return nil, ErrInvalidToken
	}
	if claims.Role == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// HashPassword returns a bcrypt hash of the plain-text password.
func HashPassword(plain string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)
	return string(bytes), err
}

// CheckPassword compares a bcrypt hash against the plain-text candidate.
func CheckPassword(hash, plain string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}
