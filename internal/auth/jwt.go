package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	// ErrNoToken is returned when the request carries no bearer token.
	ErrNoToken = errors.New("auth: no bearer token")
	// ErrBadToken covers malformed, mis-signed and expired tokens.
	ErrBadToken = errors.New("auth: token rejected")
)

// Claims is the token payload this service issues and accepts: the
// tenant whose data the caller may touch and one of the finance roles
// (viewer, accountant, admin).
type Claims struct {
	TenantID string `json:"tenant_id"`
	Role     string `json:"role"`
	jwt.RegisteredClaims
}

// ParseJWT verifies an HS256-signed token and validates its claims.
// A token without a tenant or with an unknown role is rejected even
// when the signature checks out.
func ParseJWT(tokenString string, secret []byte) (*Claims, error) {
	if tokenString == "" {
		return nil, ErrNoToken
	}
	if len(secret) == 0 {
		return nil, errors.New("auth: signing secret not configured")
	}

	parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	claims := &Claims{}
	token, err := parser.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("auth: unexpected signing method %q", token.Method.Alg())
		}
		return secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadToken, err)
	}
	if !token.Valid {
		return nil, ErrBadToken
	}
	if claims.TenantID == "" {
		return nil, fmt.Errorf("%w: tenant_id claim missing", ErrBadToken)
	}
	if _, ok := NormalizeRole(claims.Role); !ok {
		return nil, fmt.Errorf("%w: unknown role %q", ErrBadToken, claims.Role)
	}
	if claims.ExpiresAt != nil && time.Now().After(claims.ExpiresAt.Time) {
		return nil, fmt.Errorf("%w: expired", ErrBadToken)
	}
	return claims, nil
}
