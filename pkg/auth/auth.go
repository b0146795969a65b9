// Package auth verifies bearer tokens and decides whether the caller may
// act on a class and student.
package auth

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/golang-jwt/jwt/v5"
)

// Role is the caller's role within their tenant.
type Role string

const (
	RoleStudent    Role = "student"
	RoleSupervisor Role = "supervisor"
)

var (
	ErrUnauthorized = errors.New("Not authorised")
	ErrForbidden    = errors.New("Forbidden")
)

// Identity is the authenticated caller.
type Identity struct {
	UserID string
	Tenant string
	Role   Role
}

// Verifier turns a raw bearer token into an Identity.
type Verifier interface {
	Verify(ctx context.Context, token string) (*Identity, error)
}

// Claims is the token payload. Role and tenant live under app_metadata.
type Claims struct {
	Metadata struct {
		Role   Role   `json:"role"`
		Tenant string `json:"tenant"`
	} `json:"app_metadata"`
	jwt.RegisteredClaims
}

func (c *Claims) identity() (*Identity, error) {
	if c.Subject == "" || c.Metadata.Tenant == "" {
		return nil, ErrUnauthorized
	}
	switch c.Metadata.Role {
	case RoleStudent, RoleSupervisor:
	default:
		return nil, ErrUnauthorized
	}
	return &Identity{UserID: c.Subject, Tenant: c.Metadata.Tenant, Role: c.Metadata.Role}, nil
}

// New builds the verifier selected by cfg. OIDC keys are fetched lazily
// on first use.
func New(ctx context.Context, cfg *Config) Verifier {
	if cfg.Secret != "" {
		return NewSecretVerifier([]byte(cfg.Secret), cfg.Issuer, cfg.LeewayDuration())
	}
	return NewOIDCVerifier(cfg.Issuer, cfg.Audience, oidc.NewRemoteKeySet(ctx, cfg.JWKSURL))
}

// Authorize reports whether id may act on studentID within classID.
// Supervisors may act on any student of their own tenant.
func Authorize(id *Identity, classID, studentID string) error {
	if id == nil {
		return ErrUnauthorized
	}
	if id.Tenant != classID {
		return ErrForbidden
	}
	if id.Role == RoleSupervisor {
		return nil
	}
	if id.UserID != studentID {
		return ErrForbidden
	}
	return nil
}

// RequireSupervisor reports whether id supervises classID.
func RequireSupervisor(id *Identity, classID string) error {
	if id == nil {
		return ErrUnauthorized
	}
	if id.Tenant != classID || id.Role != RoleSupervisor {
		return ErrForbidden
	}
	return nil
}

// MapHTTPStatus maps auth errors to 401 and 403.
func MapHTTPStatus(err error) int {
	if errors.Is(err, ErrUnauthorized) {
		return http.StatusUnauthorized
	}
	if errors.Is(err, ErrForbidden) {
		return http.StatusForbidden
	}
	return http.StatusInternalServerError
}

// Mint signs an HS256 token for id. Used by local tooling and tests.
func Mint(secret []byte, issuer string, id Identity, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   id.UserID,
			Issuer:    issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	claims.Metadata.Role = id.Role
	claims.Metadata.Tenant = id.Tenant

	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}
