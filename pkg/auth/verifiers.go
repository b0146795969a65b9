package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/golang-jwt/jwt/v5"
)

type secretVerifier struct {
	secret []byte
	parser *jwt.Parser
}

// NewSecretVerifier accepts HS256 tokens signed with secret. An empty
// issuer skips the issuer check.
func NewSecretVerifier(secret []byte, issuer string, leeway time.Duration) Verifier {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithLeeway(leeway),
	}
	if issuer != "" {
		opts = append(opts, jwt.WithIssuer(issuer))
	}
	return &secretVerifier{secret: secret, parser: jwt.NewParser(opts...)}
}

func (v *secretVerifier) Verify(_ context.Context, token string) (*Identity, error) {
	var claims Claims
	_, err := v.parser.ParseWithClaims(token, &claims, func(*jwt.Token) (any, error) {
		return v.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnauthorized, err)
	}
	return claims.identity()
}

type oidcVerifier struct {
	verifier *oidc.IDTokenVerifier
}

// NewOIDCVerifier accepts ID tokens from issuer for audience, checked
// against keys.
func NewOIDCVerifier(issuer, audience string, keys oidc.KeySet) Verifier {
	return &oidcVerifier{
		verifier: oidc.NewVerifier(issuer, keys, &oidc.Config{ClientID: audience}),
	}
}

func (v *oidcVerifier) Verify(ctx context.Context, token string) (*Identity, error) {
	idToken, err := v.verifier.Verify(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnauthorized, err)
	}

	var claims Claims
	if err := idToken.Claims(&claims); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnauthorized, err)
	}
	claims.Subject = idToken.Subject

	return claims.identity()
}
