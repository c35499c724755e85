// Package identity implements the external identity collaborator behind the
// session lifecycle manager. Two provider variants exist, a self-hosted
// signer and a third-party OAuth provider, both hidden behind the same
// Verify/Exchange pair and selected by configuration, not by branching in
// callers.
package identity

import (
	"context"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/funcland/control-plane/internal/core/ports"
)

// ProviderSelfHosted names the built-in signer variant.
const ProviderSelfHosted = "selfhosted"

// JWTProvider is the self-hosted identity variant: the sign-in page submits
// an HS256 assertion signed with a shared secret, and the same assertion is
// the session seed re-validated on every verification round trip. When the
// assertion expires, verification fails and the session must be reissued.
type JWTProvider struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewJWTProvider(secret string, ttl time.Duration) *JWTProvider {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &JWTProvider{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// Verify parses a previously issued seed and returns the claims it asserts.
func (p *JWTProvider) Verify(_ context.Context, seed string) (*ports.IdentityClaims, error) {
	claims, err := p.parse(seed)
	if err != nil {
		return nil, err
	}
	return claims, nil
}

// Exchange validates the sign-in assertion and re-mints it as the session
// seed with a fresh expiry.
func (p *JWTProvider) Exchange(_ context.Context, in ports.IdentityClaims) (*ports.SessionSeed, error) {
	claims, err := p.parse(in.Credential)
	if err != nil {
		return nil, err
	}

	now := p.now().UTC()
	seed := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":    claims.Subject,
		"email":  claims.Email,
		"name":   claims.Name,
		"avatar": claims.AvatarURL,
		"iat":    now.Unix(),
		"exp":    now.Add(p.ttl).Unix(),
	})
	value, err := seed.SignedString(p.secret)
	if err != nil {
		return nil, fmt.Errorf("sign session seed: %w", err)
	}

	return &ports.SessionSeed{
		Provider:  ProviderSelfHosted,
		Subject:   claims.Subject,
		Email:     claims.Email,
		Name:      claims.Name,
		AvatarURL: claims.AvatarURL,
		Value:     value,
	}, nil
}

func (p *JWTProvider) parse(token string) (*ports.IdentityClaims, error) {
	claims := jwt.MapClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, jwt.ErrTokenSignatureInvalid
		}
		return p.secret, nil
	})
	if err != nil || !parsed.Valid {
		return nil, fmt.Errorf("invalid identity assertion: %w", err)
	}

	sub, _ := claims["sub"].(string)
	if sub == "" {
		return nil, fmt.Errorf("identity assertion missing subject")
	}
	email, _ := claims["email"].(string)
	name, _ := claims["name"].(string)
	avatar, _ := claims["avatar"].(string)

	return &ports.IdentityClaims{
		Provider:  ProviderSelfHosted,
		Subject:   sub,
		Email:     email,
		Name:      name,
		AvatarURL: avatar,
	}, nil
}
