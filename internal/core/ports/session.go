package ports

import (
	"context"
	"time"

	"github.com/funcland/control-plane/internal/core/domain"
)

// IdentityClaims are the verified facts an external identity provider asserts
// about a user. Credential carries the provider artefact backing the claims
// (an authorization code or a signed assertion, depending on the provider).
type IdentityClaims struct {
	Provider   string
	Subject    string
	Email      string
	Name       string
	AvatarURL  string
	Credential string
}

// SessionSeed is the provider credential a session is anchored to. The seed
// is stored with the session token and presented back to the provider when
// the active interval elapses.
type SessionSeed struct {
	Provider  string
	Subject   string
	Email     string
	Name      string
	AvatarURL string
	Value     string
}

// IdentityProvider abstracts the external identity collaborator. Both
// operations may block on network I/O; callers must not hold a store
// transaction open across them.
type IdentityProvider interface {
	// Verify checks a previously issued seed and returns the claims it
	// asserts. A failure means the provider no longer vouches for the
	// session.
	Verify(ctx context.Context, seed string) (*IdentityClaims, error)
	// Exchange validates fresh identity claims from a sign-in callback and
	// returns the seed for a new session.
	Exchange(ctx context.Context, claims IdentityClaims) (*SessionSeed, error)
}

// SessionStore is the credential store for session tokens: keyed storage
// with point lookups and deletes, no validation logic.
type SessionStore interface {
	// Put persists the token, indexed by secret, uuid, and owning external
	// identity. Writes are immediately visible to subsequent reads.
	Put(ctx context.Context, token *domain.SessionToken) error
	// FindBySecret returns domain.ErrNoSession when the secret is unknown.
	FindBySecret(ctx context.Context, secret string) (*domain.SessionToken, error)
	// FindByIdentity returns the current session for a provider identity,
	// or domain.ErrNoSession.
	FindByIdentity(ctx context.Context, provider, subject string) (*domain.SessionToken, error)
	// Touch updates the token's ActiveAt after a successful verification.
	Touch(ctx context.Context, secret string, activeAt time.Time) error
	// Delete removes the token and its indexes. Unknown secrets are a no-op.
	Delete(ctx context.Context, secret string) error
}

// AuthorizeResult is returned by a successful Authorize call.
type AuthorizeResult struct {
	User  *domain.User
	Token *domain.SessionToken
	// Verified is true when this call performed a provider round trip
	// rather than taking the active-interval fast path.
	Verified bool
}

// IssueResult is returned by Issue; Secret is the only place the session
// secret is handed out.
type IssueResult struct {
	User   *domain.User
	Token  *domain.SessionToken
	Secret string
}

// SessionService is the session lifecycle manager.
type SessionService interface {
	// Authorize decides whether the presented secret is usable as-is,
	// refreshes it against the identity provider, or rejects it with
	// ErrNoSession, ErrSessionExpired, or ErrVerificationFailed.
	Authorize(ctx context.Context, secret string) (*AuthorizeResult, error)
	// Issue mints a new session from identity claims. Idempotent per
	// external identity: re-issuing replaces the prior token.
	Issue(ctx context.Context, claims IdentityClaims) (*IssueResult, error)
	// Revoke destroys the session for the presented secret.
	Revoke(ctx context.Context, secret string) error
}
