package domain

import "time"

// SessionToken is the interactive credential a dashboard holds. The secret
// value is opaque to the client. ActiveAt records the last successful
// verification against the identity provider; a request inside the active
// interval is trusted without a provider round trip.
type SessionToken struct {
	UUID     string
	Secret   string
	UserID   string
	Provider string
	Subject  string
	// Seed is the provider-issued credential that backs this session. It is
	// presented back to the provider when the active interval has elapsed.
	Seed     string
	IssuedAt time.Time
	// ExpiresAt zero means no hard expiry.
	ExpiresAt      time.Time
	ActiveAt       time.Time
	ActiveInterval time.Duration
}

// Expired reports whether the token's hard expiry has passed. A token with
// ExpiresAt in the past is never valid regardless of the active interval.
func (t *SessionToken) Expired(now time.Time) bool {
	return !t.ExpiresAt.IsZero() && t.ExpiresAt.Before(now)
}

// Fresh reports whether the last verification is recent enough to skip the
// provider round trip.
func (t *SessionToken) Fresh(now time.Time) bool {
	return now.Sub(t.ActiveAt) < t.ActiveInterval
}

// TokenUsage distinguishes non-interactive credentials by their consumer.
type TokenUsage string

const (
	// UsageCmdline tokens authenticate command-line deploys.
	UsageCmdline TokenUsage = "cmdline"
	// UsageWorker tokens authenticate the build collaborator reporting
	// build outcomes.
	UsageWorker TokenUsage = "worker"
)

// DeploymentToken is a long-lived credential for non-interactive clients.
// Only a bcrypt hash of the secret is stored; the plaintext is returned
// exactly once, at creation.
type DeploymentToken struct {
	UUID       string     `json:"uuid" bson:"_id"`
	Name       string     `json:"name" bson:"name"`
	SecretHash string     `json:"-" bson:"secret_hash"`
	OwnerID    string     `json:"owner_id" bson:"owner_id"`
	Usage      TokenUsage `json:"usage" bson:"usage"`
	CreatedAt  time.Time  `json:"created_at" bson:"created_at"`
	// ExpiredAt zero means the token never expires.
	ExpiredAt time.Time `json:"expired_at,omitempty" bson:"expired_at,omitempty"`
}

// Expired reports whether the token has passed its expiry.
func (t *DeploymentToken) Expired(now time.Time) bool {
	return !t.ExpiredAt.IsZero() && t.ExpiredAt.Before(now)
}
