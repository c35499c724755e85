package redis

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/funcland/control-plane/internal/core/domain"
)

// SessionStore is the credential store for session tokens, backed by Redis.
//
// Key layout:
//
//	session:<secret>                  hash with the token fields
//	session:id:<uuid>                 secret, for revocation by uuid
//	session:identity:<provider>:<sub> secret, for idempotent reissue
//
// The hash TTL mirrors the token's hard expiry, so Redis reclaims revoked
// and abandoned sessions on its own; the lifecycle manager still checks
// expires_at per request and never relies on the TTL for correctness.
type SessionStore struct {
	client *redis.Client
}

func NewSessionStore(client *redis.Client) *SessionStore {
	return &SessionStore{client: client}
}

func secretKey(secret string) string { return "session:" + secret }
func uuidKey(uuid string) string     { return "session:id:" + uuid }
func identityKey(provider, subject string) string {
	return fmt.Sprintf("session:identity:%s:%s", provider, subject)
}

// Put persists the token and its secondary indexes. Writes are immediately
// visible to subsequent reads.
func (s *SessionStore) Put(ctx context.Context, t *domain.SessionToken) error {
	fields := map[string]any{
		"uuid":            t.UUID,
		"user_id":         t.UserID,
		"provider":        t.Provider,
		"subject":         t.Subject,
		"seed":            t.Seed,
		"issued_at":       t.IssuedAt.UnixNano(),
		"expires_at":      expiryField(t.ExpiresAt),
		"active_at":       t.ActiveAt.UnixNano(),
		"active_interval": int64(t.ActiveInterval / time.Second),
	}

	pipe := s.client.TxPipeline()
	pipe.HSet(ctx, secretKey(t.Secret), fields)
	pipe.Set(ctx, uuidKey(t.UUID), t.Secret, 0)
	pipe.Set(ctx, identityKey(t.Provider, t.Subject), t.Secret, 0)
	if !t.ExpiresAt.IsZero() {
		ttl := time.Until(t.ExpiresAt)
		pipe.Expire(ctx, secretKey(t.Secret), ttl)
		pipe.Expire(ctx, uuidKey(t.UUID), ttl)
		pipe.Expire(ctx, identityKey(t.Provider, t.Subject), ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("session put: %w", err)
	}
	return nil
}

func (s *SessionStore) FindBySecret(ctx context.Context, secret string) (*domain.SessionToken, error) {
	fields, err := s.client.HGetAll(ctx, secretKey(secret)).Result()
	if err != nil {
		return nil, fmt.Errorf("session lookup: %w", err)
	}
	if len(fields) == 0 {
		return nil, domain.ErrNoSession
	}
	return decodeToken(secret, fields)
}

func (s *SessionStore) FindByIdentity(ctx context.Context, provider, subject string) (*domain.SessionToken, error) {
	secret, err := s.client.Get(ctx, identityKey(provider, subject)).Result()
	if err == redis.Nil {
		return nil, domain.ErrNoSession
	}
	if err != nil {
		return nil, fmt.Errorf("session identity lookup: %w", err)
	}
	return s.FindBySecret(ctx, secret)
}

// Touch records a successful verification.
func (s *SessionStore) Touch(ctx context.Context, secret string, activeAt time.Time) error {
	if err := s.client.HSet(ctx, secretKey(secret), "active_at", activeAt.UnixNano()).Err(); err != nil {
		return fmt.Errorf("session touch: %w", err)
	}
	return nil
}

// Delete removes the token and its indexes. Unknown secrets are a no-op.
func (s *SessionStore) Delete(ctx context.Context, secret string) error {
	t, err := s.FindBySecret(ctx, secret)
	if err == domain.ErrNoSession {
		return nil
	}
	if err != nil {
		return err
	}

	pipe := s.client.TxPipeline()
	pipe.Del(ctx, secretKey(secret))
	pipe.Del(ctx, uuidKey(t.UUID))
	pipe.Del(ctx, identityKey(t.Provider, t.Subject))
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("session delete: %w", err)
	}
	return nil
}

func expiryField(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.UnixNano()
}

func decodeToken(secret string, fields map[string]string) (*domain.SessionToken, error) {
	issued, err := strconv.ParseInt(fields["issued_at"], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("session decode issued_at: %w", err)
	}
	expires, err := strconv.ParseInt(fields["expires_at"], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("session decode expires_at: %w", err)
	}
	active, err := strconv.ParseInt(fields["active_at"], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("session decode active_at: %w", err)
	}
	interval, err := strconv.ParseInt(fields["active_interval"], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("session decode active_interval: %w", err)
	}

	t := &domain.SessionToken{
		UUID:           fields["uuid"],
		Secret:         secret,
		UserID:         fields["user_id"],
		Provider:       fields["provider"],
		Subject:        fields["subject"],
		Seed:           fields["seed"],
		IssuedAt:       time.Unix(0, issued).UTC(),
		ActiveAt:       time.Unix(0, active).UTC(),
		ActiveInterval: time.Duration(interval) * time.Second,
	}
	if expires != 0 {
		t.ExpiresAt = time.Unix(0, expires).UTC()
	}
	return t, nil
}
