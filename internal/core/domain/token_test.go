package domain

import (
	"testing"
	"time"
)

func TestSessionToken_Expired(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	noExpiry := &SessionToken{}
	if noExpiry.Expired(now) {
		t.Error("a token without ExpiresAt must never expire")
	}

	past := &SessionToken{ExpiresAt: now.Add(-time.Second)}
	if !past.Expired(now) {
		t.Error("a token with ExpiresAt in the past must be expired")
	}

	future := &SessionToken{ExpiresAt: now.Add(time.Second)}
	if future.Expired(now) {
		t.Error("a token with ExpiresAt in the future must not be expired")
	}
}

func TestSessionToken_Fresh(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	token := &SessionToken{
		ActiveAt:       now.Add(-30 * time.Second),
		ActiveInterval: 60 * time.Second,
	}

	if !token.Fresh(now) {
		t.Error("token inside the active interval must be fresh")
	}

	// Exactly at the interval boundary the fast path no longer applies.
	token.ActiveAt = now.Add(-60 * time.Second)
	if token.Fresh(now) {
		t.Error("token exactly at the interval boundary must not be fresh")
	}

	token.ActiveAt = now.Add(-61 * time.Second)
	if token.Fresh(now) {
		t.Error("token past the interval must not be fresh")
	}
}

func TestDeploymentToken_Expired(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	forever := &DeploymentToken{}
	if forever.Expired(now) {
		t.Error("a token without ExpiredAt must never expire")
	}

	stale := &DeploymentToken{ExpiredAt: now.Add(-time.Minute)}
	if !stale.Expired(now) {
		t.Error("a token past ExpiredAt must be expired")
	}
}
