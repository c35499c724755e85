package domain

import "errors"

// Auth layer.
var ErrNoSession = errors.New("no session")
var ErrSessionExpired = errors.New("session expired")
var ErrVerificationFailed = errors.New("identity verification failed")

// State-machine layer.
var ErrProjectNotFound = errors.New("project not found")
var ErrDeploymentNotFound = errors.New("deployment not found")
var ErrDeploymentNotReady = errors.New("deployment not ready")
var ErrProjectMismatch = errors.New("deployment does not belong to project")
var ErrInvalidTransition = errors.New("invalid status transition")

// Storage layer. ConcurrentModification is the only error callers are
// expected to retry; everything above is a deterministic rejection.
var ErrConcurrentModification = errors.New("concurrent modification")

var ErrProjectExists = errors.New("project name already taken")
var ErrTokenNotFound = errors.New("token not found")
var ErrUserNotFound = errors.New("user not found")
var ErrForbidden = errors.New("access forbidden")
