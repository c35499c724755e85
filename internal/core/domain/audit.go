package domain

import "time"

// AuditEvent records a single successful control-plane mutation for the
// admin trail. Events are written asynchronously and are not part of the
// request's atomicity guarantees.
type AuditEvent struct {
	ActorID    string    `bson:"actor_id"`
	Action     string    `bson:"action"`
	EntityKind string    `bson:"entity_kind"`
	EntityID   string    `bson:"entity_id"`
	Detail     string    `bson:"detail,omitempty"`
	Timestamp  time.Time `bson:"timestamp"`
}
