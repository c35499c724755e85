package queue

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/funcland/control-plane/internal/core/domain"
)

type recordingAuditRepo struct {
	mu     sync.Mutex
	events []*domain.AuditEvent
	done   chan struct{}
	want   int
}

func (r *recordingAuditRepo) Insert(_ context.Context, e *domain.AuditEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
	if len(r.events) == r.want {
		close(r.done)
	}
	return nil
}

func (r *recordingAuditRepo) ListRecent(context.Context, int64) ([]*domain.AuditEvent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.events, nil
}

func TestAuditDispatcher_DeliversAllEvents(t *testing.T) {
	const n = 20
	repo := &recordingAuditRepo{done: make(chan struct{}), want: n}
	d := NewAuditDispatcher(4, repo, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	d.Start(ctx)

	for i := 0; i < n; i++ {
		d.Record(domain.AuditEvent{
			Action:   "project.create",
			EntityID: string(rune('a' + i%4)),
		})
	}

	select {
	case <-repo.done:
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out; delivered %d of %d events", len(repo.events), n)
	}
}

func TestAuditDispatcher_PreservesPerEntityOrder(t *testing.T) {
	const n = 10
	repo := &recordingAuditRepo{done: make(chan struct{}), want: n}
	d := NewAuditDispatcher(4, repo, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	d.Start(ctx)

	for i := 0; i < n; i++ {
		d.Record(domain.AuditEvent{
			Action:   "deployment.promote",
			EntityID: "proj-1",
			Detail:   string(rune('0' + i)),
		})
	}

	select {
	case <-repo.done:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for events")
	}

	repo.mu.Lock()
	defer repo.mu.Unlock()
	for i, e := range repo.events {
		if e.Detail != string(rune('0'+i)) {
			t.Fatalf("event %d out of order: %q", i, e.Detail)
		}
	}
}

func TestNopRecorder_Discards(t *testing.T) {
	// Just must not panic or block.
	NopRecorder{}.Record(domain.AuditEvent{Action: "project.create"})
}
