package service

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/funcland/control-plane/internal/core/domain"
	"github.com/funcland/control-plane/internal/core/ports"
)

var discardLogger = zerolog.Nop()

// ---------------------------------------------------------------------------
// In-memory stub repositories
//
// The stubs mirror the filters the real Mongo repositories apply, including
// the prod-pointer compare-and-swap, so the services see the same error
// surface they would against the real store.
// ---------------------------------------------------------------------------

type stubProjectRepo struct {
	byUUID   map[string]*domain.Project
	casCalls int
	// casHook runs just before a compare-and-swap evaluates, letting a
	// test interleave a concurrent writer.
	casHook func()
}

func newStubProjectRepo() *stubProjectRepo {
	return &stubProjectRepo{byUUID: make(map[string]*domain.Project)}
}

func (r *stubProjectRepo) Create(_ context.Context, p *domain.Project) error {
	for _, existing := range r.byUUID {
		if existing.OwnerID == p.OwnerID && existing.Name == p.Name {
			return domain.ErrProjectExists
		}
	}
	clone := *p
	r.byUUID[p.UUID] = &clone
	return nil
}

func (r *stubProjectRepo) FindByUUID(_ context.Context, uuid string) (*domain.Project, error) {
	p, ok := r.byUUID[uuid]
	if !ok {
		return nil, domain.ErrProjectNotFound
	}
	clone := *p
	return &clone, nil
}

func (r *stubProjectRepo) FindByName(_ context.Context, ownerID, name string) (*domain.Project, error) {
	for _, p := range r.byUUID {
		if p.OwnerID == ownerID && p.Name == name {
			clone := *p
			return &clone, nil
		}
	}
	return nil, domain.ErrProjectNotFound
}

func (r *stubProjectRepo) List(_ context.Context, ownerID string) ([]*domain.Project, error) {
	var out []*domain.Project
	for _, p := range r.byUUID {
		if ownerID != "" && p.OwnerID != ownerID {
			continue
		}
		clone := *p
		out = append(out, &clone)
	}
	return out, nil
}

func (r *stubProjectRepo) SetStatus(_ context.Context, uuid string, status domain.ProjectStatus) error {
	p, ok := r.byUUID[uuid]
	if !ok {
		return domain.ErrProjectNotFound
	}
	p.Status = status
	return nil
}

func (r *stubProjectRepo) CompareAndSwapProdDeployment(_ context.Context, uuid, prev, next string) error {
	if r.casHook != nil {
		r.casHook()
	}
	r.casCalls++
	p, ok := r.byUUID[uuid]
	if !ok {
		return domain.ErrProjectNotFound
	}
	if p.ProdDeploymentID != prev {
		return domain.ErrConcurrentModification
	}
	p.ProdDeploymentID = next
	return nil
}

func (r *stubProjectRepo) Rename(_ context.Context, uuid, prev, name string) error {
	p, ok := r.byUUID[uuid]
	if !ok {
		return domain.ErrProjectNotFound
	}
	if p.ProdDeploymentID != prev {
		return domain.ErrConcurrentModification
	}
	p.Name = name
	return nil
}

func (r *stubProjectRepo) Delete(_ context.Context, uuid, prev string) error {
	p, ok := r.byUUID[uuid]
	if !ok {
		return domain.ErrProjectNotFound
	}
	if p.ProdDeploymentID != prev {
		return domain.ErrConcurrentModification
	}
	delete(r.byUUID, uuid)
	return nil
}

func (r *stubProjectRepo) Count(_ context.Context) (int64, error) {
	return int64(len(r.byUUID)), nil
}

type stubDeploymentRepo struct {
	byUUID map[string]*domain.Deployment
	seqs   map[string]int64
}

func newStubDeploymentRepo() *stubDeploymentRepo {
	return &stubDeploymentRepo{
		byUUID: make(map[string]*domain.Deployment),
		seqs:   make(map[string]int64),
	}
}

func (r *stubDeploymentRepo) Create(_ context.Context, d *domain.Deployment) error {
	clone := *d
	r.byUUID[d.UUID] = &clone
	return nil
}

func (r *stubDeploymentRepo) FindByUUID(_ context.Context, uuid string) (*domain.Deployment, error) {
	d, ok := r.byUUID[uuid]
	if !ok {
		return nil, domain.ErrDeploymentNotFound
	}
	clone := *d
	return &clone, nil
}

func (r *stubDeploymentRepo) ListByProject(_ context.Context, projectID string) ([]*domain.Deployment, error) {
	var out []*domain.Deployment
	for _, d := range r.byUUID {
		if d.ProjectID == projectID {
			clone := *d
			out = append(out, &clone)
		}
	}
	return out, nil
}

func (r *stubDeploymentRepo) NextSeq(_ context.Context, projectID string) (int64, error) {
	r.seqs[projectID]++
	return r.seqs[projectID], nil
}

func (r *stubDeploymentRepo) SetDeployStatus(_ context.Context, uuid string, from, to domain.DeployStatus) error {
	d, ok := r.byUUID[uuid]
	if !ok {
		return domain.ErrDeploymentNotFound
	}
	// Mirrors the real repo's filtered update: the write only lands when
	// the current status still matches the expectation.
	if d.DeployStatus != from {
		return domain.ErrInvalidTransition
	}
	d.DeployStatus = to
	return nil
}

func (r *stubDeploymentRepo) SetStatus(_ context.Context, uuid string, status domain.DeploymentStatus) error {
	d, ok := r.byUUID[uuid]
	if !ok {
		return domain.ErrDeploymentNotFound
	}
	d.Status = status
	return nil
}

func (r *stubDeploymentRepo) SetProd(_ context.Context, uuid string, isProd bool) error {
	d, ok := r.byUUID[uuid]
	if !ok {
		return domain.ErrDeploymentNotFound
	}
	d.IsProd = isProd
	return nil
}

func (r *stubDeploymentRepo) DeleteByProject(_ context.Context, projectID string) error {
	for uuid, d := range r.byUUID {
		if d.ProjectID == projectID {
			delete(r.byUUID, uuid)
		}
	}
	return nil
}

func (r *stubDeploymentRepo) CountByDeployStatus(_ context.Context) (map[domain.DeployStatus]int64, error) {
	out := make(map[domain.DeployStatus]int64)
	for _, d := range r.byUUID {
		out[d.DeployStatus]++
	}
	return out, nil
}

type stubUserRepo struct {
	byID map[string]*domain.User
}

func newStubUserRepo() *stubUserRepo {
	return &stubUserRepo{byID: make(map[string]*domain.User)}
}

func (r *stubUserRepo) FindByID(_ context.Context, id string) (*domain.User, error) {
	u, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	clone := *u
	return &clone, nil
}

func (r *stubUserRepo) FindByIdentity(_ context.Context, provider, subject string) (*domain.User, error) {
	for _, u := range r.byID {
		if u.Provider == provider && u.Subject == subject {
			clone := *u
			return &clone, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

// Upsert keeps the stored id and role on conflict, like the real repo's
// $setOnInsert.
func (r *stubUserRepo) Upsert(_ context.Context, u *domain.User) (*domain.User, error) {
	for _, existing := range r.byID {
		if existing.Provider == u.Provider && existing.Subject == u.Subject {
			existing.Name = u.Name
			existing.Email = u.Email
			existing.AvatarURL = u.AvatarURL
			existing.UpdatedAt = u.UpdatedAt
			clone := *existing
			return &clone, nil
		}
	}
	clone := *u
	r.byID[u.ID] = &clone
	return u, nil
}

func (r *stubUserRepo) Count(_ context.Context) (int64, error) {
	return int64(len(r.byID)), nil
}

type stubSessionStore struct {
	bySecret map[string]*domain.SessionToken
}

func newStubSessionStore() *stubSessionStore {
	return &stubSessionStore{bySecret: make(map[string]*domain.SessionToken)}
}

func (s *stubSessionStore) Put(_ context.Context, token *domain.SessionToken) error {
	clone := *token
	s.bySecret[token.Secret] = &clone
	return nil
}

func (s *stubSessionStore) FindBySecret(_ context.Context, secret string) (*domain.SessionToken, error) {
	t, ok := s.bySecret[secret]
	if !ok {
		return nil, domain.ErrNoSession
	}
	clone := *t
	return &clone, nil
}

func (s *stubSessionStore) FindByIdentity(_ context.Context, provider, subject string) (*domain.SessionToken, error) {
	for _, t := range s.bySecret {
		if t.Provider == provider && t.Subject == subject {
			clone := *t
			return &clone, nil
		}
	}
	return nil, domain.ErrNoSession
}

func (s *stubSessionStore) Touch(_ context.Context, secret string, activeAt time.Time) error {
	t, ok := s.bySecret[secret]
	if !ok {
		return domain.ErrNoSession
	}
	t.ActiveAt = activeAt
	return nil
}

func (s *stubSessionStore) Delete(_ context.Context, secret string) error {
	delete(s.bySecret, secret)
	return nil
}

type stubIdentityProvider struct {
	verifyClaims *ports.IdentityClaims
	verifyErr    error
	verifyCalls  int
	exchangeSeed *ports.SessionSeed
	exchangeErr  error
}

func (p *stubIdentityProvider) Verify(_ context.Context, _ string) (*ports.IdentityClaims, error) {
	p.verifyCalls++
	if p.verifyErr != nil {
		return nil, p.verifyErr
	}
	return p.verifyClaims, nil
}

func (p *stubIdentityProvider) Exchange(_ context.Context, _ ports.IdentityClaims) (*ports.SessionSeed, error) {
	if p.exchangeErr != nil {
		return nil, p.exchangeErr
	}
	return p.exchangeSeed, nil
}

type stubTokenRepo struct {
	byUUID map[string]*domain.DeploymentToken
}

func newStubTokenRepo() *stubTokenRepo {
	return &stubTokenRepo{byUUID: make(map[string]*domain.DeploymentToken)}
}

func (r *stubTokenRepo) Create(_ context.Context, t *domain.DeploymentToken) error {
	clone := *t
	r.byUUID[t.UUID] = &clone
	return nil
}

func (r *stubTokenRepo) FindByUUID(_ context.Context, uuid string) (*domain.DeploymentToken, error) {
	t, ok := r.byUUID[uuid]
	if !ok {
		return nil, domain.ErrTokenNotFound
	}
	clone := *t
	return &clone, nil
}

func (r *stubTokenRepo) ListByOwner(_ context.Context, ownerID string) ([]*domain.DeploymentToken, error) {
	var out []*domain.DeploymentToken
	for _, t := range r.byUUID {
		if t.OwnerID == ownerID {
			clone := *t
			out = append(out, &clone)
		}
	}
	return out, nil
}

func (r *stubTokenRepo) Delete(_ context.Context, uuid string) error {
	delete(r.byUUID, uuid)
	return nil
}

type stubAuditRecorder struct {
	events []domain.AuditEvent
}

func (a *stubAuditRecorder) Record(e domain.AuditEvent) {
	a.events = append(a.events, e)
}
