package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/funcland/control-plane/internal/core/domain"
)

func newDeploymentFixture() (*DeploymentService, *stubProjectRepo, *stubDeploymentRepo, *stubAuditRecorder) {
	projects := newStubProjectRepo()
	deployments := newStubDeploymentRepo()
	audit := &stubAuditRecorder{}
	svc := NewDeploymentService(projects, deployments, audit, discardLogger)
	return svc, projects, deployments, audit
}

func seedPendingProject(projects *stubProjectRepo) *domain.Project {
	p := &domain.Project{
		UUID:      "proj-1",
		Name:      "my-app",
		OwnerID:   "owner-1",
		Status:    domain.ProjectPending,
		Subdomain: "fn.example.com",
	}
	projects.byUUID[p.UUID] = p
	return p
}

// ---------------------------------------------------------------------------
// Create
// ---------------------------------------------------------------------------

func TestDeploymentService_Create_StartsDeploying(t *testing.T) {
	svc, projects, deployments, _ := newDeploymentFixture()
	seedPendingProject(projects)

	d, err := svc.Create(context.Background(), "owner-1", "proj-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d.DeployStatus != domain.DeployStatusDeploying {
		t.Errorf("deploy status = %s, want deploying", d.DeployStatus)
	}
	if d.Status != domain.DeploymentActive {
		t.Errorf("status = %s, want active", d.Status)
	}
	if d.Seq != 1 {
		t.Errorf("seq = %d, want 1", d.Seq)
	}
	if _, ok := deployments.byUUID[d.UUID]; !ok {
		t.Error("deployment not persisted")
	}
}

func TestDeploymentService_Create_PreviewURL(t *testing.T) {
	svc, projects, _, _ := newDeploymentFixture()
	seedPendingProject(projects)

	d, err := svc.Create(context.Background(), "owner-1", "proj-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	prefix := fmt.Sprintf("https://%s-%d-", "my-app", d.Seq)
	if !strings.HasPrefix(d.PreviewURL, prefix) {
		t.Errorf("preview URL %q must start with %q", d.PreviewURL, prefix)
	}
	if !strings.HasSuffix(d.PreviewURL, ".fn.example.com") {
		t.Errorf("preview URL %q must end with the platform subdomain", d.PreviewURL)
	}
}

func TestDeploymentService_Create_FlipsPendingToReady(t *testing.T) {
	svc, projects, _, _ := newDeploymentFixture()
	seedPendingProject(projects)

	if _, err := svc.Create(context.Background(), "owner-1", "proj-1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if projects.byUUID["proj-1"].Status != domain.ProjectReady {
		t.Error("first deployment must flip the project to ready")
	}
}

func TestDeploymentService_Create_SequencesPerProject(t *testing.T) {
	svc, projects, _, _ := newDeploymentFixture()
	seedPendingProject(projects)

	first, _ := svc.Create(context.Background(), "owner-1", "proj-1")
	second, _ := svc.Create(context.Background(), "owner-1", "proj-1")
	if first.Seq != 1 || second.Seq != 2 {
		t.Errorf("seqs = %d, %d; want 1, 2", first.Seq, second.Seq)
	}
}

func TestDeploymentService_Create_Forbidden(t *testing.T) {
	svc, projects, _, _ := newDeploymentFixture()
	seedPendingProject(projects)

	_, err := svc.Create(context.Background(), "intruder", "proj-1")
	if !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
}

// ---------------------------------------------------------------------------
// MarkBuildResult
// ---------------------------------------------------------------------------

func TestDeploymentService_MarkBuildResult_TransitionsOnce(t *testing.T) {
	svc, projects, deployments, _ := newDeploymentFixture()
	seedPendingProject(projects)
	d, _ := svc.Create(context.Background(), "owner-1", "proj-1")

	updated, err := svc.MarkBuildResult(context.Background(), d.UUID, domain.DeployStatusSuccess)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if updated.DeployStatus != domain.DeployStatusSuccess {
		t.Errorf("deploy status = %s, want success", updated.DeployStatus)
	}

	// A second report, either way, must be rejected without overwriting.
	_, err = svc.MarkBuildResult(context.Background(), d.UUID, domain.DeployStatusFailed)
	if !errors.Is(err, domain.ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition on double report, got %v", err)
	}
	if deployments.byUUID[d.UUID].DeployStatus != domain.DeployStatusSuccess {
		t.Error("terminal state must not be overwritten")
	}
}

func TestDeploymentService_MarkBuildResult_RejectsNonTerminalOutcome(t *testing.T) {
	svc, projects, _, _ := newDeploymentFixture()
	seedPendingProject(projects)
	d, _ := svc.Create(context.Background(), "owner-1", "proj-1")

	_, err := svc.MarkBuildResult(context.Background(), d.UUID, domain.DeployStatusDeploying)
	if !errors.Is(err, domain.ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition, got %v", err)
	}
}

// ---------------------------------------------------------------------------
// Disable / Enable
// ---------------------------------------------------------------------------

func successfulDeployment(svc *DeploymentService, t *testing.T) *domain.Deployment {
	t.Helper()
	d, err := svc.Create(context.Background(), "owner-1", "proj-1")
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if _, err := svc.MarkBuildResult(context.Background(), d.UUID, domain.DeployStatusSuccess); err != nil {
		t.Fatalf("mark failed: %v", err)
	}
	d.DeployStatus = domain.DeployStatusSuccess
	return d
}

func TestDeploymentService_Disable_ClearsProdPointer(t *testing.T) {
	svc, projects, deployments, _ := newDeploymentFixture()
	seedPendingProject(projects)
	d := successfulDeployment(svc, t)
	projects.byUUID["proj-1"].ProdDeploymentID = d.UUID
	deployments.byUUID[d.UUID].IsProd = true

	updated, err := svc.Disable(context.Background(), "owner-1", d.UUID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if updated.Status != domain.DeploymentInactive {
		t.Errorf("status = %s, want inactive", updated.Status)
	}
	if projects.byUUID["proj-1"].ProdDeploymentID != "" {
		t.Error("disabling the production deployment must clear the pointer")
	}
	if deployments.byUUID[d.UUID].IsProd {
		t.Error("is_prod flag must be cleared")
	}
}

func TestDeploymentService_Disable_NonProdLeavesPointer(t *testing.T) {
	svc, projects, deployments, _ := newDeploymentFixture()
	seedPendingProject(projects)
	prod := successfulDeployment(svc, t)
	other := successfulDeployment(svc, t)
	projects.byUUID["proj-1"].ProdDeploymentID = prod.UUID
	deployments.byUUID[prod.UUID].IsProd = true

	if _, err := svc.Disable(context.Background(), "owner-1", other.UUID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if projects.byUUID["proj-1"].ProdDeploymentID != prod.UUID {
		t.Error("disabling a non-production deployment must not touch the pointer")
	}
}

func TestDeploymentService_Disable_RequiresSuccessfulBuild(t *testing.T) {
	svc, projects, _, _ := newDeploymentFixture()
	seedPendingProject(projects)
	d, _ := svc.Create(context.Background(), "owner-1", "proj-1")

	_, err := svc.Disable(context.Background(), "owner-1", d.UUID)
	if !errors.Is(err, domain.ErrDeploymentNotReady) {
		t.Fatalf("expected ErrDeploymentNotReady, got %v", err)
	}
}

func TestDeploymentService_Enable_DoesNotRestoreProd(t *testing.T) {
	svc, projects, deployments, _ := newDeploymentFixture()
	seedPendingProject(projects)
	d := successfulDeployment(svc, t)
	projects.byUUID["proj-1"].ProdDeploymentID = d.UUID
	deployments.byUUID[d.UUID].IsProd = true

	if _, err := svc.Disable(context.Background(), "owner-1", d.UUID); err != nil {
		t.Fatalf("disable failed: %v", err)
	}
	updated, err := svc.Enable(context.Background(), "owner-1", d.UUID)
	if err != nil {
		t.Fatalf("enable failed: %v", err)
	}
	if updated.Status != domain.DeploymentActive {
		t.Errorf("status = %s, want active", updated.Status)
	}
	if projects.byUUID["proj-1"].ProdDeploymentID != "" {
		t.Error("enable must not restore production status")
	}
	if deployments.byUUID[d.UUID].IsProd {
		t.Error("enable must not set is_prod")
	}
}

func TestDeploymentService_Enable_RejectsAlreadyActive(t *testing.T) {
	svc, projects, _, _ := newDeploymentFixture()
	seedPendingProject(projects)
	d := successfulDeployment(svc, t)

	_, err := svc.Enable(context.Background(), "owner-1", d.UUID)
	if !errors.Is(err, domain.ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition, got %v", err)
	}
}

// ---------------------------------------------------------------------------
// List
// ---------------------------------------------------------------------------

func TestDeploymentService_List_SyncsIsProdFromPointer(t *testing.T) {
	svc, projects, deployments, _ := newDeploymentFixture()
	seedPendingProject(projects)
	a := successfulDeployment(svc, t)
	b := successfulDeployment(svc, t)
	projects.byUUID["proj-1"].ProdDeploymentID = b.UUID
	// Stale cached flag on a: the pointer decides.
	deployments.byUUID[a.UUID].IsProd = true

	list, err := svc.List(context.Background(), "owner-1", "proj-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, d := range list {
		want := d.UUID == b.UUID
		if d.IsProd != want {
			t.Errorf("deployment %s is_prod = %v, want %v", d.UUID, d.IsProd, want)
		}
	}
}
