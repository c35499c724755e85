package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/funcland/control-plane/internal/core/domain"
)

type stubPromotionService struct {
	promoteFn func(ctx context.Context, ownerID, projectUUID, deploymentUUID string) (*domain.Project, error)
}

func (s *stubPromotionService) Promote(ctx context.Context, ownerID, projectUUID, deploymentUUID string) (*domain.Project, error) {
	return s.promoteFn(ctx, ownerID, projectUUID, deploymentUUID)
}

type stubDeploymentService struct {
	markFn func(ctx context.Context, deploymentUUID string, outcome domain.DeployStatus) (*domain.Deployment, error)
}

func (s *stubDeploymentService) Create(context.Context, string, string) (*domain.Deployment, error) {
	return nil, nil
}

func (s *stubDeploymentService) MarkBuildResult(ctx context.Context, deploymentUUID string, outcome domain.DeployStatus) (*domain.Deployment, error) {
	return s.markFn(ctx, deploymentUUID, outcome)
}

func (s *stubDeploymentService) Disable(context.Context, string, string) (*domain.Deployment, error) {
	return nil, nil
}

func (s *stubDeploymentService) Enable(context.Context, string, string) (*domain.Deployment, error) {
	return nil, nil
}

func (s *stubDeploymentService) List(context.Context, string, string) ([]*domain.Deployment, error) {
	return nil, nil
}

func newPromoteContext(t *testing.T, e *echo.Echo, body string) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/v1/deployments/dep-1/promote", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetPath("/v1/deployments/:uuid/promote")
	c.SetParamNames("uuid")
	c.SetParamValues("dep-1")
	c.Set("user", &domain.User{ID: "owner-1", Role: domain.RoleUser})
	return c, rec
}

func TestDeploymentHandler_Promote_Success(t *testing.T) {
	e := echo.New()
	e.Validator = NewValidator()
	promo := &stubPromotionService{
		promoteFn: func(_ context.Context, ownerID, projectUUID, deploymentUUID string) (*domain.Project, error) {
			if ownerID != "owner-1" || projectUUID != "proj-1" || deploymentUUID != "dep-1" {
				t.Fatalf("unexpected args: %s %s %s", ownerID, projectUUID, deploymentUUID)
			}
			return &domain.Project{UUID: projectUUID, Name: "my-app", ProdDeploymentID: deploymentUUID}, nil
		},
	}
	h := NewDeploymentHandler(&stubDeploymentService{}, promo)

	c, rec := newPromoteContext(t, e, `{"project_uuid":"proj-1"}`)
	if err := h.Promote(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp["prod_deployment_id"] != "dep-1" {
		t.Fatalf("unexpected payload: %+v", resp)
	}
}

func TestDeploymentHandler_Promote_MissingProject(t *testing.T) {
	e := echo.New()
	e.Validator = NewValidator()
	h := NewDeploymentHandler(&stubDeploymentService{}, &stubPromotionService{
		promoteFn: func(context.Context, string, string, string) (*domain.Project, error) {
			t.Fatal("service must not be called on invalid payload")
			return nil, nil
		},
	})

	c, _ := newPromoteContext(t, e, `{}`)
	err := h.Promote(c)
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %v", err)
	}
}

func TestDeploymentHandler_Result_PassesOutcome(t *testing.T) {
	e := echo.New()
	e.Validator = NewValidator()
	svc := &stubDeploymentService{
		markFn: func(_ context.Context, deploymentUUID string, outcome domain.DeployStatus) (*domain.Deployment, error) {
			if deploymentUUID != "dep-1" || outcome != domain.DeployStatusFailed {
				t.Fatalf("unexpected args: %s %s", deploymentUUID, outcome)
			}
			return &domain.Deployment{UUID: deploymentUUID, DeployStatus: outcome}, nil
		},
	}
	h := NewDeploymentHandler(svc, &stubPromotionService{})

	req := httptest.NewRequest(http.MethodPost, "/v1/deployments/dep-1/result", strings.NewReader(`{"status":"failed"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("uuid")
	c.SetParamValues("dep-1")

	if err := h.Result(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestDeploymentHandler_Result_RejectsUnknownStatus(t *testing.T) {
	e := echo.New()
	e.Validator = NewValidator()
	h := NewDeploymentHandler(&stubDeploymentService{}, &stubPromotionService{})

	req := httptest.NewRequest(http.MethodPost, "/v1/deployments/dep-1/result", strings.NewReader(`{"status":"deploying"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("uuid")
	c.SetParamValues("dep-1")

	err := h.Result(c)
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %v", err)
	}
}
