package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/funcland/control-plane/internal/core/domain"
	"github.com/funcland/control-plane/internal/core/ports"
)

type stubSessionService struct {
	result *ports.AuthorizeResult
	err    error
	secret string
}

func (s *stubSessionService) Authorize(_ context.Context, secret string) (*ports.AuthorizeResult, error) {
	s.secret = secret
	if s.err != nil {
		return nil, s.err
	}
	return s.result, nil
}

func (s *stubSessionService) Issue(context.Context, ports.IdentityClaims) (*ports.IssueResult, error) {
	return nil, nil
}

func (s *stubSessionService) Revoke(context.Context, string) error {
	return nil
}

func TestSessionMiddleware_ValidSecret(t *testing.T) {
	e := echo.New()
	svc := &stubSessionService{
		result: &ports.AuthorizeResult{
			User:  &domain.User{ID: "user-1", Role: domain.RoleAdmin},
			Token: &domain.SessionToken{UUID: "tok-1"},
		},
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer s3cret")
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	called := false
	mw := Session(svc)
	handler := mw(func(c echo.Context) error {
		called = true
		user, _ := c.Get("user").(*domain.User)
		if user == nil || user.ID != "user-1" {
			t.Fatalf("user not injected")
		}
		if c.Get("role") != domain.RoleAdmin {
			t.Fatalf("role not injected")
		}
		if c.Get("session_secret") != "s3cret" {
			t.Fatalf("secret not injected")
		}
		return c.NoContent(http.StatusOK)
	})

	if err := handler(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if !called {
		t.Fatalf("next not called")
	}
	if svc.secret != "s3cret" {
		t.Fatalf("service saw secret %q", svc.secret)
	}
}

func TestSessionMiddleware_MissingHeader(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	mw := Session(&stubSessionService{})
	handler := mw(func(c echo.Context) error {
		t.Fatalf("should not reach next")
		return nil
	})

	if err := handler(c); err != nil {
		e.HTTPErrorHandler(err, c)
	}

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestSessionMiddleware_RejectedSecret(t *testing.T) {
	e := echo.New()
	svc := &stubSessionService{err: domain.ErrNoSession}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer unknown")
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	mw := Session(svc)
	handler := mw(func(c echo.Context) error {
		t.Fatalf("should not reach next")
		return nil
	})

	err := handler(c)
	if err == nil {
		t.Fatalf("expected an error")
	}
}

func TestSessionMiddleware_NonBearerScheme(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Basic dXNlcjpwYXNz")
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	mw := Session(&stubSessionService{})
	handler := mw(func(c echo.Context) error {
		t.Fatalf("should not reach next")
		return nil
	})

	if err := handler(c); err != nil {
		e.HTTPErrorHandler(err, c)
	}

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}
