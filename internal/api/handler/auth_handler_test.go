package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/taskforge/task-system/internal/core/domain"
)

type stubAuthService struct {
	registerUser *domain.User
	registerErr  error
	loginUser    *domain.User
	loginErr     error
	currentUser  *domain.User
	currentErr   error
}

func (s *stubAuthService) Register(_ context.Context, name, email, _ string) (*domain.User, string, error) {
	if s.registerErr != nil {
		return nil, "", s.registerErr
	}
	return s.registerUser, "signed-token", nil
}

func (s *stubAuthService) Login(_ context.Context, _, _ string) (*domain.User, string, error) {
	if s.loginErr != nil {
		return nil, "", s.loginErr
	}
	return s.loginUser, "signed-token", nil
}

func (s *stubAuthService) CurrentUser(_ context.Context, _ string) (*domain.User, error) {
	return s.currentUser, s.currentErr
}

func newAuthContext(method, path, body string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	e.Validator = NewValidator()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func TestAuthHandler_Register_Success(t *testing.T) {
	svc := &stubAuthService{registerUser: &domain.User{ID: "u1", Email: "ann@x.com", Name: "Ann"}}
	h := NewAuthHandler(svc)

	c, rec := newAuthContext(http.MethodPost, "/api/auth/register",
		`{"name":"Ann","email":"ann@x.com","password":"secret1"}`)
	if err := h.Register(c); err != nil {
		t.Fatalf("Register returned error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}

	var resp authResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.AccessToken != "signed-token" || resp.TokenType != "bearer" {
		t.Fatalf("unexpected token envelope: %+v", resp)
	}
	if resp.User.ID != "u1" {
		t.Fatalf("unexpected user: %+v", resp.User)
	}
	// The digest must never appear in the response body.
	if strings.Contains(rec.Body.String(), "password") {
		t.Fatalf("response leaks password material: %s", rec.Body.String())
	}
}

func TestAuthHandler_Register_ValidationFailures(t *testing.T) {
	h := NewAuthHandler(&stubAuthService{})

	cases := []string{
		`{"name":"Ann","email":"not-an-email","password":"secret1"}`,
		`{"name":"Ann","email":"ann@x.com","password":"short"}`,
		`{"email":"ann@x.com","password":"secret1"}`,
	}
	for _, body := range cases {
		c, _ := newAuthContext(http.MethodPost, "/api/auth/register", body)
		err := h.Register(c)
		he, ok := err.(*echo.HTTPError)
		if !ok || he.Code != http.StatusBadRequest {
			t.Fatalf("expected 400 for %s, got %v", body, err)
		}
	}
}

func TestAuthHandler_Register_Conflict(t *testing.T) {
	h := NewAuthHandler(&stubAuthService{registerErr: domain.ErrEmailExists})

	c, _ := newAuthContext(http.MethodPost, "/api/auth/register",
		`{"name":"Ann","email":"ann@x.com","password":"secret1"}`)
	if err := h.Register(c); !errors.Is(err, domain.ErrEmailExists) {
		t.Fatalf("expected ErrEmailExists to propagate, got %v", err)
	}
}

func TestAuthHandler_Login_Success(t *testing.T) {
	svc := &stubAuthService{loginUser: &domain.User{ID: "u1", Email: "ann@x.com", Name: "Ann"}}
	h := NewAuthHandler(svc)

	c, rec := newAuthContext(http.MethodPost, "/api/auth/login",
		`{"email":"ann@x.com","password":"secret1"}`)
	if err := h.Login(c); err != nil {
		t.Fatalf("Login returned error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestAuthHandler_Login_InvalidCredentials(t *testing.T) {
	h := NewAuthHandler(&stubAuthService{loginErr: domain.ErrInvalidCredentials})

	c, _ := newAuthContext(http.MethodPost, "/api/auth/login",
		`{"email":"ann@x.com","password":"wrong66"}`)
	if err := h.Login(c); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials to propagate, got %v", err)
	}
}

func TestAuthHandler_Logout(t *testing.T) {
	h := NewAuthHandler(&stubAuthService{})

	c, rec := newAuthContext(http.MethodPost, "/api/auth/logout", "")
	if err := h.Logout(c); err != nil {
		t.Fatalf("Logout returned error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestAuthHandler_Me(t *testing.T) {
	svc := &stubAuthService{currentUser: &domain.User{ID: "u1", Email: "ann@x.com", Name: "Ann"}}
	h := NewAuthHandler(svc)

	c, rec := newAuthContext(http.MethodGet, "/api/auth/me", "")
	c.Set("user_id", "u1")
	if err := h.Me(c); err != nil {
		t.Fatalf("Me returned error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp userResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.ID != "u1" || resp.Email != "ann@x.com" {
		t.Fatalf("unexpected user: %+v", resp)
	}
}

func TestAuthHandler_Me_StaleIdentity(t *testing.T) {
	h := NewAuthHandler(&stubAuthService{currentErr: domain.ErrUserNotFound})

	c, _ := newAuthContext(http.MethodGet, "/api/auth/me", "")
	c.Set("user_id", "ghost")
	err := h.Me(c)
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for deleted account, got %v", err)
	}
}

func TestAuthHandler_Me_NoGuard(t *testing.T) {
	h := NewAuthHandler(&stubAuthService{})

	c, _ := newAuthContext(http.MethodGet, "/api/auth/me", "")
	err := h.Me(c)
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 when guard did not run, got %v", err)
	}
}
