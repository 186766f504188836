package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/botucare/clinic-backend/internal/clinical"
	"github.com/botucare/clinic-backend/internal/gateway"
	"github.com/botucare/clinic-backend/internal/identity"
	"github.com/botucare/clinic-backend/pkg/logging"
)

func newAuthFixture(t *testing.T, role clinical.Role) (*identity.Service, string) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	gw := gateway.NewMemoryGateway()
	hash, err := identity.HashPassword("correct-horse")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if _, err := gw.Create(context.Background(), gateway.CollectionUsers, clinical.User{
		Email:        "user@clinic.test",
		Role:         role,
		PasswordHash: hash,
	}); err != nil {
		t.Fatalf("seed user: %v", err)
	}

	svc := identity.NewService(gw, identity.NewSessionStore(client, time.Hour), "secret", time.Hour, logging.Default())
	_, token, err := svc.Authenticate(context.Background(), "user@clinic.test", "correct-horse")
	if err != nil {
		t.Fatalf("authenticate: %v", err)
	}
	return svc, token
}

func TestAuthAcceptsValidToken(t *testing.T) {
	svc, token := newAuthFixture(t, clinical.RoleDoctor)

	var seen clinical.Actor
	handler := Auth(svc)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = identity.ActorFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/patients", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if seen.Role != clinical.RoleDoctor || seen.ID == "" {
		t.Errorf("actor not attached: %+v", seen)
	}
}

func TestAuthRejectsMissingHeader(t *testing.T) {
	svc, _ := newAuthFixture(t, clinical.RoleDoctor)

	handler := Auth(svc)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler must not run")
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/patients", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
}

func TestAuthRejectsGarbageToken(t *testing.T) {
	svc, _ := newAuthFixture(t, clinical.RoleDoctor)

	handler := Auth(svc)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler must not run")
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/patients", nil)
	req.Header.Set("Authorization", "Bearer bogus")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
}

func TestRequireAdmin(t *testing.T) {
	handler := RequireAdmin(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	doctorCtx := identity.WithActor(context.Background(), clinical.Actor{ID: "d1", Role: clinical.RoleDoctor})
	req := httptest.NewRequest(http.MethodGet, "/api/users", nil).WithContext(doctorCtx)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("doctor status = %d, want 403", rec.Code)
	}

	adminCtx := identity.WithActor(context.Background(), clinical.Actor{ID: "u0", Role: clinical.RoleAdmin})
	req = httptest.NewRequest(http.MethodGet, "/api/users", nil).WithContext(adminCtx)
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("admin status = %d, want 200", rec.Code)
	}
}
