package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/inkwell-cms/inkwell/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubResolver struct {
	principal *models.Principal
	err       error
}

func (s *stubResolver) GetByID(ctx context.Context, id string) (*models.Principal, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.principal, nil
}

func testPrincipal() *models.Principal {
	return &models.Principal{
		ID:           "principal-123",
		Realm:        models.RealmUser,
		Name:         "Alice",
		Email:        "alice@example.com",
		PasswordHash: "$2a$10$secret",
		Role:         models.RoleUser,
	}
}

func gateRequest(t *testing.T, resolver PrincipalResolver, authHeader string) (*httptest.ResponseRecorder, *models.Principal) {
	t.Helper()

	tm := NewTokenManager(testSecret, 1*time.Hour)

	var attached *models.Principal
	handler := Middleware(tm, resolver)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attached = GetPrincipalFromContext(r)
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec, attached
}

func TestMiddleware_Success(t *testing.T) {
	tm := NewTokenManager(testSecret, 1*time.Hour)
	token, err := tm.Issue("principal-123", "alice@example.com", models.RoleUser)
	require.NoError(t, err)

	rec, attached := gateRequest(t, &stubResolver{principal: testPrincipal()}, "Bearer "+token)

	assert.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, attached)
	assert.Equal(t, "principal-123", attached.ID)
	assert.Empty(t, attached.PasswordHash, "password hash must not reach handlers")
}

func TestMiddleware_MissingHeader(t *testing.T) {
	rec, attached := gateRequest(t, &stubResolver{principal: testPrincipal()}, "")

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Nil(t, attached)
}

func TestMiddleware_MalformedHeader(t *testing.T) {
	rec, attached := gateRequest(t, &stubResolver{principal: testPrincipal()}, "Basic dXNlcjpwdw==")

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Nil(t, attached)
}

func TestMiddleware_GarbageToken(t *testing.T) {
	rec, attached := gateRequest(t, &stubResolver{principal: testPrincipal()}, "Bearer garbage")

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Nil(t, attached)
}

func TestMiddleware_PrincipalDeletedAfterIssue(t *testing.T) {
	tm := NewTokenManager(testSecret, 1*time.Hour)
	token, err := tm.Issue("principal-123", "alice@example.com", models.RoleUser)
	require.NoError(t, err)

	rec, attached := gateRequest(t, &stubResolver{err: models.ErrNotFound}, "Bearer "+token)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Nil(t, attached)
}

func TestRequireRole(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	t.Run("allows matching role", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		principal := testPrincipal()
		principal.Role = models.RoleAdmin
		req = req.WithContext(context.WithValue(req.Context(), PrincipalContextKey, principal))

		rec := httptest.NewRecorder()
		RequireRole(models.RoleAdmin, models.RoleSubAdmin)(next).ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("rejects other roles", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req = req.WithContext(context.WithValue(req.Context(), PrincipalContextKey, testPrincipal()))

		rec := httptest.NewRecorder()
		RequireRole(models.RoleAdmin)(next).ServeHTTP(rec, req)
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("rejects missing principal", func(t *testing.T) {
		rec := httptest.NewRecorder()
		RequireRole(models.RoleAdmin)(next).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}
