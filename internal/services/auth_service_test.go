package services

import (
	"context"
	"testing"
	"time"

	"github.com/inkwell-cms/inkwell/internal/auth"
	"github.com/inkwell-cms/inkwell/internal/models"
	pkgauth "github.com/inkwell-cms/inkwell/pkg/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testJWTSecret = "test-secret-key-for-auth-service"

func testTokenManager() *auth.TokenManager {
	return auth.NewTokenManager(testJWTSecret, 1*time.Hour)
}

func hashFor(t *testing.T, password string) string {
	t.Helper()
	hash, err := pkgauth.HashPassword(password)
	require.NoError(t, err)
	return hash
}

func TestAuthService_Login_Admin(t *testing.T) {
	hash := hashFor(t, "correct-horse-battery")
	store := &MockPrincipalStore{
		RealmValue: models.RealmAdmin,
		GetByEmailFunc: func(ctx context.Context, email string) (*models.Principal, error) {
			assert.Equal(t, "admin@example.com", email)
			return &models.Principal{
				ID:           "admin-1",
				Realm:        models.RealmAdmin,
				Name:         "Root",
				Email:        "admin@example.com",
				PasswordHash: hash,
				Role:         models.RoleAdmin,
			}, nil
		},
	}
	svc := NewAuthService(store, nil, testTokenManager(), testLogger(), testAudit())

	resp, err := svc.Login(context.Background(), "Admin@Example.com ", "correct-horse-battery")
	require.NoError(t, err)
	assert.NotEmpty(t, resp.Token)
	assert.Equal(t, models.RoleAdmin, resp.Role)
	assert.Equal(t, "admin-1", resp.Principal.ID)

	claims, err := testTokenManager().Verify(resp.Token)
	require.NoError(t, err)
	assert.Equal(t, "admin-1", claims.PrincipalID())
	assert.Equal(t, "admin@example.com", claims.Email)
	assert.Equal(t, models.RoleAdmin, claims.Role)
}

func TestAuthService_Login_WrongPassword(t *testing.T) {
	hash := hashFor(t, "the-real-password")
	store := &MockPrincipalStore{
		GetByEmailFunc: func(ctx context.Context, email string) (*models.Principal, error) {
			return &models.Principal{ID: "admin-1", Email: email, PasswordHash: hash, Role: models.RoleAdmin}, nil
		},
	}
	svc := NewAuthService(store, nil, testTokenManager(), testLogger(), testAudit())

	_, err := svc.Login(context.Background(), "admin@example.com", "a-wrong-password")
	assert.ErrorIs(t, err, models.ErrUnauthorized)
}

func TestAuthService_Login_UnknownEmail(t *testing.T) {
	svc := NewAuthService(&MockPrincipalStore{}, nil, testTokenManager(), testLogger(), testAudit())

	_, err := svc.Login(context.Background(), "nobody@example.com", "whatever-pass")
	assert.ErrorIs(t, err, models.ErrUnauthorized)
}

func userFixture(t *testing.T, password string) *models.User {
	return &models.User{
		Principal: models.Principal{
			ID:           "user-1",
			Realm:        models.RealmUser,
			Name:         "Alice",
			Email:        "alice@example.com",
			PasswordHash: hashFor(t, password),
			Role:         models.RoleUser,
		},
		IsVerified: true,
	}
}

func userRealmService(users UserStore) *AuthService {
	store := &MockPrincipalStore{RealmValue: models.RealmUser}
	return NewAuthService(store, users, testTokenManager(), testLogger(), testAudit())
}

func TestAuthService_Login_User(t *testing.T) {
	user := userFixture(t, "user-password-1")
	users := &MockUserStore{
		GetUserByEmailFunc: func(ctx context.Context, email string) (*models.User, error) {
			return user, nil
		},
	}

	resp, err := userRealmService(users).Login(context.Background(), "alice@example.com", "user-password-1")
	require.NoError(t, err)
	assert.Equal(t, models.RoleUser, resp.Role)
	assert.Equal(t, "user-1", resp.Principal.ID)
}

func TestAuthService_Login_UserRoleMismatch(t *testing.T) {
	user := userFixture(t, "user-password-1")
	user.Role = models.RoleAdmin
	users := &MockUserStore{
		GetUserByEmailFunc: func(ctx context.Context, email string) (*models.User, error) {
			return user, nil
		},
	}

	_, err := userRealmService(users).Login(context.Background(), "alice@example.com", "user-password-1")
	assert.ErrorIs(t, err, models.ErrForbidden)
}

func TestAuthService_Login_UnverifiedUser(t *testing.T) {
	user := userFixture(t, "user-password-1")
	user.IsVerified = false
	users := &MockUserStore{
		GetUserByEmailFunc: func(ctx context.Context, email string) (*models.User, error) {
			return user, nil
		},
	}

	_, err := userRealmService(users).Login(context.Background(), "alice@example.com", "user-password-1")
	assert.ErrorIs(t, err, models.ErrEmailNotVerified)
}

func TestAuthService_Login_ResponseExcludesHash(t *testing.T) {
	hash := hashFor(t, "some-password-x")
	store := &MockPrincipalStore{
		GetByEmailFunc: func(ctx context.Context, email string) (*models.Principal, error) {
			return &models.Principal{ID: "admin-1", Email: email, PasswordHash: hash, Role: models.RoleAdmin}, nil
		},
	}
	svc := NewAuthService(store, nil, testTokenManager(), testLogger(), testAudit())

	resp, err := svc.Login(context.Background(), "admin@example.com", "some-password-x")
	require.NoError(t, err)
	assert.NotContains(t, resp.Token, hash)
	// PrincipalResponse has no hash field at all; spot-check the shape anyway.
	assert.Equal(t, "admin@example.com", resp.Principal.Email)
}

func TestAuthService_Logout(t *testing.T) {
	var clearedID string
	store := &MockPrincipalStore{
		ClearResetTokenFunc: func(ctx context.Context, id string) error {
			clearedID = id
			return nil
		},
	}
	svc := NewAuthService(store, nil, testTokenManager(), testLogger(), testAudit())

	require.NoError(t, svc.Logout(context.Background(), "admin-1"))
	assert.Equal(t, "admin-1", clearedID)
}

func TestAuthService_Logout_UnknownPrincipal(t *testing.T) {
	store := &MockPrincipalStore{
		ClearResetTokenFunc: func(ctx context.Context, id string) error {
			return models.ErrNotFound
		},
	}
	svc := NewAuthService(store, nil, testTokenManager(), testLogger(), testAudit())

	assert.ErrorIs(t, svc.Logout(context.Background(), "ghost"), models.ErrUnauthorized)
}
