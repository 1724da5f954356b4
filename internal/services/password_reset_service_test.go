package services

import (
	"context"
	"testing"
	"time"

	"github.com/inkwell-cms/inkwell/internal/models"
	pkgauth "github.com/inkwell-cms/inkwell/pkg/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func resetService(store PrincipalStore, email EmailService) *PasswordResetService {
	return NewPasswordResetService(store, email, testLogger(), testAudit(), 1*time.Hour)
}

func TestPasswordResetService_RequestReset(t *testing.T) {
	var storedToken string
	var storedExpiry time.Time
	store := &MockPrincipalStore{
		GetByEmailFunc: func(ctx context.Context, email string) (*models.Principal, error) {
			return &models.Principal{ID: "admin-1", Email: email, Role: models.RoleAdmin}, nil
		},
		SetResetTokenFunc: func(ctx context.Context, id, token string, expiresAt time.Time) error {
			storedToken = token
			storedExpiry = expiresAt
			return nil
		},
	}
	mail := &MockEmailService{}

	err := resetService(store, mail).RequestReset(context.Background(), "admin@example.com")
	require.NoError(t, err)

	assert.Len(t, storedToken, pkgauth.ResetTokenBytes*2, "hex-encoded 256-bit token")
	assert.WithinDuration(t, time.Now().Add(1*time.Hour), storedExpiry, 5*time.Second)

	require.Len(t, mail.Sent, 1)
	assert.Equal(t, "admin@example.com", mail.Sent[0].To)
	assert.Contains(t, mail.Sent[0].Body, storedToken)
}

func TestPasswordResetService_RequestReset_ReplacesPendingWindow(t *testing.T) {
	oldToken := "0ldt0ken"
	oldExpiry := time.Now().Add(30 * time.Minute)

	var storedToken string
	store := &MockPrincipalStore{
		GetByEmailFunc: func(ctx context.Context, email string) (*models.Principal, error) {
			return &models.Principal{
				ID:               "admin-1",
				Email:            email,
				ResetToken:       &oldToken,
				ResetTokenExpire: &oldExpiry,
			}, nil
		},
		SetResetTokenFunc: func(ctx context.Context, id, token string, expiresAt time.Time) error {
			storedToken = token
			return nil
		},
	}
	mail := &MockEmailService{}

	err := resetService(store, mail).RequestReset(context.Background(), "admin@example.com")
	require.NoError(t, err)
	assert.NotEqual(t, oldToken, storedToken, "a repeat request must mint a fresh token")

	require.Len(t, mail.Sent, 1)
	assert.Contains(t, mail.Sent[0].Body, storedToken)
	assert.NotContains(t, mail.Sent[0].Body, oldToken)
}

func TestPasswordResetService_RequestReset_UnknownEmail(t *testing.T) {
	mail := &MockEmailService{}

	err := resetService(&MockPrincipalStore{}, mail).RequestReset(context.Background(), "nobody@example.com")
	assert.ErrorIs(t, err, models.ErrNotFound)
	assert.Empty(t, mail.Sent)
}

func TestPasswordResetService_RequestReset_DeliveryFailure(t *testing.T) {
	tokenStored := false
	store := &MockPrincipalStore{
		GetByEmailFunc: func(ctx context.Context, email string) (*models.Principal, error) {
			return &models.Principal{ID: "admin-1", Email: email}, nil
		},
		SetResetTokenFunc: func(ctx context.Context, id, token string, expiresAt time.Time) error {
			tokenStored = true
			return nil
		},
	}
	mail := &MockEmailService{
		SendFunc: func(ctx context.Context, to, subject, body string) error {
			return assert.AnError
		},
	}

	err := resetService(store, mail).RequestReset(context.Background(), "admin@example.com")
	assert.ErrorIs(t, err, models.ErrEmailDelivery)
	assert.True(t, tokenStored, "window stays open even when delivery fails")
}

func TestPasswordResetService_ResetPassword(t *testing.T) {
	var consumedToken, newHash string
	store := &MockPrincipalStore{
		ConsumeResetTokenFunc: func(ctx context.Context, token, newPasswordHash string) (*models.Principal, error) {
			consumedToken = token
			newHash = newPasswordHash
			return &models.Principal{ID: "admin-1"}, nil
		},
	}

	err := resetService(store, &MockEmailService{}).ResetPassword(context.Background(), "deadbeef", "a-new-password")
	require.NoError(t, err)
	assert.Equal(t, "deadbeef", consumedToken)
	require.NoError(t, pkgauth.ComparePassword(newHash, "a-new-password"),
		"stored hash must verify against the new password")
}

func TestPasswordResetService_ResetPassword_InvalidToken(t *testing.T) {
	store := &MockPrincipalStore{
		ConsumeResetTokenFunc: func(ctx context.Context, token, newPasswordHash string) (*models.Principal, error) {
			return nil, models.ErrNotFound
		},
	}

	err := resetService(store, &MockEmailService{}).ResetPassword(context.Background(), "expired-or-bogus", "a-new-password")
	assert.ErrorIs(t, err, models.ErrInvalidResetToken)
}

func TestPasswordResetService_ResetPassword_EmptyToken(t *testing.T) {
	called := false
	store := &MockPrincipalStore{
		ConsumeResetTokenFunc: func(ctx context.Context, token, newPasswordHash string) (*models.Principal, error) {
			called = true
			return nil, models.ErrNotFound
		},
	}

	err := resetService(store, &MockEmailService{}).ResetPassword(context.Background(), "", "a-new-password")
	assert.ErrorIs(t, err, models.ErrInvalidResetToken)
	assert.False(t, called, "empty token must never reach the store")
}

func TestPasswordResetService_ResetPassword_WeakPassword(t *testing.T) {
	called := false
	store := &MockPrincipalStore{
		ConsumeResetTokenFunc: func(ctx context.Context, token, newPasswordHash string) (*models.Principal, error) {
			called = true
			return nil, models.ErrNotFound
		},
	}

	err := resetService(store, &MockEmailService{}).ResetPassword(context.Background(), "deadbeef", "short")
	var validationErr *pkgauth.PasswordValidationError
	assert.ErrorAs(t, err, &validationErr)
	assert.False(t, called, "invalid password must not consume the token")
}
