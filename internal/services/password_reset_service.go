package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/inkwell-cms/inkwell/internal/models"
	pkgauth "github.com/inkwell-cms/inkwell/pkg/auth"
	pkglogger "github.com/inkwell-cms/inkwell/pkg/logger"
)

// PasswordResetService runs the two-step email reset flow for one realm.
type PasswordResetService struct {
	store    PrincipalStore
	email    EmailService
	logger   *slog.Logger
	audit    *pkglogger.AuditLogger
	tokenTTL time.Duration
}

// NewPasswordResetService creates a new PasswordResetService.
func NewPasswordResetService(store PrincipalStore, email EmailService, logger *slog.Logger, audit *pkglogger.AuditLogger, tokenTTL time.Duration) *PasswordResetService {
	return &PasswordResetService{
		store:    store,
		email:    email,
		logger:   logger,
		audit:    audit,
		tokenTTL: tokenTTL,
	}
}

// RequestReset opens a reset window for the account and emails the token. A
// repeat request overwrites any token already pending.
func (s *PasswordResetService) RequestReset(ctx context.Context, email string) error {
	email = strings.ToLower(strings.TrimSpace(email))

	principal, err := s.store.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return models.ErrNotFound
		}
		s.logger.Error("failed to look up principal for reset", slog.Any("error", err))
		return models.ErrInternalServer
	}

	if principal.ResetPending(time.Now()) {
		// At most one window per principal; a repeat request supersedes it.
		s.logger.Info("replacing pending reset window",
			slog.String("realm", string(s.store.Realm())),
			slog.String("principal_id", principal.ID))
	}

	token, err := pkgauth.GenerateResetToken()
	if err != nil {
		s.logger.Error("failed to generate reset token", slog.Any("error", err))
		return models.ErrInternalServer
	}

	expiresAt := time.Now().Add(s.tokenTTL)
	if err := s.store.SetResetToken(ctx, principal.ID, token, expiresAt); err != nil {
		s.logger.Error("failed to store reset token",
			slog.String("principal_id", principal.ID), slog.Any("error", err))
		return models.ErrInternalServer
	}

	body := fmt.Sprintf(
		"You requested a password reset.\n\nYour reset token is: %s\n\nIt expires in %d minutes. If you did not request this, you can ignore this email.",
		token, int(s.tokenTTL.Minutes()),
	)
	if err := s.email.Send(ctx, principal.Email, "Password Reset Request", body); err != nil {
		// The window stays open; the caller may retry and get a new token.
		s.logger.Error("failed to deliver reset email",
			slog.String("principal_id", principal.ID), slog.Any("error", err))
		return models.ErrEmailDelivery
	}

	s.audit.LogAccountAction("password_reset_requested", string(s.store.Realm()), principal.ID, nil)
	return nil
}

// ResetPassword redeems a reset token and installs the new password. The
// token is single-use: redemption clears the window atomically.
func (s *PasswordResetService) ResetPassword(ctx context.Context, token, newPassword string) error {
	if token == "" {
		return models.ErrInvalidResetToken
	}

	if err := pkgauth.ValidatePassword(newPassword); err != nil {
		return err
	}

	hash, err := pkgauth.HashPassword(newPassword)
	if err != nil {
		s.logger.Error("failed to hash new password", slog.Any("error", err))
		return models.ErrInternalServer
	}

	principal, err := s.store.ConsumeResetToken(ctx, token, hash)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			s.logger.Info("reset attempt with invalid or expired token",
				slog.String("realm", string(s.store.Realm())))
			return models.ErrInvalidResetToken
		}
		s.logger.Error("failed to consume reset token", slog.Any("error", err))
		return models.ErrInternalServer
	}

	s.logger.Info("password reset completed",
		slog.String("realm", string(s.store.Realm())),
		slog.String("principal_id", principal.ID))
	s.audit.LogAccountAction("password_reset_completed", string(s.store.Realm()), principal.ID, nil)

	return nil
}
