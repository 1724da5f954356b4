package services

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/inkwell-cms/inkwell/internal/models"
	pkgauth "github.com/inkwell-cms/inkwell/pkg/auth"
	pkglogger "github.com/inkwell-cms/inkwell/pkg/logger"
)

// UserStore is the user-realm store contract with the registration extension.
type UserStore interface {
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	CreateUser(ctx context.Context, u *models.User) (*models.User, error)
	ReplacePending(ctx context.Context, id, name, passwordHash, role, otp string, otpExpires time.Time) error
	SetOTP(ctx context.Context, id, otp string, otpExpires time.Time) error
	MarkVerified(ctx context.Context, id string) error
}

// RegistrationService runs the three-step email-verification signup flow:
// send a code, optionally resend it, verify it.
type RegistrationService struct {
	users  UserStore
	email  EmailService
	logger *slog.Logger
	audit  *pkglogger.AuditLogger
	otpTTL time.Duration
}

// NewRegistrationService creates a new RegistrationService.
func NewRegistrationService(users UserStore, email EmailService, logger *slog.Logger, audit *pkglogger.AuditLogger, otpTTL time.Duration) *RegistrationService {
	return &RegistrationService{
		users:  users,
		email:  email,
		logger: logger,
		audit:  audit,
		otpTTL: otpTTL,
	}
}

// SendOTP starts (or restarts) a registration. A verified account with the
// same email blocks the attempt; an unverified one is overwritten wholesale,
// so an abandoned signup never squats on an address. A user record may
// self-declare the "admin" role, which is not an admin-realm account and is
// refused at login.
func (s *RegistrationService) SendOTP(ctx context.Context, name, email, password, role string) error {
	email = strings.ToLower(strings.TrimSpace(email))

	if role == "" {
		role = models.RoleUser
	}
	if role != models.RoleUser && role != models.RoleAdmin {
		return models.ErrBadRequest
	}

	if err := pkgauth.ValidatePassword(password); err != nil {
		return err
	}

	hash, err := pkgauth.HashPassword(password)
	if err != nil {
		s.logger.Error("failed to hash password", slog.Any("error", err))
		return models.ErrInternalServer
	}

	otp, err := pkgauth.GenerateOTP()
	if err != nil {
		s.logger.Error("failed to generate verification code", slog.Any("error", err))
		return models.ErrInternalServer
	}
	otpExpires := time.Now().Add(s.otpTTL)

	existing, err := s.users.GetUserByEmail(ctx, email)
	switch {
	case err == nil:
		if existing.IsVerified {
			return models.ErrAlreadyVerified
		}
		if err := s.users.ReplacePending(ctx, existing.ID, name, hash, role, otp, otpExpires); err != nil {
			s.logger.Error("failed to replace pending registration",
				slog.String("user_id", existing.ID), slog.Any("error", err))
			return models.ErrInternalServer
		}
	case errors.Is(err, models.ErrNotFound):
		user := &models.User{
			Principal: models.Principal{
				Realm:        models.RealmUser,
				Name:         name,
				Email:        email,
				PasswordHash: hash,
				Role:         role,
			},
			OTP:        &otp,
			OTPExpires: &otpExpires,
			IsVerified: false,
		}
		if _, err := s.users.CreateUser(ctx, user); err != nil {
			if errors.Is(err, models.ErrConflict) {
				// Raced with another registration for the same address.
				return models.ErrAlreadyVerified
			}
			s.logger.Error("failed to create pending registration", slog.Any("error", err))
			return models.ErrInternalServer
		}
	default:
		s.logger.Error("failed to look up user for registration", slog.Any("error", err))
		return models.ErrInternalServer
	}

	if err := s.deliverOTP(ctx, email, otp); err != nil {
		return err
	}

	s.logger.Info("verification code sent", slog.String("email", pkglogger.SanitizedEmail(email)))
	return nil
}

// ResendOTP regenerates the code for an unverified registration.
func (s *RegistrationService) ResendOTP(ctx context.Context, email string) error {
	email = strings.ToLower(strings.TrimSpace(email))

	user, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return models.ErrNotFound
		}
		s.logger.Error("failed to look up user for resend", slog.Any("error", err))
		return models.ErrInternalServer
	}

	if user.IsVerified {
		return models.ErrAlreadyVerified
	}

	otp, err := pkgauth.GenerateOTP()
	if err != nil {
		s.logger.Error("failed to generate verification code", slog.Any("error", err))
		return models.ErrInternalServer
	}

	if err := s.users.SetOTP(ctx, user.ID, otp, time.Now().Add(s.otpTTL)); err != nil {
		s.logger.Error("failed to store verification code",
			slog.String("user_id", user.ID), slog.Any("error", err))
		return models.ErrInternalServer
	}

	if err := s.deliverOTP(ctx, email, otp); err != nil {
		return err
	}

	s.logger.Info("verification code resent", slog.String("email", pkglogger.SanitizedEmail(email)))
	return nil
}

// VerifyOTP completes a registration when the submitted code matches the one
// pending and unexpired for the account.
func (s *RegistrationService) VerifyOTP(ctx context.Context, email, code string) error {
	email = strings.ToLower(strings.TrimSpace(email))

	user, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return models.ErrNotFound
		}
		s.logger.Error("failed to look up user for verification", slog.Any("error", err))
		return models.ErrInternalServer
	}

	if user.IsVerified {
		return models.ErrAlreadyVerified
	}
	if !user.OTPPending(time.Now()) {
		return models.ErrOTPExpired
	}
	if subtle.ConstantTimeCompare([]byte(*user.OTP), []byte(code)) != 1 {
		s.audit.LogAccountAction("otp_verify_failed", string(models.RealmUser), user.ID, nil)
		return models.ErrInvalidOTP
	}

	if err := s.users.MarkVerified(ctx, user.ID); err != nil {
		s.logger.Error("failed to mark user verified",
			slog.String("user_id", user.ID), slog.Any("error", err))
		return models.ErrInternalServer
	}

	s.logger.Info("registration verified", slog.String("user_id", user.ID))
	s.audit.LogAccountAction("registration_verified", string(models.RealmUser), user.ID, nil)
	return nil
}

func (s *RegistrationService) deliverOTP(ctx context.Context, email, otp string) error {
	body := fmt.Sprintf(
		"Your verification code is: %s\n\nIt expires in %d minutes.",
		otp, int(s.otpTTL.Minutes()),
	)
	if err := s.email.Send(ctx, email, "Verify Your Email", body); err != nil {
		s.logger.Error("failed to deliver verification code",
			slog.String("email", pkglogger.SanitizedEmail(email)), slog.Any("error", err))
		return models.ErrEmailDelivery
	}
	return nil
}
