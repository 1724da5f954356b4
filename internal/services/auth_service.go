package services

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/inkwell-cms/inkwell/internal/auth"
	"github.com/inkwell-cms/inkwell/internal/models"
	pkgauth "github.com/inkwell-cms/inkwell/pkg/auth"
	pkglogger "github.com/inkwell-cms/inkwell/pkg/logger"
)

// PrincipalStore is the realm-parameterized credential store contract.
type PrincipalStore interface {
	GetByID(ctx context.Context, id string) (*models.Principal, error)
	GetByEmail(ctx context.Context, email string) (*models.Principal, error)
	Create(ctx context.Context, p *models.Principal) (*models.Principal, error)
	SetPassword(ctx context.Context, id, passwordHash string) error
	SetResetToken(ctx context.Context, id, token string, expiresAt time.Time) error
	ConsumeResetToken(ctx context.Context, token, newPasswordHash string) (*models.Principal, error)
	ClearResetToken(ctx context.Context, id string) error
	Realm() models.Realm
}

// AuthService handles login and logout for one realm. The user realm carries
// an extra store so login can enforce the role and verification gates.
type AuthService struct {
	store  PrincipalStore
	users  UserStore // nil for the admin realm
	tm     *auth.TokenManager
	logger *slog.Logger
	audit  *pkglogger.AuditLogger
}

// NewAuthService creates a new AuthService. Pass a nil users store for the
// admin realm.
func NewAuthService(store PrincipalStore, users UserStore, tm *auth.TokenManager, logger *slog.Logger, audit *pkglogger.AuditLogger) *AuthService {
	return &AuthService{
		store:  store,
		users:  users,
		tm:     tm,
		logger: logger,
		audit:  audit,
	}
}

// PrincipalResponse represents a principal in HTTP responses; the password
// hash never leaves the service layer.
type PrincipalResponse struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	Role      string `json:"role"`
	CreatedAt string `json:"created_at"`
}

// LoginResponse represents the response from a successful login
type LoginResponse struct {
	Token     string             `json:"token"`
	Role      string             `json:"role"`
	Principal *PrincipalResponse `json:"principal"`
}

// Login authenticates a principal against this realm's collection and issues
// a bearer token.
func (s *AuthService) Login(ctx context.Context, email, password string) (*LoginResponse, error) {
	if email = strings.ToLower(strings.TrimSpace(email)); email == "" {
		s.logger.Warn("login attempt with empty email", slog.String("realm", string(s.store.Realm())))
		return nil, models.ErrUnauthorized
	}

	var principal *models.Principal

	if s.users != nil {
		user, err := s.users.GetUserByEmail(ctx, email)
		if err != nil {
			return nil, s.loginLookupError(err)
		}

		if user.Role != models.RoleUser {
			s.auditFailure(user.ID, "not_a_user")
			return nil, models.ErrForbidden
		}
		if !user.IsVerified {
			s.auditFailure(user.ID, "email_not_verified")
			return nil, models.ErrEmailNotVerified
		}

		principal = &user.Principal
	} else {
		p, err := s.store.GetByEmail(ctx, email)
		if err != nil {
			return nil, s.loginLookupError(err)
		}
		principal = p
	}

	if err := pkgauth.ComparePassword(principal.PasswordHash, password); err != nil {
		s.logger.Info("login failed: invalid credentials", slog.String("realm", string(s.store.Realm())))
		s.auditFailure(principal.ID, "invalid_credentials")
		return nil, models.ErrUnauthorized
	}

	token, err := s.tm.Issue(principal.ID, principal.Email, principal.Role)
	if err != nil {
		s.logger.Error("failed to issue token", slog.String("principal_id", principal.ID), slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	s.logger.Info("login succeeded",
		slog.String("realm", string(s.store.Realm())),
		slog.String("principal_id", principal.ID))
	s.audit.LogAuthAttempt(pkglogger.AuditEvent{
		EventType:   "login_success",
		Realm:       string(s.store.Realm()),
		PrincipalID: principal.ID,
		Success:     true,
	})

	return &LoginResponse{
		Token:     token,
		Role:      principal.Role,
		Principal: principalToResponse(principal),
	}, nil
}

// Logout closes any open reset window for the principal. Tokens are not
// stored server-side, so there is nothing else to invalidate.
func (s *AuthService) Logout(ctx context.Context, principalID string) error {
	if err := s.store.ClearResetToken(ctx, principalID); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return models.ErrUnauthorized
		}
		s.logger.Error("failed to clear reset token on logout",
			slog.String("principal_id", principalID), slog.Any("error", err))
		return models.ErrInternalServer
	}

	s.logger.Info("logout",
		slog.String("realm", string(s.store.Realm())),
		slog.String("principal_id", principalID))
	return nil
}

func (s *AuthService) loginLookupError(err error) error {
	if errors.Is(err, models.ErrNotFound) {
		s.logger.Info("login failed: invalid credentials", slog.String("realm", string(s.store.Realm())))
		s.auditFailure("", "invalid_credentials")
		return models.ErrUnauthorized
	}
	s.logger.Error("failed to look up principal for login", slog.Any("error", err))
	return models.ErrInternalServer
}

func (s *AuthService) auditFailure(principalID, reason string) {
	s.audit.LogAuthAttempt(pkglogger.AuditEvent{
		EventType:     "login_failed",
		Realm:         string(s.store.Realm()),
		PrincipalID:   principalID,
		FailureReason: reason,
		Success:       false,
	})
}

func principalToResponse(p *models.Principal) *PrincipalResponse {
	return &PrincipalResponse{
		ID:        p.ID,
		Name:      p.Name,
		Email:     p.Email,
		Role:      p.Role,
		CreatedAt: p.CreatedAt.Format(time.RFC3339),
	}
}
