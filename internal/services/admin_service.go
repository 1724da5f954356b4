package services

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/inkwell-cms/inkwell/internal/models"
	pkgauth "github.com/inkwell-cms/inkwell/pkg/auth"
	pkglogger "github.com/inkwell-cms/inkwell/pkg/logger"
)

// AdminService provisions admin-realm accounts. There is no self-service
// admin signup; accounts are created by an existing admin or at bootstrap.
type AdminService struct {
	store  PrincipalStore
	logger *slog.Logger
	audit  *pkglogger.AuditLogger
}

// NewAdminService creates a new AdminService.
func NewAdminService(store PrincipalStore, logger *slog.Logger, audit *pkglogger.AuditLogger) *AdminService {
	return &AdminService{
		store:  store,
		logger: logger,
		audit:  audit,
	}
}

// Provision creates an admin-realm account with an immediately usable
// password. Role defaults to admin; sub-admin is the only other choice.
func (s *AdminService) Provision(ctx context.Context, name, email, password, role string) (*PrincipalResponse, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	if role == "" {
		role = models.RoleAdmin
	}
	if role != models.RoleAdmin && role != models.RoleSubAdmin {
		return nil, models.ErrBadRequest
	}

	if err := pkgauth.ValidatePassword(password); err != nil {
		return nil, err
	}

	hash, err := pkgauth.HashPassword(password)
	if err != nil {
		s.logger.Error("failed to hash password", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	created, err := s.store.Create(ctx, &models.Principal{
		Realm:        models.RealmAdmin,
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		Role:         role,
	})
	if err != nil {
		if errors.Is(err, models.ErrConflict) {
			return nil, models.ErrConflict
		}
		s.logger.Error("failed to create admin account", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	s.logger.Info("admin account provisioned",
		slog.String("principal_id", created.ID), slog.String("role", created.Role))
	s.audit.LogAccountAction("admin_provisioned", string(models.RealmAdmin), created.ID,
		map[string]string{"role": created.Role})

	return principalToResponse(created), nil
}

// EnsureDefaultAdmin creates the bootstrap admin from configuration when the
// admin table has no account for that email yet. A blank configuration skips
// the step entirely.
func (s *AdminService) EnsureDefaultAdmin(ctx context.Context, name, email, password string) error {
	if email == "" || password == "" {
		s.logger.Info("default admin not configured, skipping bootstrap")
		return nil
	}

	_, err := s.store.GetByEmail(ctx, email)
	if err == nil {
		s.logger.Info("default admin already exists")
		return nil
	}
	if !errors.Is(err, models.ErrNotFound) {
		return err
	}

	if _, err := s.Provision(ctx, name, email, password, models.RoleAdmin); err != nil {
		// A concurrent boot may have won the insert.
		if errors.Is(err, models.ErrConflict) {
			return nil
		}
		return err
	}

	s.logger.Info("default admin created", slog.String("email", pkglogger.SanitizedEmail(email)))
	return nil
}
