package services

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/inkwell-cms/inkwell/internal/models"
	pkglogger "github.com/inkwell-cms/inkwell/pkg/logger"
)

// Function-field mocks so each test overrides only what it exercises.

type MockPrincipalStore struct {
	GetByIDFunc           func(ctx context.Context, id string) (*models.Principal, error)
	GetByEmailFunc        func(ctx context.Context, email string) (*models.Principal, error)
	CreateFunc            func(ctx context.Context, p *models.Principal) (*models.Principal, error)
	SetPasswordFunc       func(ctx context.Context, id, passwordHash string) error
	SetResetTokenFunc     func(ctx context.Context, id, token string, expiresAt time.Time) error
	ConsumeResetTokenFunc func(ctx context.Context, token, newPasswordHash string) (*models.Principal, error)
	ClearResetTokenFunc   func(ctx context.Context, id string) error
	RealmValue            models.Realm
}

func (m *MockPrincipalStore) GetByID(ctx context.Context, id string) (*models.Principal, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	return nil, models.ErrNotFound
}

func (m *MockPrincipalStore) GetByEmail(ctx context.Context, email string) (*models.Principal, error) {
	if m.GetByEmailFunc != nil {
		return m.GetByEmailFunc(ctx, email)
	}
	return nil, models.ErrNotFound
}

func (m *MockPrincipalStore) Create(ctx context.Context, p *models.Principal) (*models.Principal, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, p)
	}
	return p, nil
}

func (m *MockPrincipalStore) SetPassword(ctx context.Context, id, passwordHash string) error {
	if m.SetPasswordFunc != nil {
		return m.SetPasswordFunc(ctx, id, passwordHash)
	}
	return nil
}

func (m *MockPrincipalStore) SetResetToken(ctx context.Context, id, token string, expiresAt time.Time) error {
	if m.SetResetTokenFunc != nil {
		return m.SetResetTokenFunc(ctx, id, token, expiresAt)
	}
	return nil
}

func (m *MockPrincipalStore) ConsumeResetToken(ctx context.Context, token, newPasswordHash string) (*models.Principal, error) {
	if m.ConsumeResetTokenFunc != nil {
		return m.ConsumeResetTokenFunc(ctx, token, newPasswordHash)
	}
	return nil, models.ErrNotFound
}

func (m *MockPrincipalStore) ClearResetToken(ctx context.Context, id string) error {
	if m.ClearResetTokenFunc != nil {
		return m.ClearResetTokenFunc(ctx, id)
	}
	return nil
}

func (m *MockPrincipalStore) Realm() models.Realm {
	if m.RealmValue != "" {
		return m.RealmValue
	}
	return models.RealmAdmin
}

type MockUserStore struct {
	GetUserByEmailFunc func(ctx context.Context, email string) (*models.User, error)
	CreateUserFunc     func(ctx context.Context, u *models.User) (*models.User, error)
	ReplacePendingFunc func(ctx context.Context, id, name, passwordHash, role, otp string, otpExpires time.Time) error
	SetOTPFunc         func(ctx context.Context, id, otp string, otpExpires time.Time) error
	MarkVerifiedFunc   func(ctx context.Context, id string) error
}

func (m *MockUserStore) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	if m.GetUserByEmailFunc != nil {
		return m.GetUserByEmailFunc(ctx, email)
	}
	return nil, models.ErrNotFound
}

func (m *MockUserStore) CreateUser(ctx context.Context, u *models.User) (*models.User, error) {
	if m.CreateUserFunc != nil {
		return m.CreateUserFunc(ctx, u)
	}
	return u, nil
}

func (m *MockUserStore) ReplacePending(ctx context.Context, id, name, passwordHash, role, otp string, otpExpires time.Time) error {
	if m.ReplacePendingFunc != nil {
		return m.ReplacePendingFunc(ctx, id, name, passwordHash, role, otp, otpExpires)
	}
	return nil
}

func (m *MockUserStore) SetOTP(ctx context.Context, id, otp string, otpExpires time.Time) error {
	if m.SetOTPFunc != nil {
		return m.SetOTPFunc(ctx, id, otp, otpExpires)
	}
	return nil
}

func (m *MockUserStore) MarkVerified(ctx context.Context, id string) error {
	if m.MarkVerifiedFunc != nil {
		return m.MarkVerifiedFunc(ctx, id)
	}
	return nil
}

// MockEmailService captures outbound mail instead of sending it.
type MockEmailService struct {
	SendFunc func(ctx context.Context, to, subject, body string) error
	Sent     []SentEmail
}

type SentEmail struct {
	To      string
	Subject string
	Body    string
}

func (m *MockEmailService) Send(ctx context.Context, to, subject, body string) error {
	if m.SendFunc != nil {
		if err := m.SendFunc(ctx, to, subject, body); err != nil {
			return err
		}
	}
	m.Sent = append(m.Sent, SentEmail{To: to, Subject: subject, Body: body})
	return nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testAudit() *pkglogger.AuditLogger {
	return pkglogger.NewAuditLogger(testLogger())
}
