package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/inkwell-cms/inkwell/internal/services"
	"github.com/stretchr/testify/require"
)

type mockAuthService struct {
	LoginFunc  func(ctx context.Context, email, password string) (*services.LoginResponse, error)
	LogoutFunc func(ctx context.Context, principalID string) error
}

func (m *mockAuthService) Login(ctx context.Context, email, password string) (*services.LoginResponse, error) {
	if m.LoginFunc != nil {
		return m.LoginFunc(ctx, email, password)
	}
	return &services.LoginResponse{Token: "stub-token"}, nil
}

func (m *mockAuthService) Logout(ctx context.Context, principalID string) error {
	if m.LogoutFunc != nil {
		return m.LogoutFunc(ctx, principalID)
	}
	return nil
}

type mockResetService struct {
	RequestResetFunc  func(ctx context.Context, email string) error
	ResetPasswordFunc func(ctx context.Context, token, newPassword string) error
}

func (m *mockResetService) RequestReset(ctx context.Context, email string) error {
	if m.RequestResetFunc != nil {
		return m.RequestResetFunc(ctx, email)
	}
	return nil
}

func (m *mockResetService) ResetPassword(ctx context.Context, token, newPassword string) error {
	if m.ResetPasswordFunc != nil {
		return m.ResetPasswordFunc(ctx, token, newPassword)
	}
	return nil
}

type mockRegistrationService struct {
	SendOTPFunc   func(ctx context.Context, name, email, password, role string) error
	ResendOTPFunc func(ctx context.Context, email string) error
	VerifyOTPFunc func(ctx context.Context, email, code string) error
}

func (m *mockRegistrationService) SendOTP(ctx context.Context, name, email, password, role string) error {
	if m.SendOTPFunc != nil {
		return m.SendOTPFunc(ctx, name, email, password, role)
	}
	return nil
}

func (m *mockRegistrationService) ResendOTP(ctx context.Context, email string) error {
	if m.ResendOTPFunc != nil {
		return m.ResendOTPFunc(ctx, email)
	}
	return nil
}

func (m *mockRegistrationService) VerifyOTP(ctx context.Context, email, code string) error {
	if m.VerifyOTPFunc != nil {
		return m.VerifyOTPFunc(ctx, email, code)
	}
	return nil
}

type mockAdminService struct {
	ProvisionFunc func(ctx context.Context, name, email, password, role string) (*services.PrincipalResponse, error)
}

func (m *mockAdminService) Provision(ctx context.Context, name, email, password, role string) (*services.PrincipalResponse, error) {
	if m.ProvisionFunc != nil {
		return m.ProvisionFunc(ctx, name, email, password, role)
	}
	return &services.PrincipalResponse{ID: "stub-id"}, nil
}

// postJSON builds a request with a JSON body and runs it through the handler.
func postJSON(t *testing.T, handler http.HandlerFunc, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	payload, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}
