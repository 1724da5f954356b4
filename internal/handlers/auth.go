package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/inkwell-cms/inkwell/internal/auth"
	"github.com/inkwell-cms/inkwell/internal/models"
	"github.com/inkwell-cms/inkwell/internal/services"
	pkgauth "github.com/inkwell-cms/inkwell/pkg/auth"
	pkghttp "github.com/inkwell-cms/inkwell/pkg/http"
)

// AuthServiceInterface defines the interface for login/logout business logic
type AuthServiceInterface interface {
	Login(ctx context.Context, email, password string) (*services.LoginResponse, error)
	Logout(ctx context.Context, principalID string) error
}

// PasswordResetServiceInterface defines the interface for the reset flow
type PasswordResetServiceInterface interface {
	RequestReset(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, token, newPassword string) error
}

// AuthHandler serves the credential endpoints for one realm. Mount one
// instance under /api/admin and another under /api/user.
type AuthHandler struct {
	service AuthServiceInterface
	reset   PasswordResetServiceInterface
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(service AuthServiceInterface, reset PasswordResetServiceInterface) *AuthHandler {
	return &AuthHandler{
		service: service,
		reset:   reset,
	}
}

// Request DTOs

// LoginRequest represents the request body for login
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// ForgotPasswordRequest represents the request body for a reset request
type ForgotPasswordRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// ResetPasswordRequest represents the request body for redeeming a reset token
type ResetPasswordRequest struct {
	Token    string `json:"token" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// MessageResponse is the generic success envelope for flow endpoints
type MessageResponse struct {
	Message string `json:"message"`
}

// Login handles POST {realm}/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkghttp.WriteBadRequest(w, "invalid request body")
		return
	}
	if fields := ValidateRequest(req); fields != nil {
		pkghttp.WriteValidationError(w, fields)
		return
	}

	resp, err := h.service.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, models.ErrUnauthorized):
			pkghttp.WriteUnauthorized(w, "authentication failed")
		case errors.Is(err, models.ErrForbidden):
			pkghttp.WriteForbidden(w, "account is not permitted to log in here")
		case errors.Is(err, models.ErrEmailNotVerified):
			pkghttp.WriteForbidden(w, "email not verified")
		default:
			pkghttp.WriteInternalError(w, "internal server error")
		}
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// Logout handles POST {realm}/logout (behind the auth gate)
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	principal := auth.GetPrincipalFromContext(r)
	if principal == nil {
		pkghttp.WriteUnauthorized(w, "unauthorized")
		return
	}

	if err := h.service.Logout(r.Context(), principal.ID); err != nil {
		if errors.Is(err, models.ErrUnauthorized) {
			pkghttp.WriteUnauthorized(w, "unauthorized")
			return
		}
		pkghttp.WriteInternalError(w, "internal server error")
		return
	}

	writeJSON(w, http.StatusOK, MessageResponse{Message: "logged out"})
}

// ForgotPassword handles POST {realm}/forgot-password
func (h *AuthHandler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req ForgotPasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkghttp.WriteBadRequest(w, "invalid request body")
		return
	}
	if fields := ValidateRequest(req); fields != nil {
		pkghttp.WriteValidationError(w, fields)
		return
	}

	if err := h.reset.RequestReset(r.Context(), req.Email); err != nil {
		switch {
		case errors.Is(err, models.ErrNotFound):
			pkghttp.WriteNotFound(w, "account not found")
		case errors.Is(err, models.ErrEmailDelivery):
			pkghttp.WriteDeliveryError(w, "failed to send reset email")
		default:
			pkghttp.WriteInternalError(w, "internal server error")
		}
		return
	}

	writeJSON(w, http.StatusOK, MessageResponse{Message: "reset email sent"})
}

// ResetPassword handles POST {realm}/reset-password
func (h *AuthHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req ResetPasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkghttp.WriteBadRequest(w, "invalid request body")
		return
	}
	if fields := ValidateRequest(req); fields != nil {
		pkghttp.WriteValidationError(w, fields)
		return
	}

	if err := h.reset.ResetPassword(r.Context(), req.Token, req.Password); err != nil {
		var validationErr *pkgauth.PasswordValidationError
		switch {
		case errors.Is(err, models.ErrInvalidResetToken):
			pkghttp.WriteBadRequest(w, "invalid or expired reset token")
		case errors.As(err, &validationErr):
			pkghttp.WriteBadRequest(w, validationErr.Error())
		default:
			pkghttp.WriteInternalError(w, "internal server error")
		}
		return
	}

	writeJSON(w, http.StatusOK, MessageResponse{Message: "password updated"})
}

// Me handles GET {realm}/me (behind the auth gate)
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	principal := auth.GetPrincipalFromContext(r)
	if principal == nil {
		pkghttp.WriteUnauthorized(w, "unauthorized")
		return
	}

	writeJSON(w, http.StatusOK, services.PrincipalResponse{
		ID:        principal.ID,
		Name:      principal.Name,
		Email:     principal.Email,
		Role:      principal.Role,
		CreatedAt: principal.CreatedAt.Format(time.RFC3339),
	})
}

func writeJSON(w http.ResponseWriter, statusCode int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(body)
}
