package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/inkwell-cms/inkwell/internal/models"
	pkgauth "github.com/inkwell-cms/inkwell/pkg/auth"
	pkghttp "github.com/inkwell-cms/inkwell/pkg/http"
)

// RegistrationServiceInterface defines the interface for the signup flow
type RegistrationServiceInterface interface {
	SendOTP(ctx context.Context, name, email, password, role string) error
	ResendOTP(ctx context.Context, email string) error
	VerifyOTP(ctx context.Context, email, code string) error
}

// RegistrationHandler serves the user-realm email-verification signup flow.
type RegistrationHandler struct {
	service RegistrationServiceInterface
}

// NewRegistrationHandler creates a new RegistrationHandler
func NewRegistrationHandler(service RegistrationServiceInterface) *RegistrationHandler {
	return &RegistrationHandler{service: service}
}

// SendOTPRequest represents the request body for starting a registration
type SendOTPRequest struct {
	Name     string `json:"name" validate:"required,min=1,max=100"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
	Role     string `json:"role" validate:"omitempty,oneof=user admin"`
}

// VerifyOTPRequest represents the request body for submitting a code
type VerifyOTPRequest struct {
	Email string `json:"email" validate:"required,email"`
	OTP   string `json:"otp" validate:"required,len=6,numeric"`
}

// ResendOTPRequest represents the request body for requesting a fresh code
type ResendOTPRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// SendOTP handles POST /user/send-otp
func (h *RegistrationHandler) SendOTP(w http.ResponseWriter, r *http.Request) {
	var req SendOTPRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkghttp.WriteBadRequest(w, "invalid request body")
		return
	}
	if fields := ValidateRequest(req); fields != nil {
		pkghttp.WriteValidationError(w, fields)
		return
	}

	if err := h.service.SendOTP(r.Context(), req.Name, req.Email, req.Password, req.Role); err != nil {
		var validationErr *pkgauth.PasswordValidationError
		switch {
		case errors.Is(err, models.ErrAlreadyVerified):
			pkghttp.WriteConflict(w, "account already registered")
		case errors.Is(err, models.ErrBadRequest):
			pkghttp.WriteBadRequest(w, "invalid role")
		case errors.As(err, &validationErr):
			pkghttp.WriteBadRequest(w, validationErr.Error())
		case errors.Is(err, models.ErrEmailDelivery):
			pkghttp.WriteDeliveryError(w, "failed to send verification email")
		default:
			pkghttp.WriteInternalError(w, "internal server error")
		}
		return
	}

	writeJSON(w, http.StatusOK, MessageResponse{Message: "verification code sent"})
}

// VerifyOTP handles POST /user/verify-otp
func (h *RegistrationHandler) VerifyOTP(w http.ResponseWriter, r *http.Request) {
	var req VerifyOTPRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkghttp.WriteBadRequest(w, "invalid request body")
		return
	}
	if fields := ValidateRequest(req); fields != nil {
		pkghttp.WriteValidationError(w, fields)
		return
	}

	if err := h.service.VerifyOTP(r.Context(), req.Email, req.OTP); err != nil {
		switch {
		case errors.Is(err, models.ErrNotFound):
			pkghttp.WriteNotFound(w, "registration not found")
		case errors.Is(err, models.ErrAlreadyVerified):
			pkghttp.WriteConflict(w, "account already verified")
		case errors.Is(err, models.ErrOTPExpired):
			pkghttp.WriteBadRequest(w, "verification code expired, request a new one")
		case errors.Is(err, models.ErrInvalidOTP):
			pkghttp.WriteBadRequest(w, "invalid verification code")
		default:
			pkghttp.WriteInternalError(w, "internal server error")
		}
		return
	}

	writeJSON(w, http.StatusOK, MessageResponse{Message: "email verified"})
}

// ResendOTP handles POST /user/resend-otp
func (h *RegistrationHandler) ResendOTP(w http.ResponseWriter, r *http.Request) {
	var req ResendOTPRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkghttp.WriteBadRequest(w, "invalid request body")
		return
	}
	if fields := ValidateRequest(req); fields != nil {
		pkghttp.WriteValidationError(w, fields)
		return
	}

	if err := h.service.ResendOTP(r.Context(), req.Email); err != nil {
		switch {
		case errors.Is(err, models.ErrNotFound):
			pkghttp.WriteNotFound(w, "registration not found")
		case errors.Is(err, models.ErrAlreadyVerified):
			pkghttp.WriteConflict(w, "account already verified")
		case errors.Is(err, models.ErrEmailDelivery):
			pkghttp.WriteDeliveryError(w, "failed to send verification email")
		default:
			pkghttp.WriteInternalError(w, "internal server error")
		}
		return
	}

	writeJSON(w, http.StatusOK, MessageResponse{Message: "verification code sent"})
}
