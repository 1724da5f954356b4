package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/inkwell-cms/inkwell/internal/models"
	"github.com/inkwell-cms/inkwell/internal/services"
	pkgauth "github.com/inkwell-cms/inkwell/pkg/auth"
	pkghttp "github.com/inkwell-cms/inkwell/pkg/http"
)

// AdminServiceInterface defines the interface for admin provisioning
type AdminServiceInterface interface {
	Provision(ctx context.Context, name, email, password, role string) (*services.PrincipalResponse, error)
}

// AdminHandler serves admin-account provisioning, available only to an
// already-authenticated admin.
type AdminHandler struct {
	service AdminServiceInterface
}

// NewAdminHandler creates a new AdminHandler
func NewAdminHandler(service AdminServiceInterface) *AdminHandler {
	return &AdminHandler{service: service}
}

// RegisterAdminRequest represents the request body for creating an admin
type RegisterAdminRequest struct {
	Name     string `json:"name" validate:"required,min=1,max=100"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
	Role     string `json:"role" validate:"omitempty,oneof=admin sub-admin"`
}

// Register handles POST /admin/register (behind the admin gate)
func (h *AdminHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterAdminRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkghttp.WriteBadRequest(w, "invalid request body")
		return
	}
	if fields := ValidateRequest(req); fields != nil {
		pkghttp.WriteValidationError(w, fields)
		return
	}

	created, err := h.service.Provision(r.Context(), req.Name, req.Email, req.Password, req.Role)
	if err != nil {
		var validationErr *pkgauth.PasswordValidationError
		switch {
		case errors.Is(err, models.ErrConflict):
			pkghttp.WriteConflict(w, "email already registered")
		case errors.Is(err, models.ErrBadRequest):
			pkghttp.WriteBadRequest(w, "invalid role")
		case errors.As(err, &validationErr):
			pkghttp.WriteBadRequest(w, validationErr.Error())
		default:
			pkghttp.WriteInternalError(w, "internal server error")
		}
		return
	}

	writeJSON(w, http.StatusCreated, created)
}
