package routes

import (
	"github.com/go-chi/chi/v5"
	"github.com/inkwell-cms/inkwell/internal/auth"
	"github.com/inkwell-cms/inkwell/internal/handlers"
	"github.com/inkwell-cms/inkwell/internal/models"
	"github.com/inkwell-cms/inkwell/internal/repositories"
)

// RegisterRoutes mounts both realm surfaces. Each realm gets its own auth
// gate instance so a token only ever resolves against its own table.
func RegisterRoutes(
	router chi.Router,
	tokenManager *auth.TokenManager,
	adminRepo *repositories.PrincipalRepository,
	userRepo *repositories.UserRepository,
	adminAuthHandler *handlers.AuthHandler,
	userAuthHandler *handlers.AuthHandler,
	registrationHandler *handlers.RegistrationHandler,
	adminHandler *handlers.AdminHandler,
) {
	adminGate := auth.Middleware(tokenManager, adminRepo)
	userGate := auth.Middleware(tokenManager, userRepo)

	router.Route("/api/admin", func(r chi.Router) {
		r.Post("/login", adminAuthHandler.Login)
		r.Post("/forgot-password", adminAuthHandler.ForgotPassword)
		r.Post("/reset-password", adminAuthHandler.ResetPassword)

		r.Group(func(r chi.Router) {
			r.Use(adminGate)
			r.Post("/logout", adminAuthHandler.Logout)
			r.Get("/me", adminAuthHandler.Me)

			// Provisioning new admins requires the full admin role,
			// sub-admins cannot mint accounts.
			r.With(auth.RequireRole(models.RoleAdmin)).Post("/register", adminHandler.Register)
		})
	})

	router.Route("/api/user", func(r chi.Router) {
		r.Post("/send-otp", registrationHandler.SendOTP)
		r.Post("/verify-otp", registrationHandler.VerifyOTP)
		r.Post("/resend-otp", registrationHandler.ResendOTP)

		r.Post("/login", userAuthHandler.Login)
		r.Post("/forgot-password", userAuthHandler.ForgotPassword)
		r.Post("/reset-password", userAuthHandler.ResetPassword)

		r.Group(func(r chi.Router) {
			r.Use(userGate)
			r.Post("/logout", userAuthHandler.Logout)
			r.Get("/me", userAuthHandler.Me)
		})
	})
}
