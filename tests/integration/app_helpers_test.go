package integration

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"regexp"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"github.com/inkwell-cms/inkwell/internal/auth"
	"github.com/inkwell-cms/inkwell/internal/handlers"
	"github.com/inkwell-cms/inkwell/internal/repositories"
	"github.com/inkwell-cms/inkwell/internal/routes"
	"github.com/inkwell-cms/inkwell/internal/services"
	pkglogger "github.com/inkwell-cms/inkwell/pkg/logger"
)

const testJWTSecret = "integration-test-signing-secret"

// testApp is the fully wired HTTP surface backed by a real database, with
// outbound email captured in memory.
type testApp struct {
	Router chi.Router
	Email  *services.MockEmailService
	Admins *repositories.PrincipalRepository
	Users  *repositories.UserRepository
	Admin  *services.AdminService
}

func newTestApp(t *testing.T, db *TestDB) *testApp {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	audit := pkglogger.NewAuditLogger(logger)

	adminRepo := repositories.NewAdminRepository(db.DB)
	userRepo := repositories.NewUserRepository(db.DB)

	tokenManager := auth.NewTokenManager(testJWTSecret, 1*time.Hour)
	email := &services.MockEmailService{}

	adminAuthService := services.NewAuthService(adminRepo, nil, tokenManager, logger, audit)
	userAuthService := services.NewAuthService(userRepo.PrincipalRepository, userRepo, tokenManager, logger, audit)
	adminResetService := services.NewPasswordResetService(adminRepo, email, logger, audit, 1*time.Hour)
	userResetService := services.NewPasswordResetService(userRepo.PrincipalRepository, email, logger, audit, 1*time.Hour)
	registrationService := services.NewRegistrationService(userRepo, email, logger, audit, 5*time.Minute)
	adminService := services.NewAdminService(adminRepo, logger, audit)

	router := chi.NewRouter()
	routes.RegisterRoutes(router, tokenManager, adminRepo, userRepo,
		handlers.NewAuthHandler(adminAuthService, adminResetService),
		handlers.NewAuthHandler(userAuthService, userResetService),
		handlers.NewRegistrationHandler(registrationService),
		handlers.NewAdminHandler(adminService),
	)

	return &testApp{
		Router: router,
		Email:  email,
		Admins: adminRepo,
		Users:  userRepo,
		Admin:  adminService,
	}
}

// post sends a JSON request through the router.
func (a *testApp) post(t *testing.T, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	payload, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	a.Router.ServeHTTP(rec, req)
	return rec
}

func (a *testApp) get(t *testing.T, path, token string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	a.Router.ServeHTTP(rec, req)
	return rec
}

var otpPattern = regexp.MustCompile(`\b(\d{6})\b`)
var resetTokenPattern = regexp.MustCompile(`\b([0-9a-f]{64})\b`)

// lastOTP pulls the verification code out of the most recent captured email.
func (a *testApp) lastOTP(t *testing.T) string {
	t.Helper()
	require.NotEmpty(t, a.Email.Sent, "expected a captured email")

	match := otpPattern.FindStringSubmatch(a.Email.Sent[len(a.Email.Sent)-1].Body)
	require.NotNil(t, match, "expected a 6-digit code in the email body")
	return match[1]
}

// lastResetToken pulls the reset token out of the most recent captured email.
func (a *testApp) lastResetToken(t *testing.T) string {
	t.Helper()
	require.NotEmpty(t, a.Email.Sent, "expected a captured email")

	match := resetTokenPattern.FindStringSubmatch(a.Email.Sent[len(a.Email.Sent)-1].Body)
	require.NotNil(t, match, "expected a hex token in the email body")
	return match[1]
}

func decodeJSON(t *testing.T, rec *httptest.ResponseRecorder, into interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), into))
}
