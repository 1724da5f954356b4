package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequiredEnv(t *testing.T) {
	t.Setenv("JWT_SECRET", "a-sufficiently-long-development-secret")
	t.Setenv("DB_PASSWORD", "postgres")
}

func TestLoad_Defaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "development", cfg.Server.Env)
	assert.Equal(t, "inkwell", cfg.Database.Name)
	assert.Equal(t, 1*time.Hour, cfg.Auth.TokenExpiry)
	assert.Equal(t, 1*time.Hour, cfg.Auth.ResetTokenTTL)
	assert.Equal(t, 5*time.Minute, cfg.Auth.OTPTTL)
	assert.NotEmpty(t, cfg.Server.AllowedOrigins, "development should allow localhost origins")
}

func TestLoad_MissingJWTSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	t.Setenv("DB_PASSWORD", "postgres")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoad_MissingDBPassword(t *testing.T) {
	t.Setenv("JWT_SECRET", "a-sufficiently-long-development-secret")
	t.Setenv("DB_PASSWORD", "")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoad_WeakJWTSecretRejectedInProduction(t *testing.T) {
	t.Setenv("JWT_SECRET", "short-secret-16ch")
	t.Setenv("DB_PASSWORD", "postgres")
	t.Setenv("ENV", "production")

	_, err := Load()
	assert.Error(t, err, "production requires a 32+ character secret")
}

func TestLoad_DurationOverrides(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("TOKEN_EXPIRY", "30m")
	t.Setenv("OTP_TTL", "2m")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 30*time.Minute, cfg.Auth.TokenExpiry)
	assert.Equal(t, 2*time.Minute, cfg.Auth.OTPTTL)
}

func TestDSN(t *testing.T) {
	cfg := DatabaseConfig{
		Host: "localhost", Port: 5432, User: "postgres",
		Password: "pw", Name: "inkwell", SSLMode: "disable",
	}

	assert.Equal(t,
		"host=localhost port=5432 user=postgres password=pw dbname=inkwell sslmode=disable",
		cfg.DSN())
}
