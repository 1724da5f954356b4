package models

import "errors"

// Sentinel errors for common failure conditions
var (
	ErrNotFound       = errors.New("resource not found")
	ErrConflict       = errors.New("resource already exists")
	ErrUnauthorized   = errors.New("unauthorized")
	ErrForbidden      = errors.New("forbidden")
	ErrBadRequest     = errors.New("bad request")
	ErrInternalServer = errors.New("internal server error")

	// Flow-specific errors
	ErrInvalidResetToken = errors.New("invalid or expired reset token")
	ErrOTPExpired        = errors.New("verification code expired or missing")
	ErrInvalidOTP        = errors.New("invalid verification code")
	ErrAlreadyVerified   = errors.New("email already registered and verified")
	ErrEmailNotVerified  = errors.New("email address not verified")
	ErrEmailDelivery     = errors.New("email delivery failed")
)
