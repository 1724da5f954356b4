package models

import (
	"github.com/golang-jwt/jwt/v5"
)

// TokenClaims is the bearer token payload. The principal id travels in the
// registered Subject claim; email and role ride alongside it.
type TokenClaims struct {
	Email string `json:"email"`
	Role  string `json:"role"`
	jwt.RegisteredClaims
}

// PrincipalID returns the subject claim.
func (c *TokenClaims) PrincipalID() string {
	return c.Subject
}
