package auth

import (
	"fmt"
	"time"

	"github.com/inkwell-cms/inkwell/internal/models"
	"github.com/golang-jwt/jwt/v5"
)

// TokenManager issues and verifies signed bearer tokens. Issued tokens are
// never stored; validity is signature + expiry + principal existence at the
// gate. Rotating the secret invalidates everything outstanding.
type TokenManager struct {
	secret []byte
	expiry time.Duration
}

// NewTokenManager creates a new TokenManager
func NewTokenManager(secret string, expiry time.Duration) *TokenManager {
	return &TokenManager{
		secret: []byte(secret),
		expiry: expiry,
	}
}

// Issue creates a signed token carrying the principal id, email and role.
func (tm *TokenManager) Issue(principalID, email, role string) (string, error) {
	now := time.Now()

	claims := &models.TokenClaims{
		Email: email,
		Role:  role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   principalID,
			ExpiresAt: jwt.NewNumericDate(now.Add(tm.expiry)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	tokenString, err := token.SignedString(tm.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}

	return tokenString, nil
}

// Verify parses a token and returns its claims. Bad signature, malformed
// structure and expiry all fail the same way; callers get no distinguishing
// detail.
func (tm *TokenManager) Verify(tokenString string) (*models.TokenClaims, error) {
	claims := &models.TokenClaims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return tm.secret, nil
	})

	if err != nil {
		return nil, models.ErrUnauthorized
	}

	if !token.Valid || claims.Subject == "" {
		return nil, models.ErrUnauthorized
	}

	return claims, nil
}
