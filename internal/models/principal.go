package models

import (
	"time"
)

// Realm identifies which identity space a principal belongs to. Admins and
// users live in separate collections; the same email may exist in both.
type Realm string

const (
	RealmAdmin Realm = "admin"
	RealmUser  Realm = "user"
)

// Role values per realm. A user record may self-declare "admin", which is
// not the same thing as an admin-realm principal.
const (
	RoleAdmin    = "admin"
	RoleSubAdmin = "sub-admin"
	RoleUser     = "user"
)

// Principal is an authenticable identity, shared by both realms.
type Principal struct {
	ID               string
	Realm            Realm
	Name             string
	Email            string // stored lowercase
	PasswordHash     string
	Role             string
	ResetToken       *string    // set only while a reset window is open
	ResetTokenExpire *time.Time // paired with ResetToken, cleared together
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// ResetPending reports whether the principal has an unexpired reset token.
func (p *Principal) ResetPending(now time.Time) bool {
	return p.ResetToken != nil && p.ResetTokenExpire != nil && p.ResetTokenExpire.After(now)
}

// User is a user-realm principal with the registration-verification extension.
type User struct {
	Principal
	OTP        *string    // set only while a verification window is open
	OTPExpires *time.Time // paired with OTP, cleared together
	IsVerified bool
}

// OTPPending reports whether the user has an unexpired verification code.
func (u *User) OTPPending(now time.Time) bool {
	return u.OTP != nil && u.OTPExpires != nil && u.OTPExpires.After(now)
}
