package repositories

import (
	"context"
	"time"

	"github.com/inkwell-cms/inkwell/internal/database"
	"github.com/inkwell-cms/inkwell/internal/models"
	"github.com/google/uuid"
)

// UserRepository extends the shared credential store with the user realm's
// registration-verification fields.
type UserRepository struct {
	*PrincipalRepository
}

// NewUserRepository returns the user-realm credential store.
func NewUserRepository(db *database.DB) *UserRepository {
	return &UserRepository{
		PrincipalRepository: &PrincipalRepository{
			pool:        db.Pool,
			table:       "users",
			realm:       models.RealmUser,
			defaultRole: models.RoleUser,
		},
	}
}

const userColumns = principalColumns + ", otp, otp_expires, is_verified"

func (r *UserRepository) scanUser(scanner rowScanner) (*models.User, error) {
	var u models.User
	var resetToken, otp *string
	var resetTokenExpire, otpExpires *time.Time

	err := scanner.Scan(
		&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.Role,
		&resetToken, &resetTokenExpire,
		&u.CreatedAt, &u.UpdatedAt,
		&otp, &otpExpires, &u.IsVerified,
	)
	if err != nil {
		return nil, database.MapPostgresError(err)
	}

	u.Realm = models.RealmUser
	u.ResetToken = resetToken
	u.ResetTokenExpire = resetTokenExpire
	u.OTP = otp
	u.OTPExpires = otpExpires

	return &u, nil
}

// GetUserByEmail looks up a user with the verification extension, case-insensitively.
func (r *UserRepository) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = lower($1)`

	return r.scanUser(r.pool.QueryRow(ctx, query, email))
}

// CreateUser inserts an unverified user with a pending verification code.
func (r *UserRepository) CreateUser(ctx context.Context, u *models.User) (*models.User, error) {
	u.ID = uuid.New().String()

	now := time.Now()
	u.CreatedAt = now
	u.UpdatedAt = now

	if u.Role == "" {
		u.Role = models.RoleUser
	}

	query := `
		INSERT INTO users (id, name, email, password_hash, role, otp, otp_expires, is_verified, created_at, updated_at)
		VALUES ($1, $2, lower($3), $4, $5, $6, $7, $8, $9, $10)
		RETURNING ` + userColumns

	return r.scanUser(r.pool.QueryRow(ctx, query,
		u.ID, u.Name, u.Email, u.PasswordHash, u.Role,
		u.OTP, u.OTPExpires, u.IsVerified, u.CreatedAt, u.UpdatedAt,
	))
}

// ReplacePending overwrites the provisional data of an unverified record with
// a fresh registration attempt and a new verification code.
func (r *UserRepository) ReplacePending(ctx context.Context, id, name, passwordHash, role, otp string, otpExpires time.Time) error {
	query := `
		UPDATE users
		SET name = $1, password_hash = $2, role = $3, otp = $4, otp_expires = $5, updated_at = $6
		WHERE id = $7 AND is_verified = FALSE
	`

	result, err := r.pool.Exec(ctx, query, name, passwordHash, role, otp, otpExpires, time.Now(), id)
	if err != nil {
		return database.MapPostgresError(err)
	}
	if result.RowsAffected() == 0 {
		return models.ErrNotFound
	}

	return nil
}

// SetOTP regenerates the verification window without touching other fields.
func (r *UserRepository) SetOTP(ctx context.Context, id, otp string, otpExpires time.Time) error {
	query := `UPDATE users SET otp = $1, otp_expires = $2, updated_at = $3 WHERE id = $4 AND is_verified = FALSE`

	result, err := r.pool.Exec(ctx, query, otp, otpExpires, time.Now(), id)
	if err != nil {
		return database.MapPostgresError(err)
	}
	if result.RowsAffected() == 0 {
		return models.ErrNotFound
	}

	return nil
}

// MarkVerified flips the verified flag and clears the verification window
// together.
func (r *UserRepository) MarkVerified(ctx context.Context, id string) error {
	query := `UPDATE users SET is_verified = TRUE, otp = NULL, otp_expires = NULL, updated_at = $1 WHERE id = $2`

	result, err := r.pool.Exec(ctx, query, time.Now(), id)
	if err != nil {
		return database.MapPostgresError(err)
	}
	if result.RowsAffected() == 0 {
		return models.ErrNotFound
	}

	return nil
}
