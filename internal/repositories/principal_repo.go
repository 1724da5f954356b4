package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/inkwell-cms/inkwell/internal/database"
	"github.com/inkwell-cms/inkwell/internal/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PrincipalRepository is the credential store for one realm. Admins and users
// live in separate tables; the same repository code serves both, with the
// user-specific extension layered on in UserRepository.
type PrincipalRepository struct {
	pool        *pgxpool.Pool
	table       string
	realm       models.Realm
	defaultRole string
}

// NewAdminRepository returns the admin-realm credential store.
func NewAdminRepository(db *database.DB) *PrincipalRepository {
	return &PrincipalRepository{
		pool:        db.Pool,
		table:       "admins",
		realm:       models.RealmAdmin,
		defaultRole: models.RoleAdmin,
	}
}

func (r *PrincipalRepository) Realm() models.Realm {
	return r.realm
}

// rowScanner interface for scanning principal rows
type rowScanner interface {
	Scan(dest ...interface{}) error
}

// principalColumns are the fields shared by both realm tables. The table name
// is interpolated from the fixed internal set above, never from input.
const principalColumns = "id, name, email, password_hash, role, reset_token, reset_token_expire, created_at, updated_at"

func (r *PrincipalRepository) scanPrincipal(scanner rowScanner) (*models.Principal, error) {
	var p models.Principal
	var resetToken *string
	var resetTokenExpire *time.Time

	err := scanner.Scan(
		&p.ID, &p.Name, &p.Email, &p.PasswordHash, &p.Role,
		&resetToken, &resetTokenExpire,
		&p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, database.MapPostgresError(err)
	}

	p.Realm = r.realm
	p.ResetToken = resetToken
	p.ResetTokenExpire = resetTokenExpire

	return &p, nil
}

func (r *PrincipalRepository) GetByID(ctx context.Context, id string) (*models.Principal, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE id = $1`, principalColumns, r.table)

	return r.scanPrincipal(r.pool.QueryRow(ctx, query, id))
}

// GetByEmail looks up a principal by email, case-insensitively.
func (r *PrincipalRepository) GetByEmail(ctx context.Context, email string) (*models.Principal, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE email = lower($1)`, principalColumns, r.table)

	return r.scanPrincipal(r.pool.QueryRow(ctx, query, email))
}

// Create inserts a new principal. The caller supplies an already-hashed
// password; emails are stored lowercase. A duplicate email in the same realm
// surfaces as models.ErrConflict via the unique index.
func (r *PrincipalRepository) Create(ctx context.Context, p *models.Principal) (*models.Principal, error) {
	p.ID = uuid.New().String()

	now := time.Now()
	p.CreatedAt = now
	p.UpdatedAt = now

	if p.Role == "" {
		p.Role = r.defaultRole
	}

	query := fmt.Sprintf(`
		INSERT INTO %s (id, name, email, password_hash, role, created_at, updated_at)
		VALUES ($1, $2, lower($3), $4, $5, $6, $7)
		RETURNING %s
	`, r.table, principalColumns)

	return r.scanPrincipal(r.pool.QueryRow(ctx, query,
		p.ID, p.Name, p.Email, p.PasswordHash, p.Role, p.CreatedAt, p.UpdatedAt,
	))
}

// SetPassword replaces the stored hash. This is the only write that touches
// password_hash outside of ConsumeResetToken; all other updates leave the
// hash untouched so an already-hashed value is never re-hashed.
func (r *PrincipalRepository) SetPassword(ctx context.Context, id, passwordHash string) error {
	query := fmt.Sprintf(`UPDATE %s SET password_hash = $1, updated_at = $2 WHERE id = $3`, r.table)

	result, err := r.pool.Exec(ctx, query, passwordHash, time.Now(), id)
	if err != nil {
		return database.MapPostgresError(err)
	}
	if result.RowsAffected() == 0 {
		return models.ErrNotFound
	}

	return nil
}

// SetResetToken opens (or replaces) the principal's reset window. At most one
// reset is pending per principal; a new request overwrites the previous token.
func (r *PrincipalRepository) SetResetToken(ctx context.Context, id, token string, expiresAt time.Time) error {
	query := fmt.Sprintf(`
		UPDATE %s SET reset_token = $1, reset_token_expire = $2, updated_at = $3 WHERE id = $4
	`, r.table)

	result, err := r.pool.Exec(ctx, query, token, expiresAt, time.Now(), id)
	if err != nil {
		return database.MapPostgresError(err)
	}
	if result.RowsAffected() == 0 {
		return models.ErrNotFound
	}

	return nil
}

// ConsumeResetToken atomically writes the new hash and clears the reset
// window for the principal holding an exact-match, unexpired token. Returns
// models.ErrNotFound when no principal matches.
func (r *PrincipalRepository) ConsumeResetToken(ctx context.Context, token, newPasswordHash string) (*models.Principal, error) {
	query := fmt.Sprintf(`
		UPDATE %s
		SET password_hash = $1, reset_token = NULL, reset_token_expire = NULL, updated_at = $2
		WHERE reset_token = $3 AND reset_token_expire > $2
		RETURNING %s
	`, r.table, principalColumns)

	return r.scanPrincipal(r.pool.QueryRow(ctx, query, newPasswordHash, time.Now(), token))
}

// ClearResetToken closes any open reset window, e.g. on logout.
func (r *PrincipalRepository) ClearResetToken(ctx context.Context, id string) error {
	query := fmt.Sprintf(`
		UPDATE %s SET reset_token = NULL, reset_token_expire = NULL, updated_at = $1 WHERE id = $2
	`, r.table)

	result, err := r.pool.Exec(ctx, query, time.Now(), id)
	if err != nil {
		return database.MapPostgresError(err)
	}
	if result.RowsAffected() == 0 {
		return models.ErrNotFound
	}

	return nil
}
