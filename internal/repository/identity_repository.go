package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/iliyamo/identity-service/internal/model"
)

// IdentityRepo reads and writes rows of the `identities` table. It is the
// MySQL implementation of the auth core's IdentityStore. The two token
// pointer columns (refresh_token, reset_token) are only ever written
// whole-value; the compare-and-write operations lock the row so the
// comparison and the update land atomically.
type IdentityRepo struct{ DB *sql.DB }

func NewIdentityRepo(db *sql.DB) *IdentityRepo { return &IdentityRepo{DB: db} }

const identityColumns = "id, email, username, first_name, last_name, password_hash, " +
	"COALESCE(role, ''), is_active, is_email_verified, is_hidden, is_superuser, " +
	"refresh_token, reset_token, created_at, updated_at"

type rowScanner interface{ Scan(dest ...any) error }

func scanIdentity(row rowScanner) (model.Identity, error) {
	var ident model.Identity
	err := row.Scan(
		&ident.ID, &ident.Email, &ident.Username, &ident.FirstName, &ident.LastName,
		&ident.PasswordHash, &ident.Role, &ident.IsActive, &ident.IsEmailVerified,
		&ident.IsHidden, &ident.IsSuperuser, &ident.RefreshToken, &ident.ResetToken,
		&ident.CreatedAt, &ident.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Identity{}, ErrNotFound
	}
	return ident, err
}

// FindByEmailOrUsername fetches the identity whose email or username
// equals the given handle. Both columns are unique and stored lowercased,
// so at most one row can match.
func (r *IdentityRepo) FindByEmailOrUsername(ctx context.Context, handle string) (model.Identity, error) {
	handle = strings.ToLower(strings.TrimSpace(handle))
	row := r.DB.QueryRowContext(ctx,
		"SELECT "+identityColumns+" FROM identities WHERE email=? OR username=? LIMIT 1",
		handle, handle)
	return scanIdentity(row)
}

// FindByID fetches an identity by primary key.
func (r *IdentityRepo) FindByID(ctx context.Context, id string) (model.Identity, error) {
	row := r.DB.QueryRowContext(ctx,
		"SELECT "+identityColumns+" FROM identities WHERE id=? LIMIT 1", id)
	return scanIdentity(row)
}

// FindByEmail fetches an identity by email, optionally requiring the
// verified and active flags directly in the query.
func (r *IdentityRepo) FindByEmail(ctx context.Context, email string, mustVerified, mustActive bool) (model.Identity, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	q := "SELECT " + identityColumns + " FROM identities WHERE email=?"
	if mustVerified {
		q += " AND is_email_verified=1"
	}
	if mustActive {
		q += " AND is_active=1"
	}
	row := r.DB.QueryRowContext(ctx, q+" LIMIT 1", email)
	return scanIdentity(row)
}

// SaveRefreshToken overwrites the refresh token pointer. Any previously
// issued refresh token stops matching from this moment on.
func (r *IdentityRepo) SaveRefreshToken(ctx context.Context, id, refreshToken string) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE identities SET refresh_token=? WHERE id=?", refreshToken, id)
	return err
}

// RotateRefreshToken replaces the stored refresh token with `next`, but
// only if the stored value still equals `presented`. The row is locked
// for the duration so two refresh calls racing on the same stale token
// cannot both succeed; the loser gets ErrTokenMismatch.
func (r *IdentityRepo) RotateRefreshToken(ctx context.Context, id, presented, next string) error {
	return r.compareAndWrite(ctx, id, "refresh_token", presented,
		"UPDATE identities SET refresh_token=? WHERE id=?", next, id)
}

// SaveResetToken overwrites the reset token pointer, invalidating any
// earlier reset link.
func (r *IdentityRepo) SaveResetToken(ctx context.Context, id, resetToken string) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE identities SET reset_token=? WHERE id=?", resetToken, id)
	return err
}

// ConsumeResetToken sets the new password hash and clears the reset token
// pointer, but only if the stored token still equals `presented`. Clearing
// under the row lock is what makes a reset link single-use.
func (r *IdentityRepo) ConsumeResetToken(ctx context.Context, id, presented, newPasswordHash string) error {
	return r.compareAndWrite(ctx, id, "reset_token", presented,
		"UPDATE identities SET password_hash=?, reset_token=NULL WHERE id=?", newPasswordHash, id)
}

// UpdatePassword sets a new password hash without touching the token
// pointers.
func (r *IdentityRepo) UpdatePassword(ctx context.Context, id, newPasswordHash string) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE identities SET password_hash=? WHERE id=?", newPasswordHash, id)
	return err
}

// compareAndWrite runs SELECT ... FOR UPDATE on one token column, compares
// it byte-for-byte against the presented value and, on a match, executes
// the update inside the same transaction.
func (r *IdentityRepo) compareAndWrite(ctx context.Context, id, column, presented, updateQuery string, updateArgs ...any) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	var stored sql.NullString
	err = tx.QueryRowContext(ctx,
		fmt.Sprintf("SELECT %s FROM identities WHERE id=? FOR UPDATE", column),
		id).Scan(&stored)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return err
	}
	if !stored.Valid || stored.String != presented {
		return ErrTokenMismatch
	}

	if _, err := tx.ExecContext(ctx, updateQuery, updateArgs...); err != nil {
		return err
	}
	return tx.Commit()
}
