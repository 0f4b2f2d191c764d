package repository

import (
	"context"
	"database/sql"
	"fmt"
)

// ProfileRepo answers whether a role-specific profile record exists for an
// identity. Which roles carry a profile table is configuration: the map
// goes from role name to table name. Roles without an entry (for example
// admin) have no profile requirement and should not be queried here.
type ProfileRepo struct {
	DB     *sql.DB
	Tables map[string]string // role name -> profile table name
}

func NewProfileRepo(db *sql.DB, tables map[string]string) *ProfileRepo {
	return &ProfileRepo{DB: db, Tables: tables}
}

// HasVisibleProfile reports whether a non-hidden profile row exists for
// the identity in the table mapped to the role. An unmapped role is an
// error so callers can fail closed instead of guessing.
func (r *ProfileRepo) HasVisibleProfile(ctx context.Context, role, identityID string) (bool, error) {
	table, ok := r.Tables[role]
	if !ok {
		return false, fmt.Errorf("no profile table configured for role %q", role)
	}
	var exists bool
	err := r.DB.QueryRowContext(ctx,
		fmt.Sprintf("SELECT EXISTS(SELECT 1 FROM `%s` WHERE user_id=? AND is_hidden=0)", table),
		identityID).Scan(&exists)
	if err != nil {
		return false, err
	}
	return exists, nil
}
