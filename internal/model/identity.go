package model

import (
	"database/sql"
	"time"
)

// Identity represents a principal as stored in the `identities` table.
// Each field corresponds to a column. Token pointer columns are nullable:
// RefreshToken holds the one refresh token currently accepted for this
// identity (single active session) and ResetToken holds the one password
// reset token currently redeemable. Clearing either column revokes the
// corresponding capability.
//
// Fields:
//  ID              – UUID primary key.
//  Email           – unique, stored lowercased.
//  Username        – unique, optional, stored lowercased.
//  FirstName       – optional display name part.
//  LastName        – optional display name part.
//  PasswordHash    – bcrypt hashed password.
//  Role            – name of the single role group the identity belongs
//                    to (an identity has at most one), empty when none.
//  IsActive        – account enabled flag.
//  IsEmailVerified – email ownership confirmed.
//  IsHidden        – soft-removal flag; hidden identities never log in.
//  IsSuperuser     – back-office accounts; excluded from token refresh.
//  RefreshToken    – currently valid refresh token (nullable).
//  ResetToken      – currently valid password reset token (nullable).
//  CreatedAt       – timestamp of creation.
//  UpdatedAt       – timestamp of last update.
type Identity struct {
	ID              string
	Email           string
	Username        sql.NullString
	FirstName       sql.NullString
	LastName        sql.NullString
	PasswordHash    string
	Role            string
	IsActive        bool
	IsEmailVerified bool
	IsHidden        bool
	IsSuperuser     bool
	RefreshToken    sql.NullString
	ResetToken      sql.NullString
	CreatedAt       time.Time
	UpdatedAt       time.Time
}
