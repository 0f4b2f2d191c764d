// Package repository defines error values that are shared between the
// MySQL store implementations and the auth core. These sentinels let the
// core distinguish failure scenarios without inspecting driver errors.
// ErrNotFound covers every "no such row" case, while ErrTokenMismatch is
// returned by the compare-and-write operations when the presented token
// does not equal the persisted one (a rotated-out refresh token or a
// superseded reset link being replayed).
package repository

import "errors"

// ErrNotFound is returned when a lookup matches no identity row.
var ErrNotFound = errors.New("not found")

// ErrTokenMismatch is returned by RotateRefreshToken and ConsumeResetToken
// when the presented token fails the byte-for-byte comparison against the
// persisted column inside the transaction.
var ErrTokenMismatch = errors.New("token mismatch")
