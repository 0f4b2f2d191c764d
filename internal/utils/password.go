// Package utils provides the bcrypt helpers used by the auth core.
package utils

import "golang.org/x/crypto/bcrypt"

// HashPassword returns a bcrypt hash of the plain password at the given
// cost. The cost is configuration (BCRYPT_COST) so test suites can run
// with a cheap cost while production stays slow.
func HashPassword(plain string, cost int) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(plain), cost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// VerifyPassword compares a bcrypt hash and a plain password in constant
// time. It reports only match or no-match; the error detail is never
// needed by callers.
func VerifyPassword(hash, plain string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}
