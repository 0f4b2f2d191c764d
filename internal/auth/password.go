package auth

import (
	"context"
	"log"

	"github.com/iliyamo/identity-service/internal/utils"
)

// ChangePassword replaces the password of an authenticated identity after
// verifying the old one. Unlike the recovery flow it requires possession
// of the current password, not a reset token.
func (s *Service) ChangePassword(ctx context.Context, identityID, oldPassword, newPassword string) error {
	if oldPassword == "" || newPassword == "" {
		return Validationf("Old and new password are required.")
	}

	ident, err := s.Store.FindByID(ctx, identityID)
	if err != nil {
		log.Printf("auth: change password lookup for %s failed: %v", identityID, err)
		return ErrInvalidUser
	}

	if !utils.VerifyPassword(ident.PasswordHash, oldPassword) {
		return Validationf("Invalid Password.")
	}

	hash, err := utils.HashPassword(newPassword, s.BcryptCost)
	if err != nil {
		log.Printf("auth: hashing new password for %s failed: %v", identityID, err)
		return ErrInvalidUser
	}
	if err := s.Store.UpdatePassword(ctx, identityID, hash); err != nil {
		log.Printf("auth: updating password for %s failed: %v", identityID, err)
		return ErrInvalidUser
	}
	return nil
}
