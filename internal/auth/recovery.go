package auth

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/iliyamo/identity-service/internal/repository"
	"github.com/iliyamo/identity-service/internal/token"
	"github.com/iliyamo/identity-service/internal/utils"
)

const (
	resetMailTemplate        = "emails/reset_password.html"
	resetSuccessMailTemplate = "emails/reset_password_success.html"
)

// RequestPasswordReset starts the recovery flow for an email address. The
// identity must exist, be email-verified and active; otherwise the caller
// gets a "User not found." validation error. The message reveals whether
// an email is registered; the frontend depends on it.
//
// A reset token over the email is minted in the action signing domain and
// persisted on the identity. Persisting overwrites any earlier reset
// token, so requesting a second reset invalidates the first link. The
// mail carrying the link is dispatched asynchronously and its failure
// never surfaces here.
func (s *Service) RequestPasswordReset(ctx context.Context, email string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return Validationf("Email is required.")
	}

	ident, err := s.Store.FindByEmail(ctx, email, true, true)
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			log.Printf("auth: reset request lookup for %q failed: %v", email, err)
		}
		return Validationf("User not found.")
	}

	resetToken, _, err := s.Action.Encode(ident.Email, token.KindReset, s.ResetTTL)
	if err != nil {
		log.Printf("auth: minting reset token for %s failed: %v", ident.ID, err)
		return Validationf("User not found.")
	}

	if err := s.Store.SaveResetToken(ctx, ident.ID, resetToken); err != nil {
		log.Printf("auth: persisting reset token for %s failed: %v", ident.ID, err)
		return Validationf("User not found.")
	}

	days := int(s.ResetTTL.Hours() / 24)
	s.dispatchMail("Reset Password", []string{ident.Email}, resetMailTemplate, map[string]string{
		"link":     fmt.Sprintf("%s/auth/reset-password?token=%s", s.FrontendURL, resetToken),
		"lifetime": fmt.Sprintf("%d days", days),
	})
	return nil
}

// ResetPassword redeems a reset token and sets a new password. All
// failures collapse into one user-facing validation message, but each
// underlying cause — undecodable token, unknown or ineligible account,
// superseded token, unchanged password — is logged distinctly.
//
// The presented token must equal the persisted value exactly; the compare
// and the clear happen in one store transaction, which is what makes the
// token single-use.
func (s *Service) ResetPassword(ctx context.Context, resetToken, newPassword string) error {
	staleErr := Validationf("Token is invalid or expired.")

	if resetToken == "" || newPassword == "" {
		return Validationf("Token and new password are required.")
	}

	email, kind, err := s.Action.Decode(resetToken)
	if err != nil || kind != token.KindReset {
		log.Printf("auth: reset token rejected by codec: %v (kind %s)", err, kind)
		return staleErr
	}

	ident, err := s.Store.FindByEmail(ctx, email, true, true)
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			log.Printf("auth: reset redemption lookup for %q failed: %v", email, err)
		} else {
			log.Printf("auth: reset token names unknown or ineligible account %q", email)
		}
		return staleErr
	}

	if utils.VerifyPassword(ident.PasswordHash, newPassword) {
		log.Printf("auth: reset for %s rejected, password unchanged", ident.ID)
		return Validationf("Please use another password.")
	}

	hash, err := utils.HashPassword(newPassword, s.BcryptCost)
	if err != nil {
		log.Printf("auth: hashing new password for %s failed: %v", ident.ID, err)
		return staleErr
	}

	if err := s.Store.ConsumeResetToken(ctx, ident.ID, resetToken, hash); err != nil {
		if errors.Is(err, repository.ErrTokenMismatch) {
			log.Printf("auth: superseded reset token replayed for %s", ident.ID)
		} else {
			log.Printf("auth: consuming reset token for %s failed: %v", ident.ID, err)
		}
		return staleErr
	}

	s.dispatchMail("Reset Password Successfully", []string{ident.Email}, resetSuccessMailTemplate, map[string]string{})
	return nil
}
