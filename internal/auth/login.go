package auth

import (
	"context"
	"errors"
	"log"
	"strings"

	"github.com/iliyamo/identity-service/internal/model"
	"github.com/iliyamo/identity-service/internal/repository"
	"github.com/iliyamo/identity-service/internal/token"
	"github.com/iliyamo/identity-service/internal/utils"
)

// Login authenticates credentials and issues an access/refresh pair.
// The login identifier may be an email address or a username; both are
// unique so at most one identity can match. Every failure — unknown
// account, wrong password, ineligible account — collapses into
// ErrNoActiveAccount so the response never reveals which check failed.
//
// Persisting the new refresh token silently invalidates any session
// previously issued to this identity: refresh validation compares against
// this single stored value.
func (s *Service) Login(ctx context.Context, emailOrUsername, password string) (token.Pair, model.Identity, error) {
	handle := strings.ToLower(strings.TrimSpace(emailOrUsername))
	if handle == "" || password == "" {
		return token.Pair{}, model.Identity{}, Validationf("Email and password are required.")
	}

	ident, err := s.Store.FindByEmailOrUsername(ctx, handle)
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			log.Printf("auth: login lookup for %q failed: %v", handle, err)
		}
		return token.Pair{}, model.Identity{}, ErrNoActiveAccount
	}

	if !utils.VerifyPassword(ident.PasswordHash, password) {
		return token.Pair{}, model.Identity{}, ErrNoActiveAccount
	}

	if !s.eligible(ctx, ident) {
		return token.Pair{}, model.Identity{}, ErrNoActiveAccount
	}

	pair, err := token.NewPair(s.Session, ident.ID, s.AccessTTL, s.RefreshTTL)
	if err != nil {
		log.Printf("auth: minting pair for %s failed: %v", ident.ID, err)
		return token.Pair{}, model.Identity{}, ErrNoActiveAccount
	}

	if err := s.Store.SaveRefreshToken(ctx, ident.ID, pair.Refresh); err != nil {
		log.Printf("auth: persisting refresh token for %s failed: %v", ident.ID, err)
		return token.Pair{}, model.Identity{}, ErrNoActiveAccount
	}

	return pair, ident, nil
}

// eligible applies the account gate shared by login: the identity must be
// active, email-verified and not hidden, and a non-admin role must have a
// visible profile record. Lookup errors fail closed and are logged.
func (s *Service) eligible(ctx context.Context, ident model.Identity) bool {
	if !ident.IsActive || !ident.IsEmailVerified || ident.IsHidden {
		return false
	}
	if ident.Role == "" || ident.Role == s.AdminRole {
		return true
	}
	ok, err := s.Profiles.HasVisibleProfile(ctx, ident.Role, ident.ID)
	if err != nil {
		log.Printf("auth: profile lookup for %s (role %s) failed: %v", ident.ID, ident.Role, err)
		return false
	}
	return ok
}
