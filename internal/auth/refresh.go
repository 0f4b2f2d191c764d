package auth

import (
	"context"
	"errors"
	"log"

	"github.com/iliyamo/identity-service/internal/model"
	"github.com/iliyamo/identity-service/internal/repository"
	"github.com/iliyamo/identity-service/internal/token"
)

// Refresh exchanges a refresh token for a new access/refresh pair and
// rotates the persisted value. Three distinct rejections exist:
//
//   - ErrInvalidToken: the token fails signature, structure or expiry
//     checks, or is not a refresh token at all.
//   - ErrNoActiveAccount: the subject cannot be loaded or is ineligible.
//   - ErrTokenStale: the token verifies but does not equal the persisted
//     value — it has been rotated out or superseded by a newer login.
//
// The compare against the stored token and the write of its replacement
// happen inside one store transaction, so two refreshes racing on the
// same stale token cannot both succeed.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (token.Pair, model.Identity, error) {
	sub, kind, err := s.Session.Decode(refreshToken)
	if err != nil {
		log.Printf("auth: refresh token rejected by codec: %v", err)
		return token.Pair{}, model.Identity{}, ErrInvalidToken
	}
	if kind != token.KindRefresh {
		log.Printf("auth: refresh presented a %s token", kind)
		return token.Pair{}, model.Identity{}, ErrInvalidToken
	}

	ident, err := s.Store.FindByID(ctx, sub)
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			log.Printf("auth: refresh lookup for %s failed: %v", sub, err)
		}
		return token.Pair{}, model.Identity{}, ErrNoActiveAccount
	}
	if !ident.IsActive || !ident.IsEmailVerified || ident.IsHidden || ident.IsSuperuser {
		return token.Pair{}, model.Identity{}, ErrNoActiveAccount
	}

	pair, err := token.NewPair(s.Session, ident.ID, s.AccessTTL, s.RefreshTTL)
	if err != nil {
		log.Printf("auth: minting pair for %s failed: %v", ident.ID, err)
		return token.Pair{}, model.Identity{}, ErrInvalidToken
	}

	if err := s.Store.RotateRefreshToken(ctx, ident.ID, refreshToken, pair.Refresh); err != nil {
		if errors.Is(err, repository.ErrTokenMismatch) {
			log.Printf("auth: stale refresh token replayed for %s", ident.ID)
			return token.Pair{}, model.Identity{}, ErrTokenStale
		}
		log.Printf("auth: rotating refresh token for %s failed: %v", ident.ID, err)
		return token.Pair{}, model.Identity{}, ErrTokenStale
	}

	return pair, ident, nil
}
