package auth

import (
	"context"
	"log"

	"github.com/iliyamo/identity-service/internal/model"
	"github.com/iliyamo/identity-service/internal/token"
)

// Authenticate is the stateless per-request gate. It verifies a bearer
// access token and resolves its subject. The two failure kinds are kept
// apart even though both surface as 401: ErrInvalidToken means the token
// itself failed (signature, structure, expiry, wrong class) and the
// client should log in again; ErrInvalidUser means the token verified but
// its subject is missing or unusable.
//
// This path runs on every authenticated request and performs no writes.
func (s *Service) Authenticate(ctx context.Context, accessToken string) (model.Identity, error) {
	sub, kind, err := s.Session.Decode(accessToken)
	if err != nil {
		log.Printf("auth: access token rejected by codec: %v", err)
		return model.Identity{}, ErrInvalidToken
	}
	if kind != token.KindAccess {
		log.Printf("auth: authenticate presented a %s token", kind)
		return model.Identity{}, ErrInvalidToken
	}

	ident, err := s.Store.FindByID(ctx, sub)
	if err != nil {
		log.Printf("auth: resolving subject %s failed: %v", sub, err)
		return model.Identity{}, ErrInvalidUser
	}
	if !ident.IsActive {
		return model.Identity{}, ErrInvalidUser
	}
	return ident, nil
}
