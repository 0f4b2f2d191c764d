// Package auth implements the credential lifecycle: issuing, refreshing
// and validating session token pairs plus the two-phase password recovery
// flow. It owns the security semantics; storage, mail delivery and role
// profile lookups are collaborators injected through interfaces.
package auth

import (
	"context"
	"log"
	"time"

	"github.com/iliyamo/identity-service/internal/model"
	"github.com/iliyamo/identity-service/internal/token"
)

// IdentityStore is the persistence collaborator. Lookups return
// repository.ErrNotFound when no row matches. RotateRefreshToken and
// ConsumeResetToken must perform the compare and the write inside one
// transaction against the identity row and return
// repository.ErrTokenMismatch when the presented value fails the
// comparison.
type IdentityStore interface {
	FindByEmailOrUsername(ctx context.Context, s string) (model.Identity, error)
	FindByID(ctx context.Context, id string) (model.Identity, error)
	FindByEmail(ctx context.Context, email string, mustVerified, mustActive bool) (model.Identity, error)
	SaveRefreshToken(ctx context.Context, id, refreshToken string) error
	RotateRefreshToken(ctx context.Context, id, presented, next string) error
	SaveResetToken(ctx context.Context, id, resetToken string) error
	ConsumeResetToken(ctx context.Context, id, presented, newPasswordHash string) error
	UpdatePassword(ctx context.Context, id, newPasswordHash string) error
}

// RoleProfileLookup resolves whether a non-hidden profile record exists
// for the given role and identity. Which roles carry a profile table is
// configuration supplied by the collaborator, not core logic.
type RoleProfileLookup interface {
	HasVisibleProfile(ctx context.Context, role, identityID string) (bool, error)
}

// Delivery sends a templated mail to the given recipients. Implementations
// are expected to be best-effort; the auth core never waits on them and
// never fails an operation because delivery failed.
type Delivery interface {
	SendTemplated(ctx context.Context, subject string, to []string, template string, vars map[string]string) error
}

// Service wires the collaborators and the two signing domains together.
// Session signs access/refresh pairs; Action signs password reset tokens.
// The two domains are configured with independent secrets.
type Service struct {
	Store    IdentityStore
	Profiles RoleProfileLookup
	Delivery Delivery

	Session token.Domain
	Action  token.Domain

	AccessTTL  time.Duration
	RefreshTTL time.Duration
	ResetTTL   time.Duration

	BcryptCost  int
	AdminRole   string // role exempt from the profile eligibility check
	FrontendURL string // base URL used to build reset links
	MailTimeout time.Duration
}

// NewService returns a Service with the given collaborators and
// production default TTLs, bcrypt cost and admin role.
func NewService(store IdentityStore, profiles RoleProfileLookup, delivery Delivery, session, action token.Domain) *Service {
	return &Service{
		Store:       store,
		Profiles:    profiles,
		Delivery:    delivery,
		Session:     session,
		Action:      action,
		AccessTTL:   5 * time.Minute,
		RefreshTTL:  24 * time.Hour,
		ResetTTL:    7 * 24 * time.Hour,
		BcryptCost:  12,
		AdminRole:   "admin",
		MailTimeout: 10 * time.Second,
	}
}

// dispatchMail hands a mail off to the delivery collaborator on a fresh
// goroutine. The auth decision never waits for or fails on delivery; a
// failure is logged and dropped (at-most-once).
func (s *Service) dispatchMail(subject string, to []string, template string, vars map[string]string) {
	if s.Delivery == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), s.MailTimeout)
		defer cancel()
		if err := s.Delivery.SendTemplated(ctx, subject, to, template, vars); err != nil {
			log.Printf("auth: mail dispatch %q to %v failed: %v", subject, to, err)
		}
	}()
}
