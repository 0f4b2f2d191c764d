package auth

import (
	"context"
	"database/sql"
	"strings"
	"sync"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/iliyamo/identity-service/internal/model"
	"github.com/iliyamo/identity-service/internal/repository"
	"github.com/iliyamo/identity-service/internal/token"
	"github.com/iliyamo/identity-service/internal/utils"
)

// fakeStore is an in-memory IdentityStore with the same error contract as
// the MySQL implementation, including the compare-and-write semantics of
// the two token pointer columns.
type fakeStore struct {
	mu         sync.Mutex
	identities map[string]model.Identity
}

func newFakeStore() *fakeStore {
	return &fakeStore{identities: make(map[string]model.Identity)}
}

func (s *fakeStore) add(ident model.Identity) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.identities[ident.ID] = ident
}

func (s *fakeStore) get(id string) model.Identity {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.identities[id]
}

func (s *fakeStore) FindByEmailOrUsername(_ context.Context, handle string) (model.Identity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	handle = strings.ToLower(handle)
	for _, ident := range s.identities {
		if ident.Email == handle || (ident.Username.Valid && ident.Username.String == handle) {
			return ident, nil
		}
	}
	return model.Identity{}, repository.ErrNotFound
}

func (s *fakeStore) FindByID(_ context.Context, id string) (model.Identity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ident, ok := s.identities[id]
	if !ok {
		return model.Identity{}, repository.ErrNotFound
	}
	return ident, nil
}

func (s *fakeStore) FindByEmail(_ context.Context, email string, mustVerified, mustActive bool) (model.Identity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	email = strings.ToLower(email)
	for _, ident := range s.identities {
		if ident.Email != email {
			continue
		}
		if mustVerified && !ident.IsEmailVerified {
			break
		}
		if mustActive && !ident.IsActive {
			break
		}
		return ident, nil
	}
	return model.Identity{}, repository.ErrNotFound
}

func (s *fakeStore) SaveRefreshToken(_ context.Context, id, refreshToken string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	ident, ok := s.identities[id]
	if !ok {
		return repository.ErrNotFound
	}
	ident.RefreshToken = sql.NullString{String: refreshToken, Valid: true}
	s.identities[id] = ident
	return nil
}

func (s *fakeStore) RotateRefreshToken(_ context.Context, id, presented, next string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	ident, ok := s.identities[id]
	if !ok {
		return repository.ErrNotFound
	}
	if !ident.RefreshToken.Valid || ident.RefreshToken.String != presented {
		return repository.ErrTokenMismatch
	}
	ident.RefreshToken = sql.NullString{String: next, Valid: true}
	s.identities[id] = ident
	return nil
}

func (s *fakeStore) SaveResetToken(_ context.Context, id, resetToken string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	ident, ok := s.identities[id]
	if !ok {
		return repository.ErrNotFound
	}
	ident.ResetToken = sql.NullString{String: resetToken, Valid: true}
	s.identities[id] = ident
	return nil
}

func (s *fakeStore) ConsumeResetToken(_ context.Context, id, presented, newPasswordHash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	ident, ok := s.identities[id]
	if !ok {
		return repository.ErrNotFound
	}
	if !ident.ResetToken.Valid || ident.ResetToken.String != presented {
		return repository.ErrTokenMismatch
	}
	ident.PasswordHash = newPasswordHash
	ident.ResetToken = sql.NullString{}
	s.identities[id] = ident
	return nil
}

func (s *fakeStore) UpdatePassword(_ context.Context, id, newPasswordHash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	ident, ok := s.identities[id]
	if !ok {
		return repository.ErrNotFound
	}
	ident.PasswordHash = newPasswordHash
	s.identities[id] = ident
	return nil
}

// fakeProfiles answers profile lookups from a map keyed "role/identityID".
type fakeProfiles struct {
	visible map[string]bool
	err     error
}

func (p *fakeProfiles) HasVisibleProfile(_ context.Context, role, identityID string) (bool, error) {
	if p.err != nil {
		return false, p.err
	}
	return p.visible[role+"/"+identityID], nil
}

// sentMail is one recorded delivery request.
type sentMail struct {
	Subject  string
	To       []string
	Template string
	Vars     map[string]string
}

// fakeDelivery records dispatches on a channel so tests can wait for the
// asynchronous fire-and-forget path.
type fakeDelivery struct {
	sent chan sentMail
}

func newFakeDelivery() *fakeDelivery {
	return &fakeDelivery{sent: make(chan sentMail, 8)}
}

func (d *fakeDelivery) SendTemplated(_ context.Context, subject string, to []string, template string, vars map[string]string) error {
	d.sent <- sentMail{Subject: subject, To: to, Template: template, Vars: vars}
	return nil
}

// wait blocks until a mail is dispatched or the test times out.
func (d *fakeDelivery) wait(t *testing.T) sentMail {
	t.Helper()
	select {
	case m := <-d.sent:
		return m
	case <-time.After(2 * time.Second):
		t.Fatal("no mail dispatched")
		return sentMail{}
	}
}

type testEnv struct {
	svc      *Service
	store    *fakeStore
	profiles *fakeProfiles
	delivery *fakeDelivery
}

func newTestEnv() *testEnv {
	store := newFakeStore()
	profiles := &fakeProfiles{visible: make(map[string]bool)}
	delivery := newFakeDelivery()
	svc := NewService(
		store, profiles, delivery,
		token.NewDomain("session-secret", "identity-service"),
		token.NewDomain("action-secret", "identity-service"),
	)
	svc.BcryptCost = bcrypt.MinCost
	svc.FrontendURL = "https://app.example.com"
	return &testEnv{svc: svc, store: store, profiles: profiles, delivery: delivery}
}

// seedIdentity adds an eligible identity with the given credentials and
// returns it. Callers flip flags on the returned copy and re-add to model
// ineligible accounts.
func (e *testEnv) seedIdentity(t *testing.T, id, email, username, password, role string) model.Identity {
	t.Helper()
	hash, err := utils.HashPassword(password, bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	ident := model.Identity{
		ID:              id,
		Email:           email,
		PasswordHash:    hash,
		Role:            role,
		IsActive:        true,
		IsEmailVerified: true,
	}
	if username != "" {
		ident.Username = sql.NullString{String: username, Valid: true}
	}
	e.store.add(ident)
	return ident
}
