package auth

import (
	"context"
	"errors"
	"testing"
)

func TestLoginIssuesPairAndPersistsRefresh(t *testing.T) {
	env := newTestEnv()
	env.seedIdentity(t, "u1", "a@x.com", "alice", "s3cret", "")

	pair, ident, err := env.svc.Login(context.Background(), "a@x.com", "s3cret")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if ident.ID != "u1" {
		t.Errorf("identity = %s, want u1", ident.ID)
	}

	stored := env.store.get("u1")
	if !stored.RefreshToken.Valid || stored.RefreshToken.String != pair.Refresh {
		t.Errorf("persisted refresh token does not equal the returned one")
	}
}

func TestLoginByUsername(t *testing.T) {
	env := newTestEnv()
	env.seedIdentity(t, "u1", "a@x.com", "alice", "s3cret", "")

	if _, _, err := env.svc.Login(context.Background(), "Alice", "s3cret"); err != nil {
		t.Fatalf("login by username: %v", err)
	}
	// Email lookup is case-insensitive too.
	if _, _, err := env.svc.Login(context.Background(), "A@X.COM", "s3cret"); err != nil {
		t.Fatalf("login by uppercased email: %v", err)
	}
}

func TestLoginRejections(t *testing.T) {
	tests := []struct {
		name  string
		setup func(*testEnv)
		user  string
		pass  string
	}{
		{
			name:  "unknown account",
			setup: func(e *testEnv) {},
			user:  "nobody@x.com", pass: "whatever",
		},
		{
			name: "wrong password",
			setup: func(e *testEnv) {
				e.seedIdentity(t, "u1", "a@x.com", "", "s3cret", "")
			},
			user: "a@x.com", pass: "wrong",
		},
		{
			name: "inactive",
			setup: func(e *testEnv) {
				ident := e.seedIdentity(t, "u1", "a@x.com", "", "s3cret", "")
				ident.IsActive = false
				e.store.add(ident)
			},
			user: "a@x.com", pass: "s3cret",
		},
		{
			name: "unverified email",
			setup: func(e *testEnv) {
				ident := e.seedIdentity(t, "u1", "a@x.com", "", "s3cret", "")
				ident.IsEmailVerified = false
				e.store.add(ident)
			},
			user: "a@x.com", pass: "s3cret",
		},
		{
			name: "hidden",
			setup: func(e *testEnv) {
				ident := e.seedIdentity(t, "u1", "a@x.com", "", "s3cret", "")
				ident.IsHidden = true
				e.store.add(ident)
			},
			user: "a@x.com", pass: "s3cret",
		},
		{
			name: "role without visible profile",
			setup: func(e *testEnv) {
				e.seedIdentity(t, "u1", "a@x.com", "", "s3cret", "doctor")
			},
			user: "a@x.com", pass: "s3cret",
		},
		{
			name: "profile lookup failure fails closed",
			setup: func(e *testEnv) {
				e.seedIdentity(t, "u1", "a@x.com", "", "s3cret", "doctor")
				e.profiles.err = errors.New("profile table unreachable")
			},
			user: "a@x.com", pass: "s3cret",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv()
			tt.setup(env)
			_, _, err := env.svc.Login(context.Background(), tt.user, tt.pass)
			if !errors.Is(err, ErrNoActiveAccount) {
				t.Errorf("login error = %v, want ErrNoActiveAccount", err)
			}
		})
	}
}

func TestLoginRoleEligibility(t *testing.T) {
	env := newTestEnv()
	env.seedIdentity(t, "u1", "doc@x.com", "", "s3cret", "doctor")
	env.profiles.visible["doctor/u1"] = true

	if _, _, err := env.svc.Login(context.Background(), "doc@x.com", "s3cret"); err != nil {
		t.Fatalf("login with visible profile: %v", err)
	}

	// The admin role never consults the profile lookup.
	env.seedIdentity(t, "u2", "admin@x.com", "", "s3cret", "admin")
	if _, _, err := env.svc.Login(context.Background(), "admin@x.com", "s3cret"); err != nil {
		t.Fatalf("admin login: %v", err)
	}
}

func TestSecondLoginInvalidatesFirstSession(t *testing.T) {
	env := newTestEnv()
	env.seedIdentity(t, "u1", "a@x.com", "", "s3cret", "")

	first, _, err := env.svc.Login(context.Background(), "a@x.com", "s3cret")
	if err != nil {
		t.Fatalf("first login: %v", err)
	}
	if _, _, err := env.svc.Login(context.Background(), "a@x.com", "s3cret"); err != nil {
		t.Fatalf("second login: %v", err)
	}

	_, _, err = env.svc.Refresh(context.Background(), first.Refresh)
	if !errors.Is(err, ErrTokenStale) {
		t.Errorf("refresh with superseded token = %v, want ErrTokenStale", err)
	}
}
