package service

import (
	"context"
	"testing"

	"Spitbox/apperror"
)

func TestAdminAuthorize(t *testing.T) {
	tests := []struct {
		name     string
		secret   string
		provided string
		ok       bool
	}{
		{"disabled", "", "", false},
		{"disabled with header", "", "anything", false},
		{"wrong", "s3cret", "guess", false},
		{"missing", "s3cret", "", false},
		{"match", "s3cret", "s3cret", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NewAdminService(nil, tt.secret).Authorize(tt.provided)
			if tt.ok {
				if err != nil {
					t.Errorf("Authorize: %v", err)
				}
				return
			}
			assertKind(t, err, apperror.Forbidden)
		})
	}
}

func TestResetDB(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.register(t, "alice")
	beat := env.upload(t, alice, "track")
	if _, err := env.likes.Toggle(ctx, alice, beat.ID); err != nil {
		t.Fatal(err)
	}

	if err := NewAdminService(env.db, "x").ResetDB(ctx); err != nil {
		t.Fatalf("ResetDB: %v", err)
	}

	users, err := env.store.Users.List(ctx)
	if err != nil || len(users) != 0 {
		t.Errorf("users after reset = %d, %v", len(users), err)
	}
	if n, _ := env.store.Beats.Count(ctx); n != 0 {
		t.Errorf("beats after reset = %d", n)
	}
	// schema is usable again
	env.register(t, "alice")
}
