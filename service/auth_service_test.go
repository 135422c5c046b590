package service

import (
	"context"
	"sync"
	"testing"

	"Spitbox/apperror"
	"Spitbox/cache"
	"Spitbox/core/auth"
	"Spitbox/model"
)

func TestRegister(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	res, err := env.auth.Register(ctx, RegisterInput{Username: "alice", Email: "alice@example.com", Password: "pw"})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if res.User.Username != "alice" || res.User.Email != "alice@example.com" || res.User.ID == 0 {
		t.Errorf("user = %+v", res.User)
	}
	userID, err := env.tokens.ParseToken(res.Token)
	if err != nil || userID != res.User.ID {
		t.Errorf("token subject = %d, %v; want %d", userID, err, res.User.ID)
	}

	tests := []struct {
		name string
		in   RegisterInput
		kind apperror.Kind
	}{
		{"missing username", RegisterInput{Email: "x@example.com", Password: "pw"}, apperror.BadRequest},
		{"missing email", RegisterInput{Username: "x", Password: "pw"}, apperror.BadRequest},
		{"missing password", RegisterInput{Username: "x", Email: "x@example.com"}, apperror.BadRequest},
		{"taken username", RegisterInput{Username: "alice", Email: "other@example.com", Password: "pw"}, apperror.Conflict},
		{"taken email", RegisterInput{Username: "other", Email: "alice@example.com", Password: "pw"}, apperror.Conflict},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.auth.Register(ctx, tt.in)
			assertKind(t, err, tt.kind)
		})
	}

	users, err := env.store.Users.List(ctx)
	if err != nil || len(users) != 1 {
		t.Errorf("users = %d, %v; want 1", len(users), err)
	}
}

func TestLogin(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	id := env.register(t, "bob")

	res, err := env.auth.Login(ctx, "bob@example.com", "secret-bob")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if res.User.ID != id {
		t.Errorf("logged in as %d, want %d", res.User.ID, id)
	}

	_, err = env.auth.Login(ctx, "bob@example.com", "wrong")
	assertKind(t, err, apperror.Unauthorized)

	_, err = env.auth.Login(ctx, "nobody@example.com", "secret-bob")
	assertKind(t, err, apperror.Unauthorized)

	_, err = env.auth.Login(ctx, "", "x")
	assertKind(t, err, apperror.BadRequest)

	// accounts created through Google have no password
	if err := env.store.Users.Create(ctx, &model.User{Username: "g", Email: "g@example.com"}); err != nil {
		t.Fatal(err)
	}
	_, err = env.auth.Login(ctx, "g@example.com", "")
	assertKind(t, err, apperror.BadRequest)
	_, err = env.auth.Login(ctx, "g@example.com", "anything")
	assertKind(t, err, apperror.Unauthorized)
}

func TestGoogleAuthCreatesAndReusesAccount(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.google.identities["cred-1"] = &auth.GoogleIdentity{Email: "carol@gmail.com", Picture: "https://img/1.png"}

	first, err := env.auth.GoogleAuth(ctx, "cred-1")
	if err != nil {
		t.Fatalf("GoogleAuth: %v", err)
	}
	if first.User.Username != "carol" {
		t.Errorf("username = %q, want carol", first.User.Username)
	}
	if first.User.ProfilePhoto == nil || *first.User.ProfilePhoto != "https://img/1.png" {
		t.Errorf("profile photo = %v", first.User.ProfilePhoto)
	}

	env.google.identities["cred-1"].Picture = "https://img/2.png"
	second, err := env.auth.GoogleAuth(ctx, "cred-1")
	if err != nil {
		t.Fatalf("GoogleAuth again: %v", err)
	}
	if second.User.ID != first.User.ID {
		t.Errorf("second sign-in created user %d, want %d", second.User.ID, first.User.ID)
	}
	stored, _ := env.store.Users.GetByID(ctx, first.User.ID)
	if stored.ProfilePhoto == nil || *stored.ProfilePhoto != "https://img/2.png" {
		t.Errorf("photo not refreshed: %v", stored.ProfilePhoto)
	}
	if stored.HasPassword() {
		t.Error("Google account must not have a password")
	}
}

func TestGoogleAuthUsernameCollisions(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.register(t, "dave")
	env.register(t, "dave1")
	env.google.identities["cred"] = &auth.GoogleIdentity{Email: "dave@gmail.com"}

	res, err := env.auth.GoogleAuth(ctx, "cred")
	if err != nil {
		t.Fatalf("GoogleAuth: %v", err)
	}
	if res.User.Username != "dave2" {
		t.Errorf("username = %q, want dave2", res.User.Username)
	}
	if res.User.ProfilePhoto != nil {
		t.Errorf("profile photo = %v, want nil", *res.User.ProfilePhoto)
	}
}

func TestGoogleAuthConcurrentSameEmail(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.google.identities["cred"] = &auth.GoogleIdentity{Email: "erin@gmail.com"}

	const n = 8
	ids := make([]int64, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			res, err := env.auth.GoogleAuth(ctx, "cred")
			if err != nil {
				t.Errorf("GoogleAuth: %v", err)
				return
			}
			ids[i] = res.User.ID
		}(i)
	}
	wg.Wait()

	for _, id := range ids[1:] {
		if id != ids[0] {
			t.Fatalf("concurrent sign-ins returned different users: %v", ids)
		}
	}
	users, _ := env.store.Users.List(ctx)
	if len(users) != 1 {
		t.Errorf("users = %d, want 1", len(users))
	}
}

func TestGoogleAuthErrors(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.auth.GoogleAuth(ctx, "")
	assertKind(t, err, apperror.BadRequest)

	_, err = env.auth.GoogleAuth(ctx, "forged")
	assertKind(t, err, apperror.Unauthorized)

	disabled := NewAuthService(env.store, env.tokens, nil, cache.NewLocalLocker())
	_, err = disabled.GoogleAuth(ctx, "cred")
	assertKind(t, err, apperror.Internal)
}

func TestCurrentUser(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	id := env.register(t, "frank")

	profile, err := env.auth.CurrentUser(ctx, id)
	if err != nil {
		t.Fatalf("CurrentUser: %v", err)
	}
	if profile.Username != "frank" || profile.Email != "frank@example.com" || profile.ProfilePhoto != nil {
		t.Errorf("profile = %+v", profile)
	}

	_, err = env.auth.CurrentUser(ctx, id+100)
	assertKind(t, err, apperror.NotFound)
}

func TestAuthenticate(t *testing.T) {
	env := newTestEnv(t)
	token, err := env.tokens.GenerateToken(42)
	if err != nil {
		t.Fatal(err)
	}
	if id, err := env.auth.Authenticate(token); err != nil || id != 42 {
		t.Errorf("Authenticate = %d, %v", id, err)
	}
	_, err = env.auth.Authenticate("not-a-token")
	assertKind(t, err, apperror.Unauthorized)
}

func TestUsernameFromEmail(t *testing.T) {
	tests := []struct{ email, want string }{
		{"grace@example.com", "grace"},
		{"first.last+tag@example.com", "first.lasttag"},
		{"+++@example.com", "user"},
		{"noatsign", "noatsign"},
	}
	for _, tt := range tests {
		if got := UsernameFromEmail(tt.email); got != tt.want {
			t.Errorf("UsernameFromEmail(%q) = %q, want %q", tt.email, got, tt.want)
		}
	}
}
