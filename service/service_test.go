package service

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"Spitbox/apperror"
	"Spitbox/cache"
	"Spitbox/config"
	"Spitbox/core/auth"
	"Spitbox/db"
	"Spitbox/model"
	"Spitbox/repository"
	"Spitbox/storage"

	"gorm.io/gorm"
)

const testBaseURL = "http://test.local/"

type testEnv struct {
	db       *gorm.DB
	store    *repository.Store
	tokens   *auth.TokenManager
	backend  *storage.MemoryBackend
	google   *fakeGoogle
	auth     *AuthService
	beats    *BeatService
	comments *CommentService
	likes    *LikeService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	cfg := config.Default()
	cfg.DBPath = filepath.Join(t.TempDir(), "test.db")

	gdb, err := db.Open(cfg)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { db.Close(gdb) })
	if err := db.Migrate(gdb); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	store := repository.NewStore(gdb)
	tokens := auth.NewTokenManager("test-secret", time.Hour)
	backend := storage.NewMemoryBackend("")
	google := &fakeGoogle{identities: map[string]*auth.GoogleIdentity{}}

	return &testEnv{
		db:       gdb,
		store:    store,
		tokens:   tokens,
		backend:  backend,
		google:   google,
		auth:     NewAuthService(store, tokens, google, cache.NewLocalLocker()),
		beats:    NewBeatService(store, backend),
		comments: NewCommentService(store),
		likes:    NewLikeService(store),
	}
}

// register creates a password account and returns its id.
func (e *testEnv) register(t *testing.T, username string) int64 {
	t.Helper()
	res, err := e.auth.Register(context.Background(), RegisterInput{
		Username: username,
		Email:    username + "@example.com",
		Password: "secret-" + username,
	})
	if err != nil {
		t.Fatalf("register %s: %v", username, err)
	}
	return res.User.ID
}

func (e *testEnv) upload(t *testing.T, userID int64, title string) *model.BeatView {
	t.Helper()
	view, err := e.beats.Create(context.Background(), userID, CreateBeatInput{
		Title: title,
		Audio: &AudioFile{Filename: title + ".wav", Size: 4, Content: strings.NewReader("RIFF")},
	}, testBaseURL)
	if err != nil {
		t.Fatalf("upload %s: %v", title, err)
	}
	return view
}

type fakeGoogle struct {
	identities map[string]*auth.GoogleIdentity
}

func (f *fakeGoogle) Verify(ctx context.Context, credential string) (*auth.GoogleIdentity, error) {
	id, ok := f.identities[credential]
	if !ok {
		return nil, errors.New("signature mismatch")
	}
	copied := *id
	return &copied, nil
}

func assertKind(t *testing.T, err error, kind apperror.Kind) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected %s error, got nil", kind)
	}
	if got := apperror.KindOf(err); got != kind {
		t.Fatalf("error kind = %s, want %s (%v)", got, kind, err)
	}
}

func ptr[T any](v T) *T { return &v }
