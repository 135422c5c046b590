package service

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"Spitbox/apperror"
	"Spitbox/cache"
	"Spitbox/core/auth"
	"Spitbox/logger"
	"Spitbox/model"
	"Spitbox/repository"
)

const (
	maxUsernameLength = 80
	// room left for the numeric suffix of a generated username
	maxUsernameBase = 70
	// attempts at creating a Google account when racing another process
	googleCreateAttempts = 3
)

var usernameUnsafe = regexp.MustCompile(`[^a-zA-Z0-9_.\-]`)

// AuthResult is returned by every successful sign-in.
type AuthResult struct {
	Token string         `json:"token"`
	User  model.UserView `json:"user"`
}

// RegisterInput holds the registration form.
type RegisterInput struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthService handles accounts and sign-in.
type AuthService struct {
	store  *repository.Store
	tokens *auth.TokenManager
	google auth.GoogleVerifier
	locker cache.Locker
}

// NewAuthService creates an AuthService. google may be nil when Google
// sign-in is not configured.
func NewAuthService(store *repository.Store, tokens *auth.TokenManager, google auth.GoogleVerifier, locker cache.Locker) *AuthService {
	return &AuthService{store: store, tokens: tokens, google: google, locker: locker}
}

// Register creates a password account and signs it in.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*AuthResult, error) {
	username := strings.TrimSpace(in.Username)
	email := strings.TrimSpace(in.Email)
	if username == "" || email == "" || in.Password == "" {
		return nil, apperror.NewBadRequest("Missing required fields")
	}
	if len(username) > maxUsernameLength {
		return nil, apperror.NewBadRequest("Username is too long")
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return nil, apperror.NewInternal("Failed to register user", err)
	}

	user := &model.User{Username: username, Email: email, PasswordHash: &hash}
	err = s.store.Transaction(ctx, func(tx *repository.Store) error {
		taken, err := tx.Users.ExistsByUsername(ctx, username)
		if err != nil {
			return err
		}
		if taken {
			return apperror.NewConflict("Username already exists")
		}
		taken, err = tx.Users.ExistsByEmail(ctx, email)
		if err != nil {
			return err
		}
		if taken {
			return apperror.NewConflict("Email already exists")
		}
		return tx.Users.Create(ctx, user)
	})
	if err != nil {
		if errors.Is(err, repository.ErrDuplicateUser) {
			return nil, apperror.NewConflict("Username or email already exists")
		}
		return nil, wrapInternal(err, "Failed to register user")
	}

	logger.Info("User registered", logger.Int64("userID", user.ID), logger.String("username", user.Username))
	return s.signIn(user)
}

// Login verifies email and password.
func (s *AuthService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return nil, apperror.NewBadRequest("Missing email or password")
	}

	user, err := s.store.Users.GetByEmail(ctx, email)
	if err != nil {
		return nil, apperror.NewInternal("Failed to log in", err)
	}
	if user == nil || !user.HasPassword() || !auth.CheckPasswordHash(password, *user.PasswordHash) {
		return nil, apperror.NewUnauthorized("Invalid email or password", nil)
	}
	return s.signIn(user)
}

// GoogleAuth signs in with a Google ID token, creating the account on first
// use. Concurrent sign-ins for the same email are serialized by the locker;
// the unique indexes settle races with other processes.
func (s *AuthService) GoogleAuth(ctx context.Context, credential string) (*AuthResult, error) {
	if strings.TrimSpace(credential) == "" {
		return nil, apperror.NewBadRequest("Missing Google credential")
	}
	if s.google == nil {
		return nil, apperror.NewInternal("Google sign-in is not configured", nil)
	}

	identity, err := s.google.Verify(ctx, credential)
	if err != nil {
		return nil, apperror.NewUnauthorized("Invalid Google credential", err)
	}

	unlock, err := s.locker.Lock(ctx, "google:"+strings.ToLower(identity.Email))
	if err != nil {
		return nil, apperror.NewInternal("Failed to sign in with Google", err)
	}
	defer unlock()

	var user *model.User
	for attempt := 0; attempt < googleCreateAttempts; attempt++ {
		user, err = s.findOrCreateGoogleUser(ctx, identity)
		if !errors.Is(err, repository.ErrDuplicateUser) {
			break
		}
		logger.Warn("Google sign-in raced another account creation, retrying",
			logger.String("email", identity.Email), logger.Int("attempt", attempt+1))
	}
	if err != nil {
		return nil, wrapInternal(err, "Failed to sign in with Google")
	}
	return s.signIn(user)
}

func (s *AuthService) findOrCreateGoogleUser(ctx context.Context, identity *auth.GoogleIdentity) (*model.User, error) {
	var user *model.User
	err := s.store.Transaction(ctx, func(tx *repository.Store) error {
		existing, err := tx.Users.GetByEmail(ctx, identity.Email)
		if err != nil {
			return err
		}
		if existing != nil {
			if identity.Picture != "" && (existing.ProfilePhoto == nil || *existing.ProfilePhoto != identity.Picture) {
				if err := tx.Users.UpdateProfilePhoto(ctx, existing.ID, identity.Picture); err != nil {
					return err
				}
				picture := identity.Picture
				existing.ProfilePhoto = &picture
			}
			user = existing
			return nil
		}

		username, err := uniqueUsername(ctx, tx.Users, UsernameFromEmail(identity.Email))
		if err != nil {
			return err
		}
		created := &model.User{Username: username, Email: identity.Email}
		if identity.Picture != "" {
			picture := identity.Picture
			created.ProfilePhoto = &picture
		}
		if err := tx.Users.Create(ctx, created); err != nil {
			return err
		}
		logger.Info("Created user from Google sign-in",
			logger.Int64("userID", created.ID), logger.String("username", created.Username))
		user = created
		return nil
	})
	return user, err
}

// uniqueUsername returns base, or base followed by the smallest positive
// number that is not taken yet.
func uniqueUsername(ctx context.Context, users repository.UserRepository, base string) (string, error) {
	candidate := base
	for i := 1; ; i++ {
		taken, err := users.ExistsByUsername(ctx, candidate)
		if err != nil {
			return "", err
		}
		if !taken {
			return candidate, nil
		}
		candidate = base + strconv.Itoa(i)
	}
}

// UsernameFromEmail derives a username from the local part of an email.
func UsernameFromEmail(email string) string {
	local := email
	if i := strings.Index(email, "@"); i >= 0 {
		local = email[:i]
	}
	local = usernameUnsafe.ReplaceAllString(local, "")
	if len(local) > maxUsernameBase {
		local = local[:maxUsernameBase]
	}
	if local == "" {
		return "user"
	}
	return local
}

// CurrentUser returns the profile of userID.
func (s *AuthService) CurrentUser(ctx context.Context, userID int64) (*model.ProfileView, error) {
	user, err := s.store.Users.GetByID(ctx, userID)
	if err != nil {
		return nil, apperror.NewInternal("Failed to load user", err)
	}
	if user == nil {
		return nil, apperror.NewNotFound("User not found")
	}
	return &model.ProfileView{
		Username:     user.Username,
		Email:        user.Email,
		ProfilePhoto: user.ProfilePhoto,
	}, nil
}

// Authenticate resolves a bearer token to a user id.
func (s *AuthService) Authenticate(token string) (int64, error) {
	userID, err := s.tokens.ParseToken(token)
	if err != nil {
		return 0, apperror.NewUnauthorized("Invalid or expired token", err)
	}
	return userID, nil
}

func (s *AuthService) signIn(user *model.User) (*AuthResult, error) {
	token, err := s.tokens.GenerateToken(user.ID)
	if err != nil {
		return nil, apperror.NewInternal("Failed to issue token", err)
	}
	return &AuthResult{Token: token, User: userView(user)}, nil
}

func userView(u *model.User) model.UserView {
	return model.UserView{
		ID:           u.ID,
		Username:     u.Username,
		Email:        u.Email,
		ProfilePhoto: u.ProfilePhoto,
	}
}

// wrapInternal passes AppErrors through and wraps anything else as Internal.
func wrapInternal(err error, message string) error {
	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return apperror.NewInternal(message, fmt.Errorf("%s: %w", strings.ToLower(message), err))
}
