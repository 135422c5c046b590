package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"google.golang.org/api/idtoken"
	"google.golang.org/api/option"
)

// GoogleIssuers are the accepted "iss" values of a Google ID token.
var GoogleIssuers = []string{"accounts.google.com", "https://accounts.google.com"}

// GoogleIdentity is the verified subset of a Google ID token.
type GoogleIdentity struct {
	Subject string
	Email   string
	Name    string
	Picture string
}

// GoogleVerifier verifies a Google sign-in credential.
type GoogleVerifier interface {
	Verify(ctx context.Context, credential string) (*GoogleIdentity, error)
}

type idTokenVerifier struct {
	clientID  string
	validator *idtoken.Validator
}

// NewGoogleVerifier returns a verifier checking signatures against Google's public
// keys, the audience against clientID and the issuer against GoogleIssuers.
func NewGoogleVerifier(ctx context.Context, clientID string) (GoogleVerifier, error) {
	if clientID == "" {
		return nil, errors.New("google client id is not configured")
	}
	validator, err := idtoken.NewValidator(ctx, option.WithHTTPClient(&http.Client{Timeout: 10 * time.Second}))
	if err != nil {
		return nil, fmt.Errorf("failed to create id token validator: %w", err)
	}
	return &idTokenVerifier{clientID: clientID, validator: validator}, nil
}

func (v *idTokenVerifier) Verify(ctx context.Context, credential string) (*GoogleIdentity, error) {
	payload, err := v.validator.Validate(ctx, credential, v.clientID)
	if err != nil {
		return nil, fmt.Errorf("id token validation failed: %w", err)
	}
	if !validIssuer(payload.Issuer) {
		return nil, fmt.Errorf("wrong issuer %q", payload.Issuer)
	}

	identity := &GoogleIdentity{Subject: payload.Subject}
	identity.Email, _ = payload.Claims["email"].(string)
	identity.Name, _ = payload.Claims["name"].(string)
	identity.Picture, _ = payload.Claims["picture"].(string)
	if identity.Email == "" {
		return nil, errors.New("id token carries no email")
	}
	return identity, nil
}

func validIssuer(iss string) bool {
	for _, allowed := range GoogleIssuers {
		if iss == allowed {
			return true
		}
	}
	return false
}
