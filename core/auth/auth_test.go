package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func TestHashPassword(t *testing.T) {
	hash, err := HashPassword("hunter2")
	if err != nil {
		t.Fatalf("HashPassword() error = %v", err)
	}
	if hash == "hunter2" {
		t.Fatal("HashPassword() returned the plain password")
	}

	tests := []struct {
		name     string
		password string
		hash     string
		want     bool
	}{
		{"matching password", "hunter2", hash, true},
		{"wrong password", "hunter3", hash, false},
		{"empty hash", "hunter2", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CheckPasswordHash(tt.password, tt.hash); got != tt.want {
				t.Errorf("CheckPasswordHash() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestTokenRoundTrip(t *testing.T) {
	m := NewTokenManager("secret", 24*time.Hour)

	token, err := m.GenerateToken(42)
	if err != nil {
		t.Fatalf("GenerateToken() error = %v", err)
	}
	userID, err := m.ParseToken(token)
	if err != nil {
		t.Fatalf("ParseToken() error = %v", err)
	}
	if userID != 42 {
		t.Errorf("ParseToken() = %d, want 42", userID)
	}
}

func TestParseTokenRejects(t *testing.T) {
	issued := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	m := NewTokenManager("secret", 24*time.Hour)
	m.now = func() time.Time { return issued }

	good, err := m.GenerateToken(7)
	if err != nil {
		t.Fatalf("GenerateToken() error = %v", err)
	}

	t.Run("expired", func(t *testing.T) {
		later := NewTokenManager("secret", 24*time.Hour)
		later.now = func() time.Time { return issued.Add(25 * time.Hour) }
		if _, err := later.ParseToken(good); !errors.Is(err, ErrInvalidToken) {
			t.Errorf("ParseToken() error = %v, want ErrInvalidToken", err)
		}
	})

	t.Run("still valid just before expiry", func(t *testing.T) {
		later := NewTokenManager("secret", 24*time.Hour)
		later.now = func() time.Time { return issued.Add(23 * time.Hour) }
		if _, err := later.ParseToken(good); err != nil {
			t.Errorf("ParseToken() error = %v", err)
		}
	})

	t.Run("wrong secret", func(t *testing.T) {
		other := NewTokenManager("other", 24*time.Hour)
		other.now = m.now
		if _, err := other.ParseToken(good); !errors.Is(err, ErrInvalidToken) {
			t.Errorf("ParseToken() error = %v, want ErrInvalidToken", err)
		}
	})

	t.Run("garbage", func(t *testing.T) {
		if _, err := m.ParseToken("not.a.token"); !errors.Is(err, ErrInvalidToken) {
			t.Errorf("ParseToken() error = %v, want ErrInvalidToken", err)
		}
	})

	t.Run("non numeric subject", func(t *testing.T) {
		claims := Claims{RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "alice",
			ExpiresAt: jwt.NewNumericDate(issued.Add(time.Hour)),
		}}
		signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("secret"))
		if err != nil {
			t.Fatalf("SignedString() error = %v", err)
		}
		if _, err := m.ParseToken(signed); !errors.Is(err, ErrInvalidToken) {
			t.Errorf("ParseToken() error = %v, want ErrInvalidToken", err)
		}
	})

	t.Run("no expiry", func(t *testing.T) {
		claims := Claims{RegisteredClaims: jwt.RegisteredClaims{Subject: "7"}}
		signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("secret"))
		if err != nil {
			t.Fatalf("SignedString() error = %v", err)
		}
		if _, err := m.ParseToken(signed); !errors.Is(err, ErrInvalidToken) {
			t.Errorf("ParseToken() error = %v, want ErrInvalidToken", err)
		}
	})
}

func TestValidIssuer(t *testing.T) {
	for _, iss := range []string{"accounts.google.com", "https://accounts.google.com"} {
		if !validIssuer(iss) {
			t.Errorf("validIssuer(%q) = false", iss)
		}
	}
	if validIssuer("https://evil.example.com") {
		t.Error("validIssuer accepted a foreign issuer")
	}
}
