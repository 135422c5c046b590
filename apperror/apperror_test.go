package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestStatusCode(t *testing.T) {
	tests := []struct {
		kind Kind
		want int
	}{
		{BadRequest, http.StatusBadRequest},
		{Conflict, http.StatusBadRequest},
		{Unauthorized, http.StatusUnauthorized},
		{Forbidden, http.StatusForbidden},
		{NotFound, http.StatusNotFound},
		{UploadError, http.StatusInternalServerError},
		{Internal, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.kind.String(), func(t *testing.T) {
			err := New(tt.kind, "msg", nil)
			if got := err.StatusCode(); got != tt.want {
				t.Errorf("StatusCode() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestFrom(t *testing.T) {
	t.Run("wrapped app error is found", func(t *testing.T) {
		inner := NewNotFound("Beat not found")
		wrapped := fmt.Errorf("loading beat: %w", inner)

		got := From(wrapped)
		if got != inner {
			t.Fatalf("From() = %v, want the wrapped AppError", got)
		}
		if !Is(wrapped, NotFound) {
			t.Error("Is(wrapped, NotFound) = false, want true")
		}
	})

	t.Run("foreign error becomes internal", func(t *testing.T) {
		cause := errors.New("connection reset")
		got := From(cause)
		if got.Kind != Internal {
			t.Errorf("Kind = %v, want %v", got.Kind, Internal)
		}
		if !errors.Is(got, cause) {
			t.Error("internal error does not unwrap to the cause")
		}
		if got.ToResponse().Error != "Internal server error" {
			t.Errorf("response leaks cause: %q", got.ToResponse().Error)
		}
	})

	t.Run("nil stays nil", func(t *testing.T) {
		if From(nil) != nil {
			t.Error("From(nil) != nil")
		}
	})
}
