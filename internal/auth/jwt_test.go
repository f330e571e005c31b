package auth

import (
	"errors"
	"testing"

	"github.com/google/uuid"
)

func TestJWTRoundTrip(t *testing.T) {
	s := NewJWTService("secret", 1)
	userID := uuid.New()
	token, err := s.Generate(userID, "creator@example.com")
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	gotID, email, err := s.ValidateSubject(token)
	if err != nil {
		t.Fatalf("ValidateSubject: %v", err)
	}
	if gotID != userID || email != "creator@example.com" {
		t.Errorf("subject = %v %q, want %v creator@example.com", gotID, email, userID)
	}
}

func TestJWTRejects(t *testing.T) {
	s := NewJWTService("secret", 1)
	other := NewJWTService("other-secret", 1)
	expired := NewJWTService("secret", -1)

	foreign, _ := other.Generate(uuid.New(), "a@example.com")
	stale, _ := expired.Generate(uuid.New(), "a@example.com")
	nilSubject, _ := s.Generate(uuid.Nil, "a@example.com")

	tests := map[string]string{
		"garbage":      "not-a-token",
		"wrong secret": foreign,
		"expired":      stale,
		"nil subject":  nilSubject,
	}
	for name, token := range tests {
		t.Run(name, func(t *testing.T) {
			if _, err := s.Validate(token); !errors.Is(err, ErrInvalidToken) {
				t.Errorf("Validate err = %v, want ErrInvalidToken", err)
			}
		})
	}
}
