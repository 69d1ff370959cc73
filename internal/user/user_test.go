package user

import (
	"strings"
	"testing"
)

func TestGenerateSessionToken(t *testing.T) {
	a := GenerateSessionToken()
	b := GenerateSessionToken()

	if len(a) != 64 {
		t.Errorf("token length = %d, want 64 hex chars", len(a))
	}
	if a == b {
		t.Error("two tokens came out identical")
	}
}

func TestNewGuestID(t *testing.T) {
	a := NewGuestID()
	b := NewGuestID()

	if !strings.HasPrefix(a, "guest-") {
		t.Errorf("guest id %q missing guest- prefix", a)
	}
	if a == b {
		t.Error("two guest ids came out identical")
	}
}
