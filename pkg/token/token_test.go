package token

import (
	"strings"
	"testing"
)

func TestNew_Length(t *testing.T) {
	tok, err := New(32)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// 32 bytes base64url-encoded without padding is 43 characters.
	if len(tok) != 43 {
		t.Errorf("expected 43 characters, got %d", len(tok))
	}
}

func TestNew_EnforcesMinimumEntropy(t *testing.T) {
	tok, err := New(1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// 16 bytes encode to 22 characters; anything shorter means the floor
	// was not applied.
	if len(tok) < 22 {
		t.Errorf("expected at least 22 characters, got %d", len(tok))
	}
}

func TestNew_URLSafe(t *testing.T) {
	for i := 0; i < 50; i++ {
		tok, err := New(32)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if strings.ContainsAny(tok, "+/=") {
			t.Errorf("token contains URL-unsafe characters: %s", tok)
		}
	}
}

func TestNew_Unique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 1000; i++ {
		tok, err := New(32)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if seen[tok] {
			t.Fatalf("duplicate token generated after %d iterations", i)
		}
		seen[tok] = true
	}
}
