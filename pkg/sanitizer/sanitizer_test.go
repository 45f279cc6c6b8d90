package sanitizer

import "testing"

func TestTrimAndNormalize(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"empty", "", ""},
		{"whitespace only", "   \t\n  ", ""},
		{"already clean", "John Smith", "John Smith"},
		{"leading and trailing", "  John Smith  ", "John Smith"},
		{"internal runs collapse", "John \t\t Smith", "John Smith"},
		{"control characters dropped", "John\x00Smith", "JohnSmith"},
		{"tabs and newlines become spaces", "a\tb\nc", "a b c"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := TrimAndNormalize(tt.input); got != tt.expected {
				t.Errorf("expected %q, got %q", tt.expected, got)
			}
		})
	}
}

func TestNormalizeEmail(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"  Alice@Example.COM ", "alice@example.com"},
		{"bob@example.com", "bob@example.com"},
		{"", ""},
	}

	for _, tt := range tests {
		if got := NormalizeEmail(tt.input); got != tt.expected {
			t.Errorf("NormalizeEmail(%q): expected %q, got %q", tt.input, tt.expected, got)
		}
	}
}

func TestNormalizePhone(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"+1 (555) 123-4567", "+15551234567"},
		{"  +972 50 123 4567 ", "+972501234567"},
		{"no digits", ""},
	}

	for _, tt := range tests {
		if got := NormalizePhone(tt.input); got != tt.expected {
			t.Errorf("NormalizePhone(%q): expected %q, got %q", tt.input, tt.expected, got)
		}
	}
}

func TestNormalizeNotes_KeepsNewlines(t *testing.T) {
	input := "line one\nline two\x00end"
	expected := "line one\nline twoend"

	if got := NormalizeNotes(input); got != expected {
		t.Errorf("expected control characters stripped and newlines kept, got %q", got)
	}
}
