package http

import (
	"net/http/httptest"
	"testing"

	apperrors "slotbook/pkg/errors"
)

func TestExtractLimitOffset(t *testing.T) {
	tests := []struct {
		name       string
		target     string
		wantLimit  int
		wantOffset int64
		wantErr    bool
	}{
		{"defaults when absent", "/api/v1/requests", 10, 0, false},
		{"explicit values", "/api/v1/requests?limit=25&offset=50", 25, 50, false},
		{"limit clamped to maximum", "/api/v1/requests?limit=5000", 100, 0, false},
		{"negative offset floored", "/api/v1/requests?offset=-3", 10, 0, false},
		{"non-numeric limit", "/api/v1/requests?limit=abc", 0, 0, true},
		{"non-numeric offset", "/api/v1/requests?offset=abc", 0, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest("GET", tt.target, nil)
			limit, offset, err := ExtractLimitOffset(r)

			if tt.wantErr {
				appErr, ok := err.(*apperrors.AppError)
				if !ok || appErr.Code != apperrors.CodeInvalidInput {
					t.Fatalf("expected %s, got %v", apperrors.CodeInvalidInput, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if limit != tt.wantLimit || offset != tt.wantOffset {
				t.Errorf("got limit=%d offset=%d, want limit=%d offset=%d",
					limit, offset, tt.wantLimit, tt.wantOffset)
			}
		})
	}
}
