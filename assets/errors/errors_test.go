package errors

import (
	"errors"
	"strings"
	"testing"
)

func TestAssetError_Error(t *testing.T) {
	tests := []struct {
		name    string
		err     *AssetError
		wantStr string
	}{
		{
			name: "basic error",
			err: &AssetError{
				Code:    "TEST_ERROR",
				Message: "test message",
			},
			wantStr: "[TEST_ERROR] test message",
		},
		{
			name: "error with cause",
			err: &AssetError{
				Code:    "TEST_ERROR",
				Message: "test message",
				Cause:   errors.New("underlying error"),
			},
			wantStr: "[TEST_ERROR] test message: underlying error",
		},
		{
			name: "error with details",
			err: &AssetError{
				Code:    "TEST_ERROR",
				Message: "test message",
				Details: map[string]interface{}{"key": "value"},
			},
			wantStr: "details",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.err.Error()
			if !strings.Contains(got, tt.wantStr) {
				t.Errorf("Error() = %q, want to contain %q", got, tt.wantStr)
			}
		})
	}
}

func TestAssetError_WithCause(t *testing.T) {
	cause := errors.New("root cause")
	err := ErrDownloadFailed.WithCause(cause)

	if err.Cause != cause {
		t.Errorf("WithCause() cause = %v, want %v", err.Cause, cause)
	}

	if !errors.Is(err, cause) {
		t.Error("WithCause() should allow errors.Is to work")
	}
}

func TestAssetError_WithDetail(t *testing.T) {
	err := ErrUnsafePath.WithDetail("entry", "../../evil.txt")

	if err.Details["entry"] != "../../evil.txt" {
		t.Errorf("WithDetail() entry = %v, want ../../evil.txt", err.Details["entry"])
	}

	// The sentinel value stays untouched.
	if len(ErrUnsafePath.Details) != 0 {
		t.Errorf("sentinel Details = %v, want empty", ErrUnsafePath.Details)
	}
}

func TestAssetError_WithMessage(t *testing.T) {
	err := ErrFormat.WithMessage("custom message")

	if err.Message != "custom message" {
		t.Errorf("WithMessage() message = %q, want 'custom message'", err.Message)
	}
	if err.Code != "FORMAT_INVALID" {
		t.Errorf("WithMessage() code = %q, want FORMAT_INVALID", err.Code)
	}
}

func TestGetErrorCode(t *testing.T) {
	if code := GetErrorCode(ErrUnsupportedCompression.WithDetail("method", 14)); code != "UNSUPPORTED_COMPRESSION" {
		t.Errorf("GetErrorCode() = %q, want UNSUPPORTED_COMPRESSION", code)
	}

	if code := GetErrorCode(errors.New("plain error")); code != "" {
		t.Errorf("GetErrorCode() = %q for a plain error, want empty", code)
	}
}

func TestIsAssetError(t *testing.T) {
	if !IsAssetError(ErrEntryNotFound) {
		t.Error("IsAssetError() = false for an AssetError")
	}
	if IsAssetError(errors.New("plain error")) {
		t.Error("IsAssetError() = true for a plain error")
	}
}
