package errors

import (
	"errors"
	"fmt"
	"testing"
)

func TestWrap(t *testing.T) {
	originalErr := errors.New("original error")
	wrappedErr := Wrap(originalErr, "context")

	if wrappedErr == nil {
		t.Fatal("Wrap() returned nil for non-nil error")
	}
	if !errors.Is(wrappedErr, originalErr) {
		t.Errorf("Wrap() did not preserve original error for error checking")
	}

	expectedMsg := "context: original error"
	if wrappedErr.Error() != expectedMsg {
		t.Errorf("Wrap() produced unexpected message: got %q, want %q", wrappedErr.Error(), expectedMsg)
	}

	formattedErr := Wrap(originalErr, "context with %s", "format")
	expectedFormattedMsg := "context with format: original error"
	if formattedErr.Error() != expectedFormattedMsg {
		t.Errorf("Wrap() with format produced unexpected message: got %q, want %q",
			formattedErr.Error(), expectedFormattedMsg)
	}

	if nilErr := Wrap(nil, "context"); nilErr != nil {
		t.Errorf("Wrap(nil, ...) should return nil, got %v", nilErr)
	}
}

func TestWrapWithCode(t *testing.T) {
	originalErr := errors.New("original error")
	codedErr := WrapWithCode(originalErr, ErrFeatureViewNotFound, "context")

	if codedErr == nil {
		t.Fatal("WrapWithCode() returned nil for non-nil error")
	}
	if !errors.Is(codedErr, ErrFeatureViewNotFound) {
		t.Errorf("WrapWithCode() did not preserve error kind for error checking")
	}
	if !errors.Is(codedErr, originalErr) {
		t.Errorf("WrapWithCode() did not preserve original error for error checking")
	}

	formattedErr := WrapWithCode(originalErr, ErrInvalidRequest, "context with %s", "format")
	if !errors.Is(formattedErr, ErrInvalidRequest) {
		t.Errorf("WrapWithCode() with format did not preserve error kind")
	}

	if nilErr := WrapWithCode(nil, ErrFeatureViewNotFound, "context"); nilErr != nil {
		t.Errorf("WrapWithCode(nil, ...) should return nil, got %v", nilErr)
	}
}

func TestGetErrorKind(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected error
	}{
		{name: "nil error", err: nil, expected: nil},
		{name: "direct error kind", err: ErrFeatureViewNotFound, expected: ErrFeatureViewNotFound},
		{
			name:     "wrapped error kind",
			err:      fmt.Errorf("context: %w", ErrFeatureServiceNotFound),
			expected: ErrFeatureServiceNotFound,
		},
		{
			name:     "double wrapped error kind",
			err:      fmt.Errorf("outer: %w", fmt.Errorf("inner: %w", ErrInvalidRequest)),
			expected: ErrInvalidRequest,
		},
		{name: "error with no kind", err: errors.New("some random error"), expected: nil},
		{
			name:     "WrapWithCode result",
			err:      WrapWithCode(errors.New("original"), ErrBackendUnavailable, "context"),
			expected: ErrBackendUnavailable,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			kind := GetErrorKind(tc.err)
			if kind != tc.expected {
				t.Errorf("GetErrorKind() = %v, want %v", kind, tc.expected)
			}
		})
	}
}

func TestGetErrorCodeString(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected string
	}{
		{name: "nil error", err: nil, expected: "INTERNAL_SERVER_ERROR"},
		{name: "feature view not found", err: ErrFeatureViewNotFound, expected: "FEATURE_VIEW_NOT_FOUND"},
		{
			name:     "wrapped feature service not found",
			err:      fmt.Errorf("context: %w", ErrFeatureServiceNotFound),
			expected: "FEATURE_SERVICE_NOT_FOUND",
		},
		{name: "error with no kind", err: errors.New("some random error"), expected: "INTERNAL_SERVER_ERROR"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			codeStr := GetErrorCodeString(tc.err)
			if codeStr != tc.expected {
				t.Errorf("GetErrorCodeString() = %q, want %q", codeStr, tc.expected)
			}
		})
	}
}

func TestErrorKindsAreUnique(t *testing.T) {
	seen := make(map[string]error)
	for _, kind := range knownKinds {
		msg := kind.Error()
		if existing, found := seen[msg]; found {
			t.Errorf("Duplicate error message %q in error kinds %#v and %#v", msg, existing, kind)
		}
		seen[msg] = kind
	}
}

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		err      error
		expected int
	}{
		{ErrFeatureViewNotFound, 404},
		{ErrFeatureServiceNotFound, 404},
		{ErrFeatureViewNotFoundForService, 404},
		{ErrInvalidRequest, 400},
		{ErrMissingEntityValues, 400},
		{ErrRaggedEntityVectors, 400},
		{ErrComputedViewUnsupported, 400},
		{ErrBackendUnavailable, 500},
		{ErrUnsupportedType, 500},
		{errors.New("unknown"), 500},
	}
	for _, tc := range tests {
		if got := HTTPStatus(tc.err); got != tc.expected {
			t.Errorf("HTTPStatus(%v) = %d, want %d", tc.err, got, tc.expected)
		}
	}
}

func TestErrorsPackageIntegration(t *testing.T) {
	originalErr := errors.New("standard error")
	ourErr := New("our error")

	wrappedErr := fmt.Errorf("wrapped: %w", ourErr)
	if !Is(wrappedErr, ourErr) {
		t.Errorf("Our Is() function does not work properly")
	}

	var err error
	if !As(wrappedErr, &err) {
		t.Errorf("Our As() function does not work properly")
	}

	unwrapped := Unwrap(wrappedErr)
	if unwrapped != ourErr {
		t.Errorf("Our Unwrap() function does not work properly")
	}

	stdWrapped := fmt.Errorf("std wrapped: %w", originalErr)
	if !errors.Is(stdWrapped, originalErr) {
		t.Errorf("Standard errors.Is and our package don't interoperate")
	}

	stdWrappedDomain := fmt.Errorf("domain wrapped: %w", ErrFeatureViewNotFound)
	if !errors.Is(stdWrappedDomain, ErrFeatureViewNotFound) {
		t.Errorf("Our domain errors don't work with standard errors.Is")
	}
}
