package errors

import (
	"errors"
	"os"
	"testing"
)

func TestNew(t *testing.T) {
	err := New(ErrCodeInvalidView, "unknown view: %s", "pie")

	if err.Code != ErrCodeInvalidView {
		t.Errorf("Code = %v, want %v", err.Code, ErrCodeInvalidView)
	}

	if err.Message != "unknown view: pie" {
		t.Errorf("Message = %v, want %v", err.Message, "unknown view: pie")
	}

	expected := "INVALID_VIEW: unknown view: pie"
	if err.Error() != expected {
		t.Errorf("Error() = %v, want %v", err.Error(), expected)
	}
}

func TestWrap(t *testing.T) {
	cause := errors.New("underlying error")
	err := Wrap(ErrCodeDataUnavailable, cause, "failed to open")

	if err.Code != ErrCodeDataUnavailable {
		t.Errorf("Code = %v, want %v", err.Code, ErrCodeDataUnavailable)
	}

	if err.Cause != cause {
		t.Errorf("Cause = %v, want %v", err.Cause, cause)
	}

	if unwrapped := errors.Unwrap(err); unwrapped != cause {
		t.Errorf("Unwrap() = %v, want %v", unwrapped, cause)
	}

	if !errors.Is(err, cause) {
		t.Error("errors.Is(err, cause) = false, want true")
	}

	expected := "DATA_UNAVAILABLE: failed to open: underlying error"
	if err.Error() != expected {
		t.Errorf("Error() = %v, want %v", err.Error(), expected)
	}
}

func TestIs(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		code     Code
		expected bool
	}{
		{
			name:     "matching code",
			err:      New(ErrCodeInvalidFormat, "test"),
			code:     ErrCodeInvalidFormat,
			expected: true,
		},
		{
			name:     "non-matching code",
			err:      New(ErrCodeInvalidFormat, "test"),
			code:     ErrCodeInvalidView,
			expected: false,
		},
		{
			name:     "outer code wins",
			err:      Wrap(ErrCodeDataUnavailable, New(ErrCodeInvalidInput, "inner"), "outer"),
			code:     ErrCodeDataUnavailable,
			expected: true,
		},
		{
			name:     "non-Error type",
			err:      errors.New("plain error"),
			code:     ErrCodeInvalidInput,
			expected: false,
		},
		{
			name:     "nil error",
			err:      nil,
			code:     ErrCodeInvalidInput,
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Is(tt.err, tt.code); got != tt.expected {
				t.Errorf("Is() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestGetCode(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected Code
	}{
		{"Error type", New(ErrCodeRowParseSkipped, "test"), ErrCodeRowParseSkipped},
		{"plain error", errors.New("plain"), ""},
		{"nil", nil, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := GetCode(tt.err); got != tt.expected {
				t.Errorf("GetCode() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestUserMessage(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected string
	}{
		{"Error type", New(ErrCodeInvalidInput, "friendly message"), "friendly message"},
		{"plain error", errors.New("plain error"), "plain error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := UserMessage(tt.err); got != tt.expected {
				t.Errorf("UserMessage() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestDataUnavailable(t *testing.T) {
	err := DataUnavailable("best-selling-books.csv", os.ErrNotExist)

	if !IsDataUnavailable(err) {
		t.Error("IsDataUnavailable() = false, want true")
	}
	if !errors.Is(err, os.ErrNotExist) {
		t.Error("cause should be preserved")
	}
	if got := UserMessage(err); got != "data source best-selling-books.csv unavailable" {
		t.Errorf("UserMessage() = %q", got)
	}
	if IsDataUnavailable(errors.New("other")) {
		t.Error("plain errors are not DATA_UNAVAILABLE")
	}
}

func TestRowSkipped(t *testing.T) {
	cause := errors.New("not a year")
	err := RowSkipped(3, "First published", "invalid", cause)

	if !Is(err, ErrCodeRowParseSkipped) {
		t.Errorf("code = %s", GetCode(err))
	}
	if err.Code.Fatal() {
		t.Error("skipped rows should not be fatal")
	}
	if got := UserMessage(err); got != `row 3: first published "invalid"` {
		t.Errorf("UserMessage() = %q", got)
	}
	if !errors.Is(err, cause) {
		t.Error("cause should be preserved")
	}
}

func TestCodeFatal(t *testing.T) {
	for _, code := range []Code{ErrCodeDataUnavailable, ErrCodeInvalidView, ErrCodeInvalidConfig, ErrCodeClosed, ErrCodeInternal} {
		if !code.Fatal() {
			t.Errorf("%s.Fatal() = false", code)
		}
	}
}

func TestValidation(t *testing.T) {
	if err := Validation(ErrCodeInvalidConfig, "configuration", nil); err != nil {
		t.Errorf("no problems should give nil, got %v", err)
	}

	problems := []string{"source.path is required", "server.addr is required"}
	err := Validation(ErrCodeInvalidConfig, "configuration", problems)
	if !Is(err, ErrCodeInvalidConfig) {
		t.Fatalf("code = %s", GetCode(err))
	}
	want := "configuration validation failed:\n- source.path is required\n- server.addr is required"
	if got := UserMessage(err); got != want {
		t.Errorf("UserMessage() = %q, want %q", got, want)
	}

	problems[0] = "changed"
	if d := Details(err); len(d) != 2 || d[0] != "source.path is required" {
		t.Errorf("Details() = %v", d)
	}
	if Details(errors.New("plain")) != nil {
		t.Error("plain errors have no details")
	}
}
