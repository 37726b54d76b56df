// pkg/errors/errors_test.go
// TEST TYPE: Unit Test
// DEPENDENCIES: None
// PURPOSE: Test error creation, wrapping, detail propagation and code lookup

package errors_test

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/arthur-debert/cellar/pkg/errors"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		code    errors.ErrorCode
		message string
		wantStr string
	}{
		{
			name:    "formula_not_found",
			code:    errors.ErrFormulaNotFound,
			message: "no formula named foo",
			wantStr: "[FORMULA_NOT_FOUND] no formula named foo",
		},
		{
			name:    "checksum_mismatch",
			code:    errors.ErrChecksumMismatch,
			message: "sha256 differs",
			wantStr: "[CHECKSUM_MISMATCH] sha256 differs",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := errors.New(tt.code, tt.message)

			if err.Code != tt.code {
				t.Errorf("New() code = %v, want %v", err.Code, tt.code)
			}
			if err.Details == nil {
				t.Error("New() details should be initialized")
			}
			if got := err.Error(); got != tt.wantStr {
				t.Errorf("Error() = %q, want %q", got, tt.wantStr)
			}
		})
	}
}

func TestWrap(t *testing.T) {
	baseErr := stderrors.New("exit status 2")

	t.Run("wrap_non_nil_error", func(t *testing.T) {
		err := errors.Wrap(baseErr, errors.ErrBuildFailed, "make failed")

		if err.Wrapped != baseErr {
			t.Error("Wrap() should preserve wrapped error")
		}

		wantStr := "[BUILD_FAILED] make failed: exit status 2"
		if got := err.Error(); got != wantStr {
			t.Errorf("Error() = %q, want %q", got, wantStr)
		}
	})

	t.Run("wrap_nil_error_returns_nil", func(t *testing.T) {
		if err := errors.Wrap(nil, errors.ErrInternal, "internal error"); err != nil {
			t.Error("Wrap(nil) should return nil")
		}
	})

	t.Run("wrapf_formats", func(t *testing.T) {
		err := errors.Wrapf(baseErr, errors.ErrTestFailed, "step %d failed", 3)
		if err.Message != "step 3 failed" {
			t.Errorf("Wrapf() message = %q", err.Message)
		}
	})
}

func TestIs(t *testing.T) {
	err1 := errors.New(errors.ErrSourceFetch, "error 1")
	err2 := errors.New(errors.ErrSourceFetch, "error 2")
	err3 := errors.New(errors.ErrInternal, "error 3")

	if !stderrors.Is(err1, err2) {
		t.Error("errors.Is() should match on code")
	}
	if stderrors.Is(err1, err3) {
		t.Error("errors.Is() should not match different codes")
	}
}

func TestIsErrorCode(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		code     errors.ErrorCode
		expected bool
	}{
		{
			name:     "matching_code",
			err:      errors.New(errors.ErrTestFailed, "tests failed"),
			code:     errors.ErrTestFailed,
			expected: true,
		},
		{
			name:     "different_code",
			err:      errors.New(errors.ErrTestFailed, "tests failed"),
			code:     errors.ErrBuildFailed,
			expected: false,
		},
		{
			name:     "fmt_wrapped",
			err:      fmt.Errorf("install: %w", errors.New(errors.ErrConfigureFailed, "cmake")),
			code:     errors.ErrConfigureFailed,
			expected: true,
		},
		{
			name:     "plain_error",
			err:      stderrors.New("standard error"),
			code:     errors.ErrUnknown,
			expected: false,
		},
		{
			name:     "nil_error",
			err:      nil,
			code:     errors.ErrUnknown,
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := errors.IsErrorCode(tt.err, tt.code); got != tt.expected {
				t.Errorf("IsErrorCode() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestHasErrorCode(t *testing.T) {
	inner := errors.New(errors.ErrCommandFailed, "make exited with status 2")
	outer := errors.Wrap(inner, errors.ErrBuildFailed, "build step 2 failed")

	if !errors.HasErrorCode(outer, errors.ErrCommandFailed) {
		t.Error("HasErrorCode() should find inner code")
	}
	if !errors.HasErrorCode(outer, errors.ErrBuildFailed) {
		t.Error("HasErrorCode() should find outer code")
	}
	if errors.HasErrorCode(outer, errors.ErrTestFailed) {
		t.Error("HasErrorCode() should not find absent code")
	}
	if errors.GetErrorCode(outer) != errors.ErrBuildFailed {
		t.Errorf("GetErrorCode() = %v, want outermost code", errors.GetErrorCode(outer))
	}
}

func TestGetErrorDetails_MergesChain(t *testing.T) {
	inner := errors.New(errors.ErrCommandFailed, "failed").
		WithDetail(errors.DetailCommand, "make").
		WithDetail(errors.DetailExitCode, 2).
		WithDetail(errors.DetailStage, "inner")
	outer := errors.Wrap(inner, errors.ErrBuildFailed, "build failed").
		WithDetail(errors.DetailStage, "build")

	details := errors.GetErrorDetails(outer)
	if details[errors.DetailCommand] != "make" {
		t.Errorf("command = %v, want make", details[errors.DetailCommand])
	}
	if details[errors.DetailStage] != "build" {
		t.Errorf("stage = %v, outer detail should win", details[errors.DetailStage])
	}

	code, ok := errors.ExitCode(outer)
	if !ok || code != 2 {
		t.Errorf("ExitCode() = %d, %v; want 2, true", code, ok)
	}

	if _, ok := errors.ExitCode(stderrors.New("plain")); ok {
		t.Error("ExitCode() should report false for plain errors")
	}
	if errors.GetErrorDetails(stderrors.New("plain")) != nil {
		t.Error("GetErrorDetails() should be nil for plain errors")
	}
}
