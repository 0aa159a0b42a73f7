package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
	"testing"
)

func TestNew(t *testing.T) {
	err := New(ErrCodeInvalidCabinet, "malformed cabinet id: %q", "R1")

	if err.Code != ErrCodeInvalidCabinet {
		t.Errorf("Code = %q, want %q", err.Code, ErrCodeInvalidCabinet)
	}
	if err.Message != `malformed cabinet id: "R1"` {
		t.Errorf("Message = %q", err.Message)
	}
	if !strings.HasPrefix(err.Error(), "INVALID_CABINET: ") {
		t.Errorf("Error = %q, want code prefix", err.Error())
	}
	if err.Unwrap() != nil {
		t.Error("New should not carry a cause")
	}
}

func TestWrap(t *testing.T) {
	cause := stderrors.New("disk full")
	err := Wrap(ErrCodeInternal, cause, "write report")

	if !strings.Contains(err.Error(), "disk full") {
		t.Errorf("Error should include the cause: %q", err.Error())
	}
	if !stderrors.Is(err, cause) {
		t.Error("wrapped error should match the cause via errors.Is")
	}

	// Wrapping again keeps the innermost cause reachable
	outer := Wrap(ErrCodeInvalidInput, err, "ingest")
	if !stderrors.Is(outer, cause) {
		t.Error("double wrap should keep the cause reachable")
	}
}

func TestIs(t *testing.T) {
	err := New(ErrCodeFileNotFound, "inventory file missing")

	if !Is(err, ErrCodeFileNotFound) {
		t.Error("Is should match the error's own code")
	}
	if Is(err, ErrCodeInternal) {
		t.Error("Is should not match a different code")
	}
	if Is(stderrors.New("plain"), ErrCodeInternal) {
		t.Error("Is should not match plain errors")
	}
	if Is(nil, ErrCodeInternal) {
		t.Error("Is should not match nil")
	}

	// Codes survive fmt wrapping
	wrapped := fmt.Errorf("context: %w", err)
	if !Is(wrapped, ErrCodeFileNotFound) {
		t.Error("Is should unwrap standard wrappers")
	}
}

func TestGetCode(t *testing.T) {
	if got := GetCode(New(ErrCodeConflicts, "x")); got != ErrCodeConflicts {
		t.Errorf("GetCode = %q, want %q", got, ErrCodeConflicts)
	}
	if got := GetCode(stderrors.New("plain")); got != "" {
		t.Errorf("GetCode of plain error = %q, want empty", got)
	}
}

func TestUserMessage(t *testing.T) {
	err := New(ErrCodeInvalidStrategy, "unknown strategy: %q", "spiral")
	if got := UserMessage(err); got != `unknown strategy: "spiral"` {
		t.Errorf("UserMessage = %q", got)
	}

	plain := stderrors.New("plain failure")
	if got := UserMessage(plain); got != "plain failure" {
		t.Errorf("UserMessage of plain error = %q", got)
	}
}
