package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
	"testing"
)

func TestNew(t *testing.T) {
	err := New(ErrCodeInvalidReference, "transition %s: unknown node %q", "flow_1", "task_9")

	if err.Code != ErrCodeInvalidReference {
		t.Errorf("Code = %q, want %q", err.Code, ErrCodeInvalidReference)
	}
	if !strings.Contains(err.Error(), "INVALID_REFERENCE") {
		t.Errorf("Error() should contain the code, got %q", err.Error())
	}
	if !strings.Contains(err.Error(), "task_9") {
		t.Errorf("Error() should contain formatted args, got %q", err.Error())
	}
}

func TestWrap(t *testing.T) {
	cause := stderrors.New("unexpected EOF")
	err := Wrap(ErrCodeInvalidFlow, cause, "decode %s", "flow.json")

	if !stderrors.Is(err, cause) {
		t.Error("wrapped error should match the cause via errors.Is")
	}
	if !strings.Contains(err.Error(), "unexpected EOF") {
		t.Errorf("Error() should include the cause, got %q", err.Error())
	}
}

func TestIs(t *testing.T) {
	err := New(ErrCodeRunNotFound, "run %s", "abc")

	if !Is(err, ErrCodeRunNotFound) {
		t.Error("Is() should match the error's own code")
	}
	if Is(err, ErrCodeInternal) {
		t.Error("Is() should not match a different code")
	}
	if Is(stderrors.New("plain"), ErrCodeInternal) {
		t.Error("Is() should not match plain errors")
	}
}

func TestIs_WrappedChain(t *testing.T) {
	inner := New(ErrCodeInvalidReference, "transition flow_2")
	outer := fmt.Errorf("build model: %w", inner)

	if !Is(outer, ErrCodeInvalidReference) {
		t.Error("Is() should unwrap fmt.Errorf chains")
	}
}

func TestGetCode(t *testing.T) {
	if got := GetCode(New(ErrCodeStorage, "mongo down")); got != ErrCodeStorage {
		t.Errorf("GetCode = %q, want %q", got, ErrCodeStorage)
	}
	if got := GetCode(stderrors.New("plain")); got != "" {
		t.Errorf("GetCode on plain error = %q, want empty", got)
	}
}

func TestUserMessage(t *testing.T) {
	err := New(ErrCodeInvalidFormat, "unknown format %q", "tiff")
	if msg := UserMessage(err); strings.Contains(msg, "INVALID_FORMAT") {
		t.Errorf("UserMessage should not include the code prefix, got %q", msg)
	}

	plain := stderrors.New("plain failure")
	if msg := UserMessage(plain); msg != "plain failure" {
		t.Errorf("UserMessage on plain error = %q", msg)
	}
}
