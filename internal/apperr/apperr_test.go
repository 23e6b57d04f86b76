package apperr

import (
	"errors"
	"fmt"
	"testing"
)

func TestKindOf_WalksWrappedChain(t *testing.T) {
	inner := New(KindConflict, "email is already in use")
	outer := fmt.Errorf("register: %w", inner)
	if got := KindOf(outer); got != KindConflict {
		t.Fatalf("expected KindConflict, got %v", got)
	}
}

func TestKindOf_DefaultsToUnexpected(t *testing.T) {
	if got := KindOf(errors.New("boom")); got != KindUnexpected {
		t.Fatalf("expected KindUnexpected, got %v", got)
	}
	if got := KindOf(nil); got != KindUnexpected {
		t.Fatalf("expected KindUnexpected for nil, got %v", got)
	}
}

func TestMessage_HidesUnexpectedDetail(t *testing.T) {
	if got := Message(errors.New("pq: relation does not exist")); got != "internal server error" {
		t.Fatalf("expected generic message, got %q", got)
	}
	if got := Message(New(KindValidation, "a title is required")); got != "a title is required" {
		t.Fatalf("expected client message passed through, got %q", got)
	}
}

func TestWrap_PreservesCause(t *testing.T) {
	cause := errors.New("duplicate key value")
	wrapped := Wrap(KindConflict, "invite code collision", cause)
	if !errors.Is(wrapped, cause) {
		t.Fatalf("expected wrapped error to unwrap to cause")
	}
	if wrapped.Error() != "invite code collision: duplicate key value" {
		t.Fatalf("unexpected error string: %q", wrapped.Error())
	}
}
