package apperr

import (
	"errors"
	"fmt"
	"testing"
)

func TestKindMatching(t *testing.T) {
	err := Conflictf("entry %d is active", 3)
	if !errors.Is(err, ErrConflict) {
		t.Fatal("expected conflict to match ErrConflict")
	}
	if errors.Is(err, ErrValidation) {
		t.Fatal("conflict should not match ErrValidation")
	}
	if err.Error() != "entry 3 is active" {
		t.Fatalf("message = %q", err.Error())
	}
}

func TestKindThroughWrapping(t *testing.T) {
	err := fmt.Errorf("start: %w", Validationf("activity is required"))
	if KindOf(err) != Validation {
		t.Fatalf("KindOf = %q, want validation", KindOf(err))
	}
	if !errors.Is(err, ErrValidation) {
		t.Fatal("wrapped validation error should match")
	}
}

func TestStorageErr(t *testing.T) {
	if StorageErr("x", nil) != nil {
		t.Fatal("nil cause should give nil")
	}
	cause := errors.New("disk full")
	err := StorageErr("insert entry", cause)
	if !errors.Is(err, cause) {
		t.Fatal("storage error should unwrap to cause")
	}
	if !errors.Is(err, ErrStorage) {
		t.Fatal("should match ErrStorage")
	}
	if err.Error() != "insert entry: disk full" {
		t.Fatalf("message = %q", err.Error())
	}
	// Re-wrapping keeps the original.
	if StorageErr("outer", err) != err {
		t.Fatal("storage error should not be double wrapped")
	}
}

func TestKindOfUnclassified(t *testing.T) {
	if KindOf(errors.New("boom")) != Storage {
		t.Fatal("unclassified errors are storage errors")
	}
}
