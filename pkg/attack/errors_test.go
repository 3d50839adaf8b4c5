package attack

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestNotFoundNamesOffendingID(t *testing.T) {
	err := NotFound("AnalyzeGaps", KindGroup, "G9999")

	if !IsNotFound(err) {
		t.Error("Expected IsNotFound")
	}
	if !strings.Contains(err.Error(), "G9999") {
		t.Errorf("Error should name the missing ID: %v", err)
	}
	if IsInvalidArgument(err) || IsInvalidRange(err) || IsDataIntegrity(err) {
		t.Error("NotFound matched an unrelated kind")
	}
}

func TestInvalidRangeNamesBothTactics(t *testing.T) {
	err := InvalidRange("BuildPath", "TA0040", "TA0001")

	if !IsInvalidRange(err) {
		t.Error("Expected IsInvalidRange")
	}
	msg := err.Error()
	if !strings.Contains(msg, "TA0040") || !strings.Contains(msg, "TA0001") {
		t.Errorf("Error should name both tactic IDs: %v", err)
	}
}

func TestIntegrityErrorKind(t *testing.T) {
	err := IntegrityError("Build", "edge references missing entity", "T0000")

	if !IsDataIntegrity(err) {
		t.Error("Expected IsDataIntegrity")
	}
	if IsNotFound(err) {
		t.Error("Integrity error must not match NotFound")
	}
}

func TestErrorUnwrapSupportsWrapping(t *testing.T) {
	inner := InvalidArgument("Traverse", "depth must be between 1 and 3")
	wrapped := fmt.Errorf("handling request: %w", inner)

	if !errors.Is(wrapped, ErrInvalidArgument) {
		t.Error("Wrapped error should still match the sentinel")
	}

	var structured *Error
	if !errors.As(wrapped, &structured) {
		t.Fatal("errors.As should recover the structured error")
	}
	if structured.Op != "Traverse" {
		t.Errorf("Op = %q, want Traverse", structured.Op)
	}
}
