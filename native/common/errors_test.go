package common

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestErrorClassification(t *testing.T) {
	errMissing := Precondition("vesting", "beneficiary not found")
	errUnderfunded := Invariant("staking", "no enough tokens available for gift")

	wrapped := fmt.Errorf("release: %w", errMissing)
	if !errors.Is(wrapped, errMissing) {
		t.Fatalf("expected wrapped sentinel to match")
	}
	if !IsPrecondition(wrapped) || IsInvariant(wrapped) {
		t.Fatalf("unexpected classification for %v", wrapped)
	}
	if !IsInvariant(errUnderfunded) || IsPrecondition(errUnderfunded) {
		t.Fatalf("unexpected classification for %v", errUnderfunded)
	}
	if got := errMissing.Error(); got != "vesting: beneficiary not found" {
		t.Fatalf("unexpected message %q", got)
	}
	if Reason(wrapped) != "beneficiary not found" {
		t.Fatalf("unexpected reason %q", Reason(wrapped))
	}
}

func TestAuthorizationError(t *testing.T) {
	caller := [20]byte{0x01}
	err := fmt.Errorf("append: %w", &AuthorizationError{Module: "vesting", Caller: caller, Role: "INITIATOR_ROLE"})
	if !IsAuthorization(err) {
		t.Fatalf("expected authorization error")
	}
	if IsPrecondition(err) {
		t.Fatalf("authorization error must not classify as precondition")
	}
	if !strings.Contains(err.Error(), "the caller is not authorized") || !strings.Contains(err.Error(), "INITIATOR_ROLE") {
		t.Fatalf("unexpected message %q", err.Error())
	}
	if Reason(err) != "unauthorized" {
		t.Fatalf("unexpected reason %q", Reason(err))
	}
}
