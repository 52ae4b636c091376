package bridgetest

import (
	"errors"
	"strings"
	"testing"

	"github.com/gossip-lsp/bridge/connector"
)

// AssertExhausted asserts that err is a retry exhaustion after exactly tries
// attempts and returns it.
func AssertExhausted(t testing.TB, err error, tries int) *connector.ExhaustedError {
	t.Helper()
	var exhausted *connector.ExhaustedError
	if !errors.As(err, &exhausted) {
		t.Fatalf("expected *connector.ExhaustedError, got %T: %v", err, err)
	}
	if exhausted.Tries != tries {
		t.Errorf("exhausted after %d attempts, want %d", exhausted.Tries, tries)
	}
	if n := len(exhausted.Errors()); n != tries {
		t.Errorf("exhausted error carries %d attempt errors, want %d", n, tries)
	}
	return exhausted
}

// AssertErrorContains asserts that err is non-nil and its message contains substr.
func AssertErrorContains(t testing.TB, err error, substr string) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected error containing %q, got nil", substr)
	}
	if !strings.Contains(err.Error(), substr) {
		t.Errorf("error %q does not contain %q", err.Error(), substr)
	}
}
