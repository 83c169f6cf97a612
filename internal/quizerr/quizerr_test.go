package quizerr

import (
	"errors"
	"fmt"
	"testing"
)

func TestKindsMatchThroughWrapping(t *testing.T) {
	cause := errors.New("disk full")
	err := fmt.Errorf("save: %w", Persistence(cause, "backend %s", "csv"))
	if !errors.Is(err, ErrPersistence) {
		t.Fatalf("expected persistence kind, got %v", err)
	}
	if !errors.Is(err, cause) {
		t.Fatalf("expected cause to be reachable")
	}
	if errors.Is(err, ErrValidation) {
		t.Fatalf("unexpected validation kind")
	}
	want := "save: result not saved: backend csv: disk full"
	if err.Error() != want {
		t.Fatalf("unexpected message: %q", err.Error())
	}
}

func TestConfigurationMessage(t *testing.T) {
	err := Configuration("missing directory %q", "x")
	if err.Error() != `configuration error: missing directory "x"` {
		t.Fatalf("unexpected message: %q", err.Error())
	}
}
