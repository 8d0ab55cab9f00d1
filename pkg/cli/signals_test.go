package cli

import (
	"testing"
	"time"
)

func TestSetupSignalHandler(t *testing.T) {
	ctx := SetupSignalHandler()

	select {
	case <-ctx.Done():
		t.Error("context cancelled before any signal")
	default:
	}

	if ctx.Done() == nil {
		t.Error("context has no Done channel")
	}
}

func TestSetupSignalHandler_StaysActive(t *testing.T) {
	ctx := SetupSignalHandler()

	select {
	case <-ctx.Done():
		t.Error("context cancelled too early")
	case <-time.After(10 * time.Millisecond):
	}
}
