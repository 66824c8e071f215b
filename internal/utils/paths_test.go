package utils

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skipf("no home directory: %v", err)
	}

	t.Run("tilde", func(t *testing.T) {
		got, err := ExpandPath("~/logs/lazycommit.log")
		if err != nil {
			t.Fatalf("ExpandPath() error: %v", err)
		}
		want := filepath.Join(home, "logs", "lazycommit.log")
		if got != want {
			t.Errorf("ExpandPath() = %q, want %q", got, want)
		}
	})

	t.Run("environment variable", func(t *testing.T) {
		t.Setenv("LC_TEST_DIR", "/var/log")
		got, err := ExpandPath("$LC_TEST_DIR/debug.log")
		if err != nil {
			t.Fatalf("ExpandPath() error: %v", err)
		}
		if got != "/var/log/debug.log" {
			t.Errorf("ExpandPath() = %q, want /var/log/debug.log", got)
		}
	})

	t.Run("plain path untouched", func(t *testing.T) {
		got, err := ExpandPath("/tmp/x.log")
		if err != nil {
			t.Fatalf("ExpandPath() error: %v", err)
		}
		if got != "/tmp/x.log" {
			t.Errorf("ExpandPath() = %q, want unchanged", got)
		}
		if strings.Contains(got, "~") {
			t.Error("unexpected tilde in expanded path")
		}
	})
}
