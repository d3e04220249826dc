// ABOUTME: Tests for logger setup
// ABOUTME: Covers level parsing and file output
package logging

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestSetupWritesJSONToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "radio.log")

	logger, closer, err := Setup(Options{Level: "debug", Format: "json", File: path})
	if err != nil {
		t.Fatalf("Setup failed: %v", err)
	}
	logger.Debug().Int("hour", 14).Msg("Hour rollover")
	if err := closer.Close(); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), `"hour":14`) || !strings.Contains(string(data), `"message":"Hour rollover"`) {
		t.Errorf("unexpected log output %s", data)
	}
}

func TestSetupRejectsBadLevel(t *testing.T) {
	if _, _, err := Setup(Options{Level: "loud"}); err == nil {
		t.Error("expected error for unknown level")
	}
}

func TestSetupLevel(t *testing.T) {
	logger, closer, err := Setup(Options{Level: "warn"})
	if err != nil {
		t.Fatal(err)
	}
	defer closer.Close()

	if logger.GetLevel() != zerolog.WarnLevel {
		t.Errorf("expected warn level, got %s", logger.GetLevel())
	}
}
