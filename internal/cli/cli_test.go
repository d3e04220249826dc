// ABOUTME: Tests for the command line interface
// ABOUTME: Runs commands in-process against temporary directories
package cli

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/harperreed/crossing-radio/internal/config"
	"github.com/harperreed/crossing-radio/internal/version"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := NewRootCommand()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestVersionCommand(t *testing.T) {
	out, err := execute(t, "version")
	if err != nil {
		t.Fatalf("version failed: %v", err)
	}
	if !strings.Contains(out, version.Product) || !strings.Contains(out, version.Version) {
		t.Errorf("unexpected output %q", out)
	}
}

func TestPreloadReportsMissingHours(t *testing.T) {
	dir := t.TempDir()
	out, err := execute(t,
		"preload",
		"--config", filepath.Join("testdata", "empty.yaml"),
		"--source", "dir",
		"--dir", dir,
		"--log-file", filepath.Join(dir, "radio.log"),
		"--log-level", "error",
	)

	if err == nil {
		t.Fatal("expected preload to fail with no music")
	}
	if !strings.Contains(err.Error(), "24 of 24") {
		t.Errorf("unexpected error %v", err)
	}
	for _, want := range []string{"HOUR", "12:00 AM", "11:00 PM", "missing"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected output to contain %q\n%s", want, out)
		}
	}
}

func TestPreloadRejectsBadConfig(t *testing.T) {
	dir := t.TempDir()
	_, err := execute(t,
		"preload",
		"--config", filepath.Join("testdata", "empty.yaml"),
		"--source", "ftp",
		"--log-file", filepath.Join(dir, "radio.log"),
	)
	if err == nil || !strings.Contains(err.Error(), "assets.source") {
		t.Errorf("expected source validation error, got %v", err)
	}
}

func TestBindFlagsOverrideDefaults(t *testing.T) {
	v := viper.New()
	config.SetDefaults(v)

	cmd := &cobra.Command{Use: "test", RunE: func(*cobra.Command, []string) error { return nil }}
	cmd.Flags().String("set", "nl", "")
	cmd.Flags().String("time", "", "")
	cmd.Flags().Float64("gain", 0.5, "")
	bindFlags(v, cmd)

	if err := cmd.Flags().Parse([]string{"--set", "cf", "--time", "10:00:00"}); err != nil {
		t.Fatal(err)
	}

	if got := v.GetString("assets.set"); got != "cf" {
		t.Errorf("expected set cf, got %q", got)
	}
	if got := v.GetString("clock.override"); got != "10:00:00" {
		t.Errorf("expected override, got %q", got)
	}
	if got := v.GetFloat64("audio.gain"); got != 0.5 {
		t.Errorf("expected default gain, got %v", got)
	}
	if got := v.GetString("assets.ext"); got != "mp3" {
		t.Errorf("expected unbound default ext, got %q", got)
	}
}
