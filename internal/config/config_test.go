// ABOUTME: Tests for configuration loading
// ABOUTME: Covers defaults, environment overrides, config files and validation
package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/viper"
)

func newIsolated(t *testing.T) *viper.Viper {
	t.Helper()
	v := New()
	// keep a developer's config.yaml out of the test
	v.SetConfigFile(filepath.Join(t.TempDir(), "missing.yaml"))
	return v
}

func TestDefaults(t *testing.T) {
	v := viper.New()
	SetDefaults(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		t.Fatal(err)
	}

	if cfg.Assets.Source != SourceHTTP || cfg.Assets.Set != "nl" || cfg.Assets.Ext != "mp3" {
		t.Errorf("unexpected asset defaults %+v", cfg.Assets)
	}
	if cfg.Assets.FetchTimeout != 30*time.Second {
		t.Errorf("expected 30s fetch timeout, got %v", cfg.Assets.FetchTimeout)
	}
	if cfg.Audio.Gain != 0.5 || cfg.Audio.SampleRate != 44100 || cfg.Audio.Channels != 2 {
		t.Errorf("unexpected audio defaults %+v", cfg.Audio)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}
}

func TestEnvironmentOverrides(t *testing.T) {
	t.Setenv("CROSSING_ASSETS_SOURCE", "dir")
	t.Setenv("CROSSING_ASSETS_DIR", "/srv/music")
	t.Setenv("CROSSING_CLOCK_OVERRIDE", "23:59:58")
	t.Setenv("CROSSING_AUDIO_GAIN", "0.25")

	v := viper.New()
	SetDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		t.Fatal(err)
	}

	if cfg.Assets.Source != SourceDir || cfg.Assets.Dir != "/srv/music" {
		t.Errorf("expected dir source from env, got %+v", cfg.Assets)
	}
	if cfg.Clock.Override != "23:59:58" {
		t.Errorf("expected override from env, got %q", cfg.Clock.Override)
	}
	if cfg.Audio.Gain != 0.25 {
		t.Errorf("expected gain 0.25, got %v", cfg.Audio.Gain)
	}
}

func TestLoadConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	data := `
assets:
  source: s3
  bucket: hourly-music
  set: cf
clock:
  override: "13:59:59"
`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	v := New()
	v.SetConfigFile(path)
	cfg, err := Load(v)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Assets.Source != SourceS3 || cfg.Assets.Bucket != "hourly-music" || cfg.Assets.Set != "cf" {
		t.Errorf("unexpected assets %+v", cfg.Assets)
	}
	if cfg.Assets.Ext != "mp3" {
		t.Errorf("expected default ext to survive, got %q", cfg.Assets.Ext)
	}
	if cfg.Clock.Override != "13:59:59" {
		t.Errorf("unexpected override %q", cfg.Clock.Override)
	}
}

func TestLoadMissingExplicitFileFails(t *testing.T) {
	if _, err := Load(newIsolated(t)); err == nil {
		t.Error("expected error for an explicit config file that does not exist")
	}
}

func TestValidate(t *testing.T) {
	base := func() Config {
		v := viper.New()
		SetDefaults(v)
		var cfg Config
		if err := v.Unmarshal(&cfg); err != nil {
			t.Fatal(err)
		}
		return cfg
	}

	tests := []struct {
		name   string
		mutate func(c *Config)
	}{
		{"unknown source", func(c *Config) { c.Assets.Source = "ftp" }},
		{"dir without path", func(c *Config) { c.Assets.Source = SourceDir }},
		{"s3 without bucket", func(c *Config) { c.Assets.Source = SourceS3 }},
		{"http without url", func(c *Config) { c.Assets.BaseURL = "" }},
		{"empty set", func(c *Config) { c.Assets.Set = "" }},
		{"zero rate", func(c *Config) { c.Audio.SampleRate = 0 }},
		{"three channels", func(c *Config) { c.Audio.Channels = 3 }},
		{"silent gain", func(c *Config) { c.Audio.Gain = 0 }},
		{"loud gain", func(c *Config) { c.Audio.Gain = 1.5 }},
		{"bad override", func(c *Config) { c.Clock.Override = "25:00:00" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base()
			tt.mutate(&cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}
