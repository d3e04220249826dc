// ABOUTME: Player configuration
// ABOUTME: Loaded by viper from defaults, an optional config.yaml and CROSSING_* environment variables
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/harperreed/crossing-radio/internal/clock"
)

// EnvPrefix prefixes every environment variable, e.g. CROSSING_ASSETS_BASE_URL
const EnvPrefix = "CROSSING"

// Asset sources
const (
	SourceHTTP = "http"
	SourceDir  = "dir"
	SourceS3   = "s3"
)

// Config holds all player settings
type Config struct {
	Assets struct {
		Source       string        `mapstructure:"source"`
		BaseURL      string        `mapstructure:"base_url"`
		Dir          string        `mapstructure:"dir"`
		Bucket       string        `mapstructure:"bucket"`
		Prefix       string        `mapstructure:"prefix"`
		Region       string        `mapstructure:"region"`
		Endpoint     string        `mapstructure:"endpoint"`
		Set          string        `mapstructure:"set"`
		Ext          string        `mapstructure:"ext"`
		FetchTimeout time.Duration `mapstructure:"fetch_timeout"`
	} `mapstructure:"assets"`
	Audio struct {
		SampleRate int     `mapstructure:"sample_rate"`
		Channels   int     `mapstructure:"channels"`
		Gain       float64 `mapstructure:"gain"`
	} `mapstructure:"audio"`
	Clock struct {
		Override string `mapstructure:"override"`
	} `mapstructure:"clock"`
	NowPlaying struct {
		Addr      string `mapstructure:"addr"`
		Advertise bool   `mapstructure:"advertise"`
		Name      string `mapstructure:"name"`
		Artist    string `mapstructure:"artist"`
	} `mapstructure:"nowplaying"`
	Log struct {
		Level  string `mapstructure:"level"`
		Format string `mapstructure:"format"`
		File   string `mapstructure:"file"`
	} `mapstructure:"log"`
	UI struct {
		Enabled bool `mapstructure:"enabled"`
	} `mapstructure:"ui"`
}

// SetDefaults registers every key with its default value
func SetDefaults(v *viper.Viper) {
	v.SetDefault("assets.source", SourceHTTP)
	v.SetDefault("assets.base_url", "https://acmusicext.com/static")
	v.SetDefault("assets.dir", "")
	v.SetDefault("assets.bucket", "")
	v.SetDefault("assets.prefix", "")
	v.SetDefault("assets.region", "")
	v.SetDefault("assets.endpoint", "")
	v.SetDefault("assets.set", "nl")
	v.SetDefault("assets.ext", "mp3")
	v.SetDefault("assets.fetch_timeout", 30*time.Second)

	v.SetDefault("audio.sample_rate", 44100)
	v.SetDefault("audio.channels", 2)
	v.SetDefault("audio.gain", 0.5)

	v.SetDefault("clock.override", "")

	v.SetDefault("nowplaying.addr", "")
	v.SetDefault("nowplaying.advertise", false)
	v.SetDefault("nowplaying.name", "Crossing Radio")
	v.SetDefault("nowplaying.artist", "")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
	v.SetDefault("log.file", "crossing-radio.log")

	v.SetDefault("ui.enabled", true)
}

// New returns a viper instance reading defaults, env and an optional config file
func New() *viper.Viper {
	v := viper.New()
	SetDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("$HOME/.crossing-radio")
	return v
}

// Load reads the config file if present and decodes all settings.
// A missing config file is not an error.
func Load(v *viper.Viper) (*Config, error) {
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects settings the player cannot run with
func (c *Config) Validate() error {
	switch c.Assets.Source {
	case SourceHTTP:
		if c.Assets.BaseURL == "" {
			return errors.New("assets.base_url is required for the http source")
		}
	case SourceDir:
		if c.Assets.Dir == "" {
			return errors.New("assets.dir is required for the dir source")
		}
	case SourceS3:
		if c.Assets.Bucket == "" {
			return errors.New("assets.bucket is required for the s3 source")
		}
	default:
		return fmt.Errorf("unknown assets.source %q (want http, dir or s3)", c.Assets.Source)
	}

	if c.Assets.Set == "" || c.Assets.Ext == "" {
		return errors.New("assets.set and assets.ext must not be empty")
	}
	if c.Audio.SampleRate <= 0 {
		return fmt.Errorf("audio.sample_rate must be positive, got %d", c.Audio.SampleRate)
	}
	if c.Audio.Channels < 1 || c.Audio.Channels > 2 {
		return fmt.Errorf("audio.channels must be 1 or 2, got %d", c.Audio.Channels)
	}
	if c.Audio.Gain <= 0 || c.Audio.Gain > 1 {
		return fmt.Errorf("audio.gain must be in (0, 1], got %v", c.Audio.Gain)
	}
	if c.Clock.Override != "" {
		if _, err := clock.ParseOverride(c.Clock.Override, time.Now()); err != nil {
			return fmt.Errorf("clock.override: %w", err)
		}
	}
	return nil
}
