// ABOUTME: Component construction from configuration
// ABOUTME: Builds loggers, asset fetchers and the output format for the commands
package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/rs/zerolog"
	"github.com/spf13/viper"

	"github.com/harperreed/crossing-radio/internal/assets"
	"github.com/harperreed/crossing-radio/internal/config"
	"github.com/harperreed/crossing-radio/internal/logging"
	"github.com/harperreed/crossing-radio/pkg/audio"
)

func loadConfig(v *viper.Viper) (*config.Config, error) {
	cfg, err := config.Load(v)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}

// setupLogging logs to the file only while the TUI owns the terminal
func setupLogging(cfg *config.Config, tui bool) (zerolog.Logger, io.Closer, error) {
	return logging.Setup(logging.Options{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		File:   cfg.Log.File,
		Stdout: !tui,
	})
}

func newResolver(cfg *config.Config) assets.Resolver {
	return assets.Resolver{Set: cfg.Assets.Set, Ext: cfg.Assets.Ext}
}

func newFetcher(ctx context.Context, cfg *config.Config) (assets.Fetcher, error) {
	var f assets.Fetcher
	switch cfg.Assets.Source {
	case config.SourceHTTP:
		f = assets.NewHTTPFetcher(cfg.Assets.BaseURL)
	case config.SourceDir:
		f = assets.NewDirFetcher(cfg.Assets.Dir)
	case config.SourceS3:
		s3f, err := assets.NewS3Fetcher(ctx, assets.S3Config{
			Bucket:   cfg.Assets.Bucket,
			Prefix:   cfg.Assets.Prefix,
			Region:   cfg.Assets.Region,
			Endpoint: cfg.Assets.Endpoint,
		})
		if err != nil {
			return nil, err
		}
		f = s3f
	default:
		return nil, fmt.Errorf("unknown asset source %q", cfg.Assets.Source)
	}
	return assets.WithTimeout(f, cfg.Assets.FetchTimeout), nil
}

func outputFormat(cfg *config.Config) audio.Format {
	return audio.Format{
		Codec:      "pcm",
		SampleRate: cfg.Audio.SampleRate,
		Channels:   cfg.Audio.Channels,
		BitDepth:   16,
	}
}
