// ABOUTME: The play command
// ABOUTME: Opens audio output, starts the session and optionally the TUI, hub and mDNS
package cli

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/harperreed/crossing-radio/internal/app"
	"github.com/harperreed/crossing-radio/internal/cache"
	"github.com/harperreed/crossing-radio/internal/clock"
	"github.com/harperreed/crossing-radio/internal/config"
	"github.com/harperreed/crossing-radio/internal/discovery"
	"github.com/harperreed/crossing-radio/internal/metrics"
	"github.com/harperreed/crossing-radio/internal/nowplaying"
	"github.com/harperreed/crossing-radio/internal/ui"
	"github.com/harperreed/crossing-radio/internal/version"
	"github.com/harperreed/crossing-radio/pkg/audio/output"
)

func newPlayCommand(v *viper.Viper) *cobra.Command {
	var autoplay bool

	cmd := &cobra.Command{
		Use:   "play",
		Short: "Play the music of the current hour",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPlay(cmd.Context(), v, autoplay)
		},
	}

	flags := cmd.Flags()
	flags.BoolVar(&autoplay, "autoplay", false, "Start playing immediately")
	flags.Bool("tui", true, "Show the clock TUI (logs go to the log file only)")
	flags.Float64("gain", 0.5, "Output gain in (0, 1]")
	flags.Int("sample-rate", 44100, "Output sample rate")
	flags.String("nowplaying-addr", "", "Serve now-playing WebSocket and metrics on this address, e.g. :8930")
	flags.Bool("advertise", false, "Advertise the now-playing hub over mDNS")
	flags.String("name", "Crossing Radio", "Name advertised over mDNS")
	flags.String("artist", "", "Artist reported to now-playing observers")
	return cmd
}

func runPlay(parent context.Context, v *viper.Viper, autoplay bool) error {
	cfg, err := loadConfig(v)
	if err != nil {
		return err
	}

	logger, closer, err := setupLogging(cfg, cfg.UI.Enabled)
	if err != nil {
		return err
	}
	defer closer.Close()

	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info().Str("version", version.Version).Str("set", cfg.Assets.Set).Str("source", cfg.Assets.Source).Msg("Starting Crossing Radio")

	src, err := clock.New(cfg.Clock.Override, nil)
	if err != nil {
		return err
	}
	if cfg.Clock.Override != "" {
		logger.Warn().Str("override", cfg.Clock.Override).Msg("Using synthetic clock")
	}

	fetcher, err := newFetcher(ctx, cfg)
	if err != nil {
		return err
	}

	format := outputFormat(cfg)
	out := output.NewOto(logger)
	if err := out.Open(format); err != nil {
		return fmt.Errorf("open audio output: %w", err)
	}
	defer out.Close()
	out.SetGain(cfg.Audio.Gain)

	m := metrics.New()
	segments := cache.New(fetcher, newResolver(cfg), logger, m)
	if err := segments.Attach(format); err != nil {
		return err
	}

	observers := nowplaying.NewMulti(logger, nowplaying.LogObserver{Logger: logger})
	if cfg.NowPlaying.Addr != "" {
		stopHub, err := startHub(ctx, cfg, logger, m, observers)
		if err != nil {
			return err
		}
		defer stopHub()
	}

	session := app.New(app.Config{
		Clock:    src,
		Output:   out,
		Cache:    segments,
		Observer: observers,
		Metrics:  m,
		Logger:   logger,
		Artist:   cfg.NowPlaying.Artist,
	})
	session.Open(ctx)

	if autoplay {
		if err := session.Start(ctx); err != nil {
			logger.Error().Err(err).Msg("Autoplay failed")
		}
	}

	if !cfg.UI.Enabled {
		err := session.Run(ctx)
		logger.Info().Msg("Crossing Radio stopped")
		return err
	}

	return runWithTUI(ctx, session)
}

// runWithTUI runs the session loop alongside the TUI until either ends
func runWithTUI(ctx context.Context, session *app.Session) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	snapshots, unsubscribe := session.Subscribe()
	defer unsubscribe()

	done := make(chan error, 1)
	go func() { done <- session.Run(ctx) }()

	_, err := ui.New(ctx, session, snapshots).Run()
	cancel()
	runErr := <-done

	if err != nil && !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("TUI error: %w", err)
	}
	return runErr
}

func startHub(ctx context.Context, cfg *config.Config, logger zerolog.Logger, m *metrics.Metrics, observers *nowplaying.Multi) (func(), error) {
	ln, err := net.Listen("tcp", cfg.NowPlaying.Addr)
	if err != nil {
		return nil, fmt.Errorf("listen on %s: %w", cfg.NowPlaying.Addr, err)
	}

	hub := nowplaying.NewHub(logger, m)
	observers.Add(hub)

	hubCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	go func() {
		defer close(done)
		if err := hub.Serve(hubCtx, ln); err != nil {
			logger.Error().Err(err).Msg("Now-playing hub failed")
		}
	}()

	var adv *discovery.Advertiser
	if cfg.NowPlaying.Advertise {
		adv = discovery.NewAdvertiser(discovery.Config{
			ServiceName: cfg.NowPlaying.Name,
			Port:        ln.Addr().(*net.TCPAddr).Port,
			Session:     hub.Session(),
		}, logger)
		if err := adv.Start(); err != nil {
			logger.Warn().Err(err).Msg("Failed to start mDNS advertisement")
			adv = nil
		}
	}

	return func() {
		if adv != nil {
			adv.Stop()
		}
		cancel()
		<-done
	}, nil
}
