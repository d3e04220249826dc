// ABOUTME: The preload command
// ABOUTME: Loads all 24 hours and reports which segments are available
package cli

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/sync/errgroup"

	"github.com/harperreed/crossing-radio/internal/cache"
	"github.com/harperreed/crossing-radio/internal/clock"
	"github.com/harperreed/crossing-radio/internal/metrics"
)

func newPreloadCommand(v *viper.Viper) *cobra.Command {
	var parallel int

	cmd := &cobra.Command{
		Use:   "preload",
		Short: "Fetch and decode every hour to verify the music set",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(v)
			if err != nil {
				return err
			}
			logger, closer, err := setupLogging(cfg, false)
			if err != nil {
				return err
			}
			defer closer.Close()

			fetcher, err := newFetcher(cmd.Context(), cfg)
			if err != nil {
				return err
			}

			c := cache.New(fetcher, newResolver(cfg), logger, metrics.New())
			if err := c.Attach(outputFormat(cfg)); err != nil {
				return err
			}
			return preloadAll(cmd.Context(), c, parallel, cmd.OutOrStdout(), logger)
		},
	}

	cmd.Flags().IntVar(&parallel, "parallel", 4, "Hours loaded at once")
	return cmd
}

// preloadAll loads every hour and prints one row per hour.
// It fails if any hour has no usable loop.
func preloadAll(ctx context.Context, c *cache.Cache, parallel int, w io.Writer, logger zerolog.Logger) error {
	if parallel < 1 {
		parallel = 1
	}

	errs := make([]error, clock.HoursPerDay)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(parallel)
	for h := clock.Hour(0); h < clock.HoursPerDay; h++ {
		h := h
		g.Go(func() error {
			errs[h] = c.Preload(gctx, h)
			return nil
		})
	}
	_ = g.Wait()

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "HOUR\tLABEL\tSTART\tLOOP")

	missing := 0
	for h := clock.Hour(0); h < clock.HoursPerDay; h++ {
		pair, ok := c.Get(h)
		if !ok {
			missing++
			logger.Debug().Err(errs[h]).Int("hour", int(h)).Msg("Hour unavailable")
			fmt.Fprintf(tw, "%d\t%s\t-\tmissing\n", int(h), clock.Label(h))
			continue
		}

		start := "-"
		if pair.Start != nil {
			start = fmt.Sprintf("%.1fs", pair.Start.Duration())
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%.1fs\n", int(h), clock.Label(h), start, pair.Loop.Duration())
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	if missing > 0 {
		return fmt.Errorf("%d of %d hours have no loop segment", missing, clock.HoursPerDay)
	}
	return nil
}
