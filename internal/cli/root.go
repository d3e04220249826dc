// ABOUTME: Command line interface
// ABOUTME: Cobra root command with flags bound into viper configuration
package cli

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/harperreed/crossing-radio/internal/config"
)

// flagKeys maps flag names to configuration keys
var flagKeys = map[string]string{
	"log-level":       "log.level",
	"log-format":      "log.format",
	"log-file":        "log.file",
	"source":          "assets.source",
	"base-url":        "assets.base_url",
	"dir":             "assets.dir",
	"bucket":          "assets.bucket",
	"prefix":          "assets.prefix",
	"region":          "assets.region",
	"endpoint":        "assets.endpoint",
	"set":             "assets.set",
	"ext":             "assets.ext",
	"fetch-timeout":   "assets.fetch_timeout",
	"time":            "clock.override",
	"gain":            "audio.gain",
	"sample-rate":     "audio.sample_rate",
	"nowplaying-addr": "nowplaying.addr",
	"advertise":       "nowplaying.advertise",
	"name":            "nowplaying.name",
	"artist":          "nowplaying.artist",
	"tui":             "ui.enabled",
}

// NewRootCommand builds the command tree. Running it without a
// subcommand plays.
func NewRootCommand() *cobra.Command {
	v := config.New()
	var configFile string

	root := &cobra.Command{
		Use:           "crossing-radio",
		Short:         "Hourly ambient music that follows the clock",
		Long:          "Crossing Radio plays a different looping tune for every hour of the day, joining mid-hour at the right point and switching on the hour.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if configFile != "" {
				v.SetConfigFile(configFile)
			}
			return nil
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&configFile, "config", "", "Config file (default ./config.yaml or $HOME/.crossing-radio/config.yaml)")
	flags.String("log-level", "info", "Log level (debug, info, warn, error)")
	flags.String("log-format", "console", "Log format (console, json)")
	flags.String("log-file", "crossing-radio.log", "Log file path")
	flags.String("source", config.SourceHTTP, "Asset source (http, dir, s3)")
	flags.String("base-url", "", "Base URL for the http source")
	flags.String("dir", "", "Root directory for the dir source")
	flags.String("bucket", "", "Bucket for the s3 source")
	flags.String("prefix", "", "Key prefix for the s3 source")
	flags.String("region", "", "Region for the s3 source")
	flags.String("endpoint", "", "Custom endpoint for S3-compatible storage")
	flags.String("set", "nl", "Music set")
	flags.String("ext", "mp3", "Audio file extension (mp3, flac)")
	flags.Duration("fetch-timeout", 0, "Per-file fetch timeout (default 30s)")
	flags.String("time", "", "Pretend the clock reads HH:MM:SS and advance from there")

	play := newPlayCommand(v)
	root.Flags().AddFlagSet(play.Flags())
	root.RunE = play.RunE

	root.AddCommand(play, newPreloadCommand(v), newVersionCommand())

	bindFlags(v, root)
	return root
}

// bindFlags binds every known flag of cmd and its children into v.
// Only flags the user set override config and environment.
func bindFlags(v *viper.Viper, cmd *cobra.Command) {
	for name, key := range flagKeys {
		if f := cmd.PersistentFlags().Lookup(name); f != nil {
			_ = v.BindPFlag(key, f)
		}
		if f := cmd.Flags().Lookup(name); f != nil {
			_ = v.BindPFlag(key, f)
		}
	}
	for _, child := range cmd.Commands() {
		bindFlags(v, child)
	}
}

// Execute runs the command line
func Execute() error {
	return NewRootCommand().Execute()
}
