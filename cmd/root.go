package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/StinkyLord/rjs-builder/internal/config"
	"github.com/StinkyLord/rjs-builder/internal/project"
)

const toolVersion = "1.0.0"

var (
	flagConfig  string
	flagVerbose bool

	logger = zerolog.Nop()
)

var rootCmd = &cobra.Command{
	Use:     "rjs-builder",
	Short:   "RequireJS namespace mapper and r.js build driver",
	Version: toolVersion,
	Long: `rjs-builder maps script files under configured namespace roots to the
RequireJS module paths they are served under, generates the client
require.config() document and drives the r.js optimizer.

The project is described by a YAML file:
  base_dir    directory served as the module root
  paths       namespaces: local roots or external URLs
  shim        RequireJS shim configuration
  optimizer   r.js location, modules, excludes and build options`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level := zerolog.InfoLevel
		if flagVerbose {
			level = zerolog.DebugLevel
		}
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}).
			Level(level).
			With().Timestamp().Logger()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&flagConfig, "config", "c", "rjs.yml", "Path to the project configuration file")
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "Enable verbose output")
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// loadProject reads the configuration named by --config and wires it.
func loadProject() (*project.Project, error) {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return nil, fmt.Errorf("invalid configuration %q: %w", flagConfig, err)
	}

	logger.Debug().Str("config", flagConfig).Str("base_dir", cfg.BaseDir).Msg("configuration loaded")

	p, err := project.New(cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("cannot set up project: %w", err)
	}
	return p, nil
}
