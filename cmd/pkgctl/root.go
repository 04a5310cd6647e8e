package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/conn-castle/pkgctl/internal/config"
	"github.com/conn-castle/pkgctl/internal/logging"
	"github.com/conn-castle/pkgctl/internal/messages"
)

const (
	flagConfig  = "config"
	flagVerbose = "verbose"
)

// rootOptions holds the persistent flags shared by every subcommand.
type rootOptions struct {
	configPath string
	verbose    bool
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:           messages.RootUse,
		Short:         messages.RootShort,
		Long:          messages.RootLong,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}
	cmd.Flags().Bool("version", false, messages.RootVersionFlag)
	cmd.PersistentFlags().StringVar(&opts.configPath, flagConfig, "", messages.RootFlagConfig)
	cmd.PersistentFlags().BoolVarP(&opts.verbose, flagVerbose, "v", false, messages.RootFlagVerbose)

	cmd.AddCommand(
		newPkgAddCmd(opts),
		newPkgRemoveCmd(opts),
	)
	return cmd
}

// app is the loaded configuration and logger for one invocation.
type app struct {
	cfg *config.Config
	log *zap.Logger
}

// loadApp reads the config and installs the process logger on cmd's stderr.
func loadApp(cmd *cobra.Command, opts *rootOptions) (*app, error) {
	path, explicit := config.ResolvePath(opts.configPath)
	cfg, err := config.Load(path, explicit)
	if err != nil {
		return nil, err
	}
	level := cfg.Log.Level
	if opts.verbose {
		level = "debug"
	}
	log := logging.Init(logging.Config{Level: level, Format: cfg.Log.Format, Version: Version}, cmd.ErrOrStderr())
	log.Debug("loaded config",
		zap.String("path", path),
		zap.String("transport", cfg.Service.Transport),
		zap.String("sysroot", cfg.System.Sysroot),
		zap.String("state_file", cfg.StatePath()),
	)
	return &app{cfg: cfg, log: log}, nil
}
