package main

import (
	"context"
	"errors"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/tgo/chariott/internal/app"
	"github.com/tgo/chariott/internal/config"
	"github.com/tgo/chariott/internal/pkg/logger"
)

var (
	envFile string
	verbose bool

	cfg *config.Config
)

var rootCmd = &cobra.Command{
	Use:          "chariottctl",
	Short:        "Operate the Chariott document index",
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if envFile != "" {
			if err := godotenv.Load(envFile); err != nil {
				return err
			}
		}
		var err error
		if cfg, err = config.Load(); err != nil {
			return err
		}
		level := "warn"
		if verbose {
			level = "debug"
		}
		logger.SetupWriter(cmd.ErrOrStderr(), level, true)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", "", "load environment from this file first")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log debug output to stderr")
}

// withApp builds the full application for a command and closes it afterwards.
func withApp(ctx context.Context, fn func(*app.App) error) error {
	if cfg == nil {
		return errors.New("config not loaded")
	}
	a, err := app.New(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.Close()
	return fn(a)
}
