package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/pinlive-server/internal/app"
	"github.com/vovakirdan/pinlive-server/internal/config"
	applog "github.com/vovakirdan/pinlive-server/internal/log"
)

var (
	configFile string
	addrFlag   string
	logLevel   string
	logFormat  string
)

// rootCmd runs the real-time server.
var rootCmd = &cobra.Command{
	Use:           "pinlive",
	Short:         "Real-time presence and event fanout server",
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		bootLogger := applog.New(logLevel, logFormat)

		cfg, cfgPath, err := config.Load(bootLogger, configFile)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		cfg.UpdateFrom(config.Config{Addr: addrFlag, LogLevel: logLevel, LogFormat: logFormat})

		logger := applog.New(cfg.LogLevel, cfg.LogFormat)
		logger.Info().Str("config", cfgPath).Msg("config loaded")

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		application, err := app.New(&cfg, logger)
		if err != nil {
			return err
		}
		if err := application.Run(ctx); err != nil {
			return fmt.Errorf("server exited with error: %w", err)
		}
		logger.Info().Msg("server stopped")
		return nil
	},
}

func init() {
	rootCmd.Flags().StringVar(&configFile, "config", "", "path to config.yaml")
	rootCmd.Flags().StringVar(&addrFlag, "addr", "", "HTTP listen address (overrides config)")
	rootCmd.Flags().StringVar(&logLevel, "log-level", "", "log level: trace, debug, info, warn, error")
	rootCmd.Flags().StringVar(&logFormat, "log-format", "", "log format: console or json")
}
