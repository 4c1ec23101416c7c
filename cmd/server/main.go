package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/andrewwbaranoff-ship-it/akbserver/internal/app"
	"github.com/andrewwbaranoff-ship-it/akbserver/internal/config"
	"github.com/andrewwbaranoff-ship-it/akbserver/internal/log"
)

var (
	flagConfigPath  string
	flagAddr        string
	flagLogLevel    string
	flagRequireAuth bool
)

var rootCmd = &cobra.Command{
	Use:   "akbserver",
	Short: "Meeting signaling server",
	Long:  "akbserver hosts meeting rooms and relays WebRTC signaling and chat between participants over WebSocket.",
	RunE:  runServer,
}

func init() {
	rootCmd.Flags().StringVarP(&flagConfigPath, "config", "c", "", "path to config file")
	rootCmd.Flags().StringVar(&flagAddr, "addr", "", "HTTP listen address")
	rootCmd.Flags().StringVar(&flagLogLevel, "log-level", "", "log level (trace, debug, info, warn, error)")
	rootCmd.Flags().BoolVar(&flagRequireAuth, "require-auth", false, "require a valid token to create or join rooms")
}

func runServer(cmd *cobra.Command, _ []string) error {
	bootLog := log.New("info")

	cfg, configPath, err := config.Load(bootLog, flagConfigPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	// Flags win over file and environment.
	if cmd.Flags().Changed("addr") {
		cfg.Addr = flagAddr
	}
	if cmd.Flags().Changed("log-level") {
		cfg.LogLevel = flagLogLevel
	}
	if cmd.Flags().Changed("require-auth") {
		cfg.RequireAuth = flagRequireAuth
	}

	logger := log.New(cfg.LogLevel)
	logger.Info().Str("config", configPath).Str("addr", cfg.Addr).Bool("require_auth", cfg.RequireAuth).Msg("starting akbserver")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	application, err := app.New(cfg, logger)
	if err != nil {
		return fmt.Errorf("init app: %w", err)
	}

	if err := application.Run(ctx); err != nil {
		return fmt.Errorf("server exited: %w", err)
	}

	logger.Info().Msg("server stopped")
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
