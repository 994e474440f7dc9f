package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/ibaimoya/sockchat/internal/app"
	"github.com/ibaimoya/sockchat/internal/config"
	"github.com/ibaimoya/sockchat/internal/log"
)

func main() {
	var (
		configPath string
		logLevel   string
		statusAddr string
		auditDB    string
	)

	root := &cobra.Command{
		Use:          "sockchat-server [port]",
		Short:        "Line-protocol TCP chat server",
		Args:         cobra.MaximumNArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			bootstrap := log.New(logLevel)

			cfg, path, err := config.Load(bootstrap, configPath)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}

			if len(args) == 1 {
				port, err := strconv.Atoi(args[0])
				if err != nil || port <= 0 || port > 65535 {
					return fmt.Errorf("invalid port %q", args[0])
				}
				cfg.Addr = fmt.Sprintf(":%d", port)
			}
			if cmd.Flags().Changed("log-level") {
				cfg.LogLevel = logLevel
			}
			if cmd.Flags().Changed("status-addr") {
				cfg.StatusAddr = statusAddr
			}
			if cmd.Flags().Changed("audit-db") {
				cfg.AuditDBPath = auditDB
			}

			logger := log.New(cfg.LogLevel)
			logger.Info().Str("config", path).Str("addr", cfg.Addr).Msg("starting sockchat server")

			application, err := app.New(cfg, logger)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return application.Run(ctx)
		},
	}

	root.Flags().StringVar(&configPath, "config", "", "path to config file")
	root.Flags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	root.Flags().StringVar(&statusAddr, "status-addr", "", "HTTP status endpoint address (empty = disabled)")
	root.Flags().StringVar(&auditDB, "audit-db", "", "SQLite audit log path (empty = disabled)")

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}
