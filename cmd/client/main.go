package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/ibaimoya/sockchat/internal/client"
	"github.com/ibaimoya/sockchat/internal/config"
	"github.com/ibaimoya/sockchat/internal/log"
)

const defaultUsername = "Usuario"

func main() {
	var logLevel string

	root := &cobra.Command{
		Use:          "sockchat-client [host port username]",
		Short:        "Companion client for the sockchat server",
		SilenceUsage: false,
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) != 0 && len(args) != 3 {
				return fmt.Errorf("accepts no arguments or exactly three (host port username), received %d", len(args))
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			host := "localhost"
			port := config.DefaultPort
			username := defaultUsername

			if len(args) == 3 {
				host = args[0]
				p, err := strconv.Atoi(args[1])
				if err != nil || p <= 0 || p > 65535 {
					return fmt.Errorf("invalid port %q", args[1])
				}
				port = p
				username = args[2]
			}

			logger := log.New(logLevel)

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return client.New(host, port, username, logger).Run(ctx)
		},
	}

	// Chat output owns stdout, so client logs stay quiet by default.
	root.Flags().StringVar(&logLevel, "log-level", "warn", "log level (debug, info, warn, error)")

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}
