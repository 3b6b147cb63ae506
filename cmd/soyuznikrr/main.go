package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	clientcmd "github.com/engels74/soyuznikrr/internal/cmd/client"
	serverrun "github.com/engels74/soyuznikrr/internal/cmd/server"
	"github.com/spf13/cobra"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "soyuznikrr",
		Short: "soyuznikrr admin backend CLI",
		Long:  "soyuznikrr is a single-binary admin backend. This CLI manages the server and the log bus.",
	}

	// server start
	serverCmd := &cobra.Command{Use: "server", Short: "Server commands"}
	serverStartCmd := &cobra.Command{
		Use:     "start",
		Short:   "Start the soyuznikrr server (HTTP API + SSE log stream)",
		Aliases: []string{"run"},
		RunE: func(cmd *cobra.Command, args []string) error {
			configPath, _ := cmd.Flags().GetString("config")
			httpAddr, _ := cmd.Flags().GetString("http")
			logLevel, _ := cmd.Flags().GetString("log-level")
			logFormat, _ := cmd.Flags().GetString("log-format")
			bufCap, _ := cmd.Flags().GetInt("log-buffer")

			ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer cancel()

			if err := serverrun.Run(ctx, serverrun.Options{
				ConfigPath:     configPath,
				HTTPAddr:       httpAddr,
				LogLevel:       logLevel,
				LogFormat:      logFormat,
				BufferCapacity: bufCap,
			}); err != nil {
				return fmt.Errorf("server error: %w", err)
			}
			return nil
		},
	}
	serverStartCmd.Flags().String("config", os.Getenv("SOYUZNIKRR_CONFIG"), "Path to YAML config file")
	serverStartCmd.Flags().String("http", "", "HTTP listen address (default :8248)")
	serverStartCmd.Flags().String("log-level", os.Getenv("SOYUZNIKRR_LOG_LEVEL"), "Log level: debug|info|warn|error")
	serverStartCmd.Flags().String("log-format", os.Getenv("SOYUZNIKRR_LOG_FORMAT"), "Log format: console|json (default json)")
	serverStartCmd.Flags().Int("log-buffer", 0, "Log buffer capacity (default 5000)")
	serverCmd.AddCommand(serverStartCmd)
	rootCmd.AddCommand(serverCmd)

	// logs commands (tail, list)
	rootCmd.AddCommand(clientcmd.NewLogsCommand(apiURL))

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func apiURL() string {
	if v := os.Getenv("SOYUZNIKRR_HTTP"); v != "" {
		return v
	}
	return "http://127.0.0.1:8248"
}
