package main

import (
	"context"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/jackzampolin/veridoc/internal/config"
	"github.com/jackzampolin/veridoc/internal/providers"
	"github.com/jackzampolin/veridoc/internal/server"
)

var (
	serveHost string
	servePort string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the Veridoc server",
	Long: `Start the Veridoc HTTP server.

The server provides:
  - /health      - Basic server health check
  - /status      - Uptime and configured providers
  - /v1/extract  - Document extraction (multipart upload or JSON url/path)

Configuration is hot-reloaded: edits to the config file re-register
providers without a restart.

Examples:
  veridoc serve                    # Start on the configured port
  veridoc serve --port 3000        # Start on a custom port
  veridoc serve --host 0.0.0.0     # Bind to all interfaces`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		// Set up logger
		logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		}))

		mgr, err := config.NewManager(cfgFile)
		if err != nil {
			return err
		}
		cfg := mgr.Get()

		reg := providers.NewRegistryFromConfig(cfg.ToProviderRegistryConfig())
		reg.SetLogger(logger)
		mgr.OnChange(func(c *config.Config) {
			reg.Reload(c.ToProviderRegistryConfig())
		})
		mgr.WatchConfig()

		rt, err := buildRuntime(cfg, reg, logger)
		if err != nil {
			return err
		}

		host := serveHost
		if host == "" {
			host = cfg.Server.Host
		}
		port := servePort
		if port == "" {
			port = strconv.Itoa(cfg.Server.Port)
		}

		srv, err := server.New(server.Config{
			Host:     host,
			Port:     port,
			Pipeline: rt.pipe,
			Engine:   rt.engine,
			Resolver: rt.resolver,
			Logger:   logger,
		})
		if err != nil {
			return err
		}

		if err := srv.Start(); err != nil {
			return err
		}
		logger.Info("server listening", "addr", srv.Addr())

		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveHost, "host", "", "Host to bind to (default: from config)")
	serveCmd.Flags().StringVar(&servePort, "port", "", "Port to listen on (default: from config)")

	rootCmd.AddCommand(serveCmd)
}
