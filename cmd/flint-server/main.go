// flint-server serves the flint search engine over HTTP.
//
// Usage:
//
//	flint-server                       # listen on 127.0.0.1:3000
//	flint-server --port 8080
//	flint-server --config flint.yaml
//
// Configuration resolves as defaults < YAML file < environment (PORT,
// HOST, METRICS_ENABLED, RATE_LIMIT_PER_MINUTE) < flags.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/RaphScript0/flint"
	"github.com/RaphScript0/flint/pkg/config"
	"github.com/RaphScript0/flint/pkg/server"
)

var (
	flagConfig string
	flagHost   string
	flagPort   int
)

var rootCmd = &cobra.Command{
	Use:   "flint-server",
	Short: "In-memory full-text search engine with an HTTP API",
	Long: `flint-server hosts an in-memory inverted index with TF-IDF ranking
and prefix typeahead behind a small JSON API:

  POST /documents   bulk-ingest documents
  POST /search      ranked full-text or prefix search
  GET  /health      liveness and corpus size
  GET  /metrics     Prometheus metrics (when enabled)`,
	SilenceUsage: true,
	RunE:         run,
}

func init() {
	rootCmd.Flags().StringVar(&flagConfig, "config", "", "path to YAML config file")
	rootCmd.Flags().StringVar(&flagHost, "host", "", "listen address (overrides config)")
	rootCmd.Flags().IntVar(&flagPort, "port", 0, "listen port (overrides config)")
}

func run(cmd *cobra.Command, args []string) error {
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, nil)))

	cfg, err := config.Load(flagConfig)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if cmd.Flags().Changed("host") {
		cfg.Host = flagHost
	}
	if cmd.Flags().Changed("port") {
		cfg.Port = flagPort
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	srv := server.New(cfg, flint.NewEngine())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Start() }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return <-errCh
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
