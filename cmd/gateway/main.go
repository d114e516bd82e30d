package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"archrelay/internal/gateway/app"
	"archrelay/internal/gateway/config"
)

// Version is set at build time with -ldflags.
var Version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var overrides config.Overrides

	root := &cobra.Command{
		Use:           "archrelay",
		Short:         "HTTP relay in front of the architecture-generation service",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(overrides)
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			return serve(app.New(cfg))
		},
	}
	root.Flags().StringVar(&overrides.Port, "port", "", "listen address, e.g. :8000 (env PORT)")
	root.Flags().StringVar(&overrides.UpstreamURL, "upstream-url", "", "architecture service endpoint (env ARCHITECTURE_SERVICE_URL)")
	root.Flags().StringVar(&overrides.UpstreamTimeout, "upstream-timeout", "", "upstream call timeout, e.g. 90s (env ARCHITECTURE_SERVICE_TIMEOUT)")
	root.Flags().StringVar(&overrides.CacheSize, "cache-size", "", "response cache entries, 0 disables (env ARCHITECTURE_CACHE_SIZE)")
	root.Flags().StringVar(&overrides.CacheTTL, "cache-ttl", "", "response cache ttl (env ARCHITECTURE_CACHE_TTL)")

	root.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "archrelay %s\n", Version)
		},
	})
	return root
}

func serve(a *app.App) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- a.Start()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-quit:
	}

	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := a.Shutdown(ctx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	log.Println("Server exiting")
	return nil
}
