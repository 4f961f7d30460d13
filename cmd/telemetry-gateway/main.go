// Command telemetry-gateway serves the normalized telemetry API in front of
// the temperature API.
//
// Usage:
//
//	telemetry-gateway [--config FILE] [--host HOST] [--port PORT] [--provider-url URL]
//	telemetry-gateway probe [--provider-url URL]
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	httpapi "github.com/i474232898/telemetry-gateway/internal/api/http"
	"github.com/i474232898/telemetry-gateway/internal/config"
	"github.com/i474232898/telemetry-gateway/internal/logging"
	"github.com/i474232898/telemetry-gateway/internal/scheduler"
	"github.com/i474232898/telemetry-gateway/internal/store"
	"github.com/i474232898/telemetry-gateway/internal/telemetry"
	"github.com/i474232898/telemetry-gateway/internal/telemetry/providers"
)

// version is set through ldflags at build time.
var version = "dev"

// cliFlags holds values that override the loaded configuration when set.
type cliFlags struct {
	config      string
	host        string
	port        string
	providerURL string
	logLevel    string
}

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var f cliFlags

	rootCmd := &cobra.Command{
		Use:           "telemetry-gateway",
		Short:         "Normalized telemetry API in front of the temperature API",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd, f)
			if err != nil {
				return err
			}
			return serve(cmd.Context(), cfg)
		},
	}

	rootCmd.PersistentFlags().StringVarP(&f.config, "config", "c", "", "Path to configuration file (YAML)")
	rootCmd.PersistentFlags().StringVar(&f.providerURL, "provider-url", "", "Base URL of the temperature API")
	rootCmd.PersistentFlags().StringVarP(&f.logLevel, "log-level", "l", "", "Log level (DEBUG, INFO, WARN, ERROR)")
	rootCmd.Flags().StringVar(&f.host, "host", "", "Interface to bind")
	rootCmd.Flags().StringVarP(&f.port, "port", "p", "", "Port to listen on")

	rootCmd.AddCommand(newProbeCmd(&f))
	return rootCmd
}

func newProbeCmd(f *cliFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "probe",
		Short: "Check once whether the temperature API is reachable",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd, *f)
			if err != nil {
				return err
			}
			logging.Setup(cfg.LogLevel, cfg.LogFormat)

			ctx, cancel := context.WithTimeout(cmd.Context(), cfg.ProviderTimeout)
			defer cancel()

			status := newProvider(cfg).Probe(ctx)

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			if err := enc.Encode(status); err != nil {
				return err
			}
			if !status.Reachable {
				return fmt.Errorf("provider %s unreachable: %s", status.Provider, status.Error)
			}
			return nil
		},
	}
}

// loadConfig loads file and environment configuration, then applies flags
// that were set explicitly.
func loadConfig(cmd *cobra.Command, f cliFlags) (*config.AppConfig, error) {
	cfg, err := config.Load(f.config)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	flags := cmd.Flags()
	if flags.Changed("provider-url") {
		cfg.ProviderURL = f.providerURL
	}
	if flags.Changed("log-level") {
		cfg.LogLevel = f.logLevel
	}
	if flags.Changed("host") {
		cfg.Host = f.host
	}
	if flags.Changed("port") {
		cfg.Port = f.port
	}
	return cfg, nil
}

func newProvider(cfg *config.AppConfig) *providers.TemperatureProvider {
	// Shared HTTP client for outbound provider calls.
	httpClient := providers.NewHTTPClient(cfg.ProviderTimeout)

	return providers.NewTemperatureProvider(httpClient, cfg.ProviderURL, providers.BreakerConfig{
		FailureThreshold: cfg.BreakerFailureThreshold,
		OpenTimeout:      cfg.BreakerOpenTimeout,
	})
}

func serve(ctx context.Context, cfg *config.AppConfig) error {
	logger := logging.Setup(cfg.LogLevel, cfg.LogFormat)
	logger.Info("starting telemetry-gateway", "version", version)

	if cfg.ProviderURL == "" {
		logger.Warn("TEMPERATURE_API_URL is not set; every provider call will fail")
	}

	provider := newProvider(cfg)
	service := telemetry.NewService(provider)

	// Probe results with configured retention.
	statusStore := store.NewMemoryStore(cfg.ProbeHistory, cfg.ProbeMaxAge)

	sched := scheduler.New(provider, statusStore, cfg.ProbeInterval, logger)
	if err := sched.Start(); err != nil {
		return fmt.Errorf("failed to start scheduler: %w", err)
	}
	defer sched.Stop()

	app := httpapi.NewApp(httpapi.Options{
		Service:      service,
		Statuses:     statusStore,
		Logger:       logger,
		AccessLog:    os.Stdout,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	})

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", "addr", cfg.Addr(), "provider_url", cfg.ProviderURL)
		errCh <- app.Listen(cfg.Addr())
	}()

	// Wait for termination signal
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	select {
	case err := <-errCh:
		return fmt.Errorf("server stopped: %w", err)
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		logger.Error("error during shutdown", "error", err)
	}
	logger.Info("stopped")
	return nil
}
