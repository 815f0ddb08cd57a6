package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/MKhiriev/go-remote-config/internal/adapter"
	"github.com/MKhiriev/go-remote-config/internal/config"
	"github.com/MKhiriev/go-remote-config/internal/handler"
	"github.com/MKhiriev/go-remote-config/internal/logger"
	"github.com/MKhiriev/go-remote-config/internal/metrics"
	"github.com/MKhiriev/go-remote-config/internal/server"
	"github.com/MKhiriev/go-remote-config/internal/service"
	"github.com/MKhiriev/go-remote-config/internal/workers"
	"github.com/MKhiriev/go-remote-config/models"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
)

var (
	buildVersion string
	buildDate    string
	buildCommit  string
)

func main() {
	printBuildInfo()

	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	var flags *config.Flags

	cmd := &cobra.Command{
		Use:           "rcagent",
		Short:         "Remote configuration client",
		Version:       buildVersion,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return run(ctx, flags)
		},
	}

	flags = config.RegisterFlags(cmd.Flags())
	return cmd
}

func run(ctx context.Context, flags *config.Flags) error {
	log := logger.NewLogger("rcagent")

	cfg, err := config.GetStructuredConfig(flags)
	if err != nil {
		log.Error().Err(err).Msg("error getting configs")
		return err
	}

	log.Debug().Any("config", cfg).Msg("received configs")

	client, err := adapter.NewHTTPConfigClient(cfg.Adapter, log)
	if err != nil {
		log.Error().Err(err).Msg("error creating config client")
		return err
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	manager := service.NewSyncManager(client, service.NewConfig(cfg, buildVersion), log, service.WithMetrics(metrics.NewMetrics(reg)))
	for _, product := range cfg.RemoteConfig.Products {
		if err = manager.SetProductHandler(product, loggingHandler(log, product)); err != nil {
			return err
		}
	}

	services, err := service.NewServices(manager, models.NewAppBuildInfo(buildVersion, buildDate, buildCommit), log)
	if err != nil {
		log.Error().Err(err).Msg("error creating services")
		return err
	}

	w := workers.NewWorkers(manager)

	if cfg.Server.HTTPAddress == "" {
		log.Info().Msg("status server is disabled")
	} else {
		handlers, err := handler.NewHandlers(services, reg, cfg.Server, log)
		if err != nil {
			log.Error().Err(err).Msg("error creating handlers")
			return err
		}

		srv, err := server.NewServer(handlers, cfg.Server, log)
		if err != nil {
			log.Error().Err(err).Msg("error creating server")
			return err
		}
		w.Add(srv)
	}

	log.Info().Str("client_id", manager.Identity().ClientID).Msg("remote config client started")
	if err = w.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.Error().Err(err).Msg("remote config client stopped with error")
		return err
	}

	log.Info().Msg("remote config client stopped")
	return nil
}

// loggingHandler acknowledges every config of product after logging it.
func loggingHandler(log *logger.Logger, product string) service.ProductHandler {
	return service.SyncHandler(func(action service.Action, file []byte, id string) error {
		log.Info().
			Str("product", product).
			Str("action", string(action)).
			Str("id", id).
			Int("size", len(file)).
			Msg("config received")
		return nil
	})
}

func printBuildInfo() {
	if buildVersion == "" {
		buildVersion = "N/A"
	}

	if buildDate == "" {
		buildDate = "N/A"
	}

	if buildCommit == "" {
		buildCommit = "N/A"
	}

	fmt.Printf("Build version: %s\n", buildVersion)
	fmt.Printf("Build date: %s\n", buildDate)
	fmt.Printf("Build commit: %s\n", buildCommit)
}
