// Command netsentry runs the alert collection service: the HTTP API and the
// sensor supervisor over one SQLite store.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/netsentry/netsentry/internal/api"
	"github.com/netsentry/netsentry/internal/audit"
	"github.com/netsentry/netsentry/internal/conf"
	"github.com/netsentry/netsentry/internal/datastore"
	"github.com/netsentry/netsentry/internal/ingest"
	"github.com/netsentry/netsentry/internal/logger"
	"github.com/netsentry/netsentry/internal/observability/metrics"
	"github.com/netsentry/netsentry/internal/sensor"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 10 * time.Second

func main() {
	if err := newRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	var configPath string
	root := &cobra.Command{
		Use:           "netsentry",
		Short:         "Security alert collector with a supervised network sensor",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to config file")

	serve := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and the sensor supervisor",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(configPath)
		},
	}
	root.AddCommand(serve)

	// Bare invocation serves too, so the binary works as a systemd ExecStart
	// without arguments.
	root.RunE = serve.RunE
	return root
}

func run(configPath string) error {
	settings, err := conf.Load(configPath)
	if err != nil {
		return err
	}

	log := logger.NewSlogLogger(os.Stdout, logger.ParseLevel(settings.LogLevel), nil)

	store, err := datastore.Open(settings.Database.Path, log)
	if err != nil {
		return err
	}
	defer func() {
		if err := store.Close(); err != nil {
			log.Warn("failed to close datastore", logger.Error(err))
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := store.SeedAdmin(ctx, settings.Admin.Username, settings.Admin.Email); err != nil {
		return err
	}

	m := metrics.New()
	ingestor := ingest.New(store, m, log)
	engine := audit.NewEngine(store, m, log)
	controller := api.New(store, ingestor, engine, m, log)

	var supervisor *sensor.Supervisor
	if settings.Sensor.Enabled {
		factory := sensor.NewExecFactory(settings.Sensor.Path, settings.Sensor.Device)
		supervisor = sensor.New(factory, ingestor, sensor.Config{
			RestartDelay:  settings.Sensor.RestartDelay.Std(),
			ShutdownGrace: settings.Sensor.ShutdownGrace.Std(),
		}, m, log)
		supervisor.Start()
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("server starting", logger.String("bind", settings.HTTP.Bind))
		return controller.Start(settings.HTTP.Bind)
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if supervisor != nil {
			if err := supervisor.Stop(shutdownCtx); err != nil {
				log.Warn("sensor supervisor did not stop cleanly", logger.Error(err))
			}
		}
		return controller.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
