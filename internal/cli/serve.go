package cli

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	httpapi "github.com/i474232898/weather-anomaly-monitor/internal/api/http"
	"github.com/i474232898/weather-anomaly-monitor/internal/scheduler"
)

func newServeCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and the periodic monitor",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.serve(cmd.Context())
		},
	}
}

func (a *app) serve(parent context.Context) error {
	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	weatherSvc, err := a.newWeatherService()
	if err != nil {
		return err
	}
	svc, err := a.newMonitor(weatherSvc)
	if err != nil {
		return err
	}
	a.log.WithField("providers", weatherSvc.Providers()).Info("weather providers ready")

	// Scheduler that periodically checks current conditions.
	sched := scheduler.New(a.cfg.MonitorCities, a.cfg.MonitorInterval, a.cfg.HTTPTimeout*3, svc, a.log)
	defer sched.Stop()

	if a.cfg.DataPath != "" {
		if err := a.loadDataset(ctx, svc, a.cfg.DataPath, ""); err != nil {
			return err
		}
		if err := sched.Start(); err != nil {
			return err
		}
	} else {
		svc.OnLoad(func() {
			if err := sched.Start(); err != nil {
				a.log.WithError(err).Error("failed to start monitor job")
			}
		})
		a.log.Warn("DATA_PATH not set; monitor job starts after a dataset is uploaded via POST /api/v1/dataset")
	}

	server := httpapi.NewApp(svc, a.log)

	go func() {
		a.log.WithField("port", a.cfg.Port).Info("http server listening")
		if err := server.Listen(":" + a.cfg.Port); err != nil {
			a.log.WithError(err).Error("fiber server stopped")
			stop()
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.ShutdownWithContext(shutdownCtx); err != nil {
		a.log.WithError(err).Error("error during shutdown")
		return err
	}
	a.log.Info("shutdown complete")
	return nil
}
