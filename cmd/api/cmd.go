package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/GregMSThompson/widget-dashboard/internal/bootstrap"
	"github.com/GregMSThompson/widget-dashboard/internal/config"
	"github.com/GregMSThompson/widget-dashboard/internal/handlers"
	"github.com/GregMSThompson/widget-dashboard/internal/response"
	"github.com/GregMSThompson/widget-dashboard/internal/router"
	"github.com/GregMSThompson/widget-dashboard/internal/services"
	"github.com/GregMSThompson/widget-dashboard/internal/store"
)

func exitOnError(message string, err error, log *slog.Logger) {
	if err != nil {
		log.Error(message, "error", err)
		os.Exit(1)
	}
}

func main() {
	// bootstrap
	cfg := config.New()
	bs, err := bootstrap.Run(cfg)
	exitOnError("bootstrap failed", err, bs.Log)
	defer bs.Close()

	// stores
	wstore := store.NewWidgetStore(bs.Firestore)

	// services
	dserv := services.NewDashboardService(wstore, bs.Executor)
	iserv := services.NewInstanceService(wstore, bs.Controller)

	// response handler
	rh := response.New(bs.Log)

	// dependancies
	deps := new(handlers.Deps)
	deps.Log = bs.Log
	deps.ResponseHandler = rh
	deps.Firebase = bs.Firebase
	deps.DashboardSvc = dserv
	deps.InstanceSvc = iserv

	// router
	r := router.NewRouter(deps, bs.Metrics.Handler())
	srv := &http.Server{Addr: ":" + cfg.Port, Handler: otelhttp.NewHandler(r, "widget-dashboard-api")}

	// SIGHUP forces a refresh of every mounted widget; SIGINT/SIGTERM shut down.
	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGHUP, syscall.SIGINT, syscall.SIGTERM)
	idle := make(chan struct{})
	go func() {
		defer close(idle)
		for sig := range signals {
			if sig == syscall.SIGHUP {
				bs.Log.Info("refreshing all widgets")
				if err := bs.Controller.RefreshAll(); err != nil {
					bs.Log.Error("refresh all failed", "error", err)
				}
				continue
			}
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			if err := srv.Shutdown(ctx); err != nil {
				bs.Log.Error("shutdown failed", "error", err)
			}
			cancel()
			return
		}
	}()

	bs.Log.Info("listening", "port", cfg.Port)
	err = srv.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		<-idle
		err = nil
	}
	exitOnError("server start failed", err, bs.Log)
}
