package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"

	"storage-bca/internal/api"
	"storage-bca/internal/api/handlers"
	"storage-bca/internal/config"
	"storage-bca/internal/data"
	"storage-bca/internal/logger"
)

func main() {
	cfgPath := flag.String("config", os.Getenv("BCA_CONFIG"), "Path to YAML or JSON config")
	flag.Parse()

	log := logger.New("api")
	cfg, err := config.Load(*cfgPath)
	if err != nil {
		log.Errorf("load config: %v", err)
		os.Exit(1)
	}

	var table *data.Table
	if cfg.Run.TimeSeries != "" {
		table, err = data.LoadTimeSeries(cfg.Run.TimeSeries)
		if err != nil {
			log.Errorf("load time series %s: %v", cfg.Run.TimeSeries, err)
			os.Exit(1)
		}
		log.Infof("loaded %d settlement periods from %s", table.Len(), cfg.Run.TimeSeries)
	} else {
		log.Warnf("run.timeseries not set; requests must include a time series")
	}

	if os.Getenv("APP_ENV") != "dev" {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cache := handlers.NewResultCache(cfg.API.ResultTTL)
	go cache.RunCleanup(5*time.Minute, ctx.Done())

	reg := prometheus.NewRegistry()
	router, err := api.NewRouter(cfg, table, cache, log, reg)
	if err != nil {
		log.Errorf("build router: %v", err)
		os.Exit(1)
	}

	srv := &http.Server{Addr: ":" + cfg.API.Port, Handler: api.Handler(router)}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Errorf("shutdown: %v", err)
		}
	}()

	log.Infof("starting API server on %s", srv.Addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Errorf("server: %v", err)
		os.Exit(1)
	}
}
