// Package api wires the HTTP surface of the evaluation engine.
package api

import (
	"net/http"

	"github.com/NYTimes/gziphandler"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"storage-bca/internal/api/handlers"
	"storage-bca/internal/api/middleware"
	"storage-bca/internal/config"
	"storage-bca/internal/data"
	"storage-bca/internal/logger"
	"storage-bca/internal/metrics"
)

// Registry is a Prometheus registry the router can both register on and serve.
type Registry interface {
	prometheus.Registerer
	prometheus.Gatherer
}

// NewRouter builds the gin engine. table may be nil; requests then carry
// their own time series.
func NewRouter(cfg *config.Config, table *data.Table, cache *handlers.ResultCache, log logger.Logger, reg Registry) (*gin.Engine, error) {
	sink, err := metrics.NewPromSink(reg)
	if err != nil {
		return nil, err
	}

	router := gin.New()
	router.Use(middleware.CORS(cfg.API.AllowedOrigins))
	router.Use(middleware.Logger(log))
	router.Use(middleware.ErrorHandler(log))

	evalHandler := handlers.NewEvaluateHandler(cfg, table, cache, log, sink)
	policyHandler := handlers.NewPolicyHandler(cfg.PolicyParams())

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "timeseries_loaded": table != nil})
	})
	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))

	v1 := router.Group("/api/v1")
	{
		v1.POST("/evaluate", evalHandler.Evaluate)
		v1.GET("/results/:id", evalHandler.GetResult)
		v1.GET("/results/:id/ledger/:scenario", evalHandler.GetLedger)
		v1.GET("/policies", policyHandler.ListPolicies)
		v1.GET("/profile", evalHandler.Profile)
	}

	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": gin.H{"code": "NOT_FOUND", "message": "Not found"}})
	})
	return router, nil
}

// Handler wraps the router for serving. Responses above gziphandler's minimum
// size are compressed when the client accepts gzip.
func Handler(router *gin.Engine) http.Handler {
	return gziphandler.GzipHandler(router)
}
