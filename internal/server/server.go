// Package server exposes tasks and posts over a JSON HTTP API.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"taskflow/internal/logger"
	"taskflow/internal/service"
)

// ShutdownTimeout bounds graceful shutdown in Run.
const ShutdownTimeout = 10 * time.Second

// NewRouter builds the gin engine with every route registered.
func NewRouter(svc service.Service, version string) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), requestLogger())

	h := &handler{svc: svc, version: version, started: time.Now()}

	r.GET("/healthz", h.health)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api")
	{
		api.GET("/tasks", h.listTasks)
		api.POST("/tasks", h.addTask)
		api.DELETE("/tasks", h.clearTasks)
		api.GET("/tasks/stats", h.stats)
		api.PATCH("/tasks/:id/toggle", h.toggleTask)
		api.DELETE("/tasks/:id", h.deleteTask)

		api.GET("/posts", h.listPosts)
		api.POST("/posts/retry", h.retryPosts)
	}
	return r
}

// Run serves on addr until ctx is cancelled, then shuts down gracefully.
// The remote collection fetch starts immediately in the background.
func Run(ctx context.Context, svc service.Service, addr, version string) error {
	svc.Posts().Start(ctx)

	srv := &http.Server{
		Addr:    addr,
		Handler: NewRouter(svc, version),
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server started", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return <-errCh
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Debug("request",
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", c.Writer.Status(),
			"duration", time.Since(start),
		)
	}
}
