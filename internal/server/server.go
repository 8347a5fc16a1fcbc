// Package server exposes the generation pipeline and the connection flow over HTTP
// for a rendering layer.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/blacktop/postcraft/internal/logutil"
	"github.com/blacktop/postcraft/internal/postcraft"
	"github.com/blacktop/postcraft/internal/postcraft/connect"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

// Server holds the single session served over HTTP.
type Server struct {
	studio *postcraft.Studio
	flow   *connect.Flow
	echo   *echo.Echo
}

// New wires the routes for studio and flow.
func New(studio *postcraft.Studio, flow *connect.Flow) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Recover())
	e.Use(requestLogger)

	s := &Server{studio: studio, flow: flow, echo: e}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.echo.GET("/health", s.handleHealth)

	api := s.echo.Group("/api")
	api.GET("/platforms", s.handlePlatforms)
	api.GET("/config", s.handleConfig)
	api.POST("/posts", s.handleGenerate)
	api.GET("/posts/latest", s.handleLatest)
	api.GET("/connections", s.handleSession)
	api.POST("/connections", s.handleConnect)
	api.POST("/connections/:action", s.handleConnectionAction)
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.echo.ServeHTTP(w, r)
}

// Start listens on addr until ctx is cancelled.
func (s *Server) Start(ctx context.Context, addr string) error {
	errCh := make(chan error, 1)
	go func() {
		logutil.Infof("listening on %s", addr)
		if err := s.echo.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return s.echo.Shutdown(shutdownCtx)
}

func requestLogger(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		start := time.Now()
		err := next(c)
		logutil.With(
			"method", c.Request().Method,
			"path", c.Request().URL.Path,
			"status", c.Response().Status,
			"duration", time.Since(start),
		).Info("request")
		return err
	}
}
