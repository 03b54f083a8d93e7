// Package server exposes the search index over HTTP: a health probe, index
// status, and a query endpoint returning highlighted hits as JSON.
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"github.com/svnquery/svnquery/internal/index"
)

// Server holds the dependencies for the query API.
type Server struct {
	store  *index.Store
	state  *index.State
	logger *zap.Logger
	echo   *echo.Echo
}

// New wires up the routes. The store must already be open; the server never
// writes to it.
func New(store *index.Store, state *index.State, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			logger.Debug("request",
				zap.String("method", c.Request().Method),
				zap.String("path", c.Request().URL.Path),
				zap.Int("status", c.Response().Status),
				zap.Duration("duration", time.Since(start)))
			return err
		}
	})

	s := &Server{
		store:  store,
		state:  state,
		logger: logger,
		echo:   e,
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.echo.GET("/health", s.handleHealth)
	s.echo.GET("/api/v1/status", s.handleStatus)
	s.echo.GET("/api/v1/search", s.handleSearch)
}

// ServeHTTP implements http.Handler so tests can drive the server with
// httptest without binding a port.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.echo.ServeHTTP(w, r)
}

// Start serves on addr until Shutdown or a listener error.
func (s *Server) Start(addr string) error {
	s.logger.Info("query server listening", zap.String("addr", addr))
	return s.echo.Start(addr)
}

// Shutdown drains in-flight requests and stops the listener.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}
