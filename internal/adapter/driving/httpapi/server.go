// Package httpapi exposes the cost analysis use case over HTTP.
package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/diillson/aws-cost-analysis-go/internal/application/usecase"
)

// Server wires the HTTP routes to the analysis use case.
type Server struct {
	echo    *echo.Echo
	useCase *usecase.AnalysisUseCase
	logger  zerolog.Logger
}

// NewServer builds the echo instance with its middleware and routes.
func NewServer(uc *usecase.AnalysisUseCase, logger zerolog.Logger) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.JSONSerializer = jsonSerializer{}

	s := &Server{echo: e, useCase: uc, logger: logger}

	e.Use(middleware.Recover())
	// observeRequest wraps requestLogger: the status is only committed to
	// the response once the logger has handled propagated errors.
	e.Use(observeRequest)
	e.Use(s.requestLogger)

	e.GET("/", s.handleRoot)
	e.GET("/health", s.handleHealth)
	e.GET("/dashboard", s.handleDashboard)
	e.POST("/costs/analyze", s.handleAnalyze)
	e.GET("/costs/services", s.handleTopServices)
	e.GET("/costs/forecast", s.handleForecast)
	e.GET("/costs/budgets", s.handleBudgets)
	e.POST("/costs/export", s.handleExport)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	return s
}

// Start blocks serving HTTP until the listener fails or Shutdown is called.
func (s *Server) Start(addr string) error {
	return s.echo.Start(addr)
}

// Shutdown drains in-flight requests and stops the listener.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

// requestLogger tags every request with an ID and emits one structured
// line when it completes.
func (s *Server) requestLogger(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		requestID := uuid.New().String()
		c.Response().Header().Set(echo.HeaderXRequestID, requestID)

		start := time.Now()
		err := next(c)
		if err != nil {
			c.Error(err)
		}

		s.logger.Info().
			Str("request_id", requestID).
			Str("method", c.Request().Method).
			Str("path", c.Request().URL.Path).
			Int("status", c.Response().Status).
			Dur("duration", time.Since(start)).
			Msg("request completed")
		return nil
	}
}

func (s *Server) handleRoot(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"message": "AWS Cost Analysis API",
		"docs":    "/dashboard",
	})
}

func (s *Server) handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status":    "healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}
