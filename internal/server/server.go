package server

import (
	"context"
	"fmt"
	"log"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/wanirfan/atlast/internal/agent/core"
	"github.com/wanirfan/atlast/session"
)

// Asker is the engine surface the server depends on
type Asker interface {
	Ask(ctx context.Context, req core.AskRequest) (core.AnswerResult, error)
	DomainLoaded(domain core.Domain) bool
}

// Server exposes the QA engine over HTTP. All dependencies are injected.
type Server struct {
	engine Asker
	store  session.Store
	logger *log.Logger
}

// New creates a server
func New(engine Asker, store session.Store, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.New(log.Writer(), "[HTTP] ", log.LstdFlags)
	}
	return &Server{engine: engine, store: store, logger: logger}
}

// Echo builds the configured echo instance with all routes registered
func (s *Server) Echo() *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Recover())

	// Unified HTTP error handler with structured JSON and logging
	e.HTTPErrorHandler = func(err error, c echo.Context) {
		code := http.StatusInternalServerError
		msg := err.Error()
		if he, ok := err.(*echo.HTTPError); ok {
			code = he.Code
			if he.Message != nil {
				msg = fmt.Sprint(he.Message)
			}
		}
		req := c.Request()
		s.logger.Printf("%d %s %s from %s: %v", code, req.Method, req.URL.Path, c.RealIP(), err)
		if !c.Response().Committed {
			_ = c.JSON(code, map[string]interface{}{"error": msg})
		}
	}

	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Content-Type", sessionHeader},
		AllowCredentials: true,
	}))

	e.GET("/healthz", func(c echo.Context) error { return c.String(http.StatusOK, "ok") })
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	api := e.Group("/api/:domain")
	api.POST("/ask", s.handleAsk)
	api.GET("/history", s.handleHistory)
	api.POST("/clear", s.handleClear)

	return e
}

// Start runs the server until it fails or is shut down
func (s *Server) Start(addr string) error {
	e := s.Echo()
	s.logger.Printf("listening on %s", addr)
	return e.Start(addr)
}
