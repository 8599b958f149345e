// Package server exposes sessions, the schema document, the tool router and
// agent turns over HTTP.
package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/petasbytes/form-agent/internal/runner"
	"github.com/petasbytes/form-agent/session"
)

type Server struct {
	store  session.Store
	runner *runner.Runner
	logger *slog.Logger
	locks  keyedMutex
	e      *echo.Echo
}

// New wires the routes. A nil runner disables POST /api/chat.
func New(store session.Store, r *runner.Runner, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{store: store, runner: r, logger: logger, e: echo.New()}
	s.e.HideBanner = true
	s.e.HidePort = true

	s.e.Use(middleware.Recover())
	s.e.Use(middleware.CORSWithConfig(middleware.CORSConfig{AllowOrigins: []string{"*"}}))
	s.e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:  true,
		LogURI:     true,
		LogStatus:  true,
		LogLatency: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			s.logger.Debug("request", "method", v.Method, "uri", v.URI, "status", v.Status, "latency", v.Latency)
			return nil
		},
	}))

	s.e.GET("/health", func(c echo.Context) error { return c.JSON(http.StatusOK, map[string]any{"ok": true}) })

	api := s.e.Group("/api")
	api.POST("/session", s.createSession)
	api.GET("/session/:id", s.getSession)
	api.DELETE("/session/:id", s.deleteSession)
	api.POST("/session/:id/tools", s.executeTool)
	api.POST("/session/:id/clarification", s.answerClarification)
	api.GET("/schema/:id", s.getSchema)
	api.PUT("/schema/:id", s.putSchema)
	api.POST("/chat", s.chat)
	return s
}

// Handler returns the router, e.g. for httptest.
func (s *Server) Handler() http.Handler { return s.e }

func (s *Server) Start(addr string) error {
	s.logger.Info("server listening", "addr", addr)
	err := s.e.Start(addr)
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

func (s *Server) Shutdown(ctx context.Context) error { return s.e.Shutdown(ctx) }

func errorJSON(c echo.Context, status int, msg string) error {
	return c.JSON(status, map[string]any{"error": msg})
}

// load fetches the session named by the :id parameter, writing the 404 or 500
// response itself when it fails.
func (s *Server) load(c echo.Context, id string) (session.Session, bool, error) {
	sess, err := s.store.Get(c.Request().Context(), id)
	if errors.Is(err, session.ErrNotFound) {
		return session.Session{}, false, errorJSON(c, http.StatusNotFound, "Session not found")
	}
	if err != nil {
		s.logger.Error("load session", "session", id, "error", err)
		return session.Session{}, false, errorJSON(c, http.StatusInternalServerError, "failed to load session")
	}
	return sess, true, nil
}

// save persists sess even when the client has gone away: the edits in it are
// already committed.
func (s *Server) save(c echo.Context, sess session.Session) error {
	if err := s.store.Save(context.WithoutCancel(c.Request().Context()), sess); err != nil {
		s.logger.Error("save session", "session", sess.ID, "error", err)
		return err
	}
	return nil
}
