// ============================================================================
// Diktat - Sprachtranskription
// ============================================================================
//
// Package:     server
// Description: HTTP control surface and WebSocket capture endpoint
// Created:     2026-09-23
// License:     MIT
// ============================================================================

package server

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/msto63/diktat/internal/audio"
	"github.com/msto63/diktat/internal/history"
	"github.com/msto63/diktat/internal/metrics"
	"github.com/msto63/diktat/internal/session"
	"github.com/msto63/diktat/internal/stt"
	"github.com/msto63/diktat/pkg/core/config"
	"github.com/msto63/diktat/pkg/core/health"
	"github.com/msto63/diktat/pkg/core/logging"
)

// maxUploadSize bounds the multipart body of POST /upload
const maxUploadSize = 200 << 20

// ErrorResponse is the body of every failed request
type ErrorResponse struct {
	Error   string           `json:"error"`
	Message string           `json:"message"`
	Outcome *session.Outcome `json:"outcome,omitempty"`
}

// ModeRequest is the body of PUT /api/v1/mode
type ModeRequest struct {
	Mode string `json:"mode"`
}

// OutputResponse carries the output buffer
type OutputResponse struct {
	Output string `json:"output"`
}

// Options configures a Server
type Options struct {
	Session *session.Session
	Capture *WSSource
	Health  *health.Registry
	Metrics *metrics.Metrics
	Auth    *Authenticator
	Config  config.ServerConfig
	Logger  *logging.Logger
}

// Server exposes a session over HTTP
type Server struct {
	echo    *echo.Echo
	session *session.Session
	health  *health.Registry
	metrics *metrics.Metrics
	cfg     config.ServerConfig
	logger  *logging.Logger
}

// New creates the server and registers all routes
func New(opts Options) *Server {
	if opts.Logger == nil {
		opts.Logger = logging.Nop()
	}
	if opts.Metrics == nil {
		opts.Metrics = metrics.New()
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	s := &Server{
		echo:    e,
		session: opts.Session,
		health:  opts.Health,
		metrics: opts.Metrics,
		cfg:     opts.Config,
		logger:  opts.Logger,
	}

	// Middleware
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:  true,
		LogURI:     true,
		LogStatus:  true,
		LogLatency: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			s.metrics.HTTPRequests.WithLabelValues(v.Method, c.Path(), strconv.Itoa(v.Status)).Inc()
			s.logger.Debug("Request", "method", v.Method, "uri", v.URI, "status", v.Status, "latency", v.Latency.String())
			return nil
		},
	}))

	e.GET("/health", s.handleHealth)
	e.GET("/metrics", echo.WrapHandler(s.metrics.Handler()))

	v1 := e.Group("/api/v1")
	if opts.Auth != nil {
		v1.Use(opts.Auth.Middleware())
	}

	v1.POST("/record/start", s.handleStart)
	v1.POST("/record/stop", s.handleStop)
	v1.POST("/upload", s.handleUpload)
	v1.PUT("/mode", s.handleMode)
	v1.GET("/status", s.handleStatus)
	v1.GET("/output", s.handleOutput)
	v1.POST("/output/clear", s.handleClear)
	v1.POST("/output/copy", s.handleCopy)
	v1.GET("/history", s.handleHistoryList)
	v1.GET("/history/:id", s.handleHistoryGet)
	v1.POST("/history/:id/show", s.handleHistoryShow)
	v1.DELETE("/history/:id", s.handleHistoryDelete)
	if opts.Capture != nil {
		v1.GET("/capture/ws", opts.Capture.Handler)
	}

	return s
}

// Handler returns the HTTP handler
func (s *Server) Handler() http.Handler {
	return s.echo
}

// Start listens on the configured address until Shutdown
func (s *Server) Start() error {
	addr := s.cfg.Host + ":" + strconv.Itoa(s.cfg.Port)
	s.echo.Server.ReadTimeout = s.cfg.ReadTimeout.Duration
	s.echo.Server.WriteTimeout = s.cfg.WriteTimeout.Duration

	s.logger.Info("HTTP server listening", "address", addr)
	if err := s.echo.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops the server gracefully
func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

func (s *Server) handleHealth(c echo.Context) error {
	if s.health == nil {
		return c.JSON(http.StatusOK, map[string]string{"status": string(health.StatusHealthy)})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	report := s.health.Check(ctx)
	code := http.StatusOK
	if report.Status == health.StatusUnhealthy {
		code = http.StatusServiceUnavailable
	}
	return c.JSON(code, report)
}

func (s *Server) handleStart(c echo.Context) error {
	if err := s.session.Start(c.Request().Context()); err != nil {
		return s.sessionError(c, err, nil)
	}
	return c.JSON(http.StatusOK, s.session.Snapshot())
}

func (s *Server) handleStop(c echo.Context) error {
	out, err := s.session.Stop(c.Request().Context())
	if err != nil {
		return s.sessionError(c, err, &out)
	}
	return c.JSON(http.StatusOK, out)
}

func (s *Server) handleUpload(c echo.Context) error {
	c.Request().Body = http.MaxBytesReader(c.Response(), c.Request().Body, maxUploadSize)

	fh, err := c.FormFile("audio")
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_request",
			Message: "multipart field \"audio\" is required",
		})
	}
	f, err := fh.Open()
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid_request", Message: err.Error()})
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid_request", Message: err.Error()})
	}

	out, err := s.session.Upload(c.Request().Context(), fh.Filename, data)
	if err != nil {
		return s.sessionError(c, err, &out)
	}
	return c.JSON(http.StatusOK, out)
}

func (s *Server) handleMode(c echo.Context) error {
	var req ModeRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid_request", Message: "Invalid request format"})
	}
	mode, err := stt.ParseMode(req.Mode)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid_mode", Message: err.Error()})
	}
	if err := s.session.SetMode(mode); err != nil {
		return s.sessionError(c, err, nil)
	}
	return c.JSON(http.StatusOK, s.session.Snapshot())
}

func (s *Server) handleStatus(c echo.Context) error {
	return c.JSON(http.StatusOK, s.session.Snapshot())
}

func (s *Server) handleOutput(c echo.Context) error {
	return c.JSON(http.StatusOK, OutputResponse{Output: s.session.Output()})
}

func (s *Server) handleClear(c echo.Context) error {
	s.session.Clear()
	return c.JSON(http.StatusOK, OutputResponse{})
}

func (s *Server) handleCopy(c echo.Context) error {
	if err := s.session.Copy(); err != nil {
		return s.sessionError(c, err, nil)
	}
	return c.JSON(http.StatusOK, OutputResponse{Output: s.session.Output()})
}

func (s *Server) handleHistoryList(c echo.Context) error {
	store := s.session.History()
	if store == nil {
		return c.JSON(http.StatusOK, []history.Entry{})
	}
	entries, err := store.List(c.Request().Context())
	if err != nil {
		return s.sessionError(c, err, nil)
	}
	return c.JSON(http.StatusOK, entries)
}

func (s *Server) handleHistoryGet(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return invalidID(c)
	}
	store := s.session.History()
	if store == nil {
		return s.sessionError(c, history.ErrNotFound, nil)
	}
	e, err := store.Get(c.Request().Context(), id)
	if err != nil {
		return s.sessionError(c, err, nil)
	}
	return c.JSON(http.StatusOK, e)
}

func (s *Server) handleHistoryShow(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return invalidID(c)
	}
	if _, err := s.session.ShowEntry(c.Request().Context(), id); err != nil {
		return s.sessionError(c, err, nil)
	}
	return c.JSON(http.StatusOK, OutputResponse{Output: s.session.Output()})
}

func (s *Server) handleHistoryDelete(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return invalidID(c)
	}
	if store := s.session.History(); store != nil {
		if err := store.Delete(c.Request().Context(), id); err != nil {
			return s.sessionError(c, err, nil)
		}
	}
	return c.NoContent(http.StatusNoContent)
}

func invalidID(c echo.Context) error {
	return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid_id", Message: "id must be an integer"})
}

// sessionError maps domain errors to HTTP status codes
func (s *Server) sessionError(c echo.Context, err error, out *session.Outcome) error {
	code, kind := http.StatusInternalServerError, "internal_error"
	switch {
	case errors.Is(err, session.ErrBusy), errors.Is(err, session.ErrNotRecording):
		code, kind = http.StatusConflict, "conflict"
	case errors.Is(err, session.ErrModeUnavailable):
		code, kind = http.StatusUnprocessableEntity, "mode_unavailable"
	case errors.Is(err, audio.ErrResourceDenied):
		code, kind = http.StatusServiceUnavailable, "resource_denied"
	case errors.Is(err, session.ErrInvalidAudio):
		code, kind = http.StatusUnprocessableEntity, "invalid_audio"
	case errors.Is(err, session.ErrNoOutput):
		code, kind = http.StatusConflict, "empty_output"
	case errors.Is(err, history.ErrNotFound):
		code, kind = http.StatusNotFound, "not_found"
	case errors.Is(err, session.ErrPersistence):
		kind = "persistence_failure"
	}
	if code >= http.StatusInternalServerError {
		s.logger.Error("Request failed", "path", c.Path(), "error", err)
	}

	resp := ErrorResponse{Error: kind, Message: err.Error()}
	if out != nil && out.JobID != "" {
		resp.Outcome = out
	}
	return c.JSON(code, resp)
}
