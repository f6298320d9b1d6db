// Package server exposes the ingestion service over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/araddon/dateparse"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/qepting91/corpus-pipeline/internal/config"
	"github.com/qepting91/corpus-pipeline/internal/dashboard"
	"github.com/qepting91/corpus-pipeline/internal/domain"
	"github.com/qepting91/corpus-pipeline/internal/ingest"
	"github.com/qepting91/corpus-pipeline/internal/storage"
	"github.com/sirupsen/logrus"
)

const shutdownTimeout = 10 * time.Second

func init() {
	// Keep tweet ids and other large integers exact inside post_blob.
	binding.EnableDecoderUseNumber = true
}

type ingestRequest struct {
	Success   *bool           `json:"success" binding:"required"`
	TaskID    string          `json:"task_id" binding:"required"`
	Timestamp string          `json:"timestamp" binding:"required"`
	Data      *successPayload `json:"data"`
	Error     *errorPayload   `json:"error"`
}

type successPayload struct {
	ContentItems []map[string]any `json:"content_items" binding:"required"`
}

type errorPayload struct {
	Message *string `json:"message" binding:"required"`
}

// toResult converts the request body. timestamp accepts any ISO-8601 form;
// values without an offset are read as UTC.
func (r ingestRequest) toResult() (domain.ScrapeResult, error) {
	ts, err := parseTimestamp(r.Timestamp)
	if err != nil {
		return domain.ScrapeResult{}, err
	}
	res := domain.ScrapeResult{
		TaskID:    r.TaskID,
		Timestamp: ts,
		Success:   *r.Success,
	}
	if r.Data != nil {
		res.Data = &domain.SuccessData{ContentItems: r.Data.ContentItems}
	}
	if r.Error != nil {
		res.Error = &domain.ErrorData{Message: *r.Error.Message}
	}
	return res, nil
}

func parseTimestamp(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if t, err := time.Parse(time.RFC3339Nano, raw); err == nil {
		return t, nil
	}
	t, err := dateparse.ParseIn(raw, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid timestamp %q", raw)
	}
	return t, nil
}

type Server struct {
	engine   *gin.Engine
	service  *ingest.Service
	reporter storage.Reporter
	logger   *logrus.Logger
	addr     string
}

// New wires the routes. reporter may be nil when storage is not configured.
func New(cfg config.Config, service *ingest.Service, reporter storage.Reporter, logger *logrus.Logger) *Server {
	gin.SetMode(cfg.Server.Mode)
	engine := gin.New()
	engine.Use(gin.Recovery(), requestLogger(logger))

	s := &Server{
		engine:   engine,
		service:  service,
		reporter: reporter,
		logger:   logger,
		addr:     cfg.Server.Addr(),
	}

	engine.GET("/", s.healthCheck)
	engine.GET("/dashboard", s.dashboard)
	engine.POST("/data/scraper", rateLimit(cfg.Ingest.RatePerSec, cfg.Ingest.Burst), s.ingestScrapeData)

	return s
}

func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.WithField("addr", s.addr).Info("ingester listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		s.logger.Info("shutdown signal received")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}

func (s *Server) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// POST /data/scraper
func (s *Server) ingestScrapeData(c *gin.Context) {
	var req ingestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
		return
	}

	result, err := req.toResult()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
		return
	}

	n, err := s.service.Ingest(c.Request.Context(), result)
	switch {
	case err == nil:
		c.JSON(http.StatusOK, gin.H{"status": "ok", "rows": n})
	case errors.Is(err, ingest.ErrStorageNotConfigured):
		c.JSON(http.StatusInternalServerError, gin.H{"detail": err.Error()})
	case ingest.IsClientError(err):
		c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
	default:
		s.logger.WithFields(logrus.Fields{
			"task_id":    req.TaskID,
			"request_id": c.GetString("request_id"),
		}).WithError(err).Error("ingest failed")
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "internal server error"})
	}
}

// GET /dashboard
func (s *Server) dashboard(c *gin.Context) {
	if s.reporter == nil {
		c.JSON(http.StatusInternalServerError, gin.H{"detail": ingest.ErrStorageNotConfigured.Error()})
		return
	}
	stats, err := s.reporter.Stats(c.Request.Context())
	if err != nil {
		s.logger.WithError(err).Error("load dashboard stats")
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "internal server error"})
		return
	}
	c.Header("Content-Type", "text/html; charset=utf-8")
	c.Status(http.StatusOK)
	if err := dashboard.Render(c.Writer, stats); err != nil {
		s.logger.WithError(err).Error("render dashboard")
	}
}
