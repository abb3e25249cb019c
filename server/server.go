// Package server exposes the journal over a JSON HTTP API.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/rustyeddy/tradejournal/config"
	"github.com/rustyeddy/tradejournal/service"
)

type Server struct {
	cfg    config.ServerConfig
	engine *gin.Engine
	log    *zap.Logger
}

// New builds the gin engine with every route registered.
func New(cfg config.ServerConfig, svc *service.JournalService, log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	if cfg.Mode != "" {
		gin.SetMode(cfg.Mode)
	}

	engine := gin.New()
	engine.Use(recovery(log))
	engine.Use(corsMiddleware(cfg.CORSOrigins))
	engine.Use(requestLogger(log))

	maxUpload := cfg.MaxUploadMB << 20
	if maxUpload <= 0 {
		maxUpload = 10 << 20
	}
	engine.MaxMultipartMemory = maxUpload

	(&HealthHandler{Store: svc.Store()}).Register(engine)
	(&AccountHandler{Service: svc}).Register(engine)
	(&TradeHandler{Service: svc}).Register(engine)
	(&AnalyticsHandler{Service: svc}).Register(engine)
	(&ScreenshotHandler{Service: svc, MaxBytes: maxUpload}).Register(engine)

	return &Server{cfg: cfg, engine: engine, log: log}
}

func (s *Server) Handler() http.Handler { return s.engine }

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("http server starting", zap.String("addr", s.cfg.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		s.log.Info("shutdown requested")
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("server: listen: %w", err)
		}
		return nil
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server: shutdown: %w", err)
	}
	return nil
}
