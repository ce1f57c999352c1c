package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"mk3hierros/internal/config"
	"mk3hierros/internal/handlers"
	"mk3hierros/internal/metrics"
	"mk3hierros/internal/middleware"
)

type HTTPServer struct {
	engine *gin.Engine
	server *http.Server
	log    zerolog.Logger
}

func NewHTTPServer(cfg *config.AppConfig, log zerolog.Logger, handlerSet handlers.HandlerSet) *HTTPServer {
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	engine.RedirectTrailingSlash = true
	engine.RedirectFixedPath = true
	// Whole upload requests stay in memory up to the configured limits.
	engine.MaxMultipartMemory = int64(cfg.Upload.MaxFiles)*cfg.Upload.MaxFileBytes + 1<<20

	engine.Use(
		middleware.RequestID(),
		middleware.Logger(log),
		middleware.Recovery(log),
		middleware.CORS(cfg.AllowCORSOrigins),
		metrics.Middleware(),
	)

	handlerSet.Register(engine)

	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port),
		Handler:      engine,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
	}

	return &HTTPServer{
		engine: engine,
		server: srv,
		log:    log,
	}
}

func (s *HTTPServer) Handler() http.Handler {
	return s.engine
}

func (s *HTTPServer) Start() error {
	s.log.Info().
		Str("addr", s.server.Addr).
		Msg("http server starting")

	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("listen and serve: %w", err)
	}
	return nil
}

func (s *HTTPServer) Shutdown(ctx context.Context) error {
	s.log.Info().Msg("http server shutting down")
	return s.server.Shutdown(ctx)
}
