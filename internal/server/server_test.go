package server

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"

	"mk3hierros/internal/cache"
	"mk3hierros/internal/config"
	"mk3hierros/internal/handlers"
	"mk3hierros/internal/service"
	"mk3hierros/internal/testutil"
)

type okPinger struct{}

func (okPinger) Ping(context.Context) error { return nil }

func TestServerRoutesAtRoot(t *testing.T) {
	cfg := &config.AppConfig{
		Environment:      "test",
		HTTP:             config.HTTPConfig{Host: "127.0.0.1", Port: 0},
		Upload:           config.UploadConfig{MaxFiles: 10, MaxFileBytes: 5 << 20},
		Cache:            config.CacheConfig{TTL: time.Hour},
		AllowCORSOrigins: []string{"http://localhost:3001"},
	}
	db := testutil.NewMemoryDB()
	log := zerolog.Nop()
	h := handlers.NewHandlerSet(log, cfg,
		service.NewCategoryService(db.Categories(), log),
		service.NewWorkService(db.Works(), db.Images(), nil, log),
		service.NewImageService(db.Works(), db.Images(), nil, cfg.Upload, log),
		cache.NewMemoryCache(),
		okPinger{},
	)
	srv := NewHTTPServer(cfg, log, h)

	for _, path := range []string{"/healthz", "/categorias", "/trabajo", "/public/works", "/metrics"} {
		rec := httptest.NewRecorder()
		srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusOK, rec.Code, path)
		assert.NotEmpty(t, rec.Header().Get("X-Request-Id"), path)
	}

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/trabajo", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
