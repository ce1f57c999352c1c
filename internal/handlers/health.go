package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

type healthResponse struct {
	Status      string `json:"status"`
	Database    string `json:"database"`
	Cache       string `json:"cache"`
	Environment string `json:"environment"`
}

// Health reports 503 when postgres is unreachable. A failing cache only
// degrades the public listings, so it does not change the status code.
func (h HandlerSet) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	resp := healthResponse{Status: "ok", Database: "ok", Cache: "ok", Environment: h.cfg.Environment}
	code := http.StatusOK

	if err := h.db.Ping(ctx); err != nil {
		resp.Status = "degraded"
		resp.Database = "error"
		code = http.StatusServiceUnavailable
		h.log.Error().Err(err).Msg("database ping failed")
	}

	if err := h.cache.Ping(ctx); err != nil {
		resp.Cache = "error"
		h.log.Warn().Err(err).Msg("cache ping failed")
	}

	c.JSON(code, resp)
}
