package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"mk3hierros/internal/middleware"
	"mk3hierros/internal/repository"
	"mk3hierros/internal/service"
)

func statusFor(err error) int {
	var uploadErr *service.UploadError
	switch {
	case errors.Is(err, service.ErrInvalidInput), errors.As(err, &uploadErr):
		return http.StatusBadRequest
	case errors.Is(err, repository.ErrWorkNotFound),
		errors.Is(err, repository.ErrCategoryNotFound),
		errors.Is(err, repository.ErrImageNotFound):
		return http.StatusNotFound
	case errors.Is(err, repository.ErrCategoryExists):
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}

// fail writes the error body. Internal errors are logged and hidden from the
// caller.
func (h HandlerSet) fail(c *gin.Context, err error) {
	status := statusFor(err)
	message := err.Error()
	if status >= http.StatusInternalServerError {
		h.log.Error().
			Err(err).
			Str("path", c.Request.URL.Path).
			Str("request_id", middleware.GetRequestID(c)).
			Msg("request failed")
		message = "internal server error"
	}
	_ = c.Error(err)
	c.JSON(status, gin.H{"error": message})
}

func (h HandlerSet) badRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, gin.H{"error": message})
}

// idParam parses a positive numeric path parameter, answering 400 otherwise.
func (h HandlerSet) idParam(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		h.badRequest(c, "invalid "+name)
		return 0, false
	}
	return id, true
}
