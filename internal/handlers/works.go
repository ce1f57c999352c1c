package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"mk3hierros/internal/models"
)

func (h HandlerSet) ListWorks(c *gin.Context) {
	works, err := h.works.List(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, h.worksURLs(works))
}

func (h HandlerSet) GetWork(c *gin.Context) {
	id, ok := h.idParam(c, "id")
	if !ok {
		return
	}
	work, err := h.works.Get(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, h.workURLs(work))
}

func (h HandlerSet) ListWorksByCategory(c *gin.Context) {
	id, ok := h.idParam(c, "categoryId")
	if !ok {
		return
	}
	works, err := h.works.ListByCategory(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, h.worksURLs(works))
}

func (h HandlerSet) ListWorksByPriority(c *gin.Context) {
	works, err := h.works.ListByPriority(c.Request.Context(), c.Param("priority"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, h.worksURLs(works))
}

func (h HandlerSet) ListWorksByStatus(c *gin.Context) {
	works, err := h.works.ListByStatus(c.Request.Context(), c.Param("status"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, h.worksURLs(works))
}

func (h HandlerSet) CreateWork(c *gin.Context) {
	var input models.WorkInput
	if err := c.ShouldBindJSON(&input); err != nil {
		h.badRequest(c, "invalid body")
		return
	}
	work, err := h.works.Create(c.Request.Context(), input)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, h.workURLs(work))
}

func (h HandlerSet) UpdateWork(c *gin.Context) {
	id, ok := h.idParam(c, "id")
	if !ok {
		return
	}
	var patch models.WorkPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		h.badRequest(c, "invalid body")
		return
	}
	work, err := h.works.Update(c.Request.Context(), id, patch)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, h.workURLs(work))
}

func (h HandlerSet) DeleteWork(c *gin.Context) {
	id, ok := h.idParam(c, "id")
	if !ok {
		return
	}
	if err := h.works.Delete(c.Request.Context(), id); err != nil {
		h.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
