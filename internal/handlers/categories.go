package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type categoryRequest struct {
	Name string `json:"name"`
}

func (h HandlerSet) ListCategories(c *gin.Context) {
	categories, err := h.categories.List(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, categories)
}

func (h HandlerSet) GetCategory(c *gin.Context) {
	id, ok := h.idParam(c, "id")
	if !ok {
		return
	}
	category, err := h.categories.Get(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, category)
}

func (h HandlerSet) FindCategoriesByName(c *gin.Context) {
	categories, err := h.categories.FindByName(c.Request.Context(), c.Param("name"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, categories)
}

func (h HandlerSet) CreateCategory(c *gin.Context) {
	var req categoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, "invalid body")
		return
	}
	category, err := h.categories.Create(c.Request.Context(), req.Name)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, category)
}

func (h HandlerSet) UpdateCategory(c *gin.Context) {
	id, ok := h.idParam(c, "id")
	if !ok {
		return
	}
	var req categoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, "invalid body")
		return
	}
	category, err := h.categories.Update(c.Request.Context(), id, req.Name)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, category)
}

func (h HandlerSet) DeleteCategory(c *gin.Context) {
	id, ok := h.idParam(c, "id")
	if !ok {
		return
	}
	if err := h.categories.Delete(c.Request.Context(), id); err != nil {
		h.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
