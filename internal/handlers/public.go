package handlers

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"mk3hierros/internal/cache"
	"mk3hierros/internal/models"
	"mk3hierros/internal/repository"
)

// PublicWorks lists finished works for the website, optionally narrowed by
// ?categoria=<id>. Results are cached for cache.ttl.
func (h HandlerSet) PublicWorks(c *gin.Context) {
	key := cache.KeyFinishedWorks
	var categoryID *int64
	if raw := c.Query("categoria"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || id <= 0 {
			h.badRequest(c, "invalid categoria")
			return
		}
		categoryID = &id
		key = cache.KeyWorksByCategory(id)
	}

	works, err := cache.GetOrFetch(c.Request.Context(), h.cache, h.log, key, h.cfg.Cache.TTL,
		func(ctx context.Context) ([]models.Work, error) {
			works, err := h.works.ListFinished(ctx, categoryID)
			if err != nil {
				return nil, err
			}
			return h.worksURLs(works), nil
		})
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, works)
}

// PublicWork shows one finished work. Works in any other status do not exist
// for the website.
func (h HandlerSet) PublicWork(c *gin.Context) {
	id, ok := h.idParam(c, "id")
	if !ok {
		return
	}

	work, err := cache.GetOrFetch(c.Request.Context(), h.cache, h.log, cache.KeyWork(id), h.cfg.Cache.TTL,
		func(ctx context.Context) (models.Work, error) {
			work, err := h.works.Get(ctx, id)
			if err != nil {
				return models.Work{}, err
			}
			if work.Status != models.StatusFinished {
				return models.Work{}, repository.ErrWorkNotFound
			}
			return h.workURLs(work), nil
		})
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, work)
}

type contactForm struct {
	Name        string `form:"name"`
	Email       string `form:"email"`
	Phone       string `form:"phone"`
	Description string `form:"description"`
}

// Contact turns the website form into a WhatsApp conversation with the shop.
func (h HandlerSet) Contact(c *gin.Context) {
	number := h.cfg.Site.WhatsAppNumber
	if number == "" {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "contact is not configured"})
		return
	}

	var form contactForm
	if err := c.ShouldBind(&form); err != nil {
		h.badRequest(c, "invalid form")
		return
	}
	required := []struct{ field, value string }{
		{"name", form.Name},
		{"email", form.Email},
		{"phone", form.Phone},
		{"description", form.Description},
	}
	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			h.badRequest(c, r.field+" is required")
			return
		}
	}

	c.Redirect(http.StatusSeeOther, whatsAppURL(number, form))
}

func whatsAppURL(number string, form contactForm) string {
	text := fmt.Sprintf("Hola, soy %s (%s, %s).\n%s",
		strings.TrimSpace(form.Name),
		strings.TrimSpace(form.Email),
		strings.TrimSpace(form.Phone),
		strings.TrimSpace(form.Description),
	)
	digits := strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, number)
	return "https://wa.me/" + digits + "?text=" + strings.ReplaceAll(url.QueryEscape(text), "+", "%20")
}
