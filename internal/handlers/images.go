package handlers

import (
	"mime"
	"net/http"

	"github.com/gin-gonic/gin"

	"mk3hierros/internal/media/sniffer"
	"mk3hierros/internal/service"
)

const imagesField = "images"

func (h HandlerSet) UploadImages(c *gin.Context) {
	workID, ok := h.idParam(c, "id")
	if !ok {
		return
	}

	form, err := c.MultipartForm()
	if err != nil {
		h.badRequest(c, "multipart form with field \"images\" is required")
		return
	}
	headers := form.File[imagesField]

	files := make([]service.UploadFile, 0, len(headers))
	for _, header := range headers {
		file, err := header.Open()
		if err != nil {
			h.badRequest(c, "cannot read "+header.Filename)
			return
		}
		defer file.Close()

		files = append(files, service.UploadFile{
			Name:     header.Filename,
			MIMEType: header.Header.Get("Content-Type"),
			Size:     header.Size,
			Content:  file,
		})
	}

	saved, err := h.images.Upload(c.Request.Context(), workID, files)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, h.imageURLs(saved))
}

func (h HandlerSet) ListImages(c *gin.Context) {
	workID, ok := h.idParam(c, "id")
	if !ok {
		return
	}
	images, err := h.images.List(c.Request.Context(), workID)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, h.imageURLs(images))
}

func (h HandlerSet) GetImage(c *gin.Context) {
	workID, ok := h.idParam(c, "id")
	if !ok {
		return
	}
	imageID, ok := h.idParam(c, "imageId")
	if !ok {
		return
	}

	img, err := h.images.Get(c.Request.Context(), workID, imageID)
	if err != nil {
		h.fail(c, err)
		return
	}

	c.Header("Content-Disposition", mime.FormatMediaType("inline", map[string]string{"filename": img.ImageName}))
	c.Header("Cache-Control", "public, max-age=86400")
	c.Header("X-Content-Type-Options", "nosniff")
	if sniffer.NormalizeMIME(img.ImageMimeType) == sniffer.SVGMIME {
		// Opened directly, a drawing runs with no script and no origin.
		c.Header("Content-Security-Policy", "sandbox")
	}
	c.Data(http.StatusOK, img.ImageMimeType, img.Data)
}

func (h HandlerSet) DeleteImage(c *gin.Context) {
	imageID, ok := h.idParam(c, "imageId")
	if !ok {
		return
	}
	if err := h.images.Delete(c.Request.Context(), imageID); err != nil {
		h.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
