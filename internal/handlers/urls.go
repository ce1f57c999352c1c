package handlers

import (
	"mk3hierros/internal/models"
)

// imageURLs fills in where each image is served, from http.publicbaseurl.
// Without a base the field stays empty and clients use their own address.
func (h HandlerSet) imageURLs(images []models.WorkImage) []models.WorkImage {
	if h.cfg.HTTP.PublicBaseURL == "" {
		return images
	}
	for i := range images {
		images[i].URL = models.ImageURL(h.cfg.HTTP.PublicBaseURL, images[i].WorkID, images[i].ID)
	}
	return images
}

func (h HandlerSet) workURLs(work models.Work) models.Work {
	work.Images = h.imageURLs(work.Images)
	return work
}

func (h HandlerSet) worksURLs(works []models.Work) []models.Work {
	for i := range works {
		works[i] = h.workURLs(works[i])
	}
	return works
}
