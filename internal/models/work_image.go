package models

import (
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// WorkImage is the metadata row of an image attached to a work. Data is only
// populated when the blob itself is requested. URL is filled in by the API
// from its public base URL.
type WorkImage struct {
	ID            int64     `json:"id"`
	WorkID        int64     `json:"workId"`
	ImageName     string    `json:"imageName"`
	ImageMimeType string    `json:"imageMimeType"`
	SizeBytes     int64     `json:"sizeBytes"`
	Order         int       `json:"order"`
	URL           string    `json:"url,omitempty"`
	ObjectKey     *string   `json:"-"`
	Data          []byte    `json:"-"`
	UploadedAt    time.Time `json:"uploadedAt"`
}

var imagePathPattern = regexp.MustCompile(`/trabajo/(\d+)/images/(\d+)/?$`)

// ImageURL joins base with the path an image blob is served under. An empty
// base yields the bare path.
func ImageURL(base string, workID, imageID int64) string {
	return strings.TrimRight(base, "/") + fmt.Sprintf("/trabajo/%d/images/%d", workID, imageID)
}

// ParseImageURL extracts the work and image ids from an image URL. Only the
// path is inspected, so the same image is recognised behind any host or
// path prefix.
func ParseImageURL(raw string) (workID, imageID int64, ok bool) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return 0, 0, false
	}
	m := imagePathPattern.FindStringSubmatch(u.Path)
	if m == nil {
		return 0, 0, false
	}
	workID, err = strconv.ParseInt(m[1], 10, 64)
	if err != nil {
		return 0, 0, false
	}
	imageID, err = strconv.ParseInt(m[2], 10, 64)
	if err != nil {
		return 0, 0, false
	}
	return workID, imageID, true
}
