package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestImageURL(t *testing.T) {
	assert.Equal(t, "https://mk3hierros.com.ar/api/trabajo/3/images/9", ImageURL("https://mk3hierros.com.ar/api/", 3, 9))
	assert.Equal(t, "/trabajo/3/images/9", ImageURL("", 3, 9))
}

func TestParseImageURL(t *testing.T) {
	tests := []struct {
		raw     string
		work    int64
		image   int64
		matches bool
	}{
		{"https://mk3hierros.com.ar/api/trabajo/3/images/9", 3, 9, true},
		{"http://localhost:3000/trabajo/3/images/9/", 3, 9, true},
		{"http://10.0.2.2:3000/trabajo/12/images/140?v=2", 12, 140, true},
		{"https://mk3hierros.com.ar/trabajo/3", 0, 0, false},
		{"https://mk3hierros.com.ar/trabajo/3/images/9/extra", 0, 0, false},
		{"https://example.com/fotos/porton.jpg", 0, 0, false},
		{"::not a url", 0, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			work, image, ok := ParseImageURL(tt.raw)
			assert.Equal(t, tt.matches, ok)
			assert.Equal(t, tt.work, work)
			assert.Equal(t, tt.image, image)
		})
	}
}
