package sniffer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetectHead(t *testing.T) {
	tests := []struct {
		name string
		head []byte
		want MediaType
	}{
		{"jpeg", []byte{0xff, 0xd8, 0xff, 0xe0, 0x00}, TypeJPEG},
		{"png", []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n', 0}, TypePNG},
		{"gif", []byte("GIF89a\x01\x00"), TypeGIF},
		{"webp", []byte("RIFF\x00\x00\x00\x00WEBPVP8 "), TypeWEBP},
		{"avif", []byte("\x00\x00\x00\x1cftypavif\x00\x00\x00\x00"), TypeAVIF},
		{"svg", []byte("  <svg xmlns=\"http://www.w3.org/2000/svg\"/>"), TypeSVG},
		{"xml svg", []byte("<?xml version=\"1.0\"?><svg/>"), TypeSVG},
		{"doctype svg", []byte("<!DOCTYPE svg><svg/>"), TypeSVG},
		{"commented svg", []byte("<!-- plano --><svg/>"), TypeSVG},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DetectHead(tt.head)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.Type)
		})
	}

	_, err := DetectHead([]byte("<?xml version=\"1.0\"?><feed/>"))
	assert.ErrorIs(t, err, ErrUnknownType)
	_, err = DetectHead(nil)
	assert.ErrorIs(t, err, ErrUnknownType)
}

func TestIsImageMIME(t *testing.T) {
	assert.True(t, IsImageMIME("image/jpeg"))
	assert.True(t, IsImageMIME("image/svg+xml; charset=utf-8"))
	assert.True(t, IsImageMIME("IMAGE/PNG"))
	assert.False(t, IsImageMIME("text/plain"))
	assert.False(t, IsImageMIME(""))
}

func TestResolvePrefersDetectedType(t *testing.T) {
	mimeType, kind := Resolve("image/png", []byte{0xff, 0xd8, 0xff, 0xe0})
	assert.Equal(t, "image/jpeg", mimeType)
	assert.Equal(t, TypeJPEG, kind)

	mimeType, kind = Resolve("image/heic", []byte("....ftypheic"))
	assert.Equal(t, "image/heic", mimeType)
	assert.Empty(t, kind)
}
