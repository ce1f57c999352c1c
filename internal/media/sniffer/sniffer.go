// Package sniffer recognises the image formats the shop uploads by their
// leading bytes.
package sniffer

import (
	"bytes"
	"errors"
	"mime"
	"strings"
)

type MediaType string

const (
	TypeJPEG MediaType = "jpeg"
	TypePNG  MediaType = "png"
	TypeGIF  MediaType = "gif"
	TypeWEBP MediaType = "webp"
	TypeAVIF MediaType = "avif"
	TypeSVG  MediaType = "svg"
)

// HeadSize is how many bytes DetectHead needs at most.
const HeadSize = 512

var ErrUnknownType = errors.New("unknown media type")

type Result struct {
	Type MediaType
	MIME string
}

const SVGMIME = "image/svg+xml"

func DetectHead(head []byte) (Result, error) {
	if len(head) > HeadSize {
		head = head[:HeadSize]
	}
	switch {
	case len(head) == 0:
		return Result{}, ErrUnknownType
	case isJPEG(head):
		return Result{Type: TypeJPEG, MIME: "image/jpeg"}, nil
	case isPNG(head):
		return Result{Type: TypePNG, MIME: "image/png"}, nil
	case isGIF(head):
		return Result{Type: TypeGIF, MIME: "image/gif"}, nil
	case isWEBP(head):
		return Result{Type: TypeWEBP, MIME: "image/webp"}, nil
	case isAVIF(head):
		return Result{Type: TypeAVIF, MIME: "image/avif"}, nil
	case isSVG(head):
		return Result{Type: TypeSVG, MIME: SVGMIME}, nil
	}
	return Result{}, ErrUnknownType
}

// IsImageMIME reports whether a declared content type is in the image/*
// family. Parameters such as charset are ignored.
func IsImageMIME(contentType string) bool {
	return strings.HasPrefix(NormalizeMIME(contentType), "image/")
}

func NormalizeMIME(contentType string) string {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return strings.ToLower(strings.TrimSpace(contentType))
	}
	return mediaType
}

// Resolve picks the MIME type to store for an upload: the detected type when
// the content is recognised, the declared one otherwise.
func Resolve(declared string, head []byte) (string, MediaType) {
	result, err := DetectHead(head)
	if err != nil {
		return NormalizeMIME(declared), ""
	}
	return result.MIME, result.Type
}

func isJPEG(head []byte) bool {
	return len(head) > 3 &&
		head[0] == 0xff &&
		head[1] == 0xd8 &&
		head[2] == 0xff
}

func isPNG(head []byte) bool {
	pngMagic := []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n'}
	return len(head) >= len(pngMagic) && bytes.Equal(head[:len(pngMagic)], pngMagic)
}

func isGIF(head []byte) bool {
	return len(head) >= 6 && (bytes.Equal(head[:6], []byte("GIF87a")) || bytes.Equal(head[:6], []byte("GIF89a")))
}

func isWEBP(head []byte) bool {
	return len(head) >= 12 &&
		bytes.Equal(head[:4], []byte("RIFF")) &&
		bytes.Equal(head[8:12], []byte("WEBP"))
}

func isAVIF(head []byte) bool {
	if len(head) < 12 {
		return false
	}
	return string(head[4:8]) == "ftyp" && bytes.Contains(head[8:], []byte("avif"))
}

// isSVG accepts a root svg element optionally preceded by an XML
// declaration, a doctype or comments.
func isSVG(head []byte) bool {
	trimmed := strings.ToLower(strings.TrimSpace(string(head)))
	if strings.HasPrefix(trimmed, "<svg") {
		return true
	}
	for _, prefix := range []string{"<?xml", "<!doctype svg", "<!--"} {
		if strings.HasPrefix(trimmed, prefix) {
			return strings.Contains(trimmed, "<svg")
		}
	}
	return false
}
