package service

import (
	"errors"
	"fmt"
)

var ErrInvalidInput = errors.New("invalid input")

func invalidf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}

// UploadError rejects an image upload before anything is stored.
type UploadError struct {
	File   string
	Reason string
}

func (e *UploadError) Error() string {
	if e.File == "" {
		return e.Reason
	}
	return fmt.Sprintf("%s: %s", e.File, e.Reason)
}
