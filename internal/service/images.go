package service

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/rs/zerolog"

	"mk3hierros/internal/config"
	"mk3hierros/internal/media/sniffer"
	"mk3hierros/internal/media/svg"
	"mk3hierros/internal/metrics"
	"mk3hierros/internal/models"
	"mk3hierros/internal/repository"
	"mk3hierros/internal/storage"
)

// UploadFile is one part of a multipart upload. Size and MIMEType come from
// the part headers and are checked before Content is read.
type UploadFile struct {
	Name     string
	MIMEType string
	Size     int64
	Content  io.Reader
}

type ImageService struct {
	works  WorkStore
	images ImageStore
	blobs  BlobStore
	limits config.UploadConfig
	log    zerolog.Logger
}

func NewImageService(works WorkStore, images ImageStore, blobs BlobStore, limits config.UploadConfig, log zerolog.Logger) *ImageService {
	return &ImageService{
		works:  works,
		images: images,
		blobs:  blobs,
		limits: limits,
		log:    log,
	}
}

// Upload stores every file of one request or none of them. Validation of all
// files happens before the first write.
func (s *ImageService) Upload(ctx context.Context, workID int64, files []UploadFile) ([]models.WorkImage, error) {
	if err := s.validate(files); err != nil {
		return nil, err
	}
	if _, err := s.works.GetByID(ctx, workID); err != nil {
		return nil, err
	}

	pending := make([]models.WorkImage, 0, len(files))
	for _, f := range files {
		img, err := s.prepare(f)
		if err != nil {
			return nil, err
		}
		pending = append(pending, img)
	}

	var written []string
	if s.blobs != nil {
		for i := range pending {
			key := storage.ObjectKey(workID, extension(pending[i].ImageMimeType))
			if err := s.blobs.Put(ctx, key, pending[i].ImageMimeType, pending[i].Data); err != nil {
				s.removeObjects(ctx, written)
				return nil, err
			}
			written = append(written, key)
			pending[i].ObjectKey = &key
			pending[i].Data = nil
		}
	}

	saved, err := s.images.CreateBatch(ctx, workID, pending)
	if err != nil {
		s.removeObjects(ctx, written)
		return nil, err
	}

	metrics.RecordImagesUploaded(len(saved))
	s.log.Info().Int64("work_id", workID).Int("count", len(saved)).Msg("images uploaded")
	return saved, nil
}

func (s *ImageService) List(ctx context.Context, workID int64) ([]models.WorkImage, error) {
	if _, err := s.works.GetByID(ctx, workID); err != nil {
		return nil, err
	}
	return s.images.ListByWork(ctx, workID)
}

// Get returns the image with its bytes. An image that exists but belongs to
// another work is reported as not found.
func (s *ImageService) Get(ctx context.Context, workID, imageID int64) (models.WorkImage, error) {
	img, err := s.images.Get(ctx, imageID)
	if err != nil {
		return models.WorkImage{}, err
	}
	if img.WorkID != workID {
		return models.WorkImage{}, repository.ErrImageNotFound
	}
	if img.ObjectKey == nil {
		return img, nil
	}
	if s.blobs == nil {
		return models.WorkImage{}, fmt.Errorf("image %d is in object storage but no object store is configured", imageID)
	}

	data, err := s.blobs.Get(ctx, *img.ObjectKey)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotFound) {
			return models.WorkImage{}, repository.ErrImageNotFound
		}
		return models.WorkImage{}, err
	}
	img.Data = data
	return img, nil
}

func (s *ImageService) Delete(ctx context.Context, imageID int64) error {
	img, err := s.images.Delete(ctx, imageID)
	if err != nil {
		return err
	}
	if img.ObjectKey != nil && s.blobs != nil {
		if err := s.blobs.Remove(ctx, *img.ObjectKey); err != nil {
			s.log.Warn().Err(err).Int64("image_id", imageID).Msg("orphaned image object")
		}
	}
	s.log.Info().Int64("image_id", imageID).Int64("work_id", img.WorkID).Msg("image deleted")
	return nil
}

func (s *ImageService) validate(files []UploadFile) error {
	if len(files) == 0 {
		return &UploadError{Reason: "at least one image is required"}
	}
	if len(files) > s.limits.MaxFiles {
		return &UploadError{Reason: fmt.Sprintf("at most %d images per upload", s.limits.MaxFiles)}
	}
	for _, f := range files {
		if !sniffer.IsImageMIME(f.MIMEType) {
			return &UploadError{File: f.Name, Reason: fmt.Sprintf("unsupported file type %q", f.MIMEType)}
		}
		if f.Size > s.limits.MaxFileBytes {
			return &UploadError{File: f.Name, Reason: fmt.Sprintf("file exceeds %d bytes", s.limits.MaxFileBytes)}
		}
	}
	return nil
}

func (s *ImageService) prepare(f UploadFile) (models.WorkImage, error) {
	data, err := io.ReadAll(io.LimitReader(f.Content, s.limits.MaxFileBytes+1))
	if err != nil {
		return models.WorkImage{}, fmt.Errorf("read %s: %w", f.Name, err)
	}
	if int64(len(data)) > s.limits.MaxFileBytes {
		return models.WorkImage{}, &UploadError{File: f.Name, Reason: fmt.Sprintf("file exceeds %d bytes", s.limits.MaxFileBytes)}
	}
	if len(data) == 0 {
		return models.WorkImage{}, &UploadError{File: f.Name, Reason: "empty file"}
	}

	// Anything stored as SVG is sanitised, including content the sniffer
	// did not recognise but the client declared as SVG.
	mimeType, kind := sniffer.Resolve(f.MIMEType, data)
	if kind == sniffer.TypeSVG || mimeType == sniffer.SVGMIME {
		clean, err := svg.Sanitize(data)
		if err != nil {
			return models.WorkImage{}, &UploadError{File: f.Name, Reason: err.Error()}
		}
		data = clean
	}

	return models.WorkImage{
		ImageName:     f.Name,
		ImageMimeType: mimeType,
		SizeBytes:     int64(len(data)),
		Data:          data,
	}, nil
}

func (s *ImageService) removeObjects(ctx context.Context, keys []string) {
	for _, key := range keys {
		if err := s.blobs.Remove(ctx, key); err != nil {
			s.log.Warn().Err(err).Str("object_key", key).Msg("cleanup after failed upload")
		}
	}
}

func extension(mimeType string) string {
	switch mimeType {
	case "image/jpeg":
		return "jpeg"
	case "image/png":
		return "png"
	case "image/gif":
		return "gif"
	case "image/webp":
		return "webp"
	case "image/avif":
		return "avif"
	case "image/svg+xml":
		return "svg"
	}
	return ""
}
