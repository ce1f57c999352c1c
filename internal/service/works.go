package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"mk3hierros/internal/models"
	"mk3hierros/internal/repository"
)

type WorkService struct {
	works  WorkStore
	images ImageStore
	blobs  BlobStore
	log    zerolog.Logger
}

func NewWorkService(works WorkStore, images ImageStore, blobs BlobStore, log zerolog.Logger) *WorkService {
	return &WorkService{works: works, images: images, blobs: blobs, log: log}
}

func (s *WorkService) List(ctx context.Context) ([]models.Work, error) {
	return s.list(ctx, repository.WorkFilter{})
}

func (s *WorkService) ListByCategory(ctx context.Context, categoryID int64) ([]models.Work, error) {
	return s.list(ctx, repository.WorkFilter{CategoryID: &categoryID})
}

func (s *WorkService) ListByPriority(ctx context.Context, raw string) ([]models.Work, error) {
	priority, err := models.ParsePriority(raw)
	if err != nil {
		return nil, invalidf("%v", err)
	}
	return s.list(ctx, repository.WorkFilter{Priority: &priority})
}

func (s *WorkService) ListByStatus(ctx context.Context, raw string) ([]models.Work, error) {
	status, err := models.ParseStatus(raw)
	if err != nil {
		return nil, invalidf("%v", err)
	}
	return s.list(ctx, repository.WorkFilter{Status: &status})
}

// ListFinished backs the public gallery. A nil categoryID lists every
// finished work.
func (s *WorkService) ListFinished(ctx context.Context, categoryID *int64) ([]models.Work, error) {
	finished := models.StatusFinished
	return s.list(ctx, repository.WorkFilter{Status: &finished, CategoryID: categoryID})
}

func (s *WorkService) Get(ctx context.Context, id int64) (models.Work, error) {
	work, err := s.works.GetByID(ctx, id)
	if err != nil {
		return models.Work{}, err
	}
	images, err := s.images.ListByWork(ctx, id)
	if err != nil {
		return models.Work{}, fmt.Errorf("list images: %w", err)
	}
	work.Images = images
	return work, nil
}

func (s *WorkService) Create(ctx context.Context, input models.WorkInput) (models.Work, error) {
	work := models.Work{
		Title:                strings.TrimSpace(input.Title),
		Description:          input.Description,
		Measures:             input.Measures,
		Priority:             models.PriorityMedium,
		Status:               models.StatusPendingApproval,
		EndDate:              input.EndDate,
		Price:                input.Price,
		FinalPrice:           input.FinalPrice,
		MarketingTitle:       input.MarketingTitle,
		MarketingDescription: input.MarketingDescription,
	}
	if work.Title == "" {
		return models.Work{}, invalidf("title is required")
	}
	if input.Priority != "" {
		priority, err := models.ParsePriority(input.Priority)
		if err != nil {
			return models.Work{}, invalidf("%v", err)
		}
		work.Priority = priority
	}
	if input.Status != "" {
		status, err := models.ParseStatus(input.Status)
		if err != nil {
			return models.Work{}, invalidf("%v", err)
		}
		work.Status = status
	}
	if input.CategoryID != nil && *input.CategoryID != 0 {
		work.Category = &models.Category{ID: *input.CategoryID}
	}

	created, err := s.works.Create(ctx, work)
	if err != nil {
		return models.Work{}, unknownCategory(err)
	}
	s.log.Info().Int64("work_id", created.ID).Str("status", string(created.Status)).Msg("work created")
	return created, nil
}

// Update applies a partial update. Any status may be written; the finish
// rules are enforced by the staff tooling, not here.
func (s *WorkService) Update(ctx context.Context, id int64, patch models.WorkPatch) (models.Work, error) {
	if patch.Priority != nil {
		if _, err := models.ParsePriority(string(*patch.Priority)); err != nil {
			return models.Work{}, invalidf("%v", err)
		}
	}
	if patch.Status != nil {
		if _, err := models.ParseStatus(string(*patch.Status)); err != nil {
			return models.Work{}, invalidf("%v", err)
		}
	}
	if patch.Title != nil && strings.TrimSpace(*patch.Title) == "" {
		return models.Work{}, invalidf("title cannot be empty")
	}

	if _, err := s.works.Update(ctx, id, patch); err != nil {
		return models.Work{}, unknownCategory(err)
	}
	return s.Get(ctx, id)
}

// Delete removes the work and its images. Blobs in object storage are removed
// after the rows; a failed removal is logged and leaves an orphan object.
func (s *WorkService) Delete(ctx context.Context, id int64) error {
	var keys []string
	if s.blobs != nil {
		var err error
		if keys, err = s.images.ObjectKeysByWork(ctx, id); err != nil {
			return fmt.Errorf("list object keys: %w", err)
		}
	}

	if err := s.works.Delete(ctx, id); err != nil {
		return err
	}

	for _, key := range keys {
		if err := s.blobs.Remove(ctx, key); err != nil {
			s.log.Warn().Err(err).Int64("work_id", id).Str("object_key", key).Msg("orphaned image object")
		}
	}
	s.log.Info().Int64("work_id", id).Msg("work deleted")
	return nil
}

func (s *WorkService) list(ctx context.Context, filter repository.WorkFilter) ([]models.Work, error) {
	works, err := s.works.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	if len(works) == 0 {
		return works, nil
	}

	ids := make([]int64, len(works))
	for i, w := range works {
		ids[i] = w.ID
	}
	byWork, err := s.images.ListByWorks(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("list images: %w", err)
	}
	for i := range works {
		if images, ok := byWork[works[i].ID]; ok {
			works[i].Images = images
		} else {
			works[i].Images = []models.WorkImage{}
		}
	}
	return works, nil
}

// unknownCategory marks a dangling categoryId as bad input while keeping the
// repository error visible to errors.Is.
func unknownCategory(err error) error {
	if errors.Is(err, repository.ErrCategoryNotFound) {
		return fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	return err
}
