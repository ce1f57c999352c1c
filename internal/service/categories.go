package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"mk3hierros/internal/models"
)

// DefaultCategories are inserted on first start so the staff app has
// something to pick from.
var DefaultCategories = []string{"Portones", "Rejas", "Puertas", "Otros"}

type CategoryService struct {
	store CategoryStore
	log   zerolog.Logger
}

func NewCategoryService(store CategoryStore, log zerolog.Logger) *CategoryService {
	return &CategoryService{store: store, log: log}
}

func (s *CategoryService) List(ctx context.Context) ([]models.Category, error) {
	return s.store.List(ctx)
}

func (s *CategoryService) Get(ctx context.Context, id int64) (models.Category, error) {
	return s.store.GetByID(ctx, id)
}

// FindByName matches case-insensitively and may return an empty slice.
func (s *CategoryService) FindByName(ctx context.Context, name string) ([]models.Category, error) {
	return s.store.FindByName(ctx, strings.TrimSpace(name))
}

func (s *CategoryService) Create(ctx context.Context, name string) (models.Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return models.Category{}, invalidf("name is required")
	}
	return s.store.Create(ctx, name)
}

func (s *CategoryService) Update(ctx context.Context, id int64, name string) (models.Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return models.Category{}, invalidf("name is required")
	}
	return s.store.Update(ctx, models.Category{ID: id, Name: name})
}

func (s *CategoryService) Delete(ctx context.Context, id int64) error {
	return s.store.Delete(ctx, id)
}

// SeedDefaults fills an empty category table and reports how many rows it
// inserted. A table with any row is left alone.
func (s *CategoryService) SeedDefaults(ctx context.Context) (int, error) {
	count, err := s.store.Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("count categories: %w", err)
	}
	if count > 0 {
		return 0, nil
	}

	for i, name := range DefaultCategories {
		if _, err := s.store.Create(ctx, name); err != nil {
			return i, fmt.Errorf("seed category %s: %w", name, err)
		}
	}
	s.log.Info().Int("count", len(DefaultCategories)).Msg("seeded default categories")
	return len(DefaultCategories), nil
}
