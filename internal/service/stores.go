package service

import (
	"context"

	"mk3hierros/internal/models"
	"mk3hierros/internal/repository"
)

// The interfaces below are satisfied by the postgres repositories and by the
// in-memory stores in internal/testutil.

type CategoryStore interface {
	List(ctx context.Context) ([]models.Category, error)
	GetByID(ctx context.Context, id int64) (models.Category, error)
	FindByName(ctx context.Context, name string) ([]models.Category, error)
	Create(ctx context.Context, name string) (models.Category, error)
	Update(ctx context.Context, category models.Category) (models.Category, error)
	Delete(ctx context.Context, id int64) error
	Count(ctx context.Context) (int, error)
}

type WorkStore interface {
	List(ctx context.Context, filter repository.WorkFilter) ([]models.Work, error)
	GetByID(ctx context.Context, id int64) (models.Work, error)
	Create(ctx context.Context, work models.Work) (models.Work, error)
	Update(ctx context.Context, id int64, patch models.WorkPatch) (models.Work, error)
	Delete(ctx context.Context, id int64) error
}

type ImageStore interface {
	CreateBatch(ctx context.Context, workID int64, images []models.WorkImage) ([]models.WorkImage, error)
	ListByWork(ctx context.Context, workID int64) ([]models.WorkImage, error)
	ListByWorks(ctx context.Context, workIDs []int64) (map[int64][]models.WorkImage, error)
	Get(ctx context.Context, id int64) (models.WorkImage, error)
	Delete(ctx context.Context, id int64) (models.WorkImage, error)
	ObjectKeysByWork(ctx context.Context, workID int64) ([]string, error)
}

// BlobStore holds image bytes outside postgres. It is nil when images are
// stored inline.
type BlobStore interface {
	Put(ctx context.Context, key, contentType string, data []byte) error
	Get(ctx context.Context, key string) ([]byte, error)
	Remove(ctx context.Context, key string) error
}
