package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"mk3hierros/internal/database"
	"mk3hierros/internal/models"
)

type ImageRepository struct {
	db database.DB
}

func NewImageRepository(db database.DB) *ImageRepository {
	return &ImageRepository{db: db}
}

// CreateBatch stores the images of one upload in a single transaction. Orders
// continue from the current maximum for the work; gaps left by deletions are
// never filled.
func (r *ImageRepository) CreateBatch(ctx context.Context, workID int64, images []models.WorkImage) ([]models.WorkImage, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	var exists bool
	if err := tx.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM works WHERE id = $1)`, workID).Scan(&exists); err != nil {
		return nil, fmt.Errorf("check work: %w", err)
	}
	if !exists {
		return nil, ErrWorkNotFound
	}

	var maxOrder int
	if err := tx.QueryRow(ctx, `SELECT COALESCE(MAX(sort_order), 0) FROM work_images WHERE work_id = $1`, workID).Scan(&maxOrder); err != nil {
		return nil, fmt.Errorf("max order: %w", err)
	}

	const insert = `
		INSERT INTO work_images (
			work_id, image_data, object_key, image_name, image_mime_type, size_bytes, sort_order
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7
		)
		RETURNING id, uploaded_at
	`

	saved := make([]models.WorkImage, 0, len(images))
	for i, img := range images {
		img.WorkID = workID
		img.Order = maxOrder + i + 1
		if err := tx.QueryRow(ctx, insert,
			workID,
			img.Data,
			img.ObjectKey,
			img.ImageName,
			img.ImageMimeType,
			img.SizeBytes,
			img.Order,
		).Scan(&img.ID, &img.UploadedAt); err != nil {
			return nil, fmt.Errorf("insert image %s: %w", img.ImageName, err)
		}
		img.Data = nil
		saved = append(saved, img)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return saved, nil
}

// ListByWork returns metadata only, in display order.
func (r *ImageRepository) ListByWork(ctx context.Context, workID int64) ([]models.WorkImage, error) {
	const query = `
		SELECT id, work_id, image_name, image_mime_type, size_bytes, sort_order, uploaded_at
		FROM work_images
		WHERE work_id = $1
		ORDER BY sort_order, id
	`
	byWork, err := r.listMetadata(ctx, query, workID)
	if err != nil {
		return nil, err
	}
	images := byWork[workID]
	if images == nil {
		images = []models.WorkImage{}
	}
	return images, nil
}

// ListByWorks groups metadata for several works with one query.
func (r *ImageRepository) ListByWorks(ctx context.Context, workIDs []int64) (map[int64][]models.WorkImage, error) {
	if len(workIDs) == 0 {
		return map[int64][]models.WorkImage{}, nil
	}
	const query = `
		SELECT id, work_id, image_name, image_mime_type, size_bytes, sort_order, uploaded_at
		FROM work_images
		WHERE work_id = ANY($1)
		ORDER BY work_id, sort_order, id
	`
	return r.listMetadata(ctx, query, workIDs)
}

// Get loads one image including its inline data or object key.
func (r *ImageRepository) Get(ctx context.Context, id int64) (models.WorkImage, error) {
	const query = `
		SELECT id, work_id, image_data, object_key, image_name, image_mime_type, size_bytes, sort_order, uploaded_at
		FROM work_images
		WHERE id = $1
	`
	var img models.WorkImage
	if err := r.db.QueryRow(ctx, query, id).Scan(
		&img.ID,
		&img.WorkID,
		&img.Data,
		&img.ObjectKey,
		&img.ImageName,
		&img.ImageMimeType,
		&img.SizeBytes,
		&img.Order,
		&img.UploadedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.WorkImage{}, ErrImageNotFound
		}
		return models.WorkImage{}, err
	}
	return img, nil
}

// Delete hard-deletes one image and returns what is needed to clean up its
// blob. Other images of the work keep their order.
func (r *ImageRepository) Delete(ctx context.Context, id int64) (models.WorkImage, error) {
	const query = `
		DELETE FROM work_images
		WHERE id = $1
		RETURNING id, work_id, COALESCE(object_key, '')
	`
	var (
		img       models.WorkImage
		objectKey string
	)
	if err := r.db.QueryRow(ctx, query, id).Scan(&img.ID, &img.WorkID, &objectKey); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.WorkImage{}, ErrImageNotFound
		}
		return models.WorkImage{}, err
	}
	if objectKey != "" {
		img.ObjectKey = &objectKey
	}
	return img, nil
}

// ObjectKeysByWork lists the object keys of a work's images, used before the
// work row is deleted so the blobs can be removed as well.
func (r *ImageRepository) ObjectKeysByWork(ctx context.Context, workID int64) ([]string, error) {
	const query = `SELECT object_key FROM work_images WHERE work_id = $1 AND object_key IS NOT NULL`
	rows, err := r.db.Query(ctx, query, workID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, err
		}
		keys = append(keys, key)
	}
	return keys, rows.Err()
}

func (r *ImageRepository) listMetadata(ctx context.Context, query string, args ...any) (map[int64][]models.WorkImage, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	byWork := make(map[int64][]models.WorkImage)
	for rows.Next() {
		var img models.WorkImage
		if err := rows.Scan(
			&img.ID,
			&img.WorkID,
			&img.ImageName,
			&img.ImageMimeType,
			&img.SizeBytes,
			&img.Order,
			&img.UploadedAt,
		); err != nil {
			return nil, err
		}
		byWork[img.WorkID] = append(byWork[img.WorkID], img)
	}
	return byWork, rows.Err()
}
