package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"mk3hierros/internal/database"
	"mk3hierros/internal/models"
)

type CategoryRepository struct {
	db database.DB
}

func NewCategoryRepository(db database.DB) *CategoryRepository {
	return &CategoryRepository{db: db}
}

func (r *CategoryRepository) List(ctx context.Context) ([]models.Category, error) {
	const query = `SELECT id, name FROM categories ORDER BY id`
	return r.query(ctx, query)
}

func (r *CategoryRepository) GetByID(ctx context.Context, id int64) (models.Category, error) {
	const query = `SELECT id, name FROM categories WHERE id = $1`

	var category models.Category
	if err := r.db.QueryRow(ctx, query, id).Scan(&category.ID, &category.Name); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Category{}, ErrCategoryNotFound
		}
		return models.Category{}, err
	}
	return category, nil
}

// FindByName matches the whole name, ignoring case.
func (r *CategoryRepository) FindByName(ctx context.Context, name string) ([]models.Category, error) {
	const query = `SELECT id, name FROM categories WHERE lower(name) = lower($1) ORDER BY id`
	return r.query(ctx, query, name)
}

func (r *CategoryRepository) Create(ctx context.Context, name string) (models.Category, error) {
	const query = `INSERT INTO categories (name) VALUES ($1) RETURNING id, name`

	var category models.Category
	if err := r.db.QueryRow(ctx, query, name).Scan(&category.ID, &category.Name); err != nil {
		if hasPgCode(err, pgUniqueViolation) {
			return models.Category{}, ErrCategoryExists
		}
		return models.Category{}, err
	}
	return category, nil
}

func (r *CategoryRepository) Update(ctx context.Context, category models.Category) (models.Category, error) {
	const query = `UPDATE categories SET name = $2 WHERE id = $1 RETURNING id, name`

	var updated models.Category
	if err := r.db.QueryRow(ctx, query, category.ID, category.Name).Scan(&updated.ID, &updated.Name); err != nil {
		switch {
		case errors.Is(err, pgx.ErrNoRows):
			return models.Category{}, ErrCategoryNotFound
		case hasPgCode(err, pgUniqueViolation):
			return models.Category{}, ErrCategoryExists
		}
		return models.Category{}, err
	}
	return updated, nil
}

func (r *CategoryRepository) Delete(ctx context.Context, id int64) error {
	const query = `DELETE FROM categories WHERE id = $1`
	cmd, err := r.db.Exec(ctx, query, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrCategoryNotFound
	}
	return nil
}

func (r *CategoryRepository) Count(ctx context.Context) (int, error) {
	const query = `SELECT COUNT(*) FROM categories`
	var count int
	if err := r.db.QueryRow(ctx, query).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

func (r *CategoryRepository) query(ctx context.Context, query string, args ...any) ([]models.Category, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	categories := []models.Category{}
	for rows.Next() {
		var category models.Category
		if err := rows.Scan(&category.ID, &category.Name); err != nil {
			return nil, err
		}
		categories = append(categories, category)
	}
	return categories, rows.Err()
}
