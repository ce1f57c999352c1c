package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"mk3hierros/internal/database"
	"mk3hierros/internal/models"
)

// WorkFilter narrows List; nil fields are ignored.
type WorkFilter struct {
	CategoryID *int64
	Priority   *models.Priority
	Status     *models.Status
}

type WorkRepository struct {
	db database.DB
}

func NewWorkRepository(db database.DB) *WorkRepository {
	return &WorkRepository{db: db}
}

const workColumns = `
	w.id, w.title, w.description, w.measures, c.id, c.name, w.priority, w.status,
	w.end_date, w.create_at, w.price, w.final_price, w.marketing_title, w.marketing_description
`

func (r *WorkRepository) List(ctx context.Context, filter WorkFilter) ([]models.Work, error) {
	var (
		where []string
		args  []any
	)
	if filter.CategoryID != nil {
		args = append(args, *filter.CategoryID)
		where = append(where, fmt.Sprintf("w.category_id = $%d", len(args)))
	}
	if filter.Priority != nil {
		args = append(args, string(*filter.Priority))
		where = append(where, fmt.Sprintf("w.priority = $%d", len(args)))
	}
	if filter.Status != nil {
		args = append(args, string(*filter.Status))
		where = append(where, fmt.Sprintf("w.status = $%d", len(args)))
	}

	query := `SELECT ` + workColumns + ` FROM works w LEFT JOIN categories c ON c.id = w.category_id`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	query += ` ORDER BY w.id`

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	works := []models.Work{}
	for rows.Next() {
		work, err := scanWork(rows)
		if err != nil {
			return nil, err
		}
		works = append(works, work)
	}
	return works, rows.Err()
}

func (r *WorkRepository) GetByID(ctx context.Context, id int64) (models.Work, error) {
	query := `SELECT ` + workColumns + ` FROM works w LEFT JOIN categories c ON c.id = w.category_id WHERE w.id = $1`

	work, err := scanWork(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Work{}, ErrWorkNotFound
		}
		return models.Work{}, err
	}
	return work, nil
}

// Create inserts the work and reads it back with its category.
func (r *WorkRepository) Create(ctx context.Context, work models.Work) (models.Work, error) {
	const query = `
		INSERT INTO works (
			title, description, measures, category_id, priority, status, end_date,
			price, final_price, marketing_title, marketing_description
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11
		)
		RETURNING id
	`

	var categoryID *int64
	if work.Category != nil && work.Category.ID != 0 {
		categoryID = &work.Category.ID
	}

	var id int64
	if err := r.db.QueryRow(ctx, query,
		work.Title,
		work.Description,
		work.Measures,
		categoryID,
		string(work.Priority),
		string(work.Status),
		work.EndDate,
		work.Price,
		work.FinalPrice,
		work.MarketingTitle,
		work.MarketingDescription,
	).Scan(&id); err != nil {
		if hasPgCode(err, pgForeignKeyViolation) {
			return models.Work{}, ErrCategoryNotFound
		}
		return models.Work{}, err
	}

	return r.GetByID(ctx, id)
}

// Update applies the non-nil patch fields. There is no version check: the
// last write wins.
func (r *WorkRepository) Update(ctx context.Context, id int64, patch models.WorkPatch) (models.Work, error) {
	query, args := buildWorkUpdate(id, patch)
	if query == "" {
		return r.GetByID(ctx, id)
	}

	cmd, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		if hasPgCode(err, pgForeignKeyViolation) {
			return models.Work{}, ErrCategoryNotFound
		}
		return models.Work{}, err
	}
	if cmd.RowsAffected() == 0 {
		return models.Work{}, ErrWorkNotFound
	}
	return r.GetByID(ctx, id)
}

// Delete removes the work; its images go with it through the cascade.
func (r *WorkRepository) Delete(ctx context.Context, id int64) error {
	const query = `DELETE FROM works WHERE id = $1`
	cmd, err := r.db.Exec(ctx, query, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrWorkNotFound
	}
	return nil
}

func buildWorkUpdate(id int64, patch models.WorkPatch) (string, []any) {
	args := []any{id}
	var sets []string
	set := func(column string, value any) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if patch.Title != nil {
		set("title", *patch.Title)
	}
	if patch.Description != nil {
		set("description", *patch.Description)
	}
	if patch.Measures != nil {
		set("measures", *patch.Measures)
	}
	if patch.CategoryID != nil {
		if *patch.CategoryID == 0 {
			set("category_id", nil)
		} else {
			set("category_id", *patch.CategoryID)
		}
	}
	if patch.Priority != nil {
		set("priority", string(*patch.Priority))
	}
	if patch.Status != nil {
		set("status", string(*patch.Status))
	}
	if patch.EndDate != nil {
		set("end_date", *patch.EndDate)
	}
	if patch.Price != nil {
		set("price", *patch.Price)
	}
	if patch.FinalPrice != nil {
		set("final_price", *patch.FinalPrice)
	}
	if patch.MarketingTitle != nil {
		set("marketing_title", *patch.MarketingTitle)
	}
	if patch.MarketingDescription != nil {
		set("marketing_description", *patch.MarketingDescription)
	}

	if len(sets) == 0 {
		return "", nil
	}
	return `UPDATE works SET ` + strings.Join(sets, ", ") + ` WHERE id = $1`, args
}

func scanWork(row pgx.Row) (models.Work, error) {
	var (
		work         models.Work
		categoryID   *int64
		categoryName *string
		priority     string
		status       string
		endDate      *time.Time
	)
	if err := row.Scan(
		&work.ID,
		&work.Title,
		&work.Description,
		&work.Measures,
		&categoryID,
		&categoryName,
		&priority,
		&status,
		&endDate,
		&work.CreateAt,
		&work.Price,
		&work.FinalPrice,
		&work.MarketingTitle,
		&work.MarketingDescription,
	); err != nil {
		return models.Work{}, err
	}

	if categoryID != nil {
		work.Category = &models.Category{ID: *categoryID}
		if categoryName != nil {
			work.Category.Name = *categoryName
		}
	}
	work.Priority = models.Priority(priority)
	work.Status = models.Status(status)
	work.EndDate = endDate
	work.Images = []models.WorkImage{}
	return work, nil
}
