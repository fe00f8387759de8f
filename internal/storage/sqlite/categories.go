package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"

	"tasktracker/internal/models"
)

const selectCategories = `SELECT id, name, color, created_at, updated_at FROM categories`

type categoryRow struct {
	ID        int64     `db:"id"`
	Name      string    `db:"name"`
	Color     string    `db:"color"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

func (r categoryRow) toModel() models.Category {
	return models.Category{
		ID:        r.ID,
		Name:      r.Name,
		Color:     r.Color,
		CreatedAt: r.CreatedAt.UTC(),
		UpdatedAt: r.UpdatedAt.UTC(),
	}
}

// ListCategories retrieves all categories in insertion order.
func (s *Store) ListCategories(ctx context.Context) ([]models.Category, error) {
	var rows []categoryRow
	if err := s.db.SelectContext(ctx, &rows, selectCategories+` ORDER BY id ASC`); err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}

	categories := make([]models.Category, 0, len(rows))
	for _, row := range rows {
		categories = append(categories, row.toModel())
	}
	return categories, nil
}

// GetCategory fetches a single category by id.
func (s *Store) GetCategory(ctx context.Context, id int64) (models.Category, error) {
	return getCategory(ctx, s.db, id)
}

func getCategory(ctx context.Context, q sqlx.QueryerContext, id int64) (models.Category, error) {
	var row categoryRow
	err := sqlx.GetContext(ctx, q, &row, selectCategories+` WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Category{}, models.ErrCategoryNotFound
	}
	if err != nil {
		return models.Category{}, fmt.Errorf("get category: %w", err)
	}
	return row.toModel(), nil
}

// CreateCategory persists a new category. Name and color are expected to be
// validated by the caller.
func (s *Store) CreateCategory(ctx context.Context, c models.Category) (models.Category, error) {
	now := s.now()
	res, err := s.db.ExecContext(ctx, `INSERT INTO categories(name, color, created_at, updated_at) VALUES(?, ?, ?, ?)`,
		c.Name, c.Color, now, now)
	if err != nil {
		if isUniqueViolation(err) {
			return models.Category{}, models.ErrCategoryNameTaken
		}
		return models.Category{}, fmt.Errorf("insert category: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return models.Category{}, fmt.Errorf("category id: %w", err)
	}
	return s.GetCategory(ctx, id)
}

// UpdateCategory renames or recolors an existing category.
func (s *Store) UpdateCategory(ctx context.Context, id int64, patch models.CategoryPatch) (models.Category, error) {
	var updated models.Category
	err := s.withTx(ctx, func(tx *sqlx.Tx) error {
		current, err := getCategory(ctx, tx, id)
		if err != nil {
			return err
		}
		patch.Apply(&current)
		current.UpdatedAt = s.now()

		_, err = tx.ExecContext(ctx, `UPDATE categories SET name = ?, color = ?, updated_at = ? WHERE id = ?`,
			current.Name, current.Color, current.UpdatedAt, id)
		if err != nil {
			if isUniqueViolation(err) {
				return models.ErrCategoryNameTaken
			}
			return fmt.Errorf("update category: %w", err)
		}
		updated, err = getCategory(ctx, tx, id)
		return err
	})
	if err != nil {
		return models.Category{}, err
	}
	return updated, nil
}

// DeleteCategory detaches the category from its tasks and removes it in one
// transaction.
func (s *Store) DeleteCategory(ctx context.Context, id int64) error {
	return s.withTx(ctx, func(tx *sqlx.Tx) error {
		if _, err := getCategory(ctx, tx, id); err != nil {
			return err
		}

		res, err := tx.ExecContext(ctx, `UPDATE tasks SET category_id = NULL, updated_at = ? WHERE category_id = ?`, s.now(), id)
		if err != nil {
			return fmt.Errorf("detach tasks: %w", err)
		}
		detached, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("count detached tasks: %w", err)
		}

		if _, err := tx.ExecContext(ctx, `DELETE FROM categories WHERE id = ?`, id); err != nil {
			return fmt.Errorf("delete category: %w", err)
		}
		s.logger.Debug("category deleted", slog.Int64("id", id), slog.Int64("detached_tasks", detached))
		return nil
	})
}
