package sqlite

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"tasktracker/internal/models"
)

const selectTasks = `SELECT id, title, description, is_completed, priority, due_date, category_id, tags, created_at, updated_at FROM tasks`

// tagList stores a task's tags as a JSON array in a TEXT column.
type tagList []string

func (t tagList) Value() (driver.Value, error) {
	if t == nil {
		return "[]", nil
	}
	raw, err := json.Marshal([]string(t))
	if err != nil {
		return nil, err
	}
	return string(raw), nil
}

func (t *tagList) Scan(src any) error {
	var raw []byte
	switch v := src.(type) {
	case nil:
		*t = tagList{}
		return nil
	case string:
		raw = []byte(v)
	case []byte:
		raw = v
	default:
		return fmt.Errorf("cannot scan %T into tags", src)
	}
	var tags []string
	if err := json.Unmarshal(raw, &tags); err != nil {
		// Unreadable tag columns degrade to no tags.
		tags = []string{}
	}
	if tags == nil {
		tags = []string{}
	}
	*t = tags
	return nil
}

type taskRow struct {
	ID          int64          `db:"id"`
	Title       string         `db:"title"`
	Description sql.NullString `db:"description"`
	IsCompleted bool           `db:"is_completed"`
	Priority    string         `db:"priority"`
	DueDate     *models.Date   `db:"due_date"`
	CategoryID  sql.NullInt64  `db:"category_id"`
	Tags        tagList        `db:"tags"`
	CreatedAt   time.Time      `db:"created_at"`
	UpdatedAt   time.Time      `db:"updated_at"`
}

func (r taskRow) toModel() models.Task {
	task := models.Task{
		ID:          r.ID,
		Title:       r.Title,
		IsCompleted: r.IsCompleted,
		Priority:    models.Priority(r.Priority),
		DueDate:     r.DueDate,
		Tags:        []string(r.Tags),
		CreatedAt:   r.CreatedAt.UTC(),
		UpdatedAt:   r.UpdatedAt.UTC(),
	}
	if task.Tags == nil {
		task.Tags = []string{}
	}
	if r.Description.Valid {
		value := r.Description.String
		task.Description = &value
	}
	if r.CategoryID.Valid {
		value := r.CategoryID.Int64
		task.CategoryID = &value
	}
	return task
}

func nullableDescription(v *string) sql.NullString {
	if v == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *v, Valid: true}
}

func nullableCategory(v *int64) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *v, Valid: true}
}

// ListTasks returns every task in insertion order; callers sort.
func (s *Store) ListTasks(ctx context.Context) ([]models.Task, error) {
	var rows []taskRow
	if err := s.db.SelectContext(ctx, &rows, selectTasks+` ORDER BY id ASC`); err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}

	tasks := make([]models.Task, 0, len(rows))
	for _, row := range rows {
		tasks = append(tasks, row.toModel())
	}
	return tasks, nil
}

// GetTask retrieves a task by id.
func (s *Store) GetTask(ctx context.Context, id int64) (models.Task, error) {
	return getTask(ctx, s.db, id)
}

func getTask(ctx context.Context, q sqlx.QueryerContext, id int64) (models.Task, error) {
	var row taskRow
	err := sqlx.GetContext(ctx, q, &row, selectTasks+` WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Task{}, models.ErrTaskNotFound
	}
	if err != nil {
		return models.Task{}, fmt.Errorf("get task: %w", err)
	}
	return row.toModel(), nil
}

// requireCategory fails with models.ErrCategoryNotFound unless id is nil or exists.
func requireCategory(ctx context.Context, tx *sqlx.Tx, id *int64) error {
	if id == nil {
		return nil
	}
	var exists bool
	if err := tx.GetContext(ctx, &exists, `SELECT EXISTS(SELECT 1 FROM categories WHERE id = ?)`, *id); err != nil {
		return fmt.Errorf("check category: %w", err)
	}
	if !exists {
		return models.ErrCategoryNotFound
	}
	return nil
}

// CreateTask inserts a new task. Fields are expected to be validated and
// defaulted by the caller.
func (s *Store) CreateTask(ctx context.Context, t models.Task) (models.Task, error) {
	var created models.Task
	err := s.withTx(ctx, func(tx *sqlx.Tx) error {
		if err := requireCategory(ctx, tx, t.CategoryID); err != nil {
			return err
		}

		now := s.now()
		res, err := tx.ExecContext(ctx, `INSERT INTO tasks(title, description, is_completed, priority, due_date, category_id, tags, created_at, updated_at)
            VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			t.Title, nullableDescription(t.Description), t.IsCompleted, string(t.Priority), t.DueDate,
			nullableCategory(t.CategoryID), tagList(t.Tags), now, now)
		if err != nil {
			return fmt.Errorf("insert task: %w", err)
		}
		id, err := res.LastInsertId()
		if err != nil {
			return fmt.Errorf("task id: %w", err)
		}
		created, err = getTask(ctx, tx, id)
		return err
	})
	if err != nil {
		return models.Task{}, err
	}
	return created, nil
}

// UpdateTask writes the set fields of patch onto the stored task.
func (s *Store) UpdateTask(ctx context.Context, id int64, patch models.TaskPatch) (models.Task, error) {
	var updated models.Task
	err := s.withTx(ctx, func(tx *sqlx.Tx) error {
		current, err := getTask(ctx, tx, id)
		if err != nil {
			return err
		}
		if patch.CategoryID.Set {
			if err := requireCategory(ctx, tx, patch.CategoryID.Value); err != nil {
				return err
			}
		}

		patch.Apply(&current)
		current.UpdatedAt = s.now()

		_, err = tx.ExecContext(ctx, `UPDATE tasks SET title = ?, description = ?, is_completed = ?, priority = ?, due_date = ?,
            category_id = ?, tags = ?, updated_at = ? WHERE id = ?`,
			current.Title, nullableDescription(current.Description), current.IsCompleted, string(current.Priority),
			current.DueDate, nullableCategory(current.CategoryID), tagList(current.Tags), current.UpdatedAt, id)
		if err != nil {
			return fmt.Errorf("update task: %w", err)
		}
		updated, err = getTask(ctx, tx, id)
		return err
	})
	if err != nil {
		return models.Task{}, err
	}
	return updated, nil
}

// ToggleTask flips the completion flag in a single statement.
func (s *Store) ToggleTask(ctx context.Context, id int64) (models.Task, error) {
	var toggled models.Task
	err := s.withTx(ctx, func(tx *sqlx.Tx) error {
		res, err := tx.ExecContext(ctx, `UPDATE tasks SET is_completed = NOT is_completed, updated_at = ? WHERE id = ?`, s.now(), id)
		if err != nil {
			return fmt.Errorf("toggle task: %w", err)
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if affected == 0 {
			return models.ErrTaskNotFound
		}
		toggled, err = getTask(ctx, tx, id)
		return err
	})
	if err != nil {
		return models.Task{}, err
	}
	return toggled, nil
}

// DeleteTask removes a task by id.
func (s *Store) DeleteTask(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return models.ErrTaskNotFound
	}
	return nil
}
