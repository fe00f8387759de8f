// Package storage defines the persistence port shared by the SQLite and
// local snapshot backends.
package storage

import (
	"context"
	"time"

	"tasktracker/internal/models"
)

// Repository persists categories and tasks.
//
// Implementations assign ids and timestamps, reject duplicate category names
// with models.ErrCategoryNameTaken, reject task writes that reference a
// missing category with models.ErrCategoryNotFound, and report unknown ids
// with models.ErrTaskNotFound or models.ErrCategoryNotFound. DeleteCategory
// clears the category from every referencing task and removes it as one
// atomic step; it is the only category operation that writes tasks.
type Repository interface {
	ListCategories(ctx context.Context) ([]models.Category, error)
	GetCategory(ctx context.Context, id int64) (models.Category, error)
	CreateCategory(ctx context.Context, c models.Category) (models.Category, error)
	UpdateCategory(ctx context.Context, id int64, patch models.CategoryPatch) (models.Category, error)
	DeleteCategory(ctx context.Context, id int64) error

	ListTasks(ctx context.Context) ([]models.Task, error)
	GetTask(ctx context.Context, id int64) (models.Task, error)
	CreateTask(ctx context.Context, t models.Task) (models.Task, error)
	UpdateTask(ctx context.Context, id int64, patch models.TaskPatch) (models.Task, error)
	ToggleTask(ctx context.Context, id int64) (models.Task, error)
	DeleteTask(ctx context.Context, id int64) error

	Ping(ctx context.Context) error
	Close() error
}

// Clock returns the current time; backends accept one for deterministic tests.
type Clock func() time.Time

// UTCNow is the default Clock.
func UTCNow() time.Time {
	return time.Now().UTC()
}
