package service

import (
	"context"
	"errors"

	"github.com/go-playground/validator/v10"

	"tasktracker/internal/models"
	"tasktracker/internal/query"
	"tasktracker/internal/storage"
)

const msgUnknownCategory = "does not reference an existing category"

// NewTask is the input of TaskService.Create. An empty Priority selects
// models.DefaultPriority.
type NewTask struct {
	Title       string
	Description *string
	Priority    models.Priority
	DueDate     *models.Date
	CategoryID  *int64
	Tags        []string
}

// TaskService owns task records and serves filtered listings.
type TaskService struct {
	repo     storage.Repository
	validate *validator.Validate
}

func NewTaskService(repo storage.Repository) *TaskService {
	return &TaskService{repo: repo, validate: newValidator()}
}

// List loads every task with its category and applies f.
func (s *TaskService) List(ctx context.Context, f query.Filter) ([]models.Task, error) {
	tasks, err := s.repo.ListTasks(ctx)
	if err != nil {
		return nil, err
	}
	categories, err := s.repo.ListCategories(ctx)
	if err != nil {
		return nil, err
	}
	return query.Apply(enrichTasks(tasks, categories), f), nil
}

func (s *TaskService) Get(ctx context.Context, id int64) (models.Task, error) {
	task, err := s.repo.GetTask(ctx, id)
	if err != nil {
		return models.Task{}, err
	}
	return s.withCategory(ctx, task)
}

func (s *TaskService) Create(ctx context.Context, in NewTask) (models.Task, error) {
	c := checker{v: s.validate}
	task := models.Task{
		Title:       c.title(in.Title),
		Description: trimmedPtr(in.Description),
		Priority:    in.Priority,
		DueDate:     in.DueDate,
		CategoryID:  in.CategoryID,
		Tags:        append([]string{}, in.Tags...),
	}
	if task.Priority == "" {
		task.Priority = models.DefaultPriority
	}
	c.priority(task.Priority)
	c.categoryID(task.CategoryID)
	if err := c.err(); err != nil {
		return models.Task{}, err
	}

	created, err := s.repo.CreateTask(ctx, task)
	if err != nil {
		return models.Task{}, unknownCategory(err)
	}
	return s.withCategory(ctx, created)
}

// Update changes the set fields of patch. Omitted fields keep their values;
// a set nil DueDate, Description or CategoryID clears the field.
func (s *TaskService) Update(ctx context.Context, id int64, patch models.TaskPatch) (models.Task, error) {
	c := checker{v: s.validate}
	if patch.Title.Set {
		patch.Title.Value = c.title(patch.Title.Value)
	}
	if patch.Description.Set {
		patch.Description.Value = trimmedPtr(patch.Description.Value)
	}
	if patch.Priority.Set {
		c.priority(patch.Priority.Value)
	}
	if patch.CategoryID.Set {
		c.categoryID(patch.CategoryID.Value)
	}
	if patch.Tags.Set && patch.Tags.Value == nil {
		patch.Tags.Value = []string{}
	}
	if err := c.err(); err != nil {
		return models.Task{}, err
	}

	if patch.IsEmpty() {
		return s.Get(ctx, id)
	}
	updated, err := s.repo.UpdateTask(ctx, id, patch)
	if err != nil {
		return models.Task{}, unknownCategory(err)
	}
	return s.withCategory(ctx, updated)
}

// Toggle flips the completion flag.
func (s *TaskService) Toggle(ctx context.Context, id int64) (models.Task, error) {
	task, err := s.repo.ToggleTask(ctx, id)
	if err != nil {
		return models.Task{}, err
	}
	return s.withCategory(ctx, task)
}

func (s *TaskService) Delete(ctx context.Context, id int64) error {
	return s.repo.DeleteTask(ctx, id)
}

func (s *TaskService) withCategory(ctx context.Context, task models.Task) (models.Task, error) {
	task.Category = nil
	if task.CategoryID == nil {
		return task, nil
	}
	category, err := s.repo.GetCategory(ctx, *task.CategoryID)
	if errors.Is(err, models.ErrCategoryNotFound) {
		return task, nil
	}
	if err != nil {
		return models.Task{}, err
	}
	task.Category = &category
	return task, nil
}

// unknownCategory reports a dangling category reference on a task write as a
// field error.
func unknownCategory(err error) error {
	if errors.Is(err, models.ErrCategoryNotFound) {
		verr := &models.ValidationError{}
		verr.Add("categoryId", msgUnknownCategory)
		return verr
	}
	return err
}
