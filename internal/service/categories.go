package service

import (
	"context"

	"github.com/go-playground/validator/v10"

	"tasktracker/internal/models"
	"tasktracker/internal/storage"
)

// NewCategory is the input of CategoryService.Create. An empty Color selects
// models.DefaultCategoryColor.
type NewCategory struct {
	Name  string
	Color string
}

// CategoryService owns category records.
type CategoryService struct {
	repo     storage.Repository
	validate *validator.Validate
}

func NewCategoryService(repo storage.Repository) *CategoryService {
	return &CategoryService{repo: repo, validate: newValidator()}
}

// List returns every category with the tasks that reference it.
func (s *CategoryService) List(ctx context.Context) ([]models.Category, error) {
	categories, err := s.repo.ListCategories(ctx)
	if err != nil {
		return nil, err
	}
	tasks, err := s.repo.ListTasks(ctx)
	if err != nil {
		return nil, err
	}
	return attachTasks(categories, tasks), nil
}

// Get returns one category with the tasks that reference it.
func (s *CategoryService) Get(ctx context.Context, id int64) (models.Category, error) {
	category, err := s.repo.GetCategory(ctx, id)
	if err != nil {
		return models.Category{}, err
	}
	tasks, err := s.repo.ListTasks(ctx)
	if err != nil {
		return models.Category{}, err
	}
	return attachTasks([]models.Category{category}, tasks)[0], nil
}

func (s *CategoryService) Create(ctx context.Context, in NewCategory) (models.Category, error) {
	c := checker{v: s.validate}
	name := c.name(in.Name)
	color := in.Color
	if color == "" {
		color = models.DefaultCategoryColor
	}
	c.color(color)
	if err := c.err(); err != nil {
		return models.Category{}, err
	}

	return s.repo.CreateCategory(ctx, models.Category{Name: name, Color: color})
}

// Update changes the set fields of patch. Omitted fields keep their values.
func (s *CategoryService) Update(ctx context.Context, id int64, patch models.CategoryPatch) (models.Category, error) {
	c := checker{v: s.validate}
	if patch.Name.Set {
		patch.Name.Value = c.name(patch.Name.Value)
	}
	if patch.Color.Set {
		c.color(patch.Color.Value)
	}
	if err := c.err(); err != nil {
		return models.Category{}, err
	}

	if patch.IsEmpty() {
		return s.repo.GetCategory(ctx, id)
	}
	return s.repo.UpdateCategory(ctx, id, patch)
}

// Delete removes the category after detaching it from its tasks. The tasks
// themselves are kept.
func (s *CategoryService) Delete(ctx context.Context, id int64) error {
	return s.repo.DeleteCategory(ctx, id)
}
