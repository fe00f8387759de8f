package local

import (
	"context"

	"tasktracker/internal/models"
)

func findCategory(st *snapshot, id int64) int {
	for i, c := range st.Categories {
		if c.ID == id {
			return i
		}
	}
	return -1
}

func findTask(st *snapshot, id int64) int {
	for i, t := range st.Tasks {
		if t.ID == id {
			return i
		}
	}
	return -1
}

func nameTaken(st *snapshot, name string, except int64) bool {
	for _, c := range st.Categories {
		if c.Name == name && c.ID != except {
			return true
		}
	}
	return false
}

func (s *Store) ListCategories(context.Context) ([]models.Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.Category, 0, len(s.state.Categories))
	for _, c := range s.state.Categories {
		out = append(out, c.Clone())
	}
	return out, nil
}

func (s *Store) GetCategory(_ context.Context, id int64) (models.Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i := findCategory(&s.state, id)
	if i < 0 {
		return models.Category{}, models.ErrCategoryNotFound
	}
	return s.state.Categories[i].Clone(), nil
}

func (s *Store) CreateCategory(_ context.Context, c models.Category) (models.Category, error) {
	var created models.Category
	err := s.mutate(func(st *snapshot) error {
		if nameTaken(st, c.Name, 0) {
			return models.ErrCategoryNameTaken
		}
		now := s.now()
		created = models.Category{
			ID:        st.NextCategoryID,
			Name:      c.Name,
			Color:     c.Color,
			CreatedAt: now,
			UpdatedAt: now,
		}
		st.NextCategoryID++
		st.Categories = append(st.Categories, created)
		return nil
	})
	return created, err
}

func (s *Store) UpdateCategory(_ context.Context, id int64, patch models.CategoryPatch) (models.Category, error) {
	var updated models.Category
	err := s.mutate(func(st *snapshot) error {
		i := findCategory(st, id)
		if i < 0 {
			return models.ErrCategoryNotFound
		}
		if patch.Name.Set && nameTaken(st, patch.Name.Value, id) {
			return models.ErrCategoryNameTaken
		}
		patch.Apply(&st.Categories[i])
		st.Categories[i].UpdatedAt = s.now()
		updated = st.Categories[i].Clone()
		return nil
	})
	return updated, err
}

// DeleteCategory clears the reference on every task and drops the category
// under one lock, so readers never observe a dangling reference.
func (s *Store) DeleteCategory(_ context.Context, id int64) error {
	return s.mutate(func(st *snapshot) error {
		i := findCategory(st, id)
		if i < 0 {
			return models.ErrCategoryNotFound
		}
		now := s.now()
		for j := range st.Tasks {
			if st.Tasks[j].CategoryID != nil && *st.Tasks[j].CategoryID == id {
				st.Tasks[j].CategoryID = nil
				st.Tasks[j].UpdatedAt = now
			}
		}
		st.Categories = append(st.Categories[:i], st.Categories[i+1:]...)
		return nil
	})
}

func (s *Store) ListTasks(context.Context) ([]models.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.Task, 0, len(s.state.Tasks))
	for _, t := range s.state.Tasks {
		out = append(out, t.Clone())
	}
	return out, nil
}

func (s *Store) GetTask(_ context.Context, id int64) (models.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i := findTask(&s.state, id)
	if i < 0 {
		return models.Task{}, models.ErrTaskNotFound
	}
	return s.state.Tasks[i].Clone(), nil
}

func (s *Store) CreateTask(_ context.Context, t models.Task) (models.Task, error) {
	var created models.Task
	err := s.mutate(func(st *snapshot) error {
		if t.CategoryID != nil && findCategory(st, *t.CategoryID) < 0 {
			return models.ErrCategoryNotFound
		}
		now := s.now()
		created = t.Clone()
		created.ID = st.NextTaskID
		created.Category = nil
		created.CreatedAt = now
		created.UpdatedAt = now
		st.NextTaskID++
		st.Tasks = append(st.Tasks, created.Clone())
		return nil
	})
	return created, err
}

func (s *Store) UpdateTask(_ context.Context, id int64, patch models.TaskPatch) (models.Task, error) {
	var updated models.Task
	err := s.mutate(func(st *snapshot) error {
		i := findTask(st, id)
		if i < 0 {
			return models.ErrTaskNotFound
		}
		if patch.CategoryID.Set && patch.CategoryID.Value != nil && findCategory(st, *patch.CategoryID.Value) < 0 {
			return models.ErrCategoryNotFound
		}
		patch.Apply(&st.Tasks[i])
		st.Tasks[i].UpdatedAt = s.now()
		updated = st.Tasks[i].Clone()
		return nil
	})
	return updated, err
}

func (s *Store) ToggleTask(_ context.Context, id int64) (models.Task, error) {
	var toggled models.Task
	err := s.mutate(func(st *snapshot) error {
		i := findTask(st, id)
		if i < 0 {
			return models.ErrTaskNotFound
		}
		st.Tasks[i].IsCompleted = !st.Tasks[i].IsCompleted
		st.Tasks[i].UpdatedAt = s.now()
		toggled = st.Tasks[i].Clone()
		return nil
	})
	return toggled, err
}

func (s *Store) DeleteTask(_ context.Context, id int64) error {
	return s.mutate(func(st *snapshot) error {
		i := findTask(st, id)
		if i < 0 {
			return models.ErrTaskNotFound
		}
		st.Tasks = append(st.Tasks[:i], st.Tasks[i+1:]...)
		return nil
	})
}
