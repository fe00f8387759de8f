package service

import "tasktracker/internal/models"

// enrichTasks attaches each task's category by id. References to categories
// that no longer exist resolve to nil.
func enrichTasks(tasks []models.Task, categories []models.Category) []models.Task {
	byID := make(map[int64]models.Category, len(categories))
	for _, c := range categories {
		c.Tasks = nil
		byID[c.ID] = c
	}

	out := make([]models.Task, len(tasks))
	for i, t := range tasks {
		t.Category = nil
		if t.CategoryID != nil {
			if c, ok := byID[*t.CategoryID]; ok {
				t.Category = &c
			}
		}
		out[i] = t
	}
	return out
}

// attachTasks fills every category's Tasks with the tasks referencing it, in
// task order.
func attachTasks(categories []models.Category, tasks []models.Task) []models.Category {
	grouped := make(map[int64][]models.Task, len(categories))
	for _, t := range tasks {
		if t.CategoryID == nil {
			continue
		}
		t.Category = nil
		grouped[*t.CategoryID] = append(grouped[*t.CategoryID], t)
	}

	out := make([]models.Category, len(categories))
	for i, c := range categories {
		c.Tasks = grouped[c.ID]
		if c.Tasks == nil {
			c.Tasks = []models.Task{}
		}
		out[i] = c
	}
	return out
}
