package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tasktracker/internal/models"
)

func TestEnrichTasks(t *testing.T) {
	one, missing := int64(1), int64(9)
	categories := []models.Category{{ID: 1, Name: "Work"}}
	tasks := []models.Task{
		{ID: 1, CategoryID: &one},
		{ID: 2, CategoryID: &missing},
		{ID: 3},
	}

	got := enrichTasks(tasks, categories)
	require.Len(t, got, 3)
	require.NotNil(t, got[0].Category)
	assert.Equal(t, "Work", got[0].Category.Name)
	assert.Nil(t, got[1].Category)
	assert.Nil(t, got[2].Category)
	assert.Nil(t, tasks[0].Category, "input must not be modified")
}

func TestAttachTasks(t *testing.T) {
	one := int64(1)
	categories := []models.Category{{ID: 1, Name: "Work"}, {ID: 2, Name: "Home"}}
	tasks := []models.Task{{ID: 5, CategoryID: &one}, {ID: 6}, {ID: 7, CategoryID: &one}}

	got := attachTasks(categories, tasks)
	require.Len(t, got, 2)
	require.Len(t, got[0].Tasks, 2)
	assert.Equal(t, int64(5), got[0].Tasks[0].ID)
	assert.Equal(t, int64(7), got[0].Tasks[1].ID)
	assert.Equal(t, []models.Task{}, got[1].Tasks)
}
