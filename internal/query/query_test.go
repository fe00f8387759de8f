package query

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tasktracker/internal/models"
)

func ids(tasks []models.Task) []int64 {
	out := make([]int64, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, t.ID)
	}
	return out
}

func date(t *testing.T, raw string) *models.Date {
	t.Helper()
	d, err := models.ParseDate(raw)
	require.NoError(t, err)
	return &d
}

func int64Ptr(v int64) *int64 { return &v }
func boolPtr(v bool) *bool    { return &v }

func TestApply_PriorityOrder(t *testing.T) {
	tasks := []models.Task{
		{ID: 1, Priority: models.PriorityLow},
		{ID: 2, Priority: models.PriorityHigh},
		{ID: 3, Priority: models.PriorityMedium},
	}

	got := Apply(tasks, Filter{SortBy: SortByPriority, Order: OrderDesc})
	assert.Equal(t, []int64{2, 3, 1}, ids(got))

	got = Apply(tasks, Filter{SortBy: SortByPriority, Order: OrderAsc})
	assert.Equal(t, []int64{1, 3, 2}, ids(got))
}

func TestApply_PriorityTiesKeepInputOrder(t *testing.T) {
	tasks := []models.Task{
		{ID: 1, Priority: models.PriorityMedium},
		{ID: 2, Priority: models.PriorityHigh},
		{ID: 3, Priority: models.PriorityMedium},
		{ID: 4, Priority: models.PriorityHigh},
	}

	got := Apply(tasks, Filter{SortBy: SortByPriority, Order: OrderDesc})
	assert.Equal(t, []int64{2, 4, 1, 3}, ids(got))
}

func TestApply_DueDateUndatedLast(t *testing.T) {
	tasks := []models.Task{
		{ID: 1},
		{ID: 2, DueDate: date(t, "2024-01-01")},
		{ID: 3, DueDate: date(t, "2024-06-01")},
	}

	got := Apply(tasks, Filter{SortBy: SortByDueDate, Order: OrderAsc})
	assert.Equal(t, []int64{2, 3, 1}, ids(got))

	got = Apply(tasks, Filter{SortBy: SortByDueDate, Order: OrderDesc})
	assert.Equal(t, []int64{3, 2, 1}, ids(got))
}

func TestApply_CreatedAtDefaultsToNewestFirst(t *testing.T) {
	base := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	tasks := []models.Task{
		{ID: 1, CreatedAt: base},
		{ID: 2, CreatedAt: base.Add(2 * time.Hour)},
		{ID: 3, CreatedAt: base.Add(time.Hour)},
	}

	assert.Equal(t, []int64{2, 3, 1}, ids(Apply(tasks, Filter{})))
	assert.Equal(t, []int64{1, 3, 2}, ids(Apply(tasks, Filter{Order: OrderAsc})))
}

func TestApply_Filters(t *testing.T) {
	high := models.PriorityHigh
	tasks := []models.Task{
		{ID: 1, IsCompleted: true, Priority: models.PriorityHigh, CategoryID: int64Ptr(7), Tags: []string{"Urgent-fix"}},
		{ID: 2, Priority: models.PriorityHigh, CategoryID: int64Ptr(7), Tags: []string{"home"}},
		{ID: 3, Priority: models.PriorityLow, Tags: []string{"urgent"}},
		{ID: 4, Priority: models.PriorityHigh},
	}

	cases := []struct {
		name   string
		filter Filter
		want   []int64
	}{
		{"completed", Filter{Completed: boolPtr(true)}, []int64{1}},
		{"not completed", Filter{Completed: boolPtr(false), Order: OrderAsc}, []int64{2, 3, 4}},
		{"priority", Filter{Priority: &high, Order: OrderAsc}, []int64{1, 2, 4}},
		{"category", Filter{CategoryID: int64Ptr(7), Order: OrderAsc}, []int64{1, 2}},
		{"tag substring any case", Filter{Tag: "URGENT", Order: OrderAsc}, []int64{1, 3}},
		{"tag no match", Filter{Tag: "work"}, []int64{}},
		{"conjunction", Filter{Priority: &high, Tag: "urgent", Completed: boolPtr(true)}, []int64{1}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, ids(Apply(tasks, tc.filter)))
		})
	}
}

func TestApply_DoesNotMutateInput(t *testing.T) {
	tasks := []models.Task{
		{ID: 1, Priority: models.PriorityLow},
		{ID: 2, Priority: models.PriorityHigh},
	}

	_ = Apply(tasks, Filter{SortBy: SortByPriority})
	assert.Equal(t, []int64{1, 2}, ids(tasks))
}

func TestParseHelpers(t *testing.T) {
	assert.Equal(t, SortByDueDate, ParseSortField("dueDate"))
	assert.Equal(t, SortByCreatedAt, ParseSortField("title"))
	assert.Equal(t, OrderAsc, ParseSortOrder("ASC"))
	assert.Equal(t, OrderDesc, ParseSortOrder("sideways"))
	assert.Nil(t, ParsePriority("urgent"))
	require.NotNil(t, ParsePriority("low"))
	assert.Equal(t, models.PriorityLow, *ParsePriority("low"))
}
