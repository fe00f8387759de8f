// Package query filters and orders task listings.
package query

import (
	"sort"
	"strings"

	"tasktracker/internal/models"
)

// SortField selects the key tasks are ordered by.
type SortField string

const (
	SortByCreatedAt SortField = "createdAt"
	SortByDueDate   SortField = "dueDate"
	SortByPriority  SortField = "priority"
)

// SortOrder selects the direction of the ordering.
type SortOrder string

const (
	OrderAsc  SortOrder = "asc"
	OrderDesc SortOrder = "desc"
)

// Filter holds the optional predicates and sort directives of a listing.
// Nil or empty predicates match everything.
type Filter struct {
	Completed  *bool
	Priority   *models.Priority
	CategoryID *int64
	Tag        string
	SortBy     SortField
	Order      SortOrder
}

// ParseSortField falls back to createdAt for unknown values.
func ParseSortField(raw string) SortField {
	switch f := SortField(raw); f {
	case SortByCreatedAt, SortByDueDate, SortByPriority:
		return f
	}
	return SortByCreatedAt
}

// ParseSortOrder treats anything but "asc" as descending.
func ParseSortOrder(raw string) SortOrder {
	if SortOrder(strings.ToLower(raw)) == OrderAsc {
		return OrderAsc
	}
	return OrderDesc
}

// ParsePriority returns nil for unknown priorities so they do not filter.
func ParsePriority(raw string) *models.Priority {
	p := models.Priority(raw)
	if !p.Valid() {
		return nil
	}
	return &p
}

// Apply returns the tasks matching f in f's order. The input slice is not
// modified.
func Apply(tasks []models.Task, f Filter) []models.Task {
	out := make([]models.Task, 0, len(tasks))
	for _, t := range tasks {
		if matches(t, f) {
			out = append(out, t)
		}
	}

	desc := ParseSortOrder(string(f.Order)) == OrderDesc
	less := lessFunc(ParseSortField(string(f.SortBy)), desc)
	sort.SliceStable(out, func(i, j int) bool {
		return less(out[i], out[j])
	})
	return out
}

func matches(t models.Task, f Filter) bool {
	if f.Completed != nil && t.IsCompleted != *f.Completed {
		return false
	}
	if f.Priority != nil && t.Priority != *f.Priority {
		return false
	}
	if f.CategoryID != nil && (t.CategoryID == nil || *t.CategoryID != *f.CategoryID) {
		return false
	}
	if f.Tag != "" && !hasTag(t.Tags, f.Tag) {
		return false
	}
	return true
}

// hasTag reports whether any tag contains needle, ignoring case.
func hasTag(tags []string, needle string) bool {
	needle = strings.ToLower(needle)
	for _, tag := range tags {
		if strings.Contains(strings.ToLower(tag), needle) {
			return true
		}
	}
	return false
}

func lessFunc(field SortField, desc bool) func(a, b models.Task) bool {
	directed := func(cmp int) bool {
		if desc {
			return cmp > 0
		}
		return cmp < 0
	}

	switch field {
	case SortByPriority:
		return func(a, b models.Task) bool {
			return directed(a.Priority.Rank() - b.Priority.Rank())
		}
	case SortByDueDate:
		// Undated tasks go last in either direction.
		return func(a, b models.Task) bool {
			switch {
			case a.DueDate == nil:
				return false
			case b.DueDate == nil:
				return true
			}
			return directed(a.DueDate.Compare(b.DueDate.Time))
		}
	default:
		return func(a, b models.Task) bool {
			return directed(a.CreatedAt.Compare(b.CreatedAt))
		}
	}
}
