// Package cli renders tasks and categories for the terminal client.
package cli

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"tasktracker/internal/models"
)

const noDueDate = "-"

// DueLabel describes a due date relative to now: "2025-01-31 (overdue 3d)",
// "2025-01-31 (today)" or "2025-01-31 (in 2d)". Completed tasks carry no
// marker.
func DueLabel(task models.Task, now time.Time) string {
	if task.DueDate == nil {
		return noDueDate
	}
	d := *task.DueDate
	if task.IsCompleted {
		return d.String()
	}
	switch {
	case d.IsOverdue(now):
		return fmt.Sprintf("%s (overdue %dd)", d, -d.DaysUntil(now))
	case d.IsDueToday(now):
		return fmt.Sprintf("%s (today)", d)
	default:
		return fmt.Sprintf("%s (in %dd)", d, d.DaysUntil(now))
	}
}

func checkbox(done bool) string {
	if done {
		return "[x]"
	}
	return "[ ]"
}

// RenderTasks writes tasks as an aligned table.
func RenderTasks(w io.Writer, tasks []models.Task, now time.Time) error {
	if len(tasks) == 0 {
		_, err := fmt.Fprintln(w, "no tasks")
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tDONE\tPRIORITY\tTITLE\tCATEGORY\tDUE\tTAGS")
	for _, t := range tasks {
		category := "-"
		if t.Category != nil {
			category = t.Category.Name
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\t%s\n",
			t.ID,
			checkbox(t.IsCompleted),
			t.Priority,
			t.Title,
			category,
			DueLabel(t, now),
			strings.Join(t.Tags, ","),
		)
	}
	return tw.Flush()
}

// RenderCategories writes categories with their total and open task counts.
func RenderCategories(w io.Writer, categories []models.Category) error {
	if len(categories) == 0 {
		_, err := fmt.Fprintln(w, "no categories")
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tCOLOR\tTASKS\tOPEN")
	for _, c := range categories {
		open := 0
		for _, t := range c.Tasks {
			if !t.IsCompleted {
				open++
			}
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\n",
			c.ID, c.Name, c.Color, strconv.Itoa(len(c.Tasks)), strconv.Itoa(open))
	}
	return tw.Flush()
}
