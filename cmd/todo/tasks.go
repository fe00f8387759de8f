package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"tasktracker/internal/cli"
	"tasktracker/internal/models"
	"tasktracker/internal/query"
	"tasktracker/internal/service"
)

// withTasks opens the backend, runs fn and closes the backend.
func (a *app) withTasks(fn func(ctx context.Context, tasks *service.TaskService) error) error {
	logger, err := a.logger(os.Stderr)
	if err != nil {
		return err
	}
	repo, err := a.openRepository(logger)
	if err != nil {
		return err
	}
	defer repo.Close()
	return fn(context.Background(), service.NewTaskService(repo))
}

func parseID(raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q", raw)
	}
	return id, nil
}

func taskCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "task",
		Short: "List and edit tasks",
	}
	cmd.AddCommand(taskListCmd(a), taskAddCmd(a), taskEditCmd(a), taskToggleCmd(a), taskRemoveCmd(a))
	return cmd
}

func taskListCmd(a *app) *cobra.Command {
	var (
		completed  bool
		priority   string
		categoryID int64
		tag        string
		sortBy     string
		order      string
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List tasks with optional filters",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f := query.Filter{
				Tag:    tag,
				SortBy: query.ParseSortField(sortBy),
				Order:  query.ParseSortOrder(order),
			}
			if cmd.Flags().Changed("completed") {
				f.Completed = &completed
			}
			if priority != "" {
				f.Priority = query.ParsePriority(priority)
			}
			if cmd.Flags().Changed("category") {
				if categoryID <= 0 {
					return fmt.Errorf("--category must be a positive integer")
				}
				f.CategoryID = &categoryID
			}

			return a.withTasks(func(ctx context.Context, tasks *service.TaskService) error {
				list, err := tasks.List(ctx, f)
				if err != nil {
					return err
				}
				return cli.RenderTasks(cmd.OutOrStdout(), list, time.Now())
			})
		},
	}

	cmd.Flags().BoolVar(&completed, "completed", false, "Only completed (true) or open (false) tasks")
	cmd.Flags().StringVar(&priority, "priority", "", "Only tasks with this priority (high, medium, low)")
	cmd.Flags().Int64Var(&categoryID, "category", 0, "Only tasks in this category id")
	cmd.Flags().StringVar(&tag, "tag", "", "Only tasks with a tag containing this text")
	cmd.Flags().StringVar(&sortBy, "sort", string(query.SortByCreatedAt), "Sort by createdAt, dueDate or priority")
	cmd.Flags().StringVar(&order, "order", string(query.OrderDesc), "Sort order: asc or desc")
	return cmd
}

func taskAddCmd(a *app) *cobra.Command {
	var (
		description string
		priority    string
		due         string
		categoryID  int64
		tags        []string
	)

	cmd := &cobra.Command{
		Use:   "add TITLE",
		Short: "Create a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in := service.NewTask{
				Title:    args[0],
				Priority: models.Priority(priority),
				Tags:     cli.NormalizeTags(tags),
			}
			if cmd.Flags().Changed("description") {
				in.Description = &description
			}
			if due != "" {
				d, err := models.ParseDate(due)
				if err != nil {
					return fmt.Errorf("--due: %w", err)
				}
				in.DueDate = &d
			}
			if cmd.Flags().Changed("category") {
				in.CategoryID = &categoryID
			}

			return a.withTasks(func(ctx context.Context, tasks *service.TaskService) error {
				task, err := tasks.Create(ctx, in)
				if err != nil {
					return err
				}
				return cli.RenderTasks(cmd.OutOrStdout(), []models.Task{task}, time.Now())
			})
		},
	}

	cmd.Flags().StringVar(&description, "description", "", "Task description")
	cmd.Flags().StringVar(&priority, "priority", "", "Priority: high, medium (default) or low")
	cmd.Flags().StringVar(&due, "due", "", "Due date (YYYY-MM-DD)")
	cmd.Flags().Int64Var(&categoryID, "category", 0, "Category id")
	cmd.Flags().StringArrayVar(&tags, "tag", nil, "Tag (repeatable)")
	return cmd
}

// taskEditCmd changes only the fields whose flags were passed.
func taskEditCmd(a *app) *cobra.Command {
	var (
		title       string
		description string
		priority    string
		due         string
		categoryID  int64
		tags        []string
		completed   bool
		clearDesc   bool
		clearDue    bool
		clearCat    bool
		clearTags   bool
	)

	cmd := &cobra.Command{
		Use:   "edit ID",
		Short: "Change fields of a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}

			var patch models.TaskPatch
			flags := cmd.Flags()
			if flags.Changed("title") {
				patch.Title = models.Some(title)
			}
			switch {
			case clearDesc:
				patch.Description = models.Some[*string](nil)
			case flags.Changed("description"):
				patch.Description = models.Some(&description)
			}
			if flags.Changed("priority") {
				patch.Priority = models.Some(models.Priority(priority))
			}
			switch {
			case clearDue:
				patch.DueDate = models.Some[*models.Date](nil)
			case flags.Changed("due"):
				d, err := models.ParseDate(due)
				if err != nil {
					return fmt.Errorf("--due: %w", err)
				}
				patch.DueDate = models.Some(&d)
			}
			switch {
			case clearCat:
				patch.CategoryID = models.Some[*int64](nil)
			case flags.Changed("category"):
				patch.CategoryID = models.Some(&categoryID)
			}
			switch {
			case clearTags:
				patch.Tags = models.Some([]string{})
			case flags.Changed("tag"):
				patch.Tags = models.Some(cli.NormalizeTags(tags))
			}
			if flags.Changed("completed") {
				patch.IsCompleted = models.Some(completed)
			}

			return a.withTasks(func(ctx context.Context, tasks *service.TaskService) error {
				task, err := tasks.Update(ctx, id, patch)
				if err != nil {
					return err
				}
				return cli.RenderTasks(cmd.OutOrStdout(), []models.Task{task}, time.Now())
			})
		},
	}

	cmd.Flags().StringVar(&title, "title", "", "New title")
	cmd.Flags().StringVar(&description, "description", "", "New description")
	cmd.Flags().StringVar(&priority, "priority", "", "New priority: high, medium or low")
	cmd.Flags().StringVar(&due, "due", "", "New due date (YYYY-MM-DD)")
	cmd.Flags().Int64Var(&categoryID, "category", 0, "New category id")
	cmd.Flags().StringArrayVar(&tags, "tag", nil, "Replace the tags (repeatable)")
	cmd.Flags().BoolVar(&completed, "completed", false, "Mark completed (true) or open (false)")
	cmd.Flags().BoolVar(&clearDesc, "clear-description", false, "Remove the description")
	cmd.Flags().BoolVar(&clearDue, "clear-due", false, "Remove the due date")
	cmd.Flags().BoolVar(&clearCat, "clear-category", false, "Remove the category")
	cmd.Flags().BoolVar(&clearTags, "clear-tags", false, "Remove all tags")
	cmd.MarkFlagsMutuallyExclusive("description", "clear-description")
	cmd.MarkFlagsMutuallyExclusive("due", "clear-due")
	cmd.MarkFlagsMutuallyExclusive("category", "clear-category")
	cmd.MarkFlagsMutuallyExclusive("tag", "clear-tags")
	return cmd
}

func taskToggleCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "toggle ID",
		Short: "Flip a task between open and completed",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return a.withTasks(func(ctx context.Context, tasks *service.TaskService) error {
				task, err := tasks.Toggle(ctx, id)
				if err != nil {
					return err
				}
				return cli.RenderTasks(cmd.OutOrStdout(), []models.Task{task}, time.Now())
			})
		},
	}
}

func taskRemoveCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "rm ID",
		Aliases: []string{"delete"},
		Short:   "Delete a task",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return a.withTasks(func(ctx context.Context, tasks *service.TaskService) error {
				if err := tasks.Delete(ctx, id); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "deleted task %d\n", id)
				return nil
			})
		},
	}
}
