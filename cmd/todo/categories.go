package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"tasktracker/internal/cli"
	"tasktracker/internal/models"
	"tasktracker/internal/service"
)

func (a *app) withCategories(fn func(ctx context.Context, categories *service.CategoryService) error) error {
	logger, err := a.logger(os.Stderr)
	if err != nil {
		return err
	}
	repo, err := a.openRepository(logger)
	if err != nil {
		return err
	}
	defer repo.Close()
	return fn(context.Background(), service.NewCategoryService(repo))
}

func categoryCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "category",
		Short: "List and edit categories",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "List categories with task counts",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return a.withCategories(func(ctx context.Context, categories *service.CategoryService) error {
					list, err := categories.List(ctx)
					if err != nil {
						return err
					}
					return cli.RenderCategories(cmd.OutOrStdout(), list)
				})
			},
		},
		categoryAddCmd(a),
		categoryEditCmd(a),
		&cobra.Command{
			Use:     "rm ID",
			Aliases: []string{"delete"},
			Short:   "Delete a category; its tasks are kept without a category",
			Args:    cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				id, err := parseID(args[0])
				if err != nil {
					return err
				}
				return a.withCategories(func(ctx context.Context, categories *service.CategoryService) error {
					if err := categories.Delete(ctx, id); err != nil {
						return err
					}
					fmt.Fprintf(cmd.OutOrStdout(), "deleted category %d\n", id)
					return nil
				})
			},
		},
	)
	return cmd
}

func categoryAddCmd(a *app) *cobra.Command {
	var color string

	cmd := &cobra.Command{
		Use:   "add NAME",
		Short: "Create a category",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withCategories(func(ctx context.Context, categories *service.CategoryService) error {
				category, err := categories.Create(ctx, service.NewCategory{Name: args[0], Color: color})
				if err != nil {
					return err
				}
				return cli.RenderCategories(cmd.OutOrStdout(), []models.Category{category})
			})
		},
	}
	cmd.Flags().StringVar(&color, "color", "", "Hex color like #3B82F6 (default #3B82F6)")
	return cmd
}

func categoryEditCmd(a *app) *cobra.Command {
	var name, color string

	cmd := &cobra.Command{
		Use:   "edit ID",
		Short: "Rename or recolor a category",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			var patch models.CategoryPatch
			if cmd.Flags().Changed("name") {
				patch.Name = models.Some(name)
			}
			if cmd.Flags().Changed("color") {
				patch.Color = models.Some(color)
			}

			return a.withCategories(func(ctx context.Context, categories *service.CategoryService) error {
				category, err := categories.Update(ctx, id, patch)
				if err != nil {
					return err
				}
				return cli.RenderCategories(cmd.OutOrStdout(), []models.Category{category})
			})
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "New name")
	cmd.Flags().StringVar(&color, "color", "", "New hex color like #3B82F6")
	return cmd
}
