package cmd

import (
	"fmt"

	"github.com/iksnae/procrastinator/internal"
	"github.com/spf13/cobra"
)

var (
	categoryName  string
	categoryColor string
	categoryJSON  bool
)

var categoriesCmd = &cobra.Command{
	Use:     "categories",
	Aliases: []string{"category", "cat"},
	Short:   "List and manage categories",
}

var categoriesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List categories with their task counts",
	RunE: withSession(func(cmd *cobra.Command, a *app, args []string) error {
		var categories []internal.Category
		err := a.run(cmd.Context(), "Loading categories", func() error {
			var err error
			categories, err = a.services.Categories.List(cmd.Context())
			return err
		})
		if err != nil {
			return a.report(internal.ActionLoad, err)
		}
		if categoryJSON {
			return writeJSON(cmd.OutOrStdout(), categories)
		}
		renderCategories(cmd.OutOrStdout(), categories)
		return nil
	}),
}

var categoriesShowCmd = &cobra.Command{
	Use:   "show <category-id>",
	Short: "Show one category",
	Args:  cobra.ExactArgs(1),
	RunE: withSession(func(cmd *cobra.Command, a *app, args []string) error {
		var category *internal.Category
		err := a.run(cmd.Context(), "Loading category", func() error {
			var err error
			category, err = a.services.Categories.Get(cmd.Context(), internal.ID(args[0]))
			return err
		})
		if err != nil {
			return a.report(internal.ActionLoad, err)
		}
		if categoryJSON {
			return writeJSON(cmd.OutOrStdout(), category)
		}
		renderCategory(cmd.OutOrStdout(), category)
		return nil
	}),
}

var categoriesCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a category",
	RunE: withSession(func(cmd *cobra.Command, a *app, args []string) error {
		req := internal.CreateCategoryRequest{Name: categoryName, Color: categoryColor}

		var res *internal.CategoryResult
		err := a.run(cmd.Context(), "Creating category", func() error {
			var err error
			res, err = a.services.Categories.Create(cmd.Context(), req)
			return err
		})
		if err := a.report(internal.ActionCreateCategory, err); err != nil {
			return err
		}
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", labelStyle.Render("ID:"), res.Category.ID)
		return nil
	}),
}

var categoriesUpdateCmd = &cobra.Command{
	Use:   "update <category-id>",
	Short: "Rename or recolor a category",
	Args:  cobra.ExactArgs(1),
	RunE: withSession(func(cmd *cobra.Command, a *app, args []string) error {
		var req internal.UpdateCategoryRequest
		if cmd.Flags().Changed("name") {
			req.Name = &categoryName
		}
		if cmd.Flags().Changed("color") {
			req.Color = &categoryColor
		}

		err := a.run(cmd.Context(), "Updating category", func() error {
			_, err := a.services.Categories.Update(cmd.Context(), internal.ID(args[0]), req)
			return err
		})
		return a.report(internal.ActionUpdateCategory, err)
	}),
}

var categoriesDeleteCmd = &cobra.Command{
	Use:   "delete <category-id>",
	Short: "Delete a category; its tasks are kept without a category",
	Args:  cobra.ExactArgs(1),
	RunE: withSession(func(cmd *cobra.Command, a *app, args []string) error {
		err := a.run(cmd.Context(), "Deleting category", func() error {
			_, err := a.services.Categories.Delete(cmd.Context(), internal.ID(args[0]))
			return err
		})
		return a.report(internal.ActionDeleteCategory, err)
	}),
}

func init() {
	rootCmd.AddCommand(categoriesCmd)
	categoriesCmd.AddCommand(categoriesListCmd, categoriesShowCmd, categoriesCreateCmd, categoriesUpdateCmd, categoriesDeleteCmd)

	categoriesListCmd.Flags().BoolVar(&categoryJSON, "json", false, "Print raw JSON")
	categoriesShowCmd.Flags().BoolVar(&categoryJSON, "json", false, "Print raw JSON")

	for _, c := range []*cobra.Command{categoriesCreateCmd, categoriesUpdateCmd} {
		c.Flags().StringVarP(&categoryName, "name", "n", "", "Category name")
		c.Flags().StringVar(&categoryColor, "color", "", "Color as #RRGGBB")
	}
}
