package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/categories/internal/app"
	"github.com/mesh-intelligence/categories/internal/category"
	"github.com/mesh-intelligence/categories/internal/tree"
	"github.com/mesh-intelligence/categories/pkg/types"
)

func newCategoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "category",
		Short: "Manage categories and their items",
	}
	cmd.AddCommand(newCategoryCreateCmd())
	cmd.AddCommand(newCategoryShowCmd())
	cmd.AddCommand(newCategoryItemsCmd())
	cmd.AddCommand(newCategoryItemCmd("add-item", "Add content to a category", func(cb types.Cupboard, cat *types.Category, id string) error {
		return cat.AddItem(cb, id)
	}))
	cmd.AddCommand(newCategoryItemCmd("remove-item", "Remove content from a category", func(cb types.Cupboard, cat *types.Category, id string) error {
		return cat.RemoveItem(cb, id)
	}))
	return cmd
}

func newCategoryCreateCmd() *cobra.Command {
	var (
		fd     formData
		parent string
		slug   string
	)
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a category",
		Long: `Create a category below a parent node.

Example:
  categories category create --title News --item /about --item /blog/first`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(func(a *app.App) error {
				return createContent(cmd, a, category.TypeName, parent, slug, &fd)
			})
		},
	}
	fd.bind(cmd)
	fd.bindItems(cmd)
	cmd.Flags().StringVar(&parent, "parent", tree.Separator, "path of the parent node")
	cmd.Flags().StringVar(&slug, "slug", "", "path segment (default: derived from the title)")
	return cmd
}

func newCategoryShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <path>",
		Short: "Show a category with its items",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(func(a *app.App) error {
				cat, err := categoryAt(a, args[0])
				if err != nil {
					return err
				}
				v, err := viewOf(a, cat.Content)
				if err != nil {
					return err
				}
				return printView(cmd, v)
			})
		},
	}
}

func newCategoryItemsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "items <path>",
		Short: "List the items of a category",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(func(a *app.App) error {
				cat, err := categoryAt(a, args[0])
				if err != nil {
					return err
				}
				items, err := cat.Items(a.Cupboard)
				if err != nil {
					return err
				}
				views := make([]contentView, 0, len(items))
				for _, item := range items {
					v, err := viewOf(a, item)
					if err != nil {
						return err
					}
					views = append(views, v)
				}
				return printViews(cmd, views)
			})
		},
	}
}

type itemOp func(cb types.Cupboard, cat *types.Category, contentID string) error

func newCategoryItemCmd(use, short string, op itemOp) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <category-path> <content-path>",
		Short: short,
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(func(a *app.App) error {
				cat, err := categoryAt(a, args[0])
				if err != nil {
					return err
				}
				item, err := contentAt(a, args[1])
				if err != nil {
					return err
				}
				if err := op(a.Cupboard, cat, item.ContentID); err != nil {
					return err
				}
				if !flags.jsonMode {
					fmt.Fprintf(cmd.OutOrStdout(), "%s: %s %s\n", use, args[0], args[1])
					return nil
				}
				v, err := viewOf(a, cat.Content)
				if err != nil {
					return err
				}
				return printView(cmd, v)
			})
		},
	}
}
