package cli

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/categories/internal/app"
	"github.com/mesh-intelligence/categories/internal/tree"
	"github.com/mesh-intelligence/categories/pkg/types"
)

func newContentCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "content",
		Short: "Create and inspect content",
	}
	cmd.AddCommand(newContentCreateCmd())
	cmd.AddCommand(newContentListCmd())
	cmd.AddCommand(newContentShowCmd())
	return cmd
}

func newContentCreateCmd() *cobra.Command {
	var (
		fd     formData
		parent string
		slug   string
	)
	cmd := &cobra.Command{
		Use:   "create <type>",
		Short: "Create content of a registered type",
		Long: `Create content below a parent node through the type's form.

Forms of extended types accept --category to tag the new content.

Example:
  categories content create page --parent / --title "About us"
  categories content create page --title Hello --category /news`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(func(a *app.App) error {
				return createContent(cmd, a, args[0], parent, slug, &fd)
			})
		},
	}
	fd.bind(cmd)
	fd.bindItems(cmd)
	cmd.Flags().StringVar(&parent, "parent", tree.Separator, "path of the parent node")
	cmd.Flags().StringVar(&slug, "slug", "", "path segment (default: derived from the title)")
	return cmd
}

func createContent(cmd *cobra.Command, a *app.App, typeName, parent, slug string, fd *formData) error {
	data, err := fd.data(a)
	if err != nil {
		return err
	}
	c, err := a.Create(typeName, parent, slug, data)
	if err != nil {
		return formError(err)
	}
	v, err := viewOf(a, c)
	if err != nil {
		return err
	}
	return printView(cmd, v)
}

func newContentListCmd() *cobra.Command {
	var (
		typeName string
		under    string
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List content",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(func(a *app.App) error {
				filter := types.Filter{}
				if typeName != "" {
					filter["content_type"] = typeName
				}
				contents, err := types.FetchContents(a.Cupboard, filter)
				if err != nil {
					return err
				}
				prefix := tree.Clean(under)
				var views []contentView
				for _, c := range contents {
					v, err := viewOf(a, c)
					if err != nil {
						return err
					}
					if prefix != "" && !below(v.Path, prefix) {
						continue
					}
					views = append(views, v)
				}
				return printViews(cmd, views)
			})
		},
	}
	cmd.Flags().StringVar(&typeName, "type", "", "only content of this type")
	cmd.Flags().StringVar(&under, "under", "", "only content at or below this path")
	return cmd
}

// below reports whether p is prefix or lies below it.
func below(p, prefix string) bool {
	return p == prefix || strings.HasPrefix(p, prefix+tree.Separator)
}

func newContentShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <path>",
		Short: "Show content with its categories",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(func(a *app.App) error {
				c, err := contentAt(a, args[0])
				if err != nil {
					return err
				}
				v, err := viewOf(a, c)
				if err != nil {
					return err
				}
				return printView(cmd, v)
			})
		},
	}
}
