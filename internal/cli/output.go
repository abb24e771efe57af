package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/categories/internal/app"
	"github.com/mesh-intelligence/categories/internal/category"
	"github.com/mesh-intelligence/categories/internal/form"
	"github.com/mesh-intelligence/categories/internal/tree"
	"github.com/mesh-intelligence/categories/pkg/types"
)

// contentView is the printed form of one content entity.
type contentView struct {
	ID          string   `json:"content_id"`
	Path        string   `json:"path,omitempty"`
	Type        string   `json:"content_type"`
	Title       string   `json:"title"`
	Description string   `json:"description,omitempty"`
	State       string   `json:"state"`
	Icon        string   `json:"icon"`
	Categories  []string `json:"categories,omitempty"`
	Items       []string `json:"items,omitempty"`
}

// viewOf builds the view of c. Related content is listed by path.
func viewOf(a *app.App, c *types.Content) (contentView, error) {
	icon, err := a.Types.Icon(a.Cupboard, c)
	if err != nil {
		return contentView{}, err
	}
	v := contentView{
		ID:          c.ContentID,
		Path:        pathOf(a, c),
		Type:        c.ContentType,
		Title:       c.Title,
		Description: c.Description,
		State:       c.State,
		Icon:        icon,
	}

	cats, err := types.CategoriesOf(a.Cupboard, c.ContentID)
	if err != nil {
		return contentView{}, err
	}
	for _, cat := range cats {
		v.Categories = append(v.Categories, displayRef(a, cat.Content))
	}

	if cat, err := types.AsCategory(c); err == nil {
		items, err := cat.Items(a.Cupboard)
		if err != nil {
			return contentView{}, err
		}
		for _, item := range items {
			v.Items = append(v.Items, displayRef(a, item))
		}
	}
	return v, nil
}

// pathOf returns the node path of c, "/" for the root, or "" for content
// that is not placed.
func pathOf(a *app.App, c *types.Content) string {
	node, err := c.Node(a.Cupboard)
	if err != nil {
		return ""
	}
	if node.IsRoot() {
		return tree.Separator
	}
	return node.Path
}

// displayRef names c by path, or by title and ID when it is not placed.
func displayRef(a *app.App, c *types.Content) string {
	if p := pathOf(a, c); p != "" {
		return p
	}
	return fmt.Sprintf("%s (%s)", c.Title, c.ContentID)
}

func printJSON(w io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal output: %w", err)
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}

func printView(cmd *cobra.Command, v contentView) error {
	out := cmd.OutOrStdout()
	if flags.jsonMode {
		return printJSON(out, v)
	}
	fmt.Fprintf(out, "%s  %s\n", v.Path, v.Title)
	fmt.Fprintf(out, "  id:    %s\n", v.ID)
	fmt.Fprintf(out, "  type:  %s\n", v.Type)
	fmt.Fprintf(out, "  state: %s\n", v.State)
	fmt.Fprintf(out, "  icon:  %s\n", v.Icon)
	if v.Description != "" {
		fmt.Fprintf(out, "  description: %s\n", v.Description)
	}
	if len(v.Categories) > 0 {
		fmt.Fprintf(out, "  categories: %s\n", strings.Join(v.Categories, ", "))
	}
	if len(v.Items) > 0 {
		fmt.Fprintf(out, "  items: %s\n", strings.Join(v.Items, ", "))
	}
	return nil
}

func printViews(cmd *cobra.Command, views []contentView) error {
	out := cmd.OutOrStdout()
	if flags.jsonMode {
		if views == nil {
			views = []contentView{}
		}
		return printJSON(out, views)
	}
	for _, v := range views {
		fmt.Fprintf(out, "%-30s %-10s %-10s %s\n", v.Path, v.Type, v.State, v.Title)
	}
	return nil
}

// contentAt returns the content at the absolute path p.
func contentAt(a *app.App, p string) (*types.Content, error) {
	root, err := tree.Root(a.Cupboard)
	if err != nil {
		return nil, err
	}
	return tree.ContentAt(a.Cupboard, root, p)
}

// categoryAt returns the category at the absolute path p.
func categoryAt(a *app.App, p string) (*types.Category, error) {
	c, err := contentAt(a, p)
	if err != nil {
		return nil, err
	}
	cat, err := types.AsCategory(c)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", p, err)
	}
	return cat, nil
}

// formData collects submitted form values from the content flags.
type formData struct {
	title       string
	description string
	state       string
	categories  []string
	items       []string
	fields      []string
}

func (fd *formData) bind(cmd *cobra.Command) {
	cmd.Flags().StringVar(&fd.title, "title", "", "title (required)")
	cmd.Flags().StringVar(&fd.description, "description", "", "description")
	cmd.Flags().StringVar(&fd.state, "state", "", "publication state: private, pending, or published")
	cmd.Flags().StringArrayVar(&fd.categories, "category", nil, "path of a category to tag the content with (repeatable)")
	cmd.Flags().StringArrayVar(&fd.fields, "field", nil, "extra form value as name=value (repeatable)")
}

func (fd *formData) bindItems(cmd *cobra.Command) {
	cmd.Flags().StringArrayVar(&fd.items, "item", nil, "path of content to list in the category (repeatable)")
}

// data converts the flags to form data. Category and item paths are
// resolved to content IDs.
func (fd *formData) data(a *app.App) (form.Data, error) {
	d := form.Data{form.FieldTitle: {fd.title}}
	if fd.description != "" {
		d[form.FieldDescription] = []string{fd.description}
	}
	if fd.state != "" {
		d[form.FieldState] = []string{fd.state}
	}
	for _, p := range fd.categories {
		cat, err := categoryAt(a, p)
		if err != nil {
			return nil, err
		}
		d[category.FieldCategories] = append(d[category.FieldCategories], cat.ContentID)
	}
	for _, p := range fd.items {
		c, err := contentAt(a, p)
		if err != nil {
			return nil, err
		}
		d[category.FieldItems] = append(d[category.FieldItems], c.ContentID)
	}
	for _, kv := range fd.fields {
		name, value, ok := strings.Cut(kv, "=")
		if !ok || name == "" {
			return nil, fmt.Errorf("field %q (expected name=value): %w", kv, errUsage)
		}
		d[name] = append(d[name], value)
	}
	return d, nil
}

// formError reports per-field validation failures.
func formError(err error) error {
	if errors.Is(err, form.ErrNotValid) {
		return fmt.Errorf("form rejected: %w", err)
	}
	return err
}
