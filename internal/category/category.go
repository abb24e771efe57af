// Package category provides the category content type.
//
// A category is a page that holds a set of references to other content.
// Registered as an extension, it adds a "categories" field to the forms of
// the extended types, keeps their memberships in sync on save, and adds a
// <categories> block to their exported records.
package category

import (
	"fmt"

	"github.com/mesh-intelligence/categories/internal/form"
	"github.com/mesh-intelligence/categories/internal/page"
	"github.com/mesh-intelligence/categories/internal/registry"
	"github.com/mesh-intelligence/categories/pkg/types"
)

// TypeName is the registered name of the category type.
const TypeName = types.ContentTypeCategory

// Field names contributed by the category type.
const (
	// FieldItems is the category form's own item selection.
	FieldItems = "items"
	// FieldCategories is added to the forms of extended types.
	FieldCategories = "categories"
)

// Icons reported by Icon.
const (
	IconCategory   = "category"
	IconCategories = "categories"
)

// Template is the default category view.
const (
	Template      = "categories/category_view.html"
	TemplateLabel = "Category view"
)

// Type is the category content type.
type Type struct{}

var (
	_ registry.Type                        = Type{}
	_ registry.FormExtender                = Type{}
	_ registry.SaveExtender                = Type{}
	_ registry.Iconer                      = Type{}
	_ registry.Indexer                     = Type{}
	_ registry.SerializerProvider          = Type{}
	_ registry.ExtensionSerializerProvider = Type{}
)

// Name returns "category".
func (Type) Name() string { return TypeName }

// Title returns the human readable type name.
func (Type) Title() string { return "A category" }

// AddToIndex reports that categories are not indexed. They are navigation,
// not searchable content.
func (Type) AddToIndex() bool { return false }

// Icon returns IconCategories when the category's node has children and
// IconCategory otherwise.
func (Type) Icon(cupboard types.Cupboard, c *types.Content) (string, error) {
	cat, err := types.AsCategory(c)
	if err != nil {
		return "", err
	}
	nested, err := cat.HasChildren(cupboard)
	if err != nil {
		return "", err
	}
	if nested {
		return IconCategories, nil
	}
	return IconCategory, nil
}

// RegisterTemplates registers the category view.
func RegisterTemplates(templates *registry.Templates) error {
	return templates.Register(TypeName, Template, TemplateLabel, true)
}

// NewForm returns the category form: the page fields plus a selection of
// items over all stored content. Saving replaces the category's items with
// the selection.
func (Type) NewForm(cupboard types.Cupboard, opts form.Options) (*form.Form, error) {
	f := page.NewForm(cupboard, TypeName, opts)

	all, err := types.FetchContents(cupboard, nil)
	if err != nil {
		return nil, fmt.Errorf("listing content: %w", err)
	}
	choices := make([]form.Choice, 0, len(all))
	for _, c := range all {
		choices = append(choices, form.Choice{Value: c.ContentID, Label: c.Title})
	}
	items := form.MultiChoiceField(FieldItems, "Items", choices)
	if c := opts.Instance; c != nil && c.ContentID != "" {
		cat, err := types.AsCategory(c)
		if err != nil {
			return nil, err
		}
		if items.Initial, err = cat.ItemIDs(cupboard); err != nil {
			return nil, err
		}
	}
	f.AddField(items)

	f.AddPostSaveHook(func(f *form.Form, instance *types.Content) error {
		cat, err := types.AsCategory(instance)
		if err != nil {
			return err
		}
		return cat.SetItems(cupboard, f.Cleaned(FieldItems))
	})
	return f, nil
}

// ExtendForm adds the categories field to f. Every stored category is a
// choice; categories that are not published show their state. When f edits
// an existing instance its current categories are preselected.
func (Type) ExtendForm(cupboard types.Cupboard, f *form.Form) error {
	cats, err := types.FetchCategories(cupboard)
	if err != nil {
		return fmt.Errorf("listing categories: %w", err)
	}
	choices := make([]form.Choice, 0, len(cats))
	for _, cat := range cats {
		choices = append(choices, form.Choice{Value: cat.ContentID, Label: choiceLabel(cat)})
	}
	field := form.MultiChoiceField(FieldCategories, "Categories", choices)

	if c := f.Options.Instance; c != nil && c.ContentID != "" {
		current, err := types.CategoriesOf(cupboard, c.ContentID)
		if err != nil {
			return err
		}
		for _, cat := range current {
			field.Initial = append(field.Initial, cat.ContentID)
		}
	}

	f.AddField(field)
	f.AddAdvanced(FieldCategories)
	return nil
}

// ExtendSave adds a post-save hook that replaces the saved instance's
// category memberships with the selected categories.
func (Type) ExtendSave(cupboard types.Cupboard, f *form.Form) error {
	f.AddPostSaveHook(func(f *form.Form, instance *types.Content) error {
		return types.SetCategories(cupboard, instance.ContentID, f.Cleaned(FieldCategories))
	})
	return nil
}

func choiceLabel(cat *types.Category) string {
	if cat.Published() {
		return cat.Title
	}
	return fmt.Sprintf("%s (%s)", cat.Title, cat.State)
}
