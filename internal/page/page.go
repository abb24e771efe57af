// Package page provides the base page content type. Other types build
// their forms on NewForm and store through Save.
package page

import (
	"github.com/gosimple/slug"

	"github.com/mesh-intelligence/categories/internal/form"
	"github.com/mesh-intelligence/categories/internal/tree"
	"github.com/mesh-intelligence/categories/pkg/types"
)

// TypeName is the registered name of the page type.
const TypeName = "page"

// Template is the default page view.
const (
	Template      = "pages/page_view.html"
	TemplateLabel = "Page view"
)

// Type is the page content type.
type Type struct{}

// Name returns "page".
func (Type) Name() string { return TypeName }

// Title returns the human readable type name.
func (Type) Title() string { return "A page" }

// AddToIndex reports that pages are indexed.
func (Type) AddToIndex() bool { return true }

// NewForm returns the page form.
func (Type) NewForm(cupboard types.Cupboard, opts form.Options) (*form.Form, error) {
	return NewForm(cupboard, TypeName, opts), nil
}

// stateChoices lists the publication states offered by content forms.
var stateChoices = []form.Choice{
	{Value: types.StatePrivate, Label: "Private"},
	{Value: types.StatePending, Label: "Pending review"},
	{Value: types.StatePublished, Label: "Published"},
}

// NewForm returns a form for typeName with the standard content fields.
// The form stores through Save.
func NewForm(cupboard types.Cupboard, typeName string, opts form.Options) *form.Form {
	f := form.New(typeName, opts, Save(cupboard))

	title := form.TextField(form.FieldTitle, "Title", true)
	description := form.TextField(form.FieldDescription, "Description", false)
	state := form.ChoiceField(form.FieldState, "State", stateChoices)
	if c := opts.Instance; c != nil {
		title.Initial = []string{c.Title}
		description.Initial = []string{c.Description}
		state.Initial = []string{c.State}
	}
	f.AddField(title)
	f.AddField(description)
	f.AddField(state)
	return f
}

// Save returns the primary save step for content forms. A new instance
// with a parent in the form options is placed below the parent, named by
// the slug option or by its title. Other instances are stored in place.
func Save(cupboard types.Cupboard) form.SaveFunc {
	return func(f *form.Form, instance *types.Content) error {
		parent := f.Options.Parent
		if instance.NodeID == "" && parent != nil {
			name := f.Options.Slug
			if name == "" {
				name = Slugify(instance.Title)
			}
			_, err := tree.Place(cupboard, parent, name, instance)
			return err
		}
		contents, err := cupboard.GetTable(types.TableContents)
		if err != nil {
			return err
		}
		_, err = contents.Set(instance.ContentID, instance)
		return err
	}
}

// Slugify derives a path segment from title: transliterated to ASCII, lower
// case, with single dashes between words.
func Slugify(title string) string {
	return slug.Make(title)
}
