package page

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/categories/internal/form"
	"github.com/mesh-intelligence/categories/internal/sqlite"
	"github.com/mesh-intelligence/categories/internal/tree"
	"github.com/mesh-intelligence/categories/pkg/types"
)

func newCupboard(t *testing.T) types.Cupboard {
	t.Helper()
	b := sqlite.NewBackend()
	require.NoError(t, b.Attach(types.Config{Backend: types.BackendSQLite, DataDir: t.TempDir()}))
	t.Cleanup(func() { b.Detach() })
	return b
}

func TestSlugify(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"Hello", "hello"},
		{"Hello, World!", "hello-world"},
		{"  spaced   out  ", "spaced-out"},
		{"Release 2.0", "release-2-0"},
		{"Über Café", "uber-cafe"},
		{"Tom & Jerry", "tom-and-jerry"},
		{"!!!", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Slugify(tt.in), tt.in)
	}
}

func TestNewFormFields(t *testing.T) {
	f, err := Type{}.NewForm(nil, form.Options{})
	require.NoError(t, err)

	names := make([]string, 0, 3)
	for _, field := range f.Fields() {
		names = append(names, field.Name)
	}
	assert.Equal(t, []string{form.FieldTitle, form.FieldDescription, form.FieldState}, names)
	assert.True(t, f.Field(form.FieldTitle).Required)
	assert.Empty(t, f.AdvancedFields)
}

func TestNewFormInitialFromInstance(t *testing.T) {
	instance := &types.Content{ContentType: TypeName, Title: "About", State: types.StatePublished}
	f := NewForm(nil, TypeName, form.Options{Instance: instance})
	assert.Equal(t, []string{"About"}, f.Field(form.FieldTitle).Initial)
	assert.Equal(t, []string{types.StatePublished}, f.Field(form.FieldState).Initial)
}

func TestSavePlacesNewContent(t *testing.T) {
	cb := newCupboard(t)
	root, err := tree.Root(cb)
	require.NoError(t, err)

	tests := []struct {
		name     string
		opts     form.Options
		title    string
		wantPath string
	}{
		{"slug from title", form.Options{Parent: root}, "About Us", "/about-us"},
		{"explicit slug", form.Options{Parent: root, Slug: "team"}, "Our Team", "/team"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.opts.Data = form.Data{form.FieldTitle: {tt.title}}
			instance, err := NewForm(cb, TypeName, tt.opts).Save(true)
			require.NoError(t, err)

			got, err := tree.ContentAt(cb, root, tt.wantPath)
			require.NoError(t, err)
			assert.Equal(t, instance.ContentID, got.ContentID)
			assert.Equal(t, types.StatePrivate, got.State)
		})
	}
}

func TestSaveUpdatesExistingContent(t *testing.T) {
	cb := newCupboard(t)
	root, err := tree.Root(cb)
	require.NoError(t, err)
	existing := &types.Content{ContentType: TypeName, Title: "Old"}
	_, err = tree.Place(cb, root, "old", existing)
	require.NoError(t, err)

	f := NewForm(cb, TypeName, form.Options{
		Parent:   root,
		Instance: existing,
		Data:     form.Data{form.FieldTitle: {"New"}, form.FieldState: {types.StatePublished}},
	})
	_, err = f.Save(true)
	require.NoError(t, err)

	got, err := tree.ContentAt(cb, root, "/old")
	require.NoError(t, err)
	assert.Equal(t, existing.ContentID, got.ContentID)
	assert.Equal(t, "New", got.Title)
	assert.True(t, got.Published())
}

func TestSaveWithoutParentStoresUnplaced(t *testing.T) {
	cb := newCupboard(t)
	instance, err := NewForm(cb, TypeName, form.Options{Data: form.Data{form.FieldTitle: {"Loose"}}}).Save(true)
	require.NoError(t, err)
	assert.NotEmpty(t, instance.ContentID)
	assert.Empty(t, instance.NodeID)
}

func TestSaveTwiceKeepsOneContent(t *testing.T) {
	tests := []struct {
		name   string
		parent bool
	}{
		{"placed", true},
		{"unplaced", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cb := newCupboard(t)
			opts := form.Options{Data: form.Data{form.FieldTitle: {"Test"}}}
			if tt.parent {
				root, err := tree.Root(cb)
				require.NoError(t, err)
				opts.Parent = root
			}
			f := NewForm(cb, TypeName, opts)

			first, err := f.Save(true)
			require.NoError(t, err)
			second, err := f.Save(true)
			require.NoError(t, err)
			assert.Equal(t, first.ContentID, second.ContentID)

			all, err := types.FetchContents(cb, types.Filter{})
			require.NoError(t, err)
			assert.Len(t, all, 1)
		})
	}
}
