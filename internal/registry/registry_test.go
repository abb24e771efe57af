package registry

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/categories/internal/form"
	"github.com/mesh-intelligence/categories/internal/serial"
	"github.com/mesh-intelligence/categories/pkg/types"
)

// baseType is a plain content type with a title field.
type baseType struct{ name string }

func (b baseType) Name() string  { return b.name }
func (b baseType) Title() string { return "Type " + b.name }
func (b baseType) NewForm(_ types.Cupboard, opts form.Options) (*form.Form, error) {
	f := form.New(b.name, opts, nil)
	f.AddField(form.TextField(form.FieldTitle, "Title", true))
	return f, nil
}

// tagExtension adds a field and a hook named after itself.
type tagExtension struct {
	baseType
	err error
}

func (e tagExtension) ExtendForm(_ types.Cupboard, f *form.Form) error {
	if e.err != nil {
		return e.err
	}
	f.AddField(form.MultiChoiceField(e.name, e.name, nil))
	f.AddAdvanced(e.name)
	return nil
}

func (e tagExtension) ExtendSave(_ types.Cupboard, f *form.Form) error {
	f.AddPostSaveHook(func(*form.Form, *types.Content) error { return nil })
	return nil
}

func (e tagExtension) ExtensionSerializer() serial.Serializer {
	return blockSerializer{name: e.name}
}

// blockSerializer writes an empty block called name.
type blockSerializer struct{ name string }

func (s blockSerializer) Serialize(serial.SerializeContext, *types.Content) (*serial.Record, error) {
	rec := &serial.Record{}
	rec.AddBlock(serial.NewBlock(s.name, "entry", nil))
	return rec, nil
}

func (s blockSerializer) Deserialize(serial.DeserializeContext, *serial.Record, *types.Content) ([]serial.PendingOp, error) {
	return nil, nil
}

type iconType struct{ baseType }

func (iconType) Icon(types.Cupboard, *types.Content) (string, error) { return "star", nil }
func (iconType) AddToIndex() bool                                    { return false }

func TestRegisterAndLookup(t *testing.T) {
	r := NewTypes()
	require.NoError(t, r.Register(baseType{name: "page"}))
	require.NoError(t, r.Register(baseType{name: "news"}))
	require.NoError(t, r.Register(baseType{name: "page"}))

	got, err := r.Lookup("page")
	require.NoError(t, err)
	assert.Equal(t, "page", got.Name())

	names := make([]string, 0, 2)
	for _, tp := range r.Types() {
		names = append(names, tp.Name())
	}
	assert.Equal(t, []string{"page", "news"}, names)

	_, err = r.Lookup("gallery")
	assert.ErrorIs(t, err, ErrUnknownType)

	assert.ErrorIs(t, r.Register(nil), ErrInvalidType)
	assert.ErrorIs(t, r.Register(baseType{}), ErrInvalidType)
}

func TestReset(t *testing.T) {
	r := NewTypes()
	require.NoError(t, r.Register(baseType{name: "page"}))
	require.NoError(t, r.Register(tagExtension{baseType: baseType{name: "tags"}}, Extends("page")))
	r.Reset()

	assert.Empty(t, r.Types())
	assert.Empty(t, r.Extensions("page"))
	_, err := r.Lookup("page")
	assert.ErrorIs(t, err, ErrUnknownType)
}

func TestExtensions(t *testing.T) {
	tags := tagExtension{baseType: baseType{name: "tags"}}
	topics := tagExtension{baseType: baseType{name: "topics"}}

	tests := []struct {
		name     string
		register func(r *Types)
		forType  string
		want     []string
	}{
		{
			name:     "none registered",
			register: func(r *Types) {},
			forType:  "page",
			want:     nil,
		},
		{
			name: "registered for the type",
			register: func(r *Types) {
				require.NoError(t, r.Register(tags, Extends("page")))
			},
			forType: "page",
			want:    []string{"tags"},
		},
		{
			name: "registered for another type",
			register: func(r *Types) {
				require.NoError(t, r.Register(tags, Extends("news")))
			},
			forType: "page",
			want:    nil,
		},
		{
			name: "content capability extends every type",
			register: func(r *Types) {
				require.NoError(t, r.Register(tags, Extends(types.CapabilityContent)))
			},
			forType: "news",
			want:    []string{"tags"},
		},
		{
			name: "additive and deduplicated",
			register: func(r *Types) {
				require.NoError(t, r.Register(tags, Extends("page"), Extends(types.CapabilityContent)))
				require.NoError(t, r.Register(topics, Extends("page")))
				require.NoError(t, r.Register(tags, Extends("page")))
			},
			forType: "page",
			want:    []string{"tags", "topics"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewTypes()
			require.NoError(t, r.Register(baseType{name: "page"}))
			require.NoError(t, r.Register(baseType{name: "news"}))
			tt.register(r)

			var got []string
			for _, ext := range r.Extensions(tt.forType) {
				got = append(got, ext.Name())
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNewForm(t *testing.T) {
	tests := []struct {
		name       string
		light      bool
		wantFields []string
		wantHooks  int
	}{
		{"full form gains extension fields", false, []string{form.FieldTitle, "tags", "topics"}, 2},
		{"light form skips extensions", true, []string{form.FieldTitle}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewTypes()
			require.NoError(t, r.Register(baseType{name: "page"}))
			require.NoError(t, r.Register(tagExtension{baseType: baseType{name: "tags"}}, Extends("page")))
			require.NoError(t, r.Register(tagExtension{baseType: baseType{name: "topics"}}, Extends(types.CapabilityContent)))

			f, err := r.NewForm(nil, "page", form.Options{Light: tt.light})
			require.NoError(t, err)

			var names []string
			for _, field := range f.Fields() {
				names = append(names, field.Name)
			}
			assert.Equal(t, tt.wantFields, names)
			assert.Equal(t, tt.wantHooks, f.PostSaveHooks())
		})
	}
}

func TestNewFormErrors(t *testing.T) {
	r := NewTypes()
	_, err := r.NewForm(nil, "page", form.Options{})
	assert.ErrorIs(t, err, ErrUnknownType)

	boom := errors.New("boom")
	require.NoError(t, r.Register(baseType{name: "page"}))
	require.NoError(t, r.Register(tagExtension{baseType: baseType{name: "tags"}, err: boom}, Extends("page")))
	_, err = r.NewForm(nil, "page", form.Options{})
	assert.ErrorIs(t, err, boom)
}

func TestSerializerFor(t *testing.T) {
	r := NewTypes()
	require.NoError(t, r.Register(baseType{name: "page"}))
	require.NoError(t, r.Register(baseType{name: "news"}))
	require.NoError(t, r.Register(tagExtension{baseType: baseType{name: "tags"}}, Extends("page")))

	c := &types.Content{ContentType: "page", Title: "Home"}
	ser, err := r.SerializerFor("page")
	require.NoError(t, err)
	rec, err := ser.Serialize(serial.SerializeContext{}, c)
	require.NoError(t, err)
	title, _ := rec.Field(serial.FieldTitle)
	assert.Equal(t, "Home", title)
	_, ok := rec.Block("tags")
	assert.True(t, ok)

	ser, err = r.SerializerFor("news")
	require.NoError(t, err)
	assert.Equal(t, serial.BaseSerializer{}, ser)

	_, err = r.SerializerFor("gallery")
	assert.ErrorIs(t, err, ErrUnknownType)
}

func TestIconAndIndex(t *testing.T) {
	r := NewTypes()
	require.NoError(t, r.Register(baseType{name: "page"}))
	require.NoError(t, r.Register(iconType{baseType{name: "starred"}}))

	icon, err := r.Icon(nil, &types.Content{ContentType: "page"})
	require.NoError(t, err)
	assert.Equal(t, DefaultIcon, icon)
	icon, err = r.Icon(nil, &types.Content{ContentType: "starred"})
	require.NoError(t, err)
	assert.Equal(t, "star", icon)

	index, err := r.AddToIndex("page")
	require.NoError(t, err)
	assert.True(t, index)
	index, err = r.AddToIndex("starred")
	require.NoError(t, err)
	assert.False(t, index)
}

func TestTemplates(t *testing.T) {
	tr := NewTemplates()
	_, ok := tr.Default("category")
	assert.False(t, ok)

	require.NoError(t, tr.Register("category", "categories/list.html", "List", false))
	tmpl, ok := tr.Default("category")
	require.True(t, ok)
	assert.Equal(t, "categories/list.html", tmpl.Path, "first registered without an explicit default")

	require.NoError(t, tr.Register("category", "categories/category_view.html", "Category view", true))
	tmpl, ok = tr.Default("category")
	require.True(t, ok)
	assert.Equal(t, "Category view", tmpl.Label)

	require.NoError(t, tr.Register("category", "categories/list.html", "List", true))
	tmpl, _ = tr.Default("category")
	assert.Equal(t, "categories/list.html", tmpl.Path)
	assert.Len(t, tr.Lookup("category"), 2)

	assert.ErrorIs(t, tr.Register("", "x.html", "", false), ErrInvalidTemplate)

	tr.Reset()
	assert.Empty(t, tr.Lookup("category"))
}
