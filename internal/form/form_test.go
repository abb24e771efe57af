package form

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/categories/pkg/types"
)

// fakeSave assigns an ID the way a store would and counts calls.
func fakeSave(calls *int) SaveFunc {
	return func(f *Form, instance *types.Content) error {
		*calls++
		if instance.ContentID == "" {
			instance.ContentID = "generated"
		}
		return nil
	}
}

func newPageForm(data Data, save SaveFunc) *Form {
	f := New("page", Options{Data: data}, save)
	f.AddField(TextField(FieldTitle, "Title", true))
	f.AddField(TextField(FieldDescription, "Description", false))
	f.AddField(ChoiceField(FieldState, "State", []Choice{
		{Value: types.StatePrivate, Label: "Private"},
		{Value: types.StatePublished, Label: "Published"},
	}))
	return f
}

func TestFieldClean(t *testing.T) {
	choices := []Choice{{Value: "a"}, {Value: "b"}}
	tests := []struct {
		name    string
		field   *Field
		values  []string
		want    []string
		wantErr error
	}{
		{"text takes first value", TextField("t", "", false), []string{"x", "y"}, []string{"x"}, nil},
		{"required text rejects empty", TextField("t", "", true), nil, nil, ErrRequiredField},
		{"choice accepts known value", ChoiceField("c", "", choices), []string{"b"}, []string{"b"}, nil},
		{"choice rejects unknown value", ChoiceField("c", "", choices), []string{"z"}, nil, ErrInvalidChoice},
		{"choice allows empty", ChoiceField("c", "", choices), nil, nil, nil},
		{"multi choice dedupes", MultiChoiceField("m", "", choices), []string{"a", "b", "a", ""}, []string{"a", "b"}, nil},
		{"multi choice rejects unknown", MultiChoiceField("m", "", choices), []string{"a", "z"}, nil, ErrInvalidChoice},
		{"multi choice allows none", MultiChoiceField("m", "", choices), nil, nil, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.field.Clean(tt.values)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestAddFieldReplacesByName(t *testing.T) {
	f := New("page", Options{}, nil)
	f.AddField(TextField("title", "Title", false))
	f.AddField(TextField("title", "Name", true))
	require.Len(t, f.Fields(), 1)
	assert.Equal(t, "Name", f.Field("title").Label)
	assert.False(t, f.HasField("categories"))
}

func TestAddAdvancedDedupes(t *testing.T) {
	f := New("page", Options{}, nil)
	f.AddAdvanced("categories")
	f.AddAdvanced("categories", "tags")
	assert.Equal(t, []string{"categories", "tags"}, f.AdvancedFields)
}

func TestValidate(t *testing.T) {
	f := newPageForm(nil, nil)
	assert.ErrorIs(t, f.Validate(), ErrNotBound)

	f = newPageForm(Data{FieldState: {"bogus"}}, nil)
	err := f.Validate()
	assert.ErrorIs(t, err, ErrNotValid)
	assert.ErrorIs(t, err, ErrRequiredField)
	assert.ErrorIs(t, err, ErrInvalidChoice)
	assert.Contains(t, f.Errors(), FieldTitle)
	assert.Contains(t, f.Errors(), FieldState)

	f = newPageForm(Data{FieldTitle: {"Home"}}, nil)
	require.NoError(t, f.Validate())
	assert.Equal(t, "Home", f.CleanedValue(FieldTitle))
}

func TestSaveCommit(t *testing.T) {
	var saves, hookRuns int
	f := newPageForm(Data{FieldTitle: {"Home"}, FieldState: {types.StatePublished}}, fakeSave(&saves))
	f.AddPostSaveHook(func(f *Form, instance *types.Content) error {
		hookRuns++
		assert.Equal(t, "generated", instance.ContentID, "hooks see the stored instance")
		return nil
	})

	instance, err := f.Save(true)
	require.NoError(t, err)
	assert.Equal(t, "page", instance.ContentType)
	assert.Equal(t, "Home", instance.Title)
	assert.Equal(t, types.StatePublished, instance.State)
	assert.Equal(t, 1, saves)
	assert.Equal(t, 1, hookRuns)

	// Nothing is pending after a committed save.
	require.NoError(t, f.SaveRelations())
	assert.Equal(t, 1, hookRuns)
}

func TestSaveWithoutCommitDefersHooks(t *testing.T) {
	var saves, hookRuns int
	existing := &types.Content{ContentID: "existing", ContentType: "page", Title: "Old"}
	f := newPageForm(Data{FieldTitle: {"New"}}, fakeSave(&saves))
	f.Options.Instance = existing
	f.AddPostSaveHook(func(*Form, *types.Content) error {
		hookRuns++
		return nil
	})

	instance, err := f.Save(false)
	require.NoError(t, err)
	assert.Same(t, existing, instance)
	assert.Equal(t, "New", instance.Title)
	assert.Equal(t, 0, saves)
	assert.Equal(t, 0, hookRuns)

	_, err = f.Save(true)
	require.NoError(t, err)
	assert.Equal(t, 1, saves)
	assert.Equal(t, 1, hookRuns)
}

func TestSaveRelationsAfterCallerStores(t *testing.T) {
	var hookRuns int
	f := newPageForm(Data{FieldTitle: {"New"}}, nil)
	f.AddPostSaveHook(func(*Form, *types.Content) error {
		hookRuns++
		return nil
	})

	instance, err := f.Save(false)
	require.NoError(t, err)
	assert.ErrorIs(t, f.SaveRelations(), types.ErrInvalidID, "instance not stored yet")

	_, err = f.Save(false)
	require.NoError(t, err)
	instance.ContentID = "stored-by-caller"
	require.NoError(t, f.SaveRelations())
	require.NoError(t, f.SaveRelations())
	assert.Equal(t, 1, hookRuns)
}

func TestSaveStopsOnHookError(t *testing.T) {
	var saves int
	boom := errors.New("boom")
	f := newPageForm(Data{FieldTitle: {"x"}}, fakeSave(&saves))
	f.AddPostSaveHook(func(*Form, *types.Content) error { return boom })
	second := false
	f.AddPostSaveHook(func(*Form, *types.Content) error {
		second = true
		return nil
	})

	_, err := f.Save(true)
	assert.ErrorIs(t, err, boom)
	assert.False(t, second)
}

func TestSaveTwiceUpdatesStoredInstance(t *testing.T) {
	var created int
	save := func(f *Form, instance *types.Content) error {
		if instance.ContentID == "" {
			created++
			instance.ContentID = "generated"
		}
		return nil
	}
	var hookRuns int
	f := newPageForm(Data{FieldTitle: {"Home"}}, save)
	f.AddPostSaveHook(func(*Form, *types.Content) error {
		hookRuns++
		return nil
	})

	first, err := f.Save(true)
	require.NoError(t, err)
	second, err := f.Save(true)
	require.NoError(t, err)

	assert.Same(t, first, second)
	assert.Same(t, first, f.Options.Instance)
	assert.Equal(t, 1, created)
	assert.Equal(t, 2, hookRuns)
}

func TestSaveRelationsRetriesFailedChain(t *testing.T) {
	var saves, hookRuns int
	boom := errors.New("boom")
	fail := true
	f := newPageForm(Data{FieldTitle: {"x"}}, fakeSave(&saves))
	f.AddPostSaveHook(func(*Form, *types.Content) error {
		if fail {
			return boom
		}
		hookRuns++
		return nil
	})

	_, err := f.Save(true)
	require.ErrorIs(t, err, boom)

	fail = false
	require.NoError(t, f.SaveRelations())
	assert.Equal(t, 1, hookRuns)
	assert.Equal(t, 1, saves)

	require.NoError(t, f.SaveRelations())
	assert.Equal(t, 1, hookRuns, "chain ran once after the retry")
}
