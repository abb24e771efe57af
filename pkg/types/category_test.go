package types_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/categories/internal/sqlite"
	"github.com/mesh-intelligence/categories/pkg/types"
)

func newCupboard(t *testing.T) types.Cupboard {
	t.Helper()
	b := sqlite.NewBackend()
	require.NoError(t, b.Attach(types.Config{Backend: types.BackendSQLite, DataDir: t.TempDir()}))
	t.Cleanup(func() { b.Detach() })
	return b
}

func saveContent(t *testing.T, cb types.Cupboard, c *types.Content) *types.Content {
	t.Helper()
	contents, err := cb.GetTable(types.TableContents)
	require.NoError(t, err)
	_, err = contents.Set("", c)
	require.NoError(t, err)
	return c
}

func idsOf(cats []*types.Category) []string {
	ids := make([]string, 0, len(cats))
	for _, c := range cats {
		ids = append(ids, c.ContentID)
	}
	return ids
}

func TestAsCategory(t *testing.T) {
	_, err := types.AsCategory(&types.Content{ContentType: "page"})
	assert.ErrorIs(t, err, types.ErrNotCategory)
	_, err = types.AsCategory(nil)
	assert.ErrorIs(t, err, types.ErrNotCategory)

	cat, err := types.AsCategory(&types.Content{ContentType: types.ContentTypeCategory, Title: "c"})
	require.NoError(t, err)
	assert.Equal(t, "c", cat.Title)
}

func TestCategoryItems(t *testing.T) {
	tests := []struct {
		name  string
		check func(t *testing.T, cb types.Cupboard, cat *types.Category, a, b *types.Content)
	}{
		{
			name: "added items are visible from both sides",
			check: func(t *testing.T, cb types.Cupboard, cat *types.Category, a, b *types.Content) {
				require.NoError(t, cat.AddItem(cb, a.ContentID))
				require.NoError(t, cat.AddItem(cb, b.ContentID))

				items, err := cat.Items(cb)
				require.NoError(t, err)
				require.Len(t, items, 2)
				assert.ElementsMatch(t, []string{a.ContentID, b.ContentID},
					[]string{items[0].ContentID, items[1].ContentID})

				cats, err := types.CategoriesOf(cb, a.ContentID)
				require.NoError(t, err)
				assert.Equal(t, []string{cat.ContentID}, idsOf(cats))
			},
		},
		{
			name: "adding an item twice keeps one membership",
			check: func(t *testing.T, cb types.Cupboard, cat *types.Category, a, b *types.Content) {
				require.NoError(t, cat.AddItem(cb, a.ContentID))
				require.NoError(t, cat.AddItem(cb, a.ContentID))
				ids, err := cat.ItemIDs(cb)
				require.NoError(t, err)
				assert.Equal(t, []string{a.ContentID}, ids)
			},
		},
		{
			name: "items must be stored content",
			check: func(t *testing.T, cb types.Cupboard, cat *types.Category, a, b *types.Content) {
				assert.ErrorIs(t, cat.AddItem(cb, "missing"), types.ErrInvalidItem)
			},
		},
		{
			name: "remove, clear, and set replace memberships",
			check: func(t *testing.T, cb types.Cupboard, cat *types.Category, a, b *types.Content) {
				require.NoError(t, cat.SetItems(cb, []string{a.ContentID, b.ContentID}))
				require.NoError(t, cat.RemoveItem(cb, a.ContentID))
				ids, err := cat.ItemIDs(cb)
				require.NoError(t, err)
				assert.Equal(t, []string{b.ContentID}, ids)

				require.NoError(t, cat.SetItems(cb, []string{a.ContentID}))
				ids, err = cat.ItemIDs(cb)
				require.NoError(t, err)
				assert.Equal(t, []string{a.ContentID}, ids)

				require.NoError(t, cat.ClearItems(cb))
				ids, err = cat.ItemIDs(cb)
				require.NoError(t, err)
				assert.Empty(t, ids)
			},
		},
		{
			name: "unsaved category cannot hold items",
			check: func(t *testing.T, cb types.Cupboard, cat *types.Category, a, b *types.Content) {
				unsaved := &types.Category{Content: &types.Content{ContentType: types.ContentTypeCategory}}
				assert.ErrorIs(t, unsaved.AddItem(cb, a.ContentID), types.ErrInvalidID)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cb := newCupboard(t)
			c := saveContent(t, cb, &types.Content{ContentType: types.ContentTypeCategory, Title: "cat"})
			cat, err := types.AsCategory(c)
			require.NoError(t, err)
			a := saveContent(t, cb, &types.Content{ContentType: "page", Title: "a"})
			b := saveContent(t, cb, &types.Content{ContentType: "page", Title: "b"})
			tt.check(t, cb, cat, a, b)
		})
	}
}

func TestSetCategories(t *testing.T) {
	cb := newCupboard(t)
	cat1 := saveContent(t, cb, &types.Content{ContentType: types.ContentTypeCategory, Title: "cat1"})
	cat2 := saveContent(t, cb, &types.Content{ContentType: types.ContentTypeCategory, Title: "cat2"})
	page := saveContent(t, cb, &types.Content{ContentType: "page", Title: "p"})

	require.NoError(t, types.SetCategories(cb, page.ContentID, []string{cat2.ContentID}))
	cats, err := types.CategoriesOf(cb, page.ContentID)
	require.NoError(t, err)
	assert.Equal(t, []string{cat2.ContentID}, idsOf(cats))

	// Running the replacement twice leaves the same state.
	for i := 0; i < 2; i++ {
		require.NoError(t, types.SetCategories(cb, page.ContentID, []string{cat1.ContentID}))
	}
	cats, err = types.CategoriesOf(cb, page.ContentID)
	require.NoError(t, err)
	assert.Equal(t, []string{cat1.ContentID}, idsOf(cats))

	err = types.SetCategories(cb, page.ContentID, []string{page.ContentID})
	assert.ErrorIs(t, err, types.ErrNotCategory)
}

func TestFetchCategories(t *testing.T) {
	cb := newCupboard(t)
	saveContent(t, cb, &types.Content{ContentType: types.ContentTypeCategory, Title: "cat1"})
	saveContent(t, cb, &types.Content{ContentType: "page", Title: "p"})
	saveContent(t, cb, &types.Content{ContentType: types.ContentTypeCategory, Title: "cat2"})

	cats, err := types.FetchCategories(cb)
	require.NoError(t, err)
	require.Len(t, cats, 2)
	assert.Equal(t, "cat1", cats[0].Title)
	assert.Equal(t, "cat2", cats[1].Title)
}
