package category

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/categories/internal/page"
	"github.com/mesh-intelligence/categories/internal/serial"
	"github.com/mesh-intelligence/categories/internal/tree"
	"github.com/mesh-intelligence/categories/pkg/types"
)

func itemPaths(t *testing.T, cb types.Cupboard, cat *types.Content) []string {
	t.Helper()
	c, err := types.AsCategory(cat)
	require.NoError(t, err)
	items, err := c.Items(cb)
	require.NoError(t, err)
	paths := make([]string, 0, len(items))
	for _, item := range items {
		node, err := item.Node(cb)
		require.NoError(t, err)
		paths = append(paths, node.Path)
	}
	return paths
}

func addToCategory(t *testing.T, cb types.Cupboard, cat *types.Content, items ...*types.Content) {
	t.Helper()
	c, err := types.AsCategory(cat)
	require.NoError(t, err)
	for _, item := range items {
		require.NoError(t, c.AddItem(cb, item.ContentID))
	}
}

func export(t *testing.T, cb types.Cupboard, s serial.Serializers, basePath string) string {
	t.Helper()
	base, err := tree.Lookup(cb, basePath)
	require.NoError(t, err)
	var buf bytes.Buffer
	require.NoError(t, serial.NewExporter(cb, s).Export(&buf, base))
	return buf.String()
}

// clearBelow removes every node below path.
func clearBelow(t *testing.T, cb types.Cupboard, path string) {
	t.Helper()
	base, err := tree.Lookup(cb, path)
	require.NoError(t, err)
	children, err := base.Children(cb)
	require.NoError(t, err)
	nodes, err := cb.GetTable(types.TableNodes)
	require.NoError(t, err)
	for _, child := range children {
		require.NoError(t, nodes.Delete(child.NodeID))
	}
}

func TestSerializeItems(t *testing.T) {
	cb := newCupboard(t)
	r := newTypes(t)
	place(t, cb, "/sub1", page.TypeName, "Sub1")
	base, err := tree.Lookup(cb, "/sub1")
	require.NoError(t, err)
	baseContent, err := base.Content(cb)
	require.NoError(t, err)
	t1 := place(t, cb, "/sub1/t1", page.TypeName, "T1")
	cat := place(t, cb, "/sub1/cat", TypeName, "Cat")
	addToCategory(t, cb, cat, baseContent, t1)

	ser, err := r.SerializerFor(TypeName)
	require.NoError(t, err)
	rec, err := ser.Serialize(serial.SerializeContext{Cupboard: cb, Base: base}, cat)
	require.NoError(t, err)

	title, _ := rec.Field(serial.FieldTitle)
	assert.Equal(t, "Cat", title)
	block, ok := rec.Block("items")
	require.True(t, ok)
	assert.ElementsMatch(t, []string{"/", "/t1"}, block.Values())
}

func TestDeserializeItemsDefersWrites(t *testing.T) {
	cb := newCupboard(t)
	root, err := tree.Root(cb)
	require.NoError(t, err)

	rec := &serial.Record{Slug: "cat", Type: TypeName}
	rec.SetField(serial.FieldTitle, "Cat")
	rec.AddBlock(serial.NewBlock("items", "item", []string{"/a", "/b"}))

	c := &types.Content{ContentType: TypeName}
	ops, err := Type{}.Serializer().Deserialize(serial.DeserializeContext{Base: root}, rec, c)
	require.NoError(t, err)
	assert.Equal(t, "Cat", c.Title)
	require.Len(t, ops, 1, "one pending operation per category")
	assert.Equal(t, "items", ops[0].Relation)
	assert.Equal(t, []string{"/a", "/b"}, ops[0].Refs)
	assert.Empty(t, c.ContentID, "nothing stored during deserialization")
}

func TestRoundTrip(t *testing.T) {
	tests := []struct {
		name string
		base string
	}{
		{"root base", ""},
		{"nested base", "/sub1/sub2"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cb := newCupboard(t)
			r := newTypes(t)
			if tt.base != "" {
				place(t, cb, "/sub1", page.TypeName, "Sub1")
				place(t, cb, tt.base, page.TypeName, "Sub2")
			}
			// The category comes before its items in document order.
			cat := place(t, cb, tt.base+"/a-cat", TypeName, "Cat")
			a := place(t, cb, tt.base+"/t1", page.TypeName, "A")
			b := place(t, cb, tt.base+"/t1/b", page.TypeName, "B")
			addToCategory(t, cb, cat, a, b)
			want := itemPaths(t, cb, cat)

			out := export(t, cb, r, tt.base)
			clearBelow(t, cb, tt.base)

			base, err := tree.Lookup(cb, tt.base)
			require.NoError(t, err)
			res, err := serial.NewImporter(cb, r).Import(strings.NewReader(out), base)
			require.NoError(t, err)
			assert.Equal(t, 1, res.Ops)

			got, err := tree.ContentAt(cb, base, "/a-cat")
			require.NoError(t, err)
			assert.ElementsMatch(t, want, itemPaths(t, cb, got))
		})
	}
}

func TestRoundTripBaseSentinel(t *testing.T) {
	cb := newCupboard(t)
	r := newTypes(t)
	place(t, cb, "/sub1", page.TypeName, "Sub1")
	base, err := tree.Lookup(cb, "/sub1")
	require.NoError(t, err)
	baseContent, err := base.Content(cb)
	require.NoError(t, err)
	cat := place(t, cb, "/sub1/cat", TypeName, "Cat")
	addToCategory(t, cb, cat, baseContent)

	out := export(t, cb, r, "/sub1")
	assert.Contains(t, out, "<item>/</item>")
	clearBelow(t, cb, "/sub1")

	_, err = serial.NewImporter(cb, r).Import(strings.NewReader(out), base)
	require.NoError(t, err)
	got, err := tree.ContentAt(cb, base, "/cat")
	require.NoError(t, err)
	assert.Equal(t, []string{"/sub1"}, itemPaths(t, cb, got))
}

func TestImportResolvesAgainstBase(t *testing.T) {
	cb := newCupboard(t)
	r := newTypes(t)
	place(t, cb, "/t1", page.TypeName, "Root T1")
	place(t, cb, "/sub1/sub2/t1", page.TypeName, "Nested T1")
	base, err := tree.Lookup(cb, "/sub1/sub2")
	require.NoError(t, err)

	doc := `<site version="1" base="/sub1/sub2">
  <content slug="cat" type="category">
    <fields><field name="title">Cat</field></fields>
    <items><item>/t1</item></items>
  </content>
</site>`
	_, err = serial.NewImporter(cb, r).Import(strings.NewReader(doc), base)
	require.NoError(t, err)

	got, err := tree.ContentAt(cb, base, "/cat")
	require.NoError(t, err)
	assert.Equal(t, []string{"/sub1/sub2/t1"}, itemPaths(t, cb, got))
}

func TestImportMissingItemFails(t *testing.T) {
	cb := newCupboard(t)
	r := newTypes(t)
	root, err := tree.Root(cb)
	require.NoError(t, err)

	doc := `<site>
  <content slug="cat" type="category">
    <fields><field name="title">Cat</field></fields>
    <items><item>/missing</item></items>
  </content>
</site>`
	_, err = serial.NewImporter(cb, r).Import(strings.NewReader(doc), root)
	assert.ErrorIs(t, err, types.ErrNotFound)

	cats, err := types.FetchCategories(cb)
	require.NoError(t, err)
	assert.Empty(t, cats, "the failed import is rolled back")
}

func TestExtendedTypeCategoriesBlock(t *testing.T) {
	cb := newCupboard(t)
	r := newTypes(t, types.CapabilityContent)
	cat := place(t, cb, "/cat", TypeName, "Cat")
	p := place(t, cb, "/p", page.TypeName, "P")
	addToCategory(t, cb, cat, p)

	out := export(t, cb, r, "")
	assert.Contains(t, out, "<category>/cat</category>")
	assert.Contains(t, out, "<item>/p</item>")

	clearBelow(t, cb, "")
	root, err := tree.Root(cb)
	require.NoError(t, err)
	res, err := serial.NewImporter(cb, r).Import(strings.NewReader(out), root)
	require.NoError(t, err)
	// cat: items and categories blocks; p: categories block.
	assert.Equal(t, 3, res.Ops)

	gotCat, err := tree.ContentAt(cb, root, "/cat")
	require.NoError(t, err)
	assert.Equal(t, []string{"/p"}, itemPaths(t, cb, gotCat))
}

func TestImportCategoriesBlockOnly(t *testing.T) {
	cb := newCupboard(t)
	r := newTypes(t, page.TypeName)
	root, err := tree.Root(cb)
	require.NoError(t, err)

	doc := `<site>
  <content slug="p" type="page">
    <fields><field name="title">P</field></fields>
    <categories><category>/cat</category></categories>
  </content>
  <content slug="cat" type="category">
    <fields><field name="title">Cat</field></fields>
  </content>
</site>`
	_, err = serial.NewImporter(cb, r).Import(strings.NewReader(doc), root)
	require.NoError(t, err)

	cat, err := tree.ContentAt(cb, root, "/cat")
	require.NoError(t, err)
	assert.Equal(t, []string{"/p"}, itemPaths(t, cb, cat))
}

func TestImportCategoriesBlockRejectsNonCategory(t *testing.T) {
	cb := newCupboard(t)
	r := newTypes(t, page.TypeName)
	root, err := tree.Root(cb)
	require.NoError(t, err)

	doc := `<site>
  <content slug="p" type="page">
    <fields><field name="title">P</field></fields>
    <categories><category>/q</category></categories>
  </content>
  <content slug="q" type="page">
    <fields><field name="title">Q</field></fields>
  </content>
</site>`
	_, err = serial.NewImporter(cb, r).Import(strings.NewReader(doc), root)
	assert.ErrorIs(t, err, types.ErrNotCategory)
}

func TestItemOutsideSubtreeNotExported(t *testing.T) {
	cb := newCupboard(t)
	r := newTypes(t)
	place(t, cb, "/sub1", page.TypeName, "Sub1")
	inside := place(t, cb, "/sub1/t1", page.TypeName, "Inside")
	outside := place(t, cb, "/t1", page.TypeName, "Outside")
	cat := place(t, cb, "/sub1/cat", TypeName, "Cat")
	addToCategory(t, cb, cat, inside, outside)

	out := export(t, cb, r, "/sub1")
	assert.Equal(t, 1, strings.Count(out, "<item>/t1</item>"))

	clearBelow(t, cb, "/sub1")
	base, err := tree.Lookup(cb, "/sub1")
	require.NoError(t, err)
	_, err = serial.NewImporter(cb, r).Import(strings.NewReader(out), base)
	require.NoError(t, err)

	got, err := tree.ContentAt(cb, base, "/cat")
	require.NoError(t, err)
	assert.Equal(t, []string{"/sub1/t1"}, itemPaths(t, cb, got))
}
