package category

import (
	"github.com/mesh-intelligence/categories/internal/serial"
	"github.com/mesh-intelligence/categories/pkg/types"
)

// Block and entry element names.
const (
	blockItems      = "items"
	entryItem       = "item"
	blockCategories = "categories"
	entryCategory   = "category"
)

// Serializer returns the serializer for category records: the base fields
// and an <items> block.
func (Type) Serializer() serial.Serializer {
	return serial.Compose(serial.BaseSerializer{}, itemsSerializer{})
}

// ExtensionSerializer returns the serializer that adds a <categories> block
// to the records of extended types.
func (Type) ExtensionSerializer() serial.Serializer {
	return categoriesSerializer{}
}

// itemsSerializer writes a category's items as base relative paths.
type itemsSerializer struct{}

func (itemsSerializer) Serialize(ctx serial.SerializeContext, c *types.Content) (*serial.Record, error) {
	cat, err := types.AsCategory(c)
	if err != nil {
		return nil, err
	}
	items, err := cat.Items(ctx.Cupboard)
	if err != nil {
		return nil, err
	}
	refs, err := ctx.Refs(items)
	if err != nil {
		return nil, err
	}
	rec := &serial.Record{}
	rec.AddBlock(serial.NewBlock(blockItems, entryItem, refs))
	return rec, nil
}

// Deserialize returns one pending operation that adds every referenced item
// to the category once the import tree exists.
func (itemsSerializer) Deserialize(ctx serial.DeserializeContext, rec *serial.Record, _ *types.Content) ([]serial.PendingOp, error) {
	block, ok := rec.Block(blockItems)
	if !ok {
		return nil, nil
	}
	return []serial.PendingOp{{
		Relation: blockItems,
		Refs:     block.Values(),
		Base:     ctx.Base,
		Apply:    addItems,
	}}, nil
}

func addItems(cupboard types.Cupboard, ownerID string, targets []*types.Content) error {
	cat, err := types.GetCategory(cupboard, ownerID)
	if err != nil {
		return err
	}
	for _, item := range targets {
		if err := cat.AddItem(cupboard, item.ContentID); err != nil {
			return err
		}
	}
	return nil
}

// categoriesSerializer writes the categories that hold an extended
// instance. It is the items relation seen from the item.
type categoriesSerializer struct{}

func (categoriesSerializer) Serialize(ctx serial.SerializeContext, c *types.Content) (*serial.Record, error) {
	cats, err := types.CategoriesOf(ctx.Cupboard, c.ContentID)
	if err != nil {
		return nil, err
	}
	contents := make([]*types.Content, 0, len(cats))
	for _, cat := range cats {
		contents = append(contents, cat.Content)
	}
	refs, err := ctx.Refs(contents)
	if err != nil {
		return nil, err
	}
	rec := &serial.Record{}
	rec.AddBlock(serial.NewBlock(blockCategories, entryCategory, refs))
	return rec, nil
}

// Deserialize returns one pending operation that adds the instance to every
// referenced category. Memberships already written through the category's
// <items> block are left as they are.
func (categoriesSerializer) Deserialize(ctx serial.DeserializeContext, rec *serial.Record, _ *types.Content) ([]serial.PendingOp, error) {
	block, ok := rec.Block(blockCategories)
	if !ok {
		return nil, nil
	}
	return []serial.PendingOp{{
		Relation: blockCategories,
		Refs:     block.Values(),
		Base:     ctx.Base,
		Apply:    joinCategories,
	}}, nil
}

func joinCategories(cupboard types.Cupboard, ownerID string, targets []*types.Content) error {
	for _, target := range targets {
		cat, err := types.AsCategory(target)
		if err != nil {
			return err
		}
		if err := cat.AddItem(cupboard, ownerID); err != nil {
			return err
		}
	}
	return nil
}
