package types

import "errors"

// ContentTypeCategory is the registered type name of categories.
const ContentTypeCategory = "category"

// Category is a page-like content node that holds a many-to-many set of
// references to other content items. Membership is stored as categorizes
// links from the category to each item, so every item also sees the
// category through CategoriesOf.
type Category struct {
	*Content
}

// AsCategory wraps c as a Category.
// Returns ErrNotCategory if c is of another content type.
func AsCategory(c *Content) (*Category, error) {
	if c == nil || c.ContentType != ContentTypeCategory {
		return nil, ErrNotCategory
	}
	return &Category{Content: c}, nil
}

// GetCategory loads the category with the given content ID.
func GetCategory(cupboard Cupboard, id string) (*Category, error) {
	c, err := GetContent(cupboard, id)
	if err != nil {
		return nil, err
	}
	return AsCategory(c)
}

// FetchCategories returns every stored category.
func FetchCategories(cupboard Cupboard) ([]*Category, error) {
	contents, err := FetchContents(cupboard, Filter{"content_type": ContentTypeCategory})
	if err != nil {
		return nil, err
	}
	result := make([]*Category, 0, len(contents))
	for _, c := range contents {
		result = append(result, &Category{Content: c})
	}
	return result, nil
}

// ItemIDs returns the content IDs of the category's items.
func (c *Category) ItemIDs(cupboard Cupboard) ([]string, error) {
	if c.ContentID == "" {
		return nil, ErrInvalidID
	}
	links, err := fetchMembership(cupboard, Filter{"from_id": c.ContentID})
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(links))
	for _, l := range links {
		ids = append(ids, l.ToID)
	}
	return ids, nil
}

// Items returns the content items referenced by the category.
func (c *Category) Items(cupboard Cupboard) ([]*Content, error) {
	ids, err := c.ItemIDs(cupboard)
	if err != nil {
		return nil, err
	}
	items := make([]*Content, 0, len(ids))
	for _, id := range ids {
		item, err := GetContent(cupboard, id)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, nil
}

// AddItem adds the content with the given ID to the category's items.
// Returns ErrInvalidItem if no such content is stored. Adding an item that
// is already present is a no-op.
func (c *Category) AddItem(cupboard Cupboard, contentID string) error {
	if c.ContentID == "" {
		return ErrInvalidID
	}
	if _, err := GetContent(cupboard, contentID); err != nil {
		if errors.Is(err, ErrNotFound) {
			return ErrInvalidItem
		}
		return err
	}
	existing, err := fetchMembership(cupboard, Filter{"from_id": c.ContentID, "to_id": contentID})
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		return nil
	}
	links, err := cupboard.GetTable(TableLinks)
	if err != nil {
		return err
	}
	_, err = links.Set("", &Link{
		LinkType: LinkTypeCategorizes,
		FromID:   c.ContentID,
		ToID:     contentID,
	})
	return err
}

// RemoveItem removes the content with the given ID from the category.
// Removing an item that is not present is a no-op.
func (c *Category) RemoveItem(cupboard Cupboard, contentID string) error {
	if c.ContentID == "" {
		return ErrInvalidID
	}
	return deleteMembership(cupboard, Filter{"from_id": c.ContentID, "to_id": contentID})
}

// ClearItems removes every item from the category.
func (c *Category) ClearItems(cupboard Cupboard) error {
	if c.ContentID == "" {
		return ErrInvalidID
	}
	return deleteMembership(cupboard, Filter{"from_id": c.ContentID})
}

// SetItems replaces the category's items with contentIDs.
func (c *Category) SetItems(cupboard Cupboard, contentIDs []string) error {
	if err := c.ClearItems(cupboard); err != nil {
		return err
	}
	for _, id := range contentIDs {
		if err := c.AddItem(cupboard, id); err != nil {
			return err
		}
	}
	return nil
}

// HasChildren reports whether the category's node has child nodes.
// A category that is not attached to the tree has no children.
func (c *Category) HasChildren(cupboard Cupboard) (bool, error) {
	node, err := c.Node(cupboard)
	if errors.Is(err, ErrNoNode) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	children, err := node.Children(cupboard)
	if err != nil {
		return false, err
	}
	return len(children) > 0, nil
}

// CategoriesOf returns the categories that list the content with the given
// ID among their items.
func CategoriesOf(cupboard Cupboard, contentID string) ([]*Category, error) {
	links, err := fetchMembership(cupboard, Filter{"to_id": contentID})
	if err != nil {
		return nil, err
	}
	result := make([]*Category, 0, len(links))
	for _, l := range links {
		cat, err := GetCategory(cupboard, l.FromID)
		if err != nil {
			return nil, err
		}
		result = append(result, cat)
	}
	return result, nil
}

// SetCategories replaces the memberships of the content with the given ID
// so that exactly the listed categories include it.
func SetCategories(cupboard Cupboard, contentID string, categoryIDs []string) error {
	if err := deleteMembership(cupboard, Filter{"to_id": contentID}); err != nil {
		return err
	}
	for _, id := range categoryIDs {
		cat, err := GetCategory(cupboard, id)
		if err != nil {
			return err
		}
		if err := cat.AddItem(cupboard, contentID); err != nil {
			return err
		}
	}
	return nil
}

func fetchMembership(cupboard Cupboard, filter Filter) ([]*Link, error) {
	links, err := cupboard.GetTable(TableLinks)
	if err != nil {
		return nil, err
	}
	filter["link_type"] = LinkTypeCategorizes
	entities, err := links.Fetch(filter)
	if err != nil {
		return nil, err
	}
	result := make([]*Link, 0, len(entities))
	for _, e := range entities {
		result = append(result, e.(*Link))
	}
	return result, nil
}

func deleteMembership(cupboard Cupboard, filter Filter) error {
	existing, err := fetchMembership(cupboard, filter)
	if err != nil {
		return err
	}
	links, err := cupboard.GetTable(TableLinks)
	if err != nil {
		return err
	}
	for _, l := range existing {
		if err := links.Delete(l.LinkID); err != nil {
			return err
		}
	}
	return nil
}
