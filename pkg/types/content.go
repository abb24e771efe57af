package types

import "time"

// CapabilityContent is the capability every storable content type
// implements. Registering an extension against it extends all types.
const CapabilityContent = "content"

// Publication states. The workflow that moves content between them lives
// outside this module; State is stored as given.
const (
	StatePrivate   = "private"
	StatePending   = "pending"
	StatePublished = "published"
)

// Content is a storable page or item in the content tree. Type specific
// data (such as category items) lives in the links table.
type Content struct {
	ContentID   string    `json:"content_id"`   // UUID v7, generated on creation.
	ContentType string    `json:"content_type"` // Registered type name, e.g. "page".
	Title       string    `json:"title"`        // Required, non-empty.
	Description string    `json:"description"`
	State       string    `json:"state"`   // Publication state; defaults to private.
	NodeID      string    `json:"node_id"` // Node the content is attached to, if any.
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Published reports whether the content is in the published state.
func (c *Content) Published() bool {
	return c.State == StatePublished
}

// Node returns the node this content is attached to.
// Returns ErrNoNode if the content has not been placed in the tree.
func (c *Content) Node(cupboard Cupboard) (*Node, error) {
	if c.NodeID == "" {
		return nil, ErrNoNode
	}
	nodes, err := cupboard.GetTable(TableNodes)
	if err != nil {
		return nil, err
	}
	entity, err := nodes.Get(c.NodeID)
	if err != nil {
		return nil, err
	}
	return entity.(*Node), nil
}

// GetContent loads a content entity by ID.
func GetContent(cupboard Cupboard, id string) (*Content, error) {
	contents, err := cupboard.GetTable(TableContents)
	if err != nil {
		return nil, err
	}
	entity, err := contents.Get(id)
	if err != nil {
		return nil, err
	}
	return entity.(*Content), nil
}

// FetchContents returns all content entities matching filter.
func FetchContents(cupboard Cupboard, filter Filter) ([]*Content, error) {
	contents, err := cupboard.GetTable(TableContents)
	if err != nil {
		return nil, err
	}
	entities, err := contents.Fetch(filter)
	if err != nil {
		return nil, err
	}
	result := make([]*Content, 0, len(entities))
	for _, e := range entities {
		result = append(result, e.(*Content))
	}
	return result, nil
}
