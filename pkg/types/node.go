package types

import "time"

// Node is a position in the content tree, addressable by path.
// The root node has an empty slug and an empty path; every other node's path
// is its parent's path followed by "/" and its slug.
type Node struct {
	NodeID    string    `json:"node_id"`    // UUID v7, generated on creation.
	ParentID  string    `json:"parent_id"`  // Empty for the root.
	Slug      string    `json:"slug"`       // Path segment; empty for the root.
	Path      string    `json:"path"`       // Absolute path from the site root.
	ContentID string    `json:"content_id"` // Attached content, if any.
	CreatedAt time.Time `json:"created_at"`
}

// IsRoot reports whether n is the tree root.
func (n *Node) IsRoot() bool {
	return n.Path == ""
}

// Children returns the direct child nodes of n.
func (n *Node) Children(cupboard Cupboard) ([]*Node, error) {
	nodes, err := cupboard.GetTable(TableNodes)
	if err != nil {
		return nil, err
	}
	entities, err := nodes.Fetch(Filter{"parent_id": n.NodeID})
	if err != nil {
		return nil, err
	}
	result := make([]*Node, 0, len(entities))
	for _, e := range entities {
		result = append(result, e.(*Node))
	}
	return result, nil
}

// Content returns the content attached to n.
// Returns ErrNotFound if the node holds no content.
func (n *Node) Content(cupboard Cupboard) (*Content, error) {
	if n.ContentID == "" {
		return nil, ErrNotFound
	}
	return GetContent(cupboard, n.ContentID)
}
