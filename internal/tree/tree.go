// Package tree addresses nodes of the content tree by path and resolves
// serialized references relative to an import base.
//
// Absolute paths are "/"-delimited segments from the site root. The root
// itself has the empty path. A reference of "" or "/" denotes the base node.
package tree

import (
	"errors"
	"fmt"
	"strings"

	"github.com/mesh-intelligence/categories/pkg/types"
)

// Separator delimits path segments.
const Separator = "/"

// BaseRef is the reference a serializer emits for the base node itself.
const BaseRef = "/"

// Clean normalizes a user supplied path to the stored form: a leading
// separator, no trailing separator, and "" for the root.
func Clean(path string) string {
	path = strings.Trim(path, Separator)
	if path == "" {
		return ""
	}
	return Separator + path
}

// Join appends the base relative reference ref to the absolute path base.
func Join(base, ref string) string {
	ref = strings.TrimPrefix(ref, Separator)
	if ref == "" {
		return base
	}
	return base + Separator + ref
}

// Root returns the root node of the tree.
func Root(cupboard types.Cupboard) (*types.Node, error) {
	return Lookup(cupboard, "")
}

// Lookup returns the node at path. Returns ErrNotFound if no node is stored
// there.
func Lookup(cupboard types.Cupboard, path string) (*types.Node, error) {
	nodes, err := cupboard.GetTable(types.TableNodes)
	if err != nil {
		return nil, err
	}
	path = Clean(path)
	found, err := nodes.Fetch(types.Filter{"path": path})
	if err != nil {
		return nil, err
	}
	if len(found) == 0 {
		return nil, fmt.Errorf("node %q: %w", displayPath(path), types.ErrNotFound)
	}
	return found[0].(*types.Node), nil
}

// Resolve returns the node ref denotes relative to base. An empty ref or
// BaseRef denotes base itself; any other ref has its leading separator
// stripped and is looked up below base. A missing node surfaces the
// store's ErrNotFound.
func Resolve(cupboard types.Cupboard, base *types.Node, ref string) (*types.Node, error) {
	if ref == "" || ref == BaseRef {
		return base, nil
	}
	return Lookup(cupboard, Join(base.Path, ref))
}

// Relative expresses the position of n relative to base. It returns BaseRef
// when n is base and the base relative path when n lies below base. For a
// node outside the subtree of base it returns the absolute path and false.
func Relative(base, n *types.Node) (string, bool) {
	if n.Path == base.Path {
		return BaseRef, true
	}
	if base.IsRoot() {
		return n.Path, true
	}
	if strings.HasPrefix(n.Path, base.Path+Separator) {
		return strings.TrimPrefix(n.Path, base.Path), true
	}
	return n.Path, false
}

// AddChild creates a node named slug below parent.
func AddChild(cupboard types.Cupboard, parent *types.Node, slug string) (*types.Node, error) {
	nodes, err := cupboard.GetTable(types.TableNodes)
	if err != nil {
		return nil, err
	}
	child := &types.Node{ParentID: parent.NodeID, Slug: slug}
	if _, err := nodes.Set("", child); err != nil {
		return nil, fmt.Errorf("adding %q below %q: %w", slug, displayPath(parent.Path), err)
	}
	return child, nil
}

// MakePath returns the node at path, creating missing intermediate nodes.
func MakePath(cupboard types.Cupboard, path string) (*types.Node, error) {
	node, err := Root(cupboard)
	if err != nil {
		return nil, err
	}
	for _, slug := range strings.Split(strings.Trim(Clean(path), Separator), Separator) {
		if slug == "" {
			continue
		}
		next, err := Lookup(cupboard, Join(node.Path, slug))
		if errors.Is(err, types.ErrNotFound) {
			next, err = AddChild(cupboard, node, slug)
		}
		if err != nil {
			return nil, err
		}
		node = next
	}
	return node, nil
}

// Attach binds content to node on both sides. Content that has not been
// stored yet is stored first.
func Attach(cupboard types.Cupboard, node *types.Node, content *types.Content) error {
	contents, err := cupboard.GetTable(types.TableContents)
	if err != nil {
		return err
	}
	nodes, err := cupboard.GetTable(types.TableNodes)
	if err != nil {
		return err
	}
	content.NodeID = node.NodeID
	if _, err := contents.Set(content.ContentID, content); err != nil {
		return fmt.Errorf("storing content: %w", err)
	}
	node.ContentID = content.ContentID
	if _, err := nodes.Set(node.NodeID, node); err != nil {
		return fmt.Errorf("attaching content to %q: %w", displayPath(node.Path), err)
	}
	return nil
}

// Place stores content in a new node named slug below parent.
func Place(cupboard types.Cupboard, parent *types.Node, slug string, content *types.Content) (*types.Node, error) {
	node, err := AddChild(cupboard, parent, slug)
	if err != nil {
		return nil, err
	}
	if err := Attach(cupboard, node, content); err != nil {
		return nil, err
	}
	return node, nil
}

// ContentAt returns the content stored at the node ref denotes below base.
func ContentAt(cupboard types.Cupboard, base *types.Node, ref string) (*types.Content, error) {
	node, err := Resolve(cupboard, base, ref)
	if err != nil {
		return nil, err
	}
	c, err := node.Content(cupboard)
	if err != nil {
		return nil, fmt.Errorf("content at %q: %w", displayPath(node.Path), err)
	}
	return c, nil
}

func displayPath(path string) string {
	if path == "" {
		return Separator
	}
	return path
}
