// This file implements the nodes table accessor for the SQLite backend.
package sqlite

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/mesh-intelligence/categories/pkg/types"
)

var _ types.Table = (*nodesTable)(nil)

type nodesTable struct {
	backend *Backend
}

const nodeColumns = "node_id, parent_id, slug, path, content_id, created_at"

// Get retrieves a node by ID.
func (nt *nodesTable) Get(id string) (any, error) {
	if id == "" {
		return nil, types.ErrInvalidID
	}
	nt.backend.mu.RLock()
	defer nt.backend.mu.RUnlock()
	if !nt.backend.attached {
		return nil, types.ErrCupboardDetached
	}

	n, err := hydrateNode(nt.backend.db.QueryRow("SELECT "+nodeColumns+" FROM nodes WHERE node_id = ?", id))
	if err == sql.ErrNoRows {
		return nil, types.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting node %s: %w", id, err)
	}
	return n, nil
}

// Set creates a node under its parent or updates the content attachment of
// an existing node. The path of a new node is derived from the parent path
// and the slug; existing nodes cannot be moved or renamed.
func (nt *nodesTable) Set(id string, data any) (string, error) {
	n, ok := data.(*types.Node)
	if !ok {
		return "", types.ErrInvalidData
	}
	if id != "" {
		n.NodeID = id
	}

	nt.backend.mu.Lock()
	defer nt.backend.mu.Unlock()
	if !nt.backend.attached {
		return "", types.ErrCupboardDetached
	}
	db := nt.backend.db

	if n.NodeID != "" {
		existing, err := hydrateNode(db.QueryRow("SELECT "+nodeColumns+" FROM nodes WHERE node_id = ?", n.NodeID))
		if err == nil {
			if existing.ParentID != n.ParentID || existing.Slug != n.Slug {
				return "", types.ErrInvalidData
			}
			if _, err := db.Exec("UPDATE nodes SET content_id = ? WHERE node_id = ?", n.ContentID, n.NodeID); err != nil {
				return "", fmt.Errorf("updating node: %w", err)
			}
			n.Path = existing.Path
			n.CreatedAt = existing.CreatedAt
			if err := persistTableJSONL(nt.backend, types.TableNodes); err != nil {
				return "", fmt.Errorf("persisting nodes.jsonl: %w", err)
			}
			return n.NodeID, nil
		}
		if err != sql.ErrNoRows {
			return "", fmt.Errorf("checking node: %w", err)
		}
	}

	if n.ParentID == "" {
		// The root is seeded on attach; a second one cannot be created.
		return "", types.ErrDuplicatePath
	}
	if !validSlug(n.Slug) {
		return "", types.ErrInvalidSlug
	}
	var parentPath string
	err := db.QueryRow("SELECT path FROM nodes WHERE node_id = ?", n.ParentID).Scan(&parentPath)
	if err == sql.ErrNoRows {
		return "", fmt.Errorf("parent %s: %w", n.ParentID, types.ErrNotFound)
	}
	if err != nil {
		return "", fmt.Errorf("loading parent: %w", err)
	}
	n.Path = parentPath + "/" + n.Slug

	var dup int
	err = db.QueryRow("SELECT 1 FROM nodes WHERE path = ?", n.Path).Scan(&dup)
	if err == nil {
		return "", types.ErrDuplicatePath
	}
	if err != sql.ErrNoRows {
		return "", fmt.Errorf("checking path uniqueness: %w", err)
	}

	if n.NodeID == "" {
		n.NodeID = newUUID()
	}
	n.CreatedAt = time.Now().UTC()
	_, err = db.Exec("INSERT INTO nodes ("+nodeColumns+") VALUES (?, ?, ?, ?, ?, ?)",
		n.NodeID, n.ParentID, n.Slug, n.Path, n.ContentID, formatTime(n.CreatedAt))
	if err != nil {
		return "", fmt.Errorf("inserting node: %w", err)
	}

	if err := persistTableJSONL(nt.backend, types.TableNodes); err != nil {
		return "", fmt.Errorf("persisting nodes.jsonl: %w", err)
	}
	return n.NodeID, nil
}

// Delete removes a node, all of its descendants, and the content attached
// to any of them. The root cannot be deleted.
func (nt *nodesTable) Delete(id string) error {
	if id == "" {
		return types.ErrInvalidID
	}
	nt.backend.mu.Lock()
	defer nt.backend.mu.Unlock()
	if !nt.backend.attached {
		return types.ErrCupboardDetached
	}
	db := nt.backend.db

	n, err := hydrateNode(db.QueryRow("SELECT "+nodeColumns+" FROM nodes WHERE node_id = ?", id))
	if err == sql.ErrNoRows {
		return types.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("checking node: %w", err)
	}
	if n.IsRoot() {
		return types.ErrInvalidPath
	}

	rows, err := db.Query(
		"SELECT content_id FROM nodes WHERE (path = ? OR substr(path, 1, length(?)) = ?) AND content_id != ''",
		n.Path, n.Path+"/", n.Path+"/")
	if err != nil {
		return fmt.Errorf("finding subtree contents: %w", err)
	}
	var contentIDs []string
	for rows.Next() {
		var cid string
		if err := rows.Scan(&cid); err != nil {
			rows.Close()
			return fmt.Errorf("scanning subtree content: %w", err)
		}
		contentIDs = append(contentIDs, cid)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return err
	}

	if err := deleteContentsCascade(nt.backend, contentIDs); err != nil {
		return err
	}
	if _, err := db.Exec(
		"DELETE FROM nodes WHERE path = ? OR substr(path, 1, length(?)) = ?",
		n.Path, n.Path+"/", n.Path+"/"); err != nil {
		return fmt.Errorf("deleting subtree: %w", err)
	}
	return persistAll(nt.backend)
}

// Fetch returns nodes matching the filter ordered by path.
// Supported filter keys: parent_id, path, content_id, and under (a path whose
// strict descendants are returned).
func (nt *nodesTable) Fetch(filter types.Filter) ([]any, error) {
	query := "SELECT " + nodeColumns + " FROM nodes"
	var conditions []string
	var args []any

	for _, key := range []string{"parent_id", "path", "content_id"} {
		v, ok := filter[key]
		if !ok {
			continue
		}
		s, ok := v.(string)
		if !ok {
			return nil, types.ErrInvalidFilter
		}
		conditions = append(conditions, key+" = ?")
		args = append(args, s)
	}
	if v, ok := filter["under"]; ok {
		s, ok := v.(string)
		if !ok {
			return nil, types.ErrInvalidFilter
		}
		conditions = append(conditions, "substr(path, 1, length(?)) = ?")
		args = append(args, s+"/", s+"/")
	}

	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY path"

	nt.backend.mu.RLock()
	defer nt.backend.mu.RUnlock()
	if !nt.backend.attached {
		return nil, types.ErrCupboardDetached
	}

	rows, err := nt.backend.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("fetching nodes: %w", err)
	}
	defer rows.Close()

	results := []any{}
	for rows.Next() {
		n, err := hydrateNode(rows)
		if err != nil {
			return nil, fmt.Errorf("hydrating node: %w", err)
		}
		results = append(results, n)
	}
	return results, rows.Err()
}

func hydrateNode(row scanner) (*types.Node, error) {
	var n types.Node
	var createdAt string
	if err := row.Scan(&n.NodeID, &n.ParentID, &n.Slug, &n.Path, &n.ContentID, &createdAt); err != nil {
		return nil, err
	}
	var err error
	if n.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, fmt.Errorf("parsing node created_at: %w", err)
	}
	return &n, nil
}

// validSlug reports whether s can be used as a single path segment.
func validSlug(s string) bool {
	return s != "" && s != "." && s != ".." && !strings.Contains(s, "/")
}
