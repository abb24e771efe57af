// This file implements the contents table accessor for the SQLite backend.
package sqlite

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/mesh-intelligence/categories/pkg/types"
)

var _ types.Table = (*contentsTable)(nil)

type contentsTable struct {
	backend *Backend
}

const contentColumns = "content_id, content_type, title, description, state, node_id, created_at, updated_at"

// Get retrieves a content entity by ID.
func (ct *contentsTable) Get(id string) (any, error) {
	if id == "" {
		return nil, types.ErrInvalidID
	}
	ct.backend.mu.RLock()
	defer ct.backend.mu.RUnlock()
	if !ct.backend.attached {
		return nil, types.ErrCupboardDetached
	}

	row := ct.backend.db.QueryRow("SELECT "+contentColumns+" FROM contents WHERE content_id = ?", id)
	c, err := hydrateContent(row)
	if err == sql.ErrNoRows {
		return nil, types.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting content %s: %w", id, err)
	}
	return c, nil
}

// Set creates or updates a content entity. A new entity gets a UUID v7,
// creation timestamps, and the private state when none is given.
func (ct *contentsTable) Set(id string, data any) (string, error) {
	c, ok := data.(*types.Content)
	if !ok {
		return "", types.ErrInvalidData
	}
	if c.Title == "" {
		return "", types.ErrInvalidTitle
	}
	if c.ContentType == "" {
		return "", types.ErrInvalidType
	}

	ct.backend.mu.Lock()
	defer ct.backend.mu.Unlock()
	if !ct.backend.attached {
		return "", types.ErrCupboardDetached
	}

	now := time.Now().UTC()
	if id != "" {
		c.ContentID = id
	}
	if c.ContentID == "" {
		c.ContentID = newUUID()
		c.CreatedAt = now
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = now
	}
	if c.State == "" {
		c.State = types.StatePrivate
	}
	c.UpdatedAt = now

	_, err := ct.backend.db.Exec(`
		INSERT INTO contents (`+contentColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(content_id) DO UPDATE SET
			content_type = excluded.content_type,
			title = excluded.title,
			description = excluded.description,
			state = excluded.state,
			node_id = excluded.node_id,
			updated_at = excluded.updated_at`,
		c.ContentID, c.ContentType, c.Title, c.Description, c.State, c.NodeID,
		formatTime(c.CreatedAt), formatTime(c.UpdatedAt))
	if err != nil {
		return "", fmt.Errorf("upserting content: %w", err)
	}

	if err := persistTableJSONL(ct.backend, types.TableContents); err != nil {
		return "", fmt.Errorf("persisting contents.jsonl: %w", err)
	}
	return c.ContentID, nil
}

// Delete removes a content entity, every link from or to it, and detaches it
// from its node.
func (ct *contentsTable) Delete(id string) error {
	if id == "" {
		return types.ErrInvalidID
	}
	ct.backend.mu.Lock()
	defer ct.backend.mu.Unlock()
	if !ct.backend.attached {
		return types.ErrCupboardDetached
	}

	var exists int
	if err := ct.backend.db.QueryRow(
		"SELECT 1 FROM contents WHERE content_id = ?", id).Scan(&exists); err == sql.ErrNoRows {
		return types.ErrNotFound
	} else if err != nil {
		return fmt.Errorf("checking content: %w", err)
	}

	if err := deleteContentsCascade(ct.backend, []string{id}); err != nil {
		return err
	}
	return persistAll(ct.backend)
}

// Fetch returns content entities matching the filter in creation order.
// Supported filter keys: content_type (string), states ([]string),
// node_id (string), title (string).
func (ct *contentsTable) Fetch(filter types.Filter) ([]any, error) {
	query := "SELECT " + contentColumns + " FROM contents"
	var conditions []string
	var args []any

	for _, key := range []string{"content_type", "node_id", "title"} {
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

	if states, ok := filter["states"]; ok {
		ss, ok := states.([]string)
		if !ok {
			return nil, types.ErrInvalidFilter
		}
		if len(ss) > 0 {
			placeholders := make([]string, len(ss))
			for i, s := range ss {
				placeholders[i] = "?"
				args = append(args, s)
			}
			conditions = append(conditions, "state IN ("+strings.Join(placeholders, ",")+")")
		}
	}

	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY created_at, rowid"

	ct.backend.mu.RLock()
	defer ct.backend.mu.RUnlock()
	if !ct.backend.attached {
		return nil, types.ErrCupboardDetached
	}

	rows, err := ct.backend.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("fetching contents: %w", err)
	}
	defer rows.Close()

	results := []any{}
	for rows.Next() {
		c, err := hydrateContent(rows)
		if err != nil {
			return nil, fmt.Errorf("hydrating content: %w", err)
		}
		results = append(results, c)
	}
	return results, rows.Err()
}

func hydrateContent(row scanner) (*types.Content, error) {
	var c types.Content
	var createdAt, updatedAt string
	err := row.Scan(&c.ContentID, &c.ContentType, &c.Title, &c.Description,
		&c.State, &c.NodeID, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}
	if c.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, fmt.Errorf("parsing content created_at: %w", err)
	}
	if c.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, fmt.Errorf("parsing content updated_at: %w", err)
	}
	return &c, nil
}

// deleteContentsCascade removes the given contents and every link that
// references them, and clears their node attachments. The caller must hold
// b.mu and persist the JSONL files afterwards.
func deleteContentsCascade(b *Backend, ids []string) error {
	for _, id := range ids {
		if _, err := b.db.Exec(
			"DELETE FROM links WHERE from_id = ? OR to_id = ?", id, id); err != nil {
			return fmt.Errorf("deleting content links: %w", err)
		}
		if _, err := b.db.Exec(
			"UPDATE nodes SET content_id = '' WHERE content_id = ?", id); err != nil {
			return fmt.Errorf("detaching content node: %w", err)
		}
		if _, err := b.db.Exec(
			"DELETE FROM contents WHERE content_id = ?", id); err != nil {
			return fmt.Errorf("deleting content: %w", err)
		}
	}
	return nil
}

// persistAll rewrites every JSONL file. The caller must hold b.mu.
func persistAll(b *Backend) error {
	for _, name := range types.StandardTableNames {
		if err := persistTableJSONL(b, name); err != nil {
			return fmt.Errorf("persisting %s: %w", name, err)
		}
	}
	return nil
}
