// This file implements the links table accessor for the SQLite backend.
package sqlite

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/mesh-intelligence/categories/pkg/types"
)

var _ types.Table = (*linksTable)(nil)

type linksTable struct {
	backend *Backend
}

const linkColumns = "link_id, link_type, from_id, to_id, created_at"

// Get retrieves a link by ID.
func (lt *linksTable) Get(id string) (any, error) {
	if id == "" {
		return nil, types.ErrInvalidID
	}
	lt.backend.mu.RLock()
	defer lt.backend.mu.RUnlock()
	if !lt.backend.attached {
		return nil, types.ErrCupboardDetached
	}

	row := lt.backend.db.QueryRow("SELECT "+linkColumns+" FROM links WHERE link_id = ?", id)
	link, err := hydrateLink(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, types.ErrNotFound
		}
		return nil, fmt.Errorf("getting link %s: %w", id, err)
	}
	return link, nil
}

// Set persists a link. If id is empty, generates a UUID v7 and creates the
// link. If id is provided, updates the existing link. Validates link type and
// enforces uniqueness of (link_type, from_id, to_id).
func (lt *linksTable) Set(id string, data any) (string, error) {
	link, ok := data.(*types.Link)
	if !ok {
		return "", types.ErrInvalidData
	}
	if !types.ValidLinkType(link.LinkType) {
		return "", types.ErrInvalidData
	}
	if link.FromID == "" || link.ToID == "" {
		return "", types.ErrInvalidData
	}

	lt.backend.mu.Lock()
	defer lt.backend.mu.Unlock()
	if !lt.backend.attached {
		return "", types.ErrCupboardDetached
	}

	if id == "" {
		id = link.LinkID
	}
	if id == "" {
		id = newUUID()
		link.CreatedAt = time.Now().UTC()
	}
	link.LinkID = id
	if link.CreatedAt.IsZero() {
		link.CreatedAt = time.Now().UTC()
	}

	var dupID string
	err := lt.backend.db.QueryRow(
		"SELECT link_id FROM links WHERE link_type = ? AND from_id = ? AND to_id = ? AND link_id != ?",
		link.LinkType, link.FromID, link.ToID, id,
	).Scan(&dupID)
	if err == nil {
		return "", types.ErrDuplicate
	}
	if err != sql.ErrNoRows {
		return "", fmt.Errorf("checking link uniqueness: %w", err)
	}

	_, err = lt.backend.db.Exec(`
		INSERT INTO links (link_id, link_type, from_id, to_id, created_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(link_id) DO UPDATE SET
			link_type = excluded.link_type,
			from_id = excluded.from_id,
			to_id = excluded.to_id`,
		id, link.LinkType, link.FromID, link.ToID, formatTime(link.CreatedAt))
	if err != nil {
		return "", fmt.Errorf("persisting link: %w", err)
	}

	if err := persistTableJSONL(lt.backend, types.TableLinks); err != nil {
		return "", fmt.Errorf("persisting links.jsonl: %w", err)
	}
	return id, nil
}

// Delete removes a link by ID.
func (lt *linksTable) Delete(id string) error {
	if id == "" {
		return types.ErrInvalidID
	}
	lt.backend.mu.Lock()
	defer lt.backend.mu.Unlock()
	if !lt.backend.attached {
		return types.ErrCupboardDetached
	}

	res, err := lt.backend.db.Exec("DELETE FROM links WHERE link_id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting link: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return types.ErrNotFound
	}

	if err := persistTableJSONL(lt.backend, types.TableLinks); err != nil {
		return fmt.Errorf("persisting links.jsonl: %w", err)
	}
	return nil
}

// Fetch queries links matching the filter in creation order.
// Supported filter keys: link_type, from_id, to_id.
func (lt *linksTable) Fetch(filter types.Filter) ([]any, error) {
	query := "SELECT " + linkColumns + " FROM links"
	var conditions []string
	var args []any

	for _, key := range []string{"link_type", "from_id", "to_id"} {
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

	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY created_at, rowid"

	lt.backend.mu.RLock()
	defer lt.backend.mu.RUnlock()
	if !lt.backend.attached {
		return nil, types.ErrCupboardDetached
	}

	rows, err := lt.backend.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("fetching links: %w", err)
	}
	defer rows.Close()

	results := []any{}
	for rows.Next() {
		link, err := hydrateLink(rows)
		if err != nil {
			return nil, fmt.Errorf("hydrating link: %w", err)
		}
		results = append(results, link)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating links: %w", err)
	}
	return results, nil
}

// scanner is satisfied by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

// hydrateLink converts a single SQLite row into a *types.Link.
func hydrateLink(row scanner) (*types.Link, error) {
	var l types.Link
	var createdAt string
	if err := row.Scan(&l.LinkID, &l.LinkType, &l.FromID, &l.ToID, &createdAt); err != nil {
		return nil, err
	}
	var err error
	l.CreatedAt, err = parseTime(createdAt)
	if err != nil {
		return nil, fmt.Errorf("parsing created_at: %w", err)
	}
	return &l, nil
}
