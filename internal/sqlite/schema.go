// Package sqlite implements the SQLite backend for the categories content store.
// This file holds the schema DDL.
package sqlite

// Schema DDL for all tables.
const (
	createContents = `CREATE TABLE contents (
    content_id TEXT PRIMARY KEY,
    content_type TEXT NOT NULL,
    title TEXT NOT NULL,
    description TEXT NOT NULL DEFAULT '',
    state TEXT NOT NULL,
    node_id TEXT NOT NULL DEFAULT '',
    created_at TEXT NOT NULL,
    updated_at TEXT NOT NULL
);`

	createNodes = `CREATE TABLE nodes (
    node_id TEXT PRIMARY KEY,
    parent_id TEXT NOT NULL DEFAULT '',
    slug TEXT NOT NULL DEFAULT '',
    path TEXT NOT NULL UNIQUE,
    content_id TEXT NOT NULL DEFAULT '',
    created_at TEXT NOT NULL
);`

	createLinks = `CREATE TABLE links (
    link_id TEXT PRIMARY KEY,
    link_type TEXT NOT NULL,
    from_id TEXT NOT NULL,
    to_id TEXT NOT NULL,
    created_at TEXT NOT NULL
);`
)

// Index DDL for common queries.
const (
	idxContentsType  = `CREATE INDEX idx_contents_type ON contents(content_type);`
	idxContentsState = `CREATE INDEX idx_contents_state ON contents(state);`
	idxNodesParent   = `CREATE INDEX idx_nodes_parent ON nodes(parent_id);`
	idxNodesContent  = `CREATE INDEX idx_nodes_content ON nodes(content_id);`
	idxLinksUnique   = `CREATE UNIQUE INDEX idx_links_unique ON links(link_type, from_id, to_id);`
	idxLinksTypeFrom = `CREATE INDEX idx_links_type_from ON links(link_type, from_id);`
	idxLinksTypeTo   = `CREATE INDEX idx_links_type_to ON links(link_type, to_id);`
)

// schemaDDL lists all CREATE TABLE statements in dependency order.
var schemaDDL = []string{
	createContents,
	createNodes,
	createLinks,
}

// indexDDL lists all CREATE INDEX statements.
var indexDDL = []string{
	idxContentsType,
	idxContentsState,
	idxNodesParent,
	idxNodesContent,
	idxLinksUnique,
	idxLinksTypeFrom,
	idxLinksTypeTo,
}
