// Package catalog keeps a local registry of everything ingested into the
// vector indexes. The indexes themselves cannot enumerate their contents,
// so listing the knowledge base and remembering chunk counts happens here.
package catalog

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver
)

// Item kinds.
const (
	KindDocument = "document"
	KindTicket   = "jira_ticket"
)

// Item is one registered knowledge-base entry.
type Item struct {
	ID         string
	Kind       string
	Title      string
	Source     string
	MimeType   string
	SizeBytes  int64
	Status     string
	IssueType  string
	ChunkCount int
	Preview    string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Catalog is a SQLite-backed knowledge-item registry.
type Catalog struct {
	db *sql.DB
}

// Open creates or opens the catalog database at path, creating parent
// directories as needed.
func Open(path string) (*Catalog, error) {
	if path == "" {
		return nil, errors.New("catalog path is required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating catalog directory: %w", err)
	}
	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening catalog: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("initializing catalog schema: %w", err)
	}
	return &Catalog{db: db}, nil
}

const schema = `
CREATE TABLE IF NOT EXISTS knowledge_items (
	item_id     TEXT PRIMARY KEY,
	item_type   TEXT NOT NULL,
	title       TEXT NOT NULL,
	source      TEXT NOT NULL DEFAULT '',
	mime_type   TEXT NOT NULL DEFAULT '',
	size_bytes  INTEGER NOT NULL DEFAULT 0,
	status      TEXT NOT NULL DEFAULT '',
	issue_type  TEXT NOT NULL DEFAULT '',
	chunk_count INTEGER NOT NULL DEFAULT 0,
	preview     TEXT NOT NULL DEFAULT '',
	created_at  TEXT NOT NULL,
	updated_at  TEXT NOT NULL
);
`

// Close closes the underlying database.
func (c *Catalog) Close() error { return c.db.Close() }

// Upsert registers an item, replacing any previous registration with the
// same id while preserving the original creation time.
func (c *Catalog) Upsert(item Item) error {
	now := time.Now().UTC().Format(time.RFC3339)
	_, err := c.db.Exec(`
INSERT INTO knowledge_items
	(item_id, item_type, title, source, mime_type, size_bytes, status, issue_type, chunk_count, preview, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(item_id) DO UPDATE SET
	item_type   = excluded.item_type,
	title       = excluded.title,
	source      = excluded.source,
	mime_type   = excluded.mime_type,
	size_bytes  = excluded.size_bytes,
	status      = excluded.status,
	issue_type  = excluded.issue_type,
	chunk_count = excluded.chunk_count,
	preview     = excluded.preview,
	updated_at  = excluded.updated_at`,
		item.ID, item.Kind, item.Title, item.Source, item.MimeType, item.SizeBytes,
		item.Status, item.IssueType, item.ChunkCount, item.Preview, now, now)
	return err
}

// Get returns the item with the given id, if registered.
func (c *Catalog) Get(id string) (Item, bool, error) {
	row := c.db.QueryRow(`SELECT `+columns+` FROM knowledge_items WHERE item_id = ?`, id)
	item, err := scanItem(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Item{}, false, nil
	}
	if err != nil {
		return Item{}, false, err
	}
	return item, true, nil
}

// List returns all registered items, newest first.
func (c *Catalog) List() ([]Item, error) {
	rows, err := c.db.Query(`SELECT ` + columns + ` FROM knowledge_items ORDER BY created_at DESC, item_id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Item
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// Delete removes the item with the given id. Unknown ids are a no-op.
func (c *Catalog) Delete(id string) error {
	_, err := c.db.Exec(`DELETE FROM knowledge_items WHERE item_id = ?`, id)
	return err
}

const columns = `item_id, item_type, title, source, mime_type, size_bytes, status, issue_type, chunk_count, preview, created_at, updated_at`

type scannable interface {
	Scan(dest ...any) error
}

func scanItem(row scannable) (Item, error) {
	var item Item
	var created, updated string
	err := row.Scan(&item.ID, &item.Kind, &item.Title, &item.Source, &item.MimeType,
		&item.SizeBytes, &item.Status, &item.IssueType, &item.ChunkCount, &item.Preview,
		&created, &updated)
	if err != nil {
		return Item{}, err
	}
	item.CreatedAt, _ = time.Parse(time.RFC3339, created)
	item.UpdatedAt, _ = time.Parse(time.RFC3339, updated)
	return item, nil
}
