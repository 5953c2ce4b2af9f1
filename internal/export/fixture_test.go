// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package export

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"

	"github.com/pdiddy/cms-export/internal/source"
	"github.com/pdiddy/cms-export/pkg/types"
)

// legacySchema mirrors the subset of the Drupal 7 schema the exporter reads.
var legacySchema = []string{
	`CREATE TABLE users (uid INTEGER PRIMARY KEY, name TEXT, mail TEXT, status INTEGER)`,
	`CREATE TABLE node (nid INTEGER PRIMARY KEY, type TEXT, title TEXT, uid INTEGER, created INTEGER, changed INTEGER)`,
	`CREATE TABLE field_data_body (entity_type TEXT, bundle TEXT, entity_id INTEGER, body_value TEXT, body_format TEXT)`,
	`CREATE TABLE field_data_field_aboutme (entity_type TEXT, entity_id INTEGER, field_aboutme_value TEXT, field_aboutme_format TEXT)`,
	`CREATE TABLE field_data_field_name (entity_type TEXT, entity_id INTEGER, field_name_value TEXT)`,
	`CREATE TABLE field_data_field_position (entity_type TEXT, entity_id INTEGER, field_position_tid INTEGER)`,
	`CREATE TABLE taxonomy_term_data (tid INTEGER PRIMARY KEY, vid INTEGER, name TEXT)`,
	`CREATE TABLE book (mlid INTEGER PRIMARY KEY, nid INTEGER, bid INTEGER)`,
	`CREATE TABLE menu_links (mlid INTEGER PRIMARY KEY, plid INTEGER, link_title TEXT)`,
}

// legacyRows seeds a small site: two active users and one blocked user,
// two articles with bodies and one without, a page, and a three-level book.
var legacyRows = []string{
	`INSERT INTO users VALUES
		(1, 'ada', 'a@x.com', 1),
		(2, 'bob', 'bob@x.com', 1),
		(3, 'carl', 'carl@x.com', 0)`,
	`INSERT INTO node VALUES
		(1, 'article', 'My First Post', 1, 1700000000, 1700000000),
		(2, 'article', 'Second Post!', 2, 1700000000, 1700003600),
		(3, 'article', 'No Body', 1, 1700000000, 1700000000),
		(4, 'page', 'About Us', 1, 1600000000, 1600000000),
		(10, 'book', 'Field Guide', 1, 1650000000, 1650000000),
		(11, 'book', 'Getting Started', 1, 1650000000, 1650000060),
		(12, 'book', 'Deep Dive', 2, 1650000000, 1650000000)`,
	`INSERT INTO field_data_body VALUES
		('node', 'article', 1, '<p>Hello</p>', 'full_html'),
		('node', 'article', 2, 'line1
line2', 'filtered_html'),
		('node', 'page', 4, '# About

Plain *markdown*.', 'markdown'),
		('node', 'book', 10, '<p>Welcome</p>', 'full_html'),
		('node', 'book', 11, '<h2>Install</h2><p>Run it.</p>', 'full_html'),
		('node', 'book', 12, 'Details here.', 'plain_text')`,
	`INSERT INTO taxonomy_term_data VALUES (5, 1, 'Engineer'), (6, 1, 'Editor')`,
	`INSERT INTO field_data_field_name VALUES
		('user', 1, 'Ada Lovelace'),
		('user', 2, 'Bob O''Brien'),
		('user', 3, 'Carl Blocked')`,
	`INSERT INTO field_data_field_aboutme VALUES
		('user', 1, '<p>Hi <b>there</b></p>', 'full_html'),
		('user', 2, 'Writes things.', 'plain_text'),
		('user', 3, 'Gone.', 'plain_text')`,
	`INSERT INTO field_data_field_position VALUES ('user', 1, 5), ('user', 2, 6), ('user', 3, 6)`,
	`INSERT INTO menu_links VALUES
		(100, 0, 'Field Guide'),
		(101, 100, 'Getting Started'),
		(102, 101, 'Deep Dive')`,
	`INSERT INTO book VALUES (100, 10, 10), (101, 11, 10), (102, 12, 10)`,
}

// openLegacy creates a seeded SQLite database and applies extra statements
// after seeding.
func openLegacy(t *testing.T, extra ...string) *bun.DB {
	t.Helper()
	path := filepath.Join(t.TempDir(), "legacy.db")
	db, err := source.Open(context.Background(), "sqlite:///"+path)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	stmts := append(append(append([]string{}, legacySchema...), legacyRows...), extra...)
	for _, stmt := range stmts {
		_, err := db.ExecContext(context.Background(), stmt)
		require.NoError(t, err, "executing %s", stmt)
	}
	return db
}

// runExport exports db into cfg.OutputDir (a fresh root when empty) and returns the root,
// the summary and the progress log.
func runExport(t *testing.T, db *bun.DB, cfg types.ExportConfig) (string, Summary, string, error) {
	t.Helper()
	catalog, err := source.Reflect(context.Background(), db, source.RequiredTables...)
	require.NoError(t, err)

	if cfg.OutputDir == "" {
		cfg.OutputDir = filepath.Join(t.TempDir(), "content")
	}
	root := cfg.OutputDir

	var log bytes.Buffer
	exp, err := New(db, catalog, cfg, &log)
	require.NoError(t, err)

	summary, err := exp.Run(context.Background())
	return root, summary, log.String(), err
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}
