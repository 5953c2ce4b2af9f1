// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package source

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
)

// openFixture creates a small node/users database and returns its handle.
func openFixture(t *testing.T) *bun.DB {
	t.Helper()
	path := filepath.Join(t.TempDir(), "fixture.db")
	db, err := Open(context.Background(), "sqlite:///"+path)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	statements := []string{
		`CREATE TABLE users (uid INTEGER PRIMARY KEY, mail TEXT, status INTEGER)`,
		`CREATE TABLE node (nid INTEGER PRIMARY KEY, type TEXT, title TEXT, uid INTEGER)`,
		`CREATE TABLE book (nid INTEGER PRIMARY KEY, bid INTEGER)`,
		`INSERT INTO users VALUES (1, 'ada@example.org', 1), (2, 'bob@example.org', 0)`,
		`INSERT INTO node VALUES
			(10, 'article', 'First', 1),
			(11, 'article', 'Second', 2),
			(12, 'page', 'About', 1),
			(13, 'article', 'Orphan', 99)`,
		`INSERT INTO book VALUES (20, 20), (21, 20), (30, 30)`,
	}
	for _, stmt := range statements {
		_, err := db.ExecContext(context.Background(), stmt)
		require.NoError(t, err)
	}
	return db
}

type titleRow struct {
	NID   int64  `bun:"nid"`
	Title string `bun:"title"`
	Mail  string `bun:"mail"`
}

type bookRow struct {
	BID int64 `bun:"bid"`
}

var articleQuery = Query{
	From: Table{Name: "node", Alias: "n"},
	Joins: []Join{
		{Table: Table{Name: "users", Alias: "u"}, Left: "u.uid", Right: "n.uid"},
	},
	Columns: []Column{
		{Ref: "n.nid", As: "nid"},
		{Ref: "n.title", As: "title"},
		{Ref: "u.mail", As: "mail"},
	},
	Filters: []Filter{{Ref: "n.type", Op: "=", Value: "article"}},
}

func TestReflect(t *testing.T) {
	db := openFixture(t)

	c, err := Reflect(context.Background(), db, "users", "node")
	require.NoError(t, err)
	assert.Equal(t, []string{"node", "users"}, c.Tables())
	assert.Equal(t, []string{"mail", "status", "uid"}, c.Columns("users"))
	assert.True(t, c.Has("node", "nid", "title"))
	assert.False(t, c.Has("node", "body"))
	assert.False(t, c.Has("menu_links"))

	err = c.Require("node", "nid", "sticky")
	assert.ErrorIs(t, err, ErrSchemaMismatch)
	assert.Contains(t, err.Error(), "node.sticky")
}

func TestReflectMissingTable(t *testing.T) {
	db := openFixture(t)

	_, err := Reflect(context.Background(), db, "users", "menu_links")
	require.ErrorIs(t, err, ErrSchemaMismatch)
	assert.Contains(t, err.Error(), "menu_links")
}

func TestRunJoin(t *testing.T) {
	db := openFixture(t)
	c, err := Reflect(context.Background(), db, "users", "node")
	require.NoError(t, err)

	var rows []titleRow
	require.NoError(t, Run(context.Background(), db, c, articleQuery, &rows))

	// The orphaned article has no author row and drops out of the join.
	byID := map[int64]titleRow{}
	for _, r := range rows {
		byID[r.NID] = r
	}
	require.Len(t, byID, 2)
	assert.Equal(t, titleRow{NID: 10, Title: "First", Mail: "ada@example.org"}, byID[10])
	assert.Equal(t, "bob@example.org", byID[11].Mail)
}

func TestRunWithExtraFilter(t *testing.T) {
	db := openFixture(t)
	c, err := Reflect(context.Background(), db, "users", "node")
	require.NoError(t, err)

	var rows []titleRow
	q := articleQuery.With(Filter{Ref: "u.status", Op: ">", Value: 0})
	require.NoError(t, Run(context.Background(), db, c, q, &rows))
	require.Len(t, rows, 1)
	assert.Equal(t, "First", rows[0].Title)

	assert.Len(t, articleQuery.Filters, 1, "With must not modify the receiver")
}

func TestRunColumnFilter(t *testing.T) {
	db := openFixture(t)
	c, err := Reflect(context.Background(), db, "book")
	require.NoError(t, err)

	var rows []bookRow
	q := Query{
		From:    Table{Name: "book", Alias: "b"},
		Columns: []Column{{Ref: "b.bid", As: "bid"}},
		Filters: []Filter{{Ref: "b.nid", Op: "=", Other: "b.bid"}},
	}
	require.NoError(t, Run(context.Background(), db, c, q, &rows))

	var bids []int64
	for _, r := range rows {
		bids = append(bids, r.BID)
	}
	assert.ElementsMatch(t, []int64{20, 30}, bids)
}

func TestValidate(t *testing.T) {
	db := openFixture(t)
	c, err := Reflect(context.Background(), db, "users", "node")
	require.NoError(t, err)

	tests := []struct {
		name    string
		query   Query
		wantErr string
	}{
		{
			name:  "valid",
			query: articleQuery,
		},
		{
			name:    "missing column",
			query:   articleQuery.With(Filter{Ref: "n.promote", Op: "=", Value: 1}),
			wantErr: "node.promote",
		},
		{
			name: "missing table",
			query: Query{
				From:    Table{Name: "book", Alias: "b"},
				Columns: []Column{{Ref: "b.bid", As: "bid"}},
			},
			wantErr: "table book",
		},
		{
			name:    "unknown alias",
			query:   articleQuery.With(Filter{Ref: "x.uid", Op: "=", Value: 1}),
			wantErr: `unknown alias "x"`,
		},
		{
			name:    "bad operator",
			query:   articleQuery.With(Filter{Ref: "n.nid", Op: "LIKE", Value: 1}),
			wantErr: "unsupported operator",
		},
		{
			name: "malformed reference",
			query: Query{
				From:    Table{Name: "node", Alias: "n"},
				Columns: []Column{{Ref: "title", As: "title"}},
			},
			wantErr: "alias.column",
		},
		{
			name: "duplicate alias",
			query: Query{
				From: Table{Name: "node", Alias: "n"},
				Joins: []Join{
					{Table: Table{Name: "users", Alias: "n"}, Left: "n.uid", Right: "n.uid"},
				},
			},
			wantErr: "used twice",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.query.Validate(c)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestReferences(t *testing.T) {
	refs, err := articleQuery.References()
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"nid", "title", "uid", "type"}, refs["node"])
	assert.ElementsMatch(t, []string{"mail", "uid"}, refs["users"])
}
