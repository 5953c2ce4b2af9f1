// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package export

import "github.com/pdiddy/cms-export/internal/source"

// peopleQuery joins active users to their biography, full name and the
// taxonomy term of their position field.
var peopleQuery = source.Query{
	From: source.Table{Name: "users", Alias: "u"},
	Joins: []source.Join{
		{Table: source.Table{Name: "field_data_field_aboutme", Alias: "a"}, Left: "a.entity_id", Right: "u.uid"},
		{Table: source.Table{Name: "field_data_field_name", Alias: "fn"}, Left: "fn.entity_id", Right: "u.uid"},
		{Table: source.Table{Name: "field_data_field_position", Alias: "fp"}, Left: "fp.entity_id", Right: "u.uid"},
		{Table: source.Table{Name: "taxonomy_term_data", Alias: "t"}, Left: "t.tid", Right: "fp.field_position_tid"},
	},
	Columns: []source.Column{
		{Ref: "u.uid", As: "uid"},
		{Ref: "u.mail", As: "mail"},
		{Ref: "fn.field_name_value", As: "full_name"},
		{Ref: "t.name", As: "position"},
		{Ref: "a.field_aboutme_value", As: "bio_value"},
		{Ref: "a.field_aboutme_format", As: "bio_format"},
	},
	Filters: []source.Filter{{Ref: "u.status", Op: ">", Value: 0}},
}

// nodeQuery joins nodes of one type to their author's mail and body field.
func nodeQuery(nodeType string) source.Query {
	return source.Query{
		From: source.Table{Name: "node", Alias: "n"},
		Joins: []source.Join{
			{Table: source.Table{Name: "users", Alias: "u"}, Left: "u.uid", Right: "n.uid"},
			{Table: source.Table{Name: "field_data_body", Alias: "b"}, Left: "b.entity_id", Right: "n.nid"},
		},
		Columns: []source.Column{
			{Ref: "n.nid", As: "nid"},
			{Ref: "n.title", As: "title"},
			{Ref: "u.mail", As: "mail"},
			{Ref: "n.created", As: "created"},
			{Ref: "n.changed", As: "changed"},
			{Ref: "b.body_value", As: "body_value"},
			{Ref: "b.body_format", As: "body_format"},
		},
		Filters: []source.Filter{{Ref: "n.type", Op: "=", Value: nodeType}},
	}
}

var (
	articleQuery = nodeQuery("article")
	pageQuery    = nodeQuery("page")
)

// booksQuery lists top-level books: book rows whose node is the book itself.
var booksQuery = source.Query{
	From: source.Table{Name: "book", Alias: "bk"},
	Joins: []source.Join{
		{Table: source.Table{Name: "node", Alias: "n"}, Left: "n.nid", Right: "bk.nid"},
	},
	Columns: []source.Column{
		{Ref: "bk.bid", As: "bid"},
		{Ref: "n.title", As: "title"},
	},
	Filters: []source.Filter{{Ref: "bk.nid", Op: "=", Other: "bk.bid"}},
}

// bookPagesQuery joins book pages to author, body, their own menu link and
// that link's parent. Callers add a filter on bk.bid per book.
var bookPagesQuery = source.Query{
	From: source.Table{Name: "node", Alias: "n"},
	Joins: []source.Join{
		{Table: source.Table{Name: "users", Alias: "u"}, Left: "u.uid", Right: "n.uid"},
		{Table: source.Table{Name: "field_data_body", Alias: "b"}, Left: "b.entity_id", Right: "n.nid"},
		{Table: source.Table{Name: "book", Alias: "bk"}, Left: "bk.nid", Right: "n.nid"},
		{Table: source.Table{Name: "menu_links", Alias: "ml"}, Left: "ml.mlid", Right: "bk.mlid"},
		{Table: source.Table{Name: "menu_links", Alias: "pl"}, Left: "pl.mlid", Right: "ml.plid"},
	},
	Columns: []source.Column{
		{Ref: "n.nid", As: "nid"},
		{Ref: "bk.bid", As: "bid"},
		{Ref: "n.title", As: "title"},
		{Ref: "u.mail", As: "mail"},
		{Ref: "n.created", As: "created"},
		{Ref: "n.changed", As: "changed"},
		{Ref: "b.body_value", As: "body_value"},
		{Ref: "b.body_format", As: "body_format"},
		{Ref: "pl.link_title", As: "parent_title"},
	},
	Filters: []source.Filter{{Ref: "n.type", Op: "=", Value: "book"}},
}

// Queries returns every query the exporter runs, keyed by a short name.
// The schema command validates these without exporting anything.
func Queries() map[string]source.Query {
	return map[string]source.Query{
		"people":     peopleQuery,
		"articles":   articleQuery,
		"books":      booksQuery,
		"book pages": bookPagesQuery,
		"other":      pageQuery,
	}
}
