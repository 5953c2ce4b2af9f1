// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// Person is an active user joined to the profile fields the export needs.
type Person struct {
	UID             int64  `bun:"uid"`
	Mail            string `bun:"mail"`
	FullName        string `bun:"full_name"`
	Position        string `bun:"position"`
	Biography       string `bun:"bio_value"`
	BiographyFormat string `bun:"bio_format"`
}

// Article is a node joined to its author and body field. Standalone
// "page" nodes share the same shape.
type Article struct {
	NID        int64  `bun:"nid"`
	Title      string `bun:"title"`
	Mail       string `bun:"mail"`
	Created    int64  `bun:"created"`
	Changed    int64  `bun:"changed"`
	Body       string `bun:"body_value"`
	BodyFormat string `bun:"body_format"`
}

// Book is a top-level book: a book row whose node id equals its book id.
type Book struct {
	BID   int64  `bun:"bid"`
	Title string `bun:"title"`
}

// BookPage is a "book" node joined to its author, body, and the title of
// its parent menu link.
type BookPage struct {
	NID         int64  `bun:"nid"`
	BID         int64  `bun:"bid"`
	Title       string `bun:"title"`
	Mail        string `bun:"mail"`
	Created     int64  `bun:"created"`
	Changed     int64  `bun:"changed"`
	Body        string `bun:"body_value"`
	BodyFormat  string `bun:"body_format"`
	ParentTitle string `bun:"parent_title"`
}
