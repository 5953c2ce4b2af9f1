// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package export

import (
	"context"
	"fmt"

	"github.com/pdiddy/cms-export/internal/slug"
	"github.com/pdiddy/cms-export/internal/source"
	"github.com/pdiddy/cms-export/pkg/types"
)

// exportBooks lists top-level books, gives each its own directory named by
// the slug of the book title, and writes the book's pages into it.
func (e *Exporter) exportBooks(ctx context.Context, res *CategoryResult) error {
	var books []types.Book
	if err := source.Run(ctx, e.db, e.catalog, booksQuery, &books); err != nil {
		return err
	}

	for _, b := range books {
		if err := e.exportBook(ctx, res, b); err != nil {
			if !e.cfg.KeepGoing {
				return fmt.Errorf("book %q: %w", b.Title, err)
			}
			fmt.Fprintf(e.w, "failed:   book %q (%v)\n", b.Title, err)
			res.Failed++
		}
	}
	return nil
}

func (e *Exporter) exportBook(ctx context.Context, res *CategoryResult, b types.Book) error {
	dir, err := e.sink.Dir(slug.Make(b.Title))
	if err != nil {
		return err
	}

	q := bookPagesQuery.With(source.Filter{Ref: "bk.bid", Op: "=", Value: b.BID})
	var pages []types.BookPage
	if err := source.Run(ctx, e.db, e.catalog, q, &pages); err != nil {
		return err
	}

	for _, p := range pages {
		err := e.emit(res, dir, p.Title, slug.Make(p.Title)+".md", func() (document, error) {
			return e.renderBookPage(p)
		})
		if err != nil {
			return err
		}
	}
	return nil
}

func (e *Exporter) renderBookPage(p types.BookPage) (document, error) {
	body, err := e.conv.ConvertTagged(p.Body, p.BodyFormat)
	if err != nil {
		return document{}, err
	}

	var doc document
	doc.set("title", p.Title)
	doc.set("parent", slug.Make(p.ParentTitle))
	doc.set("author", p.Mail)
	e.dated(&doc, p.Created, p.Changed)
	doc.body = body
	return doc, nil
}
