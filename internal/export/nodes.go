// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package export

import (
	"context"

	"github.com/pdiddy/cms-export/internal/slug"
	"github.com/pdiddy/cms-export/internal/source"
	"github.com/pdiddy/cms-export/pkg/types"
)

// exportNodes writes one file per row of a node query (articles or
// standalone pages) into dirName, named by the slug of the title.
func (e *Exporter) exportNodes(ctx context.Context, res *CategoryResult, q source.Query, dirName string) error {
	dir, err := e.sink.Dir(dirName)
	if err != nil {
		return err
	}

	var rows []types.Article
	if err := source.Run(ctx, e.db, e.catalog, q, &rows); err != nil {
		return err
	}

	for _, row := range rows {
		err := e.emit(res, dir, row.Title, slug.Make(row.Title)+".md", func() (document, error) {
			return e.renderNode(row)
		})
		if err != nil {
			return err
		}
	}
	return nil
}

func (e *Exporter) renderNode(a types.Article) (document, error) {
	body, err := e.conv.ConvertTagged(a.Body, a.BodyFormat)
	if err != nil {
		return document{}, err
	}

	var doc document
	doc.set("title", a.Title)
	doc.set("author", a.Mail)
	e.dated(&doc, a.Created, a.Changed)
	doc.body = body
	return doc, nil
}
