// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package export

import (
	"context"

	"github.com/pdiddy/cms-export/internal/slug"
	"github.com/pdiddy/cms-export/internal/source"
	"github.com/pdiddy/cms-export/pkg/types"
)

// exportPeople writes one profile per active user.
func (e *Exporter) exportPeople(ctx context.Context, res *CategoryResult) error {
	dir, err := e.sink.Dir(e.cfg.Directories.People)
	if err != nil {
		return err
	}

	var people []types.Person
	if err := source.Run(ctx, e.db, e.catalog, peopleQuery, &people); err != nil {
		return err
	}

	for _, p := range people {
		err := e.emit(res, dir, p.FullName, e.personFile(p.FullName), func() (document, error) {
			return e.renderPerson(p)
		})
		if err != nil {
			return err
		}
	}
	return nil
}

// personFile keeps the legacy naming (spaces to hyphens, case kept) unless
// people names are configured to be slugged like every other category.
func (e *Exporter) personFile(name string) string {
	if e.cfg.NormalizePeople {
		return slug.Make(name) + ".md"
	}
	return slug.PersonFile(name) + ".md"
}

func (e *Exporter) renderPerson(p types.Person) (document, error) {
	bio, err := e.conv.ConvertTagged(p.Biography, p.BiographyFormat)
	if err != nil {
		return document{}, err
	}

	var doc document
	doc.set("name", p.FullName)
	doc.set("email", p.Mail)
	doc.set("position", p.Position)
	doc.body = bio
	return doc, nil
}
