// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package export writes legacy CMS content out as one Markdown file per
// item. Each category (articles, people, books, other pages) is a join
// query followed by a per-row file write.
package export

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/uptrace/bun"

	"github.com/pdiddy/cms-export/internal/richtext"
	"github.com/pdiddy/cms-export/internal/sink"
	"github.com/pdiddy/cms-export/internal/source"
	"github.com/pdiddy/cms-export/pkg/types"
)

// stampLayout formats created/updated header values.
const stampLayout = "2006-01-02 15:04"

// Entry records one written file.
type Entry struct {
	Category types.Category `json:"category" yaml:"category"`
	Title    string         `json:"title" yaml:"title"`
	Path     string         `json:"path" yaml:"path"`
}

// CategoryResult counts the outcome of one category.
type CategoryResult struct {
	Category types.Category `json:"category" yaml:"category"`
	Written  int            `json:"written" yaml:"written"`
	Failed   int            `json:"failed" yaml:"failed"`
}

// Summary holds the per-category results of a run, in run order.
type Summary struct {
	Categories []CategoryResult `json:"categories" yaml:"categories"`
}

// Written returns the number of files written across all categories.
func (s Summary) Written() int {
	n := 0
	for _, c := range s.Categories {
		n += c.Written
	}
	return n
}

// Failed returns the number of rows that could not be exported.
func (s Summary) Failed() int {
	n := 0
	for _, c := range s.Categories {
		n += c.Failed
	}
	return n
}

// HasFailures reports whether any row failed.
func (s Summary) HasFailures() bool {
	return s.Failed() > 0
}

// Exporter runs the category extractors against one database.
type Exporter struct {
	db      bun.IDB
	catalog source.Catalog
	cfg     types.ExportConfig
	sink    *sink.Sink
	conv    *richtext.Converter
	loc     *time.Location
	w       io.Writer
	entries []Entry
}

// New builds an Exporter. Progress lines are written to w. The catalog must
// cover source.RequiredTables for the categories that will run.
func New(db bun.IDB, catalog source.Catalog, cfg types.ExportConfig, w io.Writer) (*Exporter, error) {
	cfg = cfg.WithDefaults()

	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return nil, fmt.Errorf("loading timezone %q: %w", cfg.Timezone, err)
	}

	conv, err := richtext.NewConverter(richtext.Options{
		SiteURL: cfg.SiteURL,
		Formats: cfg.Formats,
	})
	if err != nil {
		return nil, err
	}

	return &Exporter{
		db:      db,
		catalog: catalog,
		cfg:     cfg,
		sink:    sink.New(cfg.OutputDir),
		conv:    conv,
		loc:     loc,
		w:       w,
	}, nil
}

// Entries returns the files written so far, in write order.
func (e *Exporter) Entries() []Entry {
	return e.entries
}

// Run creates the output root and exports each configured category in the
// fixed order articles, people, books, other. Unless KeepGoing is set, the
// first error aborts the run; the summary covers what finished before it.
func (e *Exporter) Run(ctx context.Context) (Summary, error) {
	var summary Summary

	if err := e.sink.Init(); err != nil {
		return summary, err
	}

	for _, cat := range types.AllCategories {
		if !e.enabled(cat) {
			continue
		}
		if err := ctx.Err(); err != nil {
			return summary, err
		}

		res := CategoryResult{Category: cat}
		var err error
		switch cat {
		case types.CategoryArticles:
			err = e.exportNodes(ctx, &res, articleQuery, e.cfg.Directories.Blog)
		case types.CategoryPeople:
			err = e.exportPeople(ctx, &res)
		case types.CategoryBooks:
			err = e.exportBooks(ctx, &res)
		case types.CategoryOther:
			err = e.exportNodes(ctx, &res, pageQuery, e.cfg.Directories.Other)
		}
		summary.Categories = append(summary.Categories, res)
		if err != nil {
			return summary, fmt.Errorf("exporting %s: %w", cat, err)
		}
	}

	parts := make([]string, 0, len(summary.Categories))
	for _, c := range summary.Categories {
		part := fmt.Sprintf("%d %s", c.Written, c.Category)
		if c.Failed > 0 {
			part += fmt.Sprintf(" (%d failed)", c.Failed)
		}
		parts = append(parts, part)
	}
	fmt.Fprintf(e.w, "\nExport summary: %s (total: %d)\n", strings.Join(parts, ", "), summary.Written())

	if e.cfg.Manifest != "" {
		m := Manifest{
			Root:       e.cfg.OutputDir,
			ExportedAt: time.Now().UTC(),
			Summary:    summary,
			Files:      e.entries,
		}
		if err := WriteManifest(e.cfg.Manifest, m); err != nil {
			return summary, err
		}
	}

	return summary, nil
}

func (e *Exporter) enabled(cat types.Category) bool {
	for _, c := range e.cfg.Categories {
		if c == cat {
			return true
		}
	}
	return false
}

// emit renders and writes one row. With KeepGoing a failure is reported
// and counted; otherwise it is returned.
func (e *Exporter) emit(res *CategoryResult, dir sink.Dir, title, name string, render func() (document, error)) error {
	path, err := e.write(dir, name, render)
	if err != nil {
		if !e.cfg.KeepGoing {
			return fmt.Errorf("%q: %w", title, err)
		}
		fmt.Fprintf(e.w, "failed:   %s %q (%v)\n", res.Category, title, err)
		res.Failed++
		return nil
	}

	rel, relErr := filepath.Rel(e.cfg.OutputDir, path)
	if relErr != nil {
		rel = path
	}
	e.entries = append(e.entries, Entry{Category: res.Category, Title: title, Path: filepath.ToSlash(rel)})
	res.Written++
	fmt.Fprintf(e.w, "exported: %s\n", filepath.ToSlash(rel))
	return nil
}

func (e *Exporter) write(dir sink.Dir, name string, render func() (document, error)) (string, error) {
	doc, err := render()
	if err != nil {
		return "", err
	}
	return dir.Write(name, doc.String())
}

// stamp formats a stored epoch timestamp in the configured timezone.
func (e *Exporter) stamp(epoch int64) string {
	return time.Unix(epoch, 0).In(e.loc).Format(stampLayout)
}

// dated appends the created header and, when the item was edited after
// creation, the updated header.
func (e *Exporter) dated(doc *document, created, changed int64) {
	doc.set("created", e.stamp(created))
	if changed != created {
		doc.set("updated", e.stamp(changed))
	}
}

// document is an exported file: ordered "key: value" header lines, a blank
// line and the body.
type document struct {
	headers []header
	body    string
}

type header struct {
	key, value string
}

func (d *document) set(key, value string) {
	d.headers = append(d.headers, header{key: key, value: value})
}

func (d document) String() string {
	var b strings.Builder
	for _, h := range d.headers {
		fmt.Fprintf(&b, "%s: %s\n", h.key, h.value)
	}
	b.WriteString("\n")
	b.WriteString(d.body)
	b.WriteString("\n")
	return b.String()
}
