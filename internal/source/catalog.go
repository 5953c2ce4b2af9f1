// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package source

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/uptrace/bun"
)

// ErrSchemaMismatch is returned when a table or column the export reads is
// missing from the database.
var ErrSchemaMismatch = errors.New("schema mismatch")

// RequiredTables lists every table the exporters join.
var RequiredTables = []string{
	"users",
	"node",
	"field_data_body",
	"field_data_field_aboutme",
	"field_data_field_name",
	"field_data_field_position",
	"taxonomy_term_data",
	"book",
	"menu_links",
}

// Catalog records the column names of reflected tables. It is never
// modified after Reflect returns.
type Catalog struct {
	tables map[string]map[string]struct{}
}

// Reflect loads the column set of each named table. A table that cannot be
// read is reported as a schema mismatch.
func Reflect(ctx context.Context, db bun.IDB, tables ...string) (Catalog, error) {
	c := Catalog{tables: make(map[string]map[string]struct{}, len(tables))}
	for _, table := range tables {
		cols, err := reflectTable(ctx, db, table)
		if err != nil {
			return Catalog{}, err
		}
		set := make(map[string]struct{}, len(cols))
		for _, col := range cols {
			set[col] = struct{}{}
		}
		c.tables[table] = set
	}
	return c, nil
}

func reflectTable(ctx context.Context, db bun.IDB, table string) ([]string, error) {
	rows, err := db.QueryContext(ctx, "SELECT * FROM ? WHERE 1 = 0", bun.Ident(table))
	if err != nil {
		return nil, fmt.Errorf("%w: table %s: %v", ErrSchemaMismatch, table, err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("reading columns of %s: %w", table, err)
	}
	return cols, rows.Err()
}

// Tables returns the reflected table names, sorted.
func (c Catalog) Tables() []string {
	names := make([]string, 0, len(c.tables))
	for name := range c.tables {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Columns returns the reflected columns of table, sorted.
func (c Catalog) Columns(table string) []string {
	set := c.tables[table]
	cols := make([]string, 0, len(set))
	for col := range set {
		cols = append(cols, col)
	}
	sort.Strings(cols)
	return cols
}

// Has reports whether table was reflected and has every listed column.
func (c Catalog) Has(table string, columns ...string) bool {
	return c.Require(table, columns...) == nil
}

// Require returns an error naming the first missing table or column.
func (c Catalog) Require(table string, columns ...string) error {
	set, ok := c.tables[table]
	if !ok {
		return fmt.Errorf("%w: table %s not found", ErrSchemaMismatch, table)
	}
	for _, col := range columns {
		if _, ok := set[col]; !ok {
			return fmt.Errorf("%w: column %s.%s not found", ErrSchemaMismatch, table, col)
		}
	}
	return nil
}
