// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package source

import (
	"context"
	"fmt"
	"strings"

	"github.com/uptrace/bun"
)

// Table is a table reference with the alias used in column references.
type Table struct {
	Name  string
	Alias string
}

// Join is an inner join of Table on Left = Right, where both sides are
// "alias.column" references.
type Join struct {
	Table Table
	Left  string
	Right string
}

// Column selects Ref ("alias.column") under the result name As.
type Column struct {
	Ref string
	As  string
}

// Filter restricts rows by comparing Ref with either a bound Value or, when
// Other is set, another column reference.
type Filter struct {
	Ref   string
	Op    string
	Value any
	Other string
}

// Query is a declarative select over a chain of inner joins. It is built
// once per content category and evaluated by Run.
type Query struct {
	From    Table
	Joins   []Join
	Columns []Column
	Filters []Filter
}

var allowedOps = map[string]bool{
	"=": true, "<>": true, "<": true, "<=": true, ">": true, ">=": true,
}

// With returns a copy of q with extra filters appended.
func (q Query) With(filters ...Filter) Query {
	out := q
	out.Filters = append(append([]Filter(nil), q.Filters...), filters...)
	return out
}

// aliases maps every alias in q to its table name.
func (q Query) aliases() (map[string]string, error) {
	m := map[string]string{q.From.Alias: q.From.Name}
	for _, j := range q.Joins {
		if _, dup := m[j.Table.Alias]; dup {
			return nil, fmt.Errorf("alias %q used twice", j.Table.Alias)
		}
		m[j.Table.Alias] = j.Table.Name
	}
	return m, nil
}

// References returns the columns q reads, grouped by table name.
func (q Query) References() (map[string][]string, error) {
	aliases, err := q.aliases()
	if err != nil {
		return nil, err
	}

	refs := make(map[string][]string)
	seen := make(map[string]bool)
	add := func(ref string) error {
		alias, col, err := splitRef(ref)
		if err != nil {
			return err
		}
		table, ok := aliases[alias]
		if !ok {
			return fmt.Errorf("reference %q: unknown alias %q", ref, alias)
		}
		if key := table + "." + col; !seen[key] {
			seen[key] = true
			refs[table] = append(refs[table], col)
		}
		return nil
	}

	for _, c := range q.Columns {
		if err := add(c.Ref); err != nil {
			return nil, err
		}
	}
	for _, j := range q.Joins {
		if err := add(j.Left); err != nil {
			return nil, err
		}
		if err := add(j.Right); err != nil {
			return nil, err
		}
	}
	for _, f := range q.Filters {
		if !allowedOps[f.Op] {
			return nil, fmt.Errorf("filter on %q: unsupported operator %q", f.Ref, f.Op)
		}
		if err := add(f.Ref); err != nil {
			return nil, err
		}
		if f.Other != "" {
			if err := add(f.Other); err != nil {
				return nil, err
			}
		}
	}
	return refs, nil
}

// Validate checks every table and column q touches against the catalog.
func (q Query) Validate(c Catalog) error {
	refs, err := q.References()
	if err != nil {
		return fmt.Errorf("invalid query: %w", err)
	}
	aliases, _ := q.aliases()
	for _, table := range aliases {
		if err := c.Require(table, refs[table]...); err != nil {
			return err
		}
	}
	return nil
}

// Select renders q as a bun select query on db. Identifiers are quoted by
// the database dialect.
func (q Query) Select(db bun.IDB) *bun.SelectQuery {
	sq := db.NewSelect().
		TableExpr("? AS ?", bun.Ident(q.From.Name), bun.Ident(q.From.Alias))

	for _, c := range q.Columns {
		sq = sq.ColumnExpr("? AS ?", ident(c.Ref), bun.Ident(c.As))
	}
	for _, j := range q.Joins {
		sq = sq.Join("JOIN ? AS ? ON ? = ?",
			bun.Ident(j.Table.Name), bun.Ident(j.Table.Alias),
			ident(j.Left), ident(j.Right))
	}
	for _, f := range q.Filters {
		if f.Other != "" {
			sq = sq.Where("? "+f.Op+" ?", ident(f.Ref), ident(f.Other))
		} else {
			sq = sq.Where("? "+f.Op+" ?", ident(f.Ref), f.Value)
		}
	}
	return sq
}

// Run validates q against the catalog and scans every result row into
// dest, a pointer to a slice of structs tagged with the column names.
func Run(ctx context.Context, db bun.IDB, c Catalog, q Query, dest any) error {
	if err := q.Validate(c); err != nil {
		return err
	}
	if err := q.Select(db).Scan(ctx, dest); err != nil {
		return fmt.Errorf("querying %s: %w", q.From.Name, err)
	}
	return nil
}

func splitRef(ref string) (alias, col string, err error) {
	alias, col, ok := strings.Cut(ref, ".")
	if !ok || alias == "" || col == "" || strings.Contains(col, ".") {
		return "", "", fmt.Errorf("column reference %q must be alias.column", ref)
	}
	return alias, col, nil
}

// ident quotes an "alias.column" reference; the dialect quotes each part
// separately.
func ident(ref string) bun.Ident {
	return bun.Ident(ref)
}
