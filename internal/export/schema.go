// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package export

import (
	"context"
	"errors"
	"sort"

	"github.com/uptrace/bun"

	"github.com/pdiddy/cms-export/internal/source"
)

// TableStatus reports whether one required table has the columns the
// exporter's queries read.
type TableStatus struct {
	Table   string
	Present bool
	Missing []string
}

// OK reports whether the table exists with every needed column.
func (s TableStatus) OK() bool {
	return s.Present && len(s.Missing) == 0
}

// CheckSchema reflects each required table separately so that one missing
// table does not hide problems in the others.
func CheckSchema(ctx context.Context, db bun.IDB) ([]TableStatus, error) {
	needed := make(map[string]map[string]bool)
	for _, q := range Queries() {
		refs, err := q.References()
		if err != nil {
			return nil, err
		}
		for table, cols := range refs {
			if needed[table] == nil {
				needed[table] = make(map[string]bool)
			}
			for _, col := range cols {
				needed[table][col] = true
			}
		}
	}

	statuses := make([]TableStatus, 0, len(source.RequiredTables))
	for _, table := range source.RequiredTables {
		st := TableStatus{Table: table}
		catalog, err := source.Reflect(ctx, db, table)
		if err != nil {
			if !errors.Is(err, source.ErrSchemaMismatch) {
				return nil, err
			}
			statuses = append(statuses, st)
			continue
		}
		st.Present = true
		for col := range needed[table] {
			if !catalog.Has(table, col) {
				st.Missing = append(st.Missing, col)
			}
		}
		sort.Strings(st.Missing)
		statuses = append(statuses, st)
	}
	return statuses, nil
}
