// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package export

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/cms-export/internal/source"
)

func TestCheckSchema(t *testing.T) {
	db := openLegacy(t)

	statuses, err := CheckSchema(context.Background(), db)
	require.NoError(t, err)
	require.Len(t, statuses, len(source.RequiredTables))
	for _, st := range statuses {
		assert.True(t, st.OK(), "%s: %+v", st.Table, st)
	}
}

func TestCheckSchemaReportsProblems(t *testing.T) {
	db := openLegacy(t,
		`DROP TABLE taxonomy_term_data`,
		`ALTER TABLE node RENAME COLUMN changed TO updated`,
	)

	statuses, err := CheckSchema(context.Background(), db)
	require.NoError(t, err)

	byTable := map[string]TableStatus{}
	for _, st := range statuses {
		byTable[st.Table] = st
	}

	assert.False(t, byTable["taxonomy_term_data"].Present)
	assert.True(t, byTable["node"].Present)
	assert.Equal(t, []string{"changed"}, byTable["node"].Missing)
	assert.True(t, byTable["users"].OK())
}
