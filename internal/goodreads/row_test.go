package goodreads

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/readtrack/internal/entities"
)

func TestImportRow_UnmarshalDefaultsToSelected(t *testing.T) {
	var rows []ImportRow
	require.NoError(t, json.Unmarshal([]byte(`[
		{"id":"r1","title":"Dune","status":"finished"},
		{"id":"r2","title":"Emma","selected":false},
		{"id":"r3","title":"Ulysses","selected":true}
	]`), &rows))

	require.Len(t, rows, 3)
	assert.True(t, rows[0].Selected)
	assert.Equal(t, entities.StatusFinished, rows[0].Status)
	assert.False(t, rows[1].Selected)
	assert.True(t, rows[2].Selected)

	assert.Equal(t, []string{"r1", "r3"}, ids(Selected(rows)))
}

func TestImportRow_UnmarshalRejectsBadJSON(t *testing.T) {
	var row ImportRow
	assert.Error(t, json.Unmarshal([]byte(`{"title":42}`), &row))
}

func ids(rows []ImportRow) []string {
	out := make([]string, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.ID)
	}
	return out
}
