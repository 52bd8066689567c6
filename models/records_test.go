package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewRecordsUnionsColumns(t *testing.T) {
	r := NewRecords([]map[string]any{
		{"Team": "SF", "Week": 9.0},
		{"Team": "KC", "Bye": true},
	})

	assert.Equal(t, []string{"Bye", "Team", "Week"}, r.Columns)
	assert.Equal(t, 2, r.Len())
	assert.True(t, r.HasColumns("Team", "Week"))
	assert.False(t, r.HasColumns("Team", "Missing"))
	assert.Equal(t, []any{9.0, nil}, r.Column("Week"))
}

func TestNewRecordsNilRowsIsEmpty(t *testing.T) {
	r := NewRecords(nil)
	assert.True(t, r.Empty())
	assert.NotNil(t, r.Rows)
}

func TestDescribeReportsKinds(t *testing.T) {
	r := NewStringRecords([]map[string]string{
		{"player_id": "00-1", "season": "2024", "yards": "12.5"},
		{"player_id": "00-2", "season": "2024", "yards": ""},
	})

	out := r.Describe("player_stats")

	assert.Contains(t, out, "Endpoint: player_stats")
	assert.Contains(t, out, "Records: 2 entries")
	assert.Regexp(t, `season\s+2 non-null\s+int`, out)
	assert.Regexp(t, `yards\s+1 non-null\s+float`, out)
	assert.Regexp(t, `player_id\s+2 non-null\s+object`, out)
}

func TestFilter(t *testing.T) {
	r := NewRecords([]map[string]any{{"a": 1.0}, {"a": 2.0}})
	out := r.Filter(func(m map[string]any) bool { return m["a"].(float64) > 1 })
	assert.Equal(t, 1, out.Len())
}
