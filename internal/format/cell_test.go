package format

import (
	"encoding/json"
	"math"
	"testing"
	"time"

	"github.com/rebeliceyang/lazybrowse/internal/models"
	"github.com/stretchr/testify/assert"
)

func TestCellValue(t *testing.T) {
	ts := time.Date(2024, 3, 9, 14, 5, 7, 123_000_000, time.FixedZone("CET", 3600))

	tests := []struct {
		name string
		in   any
		want string
	}{
		{"nil", nil, ""},
		{"true", true, "true"},
		{"false", false, "false"},
		{"int", 42, "42"},
		{"negative int64", int64(-7), "-7"},
		{"float", 1.5, "1.5"},
		{"whole float", 3.0, "3"},
		{"large float", 1e21, "1e+21"},
		{"json number trailing zero", json.Number("1.50"), "1.5"},
		{"json number exponent", json.Number("1e2"), "100"},
		{"json number negative zero", json.Number("-0.0"), "0"},
		{"json number integer", json.Number("-42"), "-42"},
		{"json number beyond int64", json.Number("12345678901234567890"), "12345678901234567890"},
		{"json number small", json.Number("1.5e-7"), "1.5e-07"},
		{"negative zero float", math.Copysign(0, -1), "0"},
		{"string", "hello, world", "hello, world"},
		{"empty string", "", ""},
		{"time", ts, "2024-03-09T13:05:07.123Z"},
		{"array", []any{1, "a", nil}, "1, a, "},
		{"nested array", []any{[]any{1, 2}, true}, "1, 2, true"},
		{"typed slice", []string{"x", "y"}, "x, y"},
		{"object", map[string]any{"b": 2, "a": "x"}, `{"a":"x","b":2}`},
		{"object with array", map[string]any{"tags": []any{"x"}}, `{"tags":["x"]}`},
		{"nil pointer", (*int)(nil), ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CellValue(tt.in))
		})
	}
}

func TestColumns_FirstRowOnly(t *testing.T) {
	rows := []map[string]any{
		{"name": "pen", "id": 1},
		{"name": "ink", "id": 2, "extra": true},
	}

	assert.Equal(t, []string{"id", "name"}, Columns(rows))
	assert.Empty(t, Columns(nil))
}

func TestGrid_MismatchedRowsRenderBlank(t *testing.T) {
	result := &models.QueryResult{Rows: []map[string]any{
		{"id": 1, "name": "pen"},
		{"id": 2},
		{"other": "x"},
	}}

	cols, cells := Grid(result)
	assert.Equal(t, []string{"id", "name"}, cols)
	assert.Equal(t, [][]string{
		{"1", "pen"},
		{"2", ""},
		{"", ""},
	}, cells)
}

func TestGrid_DecodedNumbers(t *testing.T) {
	result := &models.QueryResult{Rows: []map[string]any{
		{"a": json.Number("1.50"), "b": json.Number("1e2"), "c": json.Number("-0.0"), "d": []any{json.Number("1"), "a", nil}},
	}}

	_, cells := Grid(result)
	assert.Equal(t, [][]string{{"1.5", "100", "0", "1, a, "}}, cells)
}

func TestGrid_NilResult(t *testing.T) {
	cols, cells := Grid(nil)
	assert.Empty(t, cols)
	assert.Empty(t, cells)
}

func TestClassifyStatement(t *testing.T) {
	tests := []struct {
		query string
		want  StatementKind
	}{
		{"CREATE TABLE t (id int)", StatementDDL},
		{"  alter table t add column x int", StatementDDL},
		{"-- note\nDROP TABLE t", StatementDDL},
		{"/* c */ select 1", StatementDML},
		{"insert into t values (1)", StatementDML},
		{"with x as (select 1) select * from x", StatementDML},
		{"vacuum", StatementUnknown},
		{"-- only a comment", StatementUnknown},
		{"", StatementUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			assert.Equal(t, tt.want, ClassifyStatement(tt.query))
		})
	}
}
