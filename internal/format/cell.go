// Package format turns schema-less query rows into display strings.
package format

import (
	"encoding/json"
	"fmt"
	"math"
	"reflect"
	"sort"
	"strconv"
	"strings"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/rebeliceyang/lazybrowse/internal/models"
)

// isoMillis matches the ISO-8601 form used for timestamps, always in UTC
const isoMillis = "2006-01-02T15:04:05.000Z"

var compactJSON = jsoniter.ConfigCompatibleWithStandardLibrary

// CellValue formats a single value independently of its column
func CellValue(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case bool:
		if val {
			return "true"
		}
		return "false"
	case string:
		return val
	case json.Number:
		return formatNumber(val)
	case float64:
		return formatFloat(val)
	case float32:
		return formatFloat(float64(val))
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return fmt.Sprint(val)
	case time.Time:
		return val.UTC().Format(isoMillis)
	case *time.Time:
		if val == nil {
			return ""
		}
		return val.UTC().Format(isoMillis)
	case []any:
		parts := make([]string, len(val))
		for i, item := range val {
			parts[i] = CellValue(item)
		}
		return strings.Join(parts, ", ")
	case map[string]any:
		return toJSON(val)
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer:
		if rv.IsNil() {
			return ""
		}
		return CellValue(rv.Elem().Interface())
	case reflect.Slice, reflect.Array:
		if rv.Kind() == reflect.Slice && rv.IsNil() {
			return ""
		}
		parts := make([]string, rv.Len())
		for i := 0; i < rv.Len(); i++ {
			parts[i] = CellValue(rv.Index(i).Interface())
		}
		return strings.Join(parts, ", ")
	case reflect.Map, reflect.Struct:
		return toJSON(v)
	}

	return fmt.Sprint(v)
}

func toJSON(v any) string {
	data, err := compactJSON.Marshal(v)
	if err != nil {
		return fmt.Sprint(v)
	}
	return string(data)
}

// formatFloat renders floats the way a JSON number reads: no trailing zeros,
// exponent form only for very large or very small magnitudes
// formatNumber renders a decoded JSON number the way its value prints, so
// 1.50 becomes "1.5" and 1e2 becomes "100". Integer literals stay exact.
func formatNumber(n json.Number) string {
	if i, err := n.Int64(); err == nil {
		return strconv.FormatInt(i, 10)
	}
	lit := n.String()
	if !strings.ContainsAny(lit, ".eE") {
		return strings.TrimPrefix(lit, "+")
	}
	f, err := n.Float64()
	if err != nil {
		return lit
	}
	return formatFloat(f)
}

func formatFloat(f float64) string {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	}
	if f == 0 {
		return "0"
	}
	abs := math.Abs(f)
	if abs != 0 && (abs >= 1e21 || abs < 1e-6) {
		return strconv.FormatFloat(f, 'g', -1, 64)
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// Columns returns the sorted keys of the first row.
// Later rows with other keys are not consulted.
func Columns(rows []map[string]any) []string {
	if len(rows) == 0 {
		return []string{}
	}

	cols := make([]string, 0, len(rows[0]))
	for key := range rows[0] {
		cols = append(cols, key)
	}
	sort.Strings(cols)
	return cols
}

// Grid renders a result as a header and string cells.
// A key missing from a row renders as an empty cell.
func Grid(result *models.QueryResult) ([]string, [][]string) {
	if result == nil {
		return []string{}, [][]string{}
	}

	cols := Columns(result.Rows)
	cells := make([][]string, len(result.Rows))
	for i, row := range result.Rows {
		line := make([]string, len(cols))
		for j, col := range cols {
			line[j] = CellValue(row[col])
		}
		cells[i] = line
	}
	return cols, cells
}
