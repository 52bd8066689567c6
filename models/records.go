package models

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Records is the tabular result returned by the upstream adapters: one map
// per row, plus the union of keys as the column list.
type Records struct {
	Columns []string         `json:"columns"`
	Rows    []map[string]any `json:"rows"`
}

// NewRecords builds Records from decoded rows. Columns are the sorted union
// of every row's keys.
func NewRecords(rows []map[string]any) Records {
	seen := make(map[string]struct{})
	for _, row := range rows {
		for k := range row {
			seen[k] = struct{}{}
		}
	}
	cols := make([]string, 0, len(seen))
	for k := range seen {
		cols = append(cols, k)
	}
	sort.Strings(cols)
	if rows == nil {
		rows = []map[string]any{}
	}
	return Records{Columns: cols, Rows: rows}
}

// NewStringRecords adapts CSV-style rows.
func NewStringRecords(rows []map[string]string) Records {
	out := make([]map[string]any, len(rows))
	for i, row := range rows {
		m := make(map[string]any, len(row))
		for k, v := range row {
			m[k] = v
		}
		out[i] = m
	}
	return NewRecords(out)
}

// Len returns the number of rows.
func (r Records) Len() int { return len(r.Rows) }

// Empty reports whether there are no rows.
func (r Records) Empty() bool { return len(r.Rows) == 0 }

// HasColumns reports whether every name is a column.
func (r Records) HasColumns(names ...string) bool {
	idx := make(map[string]struct{}, len(r.Columns))
	for _, c := range r.Columns {
		idx[c] = struct{}{}
	}
	for _, n := range names {
		if _, ok := idx[n]; !ok {
			return false
		}
	}
	return true
}

// Column returns the values of one column, nil where a row lacks it.
func (r Records) Column(name string) []any {
	out := make([]any, len(r.Rows))
	for i, row := range r.Rows {
		out[i] = row[name]
	}
	return out
}

// Filter keeps the rows for which keep returns true.
func (r Records) Filter(keep func(map[string]any) bool) Records {
	rows := make([]map[string]any, 0, len(r.Rows))
	for _, row := range r.Rows {
		if keep(row) {
			rows = append(rows, row)
		}
	}
	return Records{Columns: r.Columns, Rows: rows}
}

// Describe renders a per-column summary (non-null count and inferred kind)
// in the layout used by the `sportsdata` CLI.
func (r Records) Describe(name string) string {
	var b strings.Builder
	rule := strings.Repeat("-", 50)

	fmt.Fprintf(&b, "Endpoint: %s\n%s\n", name, rule)
	fmt.Fprintf(&b, "Records: %d entries\n", len(r.Rows))
	fmt.Fprintf(&b, "Data columns (total %d columns):\n", len(r.Columns))
	fmt.Fprintf(&b, " %-4s %-30s %-15s %s\n", "#", "Column", "Non-Null Count", "Kind")
	for i, col := range r.Columns {
		nonNull := 0
		for _, row := range r.Rows {
			if v, ok := row[col]; ok && v != nil && v != "" {
				nonNull++
			}
		}
		fmt.Fprintf(&b, " %-4d %-30s %-15s %s\n", i, col, fmt.Sprintf("%d non-null", nonNull), inferKind(r.Column(col)))
	}
	fmt.Fprintf(&b, "%s\n\n", rule)
	return b.String()
}

func inferKind(values []any) string {
	kind := ""
	merge := func(k string) {
		switch {
		case kind == "":
			kind = k
		case kind == k:
		case (kind == "int" && k == "float") || (kind == "float" && k == "int"):
			kind = "float"
		default:
			kind = "object"
		}
	}
	for _, v := range values {
		switch x := v.(type) {
		case nil:
			continue
		case bool:
			merge("bool")
		case float64:
			if x == float64(int64(x)) {
				merge("int")
			} else {
				merge("float")
			}
		case int, int64:
			merge("int")
		case string:
			if x == "" {
				continue
			}
			if _, err := strconv.ParseInt(x, 10, 64); err == nil {
				merge("int")
			} else if _, err := strconv.ParseFloat(x, 64); err == nil {
				merge("float")
			} else {
				merge("object")
			}
		default:
			merge("object")
		}
	}
	if kind == "" {
		return "object"
	}
	return kind
}
