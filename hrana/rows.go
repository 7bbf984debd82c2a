package hrana

import (
	"bytes"

	"github.com/iancoleman/orderedmap"
)

// Row is one result row keyed by column name.
// Keys keep the column order of the result set, which only matters when the
// row is serialized.
type Row struct {
	m *orderedmap.OrderedMap
}

// NewRow returns an empty row.
func NewRow() *Row {
	return &Row{m: orderedmap.New()}
}

// Get returns the value stored under key.
func (r *Row) Get(key string) (any, bool) {
	return r.m.Get(key)
}

// Set stores value under key, appending key if it is new.
func (r *Row) Set(key string, value any) {
	r.m.Set(key, value)
}

// Keys returns column names in order.
func (r *Row) Keys() []string {
	return r.m.Keys()
}

// String returns the value under key when it is a string.
func (r *Row) String(key string) (string, bool) {
	v, ok := r.m.Get(key)
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

// Int returns the value under key when it is an integer.
func (r *Row) Int(key string) (int64, bool) {
	v, ok := r.m.Get(key)
	if !ok {
		return 0, false
	}
	i, ok := v.(int64)
	return i, ok
}

// Clone returns a copy that shares no mutable state with r.
func (r *Row) Clone() *Row {
	out := NewRow()
	for _, k := range r.m.Keys() {
		v, _ := r.m.Get(k)
		if b, ok := v.([]byte); ok {
			v = bytes.Clone(b)
		}
		out.m.Set(k, v)
	}
	return out
}

// Map returns the row as an unordered map.
func (r *Row) Map() map[string]any {
	out := make(map[string]any, len(r.m.Keys()))
	for _, k := range r.m.Keys() {
		out[k], _ = r.m.Get(k)
	}
	return out
}

// MarshalJSON encodes the row as a JSON object in column order.
func (r *Row) MarshalJSON() ([]byte, error) {
	return r.m.MarshalJSON()
}

// MapRows zips column names with raw row cells, decoding every cell.
// Row order is preserved. Cells missing from a short row map to nil and
// cells beyond the last column are ignored.
func MapRows(columns []string, rows [][]any) []*Row {
	out := make([]*Row, 0, len(rows))
	for _, cells := range rows {
		out = append(out, mapRow(columns, cells))
	}
	return out
}

func mapRow(columns []string, cells []any) *Row {
	row := NewRow()
	for i, col := range columns {
		var cell any
		if i < len(cells) {
			cell = cells[i]
		}
		row.Set(col, DecodeCell(cell))
	}
	return row
}
