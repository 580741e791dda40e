package models

import (
	"strconv"
	"time"
)

type ColumnKind int

const (
	KindText ColumnKind = iota
	KindIdentifier
	KindCategorical
	KindNumeric
	KindInteger
	KindTimestamp
)

func (k ColumnKind) String() string {
	switch k {
	case KindIdentifier:
		return "identifier"
	case KindCategorical:
		return "categorical"
	case KindNumeric:
		return "numeric"
	case KindInteger:
		return "integer"
	case KindTimestamp:
		return "timestamp"
	default:
		return "text"
	}
}

// Column is a typed column of a CleanedFrame. Exactly one value slice is
// populated, chosen by Kind. Null marks rows without a value; it is nil for
// kinds that never hold nulls.
type Column struct {
	Name    string
	Kind    ColumnKind
	Strings []string
	Floats  []float64
	Ints    []int
	Times   []time.Time
	Null    []bool
}

func NewStringColumn(name string, kind ColumnKind, values []string, null []bool) Column {
	return Column{Name: name, Kind: kind, Strings: values, Null: null}
}

func NewNumericColumn(name string, values []float64) Column {
	return Column{Name: name, Kind: KindNumeric, Floats: values}
}

func NewIntegerColumn(name string, values []int, null []bool) Column {
	return Column{Name: name, Kind: KindInteger, Ints: values, Null: null}
}

func NewTimestampColumn(name string, values []time.Time, null []bool) Column {
	return Column{Name: name, Kind: KindTimestamp, Times: values, Null: null}
}

func (c Column) Len() int {
	switch c.Kind {
	case KindNumeric:
		return len(c.Floats)
	case KindInteger:
		return len(c.Ints)
	case KindTimestamp:
		return len(c.Times)
	default:
		return len(c.Strings)
	}
}

func (c Column) IsNull(row int) bool {
	return c.Null != nil && c.Null[row]
}

// Format renders the value at row as text; ok is false for nulls.
func (c Column) Format(row int) (string, bool) {
	if c.IsNull(row) {
		return "", false
	}
	switch c.Kind {
	case KindNumeric:
		return strconv.FormatFloat(c.Floats[row], 'f', -1, 64), true
	case KindInteger:
		return strconv.Itoa(c.Ints[row]), true
	case KindTimestamp:
		return c.Times[row].Format(TimestampLayout), true
	default:
		return c.Strings[row], true
	}
}

// CleanedFrame is the fully typed, default-filled frame handed to renderers.
// It is never mutated after construction; slices returned by accessors are
// shared and must be treated as read-only.
type CleanedFrame struct {
	columns []Column
	index   map[string]int
	rows    int
}

func NewCleanedFrame(rows int, columns []Column) *CleanedFrame {
	f := &CleanedFrame{columns: columns, index: make(map[string]int, len(columns)), rows: rows}
	for i, c := range columns {
		f.index[c.Name] = i
	}
	return f
}

func (f *CleanedFrame) NumRows() int {
	if f == nil {
		return 0
	}
	return f.rows
}

func (f *CleanedFrame) NumColumns() int {
	return len(f.columns)
}

func (f *CleanedFrame) Names() []string {
	names := make([]string, len(f.columns))
	for i, c := range f.columns {
		names[i] = c.Name
	}
	return names
}

func (f *CleanedFrame) Columns() []Column {
	return f.columns
}

func (f *CleanedFrame) Column(name string) (Column, bool) {
	i, ok := f.index[name]
	if !ok {
		return Column{}, false
	}
	return f.columns[i], true
}

func (f *CleanedFrame) HasColumn(name string) bool {
	_, ok := f.index[name]
	return ok
}

// Floats returns the values of a numeric column, nil if absent or not numeric.
func (f *CleanedFrame) Floats(name string) []float64 {
	c, ok := f.Column(name)
	if !ok || c.Kind != KindNumeric {
		return nil
	}
	return c.Floats
}

// Strings returns the values of a text-like column, nil if absent.
func (f *CleanedFrame) Strings(name string) []string {
	c, ok := f.Column(name)
	if !ok {
		return nil
	}
	return c.Strings
}

// Raw writes the frame back out as a RawFrame.
func (f *CleanedFrame) Raw() *RawFrame {
	out := make([]RawColumn, len(f.columns))
	for i, c := range f.columns {
		cells := make([]Cell, f.rows)
		for row := 0; row < f.rows; row++ {
			text, ok := c.Format(row)
			cells[row] = Cell{Text: text, Valid: ok}
		}
		out[i] = RawColumn{Name: c.Name, Cells: cells}
	}
	return NewRawFrame(out)
}
