// Package table provides the columnar dataset consumed and produced by the
// inference engine: named, equal-length columns of numeric, factor, or
// integer values, accessed by name and resampled by row index.
package table

import (
	"fmt"
	"strconv"
	"strings"

	"goinfer/domain/core"
)

// Table is an ordered sequence of named columns of equal length
type Table struct {
	cols   []Column
	byName map[string]int
}

// New creates a table from columns, validating equal lengths and unique
// non-empty names
func New(cols ...Column) (*Table, error) {
	if len(cols) == 0 {
		return nil, core.NewInputError("table needs at least one column")
	}

	byName := make(map[string]int, len(cols))
	n := cols[0].Len()
	for i, col := range cols {
		if col.Name() == "" {
			return nil, core.NewInputError("column name cannot be empty")
		}
		if _, dup := byName[col.Name()]; dup {
			return nil, core.NewInputError(fmt.Sprintf("duplicate column name %q", col.Name()))
		}
		if col.Len() != n {
			return nil, core.NewInputError(fmt.Sprintf(
				"column %q has %d rows, want %d", col.Name(), col.Len(), n))
		}
		byName[col.Name()] = i
	}

	return &Table{cols: cols, byName: byName}, nil
}

// NRows returns the row count
func (t *Table) NRows() int {
	return t.cols[0].Len()
}

// NCols returns the column count
func (t *Table) NCols() int {
	return len(t.cols)
}

// Names returns the column names in order
func (t *Table) Names() []string {
	names := make([]string, len(t.cols))
	for i, col := range t.cols {
		names[i] = col.Name()
	}
	return names
}

// Columns returns the columns in order. The slice is a copy; the columns
// are shared.
func (t *Table) Columns() []Column {
	cols := make([]Column, len(t.cols))
	copy(cols, t.cols)
	return cols
}

// HasColumn reports whether a column with the given name exists
func (t *Table) HasColumn(name string) bool {
	_, ok := t.byName[name]
	return ok
}

// Column returns the named column
func (t *Table) Column(name string) (Column, error) {
	i, ok := t.byName[name]
	if !ok {
		return nil, core.NewColumnNotFoundError(name)
	}
	return t.cols[i], nil
}

// ColumnAt returns the column at position i
func (t *Table) ColumnAt(i int) Column {
	return t.cols[i]
}

// Numeric returns the named column as numeric
func (t *Table) Numeric(name string) (*NumericColumn, error) {
	col, err := t.Column(name)
	if err != nil {
		return nil, err
	}
	nc, ok := col.(*NumericColumn)
	if !ok {
		return nil, core.NewColumnKindError(name, "numeric")
	}
	return nc, nil
}

// Factor returns the named column as a factor
func (t *Table) Factor(name string) (*FactorColumn, error) {
	col, err := t.Column(name)
	if err != nil {
		return nil, err
	}
	fc, ok := col.(*FactorColumn)
	if !ok {
		return nil, core.NewColumnKindError(name, "factor")
	}
	return fc, nil
}

// Int returns the named column as integer
func (t *Table) Int(name string) (*IntColumn, error) {
	col, err := t.Column(name)
	if err != nil {
		return nil, err
	}
	ic, ok := col.(*IntColumn)
	if !ok {
		return nil, core.NewColumnKindError(name, "int")
	}
	return ic, nil
}

// Take materializes a row subset in index order. Indices may repeat;
// out-of-range indices panic.
func (t *Table) Take(indices []int) *Table {
	cols := make([]Column, len(t.cols))
	for i, col := range t.cols {
		cols[i] = col.Take(indices)
	}
	taken, _ := New(cols...)
	return taken
}

// Replace returns a table with the named column swapped for col, which must
// keep the name and length
func (t *Table) Replace(name string, col Column) (*Table, error) {
	i, ok := t.byName[name]
	if !ok {
		return nil, core.NewColumnNotFoundError(name)
	}
	if col.Name() != name {
		return nil, core.NewInputError(fmt.Sprintf(
			"replacement column named %q, want %q", col.Name(), name))
	}
	if col.Len() != t.NRows() {
		return nil, core.NewInputError(fmt.Sprintf(
			"replacement column has %d rows, want %d", col.Len(), t.NRows()))
	}
	cols := t.Columns()
	cols[i] = col
	return New(cols...)
}

// Prepend returns a table with col added as the first column
func (t *Table) Prepend(col Column) (*Table, error) {
	cols := make([]Column, 0, len(t.cols)+1)
	cols = append(cols, col)
	cols = append(cols, t.cols...)
	return New(cols...)
}

// Concat appends schema-identical tables in order. Column names, kinds,
// and factor level order must match across all inputs.
func Concat(tables ...*Table) (*Table, error) {
	if len(tables) == 0 {
		return nil, core.NewInputError("nothing to concatenate")
	}
	first := tables[0]
	for _, other := range tables[1:] {
		if err := sameSchema(first, other); err != nil {
			return nil, err
		}
	}

	cols := make([]Column, first.NCols())
	for i := range first.cols {
		cols[i] = concatColumn(tables, i)
	}
	return New(cols...)
}

func sameSchema(a, b *Table) error {
	if a.NCols() != b.NCols() {
		return core.ErrColumnCount
	}
	for i := range a.cols {
		ca, cb := a.cols[i], b.cols[i]
		if ca.Name() != cb.Name() || ca.Kind() != cb.Kind() {
			return core.NewInputError(fmt.Sprintf(
				"schema mismatch at column %d: %s/%s vs %s/%s",
				i, ca.Name(), ca.Kind(), cb.Name(), cb.Kind()))
		}
		if fa, ok := ca.(*FactorColumn); ok {
			fb := cb.(*FactorColumn)
			if len(fa.Levels) != len(fb.Levels) {
				return core.NewInputError(fmt.Sprintf("level mismatch in column %q", ca.Name()))
			}
			for j := range fa.Levels {
				if fa.Levels[j] != fb.Levels[j] {
					return core.NewInputError(fmt.Sprintf("level mismatch in column %q", ca.Name()))
				}
			}
		}
	}
	return nil
}

func concatColumn(tables []*Table, i int) Column {
	switch first := tables[0].cols[i].(type) {
	case *NumericColumn:
		var values []float64
		for _, t := range tables {
			values = append(values, t.cols[i].(*NumericColumn).Values...)
		}
		return &NumericColumn{name: first.name, Values: values}
	case *FactorColumn:
		var values []string
		for _, t := range tables {
			values = append(values, t.cols[i].(*FactorColumn).Values...)
		}
		return &FactorColumn{name: first.name, Values: values, Levels: first.Levels}
	case *IntColumn:
		var values []int
		for _, t := range tables {
			values = append(values, t.cols[i].(*IntColumn).Values...)
		}
		return &IntColumn{name: first.name, Values: values}
	default:
		panic(fmt.Sprintf("unknown column type %T", first))
	}
}

// Hash computes a deterministic content hash over names, kinds, levels,
// and values
func (t *Table) Hash() core.DatasetHash {
	var data strings.Builder
	for _, col := range t.cols {
		data.WriteString(col.Name())
		data.WriteString(":")
		data.WriteString(string(col.Kind()))
		data.WriteString(":")
		switch c := col.(type) {
		case *NumericColumn:
			for _, v := range c.Values {
				data.WriteString(strconv.FormatFloat(v, 'g', -1, 64))
				data.WriteString(",")
			}
		case *FactorColumn:
			data.WriteString(strings.Join(c.Levels, "|"))
			data.WriteString(":")
			data.WriteString(strings.Join(c.Values, ","))
		case *IntColumn:
			for _, v := range c.Values {
				data.WriteString(strconv.Itoa(v))
				data.WriteString(",")
			}
		}
		data.WriteString(";")
	}
	return core.NewDatasetHash([]byte(data.String()))
}

func newColumnValueError(name, value string) error {
	return core.NewInputError(fmt.Sprintf("value %q not in levels of column %q", value, name))
}
