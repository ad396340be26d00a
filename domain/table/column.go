package table

// Kind classifies a column's scalar type
type Kind string

const (
	KindNumeric Kind = "numeric"
	KindFactor  Kind = "factor"
	KindInt     Kind = "int"
)

// Column is one named, typed value sequence of a Table
type Column interface {
	Name() string
	Kind() Kind
	Len() int
	// Take materializes a new column holding the values at the given row
	// indices, in order. Indices may repeat. Factor levels carry over
	// unchanged even when a level no longer occurs in the taken rows.
	Take(indices []int) Column
}

// NumericColumn holds float64 values
type NumericColumn struct {
	name   string
	Values []float64
}

// NewNumericColumn creates a numeric column
func NewNumericColumn(name string, values []float64) *NumericColumn {
	return &NumericColumn{name: name, Values: values}
}

func (c *NumericColumn) Name() string { return c.name }
func (c *NumericColumn) Kind() Kind   { return KindNumeric }
func (c *NumericColumn) Len() int     { return len(c.Values) }

func (c *NumericColumn) Take(indices []int) Column {
	values := make([]float64, len(indices))
	for i, idx := range indices {
		values[i] = c.Values[idx]
	}
	return &NumericColumn{name: c.name, Values: values}
}

// FactorColumn holds categorical values with an ordered level set.
// Level order is semantic: first-level proportions and signed group
// differences follow it.
type FactorColumn struct {
	name   string
	Values []string
	Levels []string
}

// NewFactorColumn creates a factor column with levels in first-seen order
func NewFactorColumn(name string, values []string) *FactorColumn {
	seen := make(map[string]bool)
	var levels []string
	for _, v := range values {
		if !seen[v] {
			seen[v] = true
			levels = append(levels, v)
		}
	}
	return &FactorColumn{name: name, Values: values, Levels: levels}
}

// NewFactorColumnWithLevels creates a factor column with an explicit level
// order. Every value must belong to the level set.
func NewFactorColumnWithLevels(name string, values []string, levels []string) (*FactorColumn, error) {
	valid := make(map[string]bool, len(levels))
	for _, l := range levels {
		valid[l] = true
	}
	for _, v := range values {
		if !valid[v] {
			return nil, newColumnValueError(name, v)
		}
	}
	return &FactorColumn{name: name, Values: values, Levels: levels}, nil
}

func (c *FactorColumn) Name() string { return c.name }
func (c *FactorColumn) Kind() Kind   { return KindFactor }
func (c *FactorColumn) Len() int     { return len(c.Values) }

func (c *FactorColumn) Take(indices []int) Column {
	values := make([]string, len(indices))
	for i, idx := range indices {
		values[i] = c.Values[idx]
	}
	return &FactorColumn{name: c.name, Values: values, Levels: c.Levels}
}

// LevelIndex returns the position of a level in level order, or -1
func (c *FactorColumn) LevelIndex(level string) int {
	for i, l := range c.Levels {
		if l == level {
			return i
		}
	}
	return -1
}

// IntColumn holds integer values, used for replicate indices
type IntColumn struct {
	name   string
	Values []int
}

// NewIntColumn creates an integer column
func NewIntColumn(name string, values []int) *IntColumn {
	return &IntColumn{name: name, Values: values}
}

func (c *IntColumn) Name() string { return c.name }
func (c *IntColumn) Kind() Kind   { return KindInt }
func (c *IntColumn) Len() int     { return len(c.Values) }

func (c *IntColumn) Take(indices []int) Column {
	values := make([]int, len(indices))
	for i, idx := range indices {
		values[i] = c.Values[idx]
	}
	return &IntColumn{name: c.name, Values: values}
}
