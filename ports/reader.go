package ports

import (
	"goinfer/domain/table"
)

// DatasetReaderPort loads a columnar dataset from a file. Implementations
// decide column kinds (numeric, factor) from the file contents.
type DatasetReaderPort interface {
	ReadTable(path string) (*table.Table, error)
}
