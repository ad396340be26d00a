// Package tabfile loads tabular datasets from Excel and CSV files into the
// engine's columnar table form, inferring a numeric or factor kind per
// column from the cell contents.
package tabfile

import (
	"encoding/csv"
	"fmt"
	"log"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"goinfer/domain/table"
)

// Column kind inference thresholds. A column parses as numeric when at
// least numericThreshold of its non-empty cells are numbers; any column
// whose distinct values are few relative to its rows reads as a factor
// even when the values look numeric.
const (
	numericThreshold      = 0.8
	categoricalUniqueMax  = 20
	categoricalRatioLimit = 0.1
)

// Reader handles reading Excel and CSV files into tables
type Reader struct{}

// NewReader creates a new data reader that handles both Excel and CSV files
func NewReader() *Reader {
	return &Reader{}
}

// ReadTable reads a dataset file into a table. The file type follows the
// extension: .csv reads as CSV, anything else as Excel.
func (r *Reader) ReadTable(path string) (*table.Table, error) {
	fileType := "xlsx"
	if strings.ToLower(filepath.Ext(path)) == ".csv" {
		fileType = "csv"
	}
	log.Printf("[DataReader] Starting to read %s file: %s", fileType, path)

	// Check if file exists
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, fmt.Errorf("%s file not found: %s", strings.ToUpper(fileType), path)
	}

	var rows [][]string
	var err error
	switch fileType {
	case "csv":
		rows, err = readCSVRows(path)
	default:
		rows, err = readExcelRows(path)
	}
	if err != nil {
		return nil, err
	}

	if len(rows) < 2 {
		return nil, fmt.Errorf("%s file must have at least a header row and one data row",
			strings.ToUpper(fileType))
	}

	return buildTable(fileType, rows)
}

// readExcelRows reads raw cells from Sheet1
func readExcelRows(path string) ([][]string, error) {
	startTime := time.Now()
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open Excel file: %w", err)
	}
	defer f.Close()
	fileOpenTime := time.Since(startTime)
	log.Printf("[DataReader] Excel file opened in %.2fms", float64(fileOpenTime.Nanoseconds())/1e6)

	// Always use Sheet1
	readStart := time.Now()
	rows, err := f.GetRows("Sheet1")
	if err != nil {
		return nil, fmt.Errorf("failed to read Sheet1: %w", err)
	}
	readTime := time.Since(readStart)
	log.Printf("[DataReader] Sheet1 read in %.2fms (%d rows)", float64(readTime.Nanoseconds())/1e6, len(rows))

	return rows, nil
}

// readCSVRows reads raw cells from a CSV file
func readCSVRows(path string) ([][]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open CSV file: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	readStart := time.Now()
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV file: %w", err)
	}
	readTime := time.Since(readStart)
	log.Printf("[DataReader] CSV file read in %.2fms (%d rows)", float64(readTime.Nanoseconds())/1e6, len(rows))

	return rows, nil
}

// buildTable converts raw string rows into a typed table
func buildTable(fileType string, rows [][]string) (*table.Table, error) {
	// Extract headers from first row
	headerRow := rows[0]
	headers := make([]string, len(headerRow))
	for i, header := range headerRow {
		headers[i] = strings.TrimSpace(header)
	}

	// Cells in column-major order, padded so short rows read as empty cells
	cells := make([][]string, len(headers))
	for j := range cells {
		cells[j] = make([]string, len(rows)-1)
	}
	for i := 1; i < len(rows); i++ {
		for j := range headers {
			if j < len(rows[i]) {
				cells[j][i-1] = strings.TrimSpace(rows[i][j])
			}
		}
	}

	cols := make([]table.Column, len(headers))
	kinds := make([]string, len(headers))
	for j, header := range headers {
		if isNumericColumn(cells[j]) {
			cols[j] = table.NewNumericColumn(header, toNumeric(cells[j]))
		} else {
			cols[j] = table.NewFactorColumn(header, cells[j])
		}
		kinds[j] = fmt.Sprintf("%s=%s", header, cols[j].Kind())
	}

	tbl, err := table.New(cols...)
	if err != nil {
		return nil, err
	}

	log.Printf("[DataReader] %s file processed (%d columns, %d rows): %s",
		strings.ToUpper(fileType), tbl.NCols(), tbl.NRows(), strings.Join(kinds, ", "))

	return tbl, nil
}

// isNumericColumn decides whether a column of raw cells reads as numeric
func isNumericColumn(values []string) bool {
	nonEmpty := 0
	parsed := 0
	unique := make(map[string]bool)

	for _, v := range values {
		if v == "" {
			continue
		}
		nonEmpty++
		unique[v] = true
		if _, err := strconv.ParseFloat(v, 64); err == nil {
			parsed++
		}
	}

	if nonEmpty == 0 {
		return false
	}

	// Few distinct values relative to rows means an encoded category
	uniqueRatio := float64(len(unique)) / float64(nonEmpty)
	if uniqueRatio < categoricalRatioLimit && len(unique) <= categoricalUniqueMax {
		return false
	}

	return float64(parsed)/float64(nonEmpty) >= numericThreshold
}

// toNumeric parses cells to float64; empty and unparsable cells become NaN
func toNumeric(values []string) []float64 {
	out := make([]float64, len(values))
	for i, v := range values {
		parsed, err := strconv.ParseFloat(v, 64)
		if v == "" || err != nil {
			out[i] = math.NaN()
			continue
		}
		out[i] = parsed
	}
	return out
}
