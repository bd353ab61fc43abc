package excel

import (
	"encoding/csv"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"clusterperm/domain/field"
	"clusterperm/internal"
	"clusterperm/ports"
)

var _ ports.GroupReader = (*GroupReader)(nil)

// GroupReader loads one group of observations from an .xlsx or .csv file.
// Rows are observations, columns are flattened locations. A leading header
// row of non-numeric labels is skipped; empty cells and non-numeric values
// inside the body become NaN.
type GroupReader struct {
	filePath string
	fileType string // "xlsx" or "csv"
	sheet    string
	log      *internal.Logger
}

// NewGroupReader creates a reader; file type follows the extension
func NewGroupReader(filePath string) *GroupReader {
	ext := strings.ToLower(filepath.Ext(filePath))
	fileType := "xlsx"
	if ext == ".csv" {
		fileType = "csv"
	}
	return &GroupReader{
		filePath: filePath,
		fileType: fileType,
		sheet:    "Sheet1",
		log:      internal.DefaultLogger.Named("GroupReader"),
	}
}

// WithSheet selects a worksheet other than Sheet1
func (r *GroupReader) WithSheet(sheet string) *GroupReader {
	r.sheet = sheet
	return r
}

// ReadGroup reads the file into a group with shape [n_columns]
func (r *GroupReader) ReadGroup(source string) (*field.Group, error) {
	if source != "" {
		r.filePath = source
		if strings.ToLower(filepath.Ext(source)) == ".csv" {
			r.fileType = "csv"
		} else {
			r.fileType = "xlsx"
		}
	}
	if _, err := os.Stat(r.filePath); os.IsNotExist(err) {
		return nil, fmt.Errorf("%s file not found: %s", strings.ToUpper(r.fileType), r.filePath)
	}

	var rows [][]string
	var err error
	switch r.fileType {
	case "csv":
		rows, err = r.readCSVRows()
	default:
		rows, err = r.readExcelRows()
	}
	if err != nil {
		return nil, err
	}
	return r.toGroup(rows)
}

func (r *GroupReader) readExcelRows() ([][]string, error) {
	f, err := excelize.OpenFile(r.filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open Excel file: %w", err)
	}
	defer f.Close()

	rows, err := f.GetRows(r.sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %s: %w", r.sheet, err)
	}
	return rows, nil
}

func (r *GroupReader) readCSVRows() ([][]string, error) {
	f, err := os.Open(r.filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open CSV file: %w", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse CSV: %w", err)
	}
	return rows, nil
}

// toGroup converts raw cells to observations, skipping a header row when
// the first row contains any non-numeric cell.
func (r *GroupReader) toGroup(rows [][]string) (*field.Group, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("no rows in %s", r.filePath)
	}
	start := 0
	if isHeaderRow(rows[0]) {
		start = 1
	}
	body := rows[start:]
	if len(body) == 0 {
		return nil, fmt.Errorf("no observation rows in %s", r.filePath)
	}

	nCols := len(body[0])
	obs := make([][]float64, 0, len(body))
	for i, row := range body {
		if len(row) != nCols {
			return nil, fmt.Errorf("row %d has %d cells, expected %d", start+i+1, len(row), nCols)
		}
		values := make([]float64, nCols)
		for j, cell := range row {
			v, err := strconv.ParseFloat(strings.TrimSpace(cell), 64)
			if err != nil {
				v = math.NaN()
			}
			values[j] = v
		}
		obs = append(obs, values)
	}

	r.log.Debug("read %d observations x %d locations from %s", len(obs), nCols, r.filePath)
	return field.NewGroup([]int{nCols}, obs)
}

// isHeaderRow reports whether every cell fails numeric parsing
func isHeaderRow(row []string) bool {
	for _, cell := range row {
		cell = strings.TrimSpace(cell)
		if cell == "" {
			continue
		}
		if _, err := strconv.ParseFloat(cell, 64); err == nil {
			return false
		}
	}
	return true
}
