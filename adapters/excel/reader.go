// Package excel reads measurement columns from spreadsheet files so
// analyses can run directly on researcher-supplied data.
package excel

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
)

// GroupReader extracts named numeric columns from Excel and CSV files.
type GroupReader struct {
	filePath string
	fileType string // "xlsx" or "csv"
}

// NewGroupReader creates a reader for the given file, picking the format
// from the extension.
func NewGroupReader(filePath string) *GroupReader {
	fileType := "xlsx"
	if strings.ToLower(filepath.Ext(filePath)) == ".csv" {
		fileType = "csv"
	}
	return &GroupReader{filePath: filePath, fileType: fileType}
}

// ReadColumns returns the numeric values under each requested header, in
// file order. Blank cells are skipped; any other non-numeric cell is an
// error. Missing headers are an error.
func (r *GroupReader) ReadColumns(headers ...string) ([][]float64, error) {
	if _, err := os.Stat(r.filePath); os.IsNotExist(err) {
		return nil, fmt.Errorf("data file not found: %s", r.filePath)
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
	if len(rows) < 2 {
		return nil, fmt.Errorf("data file must have a header row and at least one data row")
	}

	return extractColumns(rows, headers)
}

func (r *GroupReader) readExcelRows() ([][]string, error) {
	f, err := excelize.OpenFile(r.filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open Excel file: %w", err)
	}
	defer f.Close()

	rows, err := f.GetRows(f.GetSheetName(0))
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet: %w", err)
	}
	return rows, nil
}

func (r *GroupReader) readCSVRows() ([][]string, error) {
	file, err := os.Open(r.filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open CSV file: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV file: %w", err)
	}
	return rows, nil
}

func extractColumns(rows [][]string, headers []string) ([][]float64, error) {
	header := rows[0]
	indices := make([]int, len(headers))
	for i, want := range headers {
		indices[i] = -1
		for j, got := range header {
			if strings.EqualFold(strings.TrimSpace(got), want) {
				indices[i] = j
				break
			}
		}
		if indices[i] == -1 {
			return nil, fmt.Errorf("column %q not found in header row", want)
		}
	}

	out := make([][]float64, len(headers))
	for i := range out {
		out[i] = []float64{}
	}
	for rowNum, row := range rows[1:] {
		for i, col := range indices {
			if col >= len(row) {
				continue
			}
			cell := strings.TrimSpace(row[col])
			if cell == "" {
				continue
			}
			v, err := strconv.ParseFloat(cell, 64)
			if err != nil {
				return nil, fmt.Errorf("row %d, column %q: non-numeric value %q", rowNum+2, headers[i], cell)
			}
			out[i] = append(out[i], v)
		}
	}
	return out, nil
}
