package service

import (
	"bytes"
	"encoding/csv"
	"io"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
)

// RawSheetRow is one data row as read from the file: the 1-based position in
// the original spreadsheet plus the raw cell strings. Row numbers are never
// compacted; if blank lines are dropped the numbering keeps its gaps so that
// every downstream report points at the real line in the caller's file.
type RawSheetRow struct {
	Number int
	Cells  []string
}

// ReadSheet decodes an uploaded spreadsheet into a header row plus ordered
// data rows. The format is picked from the file extension: .xlsx via
// excelize, .csv via encoding/csv. Row 1 must be the header; rows whose
// cells are all empty are dropped (their numbers stay reserved). Any failure
// to produce rows is a ParseError.
func ReadSheet(fileName string, data []byte) ([]string, []RawSheetRow, error) {
	switch strings.ToLower(filepath.Ext(fileName)) {
	case ".xlsx":
		return readXLSX(data)
	case ".csv":
		return readCSV(data)
	default:
		return nil, nil, parseErrorf("unsupported file type %q, expected .xlsx or .csv", filepath.Ext(fileName))
	}
}

func readXLSX(data []byte) ([]string, []RawSheetRow, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, nil, parseErrorf("cannot open workbook: %v", err)
	}
	defer f.Close()

	sheetName := f.GetSheetName(0)
	if sheetName == "" {
		return nil, nil, parseErrorf("workbook has no sheets")
	}

	rows, err := f.GetRows(sheetName)
	if err != nil {
		return nil, nil, parseErrorf("cannot read sheet %q: %v", sheetName, err)
	}

	return splitHeader(rows)
}

// readCSV numbers each record by its actual line in the file, via FieldPos.
// encoding/csv silently swallows bare empty lines, so counting records would
// renumber everything after one; positions from the reader keep the gaps.
func readCSV(data []byte) ([]string, []RawSheetRow, error) {
	reader := csv.NewReader(bytes.NewReader(data))
	reader.FieldsPerRecord = -1

	var header []string
	var rows []RawSheetRow
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, nil, parseErrorf("malformed CSV: %v", err)
		}
		line, _ := reader.FieldPos(0)
		if header == nil {
			header = record
			continue
		}
		if blankRow(record) {
			continue
		}
		rows = append(rows, RawSheetRow{Number: line, Cells: record})
	}

	if header == nil {
		return nil, nil, parseErrorf("file is empty")
	}
	if len(rows) == 0 {
		return nil, nil, parseErrorf("file has a header but no data rows")
	}
	return header, rows, nil
}

// splitHeader peels off row 1 as the header and numbers the data rows from 2
// upward, matching what the operator sees in their spreadsheet program.
func splitHeader(rows [][]string) ([]string, []RawSheetRow, error) {
	if len(rows) == 0 {
		return nil, nil, parseErrorf("file is empty")
	}
	if len(rows) < 2 {
		return nil, nil, parseErrorf("file has a header but no data rows")
	}

	header := rows[0]
	data := make([]RawSheetRow, 0, len(rows)-1)
	for i, cells := range rows[1:] {
		if blankRow(cells) {
			continue
		}
		data = append(data, RawSheetRow{Number: i + 2, Cells: cells})
	}
	if len(data) == 0 {
		return nil, nil, parseErrorf("file has a header but no data rows")
	}

	return header, data, nil
}

func blankRow(cells []string) bool {
	for _, c := range cells {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

// validateHeader checks that the first requiredCols columns of the uploaded
// header match the published template (the starred suffix is cosmetic).
func validateHeader(header, expected []string, requiredCols int) error {
	if len(header) < requiredCols {
		return parseErrorf("header row does not match the import template, expected columns like %q", strings.Join(expected, ", "))
	}
	for i := 0; i < requiredCols; i++ {
		want := strings.TrimSuffix(expected[i], "*")
		if !strings.Contains(strings.TrimSpace(header[i]), want) {
			return parseErrorf("header column %d is %q, expected %q; download a fresh template", i+1, header[i], expected[i])
		}
	}
	return nil
}
