package importer

import (
	"encoding/csv"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"stock-hunter/pkg/utils"

	"github.com/xuri/excelize/v2"
)

// headerWords are first-cell values that mark a header row rather than data.
var headerWords = map[string]bool{
	"symbol":  true,
	"symbols": true,
	"ticker":  true,
	"tickers": true,
	"stock":   true,
	"code":    true,
}

// ReadSymbols extracts ticker symbols from the first column of a CSV, TSV or
// XLSX file. Symbols are trimmed, uppercased and de-duplicated in input
// order; an optional header row is skipped.
func ReadSymbols(filename string, r io.Reader) ([]string, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".csv", ".txt":
		return readDelimited(r, ',')
	case ".tsv":
		return readDelimited(r, '\t')
	case ".xlsx":
		return readExcel(r)
	default:
		return nil, fmt.Errorf("unsupported file format: %s", filename)
	}
}

func readDelimited(r io.Reader, delimiter rune) ([]string, error) {
	reader := csv.NewReader(r)
	reader.Comma = delimiter
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	var raw []string
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read symbol file: %w", err)
		}
		if len(row) == 0 {
			continue
		}
		raw = append(raw, row[0])
	}

	return cleanSymbols(raw), nil
}

func readExcel(r io.Reader) ([]string, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open excel file: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("excel file has no sheets")
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read excel sheet: %w", err)
	}

	var raw []string
	for _, row := range rows {
		if len(row) == 0 {
			continue
		}
		raw = append(raw, row[0])
	}

	return cleanSymbols(raw), nil
}

// cleanSymbols drops a leading header row, then normalizes and de-duplicates.
func cleanSymbols(raw []string) []string {
	if len(raw) > 0 && headerWords[strings.ToLower(strings.TrimSpace(raw[0]))] {
		raw = raw[1:]
	}
	return utils.DedupSymbols(raw)
}
