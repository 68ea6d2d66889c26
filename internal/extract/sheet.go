package extract

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/xuri/excelize/v2"
)

// sheetExtractor renders every sheet of a workbook as pipe-delimited
// rows under a [TABLES] tag.
type sheetExtractor struct{}

func (e *sheetExtractor) Extract(_ context.Context, path string) (string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to open workbook: %w", err)
	}
	defer func() { _ = f.Close() }()

	var sb strings.Builder
	sb.WriteString("[TABLES]\n")

	for _, sheet := range f.GetSheetList() {
		rows, err := f.GetRows(sheet)
		if err != nil {
			return "", fmt.Errorf("failed to read sheet %s: %w", sheet, err)
		}

		sb.WriteString(sheet)
		sb.WriteString("\n")
		writeRows(&sb, rows)
		sb.WriteString("\n")
	}

	return sb.String(), nil
}

// csvExtractor renders a CSV file as pipe-delimited rows under a
// [TABLES] tag.
type csvExtractor struct{}

func (e *csvExtractor) Extract(_ context.Context, path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open csv: %w", err)
	}
	defer func() { _ = f.Close() }()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1

	var rows [][]string
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", fmt.Errorf("failed to parse csv: %w", err)
		}
		rows = append(rows, record)
	}

	var sb strings.Builder
	sb.WriteString("[TABLES]\n")
	writeRows(&sb, rows)

	return sb.String(), nil
}

func writeRows(sb *strings.Builder, rows [][]string) {
	for _, row := range rows {
		nonEmpty := false
		for _, cell := range row {
			if strings.TrimSpace(cell) != "" {
				nonEmpty = true
				break
			}
		}
		if !nonEmpty {
			continue
		}
		sb.WriteString(strings.Join(row, " | "))
		sb.WriteString("\n")
	}
}
