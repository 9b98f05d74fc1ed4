package ingest

import (
	"encoding/csv"
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/openconsult/consultsum/internal/model"
)

var whitespaceRE = regexp.MustCompile(`\s+`)

// LoadCSV loads the consultation export into a normalized in-memory
// structure. Duplicate headers get "__N" suffixes and short rows are padded
// so every row exposes every column.
func LoadCSV(path string) (model.ConsultationData, error) {
	f, err := os.Open(path)
	if err != nil {
		return model.ConsultationData{}, fmt.Errorf("open csv: %w", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return model.ConsultationData{}, fmt.Errorf("parse csv %s: %w", path, err)
	}
	if len(records) == 0 {
		return model.ConsultationData{}, fmt.Errorf("csv %s has no header row", path)
	}

	columns := buildColumns(records[0])
	rows := make([]map[string]string, 0, len(records)-1)
	for _, record := range records[1:] {
		row := make(map[string]string, len(columns))
		for _, col := range columns {
			var cell string
			if col.Index < len(record) {
				cell = record[col.Index]
			}
			row[col.UniqueName] = strings.TrimSpace(cell)
		}
		rows = append(rows, row)
	}

	return model.ConsultationData{Columns: columns, Rows: rows}, nil
}

// buildColumns creates unique column specs from the raw header row.
func buildColumns(rawHeaders []string) []model.ColumnSpec {
	counts := make(map[string]int, len(rawHeaders))
	columns := make([]model.ColumnSpec, 0, len(rawHeaders))

	for idx, raw := range rawHeaders {
		normalized := cleanText(raw)
		counts[normalized]++

		unique := normalized
		if n := counts[normalized]; n > 1 {
			unique = fmt.Sprintf("%s__%d", normalized, n)
		}
		columns = append(columns, model.ColumnSpec{
			UniqueName: unique,
			RawName:    normalized,
			Index:      idx,
		})
	}
	return columns
}

// cleanText collapses whitespace and strips BOM/zero-width markers that
// survey exports tend to carry.
func cleanText(text string) string {
	text = strings.ReplaceAll(text, "\ufeff", "")
	text = strings.ReplaceAll(text, "\u200b", "")
	return strings.TrimSpace(whitespaceRE.ReplaceAllString(text, " "))
}
