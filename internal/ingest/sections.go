package ingest

import (
	"archive/zip"
	"encoding/xml"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/openconsult/consultsum/internal/model"
)

// LoadSectionMapping reads the section workbook and aligns it with the CSV
// columns, returning section names keyed by column index. Preferred alignment
// is strict row order (the mapping file mirrors the CSV header order); when
// that fails a header+occurrence fallback is used. Any read error yields an
// empty mapping so ingestion proceeds without sections.
func LoadSectionMapping(columns []model.ColumnSpec, path string) map[int]string {
	if path == "" {
		return map[int]string{}
	}
	if _, err := os.Stat(path); err != nil {
		return map[int]string{}
	}

	rows, err := readXLSXRows(path)
	if err != nil || len(rows) <= 1 {
		return map[int]string{}
	}
	dataRows := rows[1:]

	if mapping := alignSectionsByIndex(columns, dataRows); len(mapping) > 0 {
		return mapping
	}
	return alignSectionsByHeaderOccurrence(columns, dataRows)
}

// alignSectionsByIndex aligns by strict row order and exact header match.
func alignSectionsByIndex(columns []model.ColumnSpec, dataRows [][]string) map[int]string {
	if len(dataRows) < len(columns) {
		return map[int]string{}
	}

	mapping := map[int]string{}
	for i, col := range columns {
		row := dataRows[i]

		var mappedQuestion string
		if len(row) > 0 {
			mappedQuestion = cleanText(row[0])
		}
		if mappedQuestion != cleanText(col.RawName) {
			return map[int]string{}
		}

		var section string
		if len(row) > 1 {
			section = cleanText(row[1])
		}
		if section != "" {
			mapping[col.Index] = section
		}
	}
	return mapping
}

// alignSectionsByHeaderOccurrence aligns using (header text, occurrence
// number) keys, tolerating reordered or partial mapping files.
func alignSectionsByHeaderOccurrence(columns []model.ColumnSpec, dataRows [][]string) map[int]string {
	type key struct {
		question string
		n        int
	}

	occMap := map[key]string{}
	rowOcc := map[string]int{}
	for _, row := range dataRows {
		var question, section string
		if len(row) > 0 {
			question = cleanText(row[0])
		}
		if len(row) > 1 {
			section = cleanText(row[1])
		}
		if question == "" {
			continue
		}
		rowOcc[question]++
		occMap[key{question, rowOcc[question]}] = section
	}

	out := map[int]string{}
	colOcc := map[string]int{}
	for _, col := range columns {
		question := cleanText(col.RawName)
		colOcc[question]++
		if section := cleanText(occMap[key{question, colOcc[question]}]); section != "" {
			out[col.Index] = section
		}
	}
	return out
}

type xlsxWorkbook struct {
	Sheets []xlsxSheet `xml:"sheets>sheet"`
}

type xlsxSheet struct {
	Name  string `xml:"name,attr"`
	RelID string `xml:"http://schemas.openxmlformats.org/officeDocument/2006/relationships id,attr"`
}

type xlsxRelationships struct {
	Rels []xlsxRelationship `xml:"Relationship"`
}

type xlsxRelationship struct {
	ID     string `xml:"Id,attr"`
	Target string `xml:"Target,attr"`
}

type xlsxSharedStrings struct {
	Items []xlsxStringItem `xml:"si"`
}

type xlsxStringItem struct {
	Text string   `xml:"t"`
	Runs []string `xml:"r>t"`
}

func (s xlsxStringItem) value() string {
	if len(s.Runs) > 0 {
		return strings.Join(s.Runs, "")
	}
	return s.Text
}

type xlsxWorksheet struct {
	Rows []xlsxRow `xml:"sheetData>row"`
}

type xlsxRow struct {
	Cells []xlsxCell `xml:"c"`
}

type xlsxCell struct {
	Type   string          `xml:"t,attr"`
	Value  string          `xml:"v"`
	Inline *xlsxStringItem `xml:"is"`
}

// readXLSXRows reads the first worksheet of an XLSX workbook as string rows.
func readXLSXRows(path string) ([][]string, error) {
	archive, err := zip.OpenReader(path)
	if err != nil {
		return nil, err
	}
	defer archive.Close()

	shared, err := readSharedStrings(archive)
	if err != nil {
		return nil, err
	}

	var workbook xlsxWorkbook
	if err := readZipXML(archive, "xl/workbook.xml", &workbook); err != nil {
		return nil, err
	}
	var rels xlsxRelationships
	if err := readZipXML(archive, "xl/_rels/workbook.xml.rels", &rels); err != nil {
		return nil, err
	}
	if len(workbook.Sheets) == 0 {
		return nil, nil
	}

	var target string
	for _, rel := range rels.Rels {
		if rel.ID == workbook.Sheets[0].RelID {
			target = rel.Target
			break
		}
	}
	if target == "" {
		return nil, nil
	}

	var sheet xlsxWorksheet
	if err := readZipXML(archive, "xl/"+target, &sheet); err != nil {
		return nil, err
	}

	rows := make([][]string, 0, len(sheet.Rows))
	for _, row := range sheet.Rows {
		values := make([]string, 0, len(row.Cells))
		for _, cell := range row.Cells {
			values = append(values, cellValue(cell, shared))
		}
		rows = append(rows, values)
	}
	return rows, nil
}

func readSharedStrings(archive *zip.ReadCloser) ([]string, error) {
	var table xlsxSharedStrings
	if err := readZipXML(archive, "xl/sharedStrings.xml", &table); err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	out := make([]string, len(table.Items))
	for i, item := range table.Items {
		out[i] = item.value()
	}
	return out, nil
}

func readZipXML(archive *zip.ReadCloser, name string, v any) error {
	f, err := archive.Open(name)
	if err != nil {
		return err
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return err
	}
	return xml.Unmarshal(data, v)
}

func cellValue(cell xlsxCell, shared []string) string {
	if cell.Value != "" {
		if cell.Type == "s" {
			idx, err := strconv.Atoi(cell.Value)
			if err != nil || idx < 0 || idx >= len(shared) {
				return ""
			}
			return shared[idx]
		}
		return cell.Value
	}
	if cell.Inline != nil {
		return cell.Inline.value()
	}
	return ""
}
