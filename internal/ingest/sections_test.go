package ingest

import (
	"archive/zip"
	"os"
	"path/filepath"
	"testing"

	"github.com/openconsult/consultsum/internal/model"
)

// writeTestXLSX builds a minimal single-sheet workbook with a header row and
// one (question, section) row per entry.
func writeTestXLSX(t *testing.T, rows [][2]string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "sections.xlsx")
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	w := zip.NewWriter(f)
	write := func(name, content string) {
		entry, err := w.Create(name)
		if err != nil {
			t.Fatal(err)
		}
		if _, err := entry.Write([]byte(content)); err != nil {
			t.Fatal(err)
		}
	}

	write("xl/workbook.xml", `<?xml version="1.0"?>
<workbook xmlns="http://schemas.openxmlformats.org/spreadsheetml/2006/main"
 xmlns:r="http://schemas.openxmlformats.org/officeDocument/2006/relationships">
 <sheets><sheet name="Mapping" sheetId="1" r:id="rId1"/></sheets>
</workbook>`)
	write("xl/_rels/workbook.xml.rels", `<?xml version="1.0"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">
 <Relationship Id="rId1" Target="worksheets/sheet1.xml"/>
</Relationships>`)

	sheet := `<?xml version="1.0"?>
<worksheet xmlns="http://schemas.openxmlformats.org/spreadsheetml/2006/main"><sheetData>
<row><c t="inlineStr"><is><t>Question</t></is></c><c t="inlineStr"><is><t>Section</t></is></c></row>`
	for _, row := range rows {
		sheet += `<row><c t="inlineStr"><is><t>` + row[0] + `</t></is></c>` +
			`<c t="inlineStr"><is><t>` + row[1] + `</t></is></c></row>`
	}
	sheet += `</sheetData></worksheet>`
	write("xl/worksheets/sheet1.xml", sheet)

	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadSectionMapping_RowOrderAlignment(t *testing.T) {
	columns := []model.ColumnSpec{
		{UniqueName: "Response ID", RawName: "Response ID", Index: 0},
		{UniqueName: "Q-A", RawName: "Q-A", Index: 1},
	}
	path := writeTestXLSX(t, [][2]string{
		{"Response ID", ""},
		{"Q-A", "Strategic Investment Need"},
	})

	got := LoadSectionMapping(columns, path)
	if len(got) != 1 || got[1] != "Strategic Investment Need" {
		t.Errorf("LoadSectionMapping = %v, want index 1 mapped", got)
	}
}

func TestLoadSectionMapping_HeaderOccurrenceFallback(t *testing.T) {
	// Row order does not mirror the columns, so alignment falls back to
	// header text with occurrence counting for the duplicate.
	columns := []model.ColumnSpec{
		{UniqueName: "Q-A", RawName: "Q-A", Index: 0},
		{UniqueName: "Q-B", RawName: "Q-B", Index: 1},
		{UniqueName: "Q-B__2", RawName: "Q-B", Index: 2},
	}
	path := writeTestXLSX(t, [][2]string{
		{"Q-B", "First"},
		{"Q-B", "Second"},
	})

	got := LoadSectionMapping(columns, path)
	if got[1] != "First" || got[2] != "Second" {
		t.Errorf("occurrence fallback = %v, want {1:First 2:Second}", got)
	}
	if _, ok := got[0]; ok {
		t.Errorf("unmapped column should be absent, got %v", got)
	}
}

func TestLoadSectionMapping_MissingOrEmptyPath(t *testing.T) {
	columns := []model.ColumnSpec{{UniqueName: "A", RawName: "A", Index: 0}}

	if got := LoadSectionMapping(columns, ""); len(got) != 0 {
		t.Errorf("empty path should yield an empty mapping, got %v", got)
	}
	missing := filepath.Join(t.TempDir(), "absent.xlsx")
	if got := LoadSectionMapping(columns, missing); len(got) != 0 {
		t.Errorf("missing file should yield an empty mapping, got %v", got)
	}
}

func TestLoadSectionMapping_UnreadableFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.xlsx")
	if err := os.WriteFile(path, []byte("not a zip"), 0o644); err != nil {
		t.Fatal(err)
	}

	columns := []model.ColumnSpec{{UniqueName: "A", RawName: "A", Index: 0}}
	if got := LoadSectionMapping(columns, path); len(got) != 0 {
		t.Errorf("unreadable workbook should yield an empty mapping, got %v", got)
	}
}
