package ingest

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "responses.csv")
	content := "\ufeffResponse ID,Comment,Comment\n" +
		"R1,  first , second\n" +
		"R2,only\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	data, err := LoadCSV(path)
	if err != nil {
		t.Fatal(err)
	}

	if len(data.Columns) != 3 {
		t.Fatalf("expected 3 columns, got %d", len(data.Columns))
	}
	if data.Columns[0].UniqueName != "Response ID" {
		t.Errorf("BOM should be stripped from the first header, got %q", data.Columns[0].UniqueName)
	}
	if data.Columns[1].UniqueName != "Comment" || data.Columns[2].UniqueName != "Comment__2" {
		t.Errorf("duplicate headers should be suffixed, got %q and %q",
			data.Columns[1].UniqueName, data.Columns[2].UniqueName)
	}

	if len(data.Rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(data.Rows))
	}
	if got := data.Rows[0]["Comment"]; got != "first" {
		t.Errorf("cells should be trimmed, got %q", got)
	}
	if got, ok := data.Rows[1]["Comment__2"]; !ok || got != "" {
		t.Errorf("short rows should be padded with empty cells, got %q (present=%v)", got, ok)
	}
}

func TestLoadCSV_MissingFile(t *testing.T) {
	if _, err := LoadCSV(filepath.Join(t.TempDir(), "absent.csv")); err == nil {
		t.Error("expected an error for a missing file")
	}
}
