package reconcile

import (
	"encoding/json"
	"testing"
)

func TestPayload_List(t *testing.T) {
	var p Payload
	if got := p.List("anything"); got != nil {
		t.Errorf("nil payload should read as empty, got %v", got)
	}

	if err := json.Unmarshal([]byte(`{
		"main_points": ["a", "b"],
		"concerns": "not a list",
		"extra_unknown_key": {"ignored": true}
	}`), &p); err != nil {
		t.Fatal(err)
	}

	if got := p.List("main_points"); len(got) != 2 {
		t.Errorf("List(main_points) = %v, want 2 elements", got)
	}
	if got := p.List("concerns"); got != nil {
		t.Errorf("wrong-typed value should read as absent, got %v", got)
	}
	if got := p.List("missing"); got != nil {
		t.Errorf("missing key should read as absent, got %v", got)
	}
}

func TestPayload_Text(t *testing.T) {
	p := Payload{
		"headline": "  A headline  ",
		"stance":   12.0,
		"blank":    "   ",
		"wrong":    []any{"x"},
	}

	if got := p.Text("headline", ""); got != "A headline" {
		t.Errorf("Text(headline) = %q", got)
	}
	if got := p.Text("stance", ""); got != "12" {
		t.Errorf("numbers should coerce, got %q", got)
	}
	if got := p.Text("blank", "fallback"); got != "fallback" {
		t.Errorf("blank values should fall back, got %q", got)
	}
	if got := p.Text("wrong", "fallback"); got != "fallback" {
		t.Errorf("non-scalar values should fall back, got %q", got)
	}
	if got := p.Text("missing", "mixed"); got != "mixed" {
		t.Errorf("missing keys should fall back, got %q", got)
	}
}

func TestIntField(t *testing.T) {
	obj := map[string]any{
		"count":    4.0,
		"declared": "7",
		"negative": -5.0,
		"negstr":   "-3",
		"garbage":  "many",
	}

	if got := intField(obj, "count"); got != 4 {
		t.Errorf("intField(count) = %d, want 4", got)
	}
	if got := intField(obj, "declared"); got != 7 {
		t.Errorf("numeric strings should parse, got %d", got)
	}
	if got := intField(obj, "negative"); got != 0 {
		t.Errorf("negative counts should clamp to 0, got %d", got)
	}
	if got := intField(obj, "negstr"); got != 0 {
		t.Errorf("negative string counts should clamp to 0, got %d", got)
	}
	if got := intField(obj, "garbage"); got != 0 {
		t.Errorf("unparsable values should read as 0, got %d", got)
	}
	if got := intField(obj, "missing"); got != 0 {
		t.Errorf("missing keys should read as 0, got %d", got)
	}
}

func TestStringLists(t *testing.T) {
	raw := []any{"a", 3.0, true, nil, "b"}

	if got := stringList(raw); len(got) != 3 || got[1] != "3" {
		t.Errorf("stringList = %v, want [a 3 b]", got)
	}
	if got := stringOnlyList(raw); len(got) != 2 {
		t.Errorf("stringOnlyList = %v, want [a b]", got)
	}
	if got := stringList("nope"); got != nil {
		t.Errorf("non-list should read as empty, got %v", got)
	}
}
