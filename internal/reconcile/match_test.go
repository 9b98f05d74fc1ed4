package reconcile

import (
	"reflect"
	"testing"

	"github.com/openconsult/consultsum/internal/model"
)

func TestTokenize(t *testing.T) {
	tokens := Tokenize("Please provide reasoning: increase FUNDING for the programme!")

	for _, want := range []string{"increase", "funding", "programme"} {
		if _, ok := tokens[want]; !ok {
			t.Errorf("expected token %q in %v", want, tokens)
		}
	}
	for _, dropped := range []string{"please", "provide", "reasoning", "the", "for"} {
		if _, ok := tokens[dropped]; ok {
			t.Errorf("stopword %q should have been dropped", dropped)
		}
	}
	// Tokens of length <= 2 are dropped.
	if _, ok := Tokenize("it is an ok id")["ok"]; ok {
		t.Error("short tokens should have been dropped")
	}
}

func TestMatchRecords_FindsLexicalOverlap(t *testing.T) {
	records := []model.Record{
		testRecord("R1", "Q01", "", "We strongly support increasing funding for this programme"),
		testRecord("R2", "Q01", "", "No relevant content here at all"),
	}
	u := NewUniverse(records)

	got := u.MatchRecords("Increase funding", 8)
	if len(got) == 0 {
		t.Fatal("expected a lexical match")
	}
	if got[0] != "R1:Q01" {
		t.Errorf("expected R1:Q01 first, got %v", got)
	}
}

func TestMatchRecords_EmptyQueryTokens(t *testing.T) {
	u := stanceSplitUniverse(2, 0)

	// All query words are stopwords or too short.
	if got := u.MatchRecords("please provide the", 8); got != nil {
		t.Errorf("expected no matches for an empty token set, got %v", got)
	}
}

func TestMatchRecords_TopKAndOrdering(t *testing.T) {
	records := []model.Record{
		testRecord("R1", "Q01", "", "budget allocation and network investment planning"),
		testRecord("R2", "Q01", "", "network investment"),
		testRecord("R3", "Q01", "", "investment"),
	}
	u := NewUniverse(records)

	got := u.MatchRecords("network investment planning budget", 2)
	if len(got) != 2 {
		t.Fatalf("expected 2 matches, got %v", got)
	}
	// R1 overlaps on all four tokens, R2 on two.
	want := []string{"R1:Q01", "R2:Q01"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("MatchRecords = %v, want %v", got, want)
	}
}

func TestMatchRecords_RescuesBelowThreshold(t *testing.T) {
	// One shared token out of a large query set scores below 0.08, but the
	// top 3 are still returned because some lexical signal exists.
	query := "alpha beta gamma delta epsilon zeta eta theta iota kappa lambda omicron sigma funding"
	records := []model.Record{
		testRecord("R1", "Q01", "", "funding matters"),
	}
	u := NewUniverse(records)

	got := u.MatchRecords(query, 8)
	if !reflect.DeepEqual(got, []string{"R1:Q01"}) {
		t.Errorf("expected threshold rescue to return R1:Q01, got %v", got)
	}
}

func TestMatchRecords_Deterministic(t *testing.T) {
	u := stanceSplitUniverse(4, 4)

	first := u.MatchRecords("proposal welcome oppose", 8)
	second := u.MatchRecords("proposal welcome oppose", 8)
	if !reflect.DeepEqual(first, second) {
		t.Errorf("matching is not deterministic: %v vs %v", first, second)
	}
}
