package reconcile

import (
	"reflect"
	"testing"

	"github.com/openconsult/consultsum/internal/model"
)

func TestParseBullets_ToleratesMalformedInput(t *testing.T) {
	u := stanceSplitUniverse(1, 0)

	if got := ParseBullets("not a list", u); got != nil {
		t.Errorf("non-list input should read as empty, got %v", got)
	}
	if got := ParseBullets(nil, u); got != nil {
		t.Errorf("nil input should read as empty, got %v", got)
	}

	raw := []any{
		map[string]any{"text": "   "},            // blank text: dropped
		"bare text bullet",                       // coerced to text-only bullet
		42.0,                                     // numbers coerce too
		true,                                     // booleans do not
		map[string]any{"text": "ok", "evidence_ids": "wrong type"},
	}
	got := ParseBullets(raw, u)
	if len(got) != 3 {
		t.Fatalf("expected 3 bullets, got %d: %v", len(got), got)
	}
	if got[0].Text != "bare text bullet" || got[1].Text != "42" || got[2].Text != "ok" {
		t.Errorf("unexpected bullet texts: %v", got)
	}
	if got[2].EvidenceIDs != nil {
		t.Errorf("wrong-typed evidence_ids should read as empty, got %v", got[2].EvidenceIDs)
	}
}

func TestParseBullets_FiltersUnknownEvidence(t *testing.T) {
	u := stanceSplitUniverse(1, 1)

	raw := []any{map[string]any{
		"text":         "A claim",
		"evidence_ids": []any{"S1:Q01", "unknown:Q99", 7.0},
	}}
	got := ParseBullets(raw, u)
	if len(got) != 1 {
		t.Fatalf("expected 1 bullet, got %d", len(got))
	}
	if !reflect.DeepEqual(got[0].EvidenceIDs, []string{"S1:Q01"}) {
		t.Errorf("EvidenceIDs = %v, want [S1:Q01]", got[0].EvidenceIDs)
	}
}

// Empty declared evidence falls back to lexical matching on the bullet text.
func TestReconcileBullets_LexicalFallback(t *testing.T) {
	records := []model.Record{
		testRecord("R1", "Q01", "", "We strongly support increasing funding for this programme"),
	}
	u := NewUniverse(records)

	raw := []any{map[string]any{"text": "Increase funding", "evidence_ids": []any{}}}
	got := ReconcileBullets(raw, u)
	if len(got) != 1 {
		t.Fatalf("expected 1 bullet, got %d", len(got))
	}
	bullet := got[0]
	if len(bullet.EvidenceIDs) == 0 || bullet.EvidenceIDs[0] != "R1:Q01" {
		t.Errorf("expected lexical fallback to find R1:Q01, got %v", bullet.EvidenceIDs)
	}
	if !reflect.DeepEqual(bullet.SupportingResponseIDs, []string{"R1"}) {
		t.Errorf("SupportingResponseIDs = %v, want [R1]", bullet.SupportingResponseIDs)
	}
	if bullet.Count != 1 {
		t.Errorf("Count = %d, want 1", bullet.Count)
	}
}

// Unknown declared evidence with no lexical overlap leaves the bullet with
// no evidence and a zero count.
func TestReconcileBullets_NoEvidenceNoMatch(t *testing.T) {
	records := []model.Record{
		testRecord("R1", "Q01", "", "Completely unrelated subject matter"),
	}
	u := NewUniverse(records)

	raw := []any{map[string]any{
		"text":         "zebra xylophone quartz",
		"evidence_ids": []any{"unknown:Q99"},
	}}
	got := ReconcileBullets(raw, u)
	if len(got) != 1 {
		t.Fatalf("expected 1 bullet, got %d", len(got))
	}
	if len(got[0].EvidenceIDs) != 0 {
		t.Errorf("expected no evidence, got %v", got[0].EvidenceIDs)
	}
	if got[0].Count != 0 {
		t.Errorf("Count = %d, want 0", got[0].Count)
	}
}

func TestReconcileBullets_DeclaredCountWins(t *testing.T) {
	u := stanceSplitUniverse(2, 0)

	raw := []any{map[string]any{
		"text":         "Point",
		"evidence_ids": []any{"S1:Q01", "S2:Q01"},
		"count":        9.0,
	}}
	got := ReconcileBullets(raw, u)
	if got[0].Count != 9 {
		t.Errorf("Count = %d, want declared 9", got[0].Count)
	}
}

// Identical texts with different declared evidence are reconciled
// independently; there is no cross-bullet deduplication.
func TestReconcileBullets_NoCrossBulletDeduplication(t *testing.T) {
	u := stanceSplitUniverse(2, 0)

	raw := []any{
		map[string]any{"text": "Same claim", "evidence_ids": []any{"S1:Q01"}},
		map[string]any{"text": "Same claim", "evidence_ids": []any{"S2:Q01"}},
	}
	got := ReconcileBullets(raw, u)
	if len(got) != 2 {
		t.Fatalf("expected 2 bullets, got %d", len(got))
	}
	if reflect.DeepEqual(got[0].EvidenceIDs, got[1].EvidenceIDs) {
		t.Errorf("bullets should keep their own evidence: %v vs %v", got[0].EvidenceIDs, got[1].EvidenceIDs)
	}
}

// All reconciled evidence IDs must exist in the supplied universe.
func TestReconcileBullets_EvidenceValidityInvariant(t *testing.T) {
	u := stanceSplitUniverse(3, 3)

	raw := []any{
		map[string]any{"text": "proposal feedback", "evidence_ids": []any{"bogus:Q01", "S1:Q01"}},
		"welcome proposal",
	}
	for _, bullet := range ReconcileBullets(raw, u) {
		for _, id := range bullet.EvidenceIDs {
			if !u.Contains(id) {
				t.Errorf("bullet %q cites id %q outside the universe", bullet.Text, id)
			}
		}
	}
}
