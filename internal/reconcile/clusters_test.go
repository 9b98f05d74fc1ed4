package reconcile

import (
	"encoding/json"
	"reflect"
	"testing"

	"github.com/openconsult/consultsum/internal/model"
)

// An empty candidate payload over a split universe yields one fallback
// cluster per populated stance bucket, largest first.
func TestEnrichClusters_EmptyPayloadFallsBackToStanceClusters(t *testing.T) {
	u := stanceSplitUniverse(5, 5)

	got := EnrichClusters(nil, u, "mainstream")
	if len(got) != 2 {
		t.Fatalf("expected 2 clusters, got %d", len(got))
	}

	// Equal sizes: the fixed enumeration order puts support before concern.
	if got[0].Stance != "support" || got[1].Stance != "concern" {
		t.Errorf("unexpected stance order: %q, %q", got[0].Stance, got[1].Stance)
	}
	for i, cluster := range got {
		if cluster.MemberCount != 5 {
			t.Errorf("cluster %d MemberCount = %d, want 5", i, cluster.MemberCount)
		}
		if len(cluster.EvidenceIDs) > 8 {
			t.Errorf("cluster %d has %d evidence ids, cap is 8", i, len(cluster.EvidenceIDs))
		}
		if cluster.Significance == "" {
			t.Errorf("cluster %d missing auto-cluster significance", i)
		}
	}
	if got[0].ClusterID != "mainstream_1" || got[1].ClusterID != "mainstream_2" {
		t.Errorf("unexpected cluster ids: %q, %q", got[0].ClusterID, got[1].ClusterID)
	}
	if got[0].Label != "Support viewpoint" {
		t.Errorf("Label = %q, want \"Support viewpoint\"", got[0].Label)
	}
}

func TestBuildFallbackClusters_OrdersBySizeDescending(t *testing.T) {
	u := stanceSplitUniverse(2, 6)

	got := BuildFallbackClusters(u, "minority")
	if len(got) != 2 {
		t.Fatalf("expected 2 clusters, got %d", len(got))
	}
	if got[0].Stance != "concern" || len(got[0].MemberRecordIDs) != 6 {
		t.Errorf("largest bucket should come first, got %+v", got[0])
	}
	if got[1].Stance != "support" || len(got[1].MemberRecordIDs) != 2 {
		t.Errorf("unexpected second cluster %+v", got[1])
	}
}

func TestBuildFallbackClusters_EmptyUniverse(t *testing.T) {
	if got := BuildFallbackClusters(NewUniverse(nil), "mainstream"); len(got) != 0 {
		t.Errorf("expected no clusters for an empty universe, got %v", got)
	}
}

// A declared-stance cluster with no members and no matching stance bucket
// falls through to the arbitrary-sample tier.
func TestEnrichClusters_SampleTier(t *testing.T) {
	records := []model.Record{
		testRecord("R1", "Q01", "Maybe", "no keywords of note in here"),
	}
	u := NewUniverse(records)

	raw := []any{map[string]any{
		"label":  "Enthusiastic backing",
		"stance": "support",
	}}
	got := ReconcileClusters(raw, u, "mainstream")
	if len(got) != 1 {
		t.Fatalf("expected 1 cluster, got %d", len(got))
	}
	if !reflect.DeepEqual(got[0].MemberRecordIDs, []string{"R1:Q01"}) {
		t.Errorf("expected sample-tier membership [R1:Q01], got %v", got[0].MemberRecordIDs)
	}
}

// Whenever the universe is non-empty, every reconciled cluster has at least
// one member.
func TestEnrichClusters_NonEmptyMembershipInvariant(t *testing.T) {
	u := stanceSplitUniverse(1, 2)

	payloads := [][]any{
		nil,
		{map[string]any{"label": "unmatchable zzz", "stance": "nonexistent"}},
		{map[string]any{"label": "", "member_record_ids": []any{"bogus:Q01"}}},
	}
	for i, raw := range payloads {
		for _, cluster := range ReconcileClusters(raw, u, "mainstream") {
			if len(cluster.MemberRecordIDs) == 0 {
				t.Errorf("payload %d: cluster %q has no members", i, cluster.ClusterID)
			}
			for _, id := range cluster.MemberRecordIDs {
				if !u.Contains(id) {
					t.Errorf("payload %d: member %q outside universe", i, id)
				}
			}
			for _, id := range cluster.EvidenceIDs {
				if !u.Contains(id) {
					t.Errorf("payload %d: evidence %q outside universe", i, id)
				}
			}
		}
	}
}

func TestEnrichClusters_EmptyUniverseYieldsNoClusters(t *testing.T) {
	u := NewUniverse(nil)
	if got := ReconcileClusters(nil, u, "mainstream"); len(got) != 0 {
		t.Errorf("expected no clusters for empty payload and universe, got %v", got)
	}
}

func TestEnrichClusters_StanceBucketTier(t *testing.T) {
	// No lexical overlap with the label, but two records classify as
	// concern, matching the declared stance.
	records := []model.Record{
		testRecord("R1", "Q01", "Strongly agree", "fine by us"),
		testRecord("R2", "Q01", "Strongly disagree", "not fine"),
		testRecord("R3", "Q01", "No", "also not fine"),
	}
	u := NewUniverse(records)

	raw := []any{map[string]any{
		"label":  "zzzz qqqq xxxx",
		"stance": "Concern",
	}}
	got := ReconcileClusters(raw, u, "minority")
	want := []string{"R2:Q01", "R3:Q01"}
	if !reflect.DeepEqual(got[0].MemberRecordIDs, want) {
		t.Errorf("MemberRecordIDs = %v, want %v", got[0].MemberRecordIDs, want)
	}
}

func TestEnrichClusters_DefaultsAndDescription(t *testing.T) {
	u := stanceSplitUniverse(2, 0)

	raw := []any{map[string]any{
		"stance":            "support",
		"member_record_ids": []any{"S1:Q01", "S2:Q01"},
	}}
	got := ReconcileClusters(raw, u, "mainstream")
	cluster := got[0]

	if cluster.ClusterID != "mainstream_1" {
		t.Errorf("ClusterID = %q, want mainstream_1", cluster.ClusterID)
	}
	if cluster.Label != "Mainstream cluster 1" {
		t.Errorf("Label = %q, want \"Mainstream cluster 1\"", cluster.Label)
	}
	want := "2 responses from 2 organisations with support stance."
	if cluster.Description != want {
		t.Errorf("Description = %q, want %q", cluster.Description, want)
	}
	if cluster.ResponseCount != 2 || cluster.OrganisationCount != 2 {
		t.Errorf("counts = %d/%d, want 2/2", cluster.ResponseCount, cluster.OrganisationCount)
	}
}

func TestEnrichClusters_EvidenceDefaultsToFirstMembers(t *testing.T) {
	u := stanceSplitUniverse(12, 0)

	raw := []any{map[string]any{
		"label":  "Broad support",
		"stance": "support",
	}}
	got := ReconcileClusters(raw, u, "mainstream")
	cluster := got[0]
	if len(cluster.MemberRecordIDs) == 0 {
		t.Fatal("expected members")
	}
	if len(cluster.EvidenceIDs) != min(8, len(cluster.MemberRecordIDs)) {
		t.Errorf("EvidenceIDs length = %d, want first %d members",
			len(cluster.EvidenceIDs), min(8, len(cluster.MemberRecordIDs)))
	}
	if !reflect.DeepEqual(cluster.EvidenceIDs, cluster.MemberRecordIDs[:len(cluster.EvidenceIDs)]) {
		t.Errorf("evidence should be a prefix of members: %v vs %v",
			cluster.EvidenceIDs, cluster.MemberRecordIDs)
	}
}

// The same payload and universe always reconcile to identical output.
func TestReconcileClusters_Deterministic(t *testing.T) {
	u := stanceSplitUniverse(4, 3)

	var raw any
	if err := json.Unmarshal([]byte(`[
		{"cluster_id": "c1", "label": "Supportive majority", "stance": "support"},
		{"label": "Worried minority", "stance": "concern", "member_record_ids": ["C1:Q01"]}
	]`), &raw); err != nil {
		t.Fatal(err)
	}

	first := ReconcileClusters(raw, u, "mainstream")
	second := ReconcileClusters(raw, u, "mainstream")
	if !reflect.DeepEqual(first, second) {
		t.Errorf("reconciliation is not deterministic:\n%v\n%v", first, second)
	}
}

func TestParseClusters_SkipsNonObjects(t *testing.T) {
	u := stanceSplitUniverse(1, 1)

	raw := []any{"just a string", 3.0, map[string]any{"label": "Real"}}
	got := ParseClusters(raw, u, "mainstream")
	if len(got) != 1 || got[0].Label != "Real" {
		t.Errorf("expected only the object candidate, got %v", got)
	}
	// Index-based defaults count all raw elements, so the surviving
	// candidate keeps its positional ID.
	if got[0].ClusterID != "mainstream_3" {
		t.Errorf("ClusterID = %q, want mainstream_3", got[0].ClusterID)
	}
}
