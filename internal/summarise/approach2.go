package summarise

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/openconsult/consultsum/internal/evaluate"
	"github.com/openconsult/consultsum/internal/ingest"
	"github.com/openconsult/consultsum/internal/llm"
	"github.com/openconsult/consultsum/internal/model"
	"github.com/openconsult/consultsum/internal/reconcile"
)

// Question generates the per-question cross-organisation summary. Unlike
// Organisation, this path never fails on a provider error: the model call
// degrades to a deterministic payload, and the reconciliation fallbacks
// build stance clusters from the records alone.
func Question(ctx context.Context, provider llm.Provider, cfg *model.Config, slice model.QuestionSlice, totalOrganisations int) *model.QuestionSummary {
	start := time.Now()

	universe := reconcile.NewUniverse(slice.Items)
	distribution := ingest.Distribution(slice.Items)
	userPrompt := questionUserPrompt(slice, distribution)

	var payload reconcile.Payload
	var usage model.Usage
	result, err := provider.CompleteJSON(ctx, llm.Request{
		SystemPrompt: questionSystemPrompt,
		UserPrompt:   userPrompt,
		Temperature:  cfg.LLM.Temperature,
	})
	if err != nil {
		payload = fallbackPayload(distribution, err)
	} else {
		payload = reconcile.Payload(result.Payload)
		usage = result.Usage
	}

	majorityView := reconcile.ReconcileBullets(payload["majority_view"], universe)
	minorityView := reconcile.ReconcileBullets(payload["minority_view"], universe)
	keyFor := reconcile.ReconcileBullets(payload["key_arguments_for"], universe)
	keyAgainst := reconcile.ReconcileBullets(payload["key_arguments_against"], universe)

	mainstreamClusters := reconcile.ReconcileClusters(payload["mainstream_clusters"], universe, "mainstream")
	minorityClusters := reconcile.ReconcileClusters(payload["minority_clusters"], universe, "minority")

	// Backfill empty viewpoint lists from the clusters so a degraded payload
	// still yields a usable summary.
	if len(majorityView) == 0 && len(mainstreamClusters) > 0 {
		cluster := mainstreamClusters[0]
		majorityView = []model.Bullet{bulletFromCluster(cluster, "Mainstream view: "+cluster.Label)}
	}
	if len(minorityView) == 0 && len(minorityClusters) > 0 {
		cluster := minorityClusters[0]
		minorityView = []model.Bullet{bulletFromCluster(cluster, "Minority view: "+cluster.Label)}
	}
	if len(keyFor) == 0 {
		if cluster, ok := findStance(mainstreamClusters, "support"); ok {
			keyFor = []model.Bullet{bulletFromCluster(cluster, cluster.Label)}
		}
	}
	if len(keyAgainst) == 0 {
		if cluster, ok := findStance(minorityClusters, "concern"); ok {
			keyAgainst = []model.Bullet{bulletFromCluster(cluster, cluster.Label)}
		}
	}

	referenced := map[string]struct{}{}
	reconcile.CollectBulletIDs(referenced, majorityView)
	reconcile.CollectBulletIDs(referenced, minorityView)
	reconcile.CollectBulletIDs(referenced, keyFor)
	reconcile.CollectBulletIDs(referenced, keyAgainst)
	reconcile.CollectClusterIDs(referenced, mainstreamClusters)
	reconcile.CollectClusterIDs(referenced, minorityClusters)

	allBullets := make([]model.Bullet, 0, len(majorityView)+len(minorityView)+len(keyFor)+len(keyAgainst))
	allBullets = append(allBullets, majorityView...)
	allBullets = append(allBullets, minorityView...)
	allBullets = append(allBullets, keyFor...)
	allBullets = append(allBullets, keyAgainst...)

	metrics := evaluate.BuildMetrics(evaluate.Input{
		CoverageNumerator:   len(slice.Items),
		CoverageDenominator: totalOrganisations,
		Bullets:             allBullets,
		InputChars:          len(userPrompt),
		OutputChars:         payloadChars(payload),
		InputTokens:         usage.InputTokens,
		OutputTokens:        usage.OutputTokens,
		LatencySeconds:      time.Since(start).Seconds(),
		ConflictingSignals:  reconcile.ConflictingSignals(slice.Items),
	}, cfg.Evaluation)

	return &model.QuestionSummary{
		Approach:            "approach_2",
		QuestionID:          slice.Question.QuestionID,
		QuestionText:        slice.Question.QuestionText,
		Section:             slice.Question.Section,
		Headline:            payload.Text("headline", ""),
		Narrative:           payload.Text("narrative", ""),
		MajorityView:        majorityView,
		MinorityView:        minorityView,
		KeyArgumentsFor:     keyFor,
		KeyArgumentsAgainst: keyAgainst,
		Distribution:        distribution,
		MainstreamClusters:  mainstreamClusters,
		MinorityClusters:    minorityClusters,
		EvidenceIndex:       reconcile.BuildEvidenceIndex(universe, referenced),
		Metrics:             metrics,
	}
}

// bulletFromCluster turns a reconciled cluster into a viewpoint bullet.
func bulletFromCluster(cluster model.Cluster, fallbackText string) model.Bullet {
	text := cluster.Description
	if text == "" {
		text = cluster.Significance
	}
	if text == "" {
		text = fallbackText
	}

	count := cluster.ResponseCount
	if count == 0 {
		count = cluster.MemberCount
	}

	return model.Bullet{
		Text:                    text,
		EvidenceIDs:             cluster.EvidenceIDs,
		Count:                   count,
		SupportingResponseIDs:   cluster.SupportingResponseIDs,
		SupportingOrganisations: cluster.SupportingOrganisations,
	}
}

func findStance(clusters []model.Cluster, stance string) (model.Cluster, bool) {
	for _, cluster := range clusters {
		if cluster.Stance == stance {
			return cluster, true
		}
	}
	return model.Cluster{}, false
}

// fallbackPayload stands in when the provider call fails. The headline names
// the dominant stance so a degraded batch run still reads sensibly.
func fallbackPayload(distribution map[string]float64, err error) reconcile.Payload {
	type entry struct {
		label string
		pct   float64
	}
	entries := make([]entry, 0, len(distribution))
	for label, pct := range distribution {
		entries = append(entries, entry{label, pct})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].pct != entries[j].pct {
			return entries[i].pct > entries[j].pct
		}
		return entries[i].label < entries[j].label
	})

	headline := "Fallback summary (LLM timeout): no structured distribution available."
	if len(entries) > 0 {
		headline = fmt.Sprintf("Fallback summary (LLM timeout): dominant stance is %s at %.1f%%.",
			entries[0].label, entries[0].pct)
	}

	narrative := fmt.Sprintf("Generated without model response due to: %v. "+
		"Viewpoints and clusters are inferred from local response signals.", err)

	return reconcile.Payload{
		"headline":              headline,
		"narrative":             narrative,
		"majority_view":         []any{},
		"minority_view":         []any{},
		"key_arguments_for":     []any{},
		"key_arguments_against": []any{},
		"mainstream_clusters":   []any{},
		"minority_clusters":     []any{},
	}
}
