// Package summarise generates the two summary shapes: per-organisation
// hybrid narratives (sections plus roll-up) and per-question
// cross-organisation views. Model output is never trusted as-is; every
// bullet and cluster passes through the reconcile package before it reaches
// a result.
package summarise

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/openconsult/consultsum/internal/evaluate"
	"github.com/openconsult/consultsum/internal/llm"
	"github.com/openconsult/consultsum/internal/model"
	"github.com/openconsult/consultsum/internal/reconcile"
)

// Organisation generates the per-organisation hybrid summary: each answered
// section is summarised with evidence IDs, then the section outputs roll up
// into one organisation narrative. Provider errors propagate; a partial
// organisation summary is worse than none.
func Organisation(ctx context.Context, provider llm.Provider, cfg *model.Config, catalog model.OrganisationCatalog) (*model.OrganisationSummary, error) {
	start := time.Now()

	universe := reconcile.NewUniverse(catalog.Items)

	// Group records by section, preserving first-seen order.
	var sectionOrder []string
	bySection := map[string][]model.Record{}
	for _, item := range catalog.Items {
		if _, ok := bySection[item.Section]; !ok {
			sectionOrder = append(sectionOrder, item.Section)
		}
		bySection[item.Section] = append(bySection[item.Section], item)
	}

	var totalUsage model.Usage
	var inputChars, outputChars int

	sections := make([]model.SectionSummary, 0, len(sectionOrder))
	for _, sectionName := range sectionOrder {
		items := bySection[sectionName]
		userPrompt := sectionUserPrompt(catalog, sectionName, items)

		result, err := provider.CompleteJSON(ctx, llm.Request{
			SystemPrompt: sectionSystemPrompt,
			UserPrompt:   userPrompt,
			Temperature:  cfg.LLM.Temperature,
		})
		if err != nil {
			return nil, fmt.Errorf("summarise section %q: %w", sectionName, err)
		}

		totalUsage = totalUsage.Add(result.Usage)
		inputChars += len(userPrompt)
		outputChars += payloadChars(result.Payload)

		payload := reconcile.Payload(result.Payload)
		sections = append(sections, model.SectionSummary{
			Section:           sectionName,
			MainPoints:        reconcile.ParseBullets(payload["main_points"], universe),
			Concerns:          reconcile.ParseBullets(payload["concerns"], universe),
			Asks:              reconcile.ParseBullets(payload["asks"], universe),
			Nuances:           reconcile.ParseBullets(payload["nuances"], universe),
			RecordsSummarised: len(items),
			TotalRecords:      len(items),
		})
	}

	rollupPrompt := rollupUserPrompt(catalog, sections)
	rollup, err := provider.CompleteJSON(ctx, llm.Request{
		SystemPrompt: rollupSystemPrompt,
		UserPrompt:   rollupPrompt,
		Temperature:  cfg.LLM.Temperature,
	})
	if err != nil {
		return nil, fmt.Errorf("roll up sections: %w", err)
	}

	totalUsage = totalUsage.Add(rollup.Usage)
	inputChars += len(rollupPrompt)
	outputChars += payloadChars(rollup.Payload)

	rollupPayload := reconcile.Payload(rollup.Payload)
	keySupports := reconcile.ParseBullets(rollupPayload["key_supports"], universe)
	keyConcerns := reconcile.ParseBullets(rollupPayload["key_concerns"], universe)
	asks := reconcile.ParseBullets(rollupPayload["asks_or_recommendations"], universe)

	allBullets := make([]model.Bullet, 0, len(keySupports)+len(keyConcerns)+len(asks))
	allBullets = append(allBullets, keySupports...)
	allBullets = append(allBullets, keyConcerns...)
	allBullets = append(allBullets, asks...)
	for _, section := range sections {
		allBullets = append(allBullets, section.MainPoints...)
		allBullets = append(allBullets, section.Concerns...)
		allBullets = append(allBullets, section.Asks...)
		allBullets = append(allBullets, section.Nuances...)
	}

	referenced := map[string]struct{}{}
	reconcile.CollectBulletIDs(referenced, allBullets)

	// Final result serialization counts toward compression accounting.
	outputChars += payloadChars(rollup.Payload)
	for _, section := range sections {
		if encoded, err := json.Marshal(section); err == nil {
			outputChars += len(encoded)
		}
	}

	overallStance := strings.TrimSpace(rollupPayload.Text("overall_stance", "mixed"))
	if overallStance == "" {
		overallStance = "mixed"
	}

	metrics := evaluate.BuildMetrics(evaluate.Input{
		CoverageNumerator:   catalog.AnsweredQuestions,
		CoverageDenominator: catalog.TotalQuestions,
		Bullets:             allBullets,
		InputChars:          inputChars,
		OutputChars:         outputChars,
		InputTokens:         totalUsage.InputTokens,
		OutputTokens:        totalUsage.OutputTokens,
		LatencySeconds:      time.Since(start).Seconds(),
		ConflictingSignals:  reconcile.ConflictingSignals(catalog.Items),
	}, cfg.Evaluation)

	return &model.OrganisationSummary{
		Approach:              "approach_1",
		ResponseID:            catalog.ResponseID,
		OrganisationName:      catalog.OrganisationName,
		OrganisationType:      catalog.OrganisationType,
		Region:                catalog.Region,
		OverallStance:         overallStance,
		KeySupports:           keySupports,
		KeyConcerns:           keyConcerns,
		AsksOrRecommendations: asks,
		SectionSummaries:      sections,
		EvidenceIndex:         reconcile.BuildEvidenceIndex(universe, referenced),
		Metrics:               metrics,
	}, nil
}

// payloadChars measures a payload's serialized size for compression metrics.
func payloadChars(payload map[string]any) int {
	encoded, err := json.Marshal(payload)
	if err != nil {
		return 0
	}
	return len(encoded)
}
