// Package evaluate computes deterministic quality and operational KPIs for
// summary runs. Everything here is arithmetic over already-reconciled
// output; no model calls happen at this layer.
package evaluate

import (
	"math"

	"github.com/openconsult/consultsum/internal/model"
)

// Input carries the accounting figures for one summary run.
type Input struct {
	// CoverageNumerator / CoverageDenominator describe the scope covered by
	// the summary (answered questions or summarised responses).
	CoverageNumerator   int
	CoverageDenominator int

	// Bullets are inspected for evidence-link coverage.
	Bullets []model.Bullet

	// Compression and cost accounting.
	InputChars   int
	OutputChars  int
	InputTokens  int
	OutputTokens int

	LatencySeconds float64

	// ConflictingSignals is the precomputed stance-conflict indicator.
	ConflictingSignals bool
}

// BuildMetrics populates rounded KPI values and uncertainty flags.
func BuildMetrics(in Input, cfg model.EvaluationConfig) model.Metrics {
	coverage := ratio(in.CoverageNumerator, in.CoverageDenominator)

	withEvidence := 0
	for _, b := range in.Bullets {
		if len(b.EvidenceIDs) > 0 {
			withEvidence++
		}
	}
	evidenceCoverage := ratio(withEvidence, len(in.Bullets))

	compression := round3(float64(in.InputChars) / math.Max(float64(in.OutputChars), 1))
	missingness := 1.0 - coverage

	var flags []string
	if in.CoverageNumerator < cfg.LowSampleThreshold {
		flags = append(flags, "low_sample_size")
	}
	if in.ConflictingSignals {
		flags = append(flags, "conflicting_stance_signals")
	}
	if missingness >= cfg.HighMissingnessThreshold {
		flags = append(flags, "high_missingness")
	}

	cost := float64(in.InputTokens)/1000*cfg.InputCostPer1KTokens +
		float64(in.OutputTokens)/1000*cfg.OutputCostPer1KTokens

	return model.Metrics{
		Coverage:         coverage,
		EvidenceCoverage: evidenceCoverage,
		CompressionRatio: compression,
		UncertaintyFlags: flags,
		LatencySeconds:   round3(in.LatencySeconds),
		CostEstimateUSD:  math.Round(cost*1e6) / 1e6,
		InputChars:       in.InputChars,
		OutputChars:      in.OutputChars,
		InputTokens:      in.InputTokens,
		OutputTokens:     in.OutputTokens,
	}
}

// ratio returns a safe rounded ratio in [0, 1], guarding divide-by-zero.
func ratio(numerator, denominator int) float64 {
	if denominator <= 0 {
		return 0
	}
	return round3(float64(numerator) / float64(denominator))
}

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}
