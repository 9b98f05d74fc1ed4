package model

// EvidenceRef joins a referenced record ID to its local source excerpt for
// final display. The evidence index of a summary is the deduplicated,
// record_id-sorted set of EvidenceRefs for every ID any bullet or cluster
// cites.
type EvidenceRef struct {
	RecordID string `json:"record_id"`
	Excerpt  string `json:"excerpt"`
}

// Bullet is a single evidence-linked claim extracted from model output.
// Bullets are rebuilt on every reconciliation call and never mutated.
type Bullet struct {
	Text                    string   `json:"text"`
	EvidenceIDs             []string `json:"evidence_ids"`
	Count                   int      `json:"count"`
	SupportingResponseIDs   []string `json:"supporting_response_ids"`
	SupportingOrganisations []string `json:"supporting_organisations"`
}

// Cluster is a named, stance-tagged group of records representing a shared
// viewpoint. Once reconciled, a cluster built over a non-empty record
// universe always has at least one member.
type Cluster struct {
	ClusterID               string   `json:"cluster_id"`
	Label                   string   `json:"label"`
	Stance                  string   `json:"stance"`
	MemberRecordIDs         []string `json:"member_record_ids"`
	EvidenceIDs             []string `json:"evidence_ids"`
	Significance            string   `json:"significance"`
	Description             string   `json:"description"`
	MemberCount             int      `json:"member_count"`
	ResponseCount           int      `json:"response_count"`
	OrganisationCount       int      `json:"organisation_count"`
	SupportingResponseIDs   []string `json:"supporting_response_ids"`
	SupportingOrganisations []string `json:"supporting_organisations"`
}

// SectionSummary holds the Approach 1 per-section bullets.
type SectionSummary struct {
	Section          string   `json:"section"`
	MainPoints       []Bullet `json:"main_points"`
	Concerns         []Bullet `json:"concerns"`
	Asks             []Bullet `json:"asks"`
	Nuances          []Bullet `json:"nuances"`
	RecordsSummarised int     `json:"records_summarised"`
	TotalRecords      int     `json:"total_records"`
}

// Usage tracks token consumption for one or more LLM interactions.
type Usage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
}

// TotalTokens returns the combined token count.
func (u Usage) TotalTokens() int {
	return u.InputTokens + u.OutputTokens
}

// Add returns the element-wise sum of two usage records.
func (u Usage) Add(other Usage) Usage {
	return Usage{
		InputTokens:  u.InputTokens + other.InputTokens,
		OutputTokens: u.OutputTokens + other.OutputTokens,
	}
}

// Metrics are the deterministic quality and operational KPIs attached to
// every summary result.
type Metrics struct {
	Coverage         float64  `json:"coverage"`
	EvidenceCoverage float64  `json:"evidence_coverage"`
	CompressionRatio float64  `json:"compression_ratio"`
	UncertaintyFlags []string `json:"uncertainty_flags"`
	LatencySeconds   float64  `json:"latency_seconds"`
	CostEstimateUSD  float64  `json:"cost_estimate_usd"`
	InputChars       int      `json:"input_chars"`
	OutputChars      int      `json:"output_chars"`
	InputTokens      int      `json:"input_tokens"`
	OutputTokens     int      `json:"output_tokens"`
}

// OrganisationSummary is the Approach 1 result: a hybrid per-organisation
// narrative rolled up from section summaries.
type OrganisationSummary struct {
	Approach              string           `json:"approach"`
	ResponseID            string           `json:"response_id"`
	OrganisationName      string           `json:"organisation_name"`
	OrganisationType      string           `json:"organisation_type"`
	Region                string           `json:"region"`
	OverallStance         string           `json:"overall_stance"`
	KeySupports           []Bullet         `json:"key_supports"`
	KeyConcerns           []Bullet         `json:"key_concerns"`
	AsksOrRecommendations []Bullet         `json:"asks_or_recommendations"`
	SectionSummaries      []SectionSummary `json:"section_summaries"`
	EvidenceIndex         []EvidenceRef    `json:"evidence_index"`
	Metrics               Metrics          `json:"metrics"`
}

// QuestionSummary is the Approach 2 result: a cross-organisation view of one
// question with stance distribution and viewpoint clusters.
type QuestionSummary struct {
	Approach            string             `json:"approach"`
	QuestionID          string             `json:"question_id"`
	QuestionText        string             `json:"question_text"`
	Section             string             `json:"section"`
	Headline            string             `json:"headline"`
	Narrative           string             `json:"narrative"`
	MajorityView        []Bullet           `json:"majority_view"`
	MinorityView        []Bullet           `json:"minority_view"`
	KeyArgumentsFor     []Bullet           `json:"key_arguments_for"`
	KeyArgumentsAgainst []Bullet           `json:"key_arguments_against"`
	Distribution        map[string]float64 `json:"distribution"`
	MainstreamClusters  []Cluster          `json:"mainstream_clusters"`
	MinorityClusters    []Cluster          `json:"minority_clusters"`
	EvidenceIndex       []EvidenceRef      `json:"evidence_index"`
	Metrics             Metrics            `json:"metrics"`
}
