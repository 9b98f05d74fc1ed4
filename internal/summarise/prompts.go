package summarise

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/openconsult/consultsum/internal/model"
)

const (
	sectionSystemPrompt = "You are a policy consultation summariser. Output valid JSON only. " +
		"No markdown. No prose outside JSON."

	rollupSystemPrompt = "You summarise consultation responses. Output JSON only with explicit evidence linking. " +
		"No extra keys."

	questionSystemPrompt = "You summarise policy consultation responses across organisations. " +
		"Preserve minority perspectives. Output valid JSON only."
)

// sectionUserPrompt lists one section's source excerpts with their record IDs
// so the model can cite them back.
func sectionUserPrompt(catalog model.OrganisationCatalog, sectionName string, items []model.Record) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Organisation: %s\n", catalog.OrganisationName)
	fmt.Fprintf(&b, "Section: %s\n", sectionName)
	b.WriteString("Summarise the section. Preserve minority, conditional, and nuanced points.\n")
	b.WriteString("Source responses:\n")
	for i, item := range items {
		if i > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "%s | %s | %s", item.RecordID, item.QuestionText, item.Excerpt)
	}
	b.WriteString("\n\nReturn JSON with keys: main_points, concerns, asks, nuances.\n")
	b.WriteString("Each key maps to a list of objects: {text, evidence_ids}.\n")
	b.WriteString("Use only record IDs provided above as evidence_ids.")
	return b.String()
}

// rollupUserPrompt feeds the structured section outputs back for the final
// organisation narrative.
func rollupUserPrompt(catalog model.OrganisationCatalog, sections []model.SectionSummary) string {
	type sectionPayload struct {
		Section    string   `json:"section"`
		MainPoints []string `json:"main_points"`
		Concerns   []string `json:"concerns"`
		Asks       []string `json:"asks"`
		Nuances    []string `json:"nuances"`
		RecordIDs  []string `json:"record_ids"`
	}

	payload := make([]sectionPayload, 0, len(sections))
	for _, s := range sections {
		payload = append(payload, sectionPayload{
			Section:    s.Section,
			MainPoints: bulletTexts(s.MainPoints),
			Concerns:   bulletTexts(s.Concerns),
			Asks:       bulletTexts(s.Asks),
			Nuances:    bulletTexts(s.Nuances),
			RecordIDs:  sectionRecordIDs(s),
		})
	}
	encoded, _ := json.Marshal(payload)

	var b strings.Builder
	fmt.Fprintf(&b, "Organisation: %s\n", catalog.OrganisationName)
	fmt.Fprintf(&b, "Type: %s\n", catalog.OrganisationType)
	fmt.Fprintf(&b, "Region: %s\n", catalog.Region)
	fmt.Fprintf(&b, "Answered questions: %d/%d\n\n", catalog.AnsweredQuestions, catalog.TotalQuestions)
	b.WriteString("Create a hybrid organisation summary from section summaries.\n")
	b.WriteString("Preserve minority and nuanced points and include evidence IDs.\n")
	fmt.Fprintf(&b, "Section summaries JSON:\n%s\n\n", encoded)
	b.WriteString("Return JSON with keys: overall_stance, key_supports, key_concerns, asks_or_recommendations.\n")
	b.WriteString("For bullet lists, each entry must be {text, evidence_ids}.")
	return b.String()
}

// questionUserPrompt lists every organisation's answer to one question along
// with the categorical distribution.
func questionUserPrompt(slice model.QuestionSlice, distribution map[string]float64) string {
	encoded, _ := json.Marshal(distribution)

	var b strings.Builder
	fmt.Fprintf(&b, "Question ID: %s\n", slice.Question.QuestionID)
	fmt.Fprintf(&b, "Question text: %s\n", slice.Question.QuestionText)
	fmt.Fprintf(&b, "Section: %s\n", slice.Question.Section)
	fmt.Fprintf(&b, "Distribution (if available): %s\n", encoded)
	b.WriteString("Summarise claims, cluster mainstream positions, capture minority/outlier views, and include evidence IDs.\n")
	b.WriteString("Responses:\n")
	for i, item := range slice.Items {
		if i > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "%s | %s | %s | %s", item.RecordID, item.OrganisationName, item.ChoiceValue, item.Excerpt)
	}
	b.WriteString("\n\nReturn JSON with keys:\n")
	b.WriteString("headline (str), narrative (str), majority_view (list), minority_view (list), ")
	b.WriteString("key_arguments_for (list), key_arguments_against (list), mainstream_clusters (list), minority_clusters (list).\n")
	b.WriteString("For list bullets: [{text, evidence_ids}]\n")
	b.WriteString("For clusters: [{cluster_id, label, stance, member_record_ids, evidence_ids, significance}]\n")
	b.WriteString("Use only record IDs from the provided responses.")
	return b.String()
}

func bulletTexts(bullets []model.Bullet) []string {
	out := make([]string, 0, len(bullets))
	for _, b := range bullets {
		out = append(out, b.Text)
	}
	return out
}

// sectionRecordIDs collects the sorted distinct evidence IDs a section cites.
func sectionRecordIDs(s model.SectionSummary) []string {
	seen := map[string]struct{}{}
	for _, group := range [][]model.Bullet{s.MainPoints, s.Concerns, s.Asks, s.Nuances} {
		for _, b := range group {
			for _, id := range b.EvidenceIDs {
				seen[id] = struct{}{}
			}
		}
	}
	out := make([]string, 0, len(seen))
	for id := range seen {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}
