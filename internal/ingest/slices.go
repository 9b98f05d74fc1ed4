package ingest

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/openconsult/consultsum/internal/model"
	"github.com/openconsult/consultsum/internal/reconcile"
)

// Option is a selectable (id, label) pair for CLI listings.
type Option struct {
	ID    string
	Label string
}

// Organisations returns unique organisation options sorted by display label.
func Organisations(prepared model.PreparedData) []Option {
	seen := map[string]struct{}{}
	var entries []Option

	for _, row := range prepared.Data.Rows {
		responseID := rowValue(prepared.Data.Columns, row, "Response ID")
		orgName := rowValue(prepared.Data.Columns, row, "4. What is your organisation name?")
		if responseID == "" {
			continue
		}
		if _, ok := seen[responseID]; ok {
			continue
		}
		seen[responseID] = struct{}{}
		entries = append(entries, Option{
			ID:    responseID,
			Label: fmt.Sprintf("%s (%s)", orgName, responseID),
		})
	}

	sort.Slice(entries, func(i, j int) bool {
		return strings.ToLower(entries[i].Label) < strings.ToLower(entries[j].Label)
	})
	return entries
}

// QuestionOptions returns question options in survey order.
func QuestionOptions(prepared model.PreparedData) []Option {
	out := make([]Option, 0, len(prepared.Questions))
	for _, q := range prepared.Questions {
		out = append(out, Option{
			ID:    q.QuestionID,
			Label: fmt.Sprintf("%s | %s", q.QuestionID, q.QuestionText),
		})
	}
	return out
}

// CatalogFor builds the per-organisation summary input for one submission.
func CatalogFor(prepared model.PreparedData, responseID string) (model.OrganisationCatalog, error) {
	var items []model.Record
	for _, item := range prepared.Items {
		if item.ResponseID == responseID {
			items = append(items, item)
		}
	}
	if len(items) == 0 {
		return model.OrganisationCatalog{}, fmt.Errorf("no records found for response ID: %s", responseID)
	}

	answered := map[string]struct{}{}
	for _, item := range items {
		answered[item.QuestionID] = struct{}{}
	}

	first := items[0]
	return model.OrganisationCatalog{
		ResponseID:        responseID,
		OrganisationName:  first.OrganisationName,
		OrganisationType:  first.OrganisationType,
		Region:            first.Region,
		AnsweredQuestions: len(answered),
		TotalQuestions:    len(prepared.Questions),
		Items:             items,
	}, nil
}

// SliceFor builds the per-question summary input across organisations.
func SliceFor(prepared model.PreparedData, questionID string) (model.QuestionSlice, error) {
	var question *model.QuestionDefinition
	for i := range prepared.Questions {
		if prepared.Questions[i].QuestionID == questionID {
			question = &prepared.Questions[i]
			break
		}
	}
	if question == nil {
		return model.QuestionSlice{}, fmt.Errorf("unknown question id: %s", questionID)
	}

	var items []model.Record
	for _, item := range prepared.Items {
		if item.QuestionID == questionID {
			items = append(items, item)
		}
	}
	return model.QuestionSlice{Question: *question, Items: items}, nil
}

// Distribution computes the percentage distribution of normalized categorical
// answers. Records without a recognizable choice are excluded from the total.
func Distribution(items []model.Record) map[string]float64 {
	counts := map[string]int{}
	total := 0
	for _, item := range items {
		if item.ChoiceValue == "" {
			continue
		}
		label := reconcile.NormalizeChoice(item.ChoiceValue)
		if label == "" {
			continue
		}
		counts[label]++
		total++
	}

	if total == 0 {
		return map[string]float64{}
	}

	out := make(map[string]float64, len(counts))
	for label, count := range counts {
		pct := float64(count) / float64(total) * 100
		out[label] = math.Round(pct*100) / 100
	}
	return out
}

// rowValue reads and cleans a row value for a required column prefix,
// returning "" when the column is absent.
func rowValue(columns []model.ColumnSpec, row map[string]string, prefix string) string {
	col, err := findColumn(columns, prefix)
	if err != nil {
		return ""
	}
	return cleanText(row[col.UniqueName])
}
