package reconcile

import (
	"regexp"
	"strings"

	"github.com/openconsult/consultsum/internal/model"
)

// choiceAliases maps raw choice-value prefixes to canonical labels. The
// cascade order is load-bearing: earlier prefixes win, so "no comment"
// normalizes to "No" because "no" is checked first.
var choiceAliases = []struct {
	prefix string
	label  string
}{
	{"strongly agree", "Strongly agree"},
	{"somewhat agree", "Somewhat agree"},
	{"neither agree nor disagree", "Neither agree nor disagree"},
	{"somewhat disagree", "Somewhat disagree"},
	{"strongly disagree", "Strongly disagree"},
	{"yes", "Yes"},
	{"no", "No"},
	{"maybe", "Maybe"},
	{"agree", "Agree"},
	{"disagree", "Disagree"},
	{"neutral", "Neutral"},
	{"no comment", "No comment"},
}

var (
	supportLabels = map[string]struct{}{
		"Strongly agree": {}, "Somewhat agree": {}, "Agree": {}, "Yes": {},
	}
	concernLabels = map[string]struct{}{
		"Strongly disagree": {}, "Somewhat disagree": {}, "Disagree": {}, "No": {},
	}
	neutralLabels = map[string]struct{}{
		"Neither agree nor disagree": {}, "Neutral": {}, "Maybe": {}, "No comment": {},
	}

	supportKeywords = []string{"support", "welcome", "agree"}
	concernKeywords = []string{"concern", "risk", "oppose", "disagree"}
)

var whitespaceRE = regexp.MustCompile(`\s+`)

// NormalizeChoice maps variant raw choice text to the canonical label used
// in distributions and stance classification. Unknown values normalize to
// the empty string.
func NormalizeChoice(value string) string {
	text := strings.ToLower(cleanText(value))
	if text == "" {
		return ""
	}
	for _, alias := range choiceAliases {
		if strings.HasPrefix(text, alias.prefix) {
			return alias.label
		}
	}
	return ""
}

// Classify maps one record to a stance using a prioritized rule cascade:
// the canonical choice label first, then answer-text keyword matching, then
// other. Pure function of the record.
func Classify(rec model.Record) model.Stance {
	normalized := NormalizeChoice(rec.ChoiceValue)
	if _, ok := supportLabels[normalized]; ok {
		return model.StanceSupport
	}
	if _, ok := concernLabels[normalized]; ok {
		return model.StanceConcern
	}
	if _, ok := neutralLabels[normalized]; ok {
		return model.StanceNeutral
	}

	text := strings.ToLower(rec.AnswerText)
	for _, word := range supportKeywords {
		if strings.Contains(text, word) {
			return model.StanceSupport
		}
	}
	for _, word := range concernKeywords {
		if strings.Contains(text, word) {
			return model.StanceConcern
		}
	}
	return model.StanceOther
}

// ConflictingSignals reports whether support and concern are both material
// in the categorical answers: each side must hold at least 25% of the
// combined support+concern count.
func ConflictingSignals(items []model.Record) bool {
	var supportive, concern int
	for _, item := range items {
		if item.ChoiceValue == "" {
			continue
		}
		normalized := NormalizeChoice(item.ChoiceValue)
		if _, ok := supportLabels[normalized]; ok {
			supportive++
		} else if _, ok := concernLabels[normalized]; ok {
			concern++
		}
	}

	total := supportive + concern
	if total == 0 {
		return false
	}
	supportRatio := float64(supportive) / float64(total)
	concernRatio := float64(concern) / float64(total)
	return supportRatio >= 0.25 && concernRatio >= 0.25
}

// cleanText collapses whitespace and strips hidden unicode markers.
func cleanText(text string) string {
	text = strings.ReplaceAll(text, "\ufeff", "")
	text = strings.ReplaceAll(text, "\u200b", "")
	return strings.TrimSpace(whitespaceRE.ReplaceAllString(text, " "))
}
