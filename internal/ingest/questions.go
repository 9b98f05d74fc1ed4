package ingest

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/openconsult/consultsum/internal/model"
)

// Headers equal to these markers start a new survey section rather than a
// question.
var sectionMarkers = map[string]struct{}{
	"Strategic Investment Need": {},
	"Overall":                   {},
}

// Headers with these prefixes carry free text supplementing the previous
// primary question column.
var supplementPrefixes = []string{
	"if ",
	"please provide",
	"if not",
	"if you",
}

var categoricalHints = map[string]struct{}{
	"strongly agree":             {},
	"somewhat agree":             {},
	"neither agree nor disagree": {},
	"somewhat disagree":          {},
	"strongly disagree":          {},
	"yes":                        {},
	"no":                         {},
	"maybe":                      {},
	"agree":                      {},
	"disagree":                   {},
	"neutral":                    {},
	"no comment":                 {},
}

var questionNumberRE = regexp.MustCompile(`^\d+\.\s*`)

// fallbackQuestionStart is used when no column header matches the expected
// first question text.
const fallbackQuestionStart = 13

// PrepareData transforms the raw export into normalized question definitions
// and per-question response records. The section mapping workbook is optional;
// when present and readable it is the section source of truth.
func PrepareData(data model.ConsultationData, excerptChars int, sectionMappingPath string) (model.PreparedData, error) {
	sectionByIndex := LoadSectionMapping(data.Columns, sectionMappingPath)
	questions := BuildQuestionDefinitions(data.Columns, sectionByIndex)
	items, err := BuildRecords(data, questions, excerptChars)
	if err != nil {
		return model.PreparedData{}, err
	}
	return model.PreparedData{Data: data, Questions: questions, Items: items}, nil
}

// BuildQuestionDefinitions infers logical question blocks from the flat
// survey column list. Supplemental headers attach to the most recent primary
// question column.
func BuildQuestionDefinitions(columns []model.ColumnSpec, sectionByIndex map[int]string) []model.QuestionDefinition {
	startIdx := findQuestionStartIndex(columns)

	var questions []model.QuestionDefinition
	currentSection := "General"
	haveCurrent := false

	for _, column := range columns {
		if column.Index < startIdx {
			continue
		}
		raw := cleanText(column.RawName)
		lowered := strings.ToLower(raw)
		mappedSection := cleanText(sectionByIndex[column.Index])

		if _, ok := sectionMarkers[raw]; ok {
			if mappedSection != "" {
				currentSection = mappedSection
			} else {
				currentSection = raw
			}
			continue
		}

		if isSupplementalHeader(lowered) {
			if !haveCurrent {
				questions = append(questions, model.QuestionDefinition{
					QuestionID:    fmt.Sprintf("Q%02d", len(questions)+1),
					QuestionText:  raw,
					Section:       currentSection,
					PrimaryColumn: column,
				})
				haveCurrent = true
				continue
			}
			last := &questions[len(questions)-1]
			last.SupplementalColumns = append(last.SupplementalColumns, column)
			continue
		}

		section := currentSection
		if mappedSection != "" {
			section = mappedSection
			currentSection = mappedSection
		}
		questions = append(questions, model.QuestionDefinition{
			QuestionID:    fmt.Sprintf("Q%02d", len(questions)+1),
			QuestionText:  canonicalQuestionText(raw),
			Section:       section,
			PrimaryColumn: column,
		})
		haveCurrent = true
	}

	return questions
}

// BuildRecords creates one record per answered question per submission.
// Choice-like values are detected heuristically and kept in ChoiceValue while
// free text is assembled into AnswerText.
func BuildRecords(data model.ConsultationData, questions []model.QuestionDefinition, excerptChars int) ([]model.Record, error) {
	responseIDCol, err := findColumn(data.Columns, "Response ID")
	if err != nil {
		return nil, err
	}
	orgNameCol, err := findColumn(data.Columns, "4. What is your organisation name?")
	if err != nil {
		return nil, err
	}
	orgTypeCol, err := findColumn(data.Columns,
		"6. Which category best describes your organisation? (Select all that apply) - Selected Choice")
	if err != nil {
		return nil, err
	}
	regionCol, err := findColumn(data.Columns,
		"7. Which Nation or Region are you / your organisation located in, or interested in?")
	if err != nil {
		return nil, err
	}

	var output []model.Record

	for _, row := range data.Rows {
		responseID := row[responseIDCol.UniqueName]
		organisationName := row[orgNameCol.UniqueName]
		organisationType := row[orgTypeCol.UniqueName]
		region := row[regionCol.UniqueName]

		for _, question := range questions {
			primaryValue := cleanText(row[question.PrimaryColumn.UniqueName])

			var supplementalValues []string
			for _, col := range question.SupplementalColumns {
				if v := cleanText(row[col.UniqueName]); v != "" {
					supplementalValues = append(supplementalValues, v)
				}
			}

			var choiceValue string
			if looksCategorical(primaryValue) {
				choiceValue = primaryValue
			}

			var textParts []string
			if primaryValue != "" && choiceValue == "" {
				textParts = append(textParts, primaryValue)
			}
			textParts = append(textParts, supplementalValues...)

			var answerText string
			switch {
			case choiceValue != "" && len(textParts) > 0:
				answerText = fmt.Sprintf("Choice: %s. %s", choiceValue, strings.Join(textParts, " "))
			case choiceValue != "":
				answerText = choiceValue
			default:
				answerText = strings.Join(textParts, " ")
			}

			answerText = cleanText(answerText)
			if answerText == "" {
				continue
			}

			output = append(output, model.Record{
				RecordID:         fmt.Sprintf("%s:%s", responseID, question.QuestionID),
				ResponseID:       responseID,
				OrganisationName: organisationName,
				OrganisationType: organisationType,
				Region:           region,
				QuestionID:       question.QuestionID,
				QuestionText:     question.QuestionText,
				Section:          question.Section,
				ChoiceValue:      choiceValue,
				AnswerText:       answerText,
				Excerpt:          makeExcerpt(answerText, excerptChars),
			})
		}
	}

	return output, nil
}

// makeExcerpt truncates answer text to excerptChars characters, marking
// truncation with a trailing ellipsis.
func makeExcerpt(answerText string, excerptChars int) string {
	runes := []rune(answerText)
	if len(runes) <= excerptChars {
		return strings.TrimSpace(answerText)
	}
	return strings.TrimSpace(string(runes[:excerptChars])) + "..."
}

// findQuestionStartIndex locates the first consultation question column.
func findQuestionStartIndex(columns []model.ColumnSpec) int {
	for _, col := range columns {
		if strings.HasPrefix(col.RawName, "1. Do you agree") {
			return col.Index
		}
	}
	return fallbackQuestionStart
}

// isSupplementalHeader identifies headers carrying free-text supplements for
// a primary question.
func isSupplementalHeader(lowered string) bool {
	if strings.Contains(lowered, " - yes - text") ||
		strings.Contains(lowered, " - maybe - text") ||
		strings.Contains(lowered, " - no - text") {
		return true
	}
	for _, prefix := range supplementPrefixes {
		if strings.HasPrefix(lowered, prefix) {
			return true
		}
	}
	return false
}

// looksCategorical heuristically decides whether a cell value is a structured
// choice label rather than free text.
func looksCategorical(value string) bool {
	if value == "" {
		return false
	}

	lowered := strings.TrimSpace(strings.ToLower(value))
	if _, ok := categoricalHints[lowered]; ok {
		return true
	}
	if utf8.RuneCountInString(lowered) <= 24 {
		if _, ok := categoricalHints[strings.ReplaceAll(lowered, "-", " ")]; ok {
			return true
		}
	}

	// Short single-word alphabetic values ("Yes", "Agreed") count as choices.
	if len(strings.Fields(lowered)) <= 3 && utf8.RuneCountInString(lowered) <= 25 && isAlpha(lowered) {
		return true
	}
	return false
}

func isAlpha(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !unicode.IsLetter(r) {
			return false
		}
	}
	return true
}

// canonicalQuestionText strips the leading question number and Qualtrics
// suffix from a header.
func canonicalQuestionText(raw string) string {
	text := questionNumberRE.ReplaceAllString(raw, "")
	text = strings.ReplaceAll(text, " - Selected Choice", "")
	return cleanText(text)
}

// findColumn returns the first column whose raw header starts with prefix.
func findColumn(columns []model.ColumnSpec, prefix string) (model.ColumnSpec, error) {
	for _, col := range columns {
		if strings.HasPrefix(col.RawName, prefix) {
			return col, nil
		}
	}
	return model.ColumnSpec{}, fmt.Errorf("column not found: %s", prefix)
}
