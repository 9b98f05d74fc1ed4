package reconcile

import (
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"
)

// matchThreshold is the minimum token-overlap score a record needs to count
// as a lexical match.
const matchThreshold = 0.08

// stopwords are common and survey-domain words excluded from token matching.
var stopwords = map[string]struct{}{
	"the": {}, "and": {}, "for": {}, "with": {}, "that": {}, "this": {},
	"from": {}, "into": {}, "our": {}, "your": {}, "you": {}, "are": {},
	"was": {}, "were": {}, "have": {}, "has": {}, "had": {}, "what": {},
	"when": {}, "where": {}, "which": {}, "would": {}, "could": {},
	"should": {}, "their": {}, "them": {}, "they": {}, "about": {},
	"please": {}, "provide": {}, "reasoning": {}, "approach": {},
	"agree": {}, "disagree": {}, "question": {}, "response": {},
	"option": {}, "page": {},
}

// Tokenize lower-cases text, treats every non-alphanumeric rune as a
// separator, and drops tokens of length two or less along with stopwords.
func Tokenize(text string) map[string]struct{} {
	var b strings.Builder
	b.Grow(len(text))
	for _, r := range strings.ToLower(text) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		} else {
			b.WriteRune(' ')
		}
	}

	tokens := make(map[string]struct{})
	for _, part := range strings.Fields(b.String()) {
		if utf8.RuneCountInString(part) <= 2 {
			continue
		}
		if _, ok := stopwords[part]; ok {
			continue
		}
		tokens[part] = struct{}{}
	}
	return tokens
}

// MatchRecords scores every record's answer text by token overlap with the
// query and returns up to topK record IDs scoring at least the threshold,
// best first, ties resolved by record order. When the threshold removes
// everything but some record scored above zero, the top three by score are
// returned instead so an existing lexical signal is never discarded.
func (u *Universe) MatchRecords(query string, topK int) []string {
	queryTokens := Tokenize(query)
	if len(queryTokens) == 0 {
		return nil
	}

	type hit struct {
		score float64
		id    string
	}
	var hits []hit
	for _, rec := range u.Records {
		score := overlapScore(queryTokens, Tokenize(rec.AnswerText))
		if score > 0 {
			hits = append(hits, hit{score: score, id: rec.RecordID})
		}
	}
	sort.SliceStable(hits, func(i, j int) bool { return hits[i].score > hits[j].score })

	var selected []string
	for _, h := range hits {
		if h.score < matchThreshold || len(selected) >= topK {
			continue
		}
		selected = append(selected, h.id)
	}

	if len(selected) == 0 && len(hits) > 0 {
		n := min(topK, 3)
		if n > len(hits) {
			n = len(hits)
		}
		for _, h := range hits[:n] {
			selected = append(selected, h.id)
		}
	}
	return selected
}

// overlapScore is |query ∩ doc| / |query|, zero when either set is empty.
func overlapScore(queryTokens, docTokens map[string]struct{}) float64 {
	if len(queryTokens) == 0 || len(docTokens) == 0 {
		return 0
	}
	overlap := 0
	for token := range queryTokens {
		if _, ok := docTokens[token]; ok {
			overlap++
		}
	}
	return float64(overlap) / float64(len(queryTokens))
}
