package reconcile

import (
	"sort"

	"github.com/openconsult/consultsum/internal/model"
)

// Universe is the fixed, read-only set of records in scope for one
// reconciliation call: all records for one organisation, or all records for
// one question. Every evidence or member ID a summary cites must resolve
// inside its universe.
type Universe struct {
	Records []model.Record

	byID map[string]model.Record
}

// NewUniverse indexes the given records. The slice order is preserved and
// meaningful: lexical-match ties and sample fallbacks follow it.
func NewUniverse(records []model.Record) *Universe {
	byID := make(map[string]model.Record, len(records))
	for _, rec := range records {
		byID[rec.RecordID] = rec
	}
	return &Universe{Records: records, byID: byID}
}

// Size returns the number of records in the universe.
func (u *Universe) Size() int {
	return len(u.Records)
}

// Contains reports whether a record ID exists in the universe.
func (u *Universe) Contains(id string) bool {
	_, ok := u.byID[id]
	return ok
}

// Get returns the record for an ID when present.
func (u *Universe) Get(id string) (model.Record, bool) {
	rec, ok := u.byID[id]
	return rec, ok
}

// FilterIDs returns the candidate IDs that exist in the universe, preserving
// input order. Filtering is idempotent: re-filtering an already-filtered
// list returns it unchanged.
func (u *Universe) FilterIDs(candidates []string) []string {
	var filtered []string
	for _, id := range candidates {
		if u.Contains(id) {
			filtered = append(filtered, id)
		}
	}
	return filtered
}

// supportSets resolves record IDs to sorted unique response IDs and
// organisation names.
func (u *Universe) supportSets(ids []string) (responseIDs, organisations []string) {
	responseSet := make(map[string]struct{})
	orgSet := make(map[string]struct{})
	for _, id := range ids {
		rec, ok := u.byID[id]
		if !ok {
			continue
		}
		responseSet[rec.ResponseID] = struct{}{}
		orgSet[rec.OrganisationName] = struct{}{}
	}
	return sortedKeys(responseSet), sortedKeys(orgSet)
}

func sortedKeys(set map[string]struct{}) []string {
	keys := make([]string, 0, len(set))
	for key := range set {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
