package reconcile

import (
	"strings"

	"github.com/openconsult/consultsum/internal/model"
)

// bulletEvidenceTopK caps lexical-fallback evidence per bullet.
const bulletEvidenceTopK = 8

// ParseBullets validates and normalizes bullet structures from a raw model
// payload value. A non-list value reads as empty; non-object list elements
// become bare-text bullets with no evidence; declared evidence IDs outside
// the universe are dropped; candidates whose text trims to nothing are
// discarded.
func ParseBullets(raw any, u *Universe) []model.Bullet {
	items, ok := raw.([]any)
	if !ok {
		return nil
	}

	bullets := make([]model.Bullet, 0, len(items))
	for _, item := range items {
		var bullet model.Bullet
		if obj, isObj := item.(map[string]any); isObj {
			bullet = model.Bullet{
				Text:                    strings.TrimSpace(textField(obj, "text")),
				EvidenceIDs:             u.FilterIDs(stringList(obj["evidence_ids"])),
				Count:                   intField(obj, "count"),
				SupportingResponseIDs:   stringList(obj["supporting_response_ids"]),
				SupportingOrganisations: stringOnlyList(obj["supporting_organisations"]),
			}
		} else {
			text, isText := coerceString(item)
			if !isText {
				continue
			}
			bullet = model.Bullet{Text: strings.TrimSpace(text)}
		}

		if bullet.Text == "" {
			continue
		}
		bullets = append(bullets, bullet)
	}
	return bullets
}

// EnrichBullets fills missing evidence and support metadata. A bullet with
// no valid declared evidence falls back to lexical matching on its own text;
// when the declared count is zero the count becomes the number of distinct
// supporting responses. Input order is preserved and each bullet is
// reconciled independently.
func EnrichBullets(bullets []model.Bullet, u *Universe) []model.Bullet {
	enriched := make([]model.Bullet, 0, len(bullets))
	for _, bullet := range bullets {
		evidenceIDs := u.FilterIDs(bullet.EvidenceIDs)
		if len(evidenceIDs) == 0 {
			evidenceIDs = u.MatchRecords(bullet.Text, bulletEvidenceTopK)
		}

		responseIDs, organisations := u.supportSets(evidenceIDs)
		count := bullet.Count
		if count == 0 {
			count = len(responseIDs)
		}

		enriched = append(enriched, model.Bullet{
			Text:                    bullet.Text,
			EvidenceIDs:             evidenceIDs,
			Count:                   count,
			SupportingResponseIDs:   responseIDs,
			SupportingOrganisations: organisations,
		})
	}
	return enriched
}

// ReconcileBullets parses and enriches raw bullet candidates in one pass.
func ReconcileBullets(raw any, u *Universe) []model.Bullet {
	return EnrichBullets(ParseBullets(raw, u), u)
}
