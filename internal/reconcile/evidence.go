package reconcile

import (
	"github.com/openconsult/consultsum/internal/model"
)

// CollectBulletIDs adds every evidence ID the bullets cite into ids.
func CollectBulletIDs(ids map[string]struct{}, bullets []model.Bullet) {
	for _, bullet := range bullets {
		for _, id := range bullet.EvidenceIDs {
			ids[id] = struct{}{}
		}
	}
}

// CollectClusterIDs adds every member and evidence ID the clusters cite
// into ids.
func CollectClusterIDs(ids map[string]struct{}, clusters []model.Cluster) {
	for _, cluster := range clusters {
		for _, id := range cluster.MemberRecordIDs {
			ids[id] = struct{}{}
		}
		for _, id := range cluster.EvidenceIDs {
			ids[id] = struct{}{}
		}
	}
}

// BuildEvidenceIndex joins referenced record IDs to their source excerpts,
// sorted by record ID. IDs absent from the universe are silently skipped;
// upstream filtering should prevent them, but the index never fails on one.
func BuildEvidenceIndex(u *Universe, referenced map[string]struct{}) []model.EvidenceRef {
	if len(referenced) == 0 {
		return nil
	}

	refs := make([]model.EvidenceRef, 0, len(referenced))
	for _, id := range sortedKeys(referenced) {
		rec, ok := u.Get(id)
		if !ok {
			continue
		}
		refs = append(refs, model.EvidenceRef{RecordID: id, Excerpt: rec.Excerpt})
	}
	return refs
}
