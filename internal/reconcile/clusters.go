package reconcile

import (
	"fmt"
	"sort"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/openconsult/consultsum/internal/model"
)

const (
	// clusterMatchTopK caps lexical-fallback membership per cluster.
	clusterMatchTopK = 14
	// clusterEvidenceCap bounds the citation subset taken from members.
	clusterEvidenceCap = 8
	// clusterSampleCap bounds the last-resort arbitrary sample.
	clusterSampleCap = 8
)

// stanceOrder fixes the bucket enumeration used for deterministic
// tie-breaking in fallback clustering.
var stanceOrder = []model.Stance{
	model.StanceSupport,
	model.StanceConcern,
	model.StanceNeutral,
	model.StanceOther,
}

// ParseClusters validates and normalizes cluster structures from a raw model
// payload value. Non-list values read as empty and non-object elements are
// skipped. Missing cluster IDs get "<prefix>_<index>" defaults; a missing
// label is kept empty here and defaulted during enrichment, so clusters are
// never dropped for a missing label.
func ParseClusters(raw any, u *Universe, fallbackPrefix string) []model.Cluster {
	items, ok := raw.([]any)
	if !ok {
		return nil
	}

	clusters := make([]model.Cluster, 0, len(items))
	for i, item := range items {
		obj, isObj := item.(map[string]any)
		if !isObj {
			continue
		}

		clusterID := strings.TrimSpace(textField(obj, "cluster_id"))
		if clusterID == "" {
			clusterID = fmt.Sprintf("%s_%d", fallbackPrefix, i+1)
		}
		stance := strings.ToLower(strings.TrimSpace(textField(obj, "stance")))
		if stance == "" {
			stance = model.StanceNeutral.String()
		}

		clusters = append(clusters, model.Cluster{
			ClusterID:               clusterID,
			Label:                   strings.TrimSpace(textField(obj, "label")),
			Stance:                  stance,
			MemberRecordIDs:         u.FilterIDs(stringList(obj["member_record_ids"])),
			EvidenceIDs:             u.FilterIDs(stringList(obj["evidence_ids"])),
			Significance:            strings.TrimSpace(textField(obj, "significance")),
			Description:             strings.TrimSpace(textField(obj, "description")),
			MemberCount:             intField(obj, "member_count"),
			ResponseCount:           intField(obj, "response_count"),
			OrganisationCount:       intField(obj, "organisation_count"),
			SupportingResponseIDs:   stringList(obj["supporting_response_ids"]),
			SupportingOrganisations: stringOnlyList(obj["supporting_organisations"]),
		})
	}
	return clusters
}

// EnrichClusters guarantees member, evidence, and count fields are
// populated. An empty candidate list is replaced by stance-based fallback
// clusters. Empty membership falls through three tiers: lexical match on
// the label plus significance/description, then records whose classified
// stance equals the declared stance, then an arbitrary sample of the
// universe. A cluster therefore has at least one member whenever the
// universe is non-empty.
func EnrichClusters(clusters []model.Cluster, u *Universe, fallbackPrefix string) []model.Cluster {
	source := clusters
	if len(source) == 0 {
		source = BuildFallbackClusters(u, fallbackPrefix)
	}

	enriched := make([]model.Cluster, 0, len(source))
	for i, cluster := range source {
		index := i + 1

		memberIDs := u.FilterIDs(cluster.MemberRecordIDs)
		if len(memberIDs) == 0 {
			memberIDs = u.MatchRecords(memberQuery(cluster), clusterMatchTopK)
		}
		if len(memberIDs) == 0 {
			memberIDs = u.stanceBucket(cluster.Stance, clusterMatchTopK)
		}
		if len(memberIDs) == 0 && u.Size() > 0 {
			n := min(clusterSampleCap, u.Size())
			for _, rec := range u.Records[:n] {
				memberIDs = append(memberIDs, rec.RecordID)
			}
		}

		evidenceIDs := u.FilterIDs(cluster.EvidenceIDs)
		if len(evidenceIDs) == 0 {
			evidenceIDs = memberIDs[:min(clusterEvidenceCap, len(memberIDs))]
		}

		responseIDs, organisations := u.supportSets(memberIDs)
		memberCount := cluster.MemberCount
		if memberCount == 0 {
			memberCount = len(memberIDs)
		}
		responseCount := cluster.ResponseCount
		if responseCount == 0 {
			responseCount = len(responseIDs)
		}
		organisationCount := cluster.OrganisationCount
		if organisationCount == 0 {
			organisationCount = len(organisations)
		}

		description := cluster.Description
		if description == "" {
			description = cluster.Significance
		}
		if description == "" {
			stance := cluster.Stance
			if stance == "" {
				stance = "mixed"
			}
			description = fmt.Sprintf(
				"%d responses from %d organisations with %s stance.",
				responseCount, organisationCount, stance,
			)
		}

		clusterID := cluster.ClusterID
		if clusterID == "" {
			clusterID = fmt.Sprintf("%s_%d", fallbackPrefix, index)
		}
		label := cluster.Label
		if label == "" {
			label = fmt.Sprintf("%s cluster %d", titleCase(fallbackPrefix), index)
		}
		stance := cluster.Stance
		if stance == "" {
			stance = model.StanceNeutral.String()
		}

		enriched = append(enriched, model.Cluster{
			ClusterID:               clusterID,
			Label:                   label,
			Stance:                  stance,
			MemberRecordIDs:         memberIDs,
			EvidenceIDs:             evidenceIDs,
			Significance:            cluster.Significance,
			Description:             description,
			MemberCount:             memberCount,
			ResponseCount:           responseCount,
			OrganisationCount:       organisationCount,
			SupportingResponseIDs:   responseIDs,
			SupportingOrganisations: organisations,
		})
	}
	return enriched
}

// ReconcileClusters parses and enriches raw cluster candidates in one pass.
func ReconcileClusters(raw any, u *Universe, fallbackPrefix string) []model.Cluster {
	return EnrichClusters(ParseClusters(raw, u, fallbackPrefix), u, fallbackPrefix)
}

// BuildFallbackClusters partitions the universe into stance buckets and
// emits one unenriched cluster per non-empty bucket, largest bucket first,
// ties broken by the fixed stance enumeration order.
func BuildFallbackClusters(u *Universe, prefix string) []model.Cluster {
	buckets := make(map[model.Stance][]string, len(stanceOrder))
	for _, rec := range u.Records {
		stance := Classify(rec)
		buckets[stance] = append(buckets[stance], rec.RecordID)
	}

	ordered := append([]model.Stance(nil), stanceOrder...)
	sort.SliceStable(ordered, func(i, j int) bool {
		return len(buckets[ordered[i]]) > len(buckets[ordered[j]])
	})

	var clusters []model.Cluster
	rank := 0
	for _, stance := range ordered {
		ids := buckets[stance]
		if len(ids) == 0 {
			continue
		}
		rank++
		clusters = append(clusters, model.Cluster{
			ClusterID:       fmt.Sprintf("%s_%d", prefix, rank),
			Label:           fmt.Sprintf("%s viewpoint", titleCase(stance.String())),
			Stance:          stance.String(),
			MemberRecordIDs: ids,
			EvidenceIDs:     ids[:min(clusterEvidenceCap, len(ids))],
			Significance:    fmt.Sprintf("Auto-clustered by stance: %s.", stance),
		})
	}
	return clusters
}

// memberQuery builds the lexical-fallback query for a cluster.
func memberQuery(cluster model.Cluster) string {
	extra := cluster.Significance
	if extra == "" {
		extra = cluster.Description
	}
	return strings.TrimSpace(cluster.Label + ". " + extra)
}

// stanceBucket returns up to cap records whose classified stance matches the
// declared stance string, in universe order.
func (u *Universe) stanceBucket(declared string, limit int) []string {
	declared = strings.ToLower(declared)
	var ids []string
	for _, rec := range u.Records {
		if Classify(rec).String() != declared {
			continue
		}
		ids = append(ids, rec.RecordID)
		if len(ids) >= limit {
			break
		}
	}
	return ids
}

// titleCase upper-cases word initials for generated labels. A fresh caser is
// built per call because cases.Caser is not safe for concurrent use.
func titleCase(s string) string {
	return cases.Title(language.English).String(s)
}
