package model

// Stance classifies one record's position on the question it answers.
type Stance string

const (
	StanceSupport Stance = "support"
	StanceConcern Stance = "concern"
	StanceNeutral Stance = "neutral"
	StanceOther   Stance = "other"
)

// String returns the lower-case wire form used in serialized summaries.
func (s Stance) String() string {
	return string(s)
}

// ParseStance maps a free-form stance string to the closed stance set.
// Unrecognized values report ok=false so callers can keep the raw string
// where the original payload allowed arbitrary stances.
func ParseStance(value string) (Stance, bool) {
	switch Stance(value) {
	case StanceSupport, StanceConcern, StanceNeutral, StanceOther:
		return Stance(value), true
	}
	return StanceNeutral, false
}
