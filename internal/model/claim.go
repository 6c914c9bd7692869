package model

// Claim represents one factual claim mined from a transcript.
// Key aliasing in miner output (canonical/claim_text, evidence/evidence_quote)
// is resolved at the parse boundary; consumers only ever see this record.
type Claim struct {
	ID         string            `json:"id,omitempty"`     // Stable identifier within one report
	Canonical  string            `json:"canonical"`        // The claim text itself
	Evidence   string            `json:"evidence"`         // Supporting quote from the transcript
	Importance float64           `json:"importance"`       // 0-10 significance rating
	Topic      string            `json:"topic,omitempty"`  // Optional topic label from the miner
	Extras     map[string]string `json:"extras,omitempty"` // Miner-specific extension fields
}

// Tier is the letter grade derived from a claim's importance score
type Tier string

const (
	TierA Tier = "A" // importance >= 8
	TierB Tier = "B" // importance >= 6
	TierC Tier = "C" // importance >= 4
	TierD Tier = "D" // everything else
)

// Tier derives the letter grade from the importance score.
// Tier is never stored; it is always recomputed from Importance.
func (c Claim) Tier() Tier {
	switch {
	case c.Importance >= 8:
		return TierA
	case c.Importance >= 6:
		return TierB
	case c.Importance >= 4:
		return TierC
	default:
		return TierD
	}
}

// RejectedClaim is a claim the evaluator filtered out, with the reason
type RejectedClaim struct {
	Claim  Claim  `json:"claim"`
	Reason string `json:"reason,omitempty"`
}

// MatchMethod classifies how a timestamp match was found
type MatchMethod string

const (
	MatchExact    MatchMethod = "exact"    // Verbatim window match
	MatchFuzzy    MatchMethod = "fuzzy"    // Similarity above threshold
	MatchFallback MatchMethod = "fallback" // Best segment below threshold, confidence halved
)

// TimestampResult aligns a claim's evidence to a time range in the source.
// Invariant: End >= Start. A fallback match carries half the raw similarity
// as its confidence so callers can tell low-trust results apart.
type TimestampResult struct {
	Start       float64     `json:"start"`        // Seconds from source start
	End         float64     `json:"end"`          // Seconds from source start
	Confidence  float64     `json:"confidence"`   // 0-1
	Precision   Precision   `json:"precision"`    // word or segment
	MatchedText string      `json:"matched_text"` // Transcript text that matched
	MatchMethod MatchMethod `json:"match_method"`
}

// SpeakerAttribution identifies who voiced a claim.
// A nil attribution means "not attempted", not "failed"; failed attempts
// produce an Unknown speaker with zero confidence.
type SpeakerAttribution struct {
	SpeakerName string   `json:"speaker_name"`
	Confidence  float64  `json:"confidence"` // 0-1
	Reasoning   []string `json:"reasoning,omitempty"`
	IsHost      bool     `json:"is_host"`
	ClaimID     string   `json:"claim_id,omitempty"`
}

// ClaimWithMetadata is the unit of truth flowing out of the pipeline:
// one claim plus whatever alignment and attribution it earned.
type ClaimWithMetadata struct {
	Claim     Claim               `json:"claim"`
	Timestamp *TimestampResult    `json:"timestamp,omitempty"`
	Speaker   *SpeakerAttribution `json:"speaker,omitempty"`
}
