package model

import "time"

// Report is the terminal artifact of one pipeline run: the accepted claims
// with their metadata, the transcript they came from, and everything the
// review surface needs to judge the run.
//
// Derived values (acceptance rate, tier buckets, quality assessment) are
// computed on read, never cached, because claim promotion mutates the
// underlying lists after the report is built.
type Report struct {
	SourceURL  string            `json:"source_url"`
	Metadata   SourceMetadata    `json:"metadata"`
	FetchedAt  time.Time         `json:"fetched_at"`
	Transcript *TranscriptResult `json:"transcript"`

	Claims         []ClaimWithMetadata `json:"claims"`
	Rejected       []RejectedClaim     `json:"rejected,omitempty"`
	CandidateCount int                 `json:"candidate_count"` // Mined claims before evaluation

	Stats   map[string]time.Duration `json:"stats,omitempty"` // Per-stage wall time
	Summary string                   `json:"summary,omitempty"`
}

// SourceMetadata carries episode-level context for mining and attribution
type SourceMetadata struct {
	Title       string `json:"title,omitempty"`
	ShowName    string `json:"show_name,omitempty"`
	Description string `json:"description,omitempty"`
	HostName    string `json:"host_name,omitempty"`
}

// AcceptanceRate returns accepted claims over mined candidates, 0 when
// nothing was mined.
func (r *Report) AcceptanceRate() float64 {
	if r.CandidateCount == 0 {
		return 0
	}
	return float64(len(r.Claims)) / float64(r.CandidateCount)
}

// TierCounts buckets accepted claims by derived tier
func (r *Report) TierCounts() map[Tier]int {
	counts := make(map[Tier]int)
	for _, c := range r.Claims {
		counts[c.Claim.Tier()]++
	}
	return counts
}

// QualityStatus is the four-level run assessment
type QualityStatus string

const (
	QualityGood        QualityStatus = "Good"
	QualityAcceptable  QualityStatus = "Acceptable"
	QualityNeedsReview QualityStatus = "Needs Review"
	QualityPoor        QualityStatus = "Poor"
)

// QualityAssessment combines transcript quality and acceptance rate into
// an overall status plus an optional actionable suggestion. The review UI
// surfaces Suggestion to drive its re-run affordance.
type QualityAssessment struct {
	Status            QualityStatus `json:"status"`
	TranscriptQuality float64       `json:"transcript_quality"`
	AcceptanceRate    float64       `json:"acceptance_rate"`
	Suggestion        string        `json:"suggestion,omitempty"`
}
