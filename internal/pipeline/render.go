package pipeline

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/podsift/podsift/internal/model"
)

// Renderer writes reports to files and the terminal
type Renderer struct {
	includeFooter bool
}

// NewRenderer creates a new renderer
func NewRenderer(includeFooter bool) *Renderer {
	return &Renderer{includeFooter: includeFooter}
}

// RenderJSON writes the full report as indented JSON
func (r *Renderer) RenderJSON(report *model.Report, path string) error {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	return nil
}

// RenderMarkdown writes a tier-bucketed claim sheet for human review
func (r *Renderer) RenderMarkdown(report *model.Report, path string) error {
	var b strings.Builder

	title := report.Metadata.Title
	if title == "" {
		title = report.SourceURL
	}
	fmt.Fprintf(&b, "# Claims: %s\n\n", title)

	assessment := Assess(report)
	fmt.Fprintf(&b, "- Source: %s\n", report.SourceURL)
	fmt.Fprintf(&b, "- Transcript: %s (quality %.2f, %s precision)\n",
		report.Transcript.SourceType, report.Transcript.QualityScore, report.Transcript.TimestampPrecision)
	fmt.Fprintf(&b, "- Candidates mined: %d, accepted: %d (%.0f%%)\n",
		report.CandidateCount, len(report.Claims), report.AcceptanceRate()*100)
	fmt.Fprintf(&b, "- Quality: %s\n", assessment.Status)
	if assessment.Suggestion != "" {
		fmt.Fprintf(&b, "- Suggestion: %s\n", assessment.Suggestion)
	}
	b.WriteString("\n")

	if report.Summary != "" {
		b.WriteString("## Summary\n\n")
		b.WriteString(report.Summary)
		b.WriteString("\n\n")
	}

	for _, tier := range []model.Tier{model.TierA, model.TierB, model.TierC, model.TierD} {
		var bucket []model.ClaimWithMetadata
		for _, c := range report.Claims {
			if c.Claim.Tier() == tier {
				bucket = append(bucket, c)
			}
		}
		if len(bucket) == 0 {
			continue
		}

		fmt.Fprintf(&b, "## Tier %s\n\n", tier)
		for _, c := range bucket {
			fmt.Fprintf(&b, "- **%s** (importance %.1f)\n", c.Claim.Canonical, c.Claim.Importance)
			if c.Timestamp != nil {
				fmt.Fprintf(&b, "  - at %s (%s, confidence %.2f)\n",
					formatTime(c.Timestamp.Start), c.Timestamp.MatchMethod, c.Timestamp.Confidence)
			}
			if c.Speaker != nil {
				fmt.Fprintf(&b, "  - speaker: %s (confidence %.2f)\n", c.Speaker.SpeakerName, c.Speaker.Confidence)
			}
		}
		b.WriteString("\n")
	}

	if len(report.Rejected) > 0 {
		fmt.Fprintf(&b, "## Rejected (%d)\n\n", len(report.Rejected))
		for _, rc := range report.Rejected {
			fmt.Fprintf(&b, "- %s (%s)\n", rc.Claim.Canonical, rc.Reason)
		}
		b.WriteString("\n")
	}

	if r.includeFooter {
		b.WriteString("---\nGenerated by podsift\n")
	}

	if err := os.WriteFile(path, []byte(b.String()), 0644); err != nil {
		return fmt.Errorf("write markdown: %w", err)
	}
	return nil
}

// RenderSummary prints a short run summary to stdout
func (r *Renderer) RenderSummary(report *model.Report) {
	assessment := Assess(report)
	tiers := report.TierCounts()

	fmt.Printf("\n%s\n", report.SourceURL)
	fmt.Printf("  Claims: %d accepted of %d mined (A:%d B:%d C:%d D:%d)\n",
		len(report.Claims), report.CandidateCount,
		tiers[model.TierA], tiers[model.TierB], tiers[model.TierC], tiers[model.TierD])
	fmt.Printf("  Quality: %s (transcript %.2f, acceptance %.0f%%)\n",
		assessment.Status, assessment.TranscriptQuality, assessment.AcceptanceRate*100)
	if assessment.Suggestion != "" {
		fmt.Printf("  Suggestion: %s\n", assessment.Suggestion)
	}
}

// formatTime renders seconds as h:mm:ss or m:ss
func formatTime(seconds float64) string {
	total := int(seconds)
	h := total / 3600
	m := (total % 3600) / 60
	s := total % 60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%d:%02d", m, s)
}
