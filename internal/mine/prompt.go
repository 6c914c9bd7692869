package mine

import (
	"fmt"
	"strings"

	"github.com/podsift/podsift/internal/model"
)

const minerSystemPrompt = `You extract factual claims from podcast transcripts. You respond with JSON only, no prose.`

const evaluatorSystemPrompt = `You are a strict fact-checking editor filtering candidate claims for a knowledge base. You respond with JSON only, no prose.`

// BuildMinerPrompt constructs the claim-mining prompt
func BuildMinerPrompt(transcriptText string, meta model.SourceMetadata) string {
	var b strings.Builder

	b.WriteString("Extract every distinct factual claim from this transcript.\n\n")
	b.WriteString("Rules:\n")
	b.WriteString("- A claim is a checkable factual assertion, not an opinion or anecdote.\n")
	b.WriteString("- canonical: the claim restated as one standalone sentence.\n")
	b.WriteString("- evidence: the closest verbatim quote from the transcript supporting it.\n")
	b.WriteString("- importance: 0-10 for how significant the claim is (8+ is headline-worthy).\n")
	b.WriteString("- topic: a short topic label.\n\n")

	if meta.Title != "" || meta.ShowName != "" {
		b.WriteString("Episode context:\n")
		if meta.ShowName != "" {
			fmt.Fprintf(&b, "- Show: %s\n", meta.ShowName)
		}
		if meta.Title != "" {
			fmt.Fprintf(&b, "- Title: %s\n", meta.Title)
		}
		b.WriteString("\n")
	}

	b.WriteString("Respond with a JSON array:\n")
	b.WriteString(`[{"canonical": "...", "evidence": "...", "importance": 7.5, "topic": "..."}]`)
	b.WriteString("\n\nTranscript:\n")
	b.WriteString(transcriptText)

	return b.String()
}

// BuildEvaluatorPrompt constructs the claim-filtering prompt over a
// numbered candidate list
func BuildEvaluatorPrompt(claims []model.Claim) string {
	var b strings.Builder

	b.WriteString("Evaluate each candidate claim below. Accept claims that are specific, ")
	b.WriteString("checkable, and worth keeping in a knowledge base. Reject vague statements, ")
	b.WriteString("opinions, self-promotion, and duplicates.\n\n")
	b.WriteString("For every claim return a verdict. You may adjust importance when the ")
	b.WriteString("candidate's rating is clearly wrong.\n\n")
	b.WriteString("Respond with a JSON array:\n")
	b.WriteString(`[{"index": 0, "accepted": true, "reason": "...", "importance": 8.0}]`)
	b.WriteString("\n\nCandidates:\n")

	for i, claim := range claims {
		fmt.Fprintf(&b, "%d. [importance %.1f] %s\n", i, claim.Importance, claim.Canonical)
		if claim.Evidence != "" {
			fmt.Fprintf(&b, "   evidence: %q\n", claim.Evidence)
		}
	}

	return b.String()
}
