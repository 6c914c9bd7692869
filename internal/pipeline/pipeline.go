package pipeline

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/podsift/podsift/internal/llm"
	"github.com/podsift/podsift/internal/match"
	"github.com/podsift/podsift/internal/mine"
	"github.com/podsift/podsift/internal/model"
	"github.com/podsift/podsift/internal/transcript"
)

// TranscriptFetcher obtains a transcript for a source URL
type TranscriptFetcher interface {
	GetTranscript(ctx context.Context, sourceURL string, opts transcript.Options) (*model.TranscriptResult, error)
}

// SpeakerAttributor performs importance-gated speaker identification
type SpeakerAttributor interface {
	Attribute(ctx context.Context, claim model.ClaimWithMetadata, t *model.TranscriptResult, meta model.SourceMetadata) *model.SpeakerAttribution
	AttributeBatch(ctx context.Context, claims []model.ClaimWithMetadata, t *model.TranscriptResult, meta model.SourceMetadata, minImportance float64)
}

// Deps are the pipeline's collaborators, constructed up front and
// injected. There is no lazy client initialization; a misconfigured
// backend fails at startup, not mid-run.
type Deps struct {
	Fetcher    TranscriptFetcher
	Miner      mine.Miner
	Evaluator  mine.Evaluator
	Matcher    *match.Matcher
	Attributor SpeakerAttributor
	Summarizer llm.Provider // optional; nil disables summaries
}

// Source identifies one episode to process
type Source struct {
	URL       string
	AudioPath string
	Metadata  model.SourceMetadata
}

// Pipeline orchestrates the claims-first extraction flow:
// fetch transcript, mine candidates, evaluate, match timestamps,
// attribute speakers. Stages run strictly in order; each stage is timed.
//
// A Pipeline holds no mutable state between Process calls. It is safe to
// reuse sequentially; concurrent Process calls on one instance are not
// guaranteed safe.
type Pipeline struct {
	deps   Deps
	config *model.Config
}

// New creates a pipeline with explicit dependencies
func New(cfg *model.Config, deps Deps) *Pipeline {
	return &Pipeline{deps: deps, config: cfg}
}

// BatchResult pairs a source with its completed report
type BatchResult struct {
	Source Source
	Report *model.Report
}

// Process runs the full pipeline for one source. A stage error aborts
// the call; there are no retries inside the pipeline.
func (p *Pipeline) Process(ctx context.Context, source Source) (*model.Report, error) {
	stats := make(map[string]time.Duration)

	// 1. Fetch transcript
	stageStart := time.Now()
	transcriptResult, err := p.deps.Fetcher.GetTranscript(ctx, source.URL, transcript.Options{
		AudioPath:        source.AudioPath,
		PreferCaptions:   p.config.Transcript.PreferCaptions,
		QualityThreshold: p.config.Transcript.QualityThreshold,
		ForceWhisper:     p.config.Transcript.ForceWhisper,
	})
	if err != nil {
		return nil, fmt.Errorf("fetch transcript: %w", err)
	}
	stats["fetch_transcript"] = time.Since(stageStart)

	// 2. Mine candidate claims
	stageStart = time.Now()
	candidates, err := p.deps.Miner.Mine(ctx, transcriptResult.Text, source.Metadata)
	if err != nil {
		return nil, fmt.Errorf("mine claims: %w", err)
	}
	stats["mine_claims"] = time.Since(stageStart)

	// 3. Evaluate candidates
	stageStart = time.Now()
	accepted, rejected, err := p.deps.Evaluator.Evaluate(ctx, candidates)
	if err != nil {
		return nil, fmt.Errorf("evaluate claims: %w", err)
	}
	stats["evaluate_claims"] = time.Since(stageStart)

	// 4. Match timestamps
	stageStart = time.Now()
	claims := make([]model.ClaimWithMetadata, 0, len(accepted))
	for _, claim := range accepted {
		claims = append(claims, model.ClaimWithMetadata{
			Claim:     claim,
			Timestamp: p.deps.Matcher.Match(claim, transcriptResult),
		})
	}
	stats["match_timestamps"] = time.Since(stageStart)

	// 5. Attribute speakers to high-value claims
	stageStart = time.Now()
	p.deps.Attributor.AttributeBatch(ctx, claims, transcriptResult, source.Metadata, p.config.Attribution.MinImportance)
	stats["attribute_speakers"] = time.Since(stageStart)

	return &model.Report{
		SourceURL:      source.URL,
		Metadata:       source.Metadata,
		FetchedAt:      time.Now().UTC(),
		Transcript:     transcriptResult,
		Claims:         claims,
		Rejected:       rejected,
		CandidateCount: len(candidates),
		Stats:          stats,
	}, nil
}

// ProcessBatch processes sources sequentially with per-source failure
// isolation: one bad source never aborts the batch. Failed sources are
// logged and absent from the returned list; there is no partial-result
// placeholder. Callers wanting parallelism fan out above this (see
// worker.BatchProcessor).
func (p *Pipeline) ProcessBatch(ctx context.Context, sources []Source) []BatchResult {
	results := make([]BatchResult, 0, len(sources))
	for _, source := range sources {
		report, err := p.Process(ctx, source)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: processing %s failed: %v\n", source.URL, err)
			continue
		}
		results = append(results, BatchResult{Source: source, Report: report})
	}
	return results
}

// PromoteClaim moves a rejected claim into the accepted set, running it
// through the matcher and, when its importance clears the attribution
// threshold, the attributor — so promoted claims are first-class.
//
// An out-of-range index logs an error and leaves the report unchanged.
func (p *Pipeline) PromoteClaim(ctx context.Context, report *model.Report, index int) {
	if index < 0 || index >= len(report.Rejected) {
		fmt.Fprintf(os.Stderr, "Error: promote index %d out of range (0-%d)\n", index, len(report.Rejected)-1)
		return
	}

	promoted := report.Rejected[index].Claim
	report.Rejected = append(report.Rejected[:index], report.Rejected[index+1:]...)

	entry := model.ClaimWithMetadata{
		Claim:     promoted,
		Timestamp: p.deps.Matcher.Match(promoted, report.Transcript),
	}
	if promoted.Importance >= p.config.Attribution.MinImportance {
		entry.Speaker = p.deps.Attributor.Attribute(ctx, entry, report.Transcript, report.Metadata)
	}

	report.Claims = append(report.Claims, entry)
}

// DemoteClaim moves an accepted claim back into the rejected set with the
// reviewer's reason. The inverse of PromoteClaim; same index semantics.
func (p *Pipeline) DemoteClaim(report *model.Report, index int, reason string) {
	if index < 0 || index >= len(report.Claims) {
		fmt.Fprintf(os.Stderr, "Error: demote index %d out of range (0-%d)\n", index, len(report.Claims)-1)
		return
	}

	demoted := report.Claims[index].Claim
	report.Claims = append(report.Claims[:index], report.Claims[index+1:]...)
	report.Rejected = append(report.Rejected, model.RejectedClaim{Claim: demoted, Reason: reason})
}

// GenerateSummary produces a short episode summary from the accepted
// claims and stores it on the report. Summary failure is a warning for
// callers, never fatal to the run.
func (p *Pipeline) GenerateSummary(ctx context.Context, report *model.Report) error {
	if p.deps.Summarizer == nil {
		return nil
	}
	if len(report.Claims) == 0 {
		return nil
	}

	resp, err := p.deps.Summarizer.Complete(ctx, llm.CompletionRequest{
		Prompt:      buildSummaryPrompt(report),
		Temperature: 0.3,
	})
	if err != nil {
		return fmt.Errorf("summary call: %w", err)
	}

	report.Summary = resp.Text
	return nil
}

func buildSummaryPrompt(report *model.Report) string {
	var b strings.Builder

	b.WriteString("Write a 3-4 sentence summary of this episode based only on the extracted claims below. ")
	b.WriteString("Lead with the most important claims.\n\n")

	if report.Metadata.Title != "" {
		fmt.Fprintf(&b, "Episode: %s\n", report.Metadata.Title)
	}
	b.WriteString("Claims by tier:\n")

	// A-tier first; cap the prompt at 25 claims
	listed := 0
	for _, tier := range []model.Tier{model.TierA, model.TierB, model.TierC, model.TierD} {
		for _, c := range report.Claims {
			if c.Claim.Tier() != tier || listed >= 25 {
				continue
			}
			fmt.Fprintf(&b, "- [%s] %s\n", tier, c.Claim.Canonical)
			listed++
		}
	}

	return b.String()
}
