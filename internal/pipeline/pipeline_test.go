package pipeline

import (
	"context"
	"fmt"
	"testing"

	"github.com/podsift/podsift/internal/llm"
	"github.com/podsift/podsift/internal/match"
	"github.com/podsift/podsift/internal/model"
	"github.com/podsift/podsift/internal/transcript"
)

type fakeFetcher struct {
	result *model.TranscriptResult
	err    error
}

func (f *fakeFetcher) GetTranscript(ctx context.Context, sourceURL string, opts transcript.Options) (*model.TranscriptResult, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

type fakeMiner struct {
	claims []model.Claim
	err    error
}

func (f *fakeMiner) Mine(ctx context.Context, transcriptText string, meta model.SourceMetadata) ([]model.Claim, error) {
	return f.claims, f.err
}

type fakeEvaluator struct {
	accept int // accept the first N candidates, reject the rest
}

func (f *fakeEvaluator) Evaluate(ctx context.Context, claims []model.Claim) ([]model.Claim, []model.RejectedClaim, error) {
	var accepted []model.Claim
	var rejected []model.RejectedClaim
	for i, c := range claims {
		if i < f.accept {
			accepted = append(accepted, c)
		} else {
			rejected = append(rejected, model.RejectedClaim{Claim: c, Reason: "not flagship-worthy"})
		}
	}
	return accepted, rejected, nil
}

type fakeAttributor struct {
	attributeCalls int
	batchCalls     int
}

func (f *fakeAttributor) Attribute(ctx context.Context, claim model.ClaimWithMetadata, t *model.TranscriptResult, meta model.SourceMetadata) *model.SpeakerAttribution {
	f.attributeCalls++
	return &model.SpeakerAttribution{SpeakerName: "Dr. Smith", Confidence: 0.9}
}

func (f *fakeAttributor) AttributeBatch(ctx context.Context, claims []model.ClaimWithMetadata, t *model.TranscriptResult, meta model.SourceMetadata, minImportance float64) {
	f.batchCalls++
	for i := range claims {
		if claims[i].Claim.Importance >= minImportance {
			claims[i].Speaker = f.Attribute(ctx, claims[i], t, meta)
		}
	}
}

type staticProvider struct {
	text string
	err  error
}

func (p *staticProvider) Name() string { return "static" }

func (p *staticProvider) Complete(ctx context.Context, req llm.CompletionRequest) (*llm.CompletionResponse, error) {
	if p.err != nil {
		return nil, p.err
	}
	return &llm.CompletionResponse{Text: p.text}, nil
}

func (p *staticProvider) IsAvailable(ctx context.Context) bool { return true }

func testTranscript() *model.TranscriptResult {
	return &model.TranscriptResult{
		Text: "the study found intermittent fasting reduced inflammation markers by forty percent in the trial group",
		Segments: []model.TranscriptSegment{
			{Text: "the study found intermittent fasting", Start: 0, Duration: 4},
			{Text: "reduced inflammation markers by forty percent", Start: 4, Duration: 5},
			{Text: "in the trial group", Start: 9, Duration: 3},
		},
		SourceType:         model.SourceCaptions,
		QualityScore:       0.9,
		TimestampPrecision: model.PrecisionSegment,
	}
}

func testPipeline(fetcher *fakeFetcher, miner *fakeMiner, evaluator *fakeEvaluator, attributor *fakeAttributor, summarizer llm.Provider) *Pipeline {
	cfg := model.DefaultConfig()
	return New(cfg, Deps{
		Fetcher:    fetcher,
		Miner:      miner,
		Evaluator:  evaluator,
		Matcher:    match.NewMatcher(cfg.Matcher),
		Attributor: attributor,
		Summarizer: summarizer,
	})
}

func minedCandidates(n int) []model.Claim {
	claims := make([]model.Claim, 0, n)
	for i := 0; i < n; i++ {
		claims = append(claims, model.Claim{
			ID:         fmt.Sprintf("c%03d", i+1),
			Canonical:  fmt.Sprintf("Candidate claim %d", i+1),
			Evidence:   "reduced inflammation markers by forty percent",
			Importance: 5,
		})
	}
	return claims
}

func TestProcessEndToEnd(t *testing.T) {
	fetcher := &fakeFetcher{result: testTranscript()}
	miner := &fakeMiner{claims: minedCandidates(40)}
	attributor := &fakeAttributor{}
	p := testPipeline(fetcher, miner, &fakeEvaluator{accept: 12}, attributor, nil)

	report, err := p.Process(context.Background(), Source{URL: "https://www.youtube.com/watch?v=dQw4w9WgXcQ"})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if report.CandidateCount != 40 {
		t.Errorf("Expected 40 candidates, got %d", report.CandidateCount)
	}
	if len(report.Claims) != 12 {
		t.Errorf("Expected 12 accepted claims, got %d", len(report.Claims))
	}
	if len(report.Rejected) != 28 {
		t.Errorf("Expected 28 rejected claims, got %d", len(report.Rejected))
	}
	if rate := report.AcceptanceRate(); rate != 0.30 {
		t.Errorf("Expected acceptance rate 0.30, got %v", rate)
	}

	assessment := Assess(report)
	if assessment.Status != model.QualityGood {
		t.Errorf("Expected Good assessment, got %q", assessment.Status)
	}
	if assessment.Suggestion != "" {
		t.Errorf("Expected no suggestion for a good run, got %q", assessment.Suggestion)
	}

	for _, c := range report.Claims {
		if c.Timestamp == nil {
			t.Fatalf("Expected every accepted claim to carry a timestamp")
		}
	}
	if attributor.batchCalls != 1 {
		t.Errorf("Expected one attribution batch, got %d", attributor.batchCalls)
	}

	for _, stage := range []string{"fetch_transcript", "mine_claims", "evaluate_claims", "match_timestamps", "attribute_speakers"} {
		if _, ok := report.Stats[stage]; !ok {
			t.Errorf("Expected timing for stage %q", stage)
		}
	}
}

func TestProcessFetchErrorAborts(t *testing.T) {
	fetcher := &fakeFetcher{err: fmt.Errorf("no captions")}
	p := testPipeline(fetcher, &fakeMiner{}, &fakeEvaluator{}, &fakeAttributor{}, nil)

	_, err := p.Process(context.Background(), Source{URL: "https://example.com/ep1"})
	if err == nil {
		t.Fatal("Expected an error when the transcript fetch fails")
	}
}

func TestProcessBatchIsolatesFailures(t *testing.T) {
	calls := 0
	fetcher := &fakeFetcher{result: testTranscript()}
	miner := &fakeMiner{claims: minedCandidates(4)}
	p := testPipeline(fetcher, miner, &fakeEvaluator{accept: 2}, &fakeAttributor{}, nil)

	// First source fails at the fetch stage, the second succeeds
	failing := &failingOnceFetcher{fetcher: fetcher, failFirst: true, calls: &calls}
	p.deps.Fetcher = failing

	results := p.ProcessBatch(context.Background(), []Source{
		{URL: "https://example.com/bad"},
		{URL: "https://example.com/good"},
	})

	// The failed source is absent from the results, not a placeholder
	if len(results) != 1 {
		t.Fatalf("Expected 1 batch result, got %d", len(results))
	}
	if results[0].Source.URL != "https://example.com/good" {
		t.Errorf("Expected the surviving source, got %s", results[0].Source.URL)
	}
	if results[0].Report == nil || len(results[0].Report.Claims) != 2 {
		t.Error("Expected a full report for the surviving source")
	}
	if calls != 2 {
		t.Errorf("Expected both sources to be attempted, got %d calls", calls)
	}
}

type failingOnceFetcher struct {
	fetcher   *fakeFetcher
	failFirst bool
	calls     *int
}

func (f *failingOnceFetcher) GetTranscript(ctx context.Context, sourceURL string, opts transcript.Options) (*model.TranscriptResult, error) {
	*f.calls++
	if f.failFirst && *f.calls == 1 {
		return nil, fmt.Errorf("transcript unavailable")
	}
	return f.fetcher.GetTranscript(ctx, sourceURL, opts)
}

func TestPromoteClaimOutOfRange(t *testing.T) {
	attributor := &fakeAttributor{}
	p := testPipeline(&fakeFetcher{}, &fakeMiner{}, &fakeEvaluator{}, attributor, nil)

	report := &model.Report{
		Transcript: testTranscript(),
		Rejected: []model.RejectedClaim{
			{Claim: model.Claim{Canonical: "Only claim"}, Reason: "weak"},
		},
	}

	p.PromoteClaim(context.Background(), report, 5)
	p.PromoteClaim(context.Background(), report, -1)

	if len(report.Rejected) != 1 || len(report.Claims) != 0 {
		t.Error("Expected out-of-range promotion to leave the report unchanged")
	}
	if attributor.attributeCalls != 0 {
		t.Error("Expected no attribution for a failed promotion")
	}
}

func TestPromoteClaimIsFirstClass(t *testing.T) {
	attributor := &fakeAttributor{}
	p := testPipeline(&fakeFetcher{}, &fakeMiner{}, &fakeEvaluator{}, attributor, nil)

	report := &model.Report{
		Transcript: testTranscript(),
		Rejected: []model.RejectedClaim{
			{Claim: model.Claim{
				Canonical:  "Fasting reduced inflammation markers",
				Evidence:   "reduced inflammation markers by forty percent",
				Importance: 8,
			}, Reason: "too niche"},
		},
	}

	p.PromoteClaim(context.Background(), report, 0)

	if len(report.Rejected) != 0 {
		t.Fatalf("Expected rejected list to empty, got %d entries", len(report.Rejected))
	}
	if len(report.Claims) != 1 {
		t.Fatalf("Expected 1 accepted claim, got %d", len(report.Claims))
	}

	promoted := report.Claims[0]
	if promoted.Timestamp == nil {
		t.Error("Expected the promoted claim to be re-matched")
	}
	if promoted.Speaker == nil {
		t.Error("Expected attribution for a high-importance promoted claim")
	}
	if attributor.attributeCalls != 1 {
		t.Errorf("Expected exactly one attribution call, got %d", attributor.attributeCalls)
	}
}

func TestPromoteClaimSkipsAttributionBelowThreshold(t *testing.T) {
	attributor := &fakeAttributor{}
	p := testPipeline(&fakeFetcher{}, &fakeMiner{}, &fakeEvaluator{}, attributor, nil)

	report := &model.Report{
		Transcript: testTranscript(),
		Rejected: []model.RejectedClaim{
			{Claim: model.Claim{
				Canonical:  "Minor aside about the trial group",
				Evidence:   "in the trial group",
				Importance: 3,
			}},
		},
	}

	p.PromoteClaim(context.Background(), report, 0)

	if len(report.Claims) != 1 {
		t.Fatalf("Expected the claim to be promoted, got %d claims", len(report.Claims))
	}
	if report.Claims[0].Speaker != nil {
		t.Error("Expected no attribution below the importance threshold")
	}
	if attributor.attributeCalls != 0 {
		t.Errorf("Expected zero attribution calls, got %d", attributor.attributeCalls)
	}
}

func TestDemoteClaim(t *testing.T) {
	p := testPipeline(&fakeFetcher{}, &fakeMiner{}, &fakeEvaluator{}, &fakeAttributor{}, nil)

	report := &model.Report{
		Claims: []model.ClaimWithMetadata{
			{Claim: model.Claim{Canonical: "Keep this"}},
			{Claim: model.Claim{Canonical: "Drop this"}},
		},
	}

	p.DemoteClaim(report, 1, "duplicate of an earlier claim")

	if len(report.Claims) != 1 || report.Claims[0].Claim.Canonical != "Keep this" {
		t.Error("Expected the second claim to be removed")
	}
	if len(report.Rejected) != 1 || report.Rejected[0].Reason != "duplicate of an earlier claim" {
		t.Error("Expected the demoted claim in the rejected list with its reason")
	}

	p.DemoteClaim(report, 9, "bad index")
	if len(report.Claims) != 1 {
		t.Error("Expected out-of-range demotion to be a no-op")
	}
}

func TestGenerateSummary(t *testing.T) {
	summarizer := &staticProvider{text: "An episode about fasting research."}
	p := testPipeline(&fakeFetcher{}, &fakeMiner{}, &fakeEvaluator{}, &fakeAttributor{}, summarizer)

	report := &model.Report{
		Claims: []model.ClaimWithMetadata{
			{Claim: model.Claim{Canonical: "Fasting reduced inflammation", Importance: 9}},
		},
	}

	if err := p.GenerateSummary(context.Background(), report); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if report.Summary != "An episode about fasting research." {
		t.Errorf("Expected the summary to be stored, got %q", report.Summary)
	}
}

func TestGenerateSummaryWithoutSummarizer(t *testing.T) {
	p := testPipeline(&fakeFetcher{}, &fakeMiner{}, &fakeEvaluator{}, &fakeAttributor{}, nil)

	report := &model.Report{
		Claims: []model.ClaimWithMetadata{{Claim: model.Claim{Canonical: "A claim"}}},
	}
	if err := p.GenerateSummary(context.Background(), report); err != nil {
		t.Errorf("Expected nil summarizer to be a no-op, got %v", err)
	}
	if report.Summary != "" {
		t.Errorf("Expected no summary, got %q", report.Summary)
	}
}
