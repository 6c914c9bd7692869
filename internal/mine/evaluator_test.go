package mine

import (
	"context"
	"testing"

	"github.com/podsift/podsift/internal/model"
)

func candidateClaims() []model.Claim {
	return []model.Claim{
		{ID: "c001", Canonical: "The human genome has about 3 billion base pairs.", Evidence: "roughly three billion base pairs", Importance: 8.5},
		{ID: "c002", Canonical: "Sequencing costs fell below $200.", Evidence: "under two hundred dollars", Importance: 7.0},
		{ID: "c003", Canonical: "This podcast is the best.", Evidence: "we are the best podcast", Importance: 2.0},
	}
}

func TestFlagshipEvaluator_SplitsAcceptedAndRejected(t *testing.T) {
	provider := &mockProvider{response: `[
		{"index": 0, "accepted": true, "reason": "specific and checkable"},
		{"index": 1, "accepted": true, "reason": "specific and checkable"},
		{"index": 2, "accepted": false, "reason": "self-promotion"}
	]`}
	evaluator := NewFlagshipEvaluator(provider)

	accepted, rejected, err := evaluator.Evaluate(context.Background(), candidateClaims())
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if len(accepted) != 2 {
		t.Errorf("Expected 2 accepted, got %d", len(accepted))
	}
	if len(rejected) != 1 {
		t.Fatalf("Expected 1 rejected, got %d", len(rejected))
	}
	if rejected[0].Reason != "self-promotion" {
		t.Errorf("Expected rejection reason preserved, got %q", rejected[0].Reason)
	}
}

func TestFlagshipEvaluator_MissingVerdictRejects(t *testing.T) {
	// Verdict for claim 2 omitted entirely
	provider := &mockProvider{response: `[
		{"index": 0, "accepted": true},
		{"index": 2, "accepted": false, "reason": "self-promotion"}
	]`}
	evaluator := NewFlagshipEvaluator(provider)

	accepted, rejected, err := evaluator.Evaluate(context.Background(), candidateClaims())
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if len(accepted) != 1 {
		t.Errorf("Expected 1 accepted, got %d", len(accepted))
	}
	if len(rejected) != 2 {
		t.Errorf("Expected silence to reject, got %d rejected", len(rejected))
	}
}

func TestFlagshipEvaluator_ImportanceOverride(t *testing.T) {
	provider := &mockProvider{response: `[
		{"index": 0, "accepted": true, "importance": 9.5},
		{"index": 1, "accepted": true},
		{"index": 2, "accepted": true}
	]`}
	evaluator := NewFlagshipEvaluator(provider)

	accepted, _, err := evaluator.Evaluate(context.Background(), candidateClaims())
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if accepted[0].Importance != 9.5 {
		t.Errorf("Expected importance override to 9.5, got %v", accepted[0].Importance)
	}
	// No override keeps the miner's rating
	if accepted[1].Importance != 7.0 {
		t.Errorf("Expected original importance kept, got %v", accepted[1].Importance)
	}
}

func TestFlagshipEvaluator_EmptyInput(t *testing.T) {
	provider := &mockProvider{response: "[]"}
	evaluator := NewFlagshipEvaluator(provider)

	accepted, rejected, err := evaluator.Evaluate(context.Background(), nil)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if len(accepted) != 0 || len(rejected) != 0 {
		t.Error("Expected empty results for empty input")
	}
	if provider.calls != 0 {
		t.Errorf("Expected no LLM call for empty input, got %d", provider.calls)
	}
}

func TestDedupeCandidates(t *testing.T) {
	claims := []model.Claim{
		{ID: "c001", Canonical: "The genome has 3 billion base pairs.", Importance: 6},
		{ID: "c002", Canonical: "the genome has 3 billion base pairs", Importance: 8},
		{ID: "c003", Canonical: "A different claim entirely.", Importance: 5},
	}

	unique, dupes := DedupeCandidates(claims)

	if len(unique) != 2 {
		t.Fatalf("Expected 2 unique claims, got %d", len(unique))
	}
	if len(dupes) != 1 {
		t.Fatalf("Expected 1 duplicate, got %d", len(dupes))
	}
	// The higher-importance copy wins
	if unique[0].ID != "c002" {
		t.Errorf("Expected higher-importance duplicate kept, got %s", unique[0].ID)
	}
	if dupes[0].Reason != "duplicate candidate" {
		t.Errorf("Expected duplicate reason, got %q", dupes[0].Reason)
	}
}
