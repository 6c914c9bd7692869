package mine

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/podsift/podsift/internal/llm"
	"github.com/podsift/podsift/internal/match"
	"github.com/podsift/podsift/internal/model"
)

// Evaluator filters candidate claims, splitting them into accepted and
// rejected sets
type Evaluator interface {
	Evaluate(ctx context.Context, claims []model.Claim) ([]model.Claim, []model.RejectedClaim, error)
}

// FlagshipEvaluator judges candidates with a single batch LLM call.
// Near-duplicate candidates are folded before the call so the model never
// wastes verdicts on them.
type FlagshipEvaluator struct {
	provider llm.Provider
}

// NewFlagshipEvaluator creates an evaluator backed by the given provider
func NewFlagshipEvaluator(provider llm.Provider) *FlagshipEvaluator {
	return &FlagshipEvaluator{provider: provider}
}

// verdict is one entry of the evaluator's JSON response
type verdict struct {
	Index      int     `json:"index"`
	Accepted   bool    `json:"accepted"`
	Reason     string  `json:"reason"`
	Importance float64 `json:"importance"`
}

// Evaluate runs the batch evaluation. Candidates the model returns no
// verdict for are rejected; silence is not acceptance.
func (e *FlagshipEvaluator) Evaluate(ctx context.Context, claims []model.Claim) ([]model.Claim, []model.RejectedClaim, error) {
	if len(claims) == 0 {
		return nil, nil, nil
	}

	candidates, dupes := DedupeCandidates(claims)

	resp, err := e.provider.Complete(ctx, llm.CompletionRequest{
		System:      evaluatorSystemPrompt,
		Prompt:      BuildEvaluatorPrompt(candidates),
		Temperature: 0.2,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("evaluator call: %w", err)
	}

	verdicts, err := parseVerdicts(resp.Text)
	if err != nil {
		return nil, nil, fmt.Errorf("parse evaluator output: %w", err)
	}

	byIndex := make(map[int]verdict, len(verdicts))
	for _, v := range verdicts {
		byIndex[v.Index] = v
	}

	var accepted []model.Claim
	rejected := dupes
	for i, claim := range candidates {
		v, ok := byIndex[i]
		if !ok {
			rejected = append(rejected, model.RejectedClaim{Claim: claim, Reason: "no verdict from evaluator"})
			continue
		}
		if !v.Accepted {
			reason := v.Reason
			if reason == "" {
				reason = "rejected by evaluator"
			}
			rejected = append(rejected, model.RejectedClaim{Claim: claim, Reason: reason})
			continue
		}
		if v.Importance > 0 {
			claim.Importance = v.Importance
		}
		accepted = append(accepted, claim)
	}

	return accepted, rejected, nil
}

func parseVerdicts(raw string) ([]verdict, error) {
	jsonText := ExtractJSON(raw)
	if jsonText == "" {
		return nil, fmt.Errorf("no JSON found in response")
	}

	var verdicts []verdict
	if err := json.Unmarshal([]byte(jsonText), &verdicts); err != nil {
		return nil, fmt.Errorf("decode verdicts: %w", err)
	}
	return verdicts, nil
}

// DedupeCandidates folds near-identical candidates (same normalized
// canonical text), keeping the highest-importance copy and rejecting the
// rest as duplicates
func DedupeCandidates(claims []model.Claim) ([]model.Claim, []model.RejectedClaim) {
	seen := make(map[string]int) // normalized text -> index into unique
	var unique []model.Claim
	var dupes []model.RejectedClaim

	for _, claim := range claims {
		key := match.Normalize(claim.Canonical)
		if idx, ok := seen[key]; ok {
			if claim.Importance > unique[idx].Importance {
				dupes = append(dupes, model.RejectedClaim{Claim: unique[idx], Reason: "duplicate candidate"})
				unique[idx] = claim
			} else {
				dupes = append(dupes, model.RejectedClaim{Claim: claim, Reason: "duplicate candidate"})
			}
			continue
		}
		seen[key] = len(unique)
		unique = append(unique, claim)
	}

	return unique, dupes
}

var _ Evaluator = (*FlagshipEvaluator)(nil)
