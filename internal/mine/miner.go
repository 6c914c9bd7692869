package mine

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/podsift/podsift/internal/llm"
	"github.com/podsift/podsift/internal/model"
)

// Miner produces candidate claims from a transcript in one LLM call
type Miner interface {
	Mine(ctx context.Context, transcriptText string, meta model.SourceMetadata) ([]model.Claim, error)
}

// UnifiedMiner extracts all candidate claims with a single prompt rather
// than chunked calls; modern context windows fit a full episode.
type UnifiedMiner struct {
	provider llm.Provider
}

// NewUnifiedMiner creates a miner backed by the given provider
func NewUnifiedMiner(provider llm.Provider) *UnifiedMiner {
	return &UnifiedMiner{provider: provider}
}

// Mine extracts candidate claims from the transcript
func (m *UnifiedMiner) Mine(ctx context.Context, transcriptText string, meta model.SourceMetadata) ([]model.Claim, error) {
	if strings.TrimSpace(transcriptText) == "" {
		return nil, fmt.Errorf("transcript is empty")
	}

	resp, err := m.provider.Complete(ctx, llm.CompletionRequest{
		System:      minerSystemPrompt,
		Prompt:      BuildMinerPrompt(transcriptText, meta),
		Temperature: 0.3,
	})
	if err != nil {
		return nil, fmt.Errorf("miner call: %w", err)
	}

	claims, err := ParseClaims(resp.Text)
	if err != nil {
		return nil, fmt.Errorf("parse miner output: %w", err)
	}

	// Assign stable per-report identifiers
	for i := range claims {
		if claims[i].ID == "" {
			claims[i].ID = fmt.Sprintf("c%03d", i+1)
		}
	}

	return claims, nil
}

// claimPayload tolerates the key aliases different prompts and models
// produce. The aliasing collapses here, at the ingestion boundary; the
// rest of the pipeline only sees model.Claim.
type claimPayload struct {
	ID            string  `json:"id"`
	Canonical     string  `json:"canonical"`
	ClaimText     string  `json:"claim_text"`
	Text          string  `json:"text"`
	Evidence      string  `json:"evidence"`
	EvidenceQuote string  `json:"evidence_quote"`
	Quote         string  `json:"quote"`
	Importance    float64 `json:"importance"`
	Score         float64 `json:"score"`
	Topic         string  `json:"topic"`
}

func (p claimPayload) toClaim() model.Claim {
	canonical := firstNonEmpty(p.Canonical, p.ClaimText, p.Text)
	evidence := firstNonEmpty(p.Evidence, p.EvidenceQuote, p.Quote)
	importance := p.Importance
	if importance == 0 {
		importance = p.Score
	}

	return model.Claim{
		ID:         p.ID,
		Canonical:  strings.TrimSpace(canonical),
		Evidence:   strings.TrimSpace(evidence),
		Importance: importance,
		Topic:      strings.TrimSpace(p.Topic),
	}
}

// minerEnvelope matches the {"claims": [...]} wrapper shape
type minerEnvelope struct {
	Claims []claimPayload `json:"claims"`
}

// ParseClaims decodes miner output into canonical claims. Both a bare
// JSON array and a {"claims": [...]} envelope are accepted, with or
// without surrounding markdown fences. Entries without claim text are
// dropped.
func ParseClaims(raw string) ([]model.Claim, error) {
	jsonText := ExtractJSON(raw)
	if jsonText == "" {
		return nil, fmt.Errorf("no JSON found in response")
	}

	var payloads []claimPayload
	if err := json.Unmarshal([]byte(jsonText), &payloads); err != nil {
		var envelope minerEnvelope
		if err2 := json.Unmarshal([]byte(jsonText), &envelope); err2 != nil {
			return nil, fmt.Errorf("decode claims: %w", err)
		}
		payloads = envelope.Claims
	}

	claims := make([]model.Claim, 0, len(payloads))
	for _, p := range payloads {
		claim := p.toClaim()
		if claim.Canonical == "" {
			continue
		}
		claims = append(claims, claim)
	}

	return claims, nil
}

// ExtractJSON strips markdown fences and surrounding prose, returning the
// outermost JSON value in the text
func ExtractJSON(raw string) string {
	text := strings.TrimSpace(raw)

	// Strip ```json ... ``` fences
	if idx := strings.Index(text, "```"); idx >= 0 {
		rest := text[idx+3:]
		rest = strings.TrimPrefix(rest, "json")
		if end := strings.Index(rest, "```"); end >= 0 {
			text = strings.TrimSpace(rest[:end])
		} else {
			text = strings.TrimSpace(rest)
		}
	}

	// Trim prose around the outermost bracket pair
	start := strings.IndexAny(text, "[{")
	if start < 0 {
		return ""
	}
	open := text[start]
	var want byte = ']'
	if open == '{' {
		want = '}'
	}
	end := strings.LastIndexByte(text, want)
	if end <= start {
		return ""
	}
	return text[start : end+1]
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
