package attribute

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/podsift/podsift/internal/llm"
	"github.com/podsift/podsift/internal/model"
)

// Assumed speech rate for estimating character offsets from timestamps.
// Rough, but it only positions a context window.
const charsPerSecond = 25.0

// fallbackWindowChars is used when the estimated window is implausibly
// short to carry a conversation turn
const fallbackWindowChars = 2000

// Attributor performs targeted, LLM-based speaker identification.
// Attribution is lazy: a full diarization pass per episode is expensive,
// and most claims are low-importance, so only claims above the batch
// threshold are ever attributed.
type Attributor struct {
	provider        llm.Provider
	windowSeconds   float64
	maxParticipants int
}

// NewAttributor creates a speaker attributor from configuration
func NewAttributor(provider llm.Provider, cfg model.AttributionConfig) *Attributor {
	windowSeconds := cfg.ContextWindowSeconds
	if windowSeconds <= 0 {
		windowSeconds = 60
	}

	return &Attributor{
		provider:        provider,
		windowSeconds:   windowSeconds,
		maxParticipants: cfg.MaxParticipants,
	}
}

// AttributeBatch attributes speakers to claims at or above minImportance,
// leaving the rest untouched (nil attribution means "not attempted").
// Results are written back into the slice.
func (a *Attributor) AttributeBatch(ctx context.Context, claims []model.ClaimWithMetadata, transcript *model.TranscriptResult, meta model.SourceMetadata, minImportance float64) {
	for i := range claims {
		if claims[i].Claim.Importance < minImportance {
			continue
		}
		claims[i].Speaker = a.Attribute(ctx, claims[i], transcript, meta)
	}
}

// Attribute identifies the speaker for one claim. Failure is never fatal:
// any error yields an Unknown attribution with zero confidence.
func (a *Attributor) Attribute(ctx context.Context, claim model.ClaimWithMetadata, transcript *model.TranscriptResult, meta model.SourceMetadata) *model.SpeakerAttribution {
	window := a.contextWindow(claim, transcript)
	participants := ExtractParticipants(meta, a.maxParticipants)

	resp, err := a.provider.Complete(ctx, llm.CompletionRequest{
		System:      attributorSystemPrompt,
		Prompt:      buildAttributionPrompt(claim, window, participants, meta),
		Temperature: 0.1, // near-deterministic
	})
	if err != nil {
		return failedAttribution(claim.Claim.ID, err)
	}

	attribution := parseAttribution(resp.Text)
	attribution.ClaimID = claim.Claim.ID
	return attribution
}

// contextWindow extracts the transcript text around the claim's
// timestamp, estimated via speech rate and expanded to word boundaries
func (a *Attributor) contextWindow(claim model.ClaimWithMetadata, transcript *model.TranscriptResult) string {
	text := transcript.Text
	if text == "" {
		return ""
	}

	// Window spans windowSeconds on each side of the claim
	windowChars := int(a.windowSeconds * charsPerSecond * 2)
	if windowChars < fallbackWindowChars {
		windowChars = fallbackWindowChars
	}

	center := len(text) / 2
	if claim.Timestamp != nil {
		center = int(claim.Timestamp.Start * charsPerSecond)
		if center > len(text) {
			center = len(text)
		}
	}

	start := center - windowChars/2
	if start < 0 {
		start = 0
	}
	end := center + windowChars/2
	if end > len(text) {
		end = len(text)
	}

	// Expand to word boundaries
	for start > 0 && text[start-1] != ' ' {
		start--
	}
	for end < len(text) && text[end] != ' ' {
		end++
	}

	return strings.TrimSpace(text[start:end])
}

const attributorSystemPrompt = `You identify which speaker voiced a specific claim in a podcast transcript excerpt. You respond with JSON only, no prose.`

func buildAttributionPrompt(claim model.ClaimWithMetadata, window string, participants []string, meta model.SourceMetadata) string {
	var b strings.Builder

	b.WriteString("Identify who voiced this claim.\n\n")
	fmt.Fprintf(&b, "Claim: %s\n", claim.Claim.Canonical)
	if claim.Claim.Evidence != "" {
		fmt.Fprintf(&b, "Evidence quote: %q\n", claim.Claim.Evidence)
	}
	if claim.Timestamp != nil {
		fmt.Fprintf(&b, "Approximate time: %.0f seconds in\n", claim.Timestamp.Start)
	}
	b.WriteString("\n")

	if meta.ShowName != "" || meta.Title != "" {
		fmt.Fprintf(&b, "Episode: %s — %s\n", meta.ShowName, meta.Title)
	}
	if meta.HostName != "" {
		fmt.Fprintf(&b, "Host: %s\n", meta.HostName)
	}
	if len(participants) > 0 {
		fmt.Fprintf(&b, "Known participants: %s\n", strings.Join(participants, ", "))
	}
	b.WriteString("\n")

	b.WriteString("Transcript excerpt around the claim:\n")
	b.WriteString(window)
	b.WriteString("\n\n")

	b.WriteString("Guidance:\n")
	b.WriteString("- Prefer \"Unknown\" with low confidence over guessing.\n")
	b.WriteString("- Technical or domain-expert claims usually belong to guests, not hosts.\n")
	b.WriteString("- reasoning: list the textual cues you relied on, in order.\n\n")

	b.WriteString("Respond with JSON:\n")
	b.WriteString(`{"speaker_name": "...", "confidence": 0.0, "is_host": false, "reasoning": ["..."]}`)

	return b.String()
}

// attributionPayload matches the expected LLM response shape
type attributionPayload struct {
	SpeakerName string   `json:"speaker_name"`
	Confidence  float64  `json:"confidence"`
	IsHost      bool     `json:"is_host"`
	Reasoning   []string `json:"reasoning"`
}

var speakerNamePattern = regexp.MustCompile(`"speaker_name"\s*:\s*"([^"]*)"`)

// parseAttribution decodes the attribution response, tolerating minor
// malformation: when the full JSON parse fails, a regex rescues the
// speaker name at reduced confidence.
func parseAttribution(raw string) *model.SpeakerAttribution {
	jsonText := extractObject(raw)

	var payload attributionPayload
	if jsonText != "" && json.Unmarshal([]byte(jsonText), &payload) == nil && payload.SpeakerName != "" {
		return &model.SpeakerAttribution{
			SpeakerName: payload.SpeakerName,
			Confidence:  clamp01(payload.Confidence),
			IsHost:      payload.IsHost,
			Reasoning:   payload.Reasoning,
		}
	}

	if m := speakerNamePattern.FindStringSubmatch(raw); m != nil && m[1] != "" {
		return &model.SpeakerAttribution{
			SpeakerName: m[1],
			Confidence:  0.3,
			Reasoning:   []string{"Recovered speaker name from malformed response"},
		}
	}

	return &model.SpeakerAttribution{
		SpeakerName: "Unknown",
		Confidence:  0,
		Reasoning:   []string{"Could not parse attribution response"},
	}
}

func failedAttribution(claimID string, err error) *model.SpeakerAttribution {
	return &model.SpeakerAttribution{
		SpeakerName: "Unknown",
		Confidence:  0,
		Reasoning:   []string{fmt.Sprintf("Attribution failed: %v", err)},
		ClaimID:     claimID,
	}
}

func extractObject(raw string) string {
	start := strings.IndexByte(raw, '{')
	end := strings.LastIndexByte(raw, '}')
	if start < 0 || end <= start {
		return ""
	}
	return raw[start : end+1]
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
