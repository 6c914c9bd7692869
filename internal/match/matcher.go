package match

import (
	"strings"
	"unicode"

	"github.com/podsift/podsift/internal/model"
)

// Matcher aligns a claim's evidence quote back to a time range in the
// transcript. LLM-produced evidence is rarely verbatim (paraphrased,
// truncated, reordered), so matching is fuzzy throughout.
type Matcher struct {
	threshold       float64
	minWordsToMatch int

	// Window size multipliers for the word-level sweep. The evidence
	// quote may be shorter than the speech that produced it, so wider
	// windows are tried too.
	windowMultipliers []float64
}

// NewMatcher creates a matcher from configuration
func NewMatcher(cfg model.MatcherConfig) *Matcher {
	threshold := cfg.Threshold
	if threshold <= 0 {
		threshold = 0.7
	}
	minWords := cfg.MinWordsToMatch
	if minWords <= 0 {
		minWords = 3
	}

	return &Matcher{
		threshold:         threshold,
		minWordsToMatch:   minWords,
		windowMultipliers: []float64{1.0, 1.2, 1.5, 2.0},
	}
}

// Match finds the best time range for a claim's evidence.
//
// Returns nil only when the evidence has too few words to match reliably.
// Otherwise a result is always produced: word-window sweep first when word
// timing exists, then segment search, then a half-confidence fallback to
// the single most similar segment so every claim stays navigable.
func (m *Matcher) Match(claim model.Claim, transcript *model.TranscriptResult) *model.TimestampResult {
	evidence := Normalize(claim.Evidence)
	if len(strings.Fields(evidence)) < m.minWordsToMatch {
		return nil
	}
	if transcript == nil || len(transcript.Segments) == 0 {
		return nil
	}

	if transcript.HasWordTimestamps() {
		if result := m.matchWords(evidence, transcript.Words); result != nil {
			return result
		}
	}

	if result := m.matchSegments(evidence, transcript.Segments); result != nil {
		return result
	}

	return m.fallbackMatch(evidence, transcript.Segments)
}

// matchWords slides windows over the word sequence at several size
// multipliers and keeps the best-scoring window above the threshold
func (m *Matcher) matchWords(evidence string, words []model.TranscriptWord) *model.TimestampResult {
	evidenceLen := len(strings.Fields(evidence))

	var best *model.TimestampResult
	bestScore := 0.0

	for _, mult := range m.windowMultipliers {
		window := int(float64(evidenceLen) * mult)
		if window < 1 {
			window = 1
		}
		if window > len(words) {
			window = len(words)
		}

		for i := 0; i+window <= len(words); i++ {
			text := joinWords(words[i : i+window])
			score := Similarity(evidence, Normalize(text))
			if score > bestScore {
				bestScore = score
				method := model.MatchFuzzy
				if score >= 0.999 {
					method = model.MatchExact
				}
				best = &model.TimestampResult{
					Start:       words[i].Start,
					End:         words[i+window-1].End,
					Confidence:  score,
					Precision:   model.PrecisionWord,
					MatchedText: text,
					MatchMethod: method,
				}
			}
		}
	}

	if best != nil && bestScore >= m.threshold {
		return best
	}
	return nil
}

// matchSegments scores individual segments, then concatenations of 2, 3,
// and 4 consecutive segments, and accepts the best above the threshold
func (m *Matcher) matchSegments(evidence string, segments []model.TranscriptSegment) *model.TimestampResult {
	var best *model.TimestampResult
	bestScore := 0.0

	for _, span := range []int{1, 2, 3, 4} {
		for i := 0; i+span <= len(segments); i++ {
			group := segments[i : i+span]
			text := joinSegments(group)
			score := Similarity(evidence, Normalize(text))
			if score > bestScore {
				bestScore = score
				method := model.MatchFuzzy
				if score >= 0.999 {
					method = model.MatchExact
				}
				best = &model.TimestampResult{
					Start:       group[0].Start,
					End:         group[span-1].End(),
					Confidence:  score,
					Precision:   model.PrecisionSegment,
					MatchedText: text,
					MatchMethod: method,
				}
			}
		}
	}

	if best != nil && bestScore >= m.threshold {
		return best
	}
	return nil
}

// fallbackMatch picks the single most similar segment regardless of
// threshold and halves its confidence. Precision is traded for coverage;
// the fallback label lets callers discount the result.
func (m *Matcher) fallbackMatch(evidence string, segments []model.TranscriptSegment) *model.TimestampResult {
	bestIdx := 0
	bestScore := 0.0

	for i, seg := range segments {
		score := Similarity(evidence, Normalize(seg.Text))
		if score > bestScore {
			bestScore = score
			bestIdx = i
		}
	}

	seg := segments[bestIdx]
	return &model.TimestampResult{
		Start:       seg.Start,
		End:         seg.End(),
		Confidence:  bestScore * 0.5,
		Precision:   model.PrecisionSegment,
		MatchedText: seg.Text,
		MatchMethod: model.MatchFallback,
	}
}

// Normalize lowercases, strips punctuation except apostrophes, and
// collapses whitespace
func Normalize(text string) string {
	var b strings.Builder
	b.Grow(len(text))

	for _, r := range strings.ToLower(text) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r) || r == '\'':
			b.WriteRune(r)
		default:
			b.WriteByte(' ')
		}
	}

	return strings.Join(strings.Fields(b.String()), " ")
}

func joinWords(words []model.TranscriptWord) string {
	parts := make([]string, len(words))
	for i, w := range words {
		parts[i] = w.Word
	}
	return strings.Join(parts, " ")
}

func joinSegments(segments []model.TranscriptSegment) string {
	parts := make([]string, len(segments))
	for i, s := range segments {
		parts[i] = s.Text
	}
	return strings.Join(parts, " ")
}
