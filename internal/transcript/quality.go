package transcript

import (
	"strings"

	"github.com/podsift/podsift/internal/model"
)

// Noise markers caption engines insert for non-speech audio
var noiseMarkers = []string{
	"[Music]", "[Applause]", "[Laughter]", "[music]", "[applause]", "[laughter]",
}

// ScoreCaptionQuality applies the caption quality heuristic: start at 1.0
// and deduct for known caption-engine artifacts, floor at 0.0.
//
// This is deliberately simple and tunable, not ML-based. It only needs to
// gate a binary upgrade-to-whisper decision, so crude signals suffice.
func ScoreCaptionQuality(segments []model.TranscriptSegment, tunables model.QualityTunables) float64 {
	if len(segments) == 0 {
		return 0
	}

	score := 1.0
	text := joinSegmentText(segments)

	// Noise marker density
	noiseCount := 0
	for _, marker := range noiseMarkers {
		noiseCount += strings.Count(text, marker)
	}
	switch {
	case noiseCount > 10:
		score -= tunables.NoiseHeavy
	case noiseCount >= 5:
		score -= tunables.NoiseLight
	}

	// Average segment length; very short cues usually mean the engine
	// fragmented the speech badly
	totalLen := 0
	for _, seg := range segments {
		totalLen += len(seg.Text)
	}
	avgLen := float64(totalLen) / float64(len(segments))
	switch {
	case avgLen < 10:
		score -= tunables.ShortSegmentHeavy
	case avgLen < 20:
		score -= tunables.ShortSegmentLight
	}

	// Consecutive word repeats, a common caption-engine stutter artifact
	words := strings.Fields(text)
	if len(words) > 1 {
		repeats := 0
		for i := 1; i < len(words); i++ {
			if words[i] == words[i-1] {
				repeats++
			}
		}
		repeatRatio := float64(repeats) / float64(len(words)-1)
		switch {
		case repeatRatio > 0.10:
			score -= tunables.RepeatHeavy
		case repeatRatio > 0.05:
			score -= tunables.RepeatLight
		}
	}

	// Overlong tokens indicate gibberish or run-together words
	longTokens := 0
	for _, w := range words {
		if len(w) > 25 {
			longTokens++
		}
	}
	if longTokens > 5 {
		score -= tunables.Gibberish
	}

	if score < 0 {
		score = 0
	}
	return score
}

func joinSegmentText(segments []model.TranscriptSegment) string {
	parts := make([]string, len(segments))
	for i, seg := range segments {
		parts[i] = seg.Text
	}
	return strings.Join(parts, " ")
}
