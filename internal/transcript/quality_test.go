package transcript

import (
	"math"
	"strings"
	"testing"

	"github.com/podsift/podsift/internal/model"
)

func segs(texts ...string) []model.TranscriptSegment {
	out := make([]model.TranscriptSegment, len(texts))
	for i, t := range texts {
		out[i] = model.TranscriptSegment{Text: t, Start: float64(i * 5), Duration: 5}
	}
	return out
}

func TestScoreCaptionQuality_CleanCaptions(t *testing.T) {
	segments := segs(
		"Welcome back to the show, today we're talking about genomics.",
		"Our guest has spent a decade sequencing ancient DNA samples.",
		"The techniques involved have improved dramatically since 2010.",
	)

	score := ScoreCaptionQuality(segments, model.DefaultQualityTunables())
	if score != 1.0 {
		t.Errorf("Expected 1.0 for clean captions, got %v", score)
	}
}

func TestScoreCaptionQuality_EmptySegments(t *testing.T) {
	score := ScoreCaptionQuality(nil, model.DefaultQualityTunables())
	if score != 0 {
		t.Errorf("Expected 0 for empty segments, got %v", score)
	}
}

func TestScoreCaptionQuality_NoiseMarkers(t *testing.T) {
	// 11 noise markers triggers the heavy deduction
	var texts []string
	for i := 0; i < 11; i++ {
		texts = append(texts, "[Music] some reasonably long caption text here")
	}
	score := ScoreCaptionQuality(segs(texts...), model.DefaultQualityTunables())

	if math.Abs(score-0.8) > 1e-9 {
		t.Errorf("Expected 0.8 after heavy noise deduction, got %v", score)
	}
}

func TestScoreCaptionQuality_LightNoiseDeduction(t *testing.T) {
	texts := []string{
		"[Music] a caption line with plenty of words in it",
		"[Music] a caption line with plenty of words in it",
		"[Music] a caption line with plenty of words in it",
		"[Applause] a caption line with plenty of words in it",
		"[Applause] a caption line with plenty of words in it",
	}
	// 5 markers, repeats are distinct wording so no repeat penalty beyond
	// the duplicate lines; verify only the noise deduction bands
	score := ScoreCaptionQuality(segs(texts...), model.DefaultQualityTunables())

	if score > 0.9+1e-9 {
		t.Errorf("Expected at most 0.9 with 5 noise markers, got %v", score)
	}
}

func TestScoreCaptionQuality_ShortSegments(t *testing.T) {
	segments := segs("hi", "ok", "so", "um", "ah")
	score := ScoreCaptionQuality(segments, model.DefaultQualityTunables())

	// Average length < 10 chars costs 0.2
	if score > 0.8+1e-9 {
		t.Errorf("Expected short-segment deduction, got %v", score)
	}
}

func TestScoreCaptionQuality_RepeatedWordPairs(t *testing.T) {
	// Caption stutter: every word doubled
	segments := segs(strings.Repeat("the the cat cat sat sat on on mats mats ", 3))
	score := ScoreCaptionQuality(segments, model.DefaultQualityTunables())

	if score > 0.8+1e-9 {
		t.Errorf("Expected heavy repeat deduction, got %v", score)
	}
}

func TestScoreCaptionQuality_GibberishTokens(t *testing.T) {
	// Six distinct overlong tokens; distinct so the repeat penalty does
	// not also fire
	long := func(suffix string) string { return strings.Repeat("x", 28) + suffix }
	segments := segs(
		"a normal caption line with several ordinary words here",
		long("a")+" "+long("b")+" "+long("c")+" "+long("d")+" "+long("e")+" "+long("f"),
	)
	score := ScoreCaptionQuality(segments, model.DefaultQualityTunables())

	if math.Abs(score-0.85) > 1e-9 {
		t.Errorf("Expected 0.85 after gibberish deduction, got %v", score)
	}
}

func TestScoreCaptionQuality_FloorsAtZero(t *testing.T) {
	// Stack every penalty: noisy, short, stuttered
	var texts []string
	for i := 0; i < 12; i++ {
		texts = append(texts, "[Music] a a")
	}
	tunables := model.QualityTunables{
		NoiseHeavy:        0.5,
		ShortSegmentHeavy: 0.5,
		RepeatHeavy:       0.5,
		Gibberish:         0.5,
	}
	score := ScoreCaptionQuality(segs(texts...), tunables)

	if score != 0 {
		t.Errorf("Expected score floored at 0, got %v", score)
	}
}

func TestScoreCaptionQuality_TunablesAreRespected(t *testing.T) {
	var texts []string
	for i := 0; i < 11; i++ {
		texts = append(texts, "[Music] some reasonably long caption text here")
	}

	tunables := model.DefaultQualityTunables()
	tunables.NoiseHeavy = 0.4
	score := ScoreCaptionQuality(segs(texts...), tunables)

	if math.Abs(score-0.6) > 1e-9 {
		t.Errorf("Expected custom deduction to apply, got %v", score)
	}
}
