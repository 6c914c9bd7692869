package transcript

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/podsift/podsift/internal/model"
)

// Fetcher obtains a transcript for a source, choosing between the fast
// caption path and the slow whisper path based on a quality gate.
type Fetcher struct {
	captions CaptionClient
	whisper  WhisperClient
	tunables model.QualityTunables
	verbose  bool
}

// Options controls source selection for one fetch
type Options struct {
	// AudioPath is the local audio file for the whisper path. Required
	// when whisper is forced or captions are unavailable.
	AudioPath string

	// PreferCaptions tries the fast caption path first when the URL
	// supports it
	PreferCaptions bool

	// QualityThreshold is the minimum caption quality score to accept
	// without upgrading to whisper
	QualityThreshold float64

	// ForceWhisper skips captions entirely
	ForceWhisper bool
}

// NewFetcher creates a transcript fetcher. Either client may be nil when
// that path is not configured; selecting an unavailable path is an error.
func NewFetcher(captions CaptionClient, whisper WhisperClient, tunables model.QualityTunables, verbose bool) *Fetcher {
	return &Fetcher{
		captions: captions,
		whisper:  whisper,
		tunables: tunables,
		verbose:  verbose,
	}
}

// GetTranscript fetches the transcript for a source URL.
//
// Caption fetch failures and captions below the quality threshold degrade
// to the whisper path rather than failing; a missing audio path when
// whisper is required is a hard error.
func (f *Fetcher) GetTranscript(ctx context.Context, sourceURL string, opts Options) (*model.TranscriptResult, error) {
	videoID, isCaptionSource := DetectVideoID(sourceURL)

	if opts.ForceWhisper {
		return f.fetchWhisper(ctx, opts.AudioPath, videoID)
	}

	if isCaptionSource && opts.PreferCaptions && f.captions != nil {
		result, err := f.fetchCaptions(ctx, videoID, opts.QualityThreshold)
		if err == nil {
			return result, nil
		}
		// Degrade to whisper; only surface the caption error if whisper
		// is also unavailable
		if f.verbose {
			fmt.Fprintf(os.Stderr, "Warning: caption path failed for %s: %v\n", videoID, err)
		}
		if opts.AudioPath == "" {
			return nil, fmt.Errorf("captions unavailable and no audio path for whisper fallback: %w", err)
		}
	}

	return f.fetchWhisper(ctx, opts.AudioPath, videoID)
}

// fetchCaptions runs the fast path and applies the quality gate
func (f *Fetcher) fetchCaptions(ctx context.Context, videoID string, threshold float64) (*model.TranscriptResult, error) {
	segments, err := f.captions.FetchCaptions(ctx, videoID)
	if err != nil {
		return nil, err
	}

	quality := ScoreCaptionQuality(segments, f.tunables)
	if quality < threshold {
		return nil, fmt.Errorf("caption quality %.2f below threshold %.2f", quality, threshold)
	}

	return &model.TranscriptResult{
		Text:               joinSegmentText(segments),
		Segments:           segments,
		SourceType:         model.SourceCaptions,
		SourceID:           videoID,
		QualityScore:       quality,
		TimestampPrecision: model.PrecisionSegment,
	}, nil
}

// fetchWhisper runs the high-fidelity path
func (f *Fetcher) fetchWhisper(ctx context.Context, audioPath, videoID string) (*model.TranscriptResult, error) {
	if audioPath == "" {
		return nil, fmt.Errorf("audio path is required for whisper transcription")
	}
	if f.whisper == nil {
		return nil, fmt.Errorf("whisper client is not configured")
	}

	raw, err := f.whisper.Transcribe(ctx, audioPath)
	if err != nil {
		return nil, fmt.Errorf("whisper transcription: %w", err)
	}

	precision := model.PrecisionSegment
	if len(raw.Words) > 0 {
		precision = model.PrecisionWord
	}

	text := raw.Text
	if text == "" {
		text = joinSegmentText(raw.Segments)
	}

	return &model.TranscriptResult{
		Text:               strings.TrimSpace(text),
		Segments:           raw.Segments,
		Words:              raw.Words,
		SourceType:         model.SourceWhisper,
		SourceID:           videoID,
		Language:           raw.Language,
		QualityScore:       1.0,
		TimestampPrecision: precision,
	}, nil
}
