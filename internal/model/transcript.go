package model

// SourceType identifies which transcript source produced the result
type SourceType string

const (
	SourceCaptions SourceType = "captions" // Platform auto-generated captions (fast, lower fidelity)
	SourceWhisper  SourceType = "whisper"  // Model-based transcription (slow, word timestamps)
	SourceManual   SourceType = "manual"   // User-supplied transcript
)

// Precision indicates the finest timing granularity a transcript carries
type Precision string

const (
	PrecisionWord    Precision = "word"
	PrecisionSegment Precision = "segment"
)

// TranscriptSegment is one caption cue or transcription segment
type TranscriptSegment struct {
	Text     string  `json:"text"`
	Start    float64 `json:"start"`    // Seconds from source start
	Duration float64 `json:"duration"` // Seconds
}

// End returns the segment's end time in seconds
func (s TranscriptSegment) End() float64 {
	return s.Start + s.Duration
}

// TranscriptWord is a single word with exact timing.
// Only the whisper path produces these; captions never do.
type TranscriptWord struct {
	Word  string  `json:"word"`
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

// TranscriptResult is the full transcript of one source with timing.
// Segments are always present; Words only when the source supports
// word-level timing. Created once per source and immutable thereafter.
type TranscriptResult struct {
	Text               string              `json:"text"`
	Segments           []TranscriptSegment `json:"segments"`
	Words              []TranscriptWord    `json:"words,omitempty"` // Empty unless SourceWhisper
	SourceType         SourceType          `json:"source_type"`
	SourceID           string              `json:"source_id,omitempty"` // Stable platform identifier (e.g. video id)
	Language           string              `json:"language,omitempty"`
	QualityScore       float64             `json:"quality_score"` // 0-1
	TimestampPrecision Precision           `json:"timestamp_precision"`
}

// Duration returns the total time span covered by the segments, in seconds
func (t *TranscriptResult) Duration() float64 {
	if len(t.Segments) == 0 {
		return 0
	}
	last := t.Segments[len(t.Segments)-1]
	return last.End()
}

// HasWordTimestamps reports whether word-level timing is available
func (t *TranscriptResult) HasWordTimestamps() bool {
	return len(t.Words) > 0
}
