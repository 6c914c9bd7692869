package pipeline

import "github.com/podsift/podsift/internal/model"

// Assessment thresholds. Transcript quality and acceptance rate are
// judged together; a clean transcript with almost nothing accepted is as
// suspect as a noisy transcript.
const (
	goodTranscript       = 0.8
	goodAcceptance       = 0.25
	acceptableTranscript = 0.7
	acceptableAcceptance = 0.15
	reviewTranscript     = 0.5
	reviewAcceptance     = 0.10
)

// AssessQuality derives the four-level status from transcript quality
// and acceptance rate. Pure function of its inputs; computed on read and
// never stored, since promotion keeps mutating the underlying lists.
func AssessQuality(transcriptQuality, acceptanceRate float64) model.QualityAssessment {
	assessment := model.QualityAssessment{
		TranscriptQuality: transcriptQuality,
		AcceptanceRate:    acceptanceRate,
	}

	switch {
	case transcriptQuality >= goodTranscript && acceptanceRate >= goodAcceptance:
		assessment.Status = model.QualityGood
	case transcriptQuality >= acceptableTranscript && acceptanceRate >= acceptableAcceptance:
		assessment.Status = model.QualityAcceptable
	case transcriptQuality >= reviewTranscript || acceptanceRate >= reviewAcceptance:
		assessment.Status = model.QualityNeedsReview
	default:
		assessment.Status = model.QualityPoor
	}

	// The suggestion drives the review UI's re-run affordance
	switch {
	case transcriptQuality < acceptableTranscript:
		assessment.Suggestion = "Transcript quality is low; re-run with whisper transcription for better results"
	case acceptanceRate < acceptableAcceptance:
		assessment.Suggestion = "Low acceptance rate; review rejected claims for false negatives"
	}

	return assessment
}

// Assess evaluates a report's overall quality
func Assess(report *model.Report) model.QualityAssessment {
	quality := 0.0
	if report.Transcript != nil {
		quality = report.Transcript.QualityScore
	}
	return AssessQuality(quality, report.AcceptanceRate())
}
