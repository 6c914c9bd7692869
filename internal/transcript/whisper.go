package transcript

import (
	"context"
	"fmt"
	"os"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"github.com/podsift/podsift/internal/model"
)

// WhisperResult is the raw output of a high-fidelity transcription
type WhisperResult struct {
	Text     string
	Language string
	Duration float64
	Segments []model.TranscriptSegment
	Words    []model.TranscriptWord
}

// WhisperClient transcribes an audio file with word-level timestamps.
// Any implementation satisfying this contract is substitutable.
type WhisperClient interface {
	Transcribe(ctx context.Context, audioPath string) (*WhisperResult, error)
}

// OpenAIWhisperClient transcribes via the OpenAI Audio API
type OpenAIWhisperClient struct {
	client *openai.Client
	model  string
}

// NewOpenAIWhisperClient creates a whisper client. The API key is
// required; the model defaults to whisper-1.
func NewOpenAIWhisperClient(apiKey, modelName, baseURL string) (*OpenAIWhisperClient, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("OpenAI API key is required for transcription")
	}
	if modelName == "" {
		modelName = openai.Whisper1
	}

	clientConfig := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		clientConfig.BaseURL = baseURL
	}

	return &OpenAIWhisperClient{
		client: openai.NewClientWithConfig(clientConfig),
		model:  modelName,
	}, nil
}

// Transcribe runs the audio file through the transcription API requesting
// both segment and word timestamp granularity
func (w *OpenAIWhisperClient) Transcribe(ctx context.Context, audioPath string) (*WhisperResult, error) {
	if _, err := os.Stat(audioPath); err != nil {
		return nil, fmt.Errorf("audio file: %w", err)
	}

	resp, err := w.client.CreateTranscription(ctx, openai.AudioRequest{
		Model:    w.model,
		FilePath: audioPath,
		Format:   openai.AudioResponseFormatVerboseJSON,
		TimestampGranularities: []openai.TranscriptionTimestampGranularity{
			openai.TranscriptionTimestampGranularitySegment,
			openai.TranscriptionTimestampGranularityWord,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("transcription API: %w", err)
	}

	result := &WhisperResult{
		Text:     strings.TrimSpace(resp.Text),
		Language: resp.Language,
		Duration: resp.Duration,
	}

	for _, seg := range resp.Segments {
		text := strings.TrimSpace(seg.Text)
		if text == "" {
			continue
		}
		result.Segments = append(result.Segments, model.TranscriptSegment{
			Text:     text,
			Start:    seg.Start,
			Duration: seg.End - seg.Start,
		})
	}

	for _, word := range resp.Words {
		result.Words = append(result.Words, model.TranscriptWord{
			Word:  strings.TrimSpace(word.Word),
			Start: word.Start,
			End:   word.End,
		})
	}

	return result, nil
}

var _ WhisperClient = (*OpenAIWhisperClient)(nil)
