package worker

import (
	"context"

	"github.com/podsift/podsift/internal/model"
)

// EpisodeSource identifies one episode for batch processing
type EpisodeSource struct {
	URL       string
	AudioPath string
	Metadata  model.SourceMetadata
}

// EpisodeProcessor runs the extraction pipeline for one source
type EpisodeProcessor interface {
	Process(ctx context.Context, source EpisodeSource) (*model.Report, error)
}

// EpisodeResult is the outcome of processing one source in a batch
type EpisodeResult struct {
	Source EpisodeSource
	Report *model.Report
	err    error
}

// Err returns the processing error, nil on success
func (r *EpisodeResult) Err() error {
	return r.err
}

type episodeJob struct {
	source    EpisodeSource
	processor EpisodeProcessor
}

func (j *episodeJob) Execute(ctx context.Context) Result {
	report, err := j.processor.Process(ctx, j.source)
	return &EpisodeResult{Source: j.source, Report: report, err: err}
}

// BatchProcessor fans a set of sources out over a worker pool. Failures
// are carried in the results, never aborting the batch; result order
// follows completion, not submission.
type BatchProcessor struct {
	processor EpisodeProcessor
	workers   int
}

// NewBatchProcessor creates a batch processor with the given concurrency
func NewBatchProcessor(processor EpisodeProcessor, workers int) *BatchProcessor {
	return &BatchProcessor{processor: processor, workers: workers}
}

// Run processes all sources and returns one result per source
func (b *BatchProcessor) Run(sources []EpisodeSource) []*EpisodeResult {
	pool := NewPool(b.workers)
	pool.Start()

	for _, source := range sources {
		pool.Submit(&episodeJob{source: source, processor: b.processor})
	}

	results := make([]*EpisodeResult, 0, len(sources))
	for _, r := range pool.Wait() {
		if er, ok := r.(*EpisodeResult); ok {
			results = append(results, er)
		}
	}
	return results
}
