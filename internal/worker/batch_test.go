package worker

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/podsift/podsift/internal/model"
)

type fakeProcessor struct {
	calls int32
}

func (f *fakeProcessor) Process(ctx context.Context, source EpisodeSource) (*model.Report, error) {
	atomic.AddInt32(&f.calls, 1)
	if strings.Contains(source.URL, "bad") {
		return nil, errors.New("transcript unavailable")
	}
	return &model.Report{SourceURL: source.URL}, nil
}

func TestBatchProcessor_Run(t *testing.T) {
	processor := &fakeProcessor{}
	batch := NewBatchProcessor(processor, 3)

	sources := []EpisodeSource{
		{URL: "https://example.com/ep1"},
		{URL: "https://example.com/bad-ep2"},
		{URL: "https://example.com/ep3"},
	}

	results := batch.Run(sources)

	if len(results) != len(sources) {
		t.Fatalf("expected %d results, got %d", len(sources), len(results))
	}
	if atomic.LoadInt32(&processor.calls) != int32(len(sources)) {
		t.Errorf("expected %d process calls, got %d", len(sources), processor.calls)
	}

	failed := 0
	for _, r := range results {
		if r.Err() != nil {
			failed++
			continue
		}
		if r.Report == nil || r.Report.SourceURL != r.Source.URL {
			t.Errorf("expected a report for %s", r.Source.URL)
		}
	}
	if failed != 1 {
		t.Errorf("expected 1 failure, got %d", failed)
	}
}

func TestBatchProcessor_EmptyInput(t *testing.T) {
	batch := NewBatchProcessor(&fakeProcessor{}, 2)
	if results := batch.Run(nil); len(results) != 0 {
		t.Errorf("expected no results for an empty batch, got %d", len(results))
	}
}
