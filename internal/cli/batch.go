package cli

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/podsift/podsift/internal/model"
	"github.com/podsift/podsift/internal/pipeline"
	"github.com/podsift/podsift/internal/transcript"
	"github.com/podsift/podsift/internal/worker"
	"github.com/spf13/cobra"
)

var (
	concurrency int
	outputDir   string
)

// batchCmd represents the batch command
var batchCmd = &cobra.Command{
	Use:   "batch <file>",
	Short: "Process multiple episodes from a file in parallel",
	Long: `Batch processes multiple episodes concurrently:
- Read sources from input file (one URL per line, optional audio path after a tab)
- Process episodes in parallel with configurable worker count
- Write one JSON and Markdown report per episode

Lines starting with # are skipped.

Example:
  podsift batch episodes.txt
  podsift batch episodes.txt --concurrency 4 --output-dir ./reports`,
	Args: cobra.ExactArgs(1),
	RunE: runBatch,
}

func init() {
	rootCmd.AddCommand(batchCmd)

	batchCmd.Flags().IntVar(&concurrency, "concurrency", 2, "number of concurrent workers")
	batchCmd.Flags().StringVar(&outputDir, "output-dir", "./podsift-reports", "output directory for reports")

	// Shared with the process command
	batchCmd.Flags().BoolVar(&preferCaptions, "prefer-captions", true, "try the fast caption path before whisper")
	batchCmd.Flags().Float64Var(&qualityThreshold, "quality-threshold", 0.7, "minimum caption quality before upgrading to whisper")
	batchCmd.Flags().Float64Var(&minImportance, "min-importance", 7, "minimum importance for speaker attribution")
	batchCmd.Flags().BoolVar(&noCache, "no-cache", false, "disable the transcript cache")
	batchCmd.Flags().BoolVar(&noFooter, "no-footer", false, "disable footer in Markdown reports")
	batchCmd.Flags().StringVar(&llmProvider, "llm-provider", "", "LLM provider (openai, anthropic, ollama; default resolves from model)")
	batchCmd.Flags().StringVar(&llmModel, "llm-model", "gpt-4o-mini", "LLM model name")
}

// episodeRunner adapts the pipeline to the worker batch contract
type episodeRunner struct {
	p *pipeline.Pipeline
}

func (r episodeRunner) Process(ctx context.Context, source worker.EpisodeSource) (*model.Report, error) {
	return r.p.Process(ctx, pipeline.Source{
		URL:       source.URL,
		AudioPath: source.AudioPath,
		Metadata:  source.Metadata,
	})
}

func runBatch(cmd *cobra.Command, args []string) error {
	file := args[0]

	sources, err := readSources(file)
	if err != nil {
		return fmt.Errorf("read sources: %w", err)
	}
	if len(sources) == 0 {
		return fmt.Errorf("no sources found in %s", file)
	}

	cfg := buildConfig()
	cfg.Concurrency.Workers = concurrency

	p, err := buildPipeline(cfg)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	fmt.Fprintf(os.Stderr, "Processing %d episodes with %d workers\n\n", len(sources), concurrency)

	processor := worker.NewBatchProcessor(episodeRunner{p: p}, concurrency)
	results := processor.Run(sources)

	renderer := pipeline.NewRenderer(cfg.Output.IncludeFooter)
	succeeded := 0
	failed := 0

	for _, result := range results {
		if result.Err() != nil {
			failed++
			fmt.Fprintf(os.Stderr, "FAIL %s: %v\n", result.Source.URL, result.Err())
			continue
		}

		base := reportBaseName(result.Source.URL)
		jsonPath := filepath.Join(outputDir, base+".json")
		mdPath := filepath.Join(outputDir, base+".md")

		if err := renderer.RenderJSON(result.Report, jsonPath); err != nil {
			failed++
			fmt.Fprintf(os.Stderr, "FAIL %s: %v\n", result.Source.URL, err)
			continue
		}
		if err := renderer.RenderMarkdown(result.Report, mdPath); err != nil {
			failed++
			fmt.Fprintf(os.Stderr, "FAIL %s: %v\n", result.Source.URL, err)
			continue
		}

		succeeded++
		fmt.Fprintf(os.Stderr, "OK   %s (%d claims) -> %s\n", result.Source.URL, len(result.Report.Claims), jsonPath)
	}

	fmt.Fprintf(os.Stderr, "\nDone: %d succeeded, %d failed\n", succeeded, failed)
	if failed > 0 {
		return fmt.Errorf("%d of %d episodes failed", failed, len(results))
	}
	return nil
}

// readSources parses the batch input file. Each line is a URL, optionally
// followed by a tab and a local audio path for the whisper fallback.
func readSources(path string) ([]worker.EpisodeSource, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	var sources []worker.EpisodeSource
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		source := worker.EpisodeSource{URL: line}
		if url, audio, found := strings.Cut(line, "\t"); found {
			source.URL = strings.TrimSpace(url)
			source.AudioPath = strings.TrimSpace(audio)
		}
		sources = append(sources, source)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return sources, nil
}

// reportBaseName derives a filesystem-safe report name from a source URL
func reportBaseName(url string) string {
	if id, ok := transcript.DetectVideoID(url); ok {
		return id
	}

	name := strings.NewReplacer("https://", "", "http://", "", "/", "_", "?", "_", "&", "_", "=", "_").Replace(url)
	if len(name) > 64 {
		name = name[:64]
	}
	return name
}
