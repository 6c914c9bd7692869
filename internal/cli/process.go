package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/podsift/podsift/internal/attribute"
	"github.com/podsift/podsift/internal/cache"
	"github.com/podsift/podsift/internal/llm"
	"github.com/podsift/podsift/internal/match"
	"github.com/podsift/podsift/internal/mine"
	"github.com/podsift/podsift/internal/model"
	"github.com/podsift/podsift/internal/pipeline"
	"github.com/podsift/podsift/internal/transcript"
	"github.com/spf13/cobra"
)

var (
	outJSON          string
	outMD            string
	processTimeout   time.Duration
	audioPath        string
	preferCaptions   bool
	forceWhisper     bool
	qualityThreshold float64
	minImportance    float64
	llmProvider      string
	llmModel         string
	noCache          bool
	noFooter         bool
	noSummary        bool
	episodeTitle     string
	showName         string
	hostName         string
)

// processCmd represents the process command
var processCmd = &cobra.Command{
	Use:   "process <url>",
	Short: "Extract claims from a single episode",
	Long: `Process runs the full extraction pipeline for one episode:
- Fetch a transcript (captions when good enough, whisper otherwise)
- Mine candidate claims with an LLM
- Filter candidates through a flagship evaluator
- Align accepted claims to timestamps
- Attribute speakers to high-importance claims

Example:
  podsift process https://www.youtube.com/watch?v=dQw4w9WgXcQ
  podsift process https://youtu.be/dQw4w9WgXcQ --audio episode.mp3 --md claims.md
  podsift process https://youtu.be/dQw4w9WgXcQ --force-whisper --audio episode.mp3`,
	Args: cobra.ExactArgs(1),
	RunE: runProcess,
}

func init() {
	rootCmd.AddCommand(processCmd)

	// Output flags
	processCmd.Flags().StringVar(&outJSON, "json", "report.json", "output JSON path")
	processCmd.Flags().StringVar(&outMD, "md", "", "output Markdown path (optional)")
	processCmd.Flags().BoolVar(&noFooter, "no-footer", false, "disable footer in Markdown reports")

	// Transcript flags
	processCmd.Flags().StringVar(&audioPath, "audio", "", "local audio file for whisper transcription")
	processCmd.Flags().BoolVar(&preferCaptions, "prefer-captions", true, "try the fast caption path before whisper")
	processCmd.Flags().BoolVar(&forceWhisper, "force-whisper", false, "skip captions and transcribe the audio file")
	processCmd.Flags().Float64Var(&qualityThreshold, "quality-threshold", 0.7, "minimum caption quality before upgrading to whisper")
	processCmd.Flags().BoolVar(&noCache, "no-cache", false, "disable the transcript cache")

	// Pipeline flags
	processCmd.Flags().Float64Var(&minImportance, "min-importance", 7, "minimum importance for speaker attribution")
	processCmd.Flags().BoolVar(&noSummary, "no-summary", false, "skip episode summary generation")
	processCmd.Flags().DurationVar(&processTimeout, "timeout", 10*time.Minute, "overall processing timeout")

	// Episode metadata flags
	processCmd.Flags().StringVar(&episodeTitle, "title", "", "episode title (improves mining and attribution)")
	processCmd.Flags().StringVar(&showName, "show", "", "show name")
	processCmd.Flags().StringVar(&hostName, "host", "", "host name (used for speaker attribution)")

	// LLM flags
	processCmd.Flags().StringVar(&llmProvider, "llm-provider", "", "LLM provider (openai, anthropic, ollama; default resolves from model)")
	processCmd.Flags().StringVar(&llmModel, "llm-model", "gpt-4o-mini", "LLM model name")
}

func runProcess(cmd *cobra.Command, args []string) error {
	url := args[0]
	ctx, cancel := context.WithTimeout(context.Background(), processTimeout)
	defer cancel()

	cfg := buildConfig()

	p, err := buildPipeline(cfg)
	if err != nil {
		return err
	}

	if verbose {
		fmt.Fprintf(os.Stderr, "Processing: %s\n", url)
		fmt.Fprintf(os.Stderr, "LLM: %s/%s\n", cfg.LLM.Provider, cfg.LLM.Model)
		fmt.Fprintf(os.Stderr, "Cache: %v\n\n", cfg.Cache.Enabled)
	}

	report, err := p.Process(ctx, pipeline.Source{
		URL:       url,
		AudioPath: audioPath,
		Metadata: model.SourceMetadata{
			Title:    episodeTitle,
			ShowName: showName,
			HostName: hostName,
		},
	})
	if err != nil {
		return fmt.Errorf("process failed: %w", err)
	}

	if !noSummary {
		if err := p.GenerateSummary(ctx, report); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: summary generation failed: %v\n", err)
		}
	}

	renderer := pipeline.NewRenderer(cfg.Output.IncludeFooter)
	if outJSON != "" {
		if err := renderer.RenderJSON(report, outJSON); err != nil {
			return fmt.Errorf("render failed: %w", err)
		}
	}
	if outMD != "" {
		if err := renderer.RenderMarkdown(report, outMD); err != nil {
			return fmt.Errorf("render failed: %w", err)
		}
	}
	renderer.RenderSummary(report)

	return nil
}

// buildConfig layers CLI flags over the defaults
func buildConfig() *model.Config {
	cfg := model.DefaultConfig()
	cfg.Transcript.PreferCaptions = preferCaptions
	cfg.Transcript.QualityThreshold = qualityThreshold
	cfg.Transcript.ForceWhisper = forceWhisper
	cfg.Attribution.MinImportance = minImportance
	cfg.Cache.Enabled = !noCache
	cfg.Output.Verbose = verbose
	cfg.Output.IncludeFooter = !noFooter

	cfg.LLM.Provider = llmProvider
	if llmModel != "" {
		cfg.LLM.Model = llmModel
	}
	if cfg.LLM.Provider == "" {
		cfg.LLM.Provider = llm.ResolveProvider(cfg.LLM.Model)
	}
	if cfg.Cache.Dir == "" {
		if home, err := os.UserHomeDir(); err == nil {
			cfg.Cache.Dir = filepath.Join(home, ".podsift", "cache")
		}
	}
	return cfg
}

// buildPipeline wires all pipeline collaborators up front. A
// misconfigured backend fails here, before any network work.
func buildPipeline(cfg *model.Config) (*pipeline.Pipeline, error) {
	llmCfg := llm.ConfigFromModel(cfg.LLM)
	if err := resolveAPIKey(&llmCfg); err != nil {
		return nil, err
	}

	provider, err := llm.NewProvider(llmCfg)
	if err != nil {
		return nil, fmt.Errorf("create LLM provider: %w", err)
	}

	var captionCache cache.Cache
	if cfg.Cache.Enabled {
		captionCache = cache.NewLayeredCache(cfg.Cache.MemoryTTL, cfg.Cache.Dir, cfg.Cache.DiskTTL)
	}
	captions := transcript.NewYouTubeCaptionClient(cfg.HTTP, captionCache)

	// Whisper rides the OpenAI key regardless of the chat provider
	var whisper transcript.WhisperClient
	if key := os.Getenv("OPENAI_API_KEY"); key != "" {
		whisper, err = transcript.NewOpenAIWhisperClient(key, cfg.Transcript.WhisperModel, "")
		if err != nil {
			return nil, fmt.Errorf("create whisper client: %w", err)
		}
	}

	fetcher := transcript.NewFetcher(captions, whisper, cfg.Transcript.Quality, cfg.Output.Verbose)

	return pipeline.New(cfg, pipeline.Deps{
		Fetcher:    fetcher,
		Miner:      mine.NewUnifiedMiner(provider),
		Evaluator:  mine.NewFlagshipEvaluator(provider),
		Matcher:    match.NewMatcher(cfg.Matcher),
		Attributor: attribute.NewAttributor(provider, cfg.Attribution),
		Summarizer: provider,
	}), nil
}

// resolveAPIKey pulls provider credentials from the environment
func resolveAPIKey(llmCfg *llm.Config) error {
	if llmCfg.APIKey != "" {
		return nil
	}

	switch llmCfg.Provider {
	case "openai":
		llmCfg.APIKey = os.Getenv("OPENAI_API_KEY")
		if llmCfg.APIKey == "" {
			return fmt.Errorf("OPENAI_API_KEY environment variable not set")
		}
	case "anthropic", "claude":
		llmCfg.APIKey = os.Getenv("ANTHROPIC_API_KEY")
		if llmCfg.APIKey == "" {
			return fmt.Errorf("ANTHROPIC_API_KEY environment variable not set")
		}
	case "ollama":
		// Ollama doesn't need an API key
		if baseURL := os.Getenv("OLLAMA_BASE_URL"); baseURL != "" {
			llmCfg.BaseURL = baseURL
		}
	}
	return nil
}
