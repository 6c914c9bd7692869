package model

import "time"

// Config is the complete podsift configuration.
// Hierarchy (highest to lowest priority): CLI flags, PODSIFT_* environment
// variables, ~/.podsift/config.yaml, defaults.
type Config struct {
	HTTP        HTTPConfig        `yaml:"http"`
	Transcript  TranscriptConfig  `yaml:"transcript"`
	Matcher     MatcherConfig     `yaml:"matcher"`
	Attribution AttributionConfig `yaml:"attribution"`
	LLM         LLMConfig         `yaml:"llm"`
	Concurrency ConcurrencyConfig `yaml:"concurrency"`
	Cache       CacheConfig       `yaml:"cache"`
	Output      OutputConfig      `yaml:"output"`
}

// HTTPConfig controls the caption scraper's HTTP behavior
type HTTPConfig struct {
	Timeout           time.Duration `yaml:"timeout"`
	UserAgent         string        `yaml:"user_agent"`
	MaxBodyBytes      int64         `yaml:"max_body_bytes"`
	RequestsPerSecond float64       `yaml:"requests_per_second"`
	Burst             int           `yaml:"burst"`
}

// TranscriptConfig controls source selection and the caption quality gate
type TranscriptConfig struct {
	PreferCaptions   bool            `yaml:"prefer_captions"`
	QualityThreshold float64         `yaml:"quality_threshold"` // Captions below this upgrade to whisper
	ForceWhisper     bool            `yaml:"force_whisper"`
	WhisperModel     string          `yaml:"whisper_model"`
	Quality          QualityTunables `yaml:"quality"`
}

// QualityTunables are the caption-quality deduction coefficients.
// The defaults are empirically chosen; there is no derivation behind them,
// so they stay configurable rather than hard-coded.
type QualityTunables struct {
	NoiseHeavy        float64 `yaml:"noise_heavy"`         // >10 noise markers
	NoiseLight        float64 `yaml:"noise_light"`         // 5-10 noise markers
	ShortSegmentHeavy float64 `yaml:"short_segment_heavy"` // Avg segment <10 chars
	ShortSegmentLight float64 `yaml:"short_segment_light"` // Avg segment <20 chars
	RepeatHeavy       float64 `yaml:"repeat_heavy"`        // >10% repeated word pairs
	RepeatLight       float64 `yaml:"repeat_light"`        // >5% repeated word pairs
	Gibberish         float64 `yaml:"gibberish"`           // >5 tokens over 25 chars
}

// MatcherConfig controls timestamp alignment
type MatcherConfig struct {
	Threshold       float64 `yaml:"threshold"`          // Minimum similarity to accept a match
	MinWordsToMatch int     `yaml:"min_words_to_match"` // Evidence shorter than this is unmatchable
}

// AttributionConfig controls lazy speaker attribution
type AttributionConfig struct {
	MinImportance        float64 `yaml:"min_importance"`         // Claims below this are never attributed
	ContextWindowSeconds float64 `yaml:"context_window_seconds"` // Transcript window around the claim
	MaxParticipants      int     `yaml:"max_participants"`       // Cap on names extracted from metadata
}

// LLMConfig holds provider selection and credentials
type LLMConfig struct {
	Provider  string `yaml:"provider"` // openai, anthropic, ollama
	Model     string `yaml:"model"`
	APIKey    string `yaml:"api_key,omitempty"`
	BaseURL   string `yaml:"base_url,omitempty"`
	Timeout   int    `yaml:"timeout"` // seconds
	MaxTokens int    `yaml:"max_tokens"`
}

// ConcurrencyConfig controls batch fan-out
type ConcurrencyConfig struct {
	Workers int `yaml:"workers"`
}

// CacheConfig controls the layered transcript cache
type CacheConfig struct {
	Enabled   bool          `yaml:"enabled"`
	Dir       string        `yaml:"dir"`
	MemoryTTL time.Duration `yaml:"memory_ttl"`
	DiskTTL   time.Duration `yaml:"disk_ttl"`
}

// OutputConfig controls report rendering
type OutputConfig struct {
	Verbose       bool `yaml:"verbose"`
	IncludeFooter bool `yaml:"include_footer"`
}

// DefaultConfig returns the built-in defaults
func DefaultConfig() *Config {
	return &Config{
		HTTP: HTTPConfig{
			Timeout:           30 * time.Second,
			UserAgent:         "Podsift/0.2 (+https://github.com/podsift/podsift)",
			MaxBodyBytes:      4_000_000,
			RequestsPerSecond: 2,
			Burst:             5,
		},
		Transcript: TranscriptConfig{
			PreferCaptions:   true,
			QualityThreshold: 0.7,
			WhisperModel:     "whisper-1",
			Quality:          DefaultQualityTunables(),
		},
		Matcher: MatcherConfig{
			Threshold:       0.7,
			MinWordsToMatch: 3,
		},
		Attribution: AttributionConfig{
			MinImportance:        7,
			ContextWindowSeconds: 60,
			MaxParticipants:      5,
		},
		LLM: LLMConfig{
			Provider:  "openai",
			Model:     "gpt-4o-mini",
			Timeout:   60,
			MaxTokens: 4000,
		},
		Concurrency: ConcurrencyConfig{
			Workers: 2,
		},
		Cache: CacheConfig{
			Enabled:   true,
			MemoryTTL: 30 * time.Minute,
			DiskTTL:   7 * 24 * time.Hour,
		},
		Output: OutputConfig{
			IncludeFooter: true,
		},
	}
}

// DefaultQualityTunables returns the deduction coefficients as observed
// in production use
func DefaultQualityTunables() QualityTunables {
	return QualityTunables{
		NoiseHeavy:        0.2,
		NoiseLight:        0.1,
		ShortSegmentHeavy: 0.2,
		ShortSegmentLight: 0.1,
		RepeatHeavy:       0.2,
		RepeatLight:       0.1,
		Gibberish:         0.15,
	}
}
