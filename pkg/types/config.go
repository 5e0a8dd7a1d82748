package types

import "time"

// FetchStrategy selects how a source's pages are retrieved.
type FetchStrategy string

const (
	// StrategyStatic fetches pages with a single HTTP GET.
	StrategyStatic FetchStrategy = "static"

	// StrategyRendered fetches pages through a headless browser so that
	// client-side rendered content is present before extraction.
	StrategyRendered FetchStrategy = "rendered"
)

// HTTPConfig holds shared HTTP settings used by stages that make network requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "health-ingest/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent"`
}

// FetchConfig holds settings for the page fetch stage.
type FetchConfig struct {
	HTTPConfig `yaml:",inline"`

	// Strategy selects static or rendered fetching.
	Strategy FetchStrategy `json:"strategy" yaml:"strategy"`

	// MaxAttempts is the number of fetch attempts for retryable errors (default 3).
	MaxAttempts int `json:"max_attempts" yaml:"max_attempts"`

	// RetryBaseDelay is multiplied by the attempt number between retries (default 2s).
	RetryBaseDelay time.Duration `json:"retry_base_delay" yaml:"retry_base_delay"`

	// SettleDelay is the wait after DOM-ready in rendered mode so that
	// asynchronous content can populate (default 3s).
	SettleDelay time.Duration `json:"settle_delay" yaml:"settle_delay"`

	// AcceptLanguage is an optional Accept-Language header.
	AcceptLanguage string `json:"accept_language,omitempty" yaml:"accept_language,omitempty"`

	// ViewportWidth and ViewportHeight size the browser viewport in rendered mode.
	ViewportWidth  int `json:"viewport_width,omitempty" yaml:"viewport_width,omitempty"`
	ViewportHeight int `json:"viewport_height,omitempty" yaml:"viewport_height,omitempty"`
}

// ValidationConfig holds quality thresholds for extracted content.
// Callers may override per source.
type ValidationConfig struct {
	// MinContentLength is the minimum joined content length (default 300).
	MinContentLength int `json:"min_content_length" yaml:"min_content_length"`

	// MaxContentLength is the maximum joined content length (default 50000).
	MaxContentLength int `json:"max_content_length" yaml:"max_content_length"`

	// MinParagraphs is the minimum paragraph count (default 3).
	MinParagraphs int `json:"min_paragraphs" yaml:"min_paragraphs"`
}

// Defaulted returns a copy with zero fields replaced by defaults.
func (c ValidationConfig) Defaulted() ValidationConfig {
	if c.MinContentLength <= 0 {
		c.MinContentLength = 300
	}
	if c.MaxContentLength <= 0 {
		c.MaxContentLength = 50000
	}
	if c.MinParagraphs <= 0 {
		c.MinParagraphs = 3
	}
	return c
}

// StoreConfig holds settings for the content store.
type StoreConfig struct {
	// DataDir is the base directory for the store (contains index/, export/).
	DataDir string `json:"data_dir" yaml:"data_dir"`

	// MaxResults is the default maximum number of query results (default 20).
	MaxResults int `json:"max_results" yaml:"max_results"`
}

// IngestConfig holds settings for the ingestion coordinator.
type IngestConfig struct {
	// ItemDelay is the delay between consecutive candidates in a batch (default 1s).
	ItemDelay time.Duration `json:"item_delay" yaml:"item_delay"`

	// Validation holds the default quality thresholds; per-source overrides
	// from the source table take precedence.
	Validation ValidationConfig `json:"validation" yaml:"validation"`
}

// DiscoveryConfig holds settings for the candidate discovery stage.
type DiscoveryConfig struct {
	HTTPConfig `yaml:",inline"`

	// MaxCandidates caps the number of candidates returned per run (default 50).
	MaxCandidates int `json:"max_candidates" yaml:"max_candidates"`

	// InterBackendDelay is the delay between calls to different discovery
	// backends (default 1s).
	InterBackendDelay time.Duration `json:"inter_backend_delay" yaml:"inter_backend_delay"`
}

// PipelineConfig groups all stage configurations.
type PipelineConfig struct {
	Fetch     FetchConfig     `json:"fetch" yaml:"fetch"`
	Ingest    IngestConfig    `json:"ingest" yaml:"ingest"`
	Store     StoreConfig     `json:"store" yaml:"store"`
	Discovery DiscoveryConfig `json:"discovery" yaml:"discovery"`

	// SourcesFile is the path to the YAML source table.
	SourcesFile string `json:"sources_file" yaml:"sources_file"`
}
