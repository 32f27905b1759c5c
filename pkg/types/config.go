// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// HTTPConfig holds shared HTTP settings used by stages that make network
// requests. Each external integration carries its own HTTPConfig so
// timeouts are configured independently.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "discovery-engine/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent"`
}

// LLMConfig holds settings for the generative-AI integration used by the
// expansion and explanation stages.
type LLMConfig struct {
	HTTPConfig `yaml:",inline"`

	// BaseURL is the API root (e.g. "https://api.openai.com/v1").
	BaseURL string `json:"base_url" yaml:"base_url"`

	// Model is the model identifier (e.g. "gpt-5.0").
	Model string `json:"model" yaml:"model"`

	// APIKey is the authentication key. Usually supplied via
	// .secrets/openai-api-key rather than the config file.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty"`
}

// RerankConfig holds settings for the external relevance-scoring service.
type RerankConfig struct {
	HTTPConfig `yaml:",inline"`

	// BaseURL is the API root (e.g. "https://api.cohere.com").
	BaseURL string `json:"base_url" yaml:"base_url"`

	// Model is the rerank model identifier (e.g. "rerank-v3.5").
	Model string `json:"model" yaml:"model"`

	// APIKey is the authentication key. Usually supplied via
	// .secrets/cohere-api-key.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty"`

	// DocumentCharBudget caps the characters of title+summary submitted
	// per document, bounding the batched payload size (default 2000).
	DocumentCharBudget int `json:"document_char_budget" yaml:"document_char_budget"`
}

// CorpusMode selects the retrieval policy.
type CorpusMode string

const (
	// CorpusRemote forwards each expansion phrase to the arXiv search API.
	CorpusRemote CorpusMode = "remote"

	// CorpusLocal scores phrases lexically against a pre-loaded snapshot.
	CorpusLocal CorpusMode = "local"
)

// CorpusConfig holds settings for corpus access and candidate retrieval.
type CorpusConfig struct {
	HTTPConfig `yaml:",inline"`

	// Mode selects remote search or the local snapshot (default remote).
	Mode CorpusMode `json:"mode" yaml:"mode"`

	// ArxivAPIURL is the arXiv query endpoint for remote mode.
	ArxivAPIURL string `json:"arxiv_api_url" yaml:"arxiv_api_url"`

	// MaxPerPhrase caps results fetched per expansion phrase in remote
	// mode (default 25).
	MaxPerPhrase int `json:"max_per_phrase" yaml:"max_per_phrase"`

	// MaxCandidates truncates the candidate set before reranking in
	// local mode (default 50).
	MaxCandidates int `json:"max_candidates" yaml:"max_candidates"`

	// CorpusDir is the base directory for the local snapshot
	// (contains index/corpus.db).
	CorpusDir string `json:"corpus_dir" yaml:"corpus_dir"`

	// PhraseInterval is the minimum spacing between remote lookups for
	// consecutive phrases, keeping within arXiv politeness limits
	// (default 1s).
	PhraseInterval time.Duration `json:"phrase_interval" yaml:"phrase_interval"`
}

// DiscoveryConfig holds request validation bounds for the pipeline.
type DiscoveryConfig struct {
	// DefaultTopK is used when a request omits top_k (default 3).
	DefaultTopK int `json:"default_top_k" yaml:"default_top_k"`

	// MaxTopK bounds the requested result count (default 10).
	MaxTopK int `json:"max_top_k" yaml:"max_top_k"`
}

// ServerConfig holds settings for the HTTP transport.
type ServerConfig struct {
	// Addr is the listen address (default ":8080").
	Addr string `json:"addr" yaml:"addr"`

	// RequestsPerMinute rate-limits discovery requests across all
	// callers. Zero disables limiting.
	RequestsPerMinute int `json:"requests_per_minute" yaml:"requests_per_minute"`
}

// PipelineConfig groups all stage configurations.
type PipelineConfig struct {
	LLM       LLMConfig       `json:"llm" yaml:"llm"`
	Rerank    RerankConfig    `json:"rerank" yaml:"rerank"`
	Corpus    CorpusConfig    `json:"corpus" yaml:"corpus"`
	Discovery DiscoveryConfig `json:"discovery" yaml:"discovery"`
	Server    ServerConfig    `json:"server" yaml:"server"`
}
