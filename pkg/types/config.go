package types

import "time"

// HTTPConfig holds shared HTTP settings used by stages that make network requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "biomarker-engine/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent"`
}

// LiteratureConfig holds settings for the literature search stage.
type LiteratureConfig struct {
	HTTPConfig `yaml:",inline"`

	// MaxResults is the maximum number of papers to return (default 20).
	MaxResults int `json:"max_results" yaml:"max_results"`

	// Email identifies the caller to NCBI E-utilities. Required for PubMed.
	Email string `json:"email,omitempty" yaml:"email,omitempty"`

	// NCBIAPIKey raises the PubMed rate limit from 3 to 10 requests/s.
	NCBIAPIKey string `json:"ncbi_api_key,omitempty" yaml:"ncbi_api_key,omitempty"`

	// EnablePubMed controls whether the PubMed backend is used.
	EnablePubMed bool `json:"enable_pubmed" yaml:"enable_pubmed"`

	// EnablePreprints controls whether bioRxiv/medRxiv backends are used.
	EnablePreprints bool `json:"enable_preprints" yaml:"enable_preprints"`

	// PreprintDaysBack bounds the preprint date window (default 30).
	PreprintDaysBack int `json:"preprint_days_back" yaml:"preprint_days_back"`

	// RequestDelay is the polite delay between consecutive API calls to the
	// same backend (default derived from the rate limit).
	RequestDelay time.Duration `json:"request_delay" yaml:"request_delay"`

	// PapersDir is the base directory for papers (contains metadata/).
	PapersDir string `json:"papers_dir" yaml:"papers_dir"`
}

// AIConfig holds shared settings for stages that call a Generative AI API.
type AIConfig struct {
	// Model is the AI model identifier.
	Model string `json:"model" yaml:"model"`

	// APIKey is the authentication key for the AI API.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty"`

	// MaxRetries is the number of retry attempts for failed API calls (default 3).
	MaxRetries int `json:"max_retries" yaml:"max_retries"`
}

// ExtractionConfig holds settings for the biomarker extraction stage.
type ExtractionConfig struct {
	AIConfig `yaml:",inline"`

	// PapersDir is the base directory for papers (contains metadata/).
	PapersDir string `json:"papers_dir" yaml:"papers_dir"`

	// KnowledgeDir is the base directory for extraction output (contains extracted/).
	KnowledgeDir string `json:"knowledge_dir" yaml:"knowledge_dir"`

	// Workers bounds extraction parallelism across papers (default 4).
	Workers int `json:"workers" yaml:"workers"`

	// FewShot controls whether few-shot examples are included in the prompt.
	FewShot bool `json:"few_shot" yaml:"few_shot"`
}

// StoreConfig holds settings for the extraction store.
type StoreConfig struct {
	// KnowledgeDir is the base directory for knowledge (contains extracted/, index/).
	KnowledgeDir string `json:"knowledge_dir" yaml:"knowledge_dir"`

	// MaxResults is the default maximum number of query results (default 20).
	MaxResults int `json:"max_results" yaml:"max_results"`
}

// EvaluationConfig holds settings for golden-dataset accuracy evaluation.
type EvaluationConfig struct {
	// GoldenPath is the YAML file with ground-truth biomarker records.
	GoldenPath string `json:"golden_path" yaml:"golden_path"`

	// HighConfidenceThreshold filters entities before evaluation when set.
	HighConfidenceThreshold float64 `json:"high_confidence_threshold,omitempty" yaml:"high_confidence_threshold,omitempty"`
}

// PipelineConfig groups all stage configurations for the pipeline.
type PipelineConfig struct {
	Literature LiteratureConfig `json:"literature" yaml:"literature"`
	Extraction ExtractionConfig `json:"extraction" yaml:"extraction"`
	Store      StoreConfig      `json:"store" yaml:"store"`
	Evaluation EvaluationConfig `json:"evaluation" yaml:"evaluation"`
}
