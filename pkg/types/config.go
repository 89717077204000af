// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// InferenceConfig holds settings for the hosted summarization provider.
type InferenceConfig struct {
	// Endpoint is the provider base URL; the model ID is appended as a path segment.
	Endpoint string `json:"endpoint" yaml:"endpoint" mapstructure:"endpoint"`

	// Token is the bearer token. An empty token disables model calls and
	// every mode runs on heuristics.
	Token string `json:"token,omitempty" yaml:"token,omitempty" mapstructure:"token"`

	// SummaryModel is used for summary mode (e.g. "facebook/bart-large-cnn").
	SummaryModel string `json:"summary_model" yaml:"summary_model" mapstructure:"summary_model"`

	// TLDRModel is used for tldr mode. Falls back to SummaryModel when empty.
	TLDRModel string `json:"tldr_model" yaml:"tldr_model" mapstructure:"tldr_model"`

	// RecommendationModel is prompted as the last recommendations strategy.
	RecommendationModel string `json:"recommendation_model" yaml:"recommendation_model" mapstructure:"recommendation_model"`

	// MaxAttempts bounds the number of POSTs per call (default 3).
	MaxAttempts int `json:"max_attempts" yaml:"max_attempts" mapstructure:"max_attempts"`

	// Timeout bounds each attempt (default 30s).
	Timeout time.Duration `json:"timeout" yaml:"timeout" mapstructure:"timeout"`

	// WordBudget caps the words sent to the provider (default 3500).
	WordBudget int `json:"word_budget" yaml:"word_budget" mapstructure:"word_budget"`
}

// Enabled reports whether model calls should be attempted.
func (c InferenceConfig) Enabled() bool {
	return c.Token != "" && c.Endpoint != ""
}

// BlobBackend selects where documents are read from.
type BlobBackend string

const (
	BlobFS BlobBackend = "fs"
	BlobS3 BlobBackend = "s3"
)

// PDFConverter selects the PDF-to-text tool.
type PDFConverter string

const (
	ConverterPDFText    PDFConverter = "pdftext"
	ConverterMarkitdown PDFConverter = "markitdown"
)

// S3Config holds object-store settings for the s3 blob backend.
type S3Config struct {
	Endpoint  string `json:"endpoint" yaml:"endpoint" mapstructure:"endpoint"`
	Region    string `json:"region" yaml:"region" mapstructure:"region"`
	AccessKey string `json:"access_key,omitempty" yaml:"access_key,omitempty" mapstructure:"access_key"`
	SecretKey string `json:"secret_key,omitempty" yaml:"secret_key,omitempty" mapstructure:"secret_key"`
	Bucket    string `json:"bucket" yaml:"bucket" mapstructure:"bucket"`
	UseSSL    bool   `json:"use_ssl" yaml:"use_ssl" mapstructure:"use_ssl"`
}

// BlobConfig holds settings for the document store.
type BlobConfig struct {
	// Backend selects fs or s3.
	Backend BlobBackend `json:"backend" yaml:"backend" mapstructure:"backend"`

	// Root is the base directory for the fs backend.
	Root string `json:"root" yaml:"root" mapstructure:"root"`

	// Converter selects the PDF-to-text tool: pdftext or markitdown.
	Converter PDFConverter `json:"converter" yaml:"converter" mapstructure:"converter"`

	// Runtime picks docker or podman for the markitdown converter. Empty
	// means whichever is available.
	Runtime string `json:"runtime,omitempty" yaml:"runtime,omitempty" mapstructure:"runtime"`

	// MarkitdownImage is the converter image (default "markitdown:latest").
	MarkitdownImage string `json:"markitdown_image,omitempty" yaml:"markitdown_image,omitempty" mapstructure:"markitdown_image"`

	// CacheSize is the number of extracted documents kept in memory (0 disables).
	CacheSize int `json:"cache_size" yaml:"cache_size" mapstructure:"cache_size"`

	S3 S3Config `json:"s3" yaml:"s3" mapstructure:"s3"`
}

// HistoryConfig holds settings for the run history database.
type HistoryConfig struct {
	// Enabled turns run recording on.
	Enabled bool `json:"enabled" yaml:"enabled" mapstructure:"enabled"`

	// Path is the SQLite database file.
	Path string `json:"path" yaml:"path" mapstructure:"path"`
}

// ServerConfig holds HTTP API settings.
type ServerConfig struct {
	Addr string `json:"addr" yaml:"addr" mapstructure:"addr"`

	// MaxBodyBytes limits request body size (default 4 MiB).
	MaxBodyBytes int64 `json:"max_body_bytes" yaml:"max_body_bytes" mapstructure:"max_body_bytes"`
}

// LogConfig holds logger settings.
type LogConfig struct {
	// Level is a zap level name: debug, info, warn, error.
	Level string `json:"level" yaml:"level" mapstructure:"level"`

	// Development switches to the console encoder.
	Development bool `json:"development" yaml:"development" mapstructure:"development"`
}

// Config groups every section of paperlens.yaml.
type Config struct {
	Inference InferenceConfig `json:"inference" yaml:"inference" mapstructure:"inference"`
	Blob      BlobConfig      `json:"blob" yaml:"blob" mapstructure:"blob"`
	History   HistoryConfig   `json:"history" yaml:"history" mapstructure:"history"`
	Server    ServerConfig    `json:"server" yaml:"server" mapstructure:"server"`
	Log       LogConfig       `json:"log" yaml:"log" mapstructure:"log"`
}
